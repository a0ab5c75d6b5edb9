package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/light-bringer/inventory-service/internal/app/inventory/usecases/create_category"
	"github.com/light-bringer/inventory-service/internal/app/inventory/usecases/deactivate_category"
)

// CreateCategoryRequest is the body of POST /categories.
type CreateCategoryRequest struct {
	Name     string  `json:"name" binding:"required"`
	ParentID *string `json:"parent_id"`
	Position int64   `json:"position"`
}

func (h *Handler) createCategory(c *gin.Context) {
	var req CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	id, err := h.svc.CreateCategory.Execute(c.Request.Context(), &create_category.Request{
		Name:     req.Name,
		ParentID: req.ParentID,
		Position: req.Position,
	})
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"category_id": id})
}

// deactivateCategory soft-deletes a category; its products leave the active
// catalog together with those of its descendants.
func (h *Handler) deactivateCategory(c *gin.Context) {
	id := c.Param("id")
	if err := h.svc.DeactivateCategory.Execute(c.Request.Context(), &deactivate_category.Request{CategoryID: id}); err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}
