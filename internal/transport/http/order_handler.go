package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/light-bringer/inventory-service/internal/app/inventory/contracts"
	"github.com/light-bringer/inventory-service/internal/app/inventory/domain"
	"github.com/light-bringer/inventory-service/internal/app/inventory/queries/get_order"
	"github.com/light-bringer/inventory-service/internal/app/inventory/usecases/create_order"
)

// CreateOrderRequest is the body of POST /orders.
type CreateOrderRequest struct {
	Lines []LineRequest `json:"lines" binding:"required,min=1,dive"`
}

func (h *Handler) createOrder(c *gin.Context) {
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	lines := make([]create_order.Line, 0, len(req.Lines))
	for _, l := range req.Lines {
		lines = append(lines, create_order.Line{ProductID: l.ProductID, Quantity: l.Quantity})
	}

	order, err := h.svc.CreateOrder.Execute(c.Request.Context(), &create_order.Request{Lines: lines})
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, toOrder(contracts.ToOrderDTO(order)))
}

func (h *Handler) getOrder(c *gin.Context) {
	dto, err := h.svc.GetOrder.Execute(c.Request.Context(), &get_order.Request{OrderID: c.Param("id")})
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, toOrder(dto))
}

func (h *Handler) submitOrder(c *gin.Context) {
	h.transition(c, h.svc.Orders.Submit)
}

func (h *Handler) fulfillOrder(c *gin.Context) {
	h.transition(c, h.svc.Orders.Fulfill)
}

func (h *Handler) cancelOrder(c *gin.Context) {
	h.transition(c, h.svc.Orders.Cancel)
}

func (h *Handler) transition(c *gin.Context, apply func(context.Context, string) (*domain.Order, error)) {
	order, err := apply(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, toOrder(contracts.ToOrderDTO(order)))
}
