package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/light-bringer/inventory-service/internal/app/inventory/queries/check_availability"
	"github.com/light-bringer/inventory-service/internal/app/inventory/queries/get_product"
	"github.com/light-bringer/inventory-service/internal/app/inventory/queries/list_movements"
	"github.com/light-bringer/inventory-service/internal/app/inventory/queries/list_products"
	"github.com/light-bringer/inventory-service/internal/app/inventory/usecases/adjust_stock"
	"github.com/light-bringer/inventory-service/internal/app/inventory/usecases/archive_product"
	"github.com/light-bringer/inventory-service/internal/app/inventory/usecases/create_product"
	"github.com/light-bringer/inventory-service/internal/app/inventory/usecases/restore_product"
	"github.com/light-bringer/inventory-service/internal/app/inventory/usecases/set_stock_policy"
	"github.com/light-bringer/inventory-service/internal/app/inventory/usecases/update_pricing"
)

// CreateProductRequest is the body of POST /products. Prices are decimal strings.
type CreateProductRequest struct {
	SKU               string     `json:"sku" binding:"required"`
	Name              string     `json:"name" binding:"required"`
	CategoryID        *string    `json:"category_id"`
	Price             string     `json:"price" binding:"required"`
	CompareAtPrice    *string    `json:"compare_at_price"`
	CostPrice         *string    `json:"cost_price"`
	StockQuantity     int64      `json:"stock_quantity" binding:"gte=0"`
	LowStockThreshold *int64     `json:"low_stock_threshold"`
	TrackInventory    *bool      `json:"track_inventory"`
	AllowBackorders   bool       `json:"allow_backorders"`
	AvailableFrom     *time.Time `json:"available_from"`
	AvailableUntil    *time.Time `json:"available_until"`
}

// UpdatePricingRequest replaces all three prices; omitted optional prices are cleared.
type UpdatePricingRequest struct {
	Price          string  `json:"price" binding:"required"`
	CompareAtPrice *string `json:"compare_at_price"`
	CostPrice      *string `json:"cost_price"`
}

// AdjustStockRequest applies a signed change to stock on hand.
type AdjustStockRequest struct {
	Delta  int64  `json:"delta" binding:"required"`
	Reason string `json:"reason"`
}

// StockPolicyRequest sets the stock policy flags.
type StockPolicyRequest struct {
	LowStockThreshold int64 `json:"low_stock_threshold"`
	TrackInventory    bool  `json:"track_inventory"`
	AllowBackorders   bool  `json:"allow_backorders"`
}

// AvailabilityRequest lists the lines to check.
type AvailabilityRequest struct {
	Lines []LineRequest `json:"lines" binding:"required,min=1,dive"`
}

// LineRequest is one product quantity.
type LineRequest struct {
	ProductID string `json:"product_id" binding:"required"`
	Quantity  int64  `json:"quantity" binding:"required"`
}

func (h *Handler) createProduct(c *gin.Context) {
	var req CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	id, err := h.svc.CreateProduct.Execute(c.Request.Context(), &create_product.Request{
		SKU:               req.SKU,
		Name:              req.Name,
		CategoryID:        req.CategoryID,
		Price:             req.Price,
		CompareAtPrice:    req.CompareAtPrice,
		CostPrice:         req.CostPrice,
		StockQuantity:     req.StockQuantity,
		LowStockThreshold: req.LowStockThreshold,
		TrackInventory:    req.TrackInventory,
		AllowBackorders:   req.AllowBackorders,
		AvailableFrom:     req.AvailableFrom,
		AvailableUntil:    req.AvailableUntil,
	})
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	h.respondProduct(c, http.StatusCreated, id, false)
}

func (h *Handler) getProduct(c *gin.Context) {
	h.respondProduct(c, http.StatusOK, c.Param("id"), queryBool(c, "include_inactive"))
}

func (h *Handler) getProductBySKU(c *gin.Context) {
	dto, err := h.svc.GetProduct.Execute(c.Request.Context(), &get_product.Request{
		SKU:             c.Param("sku"),
		IncludeInactive: queryBool(c, "include_inactive"),
	})
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, toProduct(dto))
}

func (h *Handler) respondProduct(c *gin.Context, status int, id string, includeInactive bool) {
	dto, err := h.svc.GetProduct.Execute(c.Request.Context(), &get_product.Request{
		ProductID:       id,
		IncludeInactive: includeInactive,
	})
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(status, toProduct(dto))
}

func (h *Handler) listProducts(c *gin.Context) {
	pageSize, err := queryInt(c, "page_size")
	if err != nil {
		badRequest(c, err)
		return
	}

	res, err := h.svc.ListProducts.Execute(c.Request.Context(), &list_products.Request{
		CategoryID:      c.Query("category_id"),
		LowStockOnly:    queryBool(c, "low_stock"),
		IncludeInactive: queryBool(c, "include_inactive"),
		PageSize:        pageSize,
		PageToken:       c.Query("page_token"),
	})
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	resp := ListProductsResponse{
		Products:      make([]Product, 0, len(res.Products)),
		NextPageToken: res.NextPageToken,
	}
	for _, p := range res.Products {
		resp.Products = append(resp.Products, toProduct(p))
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) updatePricing(c *gin.Context) {
	var req UpdatePricingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	id := c.Param("id")
	err := h.svc.UpdatePricing.Execute(c.Request.Context(), &update_pricing.Request{
		ProductID:      id,
		Price:          req.Price,
		CompareAtPrice: req.CompareAtPrice,
		CostPrice:      req.CostPrice,
	})
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	h.respondProduct(c, http.StatusOK, id, false)
}

func (h *Handler) archiveProduct(c *gin.Context) {
	res, err := h.svc.ArchiveProduct.Execute(c.Request.Context(), &archive_product.Request{ProductID: c.Param("id")})
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"product_id":        c.Param("id"),
		"archived_at":       res.ArchivedAt,
		"reserved_quantity": res.ReservedQuantity,
	})
}

func (h *Handler) restoreProduct(c *gin.Context) {
	id := c.Param("id")
	if err := h.svc.RestoreProduct.Execute(c.Request.Context(), &restore_product.Request{ProductID: id}); err != nil {
		writeError(c, h.logger, err)
		return
	}
	h.respondProduct(c, http.StatusOK, id, false)
}

func (h *Handler) adjustStock(c *gin.Context) {
	var req AdjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	id := c.Param("id")
	level, err := h.svc.AdjustStock.Execute(c.Request.Context(), &adjust_stock.Request{
		ProductID: id,
		Delta:     req.Delta,
		Reason:    req.Reason,
	})
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, toStockLevel(id, level))
}

func (h *Handler) setStockPolicy(c *gin.Context) {
	var req StockPolicyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	id := c.Param("id")
	level, err := h.svc.SetStockPolicy.Execute(c.Request.Context(), &set_stock_policy.Request{
		ProductID:         id,
		LowStockThreshold: req.LowStockThreshold,
		TrackInventory:    req.TrackInventory,
		AllowBackorders:   req.AllowBackorders,
	})
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, toStockLevel(id, level))
}

func (h *Handler) listMovements(c *gin.Context) {
	limit, err := queryInt(c, "limit")
	if err != nil {
		badRequest(c, err)
		return
	}

	movements, err := h.svc.ListMovements.Execute(c.Request.Context(), &list_movements.Request{
		ProductID: c.Param("id"),
		Limit:     limit,
	})
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"movements": toMovements(movements)})
}

func (h *Handler) checkAvailability(c *gin.Context) {
	var req AvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	lines := make([]check_availability.Line, 0, len(req.Lines))
	for _, l := range req.Lines {
		lines = append(lines, check_availability.Line{ProductID: l.ProductID, Quantity: l.Quantity})
	}

	res, err := h.svc.CheckAvailability.Execute(c.Request.Context(), &check_availability.Request{Lines: lines})
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, toAvailability(res))
}

func queryBool(c *gin.Context, key string) bool {
	b, _ := strconv.ParseBool(c.Query(key))
	return b
}

func queryInt(c *gin.Context, key string) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.New(key + " must be an integer")
	}
	return n, nil
}
