// Package http exposes the inventory service over JSON/HTTP using gin.
package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/light-bringer/inventory-service/internal/services"
)

// Handler serves the HTTP API over the wired application.
type Handler struct {
	svc    *services.ServiceOptions
	logger *zap.Logger
}

// NewHandler creates a new HTTP handler.
func NewHandler(svc *services.ServiceOptions, logger *zap.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// NewRouter builds the gin engine with middleware and all routes.
func NewRouter(h *Handler, requestTimeout time.Duration) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), loggerMiddleware(h.logger), actorMiddleware(), timeoutMiddleware(requestTimeout))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := r.Group("/api/v1")

	products := v1.Group("/products")
	products.POST("", h.createProduct)
	products.GET("", h.listProducts)
	products.GET("/:id", h.getProduct)
	products.DELETE("/:id", h.archiveProduct)
	products.POST("/:id/restore", h.restoreProduct)
	products.PUT("/:id/pricing", h.updatePricing)
	products.POST("/:id/stock/adjustments", h.adjustStock)
	products.GET("/:id/stock/movements", h.listMovements)
	products.PUT("/:id/stock/policy", h.setStockPolicy)

	v1.GET("/skus/:sku", h.getProductBySKU)
	v1.POST("/availability", h.checkAvailability)

	orders := v1.Group("/orders")
	orders.POST("", h.createOrder)
	orders.GET("/:id", h.getOrder)
	orders.POST("/:id/submit", h.submitOrder)
	orders.POST("/:id/fulfill", h.fulfillOrder)
	orders.POST("/:id/cancel", h.cancelOrder)

	categories := v1.Group("/categories")
	categories.POST("", h.createCategory)
	categories.DELETE("/:id", h.deactivateCategory)

	v1.GET("/events", h.listEvents)
	v1.POST("/events/relay", h.relayEvents)

	return r
}
