package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/light-bringer/inventory-service/internal/app/inventory/domain"
	"github.com/light-bringer/inventory-service/internal/app/inventory/notify"
)

// retryAfterSeconds is advertised on 503 responses for exhausted ledger retries.
const retryAfterSeconds = "1"

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorMapping struct {
	target error
	status int
	code   string
}

// Checked in order; the first match wins.
var errorMappings = []errorMapping{
	{domain.ErrInsufficientStock, http.StatusConflict, "insufficient_stock"},
	{domain.ErrProductNotPurchasable, http.StatusUnprocessableEntity, "product_not_purchasable"},
	{domain.ErrConcurrentModification, http.StatusServiceUnavailable, "concurrent_modification"},
	{domain.ErrInvariantViolation, http.StatusInternalServerError, "invariant_violation"},

	{domain.ErrProductNotFound, http.StatusNotFound, "product_not_found"},
	{domain.ErrOrderNotFound, http.StatusNotFound, "order_not_found"},
	{domain.ErrCategoryNotFound, http.StatusNotFound, "category_not_found"},

	{domain.ErrDuplicateSKU, http.StatusConflict, "duplicate_sku"},
	{domain.ErrDuplicateOrderNo, http.StatusConflict, "duplicate_order_number"},
	{domain.ErrInvalidTransition, http.StatusConflict, "invalid_transition"},
	{domain.ErrAlreadyArchived, http.StatusConflict, "already_archived"},
	{domain.ErrNotArchived, http.StatusConflict, "not_archived"},
	{domain.ErrCannotModifyArchived, http.StatusConflict, "archived"},
	{domain.ErrStockPolicyConflict, http.StatusConflict, "stock_policy_conflict"},
	{notify.ErrLockHeld, http.StatusConflict, "job_running"},

	{domain.ErrEmptySKU, http.StatusBadRequest, "invalid_argument"},
	{domain.ErrEmptyName, http.StatusBadRequest, "invalid_argument"},
	{domain.ErrInvalidPrice, http.StatusBadRequest, "invalid_argument"},
	{domain.ErrInvalidCompareAtPrice, http.StatusBadRequest, "invalid_argument"},
	{domain.ErrInvalidCostPrice, http.StatusBadRequest, "invalid_argument"},
	{domain.ErrInvalidThreshold, http.StatusBadRequest, "invalid_argument"},
	{domain.ErrInvalidAvailabilityWindow, http.StatusBadRequest, "invalid_argument"},
	{domain.ErrInvalidQuantity, http.StatusBadRequest, "invalid_argument"},
	{domain.ErrInvalidStockQuantity, http.StatusBadRequest, "invalid_argument"},
	{domain.ErrEmptyOrder, http.StatusBadRequest, "invalid_argument"},
	{domain.ErrDuplicateOrderLine, http.StatusBadRequest, "invalid_argument"},
	{domain.ErrEmptyCategoryName, http.StatusBadRequest, "invalid_argument"},
	{domain.ErrCategorySelfParent, http.StatusBadRequest, "invalid_argument"},
	{domain.ErrCategoryCycle, http.StatusBadRequest, "invalid_argument"},

	{context.DeadlineExceeded, http.StatusGatewayTimeout, "timeout"},
}

// writeError maps err to a status and JSON body. Invariant violations and
// unmapped errors are logged at error level with the full chain; the client only
// sees a generic message for them.
func writeError(c *gin.Context, logger *zap.Logger, err error) {
	status, code := http.StatusInternalServerError, "internal"
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			status, code = m.status, m.code
			break
		}
	}

	msg := err.Error()
	switch status {
	case http.StatusServiceUnavailable:
		c.Header("Retry-After", retryAfterSeconds)
	case http.StatusInternalServerError:
		logger.Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.String("code", code),
			zap.Error(err),
		)
		msg = "internal server error"
	}

	c.AbortWithStatusJSON(status, ErrorResponse{Code: code, Message: msg})
}

func badRequest(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{Code: "invalid_argument", Message: err.Error()})
}
