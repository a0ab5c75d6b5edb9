package domain

import (
	"errors"
	"fmt"
)

// Domain errors as sentinel values
var (
	// Product errors
	ErrProductNotFound           = errors.New("product not found")
	ErrEmptySKU                  = errors.New("product sku cannot be empty")
	ErrDuplicateSKU              = errors.New("product sku already exists")
	ErrEmptyName                 = errors.New("product name cannot be empty")
	ErrInvalidPrice              = errors.New("product price must be positive")
	ErrInvalidCompareAtPrice     = errors.New("compare-at price must not be lower than price")
	ErrInvalidCostPrice          = errors.New("cost price cannot be negative")
	ErrInvalidThreshold          = errors.New("low stock threshold cannot be negative")
	ErrInvalidAvailabilityWindow = errors.New("available_from must be before available_until")
	ErrStockPolicyConflict       = errors.New("stock policy change would leave reservations above stock")

	// Soft delete errors
	ErrAlreadyArchived      = errors.New("record is already deactivated")
	ErrNotArchived          = errors.New("record is not deactivated")
	ErrCannotModifyArchived = errors.New("cannot modify deactivated record")

	// Ledger errors
	ErrInsufficientStock      = errors.New("insufficient stock")
	ErrProductNotPurchasable  = errors.New("product is not purchasable")
	ErrInvariantViolation     = errors.New("ledger invariant violation")
	ErrConcurrentModification = errors.New("concurrent modification, retry budget exhausted")
	ErrInvalidQuantity        = errors.New("quantity must be positive")
	ErrInvalidStockQuantity   = errors.New("stock quantity cannot be negative")

	// Order errors
	ErrOrderNotFound       = errors.New("order not found")
	ErrDuplicateOrderNo    = errors.New("order number already exists")
	ErrEmptyOrder          = errors.New("order must contain at least one line")
	ErrDuplicateOrderLine  = errors.New("order lines must reference distinct products")
	ErrInvalidTransition   = errors.New("invalid order status transition")
	ErrReservationMismatch = errors.New("order reservations do not match its lines")

	// Category errors
	ErrCategoryNotFound   = errors.New("category not found")
	ErrEmptyCategoryName  = errors.New("category name cannot be empty")
	ErrCategorySelfParent = errors.New("a category cannot be its own parent")
	ErrCategoryCycle      = errors.New("circular reference in category hierarchy")
)

// StockError describes a ledger operation rejected for one product.
// It wraps ErrInsufficientStock or ErrInvariantViolation.
type StockError struct {
	ProductID string
	Op        string
	Requested int64
	Available int64
	Reserved  int64
	Err       error
}

func (e *StockError) Error() string {
	return fmt.Sprintf("%s %s: requested %d, available %d, reserved %d: %v",
		e.Op, e.ProductID, e.Requested, e.Available, e.Reserved, e.Err)
}

func (e *StockError) Unwrap() error { return e.Err }

// IsRetryable reports whether err is a transient failure the caller may retry as is.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrConcurrentModification)
}

// IsBusinessOutcome reports whether err is an expected rejection to surface to the
// end user rather than an internal failure.
func IsBusinessOutcome(err error) bool {
	return errors.Is(err, ErrInsufficientStock) || errors.Is(err, ErrProductNotPurchasable)
}
