package domain

import "time"

// Ledger operation names used in StockError and movement records.
const (
	OpAdjust  = "adjust"
	OpReserve = "reserve"
	OpRelease = "release"
	OpCommit  = "commit"
)

// DefaultLowStockThreshold matches the catalog default for new products.
const DefaultLowStockThreshold int64 = 10

// StockLevel is the authoritative quantity state of one product together with the
// policy flags that change how reservations behave. Every ledger implementation
// applies mutations through the methods below, so the rules live in one place and
// the implementations only provide atomicity.
type StockLevel struct {
	StockQuantity     int64
	ReservedQuantity  int64
	LowStockThreshold int64
	TrackInventory    bool
	AllowBackorders   bool
}

// NewStockLevel returns a tracked, non-backorder level with the default threshold.
func NewStockLevel(onHand int64) StockLevel {
	return StockLevel{
		StockQuantity:     onHand,
		LowStockThreshold: DefaultLowStockThreshold,
		TrackInventory:    true,
	}
}

// Available is stock on hand not held by reservations. It is negative for a
// backordered product.
func (s StockLevel) Available() int64 {
	return s.StockQuantity - s.ReservedQuantity
}

// IsInStock reports whether the product can currently be sold.
func (s StockLevel) IsInStock() bool {
	return !s.TrackInventory || s.Available() > 0 || s.AllowBackorders
}

// IsLowStock is true for a tracked product with some, but at most threshold, units
// available. Out of stock is a distinct state and never low stock.
func (s StockLevel) IsLowStock() bool {
	available := s.Available()
	return s.TrackInventory && available > 0 && available <= s.LowStockThreshold
}

// IsOutOfStock is true for a tracked product with nothing available.
func (s StockLevel) IsOutOfStock() bool {
	return s.TrackInventory && s.Available() <= 0
}

// enforcesCapacity reports whether reservations are bounded by stock on hand.
func (s StockLevel) enforcesCapacity() bool {
	return s.TrackInventory && !s.AllowBackorders
}

// Validate checks the stored invariants.
func (s StockLevel) Validate() error {
	if s.StockQuantity < 0 {
		return ErrInvalidStockQuantity
	}
	if s.ReservedQuantity < 0 {
		return ErrInvariantViolation
	}
	if s.LowStockThreshold < 0 {
		return ErrInvalidThreshold
	}
	if s.enforcesCapacity() && s.ReservedQuantity > s.StockQuantity {
		return ErrStockPolicyConflict
	}
	return nil
}

// Adjust applies a signed change to stock on hand. The result may not be negative,
// and for capacity-enforcing products may not drop below what is reserved.
func (s StockLevel) Adjust(productID string, delta int64) (StockLevel, error) {
	if delta == 0 {
		return s, ErrInvalidQuantity
	}
	next := s.StockQuantity + delta
	if next < 0 || (s.enforcesCapacity() && next < s.ReservedQuantity) {
		return s, s.stockError(productID, OpAdjust, -delta, ErrInsufficientStock)
	}
	s.StockQuantity = next
	return s, nil
}

// Reserve holds qty units. Capacity is only checked for tracked products without
// backorders.
func (s StockLevel) Reserve(productID string, qty int64) (StockLevel, error) {
	if qty <= 0 {
		return s, ErrInvalidQuantity
	}
	if s.enforcesCapacity() && s.Available() < qty {
		return s, s.stockError(productID, OpReserve, qty, ErrInsufficientStock)
	}
	s.ReservedQuantity += qty
	return s, nil
}

// Release drops a hold. Releasing more than is reserved signals a logic error and
// leaves the level unchanged.
func (s StockLevel) Release(productID string, qty int64) (StockLevel, error) {
	if qty <= 0 {
		return s, ErrInvalidQuantity
	}
	if qty > s.ReservedQuantity {
		return s, s.stockError(productID, OpRelease, qty, ErrInvariantViolation)
	}
	s.ReservedQuantity -= qty
	return s, nil
}

// Commit turns a hold into a permanent decrement of stock and reserved.
// Untracked products only drop the hold. A backordered hold cannot be committed
// until enough stock has arrived.
func (s StockLevel) Commit(productID string, qty int64) (StockLevel, error) {
	if qty <= 0 {
		return s, ErrInvalidQuantity
	}
	if qty > s.ReservedQuantity {
		return s, s.stockError(productID, OpCommit, qty, ErrInvariantViolation)
	}
	if !s.TrackInventory {
		s.ReservedQuantity -= qty
		return s, nil
	}
	if s.StockQuantity < qty {
		return s, s.stockError(productID, OpCommit, qty, ErrInsufficientStock)
	}
	s.StockQuantity -= qty
	s.ReservedQuantity -= qty
	return s, nil
}

// WithPolicy returns the level with new policy flags, rejecting a change that would
// leave existing reservations above stock.
func (s StockLevel) WithPolicy(threshold int64, track, backorders bool) (StockLevel, error) {
	if threshold < 0 {
		return s, ErrInvalidThreshold
	}
	next := s
	next.LowStockThreshold = threshold
	next.TrackInventory = track
	next.AllowBackorders = backorders
	if next.enforcesCapacity() && next.ReservedQuantity > next.StockQuantity {
		return s, ErrStockPolicyConflict
	}
	return next, nil
}

// Apply dispatches a named operation; used by batch ledger paths.
func (s StockLevel) Apply(productID, op string, qty int64) (StockLevel, error) {
	switch op {
	case OpReserve:
		return s.Reserve(productID, qty)
	case OpRelease:
		return s.Release(productID, qty)
	case OpCommit:
		return s.Commit(productID, qty)
	case OpAdjust:
		return s.Adjust(productID, qty)
	default:
		return s, ErrInvariantViolation
	}
}

func (s StockLevel) stockError(productID, op string, requested int64, err error) *StockError {
	return &StockError{
		ProductID: productID,
		Op:        op,
		Requested: requested,
		Available: s.Available(),
		Reserved:  s.ReservedQuantity,
		Err:       err,
	}
}

// LineQuantity pairs a product with a quantity for batch ledger operations.
type LineQuantity struct {
	ProductID string
	Quantity  int64
}

// StockMovement is one entry of a product's stock adjustment history.
type StockMovement struct {
	ID            string
	ProductID     string
	Delta         int64
	Reason        string
	StockAfter    int64
	ReservedAfter int64
	CreatedBy     *string
	CreatedAt     time.Time
}
