package domain

import "time"

// Event types published through the outbox.
const (
	EventProductCreated        = "product.created"
	EventProductUpdated        = "product.updated"
	EventProductPricingChanged = "product.pricing_changed"
	EventProductArchived       = "product.archived"
	EventProductRestored       = "product.restored"
	EventStockAdjusted         = "product.stock.adjusted"
	EventStockPolicyChanged    = "product.stock.policy_changed"
	EventStockLow              = "product.stock.low"
	EventStockOut              = "product.stock.out"
	EventOrderCreated          = "order.created"
	EventOrderReserved         = "order.reserved"
	EventOrderRejected         = "order.rejected"
	EventOrderFulfilled        = "order.fulfilled"
	EventOrderCancelled        = "order.cancelled"
	EventCategoryCreated       = "category.created"
	EventCategoryDeactivated   = "category.deactivated"
)

// DomainEvent is the base interface for all domain events.
type DomainEvent interface {
	EventType() string
	AggregateID() string
}

// ProductCreatedEvent is emitted when a product is created.
type ProductCreatedEvent struct {
	ProductID     string    `json:"product_id"`
	SKU           string    `json:"sku"`
	Name          string    `json:"name"`
	Price         string    `json:"price"`
	StockQuantity int64     `json:"stock_quantity"`
	CreatedBy     *string   `json:"created_by"`
	CreatedAt     time.Time `json:"created_at"`
}

func (e *ProductCreatedEvent) EventType() string   { return EventProductCreated }
func (e *ProductCreatedEvent) AggregateID() string { return e.ProductID }

// ProductUpdatedEvent is emitted when descriptive product details change.
type ProductUpdatedEvent struct {
	ProductID  string    `json:"product_id"`
	Name       string    `json:"name"`
	CategoryID *string   `json:"category_id"`
	UpdatedBy  *string   `json:"updated_by"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (e *ProductUpdatedEvent) EventType() string   { return EventProductUpdated }
func (e *ProductUpdatedEvent) AggregateID() string { return e.ProductID }

// ProductPricingChangedEvent is emitted when price, compare-at price or cost change.
type ProductPricingChangedEvent struct {
	ProductID      string    `json:"product_id"`
	OldPrice       string    `json:"old_price"`
	Price          string    `json:"price"`
	CompareAtPrice *string   `json:"compare_at_price"`
	CostPrice      *string   `json:"cost_price"`
	UpdatedBy      *string   `json:"updated_by"`
	ChangedAt      time.Time `json:"changed_at"`
}

func (e *ProductPricingChangedEvent) EventType() string   { return EventProductPricingChanged }
func (e *ProductPricingChangedEvent) AggregateID() string { return e.ProductID }

// ProductArchivedEvent is emitted when a product is soft deleted.
type ProductArchivedEvent struct {
	ProductID  string    `json:"product_id"`
	ArchivedBy *string   `json:"archived_by"`
	ArchivedAt time.Time `json:"archived_at"`
}

func (e *ProductArchivedEvent) EventType() string   { return EventProductArchived }
func (e *ProductArchivedEvent) AggregateID() string { return e.ProductID }

// ProductRestoredEvent is emitted when a soft-deleted product is reactivated.
type ProductRestoredEvent struct {
	ProductID  string    `json:"product_id"`
	RestoredBy *string   `json:"restored_by"`
	RestoredAt time.Time `json:"restored_at"`
}

func (e *ProductRestoredEvent) EventType() string   { return EventProductRestored }
func (e *ProductRestoredEvent) AggregateID() string { return e.ProductID }

// StockAdjustedEvent is emitted after a manual stock adjustment.
type StockAdjustedEvent struct {
	ProductID        string    `json:"product_id"`
	Delta            int64     `json:"delta"`
	Reason           string    `json:"reason"`
	StockQuantity    int64     `json:"stock_quantity"`
	ReservedQuantity int64     `json:"reserved_quantity"`
	AdjustedBy       *string   `json:"adjusted_by"`
	AdjustedAt       time.Time `json:"adjusted_at"`
}

func (e *StockAdjustedEvent) EventType() string   { return EventStockAdjusted }
func (e *StockAdjustedEvent) AggregateID() string { return e.ProductID }

// StockPolicyChangedEvent is emitted when threshold, tracking or backorder flags change.
type StockPolicyChangedEvent struct {
	ProductID         string    `json:"product_id"`
	LowStockThreshold int64     `json:"low_stock_threshold"`
	TrackInventory    bool      `json:"track_inventory"`
	AllowBackorders   bool      `json:"allow_backorders"`
	ChangedAt         time.Time `json:"changed_at"`
}

func (e *StockPolicyChangedEvent) EventType() string   { return EventStockPolicyChanged }
func (e *StockPolicyChangedEvent) AggregateID() string { return e.ProductID }

// StockAlertEvent is emitted when a ledger mutation leaves a tracked product low
// or out of stock. Kind is EventStockLow or EventStockOut.
type StockAlertEvent struct {
	Kind              string    `json:"kind"`
	ProductID         string    `json:"product_id"`
	AvailableQuantity int64     `json:"available_quantity"`
	LowStockThreshold int64     `json:"low_stock_threshold"`
	RaisedAt          time.Time `json:"raised_at"`
}

func (e *StockAlertEvent) EventType() string   { return e.Kind }
func (e *StockAlertEvent) AggregateID() string { return e.ProductID }

// NewStockAlert returns the alert matching level, or nil when none is due.
func NewStockAlert(productID string, level StockLevel, at time.Time) *StockAlertEvent {
	var kind string
	switch {
	case level.IsOutOfStock():
		kind = EventStockOut
	case level.IsLowStock():
		kind = EventStockLow
	default:
		return nil
	}
	return &StockAlertEvent{
		Kind:              kind,
		ProductID:         productID,
		AvailableQuantity: level.Available(),
		LowStockThreshold: level.LowStockThreshold,
		RaisedAt:          at,
	}
}

// EventLine is an order line as carried in order events.
type EventLine struct {
	ProductID string `json:"product_id"`
	Quantity  int64  `json:"quantity"`
}

// OrderCreatedEvent is emitted when a draft order is stored.
type OrderCreatedEvent struct {
	OrderID     string      `json:"order_id"`
	OrderNumber string      `json:"order_number"`
	Lines       []EventLine `json:"lines"`
	CreatedBy   *string     `json:"created_by"`
	CreatedAt   time.Time   `json:"created_at"`
}

func (e *OrderCreatedEvent) EventType() string   { return EventOrderCreated }
func (e *OrderCreatedEvent) AggregateID() string { return e.OrderID }

// OrderTransitionEvent is emitted after a successful status transition.
type OrderTransitionEvent struct {
	Type        string      `json:"type"`
	OrderID     string      `json:"order_id"`
	OrderNumber string      `json:"order_number"`
	From        string      `json:"from"`
	To          string      `json:"to"`
	Lines       []EventLine `json:"lines"`
	Actor       *string     `json:"actor"`
	OccurredAt  time.Time   `json:"occurred_at"`
}

func (e *OrderTransitionEvent) EventType() string   { return e.Type }
func (e *OrderTransitionEvent) AggregateID() string { return e.OrderID }

// OrderRejectedEvent is emitted when a submit fails and the order stays DRAFT.
type OrderRejectedEvent struct {
	OrderID    string    `json:"order_id"`
	ProductID  string    `json:"product_id"`
	Reason     string    `json:"reason"`
	RejectedAt time.Time `json:"rejected_at"`
}

func (e *OrderRejectedEvent) EventType() string   { return EventOrderRejected }
func (e *OrderRejectedEvent) AggregateID() string { return e.OrderID }

// CategoryCreatedEvent is emitted when a category is created.
type CategoryCreatedEvent struct {
	CategoryID string    `json:"category_id"`
	Name       string    `json:"name"`
	ParentID   *string   `json:"parent_id"`
	CreatedAt  time.Time `json:"created_at"`
}

func (e *CategoryCreatedEvent) EventType() string   { return EventCategoryCreated }
func (e *CategoryCreatedEvent) AggregateID() string { return e.CategoryID }

// CategoryDeactivatedEvent is emitted when a category is soft deleted.
type CategoryDeactivatedEvent struct {
	CategoryID    string    `json:"category_id"`
	DeactivatedAt time.Time `json:"deactivated_at"`
}

func (e *CategoryDeactivatedEvent) EventType() string   { return EventCategoryDeactivated }
func (e *CategoryDeactivatedEvent) AggregateID() string { return e.CategoryID }
