package domain

import (
	"strings"
	"time"
)

// Field names for change tracking. Stock columns are owned by the ledger and never
// written through the product aggregate after creation.
const (
	FieldName           = "name"
	FieldCategory       = "category_id"
	FieldPrice          = "price"
	FieldCompareAtPrice = "compare_at_price"
	FieldCostPrice      = "cost_price"
	FieldAvailability   = "availability_window"
	FieldIsActive       = "is_active"
)

// NewProductParams carries the validated inputs of a product creation.
// Callers apply catalog defaults (threshold 10, tracked, no backorders).
type NewProductParams struct {
	SKU               string
	Name              string
	CategoryID        *string
	Price             *Money
	CompareAtPrice    *Money
	CostPrice         *Money
	StockQuantity     int64
	LowStockThreshold int64
	TrackInventory    bool
	AllowBackorders   bool
	AvailableFrom     *time.Time
	AvailableUntil    *time.Time
}

// ProductState is the full persisted state of a product, used by stores to
// reconstruct and copy aggregates.
type ProductState struct {
	Audit          Audit
	SKU            string
	Name           string
	CategoryID     *string
	Price          *Money
	CompareAtPrice *Money
	CostPrice      *Money
	Stock          StockLevel
	AvailableFrom  *time.Time
	AvailableUntil *time.Time
	Version        int64
}

// Product is the aggregate root for a sellable catalog item.
// It owns pricing, descriptive data, the sales window and soft-delete state.
// Stock quantities are carried for reads and derivation but mutated only by the
// stock ledger.
type Product struct {
	audit          Audit
	sku            string
	name           string
	categoryID     *string
	price          *Money
	compareAtPrice *Money
	costPrice      *Money
	stock          StockLevel
	availableFrom  *time.Time
	availableUntil *time.Time
	version        int64

	// Change tracking for optimized repository updates
	changes *ChangeTracker

	// Domain events to be published
	events []DomainEvent
}

// NewProduct creates a new Product aggregate. audit comes from Stamper.Create.
func NewProduct(params NewProductParams, audit Audit) (*Product, error) {
	sku := strings.TrimSpace(params.SKU)
	if sku == "" {
		return nil, ErrEmptySKU
	}
	if strings.TrimSpace(params.Name) == "" {
		return nil, ErrEmptyName
	}
	if err := validatePricing(params.Price, params.CompareAtPrice, params.CostPrice); err != nil {
		return nil, err
	}
	if err := validateWindow(params.AvailableFrom, params.AvailableUntil); err != nil {
		return nil, err
	}

	stock := StockLevel{
		StockQuantity:     params.StockQuantity,
		LowStockThreshold: params.LowStockThreshold,
		TrackInventory:    params.TrackInventory,
		AllowBackorders:   params.AllowBackorders,
	}
	if err := stock.Validate(); err != nil {
		return nil, err
	}

	p := &Product{
		audit:          audit,
		sku:            sku,
		name:           params.Name,
		categoryID:     copyRef(params.CategoryID),
		price:          params.Price.Copy(),
		compareAtPrice: params.CompareAtPrice.Copy(),
		costPrice:      params.CostPrice.Copy(),
		stock:          stock,
		availableFrom:  copyTime(params.AvailableFrom),
		availableUntil: copyTime(params.AvailableUntil),
		changes:        NewChangeTracker(),
		events:         make([]DomainEvent, 0),
	}

	p.changes.MarkDirty(FieldName, FieldCategory, FieldPrice, FieldCompareAtPrice,
		FieldCostPrice, FieldAvailability, FieldIsActive)

	p.recordEvent(&ProductCreatedEvent{
		ProductID:     p.audit.ID,
		SKU:           p.sku,
		Name:          p.name,
		Price:         p.price.String(),
		StockQuantity: p.stock.StockQuantity,
		CreatedBy:     copyRef(p.audit.CreatedBy),
		CreatedAt:     p.audit.CreatedAt,
	})

	return p, nil
}

// ReconstructProduct rebuilds a Product from stored state with a clean change set.
func ReconstructProduct(s ProductState) *Product {
	return &Product{
		audit:          s.Audit,
		sku:            s.SKU,
		name:           s.Name,
		categoryID:     copyRef(s.CategoryID),
		price:          s.Price.Copy(),
		compareAtPrice: s.CompareAtPrice.Copy(),
		costPrice:      s.CostPrice.Copy(),
		stock:          s.Stock,
		availableFrom:  copyTime(s.AvailableFrom),
		availableUntil: copyTime(s.AvailableUntil),
		version:        s.Version,
		changes:        NewChangeTracker(),
		events:         make([]DomainEvent, 0),
	}
}

// State returns a deep copy of the aggregate's state.
func (p *Product) State() ProductState {
	a := p.audit
	a.CreatedBy = copyRef(a.CreatedBy)
	a.UpdatedBy = copyRef(a.UpdatedBy)
	return ProductState{
		Audit:          a,
		SKU:            p.sku,
		Name:           p.name,
		CategoryID:     copyRef(p.categoryID),
		Price:          p.price.Copy(),
		CompareAtPrice: p.compareAtPrice.Copy(),
		CostPrice:      p.costPrice.Copy(),
		Stock:          p.stock,
		AvailableFrom:  copyTime(p.availableFrom),
		AvailableUntil: copyTime(p.availableUntil),
		Version:        p.version,
	}
}

// Getters
func (p *Product) ID() string                  { return p.audit.ID }
func (p *Product) Audit() Audit                { return p.audit }
func (p *Product) SKU() string                 { return p.sku }
func (p *Product) Name() string                { return p.name }
func (p *Product) CategoryID() *string         { return copyRef(p.categoryID) }
func (p *Product) Price() *Money               { return p.price.Copy() }
func (p *Product) CompareAtPrice() *Money      { return p.compareAtPrice.Copy() }
func (p *Product) CostPrice() *Money           { return p.costPrice.Copy() }
func (p *Product) Stock() StockLevel           { return p.stock }
func (p *Product) AvailableFrom() *time.Time   { return copyTime(p.availableFrom) }
func (p *Product) AvailableUntil() *time.Time  { return copyTime(p.availableUntil) }
func (p *Product) Version() int64              { return p.version }
func (p *Product) IsActive() bool              { return p.audit.IsActive }
func (p *Product) Changes() *ChangeTracker     { return p.changes }
func (p *Product) DomainEvents() []DomainEvent { return p.events }

// Snapshot returns the inputs of derived-field computation.
func (p *Product) Snapshot() ProductSnapshot {
	return ProductSnapshot{
		Price:          p.price,
		CompareAtPrice: p.compareAtPrice,
		CostPrice:      p.costPrice,
		Stock:          p.stock,
	}
}

// Derived computes stock status and price ratios from current state.
func (p *Product) Derived() DerivedFields {
	return Derive(p.Snapshot())
}

// IsOnSaleAt reports whether t falls inside the product's sales window.
// Open ends are unbounded.
func (p *Product) IsOnSaleAt(t time.Time) bool {
	if p.availableFrom != nil && t.Before(*p.availableFrom) {
		return false
	}
	if p.availableUntil != nil && !t.Before(*p.availableUntil) {
		return false
	}
	return true
}

// UpdatePricing replaces price, compare-at price and cost price together.
// A nil compare-at or cost price clears it.
func (p *Product) UpdatePricing(price, compareAt, cost *Money, st Stamp) error {
	if err := p.checkNotArchived(); err != nil {
		return err
	}
	if err := validatePricing(price, compareAt, cost); err != nil {
		return err
	}

	oldPrice := p.price
	p.price = price.Copy()
	p.compareAtPrice = compareAt.Copy()
	p.costPrice = cost.Copy()
	st.Apply(&p.audit)
	p.changes.MarkDirty(FieldPrice, FieldCompareAtPrice, FieldCostPrice)

	p.recordEvent(&ProductPricingChangedEvent{
		ProductID:      p.audit.ID,
		OldPrice:       oldPrice.String(),
		Price:          p.price.String(),
		CompareAtPrice: moneyRef(p.compareAtPrice),
		CostPrice:      moneyRef(p.costPrice),
		UpdatedBy:      copyRef(st.By),
		ChangedAt:      p.audit.UpdatedAt,
	})
	return nil
}

// Rename updates the product name.
func (p *Product) Rename(name string, st Stamp) error {
	if err := p.checkNotArchived(); err != nil {
		return err
	}
	if strings.TrimSpace(name) == "" {
		return ErrEmptyName
	}

	p.name = name
	st.Apply(&p.audit)
	p.changes.MarkDirty(FieldName)
	p.recordUpdated(st)
	return nil
}

// SetCategory moves the product to another category, or none when categoryID is nil.
func (p *Product) SetCategory(categoryID *string, st Stamp) error {
	if err := p.checkNotArchived(); err != nil {
		return err
	}

	p.categoryID = copyRef(categoryID)
	st.Apply(&p.audit)
	p.changes.MarkDirty(FieldCategory)
	p.recordUpdated(st)
	return nil
}

// SetAvailabilityWindow replaces the sales window.
func (p *Product) SetAvailabilityWindow(from, until *time.Time, st Stamp) error {
	if err := p.checkNotArchived(); err != nil {
		return err
	}
	if err := validateWindow(from, until); err != nil {
		return err
	}

	p.availableFrom = copyTime(from)
	p.availableUntil = copyTime(until)
	st.Apply(&p.audit)
	p.changes.MarkDirty(FieldAvailability)
	p.recordUpdated(st)
	return nil
}

// Archive soft deletes the product. Historical orders keep referencing it.
func (p *Product) Archive(st Stamp) error {
	if !p.audit.IsActive {
		return ErrAlreadyArchived
	}

	p.audit.IsActive = false
	st.Apply(&p.audit)
	p.changes.MarkDirty(FieldIsActive)

	p.recordEvent(&ProductArchivedEvent{
		ProductID:  p.audit.ID,
		ArchivedBy: copyRef(st.By),
		ArchivedAt: p.audit.UpdatedAt,
	})
	return nil
}

// Restore reactivates a soft-deleted product.
func (p *Product) Restore(st Stamp) error {
	if p.audit.IsActive {
		return ErrNotArchived
	}

	p.audit.IsActive = true
	st.Apply(&p.audit)
	p.changes.MarkDirty(FieldIsActive)

	p.recordEvent(&ProductRestoredEvent{
		ProductID:  p.audit.ID,
		RestoredBy: copyRef(st.By),
		RestoredAt: p.audit.UpdatedAt,
	})
	return nil
}

// checkNotArchived returns an error if the product is soft deleted.
func (p *Product) checkNotArchived() error {
	if !p.audit.IsActive {
		return ErrCannotModifyArchived
	}
	return nil
}

func (p *Product) recordUpdated(st Stamp) {
	p.recordEvent(&ProductUpdatedEvent{
		ProductID:  p.audit.ID,
		Name:       p.name,
		CategoryID: copyRef(p.categoryID),
		UpdatedBy:  copyRef(st.By),
		UpdatedAt:  p.audit.UpdatedAt,
	})
}

// recordEvent adds a domain event to the list of events.
func (p *Product) recordEvent(event DomainEvent) {
	p.events = append(p.events, event)
}

// ClearEvents clears all recorded domain events (called after publishing).
func (p *Product) ClearEvents() {
	p.events = make([]DomainEvent, 0)
}

// MarkPersisted clears change tracking and events after a successful save.
func (p *Product) MarkPersisted() {
	p.changes.Reset()
	p.ClearEvents()
}

func validatePricing(price, compareAt, cost *Money) error {
	if price == nil || !price.IsPositive() {
		return ErrInvalidPrice
	}
	if compareAt != nil && compareAt.LessThan(price) {
		return ErrInvalidCompareAtPrice
	}
	if cost != nil && cost.IsNegative() {
		return ErrInvalidCostPrice
	}
	return nil
}

func validateWindow(from, until *time.Time) error {
	if from != nil && until != nil && !from.Before(*until) {
		return ErrInvalidAvailabilityWindow
	}
	return nil
}

func moneyRef(m *Money) *string {
	if m == nil {
		return nil
	}
	s := m.String()
	return &s
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
