package contracts

import (
	"time"

	"github.com/light-bringer/inventory-service/internal/app/inventory/domain"
)

// ProductDTO is the read shape of a product: stored fields plus derived fields
// computed at read time. Prices and percentages are decimal strings.
type ProductDTO struct {
	ProductID          string
	SKU                string
	Name               string
	CategoryID         *string
	Price              string
	CompareAtPrice     *string
	CostPrice          *string
	StockQuantity      int64
	ReservedQuantity   int64
	AvailableQuantity  int64
	LowStockThreshold  int64
	TrackInventory     bool
	AllowBackorders    bool
	IsInStock          bool
	IsLowStock         bool
	DiscountPercentage string
	ProfitMargin       *string
	MarkupPercentage   *string
	AvailableFrom      *time.Time
	AvailableUntil     *time.Time
	IsActive           bool
	CreatedAt          time.Time
	UpdatedAt          time.Time
	CreatedBy          *string
	UpdatedBy          *string
	Version            int64
}

// ToProductDTO assembles the read shape, deriving computed fields from p.
func ToProductDTO(p *domain.Product) *ProductDTO {
	d := p.Derived()
	stock := p.Stock()
	audit := p.Audit()

	dto := &ProductDTO{
		ProductID:          p.ID(),
		SKU:                p.SKU(),
		Name:               p.Name(),
		CategoryID:         p.CategoryID(),
		Price:              p.Price().String(),
		CompareAtPrice:     moneyString(p.CompareAtPrice()),
		CostPrice:          moneyString(p.CostPrice()),
		StockQuantity:      stock.StockQuantity,
		ReservedQuantity:   stock.ReservedQuantity,
		AvailableQuantity:  d.AvailableQuantity,
		LowStockThreshold:  stock.LowStockThreshold,
		TrackInventory:     stock.TrackInventory,
		AllowBackorders:    stock.AllowBackorders,
		IsInStock:          d.IsInStock,
		IsLowStock:         d.IsLowStock,
		DiscountPercentage: d.DiscountPercentage.StringFixed(2),
		AvailableFrom:      p.AvailableFrom(),
		AvailableUntil:     p.AvailableUntil(),
		IsActive:           p.IsActive(),
		CreatedAt:          audit.CreatedAt,
		UpdatedAt:          audit.UpdatedAt,
		CreatedBy:          audit.CreatedBy,
		UpdatedBy:          audit.UpdatedBy,
		Version:            p.Version(),
	}
	if d.ProfitMargin != nil {
		s := d.ProfitMargin.StringFixed(2)
		dto.ProfitMargin = &s
	}
	if d.MarkupPercentage != nil {
		s := d.MarkupPercentage.StringFixed(2)
		dto.MarkupPercentage = &s
	}
	return dto
}

func moneyString(m *domain.Money) *string {
	if m == nil {
		return nil
	}
	s := m.String()
	return &s
}

// OrderLineDTO is the read shape of an order line.
type OrderLineDTO struct {
	ProductID         string
	Quantity          int64
	UnitPrice         *string
	ReservationStatus *string
}

// OrderDTO is the read shape of an order.
type OrderDTO struct {
	OrderID       string
	OrderNumber   string
	Status        string
	Lines         []OrderLineDTO
	Total         string
	FailureReason string
	CreatedAt     time.Time
	UpdatedAt     time.Time
	CreatedBy     *string
	UpdatedBy     *string
	Version       int64
}

// ToOrderDTO assembles the read shape of o.
func ToOrderDTO(o *domain.Order) *OrderDTO {
	audit := o.Audit()
	status := make(map[string]string)
	for _, r := range o.Reservations() {
		status[r.ProductID] = string(r.Status)
	}

	lines := make([]OrderLineDTO, 0, len(o.Lines()))
	for _, l := range o.Lines() {
		line := OrderLineDTO{
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			UnitPrice: moneyString(l.UnitPrice),
		}
		if s, ok := status[l.ProductID]; ok {
			line.ReservationStatus = &s
		}
		lines = append(lines, line)
	}

	return &OrderDTO{
		OrderID:       o.ID(),
		OrderNumber:   o.Number(),
		Status:        string(o.Status()),
		Lines:         lines,
		Total:         o.Total().String(),
		FailureReason: o.FailureReason(),
		CreatedAt:     audit.CreatedAt,
		UpdatedAt:     audit.UpdatedAt,
		CreatedBy:     audit.CreatedBy,
		UpdatedBy:     audit.UpdatedBy,
		Version:       o.Version(),
	}
}
