package http

import (
	"time"

	"github.com/light-bringer/inventory-service/internal/app/inventory/contracts"
	"github.com/light-bringer/inventory-service/internal/app/inventory/domain"
	"github.com/light-bringer/inventory-service/internal/app/inventory/queries/check_availability"
)

// Product represents a product in HTTP responses.
type Product struct {
	ProductID          string     `json:"product_id"`
	SKU                string     `json:"sku"`
	Name               string     `json:"name"`
	CategoryID         *string    `json:"category_id"`
	Price              string     `json:"price"`
	CompareAtPrice     *string    `json:"compare_at_price"`
	CostPrice          *string    `json:"cost_price"`
	StockQuantity      int64      `json:"stock_quantity"`
	ReservedQuantity   int64      `json:"reserved_quantity"`
	AvailableQuantity  int64      `json:"available_quantity"`
	LowStockThreshold  int64      `json:"low_stock_threshold"`
	TrackInventory     bool       `json:"track_inventory"`
	AllowBackorders    bool       `json:"allow_backorders"`
	IsInStock          bool       `json:"is_in_stock"`
	IsLowStock         bool       `json:"is_low_stock"`
	DiscountPercentage string     `json:"discount_percentage"`
	ProfitMargin       *string    `json:"profit_margin"`
	MarkupPercentage   *string    `json:"markup_percentage"`
	AvailableFrom      *time.Time `json:"available_from"`
	AvailableUntil     *time.Time `json:"available_until"`
	IsActive           bool       `json:"is_active"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
	CreatedBy          *string    `json:"created_by"`
	UpdatedBy          *string    `json:"updated_by"`
	Version            int64      `json:"version"`
}

func toProduct(d *contracts.ProductDTO) Product {
	return Product{
		ProductID:          d.ProductID,
		SKU:                d.SKU,
		Name:               d.Name,
		CategoryID:         d.CategoryID,
		Price:              d.Price,
		CompareAtPrice:     d.CompareAtPrice,
		CostPrice:          d.CostPrice,
		StockQuantity:      d.StockQuantity,
		ReservedQuantity:   d.ReservedQuantity,
		AvailableQuantity:  d.AvailableQuantity,
		LowStockThreshold:  d.LowStockThreshold,
		TrackInventory:     d.TrackInventory,
		AllowBackorders:    d.AllowBackorders,
		IsInStock:          d.IsInStock,
		IsLowStock:         d.IsLowStock,
		DiscountPercentage: d.DiscountPercentage,
		ProfitMargin:       d.ProfitMargin,
		MarkupPercentage:   d.MarkupPercentage,
		AvailableFrom:      d.AvailableFrom,
		AvailableUntil:     d.AvailableUntil,
		IsActive:           d.IsActive,
		CreatedAt:          d.CreatedAt,
		UpdatedAt:          d.UpdatedAt,
		CreatedBy:          d.CreatedBy,
		UpdatedBy:          d.UpdatedBy,
		Version:            d.Version,
	}
}

// ListProductsResponse is one page of products.
type ListProductsResponse struct {
	Products      []Product `json:"products"`
	NextPageToken string    `json:"next_page_token,omitempty"`
}

// StockLevel is the ledger state returned by stock endpoints.
type StockLevel struct {
	ProductID         string `json:"product_id"`
	StockQuantity     int64  `json:"stock_quantity"`
	ReservedQuantity  int64  `json:"reserved_quantity"`
	AvailableQuantity int64  `json:"available_quantity"`
	LowStockThreshold int64  `json:"low_stock_threshold"`
	TrackInventory    bool   `json:"track_inventory"`
	AllowBackorders   bool   `json:"allow_backorders"`
	IsInStock         bool   `json:"is_in_stock"`
	IsLowStock        bool   `json:"is_low_stock"`
}

func toStockLevel(productID string, l domain.StockLevel) StockLevel {
	return StockLevel{
		ProductID:         productID,
		StockQuantity:     l.StockQuantity,
		ReservedQuantity:  l.ReservedQuantity,
		AvailableQuantity: l.Available(),
		LowStockThreshold: l.LowStockThreshold,
		TrackInventory:    l.TrackInventory,
		AllowBackorders:   l.AllowBackorders,
		IsInStock:         l.IsInStock(),
		IsLowStock:        l.IsLowStock(),
	}
}

// Movement is one stock adjustment history entry.
type Movement struct {
	MovementID    string    `json:"movement_id"`
	Delta         int64     `json:"delta"`
	Reason        string    `json:"reason"`
	StockAfter    int64     `json:"stock_after"`
	ReservedAfter int64     `json:"reserved_after"`
	CreatedBy     *string   `json:"created_by"`
	CreatedAt     time.Time `json:"created_at"`
}

func toMovements(ms []domain.StockMovement) []Movement {
	out := make([]Movement, 0, len(ms))
	for _, m := range ms {
		out = append(out, Movement{
			MovementID:    m.ID,
			Delta:         m.Delta,
			Reason:        m.Reason,
			StockAfter:    m.StockAfter,
			ReservedAfter: m.ReservedAfter,
			CreatedBy:     m.CreatedBy,
			CreatedAt:     m.CreatedAt,
		})
	}
	return out
}

// OrderLine represents an order line in HTTP responses.
type OrderLine struct {
	ProductID         string  `json:"product_id"`
	Quantity          int64   `json:"quantity"`
	UnitPrice         *string `json:"unit_price"`
	ReservationStatus *string `json:"reservation_status,omitempty"`
}

// Order represents an order in HTTP responses.
type Order struct {
	OrderID       string      `json:"order_id"`
	OrderNumber   string      `json:"order_number"`
	Status        string      `json:"status"`
	Lines         []OrderLine `json:"lines"`
	Total         string      `json:"total"`
	FailureReason string      `json:"failure_reason,omitempty"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
	CreatedBy     *string     `json:"created_by"`
	UpdatedBy     *string     `json:"updated_by"`
	Version       int64       `json:"version"`
}

func toOrder(d *contracts.OrderDTO) Order {
	lines := make([]OrderLine, 0, len(d.Lines))
	for _, l := range d.Lines {
		lines = append(lines, OrderLine(l))
	}
	return Order{
		OrderID:       d.OrderID,
		OrderNumber:   d.OrderNumber,
		Status:        d.Status,
		Lines:         lines,
		Total:         d.Total,
		FailureReason: d.FailureReason,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
		CreatedBy:     d.CreatedBy,
		UpdatedBy:     d.UpdatedBy,
		Version:       d.Version,
	}
}

// AvailabilityLine is the availability of one requested line.
type AvailabilityLine struct {
	ProductID   string `json:"product_id"`
	Requested   int64  `json:"requested"`
	Available   int64  `json:"available"`
	IsAvailable bool   `json:"is_available"`
	Reason      string `json:"reason,omitempty"`
}

// AvailabilityResponse reports availability without reserving.
type AvailabilityResponse struct {
	Lines        []AvailabilityLine `json:"lines"`
	AllAvailable bool               `json:"all_available"`
}

func toAvailability(r *check_availability.Result) AvailabilityResponse {
	lines := make([]AvailabilityLine, 0, len(r.Lines))
	for _, l := range r.Lines {
		lines = append(lines, AvailabilityLine(l))
	}
	return AvailabilityResponse{Lines: lines, AllAvailable: r.AllAvailable}
}

// Event represents a domain event in the HTTP response.
type Event struct {
	EventID      string  `json:"event_id"`
	EventType    string  `json:"event_type"`
	AggregateID  string  `json:"aggregate_id"`
	Payload      string  `json:"payload"`
	Status       string  `json:"status"`
	RetryCount   int64   `json:"retry_count"`
	ErrorMessage string  `json:"error_message,omitempty"`
	CreatedAt    string  `json:"created_at"`
	ProcessedAt  *string `json:"processed_at,omitempty"`
}

// ListEventsResponse represents the HTTP response for listing events.
type ListEventsResponse struct {
	Events     []Event `json:"events"`
	TotalCount int64   `json:"total_count"`
}

func toEvents(events []*contracts.OutboxEvent) ListEventsResponse {
	out := make([]Event, 0, len(events))
	for _, e := range events {
		ev := Event{
			EventID:      e.EventID,
			EventType:    e.EventType,
			AggregateID:  e.AggregateID,
			Payload:      e.Payload,
			Status:       e.Status,
			RetryCount:   e.RetryCount,
			ErrorMessage: e.ErrorMessage,
			CreatedAt:    e.CreatedAt.Format(time.RFC3339),
		}
		if e.ProcessedAt != nil {
			processedAt := e.ProcessedAt.Format(time.RFC3339)
			ev.ProcessedAt = &processedAt
		}
		out = append(out, ev)
	}
	return ListEventsResponse{Events: out, TotalCount: int64(len(out))}
}
