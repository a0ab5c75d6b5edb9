package repo

import (
	"encoding/json"
	"fmt"
	"math/big"
	"time"

	"cloud.google.com/go/spanner"

	"github.com/light-bringer/inventory-service/internal/app/inventory/contracts"
	"github.com/light-bringer/inventory-service/internal/app/inventory/domain"
	"github.com/light-bringer/inventory-service/internal/models/m_category"
	"github.com/light-bringer/inventory-service/internal/models/m_order"
	"github.com/light-bringer/inventory-service/internal/models/m_order_line"
	"github.com/light-bringer/inventory-service/internal/models/m_outbox"
	"github.com/light-bringer/inventory-service/internal/models/m_product"
	"github.com/light-bringer/inventory-service/internal/models/m_reservation"
	"github.com/light-bringer/inventory-service/internal/models/m_stock_movement"
)

func nullString(s *string) spanner.NullString {
	if s == nil {
		return spanner.NullString{}
	}
	return spanner.NullString{StringVal: *s, Valid: true}
}

func stringPtr(n spanner.NullString) *string {
	if !n.Valid {
		return nil
	}
	s := n.StringVal
	return &s
}

func nullTime(t *time.Time) spanner.NullTime {
	if t == nil {
		return spanner.NullTime{}
	}
	return spanner.NullTime{Time: *t, Valid: true}
}

func timePtr(n spanner.NullTime) *time.Time {
	if !n.Valid {
		return nil
	}
	t := n.Time
	return &t
}

func nullNumeric(m *domain.Money) spanner.NullNumeric {
	if m == nil {
		return spanner.NullNumeric{}
	}
	return spanner.NullNumeric{Numeric: *m.Rat(), Valid: true}
}

func moneyPtr(n spanner.NullNumeric) (*domain.Money, error) {
	if !n.Valid {
		return nil, nil
	}
	return domain.NewMoneyFromRat(&n.Numeric)
}

func productToData(st domain.ProductState) *m_product.Data {
	return &m_product.Data{
		ProductID:         st.Audit.ID,
		SKU:               st.SKU,
		Name:              st.Name,
		CategoryID:        nullString(st.CategoryID),
		Price:             *st.Price.Rat(),
		CompareAtPrice:    nullNumeric(st.CompareAtPrice),
		CostPrice:         nullNumeric(st.CostPrice),
		StockQuantity:     st.Stock.StockQuantity,
		ReservedQuantity:  st.Stock.ReservedQuantity,
		LowStockThreshold: st.Stock.LowStockThreshold,
		TrackInventory:    st.Stock.TrackInventory,
		AllowBackorders:   st.Stock.AllowBackorders,
		AvailableFrom:     nullTime(st.AvailableFrom),
		AvailableUntil:    nullTime(st.AvailableUntil),
		IsActive:          st.Audit.IsActive,
		Version:           st.Version,
		CreatedAt:         st.Audit.CreatedAt,
		UpdatedAt:         st.Audit.UpdatedAt,
		CreatedBy:         nullString(st.Audit.CreatedBy),
		UpdatedBy:         nullString(st.Audit.UpdatedBy),
	}
}

func dataToProduct(data *m_product.Data) (*domain.Product, error) {
	price, err := domain.NewMoneyFromRat(new(big.Rat).Set(&data.Price))
	if err != nil {
		return nil, fmt.Errorf("invalid price: %w", err)
	}
	compareAt, err := moneyPtr(data.CompareAtPrice)
	if err != nil {
		return nil, fmt.Errorf("invalid compare-at price: %w", err)
	}
	cost, err := moneyPtr(data.CostPrice)
	if err != nil {
		return nil, fmt.Errorf("invalid cost price: %w", err)
	}

	return domain.ReconstructProduct(domain.ProductState{
		Audit: domain.Audit{
			ID:        data.ProductID,
			CreatedAt: data.CreatedAt,
			UpdatedAt: data.UpdatedAt,
			CreatedBy: stringPtr(data.CreatedBy),
			UpdatedBy: stringPtr(data.UpdatedBy),
			IsActive:  data.IsActive,
		},
		SKU:            data.SKU,
		Name:           data.Name,
		CategoryID:     stringPtr(data.CategoryID),
		Price:          price,
		CompareAtPrice: compareAt,
		CostPrice:      cost,
		Stock: domain.StockLevel{
			StockQuantity:     data.StockQuantity,
			ReservedQuantity:  data.ReservedQuantity,
			LowStockThreshold: data.LowStockThreshold,
			TrackInventory:    data.TrackInventory,
			AllowBackorders:   data.AllowBackorders,
		},
		AvailableFrom:  timePtr(data.AvailableFrom),
		AvailableUntil: timePtr(data.AvailableUntil),
		Version:        data.Version,
	}), nil
}

func stockToLevel(data *m_product.StockData) domain.StockLevel {
	return domain.StockLevel{
		StockQuantity:     data.StockQuantity,
		ReservedQuantity:  data.ReservedQuantity,
		LowStockThreshold: data.LowStockThreshold,
		TrackInventory:    data.TrackInventory,
		AllowBackorders:   data.AllowBackorders,
	}
}

// nextStock is the row the ledger writes after moving cur to level: one
// version on, stamped with the change's actor and time.
func nextStock(cur *m_product.StockData, level domain.StockLevel, stamp domain.Stamp) *m_product.StockData {
	audit := domain.Audit{CreatedAt: cur.CreatedAt}
	stamp.Apply(&audit)
	return &m_product.StockData{
		StockQuantity:     level.StockQuantity,
		ReservedQuantity:  level.ReservedQuantity,
		LowStockThreshold: level.LowStockThreshold,
		TrackInventory:    level.TrackInventory,
		AllowBackorders:   level.AllowBackorders,
		Version:           cur.Version + 1,
		IsActive:          cur.IsActive,
		CreatedAt:         cur.CreatedAt,
		UpdatedAt:         audit.UpdatedAt,
		UpdatedBy:         nullString(audit.UpdatedBy),
	}
}

func categoryToData(st domain.CategoryState) *m_category.Data {
	return &m_category.Data{
		CategoryID: st.Audit.ID,
		Name:       st.Name,
		ParentID:   nullString(st.ParentID),
		Position:   st.Position,
		IsActive:   st.Audit.IsActive,
		CreatedAt:  st.Audit.CreatedAt,
		UpdatedAt:  st.Audit.UpdatedAt,
		CreatedBy:  nullString(st.Audit.CreatedBy),
		UpdatedBy:  nullString(st.Audit.UpdatedBy),
	}
}

func dataToCategory(data *m_category.Data) *domain.Category {
	return domain.ReconstructCategory(domain.CategoryState{
		Audit: domain.Audit{
			ID:        data.CategoryID,
			CreatedAt: data.CreatedAt,
			UpdatedAt: data.UpdatedAt,
			CreatedBy: stringPtr(data.CreatedBy),
			UpdatedBy: stringPtr(data.UpdatedBy),
			IsActive:  data.IsActive,
		},
		Name:     data.Name,
		ParentID: stringPtr(data.ParentID),
		Position: data.Position,
	})
}

func orderToData(st domain.OrderState) *m_order.Data {
	data := &m_order.Data{
		OrderID:     st.Audit.ID,
		OrderNumber: st.Number,
		Status:      string(st.Status),
		IsActive:    st.Audit.IsActive,
		Version:     st.Version,
		CreatedAt:   st.Audit.CreatedAt,
		UpdatedAt:   st.Audit.UpdatedAt,
		CreatedBy:   nullString(st.Audit.CreatedBy),
		UpdatedBy:   nullString(st.Audit.UpdatedBy),
	}
	if st.FailureReason != "" {
		data.FailureReason = spanner.NullString{StringVal: st.FailureReason, Valid: true}
	}
	return data
}

func lineToData(orderID string, lineNo int, l domain.OrderLine) *m_order_line.Data {
	return &m_order_line.Data{
		OrderID:   orderID,
		LineNo:    int64(lineNo),
		ProductID: l.ProductID,
		Quantity:  l.Quantity,
		UnitPrice: nullNumeric(l.UnitPrice),
	}
}

func reservationToData(r domain.ReservationLine) *m_reservation.Data {
	return &m_reservation.Data{
		OrderID:   r.OrderID,
		ProductID: r.ProductID,
		Quantity:  r.Quantity,
		Status:    string(r.Status),
	}
}

func dataToOrder(data *m_order.Data, lines []*m_order_line.Data, reservations []*m_reservation.Data) (*domain.Order, error) {
	st := domain.OrderState{
		Audit: domain.Audit{
			ID:        data.OrderID,
			CreatedAt: data.CreatedAt,
			UpdatedAt: data.UpdatedAt,
			CreatedBy: stringPtr(data.CreatedBy),
			UpdatedBy: stringPtr(data.UpdatedBy),
			IsActive:  data.IsActive,
		},
		Number:        data.OrderNumber,
		Status:        domain.OrderStatus(data.Status),
		FailureReason: data.FailureReason.StringVal,
		Version:       data.Version,
		Lines:         make([]domain.OrderLine, 0, len(lines)),
		Reservations:  make([]domain.ReservationLine, 0, len(reservations)),
	}
	for _, l := range lines {
		price, err := moneyPtr(l.UnitPrice)
		if err != nil {
			return nil, fmt.Errorf("invalid unit price on line %d: %w", l.LineNo, err)
		}
		st.Lines = append(st.Lines, domain.OrderLine{ProductID: l.ProductID, Quantity: l.Quantity, UnitPrice: price})
	}
	for _, r := range reservations {
		st.Reservations = append(st.Reservations, domain.ReservationLine{
			OrderID:   r.OrderID,
			ProductID: r.ProductID,
			Quantity:  r.Quantity,
			Status:    domain.ReservationStatus(r.Status),
		})
	}
	return domain.ReconstructOrder(st), nil
}

func movementToData(mv domain.StockMovement) *m_stock_movement.Data {
	return &m_stock_movement.Data{
		MovementID:    mv.ID,
		ProductID:     mv.ProductID,
		Delta:         mv.Delta,
		Reason:        mv.Reason,
		StockAfter:    mv.StockAfter,
		ReservedAfter: mv.ReservedAfter,
		CreatedBy:     nullString(mv.CreatedBy),
		CreatedAt:     mv.CreatedAt,
	}
}

func dataToMovement(data *m_stock_movement.Data) domain.StockMovement {
	return domain.StockMovement{
		ID:            data.MovementID,
		ProductID:     data.ProductID,
		Delta:         data.Delta,
		Reason:        data.Reason,
		StockAfter:    data.StockAfter,
		ReservedAfter: data.ReservedAfter,
		CreatedBy:     stringPtr(data.CreatedBy),
		CreatedAt:     data.CreatedAt,
	}
}

func outboxToData(ev *contracts.OutboxEvent) *m_outbox.Data {
	data := &m_outbox.Data{
		EventID:     ev.EventID,
		EventType:   ev.EventType,
		AggregateID: ev.AggregateID,
		Status:      ev.Status,
		RetryCount:  ev.RetryCount,
	}
	if ev.Payload != "" {
		data.Payload = spanner.NullJSON{Value: json.RawMessage(ev.Payload), Valid: true}
	}
	if ev.ErrorMessage != "" {
		data.ErrorMessage = spanner.NullString{StringVal: ev.ErrorMessage, Valid: true}
	}
	return data
}

func dataToOutbox(data *m_outbox.Data) *contracts.OutboxEvent {
	ev := &contracts.OutboxEvent{
		EventID:      data.EventID,
		EventType:    data.EventType,
		AggregateID:  data.AggregateID,
		Status:       data.Status,
		RetryCount:   data.RetryCount,
		ErrorMessage: data.ErrorMessage.StringVal,
		CreatedAt:    data.CreatedAt,
		ProcessedAt:  timePtr(data.ProcessedAt),
	}
	if data.Payload.Valid {
		ev.Payload = data.Payload.String()
	}
	return ev
}
