// Package memstore is the in-process implementation of the inventory contracts.
//
// Read-modify-write sequences on one product or order are serialized by a
// context-aware per-key lock. The map mutex only guards map access and is never
// held while waiting on a key.
package memstore

import (
	"context"
	"fmt"
	"sync"

	"github.com/light-bringer/inventory-service/internal/app/inventory/contracts"
	"github.com/light-bringer/inventory-service/internal/app/inventory/domain"
	"github.com/light-bringer/inventory-service/internal/pkg/clock"
	"github.com/light-bringer/inventory-service/internal/pkg/keylock"
)

// Store holds all inventory state in memory.
type Store struct {
	mu         sync.RWMutex
	products   map[string]domain.ProductState
	skus       map[string]string
	orders     map[string]domain.OrderState
	numbers    map[string]string
	categories map[string]domain.CategoryState
	movements  map[string][]domain.StockMovement
	outbox     []*contracts.OutboxEvent

	locks   *keylock.Locker
	clock   clock.Clock
	stamper *domain.Stamper
}

// New creates an empty Store.
func New(clk clock.Clock) *Store {
	return &Store{
		products:   make(map[string]domain.ProductState),
		skus:       make(map[string]string),
		orders:     make(map[string]domain.OrderState),
		numbers:    make(map[string]string),
		categories: make(map[string]domain.CategoryState),
		movements:  make(map[string][]domain.StockMovement),
		locks:      keylock.New(),
		clock:      clk,
		stamper:    domain.NewStamper(clk),
	}
}

// Products returns the product store backed by s.
func (s *Store) Products() *ProductStore { return &ProductStore{s: s} }

// Ledger returns the stock ledger backed by s.
func (s *Store) Ledger() *Ledger { return &Ledger{s: s} }

// Orders returns the order repository backed by s.
func (s *Store) Orders() *OrderRepo { return &OrderRepo{s: s} }

// Categories returns the category repository backed by s.
func (s *Store) Categories() *CategoryRepo { return &CategoryRepo{s: s} }

// Outbox returns the outbox repository backed by s.
func (s *Store) Outbox() *OutboxRepo { return &OutboxRepo{s: s} }

// Movements returns the stock movement history backed by s.
func (s *Store) Movements() *MovementRepo { return &MovementRepo{s: s} }

func productKey(id string) string  { return "product:" + id }
func orderKey(id string) string    { return "order:" + id }
func categoryKey(id string) string { return "category:" + id }

func (s *Store) lock(ctx context.Context, key string) (func(), error) {
	unlock, err := s.locks.Lock(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("acquire %s: %w", key, err)
	}
	return unlock, nil
}

func (s *Store) product(id string) (domain.ProductState, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.products[id]
	return st, ok
}

func (s *Store) putProduct(st domain.ProductState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products[st.Audit.ID] = st
}

// appendEvents enriches and queues aggregate events in the outbox.
func (s *Store) appendEvents(events []domain.DomainEvent) error {
	if len(events) == 0 {
		return nil
	}
	now := s.clock.Now()
	enriched := make([]*contracts.OutboxEvent, 0, len(events))
	for _, ev := range events {
		oe, err := contracts.EnrichEvent(ev, now)
		if err != nil {
			return err
		}
		enriched = append(enriched, oe)
	}
	s.mu.Lock()
	s.outbox = append(s.outbox, enriched...)
	s.mu.Unlock()
	return nil
}
