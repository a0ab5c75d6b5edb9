package memstore

import (
	"context"

	"github.com/light-bringer/inventory-service/internal/app/inventory/contracts"
	"github.com/light-bringer/inventory-service/internal/app/inventory/domain"
)

// OrderRepo implements contracts.OrderRepository in memory.
type OrderRepo struct {
	s *Store
}

var _ contracts.OrderRepository = (*OrderRepo)(nil)

func (r *OrderRepo) Create(_ context.Context, o *domain.Order) error {
	r.s.mu.Lock()
	if _, taken := r.s.numbers[o.Number()]; taken {
		r.s.mu.Unlock()
		return domain.ErrDuplicateOrderNo
	}
	st := o.State()
	st.Version = 1
	r.s.numbers[o.Number()] = o.ID()
	r.s.orders[o.ID()] = st
	r.s.mu.Unlock()

	if err := r.s.appendEvents(o.DomainEvents()); err != nil {
		return err
	}
	o.MarkPersisted(1)
	return nil
}

// Save stores o when the stored version matches o.Version().
func (r *OrderRepo) Save(ctx context.Context, o *domain.Order) error {
	unlock, err := r.s.lock(ctx, orderKey(o.ID()))
	if err != nil {
		return err
	}
	defer unlock()

	r.s.mu.Lock()
	version, err := r.putOrder(o)
	r.s.mu.Unlock()
	if err != nil {
		return err
	}
	return r.persisted(o, version)
}

// Settle saves o and applies op to lines while holding the order key and every
// product key, so either both writes land or neither does.
func (r *OrderRepo) Settle(ctx context.Context, o *domain.Order, op string, lines []domain.LineQuantity) (map[string]domain.StockLevel, error) {
	keys := append(productKeys(lines), orderKey(o.ID()))
	unlock, err := r.s.locks.LockAll(ctx, keys)
	if err != nil {
		return nil, err
	}
	defer unlock()

	work, err := r.s.applyLines(op, lines)
	if err != nil {
		return nil, err
	}

	audit := o.Audit()
	r.s.mu.Lock()
	version, err := r.putOrder(o)
	if err != nil {
		r.s.mu.Unlock()
		return nil, err
	}
	levels := r.s.putLevels(work, domain.Stamp{At: audit.UpdatedAt, By: audit.UpdatedBy})
	r.s.mu.Unlock()

	return levels, r.persisted(o, version)
}

// putOrder checks the stored version and writes o one version on. The caller
// holds s.mu and the order key.
func (r *OrderRepo) putOrder(o *domain.Order) (int64, error) {
	cur, ok := r.s.orders[o.ID()]
	if !ok {
		return 0, domain.ErrOrderNotFound
	}
	if cur.Version != o.Version() {
		return 0, domain.ErrConcurrentModification
	}
	st := o.State()
	st.Version = cur.Version + 1
	r.s.orders[o.ID()] = st
	return st.Version, nil
}

func (r *OrderRepo) persisted(o *domain.Order, version int64) error {
	if err := r.s.appendEvents(o.DomainEvents()); err != nil {
		return err
	}
	o.MarkPersisted(version)
	return nil
}

func (r *OrderRepo) Get(_ context.Context, orderID string) (*domain.Order, error) {
	r.s.mu.RLock()
	st, ok := r.s.orders[orderID]
	r.s.mu.RUnlock()
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	return domain.ReconstructOrder(st), nil
}
