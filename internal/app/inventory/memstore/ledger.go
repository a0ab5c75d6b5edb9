package memstore

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/light-bringer/inventory-service/internal/app/inventory/contracts"
	"github.com/light-bringer/inventory-service/internal/app/inventory/domain"
)

// Ledger implements contracts.StockLedger with per-product locks.
type Ledger struct {
	s *Store
}

var _ contracts.StockLedger = (*Ledger)(nil)

type levelFunc func(domain.ProductState) (domain.StockLevel, error)

// mutate runs fn on the product under its key lock, stamps the row and stores
// the result. after, when set, runs before the lock is released.
func (l *Ledger) mutate(ctx context.Context, productID string, fn levelFunc, after func(domain.ProductState, domain.Stamp)) (domain.ProductState, error) {
	unlock, err := l.s.lock(ctx, productKey(productID))
	if err != nil {
		return domain.ProductState{}, err
	}
	defer unlock()

	st, ok := l.s.product(productID)
	if !ok {
		return domain.ProductState{}, domain.ErrProductNotFound
	}
	next, err := fn(st)
	if err != nil {
		return domain.ProductState{}, err
	}
	stamp := l.s.stamper.Stamp(ctx)
	st.Stock = next
	st.Version++
	stamp.Apply(&st.Audit)
	l.s.putProduct(st)

	if after != nil {
		after(st, stamp)
	}
	return st, nil
}

// Adjust changes stock on hand and records the movement.
func (l *Ledger) Adjust(ctx context.Context, productID string, delta int64, reason string) (domain.StockLevel, error) {
	st, err := l.mutate(ctx, productID, func(st domain.ProductState) (domain.StockLevel, error) {
		return st.Stock.Adjust(productID, delta)
	}, func(st domain.ProductState, stamp domain.Stamp) {
		mv := domain.StockMovement{
			ID:            uuid.New().String(),
			ProductID:     productID,
			Delta:         delta,
			Reason:        reason,
			StockAfter:    st.Stock.StockQuantity,
			ReservedAfter: st.Stock.ReservedQuantity,
			CreatedBy:     stamp.By,
			CreatedAt:     stamp.At,
		}
		l.s.mu.Lock()
		l.s.movements[productID] = append(l.s.movements[productID], mv)
		l.s.mu.Unlock()
	})
	return st.Stock, err
}

// Reserve refuses archived products; the check runs under the product lock so
// it cannot interleave with an archive.
func (l *Ledger) Reserve(ctx context.Context, productID string, qty int64) (domain.StockLevel, error) {
	st, err := l.mutate(ctx, productID, func(st domain.ProductState) (domain.StockLevel, error) {
		if !st.Audit.IsActive {
			return domain.StockLevel{}, fmt.Errorf("%w: %s is archived", domain.ErrProductNotPurchasable, productID)
		}
		return st.Stock.Apply(productID, domain.OpReserve, qty)
	}, nil)
	return st.Stock, err
}

func (l *Ledger) Release(ctx context.Context, productID string, qty int64) (domain.StockLevel, error) {
	return l.apply(ctx, productID, domain.OpRelease, qty)
}

func (l *Ledger) Commit(ctx context.Context, productID string, qty int64) (domain.StockLevel, error) {
	return l.apply(ctx, productID, domain.OpCommit, qty)
}

func (l *Ledger) apply(ctx context.Context, productID, op string, qty int64) (domain.StockLevel, error) {
	st, err := l.mutate(ctx, productID, func(st domain.ProductState) (domain.StockLevel, error) {
		return st.Stock.Apply(productID, op, qty)
	}, nil)
	return st.Stock, err
}

// SetPolicy changes the product's stock policy flags.
func (l *Ledger) SetPolicy(ctx context.Context, productID string, threshold int64, track, backorders bool) (domain.StockLevel, error) {
	st, err := l.mutate(ctx, productID, func(st domain.ProductState) (domain.StockLevel, error) {
		return st.Stock.WithPolicy(threshold, track, backorders)
	}, nil)
	return st.Stock, err
}

func (l *Ledger) CommitBatch(ctx context.Context, lines []domain.LineQuantity) (map[string]domain.StockLevel, error) {
	return l.batch(ctx, domain.OpCommit, lines)
}

func (l *Ledger) ReleaseBatch(ctx context.Context, lines []domain.LineQuantity) (map[string]domain.StockLevel, error) {
	return l.batch(ctx, domain.OpRelease, lines)
}

// batch locks every product in id order, computes all new levels, and stores
// them only when every line succeeded.
func (l *Ledger) batch(ctx context.Context, op string, lines []domain.LineQuantity) (map[string]domain.StockLevel, error) {
	unlock, err := l.s.locks.LockAll(ctx, productKeys(lines))
	if err != nil {
		return nil, err
	}
	defer unlock()

	work, err := l.s.applyLines(op, lines)
	if err != nil {
		return nil, err
	}
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	return l.s.putLevels(work, l.s.stamper.Stamp(ctx)), nil
}

func productKeys(lines []domain.LineQuantity) []string {
	keys := make([]string, len(lines))
	for i, line := range lines {
		keys[i] = productKey(line.ProductID)
	}
	return keys
}

// applyLines computes the state of every touched product after op. The caller
// holds the product key locks.
func (s *Store) applyLines(op string, lines []domain.LineQuantity) (map[string]domain.ProductState, error) {
	work := make(map[string]domain.ProductState, len(lines))
	for _, line := range lines {
		st, ok := work[line.ProductID]
		if !ok {
			if st, ok = s.product(line.ProductID); !ok {
				return nil, domain.ErrProductNotFound
			}
		}
		next, err := st.Stock.Apply(line.ProductID, op, line.Quantity)
		if err != nil {
			return nil, err
		}
		st.Stock = next
		work[line.ProductID] = st
	}
	return work, nil
}

// putLevels stores work stamped and one version on. The caller holds s.mu.
func (s *Store) putLevels(work map[string]domain.ProductState, stamp domain.Stamp) map[string]domain.StockLevel {
	levels := make(map[string]domain.StockLevel, len(work))
	for id, st := range work {
		st.Version++
		stamp.Apply(&st.Audit)
		s.products[id] = st
		levels[id] = st.Stock
	}
	return levels
}

// Level returns the current stock level of a product.
func (l *Ledger) Level(_ context.Context, productID string) (domain.StockLevel, error) {
	st, ok := l.s.product(productID)
	if !ok {
		return domain.StockLevel{}, domain.ErrProductNotFound
	}
	return st.Stock, nil
}
