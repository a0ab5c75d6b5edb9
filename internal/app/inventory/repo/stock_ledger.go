package repo

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"cloud.google.com/go/spanner"
	"github.com/google/uuid"
	"google.golang.org/grpc/codes"

	"github.com/light-bringer/inventory-service/internal/app/inventory/contracts"
	"github.com/light-bringer/inventory-service/internal/app/inventory/domain"
	"github.com/light-bringer/inventory-service/internal/models/m_product"
	"github.com/light-bringer/inventory-service/internal/models/m_stock_movement"
	"github.com/light-bringer/inventory-service/internal/pkg/committer"
)

// StockLedger implements contracts.StockLedger on the products table.
//
// Single-product operations read the row, compute the new level and commit it
// guarded by the version column, retrying on conflict within the policy.
// Batches run in one read-write transaction.
type StockLedger struct {
	client    *spanner.Client
	committer *committer.Committer
	products  *m_product.Model
	movements *m_stock_movement.Model
	stamper   *domain.Stamper
	policy    RetryPolicy
}

var _ contracts.StockLedger = (*StockLedger)(nil)

// NewStockLedger creates a new StockLedger.
func NewStockLedger(client *spanner.Client, stamper *domain.Stamper, policy RetryPolicy) *StockLedger {
	return &StockLedger{
		client:    client,
		committer: committer.NewCommitter(client),
		products:  m_product.NewModel(),
		movements: m_stock_movement.NewModel(),
		stamper:   stamper,
		policy:    policy,
	}
}

type levelFunc func(domain.StockLevel) (domain.StockLevel, error)

// rowReader is satisfied by both read-only and read-write transactions.
type rowReader interface {
	ReadRow(ctx context.Context, table string, key spanner.Key, columns []string) (*spanner.Row, error)
}

// Adjust changes stock on hand and records the movement in the same commit.
func (l *StockLedger) Adjust(ctx context.Context, productID string, delta int64, reason string) (domain.StockLevel, error) {
	stamp := l.stamper.Stamp(ctx)
	return l.cas(ctx, productID, stamp, false,
		func(s domain.StockLevel) (domain.StockLevel, error) { return s.Adjust(productID, delta) },
		func(next domain.StockLevel) *spanner.Mutation {
			return l.movements.InsertMut(movementToData(domain.StockMovement{
				ID:            uuid.New().String(),
				ProductID:     productID,
				Delta:         delta,
				Reason:        reason,
				StockAfter:    next.StockQuantity,
				ReservedAfter: next.ReservedQuantity,
				CreatedBy:     stamp.By,
				CreatedAt:     stamp.At,
			}))
		},
	)
}

// Reserve refuses archived products. The commit re-checks is_active, so an
// archive that lands after the read aborts the reservation.
func (l *StockLedger) Reserve(ctx context.Context, productID string, qty int64) (domain.StockLevel, error) {
	return l.apply(ctx, productID, domain.OpReserve, qty, true)
}

func (l *StockLedger) Release(ctx context.Context, productID string, qty int64) (domain.StockLevel, error) {
	return l.apply(ctx, productID, domain.OpRelease, qty, false)
}

func (l *StockLedger) Commit(ctx context.Context, productID string, qty int64) (domain.StockLevel, error) {
	return l.apply(ctx, productID, domain.OpCommit, qty, false)
}

func (l *StockLedger) apply(ctx context.Context, productID, op string, qty int64, activeOnly bool) (domain.StockLevel, error) {
	return l.cas(ctx, productID, l.stamper.Stamp(ctx), activeOnly, func(s domain.StockLevel) (domain.StockLevel, error) {
		return s.Apply(productID, op, qty)
	}, nil)
}

// SetPolicy changes the policy flags under the same version guard as quantities.
func (l *StockLedger) SetPolicy(ctx context.Context, productID string, threshold int64, track, backorders bool) (domain.StockLevel, error) {
	return l.cas(ctx, productID, l.stamper.Stamp(ctx), false, func(s domain.StockLevel) (domain.StockLevel, error) {
		return s.WithPolicy(threshold, track, backorders)
	}, nil)
}

func (l *StockLedger) cas(
	ctx context.Context,
	productID string,
	stamp domain.Stamp,
	activeOnly bool,
	fn levelFunc,
	extra func(domain.StockLevel) *spanner.Mutation,
) (domain.StockLevel, error) {
	var result domain.StockLevel
	err := retryOnConflict(ctx, l.policy, func(ctx context.Context) error {
		cur, err := readStock(ctx, l.client.Single(), productID)
		if err != nil {
			return err
		}
		if activeOnly && !cur.IsActive {
			return fmt.Errorf("%w: %s is archived", domain.ErrProductNotPurchasable, productID)
		}
		next, err := fn(stockToLevel(cur))
		if err != nil {
			return err
		}

		plan := committer.NewPlan()
		plan.Add(l.products.StockMut(productID, nextStock(cur, next, stamp)))
		if extra != nil {
			plan.Add(extra(next))
		}

		key := spanner.Key{productID}
		guards := []committer.Guard{committer.VersionGuard{
			Table:    m_product.TableName,
			Key:      key,
			Column:   m_product.Version,
			Expected: cur.Version,
		}}
		if activeOnly {
			guards = append(guards, committer.FlagGuard{
				Table:  m_product.TableName,
				Key:    key,
				Column: m_product.IsActive,
				Want:   true,
			})
		}

		err = l.committer.ApplyWithVersionCheck(ctx, plan, guards...)
		switch {
		case errors.Is(err, committer.ErrRowNotFound):
			return domain.ErrProductNotFound
		case errors.Is(err, committer.ErrFlagMismatch):
			return fmt.Errorf("%w: %s is archived", domain.ErrProductNotPurchasable, productID)
		case err != nil:
			return err
		}
		result = next
		return nil
	})
	return result, err
}

func readStock(ctx context.Context, r rowReader, productID string) (*m_product.StockData, error) {
	row, err := r.ReadRow(ctx, m_product.TableName, spanner.Key{productID}, m_product.LedgerColumns)
	if err != nil {
		if spanner.ErrCode(err) == codes.NotFound {
			return nil, domain.ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to read stock: %w", err)
	}
	var data m_product.StockData
	if err := row.ToStruct(&data); err != nil {
		return nil, fmt.Errorf("failed to parse stock: %w", err)
	}
	return &data, nil
}

func (l *StockLedger) CommitBatch(ctx context.Context, lines []domain.LineQuantity) (map[string]domain.StockLevel, error) {
	return l.batch(ctx, domain.OpCommit, lines)
}

func (l *StockLedger) ReleaseBatch(ctx context.Context, lines []domain.LineQuantity) (map[string]domain.StockLevel, error) {
	return l.batch(ctx, domain.OpRelease, lines)
}

// batch applies op to every line inside one read-write transaction. Any failing
// line aborts the transaction so nothing is written.
func (l *StockLedger) batch(ctx context.Context, op string, lines []domain.LineQuantity) (map[string]domain.StockLevel, error) {
	stamp := l.stamper.Stamp(ctx)
	var levels map[string]domain.StockLevel
	_, err := l.client.ReadWriteTransaction(ctx, func(ctx context.Context, txn *spanner.ReadWriteTransaction) error {
		var muts []*spanner.Mutation
		var err error
		levels, muts, err = stockBatch(ctx, txn, l.products, op, lines, stamp)
		if err != nil {
			return err
		}
		return txn.BufferWrite(muts)
	})
	if err != nil {
		return nil, err
	}
	return levels, nil
}

// stockBatch reads every line's product in id order inside txn and returns the
// resulting levels with the mutations that write them.
func stockBatch(
	ctx context.Context,
	txn *spanner.ReadWriteTransaction,
	model *m_product.Model,
	op string,
	lines []domain.LineQuantity,
	stamp domain.Stamp,
) (map[string]domain.StockLevel, []*spanner.Mutation, error) {
	ordered := append([]domain.LineQuantity(nil), lines...)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].ProductID < ordered[j].ProductID })

	type work struct {
		cur   *m_product.StockData
		level domain.StockLevel
	}
	state := make(map[string]*work, len(ordered))
	ids := make([]string, 0, len(ordered))

	for _, line := range ordered {
		w, ok := state[line.ProductID]
		if !ok {
			cur, err := readStock(ctx, txn, line.ProductID)
			if err != nil {
				return nil, nil, err
			}
			w = &work{cur: cur, level: stockToLevel(cur)}
			state[line.ProductID] = w
			ids = append(ids, line.ProductID)
		}

		next, err := w.level.Apply(line.ProductID, op, line.Quantity)
		if err != nil {
			return nil, nil, err
		}
		w.level = next
	}

	levels := make(map[string]domain.StockLevel, len(state))
	muts := make([]*spanner.Mutation, 0, len(state))
	for _, id := range ids {
		w := state[id]
		muts = append(muts, model.StockMut(id, nextStock(w.cur, w.level, stamp)))
		levels[id] = w.level
	}
	return levels, muts, nil
}

// Level returns the current stock level of a product.
func (l *StockLedger) Level(ctx context.Context, productID string) (domain.StockLevel, error) {
	cur, err := readStock(ctx, l.client.Single(), productID)
	if err != nil {
		return domain.StockLevel{}, err
	}
	return stockToLevel(cur), nil
}
