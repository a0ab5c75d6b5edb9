package repo

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/spanner"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"

	"github.com/light-bringer/inventory-service/internal/app/inventory/contracts"
	"github.com/light-bringer/inventory-service/internal/app/inventory/domain"
	"github.com/light-bringer/inventory-service/internal/models/m_order"
	"github.com/light-bringer/inventory-service/internal/models/m_order_line"
	"github.com/light-bringer/inventory-service/internal/models/m_product"
	"github.com/light-bringer/inventory-service/internal/models/m_reservation"
	"github.com/light-bringer/inventory-service/internal/pkg/clock"
	"github.com/light-bringer/inventory-service/internal/pkg/committer"
)

// OrderRepo implements contracts.OrderRepository for Spanner. Lines and
// reservations live in tables interleaved under the order row.
type OrderRepo struct {
	client       *spanner.Client
	committer    *committer.Committer
	orders       *m_order.Model
	lines        *m_order_line.Model
	reservations *m_reservation.Model
	products     *m_product.Model
	outbox       *OutboxRepo
	clock        clock.Clock
}

var _ contracts.OrderRepository = (*OrderRepo)(nil)

// NewOrderRepo creates a new OrderRepo.
func NewOrderRepo(client *spanner.Client, outbox *OutboxRepo, clk clock.Clock) *OrderRepo {
	return &OrderRepo{
		client:       client,
		committer:    committer.NewCommitter(client),
		orders:       m_order.NewModel(),
		lines:        m_order_line.NewModel(),
		reservations: m_reservation.NewModel(),
		products:     m_product.NewModel(),
		outbox:       outbox,
		clock:        clk,
	}
}

// Create inserts the order with its lines and events at version 1.
func (r *OrderRepo) Create(ctx context.Context, o *domain.Order) error {
	st := o.State()
	st.Version = 1

	plan := committer.NewPlan()
	plan.Add(r.orders.InsertMut(orderToData(st)))
	for i, l := range st.Lines {
		plan.Add(r.lines.InsertMut(lineToData(st.Audit.ID, i, l)))
	}
	for _, res := range st.Reservations {
		plan.Add(r.reservations.UpsertMut(reservationToData(res)))
	}
	muts, err := r.outbox.EventMuts(o.DomainEvents(), r.clock.Now())
	if err != nil {
		return err
	}
	plan.Add(muts...)

	if err := r.committer.Apply(ctx, plan); err != nil {
		if spanner.ErrCode(err) == codes.AlreadyExists {
			return domain.ErrDuplicateOrderNo
		}
		return err
	}
	o.MarkPersisted(1)
	return nil
}

// Save writes the header and reservations when the stored version still equals
// o.Version(). A mismatch is ErrConcurrentModification.
func (r *OrderRepo) Save(ctx context.Context, o *domain.Order) error {
	plan, guard, err := r.savePlan(o)
	if err != nil {
		return err
	}
	if err := mapSaveErr(r.committer.ApplyWithVersionCheck(ctx, plan, guard)); err != nil {
		return err
	}
	o.MarkPersisted(guard.Expected + 1)
	return nil
}

// Settle runs the order's version check, the stock reads and every write in one
// read-write transaction.
func (r *OrderRepo) Settle(ctx context.Context, o *domain.Order, op string, lines []domain.LineQuantity) (map[string]domain.StockLevel, error) {
	plan, guard, err := r.savePlan(o)
	if err != nil {
		return nil, err
	}
	audit := o.Audit()
	stamp := domain.Stamp{At: audit.UpdatedAt, By: audit.UpdatedBy}

	var levels map[string]domain.StockLevel
	_, err = r.client.ReadWriteTransaction(ctx, func(ctx context.Context, txn *spanner.ReadWriteTransaction) error {
		if err := committer.Check(ctx, txn, guard); err != nil {
			return err
		}
		var stock []*spanner.Mutation
		var err error
		levels, stock, err = stockBatch(ctx, txn, r.products, op, lines, stamp)
		if err != nil {
			return err
		}
		// The callback reruns when Spanner aborts the transaction; plan stays untouched.
		muts := append(append([]*spanner.Mutation(nil), plan.Mutations()...), stock...)
		return txn.BufferWrite(muts)
	})
	if err := mapSaveErr(err); err != nil {
		return nil, err
	}
	o.MarkPersisted(guard.Expected + 1)
	return levels, nil
}

// savePlan collects the header, reservation and outbox writes of o at the next
// version, guarded by the version it was loaded at.
func (r *OrderRepo) savePlan(o *domain.Order) (*committer.Plan, committer.VersionGuard, error) {
	st := o.State()
	expected := st.Version
	st.Version = expected + 1

	plan := committer.NewPlan()
	plan.Add(r.orders.UpdateMut(orderToData(st)))
	for _, res := range st.Reservations {
		plan.Add(r.reservations.UpsertMut(reservationToData(res)))
	}
	muts, err := r.outbox.EventMuts(o.DomainEvents(), r.clock.Now())
	if err != nil {
		return nil, committer.VersionGuard{}, err
	}
	plan.Add(muts...)

	return plan, committer.VersionGuard{
		Table:    m_order.TableName,
		Key:      spanner.Key{st.Audit.ID},
		Column:   m_order.Version,
		Expected: expected,
	}, nil
}

func mapSaveErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, committer.ErrRowNotFound):
		return domain.ErrOrderNotFound
	case errors.Is(err, committer.ErrVersionConflict):
		return fmt.Errorf("%w: %v", domain.ErrConcurrentModification, err)
	default:
		return err
	}
}

// Get loads an order with its lines and reservations from one snapshot.
func (r *OrderRepo) Get(ctx context.Context, orderID string) (*domain.Order, error) {
	txn := r.client.ReadOnlyTransaction()
	defer txn.Close()

	row, err := txn.ReadRow(ctx, m_order.TableName, spanner.Key{orderID}, r.orders.ReadColumns())
	if err != nil {
		if spanner.ErrCode(err) == codes.NotFound {
			return nil, domain.ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to read order: %w", err)
	}
	var header m_order.Data
	if err := row.ToStruct(&header); err != nil {
		return nil, fmt.Errorf("failed to parse order: %w", err)
	}

	prefix := spanner.Key{orderID}.AsPrefix()

	var lines []*m_order_line.Data
	iter := txn.Read(ctx, m_order_line.TableName, prefix, r.lines.ReadColumns())
	err = iter.Do(func(row *spanner.Row) error {
		var l m_order_line.Data
		if err := row.ToStruct(&l); err != nil {
			return err
		}
		lines = append(lines, &l)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read order lines: %w", err)
	}

	var reservations []*m_reservation.Data
	iter = txn.Read(ctx, m_reservation.TableName, prefix, r.reservations.ReadColumns())
	defer iter.Stop()
	for {
		row, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read reservations: %w", err)
		}
		var res m_reservation.Data
		if err := row.ToStruct(&res); err != nil {
			return nil, fmt.Errorf("failed to parse reservation: %w", err)
		}
		reservations = append(reservations, &res)
	}

	return dataToOrder(&header, lines, reservations)
}
