// Package committer applies an aggregate's row changes and its outbox rows in a
// single Spanner commit.
//
// Stores never write directly. They build mutations, collect them into a Plan
// and hand the plan to a Committer:
//
//	plan := committer.NewPlan()
//	plan.Add(productModel.InsertMut(data))
//	plan.Add(outboxMuts...)
//	return c.Apply(ctx, plan)
//
// Writes that were computed from a row read earlier carry a VersionGuard; the
// commit is refused with ErrVersionConflict if the row moved in between. A
// FlagGuard refuses the commit with ErrFlagMismatch when a boolean column
// changed, for state that is written without moving the version.
package committer

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/spanner"
	"google.golang.org/grpc/codes"
)

var (
	ErrVersionConflict = errors.New("optimistic lock conflict")
	ErrRowNotFound     = errors.New("guarded row not found")
	ErrFlagMismatch    = errors.New("guarded flag changed")
)

// Guard is a precondition checked inside the commit transaction.
type Guard interface {
	check(ctx context.Context, txn *spanner.ReadWriteTransaction) error
}

// Plan is an ordered batch of mutations committed together.
type Plan struct {
	muts []*spanner.Mutation
}

func NewPlan() *Plan {
	return &Plan{}
}

// Add appends mutations, skipping nils so callers can pass optional writes
// without checking.
func (p *Plan) Add(muts ...*spanner.Mutation) {
	for _, m := range muts {
		if m != nil {
			p.muts = append(p.muts, m)
		}
	}
}

func (p *Plan) Len() int { return len(p.muts) }

func (p *Plan) Mutations() []*spanner.Mutation { return p.muts }

// VersionGuard pins a row's version column to the value seen at read time.
// Column defaults to "version".
type VersionGuard struct {
	Table    string
	Key      spanner.Key
	Column   string
	Expected int64
}

func (g VersionGuard) column() string {
	if g.Column == "" {
		return "version"
	}
	return g.Column
}

// check reads the guarded row inside txn and compares its version.
func (g VersionGuard) check(ctx context.Context, txn *spanner.ReadWriteTransaction) error {
	row, err := readGuarded(ctx, txn, g.Table, g.Key, g.column())
	if err != nil {
		return err
	}

	var current int64
	if err := row.Column(0, &current); err != nil {
		return fmt.Errorf("failed to decode %s version: %w", g.Table, err)
	}
	if current != g.Expected {
		return fmt.Errorf("%s %v at version %d, expected %d: %w", g.Table, g.Key, current, g.Expected, ErrVersionConflict)
	}
	return nil
}

// FlagGuard pins a boolean column to Want.
type FlagGuard struct {
	Table  string
	Key    spanner.Key
	Column string
	Want   bool
}

func (g FlagGuard) check(ctx context.Context, txn *spanner.ReadWriteTransaction) error {
	row, err := readGuarded(ctx, txn, g.Table, g.Key, g.Column)
	if err != nil {
		return err
	}

	var current bool
	if err := row.Column(0, &current); err != nil {
		return fmt.Errorf("failed to decode %s.%s: %w", g.Table, g.Column, err)
	}
	if current != g.Want {
		return fmt.Errorf("%s %v %s is %t: %w", g.Table, g.Key, g.Column, current, ErrFlagMismatch)
	}
	return nil
}

// Check evaluates guards inside a caller-owned transaction, for commits that
// also read other rows before buffering their writes.
func Check(ctx context.Context, txn *spanner.ReadWriteTransaction, guards ...Guard) error {
	for _, g := range guards {
		if err := g.check(ctx, txn); err != nil {
			return err
		}
	}
	return nil
}

func readGuarded(ctx context.Context, txn *spanner.ReadWriteTransaction, table string, key spanner.Key, column string) (*spanner.Row, error) {
	row, err := txn.ReadRow(ctx, table, key, []string{column})
	if spanner.ErrCode(err) == codes.NotFound {
		return nil, fmt.Errorf("%s %v: %w", table, key, ErrRowNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s.%s: %w", table, column, err)
	}
	return row, nil
}

// Committer applies plans against one Spanner database.
type Committer struct {
	client *spanner.Client
}

func NewCommitter(client *spanner.Client) *Committer {
	return &Committer{client: client}
}

// Apply commits the plan blindly. An empty plan is a no-op.
func (c *Committer) Apply(ctx context.Context, plan *Plan) error {
	if plan.Len() == 0 {
		return nil
	}
	if _, err := c.client.Apply(ctx, plan.Mutations()); err != nil {
		return fmt.Errorf("failed to apply commit plan: %w", err)
	}
	return nil
}

// ApplyWithVersionCheck commits the plan only if every guard still holds.
// Guard failures come back unwrapped as ErrVersionConflict, ErrFlagMismatch or
// ErrRowNotFound.
func (c *Committer) ApplyWithVersionCheck(ctx context.Context, plan *Plan, guards ...Guard) error {
	if plan.Len() == 0 {
		return nil
	}

	_, err := c.client.ReadWriteTransaction(ctx, func(ctx context.Context, txn *spanner.ReadWriteTransaction) error {
		if err := Check(ctx, txn, guards...); err != nil {
			return err
		}
		return txn.BufferWrite(plan.Mutations())
	})
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrVersionConflict), errors.Is(err, ErrFlagMismatch), errors.Is(err, ErrRowNotFound):
		return err
	default:
		return fmt.Errorf("failed to apply guarded commit plan: %w", err)
	}
}
