package repo

import (
	"context"
	"fmt"

	"cloud.google.com/go/spanner"
	"google.golang.org/grpc/codes"

	"github.com/light-bringer/inventory-service/internal/app/inventory/contracts"
	"github.com/light-bringer/inventory-service/internal/app/inventory/domain"
	"github.com/light-bringer/inventory-service/internal/models/m_category"
	"github.com/light-bringer/inventory-service/internal/pkg/clock"
	"github.com/light-bringer/inventory-service/internal/pkg/committer"
)

// CategoryRepo implements contracts.CategoryRepository for Spanner.
type CategoryRepo struct {
	client    *spanner.Client
	committer *committer.Committer
	model     *m_category.Model
	outbox    *OutboxRepo
	clock     clock.Clock
}

var _ contracts.CategoryRepository = (*CategoryRepo)(nil)

// NewCategoryRepo creates a new CategoryRepo.
func NewCategoryRepo(client *spanner.Client, outbox *OutboxRepo, clk clock.Clock) *CategoryRepo {
	return &CategoryRepo{
		client:    client,
		committer: committer.NewCommitter(client),
		model:     m_category.NewModel(),
		outbox:    outbox,
		clock:     clk,
	}
}

func (r *CategoryRepo) Create(ctx context.Context, c *domain.Category) error {
	return r.write(ctx, c, r.model.InsertMut(categoryToData(c.State())))
}

func (r *CategoryRepo) Update(ctx context.Context, c *domain.Category) error {
	return r.write(ctx, c, r.model.UpdateMut(categoryToData(c.State())))
}

func (r *CategoryRepo) write(ctx context.Context, c *domain.Category, mut *spanner.Mutation) error {
	plan := committer.NewPlan()
	plan.Add(mut)
	muts, err := r.outbox.EventMuts(c.DomainEvents(), r.clock.Now())
	if err != nil {
		return err
	}
	plan.Add(muts...)

	if err := r.committer.Apply(ctx, plan); err != nil {
		if spanner.ErrCode(err) == codes.NotFound {
			return domain.ErrCategoryNotFound
		}
		return err
	}
	c.MarkPersisted()
	return nil
}

func (r *CategoryRepo) Get(ctx context.Context, categoryID string) (*domain.Category, error) {
	row, err := r.client.Single().ReadRow(ctx, m_category.TableName, spanner.Key{categoryID}, r.model.ReadColumns())
	if err != nil {
		if spanner.ErrCode(err) == codes.NotFound {
			return nil, domain.ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to read category: %w", err)
	}
	var data m_category.Data
	if err := row.ToStruct(&data); err != nil {
		return nil, fmt.Errorf("failed to parse category: %w", err)
	}
	return dataToCategory(&data), nil
}

// Tree reads every category. Hierarchies are small enough to load whole.
func (r *CategoryRepo) Tree(ctx context.Context) (*domain.CategoryTree, error) {
	var nodes []domain.CategoryNode
	iter := r.client.Single().Read(ctx, m_category.TableName, spanner.AllKeys(), r.model.ReadColumns())
	err := iter.Do(func(row *spanner.Row) error {
		var data m_category.Data
		if err := row.ToStruct(&data); err != nil {
			return err
		}
		nodes = append(nodes, dataToCategory(&data).Node())
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read categories: %w", err)
	}
	return domain.NewCategoryTree(nodes), nil
}
