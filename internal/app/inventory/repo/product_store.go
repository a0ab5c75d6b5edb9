package repo

import (
	"context"
	"fmt"

	"cloud.google.com/go/spanner"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"

	"github.com/light-bringer/inventory-service/internal/app/inventory/contracts"
	"github.com/light-bringer/inventory-service/internal/app/inventory/domain"
	"github.com/light-bringer/inventory-service/internal/models/m_product"
	"github.com/light-bringer/inventory-service/internal/pkg/clock"
	"github.com/light-bringer/inventory-service/internal/pkg/committer"
	"github.com/light-bringer/inventory-service/internal/pkg/query"
)

// lowStockPredicate mirrors StockLevel.IsLowStock for server-side filtering.
const lowStockPredicate = "track_inventory AND stock_quantity - reserved_quantity > 0 " +
	"AND stock_quantity - reserved_quantity <= low_stock_threshold"

// ProductStore implements contracts.ProductStore for Spanner.
type ProductStore struct {
	client    *spanner.Client
	committer *committer.Committer
	model     *m_product.Model
	outbox    *OutboxRepo
	clock     clock.Clock
}

var _ contracts.ProductStore = (*ProductStore)(nil)

// NewProductStore creates a new ProductStore.
func NewProductStore(client *spanner.Client, outbox *OutboxRepo, clk clock.Clock) *ProductStore {
	return &ProductStore{
		client:    client,
		committer: committer.NewCommitter(client),
		model:     m_product.NewModel(),
		outbox:    outbox,
		clock:     clk,
	}
}

// Create inserts the product row and its events in one commit.
func (s *ProductStore) Create(ctx context.Context, p *domain.Product) error {
	row, err := s.model.InsertMut(productToData(p.State()))
	if err != nil {
		return err
	}
	plan := committer.NewPlan()
	plan.Add(row)

	muts, err := s.outbox.EventMuts(p.DomainEvents(), s.clock.Now())
	if err != nil {
		return err
	}
	plan.Add(muts...)

	if err := s.committer.Apply(ctx, plan); err != nil {
		if spanner.ErrCode(err) == codes.AlreadyExists {
			return domain.ErrDuplicateSKU
		}
		return err
	}
	p.MarkPersisted()
	return nil
}

// Update writes the dirty non-stock columns and the product's events.
func (s *ProductStore) Update(ctx context.Context, p *domain.Product) error {
	updates := UpdateColumns(p)
	if updates == nil {
		return nil
	}

	plan := committer.NewPlan()
	plan.Add(s.model.UpdateMut(p.ID(), updates))

	muts, err := s.outbox.EventMuts(p.DomainEvents(), s.clock.Now())
	if err != nil {
		return err
	}
	plan.Add(muts...)

	if err := s.committer.Apply(ctx, plan); err != nil {
		if spanner.ErrCode(err) == codes.NotFound {
			return domain.ErrProductNotFound
		}
		return err
	}
	p.MarkPersisted()
	return nil
}

// UpdateColumns maps the dirty fields of p to column values. Ledger-owned columns
// are never included. Returns nil when nothing changed.
func UpdateColumns(p *domain.Product) map[string]interface{} {
	changes := p.Changes()
	if !changes.HasChanges() {
		return nil
	}

	st := p.State()
	updates := make(map[string]interface{})

	if changes.Dirty(domain.FieldName) {
		updates[m_product.Name] = st.Name
	}
	if changes.Dirty(domain.FieldCategory) {
		updates[m_product.CategoryID] = nullString(st.CategoryID)
	}
	if changes.Dirty(domain.FieldPrice) {
		updates[m_product.Price] = st.Price.Rat()
	}
	if changes.Dirty(domain.FieldCompareAtPrice) {
		updates[m_product.CompareAtPrice] = nullNumeric(st.CompareAtPrice)
	}
	if changes.Dirty(domain.FieldCostPrice) {
		updates[m_product.CostPrice] = nullNumeric(st.CostPrice)
	}
	if changes.Dirty(domain.FieldAvailability) {
		updates[m_product.AvailableFrom] = nullTime(st.AvailableFrom)
		updates[m_product.AvailableUntil] = nullTime(st.AvailableUntil)
	}
	if changes.Dirty(domain.FieldIsActive) {
		updates[m_product.IsActive] = st.Audit.IsActive
	}

	if len(updates) == 0 {
		return nil
	}

	updates[m_product.UpdatedAt] = st.Audit.UpdatedAt
	updates[m_product.UpdatedBy] = nullString(st.Audit.UpdatedBy)
	return updates
}

// Active returns the view without soft-deleted products.
func (s *ProductStore) Active() contracts.ProductView {
	return &productView{client: s.client, activeOnly: true}
}

// All returns the view including soft-deleted products.
func (s *ProductStore) All() contracts.ProductView {
	return &productView{client: s.client}
}

type productView struct {
	client     *spanner.Client
	activeOnly bool
}

func (v *productView) Get(ctx context.Context, productID string) (*domain.Product, error) {
	row, err := v.client.Single().ReadRow(ctx, m_product.TableName, spanner.Key{productID}, m_product.AllColumns)
	if err != nil {
		if spanner.ErrCode(err) == codes.NotFound {
			return nil, domain.ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to read product: %w", err)
	}
	return v.decode(row)
}

func (v *productView) GetBySKU(ctx context.Context, sku string) (*domain.Product, error) {
	row, err := v.client.Single().ReadRowUsingIndex(ctx, m_product.TableName, m_product.SKUIndex,
		spanner.Key{sku}, []string{m_product.ProductID})
	if err != nil {
		if spanner.ErrCode(err) == codes.NotFound {
			return nil, domain.ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to read product by sku: %w", err)
	}
	var id string
	if err := row.Column(0, &id); err != nil {
		return nil, fmt.Errorf("failed to parse product id: %w", err)
	}
	return v.Get(ctx, id)
}

func (v *productView) List(ctx context.Context, filter contracts.ProductFilter) (*contracts.ProductPage, error) {
	size := filter.NormalizedPageSize()
	stmt := v.listQuery(filter, size).Build()

	iter := v.client.Single().Query(ctx, stmt)
	defer iter.Stop()

	page := &contracts.ProductPage{Products: make([]*domain.Product, 0, size)}
	for {
		row, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate products: %w", err)
		}
		p, err := v.decode(row)
		if err != nil {
			return nil, err
		}
		page.Products = append(page.Products, p)
	}

	// One extra row was fetched to learn whether another page exists.
	if len(page.Products) > size {
		page.Products = page.Products[:size]
		page.NextPageToken = page.Products[size-1].SKU()
	}
	return page, nil
}

func (v *productView) listQuery(filter contracts.ProductFilter, size int) *query.Builder {
	b := query.From(m_product.TableName).Select(m_product.AllColumns...)
	if v.activeOnly {
		b = b.Where(query.Eq(m_product.IsActive, true))
	}
	if filter.PageToken != "" {
		b = b.Where(query.Gt(m_product.SKU, filter.PageToken))
	}
	if len(filter.CategoryIDs) > 0 {
		b = b.Where(query.In(m_product.CategoryID, filter.CategoryIDs))
	}
	if filter.LowStockOnly {
		b = b.Where(query.Expr(lowStockPredicate))
	}
	return b.OrderBy(m_product.SKU, query.Asc).Limit(int64(size + 1))
}

func (v *productView) decode(row *spanner.Row) (*domain.Product, error) {
	var data m_product.Data
	if err := row.ToStruct(&data); err != nil {
		return nil, fmt.Errorf("failed to parse product: %w", err)
	}
	if v.activeOnly && !data.IsActive {
		return nil, domain.ErrProductNotFound
	}
	return dataToProduct(&data)
}
