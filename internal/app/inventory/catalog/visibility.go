// Package catalog decides which products are visible and purchasable.
package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/light-bringer/inventory-service/internal/app/inventory/contracts"
	"github.com/light-bringer/inventory-service/internal/app/inventory/domain"
	"github.com/light-bringer/inventory-service/internal/pkg/clock"
)

// Visibility combines soft-delete state, the category hierarchy and the sales
// window into the two read surfaces of the catalog.
//
// Browsing reads go to products, which may be a cache. Purchasability reads go
// to authority, which must see every committed archive.
type Visibility struct {
	products   contracts.ProductStore
	authority  contracts.ProductStore
	categories contracts.CategoryRepository
	clock      clock.Clock
}

// NewVisibility creates a Visibility over the given stores.
func NewVisibility(products contracts.ProductStore, categories contracts.CategoryRepository, clk clock.Clock) *Visibility {
	return &Visibility{products: products, authority: products, categories: categories, clock: clk}
}

// WithAuthority returns a copy whose IsPurchasable reads from store instead of
// the browsing store.
func (v *Visibility) WithAuthority(store contracts.ProductStore) *Visibility {
	next := *v
	next.authority = store
	return &next
}

// IsPurchasable loads the product through the active view of the authoritative
// store and checks that it may be ordered now. Rejections wrap
// ErrProductNotPurchasable.
func (v *Visibility) IsPurchasable(ctx context.Context, productID string) (*domain.Product, error) {
	p, err := v.activeOf(v.authority).Get(ctx, productID)
	if err != nil {
		if errors.Is(err, domain.ErrProductNotFound) {
			return nil, fmt.Errorf("%w: %s is inactive or unknown", domain.ErrProductNotPurchasable, productID)
		}
		return nil, err
	}
	if !p.IsOnSaleAt(v.clock.Now()) {
		return nil, fmt.Errorf("%w: %s is outside its sales window", domain.ErrProductNotPurchasable, productID)
	}
	return p, nil
}

// Active is the default view: soft-deleted products and products in a hidden
// category are excluded.
func (v *Visibility) Active() contracts.ProductView {
	return v.activeOf(v.products)
}

func (v *Visibility) activeOf(store contracts.ProductStore) *activeView {
	return &activeView{inner: store.Active(), categories: v.categories}
}

// All includes every product regardless of state.
func (v *Visibility) All() contracts.ProductView {
	return v.products.All()
}

type activeView struct {
	inner      contracts.ProductView
	categories contracts.CategoryRepository
}

func (a *activeView) visible(p *domain.Product, tree *domain.CategoryTree) bool {
	cat := p.CategoryID()
	return cat == nil || tree.IsVisible(*cat)
}

func (a *activeView) check(ctx context.Context, p *domain.Product) (*domain.Product, error) {
	if p.CategoryID() == nil {
		return p, nil
	}
	tree, err := a.categories.Tree(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load categories: %w", err)
	}
	if !a.visible(p, tree) {
		return nil, domain.ErrProductNotFound
	}
	return p, nil
}

func (a *activeView) Get(ctx context.Context, productID string) (*domain.Product, error) {
	p, err := a.inner.Get(ctx, productID)
	if err != nil {
		return nil, err
	}
	return a.check(ctx, p)
}

func (a *activeView) GetBySKU(ctx context.Context, sku string) (*domain.Product, error) {
	p, err := a.inner.GetBySKU(ctx, sku)
	if err != nil {
		return nil, err
	}
	return a.check(ctx, p)
}

// List pulls pages from the underlying view until a full page of visible
// products is collected.
func (a *activeView) List(ctx context.Context, filter contracts.ProductFilter) (*contracts.ProductPage, error) {
	tree, err := a.categories.Tree(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load categories: %w", err)
	}

	size := filter.NormalizedPageSize()
	out := &contracts.ProductPage{Products: make([]*domain.Product, 0, size)}
	for {
		page, err := a.inner.List(ctx, filter)
		if err != nil {
			return nil, err
		}
		for _, p := range page.Products {
			if !a.visible(p, tree) {
				continue
			}
			out.Products = append(out.Products, p)
			if len(out.Products) == size {
				out.NextPageToken = p.SKU()
				return out, nil
			}
		}
		if page.NextPageToken == "" {
			return out, nil
		}
		filter.PageToken = page.NextPageToken
	}
}

// ExpandCategory returns categoryID and all of its descendants, for listing a
// whole branch.
func (v *Visibility) ExpandCategory(ctx context.Context, categoryID string) ([]string, error) {
	tree, err := v.categories.Tree(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load categories: %w", err)
	}
	if _, ok := tree.Get(categoryID); !ok {
		return nil, domain.ErrCategoryNotFound
	}
	return append([]string{categoryID}, tree.Descendants(categoryID)...), nil
}
