//go:build integration

package integration

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/light-bringer/inventory-service/internal/app/inventory/contracts"
	"github.com/light-bringer/inventory-service/internal/app/inventory/domain"
	"github.com/light-bringer/inventory-service/internal/pkg/actor"
	"github.com/light-bringer/inventory-service/tests/testutil"
)

func TestProductStore_UpdateLeavesStockToLedger(t *testing.T) {
	ctx := actor.WithActor(context.Background(), "buyer-9")
	app := testutil.NewSpannerApp(t, testutil.NewMockClock())
	id := testutil.CreateProduct(t, app, testutil.ProductRequest("STORE-1", "49.99", 10))
	stamper := domain.NewStamper(testutil.NewMockClock())

	// A stale aggregate loaded before the reservation.
	stale, err := app.Stores.Products.All().Get(ctx, id)
	require.NoError(t, err)

	_, err = app.Stores.Ledger.Reserve(ctx, id, 4)
	require.NoError(t, err)

	price, err := domain.NewMoney("39.99")
	require.NoError(t, err)
	require.NoError(t, stale.UpdatePricing(price, nil, nil, stamper.Stamp(ctx)))
	require.NoError(t, app.Stores.Products.Update(ctx, stale))

	got, err := app.Stores.Products.Active().GetBySKU(ctx, "STORE-1")
	require.NoError(t, err)
	assert.Equal(t, "39.99", got.Price().String())
	assert.Equal(t, int64(4), got.Stock().ReservedQuantity, "pricing update must not overwrite ledger columns")
	require.NotNil(t, got.Audit().UpdatedBy)
	assert.Equal(t, "buyer-9", *got.Audit().UpdatedBy)
}

func TestProductStore_Views(t *testing.T) {
	ctx := context.Background()
	app := testutil.NewSpannerApp(t, testutil.NewMockClock())
	id := testutil.CreateProduct(t, app, testutil.ProductRequest("VIEW-1", "10.00", 1))
	stamper := domain.NewStamper(testutil.NewMockClock())

	p, err := app.Stores.Products.All().Get(ctx, id)
	require.NoError(t, err)
	require.NoError(t, p.Archive(stamper.Stamp(ctx)))
	require.NoError(t, app.Stores.Products.Update(ctx, p))

	_, err = app.Stores.Products.Active().Get(ctx, id)
	assert.ErrorIs(t, err, domain.ErrProductNotFound)

	archived, err := app.Stores.Products.All().Get(ctx, id)
	require.NoError(t, err)
	assert.False(t, archived.IsActive())

	_, err = app.Stores.Products.All().Get(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestProductStore_ListKeysetPaging(t *testing.T) {
	ctx := context.Background()
	app := testutil.NewSpannerApp(t, testutil.NewMockClock())
	for _, sku := range []string{"K-3", "K-1", "K-5", "K-2", "K-4"} {
		testutil.CreateProduct(t, app, testutil.ProductRequest(sku, "5.00", 20))
	}

	var (
		skus  []string
		token string
	)
	for {
		page, err := app.Stores.Products.Active().List(ctx, contracts.ProductFilter{PageSize: 2, PageToken: token})
		require.NoError(t, err)
		for _, p := range page.Products {
			skus = append(skus, p.SKU())
		}
		if page.NextPageToken == "" {
			break
		}
		token = page.NextPageToken
	}
	assert.Equal(t, []string{"K-1", "K-2", "K-3", "K-4", "K-5"}, skus)
}
