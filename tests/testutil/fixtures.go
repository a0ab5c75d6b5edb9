package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/light-bringer/inventory-service/internal/app/inventory/contracts"
	"github.com/light-bringer/inventory-service/internal/app/inventory/domain"
	"github.com/light-bringer/inventory-service/internal/app/inventory/usecases/create_order"
	"github.com/light-bringer/inventory-service/internal/app/inventory/usecases/create_product"
	"github.com/light-bringer/inventory-service/internal/config"
	"github.com/light-bringer/inventory-service/internal/pkg/clock"
	"github.com/light-bringer/inventory-service/internal/services"
)

// TestConfig returns the settings services.New reads, without touching the environment.
func TestConfig() *config.Config {
	return &config.Config{
		Store:  config.StoreConfig{Driver: config.StoreMemory},
		Redis:  config.RedisConfig{CacheTTL: time.Minute},
		Outbox: config.OutboxConfig{RelayBatchSize: 100, MaxRetries: 3},
		Ledger: config.LedgerConfig{MaxRetries: 10, RetryBackoff: time.Millisecond},
	}
}

// NewMemoryApp wires the application over a fresh in-memory store.
func NewMemoryApp(t *testing.T, clk clock.Clock) *services.ServiceOptions {
	t.Helper()
	return services.New(services.MemoryStores(clk), services.Infra{}, TestConfig(), clk, zaptest.NewLogger(t))
}

// NewSpannerApp wires the application over the emulator test database.
func NewSpannerApp(t *testing.T, clk clock.Clock) *services.ServiceOptions {
	t.Helper()
	cfg := TestConfig()
	client := SetupSpannerTest(t)
	return services.New(services.SpannerStores(client, clk, cfg.Ledger), services.Infra{}, cfg, clk, zaptest.NewLogger(t))
}

// ProductRequest builds a tracked product with the given price and stock on hand.
func ProductRequest(sku, price string, stock int64) *create_product.Request {
	return &create_product.Request{
		SKU:           sku,
		Name:          "Product " + sku,
		Price:         price,
		StockQuantity: stock,
	}
}

// CreateProduct creates a product and returns its id.
func CreateProduct(t *testing.T, app *services.ServiceOptions, req *create_product.Request) string {
	t.Helper()
	id, err := app.CreateProduct.Execute(context.Background(), req)
	require.NoError(t, err, "failed to create product %s", req.SKU)
	return id
}

// CreateOrder creates a DRAFT order from product id and quantity pairs.
func CreateOrder(t *testing.T, app *services.ServiceOptions, lines ...create_order.Line) *domain.Order {
	t.Helper()
	order, err := app.CreateOrder.Execute(context.Background(), &create_order.Request{Lines: lines})
	require.NoError(t, err, "failed to create order")
	return order
}

// Line is shorthand for an order line.
func Line(productID string, qty int64) create_order.Line {
	return create_order.Line{ProductID: productID, Quantity: qty}
}

// Level reads the current stock level of a product from the ledger.
func Level(t *testing.T, app *services.ServiceOptions, productID string) domain.StockLevel {
	t.Helper()
	level, err := app.Stores.Ledger.Level(context.Background(), productID)
	require.NoError(t, err)
	return level
}

// EventTypes returns the outbox event types recorded for one aggregate, oldest first.
func EventTypes(t *testing.T, app *services.ServiceOptions, aggregateID string) []string {
	t.Helper()
	events, err := app.Stores.Outbox.List(context.Background(), contracts.EventFilter{AggregateID: &aggregateID})
	require.NoError(t, err)

	types := make([]string, len(events))
	for i, ev := range events {
		types[len(events)-1-i] = ev.EventType
	}
	return types
}
