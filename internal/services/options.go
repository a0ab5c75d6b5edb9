package services

import (
	"context"
	"fmt"

	"cloud.google.com/go/spanner"
	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/light-bringer/inventory-service/internal/app/inventory/cache"
	"github.com/light-bringer/inventory-service/internal/app/inventory/catalog"
	"github.com/light-bringer/inventory-service/internal/app/inventory/contracts"
	"github.com/light-bringer/inventory-service/internal/app/inventory/domain"
	"github.com/light-bringer/inventory-service/internal/app/inventory/fulfillment"
	"github.com/light-bringer/inventory-service/internal/app/inventory/memstore"
	"github.com/light-bringer/inventory-service/internal/app/inventory/notify"
	"github.com/light-bringer/inventory-service/internal/app/inventory/queries/check_availability"
	"github.com/light-bringer/inventory-service/internal/app/inventory/queries/get_order"
	"github.com/light-bringer/inventory-service/internal/app/inventory/queries/get_product"
	"github.com/light-bringer/inventory-service/internal/app/inventory/queries/list_events"
	"github.com/light-bringer/inventory-service/internal/app/inventory/queries/list_movements"
	"github.com/light-bringer/inventory-service/internal/app/inventory/queries/list_products"
	"github.com/light-bringer/inventory-service/internal/app/inventory/repo"
	"github.com/light-bringer/inventory-service/internal/app/inventory/reservation"
	"github.com/light-bringer/inventory-service/internal/app/inventory/usecases/adjust_stock"
	"github.com/light-bringer/inventory-service/internal/app/inventory/usecases/archive_product"
	"github.com/light-bringer/inventory-service/internal/app/inventory/usecases/create_category"
	"github.com/light-bringer/inventory-service/internal/app/inventory/usecases/create_order"
	"github.com/light-bringer/inventory-service/internal/app/inventory/usecases/create_product"
	"github.com/light-bringer/inventory-service/internal/app/inventory/usecases/deactivate_category"
	"github.com/light-bringer/inventory-service/internal/app/inventory/usecases/restore_product"
	"github.com/light-bringer/inventory-service/internal/app/inventory/usecases/set_stock_policy"
	"github.com/light-bringer/inventory-service/internal/app/inventory/usecases/update_pricing"
	"github.com/light-bringer/inventory-service/internal/config"
	"github.com/light-bringer/inventory-service/internal/pkg/clock"
)

// Stores is one persistence backend. Memory and Spanner provide the same set.
type Stores struct {
	Products   contracts.ProductStore
	Ledger     contracts.StockLedger
	Orders     contracts.OrderRepository
	Categories contracts.CategoryRepository
	Outbox     contracts.OutboxRepository
	Movements  contracts.MovementRepository
}

// MemoryStores returns stores backed by one in-process memstore.
func MemoryStores(clk clock.Clock) Stores {
	s := memstore.New(clk)
	return Stores{
		Products:   s.Products(),
		Ledger:     s.Ledger(),
		Orders:     s.Orders(),
		Categories: s.Categories(),
		Outbox:     s.Outbox(),
		Movements:  s.Movements(),
	}
}

// SpannerStores returns stores backed by client.
func SpannerStores(client *spanner.Client, clk clock.Clock, ledger config.LedgerConfig) Stores {
	outbox := repo.NewOutboxRepo(client)
	return Stores{
		Products: repo.NewProductStore(client, outbox, clk),
		Ledger: repo.NewStockLedger(client, domain.NewStamper(clk), repo.RetryPolicy{
			MaxAttempts: ledger.MaxRetries,
			Backoff:     ledger.RetryBackoff,
		}),
		Orders:     repo.NewOrderRepo(client, outbox, clk),
		Categories: repo.NewCategoryRepo(client, outbox, clk),
		Outbox:     outbox,
		Movements:  repo.NewMovementRepo(client),
	}
}

// ServiceOptions holds all dependencies for the application.
type ServiceOptions struct {
	Stores  Stores
	Catalog *catalog.Visibility
	Relay   *notify.Relay
	Logger  *zap.Logger

	// Commands
	CreateProduct      *create_product.Interactor
	UpdatePricing      *update_pricing.Interactor
	AdjustStock        *adjust_stock.Interactor
	SetStockPolicy     *set_stock_policy.Interactor
	ArchiveProduct     *archive_product.Interactor
	RestoreProduct     *restore_product.Interactor
	CreateOrder        *create_order.Interactor
	CreateCategory     *create_category.Interactor
	DeactivateCategory *deactivate_category.Interactor
	Orders             *fulfillment.StateMachine

	// Queries
	GetProduct        *get_product.Query
	ListProducts      *list_products.Query
	GetOrder          *get_order.Query
	CheckAvailability *check_availability.Query
	ListEvents        *list_events.Query
	ListMovements     *list_movements.Query

	closers []func()
}

// Infra carries the optional external clients. Nil fields disable the feature.
type Infra struct {
	Redis     *redis.Client
	Publisher contracts.EventPublisher
}

// New wires use cases, queries and the outbox relay over stores.
func New(stores Stores, infra Infra, cfg *config.Config, clk clock.Clock, logger *zap.Logger) *ServiceOptions {
	authority := stores.Products
	var locker notify.Locker
	if infra.Redis != nil {
		productCache := cache.NewRedisProductCache(infra.Redis, cfg.Redis.CacheTTL)
		stores.Products = cache.NewProductStore(stores.Products, productCache, logger)
		stores.Ledger = cache.NewLedger(stores.Ledger, productCache, logger)
		stores.Orders = cache.NewOrderRepo(stores.Orders, productCache, logger)
		locker = notify.NewRedisLocker(redislock.New(infra.Redis))
	}

	publisher := infra.Publisher
	if publisher == nil {
		publisher = notify.NewLogPublisher(logger)
	}

	stamper := domain.NewStamper(clk)
	notifier := notify.NewOutboxNotifier(stores.Outbox, clk)
	vis := catalog.NewVisibility(stores.Products, stores.Categories, clk).WithAuthority(authority)
	coordinator := reservation.NewCoordinator(vis, stores.Ledger, logger)

	return &ServiceOptions{
		Stores:  stores,
		Catalog: vis,
		Logger:  logger,
		Relay: notify.NewRelay(stores.Outbox, publisher, locker, clk, logger, notify.RelayConfig{
			BatchSize:  cfg.Outbox.RelayBatchSize,
			MaxRetries: cfg.Outbox.MaxRetries,
		}),

		CreateProduct:      create_product.NewInteractor(stores.Products, stores.Categories, stamper),
		UpdatePricing:      update_pricing.NewInteractor(stores.Products, stamper),
		AdjustStock:        adjust_stock.NewInteractor(stores.Products, stores.Ledger, notifier, stamper, logger),
		SetStockPolicy:     set_stock_policy.NewInteractor(stores.Products, stores.Ledger, notifier, stamper, logger),
		ArchiveProduct:     archive_product.NewInteractor(stores.Products, stamper),
		RestoreProduct:     restore_product.NewInteractor(stores.Products, stamper),
		CreateOrder:        create_order.NewInteractor(stores.Orders, vis.Active(), stamper),
		CreateCategory:     create_category.NewInteractor(stores.Categories, stamper),
		DeactivateCategory: deactivate_category.NewInteractor(stores.Categories, stamper),
		Orders:             fulfillment.NewStateMachine(stores.Orders, coordinator, stores.Ledger, notifier, stamper, logger),

		GetProduct:        get_product.NewQuery(vis),
		ListProducts:      list_products.NewQuery(vis),
		GetOrder:          get_order.NewQuery(stores.Orders),
		CheckAvailability: check_availability.NewQuery(vis),
		ListEvents:        list_events.NewQuery(stores.Outbox),
		ListMovements:     list_movements.NewQuery(stores.Products, stores.Movements),
	}
}

// NewServiceOptions opens the configured backend and external clients and wires
// the application. Close releases everything it opened.
func NewServiceOptions(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*ServiceOptions, error) {
	clk := clock.NewRealClock()

	var (
		stores  Stores
		closers []func()
	)

	switch cfg.Store.Driver {
	case config.StoreSpanner:
		client, err := spanner.NewClient(ctx, cfg.Spanner.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to create Spanner client: %w", err)
		}
		closers = append(closers, client.Close)
		stores = SpannerStores(client, clk, cfg.Ledger)
	default:
		logger.Warn("using in-memory store; state is lost on restart")
		stores = MemoryStores(clk)
	}

	var infra Infra
	if cfg.Redis.Addr != "" {
		client, err := cache.Connect(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			runClosers(closers)
			return nil, err
		}
		closers = append(closers, func() { _ = client.Close() })
		infra.Redis = client
	}
	if len(cfg.Kafka.Brokers) > 0 {
		kp := notify.NewKafkaPublisher(notify.NewKafkaWriter(cfg.Kafka.Brokers, cfg.Kafka.Topic))
		closers = append(closers, func() { _ = kp.Close() })
		infra.Publisher = kp
	}

	logger.Info("service dependencies ready",
		zap.String("store", cfg.Store.Driver),
		zap.Bool("redis", infra.Redis != nil),
		zap.Strings("kafka_brokers", cfg.Kafka.Brokers),
	)

	opts := New(stores, infra, cfg, clk, logger)
	opts.closers = closers
	return opts, nil
}

// Close closes all resources in reverse order of opening.
func (s *ServiceOptions) Close() {
	runClosers(s.closers)
}

func runClosers(closers []func()) {
	for i := len(closers) - 1; i >= 0; i-- {
		closers[i]()
	}
}
