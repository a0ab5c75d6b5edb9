// Package cache keeps a read-through copy of product state in Redis.
//
// Only stored columns are cached. Derived fields are recomputed by readers, and
// every write path invalidates the affected keys after the store commits.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/light-bringer/inventory-service/internal/app/inventory/contracts"
	"github.com/light-bringer/inventory-service/internal/app/inventory/domain"
)

const keyPrefix = "inventory:product:"

// RedisProductCache implements contracts.ProductCache on go-redis.
type RedisProductCache struct {
	client redis.UniversalClient
	ttl    time.Duration
}

var _ contracts.ProductCache = (*RedisProductCache)(nil)

// NewRedisProductCache creates a cache whose entries expire after ttl.
func NewRedisProductCache(client redis.UniversalClient, ttl time.Duration) *RedisProductCache {
	return &RedisProductCache{client: client, ttl: ttl}
}

// Connect opens a client for addr and pings it.
func Connect(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("could not connect to redis at %s: %w", addr, err)
	}
	return client, nil
}

func productKey(id string) string { return keyPrefix + id }

func (c *RedisProductCache) Get(ctx context.Context, productID string) (*domain.ProductState, bool, error) {
	raw, err := c.client.Get(ctx, productKey(productID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get %s: %w", productID, err)
	}

	st, err := decodeState(raw)
	if err != nil {
		// A corrupt entry is treated as a miss and dropped.
		_ = c.client.Del(ctx, productKey(productID)).Err()
		return nil, false, nil
	}
	return st, true, nil
}

func (c *RedisProductCache) Set(ctx context.Context, state domain.ProductState) error {
	raw, err := encodeState(state)
	if err != nil {
		return err
	}
	if err := c.client.Set(ctx, productKey(state.Audit.ID), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", state.Audit.ID, err)
	}
	return nil
}

func (c *RedisProductCache) Invalidate(ctx context.Context, productIDs ...string) error {
	if len(productIDs) == 0 {
		return nil
	}
	keys := make([]string, len(productIDs))
	for i, id := range productIDs {
		keys[i] = productKey(id)
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

// cachedProduct is the JSON form of domain.ProductState. Money travels as its
// decimal string so no precision is lost.
type cachedProduct struct {
	ID                string     `json:"id"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
	CreatedBy         *string    `json:"created_by,omitempty"`
	UpdatedBy         *string    `json:"updated_by,omitempty"`
	IsActive          bool       `json:"is_active"`
	SKU               string     `json:"sku"`
	Name              string     `json:"name"`
	CategoryID        *string    `json:"category_id,omitempty"`
	Price             string     `json:"price"`
	CompareAtPrice    *string    `json:"compare_at_price,omitempty"`
	CostPrice         *string    `json:"cost_price,omitempty"`
	StockQuantity     int64      `json:"stock_quantity"`
	ReservedQuantity  int64      `json:"reserved_quantity"`
	LowStockThreshold int64      `json:"low_stock_threshold"`
	TrackInventory    bool       `json:"track_inventory"`
	AllowBackorders   bool       `json:"allow_backorders"`
	AvailableFrom     *time.Time `json:"available_from,omitempty"`
	AvailableUntil    *time.Time `json:"available_until,omitempty"`
	Version           int64      `json:"version"`
}

func encodeState(st domain.ProductState) ([]byte, error) {
	cp := cachedProduct{
		ID:                st.Audit.ID,
		CreatedAt:         st.Audit.CreatedAt,
		UpdatedAt:         st.Audit.UpdatedAt,
		CreatedBy:         st.Audit.CreatedBy,
		UpdatedBy:         st.Audit.UpdatedBy,
		IsActive:          st.Audit.IsActive,
		SKU:               st.SKU,
		Name:              st.Name,
		CategoryID:        st.CategoryID,
		CompareAtPrice:    moneyString(st.CompareAtPrice),
		CostPrice:         moneyString(st.CostPrice),
		StockQuantity:     st.Stock.StockQuantity,
		ReservedQuantity:  st.Stock.ReservedQuantity,
		LowStockThreshold: st.Stock.LowStockThreshold,
		TrackInventory:    st.Stock.TrackInventory,
		AllowBackorders:   st.Stock.AllowBackorders,
		AvailableFrom:     st.AvailableFrom,
		AvailableUntil:    st.AvailableUntil,
		Version:           st.Version,
	}
	if st.Price != nil {
		cp.Price = st.Price.Decimal().String()
	}
	return json.Marshal(cp)
}

func decodeState(raw []byte) (*domain.ProductState, error) {
	var cp cachedProduct
	if err := json.Unmarshal(raw, &cp); err != nil {
		return nil, err
	}

	price, err := domain.NewMoney(cp.Price)
	if err != nil {
		return nil, err
	}
	compareAt, err := parseMoney(cp.CompareAtPrice)
	if err != nil {
		return nil, err
	}
	cost, err := parseMoney(cp.CostPrice)
	if err != nil {
		return nil, err
	}

	return &domain.ProductState{
		Audit: domain.Audit{
			ID:        cp.ID,
			CreatedAt: cp.CreatedAt,
			UpdatedAt: cp.UpdatedAt,
			CreatedBy: cp.CreatedBy,
			UpdatedBy: cp.UpdatedBy,
			IsActive:  cp.IsActive,
		},
		SKU:            cp.SKU,
		Name:           cp.Name,
		CategoryID:     cp.CategoryID,
		Price:          price,
		CompareAtPrice: compareAt,
		CostPrice:      cost,
		Stock: domain.StockLevel{
			StockQuantity:     cp.StockQuantity,
			ReservedQuantity:  cp.ReservedQuantity,
			LowStockThreshold: cp.LowStockThreshold,
			TrackInventory:    cp.TrackInventory,
			AllowBackorders:   cp.AllowBackorders,
		},
		AvailableFrom:  cp.AvailableFrom,
		AvailableUntil: cp.AvailableUntil,
		Version:        cp.Version,
	}, nil
}

func moneyString(m *domain.Money) *string {
	if m == nil {
		return nil
	}
	s := m.Decimal().String()
	return &s
}

func parseMoney(s *string) (*domain.Money, error) {
	if s == nil {
		return nil, nil
	}
	return domain.NewMoney(*s)
}
