package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/edumart/order-reconciler/internal/models"
	"github.com/edumart/order-reconciler/internal/status"
)

// kv is the slice of Redis the cache needs. Tests plug in an in-memory
// implementation.
type kv interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
}

// ErrNotFound is returned by kv implementations for a missing key.
var ErrNotFound = fmt.Errorf("cache: key not found")

type redisKV struct {
	client *redis.Client
}

func (r redisKV) Get(ctx context.Context, key string) (string, error) {
	val, err := r.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", ErrNotFound
	}
	return val, err
}

func (r redisKV) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return r.client.Set(ctx, key, value, ttl).Err()
}

func (r redisKV) Del(ctx context.Context, keys ...string) error {
	return r.client.Del(ctx, keys...).Err()
}

func (r redisKV) SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
	return r.client.SetNX(ctx, key, value, ttl).Result()
}

// OrderCache is the single-slot scratch space bridging a payment flow
// across page and channel transitions. One intent and one gateway session
// per customer session key; Put overwrites, last writer wins.
type OrderCache struct {
	store kv
	ttl   time.Duration
}

func NewOrderCache(client *redis.Client, ttl time.Duration) *OrderCache {
	return &OrderCache{store: redisKV{client: client}, ttl: ttl}
}

func newOrderCacheWithStore(store kv, ttl time.Duration) *OrderCache {
	return &OrderCache{store: store, ttl: ttl}
}

func intentKey(session string) string {
	return fmt.Sprintf("order_intent:%s", session)
}

func gatewayKey(session string) string {
	return fmt.Sprintf("gateway_session:%s", session)
}

func lockKey(orderID string) string {
	return fmt.Sprintf("confirm_lock:%s", orderID)
}

func (c *OrderCache) Put(ctx context.Context, session string, intent *models.CachedOrderIntent) error {
	payload, err := json.Marshal(intent)
	if err != nil {
		return fmt.Errorf("marshal intent: %w", err)
	}
	return c.store.Set(ctx, intentKey(session), string(payload), c.ttl)
}

// Get returns the cached intent, or nil when the slot is empty.
func (c *OrderCache) Get(ctx context.Context, session string) (*models.CachedOrderIntent, error) {
	val, err := c.store.Get(ctx, intentKey(session))
	if err == ErrNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var intent models.CachedOrderIntent
	if err := json.Unmarshal([]byte(val), &intent); err != nil {
		// A corrupt slot is as good as an empty one.
		_ = c.store.Del(ctx, intentKey(session))
		return nil, nil
	}
	return &intent, nil
}

func (c *OrderCache) Clear(ctx context.Context, session string) error {
	return c.store.Del(ctx, intentKey(session), gatewayKey(session))
}

// ReconcileAgainst compares the cached intent with authoritative server
// data. The cache is cleared when the matched order is settled or when the
// cached order id no longer appears among the customer's open orders;
// otherwise it is kept untouched. serverOrder may be nil when no open
// order matched the intent.
func (c *OrderCache) ReconcileAgainst(ctx context.Context, session string, serverOrder *models.Order, openOrders []models.Order) (models.ReconcileResult, error) {
	intent, err := c.Get(ctx, session)
	if err != nil {
		return models.ReconcileKept, err
	}
	if intent == nil {
		return models.ReconcileKept, nil
	}

	if serverOrder != nil && status.Derive(serverOrder) == models.StatePaid {
		if err := c.Clear(ctx, session); err != nil {
			return models.ReconcileKept, err
		}
		return models.ReconcileCleared, nil
	}

	for _, order := range openOrders {
		if string(order.ID) == intent.OrderID && status.Derive(&order) != models.StatePaid {
			return models.ReconcileKept, nil
		}
	}

	// No matching unpaid order: likely already settled or expired.
	if err := c.Clear(ctx, session); err != nil {
		return models.ReconcileKept, err
	}
	return models.ReconcileCleared, nil
}

func (c *OrderCache) PutGatewaySession(ctx context.Context, session string, gw *models.GatewaySession) error {
	payload, err := json.Marshal(gw)
	if err != nil {
		return fmt.Errorf("marshal gateway session: %w", err)
	}
	return c.store.Set(ctx, gatewayKey(session), string(payload), c.ttl)
}

func (c *OrderCache) GatewaySession(ctx context.Context, session string) (*models.GatewaySession, error) {
	val, err := c.store.Get(ctx, gatewayKey(session))
	if err == ErrNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var gw models.GatewaySession
	if err := json.Unmarshal([]byte(val), &gw); err != nil {
		_ = c.store.Del(ctx, gatewayKey(session))
		return nil, nil
	}
	return &gw, nil
}

// AcquireConfirmLock takes the single-flight guard for a manual proof
// submission. A second attempt while one is outstanding is rejected, not
// queued.
func (c *OrderCache) AcquireConfirmLock(ctx context.Context, orderID string, ttl time.Duration) (bool, error) {
	return c.store.SetNX(ctx, lockKey(orderID), "1", ttl)
}

func (c *OrderCache) ReleaseConfirmLock(ctx context.Context, orderID string) error {
	return c.store.Del(ctx, lockKey(orderID))
}
