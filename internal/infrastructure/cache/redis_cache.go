// Package cache implementa el BalanceCache sobre Redis. Es una optimización
// read-through: la fuente de verdad siempre es el libro mayor y cualquier
// entrada puede recalcularse por replay de asientos.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/pos-ledger-api/internal/application/accounting"
	"github.com/jhoicas/pos-ledger-api/internal/domain/ledger"
)

var _ accounting.BalanceCache = (*RedisBalanceCache)(nil)

// RedisBalanceCache cachea saldos derivados serializados como JSON.
type RedisBalanceCache struct {
	client *redis.Client
}

// NewRedisBalanceCache construye el adaptador sobre un cliente ya conectado.
func NewRedisBalanceCache(client *redis.Client) *RedisBalanceCache {
	return &RedisBalanceCache{client: client}
}

// Connect abre un cliente Redis y verifica la conexión con un ping.
func Connect(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

// Get devuelve el saldo cacheado bajo key, o found=false si no existe.
func (c *RedisBalanceCache) Get(ctx context.Context, key string) (*ledger.AccountBalance, bool, error) {
	val, err := c.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("get balance from cache: %w", err)
	}
	var balance ledger.AccountBalance
	if err := json.Unmarshal([]byte(val), &balance); err != nil {
		// Entrada corrupta: se trata como miss y se sobreescribirá.
		return nil, false, nil
	}
	return &balance, true, nil
}

// Set serializa y guarda el saldo con el TTL indicado.
func (c *RedisBalanceCache) Set(ctx context.Context, key string, value *ledger.AccountBalance, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal balance: %w", err)
	}
	if err := c.client.Set(ctx, key, raw, ttl).Err(); err != nil {
		return fmt.Errorf("set balance in cache: %w", err)
	}
	return nil
}

// Delete invalida la clave. Se invoca post-commit al escribir asientos nuevos.
func (c *RedisBalanceCache) Delete(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("delete balance from cache: %w", err)
	}
	return nil
}
