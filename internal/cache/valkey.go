// Package cache guarda respuestas ya serializadas de estadísticas para no
// repetir los agregados en cada request. Backend Valkey (compatible Redis)
// cuando hay uno configurado; fallback in-process si no.
package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"cat-shelter-api/internal/platform/logger"
)

const (
	statsKeyPrefix = "cats:stats:"

	// DefaultTTL limita cuánto puede vivir una estadística vieja si una
	// invalidación se pierde (p. ej. otro proceso escribió la tabla).
	DefaultTTL = 5 * time.Minute
)

// Connect crea el cliente Valkey y verifica la conexión con un ping.
func Connect(addr, password string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return client, nil
}

// Valkey implementa la cache de estadísticas sobre un cliente Redis.
// Los errores del backend degradan a cache-miss, nunca rompen el request.
type Valkey struct {
	client *redis.Client
	ttl    time.Duration
	log    logger.Logger
}

func NewValkey(client *redis.Client, ttl time.Duration, log logger.Logger) *Valkey {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Valkey{client: client, ttl: ttl, log: log}
}

func (v *Valkey) Get(ctx context.Context, key string) ([]byte, bool) {
	b, err := v.client.Get(ctx, statsKeyPrefix+key).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		v.log.Warn("stats cache get failed", map[string]any{"key": key, "error": err.Error()})
		return nil, false
	}
	return b, true
}

func (v *Valkey) Set(ctx context.Context, key string, val []byte) {
	if err := v.client.Set(ctx, statsKeyPrefix+key, val, v.ttl).Err(); err != nil {
		v.log.Warn("stats cache set failed", map[string]any{"key": key, "error": err.Error()})
	}
}

func (v *Valkey) Invalidate(ctx context.Context, keys ...string) {
	if len(keys) == 0 {
		return
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = statsKeyPrefix + k
	}
	if err := v.client.Del(ctx, full...).Err(); err != nil {
		v.log.Warn("stats cache invalidate failed", map[string]any{"error": err.Error()})
	}
}
