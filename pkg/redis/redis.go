package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/nravish/kanakam-backend/config"
	"github.com/nravish/kanakam-backend/pkg/logger"
)

var client *redis.Client

// Init initializes the Redis connection.
func Init(cfg *config.RedisConfig) error {
	logger.Info("Initializing Redis connection", map[string]interface{}{
		"host": cfg.Host,
		"port": cfg.Port,
		"db":   cfg.DB,
	})

	client = redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		logger.Error("Failed to connect to Redis", err, map[string]interface{}{
			"host": cfg.Host,
			"port": cfg.Port,
		})
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info("Redis connection established successfully", nil)
	return nil
}

// GetClient returns the Redis client instance.
func GetClient() *redis.Client {
	return client
}

// Close closes the Redis connection.
func Close() error {
	if client != nil {
		logger.Info("Closing Redis connection", nil)
		return client.Close()
	}
	return nil
}

func rateKey(metal, purity string) string {
	if purity == "" {
		return fmt.Sprintf("rate:%s", metal)
	}
	return fmt.Sprintf("rate:%s:%s", metal, purity)
}

// CacheRate stores the latest per-gram quote for a metal/purity pair with
// the given TTL, so hot pricing paths skip the database.
func CacheRate(ctx context.Context, metal, purity string, rate decimal.Decimal, ttl time.Duration) error {
	if client == nil {
		return nil // cache disabled, not an error
	}
	if err := client.Set(ctx, rateKey(metal, purity), rate.String(), ttl).Err(); err != nil {
		logger.Error("Failed to cache metal rate", err, map[string]interface{}{
			"metal":  metal,
			"purity": purity,
		})
		return err
	}
	return nil
}

// GetCachedRate returns the cached quote, or ok=false on a miss or when
// the cache is disabled.
func GetCachedRate(ctx context.Context, metal, purity string) (decimal.Decimal, bool) {
	if client == nil {
		return decimal.Zero, false
	}
	val, err := client.Get(ctx, rateKey(metal, purity)).Result()
	if err == redis.Nil {
		return decimal.Zero, false
	}
	if err != nil {
		logger.Warn("Failed to read cached metal rate", map[string]interface{}{
			"metal": metal,
			"error": err.Error(),
		})
		return decimal.Zero, false
	}
	rate, err := decimal.NewFromString(val)
	if err != nil {
		return decimal.Zero, false
	}
	return rate, true
}

// InvalidateRate drops the cached quote after a manual rate upsert.
func InvalidateRate(ctx context.Context, metal, purity string) {
	if client == nil {
		return
	}
	if err := client.Del(ctx, rateKey(metal, purity)).Err(); err != nil {
		logger.Warn("Failed to invalidate cached metal rate", map[string]interface{}{
			"metal": metal,
			"error": err.Error(),
		})
	}
}
