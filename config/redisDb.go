package config

import (
	"context"
	"log"
	"os"
	"sync"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
)

var (
	redisMu sync.RWMutex
	rdb     *redis.Client
	locker  *redislock.Client
)

// GetRedisDB returns nil until ConnectRedisWithRetry succeeds.
func GetRedisDB() *redis.Client {
	redisMu.RLock()
	defer redisMu.RUnlock()
	return rdb
}

// GetRedisLock returns nil when redis is not configured.
func GetRedisLock() *redislock.Client {
	redisMu.RLock()
	defer redisMu.RUnlock()
	return locker
}

// SetRedis installs an externally created client (tests, tools).
func SetRedis(client *redis.Client) {
	redisMu.Lock()
	defer redisMu.Unlock()
	rdb = client
	if client == nil {
		locker = nil
		return
	}
	locker = redislock.New(client)
}

// ConnectRedisWithRetry connects and sets the global Redis client + lock client.
// When REDIS_ADDRESS is empty redis stays disabled and locks degrade to no-ops.
func ConnectRedisWithRetry(ctx context.Context, maxAttempts int) {
	redisAddr := os.Getenv("REDIS_ADDRESS")
	if redisAddr == "" {
		log.Printf("REDIS_ADDRESS not set; redis disabled")
		return
	}

	for attempt := 1; maxAttempts <= 0 || attempt <= maxAttempts; attempt++ {
		client := redis.NewClient(&redis.Options{
			Addr:     redisAddr,
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       0,
			PoolSize: 50,
		})
		if err := client.Ping(ctx).Err(); err == nil {
			SetRedis(client)
			log.Printf("connected to redis (attempt=%d addr=%s)", attempt, redisAddr)
			return
		} else {
			_ = client.Close()
			sleep := time.Second * time.Duration(1<<min(attempt, 5))
			if sleep > 30*time.Second {
				sleep = 30 * time.Second
			}
			log.Printf("failed to connect redis (attempt=%d addr=%s): %v; retrying in %s", attempt, redisAddr, err, sleep)
			time.Sleep(sleep)
		}
	}
	log.Printf("redis unreachable at %s; continuing without distributed locks", redisAddr)
}

// PingRedis reports redis health; a disabled redis is healthy.
func PingRedis(ctx context.Context) error {
	client := GetRedisDB()
	if client == nil {
		return nil
	}
	return client.Ping(ctx).Err()
}
