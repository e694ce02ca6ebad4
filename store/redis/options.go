package redis

import (
	"time"

	redisUtils "github.com/chosen1st/sqoop/internal/redis"
	"github.com/chosen1st/sqoop/store"
)

// Options for the Redis store
type Options struct {
	redisUtils.PoolOptions

	// Namespace prefixes every key the store writes
	Namespace string

	// Clock supplies the dates stamped on save
	Clock store.Clock
}

// DefaultOptions returns default Redis store options
func DefaultOptions() Options {
	return Options{
		PoolOptions: redisUtils.PoolOptions{
			URI:            "redis://localhost:6379/",
			MaxConnections: 10,
			MaxIdle:        2,
			IdleTimeout:    240 * time.Second,
			ConnectTimeout: 10 * time.Second,
			ReadTimeout:    10 * time.Second,
			WriteTimeout:   10 * time.Second,
		},
		Namespace: "sqoop:",
		Clock:     time.Now,
	}
}
