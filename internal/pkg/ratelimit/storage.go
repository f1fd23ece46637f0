package ratelimit

import (
	"net"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/storage/redis"

	"github.com/entrolytics/vercel-marketplace/internal/pkg/cache"
	"github.com/entrolytics/vercel-marketplace/internal/pkg/env"
)

// NewStorage creates a Redis-backed store for the rate limiter so counters
// survive restarts and are shared across instances. Database 1 keeps limiter
// keys away from the lifecycle data in DB 0.
func NewStorage() fiber.Storage {
	host := "localhost"
	port := 6379
	password := env.GetEnv("CACHE_PASSWORD", "")
	if client := cache.GetClient(); client != nil {
		addr := client.Options().Addr
		if h, p, err := net.SplitHostPort(addr); err == nil {
			host = h
			if v, err := strconv.Atoi(p); err == nil {
				port = v
			}
		}
		if p := client.Options().Password; p != "" {
			password = p
		}
	}

	return redis.New(redis.Config{
		Host:     host,
		Port:     port,
		Password: password,
		Database: 1,
		Reset:    false,
	})
}
