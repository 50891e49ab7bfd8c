// Package cache provides the Valkey (Redis-compatible) client and the
// two-level cache for inferred writing-style descriptions.
package cache

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/redis/go-redis/v9"
)

// ValkeyConfig addresses one Valkey server.
type ValkeyConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// ConnectValkey creates a client for cfg and pings it within ctx. Style
// lookups are best-effort, so reads and writes use short timeouts.
func ConnectValkey(ctx context.Context, cfg ValkeyConfig) (*redis.Client, error) {
	addr := net.JoinHostPort(cfg.Host, cfg.Port)
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("valkey ping %s: %w", addr, err)
	}

	slog.Info("valkey connected", "addr", addr, "db", cfg.DB)
	return client, nil
}
