// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// style.go caches inferred writing-style descriptions. An in-process
// go-cache map is the L1; Valkey, when configured, is the shared L2 so
// every instance reuses an inference made by any of them.
package cache

import (
	"context"
	"encoding/hex"
	"log/slog"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/blake2b"
)

const (
	// styleKeyPrefix is the Valkey key prefix for style descriptions.
	styleKeyPrefix = "style:"

	// DefaultStyleTTL is how long a description stays cached.
	DefaultStyleTTL = 30 * time.Minute
)

// StyleCache maps a sample set to its inferred style description.
type StyleCache struct {
	local  *gocache.Cache
	client *redis.Client // nil disables L2
	ttl    time.Duration
}

// NewStyleCache creates a style cache. client may be nil.
func NewStyleCache(client *redis.Client, ttl time.Duration) *StyleCache {
	if ttl <= 0 {
		ttl = DefaultStyleTTL
	}
	return &StyleCache{
		local:  gocache.New(ttl, 2*ttl),
		client: client,
		ttl:    ttl,
	}
}

// StyleKey is a blake2b-256 digest of the ordered samples. Each sample is
// length-prefixed so different splits of the same text never collide.
func StyleKey(samples []string) string {
	h, _ := blake2b.New256(nil)
	var n [8]byte
	for _, s := range samples {
		l := uint64(len(s))
		for i := range n {
			n[i] = byte(l >> (8 * i))
		}
		h.Write(n[:])
		h.Write([]byte(s))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// GetStyle returns the cached description for samples.
func (c *StyleCache) GetStyle(ctx context.Context, samples []string) (string, bool) {
	key := StyleKey(samples)
	if v, ok := c.local.Get(key); ok {
		return v.(string), true
	}
	if c.client == nil {
		return "", false
	}

	val, err := c.client.Get(ctx, styleKeyPrefix+key).Result()
	if err == redis.Nil {
		return "", false
	}
	if err != nil {
		slog.Warn("style cache get error", "key", key, "error", err)
		return "", false
	}
	c.local.Set(key, val, gocache.DefaultExpiration)
	slog.Debug("style cache hit", "key", key, "level", "valkey")
	return val, true
}

// SetStyle stores a description in both levels.
func (c *StyleCache) SetStyle(ctx context.Context, samples []string, description string) {
	key := StyleKey(samples)
	c.local.Set(key, description, gocache.DefaultExpiration)
	if c.client == nil {
		return
	}
	if err := c.client.Set(ctx, styleKeyPrefix+key, description, c.ttl).Err(); err != nil {
		slog.Warn("style cache set error", "key", key, "error", err)
	}
}
