// Package ratelimit implements fixed-window request counting keyed by client
// and route, over a pluggable counter store.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
)

// Store counts hits for a key within the current window.
type Store interface {
	// Hit increments the counter for key and returns the new count. The
	// counter starts over once window has elapsed since the first hit.
	Hit(ctx context.Context, key string, window time.Duration) (int64, error)
}

type Config struct {
	Limit  int64
	Window time.Duration
}

type Limiter struct {
	store  Store
	config Config
}

func New(store Store, config Config) *Limiter {
	return &Limiter{store: store, config: config}
}

// Allow reports whether another request from ip on route fits in the window.
// Store failures let the request through; limiting here is best effort.
func (l *Limiter) Allow(ctx context.Context, ip, route string) bool {
	if l.config.Limit <= 0 {
		return true
	}

	count, err := l.store.Hit(ctx, Key(ip, route), l.config.Window)
	if err != nil {
		log.Warn().Err(err).Str("client_ip", ip).Str("route", route).Msg("rate limit store unavailable")
		return true
	}
	return count <= l.config.Limit
}

func (l *Limiter) Window() time.Duration {
	return l.config.Window
}

func Key(ip, route string) string {
	return fmt.Sprintf("ratelimit:%s:%s", ip, route)
}
