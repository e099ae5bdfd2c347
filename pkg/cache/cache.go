// Package cache provides an explicit cache capability (get/set/invalidate
// with TTL) that components receive by injection. Invalidation is triggered
// by mutations, never by process-wide singletons.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrCacheMiss is returned by Get when the key is absent or expired.
var ErrCacheMiss = errors.New("cache: key not found")

// Cache is the capability injected into components that need caching.
type Cache interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Get(ctx context.Context, key string, dest interface{}) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// DashboardKey is the cache key for a user's dashboard summary.
func DashboardKey(userID uuid.UUID) string {
	return fmt.Sprintf("dashboard:%s", userID)
}

// GateGuardKey is the cache key for the navigation gate's dedupe guard.
func GateGuardKey(userID uuid.UUID) string {
	return fmt.Sprintf("gate:last:%s", userID)
}
