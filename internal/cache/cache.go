// Package cache provides a namespaced key-value store with TTL expiry for
// raw source payloads. Lookups degrade to a miss on any storage failure so
// callers never branch on cache errors.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"
)

// DefaultTTL applies when a call passes a zero TTL.
const DefaultTTL = 7 * 24 * time.Hour

// Store is the namespaced TTL cache contract shared by the Postgres-backed
// store and the in-memory store.
type Store interface {
	// Get returns the cached payload and true on a hit. Expired or missing
	// entries and storage errors all report a miss.
	Get(ctx context.Context, namespace, identifier string) ([]byte, bool)
	// Set stores a payload under (namespace, identifier) for ttl (zero
	// means DefaultTTL). Reports whether the write succeeded.
	Set(ctx context.Context, namespace, identifier string, payload []byte, ttl time.Duration) bool
	// Exists reports whether a live entry is present.
	Exists(ctx context.Context, namespace, identifier string) bool
	// RemainingTTL returns the time until expiry, or zero when absent.
	RemainingTTL(ctx context.Context, namespace, identifier string) time.Duration
	// Delete removes an entry. Reports whether an entry was removed.
	Delete(ctx context.Context, namespace, identifier string) bool
	// InvalidateNamespace removes every entry in the namespace and returns
	// the number removed.
	InvalidateNamespace(ctx context.Context, namespace string) int
}

// GetJSON unmarshals a cached payload into out, reporting a miss when the
// entry is absent or does not parse.
func GetJSON(ctx context.Context, s Store, namespace, identifier string, out any) bool {
	payload, ok := s.Get(ctx, namespace, identifier)
	if !ok {
		return false
	}
	return json.Unmarshal(payload, out) == nil
}

// SetJSON marshals v and stores it. Reports whether the write succeeded.
func SetJSON(ctx context.Context, s Store, namespace, identifier string, v any, ttl time.Duration) bool {
	payload, err := json.Marshal(v)
	if err != nil {
		return false
	}
	return s.Set(ctx, namespace, identifier, payload, ttl)
}

// GetOrCompute returns the cached payload or invokes compute, caching a
// successful result. A compute error is logged and yields (nil, false); the
// cache layer never surfaces it.
func GetOrCompute(ctx context.Context, s Store, logger *zap.Logger, namespace, identifier string, ttl time.Duration, compute func(context.Context) ([]byte, error)) ([]byte, bool) {
	if payload, ok := s.Get(ctx, namespace, identifier); ok {
		return payload, true
	}
	payload, err := compute(ctx)
	if err != nil {
		logger.Warn("cache compute failed",
			zap.String("namespace", namespace),
			zap.String("identifier", identifier),
			zap.Error(err))
		return nil, false
	}
	if payload == nil {
		return nil, false
	}
	s.Set(ctx, namespace, identifier, payload, ttl)
	return payload, true
}
