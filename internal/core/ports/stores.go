package ports

//go:generate mockgen -source=stores.go -destination=mocks/mock_stores.go -package=mocks

import (
	"context"
	"image"
	"time"
)

// CounterStore hands out receipt sequence numbers. Next must be atomic:
// concurrent callers never observe the same value, and a value is never
// reused across restarts.
type CounterStore interface {
	// Next increments the persisted counter and returns the new value.
	Next(ctx context.Context) (int64, error)
	// Current returns the last issued value without incrementing.
	Current(ctx context.Context) (int64, error)
}

// TemplateSource yields the background image receipts are drawn on.
// Callers must not modify the returned image.
type TemplateSource interface {
	Load(ctx context.Context) (image.Image, error)
}

// RateLimitStore counts requests per key inside a fixed window.
type RateLimitStore interface {
	Allow(ctx context.Context, key string, limit int64, window time.Duration) (*RateLimitResult, error)
}

// RateLimitResult holds the outcome of a rate limit check.
type RateLimitResult struct {
	Allowed   bool
	Limit     int64
	Remaining int64
	ResetAt   int64 // Unix timestamp
}
