package ratelimit

import "context"

// RateLimiter controls outbound throughput per scope (e.g. the push provider).
type RateLimiter interface {
	Allow(ctx context.Context, scope string) (bool, error)
	Wait(ctx context.Context, scope string) error
}
