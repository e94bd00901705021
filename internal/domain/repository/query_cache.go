package repository

import (
	"context"
	"time"
)

// QueryCache stores serialized query results by key
type QueryCache interface {
	// Get decodes the cached value into dest and reports a hit
	Get(ctx context.Context, key string, dest any) (bool, error)

	// Set stores value for ttl
	Set(ctx context.Context, key string, value any, ttl time.Duration) error

	// Delete removes key
	Delete(ctx context.Context, key string) error
}
