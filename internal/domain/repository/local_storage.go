package repository

import "context"

// LocalStorage durable string-keyed slots, the equivalent of browser local storage
type LocalStorage interface {
	// GetItem returns the stored value and whether the key exists
	GetItem(ctx context.Context, key string) (string, bool, error)

	// SetItem stores value under key, replacing any previous value
	SetItem(ctx context.Context, key, value string) error

	// RemoveItem deletes key; missing keys are not an error
	RemoveItem(ctx context.Context, key string) error
}
