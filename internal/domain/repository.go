package domain

import (
	"context"
	"time"
)

// CacheRepository defines the interface for caching operations.
// Values are stored JSON-encoded; Get returns the encoded bytes.
type CacheRepository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// CatalogRepository gives read-only access to a built catalog
type CatalogRepository interface {
	All(ctx context.Context) ([]CanonicalProduct, error)
	GetByID(ctx context.Context, id string) (*CanonicalProduct, error)
}

// CatalogWriter publishes a finished catalog as an artifact
type CatalogWriter interface {
	Name() string
	Write(ctx context.Context, products []CanonicalProduct) error
}
