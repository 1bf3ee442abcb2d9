package domain

import (
	"context"
	"time"
)

// VisionGenerator sends a prompt and one image to a multimodal model and returns its text reply
type VisionGenerator interface {
	Generate(ctx context.Context, prompt string, image []byte, mimeType string) (string, error)
}

// CacheRepository defines the interface for caching operations
type CacheRepository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// CatalogRepository provides a read-only snapshot of the internal product catalog
type CatalogRepository interface {
	ListProducts(ctx context.Context) ([]Product, error)
}

// RetailerClient searches a network-backed external retailer catalog
type RetailerClient interface {
	SearchProducts(ctx context.Context, category string) ([]Product, error)
}
