package ports

import (
	"context"
	"disposal-route-service/internal/domain"
)

// Cache of connected-storage scan results, keyed by origin and network version.
type ScanCache interface {
	// Return the cached storage ids, and false on a miss.
	Get(ctx context.Context, key string) ([]domain.StorageID, bool, error)
	Put(ctx context.Context, key string, ids []domain.StorageID) error
}
