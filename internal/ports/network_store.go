package ports

import (
	"context"
	"disposal-route-service/internal/domain"
	"errors"
)

// ErrConflict reports that a commit lost a race with another writer.
// The caller should take a fresh snapshot and try again.
var ErrConflict = errors.New("network store: commit conflict")

// Port: a boundary for reading the disposal network and committing ledger changes.
type NetworkStore interface {
	// View calls fn with a consistent snapshot of the network. Changes fn
	// makes to the snapshot are never written back.
	View(ctx context.Context, fn func(net *domain.Network) error) error

	// Update calls fn with a snapshot and atomically commits the delta it
	// returns. An empty delta commits nothing.
	Update(ctx context.Context, fn func(net *domain.Network) (domain.LedgerDelta, error)) error
}
