package repositories

import (
	"context"
	"disposal-route-service/internal/domain"
	"fmt"
	"sync"
)

// In-memory implementation of the NetworkStore port. Commits are serialized
// by a mutex, so Update never reports a conflict.
type MemoryNetworkRepository struct {
	mu  sync.RWMutex
	net *domain.Network
}

// NewMemoryNetworkRepository takes a private copy of net.
func NewMemoryNetworkRepository(net *domain.Network) *MemoryNetworkRepository {
	return &MemoryNetworkRepository{net: net.Clone()}
}

func (m *MemoryNetworkRepository) View(ctx context.Context, fn func(net *domain.Network) error) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("view network: %w", err)
	}

	m.mu.RLock()
	snapshot := m.net.Clone()
	m.mu.RUnlock()

	return fn(snapshot)
}

func (m *MemoryNetworkRepository) Update(ctx context.Context, fn func(net *domain.Network) (domain.LedgerDelta, error)) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("update network: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	delta, err := fn(m.net.Clone())
	if err != nil {
		return err
	}
	if delta.Empty() {
		return nil
	}
	if err := m.net.Apply(delta); err != nil {
		return fmt.Errorf("update network: %w", err)
	}
	return nil
}

// Snapshot returns a copy of the current network.
func (m *MemoryNetworkRepository) Snapshot() *domain.Network {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.net.Clone()
}

// LoadMemoryNetwork reads a YAML seed file into a new in-memory repository.
func LoadMemoryNetwork(path string) (*MemoryNetworkRepository, error) {
	seed, err := ReadNetworkSeed(path)
	if err != nil {
		return nil, fmt.Errorf("load memory network: %w", err)
	}
	net, err := seed.Network()
	if err != nil {
		return nil, fmt.Errorf("load memory network: %w", err)
	}
	return NewMemoryNetworkRepository(net), nil
}
