// Package memory provides a process-local snapshot repository.
package memory

import (
	"bytes"
	"context"
	"sync"

	"github.com/xenking/posify/internal/domain/pos"
)

var _ pos.Repository = (*Repository)(nil)

// Repository keeps snapshots in a map. Nothing survives a restart.
type Repository struct {
	mu   sync.RWMutex
	data map[pos.Key][]byte
}

// New returns an empty repository.
func New() *Repository {
	return &Repository{data: make(map[pos.Key][]byte)}
}

// Load implements pos.Repository.
func (r *Repository) Load(_ context.Context, key pos.Key) ([]byte, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	v, ok := r.data[key]
	if !ok {
		return nil, pos.ErrNoSnapshot
	}
	return bytes.Clone(v), nil
}

// Save implements pos.Repository.
func (r *Repository) Save(_ context.Context, key pos.Key, data []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.data[key] = bytes.Clone(data)
	return nil
}

// Ping always succeeds.
func (r *Repository) Ping(context.Context) error { return nil }
