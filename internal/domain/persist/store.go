package persist

import (
	"context"
	"errors"
	"sync"

	"github.com/GriffinCanCode/phoneshell/internal/domain/layout"
)

// ErrNotFound is returned by Load when a player has no stored layout
var ErrNotFound = errors.New("persist: layout not found")

// Store reads and writes layout records by player id
type Store interface {
	// Name identifies the backend in logs and metrics
	Name() string
	// Load returns the raw stored record, or ErrNotFound
	Load(ctx context.Context, player string) ([]byte, error)
	// Save replaces the stored record
	Save(ctx context.Context, player string, m layout.Model) error
	Close() error
}

// MemoryStore keeps encoded records in a map
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string][]byte
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string][]byte)}
}

// Name returns "memory"
func (s *MemoryStore) Name() string { return "memory" }

// Load returns a copy of the stored record
func (s *MemoryStore) Load(ctx context.Context, player string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.records[player]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), data...), nil
}

// Save encodes and stores m
func (s *MemoryStore) Save(ctx context.Context, player string, m layout.Model) error {
	data, err := Encode(m)
	if err != nil {
		return err
	}
	s.Put(player, data)
	return nil
}

// Put stores raw bytes, bypassing encoding
func (s *MemoryStore) Put(player string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[player] = append([]byte(nil), data...)
}

// Len returns the number of stored records
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Close is a no-op
func (s *MemoryStore) Close() error { return nil }
