package kvstore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

// MemoryBackend keeps values in a map. It backs tests and local demos.
type MemoryBackend struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemoryBackend returns an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{values: make(map[string]string)}
}

// Get implements Backend.
func (m *MemoryBackend) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	value, ok := m.values[key]
	return value, ok, nil
}

// Set implements Backend.
func (m *MemoryBackend) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

// Remove implements Backend.
func (m *MemoryBackend) Remove(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}

// Seed stores every value JSON-encoded, as Store.Set would.
func (m *MemoryBackend) Seed(values map[string]any) error {
	for key, value := range values {
		payload, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("encode seed %s: %w", key, err)
		}
		if err := m.Set(context.Background(), key, string(payload)); err != nil {
			return err
		}
	}
	return nil
}

// LoadSeedFile reads a JSON object of key/value pairs into the backend.
func (m *MemoryBackend) LoadSeedFile(path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read seed file %s: %w", path, err)
	}

	var values map[string]any
	if err := json.Unmarshal(content, &values); err != nil {
		return fmt.Errorf("parse seed file %s: %w", path, err)
	}

	return m.Seed(values)
}
