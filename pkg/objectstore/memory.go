package objectstore

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// MemoryStore is an in-memory Store used in tests and local development.
type MemoryStore struct {
	mu      sync.RWMutex
	objects map[string][]byte
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: make(map[string][]byte)}
}

// List implements Store.
func (m *MemoryStore) List(ctx context.Context, prefix string, max int32) ([]Object, error) {
	if _, _, err := ParseLocation(prefix); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	var locations []string
	for loc := range m.objects {
		if strings.HasPrefix(loc, prefix) {
			locations = append(locations, loc)
		}
	}
	sort.Strings(locations)

	var objects []Object
	for _, loc := range locations {
		if max > 0 && int32(len(objects)) >= max {
			break
		}
		objects = append(objects, Object{Location: loc, Size: int64(len(m.objects[loc]))})
	}
	return objects, nil
}

// Get implements Store.
func (m *MemoryStore) Get(ctx context.Context, location string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	body, ok := m.objects[location]
	if !ok {
		return nil, fmt.Errorf("object not found: %s", location)
	}
	return body, nil
}

// Put implements Store.
func (m *MemoryStore) Put(ctx context.Context, location string, body []byte, contentType string) error {
	if _, _, err := ParseLocation(location); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[location] = body
	return nil
}

// Ensure MemoryStore implements Store at compile time.
var _ Store = (*MemoryStore)(nil)
