package objectstore

import (
	"context"
	"sync"
)

// Object is a stored object kept by MemoryStore.
type Object struct {
	Body        []byte
	ContentType string
}

// MemoryStore keeps objects in memory. FailFor lets tests inject errors per key.
type MemoryStore struct {
	mu         sync.Mutex
	publicBase string
	objects    map[string]Object
	puts       int

	// FailFor, when set, is consulted before each Put; a non-nil error is returned as-is.
	FailFor func(key string, attempt int) error
	attempts map[string]int
}

func NewMemoryStore(publicBase string) *MemoryStore {
	return &MemoryStore{
		publicBase: publicBase,
		objects:    make(map[string]Object),
		attempts:   make(map[string]int),
	}
}

func (m *MemoryStore) Put(ctx context.Context, key string, body []byte, contentType string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.attempts[key]++
	if m.FailFor != nil {
		if err := m.FailFor(key, m.attempts[key]); err != nil {
			return "", err
		}
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	m.objects[key] = Object{Body: append([]byte(nil), body...), ContentType: contentType}
	m.puts++
	return PublicURL(m.publicBase, key), nil
}

func (m *MemoryStore) Ping(ctx context.Context) error {
	return ctx.Err()
}

// Get returns a stored object.
func (m *MemoryStore) Get(key string) (Object, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.objects[key]
	return o, ok
}

// Puts reports how many successful uploads happened.
func (m *MemoryStore) Puts() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.puts
}

// Attempts reports how many times Put was called for key.
func (m *MemoryStore) Attempts(key string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.attempts[key]
}

var _ Store = (*MemoryStore)(nil)
