// Package mocks holds hand-written test doubles shared across packages.
package mocks

import (
	"context"
	"sync"
	"time"
)

// MockCache is an in-memory implementation of cache.Cache.
// Used for testing without requiring a real Redis instance.
type MockCache struct {
	data    map[string]interface{}
	expires map[string]time.Time
	mu      sync.RWMutex

	// Now drives expiry; defaults to time.Now.
	Now func() time.Time
	// SetNXErr, when set, is returned by every SetNX call.
	SetNXErr error
	// HealthErr, when set, is returned by Health.
	HealthErr error
}

// NewMockCache creates a new mock cache instance
func NewMockCache() *MockCache {
	return &MockCache{
		data:    make(map[string]interface{}),
		expires: make(map[string]time.Time),
		Now:     time.Now,
	}
}

func (m *MockCache) expired(key string) bool {
	exp, ok := m.expires[key]
	return ok && !m.Now().Before(exp)
}

// Get retrieves a value from the mock cache
func (m *MockCache) Get(_ context.Context, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	val, exists := m.data[key]
	if !exists || m.expired(key) {
		return "", nil
	}
	if strVal, ok := val.(string); ok {
		return strVal, nil
	}
	return "", nil
}

func (m *MockCache) store(key string, value interface{}, expiration time.Duration) {
	m.data[key] = value
	if expiration > 0 {
		m.expires[key] = m.Now().Add(expiration)
	} else {
		delete(m.expires, key)
	}
}

// Del deletes keys from the mock cache
func (m *MockCache) Del(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, key := range keys {
		delete(m.data, key)
		delete(m.expires, key)
	}
	return nil
}

// SetNX sets a key only if it doesn't exist (or has expired)
func (m *MockCache) SetNX(_ context.Context, key string, value interface{}, expiration time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.SetNXErr != nil {
		return false, m.SetNXErr
	}
	if _, exists := m.data[key]; exists && !m.expired(key) {
		return false, nil
	}
	m.store(key, value, expiration)
	return true, nil
}

// DelIfEqual deletes key only while it holds value
func (m *MockCache) DelIfEqual(_ context.Context, key, value string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cur, exists := m.data[key]
	if !exists || m.expired(key) || cur != value {
		return false, nil
	}
	delete(m.data, key)
	delete(m.expires, key)
	return true, nil
}

// Health reports HealthErr
func (m *MockCache) Health(_ context.Context) error {
	return m.HealthErr
}

// Close is a no-op
func (m *MockCache) Close() error {
	return nil
}
