package storage

import (
	"context"
	"sync"

	"github.com/yourusername/storefront-chat/internal/domain/entity"
)

// MemoryCartStore ServerCart fallback when no database is configured.
type MemoryCartStore struct {
	mu    sync.RWMutex
	carts map[string]entity.CartState
}

func NewMemoryCartStore() *MemoryCartStore {
	return &MemoryCartStore{carts: make(map[string]entity.CartState)}
}

func (m *MemoryCartStore) Load(_ context.Context, userID string) (entity.CartState, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.carts[userID].Clone(), nil
}

func (m *MemoryCartStore) Save(_ context.Context, userID string, cart entity.CartState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.carts[userID] = cart.Clone()
	return nil
}

func (m *MemoryCartStore) Clear(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.carts, userID)
	return nil
}

// MemoryDeviceStore keeps device state for the lifetime of the process.
type MemoryDeviceStore struct {
	mu    sync.RWMutex
	users map[string]string
	carts map[string]entity.CartState
}

func NewMemoryDeviceStore() *MemoryDeviceStore {
	return &MemoryDeviceStore{
		users: make(map[string]string),
		carts: make(map[string]entity.CartState),
	}
}

func (m *MemoryDeviceStore) UserID(_ context.Context, deviceID string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.users[deviceID], nil
}

func (m *MemoryDeviceStore) SaveUserID(_ context.Context, deviceID, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[deviceID] = userID
	return nil
}

func (m *MemoryDeviceStore) LoadCart(_ context.Context, deviceID string) (entity.CartState, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.carts[deviceID].Clone(), nil
}

func (m *MemoryDeviceStore) SaveCart(_ context.Context, deviceID string, cart entity.CartState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.carts[deviceID] = cart.Clone()
	return nil
}
