package storage

import (
	"context"
	"sync"
	"time"

	"github.com/yourusername/storefront-chat/internal/domain/entity"
	"github.com/yourusername/storefront-chat/internal/domain/repository"
)

type memoryChatRepository struct {
	mu       sync.RWMutex
	messages map[string][]entity.ChatMessage
	maxSize  int
}

// NewMemoryChatRepository in-memory chat repository yaratish
func NewMemoryChatRepository(maxContextSize int) repository.ChatRepository {
	return &memoryChatRepository{
		messages: make(map[string][]entity.ChatMessage),
		maxSize:  maxContextSize,
	}
}

// SaveMessage xabarni saqlash
func (m *memoryChatRepository) SaveMessage(ctx context.Context, message entity.ChatMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now()
	}
	history := append(m.messages[message.UserID], message)

	// Maksimal hajmni nazorat qilish
	if m.maxSize > 0 && len(history) > m.maxSize {
		history = history[len(history)-m.maxSize:]
	}
	m.messages[message.UserID] = history
	return nil
}

// GetHistory foydalanuvchi chat tarixini olish
func (m *memoryChatRepository) GetHistory(ctx context.Context, userID string, limit int) ([]entity.ChatMessage, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	messages := m.messages[userID]
	if limit > 0 && len(messages) > limit {
		messages = messages[len(messages)-limit:]
	}

	out := make([]entity.ChatMessage, len(messages))
	copy(out, messages)
	return out, nil
}

// ClearHistory foydalanuvchi tarixini tozalash
func (m *memoryChatRepository) ClearHistory(ctx context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.messages, userID)
	return nil
}
