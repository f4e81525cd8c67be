package repository

import (
	"context"

	"github.com/yourusername/storefront-chat/internal/domain/entity"
)

// ChatRepository chat tarixini saqlash uchun interface
type ChatRepository interface {
	// SaveMessage xabarni tarix oxiriga qo'shadi
	SaveMessage(ctx context.Context, message entity.ChatMessage) error

	// GetHistory foydalanuvchining oxirgi limit ta xabarini qaytaradi (limit <= 0: hammasi)
	GetHistory(ctx context.Context, userID string, limit int) ([]entity.ChatMessage, error)

	// ClearHistory foydalanuvchi tarixini tozalash
	ClearHistory(ctx context.Context, userID string) error
}
