package repository

import (
	"context"

	"github.com/yourusername/storefront-chat/internal/domain/entity"
)

// ChatTransport assistant bilan ishlash uchun interface
type ChatTransport interface {
	// Send foydalanuvchi xabarini savatcha snapshoti bilan yuboradi va javobni qaytaradi
	Send(ctx context.Context, req entity.ChatRequest) (entity.ChatReply, error)
}
