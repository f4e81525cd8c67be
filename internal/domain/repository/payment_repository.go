package repository

import (
	"context"

	"github.com/yourusername/storefront-chat/internal/domain/entity"
)

// PaymentGateway payment status read and manual confirm
type PaymentGateway interface {
	// CheckStatus returns ErrOrderNotFound when the order does not exist.
	// Any other error is transient.
	CheckStatus(ctx context.Context, orderID string) (entity.PaymentStatus, error)

	// Confirm records a customer's "I have paid" action.
	Confirm(ctx context.Context, orderID string) (entity.PaymentConfirmation, error)
}
