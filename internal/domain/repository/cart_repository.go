package repository

import (
	"context"

	"github.com/yourusername/storefront-chat/internal/domain/entity"
)

// CartStore server tomonidagi savatcha (ServerCart)
type CartStore interface {
	Load(ctx context.Context, userID string) (entity.CartState, error)
	Save(ctx context.Context, userID string, cart entity.CartState) error
	Clear(ctx context.Context, userID string) error
}

// DeviceStore is the device-local persisted store: the stable pseudo user id and
// the ClientCart copy.
type DeviceStore interface {
	// UserID returns the stored pseudo user id, or "" when none was stored yet.
	UserID(ctx context.Context, deviceID string) (string, error)
	SaveUserID(ctx context.Context, deviceID, userID string) error
	LoadCart(ctx context.Context, deviceID string) (entity.CartState, error)
	SaveCart(ctx context.Context, deviceID string, cart entity.CartState) error
}
