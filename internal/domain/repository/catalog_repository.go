package repository

import (
	"context"

	"github.com/yourusername/storefront-chat/internal/domain/entity"
)

// CatalogSource paged product/combo read endpoints
type CatalogSource interface {
	// FetchPage returns one page of the given kind (page numbering starts at 1).
	FetchPage(ctx context.Context, kind entity.ItemKind, page, limit int) (entity.CatalogPage, error)

	// FetchByID returns a single item, or ErrNotFound.
	FetchByID(ctx context.Context, kind entity.ItemKind, id string) (*entity.CatalogItem, error)
}
