package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/yourusername/storefront-chat/internal/domain/entity"
)

const cartSchema = `
CREATE TABLE IF NOT EXISTS server_carts (
	user_id TEXT PRIMARY KEY,
	lines JSONB NOT NULL,
	updated_at TIMESTAMPTZ DEFAULT NOW()
);`

// PostgresCartStore is ServerCart backed by one JSONB row per user.
type PostgresCartStore struct {
	db *sql.DB
}

// NewPostgresCartStore ensures the schema and returns the store.
func NewPostgresCartStore(db *sql.DB) (*PostgresCartStore, error) {
	if _, err := db.Exec(cartSchema); err != nil {
		return nil, fmt.Errorf("create server_carts table: %w", err)
	}
	return &PostgresCartStore{db: db}, nil
}

// Load returns an empty cart for unknown users.
func (p *PostgresCartStore) Load(ctx context.Context, userID string) (entity.CartState, error) {
	var raw []byte
	err := p.db.QueryRowContext(ctx, `SELECT lines FROM server_carts WHERE user_id = $1`, userID).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return entity.CartState{}, nil
	}
	if err != nil {
		return entity.CartState{}, fmt.Errorf("load cart: %w", err)
	}
	var lines []entity.CartLine
	if err := json.Unmarshal(raw, &lines); err != nil {
		return entity.CartState{}, fmt.Errorf("decode cart: %w", err)
	}
	return entity.CartState{Lines: lines}, nil
}

func (p *PostgresCartStore) Save(ctx context.Context, userID string, cart entity.CartState) error {
	lines := cart.Lines
	if lines == nil {
		lines = []entity.CartLine{}
	}
	raw, err := json.Marshal(lines)
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}
	_, err = p.db.ExecContext(ctx, `
	INSERT INTO server_carts (user_id, lines, updated_at)
	VALUES ($1, $2, $3)
	ON CONFLICT (user_id) DO UPDATE SET lines = EXCLUDED.lines, updated_at = EXCLUDED.updated_at`,
		userID, raw, time.Now())
	if err != nil {
		return fmt.Errorf("save cart: %w", err)
	}
	return nil
}

func (p *PostgresCartStore) Clear(ctx context.Context, userID string) error {
	if _, err := p.db.ExecContext(ctx, `DELETE FROM server_carts WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}
