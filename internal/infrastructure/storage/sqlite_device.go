package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/yourusername/storefront-chat/internal/domain/entity"
)

const deviceSchema = `
CREATE TABLE IF NOT EXISTS device_users (
	device_id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL
);
CREATE TABLE IF NOT EXISTS device_carts (
	device_id TEXT PRIMARY KEY,
	cart TEXT NOT NULL,
	updated_at TIMESTAMP NOT NULL
);`

// SQLiteDeviceStore is the device-local store: pseudo user ids and ClientCart copies.
type SQLiteDeviceStore struct {
	db *sql.DB
}

// OpenSQLiteDeviceStore opens (and creates) the database file at path.
func OpenSQLiteDeviceStore(path string) (*SQLiteDeviceStore, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create device db dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("open device db: %w", err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(deviceSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create device tables: %w", err)
	}
	return &SQLiteDeviceStore{db: db}, nil
}

func (s *SQLiteDeviceStore) Close() error {
	return s.db.Close()
}

// UserID returns "" when the device has no stored identity yet.
func (s *SQLiteDeviceStore) UserID(ctx context.Context, deviceID string) (string, error) {
	var userID string
	err := s.db.QueryRowContext(ctx, `SELECT user_id FROM device_users WHERE device_id = ?`, deviceID).Scan(&userID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("load user id: %w", err)
	}
	return userID, nil
}

func (s *SQLiteDeviceStore) SaveUserID(ctx context.Context, deviceID, userID string) error {
	_, err := s.db.ExecContext(ctx, `
	INSERT INTO device_users (device_id, user_id, created_at) VALUES (?, ?, ?)
	ON CONFLICT(device_id) DO UPDATE SET user_id = excluded.user_id`,
		deviceID, userID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("save user id: %w", err)
	}
	return nil
}

func (s *SQLiteDeviceStore) LoadCart(ctx context.Context, deviceID string) (entity.CartState, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT cart FROM device_carts WHERE device_id = ?`, deviceID).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return entity.CartState{}, nil
	}
	if err != nil {
		return entity.CartState{}, fmt.Errorf("load cart: %w", err)
	}
	var cart entity.CartState
	if err := json.Unmarshal([]byte(raw), &cart); err != nil {
		return entity.CartState{}, fmt.Errorf("decode cart: %w", err)
	}
	return cart, nil
}

func (s *SQLiteDeviceStore) SaveCart(ctx context.Context, deviceID string, cart entity.CartState) error {
	raw, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
	INSERT INTO device_carts (device_id, cart, updated_at) VALUES (?, ?, ?)
	ON CONFLICT(device_id) DO UPDATE SET cart = excluded.cart, updated_at = excluded.updated_at`,
		deviceID, string(raw), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("save cart: %w", err)
	}
	return nil
}
