package storage

import (
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/yourusername/storefront-chat/internal/domain/repository"
	"github.com/yourusername/storefront-chat/pkg/logger"
)

// StoreOptions selects the backing stores.
type StoreOptions struct {
	PostgresDSN      string
	ConnectAttempts  int
	ConnectDelay     time.Duration
	DeviceDBPath     string
	HistoryMaxMemory int
}

// Stores bundles every persistence adapter the widget needs.
type Stores struct {
	Chat   repository.ChatRepository
	Cart   repository.CartStore
	Device repository.DeviceStore

	closers []func() error
}

// OpenStores connects Postgres when a DSN is set and falls back to memory
// stores when it is empty or unreachable. DeviceDBPath == "" keeps device
// state in memory.
func OpenStores(opts StoreOptions) (*Stores, error) {
	s := &Stores{}

	if err := s.openServerStores(opts); err != nil {
		logger.WarnLogger.Printf("⚠️ Postgres ulanmadi, memoryStore ga qaytdi: %v", err)
		s.Chat = NewMemoryChatRepository(opts.HistoryMaxMemory)
		s.Cart = NewMemoryCartStore()
	}

	if path := strings.TrimSpace(opts.DeviceDBPath); path != "" {
		device, err := OpenSQLiteDeviceStore(path)
		if err != nil {
			_ = s.Close()
			return nil, err
		}
		s.Device = device
		s.closers = append(s.closers, device.Close)
		logger.InfoLogger.Printf("📱 Device store: %s", path)
	} else {
		s.Device = NewMemoryDeviceStore()
	}
	return s, nil
}

func (s *Stores) openServerStores(opts StoreOptions) error {
	dsn := strings.TrimSpace(opts.PostgresDSN)
	if dsn == "" {
		s.Chat = NewMemoryChatRepository(opts.HistoryMaxMemory)
		s.Cart = NewMemoryCartStore()
		return nil
	}
	db, err := OpenPostgresWithRetry(dsn, opts.ConnectAttempts, opts.ConnectDelay)
	if err != nil {
		return err
	}
	return s.attachPostgres(db)
}

func (s *Stores) attachPostgres(db *sql.DB) error {
	chat, err := NewPostgresChatRepository(db)
	if err != nil {
		_ = db.Close()
		return err
	}
	cart, err := NewPostgresCartStore(db)
	if err != nil {
		_ = db.Close()
		return err
	}
	s.Chat = chat
	s.Cart = cart
	s.closers = append(s.closers, db.Close)
	logger.InfoLogger.Println("🗄️ Chat tarixi va savatcha Postgres da saqlanadi")
	return nil
}

// Close releases every opened database handle.
func (s *Stores) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	s.closers = nil
	return errors.Join(errs...)
}
