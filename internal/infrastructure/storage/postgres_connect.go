package storage

import (
	"database/sql"
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"github.com/yourusername/storefront-chat/pkg/logger"
)

const (
	postgresConnectAttemptsDefault = 20
	postgresConnectDelayDefault    = 2 * time.Second
)

// PostgresParams are the discrete connection settings used when no DSN is given.
type PostgresParams struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// DSN builds a postgres:// URL, or "" when host, user or database is missing.
func (p PostgresParams) DSN() string {
	host := strings.TrimSpace(p.Host)
	user := strings.TrimSpace(p.User)
	db := strings.TrimPrefix(strings.TrimSpace(p.DBName), "/")
	if host == "" || user == "" || db == "" {
		return ""
	}
	port := strings.TrimSpace(p.Port)
	if port == "" {
		port = "5432"
	}
	sslmode := strings.TrimSpace(p.SSLMode)
	if sslmode == "" {
		sslmode = "disable"
	}

	u := url.URL{
		Scheme: "postgres",
		Host:   net.JoinHostPort(host, port),
		Path:   "/" + db,
	}
	if p.Password == "" {
		u.User = url.User(user)
	} else {
		u.User = url.UserPassword(user, p.Password)
	}
	q := u.Query()
	q.Set("sslmode", sslmode)
	u.RawQuery = q.Encode()
	return u.String()
}

// OpenPostgresWithRetry pings until the server answers. A missing database is
// created once through the server's default "postgres" database.
func OpenPostgresWithRetry(dsn string, attempts int, delay time.Duration) (*sql.DB, error) {
	if attempts <= 0 {
		attempts = postgresConnectAttemptsDefault
	}
	if delay <= 0 {
		delay = postgresConnectDelayDefault
	}

	var lastErr error
	created := false
	for attempt := 1; attempt <= attempts; attempt++ {
		db, err := sql.Open("postgres", dsn)
		if err == nil {
			if err = db.Ping(); err == nil {
				configurePool(db)
				return db, nil
			}
			_ = db.Close()
		}
		lastErr = err
		if !created && isDatabaseMissingError(err) {
			if createErr := createDatabaseFor(dsn); createErr == nil {
				created = true
				continue
			} else {
				lastErr = createErr
			}
		}
		if attempt < attempts {
			logger.WarnLogger.Printf("⏳ Postgres ulanmadi (urinish %d/%d): %v", attempt, attempts, err)
			time.Sleep(delay)
		}
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("postgres connection failed")
	}
	return nil, lastErr
}

func configurePool(db *sql.DB) {
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)
}

func createDatabaseFor(dsn string) error {
	u, err := url.Parse(strings.TrimSpace(dsn))
	if err != nil || u.Host == "" {
		return fmt.Errorf("database name not found in dsn")
	}
	name := strings.TrimPrefix(u.Path, "/")
	if name == "" {
		return fmt.Errorf("database name not found in dsn")
	}
	admin := *u
	admin.Path = "/postgres"

	db, err := sql.Open("postgres", admin.String())
	if err != nil {
		return err
	}
	defer db.Close()
	if _, err := db.Exec("CREATE DATABASE " + quoteIdentifier(name)); err != nil && !isDatabaseExistsError(err) {
		return err
	}
	logger.InfoLogger.Printf("🗄️ Postgres bazasi yaratildi: %s", name)
	return nil
}

func isDatabaseMissingError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "does not exist") && strings.Contains(msg, "database")
}

func isDatabaseExistsError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "already exists") && strings.Contains(msg, "database")
}

func quoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
