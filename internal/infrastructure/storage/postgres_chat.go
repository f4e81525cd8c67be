package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/yourusername/storefront-chat/internal/domain/entity"
)

const chatSchema = `
CREATE TABLE IF NOT EXISTS chat_history (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	is_user BOOLEAN NOT NULL,
	text TEXT,
	extracted JSONB,
	order_snapshot JSONB,
	created_at TIMESTAMPTZ DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_chat_history_user_time ON chat_history (user_id, created_at DESC);
`

// PostgresChatRepository append-only chat tarixi (Postgres)
type PostgresChatRepository struct {
	db *sql.DB
}

// NewPostgresChatRepository ensures the schema and returns the repository.
func NewPostgresChatRepository(db *sql.DB) (*PostgresChatRepository, error) {
	if _, err := db.Exec(chatSchema); err != nil {
		return nil, fmt.Errorf("create chat_history table: %w", err)
	}
	return &PostgresChatRepository{db: db}, nil
}

// SaveMessage xabarni saqlash
func (p *PostgresChatRepository) SaveMessage(ctx context.Context, message entity.ChatMessage) error {
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now()
	}
	extracted, err := nullableJSON(message.ExtractedContext, len(message.ExtractedContext) == 0)
	if err != nil {
		return err
	}
	order, err := nullableJSON(message.Order, message.Order == nil)
	if err != nil {
		return err
	}
	_, err = p.db.ExecContext(ctx, `
	INSERT INTO chat_history (id, user_id, is_user, text, extracted, order_snapshot, created_at)
	VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		message.ID, message.UserID, message.IsUser, message.Text, extracted, order, message.CreatedAt)
	if err != nil {
		return fmt.Errorf("save message: %w", err)
	}
	return nil
}

// GetHistory oxirgi limit ta xabarni eski → yangi tartibda qaytaradi
func (p *PostgresChatRepository) GetHistory(ctx context.Context, userID string, limit int) ([]entity.ChatMessage, error) {
	if limit <= 0 {
		limit = 1000
	}
	rows, err := p.db.QueryContext(ctx, `
	SELECT id, user_id, is_user, text, extracted, order_snapshot, created_at
	FROM chat_history
	WHERE user_id = $1
	ORDER BY created_at DESC
	LIMIT $2`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var res []entity.ChatMessage
	for rows.Next() {
		var (
			msg       entity.ChatMessage
			text      sql.NullString
			extracted []byte
			order     []byte
		)
		if err := rows.Scan(&msg.ID, &msg.UserID, &msg.IsUser, &text, &extracted, &order, &msg.CreatedAt); err != nil {
			return nil, err
		}
		msg.Text = text.String
		if len(extracted) > 0 {
			if err := json.Unmarshal(extracted, &msg.ExtractedContext); err != nil {
				return nil, fmt.Errorf("decode extracted context: %w", err)
			}
		}
		if len(order) > 0 {
			msg.Order = &entity.OrderSnapshot{}
			if err := json.Unmarshal(order, msg.Order); err != nil {
				return nil, fmt.Errorf("decode order snapshot: %w", err)
			}
		}
		res = append(res, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i, j := 0, len(res)-1; i < j; i, j = i+1, j-1 {
		res[i], res[j] = res[j], res[i]
	}
	return res, nil
}

// ClearHistory foydalanuvchi tarixini tozalash
func (p *PostgresChatRepository) ClearHistory(ctx context.Context, userID string) error {
	if _, err := p.db.ExecContext(ctx, `DELETE FROM chat_history WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("clear history: %w", err)
	}
	return nil
}

func nullableJSON(v any, empty bool) (any, error) {
	if empty {
		return nil, nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode json column: %w", err)
	}
	return raw, nil
}
