package storage

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/storefront-chat/internal/domain/entity"
)

func newMockCartStore(t *testing.T) (*PostgresCartStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS server_carts")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	store, err := NewPostgresCartStore(db)
	require.NoError(t, err)
	return store, mock
}

func TestPostgresCartStore_Load(t *testing.T) {
	store, mock := newMockCartStore(t)
	ctx := context.Background()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT lines FROM server_carts WHERE user_id = $1")).
		WithArgs("guest_1").
		WillReturnRows(sqlmock.NewRows([]string{"lines"}).
			AddRow([]byte(`[{"itemId":"p1","kind":"product","name":"Bò Lúc Lắc","price":120000,"quantity":2}]`)))

	cart, err := store.Load(ctx, "guest_1")
	require.NoError(t, err)
	require.Len(t, cart.Lines, 1)
	assert.Equal(t, "p1", cart.Lines[0].ItemID)
	assert.Equal(t, int64(240000), cart.Total())

	// unknown user
	mock.ExpectQuery(regexp.QuoteMeta("SELECT lines FROM server_carts")).
		WithArgs("guest_2").
		WillReturnError(sql.ErrNoRows)

	cart, err = store.Load(ctx, "guest_2")
	require.NoError(t, err)
	assert.Empty(t, cart.Lines)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCartStore_SaveAndClear(t *testing.T) {
	store, mock := newMockCartStore(t)
	ctx := context.Background()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO server_carts")).
		WithArgs("guest_1", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM server_carts WHERE user_id = $1")).
		WithArgs("guest_1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := store.Save(ctx, "guest_1", entity.CartState{Lines: []entity.CartLine{
		{ItemID: "c1", Kind: entity.KindCombo, Name: "Combo Gia Đình", Price: 449000, Quantity: 1},
	}})
	assert.NoError(t, err)
	assert.NoError(t, store.Clear(ctx, "guest_1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresChatRepository_History(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS chat_history")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	repo, err := NewPostgresChatRepository(db)
	require.NoError(t, err)
	ctx := context.Background()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO chat_history")).
		WithArgs("m1", "guest_1", false, "- Cá Kho - 89.000₫", sqlmock.AnyArg(), nil, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err = repo.SaveMessage(ctx, entity.ChatMessage{
		ID:               "m1",
		UserID:           "guest_1",
		Text:             "- Cá Kho - 89.000₫",
		ExtractedContext: []entity.Mention{{Name: "Cá Kho", Price: "89.000₫", Kind: entity.KindProduct}},
	})
	require.NoError(t, err)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "user_id", "is_user", "text", "extracted", "order_snapshot", "created_at"}).
		AddRow("m2", "guest_1", false, "Đơn hàng đã tạo", nil, []byte(`{"orderId":"o1","qrCodeUrl":"https://qr/o1"}`), now).
		AddRow("m1", "guest_1", true, "cho mình cá kho", nil, nil, now.Add(-time.Minute))
	mock.ExpectQuery(regexp.QuoteMeta("FROM chat_history")).
		WithArgs("guest_1", 10).
		WillReturnRows(rows)

	history, err := repo.GetHistory(ctx, "guest_1", 10)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "m1", history[0].ID, "oldest first")
	require.NotNil(t, history[1].Order)
	assert.Equal(t, "o1", history[1].Order.OrderID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresParamsDSN(t *testing.T) {
	tests := []struct {
		name string
		in   PostgresParams
		want string
	}{
		{"missing host", PostgresParams{User: "u", DBName: "db"}, ""},
		{"defaults", PostgresParams{Host: "localhost", User: "u", DBName: "shop"}, "postgres://u@localhost:5432/shop?sslmode=disable"},
		{"password", PostgresParams{Host: "db", Port: "6543", User: "u", Password: "p", DBName: "/shop", SSLMode: "require"}, "postgres://u:p@db:6543/shop?sslmode=require"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.in.DSN())
		})
	}
}
