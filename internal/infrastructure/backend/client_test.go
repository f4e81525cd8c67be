package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/storefront-chat/internal/domain/entity"
	"github.com/yourusername/storefront-chat/internal/domain/repository"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL+"/", "default-token", srv.Client())
}

func TestFetchPage(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/combos", r.URL.Path)
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		assert.Equal(t, "50", r.URL.Query().Get("limit"))
		_, _ = w.Write([]byte(`{"items":[{"id":"c1","name":"Combo Gia Đình","price":449000,"imageUrl":"https://img/c1"}],"totalPages":3,"currentPage":2}`))
	})

	page, err := c.FetchPage(context.Background(), entity.KindCombo, 2, 50)
	require.NoError(t, err)
	assert.Equal(t, 3, page.TotalPages)
	require.Len(t, page.Items, 1)
	assert.Equal(t, entity.CatalogItem{ID: "c1", Kind: entity.KindCombo, Name: "Combo Gia Đình", Price: 449000, ImageRef: "https://img/c1"}, page.Items[0])
}

func TestFetchByID_NotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/products/p9", r.URL.Path)
		http.NotFound(w, r)
	})

	_, err := c.FetchByID(context.Background(), entity.KindProduct, "p9")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestSend_UsesRequestToken(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer user-token", r.Header.Get("Authorization"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "guest_1", body["userId"])
		assert.NotContains(t, body, "AuthToken")
		lines := body["cartSnapshot"].([]any)
		assert.Len(t, lines, 1)

		_, _ = w.Write([]byte(`{"replyText":"- Cá Kho - 89.000₫","orderSnapshot":{"orderId":"o1","qrCodeUrl":"https://qr/o1"}}`))
	})

	reply, err := c.Send(context.Background(), entity.ChatRequest{
		Message:   "cá kho",
		UserID:    "guest_1",
		SessionID: "s1",
		Cart:      []entity.CartLine{{ItemID: "p3", Kind: entity.KindProduct, Quantity: 1}},
		AuthToken: "user-token",
	})
	require.NoError(t, err)
	assert.Equal(t, "- Cá Kho - 89.000₫", reply.Text)
	require.NotNil(t, reply.Order)
	assert.True(t, reply.Order.AwaitingQRPayment())
	assert.Nil(t, reply.Cart)
}

func TestCheckStatus(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer default-token", r.Header.Get("Authorization"))
		switch r.URL.Path {
		case "/api/orders/o1/payment-status":
			_, _ = w.Write([]byte(`{"success":true,"paymentStatus":"PAID"}`))
		case "/api/orders/gone/payment-status":
			w.WriteHeader(http.StatusNotFound)
		default:
			w.WriteHeader(http.StatusBadGateway)
		}
	})
	ctx := context.Background()

	st, err := c.CheckStatus(ctx, "o1")
	require.NoError(t, err)
	assert.True(t, st.Paid())

	_, err = c.CheckStatus(ctx, "gone")
	assert.ErrorIs(t, err, repository.ErrOrderNotFound)

	_, err = c.CheckStatus(ctx, "flaky")
	require.Error(t, err)
	assert.NotErrorIs(t, err, repository.ErrOrderNotFound)
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusBadGateway, se.Code)
}

func TestConfirm(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/orders/o1/confirm-payment", r.URL.Path)
		_, _ = w.Write([]byte(`{"success":true,"message":"ok"}`))
	})

	res, err := c.Confirm(context.Background(), "o1")
	require.NoError(t, err)
	assert.True(t, res.Success)
}

func TestServerCart(t *testing.T) {
	var saved entity.CartState
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/cart/guest_1", r.URL.Path)
		switch r.Method {
		case http.MethodGet:
			w.WriteHeader(http.StatusNotFound)
		case http.MethodPut:
			require.NoError(t, json.NewDecoder(r.Body).Decode(&saved))
			w.WriteHeader(http.StatusNoContent)
		case http.MethodDelete:
			w.WriteHeader(http.StatusNoContent)
		}
	})
	store := c.CartStore()
	ctx := context.Background()

	cart, err := store.Load(ctx, "guest_1")
	require.NoError(t, err)
	assert.Empty(t, cart.Lines)

	line := entity.CartLine{ItemID: "p2", Kind: entity.KindProduct, Name: "Bò Lúc Lắc", Price: 120000, Quantity: 2}
	require.NoError(t, store.Save(ctx, "guest_1", entity.CartState{Lines: []entity.CartLine{line}}))
	require.Len(t, saved.Lines, 1)
	assert.Equal(t, line, saved.Lines[0])

	assert.NoError(t, store.Clear(ctx, "guest_1"))
}
