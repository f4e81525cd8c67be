package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/storefront-chat/internal/domain/entity"
	"github.com/yourusername/storefront-chat/internal/domain/repository"
	"github.com/yourusername/storefront-chat/pkg/logger"
)

func TestMain(m *testing.M) {
	logger.Discard()
	os.Exit(m.Run())
}

func TestSQLiteDeviceStore_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "device.db")
	store, err := OpenSQLiteDeviceStore(path)
	require.NoError(t, err)
	defer store.Close()
	ctx := context.Background()

	id, err := store.UserID(ctx, "tg_1")
	require.NoError(t, err)
	assert.Empty(t, id)

	require.NoError(t, store.SaveUserID(ctx, "tg_1", "guest_a"))
	require.NoError(t, store.SaveUserID(ctx, "tg_1", "guest_b"))
	id, err = store.UserID(ctx, "tg_1")
	require.NoError(t, err)
	assert.Equal(t, "guest_b", id)

	cart := entity.CartState{
		Lines:        []entity.CartLine{{ItemID: "p2", Kind: entity.KindProduct, Name: "Bò Lúc Lắc", Price: 120000, Quantity: 3}},
		DisplayTotal: "360.000₫",
	}
	require.NoError(t, store.SaveCart(ctx, "tg_1", cart))
	got, err := store.LoadCart(ctx, "tg_1")
	require.NoError(t, err)
	assert.Equal(t, cart, got)

	empty, err := store.LoadCart(ctx, "tg_2")
	require.NoError(t, err)
	assert.Empty(t, empty.Lines)
}

func TestSQLiteDeviceStore_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "device.db")
	ctx := context.Background()

	first, err := OpenSQLiteDeviceStore(path)
	require.NoError(t, err)
	require.NoError(t, first.SaveUserID(ctx, "tg_9", "guest_9"))
	require.NoError(t, first.Close())

	second, err := OpenSQLiteDeviceStore(path)
	require.NoError(t, err)
	defer second.Close()
	id, err := second.UserID(ctx, "tg_9")
	require.NoError(t, err)
	assert.Equal(t, "guest_9", id)
}

func TestMemoryStores_CopyOnRead(t *testing.T) {
	ctx := context.Background()
	carts := NewMemoryCartStore()
	line := entity.CartLine{ItemID: "p1", Kind: entity.KindProduct, Price: 10, Quantity: 1}
	require.NoError(t, carts.Save(ctx, "u", entity.CartState{Lines: []entity.CartLine{line}}))

	got, _ := carts.Load(ctx, "u")
	got.Lines[0].Quantity = 99
	again, _ := carts.Load(ctx, "u")
	assert.Equal(t, 1, again.Lines[0].Quantity)

	require.NoError(t, carts.Clear(ctx, "u"))
	again, _ = carts.Load(ctx, "u")
	assert.Empty(t, again.Lines)
}

func TestMemoryChatRepository_TrimAndLimit(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryChatRepository(3)
	for _, text := range []string{"a", "b", "c", "d"} {
		require.NoError(t, repo.SaveMessage(ctx, entity.ChatMessage{UserID: "u", Text: text}))
	}

	all, err := repo.GetHistory(ctx, "u", 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "b", all[0].Text)

	last, _ := repo.GetHistory(ctx, "u", 1)
	require.Len(t, last, 1)
	assert.Equal(t, "d", last[0].Text)

	require.NoError(t, repo.ClearHistory(ctx, "u"))
	all, _ = repo.GetHistory(ctx, "u", 0)
	assert.Empty(t, all)
}

func TestXLSXCatalog_ExportThenOpen(t *testing.T) {
	items := []entity.CatalogItem{
		{ID: "p1", Kind: entity.KindProduct, Name: "Salad Cải Mầm Trứng", Price: 65000, ImageRef: "https://img/p1.jpg"},
		{ID: "p2", Kind: entity.KindProduct, Name: "Bò Lúc Lắc", Price: 120000},
		{ID: "p3", Kind: entity.KindProduct, Name: "Cá Kho Làng Vũ Đại", Price: 89000},
		{ID: "c1", Kind: entity.KindCombo, Name: "Combo Gia Đình", Price: 449000},
	}
	raw, err := ExportCatalog(items)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "menu.xlsx")
	require.NoError(t, os.WriteFile(path, raw, 0o644))

	catalog, err := OpenXLSXCatalog(path)
	require.NoError(t, err)
	var _ repository.CatalogSource = catalog
	ctx := context.Background()

	page, err := catalog.FetchPage(ctx, entity.KindProduct, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, page.TotalPages)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "Salad Cải Mầm Trứng", page.Items[0].Name)
	assert.Equal(t, "https://img/p1.jpg", page.Items[0].ImageRef)

	page, err = catalog.FetchPage(ctx, entity.KindProduct, 3, 2)
	require.NoError(t, err)
	assert.Empty(t, page.Items)

	combo, err := catalog.FetchByID(ctx, entity.KindCombo, "c1")
	require.NoError(t, err)
	assert.Equal(t, int64(449000), combo.Price)

	_, err = catalog.FetchByID(ctx, entity.KindProduct, "nope")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestParsePriceCell(t *testing.T) {
	assert.Equal(t, int64(89000), parsePriceCell("89.000₫"))
	assert.Equal(t, int64(89000), parsePriceCell("89000"))
	assert.Equal(t, int64(0), parsePriceCell(""))
}

func TestOpenStores_MemoryFallback(t *testing.T) {
	stores, err := OpenStores(StoreOptions{DeviceDBPath: filepath.Join(t.TempDir(), "d.db"), HistoryMaxMemory: 10})
	require.NoError(t, err)
	defer stores.Close()

	assert.IsType(t, &MemoryCartStore{}, stores.Cart)
	assert.IsType(t, &SQLiteDeviceStore{}, stores.Device)

	noDisk, err := OpenStores(StoreOptions{})
	require.NoError(t, err)
	assert.IsType(t, &MemoryDeviceStore{}, noDisk.Device)
	assert.NoError(t, noDisk.Close())
}
