package telegram

import (
	"sort"

	"github.com/yourusername/storefront-chat/internal/domain/entity"
	"github.com/yourusername/storefront-chat/internal/infrastructure/storage"
)

// buildMenuXLSX mahsulotlar va combolarni nom bo'yicha tartiblab Excel ga yozadi.
// Fayl CATALOG_XLSX_PATH sifatida qayta o'qilishi mumkin.
func buildMenuXLSX(items []entity.CatalogItem) ([]byte, error) {
	sorted := make([]entity.CatalogItem, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Kind != sorted[j].Kind {
			return sorted[i].Kind == entity.KindProduct
		}
		return sorted[i].Name < sorted[j].Name
	})
	return storage.ExportCatalog(sorted)
}
