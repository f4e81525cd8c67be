package entity

// ItemKind catalog yozuvining turi
type ItemKind string

const (
	KindProduct ItemKind = "product"
	KindCombo   ItemKind = "combo"
)

// CatalogItem represents a purchasable product or combo.
// Everything except ImageRef is fixed once the item is indexed.
type CatalogItem struct {
	ID       string   `json:"id"`
	Kind     ItemKind `json:"kind"`
	Name     string   `json:"name"`
	Price    int64    `json:"price"`
	ImageRef string   `json:"image,omitempty"`
}

// CatalogPage is one page of a paged catalog read.
type CatalogPage struct {
	Items       []CatalogItem `json:"items"`
	TotalPages  int           `json:"totalPages"`
	CurrentPage int           `json:"currentPage"`
}
