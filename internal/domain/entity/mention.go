package entity

// Mention is a product or combo reference detected in one line of reply text.
// It is always derived and never persisted.
type Mention struct {
	Name  string
	Price string
	Kind  ItemKind
}

// OrderField is a "label: value" line describing an order in reply text.
type OrderField struct {
	Label string
	Value string
}
