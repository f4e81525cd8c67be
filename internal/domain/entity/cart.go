package entity

// CartLine bitta savatcha qatori
type CartLine struct {
	ItemID   string   `json:"itemId"`
	Kind     ItemKind `json:"kind"`
	Name     string   `json:"name"`
	Price    int64    `json:"price"`
	Quantity int      `json:"quantity"`
	ImageRef string   `json:"image,omitempty"`
}

// Subtotal returns price × quantity.
func (l CartLine) Subtotal() int64 {
	return l.Price * int64(l.Quantity)
}

// SameItem reports whether both lines point at the same catalog entry.
func (l CartLine) SameItem(kind ItemKind, itemID string) bool {
	return l.Kind == kind && l.ItemID == itemID
}

// CartState is an ordered cart snapshot.
// DisplayTotal is a label supplied from outside (e.g. by the assistant) and is
// never used for calculations; Total() is.
type CartState struct {
	Lines        []CartLine `json:"lines"`
	DisplayTotal string     `json:"displayTotal,omitempty"`
}

// Total sums price × quantity over all lines.
func (c CartState) Total() int64 {
	var sum int64
	for _, l := range c.Lines {
		sum += l.Subtotal()
	}
	return sum
}

// ItemCount sums quantities.
func (c CartState) ItemCount() int {
	n := 0
	for _, l := range c.Lines {
		n += l.Quantity
	}
	return n
}

// Clone returns a deep copy safe to hand to other goroutines.
func (c CartState) Clone() CartState {
	out := CartState{DisplayTotal: c.DisplayTotal}
	if len(c.Lines) > 0 {
		out.Lines = make([]CartLine, len(c.Lines))
		copy(out.Lines, c.Lines)
	}
	return out
}
