package entity

// RenderKind tells the presentation layer how to draw an instruction.
type RenderKind string

const (
	RenderPlainText   RenderKind = "plain_text"
	RenderProductCard RenderKind = "product_card"
	RenderComboCard   RenderKind = "combo_card"
	RenderActionLink  RenderKind = "action_link"
	RenderOrderInfo   RenderKind = "order_info"
	RenderQRPayment   RenderKind = "qr_payment"
	RenderCartSummary RenderKind = "cart_summary"
)

// RenderInstruction is one element of the ordered stream produced for a reply.
// Only the fields relevant to Kind are set.
type RenderInstruction struct {
	Kind RenderKind

	Text string

	Mention  *Mention
	Item     *CatalogItem
	Resolved bool

	Label string
	URL   string

	Fields []OrderField
	Order  *OrderSnapshot
}
