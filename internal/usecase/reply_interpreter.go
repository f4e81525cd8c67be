package usecase

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/yourusername/storefront-chat/internal/domain/entity"
)

var (
	listLineRe   = regexp.MustCompile(`^\s*(?:[-*•+]|\d{1,2}[.)])\s+`)
	orderFieldRe = regexp.MustCompile(`(?i)^\s*(?:[-*•+]\s*)?[*_]*\s*(mã đơn hàng|mã đơn|tổng tiền|họ tên|tên khách hàng|số điện thoại|sđt|địa chỉ|trạng thái|phương thức thanh toán|thanh toán)\s*[*_]*\s*:\s*[*_]*\s*(.+?)\s*[*_]*\s*$`)
	markdownLink = regexp.MustCompile(`\[([^\]]+)\]\((https?://[^)\s]+)\)`)
)

// ReplyInterpreter turns assistant reply text into an ordered render stream.
type ReplyInterpreter struct {
	extractor *Extractor
	index     *CatalogIndex
}

// NewReplyInterpreter wires the extractor with the shared catalog index.
func NewReplyInterpreter(extractor *Extractor, index *CatalogIndex) *ReplyInterpreter {
	return &ReplyInterpreter{extractor: extractor, index: index}
}

// mentionKey identifies an item across differently phrased lines.
func mentionKey(m entity.Mention) string {
	return NormalizeKey(m.Name) + "|" + digitsOnly(m.Price)
}

// Interpret builds the instruction stream for one reply and returns the mentions
// that were rendered as cards.
func (ri *ReplyInterpreter) Interpret(reply entity.ChatReply) ([]entity.RenderInstruction, []entity.Mention) {
	lines := strings.Split(strings.ReplaceAll(reply.Text, "\r\n", "\n"), "\n")

	// List lines take precedence over prose repeating the same item.
	listKeys := make(map[string]struct{})
	for _, line := range lines {
		if !listLineRe.MatchString(line) {
			continue
		}
		if m, ok := ri.extractor.ExtractAny(line); ok {
			listKeys[mentionKey(m)] = struct{}{}
		}
	}

	b := &streamBuilder{}
	var mentions []entity.Mention
	var fields []entity.OrderField

	flushFields := func() {
		if len(fields) == 0 {
			return
		}
		b.flushText()
		b.out = append(b.out, entity.RenderInstruction{Kind: entity.RenderOrderInfo, Fields: fields})
		fields = nil
	}

	for _, line := range lines {
		if fm := orderFieldRe.FindStringSubmatch(line); fm != nil {
			fields = append(fields, entity.OrderField{Label: strings.TrimSpace(fm[1]), Value: strings.TrimSpace(fm[2])})
			continue
		}
		if strings.TrimSpace(line) == "" && len(fields) > 0 {
			continue
		}
		flushFields()

		if links := markdownLink.FindAllStringSubmatch(line, -1); len(links) > 0 {
			rest := strings.TrimSpace(markdownLink.ReplaceAllString(line, ""))
			if strings.Trim(rest, " :-•*") != "" {
				b.text(rest)
			}
			b.flushText()
			for _, l := range links {
				b.out = append(b.out, entity.RenderInstruction{Kind: entity.RenderActionLink, Label: l[1], URL: l[2]})
			}
			continue
		}

		item, totals, hasTotals := SplitTotals(line)
		if m, ok := ri.extractor.ExtractAny(line); ok {
			if _, dup := listKeys[mentionKey(m)]; dup && !listLineRe.MatchString(line) {
				b.text(line)
				continue
			}
			b.flushText()
			b.out = append(b.out, ri.card(m))
			mentions = append(mentions, m)
			if hasTotals {
				b.out = append(b.out, totalsInstruction(totals))
			}
			continue
		}
		if hasTotals {
			if strings.TrimSpace(item) != "" {
				b.text(item)
			}
			b.flushText()
			b.out = append(b.out, totalsInstruction(totals))
			continue
		}
		b.text(line)
	}
	flushFields()
	b.flushText()

	out := b.out
	if reply.Order != nil {
		out = attachOrder(out, reply.Order)
		if reply.Order.AwaitingQRPayment() {
			out = append(out, entity.RenderInstruction{
				Kind:  entity.RenderQRPayment,
				URL:   reply.Order.QRCodeURL,
				Order: reply.Order,
			})
		}
	}
	return out, mentions
}

func (ri *ReplyInterpreter) card(m entity.Mention) entity.RenderInstruction {
	kind := entity.RenderProductCard
	if m.Kind == entity.KindCombo {
		kind = entity.RenderComboCard
	}
	mention := m
	in := entity.RenderInstruction{Kind: kind, Mention: &mention}
	if item, ok := ResolveMention(m.Name, ri.index); ok {
		in.Item = &item
		in.Resolved = true
	}
	return in
}

func totalsInstruction(totals string) entity.RenderInstruction {
	return entity.RenderInstruction{
		Kind:  entity.RenderCartSummary,
		Text:  strings.TrimSpace(strings.Trim(totals, "*_ ")),
		Label: firstPrice(totals),
	}
}

// attachOrder puts the structured order onto the last text-derived OrderInfo, or
// appends a new one built from the snapshot.
func attachOrder(out []entity.RenderInstruction, order *entity.OrderSnapshot) []entity.RenderInstruction {
	for i := len(out) - 1; i >= 0; i-- {
		if out[i].Kind == entity.RenderOrderInfo {
			out[i].Order = order
			return out
		}
	}
	return append(out, entity.RenderInstruction{
		Kind:   entity.RenderOrderInfo,
		Fields: orderFields(order),
		Order:  order,
	})
}

func orderFields(o *entity.OrderSnapshot) []entity.OrderField {
	var fields []entity.OrderField
	add := func(label, value string) {
		if strings.TrimSpace(value) != "" {
			fields = append(fields, entity.OrderField{Label: label, Value: value})
		}
	}
	code := o.OrderCode
	if code == "" {
		code = o.OrderID
	}
	add("Mã đơn hàng", code)
	add("Họ tên", o.CustomerName)
	add("Số điện thoại", o.Phone)
	add("Địa chỉ", o.Address)
	add("Phương thức thanh toán", o.PaymentMethod)
	add("Trạng thái", o.PaymentStatus)
	if o.Total > 0 {
		add("Tổng tiền", FormatVND(o.Total))
	}
	return fields
}

// FormatVND renders an amount with dot thousands separators: 449000 -> "449.000₫".
func FormatVND(amount int64) string {
	neg := amount < 0
	if neg {
		amount = -amount
	}
	s := fmt.Sprintf("%d", amount)
	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	if neg {
		return "-" + b.String() + "₫"
	}
	return b.String() + "₫"
}

// streamBuilder merges consecutive plain lines into one PlainText instruction.
type streamBuilder struct {
	out     []entity.RenderInstruction
	pending []string
}

func (b *streamBuilder) text(line string) {
	b.pending = append(b.pending, line)
}

func (b *streamBuilder) flushText() {
	text := strings.TrimSpace(strings.Join(b.pending, "\n"))
	b.pending = nil
	if text == "" {
		return
	}
	b.out = append(b.out, entity.RenderInstruction{Kind: entity.RenderPlainText, Text: text})
}
