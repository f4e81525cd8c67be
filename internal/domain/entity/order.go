package entity

// OrderSnapshot is the structured order payload an assistant reply may carry.
type OrderSnapshot struct {
	OrderID       string     `json:"orderId"`
	OrderCode     string     `json:"orderCode,omitempty"`
	CustomerName  string     `json:"customerName,omitempty"`
	Phone         string     `json:"phone,omitempty"`
	Address       string     `json:"address,omitempty"`
	PaymentMethod string     `json:"paymentMethod,omitempty"`
	PaymentStatus string     `json:"paymentStatus,omitempty"`
	QRCodeURL     string     `json:"qrCodeUrl,omitempty"`
	Total         int64      `json:"total,omitempty"`
	Lines         []CartLine `json:"items,omitempty"`
}

// AwaitingQRPayment reports whether the order shows a QR code and is not yet paid.
func (o *OrderSnapshot) AwaitingQRPayment() bool {
	if o == nil || o.OrderID == "" || o.QRCodeURL == "" {
		return false
	}
	return !(PaymentStatus{Success: true, PaymentStatus: o.PaymentStatus}).Paid()
}
