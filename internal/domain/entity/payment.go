package entity

// PollStatus payment polling holati
type PollStatus string

const (
	PollIdle     PollStatus = "idle"
	PollPolling  PollStatus = "polling"
	PollPaid     PollStatus = "paid"
	PollNotFound PollStatus = "not_found"
	PollStopped  PollStatus = "stopped"
)

// Terminal reports whether no further transitions are allowed.
func (s PollStatus) Terminal() bool {
	return s == PollPaid || s == PollNotFound || s == PollStopped
}

// PaymentStatus is the answer of a payment status read.
type PaymentStatus struct {
	Success       bool   `json:"success"`
	PaymentStatus string `json:"paymentStatus"`
}

// Paid reports whether the gateway considers the order paid.
func (p PaymentStatus) Paid() bool {
	if !p.Success {
		return false
	}
	switch p.PaymentStatus {
	case "paid", "PAID", "completed", "COMPLETED", "success", "SUCCESS":
		return true
	default:
		return false
	}
}

// PaymentConfirmation is the answer of a manual "I have paid" confirm.
type PaymentConfirmation struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}
