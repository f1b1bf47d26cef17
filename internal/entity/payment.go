package domain

// PaymentKind is the terminal outcome of one hosted payment session.
// Exactly one kind is produced per session.
type PaymentKind int

const (
	PaymentSuccess PaymentKind = iota
	PaymentPending
	PaymentError
	PaymentClosed
)

func (k PaymentKind) String() string {
	switch k {
	case PaymentSuccess:
		return "success"
	case PaymentPending:
		return "pending"
	case PaymentError:
		return "error"
	case PaymentClosed:
		return "closed"
	}
	return "unknown"
}

// PaymentResult carries the gateway's resolution of a session.
type PaymentResult struct {
	Kind              PaymentKind
	OrderID           string
	TransactionStatus string
	Message           string
}
