package domain

import "time"

type TransactionStatus string

const (
	TxPending TransactionStatus = "PENDING"
	TxPaid    TransactionStatus = "PAID"
	TxFailed  TransactionStatus = "FAILED"
)

// TransactionItem is one cart line frozen at submission time.
type TransactionItem struct {
	PlateID  int64
	Quantity int
	Price    int64
}

// Transaction is the backend's record of one checkout attempt. It is a
// snapshot: cart edits after submission never flow back into it.
type Transaction struct {
	ID          string
	OrderID     string
	Items       []TransactionItem
	TotalAmount int64
	CreatedAt   time.Time
	Status      TransactionStatus
}
