package domain

import "time"

// SettledEvent is published after a checkout settles (paid or pending
// bank confirmation) so kitchen/notification services can pick it up.
type SettledEvent struct {
	EventID       string    `json:"event_id"`
	TransactionID string    `json:"transaction_id"`
	OrderID       string    `json:"order_id"`
	TotalAmount   int64     `json:"total_amount"`
	Pending       bool      `json:"pending"`
	SettledAt     time.Time `json:"settled_at"`
}
