package usecase

import (
	"context"

	domain "github.com/kasirlab/kasir-pos/internal/entity"
)

// PlateLookup resolves a scanned RFID UID against the backend.
type PlateLookup interface {
	ByRFID(ctx context.Context, uid string) (domain.Plate, error)
}

// TransactionAPI creates the persisted transaction for a cart snapshot.
type TransactionAPI interface {
	Create(ctx context.Context, items []domain.TransactionItem) (domain.Transaction, error)
}

// PaymentTokenAPI exchanges a transaction id for a snap session token.
type PaymentTokenAPI interface {
	SnapToken(ctx context.Context, transactionID string) (string, error)
}

// PaymentSession drives one hosted payment session to its terminal
// outcome. Exactly one outcome is produced per call; a widget bootstrap
// failure surfaces as a PaymentError outcome, never silently.
type PaymentSession interface {
	Pay(ctx context.Context, token string) (domain.PaymentResult, error)
}

// SettledPublisher fans out settled transactions to downstream services.
type SettledPublisher interface {
	PublishSettled(ctx context.Context, ev domain.SettledEvent) error
}

type IdempotencyStore interface {
	TryLock(ctx context.Context, scope, key string) (bool, error)
	Remember(ctx context.Context, scope, key, value string) error
	Recall(ctx context.Context, scope, key string) (string, bool, error)
	Release(ctx context.Context, scope, key string) error
}
