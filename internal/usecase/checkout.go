package usecase

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/kasirlab/kasir-pos/internal/cart"
	domain "github.com/kasirlab/kasir-pos/internal/entity"
)

// CheckoutState is the orchestrator's position in one checkout attempt.
type CheckoutState int

const (
	StateIdle CheckoutState = iota
	StateSubmitting
	StateAwaitingPayment
)

func (s CheckoutState) String() string {
	switch s {
	case StateSubmitting:
		return "submitting"
	case StateAwaitingPayment:
		return "awaiting_payment"
	}
	return "idle"
}

type CheckoutInput struct {
	CashierID      string
	IdempotencyKey string
}

type CheckoutResult struct {
	Transaction domain.Transaction
	Payment     domain.PaymentResult
	Pending     bool
	Cancelled   bool
}

// Checkout drives one checkout attempt end to end: snapshot the cart,
// create the transaction, fetch a snap token and await the payment
// session's terminal outcome. At most one attempt is in flight at a
// time. The cart is cleared only when the payment settles (paid or
// pending); every failure and the benign user-close keep it intact so
// retrying is cheap.
type Checkout struct {
	cart    *cart.Cart
	tx      TransactionAPI
	tokens  PaymentTokenAPI
	session PaymentSession
	idem    IdempotencyStore
	events  SettledPublisher
	log     *slog.Logger

	mu    sync.Mutex
	state CheckoutState
}

func NewCheckout(c *cart.Cart, tx TransactionAPI, tokens PaymentTokenAPI, session PaymentSession,
	idem IdempotencyStore, events SettledPublisher, log *slog.Logger) *Checkout {
	return &Checkout{cart: c, tx: tx, tokens: tokens, session: session, idem: idem, events: events, log: log}
}

func (c *Checkout) State() CheckoutState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Checkout) setState(s CheckoutState) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

func (c *Checkout) Execute(ctx context.Context, in CheckoutInput) (CheckoutResult, error) {
	// Fail fast on an empty cart: no network, no state transition.
	if c.cart.Len() == 0 {
		return CheckoutResult{}, ErrEmptyCart
	}

	c.mu.Lock()
	if c.state != StateIdle {
		c.mu.Unlock()
		return CheckoutResult{}, ErrCheckoutInProgress
	}
	c.state = StateSubmitting
	c.mu.Unlock()
	defer c.setState(StateIdle)

	scope := in.CashierID
	if scope == "" {
		scope = "pos"
	}
	locked := false
	if in.IdempotencyKey != "" {
		if id, ok, _ := c.idem.Recall(ctx, scope, in.IdempotencyKey); ok {
			return CheckoutResult{}, &DuplicateCheckoutError{TransactionID: id}
		}
		ok, err := c.idem.TryLock(ctx, scope, in.IdempotencyKey)
		if err != nil {
			return CheckoutResult{}, err
		}
		if !ok {
			return CheckoutResult{}, &DuplicateCheckoutError{}
		}
		locked = true
	}
	// A failed or abandoned attempt releases the key so the same cart
	// can be retried immediately.
	release := func() {
		if locked {
			_ = c.idem.Release(ctx, scope, in.IdempotencyKey)
		}
	}

	// Snapshot the cart at this instant. Later edits belong to the next
	// order and must not leak into this transaction.
	lines := c.cart.Lines()
	if len(lines) == 0 {
		release()
		return CheckoutResult{}, ErrEmptyCart
	}
	items := make([]domain.TransactionItem, 0, len(lines))
	for _, l := range lines {
		items = append(items, domain.TransactionItem{
			PlateID:  l.Plate.ID,
			Quantity: l.Quantity,
			Price:    l.Plate.Price,
		})
	}

	tx, err := c.tx.Create(ctx, items)
	if err != nil {
		release()
		return CheckoutResult{}, &TransactionCreateError{Err: err}
	}

	token, err := c.tokens.SnapToken(ctx, tx.ID)
	if err != nil {
		release()
		return CheckoutResult{}, &PaymentTokenError{TransactionID: tx.ID, Err: err}
	}

	c.setState(StateAwaitingPayment)

	res, err := c.session.Pay(ctx, token)
	if err != nil {
		release()
		return CheckoutResult{}, &PaymentFailedError{Message: err.Error()}
	}

	switch res.Kind {
	case domain.PaymentSuccess, domain.PaymentPending:
		// The order is committed server-side; the cart must not
		// re-offer already-ordered plates.
		c.cart.Clear()
		if locked {
			_ = c.idem.Remember(ctx, scope, in.IdempotencyKey, tx.ID)
		}
		c.publishSettled(ctx, tx, res)
		return CheckoutResult{
			Transaction: tx,
			Payment:     res,
			Pending:     res.Kind == domain.PaymentPending,
		}, nil

	case domain.PaymentClosed:
		// Benign abandonment: keep the cart, no error to the caller.
		release()
		c.log.Info("payment popup closed by user", "transaction_id", tx.ID)
		return CheckoutResult{Transaction: tx, Payment: res, Cancelled: true}, nil

	default: // domain.PaymentError
		release()
		return CheckoutResult{}, &PaymentFailedError{Message: res.Message}
	}
}

func (c *Checkout) publishSettled(ctx context.Context, tx domain.Transaction, res domain.PaymentResult) {
	ev := domain.SettledEvent{
		EventID:       uuid.NewString(),
		TransactionID: tx.ID,
		OrderID:       tx.OrderID,
		TotalAmount:   tx.TotalAmount,
		Pending:       res.Kind == domain.PaymentPending,
		SettledAt:     time.Now().UTC(),
	}
	if err := c.events.PublishSettled(ctx, ev); err != nil {
		// Settlement already happened; a lost event is recoverable from
		// the backend's transaction log, so log and move on.
		c.log.Error("publish settled event", "transaction_id", tx.ID, "error", err)
	}
}
