// Package snap wraps the gateway's hosted payment widget. The widget
// bundle is fetched lazily and exactly once per process; outcomes for a
// session arrive on the gateway's notify webhook and are delivered to
// the single Pay call awaiting that token.
package snap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	domain "github.com/kasirlab/kasir-pos/internal/entity"
	"github.com/kasirlab/kasir-pos/internal/usecase"
)

var ErrSessionActive = errors.New("a payment session for this token is already active")

type Config struct {
	ScriptURL string
	ClientKey string
}

type Adapter struct {
	cfg Config
	hc  *http.Client
	log *slog.Logger

	mu       sync.Mutex
	loaded   bool
	loadErr  error
	loading  chan struct{} // non-nil while a bootstrap is in flight
	sessions map[string]chan domain.PaymentResult
}

func New(cfg Config, timeout time.Duration, log *slog.Logger) *Adapter {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Adapter{
		cfg:      cfg,
		hc:       &http.Client{Timeout: timeout},
		log:      log,
		sessions: make(map[string]chan domain.PaymentResult),
	}
}

// Pay runs one payment session for token and blocks until the gateway
// resolves it. Exactly one of the four outcomes is returned per call; a
// widget bootstrap failure is reported as a PaymentError outcome rather
// than dropped. The returned error is reserved for context cancellation
// and a token that already has an active session.
func (a *Adapter) Pay(ctx context.Context, token string) (domain.PaymentResult, error) {
	if err := a.ensureLoaded(ctx); err != nil {
		if ctx.Err() != nil {
			return domain.PaymentResult{}, ctx.Err()
		}
		return domain.PaymentResult{
			Kind:    domain.PaymentError,
			Message: "load payment widget: " + err.Error(),
		}, nil
	}

	ch := make(chan domain.PaymentResult, 1)
	a.mu.Lock()
	if _, busy := a.sessions[token]; busy {
		a.mu.Unlock()
		return domain.PaymentResult{}, ErrSessionActive
	}
	a.sessions[token] = ch
	a.mu.Unlock()

	a.log.Info("payment session opened", "token", token)

	select {
	case res := <-ch:
		return res, nil
	case <-ctx.Done():
		a.mu.Lock()
		delete(a.sessions, token)
		a.mu.Unlock()
		return domain.PaymentResult{}, ctx.Err()
	}
}

// Resolve delivers the gateway's outcome for a token. It fires at most
// once per session; the first delivery wins and later calls report an
// unknown token.
func (a *Adapter) Resolve(token string, res domain.PaymentResult) bool {
	a.mu.Lock()
	ch, ok := a.sessions[token]
	if ok {
		delete(a.sessions, token)
	}
	a.mu.Unlock()

	if !ok {
		return false
	}
	ch <- res // buffered; never blocks
	a.log.Info("payment session resolved", "token", token, "outcome", res.Kind.String())
	return true
}

// ensureLoaded fetches the widget bundle once. The first caller loads;
// concurrent callers await the same in-flight load. A failed load is
// not cached: the next call starts a fresh one.
func (a *Adapter) ensureLoaded(ctx context.Context) error {
	a.mu.Lock()
	if a.loaded {
		a.mu.Unlock()
		return nil
	}
	if a.loading != nil {
		ch := a.loading
		a.mu.Unlock()

		select {
		case <-ch:
		case <-ctx.Done():
			return ctx.Err()
		}

		a.mu.Lock()
		defer a.mu.Unlock()
		if a.loaded {
			return nil
		}
		return a.loadErr
	}

	ch := make(chan struct{})
	a.loading = ch
	a.mu.Unlock()

	err := a.fetchScript(ctx)

	a.mu.Lock()
	a.loaded = err == nil
	a.loadErr = err
	a.loading = nil
	close(ch)
	a.mu.Unlock()
	return err
}

func (a *Adapter) fetchScript(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.cfg.ScriptURL, nil)
	if err != nil {
		return err
	}
	q := req.URL.Query()
	q.Set("client_key", a.cfg.ClientKey)
	req.URL.RawQuery = q.Encode()

	resp, err := a.hc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("snap script fetch: status %d", resp.StatusCode)
	}
	a.log.Info("snap widget loaded", "url", a.cfg.ScriptURL)
	return nil
}

// OutcomeFromStatus maps the gateway's transaction_status strings onto
// the four session outcomes.
func OutcomeFromStatus(status string) domain.PaymentKind {
	switch status {
	case "settlement", "capture":
		return domain.PaymentSuccess
	case "pending":
		return domain.PaymentPending
	case "cancel", "close":
		return domain.PaymentClosed
	default: // deny, expire, failure
		return domain.PaymentError
	}
}

var _ usecase.PaymentSession = (*Adapter)(nil)
