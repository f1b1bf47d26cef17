package usecase

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/kasirlab/kasir-pos/internal/cart"
	domain "github.com/kasirlab/kasir-pos/internal/entity"
)

// Scanner turns raw scanner/keyboard input into cart lines. One scan at
// a time; a second scan while the first is pending is rejected. The
// cart itself keys merges on UID, so completions arriving out of order
// across terminals still consolidate correctly.
type Scanner struct {
	lookup    PlateLookup
	cart      *cart.Cart
	noticeTTL time.Duration
	log       *slog.Logger

	mu       sync.Mutex
	inFlight bool
	last     domain.Plate
	lastAt   time.Time
}

func NewScanner(lookup PlateLookup, c *cart.Cart, noticeTTL time.Duration, log *slog.Logger) *Scanner {
	if noticeTTL <= 0 {
		noticeTTL = 3 * time.Second
	}
	return &Scanner{lookup: lookup, cart: c, noticeTTL: noticeTTL, log: log}
}

// Scan validates the raw UID, resolves it against the backend and merges
// the plate into the cart. Lookup failures are surfaced verbatim and
// never mutate the cart.
func (s *Scanner) Scan(ctx context.Context, raw string) (domain.Plate, error) {
	uid := strings.TrimSpace(raw)
	if uid == "" {
		return domain.Plate{}, ErrEmptyRFID
	}

	s.mu.Lock()
	if s.inFlight {
		s.mu.Unlock()
		return domain.Plate{}, ErrScanInFlight
	}
	s.inFlight = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.inFlight = false
		s.mu.Unlock()
	}()

	p, err := s.lookup.ByRFID(ctx, uid)
	if err != nil {
		s.log.Warn("scan lookup failed", "rfid_uid", uid, "error", err)
		return domain.Plate{}, err
	}
	if !p.Active {
		return domain.Plate{}, ErrPlateInactive
	}

	s.cart.Add(p)

	s.mu.Lock()
	s.last = p
	s.lastAt = time.Now()
	s.mu.Unlock()

	s.log.Info("plate added", "rfid_uid", p.RFIDUID, "name", p.Name, "price", p.Price)
	return p, nil
}

// LastScanned reports the most recently added plate for the transient
// "added" notice. It expires after the configured window; expiry is a
// presentation detail checked on read, not a background timer.
func (s *Scanner) LastScanned() (domain.Plate, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.lastAt.IsZero() || time.Since(s.lastAt) > s.noticeTTL {
		return domain.Plate{}, false
	}
	return s.last, true
}
