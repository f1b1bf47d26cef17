package usecase

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kasirlab/kasir-pos/internal/cart"
	domain "github.com/kasirlab/kasir-pos/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLookup struct {
	plates map[string]domain.Plate
	err    error
	calls  int32
	gate   chan struct{} // when non-nil, ByRFID blocks until closed
}

func (f *fakeLookup) ByRFID(ctx context.Context, uid string) (domain.Plate, error) {
	atomic.AddInt32(&f.calls, 1)
	if f.gate != nil {
		<-f.gate
	}
	if f.err != nil {
		return domain.Plate{}, f.err
	}
	p, ok := f.plates[uid]
	if !ok {
		return domain.Plate{}, errors.New("Plate not found")
	}
	return p, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func activePlate(uid string, price int64) domain.Plate {
	return domain.Plate{ID: 1, RFIDUID: uid, Name: "Plate " + uid, Price: price, Active: true}
}

func TestScanEmptyInputMakesNoLookup(t *testing.T) {
	for _, raw := range []string{"", "   ", "\t\n"} {
		lookup := &fakeLookup{}
		s := NewScanner(lookup, cart.New(), time.Second, testLogger())

		_, err := s.Scan(context.Background(), raw)
		require.ErrorIs(t, err, ErrEmptyRFID)
		assert.Zero(t, atomic.LoadInt32(&lookup.calls))
	}
}

func TestScanTrimsUID(t *testing.T) {
	lookup := &fakeLookup{plates: map[string]domain.Plate{"ABC123": activePlate("ABC123", 1000)}}
	c := cart.New()
	s := NewScanner(lookup, c, time.Second, testLogger())

	p, err := s.Scan(context.Background(), "  ABC123  ")
	require.NoError(t, err)
	assert.Equal(t, "ABC123", p.RFIDUID)
	assert.Equal(t, 1, c.Len())
}

func TestScanInactivePlateNotAdded(t *testing.T) {
	inactive := activePlate("ABC123", 1000)
	inactive.Active = false
	lookup := &fakeLookup{plates: map[string]domain.Plate{"ABC123": inactive}}
	c := cart.New()
	s := NewScanner(lookup, c, time.Second, testLogger())

	_, err := s.Scan(context.Background(), "ABC123")
	require.ErrorIs(t, err, ErrPlateInactive)
	assert.Zero(t, c.Len())
}

func TestScanLookupErrorSurfacedVerbatim(t *testing.T) {
	lookup := &fakeLookup{err: errors.New("Plate not found")}
	c := cart.New()
	s := NewScanner(lookup, c, time.Second, testLogger())

	_, err := s.Scan(context.Background(), "NOPE")
	require.EqualError(t, err, "Plate not found")
	assert.Zero(t, c.Len())
}

func TestScanAddsAndNoticeExpires(t *testing.T) {
	lookup := &fakeLookup{plates: map[string]domain.Plate{"ABC123": activePlate("ABC123", 1000)}}
	c := cart.New()
	s := NewScanner(lookup, c, 30*time.Millisecond, testLogger())

	_, err := s.Scan(context.Background(), "ABC123")
	require.NoError(t, err)

	// the add happened before the notice
	assert.Equal(t, 1, c.Len())
	last, ok := s.LastScanned()
	require.True(t, ok)
	assert.Equal(t, "ABC123", last.RFIDUID)

	time.Sleep(60 * time.Millisecond)
	_, ok = s.LastScanned()
	assert.False(t, ok)
}

func TestSecondScanWhileInFlightRejected(t *testing.T) {
	gate := make(chan struct{})
	lookup := &fakeLookup{
		plates: map[string]domain.Plate{"ABC123": activePlate("ABC123", 1000)},
		gate:   gate,
	}
	c := cart.New()
	s := NewScanner(lookup, c, time.Second, testLogger())

	started := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		close(started)
		_, err := s.Scan(context.Background(), "ABC123")
		done <- err
	}()
	<-started
	// wait until the first scan holds the in-flight slot
	require.Eventually(t, func() bool {
		return atomic.LoadInt32(&lookup.calls) == 1
	}, time.Second, time.Millisecond)

	_, err := s.Scan(context.Background(), "XYZ789")
	require.ErrorIs(t, err, ErrScanInFlight)

	close(gate)
	require.NoError(t, <-done)
	assert.Equal(t, 1, c.Len())
}

// Two terminals scanning different UIDs whose lookups resolve in reverse
// order must still end with both plates exactly once.
func TestOutOfOrderCompletionsMergeByUID(t *testing.T) {
	c := cart.New()

	gateX := make(chan struct{})
	lookupX := &fakeLookup{plates: map[string]domain.Plate{"X": activePlate("X", 1000)}, gate: gateX}
	lookupY := &fakeLookup{plates: map[string]domain.Plate{"Y": activePlate("Y", 500)}}

	sX := NewScanner(lookupX, c, time.Second, testLogger())
	sY := NewScanner(lookupY, c, time.Second, testLogger())

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := sX.Scan(context.Background(), "X")
		assert.NoError(t, err)
	}()

	// Y completes first while X is still in flight
	_, err := sY.Scan(context.Background(), "Y")
	require.NoError(t, err)

	close(gateX)
	wg.Wait()

	lines := c.Lines()
	require.Len(t, lines, 2)
	seen := map[string]int{}
	for _, l := range lines {
		seen[l.Plate.RFIDUID] += l.Quantity
	}
	assert.Equal(t, map[string]int{"X": 1, "Y": 1}, seen)
}
