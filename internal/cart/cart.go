package cart

import (
	"sync"

	domain "github.com/kasirlab/kasir-pos/internal/entity"
)

// Line is one consolidated cart row. Quantity is always >= 1 while the
// line exists; a line that would drop to zero is removed instead.
type Line struct {
	Plate    domain.Plate
	Quantity int
}

func (l Line) Subtotal() int64 {
	return l.Plate.Price * int64(l.Quantity)
}

// Cart is the shared in-memory order being built at the terminal.
// Lines are keyed by RFID UID and keep insertion order; quantity updates
// never reshuffle. Every method is a single atomic step.
type Cart struct {
	mu    sync.Mutex
	lines []Line
}

func New() *Cart {
	return &Cart{}
}

// Add merges a scanned plate into the cart. A UID already present gets
// +1 quantity and keeps its first-seen name and price; a new UID is
// appended with quantity 1.
func (c *Cart) Add(p domain.Plate) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if i := c.index(p.RFIDUID); i >= 0 {
		c.lines[i].Quantity++
		return
	}
	c.lines = append(c.lines, Line{Plate: p, Quantity: 1})
}

// SetQuantity replaces a line's quantity. qty <= 0 removes the line.
// Unknown UIDs are ignored.
func (c *Cart) SetQuantity(uid string, qty int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.index(uid)
	if i < 0 {
		return
	}
	if qty <= 0 {
		c.lines = append(c.lines[:i], c.lines[i+1:]...)
		return
	}
	c.lines[i].Quantity = qty
}

// Remove drops a line if present; absent UIDs are a no-op.
func (c *Cart) Remove(uid string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if i := c.index(uid); i >= 0 {
		c.lines = append(c.lines[:i], c.lines[i+1:]...)
	}
}

func (c *Cart) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lines = nil
}

// Lines returns a copy of the current lines in insertion order.
func (c *Cart) Lines() []Line {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]Line, len(c.lines))
	copy(out, c.lines)
	return out
}

// Total recomputes the cart total on every call.
func (c *Cart) Total() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	var total int64
	for _, l := range c.lines {
		total += l.Subtotal()
	}
	return total
}

// ItemCount is the summed quantity across all lines.
func (c *Cart) ItemCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	var n int
	for _, l := range c.lines {
		n += l.Quantity
	}
	return n
}

func (c *Cart) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.lines)
}

// index must be called with mu held.
func (c *Cart) index(uid string) int {
	for i := range c.lines {
		if c.lines[i].Plate.RFIDUID == uid {
			return i
		}
	}
	return -1
}
