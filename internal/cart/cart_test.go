package cart

import (
	"fmt"
	"math/rand"
	"sync"
	"testing"

	domain "github.com/kasirlab/kasir-pos/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func plate(uid string, price int64) domain.Plate {
	return domain.Plate{ID: int64(len(uid)), RFIDUID: uid, Name: "Plate " + uid, Price: price, Active: true}
}

func TestAddMergesByUID(t *testing.T) {
	c := New()
	c.Add(plate("A1", 1000))
	c.Add(plate("A1", 1000))

	lines := c.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, 2, lines[0].Quantity)
	assert.Equal(t, int64(2000), c.Total())
}

func TestAddKeepsFirstSeenFields(t *testing.T) {
	c := New()
	c.Add(plate("A1", 1000))

	// a later scan of the same UID must not rewrite name or price
	changed := plate("A1", 9999)
	changed.Name = "Renamed"
	c.Add(changed)

	lines := c.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, "Plate A1", lines[0].Plate.Name)
	assert.Equal(t, int64(1000), lines[0].Plate.Price)
	assert.Equal(t, 2, lines[0].Quantity)
}

func TestSetQuantityZeroRemoves(t *testing.T) {
	a := New()
	a.Add(plate("A1", 1000))
	a.SetQuantity("A1", 0)

	b := New()
	b.Add(plate("A1", 1000))
	b.Remove("A1")

	assert.Equal(t, b.Lines(), a.Lines())
	assert.Zero(t, a.Len())
}

func TestSetQuantityNegativeRemoves(t *testing.T) {
	c := New()
	c.Add(plate("A1", 1000))
	c.SetQuantity("A1", -3)
	assert.Zero(t, c.Len())
}

func TestSetQuantityKeepsOrder(t *testing.T) {
	c := New()
	c.Add(plate("A1", 1000))
	c.Add(plate("B2", 500))
	c.SetQuantity("A1", 5)

	lines := c.Lines()
	require.Len(t, lines, 2)
	assert.Equal(t, "A1", lines[0].Plate.RFIDUID)
	assert.Equal(t, 5, lines[0].Quantity)
	assert.Equal(t, "B2", lines[1].Plate.RFIDUID)
}

func TestRemoveAbsentIsNoop(t *testing.T) {
	c := New()
	c.Add(plate("A1", 1000))
	c.Remove("missing")
	assert.Equal(t, 1, c.Len())
}

func TestClear(t *testing.T) {
	c := New()
	c.Add(plate("A1", 1000))
	c.Add(plate("B2", 500))
	c.Clear()
	assert.Zero(t, c.Len())
	assert.Zero(t, c.Total())
	assert.Zero(t, c.ItemCount())
}

// TestTotalMatchesFold runs randomized operation sequences against a
// naive model and checks the derived reads after every step.
func TestTotalMatchesFold(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	uids := []string{"A", "B", "C", "D", "E"}

	for run := 0; run < 50; run++ {
		c := New()
		model := map[string]Line{}
		order := []string{}

		for step := 0; step < 200; step++ {
			uid := uids[rng.Intn(len(uids))]
			switch rng.Intn(4) {
			case 0: // add
				p := plate(uid, int64(100*(1+rng.Intn(50))))
				c.Add(p)
				if l, ok := model[uid]; ok {
					l.Quantity++
					model[uid] = l
				} else {
					model[uid] = Line{Plate: p, Quantity: 1}
					order = append(order, uid)
				}
			case 1: // set quantity
				qty := rng.Intn(6) - 1
				c.SetQuantity(uid, qty)
				if l, ok := model[uid]; ok {
					if qty <= 0 {
						delete(model, uid)
						order = removeUID(order, uid)
					} else {
						l.Quantity = qty
						model[uid] = l
					}
				}
			case 2: // remove
				c.Remove(uid)
				if _, ok := model[uid]; ok {
					delete(model, uid)
					order = removeUID(order, uid)
				}
			case 3: // read-only step
			}

			var wantTotal int64
			wantCount := 0
			for _, u := range order {
				l := model[u]
				wantTotal += l.Plate.Price * int64(l.Quantity)
				wantCount += l.Quantity
			}

			msg := fmt.Sprintf("run %d step %d", run, step)
			require.Equal(t, wantTotal, c.Total(), msg)
			require.Equal(t, wantCount, c.ItemCount(), msg)
			require.Equal(t, len(order), c.Len(), msg)

			lines := c.Lines()
			for i, u := range order {
				require.Equal(t, u, lines[i].Plate.RFIDUID, msg)
				require.Equal(t, model[u].Quantity, lines[i].Quantity, msg)
			}
		}
	}
}

func removeUID(order []string, uid string) []string {
	out := order[:0]
	for _, u := range order {
		if u != uid {
			out = append(out, u)
		}
	}
	return out
}

// Interleaved adds from concurrent scan completions must never lose a
// merge or duplicate a UID.
func TestConcurrentAdds(t *testing.T) {
	c := New()
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				c.Add(plate("X", 100))
				c.Add(plate("Y", 200))
			}
		}()
	}
	wg.Wait()

	require.Equal(t, 2, c.Len())
	assert.Equal(t, 2000, c.ItemCount())
	assert.Equal(t, int64(100*1000+200*1000), c.Total())
}
