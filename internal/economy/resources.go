// Package economy provides the resource ledger, costs, and trade rates.
package economy

import (
	"fmt"
	"sort"
	"strings"

	"github.com/talgya/hexisle/internal/errs"
	"github.com/talgya/hexisle/internal/world"
)

// Cost maps a resource to a required (or offered) quantity.
type Cost map[world.Resource]int

// MaxQuantity bounds a single Cost entry. Sums of valid costs scaled for
// batch comparison stay far from int overflow.
const MaxQuantity = 1 << 30

// Valid reports whether every entry names a real resource with an amount
// in [0, MaxQuantity].
func (c Cost) Valid() bool {
	for r, n := range c {
		if !r.Valid() || n < 0 || n > MaxQuantity {
			return false
		}
	}
	return true
}

// Total returns the sum of all quantities.
func (c Cost) Total() int {
	t := 0
	for _, n := range c {
		t += n
	}
	return t
}

// Scale multiplies every quantity by factor, rounding up so a scaled cost is
// never cheaper than intended.
func (c Cost) Scale(factor float64) Cost {
	out := make(Cost, len(c))
	for r, n := range c {
		v := float64(n) * factor
		iv := int(v)
		if float64(iv) < v {
			iv++
		}
		out[r] = iv
	}
	return out
}

// Plus returns the entry-wise sum of two costs.
func (c Cost) Plus(o Cost) Cost {
	out := make(Cost, len(c)+len(o))
	for r, n := range c {
		out[r] += n
	}
	for r, n := range o {
		out[r] += n
	}
	return out
}

// String renders the cost in resource order, e.g. "1 wood, 1 brick".
func (c Cost) String() string {
	keys := make([]world.Resource, 0, len(c))
	for r, n := range c {
		if n != 0 {
			keys = append(keys, r)
		}
	}
	if len(keys) == 0 {
		return "nothing"
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	parts := make([]string, len(keys))
	for i, r := range keys {
		parts[i] = fmt.Sprintf("%d %s", c[r], r)
	}
	return strings.Join(parts, ", ")
}

// ParseCost converts a name-keyed map (as found in config files) into a Cost.
func ParseCost(raw map[string]int) (Cost, error) {
	out := make(Cost, len(raw))
	for name, n := range raw {
		r, err := world.ParseResource(name)
		if err != nil {
			return nil, err
		}
		if n < 0 {
			return nil, fmt.Errorf("negative amount %d for %s", n, name)
		}
		out[r] = n
	}
	return out, nil
}

// Ledger holds the five bounded resource counters of a civilization.
// It has no notion of capacity; capped operations take the cap as an argument.
type Ledger struct {
	amounts [world.NumResources]int
}

// NewLedger creates an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{}
}

// LedgerFrom builds a ledger from explicit amounts (used when restoring saves).
func LedgerFrom(amounts map[world.Resource]int) (*Ledger, error) {
	l := NewLedger()
	for r, n := range amounts {
		if !r.Valid() {
			return nil, fmt.Errorf("invalid resource %d", uint8(r))
		}
		if n < 0 {
			return nil, fmt.Errorf("negative balance %d for %s", n, r)
		}
		l.amounts[r] = n
	}
	return l, nil
}

// Get returns the balance of r.
func (l *Ledger) Get(r world.Resource) int {
	if !r.Valid() {
		return 0
	}
	return l.amounts[r]
}

// Amounts returns a copy of every balance keyed by resource.
func (l *Ledger) Amounts() map[world.Resource]int {
	out := make(map[world.Resource]int, world.NumResources)
	for _, r := range world.AllResources {
		out[r] = l.amounts[r]
	}
	return out
}

// Total returns the sum of all balances.
func (l *Ledger) Total() int {
	t := 0
	for _, n := range l.amounts {
		t += n
	}
	return t
}

// Add credits n units of r without a cap.
func (l *Ledger) Add(r world.Resource, n int) error {
	if !r.Valid() || n < 0 {
		return errs.Validationf(errs.ErrInvalidArgument, "add %d %s", n, r)
	}
	l.amounts[r] += n
	return nil
}

// AddCapped credits up to n units of r without exceeding limit and returns
// the amount actually added (0 if already at or above the limit).
func (l *Ledger) AddCapped(r world.Resource, n, limit int) int {
	if !r.Valid() || n <= 0 {
		return 0
	}
	room := limit - l.amounts[r]
	if room <= 0 {
		return 0
	}
	if n > room {
		n = room
	}
	l.amounts[r] += n
	return n
}

// Remove debits n units of r, failing without change if the balance is short.
func (l *Ledger) Remove(r world.Resource, n int) error {
	if !r.Valid() || n < 0 {
		return errs.Validationf(errs.ErrInvalidArgument, "remove %d %s", n, r)
	}
	if l.amounts[r] < n {
		return errs.Validationf(errs.ErrInsufficient, "need %d %s, have %d", n, r, l.amounts[r])
	}
	l.amounts[r] -= n
	return nil
}

// CanAfford reports whether every entry of cost is covered.
func (l *Ledger) CanAfford(cost Cost) bool {
	if !cost.Valid() {
		return false
	}
	for r, n := range cost {
		if l.amounts[r] < n {
			return false
		}
	}
	return true
}

// Shortfall returns what is missing to cover cost (empty if affordable).
func (l *Ledger) Shortfall(cost Cost) Cost {
	out := make(Cost)
	for r, n := range cost {
		if r.Valid() && l.amounts[r] < n {
			out[r] = n - l.amounts[r]
		}
	}
	return out
}

// Pay debits cost all-or-nothing.
func (l *Ledger) Pay(cost Cost) error {
	if !cost.Valid() {
		return errs.Validationf(errs.ErrInvalidArgument, "invalid cost %v", cost)
	}
	if !l.CanAfford(cost) {
		return errs.Validationf(errs.ErrInsufficient, "missing %s", l.Shortfall(cost))
	}
	for r, n := range cost {
		l.amounts[r] -= n
	}
	return nil
}

// Reset empties every counter.
func (l *Ledger) Reset() {
	l.amounts = [world.NumResources]int{}
}

// String returns a compact summary of balances.
func (l *Ledger) String() string {
	parts := make([]string, 0, world.NumResources)
	for _, r := range world.AllResources {
		parts = append(parts, fmt.Sprintf("%s=%d", r, l.amounts[r]))
	}
	return strings.Join(parts, " ")
}
