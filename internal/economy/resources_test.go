package economy

import (
	"errors"
	"testing"

	"github.com/talgya/hexisle/internal/errs"
	"github.com/talgya/hexisle/internal/world"
)

func TestAddCappedNeverExceedsLimit(t *testing.T) {
	l := NewLedger()
	limit := 10
	for i := 0; i < 20; i++ {
		l.AddCapped(world.ResourceWood, 3, limit)
		if got := l.Get(world.ResourceWood); got > limit {
			t.Fatalf("balance %d exceeds limit %d", got, limit)
		}
	}
	if got := l.AddCapped(world.ResourceWood, 5, limit); got != 0 {
		t.Fatalf("AddCapped at limit added %d, want 0", got)
	}

	l.Reset()
	if got := l.AddCapped(world.ResourceOre, 7, 5); got != 5 {
		t.Fatalf("AddCapped added %d, want 5", got)
	}
}

func TestRemoveInsufficient(t *testing.T) {
	l := NewLedger()
	_ = l.Add(world.ResourceBrick, 2)
	err := l.Remove(world.ResourceBrick, 3)
	if !errors.Is(err, errs.ErrInsufficient) {
		t.Fatalf("Remove error = %v, want insufficient", err)
	}
	if l.Get(world.ResourceBrick) != 2 {
		t.Fatalf("failed Remove changed balance")
	}
	if err := l.Add(world.ResourceBrick, -1); err == nil {
		t.Fatalf("negative Add accepted")
	}
}

func TestPayIsAllOrNothing(t *testing.T) {
	l := NewLedger()
	_ = l.Add(world.ResourceWood, 5)
	_ = l.Add(world.ResourceBrick, 1)

	cost := Cost{world.ResourceWood: 2, world.ResourceBrick: 2}
	if l.CanAfford(cost) {
		t.Fatalf("CanAfford true with short brick")
	}
	if err := l.Pay(cost); !errors.Is(err, errs.ErrInsufficient) {
		t.Fatalf("Pay error = %v", err)
	}
	if l.Get(world.ResourceWood) != 5 || l.Get(world.ResourceBrick) != 1 {
		t.Fatalf("failed Pay debited: %s", l)
	}

	if err := l.Pay(Cost{world.ResourceWood: 2, world.ResourceBrick: 1}); err != nil {
		t.Fatalf("Pay: %v", err)
	}
	if l.Get(world.ResourceWood) != 3 || l.Get(world.ResourceBrick) != 0 {
		t.Fatalf("after Pay: %s", l)
	}
}

func TestCostHelpers(t *testing.T) {
	c := Cost{world.ResourceWheat: 3, world.ResourceWood: 1}
	if s := c.String(); s != "1 wood, 3 wheat" {
		t.Fatalf("String = %q", s)
	}
	scaled := c.Scale(1.5)
	if scaled[world.ResourceWheat] != 5 || scaled[world.ResourceWood] != 2 {
		t.Fatalf("Scale rounded wrong: %v", scaled)
	}
	parsed, err := ParseCost(map[string]int{"ore": 2, "Wool": 1})
	if err != nil {
		t.Fatalf("ParseCost: %v", err)
	}
	if parsed[world.ResourceOre] != 2 || parsed[world.ResourceWool] != 1 {
		t.Fatalf("ParseCost = %v", parsed)
	}
	if _, err := ParseCost(map[string]int{"ore": -1}); err == nil {
		t.Fatalf("negative cost accepted")
	}
}

func TestLedgerFromRejectsNegative(t *testing.T) {
	if _, err := LedgerFrom(map[world.Resource]int{world.ResourceWood: -3}); err == nil {
		t.Fatalf("negative balance accepted")
	}
	l, err := LedgerFrom(map[world.Resource]int{world.ResourceWool: 4})
	if err != nil || l.Get(world.ResourceWool) != 4 {
		t.Fatalf("LedgerFrom = %v, %v", l, err)
	}
}
