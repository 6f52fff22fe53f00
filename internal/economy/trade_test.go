package economy

import (
	"errors"
	"testing"

	"github.com/talgya/hexisle/internal/errs"
	"github.com/talgya/hexisle/internal/world"
)

func TestRatesPickMostFavorable(t *testing.T) {
	ore := world.ResourceOre
	policy := DefaultRatePolicy()

	none := Rates(policy, nil)
	for _, r := range world.AllResources {
		if none.Rate(r) != 4 {
			t.Fatalf("default rate for %s = %d, want 4", r, none.Rate(r))
		}
	}

	table := Rates(policy, []PortInfo{{}, {Specialization: &ore}})
	if table.Rate(ore) != 2 {
		t.Fatalf("ore rate = %d, want 2", table.Rate(ore))
	}
	if table.Rate(world.ResourceWood) != 3 {
		t.Fatalf("wood rate = %d, want 3", table.Rate(world.ResourceWood))
	}

	onlySpecial := Rates(policy, []PortInfo{{Specialization: &ore}})
	if onlySpecial.Rate(world.ResourceWood) != 4 {
		t.Fatalf("specialized port should not lower other rates")
	}
}

func TestTradeScenarios(t *testing.T) {
	rates := Rates(DefaultRatePolicy(), nil)

	l := NewLedger()
	_ = l.Add(world.ResourceWood, 8)

	// 4 wood for 2 brick: 1 offered batch vs 2 requested.
	_, err := l.Trade(Cost{world.ResourceWood: 4}, Cost{world.ResourceBrick: 2}, rates, 100)
	if !errors.Is(err, errs.ErrBatchMismatch) {
		t.Fatalf("mismatched trade error = %v", err)
	}
	if l.Get(world.ResourceWood) != 8 || l.Get(world.ResourceBrick) != 0 {
		t.Fatalf("failed trade moved resources: %s", l)
	}

	// 4 wood for 1 brick succeeds.
	res, err := l.Trade(Cost{world.ResourceWood: 4}, Cost{world.ResourceBrick: 1}, rates, 100)
	if err != nil {
		t.Fatalf("trade: %v", err)
	}
	if res.Batches != 1 || res.Received[world.ResourceBrick] != 1 {
		t.Fatalf("result = %+v", res)
	}
	if l.Get(world.ResourceWood) != 4 || l.Get(world.ResourceBrick) != 1 {
		t.Fatalf("after trade: %s", l)
	}
}

func TestTradeConservation(t *testing.T) {
	ore := world.ResourceOre
	rates := Rates(DefaultRatePolicy(), []PortInfo{{Specialization: &ore}})

	l := NewLedger()
	_ = l.Add(world.ResourceOre, 10)
	_ = l.Add(world.ResourceWood, 10)
	before := l.Amounts()

	offered := Cost{world.ResourceOre: 4, world.ResourceWood: 4} // 2 + 1 batches
	requested := Cost{world.ResourceWheat: 2, world.ResourceWool: 1}
	if _, err := l.Trade(offered, requested, rates, 100); err != nil {
		t.Fatalf("trade: %v", err)
	}
	if OfferedBatches(offered, rates) != RequestedBatches(requested) {
		t.Fatalf("batch counts differ after successful trade")
	}
	for r, n := range offered {
		if before[r]-l.Get(r) != n {
			t.Fatalf("%s removed %d, want %d", r, before[r]-l.Get(r), n)
		}
	}
	for _, r := range world.AllResources {
		if l.Get(r) < 0 {
			t.Fatalf("%s went negative", r)
		}
	}
}

func TestTradeRejectsHugeQuantities(t *testing.T) {
	rates := Rates(DefaultRatePolicy(), nil)
	l := NewLedger()
	_ = l.Add(world.ResourceWood, 4)

	// 60 * (2^62 + 1) wraps to 60, the scaled value of one batch.
	requested := Cost{world.ResourceBrick: 1<<62 + 1}
	if _, err := l.Trade(Cost{world.ResourceWood: 4}, requested, rates, 500); !errors.Is(err, errs.ErrInvalidArgument) {
		t.Fatalf("err = %v, want ErrInvalidArgument", err)
	}
	if l.Get(world.ResourceWood) != 4 || l.Get(world.ResourceBrick) != 0 {
		t.Fatalf("ledger changed: %s", l)
	}

	if !(Cost{world.ResourceOre: MaxQuantity}).Valid() {
		t.Error("MaxQuantity should be valid")
	}
	if (Cost{world.ResourceOre: MaxQuantity + 1}).Valid() {
		t.Error("MaxQuantity+1 should be invalid")
	}
}

func TestTradeFractionalBatchesSum(t *testing.T) {
	ore := world.ResourceOre
	rates := Rates(DefaultRatePolicy(), []PortInfo{{Specialization: &ore}})
	l := NewLedger()
	_ = l.Add(world.ResourceWood, 2)
	_ = l.Add(world.ResourceOre, 1)

	// Half a wood batch plus half an ore batch make one batch.
	if _, err := l.Trade(Cost{world.ResourceWood: 2, world.ResourceOre: 1}, Cost{world.ResourceBrick: 1}, rates, 100); err != nil {
		t.Fatalf("trade: %v", err)
	}
}

func TestTradeInsufficientIsAtomic(t *testing.T) {
	rates := Rates(DefaultRatePolicy(), nil)
	l := NewLedger()
	_ = l.Add(world.ResourceWood, 3)
	_, err := l.Trade(Cost{world.ResourceWood: 4}, Cost{world.ResourceOre: 1}, rates, 100)
	if !errors.Is(err, errs.ErrInsufficient) {
		t.Fatalf("error = %v, want insufficient", err)
	}
	if l.Get(world.ResourceWood) != 3 || l.Get(world.ResourceOre) != 0 {
		t.Fatalf("failed trade changed ledger: %s", l)
	}
}
