package engine

import (
	"testing"

	"github.com/talgya/hexisle/internal/config"
	"github.com/talgya/hexisle/internal/island"
	"github.com/talgya/hexisle/internal/settlement"
	"github.com/talgya/hexisle/internal/world"
)

func unitInterval(t *config.Tuning) {
	t.Production.BaseInterval = 1
	t.Production.RandomInterval = 1
}

func TestProductionCatchUp(t *testing.T) {
	sim, c := newTestSim(t, unitInterval)
	b := addBuilding(t, sim, c, settlement.BuildingLumberyard)

	sim.Tick(0)
	if b.LastProduction == nil || *b.LastProduction != 0 {
		t.Fatalf("first visit should stamp t=0, got %v", b.LastProduction)
	}
	if got := sim.Ledger.Get(world.ResourceWood); got != 0 {
		t.Fatalf("first visit produced %d wood", got)
	}

	sim.Tick(2.5)
	if *b.LastProduction != 1.0 {
		t.Fatalf("after t=2.5 stamp = %v, want 1.0", *b.LastProduction)
	}
	if got := sim.Ledger.Get(world.ResourceWood); got != 1 {
		t.Fatalf("after t=2.5 wood = %d, want 1", got)
	}

	sim.Tick(2.6)
	if *b.LastProduction != 2.0 {
		t.Fatalf("after t=2.6 stamp = %v, want 2.0", *b.LastProduction)
	}
	if got := sim.Ledger.Get(world.ResourceWood); got != 2 {
		t.Fatalf("after t=2.6 wood = %d, want 2", got)
	}

	sim.Tick(2.7)
	if *b.LastProduction != 2.0 || sim.Ledger.Get(world.ResourceWood) != 2 {
		t.Fatalf("partial interval must not produce")
	}

	events := sim.DrainEvents()
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	ev := events[0]
	if ev.Kind != EventProduced || ev.City != c.ID || ev.Hex == nil || *ev.Hex != (world.HexCoord{Q: 0, R: 0}) {
		t.Fatalf("unexpected event %+v", ev)
	}
}

func TestNewBuildingWaitsOneInterval(t *testing.T) {
	sim, c := newTestSim(t, unitInterval)
	sim.Tick(5)
	b := addBuilding(t, sim, c, settlement.BuildingBrickworks)

	sim.Tick(5)
	sim.Tick(5.5)
	if got := sim.Ledger.Get(world.ResourceBrick); got != 0 {
		t.Fatalf("produced %d brick before one interval passed", got)
	}
	sim.Tick(6.2)
	if got := sim.Ledger.Get(world.ResourceBrick); got != 1 {
		t.Fatalf("brick = %d, want 1", got)
	}
	if *b.LastProduction != 6 {
		t.Fatalf("stamp = %v, want 6", *b.LastProduction)
	}
}

func TestEachMatchingHexProduces(t *testing.T) {
	sim, c := newTestSim(t, unitInterval)
	// Turn the clay and field hexes into forest as well.
	sim.Map.Grid.Set(world.HexCoord{Q: 1, R: 0}, world.TerrainForest)
	sim.Map.Grid.Set(world.HexCoord{Q: 1, R: -1}, world.TerrainForest)
	addBuilding(t, sim, c, settlement.BuildingLumberyard)

	sim.Tick(0)
	sim.Tick(1)
	if got := sim.Ledger.Get(world.ResourceWood); got != 3 {
		t.Fatalf("wood = %d, want 3 (one per adjacent forest)", got)
	}
}

func TestHiddenHexesProduceNothingButTimerAdvances(t *testing.T) {
	sim, c := newTestSim(t, unitInterval)
	fogged := island.New(testGrid(), island.RadiusDiscovery{Radius: 0})
	if err := fogged.RestoreCity(c); err != nil {
		t.Fatal(err)
	}
	sim.Map = fogged // nothing discovered yet
	b := addBuilding(t, sim, c, settlement.BuildingLumberyard)

	sim.Tick(0)
	sim.Tick(1.5)
	if got := sim.Ledger.Get(world.ResourceWood); got != 0 {
		t.Fatalf("hidden hex produced %d wood", got)
	}
	if *b.LastProduction != 1 {
		t.Fatalf("stamp = %v, want 1 even with nothing produced", *b.LastProduction)
	}
}

func TestProductionRespectsCapacity(t *testing.T) {
	sim, c := newTestSim(t, unitInterval)
	addBuilding(t, sim, c, settlement.BuildingLumberyard)
	limit := sim.Capacity(player)
	if err := sim.Ledger.Add(world.ResourceWood, limit); err != nil {
		t.Fatal(err)
	}

	sim.Tick(0)
	for now := 1.0; now <= 5; now++ {
		sim.Tick(now)
		if got := sim.Ledger.Get(world.ResourceWood); got > limit {
			t.Fatalf("wood %d exceeds capacity %d", got, limit)
		}
	}
	if len(sim.DrainEvents()) != 0 {
		t.Fatalf("capped production should not emit events")
	}
}

func TestProspectorIsReproducible(t *testing.T) {
	run := func() []world.Resource {
		sim, c := newTestSim(t, unitInterval)
		p := addBuilding(t, sim, c, settlement.BuildingProspector)
		sim.Tick(0)
		sim.Tick(1)
		if p.LastProduction != nil {
			t.Fatalf("level 1 prospector should not be scheduled")
		}
		p.Level = 2
		var got []world.Resource
		for now := 2.0; now <= 6; now++ {
			sim.Tick(now)
		}
		for _, ev := range sim.DrainEvents() {
			if ev.Hex != nil {
				t.Fatalf("random output should not name a hex: %+v", ev)
			}
			got = append(got, *ev.Resource)
		}
		return got
	}

	a, b := run(), run()
	if len(a) != 4 {
		t.Fatalf("got %d random units, want 4", len(a))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("same seed diverged at %d: %v vs %v", i, a, b)
		}
	}
}

func TestRuntimeRestoreContinuesRandomStream(t *testing.T) {
	a, _ := newTestSim(t, nil)
	for i := 0; i < 17; i++ {
		a.rng.Intn(100)
	}
	rt := a.Runtime()

	b, _ := newTestSim(t, nil)
	b.RestoreRuntime(rt)
	for i := 0; i < 10; i++ {
		if x, y := a.rng.Intn(1000), b.rng.Intn(1000); x != y {
			t.Fatalf("draw %d differs after restore: %d vs %d", i, x, y)
		}
	}
}

func TestClockNeverRewinds(t *testing.T) {
	sim, _ := newTestSim(t, nil)
	sim.UpdateTime(5)
	sim.UpdateTime(3)
	if got := sim.Clock.Now(); got != 5 {
		t.Fatalf("clock = %v, want 5", got)
	}
}
