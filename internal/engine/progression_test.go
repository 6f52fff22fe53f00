package engine

import (
	"errors"
	"testing"

	"github.com/talgya/hexisle/internal/config"
	"github.com/talgya/hexisle/internal/errs"
	"github.com/talgya/hexisle/internal/island"
	"github.com/talgya/hexisle/internal/settlement"
	"github.com/talgya/hexisle/internal/world"
)

func TestCivilizationPointsOnThreeHexes(t *testing.T) {
	g := world.NewGrid(1)
	g.Set(world.HexCoord{Q: 0, R: 0}, world.TerrainForest)
	g.Set(world.HexCoord{Q: 1, R: 0}, world.TerrainClay)
	g.Set(world.HexCoord{Q: 1, R: -1}, world.TerrainField)

	sim := NewSimulation(config.Default().MustCompile(), player, 1)
	sim.Map = island.New(g, island.RevealAll{})
	c, err := sim.Map.AddCity(home, player, settlement.LevelOutpost, "Solo")
	if err != nil {
		t.Fatal(err)
	}

	if got := sim.CivilizationPoints(player); got != 0 {
		t.Fatalf("outpost points = %d, want 0", got)
	}
	c.Level = settlement.LevelTown
	if got := sim.CivilizationPoints(player); got != 2 {
		t.Fatalf("town points = %d, want 2", got)
	}
	addBuilding(t, sim, c, settlement.BuildingLibrary)
	if got := sim.CivilizationPoints(player); got != 3 {
		t.Fatalf("town with library = %d, want 3", got)
	}
	if got := sim.CivilizationPoints("rival"); got != 0 {
		t.Fatalf("rival points = %d", got)
	}
}

// buildEmpire gives the player 19 civilization points with a capital.
func buildEmpire(t *testing.T, sim *Simulation, homeCity *settlement.City) []*settlement.City {
	t.Helper()
	homeCity.Level = settlement.LevelCapital
	addBuilding(t, sim, homeCity, settlement.BuildingLibrary)
	addBuilding(t, sim, homeCity, settlement.BuildingTemple)

	corners := spacedCorners(sim.Map, 4)
	if len(corners) != 4 {
		t.Fatalf("found %d spaced corners, want 4", len(corners))
	}
	var cities []*settlement.City
	for _, v := range corners {
		c, err := sim.Map.AddCity(v, player, settlement.LevelMetropolis, v.String())
		if err != nil {
			t.Fatal(err)
		}
		cities = append(cities, c)
	}
	addBuilding(t, sim, cities[0], settlement.BuildingLibrary)
	return cities
}

func TestPrestigeEligibility(t *testing.T) {
	sim, c := newTestSim(t, nil)
	cities := buildEmpire(t, sim, c)
	if got := sim.CivilizationPoints(player); got != 19 {
		t.Fatalf("points = %d, want 19", got)
	}
	if err := sim.CanPrestige(player); !errors.Is(err, errs.ErrNotEligible) {
		t.Fatalf("19 points: got %v, want ErrNotEligible", err)
	}

	addBuilding(t, sim, cities[1], settlement.BuildingTemple)
	if err := sim.CanPrestige(player); err != nil {
		t.Fatalf("20 points with capital: %v", err)
	}

	c.Level = settlement.LevelMetropolis
	if err := sim.CanPrestige(player); !errors.Is(err, errs.ErrNotEligible) {
		t.Fatalf("no capital: got %v, want ErrNotEligible", err)
	}
}

func TestPrestigeResetAndNewIsland(t *testing.T) {
	sim, c := newTestSim(t, nil)
	cities := buildEmpire(t, sim, c)
	addBuilding(t, sim, cities[1], settlement.BuildingTemple)
	fund(t, sim, 10)
	if _, err := sim.Harvest(forestHex, player, nil); err != nil {
		t.Fatal(err)
	}
	flags := AutomationFlags{Roads: true}
	if err := sim.SetAutomation(flags, player); err != nil {
		t.Fatal(err)
	}
	sim.Tick(3)

	var hooked PrestigeResult
	sim.OnPrestige = func(r PrestigeResult) { hooked = r }

	res, err := sim.ActivatePrestige(player)
	if err != nil {
		t.Fatalf("ActivatePrestige: %v", err)
	}
	if res.Points != 20 || res.Gained != 10 || res.Total != 10 || res.Resets != 1 || res.Time != 3 {
		t.Fatalf("result %+v", res)
	}
	if hooked != res {
		t.Fatalf("hook saw %+v", hooked)
	}
	if sim.Map != nil || sim.Ledger.Total() != 0 || len(sim.Cooldowns()) != 0 {
		t.Fatal("prestige did not clear the island state")
	}
	if sim.Automation != flags || sim.Clock.Now() != 3 {
		t.Fatal("prestige should keep automation flags and the clock")
	}
	if _, err := sim.ActivatePrestige(player); !errors.Is(err, errs.ErrNoIsland) {
		t.Fatalf("second prestige: got %v, want ErrNoIsland", err)
	}

	up, err := sim.PurchaseUpgrade(config.UpgradeHeadStart)
	if err != nil {
		t.Fatalf("PurchaseUpgrade: %v", err)
	}
	if up.Level != 1 || up.Cost != 4 || up.Remaining != 6 {
		t.Fatalf("upgrade %+v", up)
	}

	isl, err := sim.NewIsland(42)
	if err != nil {
		t.Fatalf("NewIsland: %v", err)
	}
	if isl.Seed != 42 || sim.IslandSeed != 42 || isl.Hexes == 0 {
		t.Fatalf("island %+v", isl)
	}
	if n := len(sim.CitiesByCivilization(player)); n != 1 {
		t.Fatalf("new island has %d cities", n)
	}
	if n := len(sim.Map.RoadsOf(player)); n != 1 {
		t.Fatalf("new island has %d roads", n)
	}
	for _, r := range world.AllResources {
		if got := sim.Ledger.Get(r); got != 2 {
			t.Fatalf("head start gave %d %s, want 2", got, r)
		}
	}
	if !sim.IsHexVisible(isl.Vertex.Hexes()[0]) {
		t.Fatal("start corner not discovered")
	}
	if _, err := sim.NewIsland(0); !errors.Is(err, errs.ErrNotEligible) {
		t.Fatalf("island over island: got %v, want ErrNotEligible", err)
	}
}

func TestNewIslandIsReproducible(t *testing.T) {
	gen := func() IslandResult {
		sim := NewSimulation(config.Default().MustCompile(), player, 3)
		res, err := sim.NewIsland(1234)
		if err != nil {
			t.Fatal(err)
		}
		return res
	}
	a, b := gen(), gen()
	if a != b {
		t.Fatalf("same seed gave %+v and %+v", a, b)
	}
}

func TestPurchaseUpgrade(t *testing.T) {
	sim, _ := newTestSim(t, nil)

	if _, err := sim.PurchaseUpgrade("telepathy"); !errors.Is(err, errs.ErrInvalidArgument) {
		t.Fatalf("unknown key: got %v", err)
	}
	if _, err := sim.PurchaseUpgrade(config.UpgradeStorage); !errors.Is(err, errs.ErrInsufficient) {
		t.Fatalf("no prestige: got %v", err)
	}

	sim.Progress.Prestige = 9
	base := sim.Capacity(player)
	for i := 0; i < 2; i++ {
		if _, err := sim.PurchaseUpgrade(config.UpgradeStorage); err != nil {
			t.Fatalf("storage level %d: %v", i+1, err)
		}
	}
	if sim.Progress.Prestige != 0 {
		t.Fatalf("prestige left %d, want 0 after paying 3 + 6", sim.Progress.Prestige)
	}
	if got := sim.Capacity(player); got != base+50 {
		t.Fatalf("capacity %d, want %d", got, base+50)
	}

	sim.Progress.Prestige = 1 << 20
	sim.Progress.Upgrades[config.UpgradeStorage] = sim.Rules.Upgrades[config.UpgradeStorage].MaxLevel
	if _, err := sim.PurchaseUpgrade(config.UpgradeStorage); !errors.Is(err, errs.ErrMaxLevel) {
		t.Fatalf("at max: got %v", err)
	}
}
