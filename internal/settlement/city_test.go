package settlement

import (
	"errors"
	"testing"

	"github.com/talgya/hexisle/internal/errs"
	"github.com/talgya/hexisle/internal/world"
)

func testVertex() world.Vertex {
	return world.NewVertex(world.HexCoord{Q: 0, R: 0}, world.HexCoord{Q: 1, R: 0}, world.HexCoord{Q: 1, R: -1})
}

func TestCityUpgradesOneStepToCapital(t *testing.T) {
	c := NewCity(1, testVertex(), "civ", LevelOutpost, "Ashford")
	for want := LevelColony; want <= LevelCapital; want++ {
		if err := c.Upgrade(); err != nil {
			t.Fatalf("Upgrade to %s: %v", want, err)
		}
		if c.Level != want {
			t.Fatalf("level = %s, want %s", c.Level, want)
		}
	}
	if err := c.Upgrade(); !errors.Is(err, errs.ErrMaxLevel) {
		t.Fatalf("upgrade past capital: %v", err)
	}
}

func TestBuildingCapPerLevel(t *testing.T) {
	lim := DefaultLimits()
	c := NewCity(1, testVertex(), "civ", LevelOutpost, "Ashford")

	if _, err := c.AddBuilding(BuildingFarm, lim); err != nil {
		t.Fatalf("first building: %v", err)
	}
	if _, err := c.AddBuilding(BuildingMine, lim); !errors.Is(err, errs.ErrBuildingLimit) {
		t.Fatalf("second building at outpost: %v", err)
	}

	_ = c.Upgrade()
	if _, err := c.AddBuilding(BuildingFarm, lim); !errors.Is(err, errs.ErrDuplicateBuilding) {
		t.Fatalf("duplicate building: %v", err)
	}
	if _, err := c.AddBuilding(BuildingMine, lim); err != nil {
		t.Fatalf("second building at colony: %v", err)
	}
	if got := c.BuildingTypes(); len(got) != 2 || got[0] != BuildingFarm || got[1] != BuildingMine {
		t.Fatalf("BuildingTypes = %v", got)
	}
}

func TestBuildingMaxLevels(t *testing.T) {
	cases := []struct {
		typ  BuildingType
		want int
	}{
		{BuildingLumberyard, 5},
		{BuildingMine, 5},
		{BuildingProspector, 2},
		{BuildingConstructionGuild, 3},
		{BuildingLibrary, 1},
		{BuildingPort, 1},
	}
	for _, c := range cases {
		b := NewBuilding(c.typ)
		for b.Level < c.want {
			if err := b.Upgrade(); err != nil {
				t.Fatalf("%s upgrade at %d: %v", c.typ, b.Level, err)
			}
		}
		if err := b.Upgrade(); !errors.Is(err, errs.ErrMaxLevel) {
			t.Fatalf("%s upgrade past %d: %v", c.typ, c.want, err)
		}
	}
}

func TestPortSpecializesOnce(t *testing.T) {
	p := NewBuilding(BuildingPort)
	if err := p.Specialize(world.ResourceOre); err != nil {
		t.Fatalf("Specialize: %v", err)
	}
	if err := p.Specialize(world.ResourceWood); !errors.Is(err, errs.ErrAlreadySpecialized) {
		t.Fatalf("re-specialize: %v", err)
	}
	if *p.Specialization != world.ResourceOre {
		t.Fatalf("specialization overwritten")
	}
	if err := NewBuilding(BuildingFarm).Specialize(world.ResourceOre); !errors.Is(err, errs.ErrNotEligible) {
		t.Fatalf("farm specialized: %v", err)
	}
}

func TestProspectorRandomOutputAtLevelTwo(t *testing.T) {
	b := NewBuilding(BuildingProspector)
	if b.RandomOutput() {
		t.Fatalf("level 1 prospector should not be random output")
	}
	_ = b.Upgrade()
	if !b.RandomOutput() {
		t.Fatalf("level 2 prospector should be random output")
	}
}

func TestCatalogNames(t *testing.T) {
	for _, typ := range AllBuildingTypes() {
		got, err := ParseBuildingType(typ.String())
		if err != nil || got != typ {
			t.Fatalf("ParseBuildingType(%q) = %v, %v", typ, got, err)
		}
		if typ.MaxLevel() < 1 {
			t.Fatalf("%s has no max level", typ)
		}
	}
	for _, r := range world.AllResources {
		h, ok := ProducerFor(r).Harvests()
		if !ok || h != r {
			t.Fatalf("ProducerFor(%s) harvests %v", r, h)
		}
	}
}

func TestCloneIsDeep(t *testing.T) {
	c := NewCity(3, testVertex(), "civ", LevelTown, "Oakvale")
	b, _ := c.AddBuilding(BuildingPort, DefaultLimits())
	ts := 4.5
	b.LastProduction = &ts
	_ = b.Specialize(world.ResourceWool)

	cp := c.Clone()
	*cp.Buildings[BuildingPort].LastProduction = 9
	if *b.LastProduction != 4.5 {
		t.Fatalf("clone shares timestamp pointer")
	}
}
