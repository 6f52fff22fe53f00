package engine

import (
	"errors"
	"testing"

	"github.com/talgya/hexisle/internal/errs"
	"github.com/talgya/hexisle/internal/settlement"
)

func TestAutomationFollowsGuildTier(t *testing.T) {
	sim, c := newTestSim(t, nil)
	fund(t, sim, 30)
	all := AutomationFlags{Roads: true, Outposts: true, CityUpgrade: true, Production: true}
	if err := sim.SetAutomation(all, player); err != nil {
		t.Fatal(err)
	}

	sim.Tick(0)
	if n := len(sim.Map.Roads()); n != 0 {
		t.Fatalf("automation without a guild built %d roads", n)
	}

	guild := addBuilding(t, sim, c, settlement.BuildingConstructionGuild)
	sim.Tick(1)
	if n := len(sim.Map.Roads()); n != 1 {
		t.Fatalf("guild level 1 built %d roads, want 1", n)
	}
	if c.Level != settlement.LevelOutpost {
		t.Fatal("city upgrade ran below its tier")
	}

	sim.Tick(3)
	if n := len(sim.Map.Roads()); n != 1 {
		t.Fatalf("automation ran inside its interval: %d roads", n)
	}
	sim.Tick(6)
	if n := len(sim.Map.Roads()); n != 2 {
		t.Fatalf("second interval: %d roads, want 2", n)
	}

	guild.Level = 2
	sim.Tick(11)
	if c.Level != settlement.LevelColony {
		t.Fatalf("guild level 2 left city at %s", c.Level)
	}
	if n := len(sim.Map.Roads()); n != 2 {
		t.Fatal("more than one automated action in one interval")
	}
}

func TestAutomationDisabledFlags(t *testing.T) {
	sim, c := newTestSim(t, nil)
	fund(t, sim, 30)
	addBuilding(t, sim, c, settlement.BuildingConstructionGuild).Level = 3
	for now := 0.0; now < 30; now += 5 {
		sim.Tick(now)
	}
	if len(sim.Map.Roads()) != 0 || c.Level != settlement.LevelOutpost {
		t.Fatal("automation acted with every flag off")
	}
}

func TestAutomationBuildsProducer(t *testing.T) {
	sim, c := newTestSim(t, nil)
	fund(t, sim, 30)
	c.Level = settlement.LevelTown
	addBuilding(t, sim, c, settlement.BuildingConstructionGuild).Level = 3
	if err := sim.SetAutomation(AutomationFlags{Production: true}, player); err != nil {
		t.Fatal(err)
	}
	sim.Tick(0)
	if c.BuildingCount() != 2 {
		t.Fatalf("city has %d buildings, want guild plus one producer", c.BuildingCount())
	}
	for _, bt := range c.BuildingTypes() {
		if bt != settlement.BuildingConstructionGuild && !bt.IsProducer() {
			t.Fatalf("automation built %s", bt)
		}
	}
}

func TestSetAutomationOwner(t *testing.T) {
	sim, _ := newTestSim(t, nil)
	if err := sim.SetAutomation(AutomationFlags{Roads: true}, "rival"); !errors.Is(err, errs.ErrNotOwner) {
		t.Fatalf("got %v, want ErrNotOwner", err)
	}
}
