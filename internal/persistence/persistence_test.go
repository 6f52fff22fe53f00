package persistence

import (
	"bytes"
	"database/sql"
	"errors"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/talgya/hexisle/internal/config"
	"github.com/talgya/hexisle/internal/engine"
	"github.com/talgya/hexisle/internal/errs"
	"github.com/talgya/hexisle/internal/settlement"
	"github.com/talgya/hexisle/internal/world"
)

const player settlement.CivID = "player"

// playedSim returns a simulation with an island, buildings, roads,
// cooldowns, progression and automation state.
func playedSim(t *testing.T) *engine.Simulation {
	t.Helper()
	sim := engine.NewSimulation(config.Default().MustCompile(), player, 5)
	if _, err := sim.NewIsland(77); err != nil {
		t.Fatalf("NewIsland: %v", err)
	}
	for _, r := range world.AllResources {
		if err := sim.Ledger.Add(r, 20); err != nil {
			t.Fatal(err)
		}
	}
	home := sim.CitiesByCivilization(player)[0]
	if _, err := sim.UpgradeCity(home.Vertex, player); err != nil {
		t.Fatalf("UpgradeCity: %v", err)
	}
	sim.Tick(1)

	var target world.HexCoord
	found := false
	for _, h := range home.Vertex.Hexes() {
		if !sim.Map.IsHarvestable(h) {
			continue
		}
		terrain, _ := sim.HexTerrain(h)
		res, _ := terrain.Resource()
		if _, err := sim.BuildBuilding(settlement.ProducerFor(res), home.Vertex, player); err != nil {
			t.Fatalf("BuildBuilding: %v", err)
		}
		target, found = h, true
		break
	}
	if !found {
		t.Fatal("start city borders no harvestable hex")
	}
	if roads := sim.BuildableRoads(player); len(roads) > 0 {
		if _, err := sim.BuildRoad(roads[0], player); err != nil {
			t.Fatalf("BuildRoad: %v", err)
		}
	}
	sim.Tick(30)
	sim.Tick(31)
	if _, err := sim.Harvest(target, player, nil); err != nil {
		t.Fatalf("Harvest: %v", err)
	}
	sim.Progress.Prestige = 3
	sim.Progress.Upgrades[config.UpgradeStorage] = 1
	if err := sim.SetAutomation(engine.AutomationFlags{Roads: true}, player); err != nil {
		t.Fatal(err)
	}
	sim.DrainEvents()
	return sim
}

func TestSnapshotRoundTrip(t *testing.T) {
	sim := playedSim(t)
	snap := Capture(sim)
	if snap.Island == nil || len(snap.Island.Cities) != 1 || len(snap.Runtime.Cooldowns) != 1 {
		t.Fatalf("snapshot missing state: %+v", snap)
	}

	blob, err := Marshal(snap)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	decoded, err := Unmarshal(blob)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	restored, err := Restore(sim.Rules, decoded)
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if again := Capture(restored); !reflect.DeepEqual(snap, again) {
		t.Fatalf("round trip changed the snapshot:\n got %+v\nwant %+v", again, snap)
	}

	// Both copies must evolve identically from here on.
	for _, now := range []float64{40, 55, 90} {
		sim.Tick(now)
		restored.Tick(now)
	}
	if a, b := Capture(sim), Capture(restored); !reflect.DeepEqual(a, b) {
		t.Fatal("restored simulation diverged")
	}
}

func TestSnapshotWithoutIsland(t *testing.T) {
	sim := engine.NewSimulation(config.Default().MustCompile(), player, 9)
	sim.Progress.Prestige = 12
	snap := Capture(sim)
	if snap.Island != nil {
		t.Fatal("captured an island that does not exist")
	}
	blob, err := Marshal(snap)
	if err != nil {
		t.Fatal(err)
	}
	decoded, err := Unmarshal(blob)
	if err != nil {
		t.Fatal(err)
	}
	restored, err := Restore(sim.Rules, decoded)
	if err != nil {
		t.Fatal(err)
	}
	if restored.Map != nil || restored.Progress.Prestige != 12 {
		t.Fatalf("restored %+v", restored.Status())
	}
}

func TestCorruptSnapshots(t *testing.T) {
	rules := config.Default().MustCompile()
	good := Capture(playedSim(t))

	tests := []struct {
		name   string
		mutate func(s *Snapshot)
	}{
		{"future version", func(s *Snapshot) { s.Version = 99 }},
		{"no player", func(s *Snapshot) { s.Player = "" }},
		{"negative resource", func(s *Snapshot) { s.Resources["wood"] = -1 }},
		{"unknown upgrade", func(s *Snapshot) { s.Progress.Upgrades["telepathy"] = 1 }},
		{"bad terrain", func(s *Snapshot) { s.Island.Hexes[0].Terrain = 42 }},
		{"duplicate hex", func(s *Snapshot) { s.Island.Hexes = append(s.Island.Hexes, s.Island.Hexes[0]) }},
		{"unknown building", func(s *Snapshot) { s.Island.Cities[0].Buildings[0].Type = "castle" }},
		{"building over max level", func(s *Snapshot) { s.Island.Cities[0].Buildings[0].Level = 99 }},
		{"adjacent cities", func(s *Snapshot) {
			c := s.Island.Cities[0]
			c.ID = 99
			c.Vertex = world.AdjacentVertices(c.Vertex)[0]
			c.Buildings = nil
			s.Island.Cities = append(s.Island.Cities, c)
		}},
		{"cooldown in the future", func(s *Snapshot) {
			s.Runtime.Cooldowns = append(s.Runtime.Cooldowns, engine.Cooldown{HarvestedAt: s.Time + 10})
		}},
		{"random stream too far", func(s *Snapshot) { s.Runtime.RNGDraws = 1 << 62 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := cloneSnapshot(t, good)
			tt.mutate(&snap)

			blob, err := Marshal(snap)
			if err != nil {
				t.Fatal(err)
			}
			decoded, err := Unmarshal(blob)
			if err == nil {
				_, err = Restore(rules, decoded)
			}
			if errs.KindOf(err) != errs.KindCorrupt {
				t.Fatalf("got %v, want a corrupt-save error", err)
			}
		})
	}
}

func TestRestoreRejectsHugeStreamPosition(t *testing.T) {
	snap := Capture(playedSim(t))
	snap.Runtime.RNGDraws = 1 << 62

	done := make(chan error, 1)
	go func() {
		_, err := Restore(config.Default().MustCompile(), snap)
		done <- err
	}()
	select {
	case err := <-done:
		if errs.KindOf(err) != errs.KindCorrupt {
			t.Fatalf("got %v, want a corrupt-save error", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Restore did not return")
	}
}

func cloneSnapshot(t *testing.T, s Snapshot) Snapshot {
	t.Helper()
	blob, err := Marshal(s)
	if err != nil {
		t.Fatal(err)
	}
	out, err := Unmarshal(blob)
	if err != nil {
		t.Fatal(err)
	}
	return out
}

func TestDecodeRejectsGarbage(t *testing.T) {
	if _, err := Decode(bytes.NewReader([]byte("not zstd at all"))); errs.KindOf(err) != errs.KindCorrupt {
		t.Fatalf("got %v, want corrupt", err)
	}
	if _, err := DecodeJSON([]byte(`{"version":1}`)); errs.KindOf(err) != errs.KindCorrupt {
		t.Fatalf("schema-invalid JSON: got %v, want corrupt", err)
	}
}

func TestSnapshotFile(t *testing.T) {
	sim := playedSim(t)
	path := filepath.Join(t.TempDir(), "saves", "slot.json.zst")
	if err := WriteFile(path, Capture(sim)); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	snap, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !reflect.DeepEqual(snap, Capture(sim)) {
		t.Fatal("file round trip changed the snapshot")
	}
}

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSaveSlots(t *testing.T) {
	db := openTestDB(t)

	if _, _, ok, err := db.LatestSave(); err != nil || ok {
		t.Fatalf("empty db: ok=%v err=%v", ok, err)
	}

	sim := playedSim(t)
	first, err := db.SaveWorldState(sim, "autosave")
	if err != nil {
		t.Fatalf("SaveWorldState: %v", err)
	}
	sim.Tick(200)
	second, err := db.SaveWorldState(sim, "autosave")
	if err != nil {
		t.Fatal(err)
	}
	if first.ID == second.ID || second.Cities != 1 || second.Size == 0 {
		t.Fatalf("save infos %+v / %+v", first, second)
	}

	snap, info, ok, err := db.LatestSave()
	if err != nil || !ok {
		t.Fatalf("LatestSave: ok=%v err=%v", ok, err)
	}
	if info.ID != second.ID || snap.Time != 200 {
		t.Fatalf("latest is %+v at t=%v", info, snap.Time)
	}

	saves, err := db.ListSaves(10)
	if err != nil || len(saves) != 2 {
		t.Fatalf("ListSaves: %d saves, err %v", len(saves), err)
	}

	if _, err := db.LoadSave("missing"); !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("missing save: got %v", err)
	}

	n, err := db.PruneSaves("autosave", 1)
	if err != nil || n != 1 {
		t.Fatalf("PruneSaves removed %d, err %v", n, err)
	}
	if _, err := db.LoadSave(first.ID); !errors.Is(err, sql.ErrNoRows) {
		t.Fatal("pruned save still loadable")
	}
}

func TestPrestigeHistoryAndMeta(t *testing.T) {
	db := openTestDB(t)
	for i := 1; i <= 3; i++ {
		if err := db.RecordPrestige(engine.PrestigeResult{Points: 20 + i, Gained: 10, Total: 10 * i, Resets: i, Time: float64(i * 100)}); err != nil {
			t.Fatal(err)
		}
	}
	hist, err := db.PrestigeHistory(2)
	if err != nil {
		t.Fatal(err)
	}
	if len(hist) != 2 || hist[0].Resets != 3 || hist[1].Resets != 2 {
		t.Fatalf("history %+v", hist)
	}

	if err := db.SetMeta("player", "p1"); err != nil {
		t.Fatal(err)
	}
	if err := db.SetMeta("player", "p2"); err != nil {
		t.Fatal(err)
	}
	if v, err := db.GetMeta("player"); err != nil || v != "p2" {
		t.Fatalf("GetMeta = %q, %v", v, err)
	}
}
