// Command islesim runs the hex island settlement simulation and serves it
// over HTTP.
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/talgya/hexisle/internal/api"
	"github.com/talgya/hexisle/internal/config"
	"github.com/talgya/hexisle/internal/engine"
	"github.com/talgya/hexisle/internal/logger"
	"github.com/talgya/hexisle/internal/persistence"
	"github.com/talgya/hexisle/internal/settlement"
)

const (
	autosaveLabel = "autosave"
	autosaveKeep  = 5
	metaPlayer    = "player"
)

func main() {
	cfg, err := config.LoadEnv()
	if err != nil {
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}
	logger.Init(cfg.Logging)

	rules, err := cfg.Tuning()
	if err != nil {
		slog.Error("tuning error", "error", err)
		os.Exit(1)
	}

	// ── Database ──────────────────────────────────────────────────────
	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0755); err != nil {
		slog.Error("failed to create data directory", "error", err)
		os.Exit(1)
	}
	db, err := persistence.Open(cfg.Database.Path)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("database opened", "path", cfg.Database.Path)

	// ── Load or Generate ─────────────────────────────────────────────
	sim, err := loadOrCreate(cfg, rules, db)
	if err != nil {
		slog.Error("failed to prepare simulation", "error", err)
		os.Exit(1)
	}
	sim.OnPrestige = func(res engine.PrestigeResult) {
		if err := db.RecordPrestige(res); err != nil {
			slog.Error("failed to record prestige", "error", err)
		}
	}

	// ── Engine ────────────────────────────────────────────────────────
	eng := engine.NewEngine(sim)
	eng.Interval = cfg.Sim.FrameInterval
	eng.Speed = cfg.Sim.Speed
	eng.AutosaveEvery = cfg.Sim.AutosaveInterval
	eng.OnAutosave = func(sim *engine.Simulation) {
		if _, err := db.SaveWorldState(sim, autosaveLabel); err != nil {
			slog.Error("autosave failed", "error", err)
			return
		}
		if n, err := db.PruneSaves(autosaveLabel, autosaveKeep); err != nil {
			slog.Warn("failed to prune autosaves", "error", err)
		} else if n > 0 {
			slog.Debug("pruned autosaves", "deleted", n)
		}
	}

	// ── HTTP API ──────────────────────────────────────────────────────
	if cfg.AdminKey == "" {
		slog.Warn("ISLESIM_ADMIN_KEY not set, command endpoints are open")
	}
	httpServer := api.New(eng, db, cfg).Start()

	// ── Start ─────────────────────────────────────────────────────────
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st := sim.Status()
	fmt.Printf("\nIsland %d is in play: %d cities, %d roads, %d points.\n",
		st.IslandSeed, st.Cities, st.Roads, st.Points)
	fmt.Printf("API: http://localhost:%d/api/v1/status\n", cfg.Server.Port)
	fmt.Println("Starting simulation... (Ctrl+C to stop)")

	eng.Run(ctx)
	slog.Info("engine stopped, shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Warn("HTTP shutdown", "error", err)
	}

	// Final save on shutdown.
	slog.Info("final save...")
	if _, err := db.SaveWorldState(sim, autosaveLabel); err != nil {
		slog.Error("final save failed", "error", err)
	}
	fmt.Println("Simulation stopped. Island saved.")
}

// loadOrCreate restores an imported snapshot or the latest save, or starts
// a fresh island for a persistent player id.
func loadOrCreate(cfg *config.Config, rules *config.Rules, db *persistence.DB) (*engine.Simulation, error) {
	if path := cfg.Sim.ImportPath; path != "" {
		snap, err := persistence.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("import %s: %w", path, err)
		}
		sim, err := persistence.Restore(rules, snap)
		if err != nil {
			return nil, fmt.Errorf("import %s: %w", path, err)
		}
		slog.Info("snapshot imported", "path", path, "time", sim.Clock.Now())
		return sim, nil
	}

	snap, info, ok, err := db.LatestSave()
	if err != nil {
		return nil, fmt.Errorf("load latest save: %w", err)
	}
	if ok {
		sim, err := persistence.Restore(rules, snap)
		if err != nil {
			return nil, fmt.Errorf("restore save %s: %w", info.ID, err)
		}
		slog.Info("island restored",
			"save", info.ID,
			"label", info.Label,
			"saved_at", info.Created().Format(time.RFC3339),
			"time", sim.Clock.Now(),
		)
		return sim, nil
	}

	player, err := db.GetMeta(metaPlayer)
	if errors.Is(err, sql.ErrNoRows) {
		player = uuid.NewString()
		if err := db.SetMeta(metaPlayer, player); err != nil {
			return nil, fmt.Errorf("store player id: %w", err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("read player id: %w", err)
	}

	seed := cfg.Sim.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	sim := engine.NewSimulation(rules, settlement.CivID(player), seed)
	res, err := sim.NewIsland(cfg.Sim.Seed)
	if err != nil {
		return nil, fmt.Errorf("generate island: %w", err)
	}
	slog.Info("no saved state found, new island generated", "seed", res.Seed, "player", player)

	if _, err := db.SaveWorldState(sim, autosaveLabel); err != nil {
		slog.Error("initial save failed", "error", err)
	}
	return sim, nil
}
