// Command steward plays a running islesim instance headlessly.
// It observes island state, picks moves with simple heuristics, and plays
// them through the command API.
package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/talgya/hexisle/internal/config"
	"github.com/talgya/hexisle/internal/logger"
	"github.com/talgya/hexisle/internal/steward"
)

func main() {
	cfg, err := config.LoadStewardEnv()
	if err != nil {
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}
	logger.Init(cfg.Logging)

	slog.Info("steward starting",
		"api_url", cfg.APIURL,
		"interval", cfg.Interval,
		"memory", cfg.MemoryPath,
	)

	st := steward.New(cfg.APIURL, cfg.AdminKey, cfg.MemoryPath)

	// Wait for the API before the first cycle.
	slog.Info("waiting for islesim API...")
	waitForAPI(cfg.APIURL)

	runCycle(st)

	ticker := time.NewTicker(cfg.Interval)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case <-ticker.C:
			runCycle(st)
		case sig := <-sigCh:
			slog.Info("received signal, shutting down", "signal", sig)
			fmt.Println("Steward stopped.")
			return
		}
	}
}

func runCycle(st *steward.Steward) {
	rec, err := st.RunCycle()
	if err != nil {
		slog.Error("steward cycle failed", "error", err)
		return
	}
	slog.Info("steward cycle complete",
		"stage", rec.Stage,
		"applied", rec.Applied,
		"rejected", rec.Rejected,
		"points", rec.Points,
	)
}

// waitForAPI polls the status endpoint with exponential backoff until it
// responds. Exits after 5 minutes if the API never becomes ready.
func waitForAPI(apiURL string) {
	backoff := 2 * time.Second
	maxBackoff := 30 * time.Second
	deadline := time.Now().Add(5 * time.Minute)

	for {
		resp, err := http.Get(apiURL + "/api/v1/status")
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				slog.Info("islesim API is ready")
				return
			}
		}
		if time.Now().After(deadline) {
			slog.Error("islesim API did not become ready within 5 minutes")
			os.Exit(1)
		}
		slog.Info("islesim not ready, retrying...", "backoff", backoff)
		time.Sleep(backoff)
		backoff *= 2
		if backoff > maxBackoff {
			backoff = maxBackoff
		}
	}
}
