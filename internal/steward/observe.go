// Package steward implements a headless autoplayer for a running island.
// It observes state through the public API, picks moves with simple
// heuristics, and plays them through the command endpoints.
package steward

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/talgya/hexisle/internal/api"
	"github.com/talgya/hexisle/internal/settlement"
	"github.com/talgya/hexisle/internal/world"
)

// Snapshot holds all data collected during an observation cycle.
type Snapshot struct {
	Status    api.StatusResponse
	Resources api.ResourcesResponse
	Rates     api.RatesResponse
	Map       *api.MapView // nil while no island is in play
	Cities    []settlement.City
	Roads     []world.Edge   // Buildable roads
	Outposts  []world.Vertex // Buildable outposts
}

// Observer fetches island state from the API.
type Observer struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewObserver creates an Observer targeting the given API base URL.
func NewObserver(baseURL string) *Observer {
	return &Observer{
		BaseURL: baseURL,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Observe fetches the status and, when an island is in play, the map,
// cities, buildable sites and rates.
func (o *Observer) Observe() (*Snapshot, error) {
	snap := &Snapshot{}

	if err := o.fetchJSON("/api/v1/status", &snap.Status); err != nil {
		return nil, fmt.Errorf("fetch status: %w", err)
	}
	if err := o.fetchJSON("/api/v1/resources", &snap.Resources); err != nil {
		return nil, fmt.Errorf("fetch resources: %w", err)
	}
	if !snap.Status.HasIsland {
		return snap, nil
	}

	snap.Map = &api.MapView{}
	if err := o.fetchJSON("/api/v1/map", snap.Map); err != nil {
		return nil, fmt.Errorf("fetch map: %w", err)
	}
	if err := o.fetchJSON("/api/v1/cities", &snap.Cities); err != nil {
		return nil, fmt.Errorf("fetch cities: %w", err)
	}
	if err := o.fetchJSON("/api/v1/buildable/roads", &snap.Roads); err != nil {
		return nil, fmt.Errorf("fetch buildable roads: %w", err)
	}
	if err := o.fetchJSON("/api/v1/buildable/outposts", &snap.Outposts); err != nil {
		return nil, fmt.Errorf("fetch buildable outposts: %w", err)
	}
	if err := o.fetchJSON("/api/v1/rates", &snap.Rates); err != nil {
		return nil, fmt.Errorf("fetch rates: %w", err)
	}
	return snap, nil
}

// fetchJSON GETs a path and decodes the JSON response into target.
func (o *Observer) fetchJSON(path string, target any) error {
	resp, err := o.HTTPClient.Get(o.BaseURL + path)
	if err != nil {
		return fmt.Errorf("GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("GET %s returned %d: %s", path, resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
