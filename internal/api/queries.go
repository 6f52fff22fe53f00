package api

import (
	"net/http"
	"strconv"

	"github.com/talgya/hexisle/internal/engine"
	"github.com/talgya/hexisle/internal/errs"
	"github.com/talgya/hexisle/internal/persistence"
	"github.com/talgya/hexisle/internal/settlement"
	"github.com/talgya/hexisle/internal/world"
)

// StatusResponse is the body of GET /api/v1/status.
type StatusResponse struct {
	engine.Status
	Speed float64 `json:"speed"`
	Frame uint64  `json:"frame"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	var resp StatusResponse
	err := s.do(r, func(sim *engine.Simulation) error {
		resp = StatusResponse{Status: sim.Status(), Speed: s.Eng.Speed, Frame: s.Eng.Frame}
		return nil
	})
	if err != nil {
		s.writeErr(w, err)
		return
	}
	writeJSON(w, resp)
}

// MapView is the discovered part of the island.
type MapView struct {
	Radius int                `json:"radius"`
	Hexes  []HexView          `json:"hexes"` // Visible hexes only
	Cities []*settlement.City `json:"cities"`
	Roads  []RoadView         `json:"roads"`
}

type HexView struct {
	Q        int             `json:"q"`
	R        int             `json:"r"`
	Terrain  string          `json:"terrain"`
	Resource *world.Resource `json:"resource,omitempty"`
	Cooldown float64         `json:"cooldown,omitempty"` // Seconds until harvestable
}

type RoadView struct {
	Edge  world.Edge       `json:"edge"`
	Owner settlement.CivID `json:"owner"`
}

func (s *Server) handleMap(w http.ResponseWriter, r *http.Request) {
	var view MapView
	err := s.do(r, func(sim *engine.Simulation) error {
		if sim.Map == nil {
			return errs.Validationf(errs.ErrNoIsland, "start a new island first")
		}
		view = MapView{
			Radius: sim.Map.Grid.Radius,
			Hexes:  []HexView{},
			Cities: []*settlement.City{},
			Roads:  []RoadView{},
		}
		for _, c := range sim.Map.VisibleHexes() {
			t, _ := sim.HexTerrain(c)
			hv := HexView{Q: c.Q, R: c.R, Terrain: t.String(), Cooldown: sim.RemainingCooldown(c)}
			if res, ok := t.Resource(); ok {
				hv.Resource = &res
			}
			view.Hexes = append(view.Hexes, hv)
		}
		for _, c := range sim.Map.Cities() {
			view.Cities = append(view.Cities, c.Clone())
		}
		for _, e := range sim.Map.Roads() {
			owner, _ := sim.Map.RoadOwner(e)
			view.Roads = append(view.Roads, RoadView{Edge: e, Owner: owner})
		}
		return nil
	})
	if err != nil {
		s.writeErr(w, err)
		return
	}
	writeJSON(w, view)
}

func (s *Server) handleCities(w http.ResponseWriter, r *http.Request) {
	cities := []*settlement.City{}
	err := s.do(r, func(sim *engine.Simulation) error {
		for _, c := range sim.CitiesByCivilization(sim.Player) {
			cities = append(cities, c.Clone())
		}
		return nil
	})
	if err != nil {
		s.writeErr(w, err)
		return
	}
	writeJSON(w, cities)
}

// ResourcesResponse is the body of GET /api/v1/resources.
type ResourcesResponse struct {
	Resources map[string]int `json:"resources"`
	Capacity  int            `json:"capacity"`
	Total     int            `json:"total"`
}

func (s *Server) handleResources(w http.ResponseWriter, r *http.Request) {
	var resp ResourcesResponse
	err := s.do(r, func(sim *engine.Simulation) error {
		resp = ResourcesResponse{
			Resources: make(map[string]int, world.NumResources),
			Capacity:  sim.Capacity(sim.Player),
			Total:     sim.Ledger.Total(),
		}
		for _, res := range world.AllResources {
			resp.Resources[res.String()] = sim.Ledger.Get(res)
		}
		return nil
	})
	if err != nil {
		s.writeErr(w, err)
		return
	}
	writeJSON(w, resp)
}

func (s *Server) handleBuildableRoads(w http.ResponseWriter, r *http.Request) {
	roads := []world.Edge{}
	err := s.do(r, func(sim *engine.Simulation) error {
		roads = append(roads, sim.BuildableRoads(sim.Player)...)
		return nil
	})
	if err != nil {
		s.writeErr(w, err)
		return
	}
	writeJSON(w, roads)
}

func (s *Server) handleBuildableOutposts(w http.ResponseWriter, r *http.Request) {
	corners := []world.Vertex{}
	err := s.do(r, func(sim *engine.Simulation) error {
		corners = append(corners, sim.BuildableOutposts(sim.Player)...)
		return nil
	})
	if err != nil {
		s.writeErr(w, err)
		return
	}
	writeJSON(w, corners)
}

// CooldownResponse is the body of GET /api/v1/cooldown.
type CooldownResponse struct {
	Hex       world.HexCoord `json:"hex"`
	Remaining float64        `json:"remaining"`
	Ready     bool           `json:"ready"`
}

func (s *Server) handleCooldown(w http.ResponseWriter, r *http.Request) {
	q, errQ := strconv.Atoi(r.URL.Query().Get("q"))
	rr, errR := strconv.Atoi(r.URL.Query().Get("r"))
	if errQ != nil || errR != nil {
		writeError(w, http.StatusBadRequest, "q and r must be integers")
		return
	}
	hex := world.HexCoord{Q: q, R: rr}

	var resp CooldownResponse
	err := s.do(r, func(sim *engine.Simulation) error {
		if sim.Map == nil {
			return errs.Validationf(errs.ErrNoIsland, "start a new island first")
		}
		if _, ok := sim.HexTerrain(hex); !ok {
			return errs.NotFoundf("hex %s is not on the island", hex)
		}
		left := sim.RemainingCooldown(hex)
		resp = CooldownResponse{Hex: hex, Remaining: left, Ready: left == 0}
		return nil
	})
	if err != nil {
		s.writeErr(w, err)
		return
	}
	writeJSON(w, resp)
}

// RatesResponse is the body of GET /api/v1/rates.
type RatesResponse struct {
	TradeAccess bool           `json:"trade_access"`
	Rates       map[string]int `json:"rates"` // Units offered per unit requested
}

func (s *Server) handleRates(w http.ResponseWriter, r *http.Request) {
	var resp RatesResponse
	err := s.do(r, func(sim *engine.Simulation) error {
		table := sim.Rates(sim.Player)
		resp = RatesResponse{
			TradeAccess: sim.HasTradeAccess(sim.Player),
			Rates:       make(map[string]int, world.NumResources),
		}
		for _, res := range world.AllResources {
			resp.Rates[res.String()] = table.Rate(res)
		}
		return nil
	})
	if err != nil {
		s.writeErr(w, err)
		return
	}
	writeJSON(w, resp)
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	n := queryLimit(r, 50, 256)
	events := s.Eng.Recent(n)
	if events == nil {
		events = []engine.Event{}
	}
	writeJSON(w, events)
}

func (s *Server) handleSaves(w http.ResponseWriter, r *http.Request) {
	if s.DB == nil {
		writeError(w, http.StatusServiceUnavailable, "no save database configured")
		return
	}
	saves, err := s.DB.ListSaves(queryLimit(r, 20, 100))
	if err != nil {
		s.writeErr(w, errs.WrapInternal("list saves", err))
		return
	}
	if saves == nil {
		saves = []persistence.SaveInfo{}
	}
	writeJSON(w, saves)
}

func (s *Server) handlePrestigeHistory(w http.ResponseWriter, r *http.Request) {
	if s.DB == nil {
		writeError(w, http.StatusServiceUnavailable, "no save database configured")
		return
	}
	hist, err := s.DB.PrestigeHistory(queryLimit(r, 20, 100))
	if err != nil {
		s.writeErr(w, errs.WrapInternal("prestige history", err))
		return
	}
	if hist == nil {
		hist = []persistence.PrestigeRecord{}
	}
	writeJSON(w, hist)
}

// queryLimit reads ?limit= (or ?n=), clamped to [1, ceiling].
func queryLimit(r *http.Request, def, ceiling int) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		raw = r.URL.Query().Get("n")
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return def
	}
	if n > ceiling {
		return ceiling
	}
	return n
}
