package api

import (
	"net/http"

	"github.com/talgya/hexisle/internal/economy"
	"github.com/talgya/hexisle/internal/engine"
	"github.com/talgya/hexisle/internal/errs"
	"github.com/talgya/hexisle/internal/persistence"
	"github.com/talgya/hexisle/internal/settlement"
	"github.com/talgya/hexisle/internal/world"
)

// Request bodies. Vertices and edges are given as their hexes in any order.

type RoadRequest struct {
	Edge world.Edge `json:"edge"`
}

type VertexRequest struct {
	Vertex world.Vertex `json:"vertex"`
}

type HarvestRequest struct {
	Hex  world.HexCoord `json:"hex"`
	City *world.Vertex  `json:"city,omitempty"` // Harvesting city; defaults to the lowest-id neighbor
}

type BuildingRequest struct {
	Type   *settlement.BuildingType `json:"type"`
	Vertex world.Vertex             `json:"vertex"`
}

type SpecializeRequest struct {
	Vertex   world.Vertex    `json:"vertex"`
	Resource *world.Resource `json:"resource"`
}

type TradeRequest struct {
	Offered   economy.Cost `json:"offered"`
	Requested economy.Cost `json:"requested"`
}

type UpgradeRequest struct {
	Key string `json:"key"`
}

type IslandRequest struct {
	Seed int64 `json:"seed"` // 0 picks one
}

type SaveRequest struct {
	Label string `json:"label"`
}

func canonicalVertex(v world.Vertex) (world.Vertex, error) {
	out := world.NewVertex(v[0], v[1], v[2])
	if !world.ValidVertex(out) {
		return out, errs.Validationf(errs.ErrInvalidArgument, "hexes %v do not meet at a corner", v)
	}
	return out, nil
}

func canonicalEdge(e world.Edge) (world.Edge, error) {
	out := world.NewEdge(e[0], e[1])
	if !world.ValidEdge(out) {
		return out, errs.Validationf(errs.ErrInvalidArgument, "hexes %v do not share a border", e)
	}
	return out, nil
}

// command decodes the body into req, runs fn on the engine loop and writes
// its result.
func command[Req any, Resp any](s *Server, w http.ResponseWriter, r *http.Request, fn func(*engine.Simulation, *Req) (Resp, error)) {
	var req Req
	if err := decodeBody(w, r, &req); err != nil {
		s.writeErr(w, err)
		return
	}
	var resp Resp
	err := s.do(r, func(sim *engine.Simulation) error {
		var err error
		resp, err = fn(sim, &req)
		return err
	})
	if err != nil {
		s.writeErr(w, err)
		return
	}
	writeJSON(w, resp)
}

func (s *Server) handleRoad(w http.ResponseWriter, r *http.Request) {
	command(s, w, r, func(sim *engine.Simulation, req *RoadRequest) (engine.BuildResult, error) {
		e, err := canonicalEdge(req.Edge)
		if err != nil {
			return engine.BuildResult{}, err
		}
		return sim.BuildRoad(e, sim.Player)
	})
}

func (s *Server) handleOutpost(w http.ResponseWriter, r *http.Request) {
	command(s, w, r, func(sim *engine.Simulation, req *VertexRequest) (engine.BuildResult, error) {
		v, err := canonicalVertex(req.Vertex)
		if err != nil {
			return engine.BuildResult{}, err
		}
		return sim.BuildOutpost(v, sim.Player)
	})
}

func (s *Server) handleHarvest(w http.ResponseWriter, r *http.Request) {
	command(s, w, r, func(sim *engine.Simulation, req *HarvestRequest) (engine.HarvestResult, error) {
		var city *world.Vertex
		if req.City != nil {
			v, err := canonicalVertex(*req.City)
			if err != nil {
				return engine.HarvestResult{}, err
			}
			city = &v
		}
		return sim.Harvest(req.Hex, sim.Player, city)
	})
}

func (s *Server) handleBuilding(w http.ResponseWriter, r *http.Request) {
	command(s, w, r, func(sim *engine.Simulation, req *BuildingRequest) (engine.BuildResult, error) {
		v, err := buildingTarget(req)
		if err != nil {
			return engine.BuildResult{}, err
		}
		return sim.BuildBuilding(*req.Type, v, sim.Player)
	})
}

func (s *Server) handleBuildingUpgrade(w http.ResponseWriter, r *http.Request) {
	command(s, w, r, func(sim *engine.Simulation, req *BuildingRequest) (engine.BuildResult, error) {
		v, err := buildingTarget(req)
		if err != nil {
			return engine.BuildResult{}, err
		}
		return sim.UpgradeBuilding(*req.Type, v, sim.Player)
	})
}

func buildingTarget(req *BuildingRequest) (world.Vertex, error) {
	if req.Type == nil {
		return world.Vertex{}, errs.Validationf(errs.ErrInvalidArgument, "building type is required")
	}
	return canonicalVertex(req.Vertex)
}

func (s *Server) handleCityUpgrade(w http.ResponseWriter, r *http.Request) {
	command(s, w, r, func(sim *engine.Simulation, req *VertexRequest) (engine.BuildResult, error) {
		v, err := canonicalVertex(req.Vertex)
		if err != nil {
			return engine.BuildResult{}, err
		}
		return sim.UpgradeCity(v, sim.Player)
	})
}

// SpecializeResponse is the body of a successful POST /api/v1/port/specialize.
type SpecializeResponse struct {
	Vertex   world.Vertex   `json:"vertex"`
	Resource world.Resource `json:"resource"`
}

func (s *Server) handleSpecialize(w http.ResponseWriter, r *http.Request) {
	command(s, w, r, func(sim *engine.Simulation, req *SpecializeRequest) (SpecializeResponse, error) {
		if req.Resource == nil {
			return SpecializeResponse{}, errs.Validationf(errs.ErrInvalidArgument, "resource is required")
		}
		v, err := canonicalVertex(req.Vertex)
		if err != nil {
			return SpecializeResponse{}, err
		}
		if err := sim.SpecializePort(v, *req.Resource, sim.Player); err != nil {
			return SpecializeResponse{}, err
		}
		return SpecializeResponse{Vertex: v, Resource: *req.Resource}, nil
	})
}

func (s *Server) handleTrade(w http.ResponseWriter, r *http.Request) {
	command(s, w, r, func(sim *engine.Simulation, req *TradeRequest) (economy.TradeResult, error) {
		return sim.BatchTrade(req.Offered, req.Requested, sim.Player)
	})
}

func (s *Server) handleAutomation(w http.ResponseWriter, r *http.Request) {
	command(s, w, r, func(sim *engine.Simulation, req *engine.AutomationFlags) (engine.AutomationFlags, error) {
		if err := sim.SetAutomation(*req, sim.Player); err != nil {
			return engine.AutomationFlags{}, err
		}
		return sim.Automation, nil
	})
}

func (s *Server) handlePrestige(w http.ResponseWriter, r *http.Request) {
	command(s, w, r, func(sim *engine.Simulation, _ *struct{}) (engine.PrestigeResult, error) {
		return sim.ActivatePrestige(sim.Player)
	})
}

func (s *Server) handlePrestigeUpgrade(w http.ResponseWriter, r *http.Request) {
	command(s, w, r, func(sim *engine.Simulation, req *UpgradeRequest) (engine.UpgradeResult, error) {
		return sim.PurchaseUpgrade(req.Key)
	})
}

func (s *Server) handleIsland(w http.ResponseWriter, r *http.Request) {
	command(s, w, r, func(sim *engine.Simulation, req *IslandRequest) (engine.IslandResult, error) {
		return sim.NewIsland(req.Seed)
	})
}

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	if s.DB == nil {
		writeError(w, http.StatusServiceUnavailable, "no save database configured")
		return
	}
	command(s, w, r, func(sim *engine.Simulation, req *SaveRequest) (persistence.SaveInfo, error) {
		label := req.Label
		if label == "" {
			label = "manual"
		}
		info, err := s.DB.SaveWorldState(sim, label)
		if err != nil {
			return persistence.SaveInfo{}, errs.WrapInternal("save", err)
		}
		return info, nil
	})
}
