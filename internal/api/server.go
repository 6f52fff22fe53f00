// Package api provides the HTTP API for playing and observing an island.
// GET endpoints are public (read-only observation).
// POST endpoints are player commands and require the bearer admin key
// when one is configured.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/cors"

	"github.com/talgya/hexisle/internal/config"
	"github.com/talgya/hexisle/internal/engine"
	"github.com/talgya/hexisle/internal/errs"
	"github.com/talgya/hexisle/internal/persistence"
)

// maxStreamConns caps concurrent websocket subscribers.
const maxStreamConns = 8

// maxBodyBytes caps POST bodies.
const maxBodyBytes = 64 << 10

// Server serves one simulation over HTTP.
type Server struct {
	Eng      *engine.Engine
	DB       *persistence.DB // Optional; save endpoints answer 503 without it
	Port     int
	AdminKey string // Bearer token for POST endpoints. Empty = POST open.

	AllowedOrigins []string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	RateLimit      config.RateLimitConfig

	streamConns atomic.Int32
	upgrader    websocket.Upgrader
	log         *slog.Logger
}

// New creates a server for eng using host settings from cfg.
func New(eng *engine.Engine, db *persistence.DB, cfg *config.Config) *Server {
	return &Server{
		Eng:            eng,
		DB:             db,
		Port:           cfg.Server.Port,
		AdminKey:       cfg.AdminKey,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		RateLimit:      cfg.RateLimit,
	}
}

// Handler builds the routed, CORS-wrapped handler.
func (s *Server) Handler() http.Handler {
	if s.log == nil {
		s.log = slog.With("component", "api")
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 16 * 1024,
		CheckOrigin:     s.checkOrigin,
	}
	limiter := NewRateLimiter(s.RateLimit)

	mux := http.NewServeMux()

	// Public endpoints (GET, read-only).
	mux.HandleFunc("/api/v1/status", get(s.handleStatus))
	mux.HandleFunc("/api/v1/map", get(s.handleMap))
	mux.HandleFunc("/api/v1/cities", get(s.handleCities))
	mux.HandleFunc("/api/v1/resources", get(s.handleResources))
	mux.HandleFunc("/api/v1/buildable/roads", get(s.handleBuildableRoads))
	mux.HandleFunc("/api/v1/buildable/outposts", get(s.handleBuildableOutposts))
	mux.HandleFunc("/api/v1/cooldown", get(s.handleCooldown))
	mux.HandleFunc("/api/v1/rates", get(s.handleRates))
	mux.HandleFunc("/api/v1/events", get(s.handleEvents))
	mux.HandleFunc("/api/v1/saves", get(s.handleSaves))
	mux.HandleFunc("/api/v1/prestige/history", get(s.handlePrestigeHistory))

	// Event stream (websocket).
	mux.HandleFunc("/api/v1/stream", s.handleStream)

	// Player commands (POST, bearer token when configured, rate limited).
	guarded := func(h http.HandlerFunc) http.HandlerFunc {
		return limiter.Wrap(s.adminOnly(post(h)))
	}
	mux.HandleFunc("/api/v1/road", guarded(s.handleRoad))
	mux.HandleFunc("/api/v1/outpost", guarded(s.handleOutpost))
	mux.HandleFunc("/api/v1/harvest", guarded(s.handleHarvest))
	mux.HandleFunc("/api/v1/building", guarded(s.handleBuilding))
	mux.HandleFunc("/api/v1/building/upgrade", guarded(s.handleBuildingUpgrade))
	mux.HandleFunc("/api/v1/city/upgrade", guarded(s.handleCityUpgrade))
	mux.HandleFunc("/api/v1/port/specialize", guarded(s.handleSpecialize))
	mux.HandleFunc("/api/v1/trade", guarded(s.handleTrade))
	mux.HandleFunc("/api/v1/automation", guarded(s.handleAutomation))
	mux.HandleFunc("/api/v1/prestige", guarded(s.handlePrestige))
	mux.HandleFunc("/api/v1/prestige/upgrade", guarded(s.handlePrestigeUpgrade))
	mux.HandleFunc("/api/v1/island", guarded(s.handleIsland))
	mux.HandleFunc("/api/v1/save", guarded(s.handleSave))

	c := cors.New(cors.Options{
		AllowedOrigins: s.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
	})
	return c.Handler(mux)
}

// Start begins serving the HTTP API in a goroutine. Shut the returned
// server down to stop it.
func (s *Server) Start() *http.Server {
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.Port),
		Handler:      s.Handler(),
		ReadTimeout:  s.ReadTimeout,
		WriteTimeout: s.WriteTimeout,
	}
	s.log.Info("HTTP API starting",
		"addr", srv.Addr,
		"admin_auth", s.AdminKey != "",
		"rate_limit", s.RateLimit.Enabled,
		"allowed_origins", s.AllowedOrigins,
	)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("HTTP server error", "error", err)
		}
	}()
	return srv
}

// checkOrigin applies the CORS allow-list to websocket upgrades.
func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, o := range s.AllowedOrigins {
		if o == "*" || o == origin {
			return true
		}
	}
	return false
}

// checkBearerToken returns true if the request has a valid admin bearer token.
func (s *Server) checkBearerToken(r *http.Request) bool {
	auth := r.Header.Get("Authorization")
	return strings.HasPrefix(auth, "Bearer ") && strings.TrimPrefix(auth, "Bearer ") == s.AdminKey
}

// adminOnly wraps a handler to require bearer token auth when an admin key
// is configured.
func (s *Server) adminOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.AdminKey != "" && !s.checkBearerToken(r) {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next(w, r)
	}
}

func get(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.Header().Set("Allow", http.MethodGet)
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		next(w, r)
	}
}

func post(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.Header().Set("Allow", http.MethodPost)
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		next(w, r)
	}
}

// do runs fn on the engine loop with the request's context.
func (s *Server) do(r *http.Request, fn func(*engine.Simulation) error) error {
	return s.Eng.Do(r.Context(), fn)
}

// decodeBody reads a JSON request body into v. An empty body leaves v
// untouched.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return errs.Validationf(errs.ErrInvalidArgument, "invalid json: %v", err)
	}
	return nil
}

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error string    `json:"error"`
	Kind  errs.Kind `json:"kind,omitempty"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(errorBody{Error: msg})
}

// writeErr maps a simulation error to an HTTP status by kind.
func (s *Server) writeErr(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.log.Error("request failed", "error", err)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(errorBody{Error: err.Error(), Kind: errs.KindOf(err)})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, engine.ErrStopped), errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	case errors.Is(err, errs.ErrInvalidArgument):
		return http.StatusBadRequest
	}
	switch errs.KindOf(err) {
	case errs.KindValidation:
		return http.StatusConflict
	case errs.KindNotFound:
		return http.StatusNotFound
	case errs.KindCorrupt:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(data)
}
