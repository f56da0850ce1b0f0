// Package api provides the HTTP API for observing the colony.
// GET endpoints are public (read-only observation).
// POST endpoints require a bearer token (admin control plane).
package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/talgya/colony/internal/agents"
	"github.com/talgya/colony/internal/engine"
	"github.com/talgya/colony/internal/persistence"
	"github.com/talgya/colony/internal/resolver"
	"github.com/talgya/colony/internal/roles"
)

const maxStreamConns = 4

// Server serves the colony state over HTTP.
type Server struct {
	Colony   *engine.Colony
	Eng      *engine.Engine
	DB       *persistence.DB    // Optional; enables ?source=db on agents and events
	Resolver *resolver.Resolver // Optional; enables /api/v1/roles
	Port     int
	AdminKey string // Bearer token for POST endpoints. Empty = POST disabled.
	RunID    string

	// Stream connections per IP per minute.
	StreamRate int

	upgrader    websocket.Upgrader
	streamConns chan struct{}
}

// Handler builds the routed handler. Start uses it; tests can mount it
// directly.
func (s *Server) Handler() http.Handler {
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  4 * 1024,
		WriteBufferSize: 16 * 1024,
		CheckOrigin:     func(r *http.Request) bool { return true },
	}
	s.streamConns = make(chan struct{}, maxStreamConns)
	rate := s.StreamRate
	if rate <= 0 {
		rate = 10
	}
	streamLimiter := NewRateLimiter(rate, time.Minute)

	mux := http.NewServeMux()

	// Public endpoints (GET, read-only).
	mux.HandleFunc("/api/v1/status", s.handleStatus)
	mux.HandleFunc("/api/v1/agents", s.handleAgents)
	mux.HandleFunc("/api/v1/agent/", s.handleAgentDetail)
	mux.HandleFunc("/api/v1/events", s.handleEvents)
	mux.HandleFunc("/api/v1/roles", s.handleRoles)
	mux.HandleFunc("/api/v1/stream", RateLimitMiddleware(streamLimiter, s.handleStream))

	// Admin endpoints (POST, require bearer token).
	mux.HandleFunc("/api/v1/speed", s.adminOnly(s.handleSpeed))

	return corsMiddleware(mux)
}

// Start begins serving the HTTP API in a goroutine.
func (s *Server) Start() {
	addr := fmt.Sprintf(":%d", s.Port)
	slog.Info("HTTP API starting", "addr", addr, "admin_auth", s.AdminKey != "")

	handler := s.Handler()
	go func() {
		if err := http.ListenAndServe(addr, handler); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()
}

// corsMiddleware adds CORS headers for allowed frontend origins.
// Set CORS_ORIGINS to a comma-separated list of extra origins.
func corsMiddleware(next http.Handler) http.Handler {
	allowedOrigins := map[string]bool{
		"http://localhost:5173": true,
		"http://localhost:3000": true,
	}
	if env := os.Getenv("CORS_ORIGINS"); env != "" {
		for _, origin := range strings.Split(env, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				allowedOrigins[origin] = true
			}
		}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if allowedOrigins[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// checkBearerToken returns true if the request has a valid admin bearer token.
func (s *Server) checkBearerToken(r *http.Request) bool {
	auth := r.Header.Get("Authorization")
	return strings.HasPrefix(auth, "Bearer ") && strings.TrimPrefix(auth, "Bearer ") == s.AdminKey
}

// adminOnly wraps a handler to require bearer token auth on POST requests.
// GET requests pass through.
func (s *Server) adminOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			if s.AdminKey == "" {
				http.Error(w, "admin endpoints disabled (no COLONY_ADMIN_KEY set)", http.StatusForbidden)
				return
			}
			if !s.checkBearerToken(r) {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
		}
		next(w, r)
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	snap := s.Colony.Snapshot()
	status := map[string]any{
		"name":    "colony",
		"run_id":  s.RunID,
		"region":  s.Colony.Region,
		"tick":    snap.Tick,
		"speed":   s.Eng.Speed(),
		"running": s.Eng.Running(),
		"stats":   snap.Stats,
	}
	writeJSON(w, status)
}

// handleAgents lists agents in run order, optionally filtered by role or
// state. With ?source=db it returns the roster of the last save instead.
func (s *Server) handleAgents(w http.ResponseWriter, r *http.Request) {
	role := r.URL.Query().Get("role")
	state := r.URL.Query().Get("state")

	if r.URL.Query().Get("source") == "db" && s.DB != nil {
		rows, err := s.DB.LoadAgents()
		if err != nil {
			slog.Error("agent query failed", "error", err)
			http.Error(w, "agent query failed", http.StatusInternalServerError)
			return
		}
		out := make([]persistence.AgentRow, 0, len(rows))
		for _, a := range rows {
			if (role == "" || a.Role == role) && (state == "" || a.State == state) {
				out = append(out, a)
			}
		}
		writeJSON(w, out)
		return
	}

	out := make([]agents.Summary, 0)
	for _, a := range s.Colony.Snapshot().Agents {
		if role != "" && a.Role != role {
			continue
		}
		if state != "" && a.State != state {
			continue
		}
		out = append(out, a)
	}
	writeJSON(w, out)
}

func (s *Server) handleAgentDetail(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimPrefix(r.URL.Path, "/api/v1/agent/")
	if name == "" || strings.Contains(name, "/") {
		http.Error(w, "agent name required", http.StatusBadRequest)
		return
	}
	summary, ok := s.Colony.Agent(name)
	if !ok {
		http.Error(w, "agent not found", http.StatusNotFound)
		return
	}

	var recent []engine.Event
	for _, e := range s.Colony.RecentEvents(0) {
		if e.Agent == name {
			recent = append(recent, e)
		}
	}
	if len(recent) > 20 {
		recent = recent[len(recent)-20:]
	}
	writeJSON(w, map[string]any{
		"agent":  summary,
		"events": recent,
	})
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 && n <= engine.MaxEvents {
			limit = n
		}
	}

	if r.URL.Query().Get("source") == "db" && s.DB != nil {
		events, err := s.DB.RecentEvents(limit)
		if err != nil {
			slog.Error("event query failed", "error", err)
			http.Error(w, "event query failed", http.StatusInternalServerError)
			return
		}
		if events == nil {
			events = []engine.Event{}
		}
		writeJSON(w, events)
		return
	}

	events := s.Colony.RecentEvents(0)
	if agent := r.URL.Query().Get("agent"); agent != "" {
		var filtered []engine.Event
		for _, e := range events {
			if e.Agent == agent {
				filtered = append(filtered, e)
			}
		}
		events = filtered
	}
	if len(events) > limit {
		events = events[len(events)-limit:]
	}
	if events == nil {
		events = []engine.Event{}
	}
	writeJSON(w, events)
}

type stepView struct {
	Action string `json:"action"`
	Find   string `json:"find"`
	Amount int    `json:"amount"` // Capacity a candidate must offer
}

type roleView struct {
	Role       string     `json:"role"`
	Body       []string   `json:"body"`
	Cost       int        `json:"cost"`
	CarryUnits int        `json:"carry_units"`
	WorkUnits  int        `json:"work_units"`
	Deliver    []stepView `json:"deliver,omitempty"`
	Collect    []stepView `json:"collect,omitempty"`
}

// handleRoles shows the role catalog with each role's resolver strategy.
func (s *Server) handleRoles(w http.ResponseWriter, r *http.Request) {
	if s.Resolver == nil {
		http.Error(w, "resolver not available", http.StatusNotFound)
		return
	}
	steps := func(role roles.Role, list []resolver.Step) []stepView {
		out := make([]stepView, 0, len(list))
		for _, st := range list {
			out = append(out, stepView{
				Action: st.Action.String(),
				Find:   st.Find.String(),
				Amount: s.Resolver.Amount(st, role),
			})
		}
		return out
	}

	views := make([]roleView, 0, len(roles.All))
	for _, role := range roles.All {
		v := roleView{
			Role:       role.String(),
			Cost:       roles.Cost(role),
			CarryUnits: roles.CarryUnits(role),
			WorkUnits:  roles.WorkUnits(role),
		}
		for _, p := range roles.Body(role) {
			v.Body = append(v.Body, p.String())
		}
		if chain, ok := s.Resolver.Chain(role); ok {
			v.Deliver = steps(role, chain.Deliver)
			v.Collect = steps(role, chain.Collect)
		}
		views = append(views, v)
	}

	cfg := s.Resolver.Config()
	writeJSON(w, map[string]any{
		"unit_capacity":   cfg.UnitCapacity,
		"park_at_storage": cfg.ParkAtStorage,
		"roles":           views,
	})
}

func (s *Server) handleSpeed(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodPost {
		var req struct {
			Speed float64 `json:"speed"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if req.Speed < 0 || req.Speed > 1000 {
			http.Error(w, "speed must be 0-1000", http.StatusBadRequest)
			return
		}
		s.Eng.SetSpeed(req.Speed)
	}

	writeJSON(w, map[string]float64{"speed": s.Eng.Speed()})
}

func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(data)
}
