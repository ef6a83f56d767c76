package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/SkyGraphAI/skygraph-mvp/engine/domain"
	"github.com/SkyGraphAI/skygraph-mvp/engine/graph"
	"github.com/SkyGraphAI/skygraph-mvp/engine/qa"
	"github.com/SkyGraphAI/skygraph-mvp/pkg/llm"
	"github.com/SkyGraphAI/skygraph-mvp/pkg/metrics"
)

// backend bundles everything that depends on a live Neo4j connection.
type backend struct {
	driver neo4j.DriverWithContext
	store  *graph.GraphStore
	schema *graph.SchemaCache
	qa     *qa.Service
}

// server holds the API's state. The backend pointer is swapped atomically
// under the mutex so /api/connect can rebuild it while requests are in
// flight.
type server struct {
	cfg   Config
	model *llm.Client
	log   *slog.Logger
	reg   *metrics.Registry

	mu      sync.RWMutex
	backend *backend
}

func newServer(cfg Config, model *llm.Client, log *slog.Logger, reg *metrics.Registry) *server {
	return &server{cfg: cfg, model: model, log: log, reg: reg}
}

// connect builds a fresh backend and verifies it with a ping. On success
// the old backend, if any, is closed and replaced.
func (s *server) connect(ctx context.Context) error {
	driver, err := neo4j.NewDriverWithContext(s.cfg.Neo4jURL, neo4j.BasicAuth(s.cfg.Neo4jUser, s.cfg.Neo4jPass, ""))
	if err != nil {
		return fmt.Errorf("neo4j driver: %w", err)
	}

	store := graph.New(driver)
	if err := store.Ping(ctx); err != nil {
		_ = driver.Close(ctx)
		return fmt.Errorf("neo4j ping: %w", err)
	}

	schema := graph.NewSchemaCache(store, s.log)
	b := &backend{
		driver: driver,
		store:  store,
		schema: schema,
		qa:     qa.New(s.model, store, schema, qa.DefaultOptions(), s.log, s.reg),
	}

	s.mu.Lock()
	old := s.backend
	s.backend = b
	s.mu.Unlock()

	if old != nil {
		_ = old.driver.Close(ctx)
	}
	s.log.Info("graph backend connected", "url", s.cfg.Neo4jURL)
	return nil
}

func (s *server) current() *backend {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.backend
}

func (s *server) closeBackend(ctx context.Context) {
	s.mu.Lock()
	b := s.backend
	s.backend = nil
	s.mu.Unlock()
	if b != nil {
		_ = b.driver.Close(ctx)
	}
}

// --- Handlers ---

func (s *server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	status := "ok"
	if s.current() == nil {
		status = "degraded"
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": status})
}

// AskRequest is the JSON body for POST /api/ask.
type AskRequest struct {
	Question string `json:"question"`
}

func (s *server) handleAsk(w http.ResponseWriter, r *http.Request) {
	b := s.current()
	if b == nil {
		writeError(w, http.StatusServiceUnavailable, "backend unavailable")
		return
	}

	var req AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	exchange, err := b.qa.Ask(r.Context(), req.Question)
	if err != nil {
		if domain.IsValidation(err) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.log.Error("ask failed", "err", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, exchange)
}

func (s *server) handleSchema(w http.ResponseWriter, r *http.Request) {
	b := s.current()
	if b == nil {
		writeError(w, http.StatusServiceUnavailable, "backend unavailable")
		return
	}

	schema, err := b.schema.Get(r.Context())
	if err != nil {
		s.log.Error("schema fetch failed", "err", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, schema)
}

func (s *server) handleConnect(w http.ResponseWriter, r *http.Request) {
	if err := s.connect(r.Context()); err != nil {
		s.log.Error("connect failed", "err", err)
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "connected"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
