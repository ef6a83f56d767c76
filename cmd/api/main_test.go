package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/SkyGraphAI/skygraph-mvp/engine/graph"
	"github.com/SkyGraphAI/skygraph-mvp/engine/qa"
)

type stubLLM struct{ reply string }

func (s *stubLLM) Generate(_ context.Context, _ string) (string, error) {
	if s.reply == "" {
		return "", errors.New("offline")
	}
	return s.reply, nil
}

type stubStore struct{ rows []map[string]any }

func (s *stubStore) Rows(_ context.Context, _ string) ([]map[string]any, error) {
	return s.rows, nil
}

func discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func newTestServer(rows []map[string]any) *server {
	store := &stubStore{rows: rows}
	schema := graph.NewSchemaCache(store, discard())
	srv := &server{cfg: loadConfig(), log: discard()}
	srv.backend = &backend{
		schema: schema,
		qa:     qa.New(&stubLLM{}, store, schema, qa.DefaultOptions(), discard(), nil),
	}
	return srv
}

func TestHandleAsk(t *testing.T) {
	srv := newTestServer([]map[string]any{{"satellite": "INSAT-3DR"}})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/ask", strings.NewReader(`{"question":"which satellites exist?"}`))
	srv.handleAsk(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var ex qa.Exchange
	if err := json.Unmarshal(rec.Body.Bytes(), &ex); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if ex.ResultCount != 1 || !strings.Contains(ex.Answer, "INSAT-3DR") {
		t.Errorf("exchange = %+v", ex)
	}
	if ex.CypherQuery == "" {
		t.Error("response should echo the cypher query")
	}
}

func TestHandleAsk_BadRequests(t *testing.T) {
	srv := newTestServer(nil)

	rec := httptest.NewRecorder()
	srv.handleAsk(rec, httptest.NewRequest("POST", "/api/ask", strings.NewReader("not json")))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("invalid body: status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	srv.handleAsk(rec, httptest.NewRequest("POST", "/api/ask", strings.NewReader(`{"question":""}`)))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("empty question: status = %d", rec.Code)
	}
}

func TestHandlers_BackendUnavailable(t *testing.T) {
	srv := &server{cfg: loadConfig(), log: discard()}

	for _, tc := range []struct {
		name    string
		handler http.HandlerFunc
		req     *http.Request
	}{
		{"ask", srv.handleAsk, httptest.NewRequest("POST", "/api/ask", strings.NewReader(`{"question":"q"}`))},
		{"schema", srv.handleSchema, httptest.NewRequest("GET", "/api/schema", nil)},
	} {
		rec := httptest.NewRecorder()
		tc.handler(rec, tc.req)
		if rec.Code != http.StatusServiceUnavailable {
			t.Errorf("%s: status = %d, want 503", tc.name, rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "backend unavailable") {
			t.Errorf("%s: body = %s", tc.name, rec.Body.String())
		}
	}
}

func TestHandleHealth(t *testing.T) {
	srv := &server{cfg: loadConfig(), log: discard()}

	rec := httptest.NewRecorder()
	srv.handleHealth(rec, httptest.NewRequest("GET", "/api/health", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "degraded") {
		t.Errorf("no backend: %d %s", rec.Code, rec.Body.String())
	}

	srv = newTestServer(nil)
	rec = httptest.NewRecorder()
	srv.handleHealth(rec, httptest.NewRequest("GET", "/api/health", nil))
	if !strings.Contains(rec.Body.String(), "ok") {
		t.Errorf("with backend: %s", rec.Body.String())
	}
}

func TestHandleSchema(t *testing.T) {
	srv := newTestServer([]map[string]any{{"label": "Satellite", "count": int64(6)}})

	rec := httptest.NewRecorder()
	srv.handleSchema(rec, httptest.NewRequest("GET", "/api/schema", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Satellite") {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg := loadConfig()
	if cfg.Port == "" || cfg.Neo4jURL == "" || cfg.OllamaURL == "" {
		t.Errorf("config has empty defaults: %+v", cfg)
	}
}
