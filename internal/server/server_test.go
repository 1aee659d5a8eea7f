package server

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	json "github.com/goccy/go-json"

	"lolmetrics/internal/config"
	"lolmetrics/internal/metrics"
	"lolmetrics/internal/store"
)

// fakeReader serves L1 documents from a map keyed by collection name.
type fakeReader struct {
	docs map[string]map[string]*store.FilteredMatchDoc
	err  error
}

func (f *fakeReader) FindFilteredByID(_ context.Context, name, matchID string) (*store.FilteredMatchDoc, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.docs[name][matchID], nil
}

func testServer(t *testing.T, reader *fakeReader) (*Server, string) {
	t.Helper()
	dataDir := t.TempDir()
	cfg := config.ServerConfig{Port: 0, Mode: "test"}
	return New(cfg, reader, dataDir), dataDir
}

func doGet(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

// TestHealthz tests the liveness endpoint
func TestHealthz(t *testing.T) {
	s, _ := testServer(t, &fakeReader{})

	rec := doGet(t, s, "/healthz")
	if rec.Code != http.StatusOK {
		t.Errorf("Expected 200, got %d", rec.Code)
	}
}

// TestGetArtifact tests serving a computed artifact file verbatim
func TestGetArtifact(t *testing.T) {
	s, dataDir := testServer(t, &fakeReader{})

	path := metrics.ArtifactPath(dataDir, "deadbeef", 440, 5, 7, "troll_index", metrics.Window{})
	if err := metrics.WriteArtifact(path, map[string]string{"hello": "world"}); err != nil {
		t.Fatal(err)
	}

	rec := doGet(t, s, "/api/pools/deadbeef/queues/440/min/5/metrics/troll_index")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Expected application/json, got %s", ct)
	}
	if !strings.Contains(rec.Body.String(), `"hello"`) {
		t.Errorf("Expected artifact body, got: %s", rec.Body.String())
	}
}

// TestGetArtifact_NotComputed tests the missing-file 404
func TestGetArtifact_NotComputed(t *testing.T) {
	s, _ := testServer(t, &fakeReader{})

	rec := doGet(t, s, "/api/pools/deadbeef/queues/440/min/5/metrics/troll_index")
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", rec.Code)
	}
}

// TestGetArtifact_UnknownMetric tests rejection of names outside the catalogue
func TestGetArtifact_UnknownMetric(t *testing.T) {
	s, _ := testServer(t, &fakeReader{})

	rec := doGet(t, s, "/api/pools/deadbeef/queues/440/min/5/metrics/nonsense")
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", rec.Code)
	}
}

// TestGetArtifact_WindowedLookup tests that start/end query params select
// the windowed artifact
func TestGetArtifact_WindowedLookup(t *testing.T) {
	s, dataDir := testServer(t, &fakeReader{})

	w := metrics.Window{Start: "2026-01-01", End: "2026-01-31"}
	path := metrics.ArtifactPath(dataDir, "deadbeef", 440, 5, 4, "win_lose_streak", w)
	if err := metrics.WriteArtifact(path, map[string]string{"windowed": "yes"}); err != nil {
		t.Fatal(err)
	}

	rec := doGet(t, s, "/api/pools/deadbeef/queues/440/min/5/metrics/win_lose_streak?start=2026-01-01&end=2026-01-31")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	// The canonical (unwindowed) lookup must not find it.
	rec = doGet(t, s, "/api/pools/deadbeef/queues/440/min/5/metrics/win_lose_streak")
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for the canonical path, got %d", rec.Code)
	}
}

// TestGetArtifact_BadParams tests parameter validation
func TestGetArtifact_BadParams(t *testing.T) {
	s, _ := testServer(t, &fakeReader{})

	rec := doGet(t, s, "/api/pools/deadbeef/queues/notanumber/min/5/metrics/troll_index")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for bad queue, got %d", rec.Code)
	}

	rec = doGet(t, s, "/api/pools/deadbeef/queues/440/min/5/metrics/troll_index?start=31-01-2026")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for bad window, got %d", rec.Code)
	}
}

// TestGetMatch tests the single L1 document endpoint
func TestGetMatch(t *testing.T) {
	name := store.L1Collection(440, 5, "deadbeef")
	reader := &fakeReader{docs: map[string]map[string]*store.FilteredMatchDoc{
		name: {
			"EUW1_42": {ID: "EUW1_42", Queue: 440, MinFriends: 5, Pool: "deadbeef"},
		},
	}}
	s, _ := testServer(t, reader)

	rec := doGet(t, s, "/api/matches/440/5/deadbeef/EUW1_42")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var doc store.FilteredMatchDoc
	if err := json.Unmarshal(rec.Body.Bytes(), &doc); err != nil {
		t.Fatal(err)
	}
	if doc.ID != "EUW1_42" || doc.Queue != 440 {
		t.Errorf("Unexpected document: %+v", doc)
	}
}

// TestGetMatch_NotFound tests a match id outside the view
func TestGetMatch_NotFound(t *testing.T) {
	s, _ := testServer(t, &fakeReader{})

	rec := doGet(t, s, "/api/matches/440/5/deadbeef/EUW1_404")
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", rec.Code)
	}
}

// TestGetMatch_StoreError tests store failures surface as 500
func TestGetMatch_StoreError(t *testing.T) {
	s, _ := testServer(t, &fakeReader{err: errors.New("connection reset")})

	rec := doGet(t, s, "/api/matches/440/5/deadbeef/EUW1_42")
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("Expected 500, got %d", rec.Code)
	}
}
