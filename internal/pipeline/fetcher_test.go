package pipeline

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"

	"lolmetrics/internal/config"
	"lolmetrics/internal/riot"
	"lolmetrics/internal/store"
)

// fakeSource serves matchlists and match payloads from memory.
type fakeSource struct {
	mu        sync.Mutex
	lists     map[string][]string // puuid -> full history, newest first
	key       string
	failAuth  bool // fail every call until the key changes
	listCalls int
	getCalls  int
}

func (f *fakeSource) GetMatchIDs(_ context.Context, puuid string, _ int, start, count int) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	if f.failAuth {
		return nil, &riot.StatusError{Code: http.StatusForbidden, URL: "matchlist"}
	}
	all := f.lists[puuid]
	if start >= len(all) {
		return nil, nil
	}
	end := start + count
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], nil
}

func (f *fakeSource) GetMatch(_ context.Context, matchID string) (*riot.Match, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.getCalls++
	if f.failAuth {
		return nil, &riot.StatusError{Code: http.StatusForbidden, URL: "match"}
	}
	m := &riot.Match{}
	m.Metadata.MatchID = matchID
	return m, nil
}

func (f *fakeSource) SetAPIKey(key string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.key = key
	f.failAuth = false
}

// fakeSink stores matches in a map.
type fakeSink struct {
	mu   sync.Mutex
	docs map[string]store.RawMatchDoc
}

func newFakeSink(ids ...string) *fakeSink {
	s := &fakeSink{docs: make(map[string]store.RawMatchDoc)}
	for _, id := range ids {
		s.docs[id] = store.RawMatchDoc{ID: id}
	}
	return s
}

func (s *fakeSink) IDs(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(s.docs))
	for id := range s.docs {
		ids = append(ids, id)
	}
	return ids, nil
}

func (s *fakeSink) Has(_ context.Context, matchID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.docs[matchID]
	return ok, nil
}

func (s *fakeSink) Insert(_ context.Context, doc store.RawMatchDoc) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[doc.ID] = doc
	return nil
}

// fakeKeys hands out a fixed replacement key.
type fakeKeys struct {
	key   string
	err   error
	calls atomic.Int32
}

func (k *fakeKeys) CurrentKey(_ context.Context) (string, error) {
	k.calls.Add(1)
	return k.key, k.err
}

func testFetcherConfig() config.FetcherConfig {
	return config.FetcherConfig{
		Workers:            2,
		MatchlistPageSize:  2,
		MaxMatchesPerPUUID: 10,
		RetryBudget:        1,
	}
}

// TestFetcherRun_StoresNewMatches tests the happy path across pages
func TestFetcherRun_StoresNewMatches(t *testing.T) {
	src := &fakeSource{lists: map[string][]string{
		"p1": {"EUW1_5", "EUW1_4", "EUW1_3"},
	}}
	sink := newFakeSink()
	f := NewFetcher(src, sink, &fakeKeys{key: "k"}, testFetcherConfig())

	stats, err := f.Run(context.Background(), []string{"p1"}, 440)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if stats.Fetched != 3 {
		t.Errorf("Expected 3 fetched, got %d", stats.Fetched)
	}
	if len(sink.docs) != 3 {
		t.Errorf("Expected 3 stored, got %d", len(sink.docs))
	}
	// Pages of 2 over 3 ids: the short second page ends the pagination.
	if src.listCalls != 2 {
		t.Errorf("Expected 2 matchlist pages, got %d", src.listCalls)
	}
}

// TestFetcherRun_SkipsStoredMatches tests the dedupe prefilter against
// already-stored ids
func TestFetcherRun_SkipsStoredMatches(t *testing.T) {
	src := &fakeSource{lists: map[string][]string{
		"p1": {"EUW1_5", "EUW1_4"},
	}}
	sink := newFakeSink("EUW1_5")
	f := NewFetcher(src, sink, &fakeKeys{key: "k"}, testFetcherConfig())

	stats, err := f.Run(context.Background(), []string{"p1"}, 440)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if stats.Skipped != 1 {
		t.Errorf("Expected 1 skipped, got %d", stats.Skipped)
	}
	if stats.Fetched != 1 {
		t.Errorf("Expected 1 fetched, got %d", stats.Fetched)
	}
	if src.getCalls != 1 {
		t.Errorf("Expected 1 match detail call, got %d", src.getCalls)
	}
}

// TestFetcherRun_SharedMatchFetchedOnce tests that a match shared between
// two tracked puuids is only fetched for the first one
func TestFetcherRun_SharedMatchFetchedOnce(t *testing.T) {
	src := &fakeSource{lists: map[string][]string{
		"p1": {"EUW1_9"},
		"p2": {"EUW1_9"},
	}}
	sink := newFakeSink()
	cfg := testFetcherConfig()
	cfg.Workers = 1 // deterministic ordering
	f := NewFetcher(src, sink, &fakeKeys{key: "k"}, cfg)

	stats, err := f.Run(context.Background(), []string{"p1", "p2"}, 440)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if stats.Fetched != 1 || stats.Skipped != 1 {
		t.Errorf("Expected 1 fetched + 1 skipped, got %d/%d", stats.Fetched, stats.Skipped)
	}
	if src.getCalls != 1 {
		t.Errorf("Expected 1 match detail call, got %d", src.getCalls)
	}
}

// TestFetcherRun_AuthRefresh tests that an auth failure triggers one key
// refresh and the run continues with the new key
func TestFetcherRun_AuthRefresh(t *testing.T) {
	src := &fakeSource{
		lists:    map[string][]string{"p1": {"EUW1_1"}},
		failAuth: true,
	}
	sink := newFakeSink()
	keys := &fakeKeys{key: "RGAPI-fresh"}
	f := NewFetcher(src, sink, keys, testFetcherConfig())

	stats, err := f.Run(context.Background(), []string{"p1"}, 440)
	if err != nil {
		t.Fatalf("Expected refresh to recover, got: %v", err)
	}
	if keys.calls.Load() != 1 {
		t.Errorf("Expected 1 key refresh, got %d", keys.calls.Load())
	}
	if src.key != "RGAPI-fresh" {
		t.Errorf("Expected fresh key installed, got %q", src.key)
	}
	if stats.Fetched != 1 {
		t.Errorf("Expected 1 fetched after refresh, got %d", stats.Fetched)
	}
}

// TestFetcherRun_AuthExhaustionFatal tests that a failed key refresh aborts
// the stage
func TestFetcherRun_AuthExhaustionFatal(t *testing.T) {
	src := &fakeSource{
		lists:    map[string][]string{"p1": {"EUW1_1"}},
		failAuth: true,
	}
	// SetAPIKey clears failAuth, so keep the refresh itself failing.
	keys := &fakeKeys{err: context.DeadlineExceeded}
	f := NewFetcher(src, newFakeSink(), keys, testFetcherConfig())

	_, err := f.Run(context.Background(), []string{"p1"}, 440)
	if err == nil {
		t.Fatal("Expected fatal error when no key can be refreshed")
	}
}

// TestFetcherRun_RespectsMaxMatches tests the pagination depth cap
func TestFetcherRun_RespectsMaxMatches(t *testing.T) {
	history := make([]string, 20)
	for i := range history {
		history[i] = "EUW1_" + string(rune('A'+i))
	}
	src := &fakeSource{lists: map[string][]string{"p1": history}}
	cfg := testFetcherConfig()
	cfg.MaxMatchesPerPUUID = 4
	f := NewFetcher(src, newFakeSink(), &fakeKeys{key: "k"}, cfg)

	stats, err := f.Run(context.Background(), []string{"p1"}, 440)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if stats.Listed != 4 {
		t.Errorf("Expected 4 listed, got %d", stats.Listed)
	}
	if stats.Fetched != 4 {
		t.Errorf("Expected 4 fetched, got %d", stats.Fetched)
	}
}

// TestRetryTransient_PermanentErrorPassesThrough tests that 4xx vendor
// errors are not retried
func TestRetryTransient_PermanentErrorPassesThrough(t *testing.T) {
	f := NewFetcher(&fakeSource{}, newFakeSink(), &fakeKeys{key: "k"}, testFetcherConfig())

	calls := 0
	err := f.retryTransient(context.Background(), func() error {
		calls++
		return &riot.StatusError{Code: http.StatusNotFound, URL: "x"}
	})
	if err == nil {
		t.Fatal("Expected error")
	}
	if !riot.IsNotFound(err) {
		t.Errorf("Expected the 404 unwrapped, got: %v", err)
	}
	if calls != 1 {
		t.Errorf("Expected exactly 1 attempt, got %d", calls)
	}
}
