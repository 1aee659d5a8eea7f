package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bits-and-blooms/bloom/v3"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"lolmetrics/internal/config"
	"lolmetrics/internal/riot"
	"lolmetrics/internal/store"
)

const (
	// Bloom sizing: comfortably above any realistic match count for a
	// friend-group roster.
	bloomEstimatedItems    = 500000
	bloomFalsePositiveRate = 0.001

	baseBackoff = 2 * time.Second
	maxBackoff  = 60 * time.Second
)

// matchSource is the slice of the riot client the fetcher needs.
type matchSource interface {
	GetMatchIDs(ctx context.Context, puuid string, queue, start, count int) ([]string, error)
	GetMatch(ctx context.Context, matchID string) (*riot.Match, error)
	SetAPIKey(key string)
}

// matchSink is the slice of the store the fetcher writes to.
type matchSink interface {
	IDs(ctx context.Context) ([]string, error)
	Has(ctx context.Context, matchID string) (bool, error)
	Insert(ctx context.Context, doc store.RawMatchDoc) error
}

// keySource supplies a validated API key on auth failures.
type keySource interface {
	CurrentKey(ctx context.Context) (string, error)
}

// FetchStats summarizes one fetcher run.
type FetchStats struct {
	PUUIDs   int
	Listed   int64
	Fetched  int64
	Skipped  int64
	Failures int64
}

// Fetcher pulls recent matches for every tracked puuid into L0_matches.
// Within a puuid fetches are serial (newest first); across puuids the
// worker pool is bounded.
type Fetcher struct {
	src  matchSource
	sink matchSink
	keys keySource
	cfg  config.FetcherConfig

	// seen prefilters duplicate match ids. Bloom positives are confirmed
	// against the store; negatives are definitive because the filter is
	// seeded from the stored id set.
	seenMu sync.Mutex
	seen   *bloom.BloomFilter

	keyRefreshMu   sync.Mutex
	keyRefreshedAt time.Time
}

// NewFetcher wires a match fetcher.
func NewFetcher(src matchSource, sink matchSink, keys keySource, cfg config.FetcherConfig) *Fetcher {
	return &Fetcher{
		src:  src,
		sink: sink,
		keys: keys,
		cfg:  cfg,
		seen: bloom.NewWithEstimates(bloomEstimatedItems, bloomFalsePositiveRate),
	}
}

// Run fetches matches for all puuids with bounded parallelism. A puuid
// whose matchlist fails entirely is skipped but does not abort the run.
func (f *Fetcher) Run(ctx context.Context, puuids []string, queue int) (FetchStats, error) {
	if err := f.seedSeen(ctx); err != nil {
		return FetchStats{}, err
	}

	stats := FetchStats{PUUIDs: len(puuids)}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.cfg.Workers)

	for _, puuid := range puuids {
		puuid := puuid
		g.Go(func() error {
			if err := f.fetchForPUUID(gctx, puuid, queue, &stats); err != nil {
				// Auth exhaustion is fatal for the whole stage; anything
				// else only loses this puuid.
				if riot.IsAuthError(err) {
					return err
				}
				log.WithField("puuid", shortID(puuid)).WithError(err).
					Warn("fetcher: puuid skipped")
				atomic.AddInt64(&stats.Failures, 1)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return stats, err
	}
	return stats, nil
}

// seedSeen loads the stored match id set into the bloom filter.
func (f *Fetcher) seedSeen(ctx context.Context) error {
	ids, err := f.sink.IDs(ctx)
	if err != nil {
		return fmt.Errorf("seed dedupe filter: %w", err)
	}
	f.seenMu.Lock()
	for _, id := range ids {
		f.seen.AddString(id)
	}
	f.seenMu.Unlock()
	log.WithField("known_matches", len(ids)).Debug("fetcher: dedupe filter seeded")
	return nil
}

// fetchForPUUID pages through the matchlist newest-first and stores every
// match not yet present.
func (f *Fetcher) fetchForPUUID(ctx context.Context, puuid string, queue int, stats *FetchStats) error {
	for start := 0; start < f.cfg.MaxMatchesPerPUUID; start += f.cfg.MatchlistPageSize {
		count := f.cfg.MatchlistPageSize
		if remaining := f.cfg.MaxMatchesPerPUUID - start; remaining < count {
			count = remaining
		}

		ids, err := f.withAuthRetry(ctx, func() ([]string, error) {
			return f.src.GetMatchIDs(ctx, puuid, queue, start, count)
		})
		if err != nil {
			return fmt.Errorf("matchlist page start=%d: %w", start, err)
		}
		atomic.AddInt64(&stats.Listed, int64(len(ids)))

		for _, matchID := range ids {
			if err := ctx.Err(); err != nil {
				return err
			}

			known, err := f.alreadyStored(ctx, matchID)
			if err != nil {
				return err
			}
			if known {
				atomic.AddInt64(&stats.Skipped, 1)
				continue
			}

			if err := f.fetchOne(ctx, matchID); err != nil {
				if riot.IsAuthError(err) {
					return err
				}
				// Permanent vendor error for this id only.
				log.WithField("match", matchID).WithError(err).
					Warn("fetcher: match skipped")
				atomic.AddInt64(&stats.Failures, 1)
				continue
			}
			f.markStored(matchID)
			atomic.AddInt64(&stats.Fetched, 1)
		}

		if len(ids) < count {
			break // past the end of this puuid's history
		}
	}
	return nil
}

// fetchOne retrieves one match with transient-error retries and persists it.
func (f *Fetcher) fetchOne(ctx context.Context, matchID string) error {
	var match *riot.Match
	err := f.retryTransient(ctx, func() error {
		m, err := f.withAuthRetryMatch(ctx, matchID)
		if err != nil {
			return err
		}
		match = m
		return nil
	})
	if err != nil {
		return err
	}

	return f.sink.Insert(ctx, store.RawMatchDoc{
		ID:        matchID,
		FetchedAt: time.Now().UTC(),
		Data:      *match,
	})
}

// alreadyStored is the two-step dedupe check: bloom negative is definitive,
// bloom positive is confirmed against the store.
func (f *Fetcher) alreadyStored(ctx context.Context, matchID string) (bool, error) {
	f.seenMu.Lock()
	maybe := f.seen.TestString(matchID)
	f.seenMu.Unlock()
	if !maybe {
		return false, nil
	}
	return f.sink.Has(ctx, matchID)
}

func (f *Fetcher) markStored(matchID string) {
	f.seenMu.Lock()
	f.seen.AddString(matchID)
	f.seenMu.Unlock()
}

// retryTransient retries fn with capped exponential backoff on transient
// vendor errors (network failures and 5xx). Other errors pass through.
func (f *Fetcher) retryTransient(ctx context.Context, fn func() error) error {
	backoff := baseBackoff
	var lastErr error

	for attempt := 0; attempt < f.cfg.RetryBudget; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		var se *riot.StatusError
		if errors.As(err, &se) && !riot.IsTransient(err) {
			return err // 4xx: permanent, no point retrying
		}
		lastErr = err

		log.WithError(err).WithField("backoff", backoff).Debug("fetcher: transient error, retrying")
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
		if backoff > maxBackoff {
			backoff = maxBackoff
		}
	}
	return fmt.Errorf("retry budget exhausted: %w", lastErr)
}

// withAuthRetry runs fn; on an auth failure it refreshes the key from the
// key manager once and retries.
func (f *Fetcher) withAuthRetry(ctx context.Context, fn func() ([]string, error)) ([]string, error) {
	out, err := fn()
	if err != nil && riot.IsAuthError(err) {
		if rerr := f.refreshKey(ctx); rerr != nil {
			// Wrap the auth error so the caller still aborts the stage.
			return nil, fmt.Errorf("key refresh failed (%v): %w", rerr, err)
		}
		return fn()
	}
	return out, err
}

func (f *Fetcher) withAuthRetryMatch(ctx context.Context, matchID string) (*riot.Match, error) {
	m, err := f.src.GetMatch(ctx, matchID)
	if err != nil && riot.IsAuthError(err) {
		if rerr := f.refreshKey(ctx); rerr != nil {
			return nil, fmt.Errorf("key refresh failed (%v): %w", rerr, err)
		}
		return f.src.GetMatch(ctx, matchID)
	}
	return m, err
}

// refreshKey consults the key manager and installs the result. Concurrent
// auth failures coalesce into one refresh.
func (f *Fetcher) refreshKey(ctx context.Context) error {
	f.keyRefreshMu.Lock()
	defer f.keyRefreshMu.Unlock()

	if time.Since(f.keyRefreshedAt) < 10*time.Second {
		return nil // another worker just refreshed
	}

	key, err := f.keys.CurrentKey(ctx)
	if err != nil {
		return fmt.Errorf("refresh API key: %w", err)
	}
	f.src.SetAPIKey(key)
	f.keyRefreshedAt = time.Now()
	log.Info("fetcher: API key refreshed")
	return nil
}

func shortID(id string) string {
	if len(id) > 16 {
		return id[:16]
	}
	return id
}
