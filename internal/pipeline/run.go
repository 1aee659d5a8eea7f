package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"lolmetrics/internal/config"
	"lolmetrics/internal/metrics"
	"lolmetrics/internal/roster"
	"lolmetrics/internal/store"
)

// Mode selects which stages a run executes.
type Mode string

const (
	// ModeL0 resolves identities and fetches matches, nothing else.
	ModeL0 Mode = "l0"
	// ModeL1L3 rebuilds the filtered view, the flat collections and the
	// metric artifacts from already-fetched matches.
	ModeL1L3 Mode = "l1-l3"
	// ModeFull runs every stage for the default roster pool.
	ModeFull Mode = "full"
	// ModeSeason runs every stage against the season roster and pool.
	ModeSeason Mode = "season"
)

// ParseMode validates a CLI mode string.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeL0, ModeL1L3, ModeFull, ModeSeason:
		return Mode(s), nil
	}
	return "", fmt.Errorf("unknown mode %q (want l0, l1-l3, full or season)", s)
}

// Stage names, in execution order.
const (
	stageUsers   = "resolving-users"
	stageFetch   = "fetching-matches"
	stageL1      = "building-L1"
	stageL2      = "building-L2"
	stageMetrics = "computing-metrics"
)

// RunOptions are the per-run knobs layered over the configuration.
type RunOptions struct {
	Mode       Mode
	Pool       string // required for l1-l3, derived from the roster otherwise
	MinFriends int
	Queue      int
	Window     metrics.Window
}

// Runner sequences the pipeline stages. Stages run strictly in order; a
// stage failure halts the run but leaves earlier outputs valid, every
// stage being idempotent and rebuildable.
type Runner struct {
	cfg      *config.Config
	resolver *UsersResolver
	fetcher  *Fetcher
	l1       *L1Builder
	l2       *L2Builder
	engine   *metrics.Engine
	users    *store.UsersRepo
	matches  *store.MatchesRepo
}

// NewRunner wires a runner over an open store and riot client.
func NewRunner(cfg *config.Config, st *store.Store, client matchSource, accounts accountResolver, keys keySource) *Runner {
	return &Runner{
		cfg:      cfg,
		resolver: NewUsersResolver(accounts, st.Users()),
		fetcher:  NewFetcher(client, st.Matches(), keys, cfg.Fetcher),
		l1:       NewL1Builder(st.Matches(), st.Views(), st.Users()),
		l2:       NewL2Builder(st.Views(), st.Users()),
		engine:   metrics.NewEngine(st.Views(), cfg.DataDir),
		users:    st.Users(),
		matches:  st.Matches(),
	}
}

// Run executes the stages selected by opts. It returns the first stage
// error; the structured per-stage log lines carry durations and counts.
func (r *Runner) Run(ctx context.Context, opts RunOptions) error {
	runID := uuid.NewString()
	season := opts.Mode == ModeSeason

	if opts.MinFriends == 0 {
		opts.MinFriends = r.cfg.MinFriends
	}
	if opts.Queue == 0 {
		opts.Queue = r.cfg.QueueID
	}
	// The season pool defaults its window to the start of the season, so
	// unwindowed season runs never mix in pre-season matches.
	if season && opts.Window.IsZero() {
		opts.Window = metrics.Window{Start: r.cfg.SeasonStart}
	}

	rst, err := r.loadRoster(opts, season)
	if err != nil {
		return err
	}
	if opts.Pool == "" {
		if season {
			opts.Pool = roster.SeasonPool
		} else if rst != nil {
			opts.Pool = rst.PoolTag()
		} else {
			return fmt.Errorf("mode %s requires --pool", opts.Mode)
		}
	}

	entry := log.WithFields(log.Fields{"run": runID, "mode": string(opts.Mode), "pool": opts.Pool})
	entry.WithFields(log.Fields{"queue": opts.Queue, "min_friends": opts.MinFriends}).Info("run: starting")

	if opts.Mode != ModeL1L3 {
		if err := r.stage(ctx, entry, stageUsers, func() (log.Fields, error) {
			n, err := r.resolver.Run(ctx, rst, season)
			return log.Fields{"personas": n}, err
		}); err != nil {
			return err
		}

		if err := r.stage(ctx, entry, stageFetch, func() (log.Fields, error) {
			if err := r.matches.EnsureIndexes(ctx); err != nil {
				return nil, err
			}
			puuids, err := r.poolPUUIDs(ctx, opts.Pool)
			if err != nil {
				return nil, err
			}
			stats, err := r.fetcher.Run(ctx, puuids, opts.Queue)
			return log.Fields{
				"puuids":   stats.PUUIDs,
				"listed":   stats.Listed,
				"fetched":  stats.Fetched,
				"skipped":  stats.Skipped,
				"failures": stats.Failures,
			}, err
		}); err != nil {
			return err
		}
	}

	if opts.Mode == ModeL0 {
		entry.Info("run: done")
		return nil
	}

	params := ViewParams{Queue: opts.Queue, MinFriends: opts.MinFriends, Pool: opts.Pool}

	if err := r.stage(ctx, entry, stageL1, func() (log.Fields, error) {
		n, err := r.l1.Run(ctx, params)
		return log.Fields{"matches": n}, err
	}); err != nil {
		return err
	}

	if err := r.stage(ctx, entry, stageL2, func() (log.Fields, error) {
		counts, err := r.l2.Run(ctx, params)
		return log.Fields{
			"players":   counts.Players,
			"enemies":   counts.Enemies,
			"summaries": counts.Summaries,
		}, err
	}); err != nil {
		return err
	}

	if err := r.stage(ctx, entry, stageMetrics, func() (log.Fields, error) {
		stats, err := r.engine.Run(ctx, opts.Queue, opts.MinFriends, opts.Pool, opts.Window)
		if err != nil {
			return nil, err
		}
		if stats.Failed > 0 {
			return nil, fmt.Errorf("%d metric(s) failed", stats.Failed)
		}
		return log.Fields{"computed": stats.Computed, "skipped": stats.Skipped}, nil
	}); err != nil {
		return err
	}

	entry.Info("run: done")
	return nil
}

// stage runs fn between cancellation checks and emits the per-stage log
// line with status, duration and counts.
func (r *Runner) stage(ctx context.Context, entry *log.Entry, name string, fn func() (log.Fields, error)) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	start := time.Now()
	counts, err := fn()
	line := entry.WithField("stage", name).WithField("duration", time.Since(start).Round(time.Millisecond))
	if counts != nil {
		line = line.WithFields(counts)
	}
	if err != nil {
		line.WithError(err).Error("run: stage failed")
		return fmt.Errorf("stage %s: %w", name, err)
	}
	line.Info("run: stage complete")
	return nil
}

// loadRoster loads the roster file a mode needs. l1-l3 runs read no
// roster; they work from the persisted user index.
func (r *Runner) loadRoster(opts RunOptions, season bool) (roster.Roster, error) {
	if opts.Mode == ModeL1L3 {
		return nil, nil
	}
	path := r.cfg.RosterPath
	if season {
		path = r.cfg.SeasonRosterPath
	}
	rst, err := roster.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load roster %s: %w", path, err)
	}
	return rst, nil
}

func (r *Runner) poolPUUIDs(ctx context.Context, pool string) ([]string, error) {
	m, err := r.users.PUUIDMap(ctx, pool)
	if err != nil {
		return nil, err
	}
	if len(m) == 0 {
		return nil, fmt.Errorf("pool %s has no resolved puuids", pool)
	}
	puuids := make([]string, 0, len(m))
	for puuid := range m {
		puuids = append(puuids, puuid)
	}
	return puuids, nil
}
