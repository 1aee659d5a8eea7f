package metrics

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"lolmetrics/internal/store"
)

// viewSource is the slice of the document store the engine reads.
type viewSource interface {
	Exists(ctx context.Context, name string) (bool, error)
	LoadFlat(ctx context.Context, name string, startMs, endMs int64) ([]store.FlatParticipationDoc, error)
	LoadSummaries(ctx context.Context, name string, startMs, endMs int64) ([]store.MatchSummaryDoc, error)
}

// Engine runs the catalogue serially over one (queue, min, pool) view and
// writes one artifact per metric.
type Engine struct {
	views   viewSource
	dataDir string
	now     func() time.Time
}

func NewEngine(views viewSource, dataDir string) *Engine {
	return &Engine{views: views, dataDir: dataDir, now: time.Now}
}

// EngineStats counts the outcome of one catalogue run.
type EngineStats struct {
	Computed int
	Skipped  int
	Failed   int
}

// Run loads the windowed L2 rows once, then computes every catalogue
// metric over them. A metric whose source collection does not exist is
// skipped; a write failure is logged and the run continues, so one bad
// artifact never blocks the rest of the catalogue.
func (e *Engine) Run(ctx context.Context, queue, minFriends int, pool string, w Window) (EngineStats, error) {
	var stats EngineStats

	startMs, endMs, err := w.Bounds()
	if err != nil {
		return stats, err
	}

	names := map[sourceKind]string{
		sourcePlayers:   store.L2PlayersCollection(queue, minFriends, pool),
		sourceEnemies:   store.L2EnemiesCollection(queue, minFriends, pool),
		sourceSummaries: store.L2SummaryCollection(queue, minFriends, pool),
	}
	present := make(map[sourceKind]bool, len(names))
	for kind, name := range names {
		ok, err := e.views.Exists(ctx, name)
		if err != nil {
			return stats, fmt.Errorf("check collection %s: %w", name, err)
		}
		present[kind] = ok
	}

	in := &Input{Queue: queue, MinFriends: minFriends, Pool: pool}
	if present[sourcePlayers] {
		if in.Players, err = e.views.LoadFlat(ctx, names[sourcePlayers], startMs, endMs); err != nil {
			return stats, fmt.Errorf("load %s: %w", names[sourcePlayers], err)
		}
	}
	if present[sourceEnemies] {
		if in.Enemies, err = e.views.LoadFlat(ctx, names[sourceEnemies], startMs, endMs); err != nil {
			return stats, fmt.Errorf("load %s: %w", names[sourceEnemies], err)
		}
	}
	if present[sourceSummaries] {
		if in.Summaries, err = e.views.LoadSummaries(ctx, names[sourceSummaries], startMs, endMs); err != nil {
			return stats, fmt.Errorf("load %s: %w", names[sourceSummaries], err)
		}
	}

	now := e.now().UTC()
	for _, m := range Catalogue() {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		entry := log.WithFields(log.Fields{"metric": m.Name, "number": m.Number})

		if !present[m.Source] {
			entry.WithField("collection", names[m.Source]).Warn("metrics: source collection missing, skipping")
			stats.Skipped++
			continue
		}

		payload, err := m.Compute(in, now)
		if err != nil {
			entry.WithError(err).Error("metrics: compute failed")
			stats.Failed++
			continue
		}
		if h, ok := payload.(headered); ok {
			h.setHeader(Header{
				SourceCollection: names[m.Source],
				GeneratedAt:      now,
				StartDate:        w.Start,
				EndDate:          w.End,
			})
		}

		path := ArtifactPath(e.dataDir, pool, queue, minFriends, m.Number, m.Name, w)
		if err := WriteArtifact(path, payload); err != nil {
			entry.WithError(err).WithField("path", path).Error("metrics: artifact write failed")
			stats.Failed++
			continue
		}
		entry.WithField("path", path).Debug("metrics: artifact written")
		stats.Computed++
	}

	log.WithFields(log.Fields{
		"computed": stats.Computed,
		"skipped":  stats.Skipped,
		"failed":   stats.Failed,
	}).Info("metrics: catalogue run finished")
	return stats, nil
}
