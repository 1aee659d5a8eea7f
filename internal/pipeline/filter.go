package pipeline

import (
	"context"
	"fmt"
	"sort"

	log "github.com/sirupsen/logrus"

	"lolmetrics/internal/riot"
	"lolmetrics/internal/store"
)

// l1WriteBatch is how many L1 documents accumulate before a bulk upsert.
const l1WriteBatch = 200

// ViewParams identifies one (queue, min_friends, pool) configuration.
type ViewParams struct {
	Queue      int
	MinFriends int
	Pool       string
}

func (p ViewParams) String() string {
	return store.ViewSuffix(p.Queue, p.MinFriends, p.Pool)
}

// FriendsPresent intersects the match participant set with the pool's
// puuids. Returns the present puuids (sorted) and the corresponding persona
// names (sorted, deduplicated).
func FriendsPresent(m riot.Match, poolPUUIDs map[string]string) (puuids, personas []string) {
	seenPersona := make(map[string]bool)
	for _, puuid := range m.Metadata.Participants {
		persona, ok := poolPUUIDs[puuid]
		if !ok {
			continue
		}
		puuids = append(puuids, puuid)
		if !seenPersona[persona] {
			seenPersona[persona] = true
			personas = append(personas, persona)
		}
	}
	sort.Strings(puuids)
	sort.Strings(personas)
	return puuids, personas
}

// L1Builder materializes one filtered view from L0_matches.
type L1Builder struct {
	matches *store.MatchesRepo
	views   *store.ViewsRepo
	users   *store.UsersRepo
}

// NewL1Builder wires the filtered view builder.
func NewL1Builder(matches *store.MatchesRepo, views *store.ViewsRepo, users *store.UsersRepo) *L1Builder {
	return &L1Builder{matches: matches, views: views, users: users}
}

// Run scans L0_matches for the configured queue and upserts every match
// where at least MinFriends tracked players of the pool participated. The
// view is fully rebuildable at any time; readers must tolerate recreation.
func (b *L1Builder) Run(ctx context.Context, p ViewParams) (int, error) {
	poolPUUIDs, err := b.users.PUUIDMap(ctx, p.Pool)
	if err != nil {
		return 0, fmt.Errorf("resolve pool %s: %w", p.Pool, err)
	}
	if len(poolPUUIDs) == 0 {
		return 0, fmt.Errorf("pool %s has no resolved puuids; run the identity stage first", p.Pool)
	}

	name := store.L1Collection(p.Queue, p.MinFriends, p.Pool)
	total := 0
	batch := make([]store.FilteredMatchDoc, 0, l1WriteBatch)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := b.views.UpsertFiltered(ctx, name, batch); err != nil {
			return err
		}
		total += len(batch)
		batch = batch[:0]
		return nil
	}

	err = b.matches.ScanByQueue(ctx, p.Queue, func(doc store.RawMatchDoc) error {
		puuids, personas := FriendsPresent(doc.Data, poolPUUIDs)
		if len(puuids) < p.MinFriends {
			return nil
		}

		batch = append(batch, store.FilteredMatchDoc{
			ID:              doc.ID,
			Queue:           p.Queue,
			MinFriends:      p.MinFriends,
			Pool:            p.Pool,
			FriendsPresent:  puuids,
			PersonasPresent: personas,
			Data:            doc.Data,
		})
		if len(batch) >= l1WriteBatch {
			return flush()
		}
		return nil
	}, func(id string, err error) {
		log.WithField("match", id).WithError(err).Warn("l1: undecodable raw match skipped")
	})
	if err != nil {
		return total, err
	}

	if err := flush(); err != nil {
		return total, err
	}
	return total, nil
}
