package pipeline

import (
	"context"
	"fmt"

	"lolmetrics/internal/riot"
	"lolmetrics/internal/store"
)

// FlattenCounts reports how many rows one L2 run produced.
type FlattenCounts struct {
	Players   int
	Enemies   int
	Summaries int
}

// friendsTeam returns the team id holding the most tracked players of the
// match (ties go to the lower team id).
func friendsTeam(m riot.Match, friends map[string]bool) int {
	counts := map[int]int{}
	for _, p := range m.Info.Participants {
		if friends[p.PUUID] {
			counts[p.TeamID]++
		}
	}
	best, bestCount := 0, -1
	for teamID, c := range counts {
		if c > bestCount || (c == bestCount && teamID < best) {
			best, bestCount = teamID, c
		}
	}
	return best
}

// FlattenMatch turns one L1 document into its L2 rows: one participation
// row per participant (split tracked/untracked) and one match summary.
func FlattenMatch(doc store.FilteredMatchDoc, poolPUUIDs map[string]string) (players, enemies []store.FlatParticipationDoc, summary store.MatchSummaryDoc) {
	friends := make(map[string]bool, len(doc.FriendsPresent))
	for _, puuid := range doc.FriendsPresent {
		friends[puuid] = true
	}

	info := doc.Data.Info
	friendsTeamID := friendsTeam(doc.Data, friends)

	// Per-team surrender/afk flags, needed for the enemy-side row fields.
	teamEarlySurrender := map[int]bool{}
	teamHadAfk := map[int]bool{}
	for _, p := range info.Participants {
		if p.TeamEarlySurrendered {
			teamEarlySurrender[p.TeamID] = true
		}
		if p.Challenges.HadAfkTeammate > 0 {
			teamHadAfk[p.TeamID] = true
		}
	}

	teamAgg := map[int]*store.TeamSummary{}
	friendsWin := false

	for _, p := range info.Participants {
		row := store.FlatParticipationDoc{
			ID:      doc.ID + ":" + p.PUUID,
			MatchID: doc.ID,
			PUUID:   p.PUUID,

			ChampionID:    p.ChampionID,
			Champion:      p.ChampionName,
			TeamID:        p.TeamID,
			OnFriendsTeam: p.TeamID == friendsTeamID,
			Role:          p.TeamPosition,
			Lane:          p.Lane,
			Win:           p.Win,

			Kills:   p.Kills,
			Deaths:  p.Deaths,
			Assists: p.Assists,

			VisionScore: p.VisionScore,
			GoldEarned:  p.GoldEarned,
			DamageDealt: p.TotalDamageDealtToChampions,
			DamageTaken: p.TotalDamageTaken,
			CS:          p.TotalCS(),

			SpellQCasts: p.Spell1Casts,
			SpellWCasts: p.Spell2Casts,
			SpellECasts: p.Spell3Casts,
			SpellRCasts: p.Spell4Casts,

			FirstBloodKill:   p.FirstBloodKill,
			FirstBloodAssist: p.FirstBloodAssist,
			FirstDeath:       p.FirstBloodVictim,

			EarlySurrender:      p.TeamEarlySurrendered,
			Surrender:           p.GameEndedInSurrender,
			EnemyEarlySurrender: teamEarlySurrender[otherTeam(p.TeamID)],
			HadAfkTeammate:      p.Challenges.HadAfkTeammate > 0,
			EnemyHadAfk:         teamHadAfk[otherTeam(p.TeamID)],

			KillParticipation: p.Challenges.KillParticipation,
			KDA:               p.Challenges.KDA,
			GoldPerMinute:     p.Challenges.GoldPerMinute,
			LaneCSFirst10:     p.Challenges.LaneMinionsFirst10Minutes,

			GameStart:    info.GameStartTimestamp,
			GameDuration: info.GameDuration,

			Queue:      doc.Queue,
			MinFriends: doc.MinFriends,
			Pool:       doc.Pool,
		}

		if friends[p.PUUID] {
			row.Persona = poolPUUIDs[p.PUUID]
			players = append(players, row)
			if p.Win {
				friendsWin = true
			}
		} else {
			enemies = append(enemies, row)
		}

		agg, ok := teamAgg[p.TeamID]
		if !ok {
			agg = &store.TeamSummary{TeamID: p.TeamID, Win: p.Win}
			teamAgg[p.TeamID] = agg
		}
		agg.Kills += p.Kills
		agg.Deaths += p.Deaths
		agg.Assists += p.Assists
		agg.GoldEarned += p.GoldEarned
		agg.DamageDealt += p.TotalDamageDealtToChampions
	}

	teams := make([]store.TeamSummary, 0, len(teamAgg))
	for _, id := range []int{100, 200} {
		if agg, ok := teamAgg[id]; ok {
			teams = append(teams, *agg)
		}
	}

	summary = store.MatchSummaryDoc{
		ID:              doc.ID,
		GameStart:       info.GameStartTimestamp,
		GameDuration:    info.GameDuration,
		FriendsTeamID:   friendsTeamID,
		FriendsWin:      friendsWin,
		FriendsPresent:  doc.FriendsPresent,
		PersonasPresent: doc.PersonasPresent,
		Teams:           teams,
		Queue:           doc.Queue,
		MinFriends:      doc.MinFriends,
		Pool:            doc.Pool,
	}
	return players, enemies, summary
}

func otherTeam(teamID int) int {
	if teamID == 100 {
		return 200
	}
	return 100
}

// L2Builder produces the three flat collections from one L1 view.
type L2Builder struct {
	views *store.ViewsRepo
	users *store.UsersRepo
}

// NewL2Builder wires the flattener.
func NewL2Builder(views *store.ViewsRepo, users *store.UsersRepo) *L2Builder {
	return &L2Builder{views: views, users: users}
}

// Run drops and rewrites the three sibling collections for the view. No
// incremental update: L2 is always rebuilt whole from L1.
func (b *L2Builder) Run(ctx context.Context, p ViewParams) (FlattenCounts, error) {
	var counts FlattenCounts

	poolPUUIDs, err := b.users.PUUIDMap(ctx, p.Pool)
	if err != nil {
		return counts, fmt.Errorf("resolve pool %s: %w", p.Pool, err)
	}

	l1 := store.L1Collection(p.Queue, p.MinFriends, p.Pool)
	filtered, err := b.views.LoadFiltered(ctx, l1, 0, 0)
	if err != nil {
		return counts, err
	}

	playersName := store.L2PlayersCollection(p.Queue, p.MinFriends, p.Pool)
	enemiesName := store.L2EnemiesCollection(p.Queue, p.MinFriends, p.Pool)
	summaryName := store.L2SummaryCollection(p.Queue, p.MinFriends, p.Pool)

	for _, name := range []string{playersName, enemiesName, summaryName} {
		if err := b.views.Drop(ctx, name); err != nil {
			return counts, err
		}
	}

	var players, enemies []store.FlatParticipationDoc
	var summaries []store.MatchSummaryDoc
	for _, doc := range filtered {
		if err := ctx.Err(); err != nil {
			return counts, err
		}
		p2, e2, s := FlattenMatch(doc, poolPUUIDs)
		players = append(players, p2...)
		enemies = append(enemies, e2...)
		summaries = append(summaries, s)
	}

	if err := b.views.InsertFlat(ctx, playersName, players); err != nil {
		return counts, err
	}
	if err := b.views.InsertFlat(ctx, enemiesName, enemies); err != nil {
		return counts, err
	}
	if err := b.views.InsertSummaries(ctx, summaryName, summaries); err != nil {
		return counts, err
	}

	counts = FlattenCounts{Players: len(players), Enemies: len(enemies), Summaries: len(summaries)}
	return counts, nil
}
