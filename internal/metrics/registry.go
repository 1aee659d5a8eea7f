package metrics

import "time"

// sourceKind names the primary collection a metric reads, recorded in
// the artifact header.
type sourceKind int

const (
	sourcePlayers sourceKind = iota
	sourceEnemies
	sourceSummaries
)

// Metric is one catalogue entry. Compute is pure over Input; now is only
// read by time-anchored metrics.
type Metric struct {
	Number  int
	Name    string
	Source  sourceKind
	Compute func(in *Input, now time.Time) (interface{}, error)
}

func fixed(fn func(*Input) (interface{}, error)) func(*Input, time.Time) (interface{}, error) {
	return func(in *Input, _ time.Time) (interface{}, error) { return fn(in) }
}

// Catalogue returns the thirteen metrics in execution order.
func Catalogue() []Metric {
	return []Metric{
		{Number: 1, Name: "players_games_winrate", Source: sourcePlayers, Compute: fixed(computePlayersGamesWinrate)},
		{Number: 2, Name: "champions_games_winrate", Source: sourceEnemies, Compute: fixed(computeChampionsGamesWinrate)},
		{Number: 3, Name: "games_frequency", Source: sourceSummaries, Compute: computeGamesFrequency},
		{Number: 4, Name: "win_lose_streak", Source: sourcePlayers, Compute: fixed(computeWinLoseStreak)},
		{Number: 5, Name: "players_stats", Source: sourcePlayers, Compute: fixed(computePlayersStats)},
		{Number: 6, Name: "ego_index", Source: sourcePlayers, Compute: fixed(computeEgoIndex)},
		{Number: 7, Name: "troll_index", Source: sourcePlayers, Compute: fixed(computeTrollIndex)},
		{Number: 8, Name: "first_metrics", Source: sourcePlayers, Compute: fixed(computeFirstMetrics)},
		{Number: 9, Name: "number_skills", Source: sourcePlayers, Compute: fixed(computeNumberSkills)},
		{Number: 10, Name: "stats_by_rol", Source: sourcePlayers, Compute: fixed(computeStatsByRole)},
		{Number: 11, Name: "stats_record", Source: sourcePlayers, Compute: fixed(computeStatsRecord)},
		{Number: 12, Name: "botlane_synergy", Source: sourcePlayers, Compute: fixed(computeBotlaneSynergy)},
		{Number: 13, Name: "player_champions_stats", Source: sourcePlayers, Compute: fixed(computePlayerChampionsStats)},
	}
}
