package metrics

import (
	"sort"

	"lolmetrics/internal/store"
)

// Input is everything a metric computation reads: the windowed L2 rows of
// one (queue, min_friends, pool) view. Computations are pure functions over
// Input so they can be exercised without a database.
type Input struct {
	Queue      int
	MinFriends int
	Pool       string

	Players   []store.FlatParticipationDoc
	Enemies   []store.FlatParticipationDoc
	Summaries []store.MatchSummaryDoc
}

// personas returns the sorted set of personas present in the window.
func (in *Input) personas() []string {
	seen := make(map[string]bool)
	for _, row := range in.Players {
		seen[row.Persona] = true
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// playersByPersona groups player rows per persona.
func (in *Input) playersByPersona() map[string][]store.FlatParticipationDoc {
	out := make(map[string][]store.FlatParticipationDoc)
	for _, row := range in.Players {
		out[row.Persona] = append(out[row.Persona], row)
	}
	return out
}

// matchRowsByPersona groups player rows per persona with one row per match
// (first occurrence wins), sorted by game start ascending. Metrics that
// treat a match as one event regardless of how many tracked accounts a
// persona fielded read this view.
func (in *Input) matchRowsByPersona() map[string][]store.FlatParticipationDoc {
	out := make(map[string][]store.FlatParticipationDoc)
	seen := make(map[string]map[string]bool)
	for _, row := range in.Players {
		if seen[row.Persona] == nil {
			seen[row.Persona] = make(map[string]bool)
		}
		if seen[row.Persona][row.MatchID] {
			continue
		}
		seen[row.Persona][row.MatchID] = true
		out[row.Persona] = append(out[row.Persona], row)
	}
	for persona := range out {
		rows := out[persona]
		sort.Slice(rows, func(i, j int) bool {
			if rows[i].GameStart != rows[j].GameStart {
				return rows[i].GameStart < rows[j].GameStart
			}
			return rows[i].MatchID < rows[j].MatchID
		})
	}
	return out
}

// safeDiv is the catalogue-wide division rule: anything over zero is zero.
func safeDiv(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
