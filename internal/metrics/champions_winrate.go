package metrics

import (
	"sort"

	"lolmetrics/internal/store"
)

// ChampionRow is one champion in either side of metric 02 (and the
// per-champion rows of metric 13). Winrate is a percentage in [0, 100].
type ChampionRow struct {
	Champion string  `json:"champion"`
	Games    int     `json:"games"`
	Wins     int     `json:"wins"`
	Winrate  float64 `json:"winrate"`
}

// ChampionsGamesWinrate is metric 02: champions played by tracked players
// (ally side) and champions faced on the opposing team (enemy side).
type ChampionsGamesWinrate struct {
	Header
	Champions      []ChampionRow `json:"champions"`
	EnemyChampions []ChampionRow `json:"enemy_champions"`
}

func championTable(rows []store.FlatParticipationDoc) []ChampionRow {
	acc := make(map[string]*ChampionRow)
	for _, row := range rows {
		c, ok := acc[row.Champion]
		if !ok {
			c = &ChampionRow{Champion: row.Champion}
			acc[row.Champion] = c
		}
		c.Games++
		if row.Win {
			c.Wins++
		}
	}

	out := make([]ChampionRow, 0, len(acc))
	for _, c := range acc {
		c.Winrate = 100 * safeDiv(float64(c.Wins), float64(c.Games))
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Games != out[j].Games {
			return out[i].Games > out[j].Games
		}
		return out[i].Champion < out[j].Champion
	})
	return out
}

func computeChampionsGamesWinrate(in *Input) (interface{}, error) {
	// Enemy side: opposing-team participants only, not untracked allies.
	var opponents []store.FlatParticipationDoc
	for _, row := range in.Enemies {
		if !row.OnFriendsTeam {
			opponents = append(opponents, row)
		}
	}

	out := ChampionsGamesWinrate{
		Champions:      championTable(in.Players),
		EnemyChampions: championTable(opponents),
	}
	return &out, nil
}
