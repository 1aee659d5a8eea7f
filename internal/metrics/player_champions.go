package metrics

import "sort"

// PlayerChampionRow is one champion within a persona block.
type PlayerChampionRow struct {
	Champion string  `json:"champion"`
	Games    int     `json:"games"`
	Wins     int     `json:"wins"`
	Winrate  float64 `json:"winrate"` // percent
}

// PlayerBlock groups a persona's per-champion records.
type PlayerBlock struct {
	Persona    string              `json:"persona"`
	TotalGames int                 `json:"total_games"`
	Champions  []PlayerChampionRow `json:"champions"`
}

// PlayerChampionsStats is metric 13. Games count participations, so a
// persona's total here matches its winrate totals.
type PlayerChampionsStats struct {
	Header
	Players []PlayerBlock `json:"players"`
}

func computePlayerChampionsStats(in *Input) (interface{}, error) {
	type acc struct {
		games, wins int
	}
	byPersona := make(map[string]map[string]*acc)
	for _, row := range in.Players {
		if byPersona[row.Persona] == nil {
			byPersona[row.Persona] = make(map[string]*acc)
		}
		a := byPersona[row.Persona][row.Champion]
		if a == nil {
			a = &acc{}
			byPersona[row.Persona][row.Champion] = a
		}
		a.games++
		if row.Win {
			a.wins++
		}
	}

	var out PlayerChampionsStats
	out.Players = make([]PlayerBlock, 0, len(byPersona))
	for persona, champs := range byPersona {
		block := PlayerBlock{Persona: persona, Champions: make([]PlayerChampionRow, 0, len(champs))}
		for champion, a := range champs {
			block.TotalGames += a.games
			block.Champions = append(block.Champions, PlayerChampionRow{
				Champion: champion,
				Games:    a.games,
				Wins:     a.wins,
				Winrate:  safeDiv(float64(a.wins), float64(a.games)) * 100,
			})
		}
		sort.Slice(block.Champions, func(i, j int) bool {
			if block.Champions[i].Games != block.Champions[j].Games {
				return block.Champions[i].Games > block.Champions[j].Games
			}
			return block.Champions[i].Champion < block.Champions[j].Champion
		})
		out.Players = append(out.Players, block)
	}

	sort.Slice(out.Players, func(i, j int) bool {
		if out.Players[i].TotalGames != out.Players[j].TotalGames {
			return out.Players[i].TotalGames > out.Players[j].TotalGames
		}
		return out.Players[i].Persona < out.Players[j].Persona
	})
	return &out, nil
}
