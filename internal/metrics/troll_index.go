package metrics

import "sort"

// TrollRow is one persona in the troll_index artifact: counts and rates of
// surrender and AFK events, own side and enemy side. Every rate is
// count / total_matches in [0, 1].
type TrollRow struct {
	Persona      string `json:"persona"`
	TotalMatches int    `json:"total_matches"`

	OwnEarlySurrenderCount int     `json:"own_early_surrender_count"`
	OwnEarlySurrenderRate  float64 `json:"own_early_surrender_rate"`

	EnemyEarlySurrenderCount int     `json:"enemy_early_surrender_count"`
	EnemyEarlySurrenderRate  float64 `json:"enemy_early_surrender_rate"`

	OwnAfkCount int     `json:"own_afk_count"`
	OwnAfkRate  float64 `json:"own_afk_rate"`

	EnemyAfkCount int     `json:"enemy_afk_count"`
	EnemyAfkRate  float64 `json:"enemy_afk_rate"`
}

// TrollIndex is metric 07.
type TrollIndex struct {
	Header
	Players []TrollRow `json:"players"`
}

func computeTrollIndex(in *Input) (interface{}, error) {
	byPersona := in.matchRowsByPersona()

	var out TrollIndex
	out.Players = make([]TrollRow, 0, len(byPersona))

	for persona, rows := range byPersona {
		entry := TrollRow{Persona: persona, TotalMatches: len(rows)}
		for _, row := range rows {
			if row.EarlySurrender {
				entry.OwnEarlySurrenderCount++
			}
			if row.EnemyEarlySurrender {
				entry.EnemyEarlySurrenderCount++
			}
			if row.HadAfkTeammate {
				entry.OwnAfkCount++
			}
			if row.EnemyHadAfk {
				entry.EnemyAfkCount++
			}
		}

		n := float64(entry.TotalMatches)
		entry.OwnEarlySurrenderRate = safeDiv(float64(entry.OwnEarlySurrenderCount), n)
		entry.EnemyEarlySurrenderRate = safeDiv(float64(entry.EnemyEarlySurrenderCount), n)
		entry.OwnAfkRate = safeDiv(float64(entry.OwnAfkCount), n)
		entry.EnemyAfkRate = safeDiv(float64(entry.EnemyAfkCount), n)

		out.Players = append(out.Players, entry)
	}

	sort.Slice(out.Players, func(i, j int) bool {
		if out.Players[i].OwnEarlySurrenderRate != out.Players[j].OwnEarlySurrenderRate {
			return out.Players[i].OwnEarlySurrenderRate > out.Players[j].OwnEarlySurrenderRate
		}
		return out.Players[i].Persona < out.Players[j].Persona
	})
	return &out, nil
}
