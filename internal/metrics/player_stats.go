package metrics

import "sort"

// StatMax is a per-statistic maximum and the match that set it.
type StatMax struct {
	Value   int    `json:"value"`
	MatchID string `json:"match_id"`
}

// PlayerStatsRow is one persona in the players_stats artifact.
type PlayerStatsRow struct {
	Persona string `json:"persona"`
	Games   int    `json:"games"`

	AvgKills       float64 `json:"avg_kills"`
	AvgDeaths      float64 `json:"avg_deaths"`
	AvgAssists     float64 `json:"avg_assists"`
	AvgGold        float64 `json:"avg_gold"`
	AvgDamageDealt float64 `json:"avg_damage_dealt"`
	AvgDamageTaken float64 `json:"avg_damage_taken"`
	AvgVision      float64 `json:"avg_vision"`

	MaxKills       StatMax `json:"max_kills"`
	MaxDeaths      StatMax `json:"max_deaths"`
	MaxAssists     StatMax `json:"max_assists"`
	MaxGold        StatMax `json:"max_gold"`
	MaxDamageDealt StatMax `json:"max_damage_dealt"`
	MaxDamageTaken StatMax `json:"max_damage_taken"`
	MaxVision      StatMax `json:"max_vision"`
}

// PlayersStats is metric 05.
type PlayersStats struct {
	Header
	Players []PlayerStatsRow `json:"players"`
}

// bump updates a StatMax in place. Ties keep the earlier match id so
// recomputation over the same rows is stable.
func bump(m *StatMax, value int, matchID string) {
	if value > m.Value || (value == m.Value && (m.MatchID == "" || matchID < m.MatchID)) {
		m.Value = value
		m.MatchID = matchID
	}
}

func computePlayersStats(in *Input) (interface{}, error) {
	byPersona := in.playersByPersona()

	var out PlayersStats
	out.Players = make([]PlayerStatsRow, 0, len(byPersona))

	for _, persona := range in.personas() {
		rows := byPersona[persona]
		entry := PlayerStatsRow{Persona: persona, Games: len(rows)}

		var kills, deaths, assists, gold, dealt, taken, vision int
		for _, row := range rows {
			kills += row.Kills
			deaths += row.Deaths
			assists += row.Assists
			gold += row.GoldEarned
			dealt += row.DamageDealt
			taken += row.DamageTaken
			vision += row.VisionScore

			bump(&entry.MaxKills, row.Kills, row.MatchID)
			bump(&entry.MaxDeaths, row.Deaths, row.MatchID)
			bump(&entry.MaxAssists, row.Assists, row.MatchID)
			bump(&entry.MaxGold, row.GoldEarned, row.MatchID)
			bump(&entry.MaxDamageDealt, row.DamageDealt, row.MatchID)
			bump(&entry.MaxDamageTaken, row.DamageTaken, row.MatchID)
			bump(&entry.MaxVision, row.VisionScore, row.MatchID)
		}

		n := float64(len(rows))
		entry.AvgKills = safeDiv(float64(kills), n)
		entry.AvgDeaths = safeDiv(float64(deaths), n)
		entry.AvgAssists = safeDiv(float64(assists), n)
		entry.AvgGold = safeDiv(float64(gold), n)
		entry.AvgDamageDealt = safeDiv(float64(dealt), n)
		entry.AvgDamageTaken = safeDiv(float64(taken), n)
		entry.AvgVision = safeDiv(float64(vision), n)

		out.Players = append(out.Players, entry)
	}

	sort.Slice(out.Players, func(i, j int) bool {
		if out.Players[i].AvgKills != out.Players[j].AvgKills {
			return out.Players[i].AvgKills > out.Players[j].AvgKills
		}
		return out.Players[i].Persona < out.Players[j].Persona
	})
	return &out, nil
}
