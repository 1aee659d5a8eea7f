package metrics

import "sort"

// FirstRow is one persona in the first_metrics artifact: first-blood
// involvement counts/rates plus early-game averages.
type FirstRow struct {
	Persona      string `json:"persona"`
	TotalMatches int    `json:"total_matches"`

	FirstBloodKillCount int     `json:"first_blood_kill_count"`
	FirstBloodKillRate  float64 `json:"first_blood_kill_rate"`

	FirstBloodAssistCount int     `json:"first_blood_assist_count"`
	FirstBloodAssistRate  float64 `json:"first_blood_assist_rate"`

	FirstDeathCount int     `json:"first_death_count"`
	FirstDeathRate  float64 `json:"first_death_rate"`

	AvgLaneCSFirst10 float64 `json:"avg_lane_cs_first10"`
	AvgGoldPerMinute float64 `json:"avg_gold_per_minute"`
}

// FirstMetrics is metric 08.
type FirstMetrics struct {
	Header
	Players []FirstRow `json:"players"`
}

func computeFirstMetrics(in *Input) (interface{}, error) {
	byPersona := in.matchRowsByPersona()

	var out FirstMetrics
	out.Players = make([]FirstRow, 0, len(byPersona))

	for persona, rows := range byPersona {
		entry := FirstRow{Persona: persona, TotalMatches: len(rows)}
		var csSum, gpmSum float64
		for _, row := range rows {
			if row.FirstBloodKill {
				entry.FirstBloodKillCount++
			}
			if row.FirstBloodAssist {
				entry.FirstBloodAssistCount++
			}
			if row.FirstDeath {
				entry.FirstDeathCount++
			}
			csSum += row.LaneCSFirst10
			gpmSum += row.GoldPerMinute
		}

		n := float64(entry.TotalMatches)
		entry.FirstBloodKillRate = safeDiv(float64(entry.FirstBloodKillCount), n)
		entry.FirstBloodAssistRate = safeDiv(float64(entry.FirstBloodAssistCount), n)
		entry.FirstDeathRate = safeDiv(float64(entry.FirstDeathCount), n)
		entry.AvgLaneCSFirst10 = safeDiv(csSum, n)
		entry.AvgGoldPerMinute = safeDiv(gpmSum, n)

		out.Players = append(out.Players, entry)
	}

	sort.Slice(out.Players, func(i, j int) bool {
		if out.Players[i].FirstBloodKillRate != out.Players[j].FirstBloodKillRate {
			return out.Players[i].FirstBloodKillRate > out.Players[j].FirstBloodKillRate
		}
		return out.Players[i].Persona < out.Players[j].Persona
	})
	return &out, nil
}
