package metrics

import "sort"

// EgoRow is one persona in the ego_index artifact. The component scores
// live in [0, 5]; the combined index in [-5, 5]. The mapping from raw
// averages to the bounded scales:
//
//	kill_share      = avg_kills / (avg_kills + avg_assists)
//	selfish_score   = 5 * kill_share
//	teamplay_score  = 5 * (0.5*(1 - kill_share) + 0.5*avg_kill_participation)
//	tilt_score      = 5 * (0.5*early_surrender_rate + 0.5*surrender_rate)
//	ego_index       = clamp(selfish_score - teamplay_score, -5, 5)
//
// A persona with zero kills and assists scores 0 on both components.
type EgoRow struct {
	Persona    string `json:"persona"`
	MatchCount int    `json:"match_count"`

	EgoIndex      float64 `json:"ego_index"`
	SelfishScore  float64 `json:"selfish_score"`
	TeamplayScore float64 `json:"teamplay_score"`
	TiltScore     float64 `json:"tilt_score"`

	SurrenderRate      float64 `json:"surrender_rate"`
	EarlySurrenderRate float64 `json:"early_surrender_rate"`
}

// EgoIndex is metric 06.
type EgoIndex struct {
	Header
	Players []EgoRow `json:"players"`
}

func computeEgoIndex(in *Input) (interface{}, error) {
	byPersona := in.matchRowsByPersona()

	var out EgoIndex
	out.Players = make([]EgoRow, 0, len(byPersona))

	for persona, rows := range byPersona {
		n := float64(len(rows))

		var kills, assists int
		var surrenders, earlySurrenders int
		var kpSum float64
		for _, row := range rows {
			kills += row.Kills
			assists += row.Assists
			kpSum += row.KillParticipation
			if row.Surrender {
				surrenders++
			}
			if row.EarlySurrender {
				earlySurrenders++
			}
		}

		killShare := safeDiv(float64(kills), float64(kills+assists))
		avgKP := clamp01(safeDiv(kpSum, n))
		surrenderRate := safeDiv(float64(surrenders), n)
		earlyRate := safeDiv(float64(earlySurrenders), n)

		entry := EgoRow{
			Persona:            persona,
			MatchCount:         len(rows),
			SurrenderRate:      surrenderRate,
			EarlySurrenderRate: earlyRate,
			SelfishScore:       5 * killShare,
			TiltScore:          5 * clamp01(0.5*earlyRate+0.5*surrenderRate),
		}
		if kills+assists > 0 {
			entry.TeamplayScore = 5 * clamp01(0.5*(1-killShare)+0.5*avgKP)
		}
		entry.EgoIndex = clamp(entry.SelfishScore-entry.TeamplayScore, -5, 5)

		out.Players = append(out.Players, entry)
	}

	sort.Slice(out.Players, func(i, j int) bool {
		if out.Players[i].EgoIndex != out.Players[j].EgoIndex {
			return out.Players[i].EgoIndex > out.Players[j].EgoIndex
		}
		return out.Players[i].Persona < out.Players[j].Persona
	})
	return &out, nil
}
