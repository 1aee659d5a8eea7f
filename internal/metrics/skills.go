package metrics

import "sort"

// SkillSlot holds average and max cast counts for one ability slot.
type SkillSlot struct {
	Avg float64 `json:"avg"`
	Max int     `json:"max"`
}

// SkillsRow is one persona in the number_skills artifact.
type SkillsRow struct {
	Persona      string    `json:"persona"`
	TotalMatches int       `json:"total_matches"`
	Q            SkillSlot `json:"q"`
	W            SkillSlot `json:"w"`
	E            SkillSlot `json:"e"`
	R            SkillSlot `json:"r"`
	AvgTotal     float64   `json:"avg_total"`
}

// NumberSkills is metric 09.
type NumberSkills struct {
	Header
	Players []SkillsRow `json:"players"`
}

func computeNumberSkills(in *Input) (interface{}, error) {
	byPersona := in.matchRowsByPersona()

	var out NumberSkills
	out.Players = make([]SkillsRow, 0, len(byPersona))

	for persona, rows := range byPersona {
		entry := SkillsRow{Persona: persona, TotalMatches: len(rows)}
		var qSum, wSum, eSum, rSum int
		for _, row := range rows {
			qSum += row.SpellQCasts
			wSum += row.SpellWCasts
			eSum += row.SpellECasts
			rSum += row.SpellRCasts
			if row.SpellQCasts > entry.Q.Max {
				entry.Q.Max = row.SpellQCasts
			}
			if row.SpellWCasts > entry.W.Max {
				entry.W.Max = row.SpellWCasts
			}
			if row.SpellECasts > entry.E.Max {
				entry.E.Max = row.SpellECasts
			}
			if row.SpellRCasts > entry.R.Max {
				entry.R.Max = row.SpellRCasts
			}
		}

		n := float64(entry.TotalMatches)
		entry.Q.Avg = safeDiv(float64(qSum), n)
		entry.W.Avg = safeDiv(float64(wSum), n)
		entry.E.Avg = safeDiv(float64(eSum), n)
		entry.R.Avg = safeDiv(float64(rSum), n)
		entry.AvgTotal = entry.Q.Avg + entry.W.Avg + entry.E.Avg + entry.R.Avg

		out.Players = append(out.Players, entry)
	}

	sort.Slice(out.Players, func(i, j int) bool {
		if out.Players[i].AvgTotal != out.Players[j].AvgTotal {
			return out.Players[i].AvgTotal > out.Players[j].AvgTotal
		}
		return out.Players[i].Persona < out.Players[j].Persona
	})
	return &out, nil
}
