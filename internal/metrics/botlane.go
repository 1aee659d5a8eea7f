package metrics

import "sort"

// DuoRow is one bottom/utility persona pair in the botlane_synergy
// artifact. The pair is ordered: bottom first, utility second.
type DuoRow struct {
	Bottom  string `json:"bottom"`
	Utility string `json:"utility"`

	Games   int     `json:"games"`
	Wins    int     `json:"wins"`
	Winrate float64 `json:"winrate"`

	AvgKDA    float64 `json:"avg_kda"`
	AvgDamage float64 `json:"avg_damage"`
	AvgVision float64 `json:"avg_vision"`
	AvgGold   float64 `json:"avg_gold"`

	WinrateScore float64 `json:"winrate_score"`
	KDAScore     float64 `json:"kda_score"`
	DamageScore  float64 `json:"damage_score"`
	VisionScore  float64 `json:"vision_score"`
	EconomyScore float64 `json:"economy_score"`

	BotlaneScore float64 `json:"botlane_score"`
}

// BotlaneSynergy is metric 12.
type BotlaneSynergy struct {
	Header
	Duos []DuoRow `json:"duos"`
}

// score weights: winrate dominates, then performance components.
const (
	weightWinrate = 0.4
	weightKDA     = 0.2
	weightDamage  = 0.2
	weightVision  = 0.1
	weightEconomy = 0.1
)

func computeBotlaneSynergy(in *Input) (interface{}, error) {
	type duoKey struct {
		bottom, utility string
	}
	type acc struct {
		games, wins int
		kdaSum      float64
		damageSum   float64
		visionSum   float64
		goldSum     float64
	}

	// Index tracked rows by match and team so bottom/utility pairs of
	// the same team can be joined.
	byMatchTeam := make(map[string]map[int]map[string]string) // match -> team -> role -> persona
	rowFor := make(map[string]map[string]int)                 // match -> persona -> row index (first wins)
	for i, row := range in.Players {
		if row.Role != "BOTTOM" && row.Role != "UTILITY" {
			continue
		}
		if byMatchTeam[row.MatchID] == nil {
			byMatchTeam[row.MatchID] = make(map[int]map[string]string)
		}
		if byMatchTeam[row.MatchID][row.TeamID] == nil {
			byMatchTeam[row.MatchID][row.TeamID] = make(map[string]string)
		}
		if _, dup := byMatchTeam[row.MatchID][row.TeamID][row.Role]; !dup {
			byMatchTeam[row.MatchID][row.TeamID][row.Role] = row.Persona
		}
		if rowFor[row.MatchID] == nil {
			rowFor[row.MatchID] = make(map[string]int)
		}
		if _, dup := rowFor[row.MatchID][row.Persona]; !dup {
			rowFor[row.MatchID][row.Persona] = i
		}
	}

	duos := make(map[duoKey]*acc)
	for matchID, teams := range byMatchTeam {
		for _, roles := range teams {
			bottom, okB := roles["BOTTOM"]
			utility, okU := roles["UTILITY"]
			if !okB || !okU || bottom == utility {
				continue
			}
			key := duoKey{bottom: bottom, utility: utility}
			a := duos[key]
			if a == nil {
				a = &acc{}
				duos[key] = a
			}
			bRow := in.Players[rowFor[matchID][bottom]]
			uRow := in.Players[rowFor[matchID][utility]]
			a.games++
			if bRow.Win {
				a.wins++
			}
			a.kdaSum += (bRow.KDA + uRow.KDA) / 2
			a.damageSum += float64(bRow.DamageDealt+uRow.DamageDealt) / 2
			a.visionSum += float64(bRow.VisionScore+uRow.VisionScore) / 2
			a.goldSum += float64(bRow.GoldEarned+uRow.GoldEarned) / 2
		}
	}

	var out BotlaneSynergy
	out.Duos = make([]DuoRow, 0, len(duos))
	for key, a := range duos {
		n := float64(a.games)
		out.Duos = append(out.Duos, DuoRow{
			Bottom:    key.bottom,
			Utility:   key.utility,
			Games:     a.games,
			Wins:      a.wins,
			Winrate:   safeDiv(float64(a.wins), n),
			AvgKDA:    safeDiv(a.kdaSum, n),
			AvgDamage: safeDiv(a.damageSum, n),
			AvgVision: safeDiv(a.visionSum, n),
			AvgGold:   safeDiv(a.goldSum, n),
		})
	}

	normalizeScores(out.Duos)

	sort.Slice(out.Duos, func(i, j int) bool {
		if out.Duos[i].BotlaneScore != out.Duos[j].BotlaneScore {
			return out.Duos[i].BotlaneScore > out.Duos[j].BotlaneScore
		}
		if out.Duos[i].Bottom != out.Duos[j].Bottom {
			return out.Duos[i].Bottom < out.Duos[j].Bottom
		}
		return out.Duos[i].Utility < out.Duos[j].Utility
	})
	return &out, nil
}

// normalizeScores min-max scales each component over the observed duos.
// A single duo, or a degenerate component where min equals max, scores 1.0.
func normalizeScores(duos []DuoRow) {
	if len(duos) == 0 {
		return
	}
	scale := func(get func(*DuoRow) float64, set func(*DuoRow, float64)) {
		lo, hi := get(&duos[0]), get(&duos[0])
		for i := range duos {
			v := get(&duos[i])
			if v < lo {
				lo = v
			}
			if v > hi {
				hi = v
			}
		}
		for i := range duos {
			if hi == lo {
				set(&duos[i], 1.0)
				continue
			}
			set(&duos[i], (get(&duos[i])-lo)/(hi-lo))
		}
	}

	scale(func(d *DuoRow) float64 { return d.Winrate }, func(d *DuoRow, v float64) { d.WinrateScore = v })
	scale(func(d *DuoRow) float64 { return d.AvgKDA }, func(d *DuoRow, v float64) { d.KDAScore = v })
	scale(func(d *DuoRow) float64 { return d.AvgDamage }, func(d *DuoRow, v float64) { d.DamageScore = v })
	scale(func(d *DuoRow) float64 { return d.AvgVision }, func(d *DuoRow, v float64) { d.VisionScore = v })
	scale(func(d *DuoRow) float64 { return d.AvgGold }, func(d *DuoRow, v float64) { d.EconomyScore = v })

	for i := range duos {
		d := &duos[i]
		d.BotlaneScore = weightWinrate*d.WinrateScore +
			weightKDA*d.KDAScore +
			weightDamage*d.DamageScore +
			weightVision*d.VisionScore +
			weightEconomy*d.EconomyScore
	}
}
