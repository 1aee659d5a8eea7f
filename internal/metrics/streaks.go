package metrics

import "sort"

// StreakRow is one persona in the win_lose_streak artifact. CurrentStreak
// is signed: positive = ongoing win streak, negative = ongoing loss streak.
type StreakRow struct {
	Persona       string `json:"persona"`
	Games         int    `json:"games"`
	MaxWinStreak  int    `json:"max_win_streak"`
	MaxLoseStreak int    `json:"max_lose_streak"`
	CurrentStreak int    `json:"current_streak"`
}

// WinLoseStreak is metric 04.
type WinLoseStreak struct {
	Header
	Players []StreakRow `json:"players"`
}

func computeWinLoseStreak(in *Input) (interface{}, error) {
	byPersona := in.matchRowsByPersona()

	var out WinLoseStreak
	out.Players = make([]StreakRow, 0, len(byPersona))

	for persona, rows := range byPersona {
		// rows are ordered by gameStartTimestamp ascending.
		entry := StreakRow{Persona: persona, Games: len(rows)}
		current := 0
		for _, row := range rows {
			if row.Win {
				if current > 0 {
					current++
				} else {
					current = 1
				}
				if current > entry.MaxWinStreak {
					entry.MaxWinStreak = current
				}
			} else {
				if current < 0 {
					current--
				} else {
					current = -1
				}
				if -current > entry.MaxLoseStreak {
					entry.MaxLoseStreak = -current
				}
			}
		}
		entry.CurrentStreak = current
		out.Players = append(out.Players, entry)
	}

	sort.Slice(out.Players, func(i, j int) bool {
		if out.Players[i].MaxWinStreak != out.Players[j].MaxWinStreak {
			return out.Players[i].MaxWinStreak > out.Players[j].MaxWinStreak
		}
		return out.Players[i].Persona < out.Players[j].Persona
	})
	return &out, nil
}
