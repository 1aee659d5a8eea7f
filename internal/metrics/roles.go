package metrics

import "sort"

// roleOrder fixes the artifact layout. Rows with a team position the
// vendor never assigned land in UNKNOWN.
var roleOrder = []string{"TOP", "JUNGLE", "MIDDLE", "BOTTOM", "UTILITY", "UNKNOWN"}

// RoleEntry is one persona's record within a single role.
type RoleEntry struct {
	Persona              string  `json:"persona"`
	Games                int     `json:"games"`
	Wins                 int     `json:"wins"`
	Winrate              float64 `json:"winrate"` // percent
	AvgKDA               float64 `json:"avg_kda"`
	AvgKillParticipation float64 `json:"avg_kill_participation"` // percent
}

// RoleBlock groups the per-persona entries of one role.
type RoleBlock struct {
	Role    string      `json:"role"`
	Players []RoleEntry `json:"players"`
}

// StatsByRole is metric 10. Every player row counts toward its role, so
// the per-persona games summed across roles match the winrate totals.
type StatsByRole struct {
	Header
	Roles []RoleBlock `json:"roles"`
}

func computeStatsByRole(in *Input) (interface{}, error) {
	type acc struct {
		games, wins int
		kdaSum      float64
		kpSum       float64
	}
	byRole := make(map[string]map[string]*acc)

	normalize := func(role string) string {
		for _, known := range roleOrder {
			if role == known {
				return role
			}
		}
		return "UNKNOWN"
	}

	for _, row := range in.Players {
		role := normalize(row.Role)
		if byRole[role] == nil {
			byRole[role] = make(map[string]*acc)
		}
		a := byRole[role][row.Persona]
		if a == nil {
			a = &acc{}
			byRole[role][row.Persona] = a
		}
		a.games++
		if row.Win {
			a.wins++
		}
		a.kdaSum += row.KDA
		a.kpSum += row.KillParticipation
	}

	var out StatsByRole
	for _, role := range roleOrder {
		personas := byRole[role]
		if len(personas) == 0 {
			continue
		}
		block := RoleBlock{Role: role, Players: make([]RoleEntry, 0, len(personas))}
		for persona, a := range personas {
			n := float64(a.games)
			block.Players = append(block.Players, RoleEntry{
				Persona:              persona,
				Games:                a.games,
				Wins:                 a.wins,
				Winrate:              safeDiv(float64(a.wins), n) * 100,
				AvgKDA:               safeDiv(a.kdaSum, n),
				AvgKillParticipation: safeDiv(a.kpSum, n) * 100,
			})
		}
		sort.Slice(block.Players, func(i, j int) bool {
			if block.Players[i].Games != block.Players[j].Games {
				return block.Players[i].Games > block.Players[j].Games
			}
			return block.Players[i].Persona < block.Players[j].Persona
		})
		out.Roles = append(out.Roles, block)
	}
	return &out, nil
}
