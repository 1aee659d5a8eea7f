package metrics

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// RecordRow is one persona in the stats_record artifact. Match ids are
// stored as the numeric suffix of the vendor id ("EUW1_123" -> 123).
type RecordRow struct {
	Persona string `json:"persona"`

	MaxKills   int   `json:"max_kills"`
	MaxKillsID int64 `json:"max_kills_match"`

	MaxDeaths   int   `json:"max_deaths"`
	MaxDeathsID int64 `json:"max_deaths_match"`

	MaxAssists   int   `json:"max_assists"`
	MaxAssistsID int64 `json:"max_assists_match"`

	MaxVision   int   `json:"max_vision"`
	MaxVisionID int64 `json:"max_vision_match"`

	MaxFarm   int   `json:"max_farm"`
	MaxFarmID int64 `json:"max_farm_match"`

	MaxDamage   int   `json:"max_damage"`
	MaxDamageID int64 `json:"max_damage_match"`

	MaxGold   int   `json:"max_gold"`
	MaxGoldID int64 `json:"max_gold_match"`

	LongestGame   string `json:"longest_game"`
	LongestGameID int64  `json:"longest_game_match"`
}

// StatsRecord is metric 11.
type StatsRecord struct {
	Header
	Players []RecordRow `json:"players"`
}

// matchNumericID extracts the numeric tail of a vendor match id. Ids that
// carry no region prefix parse as-is; anything unparsable yields zero.
func matchNumericID(matchID string) int64 {
	tail := matchID
	if idx := strings.LastIndex(matchID, "_"); idx >= 0 {
		tail = matchID[idx+1:]
	}
	n, err := strconv.ParseInt(tail, 10, 64)
	if err != nil {
		return 0
	}
	return n
}

func formatGameLength(seconds int64) string {
	return fmt.Sprintf("%dm %ds", seconds/60, seconds%60)
}

func computeStatsRecord(in *Input) (interface{}, error) {
	byPersona := in.matchRowsByPersona()

	var out StatsRecord
	out.Players = make([]RecordRow, 0, len(byPersona))

	for persona, rows := range byPersona {
		entry := RecordRow{Persona: persona}
		var longest int64 = -1
		record := func(value int, best *int, bestID *int64, matchID string) {
			id := matchNumericID(matchID)
			if value > *best || (value == *best && (*bestID == 0 || id < *bestID)) {
				*best = value
				*bestID = id
			}
		}
		for _, row := range rows {
			record(row.Kills, &entry.MaxKills, &entry.MaxKillsID, row.MatchID)
			record(row.Deaths, &entry.MaxDeaths, &entry.MaxDeathsID, row.MatchID)
			record(row.Assists, &entry.MaxAssists, &entry.MaxAssistsID, row.MatchID)
			record(row.VisionScore, &entry.MaxVision, &entry.MaxVisionID, row.MatchID)
			record(row.CS, &entry.MaxFarm, &entry.MaxFarmID, row.MatchID)
			record(row.DamageDealt, &entry.MaxDamage, &entry.MaxDamageID, row.MatchID)
			record(row.GoldEarned, &entry.MaxGold, &entry.MaxGoldID, row.MatchID)
			if row.GameDuration > longest {
				longest = row.GameDuration
				entry.LongestGameID = matchNumericID(row.MatchID)
			}
		}
		if longest >= 0 {
			entry.LongestGame = formatGameLength(longest)
		}
		out.Players = append(out.Players, entry)
	}

	sort.Slice(out.Players, func(i, j int) bool {
		if out.Players[i].MaxKills != out.Players[j].MaxKills {
			return out.Players[i].MaxKills > out.Players[j].MaxKills
		}
		return out.Players[i].Persona < out.Players[j].Persona
	})
	return &out, nil
}
