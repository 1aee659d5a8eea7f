package metrics

import (
	"sort"
	"time"
)

// DayCount is one day in a dense frequency series.
type DayCount struct {
	Date  string `json:"date"`
	Games int    `json:"games"`
}

// PersonaFrequency is one persona's dense daily series.
type PersonaFrequency struct {
	Persona    string     `json:"persona"`
	TotalGames int        `json:"total_games"`
	Days       []DayCount `json:"days"`
}

// GamesFrequency is metric 03. Unlike the rest of the catalogue it fills
// the full date range with zeros: the series runs contiguously from the
// earliest match day to max(today, latest match day).
type GamesFrequency struct {
	Header
	Global  []DayCount         `json:"global_frequency"`
	Players []PersonaFrequency `json:"players_frequency"`
}

// denseSeries expands per-day counts into a contiguous day-by-day series
// over [first, last].
func denseSeries(counts map[string]int, first, last time.Time) []DayCount {
	var out []DayCount
	for day := first; !day.After(last); day = day.AddDate(0, 0, 1) {
		date := day.Format(dateLayout)
		out = append(out, DayCount{Date: date, Games: counts[date]})
	}
	return out
}

func computeGamesFrequency(in *Input, now time.Time) (interface{}, error) {
	var out GamesFrequency
	if len(in.Summaries) == 0 {
		out.Global = []DayCount{}
		out.Players = []PersonaFrequency{}
		return &out, nil
	}

	globalCounts := make(map[string]int)
	minDay := time.Time{}
	maxDay := time.Time{}
	for _, s := range in.Summaries {
		day, _ := time.ParseInLocation(dateLayout, dayOf(s.GameStart), time.UTC)
		globalCounts[dayOf(s.GameStart)]++
		if minDay.IsZero() || day.Before(minDay) {
			minDay = day
		}
		if day.After(maxDay) {
			maxDay = day
		}
	}

	today, _ := time.ParseInLocation(dateLayout, now.UTC().Format(dateLayout), time.UTC)
	if today.After(maxDay) {
		maxDay = today
	}

	out.Global = denseSeries(globalCounts, minDay, maxDay)

	byPersona := in.matchRowsByPersona()
	out.Players = make([]PersonaFrequency, 0, len(byPersona))
	for persona, rows := range byPersona {
		counts := make(map[string]int)
		for _, row := range rows {
			counts[dayOf(row.GameStart)]++
		}
		out.Players = append(out.Players, PersonaFrequency{
			Persona:    persona,
			TotalGames: len(rows),
			Days:       denseSeries(counts, minDay, maxDay),
		})
	}
	sort.Slice(out.Players, func(i, j int) bool {
		if out.Players[i].TotalGames != out.Players[j].TotalGames {
			return out.Players[i].TotalGames > out.Players[j].TotalGames
		}
		return out.Players[i].Persona < out.Players[j].Persona
	})

	return &out, nil
}
