package metrics

import "sort"

// AccountWinrate is the per-puuid breakdown inside a PlayerWinrate entry.
type AccountWinrate struct {
	PUUID   string  `json:"puuid"`
	Games   int     `json:"games"`
	Wins    int     `json:"wins"`
	Winrate float64 `json:"winrate"`
}

// PlayerWinrate is one persona in the players_games_winrate artifact.
type PlayerWinrate struct {
	Persona  string           `json:"persona"`
	Games    int              `json:"games"`
	Wins     int              `json:"wins"`
	Winrate  float64          `json:"winrate"` // 0..1
	Accounts []AccountWinrate `json:"accounts"`
}

// PlayersGamesWinrate is metric 01.
type PlayersGamesWinrate struct {
	Header
	Players           []PlayerWinrate `json:"players"`
	GlobalWinrateMean float64         `json:"global_winrate_mean"` // Σwins / Σgames
}

func computePlayersGamesWinrate(in *Input) (interface{}, error) {
	byPersona := in.playersByPersona()

	var out PlayersGamesWinrate
	out.Players = make([]PlayerWinrate, 0, len(byPersona))

	globalGames, globalWins := 0, 0
	for _, persona := range in.personas() {
		rows := byPersona[persona]

		perAccount := make(map[string]*AccountWinrate)
		var order []string
		for _, row := range rows {
			acct, ok := perAccount[row.PUUID]
			if !ok {
				acct = &AccountWinrate{PUUID: row.PUUID}
				perAccount[row.PUUID] = acct
				order = append(order, row.PUUID)
			}
			acct.Games++
			if row.Win {
				acct.Wins++
			}
		}
		sort.Strings(order)

		entry := PlayerWinrate{Persona: persona}
		for _, puuid := range order {
			acct := perAccount[puuid]
			acct.Winrate = safeDiv(float64(acct.Wins), float64(acct.Games))
			entry.Games += acct.Games
			entry.Wins += acct.Wins
			entry.Accounts = append(entry.Accounts, *acct)
		}
		entry.Winrate = safeDiv(float64(entry.Wins), float64(entry.Games))

		globalGames += entry.Games
		globalWins += entry.Wins
		out.Players = append(out.Players, entry)
	}

	sort.Slice(out.Players, func(i, j int) bool {
		if out.Players[i].Winrate != out.Players[j].Winrate {
			return out.Players[i].Winrate > out.Players[j].Winrate
		}
		return out.Players[i].Persona < out.Players[j].Persona
	})

	out.GlobalWinrateMean = safeDiv(float64(globalWins), float64(globalGames))
	return &out, nil
}
