package store

import (
	"time"

	"lolmetrics/internal/riot"
)

// Account is one resolved riot handle for a persona.
type Account struct {
	RiotID string `bson:"riotId" json:"riotId"`
	PUUID  string `bson:"puuid" json:"puuid"`
}

// UserDoc is one persona in the user index (L0). Keyed by persona name.
type UserDoc struct {
	Persona   string    `bson:"_id" json:"persona"`
	Accounts  []Account `bson:"accounts" json:"accounts"`
	RiotIDs   []string  `bson:"riotIds" json:"riotIds"`
	PUUIDs    []string  `bson:"puuids" json:"puuids"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// RawMatchDoc is one raw vendor match (L0). Keyed by the vendor match id,
// immutable once stored.
type RawMatchDoc struct {
	ID        string     `bson:"_id" json:"matchId"`
	FetchedAt time.Time  `bson:"fetched_at" json:"fetched_at"`
	Data      riot.Match `bson:"data" json:"data"`
}

// FilteredMatchDoc is one match admitted into an L1 view. It embeds a full
// copy of the payload so L1 survives L0 maintenance.
type FilteredMatchDoc struct {
	ID              string     `bson:"_id" json:"matchId"`
	Queue           int        `bson:"queue" json:"queue"`
	MinFriends      int        `bson:"min_friends" json:"min_friends"`
	Pool            string     `bson:"pool" json:"pool"`
	FriendsPresent  []string   `bson:"friends_present" json:"friends_present"`
	PersonasPresent []string   `bson:"personas_present" json:"personas_present"`
	Data            riot.Match `bson:"data" json:"data"`
}

// FlatParticipationDoc is one participant in one L1 match (L2). Tracked
// participations go to the players collection (Persona set), the rest to
// the enemies collection (Persona empty).
type FlatParticipationDoc struct {
	ID      string `bson:"_id" json:"id"` // {matchId}:{puuid}
	MatchID string `bson:"match_id" json:"match_id"`
	PUUID   string `bson:"puuid" json:"puuid"`
	Persona string `bson:"persona,omitempty" json:"persona,omitempty"`

	ChampionID   int    `bson:"champion_id" json:"champion_id"`
	Champion     string `bson:"champion" json:"champion"`
	TeamID       int    `bson:"team_id" json:"team_id"`
	OnFriendsTeam bool  `bson:"on_friends_team" json:"on_friends_team"`
	Role         string `bson:"role" json:"role"` // teamPosition
	Lane         string `bson:"lane" json:"lane"`
	Win          bool   `bson:"win" json:"win"`

	Kills   int `bson:"kills" json:"kills"`
	Deaths  int `bson:"deaths" json:"deaths"`
	Assists int `bson:"assists" json:"assists"`

	VisionScore int `bson:"vision_score" json:"vision_score"`
	GoldEarned  int `bson:"gold_earned" json:"gold_earned"`
	DamageDealt int `bson:"damage_dealt" json:"damage_dealt"`
	DamageTaken int `bson:"damage_taken" json:"damage_taken"`
	CS          int `bson:"cs" json:"cs"`

	SpellQCasts int `bson:"spell_q_casts" json:"spell_q_casts"`
	SpellWCasts int `bson:"spell_w_casts" json:"spell_w_casts"`
	SpellECasts int `bson:"spell_e_casts" json:"spell_e_casts"`
	SpellRCasts int `bson:"spell_r_casts" json:"spell_r_casts"`

	FirstBloodKill   bool `bson:"first_blood_kill" json:"first_blood_kill"`
	FirstBloodAssist bool `bson:"first_blood_assist" json:"first_blood_assist"`
	FirstDeath       bool `bson:"first_death" json:"first_death"`

	EarlySurrender     bool `bson:"early_surrender" json:"early_surrender"`           // own team surrendered early
	Surrender          bool `bson:"surrender" json:"surrender"`                       // game ended in any surrender
	EnemyEarlySurrender bool `bson:"enemy_early_surrender" json:"enemy_early_surrender"`
	HadAfkTeammate     bool `bson:"had_afk_teammate" json:"had_afk_teammate"`
	EnemyHadAfk        bool `bson:"enemy_had_afk" json:"enemy_had_afk"`

	KillParticipation float64 `bson:"kill_participation" json:"kill_participation"`
	KDA               float64 `bson:"kda" json:"kda"`
	GoldPerMinute     float64 `bson:"gold_per_minute" json:"gold_per_minute"`
	LaneCSFirst10     float64 `bson:"lane_cs_first10" json:"lane_cs_first10"`

	GameStart    int64 `bson:"game_start" json:"game_start"` // ms since epoch
	GameDuration int64 `bson:"game_duration" json:"game_duration"` // seconds

	Queue      int    `bson:"queue" json:"queue"`
	MinFriends int    `bson:"min_friends" json:"min_friends"`
	Pool       string `bson:"pool" json:"pool"`
}

// TeamSummary is a per-team aggregate inside a MatchSummaryDoc.
type TeamSummary struct {
	TeamID      int  `bson:"team_id" json:"team_id"`
	Win         bool `bson:"win" json:"win"`
	Kills       int  `bson:"kills" json:"kills"`
	Deaths      int  `bson:"deaths" json:"deaths"`
	Assists     int  `bson:"assists" json:"assists"`
	GoldEarned  int  `bson:"gold_earned" json:"gold_earned"`
	DamageDealt int  `bson:"damage_dealt" json:"damage_dealt"`
}

// MatchSummaryDoc is one row per L1 match (L2) with team-level aggregates,
// for metrics that need per-match context without re-reading participants.
type MatchSummaryDoc struct {
	ID              string        `bson:"_id" json:"matchId"`
	GameStart       int64         `bson:"game_start" json:"game_start"`
	GameDuration    int64         `bson:"game_duration" json:"game_duration"`
	FriendsTeamID   int           `bson:"friends_team_id" json:"friends_team_id"`
	FriendsWin      bool          `bson:"friends_win" json:"friends_win"`
	FriendsPresent  []string      `bson:"friends_present" json:"friends_present"`
	PersonasPresent []string      `bson:"personas_present" json:"personas_present"`
	Teams           []TeamSummary `bson:"teams" json:"teams"`

	Queue      int    `bson:"queue" json:"queue"`
	MinFriends int    `bson:"min_friends" json:"min_friends"`
	Pool       string `bson:"pool" json:"pool"`
}
