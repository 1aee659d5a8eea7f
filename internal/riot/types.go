package riot

// AccountResponse represents the response from /riot/account/v1/accounts/by-riot-id
type AccountResponse struct {
	PUUID    string `json:"puuid" bson:"puuid"`
	GameName string `json:"gameName" bson:"gameName"`
	TagLine  string `json:"tagLine" bson:"tagLine"`
}

// Match represents the response from /lol/match/v5/matches/{matchId}.
// The same shape is persisted verbatim inside L0 and L1 documents, so every
// field carries both json and bson tags.
type Match struct {
	Metadata MatchMetadata `json:"metadata" bson:"metadata"`
	Info     MatchInfo     `json:"info" bson:"info"`
}

type MatchMetadata struct {
	MatchID      string   `json:"matchId" bson:"matchId"`
	Participants []string `json:"participants" bson:"participants"` // PUUIDs
}

type MatchInfo struct {
	GameCreation       int64         `json:"gameCreation" bson:"gameCreation"`
	GameStartTimestamp int64         `json:"gameStartTimestamp" bson:"gameStartTimestamp"` // ms since epoch
	GameEndTimestamp   int64         `json:"gameEndTimestamp" bson:"gameEndTimestamp"`
	GameDuration       int64         `json:"gameDuration" bson:"gameDuration"` // seconds
	GameVersion        string        `json:"gameVersion" bson:"gameVersion"`
	QueueID            int           `json:"queueId" bson:"queueId"`
	Participants       []Participant `json:"participants" bson:"participants"`
	Teams              []Team        `json:"teams" bson:"teams"`
}

type Participant struct {
	PUUID          string `json:"puuid" bson:"puuid"`
	RiotIDGameName string `json:"riotIdGameName" bson:"riotIdGameName"`
	RiotIDTagline  string `json:"riotIdTagline" bson:"riotIdTagline"`

	ChampionID   int    `json:"championId" bson:"championId"`
	ChampionName string `json:"championName" bson:"championName"`
	TeamID       int    `json:"teamId" bson:"teamId"`             // 100 blue, 200 red
	TeamPosition string `json:"teamPosition" bson:"teamPosition"` // TOP, JUNGLE, MIDDLE, BOTTOM, UTILITY
	Role         string `json:"role" bson:"role"`
	Lane         string `json:"lane" bson:"lane"`
	Win          bool   `json:"win" bson:"win"`

	Kills   int `json:"kills" bson:"kills"`
	Deaths  int `json:"deaths" bson:"deaths"`
	Assists int `json:"assists" bson:"assists"`

	GoldEarned                  int `json:"goldEarned" bson:"goldEarned"`
	TotalMinionsKilled          int `json:"totalMinionsKilled" bson:"totalMinionsKilled"`
	NeutralMinionsKilled        int `json:"neutralMinionsKilled" bson:"neutralMinionsKilled"`
	TotalDamageDealtToChampions int `json:"totalDamageDealtToChampions" bson:"totalDamageDealtToChampions"`
	TotalDamageTaken            int `json:"totalDamageTaken" bson:"totalDamageTaken"`
	VisionScore                 int `json:"visionScore" bson:"visionScore"`

	Spell1Casts int `json:"spell1Casts" bson:"spell1Casts"` // Q
	Spell2Casts int `json:"spell2Casts" bson:"spell2Casts"` // W
	Spell3Casts int `json:"spell3Casts" bson:"spell3Casts"` // E
	Spell4Casts int `json:"spell4Casts" bson:"spell4Casts"` // R

	FirstBloodKill   bool `json:"firstBloodKill" bson:"firstBloodKill"`
	FirstBloodAssist bool `json:"firstBloodAssist" bson:"firstBloodAssist"`
	FirstBloodVictim bool `json:"firstBloodVictim" bson:"firstBloodVictim"`

	GameEndedInEarlySurrender bool `json:"gameEndedInEarlySurrender" bson:"gameEndedInEarlySurrender"`
	GameEndedInSurrender      bool `json:"gameEndedInSurrender" bson:"gameEndedInSurrender"`
	TeamEarlySurrendered      bool `json:"teamEarlySurrendered" bson:"teamEarlySurrendered"`

	Challenges ParticipantChallenges `json:"challenges" bson:"challenges"`
}

// ParticipantChallenges is the subset of the vendor challenge block the
// metrics read. Unknown challenge keys are dropped on decode.
type ParticipantChallenges struct {
	KDA                       float64 `json:"kda" bson:"kda"`
	KillParticipation         float64 `json:"killParticipation" bson:"killParticipation"`
	GoldPerMinute             float64 `json:"goldPerMinute" bson:"goldPerMinute"`
	LaneMinionsFirst10Minutes float64 `json:"laneMinionsFirst10Minutes" bson:"laneMinionsFirst10Minutes"`
	HadAfkTeammate            int     `json:"hadAfkTeammate" bson:"hadAfkTeammate"`
}

type Team struct {
	TeamID     int            `json:"teamId" bson:"teamId"`
	Win        bool           `json:"win" bson:"win"`
	Objectives TeamObjectives `json:"objectives" bson:"objectives"`
}

type TeamObjectives struct {
	Champion ObjectiveStat `json:"champion" bson:"champion"`
	Tower    ObjectiveStat `json:"tower" bson:"tower"`
	Dragon   ObjectiveStat `json:"dragon" bson:"dragon"`
	Baron    ObjectiveStat `json:"baron" bson:"baron"`
}

type ObjectiveStat struct {
	First bool `json:"first" bson:"first"`
	Kills int  `json:"kills" bson:"kills"`
}

// TotalCS is lane plus jungle creeps, the farm number the metrics report.
func (p Participant) TotalCS() int {
	return p.TotalMinionsKilled + p.NeutralMinionsKilled
}
