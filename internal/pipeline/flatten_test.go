package pipeline

import (
	"testing"

	"lolmetrics/internal/riot"
	"lolmetrics/internal/store"
)

// tenPlayerDoc builds an L1 document with five tracked players on team 100
// ("p1".."p5") and five enemies on team 200, team 100 winning.
func tenPlayerDoc() store.FilteredMatchDoc {
	m := riot.Match{}
	m.Metadata.MatchID = "EUW1_42"
	for i := 0; i < 10; i++ {
		teamID := 100
		win := true
		if i >= 5 {
			teamID = 200
			win = false
		}
		puuid := string(rune('a'+i)) + "-puuid"
		m.Metadata.Participants = append(m.Metadata.Participants, puuid)
		m.Info.Participants = append(m.Info.Participants, riot.Participant{
			PUUID:  puuid,
			TeamID: teamID,
			Win:    win,
			Kills:  i,
		})
	}
	m.Info.GameStartTimestamp = 1700000000000
	m.Info.GameDuration = 1800
	m.Info.QueueID = 440

	return store.FilteredMatchDoc{
		ID:              "EUW1_42",
		Queue:           440,
		MinFriends:      5,
		Pool:            "deadbeef",
		FriendsPresent:  []string{"a-puuid", "b-puuid", "c-puuid", "d-puuid", "e-puuid"},
		PersonasPresent: []string{"p1", "p2", "p3", "p4", "p5"},
		Data:            m,
	}
}

func tenPlayerPool() map[string]string {
	return map[string]string{
		"a-puuid": "p1", "b-puuid": "p2", "c-puuid": "p3",
		"d-puuid": "p4", "e-puuid": "p5",
	}
}

// TestFlattenMatch_Split tests the tracked/untracked row split
func TestFlattenMatch_Split(t *testing.T) {
	players, enemies, summary := FlattenMatch(tenPlayerDoc(), tenPlayerPool())

	if len(players) != 5 {
		t.Errorf("Expected 5 player rows, got %d", len(players))
	}
	if len(enemies) != 5 {
		t.Errorf("Expected 5 enemy rows, got %d", len(enemies))
	}
	for _, row := range players {
		if row.Persona == "" {
			t.Errorf("Player row %s missing persona", row.PUUID)
		}
		if !row.OnFriendsTeam {
			t.Errorf("Player row %s should be on friends team", row.PUUID)
		}
	}
	for _, row := range enemies {
		if row.Persona != "" {
			t.Errorf("Enemy row %s should have no persona", row.PUUID)
		}
		if row.OnFriendsTeam {
			t.Errorf("Enemy row %s should not be on friends team", row.PUUID)
		}
	}
	if summary.FriendsTeamID != 100 || !summary.FriendsWin {
		t.Errorf("Expected friends team 100 winning, got team %d win %v",
			summary.FriendsTeamID, summary.FriendsWin)
	}
}

// TestFlattenMatch_RowIdentity tests row ids and the view triple propagation
func TestFlattenMatch_RowIdentity(t *testing.T) {
	players, _, _ := FlattenMatch(tenPlayerDoc(), tenPlayerPool())

	row := players[0]
	if row.ID != "EUW1_42:"+row.PUUID {
		t.Errorf("Unexpected row id: %s", row.ID)
	}
	if row.Queue != 440 || row.MinFriends != 5 || row.Pool != "deadbeef" {
		t.Errorf("View triple not propagated: %+v", row)
	}
	if row.GameStart != 1700000000000 || row.GameDuration != 1800 {
		t.Errorf("Game timing not propagated: %+v", row)
	}
}

// TestFlattenMatch_TeamSummaries tests the per-team aggregates and ordering
func TestFlattenMatch_TeamSummaries(t *testing.T) {
	_, _, summary := FlattenMatch(tenPlayerDoc(), tenPlayerPool())

	if len(summary.Teams) != 2 {
		t.Fatalf("Expected 2 team summaries, got %d", len(summary.Teams))
	}
	if summary.Teams[0].TeamID != 100 || summary.Teams[1].TeamID != 200 {
		t.Errorf("Expected teams ordered [100, 200], got [%d, %d]",
			summary.Teams[0].TeamID, summary.Teams[1].TeamID)
	}
	// Kills were 0..4 for team 100 and 5..9 for team 200.
	if summary.Teams[0].Kills != 10 {
		t.Errorf("Expected 10 kills for team 100, got %d", summary.Teams[0].Kills)
	}
	if summary.Teams[1].Kills != 35 {
		t.Errorf("Expected 35 kills for team 200, got %d", summary.Teams[1].Kills)
	}
}

// TestFlattenMatch_EnemySideFlags tests that per-team surrender/afk flags
// cross over onto the opposing rows
func TestFlattenMatch_EnemySideFlags(t *testing.T) {
	doc := tenPlayerDoc()
	// Enemy team surrendered early and had an afk.
	for i := 5; i < 10; i++ {
		doc.Data.Info.Participants[i].TeamEarlySurrendered = true
		doc.Data.Info.Participants[i].Challenges.HadAfkTeammate = 1
	}

	players, enemies, _ := FlattenMatch(doc, tenPlayerPool())

	for _, row := range players {
		if !row.EnemyEarlySurrender {
			t.Errorf("Player row %s should see enemy early surrender", row.PUUID)
		}
		if !row.EnemyHadAfk {
			t.Errorf("Player row %s should see enemy afk", row.PUUID)
		}
		if row.EarlySurrender {
			t.Errorf("Player row %s should not have own early surrender", row.PUUID)
		}
	}
	for _, row := range enemies {
		if !row.EarlySurrender || !row.HadAfkTeammate {
			t.Errorf("Enemy row %s should carry own-team flags", row.PUUID)
		}
		if row.EnemyEarlySurrender {
			t.Errorf("Enemy row %s should not see enemy early surrender", row.PUUID)
		}
	}
}

// TestFlattenMatch_FirstDeath tests that the first-blood victim maps to the
// first-death flag
func TestFlattenMatch_FirstDeath(t *testing.T) {
	doc := tenPlayerDoc()
	doc.Data.Info.Participants[2].FirstBloodVictim = true

	players, _, _ := FlattenMatch(doc, tenPlayerPool())

	for _, row := range players {
		want := row.PUUID == "c-puuid"
		if row.FirstDeath != want {
			t.Errorf("Row %s: FirstDeath = %v, want %v", row.PUUID, row.FirstDeath, want)
		}
	}
}

// TestFriendsTeam_SplitFriends tests the majority rule when tracked players
// sit on both teams
func TestFriendsTeam_SplitFriends(t *testing.T) {
	doc := tenPlayerDoc()
	// Move one tracked player to the enemy team.
	doc.Data.Info.Participants[4].TeamID = 200
	doc.Data.Info.Participants[4].Win = false

	players, enemies, summary := FlattenMatch(doc, tenPlayerPool())

	if summary.FriendsTeamID != 100 {
		t.Errorf("Expected majority team 100, got %d", summary.FriendsTeamID)
	}
	// The defector is still a tracked player row, just not on the friends team.
	if len(players) != 5 || len(enemies) != 5 {
		t.Fatalf("Expected 5/5 split, got %d/%d", len(players), len(enemies))
	}
	for _, row := range players {
		if row.PUUID == "e-puuid" && row.OnFriendsTeam {
			t.Error("Defector should not count as on the friends team")
		}
	}
}
