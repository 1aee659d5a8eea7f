package pipeline

import (
	"context"
	"net/http"
	"testing"

	"lolmetrics/internal/riot"
	"lolmetrics/internal/roster"
	"lolmetrics/internal/store"
)

// fakeAccounts resolves handles from a map; missing handles 404.
type fakeAccounts struct {
	puuids   map[string]string // "name#tag" -> puuid
	authFail bool
}

func (f *fakeAccounts) GetAccountByRiotID(_ context.Context, gameName, tagLine string) (*riot.AccountResponse, error) {
	if f.authFail {
		return nil, &riot.StatusError{Code: http.StatusForbidden, URL: "account"}
	}
	puuid, ok := f.puuids[gameName+"#"+tagLine]
	if !ok {
		return nil, &riot.StatusError{Code: http.StatusNotFound, URL: "account"}
	}
	return &riot.AccountResponse{PUUID: puuid, GameName: gameName, TagLine: tagLine}, nil
}

// fakeUsers records which write path was taken.
type fakeUsers struct {
	replaced []store.UserDoc
	upserted []store.UserDoc
}

func (f *fakeUsers) ReplaceAll(_ context.Context, docs []store.UserDoc) error {
	f.replaced = docs
	return nil
}

func (f *fakeUsers) UpsertSeason(_ context.Context, docs []store.UserDoc) error {
	f.upserted = docs
	return nil
}

// TestResolveRoster tests resolution with a multi-account persona
func TestResolveRoster(t *testing.T) {
	accounts := &fakeAccounts{puuids: map[string]string{
		"Alice#EUW": "a1",
		"Smurf#EUW": "a2",
		"Bob#123":   "b1",
	}}
	resolver := NewUsersResolver(accounts, &fakeUsers{})

	docs, err := resolver.ResolveRoster(context.Background(), roster.Roster{
		"alice": {"Alice#EUW", "Smurf#EUW"},
		"bob":   {"Bob#123"},
	})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("Expected 2 personas, got %d", len(docs))
	}
	// Personas() is sorted, so alice comes first.
	if docs[0].Persona != "alice" || len(docs[0].PUUIDs) != 2 {
		t.Errorf("Unexpected alice doc: %+v", docs[0])
	}
}

// TestResolveRoster_SkipsBadHandles tests that malformed and unresolvable
// handles are dropped without failing the stage
func TestResolveRoster_SkipsBadHandles(t *testing.T) {
	accounts := &fakeAccounts{puuids: map[string]string{"Alice#EUW": "a1"}}
	resolver := NewUsersResolver(accounts, &fakeUsers{})

	docs, err := resolver.ResolveRoster(context.Background(), roster.Roster{
		"alice": {"Alice#EUW", "malformed", "Gone#404"},
		"ghost": {"AlsoGone#404"},
	})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(docs) != 1 {
		t.Fatalf("Expected only alice, got %d docs", len(docs))
	}
	if len(docs[0].Accounts) != 1 {
		t.Errorf("Expected 1 resolved account, got %d", len(docs[0].Accounts))
	}
}

// TestResolveRoster_AuthErrorFatal tests that an auth failure aborts
// resolution instead of silently dropping personas
func TestResolveRoster_AuthErrorFatal(t *testing.T) {
	resolver := NewUsersResolver(&fakeAccounts{authFail: true}, &fakeUsers{})

	_, err := resolver.ResolveRoster(context.Background(), roster.Roster{
		"alice": {"Alice#EUW"},
	})
	if err == nil {
		t.Fatal("Expected error")
	}
	if !riot.IsAuthError(err) {
		t.Errorf("Expected auth error, got: %v", err)
	}
}

// TestUsersRun_SeasonUpserts tests that the season flag selects the upsert
// path instead of full replacement
func TestUsersRun_SeasonUpserts(t *testing.T) {
	accounts := &fakeAccounts{puuids: map[string]string{"Alice#EUW": "a1"}}
	users := &fakeUsers{}
	resolver := NewUsersResolver(accounts, users)
	r := roster.Roster{"alice": {"Alice#EUW"}}

	if _, err := resolver.Run(context.Background(), r, false); err != nil {
		t.Fatal(err)
	}
	if len(users.replaced) != 1 || users.upserted != nil {
		t.Error("Expected default pool to use full replacement")
	}

	users.replaced = nil
	if _, err := resolver.Run(context.Background(), r, true); err != nil {
		t.Fatal(err)
	}
	if len(users.upserted) != 1 || users.replaced != nil {
		t.Error("Expected season pool to use upserts")
	}
}

// TestParseMode tests CLI mode validation
func TestParseMode(t *testing.T) {
	for _, valid := range []string{"l0", "l1-l3", "full", "season"} {
		if _, err := ParseMode(valid); err != nil {
			t.Errorf("%q: unexpected error: %v", valid, err)
		}
	}
	if _, err := ParseMode("everything"); err == nil {
		t.Error("Expected error for unknown mode")
	}
}
