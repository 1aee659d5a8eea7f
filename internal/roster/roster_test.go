package roster

import (
	"os"
	"path/filepath"
	"regexp"
	"testing"
)

// TestLoad tests reading a roster file
func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roster.json")
	content := `{"alice": ["Alice#EUW", "AliceSmurf#EUW"], "bob": ["Bob#123"]}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	r, err := Load(path)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(r) != 2 {
		t.Errorf("Expected 2 personas, got %d", len(r))
	}
	if len(r["alice"]) != 2 {
		t.Errorf("Expected 2 handles for alice, got %d", len(r["alice"]))
	}
}

// TestLoad_Empty tests that an empty roster is rejected
func TestLoad_Empty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roster.json")
	if err := os.WriteFile(path, []byte(`{}`), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); err == nil {
		t.Error("Expected error for empty roster")
	}
}

// TestPersonas tests sorted persona enumeration
func TestPersonas(t *testing.T) {
	r := Roster{"charlie": nil, "alice": nil, "bob": nil}
	got := r.Personas()
	want := []string{"alice", "bob", "charlie"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Expected %v, got %v", want, got)
		}
	}
}

// TestPoolTag tests that the pool tag is stable, 8 hex digits, and depends
// only on the persona set
func TestPoolTag(t *testing.T) {
	a := Roster{"alice": {"Alice#EUW"}, "bob": {"Bob#123"}}
	b := Roster{"bob": {"TotallyDifferent#XYZ"}, "alice": nil}
	c := Roster{"alice": nil, "bob": nil, "carol": nil}

	if !regexp.MustCompile(`^[0-9a-f]{8}$`).MatchString(a.PoolTag()) {
		t.Errorf("Expected 8 hex digits, got %q", a.PoolTag())
	}
	if a.PoolTag() != b.PoolTag() {
		t.Error("Expected same tag for same persona set regardless of handles")
	}
	if a.PoolTag() == c.PoolTag() {
		t.Error("Expected different tag for different persona set")
	}
}

// TestSplitHandle tests handle parsing including names that contain '#'
func TestSplitHandle(t *testing.T) {
	cases := []struct {
		handle   string
		gameName string
		tagLine  string
		wantErr  bool
	}{
		{"Alice#EUW", "Alice", "EUW", false},
		{"We#ird#123", "We#ird", "123", false},
		{"NoTag", "", "", true},
		{"#EUW", "", "", true},
		{"Alice#", "", "", true},
	}

	for _, tc := range cases {
		gameName, tagLine, err := SplitHandle(tc.handle)
		if tc.wantErr {
			if err == nil {
				t.Errorf("%q: expected error", tc.handle)
			}
			continue
		}
		if err != nil {
			t.Errorf("%q: unexpected error: %v", tc.handle, err)
			continue
		}
		if gameName != tc.gameName || tagLine != tc.tagLine {
			t.Errorf("%q: got (%q, %q), want (%q, %q)", tc.handle, gameName, tagLine, tc.gameName, tc.tagLine)
		}
	}
}
