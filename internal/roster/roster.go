// Package roster loads the operator-maintained account map and derives the
// pool tag that partitions every downstream artifact.
package roster

import (
	"fmt"
	"hash/fnv"
	"os"
	"sort"
	"strings"

	json "github.com/goccy/go-json"
)

// SeasonPool is the reserved tag for the fixed-window season roster.
const SeasonPool = "season"

// Roster maps persona name to its riot handles ("name#tag").
type Roster map[string][]string

// Load reads a roster file (UTF-8 JSON, persona -> [handle, ...]).
func Load(path string) (Roster, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read roster %s: %w", path, err)
	}

	var r Roster
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parse roster %s: %w", path, err)
	}
	if len(r) == 0 {
		return nil, fmt.Errorf("roster %s is empty", path)
	}
	return r, nil
}

// Personas returns the persona names in sorted order.
func (r Roster) Personas() []string {
	names := make([]string, 0, len(r))
	for name := range r {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// PoolTag derives the 8-hex-digit pool identifier: a stable FNV-1a hash over
// the sorted persona set. The same personas always map to the same tag
// regardless of map iteration order.
func (r Roster) PoolTag() string {
	h := fnv.New32a()
	for _, name := range r.Personas() {
		h.Write([]byte(name))
		h.Write([]byte{0})
	}
	return fmt.Sprintf("%08x", h.Sum32())
}

// SplitHandle splits a "name#tag" riot handle.
func SplitHandle(handle string) (gameName, tagLine string, err error) {
	idx := strings.LastIndex(handle, "#")
	if idx <= 0 || idx == len(handle)-1 {
		return "", "", fmt.Errorf("malformed riot handle %q, want name#tag", handle)
	}
	return handle[:idx], handle[idx+1:], nil
}
