// Package pathtable is a reference implementation of erfap.PathInterner.
//
// It adapts the path-resolution logic the teacher repo uses to turn a mount
// pattern into a host path (tilde expansion, absolutization, cleaning — see
// cmd/agent-sandbox/path.go's ResolvePath) and the depth-based ancestor
// ordering it uses to sort mounts for overlay correctness (see
// cmd/agent-sandbox/specificity.go's pathDepth/sortByMountOrder) into an
// id-interning table: Create absolutizes and cleans a path and hands back a
// stable PathID; Parent/Root/AncestorsBottomUp/Less answer structural
// queries purely by comparing the interned strings, so erfap itself never
// imports path/filepath.
package pathtable

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/buildcore/erfap/erfap"
)

// Table interns absolute path strings into stable erfap.PathID values.
//
// Table is safe for concurrent use: Create may be called from multiple
// Processor goroutines sharing one Table across pips, matching the spec's
// "share only immutable inputs" concurrency model (the Table itself is
// mutable, but its mutation — interning a never-before-seen path — is
// idempotent and safe to race).
type Table struct {
	mu      sync.RWMutex
	byPath  map[string]erfap.PathID
	byID    []string // index 0 unused; erfap.InvalidPathID == 0
	workDir string
	homeDir string
}

// New constructs an empty Table. workDir and homeDir are used to resolve
// relative and "~"-prefixed paths passed to Create, mirroring ResolvePath's
// two resolution bases.
func New(workDir, homeDir string) *Table {
	return &Table{
		byPath:  make(map[string]erfap.PathID),
		byID:    make([]string, 1, 64), // byID[0] is the unused invalid slot
		workDir: workDir,
		homeDir: homeDir,
	}
}

// Create interns path, resolving it against the table's workDir/homeDir if
// it is not already absolute, and returns a stable PathID.
func (t *Table) Create(path string) (erfap.PathID, error) {
	if path == "" {
		return erfap.InvalidPathID, fmt.Errorf("pathtable: empty path")
	}

	resolved, err := t.resolve(path)
	if err != nil {
		return erfap.InvalidPathID, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if id, ok := t.byPath[resolved]; ok {
		return id, nil
	}

	id := erfap.PathID(len(t.byID))
	t.byID = append(t.byID, resolved)
	t.byPath[resolved] = id

	return id, nil
}

// resolve mirrors cmd/agent-sandbox/path.go's ResolvePath: "~" expands to
// homeDir, absolute paths are used as-is, relative paths resolve against
// workDir, and the result is always filepath.Clean-ed.
func (t *Table) resolve(pattern string) (string, error) {
	var resolved string

	switch {
	case pattern == "~":
		resolved = t.homeDir
	case strings.HasPrefix(pattern, "~/"):
		resolved = filepath.Join(t.homeDir, pattern[2:])
	case filepath.IsAbs(pattern):
		resolved = pattern
	default:
		resolved = filepath.Join(t.workDir, pattern)
	}

	return filepath.Clean(resolved), nil
}

// Name returns id's final path component.
func (t *Table) Name(id erfap.PathID) string {
	return filepath.Base(t.Expand(id))
}

// Parent returns id's parent and true, or the zero PathID and false if id is
// a filesystem root.
func (t *Table) Parent(id erfap.PathID) (erfap.PathID, bool) {
	path := t.Expand(id)
	parent := filepath.Dir(path)

	if parent == path {
		return erfap.InvalidPathID, false
	}

	parentID, err := t.Create(parent)
	if err != nil {
		return erfap.InvalidPathID, false
	}

	return parentID, true
}

// Root returns the root ancestor of id.
func (t *Table) Root(id erfap.PathID) erfap.PathID {
	current := id

	for {
		parent, ok := t.Parent(current)
		if !ok {
			return current
		}

		current = parent
	}
}

// AncestorsBottomUp returns id itself followed by each ancestor, nearest
// first, ending at the root.
func (t *Table) AncestorsBottomUp(id erfap.PathID) []erfap.PathID {
	result := []erfap.PathID{id}

	current := id
	for {
		parent, ok := t.Parent(current)
		if !ok {
			return result
		}

		result = append(result, parent)
		current = parent
	}
}

// Expand returns id's absolute path string.
func (t *Table) Expand(id erfap.PathID) string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if int(id) <= 0 || int(id) >= len(t.byID) {
		return ""
	}

	return t.byID[id]
}

// Less reports whether a's expanded path sorts before b's: shallower paths
// first, then lexically among paths of equal depth, matching the
// depth-then-alphabetical ordering
// cmd/agent-sandbox/specificity.go's sortByMountOrder uses for deterministic
// mount ordering — here repurposed to order Result.SortedObservationsByPath.
func (t *Table) Less(a, b erfap.PathID) bool {
	pa, pb := t.Expand(a), t.Expand(b)

	da, db := pathDepth(pa), pathDepth(pb)
	if da != db {
		return da < db
	}

	return pa < pb
}

// pathDepth counts path separators in a cleaned path, matching
// cmd/agent-sandbox/specificity.go's pathDepth.
func pathDepth(path string) int {
	cleaned := filepath.Clean(path)
	if cleaned == string(filepath.Separator) {
		return 0
	}

	return strings.Count(cleaned, string(filepath.Separator))
}

// SortIDs sorts ids in place using Less, for callers that want a
// deterministic iteration order without going through Result.
func SortIDs(t *Table, ids []erfap.PathID) {
	sort.Slice(ids, func(i, j int) bool { return t.Less(ids[i], ids[j]) })
}
