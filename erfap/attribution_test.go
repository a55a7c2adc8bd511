package erfap

import "testing"

// fakeInterner is a minimal PathInterner for attribution-level unit tests:
// paths are preconfigured as an explicit parent chain, id 1 being the
// shallowest root.
type fakeInterner struct {
	parent map[PathID]PathID // no entry means "is a root"
}

func (f *fakeInterner) Create(string) (PathID, error) { panic("not used by attribution tests") }
func (f *fakeInterner) Name(PathID) string             { panic("not used by attribution tests") }

func (f *fakeInterner) Parent(id PathID) (PathID, bool) {
	p, ok := f.parent[id]
	return p, ok
}

func (f *fakeInterner) Root(id PathID) PathID {
	for {
		p, ok := f.parent[id]
		if !ok {
			return id
		}
		id = p
	}
}

func (f *fakeInterner) AncestorsBottomUp(id PathID) []PathID {
	result := []PathID{id}
	for {
		p, ok := f.parent[id]
		if !ok {
			return result
		}
		result = append(result, p)
		id = p
	}
}

func (f *fakeInterner) Expand(id PathID) string { panic("not used by attribution tests") }
func (f *fakeInterner) Less(a, b PathID) bool   { return a < b }

// Path ids for attribution tests: 1=/out, 2=/out/a, 3=/out/a/b, 4=/out/a/b/c.
func newAttributionInterner() *fakeInterner {
	return &fakeInterner{parent: map[PathID]PathID{
		2: 1,
		3: 2,
		4: 3,
	}}
}

func TestAttributeToSharedOpaque_NoRootsConfigured(t *testing.T) {
	interner := newAttributionInterner()
	event := AccessEvent{ManifestPath: 3}

	_, ok := attributeToSharedOpaque(event, map[PathID]struct{}{}, interner)
	if ok {
		t.Fatalf("expected no attribution when no shared-opaque roots are configured")
	}
}

func TestAttributeToSharedOpaque_InvalidManifestPath(t *testing.T) {
	interner := newAttributionInterner()
	roots := map[PathID]struct{}{1: {}}
	event := AccessEvent{ManifestPath: InvalidPathID}

	_, ok := attributeToSharedOpaque(event, roots, interner)
	if ok {
		t.Fatalf("expected no attribution when ManifestPath is invalid")
	}
}

func TestAttributeToSharedOpaque_SingleRoot(t *testing.T) {
	// S3: shared opaques = {/out} (id 1). Event manifest = /out/a (id 2), one
	// level below the root, so the bottom-up walk reaches root 1.
	interner := newAttributionInterner()
	roots := map[PathID]struct{}{1: {}}
	event := AccessEvent{ManifestPath: 2, Path: "/out/a/x"}

	root, ok := attributeToSharedOpaque(event, roots, interner)
	if !ok || root != 1 {
		t.Fatalf("expected attribution to root 1, got root=%v ok=%v", root, ok)
	}
}

func TestAttributeToSharedOpaque_InnermostWins(t *testing.T) {
	// S4: shared opaques = {/out/a (id 2), /out/a/b (id 3)}. Event manifest =
	// /out/a/b (id 3), event path known.
	interner := newAttributionInterner()
	roots := map[PathID]struct{}{2: {}, 3: {}}
	event := AccessEvent{ManifestPath: 3, Path: "/out/a/b/c"}

	root, ok := attributeToSharedOpaque(event, roots, interner)
	if !ok || root != 3 {
		t.Fatalf("expected innermost root 3 to win, got root=%v ok=%v", root, ok)
	}
}

func TestAttributeToSharedOpaque_PathEmptySkipsFirstAncestor(t *testing.T) {
	// When only the manifest path is known (event.Path == ""), attribution
	// must not attribute to the manifest path itself even if it is a root —
	// it is only the containing ancestor that can be attributed to.
	interner := newAttributionInterner()
	roots := map[PathID]struct{}{2: {}, 1: {}}
	event := AccessEvent{ManifestPath: 2, Path: ""}

	root, ok := attributeToSharedOpaque(event, roots, interner)
	if !ok || root != 1 {
		t.Fatalf("expected attribution to skip manifest path itself and land on root 1, got root=%v ok=%v", root, ok)
	}
}

func TestAttributeToSharedOpaque_NoEnclosingRoot(t *testing.T) {
	interner := newAttributionInterner()
	roots := map[PathID]struct{}{} // no roots at all under this ancestor chain
	roots[PathID(99)] = struct{}{}
	event := AccessEvent{ManifestPath: 3, Path: "/out/a/b/c"}

	_, ok := attributeToSharedOpaque(event, roots, interner)
	if ok {
		t.Fatalf("expected no attribution when no ancestor is a declared shared-opaque root")
	}
}
