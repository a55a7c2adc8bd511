package erfap

import "sync"

// Result is the frozen, disposable bundle Processor.Freeze returns. Its
// collections are either single-owner handles to pooled objects or
// read-only-by-convention snapshots; Consumers may mutate them (this is
// deliberate — downstream components refine them further). Call Dispose
// exactly once when done to return pooled memory.
type Result struct {
	// AccessesByPath is the full map of every included path to its frozen
	// PathState, used for quick lookup regardless of whether the path ended
	// up in SortedObservationsByPath.
	AccessesByPath map[PathID]*PathState

	// SortedObservationsByPath is the canonical ordered view for
	// cache-fingerprinting: every included, non-shared-opaque,
	// non-static-output path, in the order given by the PathInterner's
	// comparator.
	SortedObservationsByPath []PathID

	// CreatedDirectories are paths where this pip created a new directory
	// (§4.4 step 2).
	CreatedDirectories []PathID

	// DynamicWriteAccesses maps each shared-opaque root to the paths written
	// under it and attributed to it. Every key present at construction
	// remains present at Freeze, even if its value set is empty (spec
	// invariant 6).
	DynamicWriteAccesses map[PathID][]PathID

	// FileExistenceDenials are paths with at least one surviving
	// FileExistenceBased-Denied-Write event that was not attributed to any
	// shared-opaque root (spec invariant 7).
	FileExistenceDenials map[PathID]struct{}

	// MaybeUnresolvedAbsentAccesses are paths that are still
	// absent-access-only and whose absence might not survive full
	// reparse-point resolution.
	MaybeUnresolvedAbsentAccesses map[PathID]struct{}

	// ExplicitlyReportedFileAccesses is the unfiltered set of every distinct
	// raw AccessEvent ever passed to Add, independent of classification
	// outcome, deduplicated by value (spec invariant 8).
	ExplicitlyReportedFileAccesses []AccessEvent

	pool *resultPool
}

// Dispose returns Result's pooled collections to their shared pool. After
// Dispose, the Result and everything it holds must not be read or written.
func (r *Result) Dispose() {
	if r.pool == nil {
		return
	}

	r.pool.release(r)
}

// resultPool is a process-wide, thread-safe pool of the major Result
// collections, keyed by nothing beyond the pool itself: the pooled map
// fields need no comparator identity, so one pool suffices.
// SortedObservationsByPath is the Processor's own slice and is not pooled.
type resultPool struct {
	accessesByPath       sync.Pool
	dynamicWriteAccesses sync.Pool
	pathSlices           sync.Pool
	eventSlices          sync.Pool
	pathSets             sync.Pool
}

var globalResultPool = &resultPool{
	accessesByPath:       sync.Pool{New: func() any { return make(map[PathID]*PathState) }},
	dynamicWriteAccesses: sync.Pool{New: func() any { return make(map[PathID][]PathID) }},
	pathSlices:           sync.Pool{New: func() any { s := make([]PathID, 0, 16); return &s }},
	eventSlices:          sync.Pool{New: func() any { s := make([]AccessEvent, 0, 16); return &s }},
	pathSets:             sync.Pool{New: func() any { return make(map[PathID]struct{}) }},
}

func (p *resultPool) getAccessesByPath() map[PathID]*PathState {
	return p.accessesByPath.Get().(map[PathID]*PathState)
}

func (p *resultPool) getDynamicWriteAccesses() map[PathID][]PathID {
	return p.dynamicWriteAccesses.Get().(map[PathID][]PathID)
}

func (p *resultPool) getPathSet() map[PathID]struct{} {
	return p.pathSets.Get().(map[PathID]struct{})
}

func (p *resultPool) release(r *Result) {
	clear(r.AccessesByPath)
	p.accessesByPath.Put(r.AccessesByPath)

	for k := range r.DynamicWriteAccesses {
		delete(r.DynamicWriteAccesses, k)
	}

	p.dynamicWriteAccesses.Put(r.DynamicWriteAccesses)

	clear(r.FileExistenceDenials)
	p.pathSets.Put(r.FileExistenceDenials)

	clear(r.MaybeUnresolvedAbsentAccesses)
	p.pathSets.Put(r.MaybeUnresolvedAbsentAccesses)
}
