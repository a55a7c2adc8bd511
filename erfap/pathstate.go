package erfap

// PathState is the rolling, per-path observation record the Processor
// maintains while a pip executes. It is created on first inclusion of a path
// and mutated only through Processor.Add/Remove; it becomes read-only once
// Processor.Freeze returns.
type PathState struct {
	// events is the ordered, deduplicated set of events observed for this
	// path. Insertion order is preserved; duplicates (equal AccessEvent
	// values) are folded into a single entry.
	events     []AccessEvent
	eventIndex map[AccessEvent]int

	// flags is the accumulated ObservationFlags lattice for this path.
	flags ObservationFlags

	// sawNonProbe is sticky-on bookkeeping for the FileProbe merge rule (see
	// mergeObservationFlags): once true, FlagFileProbe can never be set again
	// for this path.
	sawNonProbe bool

	// hasDirectoryReparsePointTreatedAsFile is sticky-on: once a directory
	// reparse point has been treated as a file for this path, it stays true.
	hasDirectoryReparsePointTreatedAsFile bool

	// isSharedOpaqueOutput is sticky-on: once true, the path is claimed by a
	// shared-opaque directory and no further processing of it occurs.
	isSharedOpaqueOutput bool

	// isAbsentAccess starts true and is cleared by any included
	// non-enumeration access that did not report PathNotFound/FileNotFound.
	isAbsentAccess bool

	// isStaticOutputOnly marks a path as a declared static output that was
	// recorded for lookup (accessesByPath) but never promoted to an
	// observation (spec invariant 6).
	isStaticOutputOnly bool
}

// newPathState creates the zero-value PathState for a freshly accessed path:
// absent-access until proven otherwise, no flags set.
func newPathState() *PathState {
	return &PathState{
		eventIndex:     make(map[AccessEvent]int),
		isAbsentAccess: true,
	}
}

// Flags returns the path's accumulated ObservationFlags.
func (s *PathState) Flags() ObservationFlags { return s.flags }

// IsSharedOpaqueOutput reports whether the path has been claimed by a
// shared-opaque output directory.
func (s *PathState) IsSharedOpaqueOutput() bool { return s.isSharedOpaqueOutput }

// IsAbsentAccess reports whether every included non-enumeration event for
// this path reported an absent-path native error.
func (s *PathState) IsAbsentAccess() bool { return s.isAbsentAccess }

// HasDirectoryReparsePointTreatedAsFile reports whether this path ever had a
// directory reparse point treated as a file.
func (s *PathState) HasDirectoryReparsePointTreatedAsFile() bool {
	return s.hasDirectoryReparsePointTreatedAsFile
}

// Events returns the path's deduplicated event set in arrival order. The
// returned slice must not be mutated by the caller.
func (s *PathState) Events() []AccessEvent { return s.events }

// clearAbsentAccess clears the sticky isAbsentAccess bit. It is one-way: once
// cleared, a path is never again considered absent-access-only, even if later
// events also report an absent-path error.
func (s *PathState) clearAbsentAccess() { s.isAbsentAccess = false }

// addEvent inserts event into the path's event set, deduplicating by value.
// Returns true if this was a new event (not previously recorded).
func (s *PathState) addEvent(event AccessEvent) bool {
	if _, ok := s.eventIndex[event]; ok {
		return false
	}

	s.eventIndex[event] = len(s.events)
	s.events = append(s.events, event)

	return true
}

// removeEvent removes event from the path's event set, if present.
func (s *PathState) removeEvent(event AccessEvent) {
	idx, ok := s.eventIndex[event]
	if !ok {
		return
	}

	s.events = append(s.events[:idx], s.events[idx+1:]...)
	delete(s.eventIndex, event)

	for e, i := range s.eventIndex {
		if i > idx {
			s.eventIndex[e] = i - 1
		}
	}
}

// applyClassification folds one event's classification outcome into the
// path's sticky state and ObservationFlags, per the merge rules in flags.go.
func (s *PathState) applyClassification(isProbe, isDirectoryLocation, hasEnumeration, directoryReparsePointTreatedAsFile bool) {
	sawNonProbeBefore := s.sawNonProbe

	if !isProbe {
		s.sawNonProbe = true
	}

	if directoryReparsePointTreatedAsFile {
		s.hasDirectoryReparsePointTreatedAsFile = true
	}

	s.flags = mergeObservationFlags(
		s.flags,
		isProbe,
		sawNonProbeBefore,
		isDirectoryLocation,
		hasEnumeration,
		s.hasDirectoryReparsePointTreatedAsFile,
	)
}
