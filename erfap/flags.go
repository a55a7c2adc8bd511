package erfap

// ObservationFlags is the sticky flag lattice recorded per observed path. It
// is a fixed 3-bit set — a dynamic bitset library is deliberately not used
// here (see DESIGN.md).
//
// Merge rules (see mergeObservationFlags):
//   - FileProbe is sticky-off: once any non-probe access is observed for a
//     path, FileProbe stays off for the rest of that path's lifetime.
//   - Enumeration is sticky-on: once set, it stays set.
//   - DirectoryLocation is sticky-on, but is overridden off for the lifetime
//     of the path once HasDirectoryReparsePointTreatedAsFile is ever set.
type ObservationFlags uint8

const (
	// FlagNone is the empty flag set.
	FlagNone ObservationFlags = 0

	// FlagFileProbe marks a path as having only ever been probed (stat-shaped
	// metadata checks), never read, written, or enumerated in a way that
	// would make it a real observation.
	FlagFileProbe ObservationFlags = 1 << iota

	// FlagDirectoryLocation marks a path as being a directory location
	// (either because the reported path ends in a separator, or because the
	// opened handle was a directory and no reparse-point override applies).
	FlagDirectoryLocation

	// FlagEnumeration marks a path as having had its directory membership
	// enumerated, or probed in a configuration that treats existing-directory
	// probes as enumerations.
	FlagEnumeration
)

// Has reports whether all bits in mask are set.
func (f ObservationFlags) Has(mask ObservationFlags) bool { return f&mask == mask }

// mergeObservationFlags folds a single event's classification outcome into
// the flags accumulated so far for a path.
//
// sawNonProbeBefore is the path's own sticky bookkeeping (kept on PathState,
// not derivable from ObservationFlags alone — a freshly created path and a
// path whose FileProbe was already cleared are otherwise indistinguishable
// from the flags value alone). directoryReparsePointTreatedAsFile is likewise
// the path's sticky HasDirectoryReparsePointTreatedAsFile bit, including the
// current event. isDirectoryLocation and hasEnumeration describe the
// classification of the current event; prior is the path's accumulated
// flags before this event.
//
// The function is pure: identical arguments always produce the identical
// result, regardless of how many times or in what order it is called with
// equivalent (event, sawNonProbeBefore) pairs — this is what makes the
// per-path merge order-independent (spec invariant 8, "idempotence of
// duplicate add").
func mergeObservationFlags(prior ObservationFlags, isProbe, sawNonProbeBefore, isDirectoryLocation, hasEnumeration, directoryReparsePointTreatedAsFile bool) ObservationFlags {
	next := prior

	// FileProbe: sticky-off. Only ever set while every access observed so far
	// (including this one) has been a probe.
	if isProbe && !sawNonProbeBefore {
		next |= FlagFileProbe
	} else {
		next &^= FlagFileProbe
	}

	// DirectoryLocation: sticky-on, but forced off for the path's lifetime
	// once a directory-reparse-point-as-file override has ever fired.
	if directoryReparsePointTreatedAsFile {
		next &^= FlagDirectoryLocation
	} else if isDirectoryLocation {
		next |= FlagDirectoryLocation
	}

	// Enumeration: sticky-on.
	if hasEnumeration {
		next |= FlagEnumeration
	}

	return next
}
