package erfap

// RequestedAccess is a flag set describing what a sandboxed process asked to do
// to a path. Multiple bits may be set on a single AccessEvent (for example a
// Probe that also Enumerates).
//
// The zero value is invalid; every reported event carries at least one bit.
type RequestedAccess uint8

const (
	// AccessRead grants or requests read access to file content.
	AccessRead RequestedAccess = 1 << iota

	// AccessWrite grants or requests write access to file content or metadata.
	AccessWrite

	// AccessProbe is a metadata-only existence/attribute check (stat-shaped).
	AccessProbe

	// AccessEnumerate lists the members of a directory.
	AccessEnumerate

	// AccessEnumerationProbe is a directory-membership probe: checking whether
	// one specific name exists within a directory, without a full listing.
	AccessEnumerationProbe
)

// Has reports whether all bits in mask are set.
func (r RequestedAccess) Has(mask RequestedAccess) bool { return r&mask == mask }

// Any reports whether any bit in mask is set.
func (r RequestedAccess) Any(mask RequestedAccess) bool { return r&mask != 0 }

// AccessStatus is the sandbox's allow/deny verdict for a reported access.
//
// The zero value is invalid.
type AccessStatus int

const (
	// AccessAllowed means the sandbox permitted the operation to proceed.
	AccessAllowed AccessStatus = iota + 1

	// AccessDenied means the sandbox blocked the operation.
	AccessDenied
)

// AccessMethod describes how the sandbox arrived at its Status verdict.
//
// The zero value is invalid.
type AccessMethod int

const (
	// MethodPolicy means the verdict came from static policy (manifest rules).
	MethodPolicy AccessMethod = iota + 1

	// MethodFileExistenceBased means the verdict depended on whether the path
	// existed at access time (used for allow-list reconsideration of denied
	// writes under shared opaque directories).
	MethodFileExistenceBased

	// MethodOther covers sandbox-specific decision methods not otherwise
	// distinguished by this classifier (e.g. ptrace-based heuristics).
	MethodOther
)

// OSFlags carries the subset of native open/create flags the classifier needs
// to distinguish files from directories and detect reparse points.
type OSFlags uint8

const (
	// FlagOpenReparsePoint means the operation explicitly asked to open the
	// reparse point itself rather than following it.
	FlagOpenReparsePoint OSFlags = 1 << iota

	// FlagDirectory means the opened handle refers to a directory.
	FlagDirectory

	// FlagReparsePoint means the path is a reparse point (symlink, junction,
	// mount point) on platforms that have them.
	FlagReparsePoint
)

// Has reports whether all bits in mask are set.
func (f OSFlags) Has(mask OSFlags) bool { return f&mask == mask }

// AccessEvent is an immutable record of a single sandbox-reported file access.
//
// AccessEvent values are safe to copy and to use as map keys (all fields are
// comparable); the Processor deduplicates them by value within a path's event
// set.
type AccessEvent struct {
	// RequestedAccess is the flag set of what was requested (Read/Write/Probe/
	// Enumerate/EnumerationProbe).
	RequestedAccess RequestedAccess

	// Status is the sandbox's allow/deny verdict.
	Status AccessStatus

	// Method is how the sandbox reached Status.
	Method AccessMethod

	// Path is the raw path string as reported by the sandbox. It may be empty
	// if the sandbox could only resolve a manifest path.
	Path string

	// ManifestPath is the interned id of the nearest policy-bearing ancestor
	// of Path. It is the zero PathID if no manifest entry applies.
	ManifestPath PathID

	// ProcessPath is the path of the process that performed the access, used
	// for tool-specific temp-file heuristics and incremental-tool matching.
	ProcessPath string

	// FlagsAndAttrs carries the native open-time flags (OpenReparsePoint,
	// Directory, ReparsePoint).
	FlagsAndAttrs OSFlags

	// OpenedAttrs carries the native attributes of the opened file or
	// directory, independent of how it was opened.
	OpenedAttrs OSFlags

	// Error is the native error code associated with the access, used to
	// detect absent-access (PathNotFound/FileNotFound).
	Error NativeError
}

// NativeError is a small closed set of native error codes the classifier cares
// about; all other native errors are represented as ErrorOther.
type NativeError int

const (
	// ErrorNone means the access reported no error.
	ErrorNone NativeError = iota

	// ErrorPathNotFound means an intermediate directory component did not exist.
	ErrorPathNotFound

	// ErrorFileNotFound means the final path component did not exist.
	ErrorFileNotFound

	// ErrorOther covers any other native error code.
	ErrorOther
)

// IsDirCreateOrRemove reports whether this event represents a directory
// create or remove operation (as opposed to a file write or a directory
// content write).
func (e AccessEvent) IsDirCreateOrRemove() bool {
	return e.RequestedAccess.Has(AccessWrite) && e.FlagsAndAttrs.Has(FlagDirectory) && e.OpenedAttrs.Has(FlagDirectory)
}

// IsDirEffectivelyCreated reports whether this event represents the
// successful creation of a new directory (a write that resulted in a
// directory now existing where FlagDirectory attributes are present).
func (e AccessEvent) IsDirEffectivelyCreated() bool {
	return e.Status == AccessAllowed && e.RequestedAccess.Has(AccessWrite) && e.OpenedAttrs.Has(FlagDirectory)
}

// OpenedHandleIsDirectory reports whether the opened handle is a directory,
// subject to the caller-supplied predicate that decides whether a directory
// reparse point should instead be treated as a file (see
// shouldTreatDirectoryReparsePointAsFile).
func (e AccessEvent) OpenedHandleIsDirectory(treatReparsePointAsFile bool) bool {
	if !e.OpenedAttrs.Has(FlagDirectory) {
		return false
	}

	return !treatReparsePointAsFile
}

// IsAbsentError reports whether Error indicates the path did not exist at
// access time.
func (e AccessEvent) IsAbsentError() bool {
	return e.Error == ErrorPathNotFound || e.Error == ErrorFileNotFound
}
