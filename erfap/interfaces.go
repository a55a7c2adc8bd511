package erfap

// PathID is an opaque, interned path identifier. The zero PathID is invalid
// and never denotes a real path.
type PathID uint32

// InvalidPathID is the zero value, used to mean "no manifest path"/"no parent".
const InvalidPathID PathID = 0

// PathInterner interns path strings into compact ids and answers structural
// queries over them (parent, root, bottom-up ancestor walk, string
// expansion). It is an external collaborator: erfap depends only on this
// interface, never on path/filepath directly, so that all back-edges from a
// path to its ancestors go through the interner rather than forming a heap
// cycle (see SPEC_FULL.md §9).
type PathInterner interface {
	// Create interns path, returning a stable PathID for it.
	Create(path string) (PathID, error)

	// Name returns the final path component for id.
	Name(id PathID) string

	// Parent returns id's parent and true, or the zero PathID and false if id
	// is a root.
	Parent(id PathID) (PathID, bool)

	// Root returns the root ancestor of id (itself, if id is already a root).
	Root(id PathID) PathID

	// AncestorsBottomUp returns id itself followed by its ancestors, nearest
	// first, ending at the root. The first element is always id: callers
	// that want to skip id itself (e.g. shared-opaque attribution when only
	// the manifest path is known) do so explicitly.
	AncestorsBottomUp(id PathID) []PathID

	// Expand returns the absolute path string for id.
	Expand(id PathID) string

	// Less reports whether a sorts before b under the comparator this
	// interner was constructed with. It must define a total order, used to
	// key Result.SortedObservationsByPath.
	Less(a, b PathID) bool
}

// Artifact is an opaque handle to a build artifact, returned by
// PipGraphFilesystemView.LatestFileArtifactForPath. erfap never inspects its
// contents; it is only threaded through to downstream consumers.
type Artifact struct {
	// ID identifies the artifact in the pip graph's own namespace.
	ID string
}

// SandboxFilesystemView answers filesystem questions against the sandbox's
// output view (as opposed to the pip graph's declared-output view).
type SandboxFilesystemView interface {
	// ExistsCreatedDirectoryInOutputFilesystem reports whether path exists as
	// a directory in the sandbox's output filesystem and was newly created
	// during this pip's execution.
	ExistsCreatedDirectoryInOutputFilesystem(path PathID) bool
}

// PipGraphFilesystemView answers "is this path an output of any pip" and
// "is this path in an output directory" questions against the pip graph.
type PipGraphFilesystemView interface {
	// LatestFileArtifactForPath returns the most recent known artifact at
	// path, if any.
	LatestFileArtifactForPath(path PathID) (Artifact, bool)

	// IsPathUnderOutputDirectory reports whether path is under a declared
	// output directory, and if so, whether that directory is shared-opaque
	// (as opposed to exclusive-opaque).
	IsPathUnderOutputDirectory(path PathID) (under bool, sharedOpaque bool)
}

// ManifestPolicy carries the policy flags attached to a manifest path.
type ManifestPolicy struct {
	// RequestsFullReparsePointResolution is true when the manifest entry at
	// this path opts into full reparse-point resolution even when the global
	// configuration default does not.
	RequestsFullReparsePointResolution bool
}

// ManifestView answers manifest-path lookups: the nearest ancestor of an
// accessed path for which sandbox policy is explicitly defined.
type ManifestView interface {
	// FindManifestPathFor returns the manifest path and policy for path, or
	// ok=false if no manifest entry applies (a "manifest miss", recovered
	// locally as "not under shared opaque").
	FindManifestPathFor(path PathID) (manifestPath PathID, policy ManifestPolicy, ok bool)

	// IgnoreFullReparsePointResolving is the manifest's global override: when
	// true, full reparse-point resolution never applies, regardless of
	// Config.EnableFullReparsePointResolving or any per-path ManifestPolicy.
	IgnoreFullReparsePointResolving() bool
}

// AllowListMatch is the three-variant verdict returned by an
// AllowListReporter for a single event.
type AllowListMatch int

const (
	// AllowListNoMatch means the allow-list has no exception for this event.
	AllowListNoMatch AllowListMatch = iota

	// AllowListMatchCacheable means the allow-list permits this event and the
	// pip remains cacheable.
	AllowListMatchCacheable

	// AllowListMatchNotCacheable means the allow-list permits this event but
	// the pip must be treated as uncacheable as a result.
	AllowListMatchNotCacheable
)

// AllowListReporter is the external allow-list matcher. Match must be a pure,
// synchronous, allocation-light function of event: it is consulted from the
// hot path of Processor.Add and must never block or perform I/O (spec §5).
type AllowListReporter interface {
	// Match classifies event against the allow-list.
	Match(event AccessEvent) AllowListMatch

	// AddAndReportUncacheable records that event matched the allow-list with
	// match, for later retrieval by the caller (e.g. to surface a build
	// warning). It must not affect classification outcomes.
	AddAndReportUncacheable(event AccessEvent, match AllowListMatch)
}

// SemanticPathExpander answers whether a path is valid and/or a system path,
// used to exclude injectable/empty accesses from unknown or system mounts.
type SemanticPathExpander interface {
	// InfoFor reports whether path is a valid, resolvable path and whether it
	// belongs to a system mount.
	InfoFor(path PathID) (valid bool, isSystem bool)
}

// Logger receives structured facts the classifier chooses not to treat as
// part of its return value (path-parse failures, events with no resolvable
// path, uncacheable allow-list matches). Events that the classifier excludes
// for other reasons (system or invalid mounts, coverage artifacts, tool temp
// files) are not logged. A nil Logger is valid and silently drops
// every call — the core must never depend on logging for correctness.
type Logger interface {
	// Debug logs a low-severity structured fact. kvs is an alternating
	// key/value list, as with log/slog.
	Debug(msg string, kvs ...any)

	// Warn logs a higher-severity structured fact that a caller may want to
	// surface to a build user.
	Warn(msg string, kvs ...any)
}

// nopLogger is used whenever a nil Logger is supplied to New.
type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Warn(string, ...any)  {}
