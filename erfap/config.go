package erfap

// Config is the immutable configuration bundle for a Processor, covering
// every policy toggle named in SPEC_FULL.md §6. A Config must not be mutated
// after it is passed to New; Processor treats it as read-only for the
// lifetime of the pip.
type Config struct {
	// IgnoreCodeCoverage excludes code-coverage-instrumentation artifacts
	// (.pdb, .nls, .dll) from observations when true.
	IgnoreCodeCoverage bool

	// ExistingDirectoryProbesAsEnumerations treats a probe of an existing
	// directory as an enumeration for flag-merging purposes.
	ExistingDirectoryProbesAsEnumerations bool

	// IgnoreUndeclaredAccessesUnderSharedOpaques skips recording events for
	// paths under a shared-opaque root that are not in the pip's known input
	// set. This is an "unsafe" mode: see SPEC_FULL.md §9 open questions.
	IgnoreUndeclaredAccessesUnderSharedOpaques bool

	// ProbeDirectorySymlinkAsDirectory treats Probe/EnumerationProbe accesses
	// to a directory symlink as directory accesses for the purposes of
	// should_treat_directory_reparse_point_as_file.
	ProbeDirectorySymlinkAsDirectory bool

	// DoNotApplyAllowListToDynamicOutputs short-circuits shared-opaque write
	// attribution to "shared-opaque output=true, matchType=NoMatch" without
	// consulting the AllowListReporter at all. See DESIGN.md for the
	// resolution of whether this suppresses uncacheable-access reporting
	// (it does).
	DoNotApplyAllowListToDynamicOutputs bool

	// EnableFullReparsePointResolving is the global default for full
	// reparse-point resolution; a manifest entry may request resolution even
	// when this is false (see ManifestPolicy). The manifest's own
	// IgnoreFullReparsePointResolving() overrides this when true (see
	// ManifestView).
	EnableFullReparsePointResolving bool

	// IncrementalTools is an ordered list of filename-suffix atoms used to
	// recognize incremental-output-preserving tools by their process path.
	IncrementalTools []string
}

// PipDeclaration is the immutable, pip-scoped input a Processor is
// constructed with: its declared outputs and whether it is incremental.
type PipDeclaration struct {
	// StaticOutputs are the pip's declared static output paths. Accesses to
	// these paths are recorded in accessesByPath for lookup but never
	// promoted to observations (spec invariant 6).
	StaticOutputs []PathID

	// SharedOpaqueRoots are the pip's declared shared-opaque output
	// directory roots. This set is fixed at Processor construction (spec
	// invariant 6) and determines the initial (empty) key set of
	// dynamicWriteAccesses.
	SharedOpaqueRoots []PathID

	// ExclusiveOpaqueOutputs are the pip's declared exclusive-opaque output
	// directories, consulted only to decide whether a rejected shared-opaque
	// candidate should still be force-attributed (§4.4 step 8).
	ExclusiveOpaqueOutputs []PathID

	// AllowsUndeclaredSourceReads is true when the pip permits reading
	// undeclared source files, a precondition for CreatedDirectories
	// tracking (§4.4 step 2).
	AllowsUndeclaredSourceReads bool

	// IsIncrementalOutputPreserving is true when the pip is an
	// incremental-tool pip whose enumerations and probes of its own outputs
	// are material and must not be excluded as noise.
	IsIncrementalOutputPreserving bool
}
