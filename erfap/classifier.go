package erfap

import "strings"

// Classifier holds the pure, per-pip-configuration decision functions used to
// decide whether a reported access should be included in observations and,
// if so, how it should be classified. All methods are pure functions of the
// event plus the immutable configuration captured at construction — safe to
// call repeatedly and to memoize in (processPath, path) form within a pip
// (see Caches).
type Classifier struct {
	cfg      Config
	manifest ManifestView
	expander SemanticPathExpander
}

// newClassifier constructs a Classifier bound to cfg and the pip's external
// views. It holds no mutable state of its own.
func newClassifier(cfg Config, manifest ManifestView, expander SemanticPathExpander) *Classifier {
	return &Classifier{cfg: cfg, manifest: manifest, expander: expander}
}

// shouldInclude decides whether event should be folded into observations at
// all.
//
// Precondition (asserted by the caller, Processor.Add): event.Status ==
// AccessAllowed || event.Method == MethodFileExistenceBased. A violation
// indicates an upstream bug and is not this function's concern to recover
// from.
//
// isSpecialToolTempFile is deliberately not consulted here — the Processor
// consults its Caches first and falls back to Classifier.isSpecialToolTempFile
// only on a cache miss, per §4.7; shouldInclude takes the outcome as
// isExcludedTempFile so it stays a pure function of its arguments.
func (c *Classifier) shouldInclude(event AccessEvent, pip PipDeclaration, pathID PathID, isExcludedTempFile bool) bool {
	if event.RequestedAccess.Has(AccessEnumerationProbe) && !event.RequestedAccess.Has(AccessEnumerate) {
		if !(pip.IsIncrementalOutputPreserving && c.matchesIncrementalTool(event.ProcessPath)) {
			return false
		}
	}

	if event.Path == "" {
		// A path that never resolved past the manifest path cannot be parsed
		// into a concrete host path; caller logs and excludes.
		return false
	}

	if c.cfg.IgnoreCodeCoverage && isCoverageArtifact(event.Path) {
		return false
	}

	if isExcludedTempFile {
		return false
	}

	if event.IsDirCreateOrRemove() {
		return false
	}

	if valid, isSystem := c.expander.InfoFor(pathID); !valid || isSystem {
		return false
	}

	return true
}

// isCoverageArtifact reports whether path names a code-coverage
// instrumentation artifact excluded under IgnoreCodeCoverage.
func isCoverageArtifact(path string) bool {
	for _, suffix := range []string{".pdb", ".nls", ".dll"} {
		if strings.HasSuffix(path, suffix) {
			return true
		}
	}

	return false
}

// isSpecialToolTempFile recognizes the fixed per-tool temp-file patterns of
// §4.1: csc/cvtres/rc/mt/CC*/tracelog dep-files. Each pattern is a pure
// function of the process path and the accessed path.
func (c *Classifier) isSpecialToolTempFile(event AccessEvent) bool {
	process := strings.ToLower(baseName(event.ProcessPath))
	path := event.Path

	switch {
	case process == "csc.exe" || process == "cvtres.exe" || process == "resonexe.exe":
		return strings.HasSuffix(strings.ToLower(path), ".tmp")
	case process == "rc.exe":
		return isRCTempName(baseName(path))
	case process == "mt.exe":
		return isMTTempName(baseName(path))
	case strings.HasPrefix(process, "cc") && strings.HasSuffix(process, ".exe"):
		return strings.HasSuffix(strings.ToLower(path), ".pdb")
	case process == "build.exe" || process == "tracelog.exe":
		return isTracelogDepFile(baseName(path))
	default:
		return false
	}
}

// isRCTempName matches rc.exe's temp-file names: "RC" (any case) followed by
// four more characters, six characters in total, with no extension.
func isRCTempName(name string) bool {
	if len(name) != 6 || strings.Contains(name, ".") {
		return false
	}

	return strings.HasPrefix(strings.ToUpper(name), "RC")
}

// isMTTempName matches mt.exe's "RCX*.tmp" pattern.
func isMTTempName(name string) bool {
	upper := strings.ToUpper(name)

	return strings.HasPrefix(upper, "RCX") && strings.HasSuffix(upper, ".TMP")
}

// isTracelogDepFile matches Build.exe/tracelog's
// "_buildc_dep_out.pass<N>" temp dependency file shape.
func isTracelogDepFile(name string) bool {
	const prefix = "_buildc_dep_out.pass"

	return strings.HasPrefix(name, prefix) && len(name) > len(prefix)
}

func baseName(path string) string {
	if path == "" {
		return ""
	}

	idx := strings.LastIndexAny(path, `/\`)
	if idx < 0 {
		return path
	}

	return path[idx+1:]
}

// matchesIncrementalTool reports whether processPath names a tool on the
// configured incremental-tools suffix list. This is pure and is also what
// Caches.incrementalToolMatch memoizes per process path.
func (c *Classifier) matchesIncrementalTool(processPath string) bool {
	lower := strings.ToLower(processPath)
	for _, suffix := range c.cfg.IncrementalTools {
		if strings.HasSuffix(lower, strings.ToLower(suffix)) {
			return true
		}
	}

	return false
}

// isDirectoryLocation implements §4.2: true if the reported path ends with a
// separator, or if the opened handle is a directory and no reparse-point
// override applies.
func (c *Classifier) isDirectoryLocation(event AccessEvent, treatReparsePointAsFile bool) bool {
	if strings.HasSuffix(event.Path, "/") || strings.HasSuffix(event.Path, `\`) {
		return true
	}

	return event.OpenedHandleIsDirectory(treatReparsePointAsFile)
}

// shouldTreatDirectoryReparsePointAsFile implements the Windows-specific
// predicate of §4.2. On platforms without reparse points
// (platformDirectoryReparsePointAsFileSupported == false) it always reports
// false, which makes isDirectoryLocation above reduce to "handle is a
// directory" as SPEC_FULL.md §4.2 requires.
func (c *Classifier) shouldTreatDirectoryReparsePointAsFile(event AccessEvent, pathID PathID, dirSymlinksAsDirs map[PathID]struct{}) bool {
	if !platformDirectoryReparsePointAsFileSupported {
		return false
	}

	if !event.FlagsAndAttrs.Has(FlagReparsePoint) {
		return false
	}

	requestsOpenReparsePoint := event.FlagsAndAttrs.Has(FlagOpenReparsePoint)
	if requestsOpenReparsePoint && !event.RequestedAccess.Has(AccessWrite) {
		return false
	}

	if _, explicit := dirSymlinksAsDirs[pathID]; explicit {
		return false
	}

	isProbeShaped := event.RequestedAccess.Has(AccessProbe) || event.RequestedAccess.Has(AccessEnumerationProbe)
	if isProbeShaped && c.cfg.ProbeDirectorySymlinkAsDirectory {
		return false
	}

	return c.fullReparsePointResolutionRequested(pathID)
}

// fullReparsePointResolutionRequested reports whether full reparse-point
// resolution applies to pathID: the manifest's global
// IgnoreFullReparsePointResolving() overrides everything else when true;
// otherwise it is requested either globally (Config) or by the path's own
// ManifestPolicy.
func (c *Classifier) fullReparsePointResolutionRequested(pathID PathID) bool {
	if c.manifest.IgnoreFullReparsePointResolving() {
		return false
	}

	if c.cfg.EnableFullReparsePointResolving {
		return true
	}

	_, policy, ok := c.manifest.FindManifestPathFor(pathID)

	return ok && policy.RequestsFullReparsePointResolution
}
