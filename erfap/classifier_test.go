package erfap

import "testing"

// fakeManifestView is a minimal ManifestView for classifier-level unit
// tests: every path not explicitly registered is a manifest miss.
type fakeManifestView struct {
	entries                 map[PathID]ManifestPolicy
	ignoreFullReparsePoints bool
}

func (f *fakeManifestView) FindManifestPathFor(path PathID) (PathID, ManifestPolicy, bool) {
	policy, ok := f.entries[path]
	if !ok {
		return InvalidPathID, ManifestPolicy{}, false
	}

	return path, policy, true
}

func (f *fakeManifestView) IgnoreFullReparsePointResolving() bool {
	return f.ignoreFullReparsePoints
}

// fakeExpander always reports paths valid and non-system unless explicitly
// flagged otherwise.
type fakeExpander struct {
	invalid map[PathID]bool
	system  map[PathID]bool
}

func (f *fakeExpander) InfoFor(path PathID) (bool, bool) {
	return !f.invalid[path], f.system[path]
}

func newTestClassifier(cfg Config) *Classifier {
	return newClassifier(cfg, &fakeManifestView{entries: map[PathID]ManifestPolicy{}}, &fakeExpander{})
}

func TestClassifier_IsCoverageArtifact(t *testing.T) {
	cases := map[string]bool{
		"/obj/foo.pdb":   true,
		"/obj/foo.nls":   true,
		"/obj/foo.dll":   true,
		"/obj/foo.obj":   false,
		"/obj/foo.dllx":  false,
	}

	for path, want := range cases {
		if got := isCoverageArtifact(path); got != want {
			t.Errorf("isCoverageArtifact(%q) = %v, want %v", path, got, want)
		}
	}
}

func TestClassifier_ShouldInclude_IgnoreCodeCoverage(t *testing.T) {
	c := newTestClassifier(Config{IgnoreCodeCoverage: true})

	event := AccessEvent{RequestedAccess: AccessProbe, Status: AccessAllowed, Path: "/obj/foo.pdb"}
	pip := PipDeclaration{}

	if c.shouldInclude(event, pip, 1, false) {
		t.Fatalf("expected coverage artifact excluded when IgnoreCodeCoverage is set")
	}
}

func TestClassifier_ShouldInclude_EnumerationProbeExcludedByDefault(t *testing.T) {
	c := newTestClassifier(Config{})

	event := AccessEvent{RequestedAccess: AccessEnumerationProbe, Status: AccessAllowed, Path: "/src/a"}
	pip := PipDeclaration{IsIncrementalOutputPreserving: false}

	if c.shouldInclude(event, pip, 1, false) {
		t.Fatalf("expected EnumerationProbe excluded for a non-incremental pip")
	}
}

func TestClassifier_ShouldInclude_EnumerationProbeIncludedForIncrementalTool(t *testing.T) {
	c := newTestClassifier(Config{IncrementalTools: []string{"tup.exe"}})

	event := AccessEvent{
		RequestedAccess: AccessEnumerationProbe,
		Status:          AccessAllowed,
		Path:            "/src/a",
		ProcessPath:     `C:\bin\tup.exe`,
	}
	pip := PipDeclaration{IsIncrementalOutputPreserving: true}

	if !c.shouldInclude(event, pip, 1, false) {
		t.Fatalf("expected EnumerationProbe included for incremental-output-preserving pip with matching tool")
	}
}

func TestClassifier_ShouldInclude_ExcludedTempFile(t *testing.T) {
	c := newTestClassifier(Config{})

	event := AccessEvent{RequestedAccess: AccessWrite, Status: AccessAllowed, Path: "/obj/x.tmp", ProcessPath: "csc.exe"}
	pip := PipDeclaration{}

	if c.shouldInclude(event, pip, 1, true) {
		t.Fatalf("expected event excluded when isExcludedTempFile=true")
	}
}

func TestClassifier_ShouldInclude_SystemMountExcluded(t *testing.T) {
	manifest := &fakeManifestView{entries: map[PathID]ManifestPolicy{}}
	expander := &fakeExpander{system: map[PathID]bool{7: true}}
	c := newClassifier(Config{}, manifest, expander)

	event := AccessEvent{RequestedAccess: AccessProbe, Status: AccessAllowed, Path: "/proc/1"}
	pip := PipDeclaration{}

	if c.shouldInclude(event, pip, 7, false) {
		t.Fatalf("expected system-mount path excluded")
	}
}

func TestClassifier_ShouldInclude_DirCreateOrRemoveExcluded(t *testing.T) {
	c := newTestClassifier(Config{})

	event := AccessEvent{
		RequestedAccess: AccessWrite,
		Status:          AccessAllowed,
		Path:            "/out/newdir",
		FlagsAndAttrs:   FlagDirectory,
		OpenedAttrs:     FlagDirectory,
	}
	pip := PipDeclaration{}

	if c.shouldInclude(event, pip, 1, false) {
		t.Fatalf("expected directory create/remove excluded from shouldInclude")
	}
}

func TestIsRCTempName(t *testing.T) {
	cases := map[string]bool{
		"RC1234": true,
		"rcABCD": true,
		"RC123":  false, // too short
		"RC1234.tmp": false,
		"XX1234": false,
	}

	for name, want := range cases {
		if got := isRCTempName(name); got != want {
			t.Errorf("isRCTempName(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestIsMTTempName(t *testing.T) {
	if !isMTTempName("RCX0001.tmp") {
		t.Fatalf("expected RCX0001.tmp to match")
	}
	if isMTTempName("RC0001.tmp") {
		t.Fatalf("expected RC0001.tmp (missing X) to not match")
	}
}

func TestIsTracelogDepFile(t *testing.T) {
	if !isTracelogDepFile("_buildc_dep_out.pass1") {
		t.Fatalf("expected match")
	}
	if isTracelogDepFile("_buildc_dep_out.pass") {
		t.Fatalf("expected no match without a trailing pass number")
	}
}

func TestClassifier_IsSpecialToolTempFile(t *testing.T) {
	c := newTestClassifier(Config{})

	cases := []struct {
		name    string
		event   AccessEvent
		matches bool
	}{
		{"csc tmp", AccessEvent{ProcessPath: `C:\bin\csc.exe`, Path: `C:\obj\x.tmp`}, true},
		{"csc non-tmp", AccessEvent{ProcessPath: `C:\bin\csc.exe`, Path: `C:\obj\x.obj`}, false},
		{"rc temp name", AccessEvent{ProcessPath: `C:\bin\rc.exe`, Path: `C:\tmp\RC1A2B`}, true},
		{"mt temp name", AccessEvent{ProcessPath: `C:\bin\mt.exe`, Path: `C:\tmp\RCX0001.tmp`}, true},
		{"cc family pdb", AccessEvent{ProcessPath: `C:\bin\CC1.exe`, Path: `C:\obj\x.pdb`}, true},
		{"tracelog dep file", AccessEvent{ProcessPath: `C:\bin\tracelog.exe`, Path: `C:\obj\_buildc_dep_out.pass2`}, true},
		{"unrelated tool", AccessEvent{ProcessPath: `C:\bin\other.exe`, Path: `C:\obj\x.tmp`}, false},
	}

	for _, tc := range cases {
		if got := c.isSpecialToolTempFile(tc.event); got != tc.matches {
			t.Errorf("%s: isSpecialToolTempFile() = %v, want %v", tc.name, got, tc.matches)
		}
	}
}

func TestClassifier_IsDirectoryLocation_TrailingSeparator(t *testing.T) {
	c := newTestClassifier(Config{})

	event := AccessEvent{Path: "/out/dir/"}
	if !c.isDirectoryLocation(event, false) {
		t.Fatalf("expected trailing separator to mark a directory location")
	}
}

func TestClassifier_IsDirectoryLocation_OpenedHandle(t *testing.T) {
	c := newTestClassifier(Config{})

	event := AccessEvent{Path: "/out/dir", OpenedAttrs: FlagDirectory}
	if !c.isDirectoryLocation(event, false) {
		t.Fatalf("expected directory handle to mark a directory location")
	}

	if c.isDirectoryLocation(event, true) {
		t.Fatalf("expected reparse-point override to suppress directory-location classification")
	}
}

func TestClassifier_FullReparsePointResolutionRequested_ManifestIgnoreOverridesConfigEnable(t *testing.T) {
	manifest := &fakeManifestView{entries: map[PathID]ManifestPolicy{}, ignoreFullReparsePoints: true}
	c := newClassifier(Config{EnableFullReparsePointResolving: true}, manifest, &fakeExpander{})

	if c.fullReparsePointResolutionRequested(1) {
		t.Fatalf("expected the manifest's global ignore flag to override Config.EnableFullReparsePointResolving")
	}
}

func TestClassifier_FullReparsePointResolutionRequested_ManifestPolicyRequestsIt(t *testing.T) {
	manifest := &fakeManifestView{entries: map[PathID]ManifestPolicy{1: {RequestsFullReparsePointResolution: true}}}
	c := newClassifier(Config{}, manifest, &fakeExpander{})

	if !c.fullReparsePointResolutionRequested(1) {
		t.Fatalf("expected a per-path manifest policy to request resolution even with Config disabled")
	}
}
