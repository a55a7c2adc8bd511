package erfap

import "sort"

// Processor is the single-producer façade over one pip's file-access
// classification. A Processor must not be copied after first use and
// performs no internal locking: all Add/Remove/Freeze calls for one pip must
// be serialized by the caller (typically the sandbox's single reporting
// channel). Distinct Processors for distinct pips are safe to run
// concurrently on separate goroutines; they share only immutable inputs.
type Processor struct {
	noCopy noCopy

	cfg        Config
	pip        PipDeclaration
	manifest   ManifestView
	expander   SemanticPathExpander
	reporter   AllowListReporter
	pipGraph   PipGraphFilesystemView
	sandboxFS  SandboxFilesystemView // may be nil
	interner   PathInterner
	log        Logger
	classifier *Classifier
	caches     *Caches

	dirSymlinksAsDirs       map[PathID]struct{}
	inputsUnderSharedOpaque map[PathID]struct{}
	sharedOpaqueRoots       map[PathID]struct{}

	accessesByPath         map[PathID]*PathState
	sortedObservations     []PathID
	createdDirectories     []PathID
	createdDirectorySet    map[PathID]struct{}
	dynamicWriteAccesses   map[PathID][]PathID
	dynamicWriteAccessSet  map[PathID]map[PathID]struct{}
	fileExistenceDenials   map[PathID]struct{}
	maybeUnresolvedAbsent  map[PathID]struct{}
	explicitlyReported     []AccessEvent
	explicitlyReportedSeen map[AccessEvent]struct{}
	staticOutputs          map[PathID]struct{}
	exclusiveOpaqueOutputs map[PathID]struct{}

	frozen bool
}

type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

// New constructs a Processor for one pip.
//
// cfg, pip, manifest, expander, dirSymlinksAsDirs, reporter,
// inputsUnderSharedOpaques, pipGraph, sandboxFS, and interner correspond
// exactly to SPEC_FULL.md §6's constructor signature; log is the Go-native
// ambient-stack addition from §4.8 and may be nil. sandboxFS may be nil if
// the pip does not permit undeclared source reads (it is only consulted in
// that case, per §4.4 step 2).
func New(
	cfg Config,
	pip PipDeclaration,
	manifest ManifestView,
	expander SemanticPathExpander,
	dirSymlinksAsDirs map[PathID]struct{},
	reporter AllowListReporter,
	inputsUnderSharedOpaques map[PathID]struct{},
	pipGraph PipGraphFilesystemView,
	sandboxFS SandboxFilesystemView,
	interner PathInterner,
	log Logger,
) (*Processor, error) {
	if err := validateConstruction(cfg, pip, manifest, expander, reporter, pipGraph, interner); err != nil {
		return nil, err
	}

	if log == nil {
		log = nopLogger{}
	}

	p := &Processor{
		cfg:                     cfg,
		pip:                     pip,
		manifest:                manifest,
		expander:                expander,
		reporter:                reporter,
		pipGraph:                pipGraph,
		sandboxFS:               sandboxFS,
		interner:                interner,
		log:                     log,
		classifier:              newClassifier(cfg, manifest, expander),
		caches:                  newCaches(),
		dirSymlinksAsDirs:       dirSymlinksAsDirs,
		inputsUnderSharedOpaque: inputsUnderSharedOpaques,
		sharedOpaqueRoots:       make(map[PathID]struct{}, len(pip.SharedOpaqueRoots)),
		accessesByPath:          make(map[PathID]*PathState),
		createdDirectorySet:     make(map[PathID]struct{}),
		dynamicWriteAccesses:    make(map[PathID][]PathID),
		dynamicWriteAccessSet:   make(map[PathID]map[PathID]struct{}),
		fileExistenceDenials:    make(map[PathID]struct{}),
		maybeUnresolvedAbsent:   make(map[PathID]struct{}),
		explicitlyReportedSeen:  make(map[AccessEvent]struct{}),
		staticOutputs:           make(map[PathID]struct{}, len(pip.StaticOutputs)),
		exclusiveOpaqueOutputs:  make(map[PathID]struct{}, len(pip.ExclusiveOpaqueOutputs)),
	}

	// Invariant 6: the set of shared-opaque roots is fixed at construction
	// and equals the initial (empty-valued) key set of dynamicWriteAccesses.
	for _, root := range pip.SharedOpaqueRoots {
		p.sharedOpaqueRoots[root] = struct{}{}
		p.dynamicWriteAccesses[root] = nil
		p.dynamicWriteAccessSet[root] = make(map[PathID]struct{})
	}

	for _, out := range pip.StaticOutputs {
		p.staticOutputs[out] = struct{}{}
	}

	for _, out := range pip.ExclusiveOpaqueOutputs {
		p.exclusiveOpaqueOutputs[out] = struct{}{}
	}

	return p, nil
}

// ExplicitlyReportedFileAccesses returns every distinct raw AccessEvent passed
// to Add so far, regardless of classification outcome, deduplicated by value.
func (p *Processor) ExplicitlyReportedFileAccesses() []AccessEvent {
	return p.explicitlyReported
}

// Add folds event into the processor's state per SPEC_FULL.md §4.4.
//
// Add panics with a *ContractViolationError if the Processor is already
// frozen.
func (p *Processor) Add(event AccessEvent) {
	if p.frozen {
		violatef("Add", "Add called after Freeze")
	}

	if event.Status != AccessAllowed && event.Method != MethodFileExistenceBased {
		violatef("Add", "event status=%v method=%v violates Allowed-or-FileExistenceBased precondition", event.Status, event.Method)
	}

	// Step 1: record the raw event, unfiltered, deduplicated by value so that
	// add(e); add(e) leaves this field unchanged (invariant 8).
	if _, already := p.explicitlyReportedSeen[event]; !already {
		p.explicitlyReportedSeen[event] = struct{}{}
		p.explicitlyReported = append(p.explicitlyReported, event)
	}

	var pathID PathID
	var parseErr error
	if event.Path != "" {
		pathID, parseErr = p.interner.Create(event.Path)
	}

	// Step 2: created-directory tracking.
	if parseErr == nil && event.Path != "" &&
		event.RequestedAccess.Has(AccessWrite) &&
		event.IsDirEffectivelyCreated() &&
		p.pip.AllowsUndeclaredSourceReads &&
		p.sandboxFS != nil &&
		p.sandboxFS.ExistsCreatedDirectoryInOutputFilesystem(pathID) {
		if _, already := p.createdDirectorySet[pathID]; !already {
			p.createdDirectorySet[pathID] = struct{}{}
			p.createdDirectories = append(p.createdDirectories, pathID)
		}
	}

	if parseErr != nil {
		p.log.Debug("erfap: path parse failure, excluding event", "path", event.Path, "error", parseErr)
		return
	}

	if event.Path == "" {
		p.log.Debug("erfap: event has no resolvable path, excluding", "manifestPath", event.ManifestPath)
		return
	}

	isExcludedTempFile := p.caches.isExcludedTempFile(event, p.classifier)
	if !p.classifier.shouldInclude(event, p.pip, pathID, isExcludedTempFile) {
		return
	}

	// Step 4: obtain or create PathState.
	state, existed := p.accessesByPath[pathID]
	isNewPath := !existed
	if isNewPath {
		state = newPathState()
		p.accessesByPath[pathID] = state
	}

	// Step 5: once claimed by a shared opaque, stop.
	if state.isSharedOpaqueOutput {
		return
	}

	// Step 6: static outputs are exists-only, never observations.
	if _, isStatic := p.staticOutputs[pathID]; isStatic {
		state.isStaticOutputOnly = true
		return
	}

	// Step 7: compute candidate flag updates.
	treatReparsePointAsFile := p.classifier.shouldTreatDirectoryReparsePointAsFile(event, pathID, p.dirSymlinksAsDirs)
	isDirLoc := p.classifier.isDirectoryLocation(event, treatReparsePointAsFile)

	isProbe := event.RequestedAccess.Has(AccessProbe) || event.RequestedAccess.Has(AccessEnumerationProbe)
	if isProbe && p.pip.IsIncrementalOutputPreserving && p.caches.incrementalToolMatch(event.ProcessPath, p.classifier) {
		isProbe = false // re-classified as non-probe: contributes to fingerprinting.
	}

	hasEnumeration := event.RequestedAccess.Has(AccessEnumerate)
	if p.cfg.ExistingDirectoryProbesAsEnumerations && isDirLoc &&
		(event.RequestedAccess.Has(AccessProbe) || event.RequestedAccess.Has(AccessEnumerationProbe)) {
		hasEnumeration = true
	}

	// Step 8: writes to files may be attributed to a shared-opaque root.
	isFileWrite := event.RequestedAccess.Has(AccessWrite) && !isDirLoc && !event.IsDirCreateOrRemove()
	if isFileWrite {
		if event.Method == MethodFileExistenceBased && event.Status == AccessDenied {
			p.fileExistenceDenials[pathID] = struct{}{}
		}

		// Note on step 9 ("rejected shared-opaque candidate; keep denial set
		// consistent"): this implementation only clears a path's denial entry
		// when it is explicitly Removed (§4.5) or later actually claimed by a
		// shared-opaque root (claimSharedOpaque below) — not merely because
		// one attribution attempt failed to find a root. See DESIGN.md for
		// why: a failed attribution does not prove the path is not a
		// shared-opaque candidate (SPEC_FULL.md's own S5 scenario has
		// attribution fail on the Denied event and still expects the denial
		// to survive until the caller's Remove+Add follow-up resolves it).
		if p.attributeWrite(event, pathID, state) {
			return
		}
	}

	// Step 10: unsafe ignore of undeclared accesses under shared opaques.
	if p.cfg.IgnoreUndeclaredAccessesUnderSharedOpaques {
		if under, shared := p.pipGraph.IsPathUnderOutputDirectory(pathID); under && shared {
			if _, isInput := p.inputsUnderSharedOpaque[pathID]; !isInput {
				return
			}
		}
	}

	// Step 11: merge flags.
	state.applyClassification(isProbe, isDirLoc, hasEnumeration, treatReparsePointAsFile)

	// Step 12: record the event.
	state.addEvent(event)

	// Step 13: absent-access tracking.
	if p.classifier.fullReparsePointResolutionRequested(pathID) && !hasEnumeration && state.isAbsentAccess {
		if event.IsAbsentError() {
			p.maybeUnresolvedAbsent[pathID] = struct{}{}
		} else {
			state.clearAbsentAccess()
			delete(p.maybeUnresolvedAbsent, pathID)
		}
	} else if !event.IsAbsentError() && !hasEnumeration {
		state.clearAbsentAccess()
	}

	// Step 14: insert into sorted observations on first inclusion.
	if isNewPath {
		p.insertSorted(pathID)
	}
}

// attributeWrite implements §4.3/§4.4 step 8: attempts to attribute event to
// its innermost owning shared-opaque root, consulting the allow-list and
// DoNotApplyAllowListToDynamicOutputs. Returns true if the path was claimed
// as a shared-opaque output (in which case the caller must not continue
// normal observation processing for it).
func (p *Processor) attributeWrite(event AccessEvent, pathID PathID, state *PathState) bool {
	if p.cfg.DoNotApplyAllowListToDynamicOutputs {
		root, ok := attributeToSharedOpaque(event, p.sharedOpaqueRoots, p.interner)
		if !ok {
			return false
		}

		p.claimSharedOpaque(pathID, root, state)

		return true
	}

	root, ok := attributeToSharedOpaque(event, p.sharedOpaqueRoots, p.interner)
	if !ok {
		return false
	}

	match := p.reporter.Match(event)
	if match != AllowListNoMatch {
		p.reporter.AddAndReportUncacheable(event, match)
	}

	if match == AllowListMatchNotCacheable {
		p.log.Warn("erfap: uncacheable allow-list match", "path", event.Path, "processPath", event.ProcessPath)
	}

	_, isExclusiveOpaque := p.exclusiveOpaqueOutputs[pathID]
	_, isStaticOutput := p.staticOutputs[pathID]

	if match == AllowListNoMatch || isStaticOutput || isExclusiveOpaque {
		p.claimSharedOpaque(pathID, root, state)
		return true
	}

	// Matched and not overridden: the allow-list deliberately permits this
	// write, so it is not attributed to root; the caller still records it as
	// a normal observation.
	return false
}

// claimSharedOpaque marks pathID as a shared-opaque output of root: it is
// removed from sortedObservations (if present), marked sticky-on, and added
// to dynamicWriteAccesses[root]. Per spec invariant 4, pathID must be
// strictly under root in the path hierarchy, which attributeToSharedOpaque's
// ancestor walk guarantees by construction.
func (p *Processor) claimSharedOpaque(pathID, root PathID, state *PathState) {
	state.isSharedOpaqueOutput = true

	p.removeSorted(pathID)
	delete(p.fileExistenceDenials, pathID)

	if _, already := p.dynamicWriteAccessSet[root][pathID]; !already {
		p.dynamicWriteAccessSet[root][pathID] = struct{}{}
		p.dynamicWriteAccesses[root] = append(p.dynamicWriteAccesses[root], pathID)
	}
}

// Remove implements §4.5: the only supported removal is a Write event
// decided by FileExistenceBased, driven by the external allow-list pass. Any
// other removal is a contract violation.
//
// Remove panics with a *ContractViolationError if the Processor is already
// frozen, or if event is not a FileExistenceBased Write.
func (p *Processor) Remove(event AccessEvent) {
	if p.frozen {
		violatef("Remove", "Remove called after Freeze")
	}

	if !event.RequestedAccess.Has(AccessWrite) || event.Method != MethodFileExistenceBased {
		violatef("Remove", "Remove only supports FileExistenceBased Write events, got requestedAccess=%v method=%v", event.RequestedAccess, event.Method)
	}

	if event.Path == "" {
		return
	}

	pathID, err := p.interner.Create(event.Path)
	if err != nil {
		return
	}

	state, ok := p.accessesByPath[pathID]
	if !ok {
		return
	}

	state.removeEvent(event)
	delete(p.fileExistenceDenials, pathID)
}

// Freeze finalizes the Processor and returns its Result. Freeze may be
// called exactly once; subsequent Add/Remove calls panic with a
// *ContractViolationError.
func (p *Processor) Freeze() *Result {
	if p.frozen {
		violatef("Freeze", "Freeze called more than once")
	}

	p.frozen = true

	denials := globalResultPool.getPathSet()
	for k := range p.fileExistenceDenials {
		denials[k] = struct{}{}
	}

	unresolved := globalResultPool.getPathSet()
	for k := range p.maybeUnresolvedAbsent {
		unresolved[k] = struct{}{}
	}

	dynamicWrites := globalResultPool.getDynamicWriteAccesses()
	for root, paths := range p.dynamicWriteAccesses {
		dynamicWrites[root] = paths
	}

	accesses := globalResultPool.getAccessesByPath()
	for k, v := range p.accessesByPath {
		accesses[k] = v
	}

	return &Result{
		AccessesByPath:                 accesses,
		SortedObservationsByPath:       p.sortedObservations,
		CreatedDirectories:             p.createdDirectories,
		DynamicWriteAccesses:           dynamicWrites,
		FileExistenceDenials:           denials,
		MaybeUnresolvedAbsentAccesses:  unresolved,
		ExplicitlyReportedFileAccesses: p.explicitlyReported,
		pool:                           globalResultPool,
	}
}

// insertSorted inserts pathID into sortedObservations at its correct
// position under the interner's comparator, keeping the slice sorted.
func (p *Processor) insertSorted(pathID PathID) {
	i := sort.Search(len(p.sortedObservations), func(i int) bool {
		return !p.interner.Less(p.sortedObservations[i], pathID)
	})

	p.sortedObservations = append(p.sortedObservations, InvalidPathID)
	copy(p.sortedObservations[i+1:], p.sortedObservations[i:])
	p.sortedObservations[i] = pathID
}

// removeSorted removes pathID from sortedObservations, if present.
func (p *Processor) removeSorted(pathID PathID) {
	for i, id := range p.sortedObservations {
		if id == pathID {
			p.sortedObservations = append(p.sortedObservations[:i], p.sortedObservations[i+1:]...)
			return
		}
	}
}
