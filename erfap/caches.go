package erfap

// Caches holds per-pip memo tables that let the Processor avoid re-running
// the more expensive classification checks once a (process, path) pair's
// outcome is already known. Caches are owned exclusively by one Processor and
// are discarded with it; they are never shared between pips (§4.7).
type Caches struct {
	// incrementalToolByProcess memoizes Classifier.matchesIncrementalTool by
	// process path, since the same process typically accesses many paths
	// within a pip.
	incrementalToolByProcess map[string]bool

	// excludedTempFilePairs memoizes Classifier.isSpecialToolTempFile by
	// (process path, path) pair, so a pip that repeatedly touches the same
	// tool-specific temp file only runs the suffix/regex checks once.
	excludedTempFilePairs map[tempFileKey]bool
}

// tempFileKey is the memoization key for excludedTempFilePairs.
type tempFileKey struct {
	processPath string
	path        string
}

// newCaches constructs empty per-pip caches, sized for a typical pip's
// working set.
func newCaches() *Caches {
	return &Caches{
		incrementalToolByProcess: make(map[string]bool, 8),
		excludedTempFilePairs:    make(map[tempFileKey]bool, 32),
	}
}

// incrementalToolMatch returns whether processPath matches the configured
// incremental-tools suffix list, memoized by process path.
func (c *Caches) incrementalToolMatch(processPath string, classifier *Classifier) bool {
	if v, ok := c.incrementalToolByProcess[processPath]; ok {
		return v
	}

	v := classifier.matchesIncrementalTool(processPath)
	c.incrementalToolByProcess[processPath] = v

	return v
}

// isExcludedTempFile returns whether (processPath, path) is a known
// tool-specific temp-file exclusion, memoized per pair. On a cache miss it
// runs the classifier's pattern checks and stores the result.
func (c *Caches) isExcludedTempFile(event AccessEvent, classifier *Classifier) bool {
	key := tempFileKey{processPath: event.ProcessPath, path: event.Path}
	if v, ok := c.excludedTempFilePairs[key]; ok {
		return v
	}

	v := classifier.isSpecialToolTempFile(event)
	c.excludedTempFilePairs[key] = v

	return v
}
