package erfap

// attributeToSharedOpaque implements §4.3: a bottom-up walk of event's
// manifest-path ancestors, returning the innermost shared-opaque root that
// owns the write, or ok=false if none does.
//
// Precondition (caller-enforced, Processor.Add): event is a write to a
// non-directory path that is not a directory create/remove.
//
// Tie-break rationale: sandbox policies attach to sealed directories, so the
// manifest path is the nearest policy-bearing ancestor; walking bottom-up
// yields the smallest enclosing shared-opaque output directory (innermost
// wins), matching the depth-ordered winner selection in
// cmd/agent-sandbox/specificity.go's pickWinner/sortByMountOrder.
func attributeToSharedOpaque(event AccessEvent, sharedOpaqueRoots map[PathID]struct{}, interner PathInterner) (PathID, bool) {
	if len(sharedOpaqueRoots) == 0 {
		return InvalidPathID, false
	}

	if event.ManifestPath == InvalidPathID {
		return InvalidPathID, false
	}

	ancestors := interner.AncestorsBottomUp(event.ManifestPath)

	start := 0
	if event.Path == "" {
		// Only the manifest path is known: it may itself be the root, so
		// attribution starts at its *containing* ancestor. AncestorsBottomUp
		// lists the manifest path itself first, so skipping that one entry
		// keeps the manifest path from being attributed to itself.
		start = 1
	}

	for i := start; i < len(ancestors); i++ {
		if _, isRoot := sharedOpaqueRoots[ancestors[i]]; isRoot {
			return ancestors[i], true
		}
	}

	return InvalidPathID, false
}
