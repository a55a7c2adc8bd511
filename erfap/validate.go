package erfap

import (
	"errors"
	"fmt"
)

// validateConstruction validates the user-controlled inputs to New.
//
// This function is the primary "input boundary" for the erfap package. The
// rest of the implementation assumes that validated fields satisfy their
// basic invariants (non-nil collaborators, valid and distinct shared-opaque
// roots); any violation found after construction indicates a bug and
// surfaces as a ContractViolationError instead (see errors.go).
func validateConstruction(cfg Config, pip PipDeclaration, manifest ManifestView, expander SemanticPathExpander, reporter AllowListReporter, pipGraph PipGraphFilesystemView, interner PathInterner) error {
	errs := make([]error, 0, 8)

	errs = append(errs, validateCollaborators(manifest, expander, reporter, pipGraph, interner)...)
	errs = append(errs, validateSharedOpaqueRoots(pip.SharedOpaqueRoots)...)

	return errors.Join(errs...)
}

func validateCollaborators(manifest ManifestView, expander SemanticPathExpander, reporter AllowListReporter, pipGraph PipGraphFilesystemView, interner PathInterner) []error {
	var errs []error

	if manifest == nil {
		errs = append(errs, errors.New("erfap: manifest view is nil"))
	}

	if expander == nil {
		errs = append(errs, errors.New("erfap: semantic path expander is nil"))
	}

	if reporter == nil {
		errs = append(errs, errors.New("erfap: allow-list reporter is nil"))
	}

	if pipGraph == nil {
		errs = append(errs, errors.New("erfap: pip graph filesystem view is nil"))
	}

	if interner == nil {
		errs = append(errs, errors.New("erfap: path interner is nil"))
	}

	return errs
}

func validateSharedOpaqueRoots(roots []PathID) []error {
	var errs []error

	seen := make(map[PathID]struct{}, len(roots))
	for _, r := range roots {
		if r == InvalidPathID {
			errs = append(errs, errors.New("erfap: shared-opaque root is the invalid PathID"))
			continue
		}

		if _, dup := seen[r]; dup {
			errs = append(errs, fmt.Errorf("erfap: duplicate shared-opaque root %d", r))
		}

		seen[r] = struct{}{}
	}

	return errs
}
