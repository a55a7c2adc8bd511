package main

import (
	"github.com/buildcore/erfap/erfap"
	"github.com/buildcore/erfap/erfap/internal/pathtable"
)

// manifestView is an in-memory erfap.ManifestView built from a scenario's
// Manifest rows, keyed by the interned accessed path.
type manifestView struct {
	byPath                  map[erfap.PathID]manifestRow
	ignoreFullReparsePoints bool
}

type manifestRow struct {
	manifestPath erfap.PathID
	policy       erfap.ManifestPolicy
}

func newManifestView(table *pathtable.Table, rows []ManifestEntry, ignoreFullReparsePoints bool) (*manifestView, error) {
	v := &manifestView{
		byPath:                  make(map[erfap.PathID]manifestRow, len(rows)),
		ignoreFullReparsePoints: ignoreFullReparsePoints,
	}

	for _, row := range rows {
		id, err := table.Create(row.Path)
		if err != nil {
			return nil, err
		}

		manifestID, err := table.Create(row.ManifestPath)
		if err != nil {
			return nil, err
		}

		v.byPath[id] = manifestRow{
			manifestPath: manifestID,
			policy:       erfap.ManifestPolicy{RequestsFullReparsePointResolution: row.RequestsFullReparsePointResolution},
		}
	}

	return v, nil
}

func (v *manifestView) FindManifestPathFor(path erfap.PathID) (erfap.PathID, erfap.ManifestPolicy, bool) {
	row, ok := v.byPath[path]
	if !ok {
		return erfap.InvalidPathID, erfap.ManifestPolicy{}, false
	}

	return row.manifestPath, row.policy, true
}

func (v *manifestView) IgnoreFullReparsePointResolving() bool {
	return v.ignoreFullReparsePoints
}

// pipGraphView is an in-memory erfap.PipGraphFilesystemView built from a
// scenario's OutputDirectories rows.
type pipGraphView struct {
	underOutput map[erfap.PathID]bool // value: sharedOpaque
}

func newPipGraphView(table *pathtable.Table, rows []OutputDirDoc) (*pipGraphView, error) {
	v := &pipGraphView{underOutput: make(map[erfap.PathID]bool, len(rows))}

	for _, row := range rows {
		id, err := table.Create(row.Path)
		if err != nil {
			return nil, err
		}

		v.underOutput[id] = row.SharedOpaque
	}

	return v, nil
}

func (v *pipGraphView) LatestFileArtifactForPath(erfap.PathID) (erfap.Artifact, bool) {
	return erfap.Artifact{}, false
}

func (v *pipGraphView) IsPathUnderOutputDirectory(path erfap.PathID) (bool, bool) {
	shared, ok := v.underOutput[path]
	return ok, ok && shared
}

// semanticExpander is an in-memory erfap.SemanticPathExpander: every interned
// path is valid and non-system unless explicitly listed in the scenario's
// SystemPaths/InvalidPaths.
type semanticExpander struct {
	system  map[erfap.PathID]struct{}
	invalid map[erfap.PathID]struct{}
}

func newSemanticExpander(table *pathtable.Table, systemPaths, invalidPaths []string) (*semanticExpander, error) {
	e := &semanticExpander{
		system:  make(map[erfap.PathID]struct{}, len(systemPaths)),
		invalid: make(map[erfap.PathID]struct{}, len(invalidPaths)),
	}

	for _, p := range systemPaths {
		id, err := table.Create(p)
		if err != nil {
			return nil, err
		}

		e.system[id] = struct{}{}
	}

	for _, p := range invalidPaths {
		id, err := table.Create(p)
		if err != nil {
			return nil, err
		}

		e.invalid[id] = struct{}{}
	}

	return e, nil
}

func (e *semanticExpander) InfoFor(path erfap.PathID) (bool, bool) {
	_, isInvalid := e.invalid[path]
	_, isSystem := e.system[path]

	return !isInvalid, isSystem
}

// sandboxFSView is an in-memory erfap.SandboxFilesystemView built from a
// scenario's CreatedDirectories list.
type sandboxFSView struct {
	created map[erfap.PathID]struct{}
}

func newSandboxFSView(table *pathtable.Table, paths []string) (*sandboxFSView, error) {
	v := &sandboxFSView{created: make(map[erfap.PathID]struct{}, len(paths))}

	for _, p := range paths {
		id, err := table.Create(p)
		if err != nil {
			return nil, err
		}

		v.created[id] = struct{}{}
	}

	return v, nil
}

func (v *sandboxFSView) ExistsCreatedDirectoryInOutputFilesystem(path erfap.PathID) bool {
	_, ok := v.created[path]
	return ok
}

func internPaths(table *pathtable.Table, paths []string) ([]erfap.PathID, error) {
	ids := make([]erfap.PathID, 0, len(paths))

	for _, p := range paths {
		id, err := table.Create(p)
		if err != nil {
			return nil, err
		}

		ids = append(ids, id)
	}

	return ids, nil
}

func internPathSet(table *pathtable.Table, paths []string) (map[erfap.PathID]struct{}, error) {
	set := make(map[erfap.PathID]struct{}, len(paths))

	for _, p := range paths {
		id, err := table.Create(p)
		if err != nil {
			return nil, err
		}

		set[id] = struct{}{}
	}

	return set, nil
}
