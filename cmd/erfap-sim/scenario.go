package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/tailscale/hujson"

	"github.com/buildcore/erfap/erfap"
	"github.com/buildcore/erfap/erfap/internal/allowlist"
)

// Scenario is the HuJSON document shape cmd/erfap-sim drives a Processor
// from: a pip declaration, the policy views it is checked against, an
// allow-list, and the ordered list of events to feed it. Comments and
// trailing commas are tolerated (github.com/tailscale/hujson), matching the
// teacher's own config.go loading style (SPEC_FULL.md §4.9).
type Scenario struct {
	Config   ConfigDoc       `json:"config"`
	Pip      PipDoc          `json:"pip"`
	Manifest []ManifestEntry `json:"manifest,omitempty"`

	// IgnoreFullReparsePointResolving is the manifest's global override (see
	// erfap.ManifestView.IgnoreFullReparsePointResolving), not a Config field.
	IgnoreFullReparsePointResolving bool `json:"ignoreFullReparsePointResolving,omitempty"`

	OutputDirectories        []OutputDirDoc  `json:"outputDirectories,omitempty"`
	SystemPaths              []string        `json:"systemPaths,omitempty"`
	InvalidPaths             []string        `json:"invalidPaths,omitempty"`
	DirSymlinksAsDirectories []string        `json:"dirSymlinksAsDirectories,omitempty"`
	InputsUnderSharedOpaques []string        `json:"inputsUnderSharedOpaques,omitempty"`
	AllowList                []AllowListRule `json:"allowList,omitempty"`
	CreatedDirectories       []string        `json:"createdDirectories,omitempty"`
	Events                   []EventDoc      `json:"events"`
	RemoveEvents             []EventDoc      `json:"removeEvents,omitempty"`
}

// ConfigDoc mirrors erfap.Config's JSON shape. IgnoreFullReparsePointResolving
// is deliberately not here: SPEC_FULL.md §6 places that flag on the
// File-access manifest collaborator, not on Configuration, so it is read from
// Scenario.IgnoreFullReparsePointResolving instead.
type ConfigDoc struct {
	IgnoreCodeCoverage                        bool     `json:"ignoreCodeCoverage,omitempty"`
	ExistingDirectoryProbesAsEnumerations      bool     `json:"existingDirectoryProbesAsEnumerations,omitempty"`
	IgnoreUndeclaredAccessesUnderSharedOpaques bool     `json:"ignoreUndeclaredAccessesUnderSharedOpaques,omitempty"`
	ProbeDirectorySymlinkAsDirectory           bool     `json:"probeDirectorySymlinkAsDirectory,omitempty"`
	DoNotApplyAllowListToDynamicOutputs        bool     `json:"doNotApplyAllowListToDynamicOutputs,omitempty"`
	EnableFullReparsePointResolving            bool     `json:"enableFullReparsePointResolving,omitempty"`
	IncrementalTools                           []string `json:"incrementalTools,omitempty"`
}

func (c ConfigDoc) toConfig() erfap.Config {
	return erfap.Config{
		IgnoreCodeCoverage:                         c.IgnoreCodeCoverage,
		ExistingDirectoryProbesAsEnumerations:      c.ExistingDirectoryProbesAsEnumerations,
		IgnoreUndeclaredAccessesUnderSharedOpaques: c.IgnoreUndeclaredAccessesUnderSharedOpaques,
		ProbeDirectorySymlinkAsDirectory:           c.ProbeDirectorySymlinkAsDirectory,
		DoNotApplyAllowListToDynamicOutputs:        c.DoNotApplyAllowListToDynamicOutputs,
		EnableFullReparsePointResolving:            c.EnableFullReparsePointResolving,
		IncrementalTools:                           c.IncrementalTools,
	}
}

// PipDoc mirrors erfap.PipDeclaration, expressed as path strings that are
// interned when the scenario is built.
type PipDoc struct {
	StaticOutputs                 []string `json:"staticOutputs,omitempty"`
	SharedOpaqueRoots             []string `json:"sharedOpaqueRoots,omitempty"`
	ExclusiveOpaqueOutputs        []string `json:"exclusiveOpaqueOutputs,omitempty"`
	AllowsUndeclaredSourceReads   bool     `json:"allowsUndeclaredSourceReads,omitempty"`
	IsIncrementalOutputPreserving bool     `json:"isIncrementalOutputPreserving,omitempty"`
}

// ManifestEntry is one row of the scenario's ManifestView.
type ManifestEntry struct {
	Path                               string `json:"path"`
	ManifestPath                       string `json:"manifestPath"`
	RequestsFullReparsePointResolution bool   `json:"requestsFullReparsePointResolution,omitempty"`
}

// OutputDirDoc is one row of the scenario's PipGraphFilesystemView
// "is path under an output directory" table.
type OutputDirDoc struct {
	Path         string `json:"path"`
	SharedOpaque bool   `json:"sharedOpaque,omitempty"`
}

// AllowListRule is one row of the scenario's allow-list.
type AllowListRule struct {
	ProcessSuffix string `json:"processSuffix,omitempty"`
	PathGlob      string `json:"pathGlob"`
	Cacheable     bool   `json:"cacheable,omitempty"`
}

func (r AllowListRule) toEntry() allowlist.Entry {
	return allowlist.Entry{ProcessSuffix: r.ProcessSuffix, PathGlob: r.PathGlob, Cacheable: r.Cacheable}
}

// EventDoc is the JSON shape of an erfap.AccessEvent: enum fields are
// written as string/string-array tags rather than raw ints, so a
// hand-edited scenario file stays readable.
type EventDoc struct {
	RequestedAccess []string `json:"requestedAccess"`
	Status          string   `json:"status"`
	Method          string   `json:"method"`
	Path            string   `json:"path"`
	ManifestPath    string   `json:"manifestPath,omitempty"`
	ProcessPath     string   `json:"processPath,omitempty"`
	FlagsAndAttrs   []string `json:"flagsAndAttrs,omitempty"`
	OpenedAttrs     []string `json:"openedAttrs,omitempty"`
	Error           string   `json:"error,omitempty"`
}

func parseRequestedAccess(tags []string) (erfap.RequestedAccess, error) {
	var r erfap.RequestedAccess

	for _, tag := range tags {
		switch tag {
		case "Read":
			r |= erfap.AccessRead
		case "Write":
			r |= erfap.AccessWrite
		case "Probe":
			r |= erfap.AccessProbe
		case "Enumerate":
			r |= erfap.AccessEnumerate
		case "EnumerationProbe":
			r |= erfap.AccessEnumerationProbe
		default:
			return 0, fmt.Errorf("unknown requestedAccess tag %q", tag)
		}
	}

	return r, nil
}

func parseOSFlags(tags []string) (erfap.OSFlags, error) {
	var f erfap.OSFlags

	for _, tag := range tags {
		switch tag {
		case "OpenReparsePoint":
			f |= erfap.FlagOpenReparsePoint
		case "Directory":
			f |= erfap.FlagDirectory
		case "ReparsePoint":
			f |= erfap.FlagReparsePoint
		default:
			return 0, fmt.Errorf("unknown flag tag %q", tag)
		}
	}

	return f, nil
}

func parseStatus(tag string) (erfap.AccessStatus, error) {
	switch tag {
	case "", "Allowed":
		return erfap.AccessAllowed, nil
	case "Denied":
		return erfap.AccessDenied, nil
	default:
		return 0, fmt.Errorf("unknown status %q", tag)
	}
}

func parseMethod(tag string) (erfap.AccessMethod, error) {
	switch tag {
	case "", "Policy":
		return erfap.MethodPolicy, nil
	case "FileExistenceBased":
		return erfap.MethodFileExistenceBased, nil
	case "Other":
		return erfap.MethodOther, nil
	default:
		return 0, fmt.Errorf("unknown method %q", tag)
	}
}

func parseNativeError(tag string) (erfap.NativeError, error) {
	switch tag {
	case "", "None":
		return erfap.ErrorNone, nil
	case "PathNotFound":
		return erfap.ErrorPathNotFound, nil
	case "FileNotFound":
		return erfap.ErrorFileNotFound, nil
	case "Other":
		return erfap.ErrorOther, nil
	default:
		return 0, fmt.Errorf("unknown error code %q", tag)
	}
}

// LoadScenario reads and standardizes a HuJSON scenario document from path.
func LoadScenario(path string) (Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Scenario{}, fmt.Errorf("reading scenario %s: %w", path, err)
	}

	standardized, err := hujson.Standardize(data)
	if err != nil {
		return Scenario{}, fmt.Errorf("parsing scenario %s: %w", path, err)
	}

	var s Scenario

	decoder := json.NewDecoder(bytes.NewReader(standardized))
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(&s); err != nil {
		return Scenario{}, fmt.Errorf("parsing scenario %s: %w", path, err)
	}

	return s, nil
}
