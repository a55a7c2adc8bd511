// Command erfap-sim is a CLI harness for the erfap classifier: it loads a
// pip scenario (events + policy) from a HuJSON file, drives an erfap.Processor
// through it using reference erfap/internal/pathtable and
// erfap/internal/allowlist implementations, and prints the resulting
// Result. This is the "build system around the core" that exercises erfap
// at the interface boundaries the spec declares out of scope
// (SPEC_FULL.md §2).
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/pflag"

	"github.com/buildcore/erfap/erfap"
	"github.com/buildcore/erfap/erfap/internal/allowlist"
	"github.com/buildcore/erfap/erfap/internal/pathtable"
)

type runOptions struct {
	verbose            bool
	ignoreCodeCoverage bool
	coverageSet        bool
}

func main() {
	flags := pflag.NewFlagSet("erfap-sim", pflag.ExitOnError)

	watch := flags.Bool("watch", false, "re-run the scenario whenever it changes on disk")
	verbose := flags.Bool("verbose", false, "enable development-mode (human-readable) logging")
	ignoreCoverage := flags.Bool("ignore-code-coverage", false, "override config.ignoreCodeCoverage")

	flags.Parse(os.Args[1:])

	if flags.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: erfap-sim [--watch] [--verbose] [--ignore-code-coverage] <scenario.hujson>")
		os.Exit(2)
	}

	opts := runOptions{
		verbose:            *verbose,
		ignoreCodeCoverage: *ignoreCoverage,
		coverageSet:        flags.Changed("ignore-code-coverage"),
	}

	scenarioPath := flags.Arg(0)

	var err error
	if *watch {
		err = watchScenario(scenarioPath, opts)
	} else {
		err = runScenario(scenarioPath, opts)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "erfap-sim: %v\n", err)
		os.Exit(1)
	}
}

// runScenario loads, builds, and drives one pip to completion, printing its
// Result.
func runScenario(path string, opts runOptions) error {
	scenario, err := LoadScenario(path)
	if err != nil {
		return err
	}

	cfg := scenario.Config.toConfig()
	if opts.coverageSet {
		cfg.IgnoreCodeCoverage = opts.ignoreCodeCoverage
	}

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting working directory: %w", err)
	}

	home, err := os.UserHomeDir()
	if err != nil {
		home = cwd
	}

	table := pathtable.New(cwd, home)

	staticOutputs, err := internPaths(table, scenario.Pip.StaticOutputs)
	if err != nil {
		return err
	}

	sharedOpaqueRoots, err := internPaths(table, scenario.Pip.SharedOpaqueRoots)
	if err != nil {
		return err
	}

	exclusiveOpaqueOutputs, err := internPaths(table, scenario.Pip.ExclusiveOpaqueOutputs)
	if err != nil {
		return err
	}

	pip := erfap.PipDeclaration{
		StaticOutputs:                 staticOutputs,
		SharedOpaqueRoots:             sharedOpaqueRoots,
		ExclusiveOpaqueOutputs:        exclusiveOpaqueOutputs,
		AllowsUndeclaredSourceReads:   scenario.Pip.AllowsUndeclaredSourceReads,
		IsIncrementalOutputPreserving: scenario.Pip.IsIncrementalOutputPreserving,
	}

	manifest, err := newManifestView(table, scenario.Manifest, scenario.IgnoreFullReparsePointResolving)
	if err != nil {
		return err
	}

	pipGraph, err := newPipGraphView(table, scenario.OutputDirectories)
	if err != nil {
		return err
	}

	expander, err := newSemanticExpander(table, scenario.SystemPaths, scenario.InvalidPaths)
	if err != nil {
		return err
	}

	sandboxFS, err := newSandboxFSView(table, scenario.CreatedDirectories)
	if err != nil {
		return err
	}

	dirSymlinksAsDirs, err := internPathSet(table, scenario.DirSymlinksAsDirectories)
	if err != nil {
		return err
	}

	inputsUnderSharedOpaques, err := internPathSet(table, scenario.InputsUnderSharedOpaques)
	if err != nil {
		return err
	}

	entries := make([]allowlist.Entry, 0, len(scenario.AllowList))
	for _, rule := range scenario.AllowList {
		entries = append(entries, rule.toEntry())
	}

	reporter, err := allowlist.New(entries)
	if err != nil {
		return fmt.Errorf("building allow-list: %w", err)
	}

	log, syncLog, err := newZapLogger(opts.verbose)
	if err != nil {
		return fmt.Errorf("building logger: %w", err)
	}
	defer syncLog()

	pipID := erfap.NewPipID()
	log.Debug("erfap-sim: starting pip", "pip", pipID.String(), "scenario", path)

	processor, err := erfap.New(cfg, pip, manifest, expander, dirSymlinksAsDirs, reporter, inputsUnderSharedOpaques, pipGraph, sandboxFS, table, log)
	if err != nil {
		return fmt.Errorf("constructing processor: %w", err)
	}

	start := time.Now()

	for _, ev := range scenario.Events {
		event, err := buildEvent(table, ev)
		if err != nil {
			return fmt.Errorf("parsing event for %s: %w", ev.Path, err)
		}

		processor.Add(event)
	}

	for _, ev := range scenario.RemoveEvents {
		event, err := buildEvent(table, ev)
		if err != nil {
			return fmt.Errorf("parsing removeEvent for %s: %w", ev.Path, err)
		}

		processor.Remove(event)
	}

	result := processor.Freeze()
	defer result.Dispose()

	elapsed := time.Since(start)

	printReport(os.Stdout, table, result, elapsed, reporter.Drain())

	return nil
}

// buildEvent parses one scenario EventDoc into an erfap.AccessEvent, interning
// ManifestPath with the same table used for every other scenario path so
// ancestor walks in shared-opaque attribution see a consistent path space.
func buildEvent(table *pathtable.Table, doc EventDoc) (erfap.AccessEvent, error) {
	requested, err := parseRequestedAccess(doc.RequestedAccess)
	if err != nil {
		return erfap.AccessEvent{}, err
	}

	status, err := parseStatus(doc.Status)
	if err != nil {
		return erfap.AccessEvent{}, err
	}

	method, err := parseMethod(doc.Method)
	if err != nil {
		return erfap.AccessEvent{}, err
	}

	flagsAndAttrs, err := parseOSFlags(doc.FlagsAndAttrs)
	if err != nil {
		return erfap.AccessEvent{}, err
	}

	openedAttrs, err := parseOSFlags(doc.OpenedAttrs)
	if err != nil {
		return erfap.AccessEvent{}, err
	}

	nativeErr, err := parseNativeError(doc.Error)
	if err != nil {
		return erfap.AccessEvent{}, err
	}

	var manifestPath erfap.PathID
	if doc.ManifestPath != "" {
		manifestPath, err = table.Create(doc.ManifestPath)
		if err != nil {
			return erfap.AccessEvent{}, err
		}
	}

	return erfap.AccessEvent{
		RequestedAccess: requested,
		Status:          status,
		Method:          method,
		Path:            doc.Path,
		ManifestPath:    manifestPath,
		ProcessPath:     doc.ProcessPath,
		FlagsAndAttrs:   flagsAndAttrs,
		OpenedAttrs:     openedAttrs,
		Error:           nativeErr,
	}, nil
}
