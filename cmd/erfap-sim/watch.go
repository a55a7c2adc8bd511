package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// watchScenario re-runs runScenario every time path is written, the way it
// was actually driven during development of the classifier: edit a HuJSON
// scenario, save, see the Result recomputed. Modeled on Yakitrak-obsidian-cli's
// use of fsnotify for vault-file watching (SPEC_FULL.md §4.13).
//
// Each re-run constructs a brand new Processor — invariant 5 forbids reuse
// after Freeze, so watch mode has no bearing on the core's concurrency
// model; it is purely a development-loop convenience.
func watchScenario(path string, opts runOptions) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("starting watcher: %w", err)
	}
	defer watcher.Close()

	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}

	fmt.Fprintf(os.Stdout, "watching %s for changes (ctrl-c to stop)\n", path)

	if err := runScenario(path, opts); err != nil {
		fmt.Fprintf(os.Stderr, "run failed: %v\n", err)
	}

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			if filepath.Clean(event.Name) != filepath.Clean(path) {
				continue
			}

			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			fmt.Fprintf(os.Stdout, "\n--- %s changed, re-running ---\n", path)

			if err := runScenario(path, opts); err != nil {
				fmt.Fprintf(os.Stderr, "run failed: %v\n", err)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}

			fmt.Fprintf(os.Stderr, "watch error: %v\n", err)
		}
	}
}
