// Package erfap implements the Explicitly-Reported File Access Processor: the
// online classifier that folds sandbox-reported file-access events into a
// structured per-path observation summary while a build action ("pip") is
// executing inside a file-system sandbox.
//
// # Scope
//
// erfap owns the classification lattice (static outputs, shared opaque output
// directories, reparse-point handling, incremental-tool allowances, allow-lists,
// code-coverage carve-outs, tool-specific temp-file heuristics) and the
// per-path state merging that later build stages depend on for cache-key
// computation, double-write detection, and shared-output-directory accounting.
//
// It does not implement the sandbox that produces events, the pip graph, the
// path interner, or the allow-list matcher; those are external collaborators
// consumed through the interfaces in interfaces.go.
//
// # Lifecycle
//
// A Processor is constructed once per pip via New, fed events via Add/Remove
// from a single producer (typically the sandbox's reporting channel), and
// finalized exactly once via Freeze, which returns a Result. After Freeze, the
// Processor must not be mutated further; doing so is a contract violation (see
// errors.go).
//
// # Concurrency
//
// A Processor performs no internal locking and never blocks: all Add/Remove/
// Freeze calls for one pip must be serialized by the caller. Distinct
// Processors for distinct pips may run concurrently on separate goroutines;
// they share only immutable inputs (configuration, manifest, path interner).
package erfap
