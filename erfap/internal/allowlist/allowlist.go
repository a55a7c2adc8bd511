// Package allowlist is a reference implementation of erfap.AllowListReporter.
//
// An allow-list entry is a (processSuffix, pathGlob, cacheable) triple,
// matched with github.com/bmatcuk/doublestar/v4 — the same glob engine
// mutagen-io/mutagen uses for its own ignore-pattern matching (see
// pkg/synchronization/core/ignore/mutagen). Match walks entries in declared
// order and returns the first match's cacheability tag.
package allowlist

import (
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/buildcore/erfap/erfap"
)

// Entry is a single allow-list rule. ProcessSuffix is matched against the
// lowercased event process path with strings.HasSuffix (empty matches any
// process). PathGlob is matched against the event's raw path with doublestar,
// which supports "**" for arbitrary-depth directory wildcards.
type Entry struct {
	// ProcessSuffix restricts the entry to processes whose path ends with
	// this (case-insensitive) suffix. Empty matches every process.
	ProcessSuffix string

	// PathGlob is a doublestar glob pattern matched against event.Path.
	PathGlob string

	// Cacheable marks whether a match keeps the pip cacheable
	// (AllowListMatchCacheable) or forces it uncacheable
	// (AllowListMatchNotCacheable).
	Cacheable bool
}

// Reporter is a concrete, glob-driven erfap.AllowListReporter. It is safe for
// concurrent use: Match is read-only over its entry list, and
// AddAndReportUncacheable appends to an internally-synchronized report log.
type Reporter struct {
	entries []Entry

	mu     sync.Mutex
	report []UncacheableMatch
}

// UncacheableMatch records one event that matched the allow-list, for later
// retrieval by a caller (e.g. a CLI report printer).
type UncacheableMatch struct {
	Event erfap.AccessEvent
	Match erfap.AllowListMatch
}

// New constructs a Reporter over entries, matched in declared order. Each
// entry's PathGlob is validated eagerly against a placeholder path so that a
// malformed pattern is caught at construction rather than deep in a pip's
// hot path.
func New(entries []Entry) (*Reporter, error) {
	for _, e := range entries {
		if _, err := doublestar.Match(e.PathGlob, "placeholder"); err != nil {
			return nil, err
		}
	}

	return &Reporter{entries: append([]Entry(nil), entries...)}, nil
}

// Match implements erfap.AllowListReporter. It is a pure, allocation-light
// function of event: no I/O, no blocking, safe to call from the processor's
// hot path (SPEC_FULL.md §4.10).
func (r *Reporter) Match(event erfap.AccessEvent) erfap.AllowListMatch {
	process := strings.ToLower(event.ProcessPath)

	for _, e := range r.entries {
		if e.ProcessSuffix != "" && !strings.HasSuffix(process, strings.ToLower(e.ProcessSuffix)) {
			continue
		}

		matched, err := doublestar.Match(e.PathGlob, event.Path)
		if err != nil || !matched {
			continue
		}

		if e.Cacheable {
			return erfap.AllowListMatchCacheable
		}

		return erfap.AllowListMatchNotCacheable
	}

	return erfap.AllowListNoMatch
}

// AddAndReportUncacheable implements erfap.AllowListReporter. It performs no
// I/O: it only appends to an in-memory log a caller can drain later (e.g. to
// print a build warning).
func (r *Reporter) AddAndReportUncacheable(event erfap.AccessEvent, match erfap.AllowListMatch) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.report = append(r.report, UncacheableMatch{Event: event, Match: match})
}

// Drain returns and clears every recorded uncacheable/allow-listed match so
// far. Safe for concurrent use alongside Match/AddAndReportUncacheable.
func (r *Reporter) Drain() []UncacheableMatch {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := r.report
	r.report = nil

	return out
}
