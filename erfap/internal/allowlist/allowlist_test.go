package allowlist

import (
	"testing"

	"github.com/buildcore/erfap/erfap"
)

func TestReporter_MatchFirstRuleWins(t *testing.T) {
	r, err := New([]Entry{
		{PathGlob: "**/*.log", Cacheable: true},
		{PathGlob: "**/*.log", Cacheable: false}, // unreachable: first rule always matches first
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	match := r.Match(erfap.AccessEvent{Path: "build/out.log"})
	if match != erfap.AllowListMatchCacheable {
		t.Fatalf("expected AllowListMatchCacheable, got %v", match)
	}
}

func TestReporter_MatchRespectsProcessSuffix(t *testing.T) {
	r, err := New([]Entry{
		{ProcessSuffix: "csc.exe", PathGlob: "**/*.tmp", Cacheable: true},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if match := r.Match(erfap.AccessEvent{ProcessPath: `C:\bin\csc.exe`, Path: `obj\x.tmp`}); match != erfap.AllowListMatchCacheable {
		t.Fatalf("expected match for csc.exe, got %v", match)
	}

	if match := r.Match(erfap.AccessEvent{ProcessPath: `C:\bin\cl.exe`, Path: `obj\x.tmp`}); match != erfap.AllowListNoMatch {
		t.Fatalf("expected no match for a different process, got %v", match)
	}
}

func TestReporter_NoMatch(t *testing.T) {
	r, err := New(nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if match := r.Match(erfap.AccessEvent{Path: "anything"}); match != erfap.AllowListNoMatch {
		t.Fatalf("expected AllowListNoMatch with no entries, got %v", match)
	}
}

func TestReporter_NewRejectsInvalidGlob(t *testing.T) {
	_, err := New([]Entry{{PathGlob: "["}})
	if err == nil {
		t.Fatalf("expected New to reject a malformed glob pattern")
	}
}

func TestReporter_AddAndReportUncacheable_DrainsInOrder(t *testing.T) {
	r, err := New(nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	e1 := erfap.AccessEvent{Path: "a"}
	e2 := erfap.AccessEvent{Path: "b"}

	r.AddAndReportUncacheable(e1, erfap.AllowListMatchNotCacheable)
	r.AddAndReportUncacheable(e2, erfap.AllowListMatchCacheable)

	drained := r.Drain()
	if len(drained) != 2 || drained[0].Event.Path != "a" || drained[1].Event.Path != "b" {
		t.Fatalf("unexpected drained report: %+v", drained)
	}

	if again := r.Drain(); len(again) != 0 {
		t.Fatalf("expected Drain to clear the report log, got %+v", again)
	}
}
