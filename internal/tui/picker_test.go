package tui

import (
	"strings"
	"testing"
	"time"

	"github.com/trusteehq/trustee/internal/checkpoint"
	"github.com/trusteehq/trustee/internal/session"
)

func TestProjectItemStaleMarker(t *testing.T) {
	live := t.TempDir()

	liveItem := projectItem{project: checkpoint.ResumableProject{
		ProjectSummary: checkpoint.ProjectSummary{Name: "live", Path: live},
	}}
	if strings.Contains(liveItem.Title(), "⚠") {
		t.Errorf("live project should not carry the stale marker: %q", liveItem.Title())
	}

	staleItem := projectItem{project: checkpoint.ResumableProject{
		ProjectSummary: checkpoint.ProjectSummary{Name: "gone", Path: "/does/not/exist"},
	}}
	if !strings.Contains(staleItem.Title(), "⚠") {
		t.Errorf("stale project should carry the marker: %q", staleItem.Title())
	}
}

func TestProjectItemDescription(t *testing.T) {
	item := projectItem{project: checkpoint.ResumableProject{
		ProjectSummary: checkpoint.ProjectSummary{
			Name:         "proj",
			Path:         "/some/where/proj",
			LastAccessed: time.Now().Add(-time.Minute),
		},
		Sessions: []checkpoint.SessionRecord{{SessionID: "a"}, {SessionID: "b"}},
	}}

	desc := item.Description()
	if !strings.Contains(desc, "/some/where/proj") {
		t.Errorf("expected path in description: %q", desc)
	}
	if !strings.Contains(desc, "2") {
		t.Errorf("expected session count in description: %q", desc)
	}
}

func TestProjectItemSessionsUnavailable(t *testing.T) {
	item := projectItem{project: checkpoint.ResumableProject{
		ProjectSummary:      checkpoint.ProjectSummary{Name: "p", Path: "/p"},
		SessionsUnavailable: true,
	}}
	if !strings.Contains(item.Description(), "sessions unavailable") {
		t.Errorf("expected unavailable marker: %q", item.Description())
	}
}

func TestSessionItemDescription(t *testing.T) {
	ended := time.Now()
	open := sessionItem{record: checkpoint.SessionRecord{
		SessionID: "abcdef1234567890",
		StartedAt: time.Now().Add(-time.Hour),
		SizeBytes: 2048,
	}}
	if open.Title() != "abcdef12" {
		t.Errorf("expected 8-char title, got %q", open.Title())
	}
	if !strings.Contains(open.Description(), "open") {
		t.Errorf("expected open marker: %q", open.Description())
	}
	if !strings.Contains(open.Description(), "2.0 KB") {
		t.Errorf("expected size: %q", open.Description())
	}

	closed := sessionItem{record: checkpoint.SessionRecord{
		SessionID: "x",
		StartedAt: time.Now().Add(-time.Hour),
		EndedAt:   &ended,
	}}
	if strings.Contains(closed.Description(), "open") {
		t.Errorf("ended session should not be marked open: %q", closed.Description())
	}
}

func TestRenderPreview(t *testing.T) {
	entries := []session.Entry{
		{Role: session.RoleUser, Text: "hello"},
		{Role: session.RoleAssistant, Text: "hi there"},
		{Role: session.RoleSystem, Text: "session ended"},
	}

	out := renderPreview(entries, 40, 10)
	if !strings.Contains(out, "user") {
		t.Errorf("expected user role in preview:\n%s", out)
	}
	if strings.Contains(out, "session ended") {
		t.Errorf("end marker should not appear in preview:\n%s", out)
	}
	for _, line := range strings.Split(out, "\n") {
		if len(line) > 200 { // generous bound, ANSI-aware width is <= 40
			t.Errorf("line suspiciously long: %q", line)
		}
	}
}

func TestRenderPreviewEmpty(t *testing.T) {
	if out := renderPreview(nil, 40, 10); out != "(empty session)" {
		t.Errorf("expected empty placeholder, got %q", out)
	}
	if out := renderPreview(nil, 2, 1); out != "" {
		t.Errorf("expected no output for tiny pane, got %q", out)
	}
}
