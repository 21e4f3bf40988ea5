package cli

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/trusteehq/trustee/internal/session"
)

func sampleEntries() []session.Entry {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return []session.Entry{
		{Role: session.RoleUser, Text: "fix the bug", At: at},
		{Role: session.RoleAssistant, Text: "Looking at `main.go` now.", At: at.Add(time.Minute)},
		{Role: session.RoleTool, Text: "exit status 0", At: at.Add(2 * time.Minute)},
		{Role: session.RoleSystem, Text: "session ended", At: at.Add(3 * time.Minute)},
	}
}

func TestWriteTranscriptRaw(t *testing.T) {
	var buf bytes.Buffer
	err := WriteTranscript(&buf, sampleEntries(), TranscriptOptions{Raw: true})
	if err != nil {
		t.Fatalf("WriteTranscript: %v", err)
	}

	out := buf.String()
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines (end marker dropped), got %d:\n%s", len(lines), out)
	}
	if lines[0] != "[user] fix the bug" {
		t.Errorf("unexpected first line %q", lines[0])
	}
	if strings.Contains(out, "session ended") {
		t.Errorf("end marker should not be rendered:\n%s", out)
	}
}

func TestWriteTranscriptDecorated(t *testing.T) {
	var buf bytes.Buffer
	err := WriteTranscript(&buf, sampleEntries(), TranscriptOptions{Width: 60})
	if err != nil {
		t.Fatalf("WriteTranscript: %v", err)
	}

	out := buf.String()
	for _, label := range []string{"User", "Assistant", "Tool"} {
		if !strings.Contains(out, label) {
			t.Errorf("expected %s label in output:\n%s", label, out)
		}
	}
	if strings.Contains(out, "System") {
		t.Errorf("end marker should not be rendered:\n%s", out)
	}
}

func TestWriteTranscriptSkipsEmptyEntries(t *testing.T) {
	entries := []session.Entry{
		{Role: session.RoleUser, Text: ""},
		{Role: session.RoleAssistant, Text: "hello"},
	}
	var buf bytes.Buffer
	if err := WriteTranscript(&buf, entries, TranscriptOptions{Raw: false, Width: 40}); err != nil {
		t.Fatalf("WriteTranscript: %v", err)
	}
	if strings.Contains(buf.String(), "User") {
		t.Errorf("empty entry should be skipped:\n%s", buf.String())
	}
}
