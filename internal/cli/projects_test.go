package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/trusteehq/trustee/internal/checkpoint"
)

func sampleSummaries(t *testing.T) []checkpoint.ProjectSummary {
	t.Helper()
	live := t.TempDir()
	return []checkpoint.ProjectSummary{
		{
			Hash:         checkpoint.HashPath(live),
			Name:         "alpha",
			Path:         live,
			CreatedAt:    time.Date(2026, 1, 2, 10, 0, 0, 0, time.UTC),
			LastAccessed: time.Date(2026, 3, 4, 11, 0, 0, 0, time.UTC),
			SessionCount: 3,
			SizeBytes:    2048,
		},
		{
			Hash:         checkpoint.HashPath("/nonexistent/beta"),
			Name:         "beta",
			Path:         "/nonexistent/beta",
			CreatedAt:    time.Date(2026, 2, 2, 10, 0, 0, 0, time.UTC),
			LastAccessed: time.Date(2026, 2, 3, 11, 0, 0, 0, time.UTC),
			SessionCount: 1,
			SizeBytes:    100,
		},
	}
}

func TestFormatShort(t *testing.T) {
	projects := sampleSummaries(t)
	var buf bytes.Buffer
	if err := NewProjectsFormatter(&buf).FormatShort(projects); err != nil {
		t.Fatalf("FormatShort: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %q", len(lines), buf.String())
	}
	if lines[1] != "/nonexistent/beta" {
		t.Errorf("expected path on line 2, got %q", lines[1])
	}
}

func TestFormatVerboseMarksStalePaths(t *testing.T) {
	projects := sampleSummaries(t)
	var buf bytes.Buffer
	if err := NewProjectsFormatter(&buf).FormatVerbose(projects); err != nil {
		t.Fatalf("FormatVerbose: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "/nonexistent/beta (stale)") {
		t.Errorf("expected stale marker for missing path, got:\n%s", out)
	}
	if strings.Contains(out, projects[0].Path+" (stale)") {
		t.Errorf("live path should not be marked stale:\n%s", out)
	}
	if !strings.Contains(out, "3 sessions") {
		t.Errorf("expected session count, got:\n%s", out)
	}
}

func TestFormatJSONRoundTrips(t *testing.T) {
	projects := sampleSummaries(t)
	var buf bytes.Buffer
	if err := NewProjectsFormatter(&buf).FormatJSON(projects); err != nil {
		t.Fatalf("FormatJSON: %v", err)
	}

	var decoded []checkpoint.ProjectSummary
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("unmarshal output: %v", err)
	}
	if len(decoded) != 2 {
		t.Fatalf("expected 2 projects, got %d", len(decoded))
	}
	if decoded[0].Hash != projects[0].Hash {
		t.Errorf("expected hash %s, got %s", projects[0].Hash, decoded[0].Hash)
	}
}

func TestFormatSummaryDefaultTemplate(t *testing.T) {
	projects := sampleSummaries(t)
	var buf bytes.Buffer
	err := NewProjectsFormatter(&buf).FormatSummary(projects, "", SummaryOptions{SortBy: "name"})
	if err != nil {
		t.Fatalf("FormatSummary: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "Sessions: 3") {
		t.Errorf("expected session count in summary:\n%s", out)
	}
	if !strings.Contains(out, "resume still works by hash") {
		t.Errorf("expected stale note for missing path:\n%s", out)
	}
	// name sort: alpha before beta
	if strings.Index(out, "alpha") > strings.Index(out, "beta") {
		t.Errorf("expected name-sorted output:\n%s", out)
	}
}

func TestFormatSummaryCustomTemplate(t *testing.T) {
	projects := sampleSummaries(t)
	var buf bytes.Buffer
	err := NewProjectsFormatter(&buf).FormatSummary(projects, `{{range .}}{{.ShortHash}} {{.Name}}
{{end}}`, SummaryOptions{SortBy: "time", Descending: true})
	if err != nil {
		t.Fatalf("FormatSummary: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %q", buf.String())
	}
	// time desc: alpha (March) before beta (February)
	if !strings.HasSuffix(lines[0], "alpha") {
		t.Errorf("expected alpha first, got %q", lines[0])
	}
	if len(strings.Fields(lines[0])[0]) != 12 {
		t.Errorf("expected 12-char short hash, got %q", lines[0])
	}
}

func TestFormatSummaryBadTemplate(t *testing.T) {
	var buf bytes.Buffer
	err := NewProjectsFormatter(&buf).FormatSummary(nil, "{{range", SummaryOptions{})
	if err == nil {
		t.Fatal("expected parse error for bad template")
	}
}

func TestFormatSize(t *testing.T) {
	tests := []struct {
		size int64
		want string
	}{
		{512, "512 B"},
		{2048, "2.0 KB"},
		{3 * 1024 * 1024, "3.0 MB"},
		{5 * 1024 * 1024 * 1024, "5.0 GB"},
	}
	for _, tt := range tests {
		if got := FormatSize(tt.size); got != tt.want {
			t.Errorf("FormatSize(%d) = %q, want %q", tt.size, got, tt.want)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("short", 10); got != "short" {
		t.Errorf("expected unchanged string, got %q", got)
	}
	if got := Truncate("a long string that needs cutting", 10); got != "a long ..." {
		t.Errorf("expected truncated string, got %q", got)
	}
}
