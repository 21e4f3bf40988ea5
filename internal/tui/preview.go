package tui

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/x/ansi"

	"github.com/trusteehq/trustee/internal/session"
)

// previewMaxEntries bounds how much of a transcript the preview renders;
// long sessions are cut from the top, the tail is what matters for resume.
const previewMaxEntries = 30

// renderPreview renders the tail of a transcript into a fixed-size block.
// Assistant markdown goes through glamour; every line is truncated to width
// with ANSI sequences kept intact.
func renderPreview(entries []session.Entry, width, height int) string {
	if width < 10 || height < 3 {
		return ""
	}
	if len(entries) == 0 {
		return "(empty session)"
	}

	if len(entries) > previewMaxEntries {
		entries = entries[len(entries)-previewMaxEntries:]
	}

	renderer, rendererErr := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)

	var b strings.Builder
	for _, e := range entries {
		if e.IsEndMarker() || e.Text == "" {
			continue
		}
		b.WriteString("· ")
		b.WriteString(string(e.Role))
		b.WriteString("\n")

		if e.Role == session.RoleAssistant && rendererErr == nil {
			if rendered, err := renderer.Render(e.Text); err == nil {
				b.WriteString(strings.TrimRight(rendered, "\n"))
				b.WriteString("\n")
				continue
			}
		}
		b.WriteString(e.Text)
		b.WriteString("\n")
	}

	lines := strings.Split(strings.TrimRight(b.String(), "\n"), "\n")
	if len(lines) > height {
		lines = lines[len(lines)-height:]
	}
	for i, line := range lines {
		lines[i] = ansi.Truncate(line, width, "…")
	}
	return strings.Join(lines, "\n")
}
