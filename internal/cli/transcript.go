package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/trusteehq/trustee/internal/session"
)

// TranscriptOptions controls transcript rendering.
type TranscriptOptions struct {
	Width int  // wrap width for rendered output (0 = 80)
	Raw   bool // plain text, no markdown rendering or decoration
}

// WriteTranscript renders a session transcript to w. Assistant entries are
// rendered as markdown via glamour; user and tool entries stay plain. Raw
// mode emits undecorated text suitable for piping.
func WriteTranscript(w io.Writer, entries []session.Entry, opts TranscriptOptions) error {
	if opts.Raw {
		for _, e := range entries {
			if e.IsEndMarker() {
				continue
			}
			fmt.Fprintf(w, "[%s] %s\n", e.Role, e.Text)
		}
		return nil
	}

	width := opts.Width
	if width <= 0 {
		width = 80
	}

	renderer, rendererErr := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)

	for _, e := range entries {
		if e.IsEndMarker() || e.Text == "" {
			continue
		}

		fmt.Fprintf(w, "── %s", roleLabel(e.Role))
		if !e.At.IsZero() {
			fmt.Fprintf(w, " · %s", e.At.Local().Format("15:04:05"))
		}
		fmt.Fprintln(w)

		if e.Role == session.RoleAssistant && rendererErr == nil {
			rendered, err := renderer.Render(e.Text)
			if err == nil {
				fmt.Fprint(w, strings.TrimRight(rendered, "\n"))
				fmt.Fprintln(w)
				fmt.Fprintln(w)
				continue
			}
		}

		fmt.Fprintln(w, e.Text)
		fmt.Fprintln(w)
	}
	return nil
}

func roleLabel(r session.Role) string {
	switch r {
	case session.RoleUser:
		return "User"
	case session.RoleAssistant:
		return "Assistant"
	case session.RoleTool:
		return "Tool"
	case session.RoleSystem:
		return "System"
	default:
		return string(r)
	}
}
