package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/trusteehq/trustee/internal/checkpoint"
)

// SessionsFormatter handles session listing output.
type SessionsFormatter struct {
	w io.Writer
}

// NewSessionsFormatter creates a new sessions formatter.
func NewSessionsFormatter(w io.Writer) *SessionsFormatter {
	return &SessionsFormatter{w: w}
}

// FormatList outputs session IDs, one per line.
func (f *SessionsFormatter) FormatList(records []checkpoint.SessionRecord) error {
	for _, r := range records {
		fmt.Fprintln(f.w, r.SessionID)
	}
	return nil
}

// FormatVerbose writes sessions with timing and size in aligned columns.
func (f *SessionsFormatter) FormatVerbose(records []checkpoint.SessionRecord) error {
	w := tabwriter.NewWriter(f.w, 0, 0, 2, ' ', 0)

	for _, r := range records {
		state := "open"
		if r.EndedAt != nil {
			state = "ended " + FormatTime(*r.EndedAt)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			r.SessionID, FormatTime(r.StartedAt), state, FormatSize(r.SizeBytes))
	}

	return w.Flush()
}

// FormatJSON writes sessions as a JSON array.
func (f *SessionsFormatter) FormatJSON(records []checkpoint.SessionRecord) error {
	enc := json.NewEncoder(f.w)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}
