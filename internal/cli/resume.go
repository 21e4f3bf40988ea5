package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/trusteehq/trustee/internal/checkpoint"
	"github.com/trusteehq/trustee/internal/i18n"
)

// ResumeFormatter renders the resumable view for non-interactive output.
type ResumeFormatter struct {
	w io.Writer
}

// NewResumeFormatter creates a resume formatter.
func NewResumeFormatter(w io.Writer) *ResumeFormatter {
	return &ResumeFormatter{w: w}
}

// FormatTable writes the resumable projects as aligned columns, followed by
// a one-line diagnostics summary when anything was skipped. Every valid
// project appears, including those whose recorded path is gone or whose
// sessions could not be listed.
func (f *ResumeFormatter) FormatTable(entries []checkpoint.ResumableProject, diags checkpoint.ResumeDiagnostics) error {
	w := tabwriter.NewWriter(f.w, 0, 0, 2, ' ', 0)

	for _, e := range entries {
		sessions := fmt.Sprintf("%d", len(e.Sessions))
		if e.SessionsUnavailable {
			sessions = "?"
		}
		marker := ""
		if PathIsStale(e.Path) {
			marker = " (stale)"
		}
		fmt.Fprintf(w, "%s\t%s%s\t%s\t%s\n",
			e.Hash.Short(), CollapseHome(e.Path), marker,
			sessions, i18n.RelativeTime(e.LastAccessed))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if summary := diags.Summary(); summary != "" {
		fmt.Fprintf(f.w, "\n%s\n", summary)
	}
	return nil
}

// FormatJSON writes the resumable view, diagnostics included, as JSON.
func (f *ResumeFormatter) FormatJSON(entries []checkpoint.ResumableProject, diags checkpoint.ResumeDiagnostics) error {
	enc := json.NewEncoder(f.w)
	enc.SetIndent("", "  ")
	return enc.Encode(struct {
		Projects    []checkpoint.ResumableProject `json:"projects"`
		Diagnostics checkpoint.ResumeDiagnostics  `json:"diagnostics"`
	}{entries, diags})
}

// FormatResumeInfo prints the resume context for a selected project: the
// stored identity plus, when a command template is configured, the command
// to run. The recorded path is shown as stored even when stale.
func (f *ResumeFormatter) FormatResumeInfo(storage *checkpoint.ProjectStorage, sessionID string, info *checkpoint.ResumeInfo) error {
	w := tabwriter.NewWriter(f.w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Hash:\t%s\n", storage.Hash)
	fmt.Fprintf(w, "Path:\t%s\n", storage.Metadata.ProjectPath)
	if PathIsStale(storage.Metadata.ProjectPath) {
		fmt.Fprintf(w, "\t(recorded path no longer exists)\n")
	}
	fmt.Fprintf(w, "Storage:\t%s\n", storage.Dir)
	if sessionID != "" {
		fmt.Fprintf(w, "Session:\t%s\n", sessionID)
	}
	if info != nil {
		cmd := info.Command
		for _, a := range info.Args {
			cmd += " " + a
		}
		fmt.Fprintf(w, "Command:\t%s\n", cmd)
	}
	return w.Flush()
}
