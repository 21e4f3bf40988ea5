package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/trusteehq/trustee/internal/checkpoint"
	"github.com/trusteehq/trustee/internal/cli"
)

var (
	sessionsProject string
	sessionsLong    bool
	sessionsViewRaw bool
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List, view and import session transcripts",
}

// sessionsHash resolves the --project flag (or cwd) to a project hash.
func sessionsHash() (checkpoint.ProjectHash, error) {
	arg := sessionsProject
	if arg == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", err
		}
		arg = cwd
	}
	return resolveHash(arg)
}

var sessionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the stored sessions of a project",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}

		hash, err := sessionsHash()
		if err != nil {
			return err
		}

		records, err := app.sessions.ListSessions(cmd.Context(), hash)
		if err != nil {
			return err
		}

		f := cli.NewSessionsFormatter(os.Stdout)
		switch {
		case outputJSON:
			return f.FormatJSON(records)
		case sessionsLong:
			return f.FormatVerbose(records)
		default:
			return f.FormatList(records)
		}
	},
}

var sessionsViewCmd = &cobra.Command{
	Use:   "view <session-id>",
	Short: "Render one session transcript",
	Long: `Render a stored transcript. Assistant turns are rendered as markdown
when writing to a terminal; --raw emits undecorated text for piping.
Malformed transcript lines are skipped and reported, never fatal.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}

		hash, err := sessionsHash()
		if err != nil {
			return err
		}

		entries, skipped, err := app.sessions.ReadSession(cmd.Context(), hash, args[0])
		if err != nil {
			return err
		}

		opts := cli.TranscriptOptions{Raw: sessionsViewRaw}
		if !sessionsViewRaw {
			if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
				opts.Width = w
			}
		}

		if err := cli.WriteTranscript(os.Stdout, entries, opts); err != nil {
			return err
		}
		if skipped > 0 {
			fmt.Fprintf(os.Stderr, "%d malformed lines skipped\n", skipped)
		}
		return nil
	},
}

var sessionsImportCmd = &cobra.Command{
	Use:   "import <transcript.jsonl>",
	Short: "Import an existing transcript into a project's storage",
	Long: `Copy an existing JSONL transcript into the project's session storage as
a new session. Valid entry lines are kept; anything else is counted and
dropped. The project's session count and storage footprint are updated.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}

		hash, err := sessionsHash()
		if err != nil {
			return err
		}

		// Import only into registered projects; a typo'd hash should not
		// scatter orphan session directories.
		if _, err := app.manager.GetProjectStorageByHash(hash); err != nil {
			return err
		}

		record, skipped, err := app.sessions.ImportSession(cmd.Context(), hash, args[0])
		if err != nil {
			return err
		}

		if err := app.manager.RecordSession(hash); err != nil {
			fmt.Fprintf(os.Stderr, "warning: session count not updated: %v\n", err)
		}
		if err := app.manager.AddUsage(hash, record.SizeBytes); err != nil {
			fmt.Fprintf(os.Stderr, "warning: storage size not updated: %v\n", err)
		}

		fmt.Printf("imported %s (%d lines skipped)\n", record.SessionID, skipped)
		return nil
	},
}
