package cmd

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/trusteehq/trustee/internal/checkpoint"
	"github.com/trusteehq/trustee/internal/cli"
	"github.com/trusteehq/trustee/internal/tui"
)

var (
	resumeHash    string
	resumeSession string
	resumePrint   bool
	resumeExec    bool
)

var resumeCmd = &cobra.Command{
	Use:   "resume [path]",
	Short: "Resume work on a registered project",
	Long: `Resume a project. With --hash the project is resolved by identifier
alone — the recorded path may have been moved or deleted long ago. With a
path argument the path is registered (or freshened) first. With neither,
an interactive picker shows every resumable project; non-interactive runs
print the resumable view instead.

The configured resume_command template is expanded with {hash}, {dir},
{path} and {session}; --exec runs it, --print just shows it.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runResume,
}

func runResume(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}

	var storage *checkpoint.ProjectStorage
	sessionID := resumeSession

	switch {
	case resumeHash != "":
		storage, err = app.coordinator.Resume(checkpoint.ProjectHash(resumeHash))
		if err != nil {
			return err
		}

	case len(args) > 0:
		storage, err = app.manager.GetOrCreateProjectStorage(cmd.Context(), args[0])
		if err != nil {
			return err
		}

	default:
		interactive := term.IsTerminal(int(os.Stdout.Fd()))
		if outputJSON || !interactive {
			entries, diags, err := app.coordinator.ListResumable(cmd.Context())
			if err != nil {
				return err
			}
			f := cli.NewResumeFormatter(os.Stdout)
			if outputJSON {
				return f.FormatJSON(entries, diags)
			}
			return f.FormatTable(entries, diags)
		}

		result, err := tui.Pick(app.coordinator, app.sessions)
		if err != nil {
			return err
		}
		if result.Cancelled {
			return nil
		}
		storage, err = app.coordinator.Resume(result.Hash)
		if err != nil {
			return err
		}
		if sessionID == "" {
			sessionID = result.SessionID
		}
	}

	info := checkpoint.BuildResumeInfo(app.resumeTemplate(), storage, sessionID)

	if resumeExec && info != nil {
		c := exec.CommandContext(cmd.Context(), info.Command, info.Args...)
		if info.Dir == "" && !cli.PathIsStale(storage.Metadata.ProjectPath) {
			c.Dir = storage.Metadata.ProjectPath
		} else {
			c.Dir = info.Dir
		}
		c.Stdin = os.Stdin
		c.Stdout = os.Stdout
		c.Stderr = os.Stderr
		return c.Run()
	}

	if resumeExec && info == nil {
		fmt.Fprintln(os.Stderr, "no resume_command configured; printing context instead")
	}
	return cli.NewResumeFormatter(os.Stdout).FormatResumeInfo(storage, sessionID, info)
}
