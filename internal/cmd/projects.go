package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/trusteehq/trustee/internal/checkpoint"
	"github.com/trusteehq/trustee/internal/cli"
)

var (
	projectsLong    bool
	projectsQuery   string
	summaryTemplate string
	summarySortBy   string
	summarySortDesc bool
)

var projectsCmd = &cobra.Command{
	Use:   "projects",
	Short: "List and inspect registered projects",
}

var projectsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all registered projects",
	Long: `List every valid project in the storage root, most recently accessed
first. Entries that cannot be read are skipped and counted, never fatal.
Projects whose recorded path no longer exists are marked stale; they remain
fully resumable by hash.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}

		summaries, diags, err := app.manager.ListProjects(cmd.Context())
		if err != nil {
			return err
		}

		if projectsQuery != "" {
			q := strings.ToLower(projectsQuery)
			filtered := summaries[:0]
			for _, p := range summaries {
				if strings.Contains(strings.ToLower(p.Name), q) ||
					strings.Contains(strings.ToLower(p.Path), q) {
					filtered = append(filtered, p)
				}
			}
			summaries = filtered
		}

		f := cli.NewProjectsFormatter(os.Stdout)
		switch {
		case outputJSON:
			err = f.FormatJSON(summaries)
		case projectsLong:
			err = f.FormatVerbose(summaries)
		default:
			err = f.FormatShort(summaries)
		}
		if err != nil {
			return err
		}

		if n := diags.Skipped(); n > 0 && !outputJSON {
			fmt.Fprintf(os.Stderr, "%d unreadable or corrupt entries skipped\n", n)
			if verbose {
				for _, d := range diags.Details {
					fmt.Fprintf(os.Stderr, "  %s\n", d)
				}
			}
		}
		return nil
	},
}

var projectsInfoCmd = &cobra.Command{
	Use:   "info <hash|path>",
	Short: "Show the full record of one project",
	Long: `Show the stored record of a project. Accepts the full 64-character hash
or a path; a path is canonicalized and hashed exactly as registration does,
so it must still exist — the hash form has no such requirement.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}

		hash, err := resolveHash(args[0])
		if err != nil {
			return err
		}

		storage, err := app.manager.GetProjectStorageByHash(hash)
		if err != nil {
			return err
		}
		return cli.NewProjectsFormatter(os.Stdout).FormatInfo(storage)
	},
}

var projectsSummaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Detailed project listing, templatable",
	Long:  "Render every project through a Go text/template.\n\n" + cli.SummaryTemplateHelp,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}

		summaries, _, err := app.manager.ListProjects(cmd.Context())
		if err != nil {
			return err
		}

		return cli.NewProjectsFormatter(os.Stdout).FormatSummary(summaries, summaryTemplate, cli.SummaryOptions{
			SortBy:     summarySortBy,
			Descending: summarySortDesc,
		})
	},
}

var projectsRegisterCmd = &cobra.Command{
	Use:   "register [path]",
	Short: "Register a project directory (or load its existing record)",
	Long: `Register the project at path (default: current directory). This is the
only operation that derives identity from the filesystem: the path is
canonicalized, hashed, and recorded. Registering an already-known path just
freshens its access time.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}

		path := "."
		if len(args) > 0 {
			path = args[0]
		}

		storage, err := app.manager.GetOrCreateProjectStorage(cmd.Context(), path)
		if err != nil {
			if errors.Is(err, checkpoint.ErrPathNotFound) || errors.Is(err, checkpoint.ErrPermissionDenied) {
				return fmt.Errorf("cannot register %s: %w", path, err)
			}
			return err
		}
		fmt.Printf("%s  %s\n", storage.Hash, storage.Metadata.ProjectPath)
		return nil
	},
}
