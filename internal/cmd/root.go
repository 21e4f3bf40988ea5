// Package cmd provides the CLI commands for trustee.
package cmd

import (
	"fmt"
	"os"
	"runtime/pprof"

	"github.com/spf13/cobra"

	"github.com/trusteehq/trustee/internal/applog"
	"github.com/trusteehq/trustee/internal/config"
	"github.com/trusteehq/trustee/internal/i18n"
)

// global flags
var (
	profileFile *os.File // held open for profiling
	verbose     bool
	outputJSON  bool
)

// rootCmd is the root command for the CLI.
var rootCmd = &cobra.Command{
	Use:   "trustee",
	Short: "Checkpoint storage and resume for project work sessions",
	Long: `trustee keeps per-project checkpoint storage that survives the project
directory being moved or deleted. Each project is addressed by a stable
content hash derived from its canonical path at registration; every later
lookup goes by hash alone.

Running without a subcommand launches the interactive resume picker.

Commands:
  projects  List and inspect registered projects
  sessions  List, view and import session transcripts
  resume    Resume work on a registered project
  search    Full-text search across stored transcripts
  serve     Run the HTTP API / MCP server

Examples:
  trustee                         # Pick a project to resume
  trustee projects list -l        # All projects, stale paths marked
  trustee resume --hash a1b2c3    # Resume by identifier, path-independent
  trustee search "token refresh"  # Find that conversation again`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Start pprof profiling if TRUSTEE_PROFILE is set
		if profilePath := os.Getenv("TRUSTEE_PROFILE"); profilePath != "" {
			f, err := os.Create(profilePath)
			if err != nil {
				return fmt.Errorf("create profile file: %w", err)
			}
			profileFile = f

			if err := pprof.StartCPUProfile(f); err != nil {
				f.Close()
				profileFile = nil
				return fmt.Errorf("start CPU profile: %w", err)
			}
		}

		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if logPath, err := cfg.LogFilePath(); err == nil {
			applog.Init(logPath)
		}
		i18n.Init(i18n.ResolveLocale(cfg.Locale))
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		// Stop CPU profiling
		if profileFile != nil {
			pprof.StopCPUProfile()
			profileFile.Close()
			profileFile = nil
		}
		return nil
	},
	RunE: runResume,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	// Root doubles as the resume picker, so it carries the resume flags too.
	rootCmd.Flags().StringVar(&resumeHash, "hash", "", "resume by project hash instead of picking")
	rootCmd.Flags().BoolVar(&resumePrint, "print", false, "print the resume context instead of executing")
	rootCmd.Flags().BoolVar(&resumeExec, "exec", false, "run the configured resume command")

	// Projects command flags
	projectsListCmd.Flags().BoolVarP(&projectsLong, "long", "l", false, "show hash, sessions, size and access time")
	projectsListCmd.Flags().BoolVar(&outputJSON, "json", false, "output as JSON")
	projectsListCmd.Flags().StringVar(&projectsQuery, "filter", "", "filter by name or path substring")
	projectsSummaryCmd.Flags().StringVar(&summaryTemplate, "template", "", "custom Go text/template for output")
	projectsSummaryCmd.Flags().StringVar(&summarySortBy, "sort", "time", "sort by: name, time")
	projectsSummaryCmd.Flags().BoolVar(&summarySortDesc, "desc", false, "sort descending")
	projectsCmd.AddCommand(projectsListCmd)
	projectsCmd.AddCommand(projectsInfoCmd)
	projectsCmd.AddCommand(projectsSummaryCmd)
	projectsCmd.AddCommand(projectsRegisterCmd)

	// Sessions command flags
	sessionsCmd.PersistentFlags().StringVarP(&sessionsProject, "project", "p", "", "project path or hash (defaults to cwd)")
	sessionsListCmd.Flags().BoolVarP(&sessionsLong, "long", "l", false, "show timing and size")
	sessionsListCmd.Flags().BoolVar(&outputJSON, "json", false, "output as JSON")
	sessionsViewCmd.Flags().BoolVar(&sessionsViewRaw, "raw", false, "output raw text without rendering")
	sessionsCmd.AddCommand(sessionsListCmd)
	sessionsCmd.AddCommand(sessionsViewCmd)
	sessionsCmd.AddCommand(sessionsImportCmd)

	// Resume command flags
	resumeCmd.Flags().StringVar(&resumeHash, "hash", "", "resume by project hash (works when the path is gone)")
	resumeCmd.Flags().StringVar(&resumeSession, "session", "", "session id to resume")
	resumeCmd.Flags().BoolVar(&resumePrint, "print", false, "print the resume context instead of executing")
	resumeCmd.Flags().BoolVar(&resumeExec, "exec", false, "run the configured resume command")
	resumeCmd.Flags().BoolVar(&outputJSON, "json", false, "output the resumable view as JSON")

	// Search command flags
	searchCmd.Flags().StringVar(&searchProject, "project", "", "restrict to one project (path or hash)")
	searchCmd.Flags().IntVar(&searchLimit, "limit", 0, "maximum total matches")
	searchCmd.Flags().BoolVar(&searchRegex, "regex", false, "treat the query as a regular expression")
	searchCmd.Flags().BoolVar(&searchCase, "case-sensitive", false, "match case exactly")
	searchCmd.Flags().BoolVar(&outputJSON, "json", false, "output as JSON")
	searchCmd.AddCommand(searchReindexCmd)

	// Stats command flags
	statsCmd.Flags().BoolVar(&outputJSON, "json", false, "output as JSON")

	// Serve command flags
	serveCmd.Flags().StringVar(&serveHost, "host", "", "bind host (default from config)")
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "bind port (default from config)")
	serveCmd.Flags().StringVar(&serveToken, "token", "", "bearer token for API auth (default: config, then TRUSTEE_API_TOKEN)")
	serveCmd.Flags().BoolVar(&serveNoWatch, "no-watch", false, "disable transcript watching and live reindex")
	serveCmd.AddCommand(serveTokenCmd)
	serveCmd.AddCommand(serveMcpCmd)
	serveMcpCmd.Flags().BoolVar(&mcpStdio, "stdio", false, "use stdio transport (default if no --port)")
	serveMcpCmd.Flags().IntVarP(&mcpPort, "port", "p", 0, "run MCP over HTTP on this port")
	serveMcpCmd.Flags().StringVar(&mcpHost, "host", "localhost", "host to bind MCP HTTP server")

	// Config subcommands
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configListCmd)
	configCmd.AddCommand(configPathCmd)

	// Build command tree
	rootCmd.AddCommand(projectsCmd)
	rootCmd.AddCommand(sessionsCmd)
	rootCmd.AddCommand(resumeCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(instancesCmd)
	rootCmd.AddCommand(versionCmd)
}
