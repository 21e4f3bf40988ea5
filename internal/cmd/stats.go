package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/trusteehq/trustee/internal/cli"
	"github.com/trusteehq/trustee/internal/search"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Aggregate storage and index statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}

		summaries, diags, err := app.manager.ListProjects(cmd.Context())
		if err != nil {
			return err
		}

		var (
			sessions int
			bytes    int64
			stale    int
		)
		for _, p := range summaries {
			sessions += p.SessionCount
			bytes += p.SizeBytes
			if cli.PathIsStale(p.Path) {
				stale++
			}
		}

		var indexStats *search.Stats
		if index, err := app.openIndex(); err == nil {
			if s, err := index.Stats(cmd.Context()); err == nil {
				indexStats = &s
			}
			index.Close()
		}

		if outputJSON {
			out := map[string]any{
				"projects":        len(summaries),
				"stale_paths":     stale,
				"sessions":        sessions,
				"size_bytes":      bytes,
				"skipped_entries": diags.Skipped(),
			}
			if indexStats != nil {
				out["index"] = indexStats
			}
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintf(w, "Storage root:\t%s\n", app.manager.Root())
		fmt.Fprintf(w, "Projects:\t%d\n", len(summaries))
		if stale > 0 {
			fmt.Fprintf(w, "Stale paths:\t%d (still resumable by hash)\n", stale)
		}
		fmt.Fprintf(w, "Sessions:\t%d\n", sessions)
		fmt.Fprintf(w, "Size:\t%s\n", cli.FormatSize(bytes))
		if n := diags.Skipped(); n > 0 {
			fmt.Fprintf(w, "Skipped entries:\t%d\n", n)
		}
		if indexStats != nil {
			fmt.Fprintf(w, "Indexed sessions:\t%d\n", indexStats.Sessions)
			fmt.Fprintf(w, "Indexed entries:\t%d\n", indexStats.Entries)
			fmt.Fprintf(w, "Index size:\t%s\n", cli.FormatSize(indexStats.SizeBytes))
		}
		return w.Flush()
	},
}
