package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/trusteehq/trustee/internal/cli"
	"github.com/trusteehq/trustee/internal/search"
)

var (
	searchProject string
	searchLimit   int
	searchRegex   bool
	searchCase    bool
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Full-text search across stored transcripts",
	Long: `Search every indexed transcript. Matches are grouped by session and
capped per session so one chatty transcript cannot drown the rest. Run
"trustee search reindex" after bulk imports to bring the index up to date;
serving with search.watch enabled keeps it fresh automatically.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}

		index, err := app.openIndex()
		if err != nil {
			return err
		}
		defer index.Close()

		opts := search.DefaultOptions()
		opts.Query = args[0]
		opts.UseRegex = searchRegex
		opts.CaseSensitive = searchCase
		if searchLimit > 0 {
			opts.Limit = searchLimit
		}
		if searchProject != "" {
			hash, err := resolveHash(searchProject)
			if err != nil {
				return err
			}
			opts.ProjectHash = hash
		}

		results, total, err := index.Query(cmd.Context(), opts)
		if err != nil {
			return err
		}

		if outputJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(results)
		}

		for _, r := range results {
			fmt.Printf("%s  %s\n", r.ProjectName, r.SessionID)
			for _, m := range r.Matches {
				fmt.Printf("  %4d [%s]  %s\n", m.LineNum, m.Role, cli.Truncate(m.Preview, 120))
			}
		}
		if total > len(flattenMatches(results)) {
			fmt.Printf("\n%d total matches, showing %d\n", total, len(flattenMatches(results)))
		}
		return nil
	},
}

func flattenMatches(results []search.SessionResult) []search.Match {
	var all []search.Match
	for _, r := range results {
		all = append(all, r.Matches...)
	}
	return all
}

var searchReindexCmd = &cobra.Command{
	Use:   "reindex",
	Short: "Rebuild the search index from stored transcripts",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}

		index, err := app.openIndex()
		if err != nil {
			return err
		}
		defer index.Close()

		reindexer := search.NewReindexer(index, app.manager, app.sessions)
		summary, err := reindexer.ReindexAll(cmd.Context())
		if err != nil {
			return err
		}

		fmt.Printf("indexed %d sessions across %d projects (%d up to date, %d pruned, %d failed)\n",
			summary.Indexed, summary.Projects, summary.Skipped, summary.Pruned, summary.Failed)
		return nil
	},
}
