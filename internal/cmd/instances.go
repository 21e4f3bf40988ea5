package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/trusteehq/trustee/internal/config"
	"github.com/trusteehq/trustee/internal/i18n"
)

var instancesCmd = &cobra.Command{
	Use:   "instances",
	Short: "List running trustee processes",
	Long: `List live trustee server processes recorded in instances.json. Entries
whose process has exited are cleaned up on every read.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		instances, err := config.ListInstances()
		if err != nil {
			return err
		}
		if len(instances) == 0 {
			fmt.Println("no running instances")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "TYPE\tPID\tADDR\tSTARTED")
		for _, inst := range instances {
			addr := ""
			if inst.Port != 0 {
				addr = fmt.Sprintf("%s:%d", inst.Host, inst.Port)
			}
			fmt.Fprintf(w, "%s\t%d\t%s\t%s\n",
				inst.Type, inst.PID, addr, i18n.RelativeTime(inst.StartedAt))
		}
		return w.Flush()
	},
}
