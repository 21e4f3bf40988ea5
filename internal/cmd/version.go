package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/trusteehq/trustee/internal/fingerprint"
	"github.com/trusteehq/trustee/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version.String("trustee"))
		if verbose {
			info := version.GetInfo("trustee")
			if info.Revision != "" {
				fmt.Printf("revision: %s\n", info.Revision)
			}
			if fp, err := fingerprint.GetFingerprint(); err == nil {
				fmt.Printf("machine: %s\n", fp)
			}
		}
	},
}
