// trustee keeps checkpoint storage for project work sessions and resumes
// them by content hash, independent of where the project directory lives now.
package main

import (
	"fmt"
	"os"

	"github.com/trusteehq/trustee/internal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "trustee: %v\n", err)
		os.Exit(1)
	}
}
