package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// build is set via -ldflags at release time.
var build = "develop"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the client version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(build)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
