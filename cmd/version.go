package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/declpg/declpg/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Long:  "Display the version number of declpg",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("declpg v%s@%s %s %s\n", version.Version(), version.GitCommit, version.Platform(), version.BuildDate)
	},
}
