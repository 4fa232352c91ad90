package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/declpg/declpg/internal/logger"
	"github.com/declpg/declpg/internal/version"
)

var Debug bool

var RootCmd = &cobra.Command{
	Use:   "declpg",
	Short: "Declarative PostgreSQL schema management",
	Long: fmt.Sprintf(`declpg compiles a project of SQL source files into a portable schema
package and computes the ordered set of changes needed to bring a live
PostgreSQL database into conformance with it.

Version: %s %s

Commands:
  package   Assemble a project into a schema package artifact
  publish   Plan and apply changes against a live database
  script    Print the SQL a publish would execute, without applying it
  report    Print a human-readable change-set report

Use "declpg [command] --help" for more information about a command.`,
		version.Version(), version.Platform()),
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupLogger()
	},
}

func init() {
	RootCmd.PersistentFlags().BoolVar(&Debug, "debug", false, "Enable debug logging")
	RootCmd.AddCommand(versionCmd)
	RootCmd.AddCommand(packageCmd)
	RootCmd.AddCommand(publishCmd)
	RootCmd.AddCommand(scriptCmd)
	RootCmd.AddCommand(reportCmd)
}

func setupLogger() {
	level := slog.LevelInfo
	if Debug {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	logger.SetGlobal(slog.New(handler), Debug)
}

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
