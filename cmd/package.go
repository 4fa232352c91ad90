package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/declpg/declpg/internal/archive"
	"github.com/declpg/declpg/internal/assembler"
	"github.com/declpg/declpg/internal/logger"
)

var (
	packageManifest string
	packageOutput   string
)

var packageCmd = &cobra.Command{
	Use:   "package",
	Short: "Assemble a project into a schema package artifact",
	Long:  "Reads a project manifest, parses every included SQL file, builds the dependency graph, and writes the resulting package to a zip artifact.",
	RunE: func(cmd *cobra.Command, args []string) error {
		pkg, err := assembler.Assemble(packageManifest)
		if err != nil {
			return err
		}
		if err := archive.WriteFile(packageOutput, pkg); err != nil {
			return err
		}
		logger.Get().Info("wrote package artifact",
			"path", packageOutput,
			"tables", len(pkg.Tables),
			"functions", len(pkg.Functions),
		)
		fmt.Printf("wrote %s (%d tables, %d functions, %d types)\n",
			packageOutput, len(pkg.Tables), len(pkg.Functions), len(pkg.Types))
		return nil
	},
}

func init() {
	packageCmd.Flags().StringVar(&packageManifest, "manifest", "declpg.json", "path to the project manifest")
	packageCmd.Flags().StringVar(&packageOutput, "output", "package.zip", "path to write the package artifact")
}
