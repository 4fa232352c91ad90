package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/declpg/declpg/internal/plan"
)

var scriptFlags connectionFlags

var scriptCmd = &cobra.Command{
	Use:   "script",
	Short: "Print the SQL a publish would execute, without applying it",
	RunE: func(cmd *cobra.Command, args []string) error {
		instrs, _, err := buildPlan(context.Background(), &scriptFlags)
		if err != nil {
			return err
		}
		for _, stmt := range plan.EmitSQL(instrs) {
			fmt.Println(stmt)
		}
		return nil
	},
}

func init() {
	scriptFlags.register(scriptCmd)
}
