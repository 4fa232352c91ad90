package cmd

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/declpg/declpg/internal/logger"
	"github.com/declpg/declpg/internal/plan"
)

var publishFlags connectionFlags

var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Plan and apply changes against a live database",
	Long:  "Diffs a package artifact against a live database and executes the resulting change-set inside a single transaction.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		instrs, _, err := buildPlan(ctx, &publishFlags)
		if err != nil {
			return err
		}
		if len(instrs) == 0 {
			fmt.Println("no changes to publish")
			return nil
		}

		db, err := publishFlags.connect()
		if err != nil {
			return err
		}
		defer db.Close()

		if err := applyStatements(ctx, db, plan.EmitSQL(instrs)); err != nil {
			return err
		}
		logger.Get().Info("publish complete", "instructions", len(instrs))
		fmt.Printf("applied %d change(s)\n", len(instrs))
		return nil
	},
}

func init() {
	publishFlags.register(publishCmd)
}

func applyStatements(ctx context.Context, db *sql.DB, statements []string) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	for _, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			tx.Rollback()
			return fmt.Errorf("executing %q: %w", stmt, err)
		}
	}
	return tx.Commit()
}
