package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/declpg/declpg/internal/color"
	"github.com/declpg/declpg/internal/plan"
)

var reportFlags connectionFlags
var reportNoColor bool

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print a human-readable change-set report",
	RunE: func(cmd *cobra.Command, args []string) error {
		instrs, _, err := buildPlan(context.Background(), &reportFlags)
		if err != nil {
			return err
		}
		printReport(instrs)
		return nil
	},
}

func init() {
	reportFlags.register(reportCmd)
	reportCmd.Flags().BoolVar(&reportNoColor, "no-color", false, "disable ANSI color in the report")
}

func printReport(instrs []*plan.Instruction) {
	c := color.New(!reportNoColor)

	if len(instrs) == 0 {
		fmt.Println(c.Bold("No changes. The database is up to date."))
		return
	}

	var added, changed, dropped int
	for _, in := range instrs {
		switch in.Kind {
		case plan.CreateSchema, plan.CreateTable, plan.CreateType, plan.AddColumn,
			plan.AddConstraint, plan.EnableExtension, plan.CreateOrReplaceFunction:
			added++
			fmt.Println(c.FormatPlanLine("+", in.Kind.String(), instructionLabel(in), "add"))
		case plan.DropTable, plan.DropType, plan.DropColumn, plan.DropConstraint, plan.DropFunction:
			dropped++
			fmt.Println(c.FormatPlanLine("-", in.Kind.String(), instructionLabel(in), "drop"))
		case plan.AlterColumn, plan.AlterType:
			changed++
			fmt.Println(c.FormatPlanLine("~", in.Kind.String(), instructionLabel(in), "change"))
		case plan.RunScript:
			fmt.Printf("  %s %s script %s\n", c.Cyan("*"), in.Stage, in.Name)
		}
	}

	fmt.Println()
	fmt.Println(c.FormatPlanHeader(added, changed, dropped))
}

func instructionLabel(in *plan.Instruction) string {
	switch in.Kind {
	case plan.EnableExtension, plan.CreateSchema:
		return in.Name
	case plan.CreateType, plan.DropType, plan.AlterType:
		return in.Type.String()
	case plan.CreateTable, plan.DropTable:
		return in.Table.String()
	case plan.AddColumn, plan.AlterColumn, plan.DropColumn:
		return in.Table.String() + "." + in.ColumnName
	case plan.AddConstraint, plan.DropConstraint:
		return in.Table.String() + "." + in.Name
	case plan.CreateOrReplaceFunction, plan.DropFunction:
		return in.Function.QName.String()
	default:
		return ""
	}
}
