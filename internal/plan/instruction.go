package plan

import "github.com/declpg/declpg/internal/schema"

// Kind tags the variant of a ChangeInstruction. A closed sum type, matched
// exhaustively by SQL emission rather than modeled as an interface
// hierarchy (spec.md §9).
type Kind int

const (
	EnableExtension Kind = iota
	CreateSchema
	CreateType
	DropType
	AlterType
	CreateTable
	DropTable
	AddColumn
	AlterColumn
	DropColumn
	AddConstraint
	DropConstraint
	CreateOrReplaceFunction
	DropFunction
	RunScript
)

func (k Kind) String() string {
	switch k {
	case EnableExtension:
		return "EnableExtension"
	case CreateSchema:
		return "CreateSchema"
	case CreateType:
		return "CreateType"
	case DropType:
		return "DropType"
	case AlterType:
		return "AlterType"
	case CreateTable:
		return "CreateTable"
	case DropTable:
		return "DropTable"
	case AddColumn:
		return "AddColumn"
	case AlterColumn:
		return "AlterColumn"
	case DropColumn:
		return "DropColumn"
	case AddConstraint:
		return "AddConstraint"
	case DropConstraint:
		return "DropConstraint"
	case CreateOrReplaceFunction:
		return "CreateOrReplaceFunction"
	case DropFunction:
		return "DropFunction"
	case RunScript:
		return "RunScript"
	default:
		return "Unknown"
	}
}

// ColumnChange narrows an AlterColumn instruction to the specific aspect
// that differs — a column diff decomposes into up to three of these so
// each is independently idempotent to re-apply (spec.md §4.6 step 2).
type ColumnChange string

const (
	ColumnType        ColumnChange = "type"
	ColumnNullability ColumnChange = "nullability"
	ColumnDefault     ColumnChange = "default"
)

// Instruction is one ordered step of a change-set plan.
type Instruction struct {
	Kind Kind

	// Table/Type/Function-qualified instructions.
	Table    schema.QName
	Type     schema.QName
	Function *schema.Function

	// Extension/Schema instructions.
	Name string

	// Column instructions.
	Column       *schema.Column
	ColumnName   string
	ColumnChange ColumnChange

	// Constraint instructions.
	Constraint *schema.TableConstraint

	// CreateTable carries the full table so emission can render every
	// column and constraint in one statement.
	NewTable *schema.Table
	NewType  *schema.Type

	// RunScript.
	Stage schema.Stage
	Body  string
}
