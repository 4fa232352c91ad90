package plan

import (
	"fmt"
	"strings"

	"github.com/declpg/declpg/internal/schema"
	"github.com/declpg/declpg/internal/util"
)

// EmitSQL renders the ordered instruction sequence as `;`-terminated SQL
// statements, one or more per instruction (spec.md §4.6 "SQL emission").
func EmitSQL(instrs []*Instruction) []string {
	var out []string
	for _, in := range instrs {
		out = append(out, emitOne(in)...)
	}
	return out
}

func qualified(q schema.QName) string {
	return util.QualifyEntityNameWithQuotes(q.Schema, q.Local, "")
}

func emitOne(in *Instruction) []string {
	switch in.Kind {
	case EnableExtension:
		return []string{fmt.Sprintf("CREATE EXTENSION IF NOT EXISTS %s;", util.QuoteIdentifier(in.Name))}
	case CreateSchema:
		return []string{fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s;", util.QuoteIdentifier(in.Name))}
	case CreateType:
		return []string{emitCreateType(in.NewType)}
	case DropType:
		return []string{fmt.Sprintf("DROP TYPE %s;", qualified(in.Type))}
	case AlterType:
		return []string{fmt.Sprintf("-- ALTER TYPE %s requires manual review;", qualified(in.Type))}
	case CreateTable:
		return []string{emitCreateTable(in.NewTable)}
	case DropTable:
		return []string{fmt.Sprintf("DROP TABLE %s;", qualified(in.Table))}
	case AddColumn:
		return []string{fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s;", qualified(in.Table), emitColumnDef(in.Column))}
	case DropColumn:
		return []string{fmt.Sprintf("ALTER TABLE %s DROP COLUMN %s;", qualified(in.Table), util.QuoteIdentifier(in.ColumnName))}
	case AlterColumn:
		return []string{emitAlterColumn(in)}
	case AddConstraint:
		return []string{fmt.Sprintf("ALTER TABLE %s ADD %s;", qualified(in.Table), emitConstraintDef(in.Constraint))}
	case DropConstraint:
		return []string{fmt.Sprintf("ALTER TABLE %s DROP CONSTRAINT %s;", qualified(in.Table), util.QuoteIdentifier(in.Name))}
	case CreateOrReplaceFunction:
		return []string{emitFunction(in.Function)}
	case DropFunction:
		return []string{fmt.Sprintf("DROP FUNCTION %s;", qualified(in.Function.QName))}
	case RunScript:
		return []string{strings.TrimRight(in.Body, "\n") + ";"}
	default:
		return nil
	}
}

func emitCreateTable(t *schema.Table) string {
	var parts []string
	for _, c := range t.Columns {
		parts = append(parts, emitColumnDef(c))
	}
	for _, c := range t.Constraints {
		parts = append(parts, emitConstraintDef(c))
	}
	return fmt.Sprintf("CREATE TABLE %s (\n  %s\n);", qualified(t.QName), strings.Join(parts, ",\n  "))
}

func emitColumnDef(c *schema.Column) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s", util.QuoteIdentifier(c.LocalName), c.SQLType)
	if !c.Nullable {
		b.WriteString(" NOT NULL")
	}
	if c.Default != nil {
		fmt.Fprintf(&b, " DEFAULT %s", *c.Default)
	}
	if c.Identity != nil {
		if c.Identity.Always {
			b.WriteString(" GENERATED ALWAYS AS IDENTITY")
		} else {
			b.WriteString(" GENERATED BY DEFAULT AS IDENTITY")
		}
	}
	return b.String()
}

func emitConstraintDef(c *schema.TableConstraint) string {
	name := ""
	if c.Name != "" {
		name = fmt.Sprintf("CONSTRAINT %s ", util.QuoteIdentifier(c.Name))
	}
	cols := quoteAll(c.Columns)
	switch c.Kind {
	case schema.ConstraintPrimary:
		return fmt.Sprintf("%sPRIMARY KEY (%s)", name, strings.Join(cols, ", "))
	case schema.ConstraintUnique:
		return fmt.Sprintf("%sUNIQUE (%s)", name, strings.Join(cols, ", "))
	case schema.ConstraintCheck:
		return fmt.Sprintf("%sCHECK (%s)", name, c.Expression)
	case schema.ConstraintForeign:
		refCols := quoteAll(c.RefColumns)
		stmt := fmt.Sprintf("%sFOREIGN KEY (%s) REFERENCES %s (%s)",
			name, strings.Join(cols, ", "), qualified(c.RefTable), strings.Join(refCols, ", "))
		if c.OnDelete != "" {
			stmt += " ON DELETE " + c.OnDelete
		}
		if c.OnUpdate != "" {
			stmt += " ON UPDATE " + c.OnUpdate
		}
		return stmt
	default:
		return name
	}
}

func emitAlterColumn(in *Instruction) string {
	col := util.QuoteIdentifier(in.ColumnName)
	switch in.ColumnChange {
	case ColumnType:
		return fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s TYPE %s;", qualified(in.Table), col, in.Column.SQLType)
	case ColumnNullability:
		if in.Column.Nullable {
			return fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s DROP NOT NULL;", qualified(in.Table), col)
		}
		return fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s SET NOT NULL;", qualified(in.Table), col)
	case ColumnDefault:
		if in.Column.Default == nil {
			return fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s DROP DEFAULT;", qualified(in.Table), col)
		}
		return fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s SET DEFAULT %s;", qualified(in.Table), col, *in.Column.Default)
	default:
		return fmt.Sprintf("-- unknown column change on %s.%s", qualified(in.Table), col)
	}
}

func emitFunction(f *schema.Function) string {
	var args []string
	for _, a := range f.Arguments {
		args = append(args, fmt.Sprintf("%s %s", a.Name, a.SQLType))
	}
	return fmt.Sprintf("CREATE OR REPLACE FUNCTION %s(%s) RETURNS %s LANGUAGE %s AS $function$\n%s\n$function$;",
		qualified(f.QName), strings.Join(args, ", "), f.ReturnType, f.Language, strings.TrimSpace(f.Body))
}

func emitCreateType(t *schema.Type) string {
	switch t.Kind {
	case schema.TypeEnum:
		quoted := make([]string, len(t.Values))
		for i, v := range t.Values {
			quoted[i] = "'" + strings.ReplaceAll(v, "'", "''") + "'"
		}
		return fmt.Sprintf("CREATE TYPE %s AS ENUM (%s);", qualified(t.QName), strings.Join(quoted, ", "))
	case schema.TypeComposite:
		var fields []string
		for _, f := range t.Fields {
			fields = append(fields, fmt.Sprintf("%s %s", util.QuoteIdentifier(f.Name), f.SQLType))
		}
		return fmt.Sprintf("CREATE TYPE %s AS (%s);", qualified(t.QName), strings.Join(fields, ", "))
	case schema.TypeDomain:
		stmt := fmt.Sprintf("CREATE DOMAIN %s AS %s", qualified(t.QName), t.Base)
		for _, c := range t.Checks {
			stmt += fmt.Sprintf(" CHECK (%s)", c)
		}
		return stmt + ";"
	default:
		return fmt.Sprintf("CREATE TYPE %s;", qualified(t.QName))
	}
}

func quoteAll(names []string) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = util.QuoteIdentifier(n)
	}
	return out
}
