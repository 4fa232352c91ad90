package plan

import (
	"strings"
	"testing"

	"github.com/declpg/declpg/internal/schema"
)

func TestEmitSQLCreateTable(t *testing.T) {
	instrs := []*Instruction{
		{
			Kind: CreateTable,
			NewTable: &schema.Table{
				QName: schema.QName{Schema: "public", Local: "users"},
				Columns: []*schema.Column{
					{LocalName: "id", SQLType: "integer", Nullable: false},
				},
				Constraints: []*schema.TableConstraint{
					{Kind: schema.ConstraintPrimary, Name: "users_pkey", Columns: []string{"id"}},
				},
			},
		},
	}
	out := EmitSQL(instrs)
	if len(out) != 1 {
		t.Fatalf("expected one statement, got %d: %v", len(out), out)
	}
	stmt := out[0]
	if !strings.HasPrefix(stmt, `CREATE TABLE public.users`) {
		t.Errorf("unexpected statement: %q", stmt)
	}
	if !strings.Contains(stmt, "PRIMARY KEY") {
		t.Errorf("expected primary key clause: %q", stmt)
	}
	if !strings.HasSuffix(strings.TrimSpace(stmt), ");") {
		t.Errorf("expected statement to be terminated: %q", stmt)
	}
}

func TestEmitSQLAlterColumnSetNotNull(t *testing.T) {
	instrs := []*Instruction{
		{
			Kind:         AlterColumn,
			Table:        schema.QName{Schema: "public", Local: "users"},
			ColumnName:   "email",
			Column:       &schema.Column{LocalName: "email", SQLType: "text", Nullable: false},
			ColumnChange: ColumnNullability,
		},
	}
	out := EmitSQL(instrs)
	if len(out) != 1 || !strings.Contains(out[0], "SET NOT NULL") {
		t.Fatalf("unexpected output: %v", out)
	}
}

func TestEmitSQLDropTable(t *testing.T) {
	instrs := []*Instruction{
		{Kind: DropTable, Table: schema.QName{Schema: "public", Local: "old_stuff"}},
	}
	out := EmitSQL(instrs)
	if len(out) != 1 || out[0] != `DROP TABLE public.old_stuff;` {
		t.Fatalf("unexpected output: %v", out)
	}
}

func TestEmitSQLEnableExtension(t *testing.T) {
	instrs := []*Instruction{{Kind: EnableExtension, Name: "pgcrypto"}}
	out := EmitSQL(instrs)
	if len(out) != 1 || out[0] != `CREATE EXTENSION IF NOT EXISTS pgcrypto;` {
		t.Fatalf("unexpected output: %v", out)
	}
}
