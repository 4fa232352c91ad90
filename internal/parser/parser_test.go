package parser

import (
	"testing"

	"github.com/declpg/declpg/internal/ast"
	"github.com/declpg/declpg/internal/lexer"
)

func TestParseFileTableWithInlineConstraints(t *testing.T) {
	src := `CREATE TABLE users (
		id INT NOT NULL PRIMARY KEY,
		email VARCHAR(255) UNIQUE,
		name VARCHAR(100) DEFAULT 'anon' NOT NULL
	);`
	stmts, errs := ParseFile("users.sql", src)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if len(stmts) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(stmts))
	}
	table, ok := stmts[0].(*ast.TableStmt)
	if !ok {
		t.Fatalf("expected *ast.TableStmt, got %T", stmts[0])
	}
	if table.Name.Local != "users" {
		t.Errorf("expected table name users, got %q", table.Name.Local)
	}
	if len(table.Columns) != 3 {
		t.Fatalf("expected 3 columns, got %d", len(table.Columns))
	}
	if !table.Columns[0].PrimaryKey {
		t.Errorf("expected id column to be marked primary key")
	}
	if table.Columns[2].Default == nil || *table.Columns[2].Default != "'anon'" {
		t.Errorf("expected name default 'anon', got %+v", table.Columns[2].Default)
	}

	var primaryFound bool
	for _, c := range table.Constraints {
		if c.Kind == ast.ConstraintPrimary {
			primaryFound = true
		}
	}
	if !primaryFound {
		t.Errorf("expected an implicit primary key constraint from the column")
	}
}

func TestParseFileForeignKeyTableConstraint(t *testing.T) {
	src := `CREATE TABLE orders (
		customer_id INT,
		CONSTRAINT orders_customer_fkey FOREIGN KEY (customer_id) REFERENCES customers (id) ON DELETE CASCADE
	);`
	stmts, errs := ParseFile("orders.sql", src)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	table := stmts[0].(*ast.TableStmt)
	if len(table.Constraints) != 1 {
		t.Fatalf("expected 1 constraint, got %d", len(table.Constraints))
	}
	fk := table.Constraints[0]
	if fk.Kind != ast.ConstraintForeign || fk.Name != "orders_customer_fkey" {
		t.Fatalf("unexpected constraint: %+v", fk)
	}
	if fk.RefTable.Local != "customers" || fk.OnDelete != "CASCADE" {
		t.Fatalf("unexpected FK target: %+v", fk)
	}
}

func TestParseFileSyntaxErrorRecoversToNextStatement(t *testing.T) {
	src := `CREATE TABLE a (id INT);
CREATE BOGUS b ();
CREATE TABLE c (id INT);`
	stmts, errs := ParseFile("mixed.sql", src)
	if len(errs) == 0 {
		t.Fatal("expected at least one parse error for the bogus statement")
	}
	var names []string
	for _, s := range stmts {
		if tbl, ok := s.(*ast.TableStmt); ok {
			names = append(names, tbl.Name.Local)
		}
	}
	// A file with any error returns no statements per ParseFile's contract;
	// errors and statements are mutually exclusive results for one file.
	if len(stmts) != 0 {
		t.Fatalf("expected no statements alongside errors, got %v", names)
	}

	// The recovery itself is visible through the Parser: the statements on
	// either side of the bogus one still parse, and only one error is kept.
	toks, lexErr := lexer.Tokenize(src)
	if lexErr != nil {
		t.Fatalf("unexpected lexical error: %v", lexErr)
	}
	p := New("mixed.sql", toks)
	recovered := p.ParseStatements()
	if len(recovered) != 2 || len(p.errs) != 1 {
		t.Fatalf("expected 2 statements and 1 error after recovery, got %d and %d", len(recovered), len(p.errs))
	}
}

func TestParseFileFunctionWithDollarQuotedBody(t *testing.T) {
	src := `CREATE FUNCTION add_one(n INT) RETURNS INT LANGUAGE sql AS $$SELECT n + 1$$;`
	stmts, errs := ParseFile("fn.sql", src)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	fn := stmts[0].(*ast.FuncStmt)
	if fn.Name.Local != "add_one" || fn.Language != "sql" {
		t.Fatalf("unexpected function: %+v", fn)
	}
	if fn.Body != "SELECT n + 1" {
		t.Errorf("unexpected body: %q", fn.Body)
	}
}

func TestParseFileEnumType(t *testing.T) {
	src := `CREATE TYPE mood AS ENUM ('sad', 'ok', 'happy');`
	stmts, errs := ParseFile("type.sql", src)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	ty := stmts[0].(*ast.TypeStmt)
	if ty.Kind != ast.TypeEnum || len(ty.Values) != 3 {
		t.Fatalf("unexpected type: %+v", ty)
	}
}
