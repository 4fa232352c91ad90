package plan

import (
	"testing"

	"github.com/declpg/declpg/internal/schema"
)

func usersTable(nullableEmail bool) *schema.Table {
	return &schema.Table{
		QName: schema.QName{Schema: "public", Local: "users"},
		Columns: []*schema.Column{
			{LocalName: "id", SQLType: "integer", Nullable: false},
			{LocalName: "email", SQLType: "text", Nullable: nullableEmail},
		},
		Constraints: []*schema.TableConstraint{
			{Kind: schema.ConstraintPrimary, Name: "users_pkey", Columns: []string{"id"}},
		},
	}
}

func packageWith(tables ...*schema.Table) *schema.Package {
	pkg := schema.New()
	pkg.AddSchema(&schema.Schema{Name: "public"})
	for _, t := range tables {
		pkg.AddTable(t)
	}
	return pkg
}

func TestPlanEmptyDiffWhenDeclaredEqualsLive(t *testing.T) {
	declared := packageWith(usersTable(false))
	live := packageWith(usersTable(false))

	if err := declared.GenerateDependencyGraph(); err != nil {
		t.Fatalf("unexpected graph error: %v", err)
	}

	instrs, err := Plan(declared, live, DefaultProfile())
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if len(instrs) != 0 {
		t.Fatalf("expected no instructions for identical schemas, got %+v", instrs)
	}
}

func TestPlanAddColumnWhenDeclaredHasExtraColumn(t *testing.T) {
	live := packageWith(&schema.Table{
		QName: schema.QName{Schema: "public", Local: "users"},
		Columns: []*schema.Column{
			{LocalName: "id", SQLType: "integer", Nullable: false},
		},
		Constraints: []*schema.TableConstraint{
			{Kind: schema.ConstraintPrimary, Name: "users_pkey", Columns: []string{"id"}},
		},
	})
	declared := packageWith(usersTable(true))
	if err := declared.GenerateDependencyGraph(); err != nil {
		t.Fatalf("unexpected graph error: %v", err)
	}

	instrs, err := Plan(declared, live, DefaultProfile())
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}

	var found bool
	for _, in := range instrs {
		if in.Kind == AddColumn && in.ColumnName == "email" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected an AddColumn instruction for email, got %+v", instrs)
	}
}

func TestPlanDropBlockedByAllowDropsFalse(t *testing.T) {
	declared := packageWith()
	declared.AddSchema(&schema.Schema{Name: "public"})
	if err := declared.GenerateDependencyGraph(); err != nil {
		t.Fatalf("unexpected graph error: %v", err)
	}
	live := packageWith(usersTable(false))

	_, err := Plan(declared, live, DefaultProfile())
	if err == nil {
		t.Fatal("expected an error when a drop is required but allow_drops is false")
	}
}

func TestPlanDropAllowedWhenProfilePermitsIt(t *testing.T) {
	declared := packageWith()
	declared.AddSchema(&schema.Schema{Name: "public"})
	if err := declared.GenerateDependencyGraph(); err != nil {
		t.Fatalf("unexpected graph error: %v", err)
	}
	live := packageWith(usersTable(false))

	profile := &Profile{AllowDrops: true}
	instrs, err := Plan(declared, live, profile)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	var found bool
	for _, in := range instrs {
		if in.Kind == DropTable {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a DropTable instruction, got %+v", instrs)
	}
}

func TestPlanIsIdempotentAcrossRepeatedRuns(t *testing.T) {
	declared := packageWith(usersTable(false))
	if err := declared.GenerateDependencyGraph(); err != nil {
		t.Fatalf("unexpected graph error: %v", err)
	}
	live := packageWith()
	live.AddSchema(&schema.Schema{Name: "public"})

	profile := DefaultProfile()
	first, err := Plan(declared, live, profile)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	// Applying the plan brings live into conformance with declared; a second
	// plan against the post-apply state should therefore be empty.
	second, err := Plan(declared, declared, profile)
	if err != nil {
		t.Fatalf("second Plan: %v", err)
	}
	if len(first) == 0 {
		t.Fatal("expected a non-empty first plan")
	}
	if len(second) != 0 {
		t.Fatalf("expected an empty second plan once converged, got %+v", second)
	}
}

func TestPlanFunctionReplaceOnBodyChange(t *testing.T) {
	declared := schema.New()
	declared.AddSchema(&schema.Schema{Name: "public"})
	declared.AddFunction(&schema.Function{
		QName:      schema.QName{Schema: "public", Local: "f"},
		ReturnType: "integer",
		Language:   "sql",
		Body:       "SELECT 2",
	})
	if err := declared.GenerateDependencyGraph(); err != nil {
		t.Fatalf("unexpected graph error: %v", err)
	}
	live := schema.New()
	live.AddSchema(&schema.Schema{Name: "public"})
	live.AddFunction(&schema.Function{
		QName:      schema.QName{Schema: "public", Local: "f"},
		ReturnType: "integer",
		Language:   "sql",
		Body:       "SELECT 1",
	})

	instrs, err := Plan(declared, live, DefaultProfile())
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if len(instrs) != 1 || instrs[0].Kind != CreateOrReplaceFunction {
		t.Fatalf("expected a single CreateOrReplaceFunction instruction, got %+v", instrs)
	}
}
