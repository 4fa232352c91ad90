package archive

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/declpg/declpg/internal/schema"
)

func samplePackage(t *testing.T) *schema.Package {
	t.Helper()
	pkg := schema.New()
	pkg.AddSchema(&schema.Schema{Name: "public"})
	pkg.AddExtension(&schema.Extension{Name: "pgcrypto"})
	pkg.AddTable(&schema.Table{
		QName: schema.QName{Schema: "public", Local: "users"},
		Columns: []*schema.Column{
			{LocalName: "id", SQLType: "int", Nullable: false},
			{LocalName: "email", SQLType: "text", Nullable: false},
		},
		Constraints: []*schema.TableConstraint{
			{Kind: schema.ConstraintPrimary, Name: "users_pkey", Columns: []string{"id"}},
		},
	})
	if err := pkg.GenerateDependencyGraph(); err != nil {
		t.Fatalf("unexpected graph error: %v", err)
	}
	return pkg
}

func TestWriteToAndFromPathRoundTrip(t *testing.T) {
	pkg := samplePackage(t)

	var buf bytes.Buffer
	if err := WriteTo(&buf, pkg); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "package.zip")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	got, err := FromPath(path)
	if err != nil {
		t.Fatalf("FromPath: %v", err)
	}

	if len(got.Tables) != 1 || got.Tables[0].QName.String() != "public.users" {
		t.Fatalf("unexpected tables: %+v", got.Tables)
	}
	if len(got.Tables[0].Columns) != 2 {
		t.Fatalf("expected 2 columns, got %d", len(got.Tables[0].Columns))
	}
	if len(got.Extensions) != 1 || got.Extensions[0].Name != "pgcrypto" {
		t.Fatalf("unexpected extensions: %+v", got.Extensions)
	}
	if len(got.Order) != len(pkg.Order) {
		t.Fatalf("expected resolved order of length %d, got %d", len(pkg.Order), len(got.Order))
	}
}

func TestWriteFileRoundTrip(t *testing.T) {
	pkg := samplePackage(t)
	path := filepath.Join(t.TempDir(), "out.zip")

	if err := WriteFile(path, pkg); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	got, err := FromPath(path)
	if err != nil {
		t.Fatalf("FromPath: %v", err)
	}
	if len(got.Schemas) != 1 || got.Schemas[0].Name != "public" {
		t.Fatalf("unexpected schemas: %+v", got.Schemas)
	}
}
