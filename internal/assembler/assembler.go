// Package assembler implements spec.md §4.4: it walks a project's SQL
// source tree, lexes and parses every file, merges the resulting
// statements into a fresh schema.Package, normalizes it, attaches deploy
// scripts, and builds its dependency graph.
package assembler

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/declpg/declpg/internal/ast"
	"github.com/declpg/declpg/internal/parser"
	"github.com/declpg/declpg/internal/pgerrors"
	"github.com/declpg/declpg/internal/schema"
)

// fileResult is the lex+parse outcome for one source file, tagged with its
// path so results from concurrent workers can be resorted deterministically
// before any error is surfaced (spec.md §5(a)).
type fileResult struct {
	path  string
	stmts []ast.Statement
	errs  []error
}

// Assemble runs the full pipeline of spec.md §4.4 against the manifest at
// manifestPath and returns the normalized, graph-ordered Package.
func Assemble(manifestPath string) (*schema.Package, error) {
	manifest, err := LoadManifest(manifestPath)
	if err != nil {
		return nil, err
	}
	return AssembleWithManifest(filepath.Dir(manifestPath), manifest)
}

// AssembleWithManifest runs the pipeline against an already-loaded manifest
// rooted at baseDir (the directory every relative path in the manifest is
// resolved against).
func AssembleWithManifest(baseDir string, manifest *Manifest) (*schema.Package, error) {
	files, err := collectSQLFiles(baseDir, manifest.IncludePaths)
	if err != nil {
		return nil, err
	}

	results := make([]fileResult, len(files))
	g, _ := errgroup.WithContext(context.Background())
	for i, f := range files {
		i, f := i, f
		g.Go(func() error {
			src, err := os.ReadFile(f)
			if err != nil {
				results[i] = fileResult{path: f, errs: []error{&pgerrors.IOError{Path: f, Err: err}}}
				return nil
			}
			stmts, errs := parser.ParseFile(f, string(src))
			results[i] = fileResult{path: f, stmts: stmts, errs: errs}
			return nil
		})
	}
	_ = g.Wait() // workers never return an error themselves; failures are captured per-file

	// results follow the sorted file list, so sorting each file's errors by
	// line and concatenating gives (path, line) order, including for lexical
	// and I/O errors, which carry no file name of their own.
	var allErrs []error
	for _, r := range results {
		sortErrorsByPosition(r.errs)
		allErrs = append(allErrs, r.errs...)
	}
	if len(allErrs) > 0 {
		return nil, &pgerrors.Multiple{Errors: allErrs}
	}

	pkg := schema.New()
	for _, r := range results {
		for _, stmt := range r.stmts {
			mergeStatement(pkg, stmt)
		}
	}

	pkg.Normalize(manifest.DefaultSchema)

	if err := attachScripts(pkg, baseDir, manifest.PreDeployScripts, schema.StagePre); err != nil {
		return nil, err
	}
	if err := attachScripts(pkg, baseDir, manifest.PostDeployScripts, schema.StagePost); err != nil {
		return nil, err
	}

	if err := pkg.Validate(); err != nil {
		return nil, err
	}
	if err := pkg.GenerateDependencyGraph(); err != nil {
		return nil, err
	}
	return pkg, nil
}

// collectSQLFiles walks every include path (non-following symlinks, per
// spec.md §4.4 step 2) collecting files matching *.sql, in a deterministic
// sorted order.
func collectSQLFiles(baseDir string, includePaths []string) ([]string, error) {
	var files []string
	for _, rel := range includePaths {
		root := rel
		if !filepath.IsAbs(root) {
			root = filepath.Join(baseDir, root)
		}
		err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}
			if strings.EqualFold(filepath.Ext(path), ".sql") {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, &pgerrors.IOError{Path: root, Err: err}
		}
	}
	sort.Strings(files)
	return files, nil
}

// attachScripts resolves each glob in patterns against baseDir and attaches
// the matched files verbatim as Scripts under the given stage.
func attachScripts(pkg *schema.Package, baseDir string, patterns []string, stage schema.Stage) error {
	for _, pattern := range patterns {
		full := pattern
		if !filepath.IsAbs(full) {
			full = filepath.Join(baseDir, full)
		}
		matches, err := filepath.Glob(full)
		if err != nil {
			return &pgerrors.ProjectError{Message: "invalid script path in project file: " + pattern}
		}
		sort.Strings(matches)
		for _, m := range matches {
			body, err := os.ReadFile(m)
			if err != nil {
				return &pgerrors.IOError{Path: m, Err: err}
			}
			pkg.AddScript(&schema.Script{
				Name:  filepath.Base(m),
				Stage: stage,
				Body:  string(body),
			})
		}
	}
	return nil
}

func sortErrorsByPosition(errs []error) {
	key := func(err error) (string, int) {
		switch e := err.(type) {
		case *pgerrors.ParseError:
			return e.File, e.LineNumber
		case *pgerrors.LexicalError:
			return "", e.LineNumber
		default:
			return "", 0
		}
	}
	sort.SliceStable(errs, func(i, j int) bool {
		fi, li := key(errs[i])
		fj, lj := key(errs[j])
		if fi != fj {
			return fi < fj
		}
		return li < lj
	})
}

func toSchemaQName(q ast.QName) schema.QName {
	return schema.QName{Schema: q.SchemaOf(), Local: q.Local}
}

func mergeStatement(pkg *schema.Package, stmt ast.Statement) {
	switch s := stmt.(type) {
	case *ast.SchemaStmt:
		if !pkg.HasSchema(s.Name) {
			pkg.AddSchema(&schema.Schema{Name: s.Name})
		}
	case *ast.ExtensionStmt:
		pkg.AddExtension(&schema.Extension{Name: s.Name})
	case *ast.TypeStmt:
		pkg.AddType(toSchemaType(s))
	case *ast.TableStmt:
		pkg.AddTable(toSchemaTable(s))
	case *ast.FuncStmt:
		pkg.AddFunction(toSchemaFunction(s))
	}
}

func toSchemaType(s *ast.TypeStmt) *schema.Type {
	t := &schema.Type{
		QName:  toSchemaQName(s.Name),
		Values: s.Values,
		Base:   s.Base,
		Checks: s.Checks,
	}
	switch s.Kind {
	case ast.TypeEnum:
		t.Kind = schema.TypeEnum
	case ast.TypeComposite:
		t.Kind = schema.TypeComposite
		for _, f := range s.Fields {
			t.Fields = append(t.Fields, schema.CompositeField{Name: f.Name, SQLType: f.SQLType})
		}
	case ast.TypeAlias:
		t.Kind = schema.TypeAlias
	case ast.TypeDomain:
		t.Kind = schema.TypeDomain
	}
	return t
}

func toSchemaTable(s *ast.TableStmt) *schema.Table {
	t := &schema.Table{QName: toSchemaQName(s.Name)}
	for _, c := range s.Columns {
		col := &schema.Column{
			LocalName: c.Name,
			SQLType:   c.SQLType,
			Nullable:  !c.NotNull,
			Default:   c.Default,
		}
		if c.Identity != nil {
			col.Identity = &schema.Identity{Always: c.Identity.Always}
		}
		t.Columns = append(t.Columns, col)
	}
	for _, c := range s.Constraints {
		t.Constraints = append(t.Constraints, toSchemaConstraint(c))
	}
	return t
}

func toSchemaConstraint(c *ast.TableConstraint) *schema.TableConstraint {
	out := &schema.TableConstraint{
		Name:       c.Name,
		Columns:    c.Columns,
		Parameters: c.Parameters,
		RefColumns: c.RefColumns,
		OnDelete:   c.OnDelete,
		OnUpdate:   c.OnUpdate,
		Expression: c.Expression,
	}
	out.RefTable = toSchemaQName(c.RefTable)
	switch c.Kind {
	case ast.ConstraintPrimary:
		out.Kind = schema.ConstraintPrimary
	case ast.ConstraintForeign:
		out.Kind = schema.ConstraintForeign
	case ast.ConstraintUnique:
		out.Kind = schema.ConstraintUnique
	case ast.ConstraintCheck:
		out.Kind = schema.ConstraintCheck
	}
	return out
}

func toSchemaFunction(s *ast.FuncStmt) *schema.Function {
	f := &schema.Function{
		QName:      toSchemaQName(s.Name),
		ReturnType: s.ReturnType,
		Language:   s.Language,
		Body:       s.Body,
		Volatility: s.Volatility,
	}
	for _, a := range s.Arguments {
		f.Arguments = append(f.Arguments, schema.FuncArg{Name: a.Name, SQLType: a.SQLType})
	}
	return f
}
