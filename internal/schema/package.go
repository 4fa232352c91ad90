package schema

import (
	"sort"
	"strings"

	"github.com/declpg/declpg/internal/graph"
	"github.com/declpg/declpg/internal/pgerrors"
)

// Package is the ordered, normalized set of all declared entities plus an
// optional build order — the unit serialized into the portable artifact.
// Entities are created by the assembler, mutated only by Normalize, then
// frozen for the remainder of the pipeline.
type Package struct {
	Extensions []*Extension
	Schemas    []*Schema
	Types      []*Type
	Tables     []*Table
	Functions  []*Function
	Scripts    []*Script

	// Order is the topological build order produced once by
	// GenerateDependencyGraph, or nil if it has not been computed (as on
	// the introspected/live side, where it is unused).
	Order []graph.Node
}

// New returns an empty Package.
func New() *Package {
	return &Package{}
}

func (p *Package) AddExtension(e *Extension) { p.Extensions = append(p.Extensions, e) }
func (p *Package) AddSchema(s *Schema)        { p.Schemas = append(p.Schemas, s) }
func (p *Package) AddType(t *Type)            { p.Types = append(p.Types, t) }
func (p *Package) AddTable(t *Table)          { p.Tables = append(p.Tables, t) }
func (p *Package) AddFunction(f *Function)    { p.Functions = append(p.Functions, f) }
func (p *Package) AddScript(s *Script)        { p.Scripts = append(p.Scripts, s) }

// HasSchema reports whether a schema by this name (case-insensitively)
// already exists.
func (p *Package) HasSchema(name string) bool {
	for _, s := range p.Schemas {
		if strings.EqualFold(s.Name, name) {
			return true
		}
	}
	return false
}

// TableByQName returns the table with the given schema-qualified name, or nil.
func (p *Package) TableByQName(q QName) *Table {
	for _, t := range p.Tables {
		if t.QName == q {
			return t
		}
	}
	return nil
}

// FunctionByQName returns the function with the given schema-qualified name, or nil.
func (p *Package) FunctionByQName(q QName) *Function {
	for _, f := range p.Functions {
		if f.QName == q {
			return f
		}
	}
	return nil
}

// Normalize implements spec.md §4.4 step 5: ensure a public schema exists,
// ensure the default schema itself exists, and qualify every unresolved
// schema with defaultSchema. spec.md §8 Scenario A declares tables under a
// non-public default_schema with no accompanying CREATE SCHEMA statement
// and still expects the schema to appear in the Package and its dependency
// graph, so the default schema is registered here exactly like "public" is.
func (p *Package) Normalize(defaultSchema string) {
	if !p.HasSchema("public") {
		p.AddSchema(&Schema{Name: "public"})
	}
	if defaultSchema != "" && !p.HasSchema(defaultSchema) {
		p.AddSchema(&Schema{Name: defaultSchema})
	}
	for _, t := range p.Tables {
		if t.QName.Schema == "" {
			t.QName.Schema = defaultSchema
		}
		for _, c := range t.Constraints {
			if c.Kind == ConstraintForeign && c.RefTable.Schema == "" {
				c.RefTable.Schema = defaultSchema
			}
		}
	}
	for _, f := range p.Functions {
		if f.QName.Schema == "" {
			f.QName.Schema = defaultSchema
		}
	}
	for _, t := range p.Types {
		if t.QName.Schema == "" {
			t.QName.Schema = defaultSchema
		}
	}
}

// Validate enforces spec.md §3 invariants 1, 2 and 5. Invariants 3 and 4
// are structural guarantees the assembler and GenerateDependencyGraph
// uphold by construction and are not re-checked here.
func (p *Package) Validate() error {
	seen := map[string]bool{}
	for _, t := range p.Tables {
		if t.QName.Schema == "" {
			return &pgerrors.GenerationError{Message: "table " + t.QName.Local + " has no resolved schema"}
		}
		key := "table:" + t.QName.String()
		if seen[key] {
			return &pgerrors.GenerationError{Message: "duplicate table " + t.QName.String()}
		}
		seen[key] = true
	}
	for _, f := range p.Functions {
		if f.QName.Schema == "" {
			return &pgerrors.GenerationError{Message: "function " + f.QName.Local + " has no resolved schema"}
		}
		key := "function:" + f.QName.String()
		if seen[key] {
			return &pgerrors.GenerationError{Message: "duplicate function " + f.QName.String()}
		}
		seen[key] = true
	}
	for _, ty := range p.Types {
		if ty.QName.Schema == "" {
			return &pgerrors.GenerationError{Message: "type " + ty.QName.Local + " has no resolved schema"}
		}
	}
	for _, t := range p.Tables {
		for _, c := range t.Constraints {
			if c.Kind != ConstraintForeign {
				continue
			}
			if p.TableByQName(c.RefTable) == nil {
				return &pgerrors.GenerationError{
					Message: "foreign key " + c.Name + " on " + t.QName.String() + " references unknown table " + c.RefTable.String(),
				}
			}
		}
	}
	return nil
}

// GenerateDependencyGraph builds the dependency graph of spec.md §4.3 from
// the Package's current entities and stores a validated topological order
// on Order. It is grounded on original_source/psqlpack's
// GenerateDependencyGraph trait: tables, functions and types register their
// own dependencies; schemas and extensions are leaves.
func (p *Package) GenerateDependencyGraph() error {
	g := graph.New()

	// Schemas are implied leaves (DESIGN.md, grounded on
	// original_source/psqlpack's GenerateDependencyGraph trait comment):
	// a reference to one is always resolvable even if the Package never
	// declared it explicitly, since Normalize may not have run or a schema
	// may be created implicitly. impliedSchema registers the node at the
	// point of reference rather than requiring it to have been added
	// up front, so a Table→Schema edge never trips Validate's
	// unresolved-dependency check.
	impliedSchema := func(name string) graph.Node {
		n := graph.SchemaNode(name)
		g.AddNode(n)
		return n
	}

	for _, s := range p.Schemas {
		impliedSchema(s.Name)
	}
	for _, e := range p.Extensions {
		g.AddNode(graph.ExtensionNode(e.Name))
	}
	for _, ty := range p.Types {
		g.AddNode(graph.TypeNode(ty.QName.String()))
		g.AddEdge(graph.TypeNode(ty.QName.String()), impliedSchema(ty.QName.Schema), 1.0)
	}

	for _, t := range p.Tables {
		tableNode := graph.TableNode(t.QName.String())
		g.AddNode(tableNode)
		g.AddEdge(tableNode, impliedSchema(t.QName.Schema), 1.0)

		for _, c := range t.Columns {
			colNode := graph.ColumnNode(t.QName.String(), c.LocalName)
			g.AddNode(colNode)
			g.AddEdge(colNode, tableNode, 1.0)
			if customTypeQName, ok := customTypeRef(p, t.QName.Schema, c.SQLType); ok {
				g.AddEdge(tableNode, graph.TypeNode(customTypeQName), 1.0)
			}
		}

		for _, c := range t.Constraints {
			name := c.Name
			if name == "" {
				name = syntheticConstraintName(t.QName, c)
			}
			cNode := graph.ConstraintNode(t.QName.String(), name)
			g.AddNode(cNode)
			g.AddEdge(cNode, tableNode, 1.0)

			switch c.Kind {
			case ConstraintPrimary, ConstraintUnique:
				for _, col := range c.Columns {
					g.AddEdge(cNode, graph.ColumnNode(t.QName.String(), col), 1.0)
				}
			case ConstraintForeign:
				for _, col := range c.Columns {
					g.AddEdge(cNode, graph.ColumnNode(t.QName.String(), col), 1.0)
				}
				for _, col := range c.RefColumns {
					g.AddEdge(cNode, graph.ColumnNode(c.RefTable.String(), col), 1.1)
				}
				// Direct table-level edge: guarantees the referenced table
				// precedes the referencing table even when neither table
				// has any other edge connecting them (see DESIGN.md's note
				// on resolving the tie-break Open Question).
				g.AddEdge(tableNode, graph.TableNode(c.RefTable.String()), 1.1)
			}
		}
	}

	for _, f := range p.Functions {
		fNode := graph.FunctionNode(f.QName.String())
		g.AddNode(fNode)
		g.AddEdge(fNode, impliedSchema(f.QName.Schema), 1.0)
	}

	result := g.Validate()
	switch result.Status {
	case graph.CircularReference:
		return &pgerrors.GenerationError{Message: "Circular reference detected"}
	case graph.UnresolvedDependencies:
		var names []string
		for _, n := range result.Unresolved {
			names = append(names, n.String())
		}
		return &pgerrors.GenerationError{Message: "unresolved dependencies detected: " + strings.Join(names, ", ")}
	}

	p.Order = g.TopologicalSort()
	return nil
}

func syntheticConstraintName(t QName, c *TableConstraint) string {
	return t.Local + "_" + strings.Join(c.Columns, "_") + "_" + constraintSuffix(c.Kind)
}

func constraintSuffix(k ConstraintKind) string {
	switch k {
	case ConstraintPrimary:
		return "pkey"
	case ConstraintForeign:
		return "fkey"
	case ConstraintUnique:
		return "key"
	default:
		return "check"
	}
}

// customTypeRef reports whether sqlType names a custom type declared in p
// within schema, returning its qualified name.
func customTypeRef(p *Package, schema, sqlType string) (string, bool) {
	base := strings.ToLower(strings.TrimSpace(sqlType))
	if i := strings.IndexByte(base, '('); i >= 0 {
		base = base[:i]
	}
	for _, ty := range p.Types {
		if strings.EqualFold(ty.QName.Local, base) {
			if ty.QName.Schema == schema || ty.QName.Schema == "" {
				return ty.QName.String(), true
			}
		}
	}
	return "", false
}

// SortedTableNames returns every declared table's qualified name, sorted —
// a convenience used by tests and by the planner when Order is unavailable.
func (p *Package) SortedTableNames() []string {
	names := make([]string, 0, len(p.Tables))
	for _, t := range p.Tables {
		names = append(names, t.QName.String())
	}
	sort.Strings(names)
	return names
}
