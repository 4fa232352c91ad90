// Package plan implements the change-set planner of spec.md §4.6: given a
// declared Package, a live Package, and a publish profile, it computes the
// ordered sequence of change instructions that brings the live database
// into conformance with the declared schema.
package plan

import (
	"sort"

	"github.com/declpg/declpg/internal/graph"
	"github.com/declpg/declpg/internal/pgerrors"
	"github.com/declpg/declpg/internal/schema"
)

// Plan computes the ordered ChangeInstruction sequence for (declared, live,
// profile). It returns a *pgerrors.GenerationError, producing no partial
// plan, when the profile forbids a drop the diff would otherwise emit.
func Plan(declared, live *schema.Package, profile *Profile) ([]*Instruction, error) {
	if profile == nil {
		profile = DefaultProfile()
	}

	var body []*Instruction

	body = append(body, planExtensions(declared, live, profile)...)
	body = append(body, planSchemas(declared, live)...)
	body = append(body, planTypes(declared, live)...)

	tableInstrs, err := planTables(declared, live, profile)
	if err != nil {
		return nil, err
	}
	body = append(body, tableInstrs...)

	body = append(body, planFunctions(declared, live, profile)...)

	if !profile.AllowDrops {
		for _, in := range body {
			if isDrop(in.Kind) {
				return nil, &pgerrors.GenerationError{Message: "plan would drop " + in.Kind.String() + " but allow_drops is false"}
			}
		}
	}

	body = orderInstructions(body, declared, live)

	var out []*Instruction
	for _, s := range declared.Scripts {
		if s.Stage == schema.StagePre {
			out = append(out, &Instruction{Kind: RunScript, Stage: s.Stage, Body: s.Body, Name: s.Name})
		}
	}
	out = append(out, body...)
	for _, s := range declared.Scripts {
		if s.Stage == schema.StagePost {
			out = append(out, &Instruction{Kind: RunScript, Stage: s.Stage, Body: s.Body, Name: s.Name})
		}
	}

	return out, nil
}

func isDrop(k Kind) bool {
	switch k {
	case DropType, DropTable, DropColumn, DropConstraint, DropFunction:
		return true
	}
	return false
}

func planExtensions(declared, live *schema.Package, profile *Profile) []*Instruction {
	liveSet := map[string]bool{}
	for _, e := range live.Extensions {
		liveSet[e.Name] = true
	}
	var out []*Instruction
	for _, e := range declared.Extensions {
		if !liveSet[e.Name] || profile.GenerationOptions.ForceExtensionUpgrade {
			out = append(out, &Instruction{Kind: EnableExtension, Name: e.Name})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func planSchemas(declared, live *schema.Package) []*Instruction {
	liveSet := map[string]bool{}
	for _, s := range live.Schemas {
		liveSet[s.Name] = true
	}
	var out []*Instruction
	for _, s := range declared.Schemas {
		if !liveSet[s.Name] {
			out = append(out, &Instruction{Kind: CreateSchema, Name: s.Name})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func planTypes(declared, live *schema.Package) []*Instruction {
	declIdx := indexTypes(declared.Types)
	liveIdx := indexTypes(live.Types)

	var out []*Instruction
	for q, dt := range declIdx {
		if lt, ok := liveIdx[q]; !ok {
			out = append(out, &Instruction{Kind: CreateType, Type: dt.QName, NewType: dt})
		} else if !typesEqual(dt, lt) {
			out = append(out, &Instruction{Kind: AlterType, Type: dt.QName, NewType: dt})
		}
	}
	for q, lt := range liveIdx {
		if _, ok := declIdx[q]; !ok {
			out = append(out, &Instruction{Kind: DropType, Type: lt.QName})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Type.String() < out[j].Type.String() })
	return out
}

func indexTypes(types []*schema.Type) map[string]*schema.Type {
	m := make(map[string]*schema.Type, len(types))
	for _, t := range types {
		m[t.QName.String()] = t
	}
	return m
}

func typesEqual(a, b *schema.Type) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case schema.TypeEnum:
		return stringSlicesEqual(a.Values, b.Values)
	case schema.TypeAlias, schema.TypeDomain:
		return canonicalType(a.Base) == canonicalType(b.Base) && stringSlicesEqual(a.Checks, b.Checks)
	default:
		return len(a.Fields) == len(b.Fields)
	}
}

func stringSlicesEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func planTables(declared, live *schema.Package, profile *Profile) ([]*Instruction, error) {
	declIdx := indexTables(declared.Tables)
	liveIdx := indexTables(live.Tables)

	var out []*Instruction
	var qnames []string
	for q := range declIdx {
		qnames = append(qnames, q)
	}
	sort.Strings(qnames)

	for _, q := range qnames {
		dt := declIdx[q]
		lt, ok := liveIdx[q]
		if !ok {
			out = append(out, &Instruction{Kind: CreateTable, Table: dt.QName, NewTable: dt})
			continue
		}
		out = append(out, diffTable(dt, lt)...)
	}

	var liveQnames []string
	for q := range liveIdx {
		liveQnames = append(liveQnames, q)
	}
	sort.Strings(liveQnames)
	for _, q := range liveQnames {
		if _, ok := declIdx[q]; !ok {
			out = append(out, &Instruction{Kind: DropTable, Table: liveIdx[q].QName})
		}
	}

	_ = profile
	return out, nil
}

func indexTables(tables []*schema.Table) map[string]*schema.Table {
	m := make(map[string]*schema.Table, len(tables))
	for _, t := range tables {
		m[t.QName.String()] = t
	}
	return m
}

// diffTable implements spec.md §4.6 step 2: diff columns by local name,
// diff constraints by name.
func diffTable(declared, live *schema.Table) []*Instruction {
	var out []*Instruction

	declCols := indexColumns(declared.Columns)
	liveCols := indexColumns(live.Columns)

	var names []string
	for n := range declCols {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, name := range names {
		dc := declCols[name]
		lc, ok := liveCols[name]
		if !ok {
			out = append(out, &Instruction{Kind: AddColumn, Table: declared.QName, Column: dc, ColumnName: name})
			continue
		}
		out = append(out, diffColumn(declared.QName, name, dc, lc)...)
	}
	var liveNames []string
	for n := range liveCols {
		liveNames = append(liveNames, n)
	}
	sort.Strings(liveNames)
	for _, name := range liveNames {
		if _, ok := declCols[name]; !ok {
			out = append(out, &Instruction{Kind: DropColumn, Table: declared.QName, ColumnName: name})
		}
	}

	declCons := indexConstraints(declared.Constraints)
	liveCons := indexConstraints(live.Constraints)
	var cnames []string
	for n := range declCons {
		cnames = append(cnames, n)
	}
	sort.Strings(cnames)
	for _, name := range cnames {
		dc := declCons[name]
		lc, ok := liveCons[name]
		if !ok || !constraintsEqual(dc, lc) {
			if ok {
				out = append(out, &Instruction{Kind: DropConstraint, Table: declared.QName, Name: name})
			}
			out = append(out, &Instruction{Kind: AddConstraint, Table: declared.QName, Constraint: dc, Name: name})
		}
	}
	var liveCNames []string
	for n := range liveCons {
		liveCNames = append(liveCNames, n)
	}
	sort.Strings(liveCNames)
	for _, name := range liveCNames {
		if _, ok := declCons[name]; !ok {
			out = append(out, &Instruction{Kind: DropConstraint, Table: declared.QName, Name: name})
		}
	}

	return out
}

func indexColumns(cols []*schema.Column) map[string]*schema.Column {
	m := make(map[string]*schema.Column, len(cols))
	for _, c := range cols {
		m[c.LocalName] = c
	}
	return m
}

func indexConstraints(cons []*schema.TableConstraint) map[string]*schema.TableConstraint {
	m := make(map[string]*schema.TableConstraint, len(cons))
	for _, c := range cons {
		m[c.Name] = c
	}
	return m
}

// diffColumn decomposes a column difference into up to three independent
// AlterColumn instructions (type, nullability, default), each idempotent
// to re-apply (spec.md §4.6 step 2).
func diffColumn(table schema.QName, name string, declared, live *schema.Column) []*Instruction {
	var out []*Instruction
	if canonicalType(declared.SQLType) != canonicalType(live.SQLType) {
		out = append(out, &Instruction{Kind: AlterColumn, Table: table, ColumnName: name, Column: declared, ColumnChange: ColumnType})
	}
	if declared.Nullable != live.Nullable {
		out = append(out, &Instruction{Kind: AlterColumn, Table: table, ColumnName: name, Column: declared, ColumnChange: ColumnNullability})
	}
	if canonicalDefault(declared.Default) != canonicalDefault(live.Default) {
		out = append(out, &Instruction{Kind: AlterColumn, Table: table, ColumnName: name, Column: declared, ColumnChange: ColumnDefault})
	}
	return out
}

func constraintsEqual(a, b *schema.TableConstraint) bool {
	if a.Kind != b.Kind {
		return false
	}
	if !stringSlicesEqual(a.Columns, b.Columns) {
		return false
	}
	switch a.Kind {
	case schema.ConstraintForeign:
		return a.RefTable == b.RefTable && stringSlicesEqual(a.RefColumns, b.RefColumns) &&
			a.OnDelete == b.OnDelete && a.OnUpdate == b.OnUpdate
	case schema.ConstraintCheck:
		return canonicalText(a.Expression) == canonicalText(b.Expression)
	default:
		return true
	}
}

func planFunctions(declared, live *schema.Package, profile *Profile) []*Instruction {
	declIdx := indexFunctions(declared.Functions)
	liveIdx := indexFunctions(live.Functions)

	var out []*Instruction
	var qnames []string
	for q := range declIdx {
		qnames = append(qnames, q)
	}
	sort.Strings(qnames)
	for _, q := range qnames {
		df := declIdx[q]
		lf, ok := liveIdx[q]
		if !ok || profile.GenerationOptions.AlwaysRecreateFunction || !functionsEqual(df, lf) {
			out = append(out, &Instruction{Kind: CreateOrReplaceFunction, Function: df})
		}
	}
	var liveQnames []string
	for q := range liveIdx {
		liveQnames = append(liveQnames, q)
	}
	sort.Strings(liveQnames)
	for _, q := range liveQnames {
		if _, ok := declIdx[q]; !ok {
			out = append(out, &Instruction{Kind: DropFunction, Function: liveIdx[q]})
		}
	}
	return out
}

func indexFunctions(fns []*schema.Function) map[string]*schema.Function {
	m := make(map[string]*schema.Function, len(fns))
	for _, f := range fns {
		m[f.QName.String()] = f
	}
	return m
}

func functionsEqual(a, b *schema.Function) bool {
	return canonicalText(a.Body) == canonicalText(b.Body)
}

// orderInstructions implements spec.md §4.6 step 3: creates/alters follow
// declared.Order, drops follow the reverse of live.Order (or a freshly
// computed topological order if live has none).
func orderInstructions(instrs []*Instruction, declared, live *schema.Package) []*Instruction {
	declPos := nodePositions(declared.Order)
	liveOrder := live.Order
	if liveOrder == nil {
		tmp := *live
		if tmp.GenerateDependencyGraph() == nil {
			liveOrder = tmp.Order
		}
	}
	livePos := nodePositions(reverseNodes(liveOrder))

	var creates, drops []*Instruction
	for _, in := range instrs {
		if isDrop(in.Kind) {
			drops = append(drops, in)
		} else {
			creates = append(creates, in)
		}
	}

	sort.SliceStable(creates, func(i, j int) bool {
		return instructionRank(creates[i], declPos) < instructionRank(creates[j], declPos)
	})
	sort.SliceStable(drops, func(i, j int) bool {
		return instructionRank(drops[i], livePos) < instructionRank(drops[j], livePos)
	})

	return append(creates, drops...)
}

func nodePositions(order []graph.Node) map[string]int {
	m := make(map[string]int, len(order))
	for i, n := range order {
		m[n.ID()] = i
	}
	return m
}

func reverseNodes(order []graph.Node) []graph.Node {
	out := make([]graph.Node, len(order))
	for i, n := range order {
		out[len(order)-1-i] = n
	}
	return out
}

func instructionRank(in *Instruction, pos map[string]int) int {
	var id string
	switch in.Kind {
	case EnableExtension:
		id = graph.ExtensionNode(in.Name).ID()
	case CreateSchema:
		id = graph.SchemaNode(in.Name).ID()
	case CreateType, DropType, AlterType:
		id = graph.TypeNode(in.Type.String()).ID()
	case CreateTable, DropTable:
		id = graph.TableNode(in.Table.String()).ID()
	case AddColumn, AlterColumn, DropColumn:
		id = graph.ColumnNode(in.Table.String(), in.ColumnName).ID()
	case AddConstraint, DropConstraint:
		id = graph.ConstraintNode(in.Table.String(), in.Name).ID()
	case CreateOrReplaceFunction:
		id = graph.FunctionNode(in.Function.QName.String()).ID()
	case DropFunction:
		id = graph.FunctionNode(in.Function.QName.String()).ID()
	default:
		return len(pos)
	}
	if r, ok := pos[id]; ok {
		return r
	}
	return len(pos)
}
