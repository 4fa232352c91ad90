// Package introspect builds a schema.Package from the live catalog of a
// running PostgreSQL database — the "live side" the planner diffs the
// declared side against (spec.md §4.5, §6.4).
package introspect

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/declpg/declpg/internal/pgerrors"
	"github.com/declpg/declpg/internal/schema"
)

// pqStringArray binds/scans a Postgres text[] using lib/pq's wire format,
// regardless of which driver (pgx or lib/pq) is actually in use — its
// Value/Scan pair only ever produce and parse the literal array syntax.
type pqStringArray = pq.StringArray

// Connection is the collaborator introspection and publish depend on,
// narrow enough to be satisfied by *sql.DB or a test double (spec.md §6.4).
type Connection interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	Close() error
}

// dbConn adapts *sql.DB to Connection.
type dbConn struct{ *sql.DB }

// FromDB wraps an existing *sql.DB as a Connection.
func FromDB(db *sql.DB) Connection { return dbConn{db} }

// Introspector builds a schema.Package from one or more live schemas.
type Introspector struct {
	conn Connection
}

// New returns an Introspector over conn.
func New(conn Connection) *Introspector {
	return &Introspector{conn: conn}
}

// BuildPackage queries the catalog for every schema named in schemas (or,
// if empty, every non-system schema present) and returns the resulting
// Package. Order is left nil: the live side only needs to be compared
// against, never built in a particular sequence.
func (ins *Introspector) BuildPackage(ctx context.Context, schemas []string) (*schema.Package, error) {
	pkg := schema.New()

	liveExtensions, err := ins.queryExtensions(ctx)
	if err != nil {
		return nil, err
	}
	for _, e := range liveExtensions {
		pkg.AddExtension(e)
	}

	liveSchemas, err := ins.querySchemas(ctx, schemas)
	if err != nil {
		return nil, err
	}
	for _, s := range liveSchemas {
		pkg.AddSchema(s)
	}

	names := make([]string, len(liveSchemas))
	for i, s := range liveSchemas {
		names[i] = s.Name
	}

	types, err := ins.queryTypes(ctx, names)
	if err != nil {
		return nil, err
	}
	for _, t := range types {
		pkg.AddType(t)
	}

	tables, err := ins.queryTables(ctx, names)
	if err != nil {
		return nil, err
	}
	for _, t := range tables {
		pkg.AddTable(t)
	}

	fns, err := ins.queryFunctions(ctx, names)
	if err != nil {
		return nil, err
	}
	for _, f := range fns {
		pkg.AddFunction(f)
	}

	return pkg, nil
}

func (ins *Introspector) queryExtensions(ctx context.Context) ([]*schema.Extension, error) {
	rows, err := ins.conn.QueryContext(ctx, `SELECT extname FROM pg_extension ORDER BY extname`)
	if err != nil {
		return nil, &pgerrors.PackageQueryError{Target: pgerrors.QueryExtensions, Err: err}
	}
	defer rows.Close()

	var out []*schema.Extension
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, &pgerrors.PackageQueryError{Target: pgerrors.QueryExtensions, Err: err}
		}
		out = append(out, &schema.Extension{Name: name})
	}
	if err := rows.Err(); err != nil {
		return nil, &pgerrors.PackageQueryError{Target: pgerrors.QueryExtensions, Err: err}
	}
	return out, nil
}

func (ins *Introspector) querySchemas(ctx context.Context, only []string) ([]*schema.Schema, error) {
	query := `
		SELECT nspname FROM pg_namespace
		WHERE nspname NOT LIKE 'pg\_%' AND nspname <> 'information_schema'
		ORDER BY nspname`
	rows, err := ins.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, &pgerrors.PackageQueryError{Target: pgerrors.QuerySchemas, Err: err}
	}
	defer rows.Close()

	wanted := toSet(only)
	var out []*schema.Schema
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, &pgerrors.PackageQueryError{Target: pgerrors.QuerySchemas, Err: err}
		}
		if len(wanted) > 0 && !wanted[name] {
			continue
		}
		out = append(out, &schema.Schema{Name: name})
	}
	if err := rows.Err(); err != nil {
		return nil, &pgerrors.PackageQueryError{Target: pgerrors.QuerySchemas, Err: err}
	}
	return out, nil
}

func (ins *Introspector) queryTypes(ctx context.Context, schemas []string) ([]*schema.Type, error) {
	if len(schemas) == 0 {
		return nil, nil
	}
	query := `
		SELECT n.nspname, t.typname, t.typtype,
		       coalesce(array_agg(e.enumlabel ORDER BY e.enumsortorder) FILTER (WHERE e.enumlabel IS NOT NULL), '{}')
		FROM pg_type t
		JOIN pg_namespace n ON n.oid = t.typnamespace
		LEFT JOIN pg_enum e ON e.enumtypid = t.oid
		WHERE n.nspname = ANY($1) AND t.typtype IN ('e', 'c', 'd')
		GROUP BY n.nspname, t.typname, t.typtype
		ORDER BY n.nspname, t.typname`
	rows, err := ins.conn.QueryContext(ctx, query, pqStringArray(schemas))
	if err != nil {
		return nil, &pgerrors.PackageQueryError{Target: pgerrors.QueryTypes, Err: err}
	}
	defer rows.Close()

	var out []*schema.Type
	for rows.Next() {
		var nspname, typname, typtype string
		var labels pqStringArray
		if err := rows.Scan(&nspname, &typname, &typtype, &labels); err != nil {
			return nil, &pgerrors.PackageQueryError{Target: pgerrors.QueryTypes, Err: err}
		}
		t := &schema.Type{QName: schema.QName{Schema: nspname, Local: typname}}
		switch typtype {
		case "e":
			t.Kind = schema.TypeEnum
			t.Values = labels
		case "c":
			t.Kind = schema.TypeComposite
		case "d":
			t.Kind = schema.TypeDomain
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, &pgerrors.PackageQueryError{Target: pgerrors.QueryTypes, Err: err}
	}
	return out, nil
}

func (ins *Introspector) queryTables(ctx context.Context, schemas []string) ([]*schema.Table, error) {
	if len(schemas) == 0 {
		return nil, nil
	}
	query := `
		SELECT c.table_schema, c.table_name, c.column_name, c.data_type,
		       c.is_nullable, c.column_default, c.identity_generation
		FROM information_schema.columns c
		WHERE c.table_schema = ANY($1)
		ORDER BY c.table_schema, c.table_name, c.ordinal_position`
	rows, err := ins.conn.QueryContext(ctx, query, pqStringArray(schemas))
	if err != nil {
		return nil, &pgerrors.PackageQueryError{Target: pgerrors.QueryTables, Err: err}
	}
	defer rows.Close()

	index := map[string]*schema.Table{}
	var order []string
	for rows.Next() {
		var tschema, tname, cname, dtype, nullable string
		var def, identityGen sql.NullString
		if err := rows.Scan(&tschema, &tname, &cname, &dtype, &nullable, &def, &identityGen); err != nil {
			return nil, &pgerrors.PackageQueryError{Target: pgerrors.QueryTables, Err: err}
		}
		qn := schema.QName{Schema: tschema, Local: tname}
		t, ok := index[qn.String()]
		if !ok {
			t = &schema.Table{QName: qn}
			index[qn.String()] = t
			order = append(order, qn.String())
		}
		col := &schema.Column{
			LocalName: cname,
			SQLType:   dtype,
			Nullable:  nullable == "YES",
		}
		if def.Valid {
			d := def.String
			col.Default = &d
		}
		if identityGen.String != "" {
			col.Identity = &schema.Identity{Always: identityGen.String == "ALWAYS"}
		}
		t.Columns = append(t.Columns, col)
	}
	if err := rows.Err(); err != nil {
		return nil, &pgerrors.PackageQueryError{Target: pgerrors.QueryTables, Err: err}
	}

	if err := ins.attachConstraints(ctx, schemas, index); err != nil {
		return nil, err
	}

	out := make([]*schema.Table, 0, len(order))
	for _, k := range order {
		out = append(out, index[k])
	}
	return out, nil
}

func (ins *Introspector) attachConstraints(ctx context.Context, schemas []string, index map[string]*schema.Table) error {
	query := `
		SELECT tc.table_schema, tc.table_name, tc.constraint_name, tc.constraint_type,
		       kcu.column_name, kcu.ordinal_position,
		       ccu.table_schema, ccu.table_name, ccu.column_name,
		       rc.update_rule, rc.delete_rule
		FROM information_schema.table_constraints tc
		JOIN information_schema.key_column_usage kcu
		  ON kcu.constraint_name = tc.constraint_name AND kcu.table_schema = tc.table_schema
		LEFT JOIN information_schema.referential_constraints rc
		  ON rc.constraint_name = tc.constraint_name AND rc.constraint_schema = tc.table_schema
		LEFT JOIN information_schema.constraint_column_usage ccu
		  ON ccu.constraint_name = rc.unique_constraint_name AND ccu.table_schema = tc.table_schema
		WHERE tc.table_schema = ANY($1)
		ORDER BY tc.table_schema, tc.table_name, tc.constraint_name, kcu.ordinal_position`
	rows, err := ins.conn.QueryContext(ctx, query, pqStringArray(schemas))
	if err != nil {
		return &pgerrors.PackageQueryError{Target: pgerrors.QueryTables, Err: err}
	}
	defer rows.Close()

	byKey := map[string]*schema.TableConstraint{}
	for rows.Next() {
		var tschema, tname, cname, ctype, colname string
		var ordinal int
		var refSchema, refTable, refCol, updRule, delRule sql.NullString
		if err := rows.Scan(&tschema, &tname, &cname, &ctype, &colname, &ordinal,
			&refSchema, &refTable, &refCol, &updRule, &delRule); err != nil {
			return &pgerrors.PackageQueryError{Target: pgerrors.QueryTables, Err: err}
		}
		t, ok := index[(schema.QName{Schema: tschema, Local: tname}).String()]
		if !ok {
			continue
		}
		key := tschema + "." + tname + "." + cname
		c, ok := byKey[key]
		if !ok {
			c = &schema.TableConstraint{Name: cname}
			switch ctype {
			case "PRIMARY KEY":
				c.Kind = schema.ConstraintPrimary
			case "FOREIGN KEY":
				c.Kind = schema.ConstraintForeign
				if refSchema.Valid && refTable.Valid {
					c.RefTable = schema.QName{Schema: refSchema.String, Local: refTable.String}
				}
				c.OnUpdate = updRule.String
				c.OnDelete = delRule.String
			case "UNIQUE":
				c.Kind = schema.ConstraintUnique
			case "CHECK":
				c.Kind = schema.ConstraintCheck
			}
			byKey[key] = c
			t.Constraints = append(t.Constraints, c)
		}
		c.Columns = append(c.Columns, colname)
		if refCol.Valid && c.Kind == schema.ConstraintForeign {
			c.RefColumns = append(c.RefColumns, refCol.String)
		}
	}
	return rows.Err()
}

func (ins *Introspector) queryFunctions(ctx context.Context, schemas []string) ([]*schema.Function, error) {
	if len(schemas) == 0 {
		return nil, nil
	}
	query := `
		SELECT n.nspname, p.proname, pg_get_function_arguments(p.oid),
		       pg_get_function_result(p.oid), l.lanname, p.prosrc, p.provolatile
		FROM pg_proc p
		JOIN pg_namespace n ON n.oid = p.pronamespace
		JOIN pg_language l ON l.oid = p.prolang
		WHERE n.nspname = ANY($1) AND p.prokind = 'f'
		ORDER BY n.nspname, p.proname`
	rows, err := ins.conn.QueryContext(ctx, query, pqStringArray(schemas))
	if err != nil {
		return nil, &pgerrors.PackageQueryError{Target: pgerrors.QueryFunctions, Err: err}
	}
	defer rows.Close()

	var out []*schema.Function
	for rows.Next() {
		var nspname, proname, argsRaw, returnType, lang, body, volatility string
		if err := rows.Scan(&nspname, &proname, &argsRaw, &returnType, &lang, &body, &volatility); err != nil {
			return nil, &pgerrors.PackageQueryError{Target: pgerrors.QueryFunctions, Err: err}
		}
		args, err := parseFunctionArgs(argsRaw)
		if err != nil {
			return nil, &pgerrors.PackageFunctionArgsInspectError{Args: argsRaw, Err: err}
		}
		parsedReturnType, err := parseFunctionReturnType(returnType)
		if err != nil {
			return nil, &pgerrors.PackageFunctionReturnTypeInspectError{ReturnType: returnType, Err: err}
		}
		out = append(out, &schema.Function{
			QName:      schema.QName{Schema: nspname, Local: proname},
			Arguments:  args,
			ReturnType: parsedReturnType,
			Language:   lang,
			Body:       body,
			Volatility: volatilityName(volatility),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, &pgerrors.PackageQueryError{Target: pgerrors.QueryFunctions, Err: err}
	}
	return out, nil
}

// parseFunctionReturnType validates pg_get_function_result's descriptor,
// per spec.md §4.5, and returns it trimmed but otherwise unchanged. An empty
// descriptor is rejected; plain scalar and SETOF forms are rejected when
// their parentheses do not balance; a TABLE(col type, ...) descriptor must
// be wrapped in parentheses, and each entry of its column list (split with
// splitTopLevelComma) must be a non-empty name followed by a type. A
// truncated or malformed descriptor (a corrupted catalog read, a parenthesis
// dropped in transit) is thus caught here rather than surfacing as a cryptic
// failure downstream in SQL emission.
func parseFunctionReturnType(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", fmt.Errorf("empty function return type descriptor")
	}

	upper := strings.ToUpper(trimmed)
	if !strings.HasPrefix(upper, "TABLE") {
		if strings.Count(trimmed, "(") != strings.Count(trimmed, ")") {
			return "", fmt.Errorf("malformed function return type descriptor: %q", trimmed)
		}
		return trimmed, nil
	}

	rest := strings.TrimSpace(trimmed[len("TABLE"):])
	if !strings.HasPrefix(rest, "(") || !strings.HasSuffix(rest, ")") {
		return "", fmt.Errorf("malformed TABLE return type descriptor: %q", trimmed)
	}
	body := rest[1 : len(rest)-1]

	for _, col := range splitTopLevelComma(body) {
		col = strings.TrimSpace(col)
		if col == "" {
			return "", fmt.Errorf("malformed TABLE return type descriptor: %q", trimmed)
		}
		if len(strings.SplitN(col, " ", 2)) != 2 {
			return "", fmt.Errorf("malformed TABLE return column descriptor: %q", col)
		}
	}

	return trimmed, nil
}

// parseFunctionArgs splits Postgres's "name type, name type" argument
// descriptor into FuncArg pairs.
func parseFunctionArgs(raw string) ([]schema.FuncArg, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	var out []schema.FuncArg
	for _, part := range splitTopLevelComma(raw) {
		part = strings.TrimSpace(part)
		fields := strings.SplitN(part, " ", 2)
		if len(fields) != 2 {
			return nil, fmt.Errorf("malformed function argument descriptor: %q", part)
		}
		out = append(out, schema.FuncArg{Name: fields[0], SQLType: strings.TrimSpace(fields[1])})
	}
	return out, nil
}

func splitTopLevelComma(s string) []string {
	var out []string
	depth := 0
	start := 0
	for i, r := range s {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
		case ',':
			if depth == 0 {
				out = append(out, s[start:i])
				start = i + 1
			}
		}
	}
	out = append(out, s[start:])
	return out
}

func volatilityName(code string) string {
	switch code {
	case "i":
		return "IMMUTABLE"
	case "s":
		return "STABLE"
	default:
		return "VOLATILE"
	}
}

func toSet(items []string) map[string]bool {
	if len(items) == 0 {
		return nil
	}
	m := make(map[string]bool, len(items))
	for _, i := range items {
		m[i] = true
	}
	return m
}
