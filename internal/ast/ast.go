// Package ast defines the typed schema statements produced by the parser.
// These are the "Statement" values of spec.md §4.2: one variant per DDL
// form the grammar recognizes. Positions live only here and in the lexer;
// once a Statement is folded into the schema model (internal/schema) they
// are no longer part of entity identity.
package ast

// QName is a possibly schema-unqualified name. Schema is nil when the
// source left it unqualified; resolution happens during normalization.
type QName struct {
	Schema *string
	Local  string
}

// NewQName builds an already-qualified name.
func NewQName(schema, local string) QName {
	s := schema
	return QName{Schema: &s, Local: local}
}

// Qualify sets Schema if it is currently unset.
func (q *QName) Qualify(schema string) {
	if q.Schema == nil {
		q.Schema = &schema
	}
}

// String renders "schema.local", or bare "local" if unqualified.
func (q QName) String() string {
	if q.Schema == nil || *q.Schema == "" {
		return q.Local
	}
	return *q.Schema + "." + q.Local
}

// SchemaOf returns the schema name, or "" if unqualified.
func (q QName) SchemaOf() string {
	if q.Schema == nil {
		return ""
	}
	return *q.Schema
}

// Statement is the closed set of top-level DDL forms a file can contain.
type Statement interface {
	statementNode()
}

// SchemaStmt declares a namespace: CREATE SCHEMA name;
type SchemaStmt struct {
	Name string
}

func (*SchemaStmt) statementNode() {}

// ExtensionStmt declares a database extension: CREATE EXTENSION name;
type ExtensionStmt struct {
	Name string
}

func (*ExtensionStmt) statementNode() {}

// TypeKind tags the shape of a CREATE TYPE statement.
type TypeKind int

const (
	TypeEnum TypeKind = iota
	TypeComposite
	TypeAlias
	TypeDomain
)

// CompositeField is one member of a composite type.
type CompositeField struct {
	Name    string
	SQLType string
}

// TypeStmt declares a custom type: CREATE TYPE qname AS (kind-specific body).
type TypeStmt struct {
	Name   QName
	Kind   TypeKind
	Values []string         // TypeEnum
	Fields []CompositeField // TypeComposite
	Base   string           // TypeAlias, TypeDomain
	Checks []string         // TypeDomain: opaque CHECK expressions
}

func (*TypeStmt) statementNode() {}

// ColumnDef is a column within a TableStmt.
type ColumnDef struct {
	Name       string
	SQLType    string
	NotNull    bool
	Default    *string // opaque expression, preserved verbatim
	Identity   *IdentityDef
	PrimaryKey bool // inline PRIMARY KEY shorthand, folded into a table constraint
	Unique     bool // inline UNIQUE shorthand, folded into a table constraint
	References *InlineForeignKey
}

// IdentityDef captures GENERATED { ALWAYS | BY DEFAULT } AS IDENTITY.
type IdentityDef struct {
	Always bool
}

// InlineForeignKey is a column-level REFERENCES clause.
type InlineForeignKey struct {
	RefTable   QName
	RefColumn  string
	OnDelete   string
	OnUpdate   string
}

// ConstraintKind tags the variant of a TableConstraint.
type ConstraintKind int

const (
	ConstraintPrimary ConstraintKind = iota
	ConstraintForeign
	ConstraintUnique
	ConstraintCheck
)

// TableConstraint is a tagged variant over the four supported constraint
// shapes, mirroring spec.md §3's TableConstraint.
type TableConstraint struct {
	Kind    ConstraintKind
	Name    string
	Columns []string // Primary, Foreign (local side), Unique

	RefTable   QName    // Foreign
	RefColumns []string // Foreign
	OnDelete   string   // Foreign
	OnUpdate   string   // Foreign

	Expression string // Check

	Parameters map[string]string // Primary: e.g. WITH (fillfactor=70)
}

// TableStmt declares a table: CREATE TABLE qname (columns, constraints);
type TableStmt struct {
	Name        QName
	Columns     []*ColumnDef
	Constraints []*TableConstraint
}

func (*TableStmt) statementNode() {}

// FuncArg is one argument of a FuncStmt.
type FuncArg struct {
	Name    string
	SQLType string
}

// FuncStmt declares a function: CREATE FUNCTION qname(args) RETURNS type ...
type FuncStmt struct {
	Name       QName
	Arguments  []FuncArg
	ReturnType string
	Language   string
	Body       string
	Volatility string // "", IMMUTABLE, STABLE, VOLATILE
}

func (*FuncStmt) statementNode() {}

// ScriptStage distinguishes pre-deploy from post-deploy scripts.
type ScriptStage string

const (
	StagePre  ScriptStage = "pre"
	StagePost ScriptStage = "post"
)

// ScriptStmt is a free-form SQL script attached to a deploy stage. Scripts
// are not produced by the file parser (they are attached verbatim by the
// assembler from manifest-referenced files) but share the Statement
// interface so they flow through the same merge step.
type ScriptStmt struct {
	Name  string
	Stage ScriptStage
	Body  string
}

func (*ScriptStmt) statementNode() {}
