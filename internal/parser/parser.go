// Package parser turns a lexer.Token stream into internal/ast.Statement
// values. The grammar is LALR(1) in shape — nearly every production is
// decided by the current token alone; a function argument looks one token
// further to tell a named argument from a bare type — implemented here as
// hand-rolled recursive
// descent, in the style of other DDL parsers in the retrieval pack
// (one parseX method per statement head, dispatch on the lead keyword).
package parser

import (
	"fmt"
	"strings"

	"github.com/declpg/declpg/internal/ast"
	"github.com/declpg/declpg/internal/lexer"
	"github.com/declpg/declpg/internal/pgerrors"
)

// Parser consumes a fixed token slice produced by the lexer for one file.
type Parser struct {
	file   string
	tokens []lexer.Token
	pos    int
	errs   []*pgerrors.ParseError
}

// New creates a Parser over tokens already produced for the named file.
func New(file string, tokens []lexer.Token) *Parser {
	return &Parser{file: file, tokens: tokens}
}

// ParseFile tokenizes and parses src in one call, returning either the
// statements or the aggregated errors for the file.
func ParseFile(file, src string) ([]ast.Statement, []error) {
	tokens, lexErr := lexer.Tokenize(src)
	if lexErr != nil {
		return nil, []error{lexErr}
	}
	p := New(file, tokens)
	stmts := p.ParseStatements()
	if len(p.errs) > 0 {
		errs := make([]error, len(p.errs))
		for i, e := range p.errs {
			errs[i] = e
		}
		return nil, errs
	}
	return stmts, nil
}

func (p *Parser) cur() lexer.Token {
	if p.pos >= len(p.tokens) {
		return lexer.Token{Kind: lexer.EOF}
	}
	return p.tokens[p.pos]
}

func (p *Parser) peekAt(n int) lexer.Token {
	i := p.pos + n
	if i >= len(p.tokens) {
		return lexer.Token{Kind: lexer.EOF}
	}
	return p.tokens[i]
}

func (p *Parser) advance() lexer.Token {
	t := p.cur()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return t
}

func (p *Parser) isKeyword(word string) bool {
	t := p.cur()
	return t.Kind == lexer.KEYWORD && t.Text == word
}

func (p *Parser) isIdentLike() bool {
	k := p.cur().Kind
	return k == lexer.IDENT || k == lexer.QUOTED_IDENT
}

func (p *Parser) errorf(format string, args ...any) {
	t := p.cur()
	p.errs = append(p.errs, &pgerrors.ParseError{
		File:       p.file,
		LineText:   "",
		LineNumber: t.Line,
		ColStart:   t.ColStart,
		ColEnd:     t.ColEnd,
		Message:    fmt.Sprintf(format, args...),
	})
}

// recoverToStatementBoundary implements spec.md §4.2's local error recovery:
// skip tokens until the next ';' at depth 0, then consume it.
func (p *Parser) recoverToStatementBoundary() {
	depth := 0
	for {
		t := p.cur()
		if t.Kind == lexer.EOF {
			return
		}
		if t.Kind == lexer.LPAREN {
			depth++
		}
		if t.Kind == lexer.RPAREN && depth > 0 {
			depth--
		}
		if t.Kind == lexer.SEMICOLON && depth == 0 {
			p.advance()
			return
		}
		p.advance()
	}
}

func (p *Parser) expect(kind lexer.Kind, what string) (lexer.Token, bool) {
	t := p.cur()
	if t.Kind != kind {
		p.errorf("expected %s, got %q", what, t.Text)
		return t, false
	}
	return p.advance(), true
}

func (p *Parser) expectKeyword(word string) bool {
	if !p.isKeyword(word) {
		p.errorf("expected %s, got %q", word, p.cur().Text)
		return false
	}
	p.advance()
	return true
}

// ParseStatements parses every statement in the token stream, collecting
// errors across statement boundaries rather than stopping at the first one.
func (p *Parser) ParseStatements() []ast.Statement {
	var stmts []ast.Statement
	for p.cur().Kind != lexer.EOF {
		before := p.pos
		stmt, ok := p.parseStatement()
		if !ok {
			p.recoverToStatementBoundary()
			if p.pos == before {
				p.advance()
			}
			continue
		}
		if stmt != nil {
			stmts = append(stmts, stmt)
		}
		if p.cur().Kind == lexer.SEMICOLON {
			p.advance()
		}
	}
	return stmts
}

func (p *Parser) parseStatement() (ast.Statement, bool) {
	if !p.expectKeyword("CREATE") {
		return nil, false
	}
	switch {
	case p.isKeyword("SCHEMA"):
		return p.parseSchema()
	case p.isKeyword("EXTENSION"):
		return p.parseExtension()
	case p.isKeyword("TYPE"):
		return p.parseType()
	case p.isKeyword("DOMAIN"):
		return p.parseDomain()
	case p.isKeyword("TABLE"):
		return p.parseTable()
	case p.isKeyword("FUNCTION"):
		return p.parseFunction()
	default:
		p.errorf("unsupported statement: CREATE %s", p.cur().Text)
		return nil, false
	}
}

func (p *Parser) parseSchema() (ast.Statement, bool) {
	p.advance() // SCHEMA
	name, ok := p.parseSimpleName()
	if !ok {
		return nil, false
	}
	return &ast.SchemaStmt{Name: name}, true
}

func (p *Parser) parseExtension() (ast.Statement, bool) {
	p.advance() // EXTENSION
	name, ok := p.parseSimpleName()
	if !ok {
		return nil, false
	}
	return &ast.ExtensionStmt{Name: name}, true
}

func (p *Parser) parseSimpleName() (string, bool) {
	if p.isIdentLike() {
		return p.advance().Text, true
	}
	p.errorf("expected identifier, got %q", p.cur().Text)
	return "", false
}

func (p *Parser) parseQName() (ast.QName, bool) {
	first, ok := p.parseSimpleName()
	if !ok {
		return ast.QName{}, false
	}
	if p.cur().Kind == lexer.DOT {
		p.advance()
		second, ok := p.parseSimpleName()
		if !ok {
			return ast.QName{}, false
		}
		return ast.QName{Schema: &first, Local: second}, true
	}
	return ast.QName{Local: first}, true
}

// --- CREATE TYPE ---

func (p *Parser) parseType() (ast.Statement, bool) {
	p.advance() // TYPE
	name, ok := p.parseQName()
	if !ok {
		return nil, false
	}
	if !p.expectKeyword("AS") {
		return nil, false
	}
	if p.isKeyword("ENUM") {
		p.advance()
		values, ok := p.parseStringList()
		if !ok {
			return nil, false
		}
		return &ast.TypeStmt{Name: name, Kind: ast.TypeEnum, Values: values}, true
	}
	if p.cur().Kind == lexer.LPAREN {
		fields, ok := p.parseCompositeFields()
		if !ok {
			return nil, false
		}
		return &ast.TypeStmt{Name: name, Kind: ast.TypeComposite, Fields: fields}, true
	}
	base, ok := p.parseSQLType()
	if !ok {
		return nil, false
	}
	return &ast.TypeStmt{Name: name, Kind: ast.TypeAlias, Base: base}, true
}

func (p *Parser) parseDomain() (ast.Statement, bool) {
	p.advance() // DOMAIN
	name, ok := p.parseQName()
	if !ok {
		return nil, false
	}
	if !p.expectKeyword("AS") {
		return nil, false
	}
	base, ok := p.parseSQLType()
	if !ok {
		return nil, false
	}
	stmt := &ast.TypeStmt{Name: name, Kind: ast.TypeDomain, Base: base}
	for p.isKeyword("NOT") || p.isKeyword("CHECK") {
		if p.isKeyword("NOT") {
			p.advance()
			if !p.expectKeyword("NULL") {
				return nil, false
			}
			stmt.Checks = append(stmt.Checks, "NOT NULL")
			continue
		}
		p.advance() // CHECK
		expr, ok := p.parseParenExpression()
		if !ok {
			return nil, false
		}
		stmt.Checks = append(stmt.Checks, expr)
	}
	return stmt, true
}

func (p *Parser) parseStringList() ([]string, bool) {
	if _, ok := p.expect(lexer.LPAREN, "'('"); !ok {
		return nil, false
	}
	var out []string
	for {
		t, ok := p.expect(lexer.STRING, "string literal")
		if !ok {
			return nil, false
		}
		out = append(out, t.Text)
		if p.cur().Kind == lexer.COMMA {
			p.advance()
			continue
		}
		break
	}
	if _, ok := p.expect(lexer.RPAREN, "')'"); !ok {
		return nil, false
	}
	return out, true
}

func (p *Parser) parseCompositeFields() ([]ast.CompositeField, bool) {
	if _, ok := p.expect(lexer.LPAREN, "'('"); !ok {
		return nil, false
	}
	var fields []ast.CompositeField
	for p.cur().Kind != lexer.RPAREN {
		fname, ok := p.parseSimpleName()
		if !ok {
			return nil, false
		}
		ftype, ok := p.parseSQLType()
		if !ok {
			return nil, false
		}
		fields = append(fields, ast.CompositeField{Name: fname, SQLType: ftype})
		if p.cur().Kind == lexer.COMMA {
			p.advance()
			continue
		}
		break
	}
	if _, ok := p.expect(lexer.RPAREN, "')'"); !ok {
		return nil, false
	}
	return fields, true
}

// parseSQLType greedily consumes a type name, handling multi-word forms
// (TIMESTAMP WITH TIME ZONE, DOUBLE PRECISION, CHARACTER VARYING) and an
// optional (length[,scale]) parameter list, per spec.md §4.2.
func (p *Parser) parseSQLType() (string, bool) {
	var parts []string
	first, ok := p.typeWord()
	if !ok {
		p.errorf("expected type name, got %q", p.cur().Text)
		return "", false
	}
	parts = append(parts, first)

	if next := p.cur(); next.Kind == lexer.IDENT &&
		((first == "double" && next.Text == "precision") || (first == "character" && next.Text == "varying")) {
		parts = append(parts, p.advance().Text)
	}

	for p.isKeyword("WITH") || p.isKeyword("WITHOUT") || p.isKeyword("TIME") || p.isKeyword("ZONE") {
		parts = append(parts, p.advance().Text)
	}

	typeName := strings.Join(parts, " ")
	if p.cur().Kind == lexer.LPAREN {
		p.advance()
		n1, ok := p.expect(lexer.NUMBER, "number")
		if !ok {
			return "", false
		}
		params := n1.Text
		if p.cur().Kind == lexer.COMMA {
			p.advance()
			n2, ok := p.expect(lexer.NUMBER, "number")
			if !ok {
				return "", false
			}
			params += "," + n2.Text
		}
		if _, ok := p.expect(lexer.RPAREN, "')'"); !ok {
			return "", false
		}
		typeName = typeName + "(" + params + ")"
	}
	return typeName, true
}

func (p *Parser) typeWord() (string, bool) {
	t := p.cur()
	if t.Kind == lexer.IDENT {
		return p.advance().Text, true
	}
	if t.Kind == lexer.KEYWORD {
		switch t.Text {
		case "TIMESTAMP", "TIME", "TABLE":
			return p.advance().Text, true
		}
	}
	return "", false
}

// --- CREATE TABLE ---

var columnStopKeywords = map[string]bool{
	"NOT": true, "NULL": true, "DEFAULT": true, "PRIMARY": true,
	"UNIQUE": true, "REFERENCES": true, "GENERATED": true, "CHECK": true,
	"CONSTRAINT": true,
}

func (p *Parser) parseTable() (ast.Statement, bool) {
	p.advance() // TABLE
	name, ok := p.parseQName()
	if !ok {
		return nil, false
	}
	if _, ok := p.expect(lexer.LPAREN, "'('"); !ok {
		return nil, false
	}
	stmt := &ast.TableStmt{Name: name}
	for p.cur().Kind != lexer.RPAREN {
		if p.isKeyword("PRIMARY") || p.isKeyword("FOREIGN") || p.isKeyword("UNIQUE") ||
			p.isKeyword("CHECK") || p.isKeyword("CONSTRAINT") {
			c, ok := p.parseTableConstraint()
			if !ok {
				return nil, false
			}
			stmt.Constraints = append(stmt.Constraints, c)
		} else {
			col, ok := p.parseColumnDef()
			if !ok {
				return nil, false
			}
			stmt.Columns = append(stmt.Columns, col)
			if col.PrimaryKey {
				stmt.Constraints = append(stmt.Constraints, &ast.TableConstraint{
					Kind: ast.ConstraintPrimary, Columns: []string{col.Name},
				})
			}
			if col.Unique {
				stmt.Constraints = append(stmt.Constraints, &ast.TableConstraint{
					Kind: ast.ConstraintUnique, Columns: []string{col.Name},
				})
			}
			if col.References != nil {
				stmt.Constraints = append(stmt.Constraints, &ast.TableConstraint{
					Kind:       ast.ConstraintForeign,
					Columns:    []string{col.Name},
					RefTable:   col.References.RefTable,
					RefColumns: []string{col.References.RefColumn},
					OnDelete:   col.References.OnDelete,
					OnUpdate:   col.References.OnUpdate,
				})
			}
		}
		if p.cur().Kind == lexer.COMMA {
			p.advance()
			continue
		}
		break
	}
	if _, ok := p.expect(lexer.RPAREN, "')'"); !ok {
		return nil, false
	}
	return stmt, true
}

func (p *Parser) parseColumnDef() (*ast.ColumnDef, bool) {
	name, ok := p.parseSimpleName()
	if !ok {
		return nil, false
	}
	sqlType, ok := p.parseSQLType()
	if !ok {
		return nil, false
	}
	col := &ast.ColumnDef{Name: name, SQLType: sqlType}

	for {
		switch {
		case p.isKeyword("NOT"):
			p.advance()
			if !p.expectKeyword("NULL") {
				return nil, false
			}
			col.NotNull = true
		case p.isKeyword("NULL"):
			p.advance()
		case p.isKeyword("PRIMARY"):
			p.advance()
			if !p.expectKeyword("KEY") {
				return nil, false
			}
			col.PrimaryKey = true
		case p.isKeyword("UNIQUE"):
			p.advance()
			col.Unique = true
		case p.isKeyword("DEFAULT"):
			p.advance()
			expr, ok := p.parseDefaultExpr()
			if !ok {
				return nil, false
			}
			col.Default = &expr
		case p.isKeyword("REFERENCES"):
			ref, ok := p.parseInlineForeignKey()
			if !ok {
				return nil, false
			}
			col.References = ref
		case p.isKeyword("GENERATED"):
			p.advance()
			always := false
			if p.isKeyword("ALWAYS") {
				p.advance()
				always = true
			} else if p.isKeyword("BY") {
				p.advance()
				if !p.expectKeyword("DEFAULT") {
					return nil, false
				}
			}
			if !p.expectKeyword("AS") {
				return nil, false
			}
			if !p.expectKeyword("IDENTITY") {
				return nil, false
			}
			col.Identity = &ast.IdentityDef{Always: always}
			if p.cur().Kind == lexer.LPAREN {
				p.skipBalancedParens()
			}
		default:
			return col, true
		}
	}
}

// parseDefaultExpr captures an opaque expression, stopping at the next
// column-constraint keyword or a top-level comma/')'.
func (p *Parser) parseDefaultExpr() (string, bool) {
	var parts []string
	depth := 0
	for {
		t := p.cur()
		if t.Kind == lexer.EOF {
			p.errorf("unexpected end of file in DEFAULT expression")
			return "", false
		}
		if depth == 0 {
			if t.Kind == lexer.COMMA || t.Kind == lexer.RPAREN {
				break
			}
			if t.Kind == lexer.KEYWORD && columnStopKeywords[t.Text] {
				break
			}
		}
		if t.Kind == lexer.LPAREN {
			depth++
		}
		if t.Kind == lexer.RPAREN {
			depth--
		}
		parts = append(parts, tokenText(t))
		p.advance()
	}
	if len(parts) == 0 {
		p.errorf("expected expression after DEFAULT")
		return "", false
	}
	return strings.Join(parts, " "), true
}

func tokenText(t lexer.Token) string {
	switch t.Kind {
	case lexer.STRING:
		return "'" + strings.ReplaceAll(t.Text, "'", "''") + "'"
	case lexer.QUOTED_IDENT:
		return `"` + t.Text + `"`
	default:
		return t.Text
	}
}

func (p *Parser) parseInlineForeignKey() (*ast.InlineForeignKey, bool) {
	p.advance() // REFERENCES
	refTable, ok := p.parseQName()
	if !ok {
		return nil, false
	}
	ref := &ast.InlineForeignKey{RefTable: refTable}
	if p.cur().Kind == lexer.LPAREN {
		p.advance()
		col, ok := p.parseSimpleName()
		if !ok {
			return nil, false
		}
		ref.RefColumn = col
		if _, ok := p.expect(lexer.RPAREN, "')'"); !ok {
			return nil, false
		}
	}
	p.parseReferentialActions(&ref.OnDelete, &ref.OnUpdate)
	return ref, true
}

func (p *Parser) parseReferentialActions(onDelete, onUpdate *string) {
	for p.isKeyword("ON") {
		p.advance()
		switch {
		case p.isKeyword("DELETE"):
			p.advance()
			*onDelete = p.parseReferentialAction()
		case p.isKeyword("UPDATE"):
			p.advance()
			*onUpdate = p.parseReferentialAction()
		default:
			return
		}
	}
}

func (p *Parser) parseReferentialAction() string {
	switch {
	case p.isKeyword("CASCADE"):
		p.advance()
		return "CASCADE"
	case p.isKeyword("RESTRICT"):
		p.advance()
		return "RESTRICT"
	case p.isKeyword("SET"):
		p.advance()
		if p.isKeyword("NULL") {
			p.advance()
			return "SET NULL"
		}
		if p.isKeyword("DEFAULT") {
			p.advance()
			return "SET DEFAULT"
		}
		return "SET"
	case p.isKeyword("NO"):
		p.advance()
		if p.isKeyword("ACTION") {
			p.advance()
		}
		return "NO ACTION"
	default:
		return ""
	}
}

func (p *Parser) parseTableConstraint() (*ast.TableConstraint, bool) {
	c := &ast.TableConstraint{}
	if p.isKeyword("CONSTRAINT") {
		p.advance()
		name, ok := p.parseSimpleName()
		if !ok {
			return nil, false
		}
		c.Name = name
	}
	switch {
	case p.isKeyword("PRIMARY"):
		p.advance()
		if !p.expectKeyword("KEY") {
			return nil, false
		}
		c.Kind = ast.ConstraintPrimary
		cols, ok := p.parseColumnList()
		if !ok {
			return nil, false
		}
		c.Columns = cols
		if p.isKeyword("WITH") {
			p.advance()
			params, ok := p.parseParenKeyValueList()
			if !ok {
				return nil, false
			}
			c.Parameters = params
		}
	case p.isKeyword("FOREIGN"):
		p.advance()
		if !p.expectKeyword("KEY") {
			return nil, false
		}
		c.Kind = ast.ConstraintForeign
		cols, ok := p.parseColumnList()
		if !ok {
			return nil, false
		}
		c.Columns = cols
		if !p.expectKeyword("REFERENCES") {
			return nil, false
		}
		refTable, ok := p.parseQName()
		if !ok {
			return nil, false
		}
		c.RefTable = refTable
		refCols, ok := p.parseColumnList()
		if !ok {
			return nil, false
		}
		c.RefColumns = refCols
		p.parseReferentialActions(&c.OnDelete, &c.OnUpdate)
	case p.isKeyword("UNIQUE"):
		p.advance()
		c.Kind = ast.ConstraintUnique
		cols, ok := p.parseColumnList()
		if !ok {
			return nil, false
		}
		c.Columns = cols
	case p.isKeyword("CHECK"):
		p.advance()
		c.Kind = ast.ConstraintCheck
		expr, ok := p.parseParenExpression()
		if !ok {
			return nil, false
		}
		c.Expression = expr
	default:
		p.errorf("expected PRIMARY, FOREIGN, UNIQUE or CHECK, got %q", p.cur().Text)
		return nil, false
	}
	return c, true
}

func (p *Parser) parseColumnList() ([]string, bool) {
	if _, ok := p.expect(lexer.LPAREN, "'('"); !ok {
		return nil, false
	}
	var cols []string
	for {
		name, ok := p.parseSimpleName()
		if !ok {
			return nil, false
		}
		cols = append(cols, name)
		if p.cur().Kind == lexer.COMMA {
			p.advance()
			continue
		}
		break
	}
	if _, ok := p.expect(lexer.RPAREN, "')'"); !ok {
		return nil, false
	}
	return cols, true
}

func (p *Parser) parseParenKeyValueList() (map[string]string, bool) {
	if _, ok := p.expect(lexer.LPAREN, "'('"); !ok {
		return nil, false
	}
	out := map[string]string{}
	for p.cur().Kind != lexer.RPAREN {
		key, ok := p.parseSimpleName()
		if !ok {
			return nil, false
		}
		if !p.expect2(lexer.EQ) {
			return nil, false
		}
		val := p.advance().Text
		out[key] = val
		if p.cur().Kind == lexer.COMMA {
			p.advance()
			continue
		}
		break
	}
	if _, ok := p.expect(lexer.RPAREN, "')'"); !ok {
		return nil, false
	}
	return out, true
}

func (p *Parser) expect2(kind lexer.Kind) bool {
	if p.cur().Kind != kind {
		p.errorf("expected %s, got %q", kind, p.cur().Text)
		return false
	}
	p.advance()
	return true
}

// parseParenExpression captures a balanced-paren opaque expression starting
// with '(' and returns its inner text verbatim (whitespace-joined).
func (p *Parser) parseParenExpression() (string, bool) {
	if _, ok := p.expect(lexer.LPAREN, "'('"); !ok {
		return "", false
	}
	var parts []string
	depth := 1
	for depth > 0 {
		t := p.cur()
		if t.Kind == lexer.EOF {
			p.errorf("unexpected end of file in expression")
			return "", false
		}
		if t.Kind == lexer.LPAREN {
			depth++
		}
		if t.Kind == lexer.RPAREN {
			depth--
			if depth == 0 {
				p.advance()
				break
			}
		}
		parts = append(parts, tokenText(t))
		p.advance()
	}
	return strings.Join(parts, " "), true
}

func (p *Parser) skipBalancedParens() {
	if p.cur().Kind != lexer.LPAREN {
		return
	}
	depth := 0
	for {
		t := p.cur()
		if t.Kind == lexer.EOF {
			return
		}
		if t.Kind == lexer.LPAREN {
			depth++
		}
		if t.Kind == lexer.RPAREN {
			depth--
		}
		p.advance()
		if depth == 0 {
			return
		}
	}
}

// --- CREATE FUNCTION ---

func (p *Parser) parseFunction() (ast.Statement, bool) {
	p.advance() // FUNCTION
	name, ok := p.parseQName()
	if !ok {
		return nil, false
	}
	args, ok := p.parseFuncArgs()
	if !ok {
		return nil, false
	}
	stmt := &ast.FuncStmt{Name: name, Arguments: args}

	for {
		switch {
		case p.isKeyword("RETURNS"):
			p.advance()
			ret, ok := p.parseSQLType()
			if !ok {
				return nil, false
			}
			stmt.ReturnType = ret
		case p.isKeyword("LANGUAGE"):
			p.advance()
			lang, ok := p.parseSimpleName()
			if !ok {
				return nil, false
			}
			stmt.Language = lang
		case p.isKeyword("IMMUTABLE"):
			p.advance()
			stmt.Volatility = "IMMUTABLE"
		case p.isKeyword("STABLE"):
			p.advance()
			stmt.Volatility = "STABLE"
		case p.isKeyword("VOLATILE"):
			p.advance()
			stmt.Volatility = "VOLATILE"
		case p.isKeyword("AS"):
			p.advance()
			body, ok := p.parseFunctionBody()
			if !ok {
				return nil, false
			}
			stmt.Body = body
			return stmt, true
		default:
			p.errorf("unexpected token in function definition: %q", p.cur().Text)
			return nil, false
		}
	}
}

func (p *Parser) parseFuncArgs() ([]ast.FuncArg, bool) {
	if _, ok := p.expect(lexer.LPAREN, "'('"); !ok {
		return nil, false
	}
	var args []ast.FuncArg
	for p.cur().Kind != lexer.RPAREN {
		var name string
		if p.isIdentLike() && p.peekAt(1).Kind != lexer.COMMA && p.peekAt(1).Kind != lexer.RPAREN {
			name = p.advance().Text
		}
		typ, ok := p.parseSQLType()
		if !ok {
			return nil, false
		}
		args = append(args, ast.FuncArg{Name: name, SQLType: typ})
		if p.cur().Kind == lexer.COMMA {
			p.advance()
			continue
		}
		break
	}
	if _, ok := p.expect(lexer.RPAREN, "')'"); !ok {
		return nil, false
	}
	return args, true
}

func (p *Parser) parseFunctionBody() (string, bool) {
	t := p.cur()
	if t.Kind == lexer.DOLLAR_STRING || t.Kind == lexer.STRING {
		p.advance()
		return strings.TrimSpace(t.Text), true
	}
	p.errorf("expected function body literal, got %q", t.Text)
	return "", false
}
