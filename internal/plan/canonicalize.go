package plan

import "strings"

// typeSynonyms collapses a small set of PostgreSQL type aliases to one
// canonical spelling so declared and introspected column types compare
// equal even though introspection reports the catalog's long-form name
// while source SQL commonly uses the short form (spec.md §4.6).
var typeSynonyms = map[string]string{
	"int":              "integer",
	"int4":             "integer",
	"bool":             "boolean",
	"varchar":          "character varying",
	"decimal":          "numeric",
	"serial":           "integer",
	"float8":           "double precision",
	"float4":           "real",
}

// canonicalType normalizes whitespace and case and collapses known
// synonyms, so "INT", "int4" and "integer" all compare equal.
func canonicalType(t string) string {
	t = normalizeWhitespace(strings.ToLower(strings.TrimSpace(t)))
	if canon, ok := typeSynonyms[t]; ok {
		return canon
	}
	return t
}

// canonicalText normalizes whitespace for textual comparison of defaults,
// check expressions and function bodies (spec.md §4.6).
func canonicalText(s string) string {
	return normalizeWhitespace(strings.TrimSpace(s))
}

func normalizeWhitespace(s string) string {
	fields := strings.Fields(s)
	return strings.Join(fields, " ")
}

func canonicalDefault(d *string) string {
	if d == nil {
		return ""
	}
	return canonicalText(*d)
}
