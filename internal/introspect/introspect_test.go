package introspect

import "testing"

func TestParseFunctionArgsSimple(t *testing.T) {
	args, err := parseFunctionArgs("a integer, b text")
	if err != nil {
		t.Fatalf("parseFunctionArgs: %v", err)
	}
	if len(args) != 2 || args[0].Name != "a" || args[0].SQLType != "integer" || args[1].Name != "b" || args[1].SQLType != "text" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestParseFunctionArgsEmpty(t *testing.T) {
	args, err := parseFunctionArgs("")
	if err != nil {
		t.Fatalf("parseFunctionArgs: %v", err)
	}
	if args != nil {
		t.Fatalf("expected nil args, got %+v", args)
	}
}

func TestParseFunctionArgsWithParameterizedType(t *testing.T) {
	args, err := parseFunctionArgs("a numeric(10,2)")
	if err != nil {
		t.Fatalf("parseFunctionArgs: %v", err)
	}
	if len(args) != 1 || args[0].SQLType != "numeric(10,2)" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestParseFunctionArgsMalformedDescriptor(t *testing.T) {
	_, err := parseFunctionArgs("onlyname")
	if err == nil {
		t.Fatal("expected an error for a descriptor without a type")
	}
}

func TestParseFunctionReturnTypeScalar(t *testing.T) {
	for _, raw := range []string{"integer", "void", "SETOF text", "character varying(50)"} {
		got, err := parseFunctionReturnType(raw)
		if err != nil {
			t.Fatalf("parseFunctionReturnType(%q): %v", raw, err)
		}
		if got != raw {
			t.Fatalf("parseFunctionReturnType(%q) = %q, want unchanged", raw, got)
		}
	}
}

func TestParseFunctionReturnTypeTable(t *testing.T) {
	got, err := parseFunctionReturnType("TABLE(a integer, b text)")
	if err != nil {
		t.Fatalf("parseFunctionReturnType: %v", err)
	}
	if got != "TABLE(a integer, b text)" {
		t.Fatalf("unexpected return type: %q", got)
	}
}

func TestParseFunctionReturnTypeEmpty(t *testing.T) {
	if _, err := parseFunctionReturnType("   "); err == nil {
		t.Fatal("expected an error for an empty descriptor")
	}
}

func TestParseFunctionReturnTypeUnbalancedParens(t *testing.T) {
	if _, err := parseFunctionReturnType("numeric(10,2"); err == nil {
		t.Fatal("expected an error for unbalanced parentheses")
	}
}

func TestParseFunctionReturnTypeMalformedTable(t *testing.T) {
	cases := []string{
		"TABLE a integer, b text)",
		"TABLE(a integer, )",
		"TABLE(onlyname)",
	}
	for _, raw := range cases {
		if _, err := parseFunctionReturnType(raw); err == nil {
			t.Fatalf("parseFunctionReturnType(%q): expected an error", raw)
		}
	}
}

func TestSplitTopLevelCommaIgnoresNestedParens(t *testing.T) {
	parts := splitTopLevelComma("a numeric(10,2), b text")
	if len(parts) != 2 {
		t.Fatalf("expected 2 parts, got %+v", parts)
	}
	if parts[0] != "a numeric(10,2)" || parts[1] != " b text" {
		t.Fatalf("unexpected split: %+v", parts)
	}
}

func TestVolatilityName(t *testing.T) {
	cases := map[string]string{"i": "IMMUTABLE", "s": "STABLE", "v": "VOLATILE", "": "VOLATILE"}
	for code, want := range cases {
		if got := volatilityName(code); got != want {
			t.Errorf("volatilityName(%q) = %q, want %q", code, got, want)
		}
	}
}

func TestToSetEmptyYieldsNil(t *testing.T) {
	if s := toSet(nil); s != nil {
		t.Errorf("expected nil set for empty input, got %+v", s)
	}
	if s := toSet([]string{"a", "b"}); !s["a"] || !s["b"] {
		t.Errorf("expected set with a and b, got %+v", s)
	}
}
