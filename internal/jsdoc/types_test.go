package jsdoc

import "testing"

func TestParseType(t *testing.T) {
	cases := []struct {
		expr     string
		wantAlts string
		optional bool
		nullable bool
		variadic bool
	}{
		{"Node", "Node", false, false, false},
		{"PartyError|FartyError", "PartyError|FartyError", false, false, false},
		{"(A|B)", "A|B", false, false, false},
		{"Object.<string, (A|B)>", "Object.<string, (A|B)>", false, false, false},
		{"?string=", "string", true, true, false},
		{"!Element", "Element", false, false, false},
		{"...number", "number", false, false, true},
		{"(A|B)|(C)", "(A|B)|(C)", false, false, false},
		{"{a: number, b: (x|y)}|null", "{a: number, b: (x|y)}|null", false, false, false},
	}

	for _, c := range cases {
		c := c
		t.Run(c.expr, func(t *testing.T) {
			te := ParseType(c.expr)
			if te.String() != c.wantAlts {
				t.Errorf("alternatives: got %q, want %q", te.String(), c.wantAlts)
			}
			if te.Optional != c.optional {
				t.Errorf("optional: got %v, want %v", te.Optional, c.optional)
			}
			if te.Nullable != c.nullable {
				t.Errorf("nullable: got %v, want %v", te.Nullable, c.nullable)
			}
			if te.Variadic != c.variadic {
				t.Errorf("variadic: got %v, want %v", te.Variadic, c.variadic)
			}
		})
	}
}

func TestParseType_UnionCount(t *testing.T) {
	te := ParseType("(A|B)|(C)")
	if len(te.Alternatives) != 2 {
		t.Fatalf("expected 2 alternatives, got %d: %v", len(te.Alternatives), te.Alternatives)
	}
	if te.Alternatives[0] != "(A|B)" || te.Alternatives[1] != "(C)" {
		t.Errorf("unexpected alternatives %v", te.Alternatives)
	}
}
