package ast

import (
	"strings"
	"testing"

	"github.com/simplec/scc/pkg/types"
)

func TestFprintFunction(t *testing.T) {
	fn := NewFunction(Position{}, "add")
	fn.ReturnType = types.IntType
	fn.Params = []*Symbol{
		{Name: "a", Type: types.IntType},
		{Name: "b", Type: types.IntType},
	}
	fn.Body = NewBlock(Position{})
	fn.Body.Stmts = []Statement{
		NewReturn(Position{}, NewBinary(Position{}, Add, NewIdentifier(Position{}, "a"), NewIdentifier(Position{}, "b"))),
	}
	prog := &Program{Functions: []*Function{fn}}

	var out strings.Builder
	if err := Fprint(&out, prog); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := out.String()
	for _, want := range []string{
		"function int add(int a, int b)",
		"return",
		"binary +",
		"ident a",
		"ident b",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
}

func TestFprintExternDeclaration(t *testing.T) {
	fn := NewFunction(Position{}, "printf")
	fn.ReturnType = types.IntType
	fn.Variadic = true
	fn.Params = []*Symbol{{Name: "fmt", Type: &types.Pointer{Elem: types.CharType}}}
	prog := &Program{Functions: []*Function{fn}}

	var out strings.Builder
	if err := Fprint(&out, prog); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out.String(), "extern int printf(char* fmt, ...)") {
		t.Errorf("expected an extern declaration line, got:\n%s", out.String())
	}
}
