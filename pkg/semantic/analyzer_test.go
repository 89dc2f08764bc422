package semantic

import (
	"testing"

	"github.com/simplec/scc/pkg/ast"
	"github.com/simplec/scc/pkg/parser"
	"github.com/simplec/scc/pkg/types"
)

func mustAnalyze(t *testing.T, src string) (*ast.Program, *Analyzer) {
	t.Helper()
	prog, err := parser.Parse(src)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	return prog, Analyze(prog)
}

func TestAnalyzeResolvesParamOffsets(t *testing.T) {
	prog, a := mustAnalyze(t, `int add(int x, int y) { return x + y; }`)
	if a.ErrorCount() != 0 {
		t.Fatalf("unexpected errors: %v", a.Errors())
	}
	fn := prog.Functions[0]
	if len(fn.Params) != 2 {
		t.Fatalf("expected 2 params")
	}
	x, y := fn.Params[0], fn.Params[1]
	if x.Offset >= 0 || y.Offset >= 0 {
		t.Fatalf("expected negative stack offsets, got x=%d y=%d", x.Offset, y.Offset)
	}
	if x.Offset == y.Offset {
		t.Fatalf("expected distinct offsets for distinct params")
	}
	if fn.FrameOffset > x.Offset || fn.FrameOffset > y.Offset {
		t.Errorf("FrameOffset should be the lowest address used, got %d (x=%d y=%d)", fn.FrameOffset, x.Offset, y.Offset)
	}
}

func TestAllocateStartsBelowSavedRegisters(t *testing.T) {
	fn := ast.NewFunction(ast.Position{}, "f")
	fn.Params = []*ast.Symbol{{Name: "a", Type: types.IntType}}
	Allocate(fn)
	if fn.Params[0].Offset != -4 {
		t.Errorf("expected the first 4-byte param at -4(%%rbp)-equivalent offset, got %d", fn.Params[0].Offset)
	}
}

func TestAnalyzeDesugarsVarDecl(t *testing.T) {
	prog, a := mustAnalyze(t, `
int f() {
    int x = 5;
    return x;
}
`)
	if a.ErrorCount() != 0 {
		t.Fatalf("unexpected errors: %v", a.Errors())
	}
	fn := prog.Functions[0]
	if len(fn.Locals) != 1 || fn.Locals[0].Name != "x" {
		t.Fatalf("expected x registered as a local, got %+v", fn.Locals)
	}
	// The VarDecl must be gone, replaced by a Simple(Assignment).
	stmt := fn.Body.Stmts[0]
	simple, ok := stmt.(*ast.Simple)
	if !ok {
		t.Fatalf("expected the initializer to desugar to a Simple statement, got %T", stmt)
	}
	if _, ok := simple.Expr.(*ast.Assignment); !ok {
		t.Errorf("expected an Assignment expression, got %T", simple.Expr)
	}
}

func TestAnalyzeUndefinedIdentifier(t *testing.T) {
	_, a := mustAnalyze(t, `int f() { return y; }`)
	if a.ErrorCount() == 0 {
		t.Fatalf("expected an undefined-identifier error")
	}
}

func TestAnalyzeRedeclaration(t *testing.T) {
	_, a := mustAnalyze(t, `
int f(int x) {
    int x;
    return x;
}
`)
	if a.ErrorCount() == 0 {
		t.Fatalf("expected a redeclaration error")
	}
}

func TestAnalyzeImplicitVariadicExtern(t *testing.T) {
	prog, a := mustAnalyze(t, `
int f() {
    printf("hi");
    return 0;
}
`)
	if a.ErrorCount() != 0 {
		t.Fatalf("unexpected errors: %v", a.Errors())
	}
	found := false
	for _, fn := range prog.Functions {
		if fn.Name == "printf" {
			found = true
			if !fn.Variadic {
				t.Errorf("expected the implicit printf declaration to be variadic")
			}
			if fn.Body != nil {
				t.Errorf("expected the implicit declaration to have no body")
			}
		}
	}
	if !found {
		t.Fatalf("expected an implicit printf declaration to be registered")
	}
}

func TestAnalyzeCallArgumentCountMismatch(t *testing.T) {
	_, a := mustAnalyze(t, `
int g(int a, int b);
int f() {
    return g(1);
}
`)
	if a.ErrorCount() == 0 {
		t.Fatalf("expected an argument-count mismatch error")
	}
}

func TestAnalyzeCharPromotion(t *testing.T) {
	prog, a := mustAnalyze(t, `
int f(char c) {
    return c + 1;
}
`)
	if a.ErrorCount() != 0 {
		t.Fatalf("unexpected errors: %v", a.Errors())
	}
	ret := prog.Functions[0].Body.Stmts[0].(*ast.Return)
	bin := ret.Expr.(*ast.Binary)
	if _, ok := bin.Left.(*ast.Cast); !ok {
		t.Errorf("expected the char operand to be wrapped in a promoting Cast, got %T", bin.Left)
	}
}

