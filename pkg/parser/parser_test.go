package parser

import (
	"testing"

	"github.com/simplec/scc/pkg/ast"
)

func mustParse(t *testing.T, src string) *ast.Program {
	t.Helper()
	prog, err := Parse(src)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	return prog
}

func TestParseFunctionSignature(t *testing.T) {
	prog := mustParse(t, `int add(int a, int b) { return a + b; }`)
	if len(prog.Functions) != 1 {
		t.Fatalf("expected 1 function, got %d", len(prog.Functions))
	}
	fn := prog.Functions[0]
	if fn.Name != "add" {
		t.Errorf("expected name add, got %s", fn.Name)
	}
	if len(fn.Params) != 2 || fn.Params[0].Name != "a" || fn.Params[1].Name != "b" {
		t.Errorf("unexpected params: %+v", fn.Params)
	}
	if fn.Body == nil || len(fn.Body.Stmts) != 1 {
		t.Fatalf("expected a single-statement body")
	}
	if _, ok := fn.Body.Stmts[0].(*ast.Return); !ok {
		t.Errorf("expected a Return statement, got %T", fn.Body.Stmts[0])
	}
}

func TestParseBareDeclaration(t *testing.T) {
	prog := mustParse(t, `int printf(char *fmt);`)
	if len(prog.Functions) != 1 {
		t.Fatalf("expected 1 function, got %d", len(prog.Functions))
	}
	if prog.Functions[0].Body != nil {
		t.Errorf("expected a bare declaration with no body")
	}
}

func TestParseGlobals(t *testing.T) {
	prog := mustParse(t, `int a, b, c;`)
	if len(prog.Globals) != 3 {
		t.Fatalf("expected 3 globals, got %d", len(prog.Globals))
	}
}

func TestParseMultiDeclaratorLocal(t *testing.T) {
	prog := mustParse(t, `
int f() {
    int a = 1, b, c = 3;
    return a;
}
`)
	body := prog.Functions[0].Body.Stmts
	if len(body) != 2 {
		t.Fatalf("expected a DeclGroup and a Return, got %d statements", len(body))
	}
	group, ok := body[0].(*ast.DeclGroup)
	if !ok {
		t.Fatalf("expected a DeclGroup, got %T", body[0])
	}
	if len(group.Decls) != 3 {
		t.Fatalf("expected 3 declarators, got %d", len(group.Decls))
	}
	if group.Decls[0].Init == nil {
		t.Errorf("expected a's initializer to be parsed")
	}
	if group.Decls[1].Init != nil {
		t.Errorf("expected b to be uninitialized")
	}
}

func TestParseIfElse(t *testing.T) {
	prog := mustParse(t, `
int f(int n) {
    if (n)
        return 1;
    else
        return 0;
}
`)
	ifStmt, ok := prog.Functions[0].Body.Stmts[0].(*ast.If)
	if !ok {
		t.Fatalf("expected an If statement, got %T", prog.Functions[0].Body.Stmts[0])
	}
	if ifStmt.Else == nil {
		t.Errorf("expected an else branch")
	}
}

func TestParseForLoop(t *testing.T) {
	prog := mustParse(t, `
int f() {
    int sum;
    for (int i = 0; i < 10; i = i + 1)
        sum = sum + i;
    return sum;
}
`)
	stmts := prog.Functions[0].Body.Stmts
	var forStmt *ast.For
	for _, s := range stmts {
		if f, ok := s.(*ast.For); ok {
			forStmt = f
		}
	}
	if forStmt == nil {
		t.Fatalf("expected a For statement among %#v", stmts)
	}
	if forStmt.Init == nil || forStmt.Cond == nil || forStmt.Incr == nil {
		t.Errorf("expected all three for-clauses to be present")
	}
}

func TestParsePointerTypeAndCast(t *testing.T) {
	prog := mustParse(t, `
int f(int *p) {
    return (int)*p;
}
`)
	fn := prog.Functions[0]
	if _, ok := fn.Params[0].Type.(interface{ Size() int }); !ok {
		t.Fatalf("expected a sized type for p")
	}
	ret := fn.Body.Stmts[0].(*ast.Return)
	if _, ok := ret.Expr.(*ast.Cast); !ok {
		t.Errorf("expected a Cast expression, got %T", ret.Expr)
	}
}

func TestParseCallExpression(t *testing.T) {
	prog := mustParse(t, `
int f() {
    return g(1, 2, 3);
}
`)
	ret := prog.Functions[0].Body.Stmts[0].(*ast.Return)
	call, ok := ret.Expr.(*ast.Call)
	if !ok {
		t.Fatalf("expected a Call expression, got %T", ret.Expr)
	}
	if call.Callee != "g" || len(call.Args) != 3 {
		t.Errorf("unexpected call shape: callee=%s args=%d", call.Callee, len(call.Args))
	}
}

func TestParseOperatorPrecedence(t *testing.T) {
	// a + b * c must parse as a + (b * c), not (a + b) * c.
	prog := mustParse(t, `int f(int a, int b, int c) { return a + b * c; }`)
	ret := prog.Functions[0].Body.Stmts[0].(*ast.Return)
	top, ok := ret.Expr.(*ast.Binary)
	if !ok || top.Op != ast.Add {
		t.Fatalf("expected top-level Add, got %#v", ret.Expr)
	}
	right, ok := top.Right.(*ast.Binary)
	if !ok || right.Op != ast.Mul {
		t.Fatalf("expected right-hand side to be a Mul, got %#v", top.Right)
	}
}

func TestParseBareReturn(t *testing.T) {
	prog := mustParse(t, `void f() { return; }`)
	ret := prog.Functions[0].Body.Stmts[0].(*ast.Return)
	if ret.Expr != nil {
		t.Errorf("expected a nil expression for a bare return")
	}
}

func TestParseMissingParenIsAnError(t *testing.T) {
	_, err := Parse(`int f(int a { return a; }`)
	if err == nil {
		t.Fatalf("expected a parse error for a missing ')'")
	}
}
