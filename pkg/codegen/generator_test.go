package codegen

import (
	"strings"
	"testing"

	"github.com/simplec/scc/pkg/parser"
	"github.com/simplec/scc/pkg/semantic"
)

// compile runs the whole pipeline (parse, analyze, generate) and fails the
// test immediately on any error, since these fixtures are all meant to be
// valid Simple C.
func compile(t *testing.T, src string) string {
	t.Helper()
	prog, err := parser.Parse(src)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	a := semantic.Analyze(prog)
	if a.ErrorCount() > 0 {
		t.Fatalf("semantic errors: %v", a.Errors())
	}
	return Generate(prog)
}

func TestArithmetic(t *testing.T) {
	out := compile(t, `
int add(int a, int b) {
    return a + b;
}
`)
	for _, want := range []string{"add:", "addl", ".globl add", ".set add.size,"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestShortCircuitAnd(t *testing.T) {
	out := compile(t, `
int f(int a, int b) {
    return a && b;
}
`)
	if strings.Count(out, "je .L1") != 2 {
		t.Errorf("expected two short-circuit tests against .L1:\n%s", out)
	}
	if !strings.Contains(out, "jmp .L2") {
		t.Errorf("missing join jump:\n%s", out)
	}
}

func TestShortCircuitOr(t *testing.T) {
	out := compile(t, `
int f(int a, int b) {
    return a || b;
}
`)
	if strings.Count(out, "jne .L1") != 2 {
		t.Errorf("expected two short-circuit tests against .L1:\n%s", out)
	}
}

func TestWhileBreak(t *testing.T) {
	out := compile(t, `
int f(int n) {
    while (n) {
        if (n == 5) break;
        n = n - 1;
    }
    return n;
}
`)
	if !strings.Contains(out, "je .L2") {
		t.Errorf("missing loop-condition test:\n%s", out)
	}
	// break jumps to the while's own exit label, not the if's.
	if strings.Count(out, "jmp .L2") < 1 {
		t.Errorf("expected break to jump to the loop exit label:\n%s", out)
	}
}

func TestStackArgCall(t *testing.T) {
	out := compile(t, `
int sum7(int a, int b, int c, int d, int e, int f, int g);
int main() {
    return sum7(1, 2, 3, 4, 5, 6, 7);
}
`)
	if !strings.Contains(out, "subq $8, %rsp") {
		t.Errorf("expected 8 bytes of alignment padding before the call:\n%s", out)
	}
	if !strings.Contains(out, "pushq %rax") {
		t.Errorf("expected the 7th argument pushed onto the stack:\n%s", out)
	}
	if !strings.Contains(out, "call sum7") {
		t.Errorf("missing call instruction:\n%s", out)
	}
	if !strings.Contains(out, "addq $16, %rsp") {
		t.Errorf("expected cleanup of padding plus one pushed argument:\n%s", out)
	}
}

func TestEightParamFunctionDefinition(t *testing.T) {
	out := compile(t, `
int sum8(int a, int b, int c, int d, int e, int f, int g, int h) {
    return a + b + c + d + e + f + g + h;
}
`)
	// g and h (the 7th and 8th parameters) never arrive in a register; they
	// must be read straight from the slots the caller already pushed.
	for _, want := range []string{"16(%rbp)", "24(%rbp)"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected a reference to the caller-pushed slot %q:\n%s", want, out)
		}
	}
	// The six register-passed parameters are spilled in the prologue and
	// g and h are read in place, so at least 8 frame-relative operands appear.
	if n := strings.Count(out, "(%rbp)"); n < 8 {
		t.Errorf("expected at least 8 frame-relative references, got %d:\n%s", n, out)
	}
}

func TestPointerDeref(t *testing.T) {
	out := compile(t, `
int deref(int *p) {
    return *p;
}
`)
	if !strings.Contains(out, "(%rax)") && !strings.Contains(out, "(%rdi)") {
		t.Errorf("expected an indirect memory operand:\n%s", out)
	}
}

func TestCharToIntWidening(t *testing.T) {
	out := compile(t, `
int f(char c) {
    return c;
}
`)
	if !strings.Contains(out, "movsbl") {
		t.Errorf("expected a widening cast from char to int:\n%s", out)
	}
}

func TestStringPoolDedup(t *testing.T) {
	out := compile(t, `
int main() {
    printf("hi");
    printf("hi");
    return 0;
}
`)
	if n := strings.Count(out, `.asciz "hi"`); n != 1 {
		t.Errorf("expected the duplicate string literal to be pooled once, got %d:\n%s", n, out)
	}
	if n := strings.Count(out, "call printf"); n != 2 {
		t.Errorf("expected two calls to printf, got %d:\n%s", n, out)
	}
}

func TestGlobalVariable(t *testing.T) {
	out := compile(t, `
int counter;
int bump() {
    counter = counter + 1;
    return counter;
}
`)
	if !strings.Contains(out, ".comm counter, 4") {
		t.Errorf("expected a .comm directive for the global:\n%s", out)
	}
}
