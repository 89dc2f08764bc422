package codegen

import (
	"fmt"

	"github.com/simplec/scc/pkg/ast"
	"github.com/simplec/scc/pkg/types"
)

// ensureRegister materializes expr in some register, allocating and
// loading one if expr is not already register-resident. Several operators
// call this before consuming their operand.
func (e *Emitter) ensureRegister(expr ast.Expression) *Register {
	if r := regOf(expr); r != nil {
		return r
	}
	r := e.getreg()
	e.load(expr, r)
	return r
}

// generate emits code for expr so that, on return, its value resides
// either in a register (expr's register is non-nil) or at its spill slot.
func (e *Emitter) generate(expr ast.Expression) {
	switch n := expr.(type) {
	case *ast.Number, *ast.String, *ast.Identifier:
		// Leaves: operand() addresses them directly; nothing to emit
		// until a consumer actually needs the value in a register.

	case *ast.Binary:
		e.generateBinary(n)

	case *ast.Unary:
		e.generateUnary(n)

	case *ast.Cast:
		e.generateCast(n)

	case *ast.Call:
		e.generateCall(n)

	case *ast.Assignment:
		e.generateAssignment(n)

	default:
		panic(fmt.Sprintf("codegen: unhandled expression kind %T", expr))
	}
}

func (e *Emitter) generateBinary(n *ast.Binary) {
	switch n.Op {
	case ast.Add:
		e.generateArith(n, "add")
	case ast.Sub:
		e.generateArith(n, "sub")
	case ast.Mul:
		e.generateArith(n, "imul")
	case ast.Div, ast.Mod:
		e.generateDivMod(n)
	case ast.Lt:
		e.generateRelational(n, "l")
	case ast.Gt:
		e.generateRelational(n, "g")
	case ast.Le:
		e.generateRelational(n, "le")
	case ast.Ge:
		e.generateRelational(n, "ge")
	case ast.Eq:
		e.generateRelational(n, "e")
	case ast.Ne:
		e.generateRelational(n, "ne")
	case ast.LogAnd, ast.LogOr:
		e.generateLogical(n)
	default:
		panic(fmt.Sprintf("codegen: unhandled binary operator %v", n.Op))
	}
}

// generateArith implements +, -, * : emit left, emit right, ensure left is
// registered, emit the op in place, detach the right operand, and assign
// the result to the left's register.
func (e *Emitter) generateArith(n *ast.Binary, mnemonic string) {
	e.generate(n.Left)
	e.generate(n.Right)
	leftReg := e.ensureRegister(n.Left)
	suf := types.Suffix(n.Type())
	e.emit("%s%s %s, %s", mnemonic, suf, e.operand(n.Right), leftReg.Spelling(n.Type().Size()))
	e.detach(n.Right)
	e.detach(n.Left)
	e.assign(n, leftReg)
}

// generateDivMod implements / and % via idiv, which always produces both
// the quotient (rax) and remainder (rdx) together.
func (e *Emitter) generateDivMod(n *ast.Binary) {
	e.generate(n.Left)
	e.generate(n.Right)
	e.load(n.Left, e.regs.RAX)
	e.load(nil, e.regs.RDX) // evict whatever rdx holds
	e.load(n.Right, e.regs.RCX)

	suf := types.Suffix(n.Type())
	if n.Type().Size() == 8 {
		e.emit("cqto")
	} else {
		e.emit("cltd")
	}
	e.emit("idiv%s %s", suf, e.regs.RCX.Spelling(n.Type().Size()))

	e.detach(n.Left)
	e.detach(n.Right)
	if n.Op == ast.Div {
		e.assign(n, e.regs.RAX)
	} else {
		e.assign(n, e.regs.RDX)
	}
}

// generateRelational implements <, >, <=, >=, ==, != : compare, detach
// both operands, then materialize a 0/1 result in a fresh register.
func (e *Emitter) generateRelational(n *ast.Binary, cc string) {
	e.generate(n.Left)
	e.generate(n.Right)
	leftReg := e.ensureRegister(n.Left)
	suf := types.Suffix(n.Left.Type())
	e.emit("cmp%s %s, %s", suf, e.operand(n.Right), leftReg.Spelling(n.Left.Type().Size()))
	e.detach(n.Left)
	e.detach(n.Right)

	result := e.getreg()
	e.emit("set%s %s", cc, result.Spelling(1))
	e.emit("movzb%s %s, %s", types.Suffix(n.Type()), result.Spelling(1), result.Spelling(n.Type().Size()))
	e.assign(n, result)
}

// generateLogical implements && and || with the required short-circuit
// boundary: the right operand's side effects occur only when control
// actually reaches its test.
func (e *Emitter) generateLogical(n *ast.Binary) {
	l1 := e.newLabel()
	l2 := e.newLabel()

	if n.Op == ast.LogOr {
		e.test(n.Left, l1, true)
		e.test(n.Right, l1, true)
		result := e.getreg()
		e.emit("movl $0, %s", result.Spelling(4))
		e.emit("jmp %s", l2)
		e.emitRaw(l1 + ":")
		e.emit("movl $1, %s", result.Spelling(4))
		e.emitRaw(l2 + ":")
		e.assign(n, result)
		return
	}

	// LogAnd
	e.test(n.Left, l1, false)
	e.test(n.Right, l1, false)
	result := e.getreg()
	e.emit("movl $1, %s", result.Spelling(4))
	e.emit("jmp %s", l2)
	e.emitRaw(l1 + ":")
	e.emit("movl $0, %s", result.Spelling(4))
	e.emitRaw(l2 + ":")
	e.assign(n, result)
}

// test emits expr, loads it if necessary, compares it against zero, and
// jumps to label according to ifTrue. expr is detached afterward.
func (e *Emitter) test(expr ast.Expression, label string, ifTrue bool) {
	e.generate(expr)
	reg := e.ensureRegister(expr)
	e.emit("cmp%s $0, %s", types.Suffix(expr.Type()), reg.Spelling(expr.Type().Size()))
	if ifTrue {
		e.emit("jne %s", label)
	} else {
		e.emit("je %s", label)
	}
	e.detach(expr)
}

func (e *Emitter) generateUnary(n *ast.Unary) {
	switch n.Op {
	case ast.Neg:
		e.generateNeg(n)
	case ast.Not:
		e.generateNot(n)
	case ast.AddrOf:
		e.generateAddrOf(n)
	case ast.Deref:
		e.generateDeref(n)
	default:
		panic(fmt.Sprintf("codegen: unhandled unary operator %v", n.Op))
	}
}

func (e *Emitter) generateNeg(n *ast.Unary) {
	e.generate(n.Expr)
	reg := e.ensureRegister(n.Expr)
	e.emit("neg%s %s", types.Suffix(n.Type()), reg.Spelling(n.Type().Size()))
	e.detach(n.Expr)
	e.assign(n, reg)
}

func (e *Emitter) generateNot(n *ast.Unary) {
	e.generate(n.Expr)
	reg := e.ensureRegister(n.Expr)
	e.emit("cmp%s $0, %s", types.Suffix(n.Expr.Type()), reg.Spelling(n.Expr.Type().Size()))
	e.detach(n.Expr)
	result := e.getreg()
	e.emit("sete %s", result.Spelling(1))
	e.emit("movzbl %s, %s", result.Spelling(1), result.Spelling(4))
	e.assign(n, result)
}

// generateAddrOf implements &expr. &*p elides both operators: p's
// register is taken directly rather than computing *p just to take its
// address again.
func (e *Emitter) generateAddrOf(n *ast.Unary) {
	if inner, ok := n.Expr.(*ast.Unary); ok && inner.Op == ast.Deref {
		e.generate(inner.Expr)
		reg := e.ensureRegister(inner.Expr)
		e.detach(inner.Expr)
		e.assign(n, reg)
		return
	}
	reg := e.getreg()
	e.emit("leaq %s, %s", e.operand(n.Expr), reg.Spelling(8))
	e.assign(n, reg)
}

func (e *Emitter) generateDeref(n *ast.Unary) {
	e.generate(n.Expr)
	reg := e.ensureRegister(n.Expr)
	e.emit("mov%s (%s), %s", types.Suffix(n.Type()), reg.Spelling(8), reg.Spelling(n.Type().Size()))
	e.detach(n.Expr)
	e.assign(n, reg)
}

// generateCast implements widening integer casts only (narrowing and
// same-size casts are no-ops at the machine level; the consuming
// instruction's suffix, taken from the *result* type, determines the
// bytes observed).
func (e *Emitter) generateCast(n *ast.Cast) {
	e.generate(n.Expr)
	reg := e.ensureRegister(n.Expr)

	from, to := n.Expr.Type().Size(), n.To.Size()
	switch {
	case from == 1 && to == 4:
		e.emit("movsbl %s, %s", reg.Spelling(1), reg.Spelling(4))
	case from == 1 && to == 8:
		e.emit("movsbq %s, %s", reg.Spelling(1), reg.Spelling(8))
	case from == 4 && to == 8:
		e.emit("movslq %s, %s", reg.Spelling(4), reg.Spelling(8))
	}

	e.detach(n.Expr)
	e.assign(n, reg)
}

// generateAssignment implements `lhs = rhs`. The LHS is either an
// Identifier or a dereference; the parser guarantees the two subtrees are
// disjoint, which is what makes it safe to not re-detach the pointer
// register here if it happens to already be held elsewhere.
func (e *Emitter) generateAssignment(n *ast.Assignment) {
	e.generate(n.RHS)
	rhsReg := e.ensureRegister(n.RHS)
	suf := types.Suffix(n.Type())

	switch lhs := n.LHS.(type) {
	case *ast.Identifier:
		e.emit("mov%s %s, %s", suf, rhsReg.Spelling(n.Type().Size()), e.operand(lhs))
		e.detach(n.RHS)
		e.assign(n, rhsReg)

	case *ast.Unary:
		if lhs.Op != ast.Deref {
			panic("codegen: assignment LHS must be an identifier or a dereference")
		}
		e.generate(lhs.Expr)
		ptrReg := e.ensureRegister(lhs.Expr)
		e.emit("mov%s %s, (%s)", suf, rhsReg.Spelling(n.Type().Size()), ptrReg.Spelling(8))
		e.detach(n.RHS)
		e.detach(lhs.Expr)
		e.assign(n, rhsReg)

	default:
		panic(fmt.Sprintf("codegen: unsupported assignment target %T", n.LHS))
	}
}
