// Package semantic resolves identifiers to symbols, type-checks
// expressions inserting the casts Simple C's usual arithmetic promotions
// require, desugars variable declarations into plain assignments, and
// assigns every parameter/local its stack offset via Allocate - the
// external collaborator the code generator depends on.
package semantic

import (
	"fmt"

	"github.com/simplec/scc/pkg/ast"
	"github.com/simplec/scc/pkg/types"
)

// Analyzer accumulates errors across a whole Program analysis.
type Analyzer struct {
	prog      *ast.Program
	funcs     map[string]*ast.Function
	globals   map[string]*ast.Symbol
	errors    []error
	sym       *symtab
	currentFn *ast.Function
}

// Analyze resolves and type-checks prog in place, assigning every
// function's parameter/local stack offsets. Inspect the returned
// Analyzer's ErrorCount()/Errors() before handing prog to codegen.
func Analyze(prog *ast.Program) *Analyzer {
	a := &Analyzer{
		prog:    prog,
		funcs:   make(map[string]*ast.Function),
		globals: make(map[string]*ast.Symbol),
	}
	for _, g := range prog.Globals {
		a.globals[g.Symbol.Name] = g.Symbol
	}
	for _, fn := range prog.Functions {
		a.funcs[fn.Name] = fn
	}
	for _, fn := range prog.Functions {
		if fn.Body != nil {
			a.analyzeFunction(fn)
		}
	}
	return a
}

func (a *Analyzer) Errors() []error { return a.errors }
func (a *Analyzer) ErrorCount() int { return len(a.errors) }

func (a *Analyzer) errorf(pos ast.Position, format string, args ...interface{}) {
	a.errors = append(a.errors, &PositionedError{Line: pos.Line, Message: fmt.Sprintf(format, args...)})
}

func (a *Analyzer) analyzeFunction(fn *ast.Function) {
	a.currentFn = fn
	a.sym = newSymtab()
	a.sym.push()
	for _, p := range fn.Params {
		if !a.sym.declare(p) {
			a.errorf(fn.Pos(), "redeclaration of parameter '%s'", p.Name)
		}
	}
	fn.Body.Stmts = a.analyzeStmtList(fn.Body.Stmts)
	a.sym.pop()

	Allocate(fn)
}

func (a *Analyzer) analyzeStmtList(stmts []ast.Statement) []ast.Statement {
	var out []ast.Statement
	for _, s := range stmts {
		out = append(out, a.analyzeStmt(s)...)
	}
	return out
}

// analyzeSingleStmt analyzes a statement that must remain exactly one
// Statement (an if/while/for's sole Init/Incr/Then/Else/Body slot),
// wrapping in a Block whenever analysis yields zero statements (a
// declaration with no initializer) or more than one (a declarator group
// with no enclosing braces).
func (a *Analyzer) analyzeSingleStmt(s ast.Statement) ast.Statement {
	list := a.analyzeStmt(s)
	if len(list) == 1 {
		return list[0]
	}
	block := ast.NewBlock(s.Pos())
	block.Stmts = list
	return block
}

func (a *Analyzer) analyzeStmt(s ast.Statement) []ast.Statement {
	switch n := s.(type) {
	case *ast.VarDecl:
		return a.analyzeVarDecl(n)

	case *ast.DeclGroup:
		var out []ast.Statement
		for _, d := range n.Decls {
			out = append(out, a.analyzeVarDecl(d)...)
		}
		return out

	case *ast.Block:
		a.sym.push()
		n.Stmts = a.analyzeStmtList(n.Stmts)
		a.sym.pop()
		return []ast.Statement{n}

	case *ast.Simple:
		n.Expr = a.analyzeExpr(n.Expr)
		return []ast.Statement{n}

	case *ast.If:
		n.Cond = a.analyzeExpr(n.Cond)
		n.Then = a.analyzeSingleStmt(n.Then)
		if n.Else != nil {
			n.Else = a.analyzeSingleStmt(n.Else)
		}
		return []ast.Statement{n}

	case *ast.While:
		n.Cond = a.analyzeExpr(n.Cond)
		n.Body = a.analyzeSingleStmt(n.Body)
		return []ast.Statement{n}

	case *ast.For:
		a.sym.push()
		if n.Init != nil {
			n.Init = a.analyzeSingleStmt(n.Init)
		}
		if n.Cond != nil {
			n.Cond = a.analyzeExpr(n.Cond)
		}
		if n.Incr != nil {
			n.Incr = a.analyzeSingleStmt(n.Incr)
		}
		n.Body = a.analyzeSingleStmt(n.Body)
		a.sym.pop()
		return []ast.Statement{n}

	case *ast.Break:
		return []ast.Statement{n}

	case *ast.Return:
		if n.Expr != nil {
			n.Expr = a.coerce(a.analyzeExpr(n.Expr), a.currentFn.ReturnType)
		}
		return []ast.Statement{n}

	default:
		a.errorf(s.Pos(), "unsupported statement")
		return nil
	}
}

// analyzeVarDecl resolves d's declared symbol into the enclosing
// function's Locals and, if d has an initializer, lowers it into a plain
// assignment statement. d itself is never kept in the tree codegen sees.
func (a *Analyzer) analyzeVarDecl(d *ast.VarDecl) []ast.Statement {
	sym := &ast.Symbol{Name: d.Name, Type: d.Type}
	if !a.sym.declare(sym) {
		a.errorf(d.Pos(), "redeclaration of '%s'", d.Name)
	}
	a.currentFn.Locals = append(a.currentFn.Locals, sym)

	if d.Init == nil {
		return nil
	}

	id := ast.NewIdentifier(d.Pos(), d.Name)
	id.Symbol = sym
	id.SetType(sym.Type)

	rhs := a.coerce(a.analyzeExpr(d.Init), sym.Type)
	assign := ast.NewAssignment(d.Pos(), id, rhs)
	assign.SetType(sym.Type)
	return []ast.Statement{ast.NewSimple(d.Pos(), assign)}
}

func (a *Analyzer) analyzeExpr(expr ast.Expression) ast.Expression {
	switch n := expr.(type) {
	case *ast.Number:
		n.SetType(types.IntType)
		return n

	case *ast.String:
		n.SetType(&types.Pointer{Elem: types.CharType})
		return n

	case *ast.Identifier:
		if sym, ok := a.sym.lookup(n.Name); ok {
			n.Symbol = sym
			n.SetType(sym.Type)
			return n
		}
		if sym, ok := a.globals[n.Name]; ok {
			n.Symbol = sym
			n.SetType(sym.Type)
			return n
		}
		a.errorf(n.Pos(), "undefined identifier '%s'", n.Name)
		n.Symbol = &ast.Symbol{Name: n.Name, Type: types.IntType}
		n.SetType(types.IntType)
		return n

	case *ast.Binary:
		return a.analyzeBinary(n)

	case *ast.Unary:
		return a.analyzeUnary(n)

	case *ast.Cast:
		n.Expr = a.analyzeExpr(n.Expr)
		n.SetType(n.To)
		return n

	case *ast.Call:
		return a.analyzeCall(n)

	case *ast.Assignment:
		return a.analyzeAssignment(n)

	default:
		a.errorf(expr.Pos(), "unsupported expression")
		return expr
	}
}

func (a *Analyzer) analyzeBinary(n *ast.Binary) ast.Expression {
	n.Left = a.analyzeExpr(n.Left)
	n.Right = a.analyzeExpr(n.Right)

	switch n.Op {
	case ast.Add, ast.Sub, ast.Mul, ast.Div, ast.Mod,
		ast.Lt, ast.Gt, ast.Le, ast.Ge, ast.Eq, ast.Ne:
		n.Left = a.promoteArith(n.Left)
		n.Right = a.promoteArith(n.Right)
	}
	// Every binary result is an int: arithmetic stays int-sized (Simple C
	// has no wider integer type), relational/equality produce a 0/1 flag,
	// and && / || produce a 0/1 flag too.
	n.SetType(types.IntType)
	return n
}

func (a *Analyzer) analyzeUnary(n *ast.Unary) ast.Expression {
	switch n.Op {
	case ast.AddrOf:
		// &*p - analyze p itself; analyzeExpr(n.Expr) below still walks
		// through the Deref so it's fully resolved, then generateAddrOf
		// recognizes the shape and elides both operators at emission time.
		n.Expr = a.analyzeExpr(n.Expr)
		if !isLvalue(n.Expr) {
			a.errorf(n.Pos(), "cannot take the address of a non-lvalue")
		}
		n.SetType(&types.Pointer{Elem: n.Expr.Type()})
		return n

	case ast.Deref:
		n.Expr = a.analyzeExpr(n.Expr)
		ptr, ok := n.Expr.Type().(*types.Pointer)
		if !ok {
			a.errorf(n.Pos(), "cannot dereference a non-pointer")
			n.SetType(types.IntType)
			return n
		}
		n.SetType(ptr.Elem)
		return n

	case ast.Neg:
		n.Expr = a.promoteArith(a.analyzeExpr(n.Expr))
		n.SetType(n.Expr.Type())
		return n

	case ast.Not:
		n.Expr = a.analyzeExpr(n.Expr)
		n.SetType(types.IntType)
		return n

	default:
		a.errorf(n.Pos(), "unsupported unary operator")
		return n
	}
}

func (a *Analyzer) analyzeAssignment(n *ast.Assignment) ast.Expression {
	n.LHS = a.analyzeExpr(n.LHS)
	if !isLvalue(n.LHS) {
		a.errorf(n.Pos(), "left-hand side of assignment must be an identifier or dereference")
	}
	n.RHS = a.coerce(a.analyzeExpr(n.RHS), n.LHS.Type())
	n.SetType(n.LHS.Type())
	return n
}

// analyzeCall resolves call.Callee against known function signatures,
// implicitly declaring an unknown callee as an extern variadic function
// (the old-style C convention printf-style calls rely on, since Simple C
// has no forward-declaration requirement for library functions).
func (a *Analyzer) analyzeCall(call *ast.Call) ast.Expression {
	fn, ok := a.funcs[call.Callee]
	if !ok {
		fn = ast.NewFunction(call.Pos(), call.Callee)
		fn.ReturnType = types.IntType
		fn.Variadic = true
		a.funcs[call.Callee] = fn
		a.prog.Functions = append(a.prog.Functions, fn)
	}

	for i := range call.Args {
		call.Args[i] = a.analyzeExpr(call.Args[i])
		if !fn.Variadic && i < len(fn.Params) {
			call.Args[i] = a.coerce(call.Args[i], fn.Params[i].Type)
		} else {
			call.Args[i] = a.promoteArith(call.Args[i])
		}
	}
	if !fn.Variadic && len(call.Args) != len(fn.Params) {
		a.errorf(call.Pos(), "call to '%s' passes %d arguments, expected %d",
			call.Callee, len(call.Args), len(fn.Params))
	}

	call.Variadic = fn.Variadic
	call.SetType(fn.ReturnType)
	return call
}

// promoteArith widens a char-sized operand to int, Simple C's one usual
// arithmetic conversion.
func (a *Analyzer) promoteArith(e ast.Expression) ast.Expression {
	if e.Type().Size() == 1 {
		c := ast.NewCast(e.Pos(), types.IntType, e)
		return c
	}
	return e
}

// coerce wraps e in a Cast to target unless it is already that size.
func (a *Analyzer) coerce(e ast.Expression, target types.Type) ast.Expression {
	if e.Type().Size() == target.Size() {
		return e
	}
	return ast.NewCast(e.Pos(), target, e)
}

func isLvalue(e ast.Expression) bool {
	switch v := e.(type) {
	case *ast.Identifier:
		return true
	case *ast.Unary:
		return v.Op == ast.Deref
	default:
		_ = v
		return false
	}
}
