package codegen

import (
	"fmt"

	"github.com/simplec/scc/pkg/ast"
	"github.com/simplec/scc/pkg/platform"
	"github.com/simplec/scc/pkg/types"
)

// generateStmt dispatches on statement kind. Block asserts that no
// register stays bound across a statement boundary after each of its
// children.
func (e *Emitter) generateStmt(stmt ast.Statement) {
	switch s := stmt.(type) {
	case *ast.Simple:
		e.generate(s.Expr)
		e.detach(s.Expr)

	case *ast.Block:
		for _, sub := range s.Stmts {
			e.generateStmt(sub)
			e.assertRegistersFree("after statement in block")
		}

	case *ast.If:
		e.generateIf(s)

	case *ast.While:
		e.generateWhile(s)

	case *ast.For:
		e.generateFor(s)

	case *ast.Break:
		e.generateBreak(s)

	case *ast.Return:
		e.generateReturn(s)

	default:
		panic(fmt.Sprintf("codegen: unhandled statement kind %T", stmt))
	}
}

func (e *Emitter) generateIf(s *ast.If) {
	skip := e.newLabel()
	exit := e.newLabel()

	e.test(s.Cond, skip, false)
	e.generateStmt(s.Then)
	e.emit("jmp %s", exit)
	e.emitRaw(skip + ":")
	if s.Else != nil {
		e.generateStmt(s.Else)
	}
	e.emitRaw(exit + ":")
}

func (e *Emitter) generateWhile(s *ast.While) {
	loop := e.newLabel()
	exit := e.newLabel()

	e.pushExit(exit)
	e.emitRaw(loop + ":")
	e.test(s.Cond, exit, false)
	e.generateStmt(s.Body)
	e.emit("jmp %s", loop)
	e.emitRaw(exit + ":")
	e.popExit()
}

func (e *Emitter) generateFor(s *ast.For) {
	loop := e.newLabel()
	exit := e.newLabel()

	e.pushExit(exit)
	if s.Init != nil {
		e.generateStmt(s.Init)
	}
	e.emitRaw(loop + ":")
	if s.Cond != nil {
		e.test(s.Cond, exit, false)
	}
	e.generateStmt(s.Body)
	if s.Incr != nil {
		e.generateStmt(s.Incr)
	}
	e.emit("jmp %s", loop)
	e.emitRaw(exit + ":")
	e.popExit()
}

func (e *Emitter) pushExit(label string) { e.exitLabels = append(e.exitLabels, label) }
func (e *Emitter) popExit()              { e.exitLabels = e.exitLabels[:len(e.exitLabels)-1] }

func (e *Emitter) generateBreak(s *ast.Break) {
	if len(e.exitLabels) == 0 {
		// Semantic analysis does not check that a break sits inside a
		// loop, so a stray break reaches here and is reported as an
		// internal-invariant violation.
		panic("codegen: break with empty exit-label stack")
	}
	e.emit("jmp %s", e.exitLabels[len(e.exitLabels)-1])
}

func (e *Emitter) generateReturn(s *ast.Return) {
	if s.Expr != nil {
		e.generate(s.Expr)
		e.load(s.Expr, e.regs.RAX)
		e.detach(s.Expr)
	}
	e.emit("jmp %s", e.exitLabel)
}

// generateFunction emits a whole function: prologue (with a frame-size
// symbol fixed up after the body, so the prologue can be emitted before
// the final frame size is known), parameter spill, body, and epilogue.
func (e *Emitter) generateFunction(fn *ast.Function) {
	e.funcName = fn.Name
	e.frameOffset = fn.FrameOffset
	e.exitLabels = nil

	entry := platform.Symbol(fn.Name)
	e.exitLabel = entry + ".exit"

	e.emitRaw(entry + ":")
	e.emit("pushq %%rbp")
	e.emit("movq %%rsp, %%rbp")
	e.emit("movl $%s.size, %%eax", fn.Name)
	e.emit("subq %%rax, %%rsp")

	nRegParams := len(fn.Params)
	if nRegParams > platform.NumParamRegs {
		nRegParams = platform.NumParamRegs
	}
	for i := 0; i < nRegParams; i++ {
		p := fn.Params[i]
		preg := e.regs.Param(i)
		e.emit("mov%s %s, %d(%%rbp)", types.Suffix(p.Type), preg.Spelling(p.Type.Size()), p.Offset)
	}

	e.generateStmt(fn.Body)
	e.assertRegistersFree("function end")

	e.emitRaw(e.exitLabel + ":")
	e.emit("movq %%rbp, %%rsp")
	e.emit("popq %%rbp")
	e.emit("ret")

	frameSize := platform.Align(-e.frameOffset, platform.StackAlignment)
	e.emit(".set %s.size, %d", fn.Name, frameSize)
	e.emit(".globl %s", entry)
}

// generateGlobals emits the .comm directives for file-scope variables and
// the deduplicated .data string pool, once, after every function.
func (e *Emitter) generateGlobals() {
	for _, g := range e.globals {
		e.emit(".comm %s, %d", platform.Symbol(g.Symbol.Name), g.Symbol.Type.Size())
	}
	if len(e.pool.order) == 0 {
		return
	}
	e.emitRaw(".data")
	for _, payload := range e.pool.order {
		e.emitRaw(fmt.Sprintf("%s: .asciz \"%s\"", e.pool.labels[payload], escape(payload)))
	}
}
