// Package codegen is the Simple C code generator: it walks a fully
// type-checked AST and emits x86-64 System V AT&T assembly. It is a
// tree-walking emitter paired with a small live-set register allocator;
// see register.go, allocator.go, operand.go, expr.go, stmt.go, call.go,
// and stringpool.go for the cooperating components.
package codegen

import (
	"fmt"
	"strings"

	"github.com/simplec/scc/pkg/ast"
	"github.com/simplec/scc/pkg/platform"
)

// Emitter is the single context threaded through emission: it bundles the
// per-translation-unit string pool with the per-function frame state
// (stack offset, function name, loop-exit labels) instead of leaving them
// as package-level globals.
type Emitter struct {
	regs *RegisterFile
	out  strings.Builder

	pool        *stringPool
	labelSeq    int
	globals     []*ast.Global

	// Per-function frame state, reset at the start of each Function.generate.
	frameOffset int
	funcName    string
	exitLabel   string
	exitLabels  []string

	// Debug echoes every emitted line to the supplied sink as well
	// (cmd/scc's -d/--debug flag); nil disables it.
	Debug func(line string)
}

// NewEmitter creates an Emitter ready to generate a whole Program.
func NewEmitter() *Emitter {
	return &Emitter{
		regs: NewRegisterFile(),
		pool: newStringPool(),
	}
}

// Generate lowers an entire Program to assembly text using a fresh Emitter.
func Generate(prog *ast.Program) string {
	return NewEmitter().Generate(prog)
}

// Generate lowers prog using e, so callers that want to observe emission
// (cmd/scc's -d/--debug flag sets e.Debug first) can do so.
func (e *Emitter) Generate(prog *ast.Program) string {
	e.generateProgram(prog)
	return e.out.String()
}

func (e *Emitter) generateProgram(prog *ast.Program) {
	e.globals = prog.Globals
	for _, fn := range prog.Functions {
		if fn.Body == nil {
			continue // external declaration (e.g. printf) - nothing to emit
		}
		e.generateFunction(fn)
	}
	e.generateGlobals()
}

// emit writes one assembly line, printf-formatted.
func (e *Emitter) emit(format string, args ...interface{}) {
	line := fmt.Sprintf(format, args...)
	e.out.WriteString(line)
	e.out.WriteByte('\n')
	if e.Debug != nil {
		e.Debug(line)
	}
}

// emitRaw writes a line verbatim (labels, directives with no operands).
func (e *Emitter) emitRaw(line string) {
	e.out.WriteString(line)
	e.out.WriteByte('\n')
	if e.Debug != nil {
		e.Debug(line)
	}
}

// newLabel returns a fresh, monotonically numbered .L<n> label.
func (e *Emitter) newLabel() string {
	e.labelSeq++
	return fmt.Sprintf(".L%d", e.labelSeq)
}

// detach frees node's register (if any) without binding it elsewhere.
// Equivalent to assign(node, nil) followed by assign(nil, node's old reg).
func (e *Emitter) detach(node ast.Expression) {
	if node == nil {
		return
	}
	e.assign(node, nil)
}

// assertRegistersFree panics (an internal-invariant violation) unless
// every register is free. Called between statements.
func (e *Emitter) assertRegistersFree(where string) {
	if !e.regs.AllFree() {
		panic(fmt.Sprintf("codegen: register file not empty at statement boundary (%s)", where))
	}
}

// spillSlot assigns node a fresh, size-aligned stack slot and returns its
// offset. Offsets grow downward from the current frame offset, and are
// always nonzero, 4-or-8-byte aligned, and within [-frame_size, -4]: a
// 4-byte value spilled into a frame with no parameters or locals gets
// -4(%rbp), above -SIZEOF_REG.
func (e *Emitter) spillSlot(node ast.Expression) int {
	size := node.Type().Size()
	align := size
	if align < 4 {
		align = 4
	}
	e.frameOffset -= size
	// Round the offset down (more negative) to the alignment boundary.
	if r := (-e.frameOffset) % align; r != 0 {
		e.frameOffset -= (align - r)
	}
	holder(node).SetOffset(e.frameOffset)
	return e.frameOffset
}

func align(n, to int) int { return platform.Align(n, to) }
