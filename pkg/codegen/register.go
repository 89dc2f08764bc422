package codegen

import "github.com/simplec/scc/pkg/ast"

// Register is one entry of the fixed general-purpose register table. It
// carries its three operand spellings and the AST node (if any) currently
// bound to it. reg.node == e iff e's register holder points back at reg;
// assign is the only place that writes either side of that pair.
type Register struct {
	name8, name4, name1 string
	node                ast.Expression
}

// Spelling returns this register's operand text (e.g. "%rax") for a value
// of the given byte size.
func (r *Register) Spelling(size int) string {
	switch size {
	case 1:
		return r.name1
	case 4:
		return r.name4
	case 8:
		return r.name8
	default:
		panic("codegen: register has no spelling for size")
	}
}

// Node returns the expression currently bound to this register, or nil.
func (r *Register) Node() ast.Expression { return r.node }

// RegisterFile is the usable general-purpose register set, in a fixed
// allocation order kept stable for reproducible output:
// rax, rdi, rsi, rdx, rcx, r8, r9, r10, r11.
type RegisterFile struct {
	RAX, RDI, RSI, RDX, RCX, R8, R9, R10, R11 *Register

	// order is the deterministic getreg() search order; order[0] is also
	// the unconditional spill victim on exhaustion (%rax).
	order []*Register

	// params are the NumParamRegs registers used to pass integer
	// arguments, in argument order: rdi, rsi, rdx, rcx, r8, r9 (order[1:7]).
	params []*Register
}

// NewRegisterFile builds the fixed register table.
func NewRegisterFile() *RegisterFile {
	rf := &RegisterFile{
		RAX: &Register{name8: "%rax", name4: "%eax", name1: "%al"},
		RDI: &Register{name8: "%rdi", name4: "%edi", name1: "%dil"},
		RSI: &Register{name8: "%rsi", name4: "%esi", name1: "%sil"},
		RDX: &Register{name8: "%rdx", name4: "%edx", name1: "%dl"},
		RCX: &Register{name8: "%rcx", name4: "%ecx", name1: "%cl"},
		R8:  &Register{name8: "%r8", name4: "%r8d", name1: "%r8b"},
		R9:  &Register{name8: "%r9", name4: "%r9d", name1: "%r9b"},
		R10: &Register{name8: "%r10", name4: "%r10d", name1: "%r10b"},
		R11: &Register{name8: "%r11", name4: "%r11d", name1: "%r11b"},
	}
	rf.order = []*Register{rf.RAX, rf.RDI, rf.RSI, rf.RDX, rf.RCX, rf.R8, rf.R9, rf.R10, rf.R11}
	rf.params = []*Register{rf.RDI, rf.RSI, rf.RDX, rf.RCX, rf.R8, rf.R9}
	return rf
}

// Param returns the i'th (0-based) parameter-passing register.
func (rf *RegisterFile) Param(i int) *Register { return rf.params[i] }

// AllFree reports whether every register in the file is unoccupied; used
// to assert that no register stays bound across a statement boundary.
func (rf *RegisterFile) AllFree() bool {
	for _, r := range rf.order {
		if r.node != nil {
			return false
		}
	}
	return true
}

// holder adapts an ast.Expression to the register/offset accessors its
// exprBase embeds, without codegen depending on ast's internals beyond the
// Holder interface.
func holder(e ast.Expression) ast.Holder {
	h, ok := e.(ast.Holder)
	if !ok {
		panic("codegen: expression does not implement ast.Holder")
	}
	return h
}

// regOf returns the *Register currently bound to e, or nil.
func regOf(e ast.Expression) *Register {
	if e == nil {
		return nil
	}
	r := holder(e).Register()
	if r == nil {
		return nil
	}
	return r.(*Register)
}
