package codegen

import (
	"github.com/simplec/scc/pkg/ast"
	"github.com/simplec/scc/pkg/types"
)

// assign binds node and reg to each other, breaking whatever either side
// was previously bound to first. This is the ONLY place that writes a
// register's node field or a node's register field, which is what keeps
// the reg.node <-> node.reg back-reference consistent in both directions.
//
// Either argument may be nil: nil-nil is a no-op, node-nil detaches node,
// nil-reg frees reg's current occupant without placing anything new.
func (e *Emitter) assign(node ast.Expression, reg *Register) {
	if node == nil && reg == nil {
		return
	}
	if node != nil {
		if old := regOf(node); old != nil && old != reg {
			old.node = nil
		}
		holder(node).SetRegister(nil)
	}
	if reg != nil {
		if old := reg.node; old != nil && old != node {
			holder(old).SetRegister(nil)
		}
		reg.node = nil
	}
	if node != nil && reg != nil {
		reg.node = node
		holder(node).SetRegister(reg)
	}
}

// load ensures node ends up materialized in reg, spilling reg's current
// occupant to the stack first if necessary.
func (e *Emitter) load(node ast.Expression, reg *Register) {
	if reg.node == node {
		return
	}
	if occupant := reg.node; occupant != nil {
		off := e.spillSlot(occupant)
		e.emit("mov%s %s, %d(%%rbp)", types.Suffix(occupant.Type()), reg.Spelling(occupant.Type().Size()), off)
	}
	if node != nil {
		e.emit("mov%s %s, %s", types.Suffix(node.Type()), e.operand(node), reg.Spelling(node.Type().Size()))
	}
	e.assign(node, reg)
}

// getreg returns the first free register in the fixed allocation order.
// If none is free, it spills registers[0] (%rax) unconditionally and
// returns it, regardless of whether some other register would free up
// sooner.
func (e *Emitter) getreg() *Register {
	for _, r := range e.regs.order {
		if r.node == nil {
			return r
		}
	}
	victim := e.regs.order[0]
	e.load(nil, victim)
	return victim
}
