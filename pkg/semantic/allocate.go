package semantic

import (
	"github.com/simplec/scc/pkg/ast"
	"github.com/simplec/scc/pkg/platform"
	"github.com/simplec/scc/pkg/types"
)

// Allocate assigns stack offsets to every parameter and local:
// it assigns a negative, size-aligned stack offset to every register-passed
// parameter and every local of fn, in declaration order, and records the
// lowest address used on fn.FrameOffset so the code generator knows where
// to start spilling from. Parameters and locals share one descending
// address space starting immediately below the saved %rbp, at 0(%rbp).
//
// A parameter beyond platform.NumParamRegs never arrives in a register -
// the caller already pushed it above the return address - so it gets a
// positive offset at that caller-assigned slot instead (16(%rbp), 24(%rbp),
// ... in argument order) and takes no space in the descending frame.
func Allocate(fn *ast.Function) {
	offset := 0

	place := func(sym *ast.Symbol) {
		offset -= sym.Type.Size()
		offset = alignDown(offset, slotAlignment(sym.Type))
		sym.Offset = offset
	}

	for i, p := range fn.Params {
		if i >= platform.NumParamRegs {
			p.Offset = 2*platform.SizeofReg + (i-platform.NumParamRegs)*platform.ParamAlignment
			continue
		}
		place(p)
	}
	for _, l := range fn.Locals {
		place(l)
	}

	fn.FrameOffset = offset
}

// slotAlignment matches the code generator's own spill-slot alignment
// rule (generator.go's spillSlot): 8-byte values get 8-byte slots,
// everything else gets a 4-byte slot.
func slotAlignment(t types.Type) int {
	if t.Size() == 8 {
		return 8
	}
	return 4
}

// alignDown rounds a negative offset further from zero so it is a
// multiple of align.
func alignDown(offset, align int) int {
	if r := (-offset) % align; r != 0 {
		offset -= align - r
	}
	return offset
}
