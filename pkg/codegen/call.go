package codegen

import (
	"github.com/simplec/scc/pkg/ast"
	"github.com/simplec/scc/pkg/platform"
)

// generateCall lowers a function call per the System V AMD64 calling
// convention: arguments are evaluated and placed right-to-left so that
// earlier arguments may still hold registers while later ones are
// materialized, every caller-saved register still alive is spilled before
// the call, and the result comes back in %rax.
func (e *Emitter) generateCall(n *ast.Call) {
	args := n.Args

	for i := len(args) - 1; i >= 0; i-- {
		e.generate(args[i])
	}

	numBytes := 0
	if len(args) > platform.NumParamRegs {
		// Pad only by what the pushes below leave short of StackAlignment,
		// so %rsp is aligned again at the call instruction.
		stackBytes := (len(args) - platform.NumParamRegs) * platform.ParamAlignment
		numBytes = platform.Align(stackBytes, platform.StackAlignment) - stackBytes
		if numBytes != 0 {
			e.emit("subq $%d, %%rsp", numBytes)
		}
	}

	for i := len(args) - 1; i >= 0; i-- {
		arg := args[i]
		if i >= platform.NumParamRegs {
			e.load(arg, e.regs.RAX)
			if arg.Type().Size() == 1 {
				e.emit("movsbl %s, %s", e.regs.RAX.Spelling(1), e.regs.RAX.Spelling(4))
			}
			e.emit("pushq %%rax")
			numBytes += platform.SizeofReg
			e.detach(arg)
			continue
		}

		preg := e.regs.Param(i)
		e.load(arg, preg)
		if arg.Type().Size() == 1 {
			// Not required by System V, but real compilers widen byte
			// arguments into their 32-bit parameter register; matched
			// here for parity.
			e.emit("movsbl %s, %s", preg.Spelling(1), preg.Spelling(4))
		}
		e.detach(arg)
	}

	// Evict every caller-saved register still alive across the call.
	for _, r := range e.regs.order {
		if r.node != nil {
			e.load(nil, r)
		}
	}

	if n.Variadic {
		e.emit("movl $0, %%eax")
	}

	e.emit("call %s", platform.Symbol(n.Callee))

	if numBytes > 0 {
		e.emit("addq $%d, %%rsp", numBytes)
	}

	e.assign(n, e.regs.RAX)
}
