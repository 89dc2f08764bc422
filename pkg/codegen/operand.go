package codegen

import (
	"fmt"

	"github.com/simplec/scc/pkg/ast"
	"github.com/simplec/scc/pkg/platform"
)

// operand renders e as it should appear as a source/destination operand in
// an instruction: a register if e currently holds one, otherwise a
// kind-specific spelling (immediate, global, stack slot, or string label).
func (e *Emitter) operand(expr ast.Expression) string {
	if r := regOf(expr); r != nil {
		return r.Spelling(expr.Type().Size())
	}

	switch n := expr.(type) {
	case *ast.Number:
		return fmt.Sprintf("$%d", n.Value)

	case *ast.Identifier:
		if n.Symbol.Offset == 0 {
			return platform.Symbol(n.Symbol.Name)
		}
		return fmt.Sprintf("%d(%%rbp)", n.Symbol.Offset)

	case *ast.String:
		label := e.pool.intern(n.Value)
		return "$" + label

	default:
		off := holder(expr).Offset()
		if off == 0 {
			panic("codegen: operand requested for unspilled, unregistered, non-addressable expression")
		}
		return fmt.Sprintf("%d(%%rbp)", off)
	}
}
