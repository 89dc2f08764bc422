package semantic

import "fmt"

// PositionedError follows the "line N: message" convention used
// throughout the compiler for upstream phases.
type PositionedError struct {
	Line    int
	Message string
}

func (e *PositionedError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Message)
}
