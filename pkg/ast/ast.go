// Package ast defines the Simple C abstract syntax tree the code generator
// consumes. Every expression node carries the mutable register/offset pair
// the allocator reads and writes; every statement node is a plain AST
// shape with no emitter-visible state of its own.
package ast

import "github.com/simplec/scc/pkg/types"

// Position is a source location, carried through from the lexer so
// semantic errors can report "line N: message".
type Position struct {
	Line   int
	Column int
}

// Node is the base interface for every AST node.
type Node interface {
	Pos() Position
}

// Statement is any node usable directly inside a Block.
type Statement interface {
	Node
	stmtNode()
}

// Expression is any node with a value, a type, and - once resolved - a
// register or stack slot.
type Expression interface {
	Node
	exprNode()

	// Type returns the resolved type; set by the semantic analyzer.
	Type() types.Type
	SetType(types.Type)
}

// exprBase is embedded by every expression node. It carries the
// register/offset state the code generator mutates. register holds an
// opaque value (the codegen package's *Register) so this package has no
// dependency on codegen; codegen type-asserts it back.
type exprBase struct {
	pos    Position
	typ    types.Type
	reg    interface{} // *codegen.Register, or nil
	offset int         // nonzero once spilled
}

func (e *exprBase) Pos() Position       { return e.pos }
func (e *exprBase) Type() types.Type    { return e.typ }
func (e *exprBase) SetType(t types.Type) { e.typ = t }
func (e *exprBase) exprNode()           {}

// Register returns the codegen register currently bound to this node, or
// nil if the node is not currently materialized in a register.
func (e *exprBase) Register() interface{} { return e.reg }
func (e *exprBase) SetRegister(r interface{}) { e.reg = r }

// Offset returns the node's spill-slot offset (0 if never spilled).
func (e *exprBase) Offset() int      { return e.offset }
func (e *exprBase) SetOffset(o int)  { e.offset = o }

// Holder is implemented by exprBase and lets codegen read/write the
// register and offset fields without this package importing codegen.
type Holder interface {
	Register() interface{}
	SetRegister(interface{})
	Offset() int
	SetOffset(int)
}

// Symbol is a resolved name: a variable, parameter, or function. Offset 0
// denotes a global; nonzero denotes offset(%rbp).
type Symbol struct {
	Name     string
	Type     types.Type
	Offset   int
	IsGlobal bool
}

// Identifier references a resolved Symbol.
type Identifier struct {
	exprBase
	Name   string
	Symbol *Symbol
}

func NewIdentifier(pos Position, name string) *Identifier {
	return &Identifier{exprBase: exprBase{pos: pos}, Name: name}
}

// Number is a decimal (or char) integer literal.
type Number struct {
	exprBase
	Value int64
}

func NewNumber(pos Position, value int64) *Number {
	return &Number{exprBase: exprBase{pos: pos}, Value: value}
}

// String is a decoded string-literal payload (escapes already resolved).
type String struct {
	exprBase
	Value string
}

func NewString(pos Position, value string) *String {
	return &String{exprBase: exprBase{pos: pos}, Value: value}
}

// BinaryOp enumerates binary operators.
type BinaryOp int

const (
	Add BinaryOp = iota
	Sub
	Mul
	Div
	Mod
	Lt
	Gt
	Le
	Ge
	Eq
	Ne
	LogAnd
	LogOr
)

// Binary is a two-operand expression (arithmetic, relational, logical).
type Binary struct {
	exprBase
	Op          BinaryOp
	Left, Right Expression
}

func NewBinary(pos Position, op BinaryOp, left, right Expression) *Binary {
	return &Binary{exprBase: exprBase{pos: pos}, Op: op, Left: left, Right: right}
}

// UnaryOp enumerates unary operators.
type UnaryOp int

const (
	Neg UnaryOp = iota
	Not
	AddrOf
	Deref
)

// Unary is a single-operand expression.
type Unary struct {
	exprBase
	Op   UnaryOp
	Expr Expression
}

func NewUnary(pos Position, op UnaryOp, expr Expression) *Unary {
	return &Unary{exprBase: exprBase{pos: pos}, Op: op, Expr: expr}
}

// Assignment is `lhs = rhs`; lhs is either an Identifier or a Unary Deref.
type Assignment struct {
	exprBase
	LHS, RHS Expression
}

func NewAssignment(pos Position, lhs, rhs Expression) *Assignment {
	return &Assignment{exprBase: exprBase{pos: pos}, LHS: lhs, RHS: rhs}
}

// Cast converts Expr to To.
type Cast struct {
	exprBase
	To   types.Type
	Expr Expression
}

func NewCast(pos Position, to types.Type, expr Expression) *Cast {
	return &Cast{exprBase: exprBase{pos: pos, typ: to}, To: to, Expr: expr}
}

// Call is a function call by name.
type Call struct {
	exprBase
	Callee   string
	Args     []Expression
	Variadic bool // true if the callee's declared signature is variadic
}

func NewCall(pos Position, callee string, args []Expression) *Call {
	return &Call{exprBase: exprBase{pos: pos}, Callee: callee, Args: args}
}

// --- Statements ---

type stmtBase struct{ pos Position }

func (s *stmtBase) Pos() Position { return s.pos }
func (s *stmtBase) stmtNode()     {}

// Simple is an expression statement.
type Simple struct {
	stmtBase
	Expr Expression
}

func NewSimple(pos Position, expr Expression) *Simple {
	return &Simple{stmtBase: stmtBase{pos: pos}, Expr: expr}
}

// Block is a sequence of statements forming a new local scope.
type Block struct {
	stmtBase
	Stmts []Statement
	// Locals is not filled in by semantic analysis, which records every
	// local on the enclosing Function.Locals instead.
	Locals []*Symbol
}

func NewBlock(pos Position) *Block {
	return &Block{stmtBase: stmtBase{pos: pos}}
}

// If is `if (Cond) Then [else Else]`.
type If struct {
	stmtBase
	Cond       Expression
	Then, Else Statement
}

func NewIf(pos Position, cond Expression, then, els Statement) *If {
	return &If{stmtBase: stmtBase{pos: pos}, Cond: cond, Then: then, Else: els}
}

// While is `while (Cond) Body`.
type While struct {
	stmtBase
	Cond Expression
	Body Statement
}

func NewWhile(pos Position, cond Expression, body Statement) *While {
	return &While{stmtBase: stmtBase{pos: pos}, Cond: cond, Body: body}
}

// For is `for (Init; Cond; Incr) Body`. Any of Init/Cond/Incr may be nil.
type For struct {
	stmtBase
	Init       Statement
	Cond       Expression
	Incr       Statement
	Body       Statement
}

func NewFor(pos Position, init Statement, cond Expression, incr Statement, body Statement) *For {
	return &For{stmtBase: stmtBase{pos: pos}, Init: init, Cond: cond, Incr: incr, Body: body}
}

// Break is `break;`.
type Break struct{ stmtBase }

func NewBreak(pos Position) *Break { return &Break{stmtBase{pos: pos}} }

// Return is `return [Expr];`.
type Return struct {
	stmtBase
	Expr Expression // nil for `return;` in a void function
}

func NewReturn(pos Position, expr Expression) *Return {
	return &Return{stmtBase: stmtBase{pos: pos}, Expr: expr}
}

// Function is a function definition with its body, or a bare declaration
// (Body == nil) for an external symbol such as printf.
type Function struct {
	stmtBase
	Name       string
	Params     []*Symbol
	ReturnType types.Type
	Body       *Block
	Variadic   bool
	Locals     []*Symbol // all locals across nested blocks, in declaration order

	// FrameOffset is the lowest stack address assigned to any
	// parameter or local by semantic.Allocate; the code generator starts
	// spilling further locals from here downward.
	FrameOffset int
}

func NewFunction(pos Position, name string) *Function {
	return &Function{stmtBase: stmtBase{pos: pos}, Name: name}
}

func (f *Function) declNode() {}

// VarDecl is a local variable declaration as the parser sees it, before
// semantic analysis resolves it into a Symbol (added to the enclosing
// Function's Locals) and lowers any initializer into a Simple assignment
// statement in its place. The code generator never sees a VarDecl.
type VarDecl struct {
	stmtBase
	Name string
	Type types.Type
	Init Expression // nil if uninitialized
}

func NewVarDecl(pos Position, name string, typ types.Type, init Expression) *VarDecl {
	return &VarDecl{stmtBase: stmtBase{pos: pos}, Name: name, Type: typ, Init: init}
}

// DeclGroup holds multiple declarators sharing one base type, e.g.
// `int a = 1, b, c = 3;`. Like VarDecl, semantic analysis consumes and
// removes it before codegen ever sees the tree.
type DeclGroup struct {
	stmtBase
	Decls []*VarDecl
}

func NewDeclGroup(pos Position) *DeclGroup {
	return &DeclGroup{stmtBase: stmtBase{pos: pos}}
}

// Global is a file-scope variable declaration.
type Global struct {
	stmtBase
	Symbol *Symbol
}

// Program is the whole translation unit.
type Program struct {
	Functions []*Function
	Globals   []*Global
}
