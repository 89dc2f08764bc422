// Package parser is a small recursive-descent parser for Simple C: a
// pre-scanned token slice walked with peek/advance/expect, one parseX
// method per grammar rule. It produces an ast.Program with Symbols
// unresolved (Identifier.Symbol is nil, VarDecl still present) - semantic
// analysis does the resolving the code generator depends on.
package parser

import (
	"fmt"

	"github.com/simplec/scc/pkg/ast"
	"github.com/simplec/scc/pkg/lexer"
	"github.com/simplec/scc/pkg/token"
	"github.com/simplec/scc/pkg/types"
)

// Parser holds the full pre-scanned token stream for a translation unit.
type Parser struct {
	tokens []token.Token
	pos    int
}

// Parse scans and parses src into a Program.
func Parse(src string) (*ast.Program, error) {
	toks, err := scanAll(src)
	if err != nil {
		return nil, err
	}
	p := &Parser{tokens: toks}
	return p.parseProgram()
}

func scanAll(src string) ([]token.Token, error) {
	l := lexer.New(src)
	var toks []token.Token
	for {
		t, err := l.Next()
		if err != nil {
			return nil, err
		}
		toks = append(toks, t)
		if t.Kind == token.EOF {
			return toks, nil
		}
	}
}

func (p *Parser) peek() token.Token      { return p.tokens[p.pos] }
func (p *Parser) peekAt(n int) token.Token {
	i := p.pos + n
	if i >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[i]
}
func (p *Parser) advance() token.Token {
	t := p.tokens[p.pos]
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
	return t
}
func (p *Parser) at(k token.Kind) bool { return p.peek().Kind == k }

func (p *Parser) expect(k token.Kind, what string) (token.Token, error) {
	if !p.at(k) {
		return token.Token{}, fmt.Errorf("line %d: expected %s", p.peek().Pos.Line, what)
	}
	return p.advance(), nil
}

func isTypeStart(k token.Kind) bool {
	return k == token.KwInt || k == token.KwChar || k == token.KwVoid
}

// parseType parses a base type keyword followed by zero or more '*'.
func (p *Parser) parseType() (types.Type, error) {
	var base types.Type
	switch p.peek().Kind {
	case token.KwInt:
		base = types.IntType
	case token.KwChar:
		base = types.CharType
	case token.KwVoid:
		base = types.VoidType
	default:
		return nil, fmt.Errorf("line %d: expected a type", p.peek().Pos.Line)
	}
	p.advance()
	for p.at(token.Star) {
		p.advance()
		base = &types.Pointer{Elem: base}
	}
	return base, nil
}

func (p *Parser) parseProgram() (*ast.Program, error) {
	prog := &ast.Program{}
	for !p.at(token.EOF) {
		pos := p.peek().Pos
		typ, err := p.parseType()
		if err != nil {
			return nil, err
		}
		nameTok, err := p.expect(token.Ident, "an identifier")
		if err != nil {
			return nil, err
		}
		name := nameTok.Text

		if p.at(token.LParen) {
			fn, err := p.parseFunctionRest(pos, name, typ)
			if err != nil {
				return nil, err
			}
			prog.Functions = append(prog.Functions, fn)
			continue
		}

		// Global variable declaration(s): type name (',' name)* ';'.
		for {
			prog.Globals = append(prog.Globals, &ast.Global{Symbol: &ast.Symbol{Name: name, Type: typ, IsGlobal: true}})
			if !p.at(token.Comma) {
				break
			}
			p.advance()
			t, err := p.expect(token.Ident, "an identifier")
			if err != nil {
				return nil, err
			}
			name = t.Text
		}
		if _, err := p.expect(token.Semi, "';'"); err != nil {
			return nil, err
		}
	}
	return prog, nil
}

// parseFunctionRest parses from the '(' after a function's name/return
// type have already been consumed.
func (p *Parser) parseFunctionRest(pos ast.Position, name string, ret types.Type) (*ast.Function, error) {
	if _, err := p.expect(token.LParen, "'('"); err != nil {
		return nil, err
	}
	fn := ast.NewFunction(pos, name)
	fn.ReturnType = ret

	if !p.at(token.RParen) {
		for {
			ptyp, err := p.parseType()
			if err != nil {
				return nil, err
			}
			pname, err := p.expect(token.Ident, "a parameter name")
			if err != nil {
				return nil, err
			}
			fn.Params = append(fn.Params, &ast.Symbol{Name: pname.Text, Type: ptyp})
			if !p.at(token.Comma) {
				break
			}
			p.advance()
		}
	}
	if _, err := p.expect(token.RParen, "')'"); err != nil {
		return nil, err
	}

	if p.at(token.Semi) {
		p.advance() // bare declaration, e.g. `int printf(char *fmt);`
		return fn, nil
	}

	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	fn.Body = body
	return fn, nil
}

func (p *Parser) parseBlock() (*ast.Block, error) {
	lbrace, err := p.expect(token.LBrace, "'{'")
	if err != nil {
		return nil, err
	}
	block := ast.NewBlock(lbrace.Pos)
	for !p.at(token.RBrace) && !p.at(token.EOF) {
		s, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		block.Stmts = append(block.Stmts, s)
	}
	if _, err := p.expect(token.RBrace, "'}'"); err != nil {
		return nil, err
	}
	return block, nil
}

func (p *Parser) parseStatement() (ast.Statement, error) {
	switch p.peek().Kind {
	case token.LBrace:
		return p.parseBlock()
	case token.KwIf:
		return p.parseIf()
	case token.KwWhile:
		return p.parseWhile()
	case token.KwFor:
		return p.parseFor()
	case token.KwBreak:
		pos := p.advance().Pos
		if _, err := p.expect(token.Semi, "';'"); err != nil {
			return nil, err
		}
		return ast.NewBreak(pos), nil
	case token.KwReturn:
		return p.parseReturn()
	default:
		if isTypeStart(p.peek().Kind) {
			return p.parseVarDecl()
		}
		return p.parseExprStatement()
	}
}

func (p *Parser) parseIf() (ast.Statement, error) {
	pos := p.advance().Pos
	if _, err := p.expect(token.LParen, "'('"); err != nil {
		return nil, err
	}
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RParen, "')'"); err != nil {
		return nil, err
	}
	then, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	var els ast.Statement
	if p.at(token.KwElse) {
		p.advance()
		els, err = p.parseStatement()
		if err != nil {
			return nil, err
		}
	}
	return ast.NewIf(pos, cond, then, els), nil
}

func (p *Parser) parseWhile() (ast.Statement, error) {
	pos := p.advance().Pos
	if _, err := p.expect(token.LParen, "'('"); err != nil {
		return nil, err
	}
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RParen, "')'"); err != nil {
		return nil, err
	}
	body, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	return ast.NewWhile(pos, cond, body), nil
}

func (p *Parser) parseFor() (ast.Statement, error) {
	pos := p.advance().Pos
	if _, err := p.expect(token.LParen, "'('"); err != nil {
		return nil, err
	}

	var init ast.Statement
	var err error
	if !p.at(token.Semi) {
		if isTypeStart(p.peek().Kind) {
			init, err = p.parseVarDeclNoSemi()
		} else {
			e, e2 := p.parseExpr()
			if e2 != nil {
				return nil, e2
			}
			init = ast.NewSimple(e.Pos(), e)
		}
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(token.Semi, "';'"); err != nil {
		return nil, err
	}

	var cond ast.Expression
	if !p.at(token.Semi) {
		cond, err = p.parseExpr()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(token.Semi, "';'"); err != nil {
		return nil, err
	}

	var incr ast.Statement
	if !p.at(token.RParen) {
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		incr = ast.NewSimple(e.Pos(), e)
	}
	if _, err := p.expect(token.RParen, "')'"); err != nil {
		return nil, err
	}

	body, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	return ast.NewFor(pos, init, cond, incr, body), nil
}

func (p *Parser) parseReturn() (ast.Statement, error) {
	pos := p.advance().Pos
	var expr ast.Expression
	if !p.at(token.Semi) {
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		expr = e
	}
	if _, err := p.expect(token.Semi, "';'"); err != nil {
		return nil, err
	}
	return ast.NewReturn(pos, expr), nil
}

func (p *Parser) parseVarDecl() (ast.Statement, error) {
	decl, err := p.parseVarDeclNoSemi()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.Semi, "';'"); err != nil {
		return nil, err
	}
	return decl, nil
}

// parseVarDeclNoSemi parses `type name ('=' expr)? (',' name ('=' expr)?)*`
// without consuming the trailing ';'. Multiple declarators are collected
// into a DeclGroup holding one VarDecl per name, so a for-loop init clause with a
// single declarator still returns a single Statement.
func (p *Parser) parseVarDeclNoSemi() (ast.Statement, error) {
	pos := p.peek().Pos
	typ, err := p.parseType()
	if err != nil {
		return nil, err
	}

	first, err := p.parseOneDeclarator(pos, typ)
	if err != nil {
		return nil, err
	}
	if !p.at(token.Comma) {
		return first, nil
	}

	group := ast.NewDeclGroup(pos)
	group.Decls = append(group.Decls, first.(*ast.VarDecl))
	for p.at(token.Comma) {
		p.advance()
		d, err := p.parseOneDeclarator(p.peek().Pos, typ)
		if err != nil {
			return nil, err
		}
		group.Decls = append(group.Decls, d.(*ast.VarDecl))
	}
	return group, nil
}

func (p *Parser) parseOneDeclarator(pos ast.Position, typ types.Type) (ast.Statement, error) {
	nameTok, err := p.expect(token.Ident, "a variable name")
	if err != nil {
		return nil, err
	}
	var init ast.Expression
	if p.at(token.Assign) {
		p.advance()
		init, err = p.parseAssignment()
		if err != nil {
			return nil, err
		}
	}
	return ast.NewVarDecl(pos, nameTok.Text, typ, init), nil
}

func (p *Parser) parseExprStatement() (ast.Statement, error) {
	e, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.Semi, "';'"); err != nil {
		return nil, err
	}
	return ast.NewSimple(e.Pos(), e), nil
}

// --- Expressions, precedence climbing low to high ---

func (p *Parser) parseExpr() (ast.Expression, error) { return p.parseAssignment() }

func (p *Parser) parseAssignment() (ast.Expression, error) {
	lhs, err := p.parseLogicalOr()
	if err != nil {
		return nil, err
	}
	if p.at(token.Assign) {
		pos := p.advance().Pos
		rhs, err := p.parseAssignment()
		if err != nil {
			return nil, err
		}
		return ast.NewAssignment(pos, lhs, rhs), nil
	}
	return lhs, nil
}

func (p *Parser) parseLogicalOr() (ast.Expression, error) {
	left, err := p.parseLogicalAnd()
	if err != nil {
		return nil, err
	}
	for p.at(token.OrOr) {
		pos := p.advance().Pos
		right, err := p.parseLogicalAnd()
		if err != nil {
			return nil, err
		}
		left = ast.NewBinary(pos, ast.LogOr, left, right)
	}
	return left, nil
}

func (p *Parser) parseLogicalAnd() (ast.Expression, error) {
	left, err := p.parseEquality()
	if err != nil {
		return nil, err
	}
	for p.at(token.AndAnd) {
		pos := p.advance().Pos
		right, err := p.parseEquality()
		if err != nil {
			return nil, err
		}
		left = ast.NewBinary(pos, ast.LogAnd, left, right)
	}
	return left, nil
}

func (p *Parser) parseEquality() (ast.Expression, error) {
	left, err := p.parseRelational()
	if err != nil {
		return nil, err
	}
	for p.at(token.EqEq) || p.at(token.NotEq) {
		op := ast.Eq
		if p.peek().Kind == token.NotEq {
			op = ast.Ne
		}
		pos := p.advance().Pos
		right, err := p.parseRelational()
		if err != nil {
			return nil, err
		}
		left = ast.NewBinary(pos, op, left, right)
	}
	return left, nil
}

func (p *Parser) parseRelational() (ast.Expression, error) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	for {
		var op ast.BinaryOp
		switch p.peek().Kind {
		case token.Lt:
			op = ast.Lt
		case token.Gt:
			op = ast.Gt
		case token.Le:
			op = ast.Le
		case token.Ge:
			op = ast.Ge
		default:
			return left, nil
		}
		pos := p.advance().Pos
		right, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		left = ast.NewBinary(pos, op, left, right)
	}
}

func (p *Parser) parseAdditive() (ast.Expression, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	for p.at(token.Plus) || p.at(token.Minus) {
		op := ast.Add
		if p.peek().Kind == token.Minus {
			op = ast.Sub
		}
		pos := p.advance().Pos
		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		left = ast.NewBinary(pos, op, left, right)
	}
	return left, nil
}

func (p *Parser) parseTerm() (ast.Expression, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		var op ast.BinaryOp
		switch p.peek().Kind {
		case token.Star:
			op = ast.Mul
		case token.Slash:
			op = ast.Div
		case token.Percent:
			op = ast.Mod
		default:
			return left, nil
		}
		pos := p.advance().Pos
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = ast.NewBinary(pos, op, left, right)
	}
}

func (p *Parser) parseUnary() (ast.Expression, error) {
	switch p.peek().Kind {
	case token.Minus:
		pos := p.advance().Pos
		e, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return ast.NewUnary(pos, ast.Neg, e), nil
	case token.Bang:
		pos := p.advance().Pos
		e, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return ast.NewUnary(pos, ast.Not, e), nil
	case token.Amp:
		pos := p.advance().Pos
		e, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return ast.NewUnary(pos, ast.AddrOf, e), nil
	case token.Star:
		pos := p.advance().Pos
		e, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return ast.NewUnary(pos, ast.Deref, e), nil
	case token.LParen:
		if isTypeStart(p.peekAt(1).Kind) {
			pos := p.advance().Pos
			typ, err := p.parseType()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(token.RParen, "')'"); err != nil {
				return nil, err
			}
			e, err := p.parseUnary()
			if err != nil {
				return nil, err
			}
			return ast.NewCast(pos, typ, e), nil
		}
	}
	return p.parsePrimary()
}

func (p *Parser) parsePrimary() (ast.Expression, error) {
	t := p.peek()
	switch t.Kind {
	case token.Number:
		p.advance()
		return ast.NewNumber(t.Pos, t.IntVal), nil
	case token.String:
		p.advance()
		return ast.NewString(t.Pos, t.StrVal), nil
	case token.Ident:
		p.advance()
		if p.at(token.LParen) {
			return p.parseCallRest(t.Pos, t.Text)
		}
		return ast.NewIdentifier(t.Pos, t.Text), nil
	case token.LParen:
		p.advance()
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RParen, "')'"); err != nil {
			return nil, err
		}
		return e, nil
	default:
		return nil, fmt.Errorf("line %d: unexpected token in expression", t.Pos.Line)
	}
}

func (p *Parser) parseCallRest(pos ast.Position, callee string) (ast.Expression, error) {
	p.advance() // '('
	var args []ast.Expression
	if !p.at(token.RParen) {
		for {
			a, err := p.parseAssignment()
			if err != nil {
				return nil, err
			}
			args = append(args, a)
			if !p.at(token.Comma) {
				break
			}
			p.advance()
		}
	}
	if _, err := p.expect(token.RParen, "')'"); err != nil {
		return nil, err
	}
	return ast.NewCall(pos, callee, args), nil
}
