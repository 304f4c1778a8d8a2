// Copyright (c) 2024 The Falcon Contributors
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program. If not, see <http://www.gnu.org/licenses/>.
package parse

import (
	"strconv"

	"nanoc/lex"
	"nanoc/utils"
)

// opInfo is one row of the precedence table: higher Prec binds tighter.
type opInfo struct {
	prec       int
	rightAssoc bool
	binOp      BinaryOp
	isAssign   bool
}

var precedenceTable = map[lex.Kind]opInfo{
	lex.Asterisk:      {prec: 50, binOp: Mul},
	lex.Slash:         {prec: 50, binOp: Div},
	lex.Percent:       {prec: 50, binOp: Rem},
	lex.Plus:          {prec: 45, binOp: Add},
	lex.Hyphen:        {prec: 45, binOp: Sub},
	lex.Less:          {prec: 35, binOp: Lt},
	lex.LessEqual:     {prec: 35, binOp: Le},
	lex.Greater:       {prec: 35, binOp: Gt},
	lex.GreaterEqual:  {prec: 35, binOp: Ge},
	lex.TwoEqualSigns: {prec: 30, binOp: Eq},
	lex.ExclaimEqual:  {prec: 30, binOp: Ne},
	lex.TwoAmpersands: {prec: 10, binOp: And},
	lex.TwoPipes:      {prec: 5, binOp: Or},
	lex.Equal:         {prec: 1, rightAssoc: true, isAssign: true},
}

// Parser is a one-token-lookahead recursive-descent parser with a
// precedence-climbing expression layer.
type Parser struct {
	lexer *lex.Lexer
}

func NewParser(lexer *lex.Lexer) *Parser {
	return &Parser{lexer: lexer}
}

// Parse builds a Program. Parse consumes the whole token stream: trailing
// garbage after the function is a syntax error.
func Parse(src string) (*Program, error) {
	p := NewParser(lex.New(src))
	prog, err := p.parseProgram()
	if err != nil {
		return nil, err
	}
	if _, ok, err := p.lexer.Peek(); err != nil {
		return nil, err
	} else if ok {
		tok, _, _ := p.lexer.Peek()
		return nil, utils.NewBadSyntaxError("end of input", tok.String())
	}
	return prog, nil
}

func (p *Parser) parseProgram() (*Program, error) {
	fn, err := p.parseFunction()
	if err != nil {
		return nil, err
	}
	return &Program{Function: fn}, nil
}

func (p *Parser) parseFunction() (*Function, error) {
	if err := p.expectKeyword("int"); err != nil {
		return nil, err
	}
	name, err := p.expectIdentifier()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lex.LParen); err != nil {
		return nil, err
	}
	if err := p.expectKeyword("void"); err != nil {
		return nil, err
	}
	if _, err := p.expect(lex.RParen); err != nil {
		return nil, err
	}
	if _, err := p.expect(lex.LBrace); err != nil {
		return nil, err
	}

	var body []BlockItem
	for {
		tok, ok, err := p.lexer.Peek()
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, utils.NewBadSyntaxError("}", "end of input")
		}
		if tok.Kind == lex.RBrace {
			break
		}
		item, err := p.parseBlockItem()
		if err != nil {
			return nil, err
		}
		body = append(body, item)
	}
	if _, err := p.expect(lex.RBrace); err != nil {
		return nil, err
	}
	return &Function{Name: name, Body: body}, nil
}

func (p *Parser) parseBlockItem() (BlockItem, error) {
	tok, ok, err := p.lexer.Peek()
	if err != nil {
		return nil, err
	}
	if ok && tok.Kind == lex.Keyword && tok.Lexeme == "int" {
		return p.parseDeclaration()
	}
	return p.parseStatement()
}

func (p *Parser) parseDeclaration() (*Declaration, error) {
	if err := p.expectKeyword("int"); err != nil {
		return nil, err
	}
	name, err := p.expectIdentifier()
	if err != nil {
		return nil, err
	}
	var init Expr
	if tok, ok, err := p.lexer.Peek(); err != nil {
		return nil, err
	} else if ok && tok.Kind == lex.Equal {
		p.lexer.Next()
		init, err = p.parseExpr(0)
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(lex.Semicolon); err != nil {
		return nil, err
	}
	return &Declaration{Name: name, Init: init}, nil
}

func (p *Parser) parseStatement() (Stmt, error) {
	tok, ok, err := p.lexer.Peek()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, utils.NewBadSyntaxError("statement", "end of input")
	}

	if tok.Kind == lex.Semicolon {
		p.lexer.Next()
		return &NullStmt{}, nil
	}

	if tok.Kind == lex.Keyword && tok.Lexeme == "return" {
		p.lexer.Next()
		exp, err := p.parseExpr(0)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lex.Semicolon); err != nil {
			return nil, err
		}
		return &ReturnStmt{Exp: exp}, nil
	}

	exp, err := p.parseExpr(0)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lex.Semicolon); err != nil {
		return nil, err
	}
	return &ExprStmt{Exp: exp}, nil
}

// parseExpr implements exp(min_prec): parse a factor, then repeatedly fold
// in operators whose precedence is >= minPrec. Left-associative operators
// recurse with prec+1; `=`, the only right-associative operator, recurses
// with prec unchanged.
func (p *Parser) parseExpr(minPrec int) (Expr, error) {
	left, err := p.parseFactor()
	if err != nil {
		return nil, err
	}

	for {
		tok, ok, err := p.lexer.Peek()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		info, isOp := precedenceTable[tok.Kind]
		if !isOp || info.prec < minPrec {
			break
		}
		p.lexer.Next()

		nextMin := info.prec + 1
		if info.rightAssoc {
			nextMin = info.prec
		}
		right, err := p.parseExpr(nextMin)
		if err != nil {
			return nil, err
		}

		if info.isAssign {
			left = &Assignment{Left: left, Right: right}
		} else {
			left = &Binary{Op: info.binOp, Left: left, Right: right}
		}
	}
	return left, nil
}

// parseFactor parses int | ident | unop factor | "(" exp ")". Unary `-`
// is disambiguated from binary `-` purely positionally: parseFactor is
// only ever called where a factor is expected, so a leading `-` here can
// only be unary; the precedence-climbing loop in parseExpr is the only
// place `-` is ever consumed as a binary operator.
func (p *Parser) parseFactor() (Expr, error) {
	tok, ok, err := p.lexer.Peek()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, utils.NewBadSyntaxError("expression", "end of input")
	}

	switch tok.Kind {
	case lex.Constant:
		p.lexer.Next()
		v, err := strconv.Atoi(tok.Lexeme)
		if err != nil {
			return nil, utils.NewInternalError("constant lexeme %q is not an integer", tok.Lexeme)
		}
		return &Constant{Value: v}, nil

	case lex.Identifier:
		p.lexer.Next()
		return &Var{Name: tok.Lexeme}, nil

	case lex.Hyphen:
		p.lexer.Next()
		operand, err := p.parseFactor()
		if err != nil {
			return nil, err
		}
		return &Unary{Op: Negate, Operand: operand}, nil

	case lex.Tilde:
		p.lexer.Next()
		operand, err := p.parseFactor()
		if err != nil {
			return nil, err
		}
		return &Unary{Op: Complement, Operand: operand}, nil

	case lex.Exclaim:
		p.lexer.Next()
		operand, err := p.parseFactor()
		if err != nil {
			return nil, err
		}
		return &Unary{Op: Not, Operand: operand}, nil

	case lex.LParen:
		p.lexer.Next()
		exp, err := p.parseExpr(0)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lex.RParen); err != nil {
			return nil, err
		}
		return exp, nil

	default:
		return nil, utils.NewBadSyntaxError("expression", tok.String())
	}
}

func (p *Parser) expect(kind lex.Kind) (lex.Token, error) {
	tok, ok, err := p.lexer.Next()
	if err != nil {
		return lex.Token{}, err
	}
	if !ok {
		return lex.Token{}, utils.NewBadSyntaxError(kind.String(), "end of input")
	}
	if tok.Kind != kind {
		return lex.Token{}, utils.NewBadSyntaxError(kind.String(), tok.String())
	}
	return tok, nil
}

func (p *Parser) expectKeyword(kw string) error {
	tok, ok, err := p.lexer.Next()
	if err != nil {
		return err
	}
	if !ok {
		return utils.NewBadSyntaxError(kw, "end of input")
	}
	if tok.Kind != lex.Keyword || tok.Lexeme != kw {
		return utils.NewBadSyntaxError(kw, tok.String())
	}
	return nil
}

func (p *Parser) expectIdentifier() (string, error) {
	tok, err := p.expect(lex.Identifier)
	if err != nil {
		return "", err
	}
	return tok.Lexeme, nil
}
