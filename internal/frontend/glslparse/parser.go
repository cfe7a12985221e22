// Package glslparse hand-parses the GLSL-subset source language into
// internal/frontend/ast (spec.md §4.1): a small recursive-descent
// parser with Pratt-style binary expression climbing, grounded on
// kanso-lang-kanso's internal/parser (its match/check/consume/peek
// token-stream idiom and parsePrattExpr precedence table), not on the
// participle-tagged grammar internal/ir and internal/backend/vcode
// use — this surface grammar is irregular enough (C-style operator
// precedence, statement/expression ambiguity) that direct scanning
// reads more plainly than grammar tags.
package glslparse

import (
	"fmt"
	"strconv"
	"strings"

	"lpc/internal/frontend/ast"
)

// ParseError reports one recovery point reached while parsing.
type ParseError struct {
	Message  string
	Position Position
}

func (e ParseError) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Position.Line, e.Position.Column, e.Message)
}

// Parser walks a token stream built by Lexer, in the teacher's
// hand-rolled recursive-descent style.
type Parser struct {
	tokens  []Token
	current int
	errors  []ParseError
}

// Parse lexes and parses src, returning every syntax error recorded,
// joined into one error. A failed expectation records an error and
// parsing continues from the same token; there is no resynchronization
// step.
func Parse(src string) (*ast.Program, error) {
	p := &Parser{tokens: NewLexer(src).Tokenize()}
	prog := p.parseProgram()
	if len(p.errors) > 0 {
		msgs := make([]string, len(p.errors))
		for i, e := range p.errors {
			msgs[i] = e.Error()
		}
		return nil, fmt.Errorf("glslparse: %s", strings.Join(msgs, "; "))
	}
	return prog, nil
}

func (p *Parser) parseProgram() *ast.Program {
	prog := &ast.Program{}
	for !p.isAtEnd() {
		prog.Functions = append(prog.Functions, p.parseFunction())
	}
	return prog
}

func (p *Parser) parseFunction() *ast.FunctionDecl {
	p.consume(FUNC, "expected 'func'")
	name := p.consume(IDENT, "expected function name")
	p.consume(LPAREN, "expected '(' after function name")

	fn := &ast.FunctionDecl{Name: name.Lexeme}
	for !p.check(RPAREN) && !p.isAtEnd() {
		pname := p.consume(IDENT, "expected parameter name")
		ptype := p.parseType()
		fn.Params = append(fn.Params, ast.Param{Name: pname.Lexeme, Type: ptype})
		if !p.match(COMMA) {
			break
		}
	}
	p.consume(RPAREN, "expected ')' after parameters")

	if p.match(ARROW) {
		fn.ReturnType = p.parseType()
		fn.HasReturn = true
	}

	fn.Body = p.parseBlock()
	return fn
}

func (p *Parser) parseType() ast.Type {
	switch {
	case p.match(INT_TYPE):
		return ast.TypeInt
	case p.match(UINT_TYPE):
		return ast.TypeUint
	case p.match(FLOAT_TYPE):
		return ast.TypeFloat
	case p.match(BOOL_TYPE):
		return ast.TypeBool
	default:
		p.errorAtCurrent("expected a type")
		p.advance()
		return ast.TypeInt
	}
}

func (p *Parser) parseBlock() []ast.Stmt {
	p.consume(LBRACE, "expected '{'")
	var stmts []ast.Stmt
	for !p.check(RBRACE) && !p.isAtEnd() {
		stmts = append(stmts, p.parseStmt())
	}
	p.consume(RBRACE, "expected '}'")
	return stmts
}

func (p *Parser) parseStmt() ast.Stmt {
	switch {
	case p.match(VAR):
		return p.parseVarDecl()
	case p.match(IF):
		return p.parseIf()
	case p.match(WHILE):
		return p.parseWhile()
	case p.match(RETURN):
		return p.parseReturn()
	case p.match(BREAK):
		p.consume(SEMICOLON, "expected ';' after 'break'")
		return &ast.BreakStmt{}
	case p.match(CONTINUE):
		p.consume(SEMICOLON, "expected ';' after 'continue'")
		return &ast.ContinueStmt{}
	default:
		return p.parseExprOrAssignStmt()
	}
}

func (p *Parser) parseVarDecl() ast.Stmt {
	name := p.consume(IDENT, "expected variable name")
	ty := p.parseType()
	var init ast.Expr
	if p.match(ASSIGN) {
		init = p.parseExpr()
	}
	p.consume(SEMICOLON, "expected ';' after variable declaration")
	return &ast.VarDecl{Name: name.Lexeme, Type: ty, Init: init}
}

func (p *Parser) parseIf() ast.Stmt {
	p.consume(LPAREN, "expected '(' after 'if'")
	cond := p.parseExpr()
	p.consume(RPAREN, "expected ')' after condition")
	then := p.parseBlock()
	var els []ast.Stmt
	if p.match(ELSE) {
		if p.check(IF) {
			p.advance()
			els = []ast.Stmt{p.parseIfTail()}
		} else {
			els = p.parseBlock()
		}
	}
	return &ast.IfStmt{Cond: cond, Then: then, Else: els}
}

// parseIfTail parses the "if (...) {...} [else ...]" that follows an
// already-consumed "else" keyword, for else-if chains.
func (p *Parser) parseIfTail() ast.Stmt {
	p.consume(LPAREN, "expected '(' after 'if'")
	cond := p.parseExpr()
	p.consume(RPAREN, "expected ')' after condition")
	then := p.parseBlock()
	var els []ast.Stmt
	if p.match(ELSE) {
		if p.check(IF) {
			p.advance()
			els = []ast.Stmt{p.parseIfTail()}
		} else {
			els = p.parseBlock()
		}
	}
	return &ast.IfStmt{Cond: cond, Then: then, Else: els}
}

func (p *Parser) parseWhile() ast.Stmt {
	p.consume(LPAREN, "expected '(' after 'while'")
	cond := p.parseExpr()
	p.consume(RPAREN, "expected ')' after condition")
	body := p.parseBlock()
	return &ast.WhileStmt{Cond: cond, Body: body}
}

func (p *Parser) parseReturn() ast.Stmt {
	if p.match(SEMICOLON) {
		return &ast.ReturnStmt{Void: true}
	}
	expr := p.parseExpr()
	p.consume(SEMICOLON, "expected ';' after return value")
	return &ast.ReturnStmt{Expr: expr}
}

func (p *Parser) parseExprOrAssignStmt() ast.Stmt {
	if p.check(IDENT) && p.checkNext(ASSIGN) {
		name := p.advance()
		p.advance() // '='
		expr := p.parseExpr()
		p.consume(SEMICOLON, "expected ';' after assignment")
		return &ast.AssignStmt{Name: name.Lexeme, Expr: expr}
	}
	expr := p.parseExpr()
	p.consume(SEMICOLON, "expected ';' after expression")
	return &ast.ExprStmt{Expr: expr}
}

// binaryPrecedence mirrors kanso's parser_pratt.go table.
var binaryPrecedence = map[TokenType]int{
	OR:  1,
	AND: 2,
	EQ:  3, NEQ: 3,
	LT: 4, LE: 4, GT: 4, GE: 4,
	PLUS: 5, MINUS: 5,
	STAR: 6, SLASH: 6, PERCENT: 6,
}

var tokenToOp = map[TokenType]ast.BinOp{
	OR: ast.OpOr, AND: ast.OpAnd,
	EQ: ast.OpEq, NEQ: ast.OpNeq,
	LT: ast.OpLt, LE: ast.OpLe, GT: ast.OpGt, GE: ast.OpGe,
	PLUS: ast.OpAdd, MINUS: ast.OpSub,
	STAR: ast.OpMul, SLASH: ast.OpDiv, PERCENT: ast.OpMod,
}

func (p *Parser) parseExpr() ast.Expr { return p.parsePrattExpr(0) }

func (p *Parser) parsePrattExpr(minPrec int) ast.Expr {
	left := p.parseUnary()
	for {
		tok := p.peek()
		prec, ok := binaryPrecedence[tok.Type]
		if !ok || prec < minPrec {
			return left
		}
		p.advance()
		right := p.parsePrattExpr(prec + 1)
		left = &ast.BinaryExpr{Op: tokenToOp[tok.Type], Lhs: left, Rhs: right}
	}
}

func (p *Parser) parseUnary() ast.Expr {
	if p.match(MINUS) {
		return &ast.UnaryExpr{Op: ast.OpSub, Expr: p.parseUnary()}
	}
	if p.match(BANG) {
		return &ast.UnaryExpr{Op: "!", Expr: p.parseUnary()}
	}
	return p.parsePrimary()
}

func (p *Parser) parsePrimary() ast.Expr {
	switch {
	case p.match(TRUE):
		return &ast.BoolLit{Value: true}
	case p.match(FALSE):
		return &ast.BoolLit{Value: false}
	case p.check(INT):
		tok := p.advance()
		v, _ := strconv.ParseInt(tok.Lexeme, 10, 64)
		return &ast.IntLit{Value: v}
	case p.check(FLOAT):
		tok := p.advance()
		v, _ := strconv.ParseFloat(tok.Lexeme, 64)
		return &ast.FloatLit{Value: v}
	case p.check(IDENT):
		name := p.advance()
		if p.match(LPAREN) {
			var args []ast.Expr
			for !p.check(RPAREN) && !p.isAtEnd() {
				args = append(args, p.parseExpr())
				if !p.match(COMMA) {
					break
				}
			}
			p.consume(RPAREN, "expected ')' after call arguments")
			return &ast.CallExpr{Callee: name.Lexeme, Args: args}
		}
		return &ast.Ident{Name: name.Lexeme}
	case p.match(LPAREN):
		expr := p.parseExpr()
		p.consume(RPAREN, "expected ')' after expression")
		return expr
	default:
		p.errorAtCurrent("expected an expression")
		p.advance()
		return &ast.IntLit{Value: 0}
	}
}

// token-stream helpers, kanso's internal/parser idiom.

func (p *Parser) peek() Token     { return p.tokens[p.current] }
func (p *Parser) previous() Token { return p.tokens[p.current-1] }
func (p *Parser) isAtEnd() bool   { return p.peek().Type == EOF }

func (p *Parser) advance() Token {
	if !p.isAtEnd() {
		p.current++
	}
	return p.previous()
}

func (p *Parser) check(tt TokenType) bool {
	return !p.isAtEnd() && p.peek().Type == tt
}

func (p *Parser) checkNext(tt TokenType) bool {
	if p.current+1 >= len(p.tokens) {
		return false
	}
	return p.tokens[p.current+1].Type == tt
}

func (p *Parser) match(tt TokenType) bool {
	if p.check(tt) {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) consume(tt TokenType, message string) Token {
	if p.check(tt) {
		return p.advance()
	}
	p.errorAtCurrent(message)
	return Token{Type: ILLEGAL, Position: p.peek().Position}
}

func (p *Parser) errorAtCurrent(message string) {
	p.errors = append(p.errors, ParseError{Message: message, Position: p.peek().Position})
}

