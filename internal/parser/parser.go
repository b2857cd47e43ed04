// Package parser implements the recursive-descent parser (spec.md §4.2):
// one token of lookahead, a try_eat/eat helper pair, and one method per
// grammar production. Errors are raised as panics carrying a *diag.Error
// and recovered at Parse's boundary, following the teacher's
// (opal-lang-opal) runtime/parser pattern of a panic-driven descent with a
// single top-level recover.
package parser

import (
	"fmt"
	"strings"

	"github.com/tala-lang/tala/internal/ast"
	"github.com/tala-lang/tala/internal/diag"
	"github.com/tala-lang/tala/internal/token"
)

// TokenSource is anything that can hand the parser one token at a time;
// *lexer.Lexer satisfies it without the parser needing to import lexer
// directly, keeping the dependency arrow pointing one way.
type TokenSource interface {
	Next() token.Token
}

type Parser struct {
	src   TokenSource
	cur   token.Token
	last  token.Token
}

func New(src TokenSource) *Parser {
	p := &Parser{src: src}
	p.cur = p.src.Next()
	return p
}

// Parse tokenizes nothing itself — src must already be positioned — and
// runs the full program production, recovering any *diag.Error panic into
// a returned error.
func Parse(src TokenSource) (prog *ast.Program, err error) {
	defer func() {
		if r := recover(); r != nil {
			if de, ok := r.(*diag.Error); ok {
				err = de
				return
			}
			panic(r)
		}
	}()
	return New(src).program(), nil
}

func (p *Parser) errorf(format string, args ...any) {
	tok := p.last
	if tok.Kind == token.EOF && p.cur.Kind != 0 {
		tok = p.cur
	}
	panic(diag.NewSyntax(fmt.Sprintf(format, args...), tok.Ctx))
}

func (p *Parser) tryEat(kinds ...token.Kind) bool {
	for _, k := range kinds {
		if p.cur.Kind == k {
			p.last = p.cur
			p.cur = p.src.Next()
			return true
		}
	}
	return false
}

func (p *Parser) eat(kinds ...token.Kind) token.Token {
	if p.tryEat(kinds...) {
		return p.last
	}
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = k.String()
	}
	p.errorf("expected one of: %s (got %s)", strings.Join(names, ", "), p.cur.Kind)
	return token.Token{}
}

// binOpExpr implements the shared left-associative binary-operator-chain
// production used by expr/relExpr/arithExpr/term (spec.md §4.2's grammar).
func (p *Parser) binOpExpr(ops []token.Kind, operand func() ast.Expr) ast.Expr {
	node := operand()
	for p.tryEat(ops...) {
		node = ast.NewBinaryOp(node, p.last, operand())
	}
	return node
}

// program ::= PROGRAM func-signature ':' block EOF
func (p *Parser) program() *ast.Program {
	p.eat(token.PROGRAM)
	nameTok, name, params, ret := p.funcSignature()
	p.eat(token.COLON)
	body := p.block()
	p.eat(token.EOF)
	return ast.NewProgram(ast.NewFuncDef(nameTok, name, ret, params, body))
}

// statement dispatches on the current token's kind (spec.md §4.2). A VAR
// statement can yield more than one node (one VarDecl plus an optional
// Assignment per declared name); the caller (block) flattens that case.
func (p *Parser) statement() []ast.Stmt {
	switch p.cur.Kind {
	case token.VAR:
		return p.varStatement()
	case token.DEF:
		return []ast.Stmt{p.funcDefinition()}
	case token.IDENT:
		id := p.eat(token.IDENT)
		if p.cur.Kind == token.LPAREN {
			return []ast.Stmt{p.funcCall(id)}
		}
		return []ast.Stmt{p.assignment(ast.NewVar(id, id.Ident))}
	case token.PRINT:
		return []ast.Stmt{p.printStatement()}
	case token.READ:
		return []ast.Stmt{p.readStatement()}
	case token.IF:
		return []ast.Stmt{p.ifStatement()}
	case token.WHILE:
		return []ast.Stmt{p.whileStatement()}
	case token.RETURN:
		tok := p.eat(token.RETURN)
		node := ast.NewSpecialStmt(tok, ast.SpecialReturn)
		if !p.tryEat(token.PASS) {
			node.Args = []ast.Expr{p.expr()}
		}
		return []ast.Stmt{node}
	case token.BREAK:
		return []ast.Stmt{ast.NewSpecialStmt(p.eat(token.BREAK), ast.SpecialBreak)}
	case token.CONTINUE:
		return []ast.Stmt{ast.NewSpecialStmt(p.eat(token.CONTINUE), ast.SpecialContinue)}
	case token.PASS:
		p.eat(token.PASS)
		return nil
	}

	p.errorf("statement expected, got %s", p.cur.Kind)
	return nil
}

// block ::= INDENT { statement } DEDENT
//
// Per spec.md §9's resolved open question, a block also accepts EOF in
// place of DEDENT: the tokenizer never synthesizes trailing DEDENTs, so the
// outermost program block is the one place EOF can terminate a block
// (a truncated/empty source file).
func (p *Parser) block() *ast.Block {
	tok := p.eat(token.INDENT)
	b := ast.NewBlock(tok)

	for p.cur.Kind != token.DEDENT && p.cur.Kind != token.EOF {
		for _, stmt := range p.statement() {
			if fd, ok := stmt.(*ast.FuncDef); ok {
				b.Functions = append(b.Functions, fd)
			} else {
				b.Statements = append(b.Statements, stmt)
			}
		}
	}
	p.tryEat(token.DEDENT)
	return b
}

// ifStatement ::= IF expr ':' block {ELIF expr ':' block} [ELSE ':' block]
func (p *Parser) ifStatement() *ast.IfStmt {
	tok := p.eat(token.IF)
	cond := p.expr()
	p.eat(token.COLON)
	body := p.block()
	first := ast.NewIfStmt(tok, cond, body)
	node := first

	for p.tryEat(token.ELIF) {
		tok := p.last
		cond := p.expr()
		p.eat(token.COLON)
		body := p.block()
		node.Next = ast.NewIfStmt(tok, cond, body)
		node = node.Next
	}

	if p.tryEat(token.ELSE) {
		tok := p.last
		p.eat(token.COLON)
		body := p.block()
		node.Next = ast.NewIfStmt(tok, nil, body)
	}

	return first
}

// whileStatement ::= WHILE expr ':' block
func (p *Parser) whileStatement() *ast.WhileStmt {
	tok := p.eat(token.WHILE)
	cond := p.expr()
	p.eat(token.COLON)
	body := p.block()
	return ast.NewWhileStmt(tok, cond, body)
}

// printStatement ::= PRINT expr {',' expr}
func (p *Parser) printStatement() *ast.SpecialStmt {
	node := ast.NewSpecialStmt(p.eat(token.PRINT), ast.SpecialPrint)
	node.Args = append(node.Args, p.expr())
	for p.tryEat(token.COMMA) {
		node.Args = append(node.Args, p.expr())
	}
	return node
}

// readStatement ::= READ variable {',' variable}
func (p *Parser) readStatement() *ast.SpecialStmt {
	node := ast.NewSpecialStmt(p.eat(token.READ), ast.SpecialRead)
	id := p.eat(token.IDENT)
	node.Args = append(node.Args, ast.NewVar(id, id.Ident))
	for p.tryEat(token.COMMA) {
		id := p.eat(token.IDENT)
		node.Args = append(node.Args, ast.NewVar(id, id.Ident))
	}
	return node
}

// expr ::= rel-expr {(AND|OR|XOR) rel-expr}
func (p *Parser) expr() ast.Expr {
	return p.binOpExpr([]token.Kind{token.AND, token.OR, token.XOR}, p.relExpr)
}

// relExpr ::= [NOT] arith {(LT|LTE|GT|GTE|EQ|NEQ) arith}
func (p *Parser) relExpr() ast.Expr {
	relOps := []token.Kind{token.LT, token.LTE, token.GT, token.GTE, token.EQ, token.NEQ}
	if p.tryEat(token.NOT) {
		tok := p.last
		return ast.NewUnaryOp(tok, p.binOpExpr(relOps, p.arithExpr))
	}
	return p.binOpExpr(relOps, p.arithExpr)
}

// arithExpr ::= term {(+|-) term}
func (p *Parser) arithExpr() ast.Expr {
	return p.binOpExpr([]token.Kind{token.PLUS, token.MINUS}, p.term)
}

// term ::= factor {(*|//|/|%) factor}
func (p *Parser) term() ast.Expr {
	return p.binOpExpr([]token.Kind{token.MUL, token.INTDIV, token.REALDIV, token.MOD}, p.factor)
}

// factor ::= (+|-|~) factor | '(' expr ')' | literal | ID | ID '(' args ')'
func (p *Parser) factor() ast.Expr {
	switch {
	case p.tryEat(token.PLUS, token.MINUS, token.CAST):
		return ast.NewUnaryOp(p.last, p.factor())
	case p.tryEat(token.LPAREN):
		node := p.expr()
		p.eat(token.RPAREN)
		return node
	case p.tryEat(token.LITERAL):
		return ast.NewLiteral(p.last)
	}

	id := p.eat(token.IDENT)
	if p.cur.Kind == token.LPAREN {
		return p.funcCall(id)
	}
	return ast.NewVar(id, id.Ident)
}

// varStatement ::= VAR decl-or-def {',' decl-or-def} [':' type]
func (p *Parser) varStatement() []ast.Stmt {
	p.eat(token.VAR)
	result := p.varDeclOrDef()

	for p.tryEat(token.COMMA) {
		result = append(result, p.varDeclOrDef()...)
	}

	if p.tryEat(token.COLON) {
		idTok := p.eat(token.IDENT)
		typ := ast.NewType(idTok, idTok.Ident)
		for _, stmt := range result {
			if vd, ok := stmt.(*ast.VarDecl); ok {
				vd.Type = typ
			}
		}
	}

	return result
}

// varDeclOrDef ::= ID [(':=' | '~=') expr]
func (p *Parser) varDeclOrDef() []ast.Stmt {
	idTok := p.eat(token.IDENT)
	v := ast.NewVar(idTok, idTok.Ident)
	result := []ast.Stmt{ast.NewVarDecl(v)}
	if p.tryEat(token.ASSIGN, token.CASTASSIGN) {
		result = append(result, ast.NewAssignment(v, p.last, p.expr()))
	}
	return result
}

// assignment ::= variable (':=' | '~=') expr
func (p *Parser) assignment(left ast.Expr) *ast.Assignment {
	op := p.eat(token.ASSIGN, token.CASTASSIGN)
	return ast.NewAssignment(left, op, p.expr())
}

// funcDefinition ::= DEF func-signature ':' block
func (p *Parser) funcDefinition() *ast.FuncDef {
	p.eat(token.DEF)
	nameTok, name, params, ret := p.funcSignature()
	p.eat(token.COLON)
	body := p.block()
	return ast.NewFuncDef(nameTok, name, ret, params, body)
}

// funcSignature ::= ID '(' [params] ')' ['->' type]
func (p *Parser) funcSignature() (token.Token, string, []*ast.VarDecl, *ast.Type) {
	name := p.eat(token.IDENT)
	p.eat(token.LPAREN)
	params := p.formalParameters()
	p.eat(token.RPAREN)

	var ret *ast.Type
	if p.tryEat(token.ARROW) {
		idTok := p.eat(token.IDENT)
		ret = ast.NewType(idTok, idTok.Ident)
	}
	return name, name.Ident, params, ret
}

// formalParameters ::= param-list {',' param-list}
func (p *Parser) formalParameters() []*ast.VarDecl {
	if p.cur.Kind == token.RPAREN {
		return nil
	}
	params := p.paramList()
	for p.tryEat(token.COMMA) {
		params = append(params, p.paramList()...)
	}
	return params
}

// paramList ::= ID {',' ID} [':' type] — the trailing type, if present,
// applies to every ID collected since the last explicit type (spec.md
// §4.2's grammar comment).
func (p *Parser) paramList() []*ast.VarDecl {
	idTok := p.eat(token.IDENT)
	result := []*ast.VarDecl{ast.NewVarDecl(ast.NewVar(idTok, idTok.Ident))}
	for p.tryEat(token.COMMA) {
		idTok := p.eat(token.IDENT)
		result = append(result, ast.NewVarDecl(ast.NewVar(idTok, idTok.Ident)))
	}

	if p.tryEat(token.COLON) {
		typeTok := p.eat(token.IDENT)
		typ := ast.NewType(typeTok, typeTok.Ident)
		for _, vd := range result {
			vd.Type = typ
		}
	}
	return result
}

// funcCall ::= ID '(' [expr {',' expr}] ')'
func (p *Parser) funcCall(name token.Token) *ast.FuncCall {
	p.eat(token.LPAREN)
	var args []ast.Expr
	for !p.tryEat(token.RPAREN) {
		args = append(args, p.expr())
		if p.tryEat(token.RPAREN) {
			break
		}
		p.eat(token.COMMA)
	}
	return ast.NewFuncCall(name, name.Ident, args)
}
