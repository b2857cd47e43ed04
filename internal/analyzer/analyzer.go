// Package analyzer implements the static semantic pass (spec.md §4.5): a
// single tree walk that installs symbols into a Scope tree and reports the
// first identifier, type, or operator-typing violation it meets as a
// *diag.Error (SemanticError or TypeError) before an evaluator ever runs.
package analyzer

import (
	"fmt"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/tala-lang/tala/internal/ast"
	"github.com/tala-lang/tala/internal/diag"
	"github.com/tala-lang/tala/internal/scope"
	"github.com/tala-lang/tala/internal/token"
	"github.com/tala-lang/tala/internal/types"
)

type analyzer struct {
	cur *scope.Scope
}

// Analyze walks prog, mutating nothing in the tree itself but populating a
// fresh global Scope with every declared symbol. It returns the first
// semantic error found, or nil if the program is well-formed.
func Analyze(prog *ast.Program) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if de, ok := r.(*diag.Error); ok {
				err = de
				return
			}
			panic(r)
		}
	}()

	a := &analyzer{cur: scope.Global()}
	a.visitProgram(prog)
	return nil
}

func (a *analyzer) errorf(tok token.Token, format string, args ...any) {
	panic(diag.NewSemantic(fmt.Sprintf(format, args...), &tok.Ctx))
}

// ctxOf returns the address of n's source context; n.Tok() returns its
// token by value, so the token is copied into a local first to make its
// Ctx field addressable.
func ctxOf(n ast.Node) *token.SourceContext {
	tok := n.Tok()
	return &tok.Ctx
}

// suggest appends a "did you mean" hint when a near-miss identifier is
// visible, using the same fuzzy-matching library the debugger uses for its
// unknown-command hints.
func (a *analyzer) suggest(name string) string {
	ranks := fuzzy.RankFindFold(name, a.cur.AllVisibleNames())
	if len(ranks) == 0 {
		return ""
	}
	return fmt.Sprintf(" (did you mean %q?)", ranks[0].Target)
}

func (a *analyzer) visitProgram(p *ast.Program) {
	a.visitFuncDef(p.FuncDef, true)
	a.visitFuncBody(p.FuncDef)
}

// visitFuncDef installs a FuncSymbol for node without visiting its body
// (spec.md §4.3: declarations are visible before bodies are checked).
func (a *analyzer) visitFuncDef(node *ast.FuncDef, isProgram bool) {
	if a.cur.Lookup(node.Name, true) != nil {
		a.errorf(node.Tok(), "duplicate identifier %s", node.Name)
	}

	var retType types.Type
	if isProgram {
		retType = a.getType(node.RetType, types.Int)
		if retType != types.Int {
			a.errorf(node.Tok(), "invalid return type for program (must be int)")
		}
	} else {
		retType = a.getType(node.RetType, types.Any)
	}

	a.cur.Insert(&scope.FuncSymbol{Name: node.Name, RetType: retType, Params: node.Params, Body: node.Body})
}

func (a *analyzer) getType(node *ast.Type, def types.Type) types.Type {
	if node == nil {
		return def
	}
	return a.visitType(node)
}

// visitFuncBody checks the body of a previously declared function in its
// own child scope, seeded with its parameters.
func (a *analyzer) visitFuncBody(node *ast.FuncDef) {
	sym := a.cur.Lookup(node.Name, false).(*scope.FuncSymbol)

	a.cur = scope.New(a.cur, scope.WithRetType(sym.RetType))
	for _, param := range node.Params {
		a.visitVarDecl(param)
	}
	a.visitBlock(node.Body, false)
	a.cur = a.cur.Parent
}

func (a *analyzer) visitBlock(node *ast.Block, createScope bool) {
	if createScope {
		a.cur = scope.New(a.cur)
	}

	for _, fd := range node.Functions {
		a.visitFuncDef(fd, false)
	}
	for _, fd := range node.Functions {
		a.visitFuncBody(fd)
	}
	for _, stmt := range node.Statements {
		a.visitStmt(stmt)
	}

	if createScope {
		a.cur = a.cur.Parent
	}
}

func (a *analyzer) visitStmt(stmt ast.Stmt) {
	switch n := stmt.(type) {
	case *ast.VarDecl:
		a.visitVarDecl(n)
	case *ast.Assignment:
		a.visitAssignment(n)
	case *ast.FuncCall:
		a.visitFuncCall(n)
	case *ast.IfStmt:
		a.visitIfStmt(n)
	case *ast.WhileStmt:
		a.visitWhileStmt(n)
	case *ast.SpecialStmt:
		a.visitSpecialStmt(n)
	default:
		a.errorf(stmt.Tok(), "unsupported statement")
	}
}

func (a *analyzer) visitExpr(expr ast.Expr) types.Type {
	switch n := expr.(type) {
	case *ast.UnaryOp:
		return a.visitUnaryOp(n)
	case *ast.BinaryOp:
		return a.visitBinaryOp(n)
	case *ast.Var:
		return a.visitVar(n)
	case *ast.Type:
		return a.visitType(n)
	case *ast.Literal:
		return a.visitLiteral(n)
	case *ast.FuncCall:
		return a.visitFuncCall(n)
	}
	a.errorf(expr.Tok(), "unsupported expression")
	return 0
}

func (a *analyzer) visitUnaryOp(node *ast.UnaryOp) types.Type {
	exprType := a.visitExpr(node.Expr)
	t, err := types.UnaryOpType(node.Op, exprType, ctxOf(node))
	if err != nil {
		panic(err)
	}
	return t
}

func (a *analyzer) visitBinaryOp(node *ast.BinaryOp) types.Type {
	leftType := a.visitExpr(node.Left)
	rightType := a.visitExpr(node.Right)
	t, err := types.BinaryOpType(node.Op, leftType, rightType, ctxOf(node))
	if err != nil {
		panic(err)
	}
	return t
}

func (a *analyzer) visitAssignment(node *ast.Assignment) {
	varType := a.visitVar(node.Left.(*ast.Var))
	exprType := a.visitExpr(node.Right)
	_, err := types.AssignType(node.Op, varType, exprType, types.Any, ctxOf(node))
	if err != nil {
		panic(err)
	}
}

func (a *analyzer) visitVar(node *ast.Var) types.Type {
	sym, ok := a.cur.Lookup(node.Name, false).(*scope.VarSymbol)
	if !ok {
		a.errorf(node.Tok(), "variable %s not declared%s", node.Name, a.suggest(node.Name))
	}
	return sym.DeclType
}

func (a *analyzer) visitType(node *ast.Type) types.Type {
	sym, ok := a.cur.Lookup(node.Name, false).(*scope.TypeSymbol)
	if !ok {
		a.errorf(node.Tok(), "unknown type %s%s", node.Name, a.suggest(node.Name))
	}
	return sym.Type
}

func (a *analyzer) visitLiteral(node *ast.Literal) types.Type {
	return types.FromLiteralKind(node.Kind)
}

func (a *analyzer) visitVarDecl(node *ast.VarDecl) *scope.VarSymbol {
	typ := a.getType(node.Type, types.Any)
	name := node.Var.Name

	if typ == types.Void {
		a.errorf(node.Tok(), "can not declare variable as void")
	}
	if a.cur.Lookup(name, true) != nil {
		a.errorf(node.Tok(), "duplicate identifier %s", name)
	}

	sym := &scope.VarSymbol{Name: name, DeclType: typ, Value: types.Default(typ)}
	a.cur.Insert(sym)
	return sym
}

func (a *analyzer) visitFuncCall(node *ast.FuncCall) types.Type {
	sym, ok := a.cur.Lookup(node.Name, false).(*scope.FuncSymbol)
	if !ok {
		a.errorf(node.Tok(), "function %s not declared%s", node.Name, a.suggest(node.Name))
	}

	if len(sym.Params) != len(node.Args) {
		a.errorf(node.Tok(), "function %s requires %d argument(s), but %d given", sym.Name, len(sym.Params), len(node.Args))
	}

	for i, param := range sym.Params {
		argType := a.visitExpr(node.Args[i])
		paramType := a.getType(param.Type, types.Any)
		if _, err := types.AssignType(token.ASSIGN, paramType, argType, types.Any, ctxOf(node.Args[i])); err != nil {
			panic(err)
		}
	}

	return sym.RetType
}

func (a *analyzer) visitIfStmt(node *ast.IfStmt) {
	for n := node; n != nil; n = n.Next {
		if n.Cond != nil {
			a.visitExpr(n.Cond)
		}
		a.visitBlock(n.Body, true)
	}
}

func (a *analyzer) visitWhileStmt(node *ast.WhileStmt) {
	a.visitExpr(node.Cond)
	a.cur = scope.New(a.cur, scope.Loop(true))
	a.visitBlock(node.Body, false)
	a.cur = a.cur.Parent
}

func (a *analyzer) visitSpecialStmt(node *ast.SpecialStmt) {
	switch node.Kind {
	case ast.SpecialBreak, ast.SpecialContinue:
		if !a.cur.InsideLoop {
			a.errorf(node.Tok(), "%s outside a loop", specialName(node.Kind))
		}
	case ast.SpecialReturn:
		// A bare `return` (no args) yields the enclosing function's
		// return-type default (spec.md §4.6) rather than a real value, so
		// there is no expression type to check against a.cur.RetType.
		if len(node.Args) > 0 {
			argType := a.visitExpr(node.Args[0])
			if _, err := types.AssignType(token.ASSIGN, a.cur.RetType, argType, types.Any, ctxOf(node)); err != nil {
				panic(err)
			}
		}
	default:
		for _, arg := range node.Args {
			a.visitExpr(arg)
		}
	}
}

func specialName(k ast.SpecialKind) string {
	switch k {
	case ast.SpecialBreak:
		return "break"
	case ast.SpecialContinue:
		return "continue"
	default:
		return "statement"
	}
}
