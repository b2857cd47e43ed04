// Package eval implements the tree-walking evaluator (spec.md §4.6). It
// shares the analyzer's Scope machinery but builds a fresh scope tree of
// its own at run time, and reports every collaboration point a step
// debugger needs through the Frontend interface rather than a concrete
// dependency.
package eval

import (
	"fmt"

	"github.com/tala-lang/tala/internal/ast"
	"github.com/tala-lang/tala/internal/diag"
	"github.com/tala-lang/tala/internal/scope"
	"github.com/tala-lang/tala/internal/token"
	"github.com/tala-lang/tala/internal/types"
)

// Frontend receives every externally observable event the evaluator
// produces: function entry/exit and scope changes (for an interactive
// debugger to track the call stack), the source line about to execute,
// PRINT output, and READ input. A non-interactive run can satisfy this
// with a Frontend whose tracing hooks are no-ops; debugger.Debugger is the
// interactive implementation.
type Frontend interface {
	EnterFunc(sym *scope.FuncSymbol)
	LeaveFunc()
	ScopeChanged(s *scope.Scope)
	VisitLine(ctx token.SourceContext)
	Print(v types.Value)
	Read() (types.Value, error)
	Args() []types.Value
}

type ctrlKind uint8

const (
	ctrlNone ctrlKind = iota
	ctrlReturn
	ctrlBreak
	ctrlContinue
)

// signal is the non-local control-flow carrier RETURN/BREAK/CONTINUE use
// to unwind out of nested blocks (spec.md §4.6), propagated through
// ordinary return values rather than panics: unlike a lexical or syntax
// error, leaving a loop or function body is an expected outcome of normal
// evaluation, not a failure.
type signal struct {
	kind  ctrlKind
	value types.Value
	ctx   token.SourceContext
}

// maxCallDepth bounds recursive function calls. Go's own stack-growth
// panic on overflow isn't recoverable the way Python's RecursionError is,
// so the evaluator enforces its own ceiling and reports it as an ordinary
// diag error instead of crashing the process.
const maxCallDepth = 2000

type Evaluator struct {
	frontend Frontend
	cur      *scope.Scope
	depth    int
}

// Interpret runs prog to completion and returns its exit code: the int
// value the program function returns (spec.md §4.6).
func Interpret(prog *ast.Program, frontend Frontend) (int64, error) {
	e := &Evaluator{frontend: frontend, cur: scope.Global()}

	sym, err := e.visitFuncDef(prog.FuncDef, true)
	if err != nil {
		return 0, err
	}

	args := frontend.Args()
	if len(sym.Params) != len(args) {
		return 0, diag.NewSemantic(
			fmt.Sprintf("program %s requires %d argument(s), but %d given", sym.Name, len(sym.Params), len(args)),
			ctxOf(prog))
	}

	argCtxs := make([]token.SourceContext, len(args))
	for i, p := range sym.Params {
		argCtxs[i] = p.Tok().Ctx
	}

	result, err := e.call(sym, args, argCtxs, token.CASTASSIGN, prog.Tok().Ctx)
	if err != nil {
		return 0, err
	}
	return result.Int, nil
}

func ctxOf(n ast.Node) *token.SourceContext {
	tok := n.Tok()
	return &tok.Ctx
}

func (e *Evaluator) enterScope(opts ...scope.Option) {
	e.cur = scope.New(e.cur, opts...)
	e.frontend.ScopeChanged(e.cur)
}

func (e *Evaluator) leaveScope() {
	e.cur = e.cur.Parent
	e.frontend.ScopeChanged(e.cur)
}

// visitFuncDef installs sym's FuncSymbol in the current scope without
// evaluating its body; the body only runs when the function is called
// (visitFuncCall/call).
func (e *Evaluator) visitFuncDef(node *ast.FuncDef, isProgram bool) (*scope.FuncSymbol, error) {
	var retType types.Type
	var err error

	if isProgram {
		retType = types.Int
	} else if node.RetType != nil {
		retType, err = e.visitType(node.RetType)
		if err != nil {
			return nil, err
		}
	} else {
		retType = types.Any
	}

	sym := &scope.FuncSymbol{Name: node.Name, RetType: retType, Params: node.Params, Body: node.Body}
	e.cur.Insert(sym)
	return sym, nil
}

func (e *Evaluator) visitType(node *ast.Type) (types.Type, error) {
	t, ok := types.ParseTypeName(node.Name)
	if !ok {
		return 0, diag.NewSemantic(fmt.Sprintf("unknown type %s", node.Name), ctxOf(node))
	}
	return t, nil
}

// visitBlock runs node's nested function declarations (installed fresh on
// every entry, so each invocation gets its own local bindings) and then
// its statements in order, stopping early on the first non-local control
// signal or error.
func (e *Evaluator) visitBlock(node *ast.Block, createScope bool) (signal, error) {
	if createScope {
		e.enterScope()
		defer e.leaveScope()
	}

	for _, fd := range node.Functions {
		if _, err := e.visitFuncDef(fd, false); err != nil {
			return signal{}, err
		}
	}

	for _, stmt := range node.Statements {
		tok := stmt.Tok()
		e.frontend.VisitLine(tok.Ctx)

		sig, err := e.visitStmt(stmt)
		if err != nil {
			return signal{}, err
		}
		if sig.kind != ctrlNone {
			return sig, nil
		}
	}

	return signal{}, nil
}

func (e *Evaluator) visitStmt(stmt ast.Stmt) (signal, error) {
	switch n := stmt.(type) {
	case *ast.VarDecl:
		_, err := e.visitVarDecl(n)
		return signal{}, err
	case *ast.Assignment:
		return signal{}, e.visitAssignment(n)
	case *ast.FuncCall:
		_, err := e.visitFuncCall(n)
		return signal{}, err
	case *ast.IfStmt:
		return e.visitIfStmt(n)
	case *ast.WhileStmt:
		return e.visitWhileStmt(n)
	case *ast.SpecialStmt:
		return e.visitSpecialStmt(n)
	}
	return signal{}, diag.NewSemantic("unsupported statement", ctxOf(stmt))
}

func (e *Evaluator) visitExpr(expr ast.Expr) (types.Value, error) {
	switch n := expr.(type) {
	case *ast.UnaryOp:
		v, err := e.visitExpr(n.Expr)
		if err != nil {
			return types.Value{}, err
		}
		return types.UnaryOpValue(n.Op, v, ctxOf(n))
	case *ast.BinaryOp:
		left, err := e.visitExpr(n.Left)
		if err != nil {
			return types.Value{}, err
		}
		right, err := e.visitExpr(n.Right)
		if err != nil {
			return types.Value{}, err
		}
		return types.BinaryOpValue(n.Op, left, right, ctxOf(n))
	case *ast.Var:
		return e.visitVar(n)
	case *ast.Literal:
		return literalValue(n), nil
	case *ast.FuncCall:
		return e.visitFuncCall(n)
	}
	return types.Value{}, diag.NewSemantic("unsupported expression", ctxOf(expr))
}

func literalValue(n *ast.Literal) types.Value {
	switch n.Kind {
	case token.LiteralInt:
		return types.IntValue(n.Int)
	case token.LiteralReal:
		return types.RealValue(n.Real)
	default:
		return types.StringValue(n.Str)
	}
}

func (e *Evaluator) visitVar(node *ast.Var) (types.Value, error) {
	sym, ok := e.cur.Lookup(node.Name, false).(*scope.VarSymbol)
	if !ok {
		return types.Value{}, diag.NewSemantic(fmt.Sprintf("variable %s not declared", node.Name), ctxOf(node))
	}
	return sym.Value, nil
}

func (e *Evaluator) visitVarDecl(node *ast.VarDecl) (*scope.VarSymbol, error) {
	typ := types.Any
	if node.Type != nil {
		t, err := e.visitType(node.Type)
		if err != nil {
			return nil, err
		}
		typ = t
	}

	sym := &scope.VarSymbol{Name: node.Var.Name, DeclType: typ, Value: types.Default(typ)}
	e.cur.Insert(sym)
	return sym, nil
}

func (e *Evaluator) visitAssignment(node *ast.Assignment) error {
	varNode := node.Left.(*ast.Var)
	sym, ok := e.cur.Lookup(varNode.Name, false).(*scope.VarSymbol)
	if !ok {
		return diag.NewSemantic(fmt.Sprintf("variable %s not declared", varNode.Name), ctxOf(varNode))
	}

	rhs, err := e.visitExpr(node.Right)
	if err != nil {
		return err
	}

	val, err := types.AssignValue(node.Op, sym.DeclType, rhs, ctxOf(node))
	if err != nil {
		return err
	}
	sym.Value = val
	return nil
}

func (e *Evaluator) visitFuncCall(node *ast.FuncCall) (types.Value, error) {
	sym, ok := e.cur.Lookup(node.Name, false).(*scope.FuncSymbol)
	if !ok {
		return types.Value{}, diag.NewSemantic(fmt.Sprintf("function %s not declared", node.Name), ctxOf(node))
	}

	args := make([]types.Value, len(node.Args))
	argCtxs := make([]token.SourceContext, len(node.Args))
	for i, a := range node.Args {
		v, err := e.visitExpr(a)
		if err != nil {
			return types.Value{}, err
		}
		args[i] = v
		argCtxs[i] = a.Tok().Ctx
	}

	return e.call(sym, args, argCtxs, token.ASSIGN, node.Tok().Ctx)
}

// call binds args into a fresh scope as sym's parameters, runs its body,
// and coerces whatever it returned (or the type's default, if it fell off
// the end) into sym's declared return type.
func (e *Evaluator) call(sym *scope.FuncSymbol, args []types.Value, argCtxs []token.SourceContext, op token.Kind, callCtx token.SourceContext) (types.Value, error) {
	e.depth++
	defer func() { e.depth-- }()
	if e.depth > maxCallDepth {
		return types.Value{}, diag.NewSemantic("call stack exceeded", &callCtx)
	}

	e.enterScope()

	for i, param := range sym.Params {
		paramSym, err := e.visitVarDecl(param)
		if err != nil {
			e.leaveScope()
			return types.Value{}, err
		}
		val, err := types.AssignValue(op, paramSym.DeclType, args[i], &argCtxs[i])
		if err != nil {
			e.leaveScope()
			return types.Value{}, err
		}
		paramSym.Value = val
	}

	e.frontend.EnterFunc(sym)
	sig, err := e.visitBlock(sym.Body, false)
	e.leaveScope()
	e.frontend.LeaveFunc()

	if err != nil {
		return types.Value{}, err
	}

	retValue := types.Default(sym.RetType)
	ctx := callCtx
	if sig.kind == ctrlReturn {
		ctx = sig.ctx
		// A bare `return` carries a Void-typed placeholder value; keep the
		// return type's own default (the same value a body that falls off
		// the end yields) rather than trying to assign the placeholder
		// through it.
		if sig.value.Type != types.Void {
			retValue = sig.value
		}
	}

	return types.AssignValue(token.ASSIGN, sym.RetType, retValue, &ctx)
}

func (e *Evaluator) visitIfStmt(node *ast.IfStmt) (signal, error) {
	for n := node; n != nil; n = n.Next {
		if n.Cond == nil {
			return e.visitBlock(n.Body, true)
		}
		v, err := e.visitExpr(n.Cond)
		if err != nil {
			return signal{}, err
		}
		if v.Truthy() {
			return e.visitBlock(n.Body, true)
		}
	}
	return signal{}, nil
}

func (e *Evaluator) visitWhileStmt(node *ast.WhileStmt) (signal, error) {
	for {
		v, err := e.visitExpr(node.Cond)
		if err != nil {
			return signal{}, err
		}
		if !v.Truthy() {
			return signal{}, nil
		}

		sig, err := e.visitBlock(node.Body, true)
		if err != nil {
			return signal{}, err
		}
		switch sig.kind {
		case ctrlBreak:
			return signal{}, nil
		case ctrlReturn:
			return sig, nil
		}
	}
}

func (e *Evaluator) visitSpecialStmt(node *ast.SpecialStmt) (signal, error) {
	switch node.Kind {
	case ast.SpecialBreak:
		return signal{kind: ctrlBreak}, nil
	case ast.SpecialContinue:
		return signal{kind: ctrlContinue}, nil
	case ast.SpecialReturn:
		val := types.Default(types.Void)
		if len(node.Args) > 0 {
			v, err := e.visitExpr(node.Args[0])
			if err != nil {
				return signal{}, err
			}
			val = v
		}
		return signal{kind: ctrlReturn, value: val, ctx: node.Tok().Ctx}, nil
	case ast.SpecialPrint:
		for _, arg := range node.Args {
			v, err := e.visitExpr(arg)
			if err != nil {
				return signal{}, err
			}
			e.frontend.Print(v)
		}
		return signal{}, nil
	case ast.SpecialRead:
		for _, arg := range node.Args {
			varNode := arg.(*ast.Var)
			sym, ok := e.cur.Lookup(varNode.Name, false).(*scope.VarSymbol)
			if !ok {
				return signal{}, diag.NewSemantic(fmt.Sprintf("variable %s not declared", varNode.Name), ctxOf(varNode))
			}
			v, err := e.frontend.Read()
			if err != nil {
				return signal{}, err
			}
			val, err := types.AssignValue(token.CASTASSIGN, sym.DeclType, v, ctxOf(arg))
			if err != nil {
				return signal{}, err
			}
			sym.Value = val
		}
		return signal{}, nil
	}
	return signal{}, diag.NewSemantic("unsupported statement", ctxOf(node))
}
