package main

import (
	"os"

	"github.com/fxamacker/cbor/v2"

	"github.com/tala-lang/tala/internal/ast"
	"github.com/tala-lang/tala/internal/token"
)

// wireNode is a flattened, tagged-union mirror of every ast.Node shape
// (spec.md §6's "persisted AST, format unspecified"). One struct for all
// kinds keeps the cbor schema simple at the cost of unused fields per
// variant; Kind says which fields are meaningful.
type wireNode struct {
	Kind string
	Ctx  wireCtx

	// FuncDef / Program
	Name    string
	RetType *wireNode
	Params  []*wireNode
	Body    *wireNode

	// Block
	Functions  []*wireNode
	Statements []*wireNode

	// VarDecl
	Var  *wireNode
	Type *wireNode

	// Literal
	LitKind uint8
	Int     int64
	Real    float64
	Str     string

	// UnaryOp / BinaryOp / Assignment
	Op    uint8
	Expr  *wireNode
	Left  *wireNode
	Right *wireNode

	// FuncCall
	Args []*wireNode

	// IfStmt
	Cond *wireNode
	Next *wireNode

	// SpecialStmt
	SpecialKind uint8
}

type wireCtx struct {
	Line   string
	LineNo int
	Column int
}

// SaveAST encodes prog as cbor and writes it to path.
func SaveAST(path string, prog *ast.Program) error {
	data, err := cbor.Marshal(toWire(prog))
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// LoadAST decodes a tree previously written by SaveAST.
func LoadAST(path string) (*ast.Program, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var w wireNode
	if err := cbor.Unmarshal(data, &w); err != nil {
		return nil, err
	}
	return fromWire(&w).(*ast.Program), nil
}

func wireCtxOf(n ast.Node) wireCtx {
	c := n.Tok().Ctx
	return wireCtx{Line: c.Line, LineNo: c.LineNo, Column: c.Column}
}

func toWireList(params []*ast.VarDecl) []*wireNode {
	out := make([]*wireNode, len(params))
	for i, p := range params {
		out[i] = toWire(p)
	}
	return out
}

// toWireType and toWireIfStmt exist because their callers hold a
// concrete (possibly nil) pointer type: converting a nil *ast.Type or
// *ast.IfStmt to the ast.Node interface produces a non-nil interface
// value, so the nil check has to happen before that conversion, not
// inside toWire.
func toWireType(t *ast.Type) *wireNode {
	if t == nil {
		return nil
	}
	return toWire(t)
}

func toWireIfStmt(n *ast.IfStmt) *wireNode {
	if n == nil {
		return nil
	}
	return toWire(n)
}

func toWire(n ast.Node) *wireNode {
	if n == nil {
		return nil
	}

	switch v := n.(type) {
	case *ast.Program:
		return &wireNode{Kind: "Program", Ctx: wireCtxOf(v), Name: v.Name, RetType: toWireType(v.RetType), Params: toWireList(v.Params), Body: toWire(v.Body)}
	case *ast.FuncDef:
		return &wireNode{Kind: "FuncDef", Ctx: wireCtxOf(v), Name: v.Name, RetType: toWireType(v.RetType), Params: toWireList(v.Params), Body: toWire(v.Body)}
	case *ast.Block:
		w := &wireNode{Kind: "Block", Ctx: wireCtxOf(v)}
		for _, fd := range v.Functions {
			w.Functions = append(w.Functions, toWire(fd))
		}
		for _, s := range v.Statements {
			w.Statements = append(w.Statements, toWire(s))
		}
		return w
	case *ast.VarDecl:
		return &wireNode{Kind: "VarDecl", Ctx: wireCtxOf(v), Var: toWire(v.Var), Type: toWireType(v.Type)}
	case *ast.Var:
		return &wireNode{Kind: "Var", Ctx: wireCtxOf(v), Name: v.Name}
	case *ast.Type:
		return &wireNode{Kind: "Type", Ctx: wireCtxOf(v), Name: v.Name}
	case *ast.Literal:
		return &wireNode{Kind: "Literal", Ctx: wireCtxOf(v), LitKind: uint8(v.Kind), Int: v.Int, Real: v.Real, Str: v.Str}
	case *ast.UnaryOp:
		return &wireNode{Kind: "UnaryOp", Ctx: wireCtxOf(v), Op: uint8(v.Op), Expr: toWire(v.Expr)}
	case *ast.Assignment:
		return &wireNode{Kind: "Assignment", Ctx: wireCtxOf(v), Left: toWire(v.Left), Op: uint8(v.Op), Right: toWire(v.Right)}
	case *ast.BinaryOp:
		return &wireNode{Kind: "BinaryOp", Ctx: wireCtxOf(v), Left: toWire(v.Left), Op: uint8(v.Op), Right: toWire(v.Right)}
	case *ast.FuncCall:
		w := &wireNode{Kind: "FuncCall", Ctx: wireCtxOf(v), Name: v.Name}
		for _, a := range v.Args {
			w.Args = append(w.Args, toWire(a))
		}
		return w
	case *ast.IfStmt:
		return &wireNode{Kind: "IfStmt", Ctx: wireCtxOf(v), Cond: toWire(v.Cond), Body: toWire(v.Body), Next: toWireIfStmt(v.Next)}
	case *ast.WhileStmt:
		return &wireNode{Kind: "WhileStmt", Ctx: wireCtxOf(v), Cond: toWire(v.Cond), Body: toWire(v.Body)}
	case *ast.SpecialStmt:
		w := &wireNode{Kind: "SpecialStmt", Ctx: wireCtxOf(v), SpecialKind: uint8(v.Kind)}
		for _, a := range v.Args {
			w.Args = append(w.Args, toWire(a))
		}
		return w
	}
	return nil
}

func tokenOf(w *wireNode, kind token.Kind) token.Token {
	return token.Token{Kind: kind, Ctx: token.SourceContext{Line: w.Ctx.Line, LineNo: w.Ctx.LineNo, Column: w.Ctx.Column}}
}

func fromWireVarDecls(ws []*wireNode) []*ast.VarDecl {
	out := make([]*ast.VarDecl, len(ws))
	for i, w := range ws {
		out[i] = fromWire(w).(*ast.VarDecl)
	}
	return out
}

func fromWireType(w *wireNode) *ast.Type {
	if w == nil {
		return nil
	}
	return fromWire(w).(*ast.Type)
}

func fromWireBlock(w *wireNode) *ast.Block {
	return fromWire(w).(*ast.Block)
}

func fromWireExpr(w *wireNode) ast.Expr {
	if w == nil {
		return nil
	}
	return fromWire(w).(ast.Expr)
}

func fromWire(w *wireNode) ast.Node {
	if w == nil {
		return nil
	}

	switch w.Kind {
	case "Program":
		fd := ast.NewFuncDef(tokenOf(w, token.PROGRAM), w.Name, fromWireType(w.RetType), fromWireVarDecls(w.Params), fromWireBlock(w.Body))
		return ast.NewProgram(fd)
	case "FuncDef":
		return ast.NewFuncDef(tokenOf(w, token.DEF), w.Name, fromWireType(w.RetType), fromWireVarDecls(w.Params), fromWireBlock(w.Body))
	case "Block":
		b := ast.NewBlock(tokenOf(w, token.INDENT))
		for _, fd := range w.Functions {
			b.Functions = append(b.Functions, fromWire(fd).(*ast.FuncDef))
		}
		for _, s := range w.Statements {
			b.Statements = append(b.Statements, fromWire(s).(ast.Stmt))
		}
		return b
	case "VarDecl":
		vd := ast.NewVarDecl(fromWire(w.Var).(*ast.Var))
		vd.Type = fromWireType(w.Type)
		return vd
	case "Var":
		return ast.NewVar(tokenOf(w, token.IDENT), w.Name)
	case "Type":
		return ast.NewType(tokenOf(w, token.IDENT), w.Name)
	case "Literal":
		tok := tokenOf(w, token.LITERAL)
		tok.LitKind = token.LiteralKind(w.LitKind)
		tok.IntVal, tok.RealVal, tok.StrVal = w.Int, w.Real, w.Str
		return ast.NewLiteral(tok)
	case "UnaryOp":
		return ast.NewUnaryOp(tokenOf(w, token.Kind(w.Op)), fromWireExpr(w.Expr))
	case "Assignment":
		return ast.NewAssignment(fromWireExpr(w.Left), tokenOf(w, token.Kind(w.Op)), fromWireExpr(w.Right))
	case "BinaryOp":
		return ast.NewBinaryOp(fromWireExpr(w.Left), tokenOf(w, token.Kind(w.Op)), fromWireExpr(w.Right))
	case "FuncCall":
		args := make([]ast.Expr, len(w.Args))
		for i, a := range w.Args {
			args[i] = fromWireExpr(a)
		}
		return ast.NewFuncCall(tokenOf(w, token.IDENT), w.Name, args)
	case "IfStmt":
		node := ast.NewIfStmt(tokenOf(w, token.IF), fromWireExpr(w.Cond), fromWireBlock(w.Body))
		if w.Next != nil {
			node.Next = fromWire(w.Next).(*ast.IfStmt)
		}
		return node
	case "WhileStmt":
		return ast.NewWhileStmt(tokenOf(w, token.WHILE), fromWireExpr(w.Cond), fromWireBlock(w.Body))
	case "SpecialStmt":
		node := ast.NewSpecialStmt(tokenOf(w, token.RETURN), ast.SpecialKind(w.SpecialKind))
		for _, a := range w.Args {
			node.Args = append(node.Args, fromWireExpr(a))
		}
		return node
	}
	return nil
}
