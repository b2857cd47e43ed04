// Package ast defines the tree-shaped intermediate representation
// produced by the parser (spec.md §3). The analyzer and evaluator each
// walk it with a type switch over the node types below.
package ast

import (
	"github.com/tala-lang/tala/internal/token"
)

// Node is the tagged-variant root: every tree node references the token it
// originated from, for diagnostics.
type Node interface {
	Tok() token.Token
}

// Stmt is any node that can appear in a Block's statement list.
type Stmt interface {
	Node
	stmtNode()
}

// Expr is any node that produces a value when evaluated.
type Expr interface {
	Node
	exprNode()
}

type base struct {
	Token token.Token
}

func (b base) Tok() token.Token { return b.Token }

// FuncDef is a named function: its signature (name, optional return type,
// parameters) and its body. Program embeds FuncDef directly — spec.md §3
// treats "program" as a FuncDef with a fixed name and an enforced int
// return type, not a distinct node shape.
type FuncDef struct {
	base
	Name    string
	RetType *Type // nil when omitted
	Params  []*VarDecl
	Body    *Block
}

func (*FuncDef) stmtNode() {}

// Program is the root node: a FuncDef for the entry point plus EOF was
// already consumed by the parser before returning it.
type Program struct {
	*FuncDef
}

// Block is an indentation-delimited sequence of nested function
// definitions and statements. Invariant (spec.md §3): Functions are
// installed before Statements execute.
type Block struct {
	base
	Functions []*FuncDef
	Statements []Stmt
}

// VarDecl declares a variable with an optional type annotation; Type is
// nil when the declaration relies on the default ("any").
type VarDecl struct {
	base
	Var  *Var
	Type *Type
}

func (*VarDecl) stmtNode() {}

// Var is an identifier reference used as an expression or an assignment
// target.
type Var struct {
	base
	Name string
}

func (*Var) exprNode() {}

// Type names a type annotation; resolved against the scope's TypeSymbols
// during analysis.
type Type struct {
	base
	Name string
}

func (*Type) exprNode() {} // visited like an expression to resolve its name

// Literal carries an int/real/string constant straight from its token.
type Literal struct {
	base
	Kind token.LiteralKind
	Int  int64
	Real float64
	Str  string
}

func (*Literal) exprNode() {}

// UnaryOp is a prefix operator applied to one operand: +, -, ~ (cast), or
// NOT.
type UnaryOp struct {
	base
	Op   token.Kind
	Expr Expr
}

func (*UnaryOp) exprNode() {}

// BinaryOp is an infix operator over two operands. Assignment is a
// BinaryOp whose Op is ASSIGN or CASTASSIGN and whose Left is always a
// *Var (spec.md §3); it is also a Stmt, since an assignment is one of the
// statement forms the parser produces.
type BinaryOp struct {
	base
	Left  Expr
	Op    token.Kind
	Right Expr
}

func (*BinaryOp) exprNode() {}

type Assignment struct {
	*BinaryOp
}

func (*Assignment) stmtNode() {}

// FuncCall is both an expression (its return value) and — when used
// bare — a statement, per spec.md's grammar.
type FuncCall struct {
	base
	Name string
	Args []Expr
}

func (*FuncCall) exprNode() {}
func (*FuncCall) stmtNode() {}

// IfStmt chains IF -> ELIF* -> [ELSE] as a linked list via Next. Cond is
// nil on the ELSE tail.
type IfStmt struct {
	base
	Cond Expr // nil for an ELSE tail
	Body *Block
	Next *IfStmt
}

func (*IfStmt) stmtNode() {}

// WhileStmt is a single condition/body loop.
type WhileStmt struct {
	base
	Cond Expr
	Body *Block
}

func (*WhileStmt) stmtNode() {}

// SpecialKind distinguishes the five built-in statement forms that are not
// user-definable functions (spec.md glossary: "Special statement").
type SpecialKind uint8

const (
	SpecialReturn SpecialKind = iota
	SpecialBreak
	SpecialContinue
	SpecialPrint
	SpecialRead
)

// SpecialStmt covers RETURN, BREAK, CONTINUE, PRINT and READ. Args holds
// the return expression (0 or 1 elements), nothing for BREAK/CONTINUE, or
// the ordered PRINT/READ argument list.
type SpecialStmt struct {
	base
	Kind SpecialKind
	Args []Expr
}

func (*SpecialStmt) stmtNode() {}

// Constructors set the embedded base so call sites read like the grammar
// they implement, matching the teacher's one-constructor-per-node-kind
// convention (runtime/parser/tree.go).

func NewFuncDef(tok token.Token, name string, ret *Type, params []*VarDecl, body *Block) *FuncDef {
	return &FuncDef{base: base{tok}, Name: name, RetType: ret, Params: params, Body: body}
}

func NewProgram(fd *FuncDef) *Program { return &Program{FuncDef: fd} }

func NewBlock(tok token.Token) *Block { return &Block{base: base{tok}} }

func NewVarDecl(v *Var) *VarDecl { return &VarDecl{base: base{v.Token}, Var: v} }

func NewVar(tok token.Token, name string) *Var { return &Var{base: base{tok}, Name: name} }

func NewType(tok token.Token, name string) *Type { return &Type{base: base{tok}, Name: name} }

func NewLiteral(tok token.Token) *Literal {
	return &Literal{base: base{tok}, Kind: tok.LitKind, Int: tok.IntVal, Real: tok.RealVal, Str: tok.StrVal}
}

func NewUnaryOp(tok token.Token, expr Expr) *UnaryOp {
	return &UnaryOp{base: base{tok}, Op: tok.Kind, Expr: expr}
}

func NewBinaryOp(left Expr, tok token.Token, right Expr) *BinaryOp {
	return &BinaryOp{base: base{tok}, Left: left, Op: tok.Kind, Right: right}
}

func NewAssignment(left Expr, tok token.Token, right Expr) *Assignment {
	return &Assignment{BinaryOp: NewBinaryOp(left, tok, right)}
}

func NewFuncCall(tok token.Token, name string, args []Expr) *FuncCall {
	return &FuncCall{base: base{tok}, Name: name, Args: args}
}

func NewIfStmt(tok token.Token, cond Expr, body *Block) *IfStmt {
	return &IfStmt{base: base{tok}, Cond: cond, Body: body}
}

func NewWhileStmt(tok token.Token, cond Expr, body *Block) *WhileStmt {
	return &WhileStmt{base: base{tok}, Cond: cond, Body: body}
}

func NewSpecialStmt(tok token.Token, kind SpecialKind) *SpecialStmt {
	return &SpecialStmt{base: base{tok}, Kind: kind}
}
