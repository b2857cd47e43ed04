// Package scope implements the nested lexical environments shared by the
// analyzer and the evaluator (spec.md §3, §4.3): a mapping from identifier
// to symbol, a parent link, and the inherited loop/return-type context.
package scope

import (
	"github.com/tala-lang/tala/internal/ast"
	"github.com/tala-lang/tala/internal/types"
)

// Symbol is the tagged-variant symbol table entry: TypeSymbol, VarSymbol or
// FuncSymbol.
type Symbol interface {
	ID() string
}

type TypeSymbol struct {
	Name string
	Type types.Type
}

func (s *TypeSymbol) ID() string { return s.Name }

// VarSymbol holds a variable's declared type and its current runtime
// value. The analyzer only ever reads DeclType; the evaluator reads and
// writes Value.
type VarSymbol struct {
	Name      string
	DeclType  types.Type
	Value     types.Value
}

func (s *VarSymbol) ID() string { return s.Name }

// FuncSymbol records a function's signature and unevaluated body, shared
// verbatim between analyzer and evaluator (both just walk Body).
type FuncSymbol struct {
	Name    string
	RetType types.Type
	Params  []*ast.VarDecl
	Body    *ast.Block
}

func (s *FuncSymbol) ID() string { return s.Name }

// Scope is a single lexical environment. Global() seeds the five built-in
// TypeSymbols (spec.md §3); every other scope is created via New with an
// enclosing parent.
type Scope struct {
	symbols        map[string]Symbol
	Parent         *Scope
	InsideLoop     bool
	RetType        types.Type
}

// builtinTypeNames lists the five seeded TypeSymbols and the Type each one
// names.
var builtinTypeNames = []struct {
	name string
	typ  types.Type
}{
	{"int", types.Int},
	{"real", types.Real},
	{"string", types.String},
	{"any", types.Any},
	{"void", types.Void},
}

// Global creates a fresh global scope seeded with the built-in type
// registry. It deliberately avoids a process-wide singleton (spec.md §9):
// every pipeline run gets its own.
func Global() *Scope {
	s := &Scope{symbols: make(map[string]Symbol), RetType: types.Any}
	for _, b := range builtinTypeNames {
		s.Insert(&TypeSymbol{Name: b.name, Type: b.typ})
	}
	return s
}

// Option configures a child scope's inherited fields when the default
// (inherit from parent) is not wanted.
type Option func(*Scope)

// Loop marks the child scope as being inside a loop regardless of its
// parent's state (spec.md §4.3: WhileStmt's body scope).
func Loop(v bool) Option { return func(s *Scope) { s.InsideLoop = v } }

// WithRetType overrides the inherited expected return type (spec.md §4.3:
// a function body's scope).
func WithRetType(t types.Type) Option { return func(s *Scope) { s.RetType = t } }

// New creates a child scope of parent, inheriting InsideLoop and RetType
// unless overridden by opts.
func New(parent *Scope, opts ...Option) *Scope {
	s := &Scope{
		symbols:    make(map[string]Symbol),
		Parent:     parent,
		InsideLoop: parent.InsideLoop,
		RetType:    parent.RetType,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Insert binds sym in this scope, overwriting any prior binding of the
// same id. Uniqueness is enforced by callers via Lookup(id, true) before
// inserting (spec.md §4.3).
func (s *Scope) Insert(sym Symbol) {
	s.symbols[sym.ID()] = sym
}

// Lookup walks the parent chain (unless currentScopeOnly) and returns nil
// if id is bound nowhere, matching pyscal's None-returning lookup
// (spec.md §9): callers must handle a missing symbol themselves rather
// than relying on a panic.
func (s *Scope) Lookup(id string, currentScopeOnly bool) Symbol {
	if sym, ok := s.symbols[id]; ok {
		return sym
	}
	if currentScopeOnly || s.Parent == nil {
		return nil
	}
	return s.Parent.Lookup(id, false)
}

// Names returns every identifier bound directly in this scope (not
// ancestors), in no particular order; AllVisibleNames builds on it for the
// analyzer's "did you mean" suggestion.
func (s *Scope) Names() []string {
	names := make([]string, 0, len(s.symbols))
	for name := range s.symbols {
		names = append(names, name)
	}
	return names
}

// AllVisibleNames walks the full parent chain, used for fuzzy-suggesting
// an identifier the user probably meant.
func (s *Scope) AllVisibleNames() []string {
	var names []string
	for cur := s; cur != nil; cur = cur.Parent {
		names = append(names, cur.Names()...)
	}
	return names
}
