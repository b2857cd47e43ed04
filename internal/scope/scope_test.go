package scope

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tala-lang/tala/internal/types"
)

func TestGlobalSeedsBuiltinTypes(t *testing.T) {
	g := Global()
	for _, name := range []string{"int", "real", "string", "any", "void"} {
		sym := g.Lookup(name, true)
		require.NotNil(t, sym, "builtin %q", name)
		_, ok := sym.(*TypeSymbol)
		assert.True(t, ok)
	}
	assert.Equal(t, types.Any, g.RetType)
	assert.False(t, g.InsideLoop)
}

func TestLookupWalksParentChain(t *testing.T) {
	g := Global()
	g.Insert(&VarSymbol{Name: "x", DeclType: types.Int})

	child := New(g)
	assert.NotNil(t, child.Lookup("x", false))
	assert.Nil(t, child.Lookup("x", true))
}

func TestLookupMissingReturnsNil(t *testing.T) {
	g := Global()
	assert.Nil(t, g.Lookup("nope", false))
}

func TestInsertShadowsParentBinding(t *testing.T) {
	g := Global()
	g.Insert(&VarSymbol{Name: "x", DeclType: types.Int})
	child := New(g)
	child.Insert(&VarSymbol{Name: "x", DeclType: types.String})

	sym := child.Lookup("x", false).(*VarSymbol)
	assert.Equal(t, types.String, sym.DeclType)

	parentSym := g.Lookup("x", false).(*VarSymbol)
	assert.Equal(t, types.Int, parentSym.DeclType)
}

func TestNewInheritsInsideLoopAndRetTypeByDefault(t *testing.T) {
	g := Global()
	g.InsideLoop = true
	g.RetType = types.Int

	child := New(g)
	assert.True(t, child.InsideLoop)
	assert.Equal(t, types.Int, child.RetType)
}

func TestLoopOptionOverridesInheritedValue(t *testing.T) {
	g := Global()
	g.InsideLoop = false

	child := New(g, Loop(true))
	assert.True(t, child.InsideLoop)
	assert.False(t, g.InsideLoop)
}

func TestWithRetTypeOptionOverridesInheritedValue(t *testing.T) {
	g := Global()
	g.RetType = types.Int

	child := New(g, WithRetType(types.String))
	assert.Equal(t, types.String, child.RetType)
	assert.Equal(t, types.Int, g.RetType)
}

func TestNamesOnlyListsOwnScope(t *testing.T) {
	g := Global()
	g.Insert(&VarSymbol{Name: "outer", DeclType: types.Int})
	child := New(g)
	child.Insert(&VarSymbol{Name: "inner", DeclType: types.Int})

	assert.Contains(t, child.Names(), "inner")
	assert.NotContains(t, child.Names(), "outer")
}

func TestAllVisibleNamesWalksFullChain(t *testing.T) {
	g := Global()
	g.Insert(&VarSymbol{Name: "outer", DeclType: types.Int})
	child := New(g)
	child.Insert(&VarSymbol{Name: "inner", DeclType: types.Int})

	all := child.AllVisibleNames()
	assert.Contains(t, all, "inner")
	assert.Contains(t, all, "outer")
	assert.Contains(t, all, "int") // builtin type symbol from the global scope
}
