package main

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tala-lang/tala/internal/lexer"
	"github.com/tala-lang/tala/internal/parser"
)

func TestSaveAndLoadASTRoundTrips(t *testing.T) {
	src := "program main(n: int) -> int:\n" +
		"    def square(n: int) -> int:\n" +
		"        return n * n\n" +
		"    var doubled := n + n\n" +
		"    if doubled > 10:\n" +
		"        return square(doubled)\n" +
		"    else:\n" +
		"        return doubled\n"

	lx := lexer.New(strings.NewReader(src))
	prog, err := parser.Parse(lx)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "prog.ast.cbor")
	require.NoError(t, SaveAST(path, prog))

	loaded, err := LoadAST(path)
	require.NoError(t, err)

	assert.Equal(t, prog.Name, loaded.Name)
	assert.Equal(t, prog.RetType.Name, loaded.RetType.Name)
	require.Len(t, loaded.Params, len(prog.Params))
	assert.Equal(t, prog.Params[0].Var.Name, loaded.Params[0].Var.Name)

	require.Len(t, loaded.Body.Functions, 1)
	assert.Equal(t, "square", loaded.Body.Functions[0].Name)
	require.Len(t, loaded.Body.Statements, 3)
}

func TestLoadASTMissingFileFails(t *testing.T) {
	_, err := LoadAST(filepath.Join(t.TempDir(), "does-not-exist.cbor"))
	assert.Error(t, err)
}
