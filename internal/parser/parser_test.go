package parser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tala-lang/tala/internal/ast"
	"github.com/tala-lang/tala/internal/lexer"
	"github.com/tala-lang/tala/internal/token"
)

func parseSrc(t *testing.T, src string) *ast.Program {
	t.Helper()
	lx := lexer.New(strings.NewReader(src))
	prog, err := Parse(lx)
	require.NoError(t, err)
	return prog
}

func TestParseMinimalProgram(t *testing.T) {
	prog := parseSrc(t, "program main() -> int:\n    return pass\n")
	assert.Equal(t, "main", prog.Name)
	require.Len(t, prog.Body.Statements, 1)
	ret, ok := prog.Body.Statements[0].(*ast.SpecialStmt)
	require.True(t, ok)
	assert.Equal(t, ast.SpecialReturn, ret.Kind)
	assert.Empty(t, ret.Args)
}

func TestParseOperatorPrecedence(t *testing.T) {
	// 2 + 3 * 4 must parse as 2 + (3 * 4): the outermost node is PLUS.
	prog := parseSrc(t, "program main() -> int:\n    var x := 2 + 3 * 4\n    return x\n")
	assign := prog.Body.Statements[1].(*ast.Assignment)
	bin := assign.Right.(*ast.BinaryOp)
	assert.Equal(t, token.PLUS, bin.Op)
	rhs := bin.Right.(*ast.BinaryOp)
	assert.Equal(t, token.MUL, rhs.Op)
}

func TestParseLeftAssociativity(t *testing.T) {
	// 10 - 3 - 2 must parse as (10 - 3) - 2.
	prog := parseSrc(t, "program main() -> int:\n    return 10 - 3 - 2\n")
	ret := prog.Body.Statements[0].(*ast.SpecialStmt)
	top := ret.Args[0].(*ast.BinaryOp)
	assert.Equal(t, token.MINUS, top.Op)
	left := top.Left.(*ast.BinaryOp)
	assert.Equal(t, token.MINUS, left.Op)
	_, leftIsLiteral := left.Left.(*ast.Literal)
	assert.True(t, leftIsLiteral)
}

func TestParseIfElifElseChain(t *testing.T) {
	src := "program main() -> int:\n" +
		"    if 1:\n        return 1\n" +
		"    elif 2:\n        return 2\n" +
		"    else:\n        return 3\n"
	prog := parseSrc(t, src)
	ifStmt := prog.Body.Statements[0].(*ast.IfStmt)
	require.NotNil(t, ifStmt.Cond)
	require.NotNil(t, ifStmt.Next)
	require.NotNil(t, ifStmt.Next.Cond)
	require.NotNil(t, ifStmt.Next.Next)
	assert.Nil(t, ifStmt.Next.Next.Cond)
	assert.Nil(t, ifStmt.Next.Next.Next)
}

func TestParseSharedParamTypeTail(t *testing.T) {
	prog := parseSrc(t, "program main(a, b: int, c: string) -> int:\n    return 0\n")
	require.Len(t, prog.Params, 3)
	assert.Equal(t, "int", prog.Params[0].Type.Name)
	assert.Equal(t, "int", prog.Params[1].Type.Name)
	assert.Equal(t, "string", prog.Params[2].Type.Name)
}

func TestParseVarStatementFlattensDecls(t *testing.T) {
	// `var x, y := 1` declares x and y, and assigns only y.
	prog := parseSrc(t, "program main() -> int:\n    var x, y := 1\n    return 0\n")
	require.Len(t, prog.Body.Statements, 3)
	_, ok0 := prog.Body.Statements[0].(*ast.VarDecl)
	assert.True(t, ok0)
	_, ok1 := prog.Body.Statements[1].(*ast.VarDecl)
	assert.True(t, ok1)
	_, ok2 := prog.Body.Statements[2].(*ast.Assignment)
	assert.True(t, ok2)
}

func TestParseNestedFuncDefHoistedIntoFunctions(t *testing.T) {
	src := "program main() -> int:\n" +
		"    def helper() -> int:\n        return 1\n" +
		"    return helper()\n"
	prog := parseSrc(t, src)
	require.Len(t, prog.Body.Functions, 1)
	assert.Equal(t, "helper", prog.Body.Functions[0].Name)
	require.Len(t, prog.Body.Statements, 1)
}

func TestParseSyntaxErrorUnexpectedToken(t *testing.T) {
	lx := lexer.New(strings.NewReader("program main() -> int:\n    return )\n"))
	_, err := Parse(lx)
	require.Error(t, err)
}

func TestParseDeeplyNestedBlockClosesOnEOF(t *testing.T) {
	src := "program main() -> int:\n" +
		"    if 1:\n" +
		"        if 1:\n" +
		"            return 1\n"
	prog := parseSrc(t, src)
	require.NotNil(t, prog)
}
