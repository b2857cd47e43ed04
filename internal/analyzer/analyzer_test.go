package analyzer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tala-lang/tala/internal/lexer"
	"github.com/tala-lang/tala/internal/parser"
)

func analyzeSrc(t *testing.T, src string) error {
	t.Helper()
	lx := lexer.New(strings.NewReader(src))
	prog, err := parser.Parse(lx)
	require.NoError(t, err)
	return Analyze(prog)
}

func TestAnalyzeValidProgram(t *testing.T) {
	err := analyzeSrc(t, "program main(n: int) -> int:\n    return n * n\n")
	assert.NoError(t, err)
}

func TestAnalyzeUndeclaredIdentifier(t *testing.T) {
	err := analyzeSrc(t, "program main() -> int:\n    return y\n")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not declared")
}

func TestAnalyzeDuplicateIdentifierInScope(t *testing.T) {
	err := analyzeSrc(t, "program main() -> int:\n    var x := 1\n    var x := 2\n    return x\n")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate identifier")
}

func TestAnalyzeTypeErrorAssignIntLiteralToString(t *testing.T) {
	err := analyzeSrc(t, "program main() -> int:\n    var s:string := 3\n    return 0\n")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot assign int to string")
}

func TestAnalyzeBreakOutsideLoopIsError(t *testing.T) {
	err := analyzeSrc(t, "program main() -> int:\n    break\n    return 0\n")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "outside a loop")
}

func TestAnalyzeBreakInsideLoopIsFine(t *testing.T) {
	err := analyzeSrc(t, "program main() -> int:\n    while 1:\n        break\n    return 0\n")
	assert.NoError(t, err)
}

func TestAnalyzeMutualForwardReferenceWithinBlock(t *testing.T) {
	src := "program main() -> int:\n" +
		"    def isEven(n:int) -> int:\n" +
		"        if n = 0:\n            return 1\n" +
		"        else:\n            return isOdd(n-1)\n" +
		"    def isOdd(n:int) -> int:\n" +
		"        if n = 0:\n            return 0\n" +
		"        else:\n            return isEven(n-1)\n" +
		"    return isEven(4)\n"
	assert.NoError(t, analyzeSrc(t, src))
}

func TestAnalyzeArityMismatch(t *testing.T) {
	src := "program main() -> int:\n" +
		"    def f(a:int) -> int:\n        return a\n" +
		"    return f(1, 2)\n"
	err := analyzeSrc(t, src)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires 1 argument")
}

func TestAnalyzeProgramReturnTypeMustBeInt(t *testing.T) {
	err := analyzeSrc(t, "program main() -> string:\n    return pass\n")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be int")
}

func TestAnalyzeVarDeclVoidRejected(t *testing.T) {
	err := analyzeSrc(t, "program main() -> int:\n    var x:void\n    return 0\n")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "void")
}

func TestAnalyzeSuggestsNearMissIdentifier(t *testing.T) {
	err := analyzeSrc(t, "program main() -> int:\n    var count := 1\n    return cout\n")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "did you mean")
}
