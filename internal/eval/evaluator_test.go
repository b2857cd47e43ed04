package eval_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tala-lang/tala/internal/analyzer"
	"github.com/tala-lang/tala/internal/eval"
	"github.com/tala-lang/tala/internal/lexer"
	"github.com/tala-lang/tala/internal/parser"
)

// run tokenizes, parses, analyzes and evaluates src end to end, returning
// the program's exit code and whatever it printed.
func run(t *testing.T, src string, progArgs []string, stdin string) (int64, string) {
	t.Helper()
	lx := lexer.New(strings.NewReader(src))
	prog, err := parser.Parse(lx)
	require.NoError(t, err)
	require.NoError(t, analyzer.Analyze(prog))

	var out bytes.Buffer
	frontend := eval.NewStdFrontend(progArgs, strings.NewReader(stdin), &out)
	code, err := eval.Interpret(prog, frontend)
	require.NoError(t, err)
	return code, out.String()
}

func TestInterpretEmptyProgramPass(t *testing.T) {
	code, _ := run(t, "program main() -> int:\n    return pass\n", nil, "")
	assert.EqualValues(t, 0, code)
}

func TestInterpretProgramArgSquared(t *testing.T) {
	code, _ := run(t, "program main(n: int) -> int:\n    return n * n\n", []string{"7"}, "")
	assert.EqualValues(t, 49, code)
}

func TestInterpretFactorialRecursion(t *testing.T) {
	src := "program main(n:int) -> int:\n" +
		"    def fact(n:int) -> int:\n" +
		"        if n <= 1:\n            return 1\n" +
		"        else:\n            return n * fact(n - 1)\n" +
		"    return fact(n)\n"
	code, _ := run(t, src, []string{"5"}, "")
	assert.EqualValues(t, 120, code)
}

func TestInterpretOperatorPrecedence(t *testing.T) {
	code, _ := run(t, "program main() -> int:\n    var x := 2 + 3 * 4\n    return x\n", nil, "")
	assert.EqualValues(t, 14, code)
}

func TestInterpretPrintNoAutomaticSeparators(t *testing.T) {
	_, out := run(t, "program main() -> int:\n    print 'a', 1, 'b'\n    return 0\n", nil, "")
	assert.Equal(t, "a1b", out)
}

func TestInterpretReadCoercesToDeclaredType(t *testing.T) {
	code, _ := run(t, "program main() -> int:\n    var n:int\n    read n\n    return n\n", nil, "41")
	assert.EqualValues(t, 41, code)
}

func TestInterpretReadSpansMultipleReadStatements(t *testing.T) {
	src := "program main() -> int:\n" +
		"    var a:int\n    var b:int\n    var c:int\n" +
		"    read a, b\n    read c\n    return a + b + c\n"
	code, _ := run(t, src, nil, "1 2 3")
	assert.EqualValues(t, 6, code)
}

func TestInterpretAnyRealTypeTracksLastAssignment(t *testing.T) {
	src := "program main() -> int:\n" +
		"    var v\n" +
		"    v ~= 'hello'\n" +
		"    v ~= 3\n" +
		"    return v\n"
	code, _ := run(t, src, nil, "")
	assert.EqualValues(t, 3, code)
}

func TestInterpretIntDivisionByZeroIsFatal(t *testing.T) {
	lx := lexer.New(strings.NewReader("program main() -> int:\n    return 1 // 0\n"))
	prog, err := parser.Parse(lx)
	require.NoError(t, err)
	require.NoError(t, analyzer.Analyze(prog))

	frontend := eval.NewStdFrontend(nil, strings.NewReader(""), &bytes.Buffer{})
	_, err = eval.Interpret(prog, frontend)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "division")
}

func TestInterpretBreakExitsNearestLoopOnly(t *testing.T) {
	src := "program main() -> int:\n" +
		"    var total := 0\n" +
		"    var i := 0\n" +
		"    while i < 5:\n" +
		"        if i = 3:\n            break\n" +
		"        total := total + 1\n" +
		"        i := i + 1\n" +
		"    return total\n"
	code, _ := run(t, src, nil, "")
	assert.EqualValues(t, 3, code)
}

func TestInterpretWhileLoopContinue(t *testing.T) {
	src := "program main() -> int:\n" +
		"    var total := 0\n" +
		"    var i := 0\n" +
		"    while i < 5:\n" +
		"        i := i + 1\n" +
		"        if i = 3:\n            continue\n" +
		"        total := total + i\n" +
		"    return total\n"
	code, _ := run(t, src, nil, "")
	assert.EqualValues(t, 12, code) // 1+2+4+5, skipping 3
}

func TestInterpretIsDeterministicWithoutRead(t *testing.T) {
	src := "program main() -> int:\n    return 2 + 3 * 4\n"
	first, _ := run(t, src, nil, "")
	second, _ := run(t, src, nil, "")
	assert.Equal(t, first, second)
}
