package debugger_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tala-lang/tala/internal/analyzer"
	"github.com/tala-lang/tala/internal/debugger"
	"github.com/tala-lang/tala/internal/eval"
	"github.com/tala-lang/tala/internal/lexer"
	"github.com/tala-lang/tala/internal/parser"
)

// runUnderDebugger drives src through the full pipeline with an interactive
// Debugger frontend fed the given command script, one command per line.
func runUnderDebugger(t *testing.T, src, commands string) (int64, string) {
	t.Helper()
	lx := lexer.New(strings.NewReader(src))
	prog, err := parser.Parse(lx)
	require.NoError(t, err)
	require.NoError(t, analyzer.Analyze(prog))

	var out bytes.Buffer
	dbg := debugger.New(nil, strings.NewReader(commands), &out)
	code, err := eval.Interpret(prog, dbg)
	require.NoError(t, err)
	return code, out.String()
}

func TestDebuggerFirstStopThenContinue(t *testing.T) {
	src := "program main() -> int:\n" +
		"    var x := 1\n" +
		"    x := 2\n" +
		"    return x\n"
	// step once (default), then continue to completion.
	code, out := runUnderDebugger(t, src, "continue\n")
	assert.EqualValues(t, 2, code)
	assert.Contains(t, out, "In function <main>")
}

func TestDebuggerPrintReportsCurrentScopeValue(t *testing.T) {
	src := "program main() -> int:\n" +
		"    var x := 41\n" +
		"    x := x + 1\n" +
		"    return x\n"
	// The first stop lands on the `var x := 41` line, before x exists in
	// scope; step once to reach `x := x + 1` (x is 41 there, still
	// unincremented), print it, then run to completion.
	code, out := runUnderDebugger(t, src, "step\nprint x\ncontinue\n")
	assert.EqualValues(t, 42, code)
	assert.Contains(t, out, "x: 41")
}

func TestDebuggerNextStaysInCurrentFrame(t *testing.T) {
	src := "program main() -> int:\n" +
		"    def helper() -> int:\n        return 9\n" +
		"    var x := helper()\n" +
		"    return x\n"
	// `next` on the first line should not stop inside helper(); it should
	// land back on `return x`.
	code, out := runUnderDebugger(t, src, "next\ncontinue\n")
	assert.EqualValues(t, 9, code)
	assert.NotContains(t, out, "In function <helper>")
}

func TestDebuggerUnknownCommandSuggestsClosestMatch(t *testing.T) {
	src := "program main() -> int:\n    return 0\n"
	_, out := runUnderDebugger(t, src, "contnue\ncontinue\n")
	assert.Contains(t, out, "Unknown command")
	assert.Contains(t, out, `did you mean "continue"`)
}

func TestDebuggerSingleLetterPrefixResolvesUniquely(t *testing.T) {
	// Every command in the table starts with a distinct letter, so a
	// single-letter abbreviation like "n" for "next" always resolves
	// without ambiguity.
	src := "program main() -> int:\n" +
		"    def helper() -> int:\n        return 9\n" +
		"    var x := helper()\n" +
		"    return x\n"
	code, out := runUnderDebugger(t, src, "n\nc\n")
	assert.EqualValues(t, 9, code)
	assert.NotContains(t, out, "Ambiguous")
	assert.NotContains(t, out, "In function <helper>")
}
