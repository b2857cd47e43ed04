package diag

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tala-lang/tala/internal/token"
)

func TestKindString(t *testing.T) {
	assert.Equal(t, "SyntaxError", SyntaxError.String())
	assert.Equal(t, "SemanticError", SemanticError.String())
	assert.Equal(t, "TypeError", TypeError.String())
}

func TestNewSyntaxRendersCaretUnderColumn(t *testing.T) {
	ctx := token.SourceContext{Line: "var x := )", LineNo: 3, Column: 10}
	err := NewSyntax("unexpected token", ctx)

	msg := err.Error()
	assert.Contains(t, msg, "Line 3, column 10:")
	assert.Contains(t, msg, "var x := )")
	assert.Contains(t, msg, "SyntaxError: unexpected token")

	lines := splitLines(msg)
	require.Len(t, lines, 4)
	assert.Equal(t, strings.Repeat(" ", ctx.Column-1)+"^", lines[2])
}

func TestNewSemanticWithNilContextOmitsCaretBlock(t *testing.T) {
	err := NewSemantic("identifier \"y\" is not declared", nil)
	msg := err.Error()
	assert.Equal(t, "SemanticError: identifier \"y\" is not declared", msg)
}

func TestNewTypeCarriesTypeErrorKind(t *testing.T) {
	ctx := &token.SourceContext{Line: "x", LineNo: 1, Column: 1}
	err := NewType("cannot assign int to string", ctx)
	assert.Equal(t, TypeError, err.Kind)
}

func TestRenderPrependsPhaseBanner(t *testing.T) {
	err := NewSemantic("boom", nil)
	out := Render(PhaseSemantic, err)
	assert.Equal(t, "Error during semantic analysis:\nSemanticError: boom", out)
}

func splitLines(s string) []string {
	var lines []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			lines = append(lines, s[start:i])
			start = i + 1
		}
	}
	if start < len(s) {
		lines = append(lines, s[start:])
	}
	return lines
}
