// Package diag defines the three fatal error kinds raised anywhere in the
// pipeline (tokenizer, parser, analyzer, evaluator) and their shared
// rendering format, per spec.md §7.
package diag

import (
	"fmt"
	"strings"

	"github.com/tala-lang/tala/internal/token"
)

// Phase names a stage of the pipeline, used only for the "Error during
// <phase>:" banner — the error kind itself is orthogonal to the phase it
// happened to surface in.
type Phase string

const (
	PhasePreparation Phase = "preparation"
	PhaseLexical     Phase = "lexical analysis"
	PhaseSyntactic   Phase = "syntactic analysis"
	PhaseSemantic    Phase = "semantic analysis"
	PhaseRuntime     Phase = "runtime"
)

// Error is the single error type for all three kinds; Kind distinguishes
// them for callers that branch on it (the CLI's exit-code logic does not,
// but tests do).
type Error struct {
	Kind    Kind
	Message string
	Ctx     *token.SourceContext // nil when no source position applies
}

// Kind enumerates the three fatal error kinds from spec.md §7. TypeError is
// a SemanticError subkind: it carries its own Kind value so a caller can
// tell it apart from other semantic errors, but Error does not model an
// inheritance relationship — Go has no classes, and a tag is simpler.
type Kind int

const (
	SyntaxError Kind = iota
	SemanticError
	TypeError
)

func (k Kind) String() string {
	switch k {
	case SyntaxError:
		return "SyntaxError"
	case SemanticError:
		return "SemanticError"
	case TypeError:
		return "TypeError"
	default:
		return "Error"
	}
}

func NewSyntax(msg string, ctx token.SourceContext) *Error {
	return &Error{Kind: SyntaxError, Message: msg, Ctx: &ctx}
}

func NewSemantic(msg string, ctx *token.SourceContext) *Error {
	return &Error{Kind: SemanticError, Message: msg, Ctx: ctx}
}

func NewType(msg string, ctx *token.SourceContext) *Error {
	return &Error{Kind: TypeError, Message: msg, Ctx: ctx}
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Ctx != nil {
		fmt.Fprintf(&b, "Line %d, column %d:\n", e.Ctx.LineNo, e.Ctx.Column)
		b.WriteString(e.Ctx.Line)
		b.WriteByte('\n')
		if e.Ctx.Column > 0 {
			b.WriteString(strings.Repeat(" ", e.Ctx.Column-1))
		}
		b.WriteString("^\n")
	}
	fmt.Fprintf(&b, "%s: %s", e.Kind, e.Message)
	return b.String()
}

// Render reproduces the full "Error during <phase>:" diagnostic block from
// spec.md §6, ready to be written to stderr.
func Render(phase Phase, err error) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Error during %s:\n", phase)
	b.WriteString(err.Error())
	return b.String()
}
