// Package types implements the static type system (spec.md §4.4): the
// implicit-conversion relation, casting, and the runtime value carrier
// (ValueWrapper in spec.md's terms, Value here) shared by the analyzer and
// the evaluator.
package types

import (
	"fmt"
	"strconv"

	"github.com/tala-lang/tala/internal/diag"
	"github.com/tala-lang/tala/internal/token"
)

// Type is the five declared types (int, real, string, any, void) plus the
// transient "cast" tag the spec's conversion rules reason about. It shares its ordering
// with token.LiteralKind for the three concrete literal types so callers
// can convert between them without a lookup table.
type Type uint8

const (
	Int Type = iota
	Real
	String
	Any
	Void
	Cast
)

func (t Type) String() string {
	switch t {
	case Int:
		return "int"
	case Real:
		return "real"
	case String:
		return "string"
	case Any:
		return "any"
	case Void:
		return "void"
	case Cast:
		return "cast"
	default:
		return "?"
	}
}

// ParseTypeName resolves a type annotation's identifier to a Type, for the
// five built-in TypeSymbol names the global scope seeds (scope.go). ok is
// false for any other identifier.
func ParseTypeName(name string) (Type, bool) {
	switch name {
	case "int":
		return Int, true
	case "real":
		return Real, true
	case "string":
		return String, true
	case "any":
		return Any, true
	case "void":
		return Void, true
	default:
		return 0, false
	}
}

func FromLiteralKind(k token.LiteralKind) Type {
	switch k {
	case token.LiteralInt:
		return Int
	case token.LiteralReal:
		return Real
	default:
		return String
	}
}

// IsImplicitlyConvertible implements spec.md §4.4's T1 →ᵢ T2 relation.
func IsImplicitlyConvertible(from, to Type) bool {
	if from == to {
		return true
	}
	if from == Any || from == Cast {
		return true
	}
	if from == Void {
		return false
	}
	if to == Any {
		return true
	}
	return from == Int && to == Real
}

// Value is the runtime value carrier (spec.md's ValueWrapper): a declared
// type, a concrete payload, and — for bindings declared `any` — the most
// specific type last assigned to it.
type Value struct {
	Type     Type
	RealType Type // equals Type except for an `any`-declared binding
	Int      int64
	Real     float64
	Str      string
}

// Default produces the zero value for a declared type (spec.md §3): 0 for
// int/real, "" for string, and an opaque placeholder for void that no
// source-level expression can ever produce, so comparing it to a program
// value is always false.
func Default(t Type) Value {
	v := Value{Type: t, RealType: t}
	if t == Void {
		v.Str = "\x00void-placeholder\x00"
	}
	return v
}

// IntValue wraps a genuine integer. Real is kept in sync with Int (rather
// than left zero) so that Int-typed values all share one precise numeric
// representation — the one exception, REAL-DIV's true-division quirk
// (operations.go), relies on that invariant to tell an ordinary int apart
// from one still carrying a fractional value under the `int` tag.
func IntValue(n int64) Value    { return Value{Type: Int, RealType: Int, Int: n, Real: float64(n)} }
func RealValue(f float64) Value { return Value{Type: Real, RealType: Real, Real: f} }
func StringValue(s string) Value {
	return Value{Type: String, RealType: String, Str: s}
}

// BoolValue wraps a boolean result as the int 0/1, per spec.md §4.4's
// comparison/logical-operator result rule.
func BoolValue(b bool) Value {
	if b {
		return IntValue(1)
	}
	return IntValue(0)
}

func (v Value) Truthy() bool {
	switch v.Type {
	case String:
		return v.Str != ""
	case Real, Int:
		return v.Real != 0
	default:
		return v.Int != 0
	}
}

func (v Value) String() string {
	switch v.Type {
	case Int:
		// Real-div's true-division quirk (operations.go) leaves Real
		// holding a fraction that Int's truncation dropped; print that
		// precise value rather than the truncated int.
		if v.Real != float64(v.Int) {
			return strconv.FormatFloat(v.Real, 'g', -1, 64)
		}
		return strconv.FormatInt(v.Int, 10)
	case Real:
		return strconv.FormatFloat(v.Real, 'g', -1, 64)
	case String:
		return v.Str
	case Void:
		return ""
	default:
		return fmt.Sprintf("<%s>", v.Type)
	}
}

// Cast converts a value already expected to carry `t`'s payload into `t`'s
// own representation, per spec.md §4.4's cast rule. It does not check
// IsImplicitlyConvertible — callers (Assign, Cast expressions) are
// responsible for that; this function only performs the mechanical
// int/real/string conversion, failing with a diag.TypeError-shaped message
// when a string cannot parse as a number.
func Cast(v Value, t Type, ctx *token.SourceContext) (Value, error) {
	if v.Type == Cast {
		// A `~`-tagged value converts from the type its payload holds.
		v.Type = v.RealType
	}
	if t == Any {
		return Value{Type: Any, RealType: v.RealType, Int: v.Int, Real: v.Real, Str: v.Str}, nil
	}

	switch t {
	case Int:
		switch v.Type {
		case Int:
			// Identity cast: pass the value through unchanged so a
			// real-div result's precise Real payload survives being
			// re-cast to the `int` it is already tagged as.
			return v, nil
		case Real:
			return IntValue(int64(v.Real)), nil
		case String:
			n, err := strconv.ParseInt(v.Str, 10, 64)
			if err != nil {
				return Value{}, newCastError(v, t, ctx)
			}
			return IntValue(n), nil
		}
	case Real:
		switch v.Type {
		case Int:
			// Use the precise payload (equal to float64(v.Int) for an
			// ordinary int, the undropped fraction for a real-div result).
			return RealValue(v.Real), nil
		case Real:
			return RealValue(v.Real), nil
		case String:
			f, err := strconv.ParseFloat(v.Str, 64)
			if err != nil {
				return Value{}, newCastError(v, t, ctx)
			}
			return RealValue(f), nil
		}
	case String:
		return StringValue(v.String()), nil
	}

	return Value{}, newCastError(v, t, ctx)
}

func newCastError(v Value, to Type, ctx *token.SourceContext) *diag.Error {
	return diag.NewType(fmt.Sprintf("cannot convert %q to %s", v.String(), to), ctx)
}
