package types

import (
	"fmt"
	"math"

	"github.com/tala-lang/tala/internal/diag"
	"github.com/tala-lang/tala/internal/token"
)

// validOperandTypes is the per-operator valid-type table from spec.md
// §4.4. The order within an entry does not matter: BinaryOpType tries int
// before real before string itself, picking the narrowest admissible
// promotion.
var validOperandTypes = map[token.Kind][]Type{
	token.AND:     {Int, Real, String},
	token.OR:      {Int, Real, String},
	token.XOR:     {Int, Real, String},
	token.LT:      {Int, Real, String},
	token.LTE:     {Int, Real, String},
	token.GT:      {Int, Real, String},
	token.GTE:     {Int, Real, String},
	token.EQ:      {Int, Real, String},
	token.NEQ:     {Int, Real, String},
	token.PLUS:    {Int, Real, String},
	token.MINUS:   {Int, Real},
	token.MUL:     {Int, Real},
	token.INTDIV:  {Int, Real},
	token.REALDIV: {Int, Real},
	token.MOD:     {Int, Real},
}

func contains(types []Type, t Type) bool {
	for _, x := range types {
		if x == t {
			return true
		}
	}
	return false
}

// AssignType implements spec.md §4.4's assignment typing rule. op is
// either token.ASSIGN or token.CASTASSIGN; the latter treats the RHS as
// `cast`, permitting arbitrary conversion.
func AssignType(op token.Kind, varType, exprType, exprRealType Type, ctx *token.SourceContext) (Type, error) {
	if op == token.CASTASSIGN {
		exprType = Cast
	}

	if !IsImplicitlyConvertible(exprType, varType) {
		return 0, diag.NewType(fmt.Sprintf("cannot assign %s to %s", exprType, varType), ctx)
	}

	if varType == Any {
		return exprRealType, nil
	}
	return varType, nil
}

// AssignValue computes AssignType and then performs the corresponding
// Cast, producing the Value an assignment or parameter binding actually
// stores.
func AssignValue(op token.Kind, varType Type, expr Value, ctx *token.SourceContext) (Value, error) {
	t, err := AssignType(op, varType, expr.Type, expr.RealType, ctx)
	if err != nil {
		return Value{}, err
	}
	cast, err := Cast(expr, t, ctx)
	if err != nil {
		return Value{}, err
	}
	cast.Type = t
	if t == Any {
		cast.RealType = expr.RealType
	} else {
		cast.RealType = t
	}
	return cast, nil
}

// UnaryOpType implements spec.md §4.4's unary operator typing.
func UnaryOpType(op token.Kind, operand Type, ctx *token.SourceContext) (Type, error) {
	if op == token.CAST {
		return Cast, nil
	}
	if op == token.PLUS || op == token.MINUS {
		if operand == Cast {
			return Int, nil
		}
		if operand == Int || operand == Real || operand == Any {
			return operand, nil
		}
	}
	if op == token.NOT {
		return Int, nil
	}
	return 0, diag.NewType(fmt.Sprintf("invalid operand type %s for %s", operand, op), ctx)
}

// UnaryOpValue computes the runtime result of a unary operator.
func UnaryOpValue(op token.Kind, operand Value, ctx *token.SourceContext) (Value, error) {
	if op == token.NOT {
		return BoolValue(!operand.Truthy()), nil
	}

	t, err := UnaryOpType(op, operand.Type, ctx)
	if err != nil {
		return Value{}, err
	}
	if op == token.CAST {
		// CAST alone yields the `cast` tag; the concrete conversion happens
		// at the point the cast value is consumed (an assignment or
		// another operator), mirroring pyscal's lazy `cast` marker.
		return Value{Type: Cast, RealType: operand.RealType, Int: operand.Int, Real: operand.Real, Str: operand.Str}, nil
	}

	v, err := Cast(operand, t, ctx)
	if err != nil {
		return Value{}, err
	}
	if op == token.MINUS {
		v.Int = -v.Int
		v.Real = -v.Real
	}
	v.RealType = operand.RealType
	return v, nil
}

// BinaryOpType implements spec.md §4.4's binary operator typing: the
// narrowest admissible promoted type, or `any` if either operand is `any`.
func BinaryOpType(op token.Kind, left, right Type, ctx *token.SourceContext) (Type, error) {
	valid, ok := validOperandTypes[op]
	if !ok {
		return 0, diag.NewType(fmt.Sprintf("unsupported operator %s", op), ctx)
	}

	for _, t := range [...]Type{Int, Real, String} {
		if contains(valid, t) && IsImplicitlyConvertible(left, t) && IsImplicitlyConvertible(right, t) {
			if left == Any || right == Any {
				return Any, nil
			}
			return t, nil
		}
	}

	return 0, diag.NewType(fmt.Sprintf("invalid operand types %s and %s for %s", left, right, op), ctx)
}

// BinaryOpValue computes the runtime result of a binary operator. Division
// by zero surfaces as a TypeError attributed to the operator's own
// context, per spec.md §8's boundary case.
func BinaryOpValue(op token.Kind, left, right Value, ctx *token.SourceContext) (Value, error) {
	t, err := BinaryOpType(op, left.Type, right.Type, ctx)
	if err != nil {
		return Value{}, err
	}

	l, err := Cast(left, t, ctx)
	if err != nil {
		return Value{}, err
	}
	r, err := Cast(right, t, ctx)
	if err != nil {
		return Value{}, err
	}

	switch op {
	case token.AND:
		return BoolValue(l.Truthy() && r.Truthy()), nil
	case token.OR:
		return BoolValue(l.Truthy() || r.Truthy()), nil
	case token.XOR:
		return BoolValue(l.Truthy() != r.Truthy()), nil
	case token.LT, token.LTE, token.GT, token.GTE, token.EQ, token.NEQ:
		return BoolValue(compare(op, t, l, r)), nil
	}

	result, err := arith(op, t, l, r, ctx)
	if err != nil {
		return Value{}, err
	}
	result.RealType = result.Type
	return result, nil
}

func compare(op token.Kind, t Type, l, r Value) bool {
	switch t {
	case String:
		switch op {
		case token.LT:
			return l.Str < r.Str
		case token.LTE:
			return l.Str <= r.Str
		case token.GT:
			return l.Str > r.Str
		case token.GTE:
			return l.Str >= r.Str
		case token.EQ:
			return l.Str == r.Str
		default:
			return l.Str != r.Str
		}
	case Real:
		return numCompare(op, l.Real, r.Real)
	default:
		// Real equals float64(Int) for an ordinary int and carries the
		// undropped fraction for a real-div result; comparing on it keeps
		// both cases correct.
		return numCompare(op, l.Real, r.Real)
	}
}

func numCompare[N int64 | float64](op token.Kind, l, r N) bool {
	switch op {
	case token.LT:
		return l < r
	case token.LTE:
		return l <= r
	case token.GT:
		return l > r
	case token.GTE:
		return l >= r
	case token.EQ:
		return l == r
	default:
		return l != r
	}
}

func arith(op token.Kind, t Type, l, r Value, ctx *token.SourceContext) (Value, error) {
	if t == String {
		if op != token.PLUS {
			return Value{}, diag.NewType(fmt.Sprintf("invalid operand types string and string for %s", op), ctx)
		}
		return StringValue(l.Str + r.Str), nil
	}

	if t == Int {
		if (op == token.INTDIV || op == token.MOD || op == token.REALDIV) && r.Int == 0 {
			return Value{}, diag.NewType("integer division or modulo by zero", ctx)
		}
		switch op {
		case token.PLUS:
			return IntValue(l.Int + r.Int), nil
		case token.MINUS:
			return IntValue(l.Int - r.Int), nil
		case token.MUL:
			return IntValue(l.Int * r.Int), nil
		case token.INTDIV:
			return IntValue(floorDivInt(l.Int, r.Int)), nil
		case token.REALDIV:
			// REAL-DIV is true division (spec.md §138): the result keeps
			// the promoted operand type as its tag, but the value itself
			// is the exact quotient, fraction and all — Int is only a
			// truncated cache for callers that need a plain int64.
			exact := float64(l.Int) / float64(r.Int)
			return Value{Type: Int, RealType: Int, Int: int64(exact), Real: exact}, nil
		case token.MOD:
			return IntValue(floorModInt(l.Int, r.Int)), nil
		}
	}

	// Real
	if (op == token.INTDIV || op == token.REALDIV || op == token.MOD) && r.Real == 0 {
		return Value{}, diag.NewType("real division by zero", ctx)
	}
	switch op {
	case token.PLUS:
		return RealValue(l.Real + r.Real), nil
	case token.MINUS:
		return RealValue(l.Real - r.Real), nil
	case token.MUL:
		return RealValue(l.Real * r.Real), nil
	case token.INTDIV:
		return RealValue(floorDivReal(l.Real, r.Real)), nil
	case token.REALDIV:
		return RealValue(l.Real / r.Real), nil
	case token.MOD:
		return RealValue(realMod(l.Real, r.Real)), nil
	}

	return Value{}, diag.NewType(fmt.Sprintf("unsupported operator %s", op), ctx)
}

// floorDivInt is tala's // for int64: Go's truncating division already
// matches floor division for same-signed operands, but spec.md §4.4
// requires true floor division (rounding toward negative infinity) for
// mixed-sign operands too.
func floorDivInt(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func floorModInt(a, b int64) int64 {
	m := a % b
	if m != 0 && ((a < 0) != (b < 0)) {
		m += b
	}
	return m
}

func floorDivReal(a, b float64) float64 {
	return math.Floor(a / b)
}

func realMod(a, b float64) float64 {
	return a - b*math.Floor(a/b)
}
