// Package value implements Commander's runtime value representation
// (spec.md §3's CType) and its operators: arithmetic and comparison with
// Int/Float promotion, structural equality, and string conversion.
package value

import (
	"math"
	"strconv"
	"strings"

	"github.com/commander-lang/commander/internal/diagnostics"
	"github.com/commander-lang/commander/internal/source"
	"github.com/commander-lang/commander/internal/types"
)

// Kind tags a Value's active variant.
type Kind int

const (
	Int Kind = iota
	Float
	Bool
	String
	Array
	Tuple
	Lambda
)

// Callable is a Lambda value's function: a closure, an overload set, or a
// builtin, invoked with Call and reporting its parameter count via Arity.
type Callable interface {
	Call(args []Value) (Value, error)
	Arity() int
}

// Value is Commander's tagged runtime value.
type Value struct {
	Kind  Kind
	I     int64
	F     float64
	B     bool
	S     string
	Arr   []Value
	Tup   []Value
	Fn    Callable
	Typ   *types.Type // the static type this value was produced as (needed for empty arrays/tuples)
}

func Int64(i int64) Value      { return Value{Kind: Int, I: i, Typ: types.IntType} }
func Float64(f float64) Value  { return Value{Kind: Float, F: f, Typ: types.FloatType} }
func Bool_(b bool) Value       { return Value{Kind: Bool, B: b, Typ: types.BoolType} }
func Str(s string) Value       { return Value{Kind: String, S: s, Typ: types.StringType} }
func Arr_(elem *types.Type, vs []Value) Value {
	return Value{Kind: Array, Arr: vs, Typ: types.ArrayOf(elem)}
}
func Tup_(vs []Value, t *types.Type) Value { return Value{Kind: Tuple, Tup: vs, Typ: t} }
func Fn(fn Callable, t *types.Type) Value  { return Value{Kind: Lambda, Fn: fn, Typ: t} }

// Type returns this value's static type.
func (v Value) Type() *types.Type { return v.Typ }

// Truthy reports whether v counts as true in a boolean context; only Bool
// values are ever tested this way (the type checker rejects anything else
// as a condition).
func (v Value) Truthy() bool { return v.Kind == Bool && v.B }

// String renders v the way `print` does: no quotes around strings, "[" "]"
// around arrays, "(" ")" around tuples.
func (v Value) String() string {
	switch v.Kind {
	case Int:
		return strconv.FormatInt(v.I, 10)
	case Float:
		return strconv.FormatFloat(v.F, 'g', -1, 64)
	case Bool:
		return strconv.FormatBool(v.B)
	case String:
		return v.S
	case Array:
		parts := make([]string, len(v.Arr))
		for i, e := range v.Arr {
			parts[i] = e.Repr()
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case Tuple:
		parts := make([]string, len(v.Tup))
		for i, e := range v.Tup {
			parts[i] = e.Repr()
		}
		return "(" + strings.Join(parts, ", ") + ")"
	case Lambda:
		return "<lambda>"
	}
	return "<invalid>"
}

// Repr renders v the way it would appear nested inside an array/tuple
// literal: strings are quoted, everything else matches String().
func (v Value) Repr() string {
	if v.Kind == String {
		return strconv.Quote(v.S)
	}
	return v.String()
}

// Equal is Commander's `==` for values of identical type: structural for
// arrays/tuples, value equality otherwise. Lambdas are never equal.
func Equal(a, b Value) bool {
	if a.Kind != b.Kind {
		if (a.Kind == Int || a.Kind == Float) && (b.Kind == Int || b.Kind == Float) {
			return asFloat(a) == asFloat(b)
		}
		return false
	}
	switch a.Kind {
	case Int:
		return a.I == b.I
	case Float:
		return a.F == b.F
	case Bool:
		return a.B == b.B
	case String:
		return a.S == b.S
	case Array:
		if len(a.Arr) != len(b.Arr) {
			return false
		}
		for i := range a.Arr {
			if !Equal(a.Arr[i], b.Arr[i]) {
				return false
			}
		}
		return true
	case Tuple:
		if len(a.Tup) != len(b.Tup) {
			return false
		}
		for i := range a.Tup {
			if !Equal(a.Tup[i], b.Tup[i]) {
				return false
			}
		}
		return true
	}
	return false
}

func asFloat(v Value) float64 {
	if v.Kind == Int {
		return float64(v.I)
	}
	return v.F
}

// Arith implements +, -, *, /, %, ** over numerics (with Int->Float
// promotion) and `+` as concatenation over strings/arrays, per spec.md
// §4.5. pos is used only to anchor RuntimeError diagnostics.
func Arith(pos source.Position, op string, a, b Value) (Value, error) {
	if op == "+" && a.Kind == String && b.Kind == String {
		return Str(a.S + b.S), nil
	}
	if op == "+" && a.Kind == Array && b.Kind == Array {
		out := make([]Value, 0, len(a.Arr)+len(b.Arr))
		out = append(out, a.Arr...)
		out = append(out, b.Arr...)
		elem := a.Typ.Elem
		if elem == nil {
			elem = b.Typ.Elem
		}
		return Arr_(elem, out), nil
	}
	if !isNumeric(a) || !isNumeric(b) {
		return Value{}, diagnostics.At(diagnostics.RuntimeError, pos, "operator %q is not defined for %s and %s", op, a.Type(), b.Type())
	}
	if a.Kind == Float || b.Kind == Float {
		x, y := asFloat(a), asFloat(b)
		switch op {
		case "+":
			return Float64(x + y), nil
		case "-":
			return Float64(x - y), nil
		case "*":
			return Float64(x * y), nil
		case "/":
			if y == 0 {
				return Value{}, diagnostics.At(diagnostics.RuntimeError, pos, "division by zero")
			}
			return Float64(x / y), nil
		case "%":
			return Value{}, diagnostics.At(diagnostics.RuntimeError, pos, "%% requires two ints")
		case "**":
			return Float64(pow(x, y)), nil
		}
	}
	x, y := a.I, b.I
	switch op {
	case "+":
		return Int64(x + y), nil
	case "-":
		return Int64(x - y), nil
	case "*":
		return Int64(x * y), nil
	case "/":
		if y == 0 {
			return Value{}, diagnostics.At(diagnostics.RuntimeError, pos, "division by zero")
		}
		return Int64(x / y), nil
	case "%":
		if y == 0 {
			return Value{}, diagnostics.At(diagnostics.RuntimeError, pos, "modulo by zero")
		}
		return Int64(x % y), nil
	case "**":
		return Int64(ipow(x, y)), nil
	}
	return Value{}, diagnostics.At(diagnostics.RuntimeError, pos, "unknown operator %q", op)
}

func isNumeric(v Value) bool { return v.Kind == Int || v.Kind == Float }

func pow(x, y float64) float64 {
	return math.Pow(x, y)
}

func ipow(x, y int64) int64 {
	result := int64(1)
	for i := int64(0); i < y; i++ {
		result *= x
	}
	return result
}

// Compare implements <, <=, >, >= over numerics (Int/Float mixed allowed)
// and strings (lexicographic), per spec.md §4.5.
func Compare(pos source.Position, op string, a, b Value) (Value, error) {
	if a.Kind == String && b.Kind == String {
		var r bool
		switch op {
		case "<":
			r = a.S < b.S
		case "<=":
			r = a.S <= b.S
		case ">":
			r = a.S > b.S
		case ">=":
			r = a.S >= b.S
		}
		return Bool_(r), nil
	}
	if !isNumeric(a) || !isNumeric(b) {
		return Value{}, diagnostics.At(diagnostics.RuntimeError, pos, "operator %q is not defined for %s and %s", op, a.Type(), b.Type())
	}
	x, y := asFloat(a), asFloat(b)
	var r bool
	switch op {
	case "<":
		r = x < y
	case "<=":
		r = x <= y
	case ">":
		r = x > y
	case ">=":
		r = x >= y
	}
	return Bool_(r), nil
}

// Negate implements unary '-'.
func Negate(pos source.Position, v Value) (Value, error) {
	switch v.Kind {
	case Int:
		return Int64(-v.I), nil
	case Float:
		return Float64(-v.F), nil
	}
	return Value{}, diagnostics.At(diagnostics.RuntimeError, pos, "unary '-' is not defined for %s", v.Type())
}

// Not implements unary logical '!'.
func Not(pos source.Position, v Value) (Value, error) {
	if v.Kind != Bool {
		return Value{}, diagnostics.At(diagnostics.RuntimeError, pos, "unary '!' is not defined for %s", v.Type())
	}
	return Bool_(!v.B), nil
}

// ToFloat widens an Int value to Float; it is a no-op on a Float value.
func ToFloat(v Value) Value {
	if v.Kind == Int {
		return Float64(float64(v.I))
	}
	return v
}
