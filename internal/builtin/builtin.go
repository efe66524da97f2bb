// Package builtin implements Commander's built-in function table: numeric
// parsing/conversion, the math family (original_source/source/
// builtin_functions/functions.cpp's sqrt/ln/log/trig/hyperbolic/inverse
// set), array higher-order operations (sort/filter/map/foreach, resolved
// per SPEC_FULL.md §5's Open Question), string operations (split/replace/
// replaceAll/indexOf/startsWith), and the process-environment primitives
// (random/time/date/sleep). Every entry is a value.Callable so
// internal/interp's CallExpr evaluation never has to special-case a
// builtin versus a user closure.
package builtin

import (
	"math"
	"math/rand"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/commander-lang/commander/internal/diagnostics"
	"github.com/commander-lang/commander/internal/source"
	"github.com/commander-lang/commander/internal/value"
)

// fn wraps a fixed-arity native implementation as a value.Callable.
type fn struct {
	arity int
	call  func(args []value.Value) (value.Value, error)
}

func (f *fn) Arity() int { return f.arity }
func (f *fn) Call(args []value.Value) (value.Value, error) { return f.call(args) }

// Table is the default set of builtins; Lookup implements interp.Builtins.
// Each math entry below accepts either an Int or Float argument; the
// sqrt..arccoth family always returns Float, while abs/floor/ceil/round
// return the argument's own kind, folding functions.hpp's separate CommanderInt/
// CommanderFloat C++ overloads into one Go implementation per name.
type Table struct {
	entries map[string]value.Callable
}

func New() *Table {
	t := &Table{entries: make(map[string]value.Callable, 64)}
	t.registerConversions()
	t.registerMath()
	t.registerArrays()
	t.registerStrings()
	t.registerSystem()
	return t
}

func (t *Table) Lookup(name string) (value.Callable, bool) {
	c, ok := t.entries[name]
	return c, ok
}

func unary1(call func(value.Value) (value.Value, error)) *fn {
	return &fn{arity: 1, call: func(args []value.Value) (value.Value, error) { return call(args[0]) }}
}

func (t *Table) registerConversions() {
	pos := source.Position{}
	t.entries["parseInt"] = unary1(func(v value.Value) (value.Value, error) {
		switch v.Kind {
		case value.Int:
			return v, nil
		case value.Float:
			return value.Int64(int64(v.F)), nil
		case value.Bool:
			if v.B {
				return value.Int64(1), nil
			}
			return value.Int64(0), nil
		case value.String:
			n := parseIntLenient(v.S)
			return value.Int64(n), nil
		}
		return value.Value{}, diagnostics.At(diagnostics.RuntimeError, pos, "cannot parseInt a %s", v.Type())
	})
	t.entries["parseFloat"] = unary1(func(v value.Value) (value.Value, error) {
		switch v.Kind {
		case value.Int:
			return value.Float64(float64(v.I)), nil
		case value.Float:
			return v, nil
		case value.Bool:
			if v.B {
				return value.Float64(1), nil
			}
			return value.Float64(0), nil
		case value.String:
			return value.Float64(parseFloatLenient(v.S)), nil
		}
		return value.Value{}, diagnostics.At(diagnostics.RuntimeError, pos, "cannot parseFloat a %s", v.Type())
	})
	t.entries["parseBool"] = unary1(func(v value.Value) (value.Value, error) {
		switch v.Kind {
		case value.Int:
			return value.Bool_(v.I != 0), nil
		case value.Float:
			return value.Bool_(v.F != 0), nil
		case value.Bool:
			return v, nil
		case value.String:
			return value.Bool_(v.S == "true"), nil
		}
		return value.Value{}, diagnostics.At(diagnostics.RuntimeError, pos, "cannot parseBool a %s", v.Type())
	})
	t.entries["toString"] = unary1(func(v value.Value) (value.Value, error) {
		return value.Str(v.String()), nil
	})
}

func parseIntLenient(s string) int64 {
	n, _ := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	return n
}

func parseFloatLenient(s string) float64 {
	f, _ := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return f
}

// registerMath installs the sqrt/ln/log/trig/hyperbolic/inverse family,
// each overloaded over int and float arguments (functions.hpp declares a
// separate CommanderInt and CommanderFloat overload of every entry here;
// this family always returns float, since Commander's int is not
// guaranteed closed under any of these operations), plus abs/floor/ceil/
// round, which return an Int argument's kind as Int and a Float's as Float.
func (t *Table) registerMath() {
	unaryMath := func(name string, f func(float64) float64) {
		t.entries[name] = unary1(func(v value.Value) (value.Value, error) {
			x, err := asFloat(v)
			if err != nil {
				return value.Value{}, err
			}
			return value.Float64(f(x)), nil
		})
	}
	unaryMath("sqrt", math.Sqrt)
	unaryMath("ln", math.Log)
	unaryMath("log", math.Log10)
	unaryMath("sin", math.Sin)
	unaryMath("cos", math.Cos)
	unaryMath("tan", math.Tan)
	unaryMath("csc", func(x float64) float64 { return 1 / math.Sin(x) })
	unaryMath("sec", func(x float64) float64 { return 1 / math.Cos(x) })
	unaryMath("cot", func(x float64) float64 { return 1 / math.Tan(x) })
	unaryMath("sinh", math.Sinh)
	unaryMath("cosh", math.Cosh)
	unaryMath("tanh", math.Tanh)
	unaryMath("csch", func(x float64) float64 { return 1 / math.Sinh(x) })
	unaryMath("sech", func(x float64) float64 { return 1 / math.Cosh(x) })
	unaryMath("coth", func(x float64) float64 { return 1 / math.Tanh(x) })
	unaryMath("arcsin", math.Asin)
	unaryMath("arccos", math.Acos)
	unaryMath("arctan", math.Atan)
	unaryMath("arccsc", func(x float64) float64 { return math.Asin(1 / x) })
	unaryMath("arcsec", func(x float64) float64 { return math.Acos(1 / x) })
	unaryMath("arccot", func(x float64) float64 { return math.Atan(1 / x) })
	unaryMath("arcsinh", math.Asinh)
	unaryMath("arccosh", math.Acosh)
	unaryMath("arctanh", math.Atanh)
	unaryMath("arccsch", func(x float64) float64 { return math.Asinh(1 / x) })
	unaryMath("arcsech", func(x float64) float64 { return math.Acosh(1 / x) })
	unaryMath("arccoth", func(x float64) float64 { return math.Atanh(1 / x) })

	t.entries["abs"] = unary1(func(v value.Value) (value.Value, error) {
		if v.Kind == value.Int {
			if v.I < 0 {
				return value.Int64(-v.I), nil
			}
			return v, nil
		}
		x, err := asFloat(v)
		if err != nil {
			return value.Value{}, err
		}
		return value.Float64(math.Abs(x)), nil
	})
	roundLike := func(name string, f func(float64) float64) {
		t.entries[name] = unary1(func(v value.Value) (value.Value, error) {
			if v.Kind == value.Int {
				return v, nil
			}
			x, err := asFloat(v)
			if err != nil {
				return value.Value{}, err
			}
			return value.Float64(f(x)), nil
		})
	}
	roundLike("floor", math.Floor)
	roundLike("ceil", math.Ceil)
	roundLike("round", math.Round)
}

func asFloat(v value.Value) (float64, error) {
	switch v.Kind {
	case value.Int:
		return float64(v.I), nil
	case value.Float:
		return v.F, nil
	}
	return 0, diagnostics.New(diagnostics.RuntimeError, "expected a numeric value, got %s", v.Type())
}

// registerArrays installs sort/filter/map/foreach/split — the Open
// Question SPEC_FULL.md resolves by giving each a single clear signature:
// a predicate/transform lambda plus the array (or string, for split),
// called back through value.Callable so builtin never needs to import
// internal/interp.
func (t *Table) registerArrays() {
	t.entries["sort"] = &fn{arity: 2, call: func(args []value.Value) (value.Value, error) {
		arr, less := args[0], args[1]
		if arr.Kind != value.Array {
			return value.Value{}, diagnostics.New(diagnostics.RuntimeError, "sort expects an array")
		}
		out := append([]value.Value(nil), arr.Arr...)
		var sortErr error
		sort.SliceStable(out, func(i, j int) bool {
			if sortErr != nil {
				return false
			}
			r, err := less.Fn.Call([]value.Value{out[i], out[j]})
			if err != nil {
				sortErr = err
				return false
			}
			return r.Truthy()
		})
		if sortErr != nil {
			return value.Value{}, sortErr
		}
		return value.Arr_(arr.Typ.Elem, out), nil
	}}

	t.entries["filter"] = &fn{arity: 2, call: func(args []value.Value) (value.Value, error) {
		arr, pred := args[0], args[1]
		if arr.Kind != value.Array {
			return value.Value{}, diagnostics.New(diagnostics.RuntimeError, "filter expects an array")
		}
		out := make([]value.Value, 0, len(arr.Arr))
		for _, e := range arr.Arr {
			r, err := pred.Fn.Call([]value.Value{e})
			if err != nil {
				return value.Value{}, err
			}
			if r.Truthy() {
				out = append(out, e)
			}
		}
		return value.Arr_(arr.Typ.Elem, out), nil
	}}

	t.entries["map"] = &fn{arity: 2, call: func(args []value.Value) (value.Value, error) {
		arr, transform := args[0], args[1]
		if arr.Kind != value.Array {
			return value.Value{}, diagnostics.New(diagnostics.RuntimeError, "map expects an array")
		}
		out := make([]value.Value, len(arr.Arr))
		for i, e := range arr.Arr {
			r, err := transform.Fn.Call([]value.Value{e})
			if err != nil {
				return value.Value{}, err
			}
			out[i] = r
		}
		var elem = arr.Typ.Elem
		if len(out) > 0 {
			elem = out[0].Typ
		}
		return value.Arr_(elem, out), nil
	}}

	t.entries["foreach"] = &fn{arity: 2, call: func(args []value.Value) (value.Value, error) {
		arr, body := args[0], args[1]
		if arr.Kind != value.Array {
			return value.Value{}, diagnostics.New(diagnostics.RuntimeError, "foreach expects an array")
		}
		for _, e := range arr.Arr {
			if _, err := body.Fn.Call([]value.Value{e}); err != nil {
				return value.Value{}, err
			}
		}
		return value.Tup_(nil, nil), nil
	}}

	t.entries["split"] = &fn{arity: 2, call: func(args []value.Value) (value.Value, error) {
		s, sep := args[0], args[1]
		if s.Kind != value.String || sep.Kind != value.String {
			return value.Value{}, diagnostics.New(diagnostics.RuntimeError, "split expects two strings")
		}
		parts := strings.Split(s.S, sep.S)
		out := make([]value.Value, len(parts))
		for i, p := range parts {
			out[i] = value.Str(p)
		}
		return value.Arr_(nil, out), nil
	}}
}

// registerStrings installs the corrected replace/replaceAll/indexOf/
// startsWith family SPEC_FULL.md §5 calls out: replace touches only the
// first occurrence, replaceAll every occurrence, indexOf returns -1 on a
// miss rather than panicking, and startsWith is a plain prefix test.
func (t *Table) registerStrings() {
	t.entries["replace"] = &fn{arity: 3, call: func(args []value.Value) (value.Value, error) {
		s, old, new := args[0], args[1], args[2]
		return value.Str(strings.Replace(s.S, old.S, new.S, 1)), nil
	}}
	t.entries["replaceAll"] = &fn{arity: 3, call: func(args []value.Value) (value.Value, error) {
		s, old, new := args[0], args[1], args[2]
		return value.Str(strings.ReplaceAll(s.S, old.S, new.S)), nil
	}}
	t.entries["indexOf"] = &fn{arity: 2, call: func(args []value.Value) (value.Value, error) {
		s, sub := args[0], args[1]
		return value.Int64(int64(strings.Index(s.S, sub.S))), nil
	}}
	t.entries["startsWith"] = &fn{arity: 2, call: func(args []value.Value) (value.Value, error) {
		s, prefix := args[0], args[1]
		return value.Bool_(strings.HasPrefix(s.S, prefix.S)), nil
	}}
}

// registerSystem installs random/time/date/sleep, the process-environment
// primitives functions.hpp declares but functions.cpp leaves thin; sleep
// blocks the calling goroutine exactly as a script author would expect a
// single-threaded interpreter's sleep to behave.
func (t *Table) registerSystem() {
	t.entries["random"] = &fn{arity: 0, call: func(args []value.Value) (value.Value, error) {
		return value.Float64(rand.Float64()), nil
	}}
	t.entries["time"] = &fn{arity: 0, call: func(args []value.Value) (value.Value, error) {
		return value.Int64(time.Now().Unix()), nil
	}}
	t.entries["date"] = &fn{arity: 0, call: func(args []value.Value) (value.Value, error) {
		now := time.Now()
		return value.Tup_([]value.Value{
			value.Int64(int64(now.Year())),
			value.Int64(int64(now.Month())),
			value.Int64(int64(now.Day())),
		}, nil), nil
	}}
	t.entries["sleep"] = &fn{arity: 1, call: func(args []value.Value) (value.Value, error) {
		time.Sleep(time.Duration(args[0].I) * time.Millisecond)
		return value.Tup_(nil, nil), nil
	}}
}
