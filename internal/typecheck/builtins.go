package typecheck

import "github.com/commander-lang/commander/internal/types"

// RegisterBuiltins declares internal/builtin's function table in vars so
// that calls to parseInt, sqrt, filter, and the rest type-check before
// internal/interp ever resolves them at runtime through its Builtins
// fallback. Signatures mirror original_source/source/builtin_functions/
// functions.hpp's per-type overload declarations, folded the same way
// internal/builtin folds its implementations: one Go overload per source
// type where the original declared one per C++ type, one plain signature
// where the original had exactly one.
//
// Lives in this package rather than internal/builtin so internal/builtin
// never has to import internal/typecheck (builtin.Table only needs
// internal/value); the checker's root scope is seeded by calling this
// once before Check, independent of whichever Builtins the interpreter
// ends up wired with.
func RegisterBuiltins(vars *VariableTable) {
	unary := func(name string, param, ret *types.Type) {
		vars.Declare(name, &VarInfo{Kind: KindFunction, Overloads: []Signature{{Params: []*types.Type{param}, Return: ret}}})
	}
	binary := func(name string, p1, p2, ret *types.Type) {
		vars.Declare(name, &VarInfo{Kind: KindFunction, Overloads: []Signature{{Params: []*types.Type{p1, p2}, Return: ret}}})
	}

	// parseInt/parseFloat/parseBool: one overload per source type, exactly
	// as functions.hpp declares CommanderInt/CommanderFloat/CommanderBool/
	// CommanderString variants of each.
	for _, src := range []*types.Type{types.IntType, types.FloatType, types.BoolType, types.StringType} {
		unary("parseInt", src, types.IntType)
		unary("parseFloat", src, types.FloatType)
		unary("parseBool", src, types.BoolType)
	}
	// toString accepts anything; modeled with one overload per scalar type
	// since the checker has no "any" type to fall back on.
	for _, src := range []*types.Type{types.IntType, types.FloatType, types.BoolType, types.StringType} {
		unary("toString", src, types.StringType)
	}

	// Full trig/hyperbolic/inverse family: every one of these accepts Int
	// or Float and always returns Float (internal/builtin.asFloat), so two
	// overloads per name instead of functions.hpp's four.
	mathUnary := []string{
		"sqrt", "ln", "log",
		"sin", "cos", "tan", "csc", "sec", "cot",
		"sinh", "cosh", "tanh", "csch", "sech", "coth",
		"arcsin", "arccos", "arctan", "arccsc", "arcsec", "arccot",
		"arcsinh", "arccosh", "arctanh", "arccsch", "arcsech", "arccoth",
	}
	for _, name := range mathUnary {
		unary(name, types.IntType, types.FloatType)
		unary(name, types.FloatType, types.FloatType)
	}

	// abs/floor/ceil/round preserve Int, otherwise behave like the above.
	for _, name := range []string{"abs", "floor", "ceil", "round"} {
		unary(name, types.IntType, types.IntType)
		unary(name, types.FloatType, types.FloatType)
	}

	// Arrays: declared over [int] only, since the checker has no type
	// parameters; a call on an array of another element type, or with a
	// callback whose types differ from these signatures, matches no
	// overload and is rejected.
	intArray := types.ArrayOf(types.IntType)
	boolFromInt := types.LambdaOf([]*types.Type{types.IntType}, types.BoolType)
	binary("sort", intArray, types.LambdaOf([]*types.Type{types.IntType, types.IntType}, types.BoolType), intArray)
	binary("filter", intArray, boolFromInt, intArray)
	binary("map", intArray, types.LambdaOf([]*types.Type{types.IntType}, types.IntType), intArray)
	binary("foreach", intArray, types.LambdaOf([]*types.Type{types.IntType}, nil), types.TupleOf(nil))
	binary("split", types.StringType, types.StringType, types.ArrayOf(types.StringType))

	// Strings.
	vars.Declare("replace", &VarInfo{Kind: KindFunction, Overloads: []Signature{{
		Params: []*types.Type{types.StringType, types.StringType, types.StringType}, Return: types.StringType,
	}}})
	vars.Declare("replaceAll", &VarInfo{Kind: KindFunction, Overloads: []Signature{{
		Params: []*types.Type{types.StringType, types.StringType, types.StringType}, Return: types.StringType,
	}}})
	binary("indexOf", types.StringType, types.StringType, types.IntType)
	binary("startsWith", types.StringType, types.StringType, types.BoolType)

	// System: arity-0 builtins.
	nullary := func(name string, ret *types.Type) {
		vars.Declare(name, &VarInfo{Kind: KindFunction, Overloads: []Signature{{Params: nil, Return: ret}}})
	}
	nullary("random", types.FloatType)
	nullary("time", types.IntType)
	nullary("date", types.TupleOf([]*types.Type{types.IntType, types.IntType, types.IntType}))
	unary("sleep", types.IntType, types.TupleOf(nil))
}
