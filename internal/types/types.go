// Package types implements Commander's static Type sum type: structural
// equality, the int-widens-to-float numeric promotion rule, and rendering
// that matches ast.TypeExpr's textual form (spec.md §3).
package types

import "strings"

// Kind distinguishes the variants of Type.
type Kind int

const (
	Int Kind = iota
	Float
	Bool
	String
	Array
	Tuple
	Lambda
	// Named is an unresolved alias/type-decl name; internal/typecheck
	// resolves it to its underlying Type before any type comparison.
	Named
)

// Type is Commander's structural type value. Array has a single Elem;
// Tuple has Elems; Lambda has Params and a Return.
type Type struct {
	Kind   Kind
	Name   string // valid when Kind == Named
	Elem   *Type  // valid when Kind == Array
	Elems  []*Type
	Params []*Type
	Return *Type
}

var (
	IntType    = &Type{Kind: Int}
	FloatType  = &Type{Kind: Float}
	BoolType   = &Type{Kind: Bool}
	StringType = &Type{Kind: String}
)

func ArrayOf(elem *Type) *Type   { return &Type{Kind: Array, Elem: elem} }
func TupleOf(elems []*Type) *Type { return &Type{Kind: Tuple, Elems: elems} }
func LambdaOf(params []*Type, ret *Type) *Type {
	return &Type{Kind: Lambda, Params: params, Return: ret}
}
func NamedType(name string) *Type { return &Type{Kind: Named, Name: name} }

// Equal reports structural equality. Named types must have already been
// resolved by the caller (internal/typecheck) — Equal treats two distinct
// unresolved Named types as unequal even if they ultimately alias the same
// underlying type.
func Equal(a, b *Type) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case Int, Float, Bool, String:
		return true
	case Named:
		return a.Name == b.Name
	case Array:
		return Equal(a.Elem, b.Elem)
	case Tuple:
		if len(a.Elems) != len(b.Elems) {
			return false
		}
		for i := range a.Elems {
			if !Equal(a.Elems[i], b.Elems[i]) {
				return false
			}
		}
		return true
	case Lambda:
		if len(a.Params) != len(b.Params) || !Equal(a.Return, b.Return) {
			return false
		}
		for i := range a.Params {
			if !Equal(a.Params[i], b.Params[i]) {
				return false
			}
		}
		return true
	}
	return false
}

// Numeric reports whether t is Int or Float.
func Numeric(t *Type) bool { return t != nil && (t.Kind == Int || t.Kind == Float) }

// Promote implements spec.md's numeric promotion: Int widens to Float when
// combined with a Float; returns nil if a and b cannot be unified.
func Promote(a, b *Type) *Type {
	if Equal(a, b) {
		return a
	}
	if Numeric(a) && Numeric(b) {
		return FloatType
	}
	return nil
}

// AssignableTo reports whether a value of type src can be stored into a
// variable of type dst — identical types, or Int into Float.
func AssignableTo(src, dst *Type) bool {
	if Equal(src, dst) {
		return true
	}
	return src != nil && dst != nil && src.Kind == Int && dst.Kind == Float
}

func (t *Type) String() string {
	if t == nil {
		return "<nil>"
	}
	switch t.Kind {
	case Int:
		return "int"
	case Float:
		return "float"
	case Bool:
		return "bool"
	case String:
		return "string"
	case Named:
		return t.Name
	case Array:
		return "[" + t.Elem.String() + "]"
	case Tuple:
		parts := make([]string, len(t.Elems))
		for i, e := range t.Elems {
			parts[i] = e.String()
		}
		return "(" + strings.Join(parts, ", ") + ")"
	case Lambda:
		parts := make([]string, len(t.Params))
		for i, p := range t.Params {
			parts[i] = p.String()
		}
		return "(" + strings.Join(parts, ", ") + ") -> " + t.Return.String()
	}
	return "?"
}
