package interp

import "github.com/commander-lang/commander/internal/value"

// Scope is the runtime analogue of internal/typecheck.VariableTable: a
// lexically nested symbol table mapping names to values. Scope.Define
// mirrors the teacher's Environment.Define overwrite-on-redeclare
// behavior, except a Lambda value redeclared over an existing Lambda
// binding merges into an overloadSet instead of shadowing it — the
// runtime counterpart of the type checker's overload accumulation.
type Scope struct {
	parent *Scope
	values map[string]value.Value
}

func NewScope(parent *Scope) *Scope {
	return &Scope{parent: parent, values: make(map[string]value.Value, 8)}
}

// Define binds name in this scope, merging into an overload set when both
// the existing and incoming values are Lambda-kind.
func (s *Scope) Define(name string, v value.Value) {
	if v.Kind == value.Lambda {
		if existing, ok := s.values[name]; ok && existing.Kind == value.Lambda {
			s.values[name] = mergeLambdas(existing, v)
			return
		}
	}
	s.values[name] = v
}

// Assign updates the nearest enclosing binding of name, walking up the
// parent chain the way the teacher's Environment.Assign does.
func (s *Scope) Assign(name string, v value.Value) bool {
	for e := s; e != nil; e = e.parent {
		if _, ok := e.values[name]; ok {
			e.values[name] = v
			return true
		}
	}
	return false
}

func (s *Scope) Get(name string) (value.Value, bool) {
	for e := s; e != nil; e = e.parent {
		if v, ok := e.values[name]; ok {
			return v, true
		}
	}
	return value.Value{}, false
}

func mergeLambdas(existing, incoming value.Value) value.Value {
	var candidates []*closure
	if os, ok := existing.Fn.(*overloadSet); ok {
		candidates = append(candidates, os.candidates...)
	} else if c, ok := existing.Fn.(*closure); ok {
		candidates = append(candidates, c)
	}
	if c, ok := incoming.Fn.(*closure); ok {
		candidates = append(candidates, c)
	}
	return value.Fn(&overloadSet{candidates: candidates}, incoming.Typ)
}
