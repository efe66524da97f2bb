package builtin

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/commander-lang/commander/internal/value"
)

func call(t *testing.T, table *Table, name string, args ...value.Value) value.Value {
	t.Helper()
	c, ok := table.Lookup(name)
	require.True(t, ok, "builtin %q not registered", name)
	v, err := c.Call(args)
	require.NoError(t, err)
	return v
}

func TestParseIntFromString(t *testing.T) {
	table := New()
	v := call(t, table, "parseInt", value.Str("42"))
	assert.EqualValues(t, 42, v.I)
}

func TestParseFloatFromBool(t *testing.T) {
	table := New()
	v := call(t, table, "parseFloat", value.Bool_(true))
	assert.Equal(t, 1.0, v.F)
}

func TestToString(t *testing.T) {
	table := New()
	v := call(t, table, "toString", value.Int64(7))
	assert.Equal(t, "7", v.S)
}

func TestSqrtAcceptsIntAndFloat(t *testing.T) {
	table := New()
	v1 := call(t, table, "sqrt", value.Int64(4))
	assert.InDelta(t, 2.0, v1.F, 1e-9)
	v2 := call(t, table, "sqrt", value.Float64(9.0))
	assert.InDelta(t, 3.0, v2.F, 1e-9)
}

func TestFloorKeepsIntUnchanged(t *testing.T) {
	table := New()
	v := call(t, table, "floor", value.Int64(5))
	assert.EqualValues(t, 5, v.I)
}

func TestFilterKeepsMatchingElements(t *testing.T) {
	table := New()
	arr := value.Arr_(nil, []value.Value{value.Int64(1), value.Int64(2), value.Int64(3)})
	isEven := value.Fn(&fn{arity: 1, call: func(args []value.Value) (value.Value, error) {
		return value.Bool_(args[0].I%2 == 0), nil
	}}, nil)
	out := call(t, table, "filter", arr, isEven)
	require.Len(t, out.Arr, 1)
	assert.EqualValues(t, 2, out.Arr[0].I)
}

func TestMapTransformsEachElement(t *testing.T) {
	table := New()
	arr := value.Arr_(nil, []value.Value{value.Int64(1), value.Int64(2)})
	double := value.Fn(&fn{arity: 1, call: func(args []value.Value) (value.Value, error) {
		return value.Int64(args[0].I * 2), nil
	}}, nil)
	out := call(t, table, "map", arr, double)
	require.Len(t, out.Arr, 2)
	assert.EqualValues(t, 4, out.Arr[1].I)
}

func TestSplitOnDelimiter(t *testing.T) {
	table := New()
	out := call(t, table, "split", value.Str("a,b,c"), value.Str(","))
	require.Len(t, out.Arr, 3)
	assert.Equal(t, "b", out.Arr[1].S)
}

func TestReplaceOnlyFirstOccurrence(t *testing.T) {
	table := New()
	out := call(t, table, "replace", value.Str("aaa"), value.Str("a"), value.Str("b"))
	assert.Equal(t, "baa", out.S)
}

func TestReplaceAllOccurrences(t *testing.T) {
	table := New()
	out := call(t, table, "replaceAll", value.Str("aaa"), value.Str("a"), value.Str("b"))
	assert.Equal(t, "bbb", out.S)
}

func TestIndexOfMissReturnsNegativeOne(t *testing.T) {
	table := New()
	out := call(t, table, "indexOf", value.Str("hello"), value.Str("z"))
	assert.EqualValues(t, -1, out.I)
}

func TestStartsWith(t *testing.T) {
	table := New()
	out := call(t, table, "startsWith", value.Str("hello"), value.Str("he"))
	assert.True(t, out.B)
}
