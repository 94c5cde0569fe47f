package capture

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustJSON(t *testing.T, v *Value) string {
	t.Helper()
	b, err := v.MarshalJSON()
	require.NoError(t, err)
	return string(b)
}

func TestValue_SetScalar(t *testing.T) {
	obj := Object()
	obj.Set("name", String("Wolf"))
	assert.Equal(t, `{"name":"Wolf"}`, mustJSON(t, obj))
}

func TestValue_SetDuplicatePromotesToArray(t *testing.T) {
	obj := Object()
	obj.Set("x", String("a"))
	obj.Set("x", String("b"))
	obj.Set("x", String("c"))
	assert.Equal(t, `{"x":["a","b","c"]}`, mustJSON(t, obj))
}

func TestValue_KeysKeepInsertionOrder(t *testing.T) {
	obj := Object()
	obj.Set("zebra", String("1"))
	obj.Set("apple", String("2"))
	obj.Set("mango", String("3"))
	assert.Equal(t, `{"zebra":"1","apple":"2","mango":"3"}`, mustJSON(t, obj))
	assert.Equal(t, []string{"zebra", "apple", "mango"}, obj.Keys())
}

func TestValue_AppendAlwaysProducesArray(t *testing.T) {
	obj := Object()
	obj.Append("item", String("only"))
	assert.Equal(t, `{"item":["only"]}`, mustJSON(t, obj))

	obj.Append("item", String("second"))
	assert.Equal(t, `{"item":["only","second"]}`, mustJSON(t, obj))
}

func TestValue_AppendNestedObjects(t *testing.T) {
	obj := Object()
	inner := Object()
	inner.Set("item", String("Apples"))
	inner.Append("note", String("organic"))
	inner.Append("note", String("local"))
	obj.Append("item", inner)

	assert.Equal(t, `{"item":[{"item":"Apples","note":["organic","local"]}]}`, mustJSON(t, obj))
}

func TestValue_RemoveLast(t *testing.T) {
	obj := Object()
	obj.Append("x", String("a"))
	obj.Append("x", String("b"))
	obj.RemoveLast("x")
	assert.Equal(t, `{"x":["a"]}`, mustJSON(t, obj))

	// No-op when nothing is there.
	obj2 := Object()
	obj2.RemoveLast("missing")
	assert.Equal(t, `{}`, mustJSON(t, obj2))
}

func TestValue_StringEscaping(t *testing.T) {
	obj := Object()
	obj.Set("s", String("a \"quoted\" value\nwith newline"))
	assert.Equal(t, `{"s":"a \"quoted\" value\nwith newline"}`, mustJSON(t, obj))
}

func TestStore_ScopesAndRollback(t *testing.T) {
	s := NewStore()
	s.Add("top", "level")

	scope := Object()
	s.Push(scope)
	s.Add("inner", "value")
	assert.Equal(t, scope, s.Scope())

	// Dropping the scope without merging discards its captures.
	s.Pop()
	assert.Equal(t, `{"top":"level"}`, mustJSON(t, s.Root()))

	// Merging appends the completed scope under a label.
	scope2 := Object()
	s.Push(scope2)
	s.Add("inner", "kept")
	s.Pop()
	s.Append("items", scope2)
	assert.Equal(t, `{"top":"level","items":[{"inner":"kept"}]}`, mustJSON(t, s.Root()))
}

func TestStore_UnderscoreSuppressed(t *testing.T) {
	s := NewStore()
	s.Add("_", "hidden")
	s.Add("", "also hidden")
	s.Append("_", String("hidden too"))
	assert.True(t, s.Root().Empty())
}

func TestStore_RootNeverPopped(t *testing.T) {
	s := NewStore()
	root := s.Root()
	s.Pop()
	s.Pop()
	assert.Equal(t, root, s.Scope())
}
