package props

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsRecord(t *testing.T) {
	assert.True(t, IsRecord(Set{}))
	assert.True(t, IsRecord(map[string]any{"a": 1}))

	assert.False(t, IsRecord(nil))
	assert.False(t, IsRecord(Set(nil)))
	assert.False(t, IsRecord(map[string]int{"a": 1}))
	assert.False(t, IsRecord([]any{1}))
	assert.False(t, IsRecord(struct{ A int }{1}))
	assert.False(t, IsRecord(&map[string]any{}))
	assert.False(t, IsRecord("record"))
}

func TestAsRecord_SharesStorage(t *testing.T) {
	m := map[string]any{"a": 1}
	s, ok := AsRecord(m)

	assert.True(t, ok)
	assert.Equal(t, Set{"a": 1}, s)

	_, ok = AsRecord(42)
	assert.False(t, ok)
}

func TestAssign_LaterKeysWin(t *testing.T) {
	in := Set{"foo": 1, "bar": 1}
	derived := Set{"bar": 2}

	out := Assign(in, derived)

	assert.Equal(t, Set{"foo": 1, "bar": 2}, out)
	assert.Equal(t, Set{"foo": 1, "bar": 1}, in, "inputs untouched")
}

func TestAssign_Empty(t *testing.T) {
	assert.Equal(t, Set{}, Assign())
	assert.Equal(t, Set{}, Assign(nil, nil))
}

func TestMapValues(t *testing.T) {
	square := func(v any) any { n := v.(int); return n * n }

	assert.Equal(t, Set{"a": 1, "b": 4, "c": 9}, MapValues(Set{"a": 1, "b": 2, "c": 3}, square))
	assert.Equal(t, Set{}, MapValues(nil, square))
	assert.Equal(t, Set{}, MapValues(Set{}, square))
}

func TestSet_CloneAndKeys(t *testing.T) {
	s := Set{"b": 2, "a": 1, "c": 3}
	c := s.Clone()
	c["d"] = 4

	assert.Len(t, s, 3)
	assert.Equal(t, []string{"a", "b", "c"}, s.Keys())
	assert.Equal(t, Set{}, Set(nil).Clone())
}
