package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/rxprops/props"
	"github.com/roach88/rxprops/stream"
)

func TestDerive(t *testing.T) {
	ops := []MapperOp{
		{Op: OpDropUnless, From: "on"},
		{Op: OpCopy, Key: "v", From: "x"},
		{Op: OpSum, Key: "n", Fields: []string{"v", "y"}},
	}

	assert.Equal(t, props.Set{"v": 2, "n": 5}, derive(ops, props.Set{"on": true, "x": 2, "y": 3}))
	assert.Nil(t, derive(ops, props.Set{"on": false, "x": 2}))
	assert.Nil(t, derive(ops, props.Set{"x": 2}))
}

func TestDerive_SumSkipsNonNumbers(t *testing.T) {
	ops := []MapperOp{{Op: OpSum, Key: "n", Fields: []string{"a", "s", "b"}}}
	assert.Equal(t, props.Set{"n": 3}, derive(ops, props.Set{"a": 1, "s": "two", "b": 2}))
}

func TestDerive_ConcatSkipsMissing(t *testing.T) {
	ops := []MapperOp{{Op: OpConcat, Key: "s", Fields: []string{"a", "missing", "b"}, Sep: "/"}}
	assert.Equal(t, props.Set{"s": "x/true"}, derive(ops, props.Set{"a": "x", "b": true}))
}

func TestAdd(t *testing.T) {
	n, ok := add(1, 2)
	assert.True(t, ok)
	assert.Equal(t, 3, n)

	n, ok = add(1, 0.5)
	assert.True(t, ok)
	assert.Equal(t, 1.5, n)

	n, ok = add(4, nil)
	assert.True(t, ok)
	assert.Equal(t, 4, n)

	_, ok = add(1, "x")
	assert.False(t, ok)
}

func TestTruthy(t *testing.T) {
	for _, v := range []any{true, "x", 1, 0.5, []int{}, props.Set{}} {
		assert.True(t, truthy(v), "%#v", v)
	}
	for _, v := range []any{nil, false, "", 0, 0.0} {
		assert.False(t, truthy(v), "%#v", v)
	}
}

func collect(t *testing.T, s stream.Stream[any]) []any {
	t.Helper()
	var got []any
	sub := s.Subscribe(stream.OnNext(func(v any) { got = append(got, v) }))
	t.Cleanup(sub.Unsubscribe)
	return got
}

func TestBuildActions(t *testing.T) {
	defs, err := buildActions(map[string]ActionOp{
		"patch":  {Op: OpPatch, Key: "k"},
		"reset":  {Op: OpPatch, Key: "k", Value: 0},
		"acc":    {Op: OpAccumulate, Key: "n"},
		"merge":  {Op: OpMergeArg},
		"toggle": {Op: OpToggle, Key: "on", Value: true},
	})
	require.NoError(t, err)
	require.Len(t, defs, 5)

	assert.Equal(t, []any{props.Set{"k": "a"}, props.Set{"k": 2}},
		collect(t, defs["patch"](stream.Of[any]("a", 2))))
	assert.Equal(t, []any{props.Set{"k": 0}},
		collect(t, defs["reset"](stream.Of[any]("ignored"))))
	assert.Equal(t, []any{props.Set{"n": 1}, props.Set{"n": 3}, props.Set{"n": 3}},
		collect(t, defs["acc"](stream.Of[any](1, 2, "skip"))))
	assert.Equal(t, []any{props.Set{"x": 1}},
		collect(t, defs["merge"](stream.Of[any](1, map[string]any{"x": 1}, nil))))
	assert.Equal(t, []any{props.Set{"on": false}, props.Set{"on": true}},
		collect(t, defs["toggle"](stream.Of[any](nil, nil))))
}

func TestBuildActions_UnknownOp(t *testing.T) {
	_, err := buildActions(map[string]ActionOp{"x": {Op: "nope"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `action "x": unknown op "nope"`)
}

func TestBuildComposer(t *testing.T) {
	c, err := BuildComposer(&Scenario{Name: "plain"}, nil)
	require.NoError(t, err)
	assert.NotNil(t, c)

	_, err = BuildComposer(&Scenario{Name: "bad", Actions: map[string]ActionOp{"x": {Op: "nope"}}}, nil)
	assert.Error(t, err)
}
