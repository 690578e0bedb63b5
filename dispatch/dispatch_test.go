package dispatch

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/rxprops/stream"
)

const doFooType = "DO_FOO"

func doFoo(payload any) any {
	return map[string]any{"type": doFooType, "payload": payload}
}

// sink records every action it receives and echoes it back.
type sink struct {
	calls []any
	fail  func(action any) error
}

func (s *sink) dispatch(action any) (any, error) {
	s.calls = append(s.calls, action)
	if s.fail != nil {
		if err := s.fail(action); err != nil {
			return nil, err
		}
	}
	return action, nil
}

type recorder struct {
	values    []any
	err       error
	completed bool
}

func (r *recorder) Next(v any)      { r.values = append(r.values, v) }
func (r *recorder) Error(err error) { r.err = err }
func (r *recorder) Complete()       { r.completed = true }

func TestNow_DispatchesAndReturnsAction(t *testing.T) {
	s := &sink{}

	got, err := Now(doFoo(123), s.dispatch)

	require.NoError(t, err)
	assert.Equal(t, doFoo(123), got)
	assert.Equal(t, []any{doFoo(123)}, s.calls)
}

func TestNow_ReturnsDispatcherResult(t *testing.T) {
	got, err := Now("raw", func(any) (any, error) { return "dispatched", nil })

	require.NoError(t, err)
	assert.Equal(t, "dispatched", got)
}

func TestNow_NilDispatcherPassesThrough(t *testing.T) {
	got, err := Now(42, nil)

	require.NoError(t, err)
	assert.Equal(t, 42, got)
}

func TestNow_SinkFailure(t *testing.T) {
	boom := errors.New("boom")
	_, err := Now("x", func(any) (any, error) { return nil, boom })

	assert.ErrorIs(t, err, boom)
	assert.True(t, IsDispatchError(err))
}

func TestTap_DispatchesValuesAsActions(t *testing.T) {
	s := &sink{}
	r := &recorder{}

	Tap(stream.Map(stream.Of[any](123), doFoo), s.dispatch, Creators{}).Subscribe(r)

	assert.Equal(t, []any{doFoo(123)}, s.calls)
	assert.Equal(t, []any{doFoo(123)}, r.values)
	assert.True(t, r.completed)
}

func TestTap_ValueCreator(t *testing.T) {
	s := &sink{}
	r := &recorder{}

	Tap(stream.Of[any](123), s.dispatch, Creators{Value: doFoo}).Subscribe(r)

	assert.Equal(t, []any{doFoo(123)}, s.calls)
	assert.Equal(t, []any{123}, r.values, "values pass through unchanged")
}

func TestTap_CallsActionCreators(t *testing.T) {
	s := &sink{}
	creator := func() any { return doFoo(123) }

	r := &recorder{}
	Tap(stream.Of[any](creator), s.dispatch, Creators{}).Subscribe(r)

	assert.Equal(t, []any{doFoo(123)}, s.calls)
	require.Len(t, r.values, 1)
}

func TestTap_SkipsNilActions(t *testing.T) {
	s := &sink{}
	r := &recorder{}

	Tap(stream.Of[any](nil, 1), s.dispatch, Creators{}).Subscribe(r)

	assert.Equal(t, []any{1}, s.calls)
	assert.Equal(t, []any{nil, 1}, r.values)
}

func TestTap_ErrorCreator(t *testing.T) {
	boom := errors.New("boom")
	s := &sink{}
	r := &recorder{}

	Tap(stream.Throw[any](boom), s.dispatch, Creators{
		Error: func(err error) any { return "failed: " + err.Error() },
	}).Subscribe(r)

	assert.Equal(t, []any{"failed: boom"}, s.calls)
	assert.ErrorIs(t, r.err, boom, "error propagates untransformed")
}

func TestTap_ErrorWithoutCreator(t *testing.T) {
	boom := errors.New("boom")
	s := &sink{}
	r := &recorder{}

	Tap(stream.Throw[any](boom), s.dispatch, Creators{}).Subscribe(r)

	assert.Empty(t, s.calls)
	assert.ErrorIs(t, r.err, boom)
}

func TestTap_CompleteCreator(t *testing.T) {
	s := &sink{}
	r := &recorder{}

	Tap(stream.Of[any](1), s.dispatch, Creators{
		Complete: func() any { return "done" },
	}).Subscribe(r)

	assert.Equal(t, []any{1, "done"}, s.calls)
	assert.True(t, r.completed)
}

func TestTap_SinkFailureTerminates(t *testing.T) {
	boom := errors.New("sink down")
	s := &sink{fail: func(action any) error {
		if action == 2 {
			return boom
		}
		return nil
	}}
	r := &recorder{}

	Tap(stream.Of[any](1, 2, 3), s.dispatch, Creators{}).Subscribe(r)

	assert.Equal(t, []any{1}, r.values)
	assert.ErrorIs(t, r.err, boom)
	assert.True(t, IsDispatchError(r.err))
	assert.False(t, r.completed)
}

func TestTap_SinkFailureConvertedByErrorCreator(t *testing.T) {
	boom := errors.New("sink down")
	s := &sink{fail: func(action any) error {
		if action == 2 {
			return boom
		}
		return nil
	}}
	r := &recorder{}

	Tap(stream.Of[any](1, 2, 3), s.dispatch, Creators{
		Error: func(err error) any { return "recovered" },
	}).Subscribe(r)

	assert.Equal(t, []any{1, 2, "recovered", 3}, s.calls)
	assert.Equal(t, []any{1, 2, 3}, r.values)
	assert.NoError(t, r.err)
	assert.True(t, r.completed)
}

func TestTapper_NilIsPassThrough(t *testing.T) {
	var tp *Tapper
	r := &recorder{}

	tp.Tap(stream.Of[any](1, 2), Creators{}).Subscribe(r)
	got, err := tp.Now("x")

	assert.Equal(t, []any{1, 2}, r.values)
	require.NoError(t, err)
	assert.Equal(t, "x", got)
	assert.Nil(t, tp.Dispatcher())
}

func TestTapper_Bound(t *testing.T) {
	s := &sink{}
	tp := Bind(s.dispatch)

	tp.Tap(stream.Of[any]("a"), Creators{}).Subscribe(&recorder{})
	_, err := tp.Now("b")

	require.NoError(t, err)
	assert.Equal(t, []any{"a", "b"}, s.calls)
}
