// Package dispatch forwards stream values to an external action sink.
//
// The two calling conventions are explicit:
//   - Tap is a stream operator. It dispatches an action per value (and,
//     optionally, per error and on completion) and passes every notification
//     through unchanged.
//   - Now dispatches one already-built action immediately.
//
// A Tapper binds a Dispatcher once and is the value handed to mappers.
package dispatch

import (
	"errors"
	"fmt"

	"github.com/roach88/rxprops/stream"
)

// Dispatcher is an external action sink, typically a store's dispatch.
// It returns the dispatched action (or a replacement) and any sink failure.
type Dispatcher func(action any) (any, error)

// Creators turn tapped notifications into actions. Every field is optional.
type Creators struct {
	// Value builds the action for a value. Without it a value that is a
	// func() any is called as an action creator and anything else is
	// dispatched as is.
	Value func(v any) any

	// Error builds the action for an upstream error or a failed dispatch.
	Error func(err error) any

	// Complete builds the action dispatched on completion.
	Complete func() any
}

// DispatchError reports a failure returned by a Dispatcher.
type DispatchError struct {
	// Action is the action that was being dispatched.
	Action any

	// Err is the sink's failure.
	Err error
}

func (e *DispatchError) Error() string {
	return fmt.Sprintf("dispatch %T: %v", e.Action, e.Err)
}

func (e *DispatchError) Unwrap() error {
	return e.Err
}

// IsDispatchError reports whether err is or wraps a *DispatchError.
func IsDispatchError(err error) bool {
	var de *DispatchError
	return errors.As(err, &de)
}

// Tap dispatches an action for every value of src and forwards the value.
//
// On an upstream error, c.Error (when set) is dispatched and the error is
// forwarded untransformed. On completion, c.Complete (when set) is dispatched.
// Nil actions are not dispatched. A failed dispatch is itself converted with
// c.Error when set; otherwise it terminates the result with a *DispatchError.
func Tap[T any](src stream.Stream[T], d Dispatcher, c Creators) stream.Stream[T] {
	return stream.New(func(o stream.Observer[T]) func() {
		sub := src.Subscribe(stream.Funcs[T]{
			OnNext: func(v T) {
				if err := c.dispatch(d, c.valueAction(v)); err != nil {
					o.Error(err)
					return
				}
				o.Next(v)
			},
			OnError: func(err error) {
				if c.Error != nil {
					// The upstream error wins over a failure to report it.
					_, _ = send(d, c.Error(err))
				}
				o.Error(err)
			},
			OnComplete: func() {
				if c.Complete != nil {
					if err := c.dispatch(d, c.Complete()); err != nil {
						o.Error(err)
						return
					}
				}
				o.Complete()
			},
		})
		return sub.Unsubscribe
	})
}

// Now dispatches action immediately. It returns the dispatcher's result, or
// action itself when the dispatcher returns nil or d is nil.
func Now(action any, d Dispatcher) (any, error) {
	res, err := send(d, action)
	if err != nil {
		return action, err
	}
	if res == nil {
		return action, nil
	}
	return res, nil
}

func (c Creators) valueAction(v any) any {
	if c.Value != nil {
		return c.Value(v)
	}
	if create, ok := v.(func() any); ok {
		return create()
	}
	return v
}

// dispatch sends action, converting a sink failure with c.Error when set.
func (c Creators) dispatch(d Dispatcher, action any) error {
	_, err := send(d, action)
	if err == nil || c.Error == nil {
		return err
	}
	_, err = send(d, c.Error(err))
	return err
}

// send calls d unless action is nil. A nil d accepts every action.
func send(d Dispatcher, action any) (any, error) {
	if action == nil || d == nil {
		return action, nil
	}
	res, err := d(action)
	if err != nil {
		return nil, &DispatchError{Action: action, Err: err}
	}
	return res, nil
}
