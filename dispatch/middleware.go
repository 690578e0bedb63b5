package dispatch

import "github.com/roach88/rxprops/stream"

// MiddlewareOptions configures Middleware.
type MiddlewareOptions struct {
	// Error builds the action dispatched when a stream action errors.
	Error func(err error) any

	// Complete builds the action dispatched when a stream action completes.
	Complete func() any
}

// Middleware lets a store accept stream actions. Given the store's dispatch
// and the next handler in the chain, it returns a handler that turns a
// stream.Stream[any] action into a tapped stream dispatching every element
// as is. The tapped stream is returned unsubscribed; the caller decides when
// it runs. Any other action goes to next.
func Middleware(opts MiddlewareOptions) func(dispatch Dispatcher) func(next Dispatcher) Dispatcher {
	creators := Creators{
		Value:    func(v any) any { return v },
		Error:    opts.Error,
		Complete: opts.Complete,
	}
	return func(dispatch Dispatcher) func(next Dispatcher) Dispatcher {
		return func(next Dispatcher) Dispatcher {
			return func(action any) (any, error) {
				if s, ok := action.(stream.Stream[any]); ok {
					return Tap(s, dispatch, creators), nil
				}
				if next == nil {
					return action, nil
				}
				return next(action)
			}
		}
	}
}
