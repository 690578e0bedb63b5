package actions

import (
	"github.com/roach88/rxprops/dispatch"
	"github.com/roach88/rxprops/stream"
)

// Dispatched wraps every transducer of defs so that its output is sent to
// the Tapper's dispatcher instead of being emitted. The wrapped patch streams
// emit nothing and only forward termination, so the controller is the sole
// value the resulting factory stream carries.
func Dispatched(defs Definitions, t *dispatch.Tapper) Definitions {
	out := make(Definitions, len(defs))
	for k, f := range defs {
		if f == nil {
			out[k] = nil
			continue
		}
		out[k] = func(args stream.Stream[any]) stream.Stream[any] {
			return stream.IgnoreElements[any, any](t.Tap(f(args), dispatch.Creators{}))
		}
	}
	return out
}
