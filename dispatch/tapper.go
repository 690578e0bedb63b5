package dispatch

import "github.com/roach88/rxprops/stream"

// Tapper is a Dispatcher bound once for a composition. A nil Tapper, or one
// bound to a nil Dispatcher, dispatches nothing and passes values through.
type Tapper struct {
	d Dispatcher
}

// Bind returns a Tapper that dispatches to d.
func Bind(d Dispatcher) *Tapper {
	return &Tapper{d: d}
}

// Tap is Tap bound to the Tapper's dispatcher.
func (t *Tapper) Tap(src stream.Stream[any], c Creators) stream.Stream[any] {
	return Tap(src, t.Dispatcher(), c)
}

// Now is Now bound to the Tapper's dispatcher.
func (t *Tapper) Now(action any) (any, error) {
	return Now(action, t.Dispatcher())
}

// Dispatcher returns the bound dispatcher, nil when unbound.
func (t *Tapper) Dispatcher() Dispatcher {
	if t == nil {
		return nil
	}
	return t.d
}
