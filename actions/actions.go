// Package actions turns a declarative map of action transducers into a live
// stream of property-set patches plus a controller that feeds it.
//
// For every definition key the factory allocates one private argument
// subject. The controller's action for that key pushes its argument into the
// subject; the key's transducer maps the subject to a patch stream. The
// factory stream emits the controller first, then every patch stream merged.
package actions

import (
	"sort"
	"sync"

	"github.com/roach88/rxprops"
	"github.com/roach88/rxprops/props"
	"github.com/roach88/rxprops/stream"
)

// Transducer maps a stream of action arguments to a stream of patches.
type Transducer func(args stream.Stream[any]) stream.Stream[any]

// Definitions maps action names to transducers.
type Definitions map[string]Transducer

// Action pushes arg into its action's argument stream and returns arg.
type Action func(arg any) any

// Controller maps action names to their actions.
type Controller map[string]Action

// Set returns the controller as the property set emitted downstream.
func (c Controller) Set() props.Set {
	out := make(props.Set, len(c))
	for k, a := range c {
		out[k] = a
	}
	return out
}

// ControllerOf collects every Action value of s. It reports false when s
// holds no actions.
func ControllerOf(s props.Set) (Controller, bool) {
	c := Controller{}
	for k, v := range s {
		if a, ok := v.(Action); ok {
			c[k] = a
		}
	}
	return c, len(c) > 0
}

// CreateObservable builds the action stream for definitions.
//
// definitions may be nil (an empty stream), a stream.Stream[any] (returned
// unchanged), or a record of transducers: Definitions,
// map[string]Transducer, map[string]func(stream.Stream[any]) stream.Stream[any]
// or a map[string]any holding only transducers. Anything else is an
// *rxprops.ArgumentError.
func CreateObservable(definitions any) (stream.Stream[any], error) {
	s, _, err := Build(definitions)
	return s, err
}

// Build is CreateObservable that also returns a release func. Release
// completes every argument stream; actions invoked afterwards are ignored.
// Release is idempotent and never nil.
func Build(definitions any) (stream.Stream[any], func(), error) {
	if definitions == nil {
		return stream.Empty[any](), func() {}, nil
	}
	if s, ok := definitions.(stream.Stream[any]); ok {
		return s, func() {}, nil
	}

	defs, err := ParseDefinitions(definitions)
	if err != nil {
		return nil, nil, err
	}
	if defs == nil {
		return stream.Empty[any](), func() {}, nil
	}

	b := newBinding(defs)
	return b.stream(), b.release, nil
}

// ParseDefinitions normalizes the accepted record shapes into Definitions.
// A nil map of a record type yields nil Definitions. Streams and untyped nil
// are not records; callers that accept them check first.
func ParseDefinitions(v any) (Definitions, error) {
	const op = "actions.CreateObservable"

	switch d := v.(type) {
	case Definitions:
		return d, checkTransducers(op, d)
	case map[string]Transducer:
		return Definitions(d), checkTransducers(op, d)
	case map[string]func(stream.Stream[any]) stream.Stream[any]:
		if d == nil {
			return nil, nil
		}
		defs := make(Definitions, len(d))
		for k, f := range d {
			defs[k] = f
		}
		return defs, checkTransducers(op, defs)
	case props.Set:
		return fromRecord(op, d)
	case map[string]any:
		return fromRecord(op, d)
	default:
		return nil, rxprops.NewArgumentError(op, "definitions",
			"definitions must be a plain record or a stream", v)
	}
}

func fromRecord(op string, rec map[string]any) (Definitions, error) {
	if rec == nil {
		return nil, nil
	}
	defs := make(Definitions, len(rec))
	for k, v := range rec {
		switch f := v.(type) {
		case Transducer:
			defs[k] = f
		case func(stream.Stream[any]) stream.Stream[any]:
			defs[k] = f
		default:
			return nil, rxprops.NewArgumentError(op, "definitions."+k,
				"transducer must be a func(stream.Stream[any]) stream.Stream[any]", v)
		}
	}
	return defs, checkTransducers(op, defs)
}

func checkTransducers[M ~map[string]Transducer](op string, defs M) error {
	for k, f := range defs {
		if f == nil {
			return rxprops.NewArgumentError(op, "definitions."+k, "transducer must not be nil", nil)
		}
	}
	return nil
}

// binding holds the argument subjects of one Build call.
type binding struct {
	keys       []string
	defs       Definitions
	subjects   map[string]*stream.Subject[any]
	controller Controller
	once       sync.Once
}

func newBinding(defs Definitions) *binding {
	keys := make([]string, 0, len(defs))
	for k := range defs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	b := &binding{
		keys:       keys,
		defs:       defs,
		subjects:   make(map[string]*stream.Subject[any], len(defs)),
		controller: make(Controller, len(defs)),
	}
	for _, k := range keys {
		subj := stream.NewSubject[any]()
		b.subjects[k] = subj
		b.controller[k] = func(arg any) any {
			subj.Next(arg)
			return arg
		}
	}
	return b
}

// stream emits the controller, then the merged patch streams. Transducers
// run once per subscription; the argument subjects are shared.
func (b *binding) stream() stream.Stream[any] {
	return stream.New(func(o stream.Observer[any]) func() {
		srcs := make([]stream.Stream[any], 0, len(b.keys)+1)
		srcs = append(srcs, stream.Of[any](b.controller.Set()))
		for _, k := range b.keys {
			out := b.defs[k](b.subjects[k].Stream())
			if out == nil {
				out = stream.Empty[any]()
			}
			srcs = append(srcs, out)
		}
		return stream.Merge(srcs...).Subscribe(o).Unsubscribe
	})
}

func (b *binding) release() {
	b.once.Do(func() {
		for _, k := range b.keys {
			b.subjects[k].Complete()
		}
	})
}
