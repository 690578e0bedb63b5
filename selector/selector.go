// Package selector builds memoized derived-value streams over one shared
// state stream.
//
// A selector combines the latest values of its parent selectors, applies a
// state mapper, and suppresses results equal to the previous one. Selectors
// compose into a graph rooted at the state stream. A parent referenced twice
// is evaluated once per reference; reuse the same Selector value and share
// its output stream to evaluate it once.
package selector

import (
	"github.com/roach88/rxprops"
	"github.com/roach88/rxprops/props"
	"github.com/roach88/rxprops/stream"
)

// Selector derives a stream of values from a state stream.
type Selector[S any] func(state stream.Stream[S]) stream.Stream[any]

// StateMapper maps the latest parent values, in parent order, to a result.
type StateMapper func(args ...any) any

// Comparer reports whether two consecutive results are equal.
type Comparer func(a, b any) bool

// Identity selects the state itself.
func Identity[S any]() Selector[S] {
	return func(state stream.Stream[S]) stream.Stream[any] {
		return stream.Any(state)
	}
}

// Make builds a selector from parents and mapper.
//
// Empty parents default to a single Identity selector. A nil comparer
// defaults to props.Identical. A nil mapper or parent is an
// *rxprops.ArgumentError.
func Make[S any](parents []Selector[S], mapper StateMapper, comparer Comparer) (Selector[S], error) {
	const op = "selector.Make"

	if mapper == nil {
		return nil, rxprops.NewArgumentError(op, "stateMapper", "stateMapper should be a function", nil)
	}
	if len(parents) == 0 {
		parents = []Selector[S]{Identity[S]()}
	}
	for _, p := range parents {
		if p == nil {
			return nil, rxprops.NewArgumentError(op, "parents", "parent selectors should be functions", nil)
		}
	}
	if comparer == nil {
		comparer = props.Identical
	}

	parents = append([]Selector[S](nil), parents...)
	return func(state stream.Stream[S]) stream.Stream[any] {
		args := make([]stream.Stream[any], len(parents))
		for i, p := range parents {
			args[i] = p(state)
		}
		combined := stream.CombineLatestWith(func(v []any) any { return mapper(v...) }, args...)
		return stream.DistinctUntilChanged(combined, comparer)
	}, nil
}

// Of builds a selector over the state itself: Make(nil, mapper, comparer).
func Of[S any](mapper StateMapper, comparer Comparer) (Selector[S], error) {
	return Make[S](nil, mapper, comparer)
}

// MustMake is Make that panics on error.
func MustMake[S any](parents []Selector[S], mapper StateMapper, comparer Comparer) Selector[S] {
	s, err := Make(parents, mapper, comparer)
	if err != nil {
		panic(err)
	}
	return s
}
