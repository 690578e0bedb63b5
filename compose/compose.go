// Package compose is the property composer: it merges raw input, derived
// input and action patches into one de-duplicated property stream.
//
// For every subscription of a bound stream:
//
//	input$    = distinct(raw, props.IsSame)
//	derived$  = records(mapper(input$, tapper))
//	combined$ = distinct(combineLatest(input$, derived$, assign), props.IsSame)
//	actions$  = records(actions.Build(actionsMapper(combined$, tapper)))
//	output    = merge(combined$, actions$)
//
// Derived keys override input keys. Action patches are not de-duplicated
// against the combined snapshot. The action argument streams of a
// subscription are completed when the raw input terminates or the
// subscription is released; invoking an action after that does nothing.
package compose

import (
	"context"
	"io"
	"log/slog"

	"github.com/roach88/rxprops"
	"github.com/roach88/rxprops/actions"
	"github.com/roach88/rxprops/dispatch"
	"github.com/roach88/rxprops/props"
	"github.com/roach88/rxprops/stream"
)

// Composer holds a resolved mapper and actions mapper. It is immutable and
// may be bound any number of times.
type Composer struct {
	mapper  Mapper
	actions ActionsMapper
	logger  *slog.Logger
}

// Option configures a Composer.
type Option func(*Composer)

// WithLogger sets the logger used for bind and emission debug logs.
func WithLogger(l *slog.Logger) Option {
	return func(c *Composer) {
		if l != nil {
			c.logger = l
		}
	}
}

// Compose validates its arguments and returns a Composer.
//
// mapper is resolved with ParseMapperArg. An actions record in mapper
// position is used as the definitions argument, so Compose(rec, nil) is
// Compose(nil, rec); giving definitions in both positions is an error.
// definitions may be nil, an actions record, a stream.Stream[any] of
// patches, or an ActionsMapper. Invalid arguments fail here with an
// *rxprops.ArgumentError, before any stream exists.
func Compose(mapper any, definitions any, opts ...Option) (*Composer, error) {
	arg, err := ParseMapperArg(mapper)
	if err != nil {
		return nil, err
	}

	var m Mapper
	switch a := arg.(type) {
	case Mapper:
		m = a
	case Actions:
		if definitions != nil {
			return nil, rxprops.NewArgumentError("compose.Compose", "definitions",
				"definitions given in both mapper and definitions position", definitions)
		}
		m = Identity()
		definitions = a
	}

	am, err := parseActions(definitions)
	if err != nil {
		return nil, err
	}

	c := &Composer{
		mapper:  m,
		actions: am,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// MustCompose is Compose that panics on error.
func MustCompose(mapper any, definitions any, opts ...Option) *Composer {
	c, err := Compose(mapper, definitions, opts...)
	if err != nil {
		panic(err)
	}
	return c
}

// Bind returns the output stream for raw. d receives actions dispatched
// through the Tapper handed to the mappers; it may be nil.
//
// raw is normally a *stream.Behavior owned by the host. Each subscription of
// the result builds its own graph and its own action argument streams.
func (c *Composer) Bind(raw stream.Stream[props.Set], d dispatch.Dispatcher) stream.Stream[props.Set] {
	tapper := dispatch.Bind(d)

	return stream.New(func(o stream.Observer[props.Set]) func() {
		var release func()
		releaseArgs := func() {
			if release != nil {
				release()
			}
		}

		input := stream.DistinctUntilChanged(
			stream.Tap(raw, stream.Funcs[props.Set]{
				OnError:    func(error) { releaseArgs() },
				OnComplete: releaseArgs,
			}),
			sameSet,
		)

		derived := records(c.mapper(input, tapper))

		combined := stream.DistinctUntilChanged(
			stream.CombineLatestWith(assign, input, derived),
			sameSet,
		)

		acts, rel, err := actions.Build(c.actions(combined, tapper))
		if err != nil {
			c.logger.Debug("bind failed", "error", err)
			o.Error(err)
			return nil
		}
		release = rel

		c.logger.Debug("bound")
		out := stream.Merge(combined, records(acts))
		if c.logger.Enabled(context.Background(), slog.LevelDebug) {
			out = stream.Tap(out, stream.Funcs[props.Set]{
				OnNext: func(s props.Set) {
					c.logger.Debug("emit", "keys", s.Keys())
				},
				OnError: func(err error) {
					c.logger.Debug("output error", "error", err)
				},
			})
		}

		sub := out.Subscribe(o)
		return func() {
			sub.Unsubscribe()
			release()
		}
	})
}

func sameSet(a, b props.Set) bool {
	return props.IsSame(a, b)
}

func assign(v []props.Set) props.Set {
	return props.Assign(v...)
}

// records keeps the plain-record values of s.
func records(s stream.Stream[any]) stream.Stream[props.Set] {
	if s == nil {
		return stream.Empty[props.Set]()
	}
	return stream.FilterMap(s, props.AsRecord)
}
