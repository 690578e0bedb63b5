package compose

import (
	"github.com/roach88/rxprops"
	"github.com/roach88/rxprops/actions"
	"github.com/roach88/rxprops/dispatch"
	"github.com/roach88/rxprops/props"
	"github.com/roach88/rxprops/stream"
)

// MapperArg is the first argument of Compose: either a Mapper or an Actions
// record. The variant is resolved once, by ParseMapperArg.
type MapperArg interface {
	mapperArg()
}

// Mapper derives properties from the de-duplicated input stream. Values
// that are not plain records are dropped. The Tapper is bound to the
// dispatcher passed to Bind.
type Mapper func(input stream.Stream[props.Set], t *dispatch.Tapper) stream.Stream[any]

func (Mapper) mapperArg() {}

// Actions is an action definitions record given in mapper position. It is
// treated as the definitions argument and the identity mapper is used.
type Actions actions.Definitions

func (Actions) mapperArg() {}

// Identity is the default mapper: it derives nothing new from the input.
func Identity() Mapper {
	return func(input stream.Stream[props.Set], _ *dispatch.Tapper) stream.Stream[any] {
		return stream.Any(input)
	}
}

// ParseMapperArg resolves v into a MapperArg.
//
// Accepted: nil (Identity), a Mapper, an Actions record, the bare mapper func,
// func(stream.Stream[props.Set]) stream.Stream[any],
// func(stream.Stream[props.Set]) stream.Stream[props.Set], and any action
// definitions record accepted by actions.ParseDefinitions. Anything else is
// an *rxprops.ArgumentError.
func ParseMapperArg(v any) (MapperArg, error) {
	const op = "compose.ParseMapperArg"

	switch m := v.(type) {
	case nil:
		return Identity(), nil
	case Mapper:
		if m == nil {
			return Identity(), nil
		}
		return m, nil
	case Actions:
		return m, nil
	case func(stream.Stream[props.Set], *dispatch.Tapper) stream.Stream[any]:
		if m == nil {
			return Identity(), nil
		}
		return Mapper(m), nil
	case func(stream.Stream[props.Set]) stream.Stream[any]:
		if m == nil {
			return Identity(), nil
		}
		return Mapper(func(in stream.Stream[props.Set], _ *dispatch.Tapper) stream.Stream[any] {
			return m(in)
		}), nil
	case func(stream.Stream[props.Set]) stream.Stream[props.Set]:
		if m == nil {
			return Identity(), nil
		}
		return Mapper(func(in stream.Stream[props.Set], _ *dispatch.Tapper) stream.Stream[any] {
			return stream.Any(m(in))
		}), nil
	case actions.Definitions, map[string]actions.Transducer, props.Set, map[string]any,
		map[string]func(stream.Stream[any]) stream.Stream[any]:
		defs, err := actions.ParseDefinitions(m)
		if err != nil {
			return nil, err
		}
		return Actions(defs), nil
	default:
		return nil, rxprops.NewArgumentError(op, "mapper",
			"mapper should be a function or an actions record", v)
	}
}

// ActionsMapper builds the action definitions of a binding from its combined
// property stream. It returns anything actions.Build accepts.
type ActionsMapper func(combined stream.Stream[props.Set], t *dispatch.Tapper) any

// parseActions resolves the definitions argument of Compose into an
// ActionsMapper.
func parseActions(v any) (ActionsMapper, error) {
	const op = "compose.Compose"

	switch d := v.(type) {
	case nil:
		return constant(nil), nil
	case ActionsMapper:
		if d == nil {
			return constant(nil), nil
		}
		return d, nil
	case func(stream.Stream[props.Set], *dispatch.Tapper) any:
		if d == nil {
			return constant(nil), nil
		}
		return ActionsMapper(d), nil
	case func(stream.Stream[props.Set]) any:
		if d == nil {
			return constant(nil), nil
		}
		return func(combined stream.Stream[props.Set], _ *dispatch.Tapper) any {
			return d(combined)
		}, nil
	case stream.Stream[any]:
		return constant(d), nil
	case Actions:
		return constant(actions.Definitions(d)), nil
	case actions.Definitions, map[string]actions.Transducer, props.Set, map[string]any,
		map[string]func(stream.Stream[any]) stream.Stream[any]:
		defs, err := actions.ParseDefinitions(d)
		if err != nil {
			return nil, err
		}
		return constant(defs), nil
	default:
		return nil, rxprops.NewArgumentError(op, "definitions",
			"definitions should be a function, an actions record or a stream", v)
	}
}

func constant(v any) ActionsMapper {
	return func(stream.Stream[props.Set], *dispatch.Tapper) any {
		return v
	}
}
