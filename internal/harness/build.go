package harness

import (
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strings"

	"github.com/roach88/rxprops/actions"
	"github.com/roach88/rxprops/compose"
	"github.com/roach88/rxprops/dispatch"
	"github.com/roach88/rxprops/props"
	"github.com/roach88/rxprops/stream"
)

// BuildComposer turns the scenario's mapper and action ops into a composer.
func BuildComposer(s *Scenario, logger *slog.Logger) (*compose.Composer, error) {
	var mapper any
	if len(s.Mapper) > 0 {
		mapper = buildMapper(s.Mapper)
	}

	var defs any
	if len(s.Actions) > 0 {
		d, err := buildActions(s.Actions)
		if err != nil {
			return nil, err
		}
		defs = d
	}

	c, err := compose.Compose(mapper, defs, compose.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("compose %s: %w", s.Name, err)
	}
	return c, nil
}

func buildMapper(ops []MapperOp) compose.Mapper {
	return func(input stream.Stream[props.Set], _ *dispatch.Tapper) stream.Stream[any] {
		return stream.Map(input, func(in props.Set) any {
			return derive(ops, in)
		})
	}
}

// derive applies ops to one input snapshot. It returns nil, which the
// composer drops, when a drop_unless op fails.
func derive(ops []MapperOp, in props.Set) any {
	out := props.Set{}
	lookup := func(k string) any {
		if v, ok := out[k]; ok {
			return v
		}
		return in[k]
	}

	for _, op := range ops {
		switch op.Op {
		case OpCopy:
			out[op.Key] = lookup(op.From)
		case OpSet:
			out[op.Key] = op.Value
		case OpSum:
			var total any = 0
			for _, f := range op.Fields {
				if n, ok := add(total, lookup(f)); ok {
					total = n
				}
			}
			out[op.Key] = total
		case OpConcat:
			parts := make([]string, 0, len(op.Fields))
			for _, f := range op.Fields {
				if v := lookup(f); v != nil {
					parts = append(parts, fmt.Sprint(v))
				}
			}
			out[op.Key] = strings.Join(parts, op.Sep)
		case OpDropUnless:
			if !truthy(lookup(op.From)) {
				return nil
			}
		}
	}
	return out
}

func buildActions(ops map[string]ActionOp) (actions.Definitions, error) {
	defs := make(actions.Definitions, len(ops))
	for _, name := range sortedNames(ops) {
		op := ops[name]
		switch op.Op {
		case OpPatch:
			defs[name] = func(args stream.Stream[any]) stream.Stream[any] {
				return stream.Map(args, func(arg any) any {
					if op.Value != nil {
						return props.Set{op.Key: op.Value}
					}
					return props.Set{op.Key: arg}
				})
			}
		case OpAccumulate:
			var seed any = 0
			if op.Value != nil {
				seed = op.Value
			}
			defs[name] = func(args stream.Stream[any]) stream.Stream[any] {
				sums := stream.Scan(args, seed, func(acc, arg any) any {
					if n, ok := add(acc, arg); ok {
						return n
					}
					return acc
				})
				return stream.Map(sums, func(n any) any { return props.Set{op.Key: n} })
			}
		case OpMergeArg:
			defs[name] = func(args stream.Stream[any]) stream.Stream[any] {
				return stream.FilterMap(args, func(arg any) (any, bool) {
					rec, ok := props.AsRecord(arg)
					if !ok {
						return nil, false
					}
					return rec.Clone(), true
				})
			}
		case OpToggle:
			seed, _ := op.Value.(bool)
			defs[name] = func(args stream.Stream[any]) stream.Stream[any] {
				flips := stream.Scan(args, seed, func(acc bool, _ any) bool { return !acc })
				return stream.Map(flips, func(b bool) any { return props.Set{op.Key: b} })
			}
		default:
			return nil, fmt.Errorf("action %q: unknown op %q", name, op.Op)
		}
		defs[name] = windowed(defs[name], op)
	}
	return defs, nil
}

// windowed narrows the arguments a transducer sees to op's skip and limit.
func windowed(f actions.Transducer, op ActionOp) actions.Transducer {
	if op.Skip == 0 && op.Limit == 0 {
		return f
	}
	return func(args stream.Stream[any]) stream.Stream[any] {
		if op.Skip > 0 {
			args = stream.Skip(args, op.Skip)
		}
		if op.Limit > 0 {
			args = stream.Take(args, op.Limit)
		}
		return f(args)
	}
}

// add sums two numbers. Ints stay ints; anything else becomes float64.
// A nil operand counts as 0; a non-numeric one reports false.
func add(a, b any) (any, bool) {
	if b == nil {
		return a, true
	}
	ai, aInt := a.(int)
	bi, bInt := b.(int)
	if aInt && bInt {
		return ai + bi, true
	}
	af, ok := toFloat(a)
	if !ok {
		return nil, false
	}
	bf, ok := toFloat(b)
	if !ok {
		return nil, false
	}
	return af + bf, true
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

func isNumber(v any) bool {
	_, ok := toFloat(v)
	return ok
}

func truthy(v any) bool {
	switch val := v.(type) {
	case nil:
		return false
	case bool:
		return val
	case string:
		return val != ""
	case int:
		return val != 0
	case float64:
		return val != 0
	}
	return true
}

func sortedNames[V any](m map[string]V) []string {
	return slices.Sorted(maps.Keys(m))
}
