// Package rxprops is a reactive property-composition engine.
//
// Given a continuously-updating stream of input property sets and a set of
// user-supplied pure derivations, it produces one continuously-updating merged
// output stream plus a dispatchable actions side-channel.
//
// # Packages
//
//  1. props: PropertySet type and the one-level shallow equality used for de-duplication
//  2. stream: synchronous push streams, subjects and the operators the engine is built from
//  3. actions: turns a map of action name -> transducer into a live actions controller
//  4. dispatch: taps stream values into an external dispatch sink
//  5. compose: the engine, merging raw input, derived input and action patches
//  6. selector: memoized derived-value streams over a shared state stream
//  7. host: a lifecycle binding that feeds snapshots in and folds output into state
//
// # Basic Usage
//
//	c, err := compose.Compose(
//	    compose.Mapper(func(in stream.Stream[props.Set], _ *dispatch.Tapper) stream.Stream[any] {
//	        return stream.Map(in, func(p props.Set) any {
//	            return props.Set{"label": fmt.Sprintf("bar=%v", p["bar"])}
//	        })
//	    }),
//	    actions.Definitions{
//	        "inc": func(n stream.Stream[any]) stream.Stream[any] {
//	            return stream.Map(n, func(v any) any { return props.Set{"count": v} })
//	        },
//	    },
//	)
//	if err != nil {
//	    return err
//	}
//
//	b := host.Attach(c, props.Set{"bar": 1})
//	defer b.Teardown()
//
//	b.Invoke("inc", 5)
//	b.Update(props.Set{"bar": 2})
//	fmt.Println(b.State()) // bar=2, count=5, label="bar=2", inc=<action>
//
// # Concurrency
//
// The engine is single-threaded and push based. Every emission is delivered
// synchronously on the goroutine that produced it; nothing inside the engine
// starts goroutines, blocks, or schedules work for later.
//
// # Errors
//
// Misconfiguration fails synchronously with an error wrapping
// ErrInvalidArgument, before any stream is subscribed. Errors produced inside
// mappers and transducers travel down the stream and terminate it.
package rxprops
