// Package host attaches a composer to a host lifecycle: the host pushes
// input snapshots and keeps the merged output as its state.
//
// A Binding owns the raw input behavior and the single output subscription.
// Every output snapshot is shallow-merged into the binding state, so action
// controllers and action patches accumulate alongside the combined props.
// Teardown is the one cancellation point: it completes the raw input and
// releases the output subscription, which in turn completes every action
// argument stream of the binding.
package host

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/roach88/rxprops/actions"
	"github.com/roach88/rxprops/compose"
	"github.com/roach88/rxprops/dispatch"
	"github.com/roach88/rxprops/props"
	"github.com/roach88/rxprops/stream"
)

// ErrUnknownAction is returned by Invoke for a name with no action in state.
var ErrUnknownAction = errors.New("unknown action")

// ErrTornDown is returned by Invoke after Teardown.
var ErrTornDown = errors.New("binding torn down")

// Emission is one output snapshot applied to a binding.
type Emission struct {
	// Seq is the binding clock value stamped on the emission.
	Seq int64

	// Snapshot is the emitted property set.
	Snapshot props.Set

	// State is the binding state after the snapshot was merged.
	State props.Set
}

// Binding is a composer attached to a host.
type Binding struct {
	id     string
	raw    *stream.Behavior[props.Set]
	logger *slog.Logger
	clock  Clock
	onEmit []func(Emission)

	mu    sync.Mutex
	state props.Set
	err   error
	done  bool
	sub   stream.Subscription

	teardown sync.Once
}

// Option configures a Binding.
type Option func(*config)

type config struct {
	logger     *slog.Logger
	dispatcher dispatch.Dispatcher
	tokens     TokenGenerator
	clock      Clock
	onEmit     []func(Emission)
}

// WithLogger sets the binding logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithDispatcher sets the dispatcher handed to the composer's mappers.
func WithDispatcher(d dispatch.Dispatcher) Option {
	return func(c *config) {
		c.dispatcher = d
	}
}

// WithTokenGenerator sets the binding ID generator. Default: UUIDv7Generator.
func WithTokenGenerator(g TokenGenerator) Option {
	return func(c *config) {
		if g != nil {
			c.tokens = g
		}
	}
}

// WithClock sets the clock that stamps emissions.
func WithClock(clk Clock) Option {
	return func(c *config) {
		if clk != nil {
			c.clock = clk
		}
	}
}

// OnEmit registers fn to run after every emission is merged into state.
// Hooks run synchronously, in registration order.
func OnEmit(fn func(Emission)) Option {
	return func(c *config) {
		if fn != nil {
			c.onEmit = append(c.onEmit, fn)
		}
	}
}

// Attach binds c to a new raw input seeded with initial and subscribes to
// the output. Snapshots the composer emits synchronously while attaching
// are already applied when Attach returns.
func Attach(c *compose.Composer, initial props.Set, opts ...Option) *Binding {
	cfg := config{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		tokens: UUIDv7Generator{},
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.clock == nil {
		cfg.clock = &counter{}
	}

	b := &Binding{
		id:     cfg.tokens.Generate(),
		raw:    stream.NewBehavior(initial.Clone()),
		clock:  cfg.clock,
		onEmit: cfg.onEmit,
		state:  initial.Clone(),
	}
	b.logger = cfg.logger.With("binding", b.id)
	b.logger.Debug("attaching", "initial_keys", initial.Keys())

	sub := c.Bind(b.raw.Stream(), cfg.dispatcher).Subscribe(stream.Funcs[props.Set]{
		OnNext:     b.apply,
		OnError:    b.fail,
		OnComplete: b.complete,
	})

	b.mu.Lock()
	b.sub = sub
	b.mu.Unlock()
	return b
}

// ID returns the binding ID.
func (b *Binding) ID() string {
	return b.id
}

// Update pushes the next input snapshot. It does nothing after Teardown.
func (b *Binding) Update(next props.Set) {
	if b.Done() {
		b.logger.Debug("update after done ignored")
		return
	}
	b.raw.Next(next)
}

// State returns a copy of the current state.
func (b *Binding) State() props.Set {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state.Clone()
}

// Err returns the error that terminated the output, if any.
func (b *Binding) Err() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.err
}

// Done reports whether the output has terminated or the binding was torn
// down.
func (b *Binding) Done() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.done
}

// Actions returns the actions present in state.
func (b *Binding) Actions() actions.Controller {
	c, _ := actions.ControllerOf(b.State())
	return c
}

// Invoke calls the named action with arg and returns the action's result.
// Once the binding is done it returns the output error when the output
// failed and ErrTornDown otherwise.
func (b *Binding) Invoke(name string, arg any) (any, error) {
	if err := b.terminated(); err != nil {
		return nil, fmt.Errorf("invoke %q: %w", name, err)
	}
	a, ok := b.Actions()[name]
	if !ok {
		return nil, fmt.Errorf("invoke %q: %w", name, ErrUnknownAction)
	}
	b.logger.Debug("invoking action", "action", name)
	return a(arg), nil
}

func (b *Binding) terminated() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	switch {
	case !b.done:
		return nil
	case b.err != nil:
		return b.err
	default:
		return ErrTornDown
	}
}

// Teardown completes the raw input and releases the output subscription.
// It is idempotent.
func (b *Binding) Teardown() {
	b.teardown.Do(func() {
		b.raw.Complete()

		b.mu.Lock()
		sub := b.sub
		b.done = true
		b.mu.Unlock()

		if sub != nil {
			sub.Unsubscribe()
		}
		b.logger.Debug("torn down")
	})
}

func (b *Binding) apply(s props.Set) {
	b.mu.Lock()
	b.state = props.Assign(b.state, s)
	e := Emission{Seq: b.clock.Next(), Snapshot: s, State: b.state.Clone()}
	b.mu.Unlock()

	b.logger.Debug("emission applied", "seq", e.Seq, "keys", s.Keys())
	for _, fn := range b.onEmit {
		fn(e)
	}
}

func (b *Binding) fail(err error) {
	b.mu.Lock()
	b.err = err
	b.done = true
	b.mu.Unlock()
	b.logger.Error("output failed", "error", err)
}

func (b *Binding) complete() {
	b.mu.Lock()
	b.done = true
	b.mu.Unlock()
	b.logger.Debug("output completed")
}
