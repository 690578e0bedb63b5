package stream

// Of emits each value in order, then completes.
func Of[T any](values ...T) Stream[T] {
	return New(func(o Observer[T]) func() {
		for _, v := range values {
			if isClosed(o) {
				return nil
			}
			o.Next(v)
		}
		o.Complete()
		return nil
	})
}

// Empty completes immediately without emitting.
func Empty[T any]() Stream[T] {
	return New(func(o Observer[T]) func() {
		o.Complete()
		return nil
	})
}

// Throw terminates immediately with err.
func Throw[T any](err error) Stream[T] {
	return New(func(o Observer[T]) func() {
		o.Error(err)
		return nil
	})
}

// pipe subscribes to src with an observer derived from the downstream one.
// Error and Complete are forwarded unless the derived observer overrides them.
func pipe[T, U any](src Stream[T], build func(o Observer[U]) Funcs[T]) Stream[U] {
	return New(func(o Observer[U]) func() {
		f := build(o)
		if f.OnError == nil {
			f.OnError = o.Error
		}
		if f.OnComplete == nil {
			f.OnComplete = o.Complete
		}
		return src.Subscribe(f).Unsubscribe
	})
}

// Map applies fn to every value.
func Map[T, U any](src Stream[T], fn func(T) U) Stream[U] {
	return pipe(src, func(o Observer[U]) Funcs[T] {
		return Funcs[T]{OnNext: func(v T) { o.Next(fn(v)) }}
	})
}

// TryMap applies fn to every value. The first error fn returns terminates the
// stream with that error.
func TryMap[T, U any](src Stream[T], fn func(T) (U, error)) Stream[U] {
	return pipe(src, func(o Observer[U]) Funcs[T] {
		return Funcs[T]{OnNext: func(v T) {
			u, err := fn(v)
			if err != nil {
				o.Error(err)
				return
			}
			o.Next(u)
		}}
	})
}

// Filter forwards only the values keep accepts.
func Filter[T any](src Stream[T], keep func(T) bool) Stream[T] {
	return pipe(src, func(o Observer[T]) Funcs[T] {
		return Funcs[T]{OnNext: func(v T) {
			if keep(v) {
				o.Next(v)
			}
		}}
	})
}

// FilterMap applies fn and forwards only the results it marks ok.
func FilterMap[T, U any](src Stream[T], fn func(T) (U, bool)) Stream[U] {
	return pipe(src, func(o Observer[U]) Funcs[T] {
		return Funcs[T]{OnNext: func(v T) {
			if u, ok := fn(v); ok {
				o.Next(u)
			}
		}}
	})
}

// DistinctUntilChanged suppresses a value equal (per eq) to the value
// forwarded immediately before it. Each subscription tracks its own last value.
func DistinctUntilChanged[T any](src Stream[T], eq func(a, b T) bool) Stream[T] {
	return pipe(src, func(o Observer[T]) Funcs[T] {
		var last T
		seen := false
		return Funcs[T]{OnNext: func(v T) {
			if seen && eq(last, v) {
				return
			}
			last, seen = v, true
			o.Next(v)
		}}
	})
}

// Scan emits the running accumulation of fn over the values, starting at seed.
func Scan[T, A any](src Stream[T], seed A, fn func(acc A, v T) A) Stream[A] {
	return pipe(src, func(o Observer[A]) Funcs[T] {
		acc := seed
		return Funcs[T]{OnNext: func(v T) {
			acc = fn(acc, v)
			o.Next(acc)
		}}
	})
}

// Tap calls the handlers in f for every notification and forwards each
// notification unchanged.
func Tap[T any](src Stream[T], f Funcs[T]) Stream[T] {
	return pipe(src, func(o Observer[T]) Funcs[T] {
		return Funcs[T]{
			OnNext: func(v T) {
				f.Next(v)
				o.Next(v)
			},
			OnError: func(err error) {
				f.Error(err)
				o.Error(err)
			},
			OnComplete: func() {
				f.Complete()
				o.Complete()
			},
		}
	})
}

// Finalize runs fn once when a subscription to the result terminates or is
// released.
func Finalize[T any](src Stream[T], fn func()) Stream[T] {
	return New(func(o Observer[T]) func() {
		sub := src.Subscribe(o)
		return func() {
			sub.Unsubscribe()
			fn()
		}
	})
}

// Take forwards the first n values, then completes.
func Take[T any](src Stream[T], n int) Stream[T] {
	if n <= 0 {
		return Empty[T]()
	}
	return pipe(src, func(o Observer[T]) Funcs[T] {
		count := 0
		return Funcs[T]{OnNext: func(v T) {
			count++
			o.Next(v)
			if count == n {
				o.Complete()
			}
		}}
	})
}

// Skip drops the first n values.
func Skip[T any](src Stream[T], n int) Stream[T] {
	return pipe(src, func(o Observer[T]) Funcs[T] {
		skipped := 0
		return Funcs[T]{OnNext: func(v T) {
			if skipped < n {
				skipped++
				return
			}
			o.Next(v)
		}}
	})
}

// IgnoreElements drops every value and forwards only termination.
func IgnoreElements[T, U any](src Stream[T]) Stream[U] {
	return pipe(src, func(o Observer[U]) Funcs[T] {
		return Funcs[T]{OnNext: func(T) {}}
	})
}

// Any widens a typed stream to a stream of any.
func Any[T any](src Stream[T]) Stream[any] {
	return Map(src, func(v T) any { return v })
}
