package stream

// CombineLatest emits a slice of the latest value of every source whenever any
// source emits, once every source has emitted at least once.
//
// Sources are subscribed in order. The result completes when every source has
// completed, or immediately when a source completes without ever emitting.
// The first error from any source terminates the result and releases the
// other sources.
func CombineLatest[T any](srcs ...Stream[T]) Stream[[]T] {
	if len(srcs) == 0 {
		return Empty[[]T]()
	}

	return New(func(o Observer[[]T]) func() {
		n := len(srcs)
		latest := make([]T, n)
		has := make([]bool, n)
		ready := 0
		completed := 0
		subs := &subscriptions{}

		for i, src := range srcs {
			if isClosed(o) {
				break
			}
			sub := src.Subscribe(Funcs[T]{
				OnNext: func(v T) {
					latest[i] = v
					if !has[i] {
						has[i] = true
						ready++
					}
					if ready == n {
						out := make([]T, n)
						copy(out, latest)
						o.Next(out)
					}
				},
				OnError: o.Error,
				OnComplete: func() {
					completed++
					if !has[i] || completed == n {
						o.Complete()
					}
				},
			})
			subs.add(sub)
		}

		return subs.unsubscribeAll
	})
}

// CombineLatestWith combines the latest values of srcs with fn.
func CombineLatestWith[T, R any](fn func(values []T) R, srcs ...Stream[T]) Stream[R] {
	return Map(CombineLatest(srcs...), fn)
}

// Merge forwards every value of every source in the order they are emitted.
//
// The result completes once every source has completed. The first error from
// any source terminates the result and releases the other sources.
func Merge[T any](srcs ...Stream[T]) Stream[T] {
	if len(srcs) == 0 {
		return Empty[T]()
	}

	return New(func(o Observer[T]) func() {
		n := len(srcs)
		completed := 0
		subs := &subscriptions{}

		for _, src := range srcs {
			if isClosed(o) {
				break
			}
			sub := src.Subscribe(Funcs[T]{
				OnNext:  o.Next,
				OnError: o.Error,
				OnComplete: func() {
					completed++
					if completed == n {
						o.Complete()
					}
				},
			})
			subs.add(sub)
		}

		return subs.unsubscribeAll
	})
}
