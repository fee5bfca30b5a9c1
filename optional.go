package csp

import "fmt"

// Optional is the result of a receive: either a value, or the news that
// the channel is closed and has nothing more to deliver.
type Optional[T any] struct {
	v  T
	ok bool
}

// Some wraps a received value.
func Some[T any](v T) Optional[T] {
	return Optional[T]{v: v, ok: true}
}

// None is the closed result.
func None[T any]() Optional[T] {
	return Optional[T]{}
}

// Ok reports whether the Optional holds a value.
func (o Optional[T]) Ok() bool {
	return o.ok
}

// Get returns the value and whether there is one, in comma-ok form.
func (o Optional[T]) Get() (T, bool) {
	return o.v, o.ok
}

// Value returns the held value. It panics on a closed result.
func (o Optional[T]) Value() T {
	if !o.ok {
		panic("csp: Value of a closed Optional")
	}
	return o.v
}

// OrElse returns the held value, or def on a closed result.
func (o Optional[T]) OrElse(def T) T {
	if !o.ok {
		return def
	}
	return o.v
}

func (o Optional[T]) String() string {
	if !o.ok {
		return "None"
	}
	return fmt.Sprintf("Some(%v)", o.v)
}
