package device

import (
	"sync/atomic"

	"picoos/errcode"
)

// Cell holds one peripheral handle and enforces a single borrower at a time.
// Borrowing never blocks: an overlapping borrow fails with errcode.Busy.
type Cell[T any] struct {
	v       T
	present bool
	held    atomic.Bool
}

// NewCell wraps v. present is false for an optional peripheral the board
// does not have.
func NewCell[T any](v T, present bool) *Cell[T] {
	return &Cell[T]{v: v, present: present}
}

// Present reports whether the cell holds a peripheral.
func (c *Cell[T]) Present() bool { return c != nil && c.present }

// Borrow takes the peripheral. The returned release must be called exactly
// once; extra calls are ignored.
func (c *Cell[T]) Borrow() (T, func(), error) {
	var zero T
	if !c.Present() {
		return zero, nil, errcode.Unsupported
	}
	if !c.held.CompareAndSwap(false, true) {
		return zero, nil, errcode.Busy
	}
	var once atomic.Bool
	return c.v, func() {
		if once.CompareAndSwap(false, true) {
			c.held.Store(false)
		}
	}, nil
}

// With runs fn with the peripheral borrowed for its duration.
func (c *Cell[T]) With(fn func(T) error) error {
	v, release, err := c.Borrow()
	if err != nil {
		return err
	}
	defer release()
	return fn(v)
}

// Held reports whether the peripheral is currently borrowed.
func (c *Cell[T]) Held() bool { return c != nil && c.held.Load() }
