// Copyright (C) 2020-2026, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package queue implements bounded, closeable channels and the fan-out
// message queues and queue managers built on top of them that carry
// network messages between the transport layer and per-object handlers.
package queue

import (
	"errors"
	"sync"
)

// ErrClosed is returned by Send and Receive once the channel has been
// closed: pending receives reject with it, and new sends fail with it.
var ErrClosed = errors.New("queue: channel is closed")

// Channel is a bounded, blocking, generic channel with explicit close
// semantics: buffered values still drain to callers already waiting on
// Receive when Close is called, but new sends are rejected immediately.
// The underlying buffer is never closed directly, so a racing Send never
// panics against a concurrent Close.
type Channel[T any] struct {
	buf       chan T
	done      chan struct{}
	closeOnce sync.Once
}

// NewChannel returns a Channel with the given capacity, which must be at
// least 1.
func NewChannel[T any](capacity int) *Channel[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &Channel[T]{buf: make(chan T, capacity), done: make(chan struct{})}
}

// Send blocks until there is room in the buffer, or returns ErrClosed if the
// channel has already been closed.
func (c *Channel[T]) Send(v T) error {
	select {
	case <-c.done:
		return ErrClosed
	default:
	}
	select {
	case c.buf <- v:
		return nil
	case <-c.done:
		return ErrClosed
	}
}

// Receive blocks until a value is available or the channel is closed and
// drained, in which case it returns ErrClosed.
func (c *Channel[T]) Receive() (T, error) {
	select {
	case v := <-c.buf:
		return v, nil
	default:
	}
	select {
	case v := <-c.buf:
		return v, nil
	case <-c.done:
		select {
		case v := <-c.buf:
			return v, nil
		default:
		}
		var zero T
		return zero, ErrClosed
	}
}

// Close stops accepting new sends. Values already buffered remain available
// to Receive until drained.
func (c *Channel[T]) Close() {
	c.closeOnce.Do(func() { close(c.done) })
}

// Len returns the number of values currently buffered.
func (c *Channel[T]) Len() int { return len(c.buf) }
