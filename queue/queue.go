// Copyright (C) 2020-2026, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package queue

import (
	"context"
	"sync"

	"github.com/luxfi/log"
)

// Handler is a fan-out subscriber invoked sequentially for every message
// dispatched through a MessageQueue. Handlers are expected to be
// non-blocking; any error they return is logged, never propagated.
type Handler[T any] func(T) error

// MessageQueue pairs a Channel with a set of subscribers and a single
// dispatcher goroutine that invokes every handler, in subscription order,
// for each received message.
type MessageQueue[T any] struct {
	ch  *Channel[T]
	log log.Logger

	lock     sync.Mutex
	handlers []Handler[T]
	cancel   context.CancelFunc
	running  sync.WaitGroup
	started  bool
}

// NewMessageQueue returns a MessageQueue backed by a Channel of the given
// capacity, and starts its dispatcher.
func NewMessageQueue[T any](capacity int, logger log.Logger) *MessageQueue[T] {
	if logger == nil {
		logger = log.NewNoOpLogger()
	}
	q := &MessageQueue[T]{ch: NewChannel[T](capacity), log: logger}
	q.start()
	return q
}

// Subscribe registers handler to receive every subsequent message.
func (q *MessageQueue[T]) Subscribe(handler Handler[T]) {
	q.lock.Lock()
	defer q.lock.Unlock()
	q.handlers = append(q.handlers, handler)
}

// Enqueue submits msg for dispatch. It blocks like Channel.Send.
func (q *MessageQueue[T]) Enqueue(msg T) error {
	return q.ch.Send(msg)
}

// Len returns the number of messages currently buffered, awaiting dispatch.
func (q *MessageQueue[T]) Len() int { return q.ch.Len() }

func (q *MessageQueue[T]) start() {
	q.lock.Lock()
	defer q.lock.Unlock()
	if q.started {
		return
	}
	q.started = true
	ctx, cancel := context.WithCancel(context.Background())
	q.cancel = cancel
	q.running.Add(1)
	go q.dispatch(ctx)
}

func (q *MessageQueue[T]) dispatch(ctx context.Context) {
	defer q.running.Done()
	for {
		msg, err := q.ch.Receive()
		if err != nil {
			return
		}
		q.lock.Lock()
		handlers := append([]Handler[T](nil), q.handlers...)
		q.lock.Unlock()
		for _, h := range handlers {
			if err := h(msg); err != nil {
				q.log.Error("message handler failed", "err", err)
			}
		}
	}
}

// Close stops the dispatcher after draining any buffered messages and
// closes the underlying channel so further Enqueue calls fail.
func (q *MessageQueue[T]) Close() {
	q.lock.Lock()
	if !q.started {
		q.lock.Unlock()
		return
	}
	q.started = false
	cancel := q.cancel
	q.lock.Unlock()

	q.ch.Close()
	if cancel != nil {
		cancel()
	}
	q.running.Wait()
}
