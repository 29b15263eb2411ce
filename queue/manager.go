// Copyright (C) 2020-2026, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package queue

import (
	"errors"
	"sync"

	"github.com/luxfi/log"
)

// ErrMaxQueues is returned by Subscribe when creating a new queue would
// exceed the manager's configured cap.
var ErrMaxQueues = errors.New("queue: maximum number of queues reached")

// generalQueueID is the id an empty string is aliased to.
const generalQueueID = "general"

// Manager keys MessageQueue instances by string id, creating them lazily on
// first Subscribe up to a configured maximum.
type Manager[T any] struct {
	mu        sync.Mutex
	log       log.Logger
	capacity  int
	maxQueues int
	queues    map[string]*MessageQueue[T]
}

// NewManager returns a Manager that creates queues of the given per-queue
// buffer capacity, bounded by maxQueues. A maxQueues of 0 means unbounded.
func NewManager[T any](capacity, maxQueues int, logger log.Logger) *Manager[T] {
	if logger == nil {
		logger = log.NewNoOpLogger()
	}
	return &Manager[T]{
		log:       logger,
		capacity:  capacity,
		maxQueues: maxQueues,
		queues:    make(map[string]*MessageQueue[T]),
	}
}

func normalizeID(id string) string {
	if id == "" {
		return generalQueueID
	}
	return id
}

// Subscribe lazily creates the queue named id (aliasing "" to "general") and
// registers handler on it.
func (m *Manager[T]) Subscribe(id string, handler Handler[T]) error {
	id = normalizeID(id)

	m.mu.Lock()
	q, ok := m.queues[id]
	if !ok {
		if m.maxQueues > 0 && len(m.queues) >= m.maxQueues {
			m.mu.Unlock()
			return ErrMaxQueues
		}
		q = NewMessageQueue[T](m.capacity, m.log)
		m.queues[id] = q
	}
	m.mu.Unlock()

	q.Subscribe(handler)
	return nil
}

// Enqueue submits msg to the queue named id. If id is unknown, the failure
// is logged and msg is dropped: enqueue failures never propagate to the
// network dispatch loop that calls it.
func (m *Manager[T]) Enqueue(id string, msg T) {
	id = normalizeID(id)

	m.mu.Lock()
	q, ok := m.queues[id]
	m.mu.Unlock()
	if !ok {
		m.log.Error("enqueue on unknown queue", "id", id)
		return
	}
	if err := q.Enqueue(msg); err != nil {
		m.log.Error("enqueue failed", "id", id, "err", err)
	}
}

// Depths returns the current buffered length of every queue, keyed by id.
func (m *Manager[T]) Depths() map[string]int {
	m.mu.Lock()
	defer m.mu.Unlock()
	depths := make(map[string]int, len(m.queues))
	for id, q := range m.queues {
		depths[id] = q.Len()
	}
	return depths
}

// Close stops every managed queue.
func (m *Manager[T]) Close() {
	m.mu.Lock()
	queues := make([]*MessageQueue[T], 0, len(m.queues))
	for _, q := range m.queues {
		queues = append(queues, q)
	}
	m.mu.Unlock()
	for _, q := range queues {
		q.Close()
	}
}
