// Copyright (C) 2020-2026, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package interval implements the periodic-task runner a Node uses to drive
// peer discovery and bootstrap reconnection, plus the two concrete runners
// themselves.
package interval

import (
	"context"
	"sync"
	"time"

	"github.com/luxfi/log"
)

// State is a Runner's lifecycle state.
type State int

const (
	Stopped State = iota
	Running
)

// Runner drives tick at a fixed interval until stopped. Start and Stop are
// idempotent: a second Start while Running, or a second Stop while Stopped,
// logs a warning instead of erroring.
type Runner struct {
	id       string
	interval time.Duration
	tick     func(ctx context.Context)
	log      log.Logger

	mu     sync.Mutex
	state  State
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New returns a Runner named id that calls tick every interval once started.
func New(id string, interval time.Duration, tick func(ctx context.Context), logger log.Logger) *Runner {
	if logger == nil {
		logger = log.NewNoOpLogger()
	}
	return &Runner{id: id, interval: interval, tick: tick, log: logger}
}

// ID returns the runner's name.
func (r *Runner) ID() string { return r.id }

// State reports the runner's current lifecycle state.
func (r *Runner) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Start begins ticking in a background goroutine.
func (r *Runner) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state == Running {
		r.log.Warn("runner already running", "id", r.id)
		return
	}
	r.state = Running
	ctx, cancel := context.WithCancel(context.Background())
	r.cancel = cancel
	r.wg.Add(1)
	go r.run(ctx)
}

func (r *Runner) run(ctx context.Context) {
	defer r.wg.Done()
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.tick(ctx)
		}
	}
}

// Stop cancels the running tick loop and waits for the current tick, if
// any, to finish.
func (r *Runner) Stop() {
	r.mu.Lock()
	if r.state != Running {
		r.log.Warn("runner already stopped", "id", r.id)
		r.mu.Unlock()
		return
	}
	r.state = Stopped
	cancel := r.cancel
	r.mu.Unlock()

	cancel()
	r.wg.Wait()
}
