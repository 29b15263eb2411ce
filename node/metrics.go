// Copyright (C) 2020-2026, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package node

import (
	"github.com/prometheus/client_golang/prometheus"
)

// metrics holds the Node's exported prometheus instrumentation: how many
// vertices were accepted or rejected on merge, how many messages of each
// type were dispatched, and how deep each object's message queue currently
// sits.
type metrics struct {
	verticesAccepted   prometheus.Counter
	verticesRejected   prometheus.Counter
	messagesDispatched *prometheus.CounterVec
	queueDepth         *prometheus.GaugeVec
}

// newMetrics builds and registers a Node's metrics against registerer.
func newMetrics(registerer prometheus.Registerer) (*metrics, error) {
	m := &metrics{
		verticesAccepted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "drp_node_vertices_accepted_total",
			Help: "Number of vertices merged into a hosted object's hash graph",
		}),
		verticesRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "drp_node_vertices_rejected_total",
			Help: "Number of incoming vertices dropped for failing signature verification",
		}),
		messagesDispatched: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "drp_node_messages_dispatched_total",
			Help: "Number of inbound messages dispatched, by message type",
		}, []string{"type"}),
		queueDepth: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "drp_node_queue_depth",
			Help: "Number of messages currently buffered in a per-object queue",
		}, []string{"queue"}),
	}

	if err := registerer.Register(m.verticesAccepted); err != nil {
		return nil, err
	}
	if err := registerer.Register(m.verticesRejected); err != nil {
		return nil, err
	}
	if err := registerer.Register(m.messagesDispatched); err != nil {
		return nil, err
	}
	if err := registerer.Register(m.queueDepth); err != nil {
		return nil, err
	}

	return m, nil
}

func (m *metrics) dispatched(msgType string) {
	m.messagesDispatched.WithLabelValues(msgType).Inc()
}

func (m *metrics) merged(accepted, rejected int) {
	if accepted > 0 {
		m.verticesAccepted.Add(float64(accepted))
	}
	if rejected > 0 {
		m.verticesRejected.Add(float64(rejected))
	}
}

func (m *metrics) observeQueueDepths(depths map[string]int) {
	for queue, depth := range depths {
		m.queueDepth.WithLabelValues(queue).Set(float64(depth))
	}
}
