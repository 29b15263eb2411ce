// Copyright (C) 2020-2026, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package node

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, c.Write(&m))
	return m.GetCounter().GetValue()
}

func TestMetricsMergedTracksAcceptedAndRejected(t *testing.T) {
	m, err := newMetrics(prometheus.NewRegistry())
	require.NoError(t, err)

	m.merged(2, 1)
	m.merged(1, 0)

	require.Equal(t, float64(3), counterValue(t, m.verticesAccepted))
	require.Equal(t, float64(1), counterValue(t, m.verticesRejected))
}

func TestMetricsDispatchedCountsByType(t *testing.T) {
	m, err := newMetrics(prometheus.NewRegistry())
	require.NoError(t, err)

	m.dispatched("UPDATE")
	m.dispatched("UPDATE")
	m.dispatched("SYNC")

	require.Equal(t, float64(2), counterValue(t, m.messagesDispatched.WithLabelValues("UPDATE")))
	require.Equal(t, float64(1), counterValue(t, m.messagesDispatched.WithLabelValues("SYNC")))
}

func TestNodeEnableMetricsRejectsDoubleRegistration(t *testing.T) {
	n, _ := newTestNode(t)
	reg := prometheus.NewRegistry()
	require.NoError(t, n.EnableMetrics(reg))
	require.Error(t, n.EnableMetrics(reg))
}
