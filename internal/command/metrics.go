// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 DefianceCraft Contributors

package command

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Status constants for dispatch metrics.
const (
	StatusSuccess   = "success"
	StatusError     = "error"
	StatusDenied    = "denied"
	StatusUnhandled = "unhandled"
)

// Dispatches is the counter for command dispatches.
// Use RegisterMetrics to register this with a Prometheus registry.
var Dispatches = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "defiancecore_command_dispatches_total",
		Help: "Total number of command dispatches by label, caller context, and status",
	},
	[]string{"command", "context", "status"},
)

// RegisterMetrics registers command package metrics with the given
// Prometheus registry. Panics if registration fails (following
// prometheus convention).
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(Dispatches)
}

func recordDispatch(label string, cc CallerContext, status string) {
	Dispatches.WithLabelValues(label, cc.String(), status).Inc()
}
