// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 DefianceCraft Contributors

package executor

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Status constants for task completion metrics.
const (
	StatusSuccess = "success"
	StatusFatal   = "fatal"
	StatusDropped = "dropped"
)

// TasksCompleted is the counter for finished tasks by terminal status.
// Use RegisterMetrics to register this with a Prometheus registry.
var TasksCompleted = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "defiancecore_executor_tasks_total",
		Help: "Total number of completed executor tasks by status",
	},
	[]string{"task", "status"},
)

// TaskRetries is the counter for transient-failure retries.
// Use RegisterMetrics to register this with a Prometheus registry.
var TaskRetries = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "defiancecore_executor_retries_total",
		Help: "Total number of transient-failure retries by task",
	},
	[]string{"task"},
)

// QueueDepth is a gauge tracking pending tasks at submit time.
// Use RegisterMetrics to register this with a Prometheus registry.
var QueueDepth = prometheus.NewGauge(
	prometheus.GaugeOpts{
		Name: "defiancecore_executor_queue_depth",
		Help: "Number of queued executor tasks observed at last submit",
	},
)

// RegisterMetrics registers executor metrics with the given registry.
// Panics if registration fails (following prometheus convention).
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(TasksCompleted)
	reg.MustRegister(TaskRetries)
	reg.MustRegister(QueueDepth)
}

func recordTask(task, status string) {
	TasksCompleted.WithLabelValues(task, status).Inc()
}

func recordRetry(task string) {
	TaskRetries.WithLabelValues(task).Inc()
}

func recordQueueDepth(n int) {
	QueueDepth.Set(float64(n))
}
