// Copyright 2026 Greenleaf Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// SPDX-License-Identifier: Apache-2.0

package jobs

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// metricsJobs holds the registry's Prometheus metrics, lazily registered
// the first time any Registry is constructed.
type metricsJobs struct {
	once sync.Once

	setTotal   *prometheus.CounterVec
	sweptTotal prometheus.Counter
	active     prometheus.Gauge
}

var jobMetrics metricsJobs

func (m *metricsJobs) init() {
	m.once.Do(func() {
		m.setTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "catalog_jobs_set_total",
			Help: "Number of job state transitions recorded, by resulting state.",
		}, []string{"state"})

		m.sweptTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "catalog_jobs_swept_total",
			Help: "Number of job records removed by the amortized sweep.",
		})

		m.active = prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "catalog_jobs_active",
			Help: "Current number of tracked job records.",
		})

		prometheus.MustRegister(m.setTotal, m.sweptTotal, m.active)
	})
}

func recordSet(state State) {
	jobMetrics.init()
	jobMetrics.setTotal.WithLabelValues(state.String()).Inc()
}

func recordSwept(n int) {
	jobMetrics.init()
	jobMetrics.sweptTotal.Add(float64(n))
}

func setActiveGauge(n int) {
	jobMetrics.init()
	jobMetrics.active.Set(float64(n))
}
