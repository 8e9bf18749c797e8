// Copyright 2026 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package escrow

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type engineMetrics struct {
	operations     *prometheus.CounterVec
	duration       *prometheus.HistogramVec
	registrarCache *prometheus.CounterVec
}

func (e *Engine) initMetrics() {
	promautoFactory := promauto.With(e.config.promRegistry)
	e.metrics = &engineMetrics{
		operations: promautoFactory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "escrow_operations_total",
				Help: "engine operations by name and result",
			},
			[]string{"op", "result"},
		),
		duration: promautoFactory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "escrow_operation_duration_seconds",
				Help:    "time spent in engine operations",
				Buckets: prometheus.ExponentialBuckets(0.0005, 2, 14),
			},
			[]string{"op"},
		),
		registrarCache: promautoFactory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "escrow_registrar_cache_lookups_total",
				Help: "registrar cache lookups by result",
			},
			[]string{"result"},
		),
	}
}

func (e *Engine) observe(op string, start time.Time, err error) {
	if e.metrics == nil {
		return
	}
	result := "success"
	if err != nil {
		result = "failure"
	}
	e.metrics.operations.WithLabelValues(op, result).Inc()
	e.metrics.duration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

func (e *Engine) observeCache(hit bool) {
	if e.metrics == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	e.metrics.registrarCache.WithLabelValues(result).Inc()
}
