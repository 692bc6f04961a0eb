/*
 * Licensed to the Apache Software Foundation (ASF) under one
 * or more contributor license agreements.  See the NOTICE file
 * distributed with this work for additional information
 * regarding copyright ownership.  The ASF licenses this file
 * to you under the Apache License, Version 2.0 (the
 * "License"); you may not use this file except in compliance
 * with the License.  You may obtain a copy of the License at
 *
 *   http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing,
 * software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
 * KIND, either express or implied.  See the License for the
 * specific language governing permissions and limitations
 * under the License.
 */

package obs

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/configassess/config-assessor-go/internal/util/logger"
)

const (
	Namespace = "configassess"
	Subsystem = "assessor"
)

var (
	// RemoteCallsTotal counts remote API calls by operation and outcome.
	RemoteCallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: Subsystem,
			Name:      "remote_calls_total",
			Help:      "Total number of remote controller API calls",
		},
		[]string{"operation", "status"},
	)

	// JobStepDuration tracks the duration of job step phases
	JobStepDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Subsystem: Subsystem,
			Name:      "job_step_duration_seconds",
			Help:      "Duration of job step extract/analyze phases in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"jobstep", "phase"},
	)

	// AssessorUp indicates if the assessor is running
	AssessorUp = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: Namespace,
			Subsystem: Subsystem,
			Name:      "up",
			Help:      "1 if the assessor is running, 0 otherwise",
		},
	)
)

func init() {
	// Register metrics with the global prometheus registry
	prometheus.MustRegister(RemoteCallsTotal)
	prometheus.MustRegister(JobStepDuration)
	prometheus.MustRegister(AssessorUp)
	AssessorUp.Set(1)
}

// ObserveRemoteCall records one remote call outcome.
func ObserveRemoteCall(operation string, err error) {

	status := "ok"
	if err != nil {
		status = "error"
	}
	RemoteCallsTotal.WithLabelValues(operation, status).Inc()
}

// Runner serves prometheus metrics for the duration of a run.
type Runner struct {
	addr   string
	logger logger.Logger
	server *http.Server
}

// New creates a new metrics runner listening on addr.
func New(addr string, log logger.Logger) *Runner {

	return &Runner{addr: addr, logger: log.WithName("metrics")}
}

// Start starts the metrics server and blocks until ctx is done.
func (r *Runner) Start(ctx context.Context) error {

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	r.server = &http.Server{
		Addr:              r.addr,
		Handler:           mux,
		ReadTimeout:       5 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       15 * time.Second,
		MaxHeaderBytes:    1 << 20, // 1 MB
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	r.logger.Info("Starting metrics server", "addr", r.addr)

	go func() {
		if err := r.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			r.logger.Error(err, "Metrics server failed")
		}
	}()

	<-ctx.Done()
	return r.Close()
}

// Close shuts down the metrics server.
func (r *Runner) Close() error {

	if r.server != nil {
		r.logger.Info("Shutting down metrics server")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return r.server.Shutdown(ctx)
	}
	return nil
}
