// Copyright 2025 Esteban Alvarez. All Rights Reserved.
//
// Created: October 2025
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

// Package telemetry exports benchmark and API metrics to Prometheus.
//
// Metrics are registered on the default registry at init. Observers are no-ops
// until Enable is called with Enabled=true, so library users pay nothing.
package telemetry

import (
	"errors"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"fibbench/pkg/kernel"
)

// Config controls the module.
//
// MetricsAddr, when non-empty, starts a dedicated HTTP server that serves
// /metrics. If you already serve Prometheus elsewhere, leave it empty and mount
// Handler yourself.
type Config struct {
	Enabled     bool
	MetricsAddr string // e.g. ":9090"
}

var (
	modEnabled atomic.Bool

	benchmarksTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "fibbench_benchmarks_total",
		Help: "Completed benchmark comparisons by mode",
	}, []string{"mode"})
	kernelCallsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "fibbench_kernel_calls_total",
		Help: "Timed kernel invocations",
	}, []string{"kernel"})
	kernelMeanSeconds = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "fibbench_kernel_mean_seconds",
		Help: "Mean wall-clock time per call from the latest benchmark",
	}, []string{"mode", "kernel"})
	kernelCallSeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "fibbench_kernel_call_seconds",
		Help:    "Distribution of per-call mean time across benchmarks",
		Buckets: prometheus.ExponentialBuckets(1e-8, 10, 11), // 10ns .. 1000s
	}, []string{"kernel"})
	speedupRatio = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "fibbench_speedup_ratio",
		Help: "Comparison mean divided by baseline mean from the latest benchmark",
	}, []string{"mode"})
	errorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "fibbench_errors_total",
		Help: "Errors by kind (negative_index, overflow, kernel_not_built, other)",
	}, []string{"kind"})
	apiRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "fibbench_api_requests_total",
		Help: "HTTP API requests by route and status code",
	}, []string{"route", "code"})
)

func init() {
	prometheus.MustRegister(benchmarksTotal, kernelCallsTotal, kernelMeanSeconds, kernelCallSeconds, speedupRatio, errorsTotal, apiRequestsTotal)
}

// Enable configures the module. Safe to call multiple times; the returned
// server (nil when MetricsAddr is empty) is owned by the caller.
func Enable(cfg Config) *http.Server {
	modEnabled.Store(cfg.Enabled)
	if cfg.MetricsAddr == "" {
		return nil
	}
	return startMetricsEndpoint(cfg.MetricsAddr)
}

// Enabled reports whether observers record anything.
func Enabled() bool { return modEnabled.Load() }

// Handler serves the default Prometheus registry.
func Handler() http.Handler { return promhttp.Handler() }

// Benchmark describes one finished comparison.
type Benchmark struct {
	Mode             string
	BaselineKernel   string
	ComparisonKernel string
	Runs             int
	BaselineMean     time.Duration
	ComparisonMean   time.Duration
	Speedup          float64
}

// ObserveBenchmark records a finished comparison.
func ObserveBenchmark(b Benchmark) {
	if !modEnabled.Load() {
		return
	}
	benchmarksTotal.WithLabelValues(b.Mode).Inc()
	kernelCallsTotal.WithLabelValues(b.BaselineKernel).Add(float64(b.Runs))
	kernelCallsTotal.WithLabelValues(b.ComparisonKernel).Add(float64(b.Runs))
	kernelMeanSeconds.WithLabelValues(b.Mode, b.BaselineKernel).Set(b.BaselineMean.Seconds())
	kernelMeanSeconds.WithLabelValues(b.Mode, b.ComparisonKernel).Set(b.ComparisonMean.Seconds())
	kernelCallSeconds.WithLabelValues(b.BaselineKernel).Observe(b.BaselineMean.Seconds())
	kernelCallSeconds.WithLabelValues(b.ComparisonKernel).Observe(b.ComparisonMean.Seconds())
	speedupRatio.WithLabelValues(b.Mode).Set(b.Speedup)
}

// ObserveError classifies err and increments the matching counter.
func ObserveError(err error) {
	if !modEnabled.Load() || err == nil {
		return
	}
	errorsTotal.WithLabelValues(ErrorKind(err)).Inc()
}

// ErrorKind maps an error onto the fibbench_errors_total label.
func ErrorKind(err error) string {
	switch {
	case errors.Is(err, kernel.ErrNegativeIndex):
		return "negative_index"
	case errors.Is(err, kernel.ErrOverflow):
		return "overflow"
	case errors.Is(err, kernel.ErrKernelNotBuilt):
		return "kernel_not_built"
	default:
		return "other"
	}
}

// ObserveRequest counts an API response.
func ObserveRequest(route string, code int) {
	if !modEnabled.Load() {
		return
	}
	apiRequestsTotal.WithLabelValues(route, strconv.Itoa(code)).Inc()
}

func startMetricsEndpoint(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	server := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		_ = server.ListenAndServe()
	}()
	return server
}
