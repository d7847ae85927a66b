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

package telemetry

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"fibbench/pkg/kernel"
)

func TestObserversDisabledAreNoops(t *testing.T) {
	Enable(Config{Enabled: false})
	before := testutil.ToFloat64(benchmarksTotal.WithLabelValues("disabled"))
	ObserveBenchmark(Benchmark{Mode: "disabled", BaselineKernel: "a", ComparisonKernel: "b", Runs: 1})
	ObserveError(kernel.ErrOverflow)
	ObserveRequest("/fib", 200)
	if after := testutil.ToFloat64(benchmarksTotal.WithLabelValues("disabled")); after != before {
		t.Fatalf("expected no change while disabled, got %v -> %v", before, after)
	}
}

func TestObserveBenchmark(t *testing.T) {
	Enable(Config{Enabled: true})
	t.Cleanup(func() { Enable(Config{Enabled: false}) })

	before := testutil.ToFloat64(benchmarksTotal.WithLabelValues("unit"))
	callsBefore := testutil.ToFloat64(kernelCallsTotal.WithLabelValues("unit-base"))
	ObserveBenchmark(Benchmark{
		Mode:             "unit",
		BaselineKernel:   "unit-base",
		ComparisonKernel: "unit-cmp",
		Runs:             5,
		BaselineMean:     2 * time.Microsecond,
		ComparisonMean:   3 * time.Millisecond,
		Speedup:          1500,
	})
	if got := testutil.ToFloat64(benchmarksTotal.WithLabelValues("unit")); got != before+1 {
		t.Fatalf("benchmarks_total: want %v got %v", before+1, got)
	}
	if got := testutil.ToFloat64(kernelCallsTotal.WithLabelValues("unit-base")); got != callsBefore+5 {
		t.Fatalf("kernel_calls_total: want %v got %v", callsBefore+5, got)
	}
	if got := testutil.ToFloat64(kernelMeanSeconds.WithLabelValues("unit", "unit-cmp")); got != 0.003 {
		t.Fatalf("mean seconds: got %v", got)
	}
	if got := testutil.ToFloat64(speedupRatio.WithLabelValues("unit")); got != 1500 {
		t.Fatalf("speedup: got %v", got)
	}
}

func TestErrorKind(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{&kernel.IndexError{Kernel: "x", N: -1, Err: kernel.ErrNegativeIndex}, "negative_index"},
		{fmt.Errorf("wrapped: %w", kernel.ErrOverflow), "overflow"},
		{&kernel.MissingKernelError{Name: kernel.Native}, "kernel_not_built"},
		{errors.New("boom"), "other"},
	}
	for _, tc := range cases {
		if got := ErrorKind(tc.err); got != tc.want {
			t.Fatalf("ErrorKind(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}
}

func TestObserveErrorAndRequest(t *testing.T) {
	Enable(Config{Enabled: true})
	t.Cleanup(func() { Enable(Config{Enabled: false}) })

	before := testutil.ToFloat64(errorsTotal.WithLabelValues("overflow"))
	ObserveError(&kernel.IndexError{Kernel: "x", N: 94, Err: kernel.ErrOverflow})
	ObserveError(nil)
	if got := testutil.ToFloat64(errorsTotal.WithLabelValues("overflow")); got != before+1 {
		t.Fatalf("errors_total: want %v got %v", before+1, got)
	}

	reqBefore := testutil.ToFloat64(apiRequestsTotal.WithLabelValues("/fib", "422"))
	ObserveRequest("/fib", 422)
	if got := testutil.ToFloat64(apiRequestsTotal.WithLabelValues("/fib", "422")); got != reqBefore+1 {
		t.Fatalf("api_requests_total: want %v got %v", reqBefore+1, got)
	}
}

func TestHandlerExposesMetrics(t *testing.T) {
	Enable(Config{Enabled: true})
	t.Cleanup(func() { Enable(Config{Enabled: false}) })
	ObserveBenchmark(Benchmark{Mode: "scrape", BaselineKernel: "a", ComparisonKernel: "b", Runs: 1, Speedup: 2})

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := rec.Body.String()
	for _, name := range []string{"fibbench_benchmarks_total", "fibbench_speedup_ratio", "fibbench_kernel_mean_seconds"} {
		if !strings.Contains(body, name) {
			t.Fatalf("expected %s in scrape output", name)
		}
	}
}

// TestEnableStartsMetricsEndpoint goes through Enable() starting the standalone server.
func TestEnableStartsMetricsEndpoint(t *testing.T) {
	if srv := Enable(Config{Enabled: true}); srv != nil {
		t.Fatalf("expected no server without MetricsAddr")
	}
	srv := Enable(Config{Enabled: true, MetricsAddr: "127.0.0.1:0"})
	if srv == nil {
		t.Fatalf("expected a server")
	}
	time.Sleep(5 * time.Millisecond)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
	Enable(Config{Enabled: false})
}
