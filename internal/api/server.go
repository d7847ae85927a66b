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

// Package api serves the kernels and the benchmark harness over HTTP.
package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"fibbench/internal/bench"
	"fibbench/internal/telemetry"
	"fibbench/pkg/fib"
	"fibbench/pkg/kernel"
)

// Kernels is the registry surface the server needs.
type Kernels interface {
	Lookup(name string) (kernel.Func, error)
	Names() []string
}

// Server handles the HTTP requests.
type Server struct {
	kernels Kernels
	bench   *bench.Harness
	maxRuns int
	log     logrus.FieldLogger

	// benchMu serializes benchmarks; concurrent timing loops skew each other.
	benchMu sync.Mutex
	buf     bytes.Buffer
}

// Config holds the server knobs.
type Config struct {
	// MaxRuns caps the runs parameter of /benchmark. Default 20.
	MaxRuns int
	// Bench configures the harness behind /benchmark. Its Kernels default to the
	// server registry.
	Bench  bench.Options
	Logger logrus.FieldLogger
}

// NewServer creates a server over the given kernels.
func NewServer(kernels Kernels, cfg Config) *Server {
	if cfg.MaxRuns <= 0 {
		cfg.MaxRuns = 20
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.StandardLogger()
	}
	if cfg.Bench.Kernels == nil {
		cfg.Bench.Kernels = kernels
	}
	if cfg.Bench.Logger == nil {
		cfg.Bench.Logger = cfg.Logger
	}
	s := &Server{kernels: kernels, maxRuns: cfg.MaxRuns, log: cfg.Logger}
	s.bench = bench.NewWithOptions(&s.buf, cfg.Bench)
	return s
}

// RegisterRoutes sets up the HTTP routes on mux.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/fib", s.handleFib)
	mux.HandleFunc("/kernels", s.handleKernels)
	mux.HandleFunc("/benchmark", s.handleBenchmark)
	mux.Handle("/metrics", telemetry.Handler())
}

type fibResponse struct {
	Kernel string `json:"kernel"`
	N      int    `json:"n"`
	Value  uint64 `json:"value"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// handleFib computes F(n) with the requested kernel (default iterative).
func (s *Server) handleFib(w http.ResponseWriter, r *http.Request) {
	const route = "/fib"
	if r.Method != http.MethodGet {
		s.fail(w, route, http.StatusMethodNotAllowed, errors.New("method not allowed"))
		return
	}
	n, err := intParam(r, "n", -1)
	if err != nil {
		s.fail(w, route, http.StatusBadRequest, err)
		return
	}
	name := r.URL.Query().Get("kernel")
	if name == "" {
		name = fib.IterativeName
	}
	f, err := s.kernels.Lookup(name)
	if err != nil {
		s.fail(w, route, http.StatusNotFound, err)
		return
	}
	if isRecursive(name) && n > bench.RecommendedMaxRecursive {
		s.fail(w, route, http.StatusUnprocessableEntity,
			fmt.Errorf("kernel %s is limited to n <= %d over HTTP", name, bench.RecommendedMaxRecursive))
		return
	}
	v, err := f(n)
	if err != nil {
		s.fail(w, route, statusFor(err), err)
		return
	}
	s.writeJSON(w, route, http.StatusOK, fibResponse{Kernel: name, N: n, Value: v})
}

func (s *Server) handleKernels(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, "/kernels", http.StatusOK, map[string][]string{"kernels": s.kernels.Names()})
}

// handleBenchmark runs one comparison and returns the text report.
func (s *Server) handleBenchmark(w http.ResponseWriter, r *http.Request) {
	const route = "/benchmark"
	n, err := intParam(r, "n", bench.DefaultIndex)
	if err != nil {
		s.fail(w, route, http.StatusBadRequest, err)
		return
	}
	runs, err := intParam(r, "runs", bench.DefaultRuns)
	if err != nil {
		s.fail(w, route, http.StatusBadRequest, err)
		return
	}
	if runs > s.maxRuns {
		s.fail(w, route, http.StatusBadRequest, fmt.Errorf("runs must be <= %d", s.maxRuns))
		return
	}
	mode := bench.ModeRecursive
	if m := r.URL.Query().Get("mode"); m != "" {
		if mode, err = bench.ParseMode(m); err != nil {
			s.fail(w, route, http.StatusBadRequest, err)
			return
		}
	}
	if mode == bench.ModeRecursive && n > bench.RecommendedMaxRecursive {
		s.fail(w, route, http.StatusUnprocessableEntity,
			fmt.Errorf("recursive benchmark is limited to n <= %d over HTTP", bench.RecommendedMaxRecursive))
		return
	}

	s.benchMu.Lock()
	defer s.benchMu.Unlock()
	s.buf.Reset()
	start := time.Now()
	res, err := s.bench.Run(r.Context(), mode, n, runs)
	if err != nil && res.RunID == "" {
		s.fail(w, route, statusFor(err), err)
		return
	}
	if err != nil {
		// Report printed; only publication failed.
		s.log.WithError(err).WithField("run_id", res.RunID).Warn("benchmark result not published")
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("X-Fibbench-Run-Id", res.RunID)
	w.Header().Set("X-Fibbench-Elapsed", time.Since(start).String())
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(s.buf.Bytes())
	telemetry.ObserveRequest(route, http.StatusOK)
}

func (s *Server) writeJSON(w http.ResponseWriter, route string, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
	telemetry.ObserveRequest(route, code)
}

func (s *Server) fail(w http.ResponseWriter, route string, code int, err error) {
	if code >= http.StatusInternalServerError {
		s.log.WithError(err).WithField("route", route).Error("request failed")
	}
	s.writeJSON(w, route, code, errorResponse{Error: err.Error()})
}

// statusFor maps kernel and harness errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, kernel.ErrNegativeIndex), errors.Is(err, bench.ErrInvalidRuns), errors.Is(err, bench.ErrUnknownMode):
		return http.StatusBadRequest
	case errors.Is(err, kernel.ErrOverflow):
		return http.StatusUnprocessableEntity
	case errors.Is(err, kernel.ErrKernelNotBuilt):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func intParam(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		if def < 0 {
			return 0, fmt.Errorf("%s is required", name)
		}
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %q", name, raw)
	}
	return v, nil
}

func isRecursive(name string) bool {
	return name == fib.RecursiveName || name == kernel.NativeRecursive
}
