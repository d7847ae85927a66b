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

// Package bench times a baseline Fibonacci kernel against a comparison kernel
// and prints the ratio in a fixed three-line report:
//
//	Fibonacci(35):
//	  Rust:   0.000000s
//	  Python: 0.041234s
//	  Speedup: 123456.7x
//
// The baseline is resolved through a kernel registry at call time, so a binary
// built without it fails with kernel.ErrKernelNotBuilt before any timing.
package bench

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"fibbench/internal/sinks"
	"fibbench/internal/telemetry"
	"fibbench/pkg/fib"
	"fibbench/pkg/kernel"
)

// Defaults for the benchmark entry points.
const (
	DefaultIndex = 35
	DefaultRuns  = 5

	// RecommendedMaxRecursive is the largest index the recursive comparison
	// finishes in a reasonable time. Larger values run but log a warning.
	RecommendedMaxRecursive = 40
)

var (
	// ErrInvalidRuns is returned when runs < 1.
	ErrInvalidRuns = errors.New("runs must be at least 1")
	// ErrMismatch is returned when the two kernels disagree on F(n).
	ErrMismatch = errors.New("kernels disagree")
	// ErrUnknownMode is returned for a mode other than recursive or iterative.
	ErrUnknownMode = errors.New("unknown benchmark mode")
)

// Mode selects the comparison kernel.
type Mode string

const (
	// ModeRecursive compares the baseline with fib.Recursive.
	ModeRecursive Mode = "recursive"
	// ModeIterative compares the baseline with fib.Iterative.
	ModeIterative Mode = "iterative"
)

// ParseMode accepts "recursive" or "iterative".
func ParseMode(s string) (Mode, error) {
	switch m := Mode(s); m {
	case ModeRecursive, ModeIterative:
		return m, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
}

func (m Mode) comparison() (string, kernel.Func, error) {
	switch m {
	case ModeRecursive:
		return fib.RecursiveName, fib.Recursive, nil
	case ModeIterative:
		return fib.IterativeName, fib.Iterative, nil
	}
	return "", nil, fmt.Errorf("%w: %q", ErrUnknownMode, string(m))
}

func (m Mode) header(n int) string {
	if m == ModeIterative {
		return fmt.Sprintf("Fibonacci(%d) iterative:", n)
	}
	return fmt.Sprintf("Fibonacci(%d):", n)
}

// Lookuper resolves kernels by name. *kernel.Registry implements it.
type Lookuper interface {
	Lookup(name string) (kernel.Func, error)
}

// Labels name the two time lines of the report.
type Labels struct {
	Baseline   string
	Comparison string
}

// DefaultLabels are the column names existing report consumers parse.
var DefaultLabels = Labels{Baseline: "Rust", Comparison: "Python"}

// Options configures a Harness. Zero values select the defaults.
type Options struct {
	// Kernels resolves the baseline. Default kernel.Default.
	Kernels Lookuper
	// Baseline is the registry name of the baseline kernel. Default kernel.Native.
	Baseline string
	// Labels default to DefaultLabels; empty fields are filled individually.
	Labels Labels
	// Logger receives diagnostics. Default logrus.StandardLogger().
	Logger logrus.FieldLogger
	// Sinks receive every successful result after the report is printed.
	Sinks []sinks.Sink
	// Warmup is the number of untimed calls per kernel before timing, on top
	// of the single verification call that always runs.
	Warmup int
}

// Harness runs benchmarks and writes reports to out.
type Harness struct {
	out      io.Writer
	kernels  Lookuper
	baseline string
	labels   Labels
	log      logrus.FieldLogger
	sinks    []sinks.Sink
	warmup   int
}

// New returns a harness with default options writing to out (os.Stdout if nil).
func New(out io.Writer) *Harness { return NewWithOptions(out, Options{}) }

// NewWithOptions returns a harness configured by opts.
func NewWithOptions(out io.Writer, opts Options) *Harness {
	if out == nil {
		out = os.Stdout
	}
	h := &Harness{
		out:      out,
		kernels:  opts.Kernels,
		baseline: opts.Baseline,
		labels:   opts.Labels,
		log:      opts.Logger,
		sinks:    opts.Sinks,
		warmup:   opts.Warmup,
	}
	if h.kernels == nil {
		h.kernels = kernel.Default
	}
	if h.baseline == "" {
		h.baseline = kernel.Native
	}
	if h.labels.Baseline == "" {
		h.labels.Baseline = DefaultLabels.Baseline
	}
	if h.labels.Comparison == "" {
		h.labels.Comparison = DefaultLabels.Comparison
	}
	if h.log == nil {
		h.log = logrus.StandardLogger()
	}
	if h.warmup < 0 {
		h.warmup = 0
	}
	return h
}

// Benchmark compares the baseline with the naive recursive kernel.
func (h *Harness) Benchmark(ctx context.Context, n, runs int) error {
	_, err := h.Run(ctx, ModeRecursive, n, runs)
	return err
}

// BenchmarkIterative compares the baseline with the iterative kernel.
func (h *Harness) BenchmarkIterative(ctx context.Context, n, runs int) error {
	_, err := h.Run(ctx, ModeIterative, n, runs)
	return err
}

// Run executes one comparison and prints its report. Nothing is printed when
// an error is returned, except for sink errors, which surface after the report.
func (h *Harness) Run(ctx context.Context, mode Mode, n, runs int) (Result, error) {
	log := h.log.WithFields(logrus.Fields{"mode": mode, "n": n, "runs": runs})
	res, err := h.measure(ctx, log, mode, n, runs)
	if err != nil {
		telemetry.ObserveError(err)
		return Result{}, err
	}

	if err := res.WriteReport(h.out); err != nil {
		return res, fmt.Errorf("write report: %w", err)
	}
	telemetry.ObserveBenchmark(res.telemetry())
	log.WithFields(logrus.Fields{
		"run_id":  res.RunID,
		"speedup": res.Speedup,
	}).Debug("benchmark finished")

	if err := h.publish(ctx, res); err != nil {
		telemetry.ObserveError(err)
		return res, err
	}
	return res, nil
}

func (h *Harness) measure(ctx context.Context, log logrus.FieldLogger, mode Mode, n, runs int) (Result, error) {
	if runs < 1 {
		return Result{}, fmt.Errorf("%w: got %d", ErrInvalidRuns, runs)
	}
	cmpName, cmp, err := mode.comparison()
	if err != nil {
		return Result{}, err
	}
	// Resolve the baseline before any work so a missing kernel fails fast.
	base, err := h.kernels.Lookup(h.baseline)
	if err != nil {
		return Result{}, fmt.Errorf("benchmark %s: %w", mode, err)
	}
	if mode == ModeRecursive && n > RecommendedMaxRecursive {
		log.Warnf("recursive kernel above n=%d is impractically slow", RecommendedMaxRecursive)
	}

	// Verification call: surfaces domain/overflow errors and cross-checks values.
	want, err := base(n)
	if err != nil {
		return Result{}, err
	}
	got, err := cmp(n)
	if err != nil {
		return Result{}, err
	}
	if want != got {
		return Result{}, fmt.Errorf("%w: %s(%d)=%d, %s(%d)=%d", ErrMismatch, h.baseline, n, want, cmpName, n, got)
	}
	for i := 0; i < h.warmup; i++ {
		_, _ = base(n)
		_, _ = cmp(n)
	}

	startedAt := time.Now()
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	baseMean := timeKernel(base, n, runs)
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	cmpMean := timeKernel(cmp, n, runs)

	return Result{
		RunID:            newRunID(),
		Mode:             mode,
		N:                n,
		Runs:             runs,
		Value:            want,
		BaselineKernel:   h.baseline,
		ComparisonKernel: cmpName,
		Labels:           h.labels,
		BaselineMean:     baseMean,
		ComparisonMean:   cmpMean,
		Speedup:          speedup(baseMean, cmpMean),
		StartedAt:        startedAt,
	}, nil
}

// sink keeps timed results observable so calls cannot be elided.
var sink uint64

// timeKernel returns the mean wall-clock time of runs calls of f(n).
func timeKernel(f kernel.Func, n, runs int) time.Duration {
	var acc uint64
	start := time.Now()
	for i := 0; i < runs; i++ {
		v, _ := f(n)
		acc += v
	}
	total := time.Since(start)
	sink = acc
	return total / time.Duration(runs)
}

// speedup returns cmp/base. A baseline measured as zero is clamped to 1ns.
func speedup(base, cmp time.Duration) float64 {
	if base <= 0 {
		base = time.Nanosecond
	}
	return float64(cmp) / float64(base)
}

func (h *Harness) publish(ctx context.Context, res Result) error {
	if len(h.sinks) == 0 {
		return nil
	}
	recs := []sinks.Record{res.Record()}
	var errs []error
	for _, s := range h.sinks {
		if err := s.Publish(ctx, recs); err != nil {
			errs = append(errs, fmt.Errorf("publish run %s: %w", res.RunID, err))
		}
	}
	return errors.Join(errs...)
}

// formatReport renders the report into a buffer so it is written in one call.
func formatReport(r Result) []byte {
	var b bytes.Buffer
	fmt.Fprintln(&b, r.Mode.header(r.N))
	fmt.Fprintf(&b, "  %-8s%.6fs\n", r.Labels.Baseline+":", r.BaselineMean.Seconds())
	fmt.Fprintf(&b, "  %-8s%.6fs\n", r.Labels.Comparison+":", r.ComparisonMean.Seconds())
	fmt.Fprintf(&b, "  Speedup: %.1fx\n", r.Speedup)
	return b.Bytes()
}
