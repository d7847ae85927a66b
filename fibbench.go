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

// Package fibbench computes Fibonacci numbers with several kernels and
// benchmarks a compiled baseline kernel against the comparison kernels.
//
// Every kernel works on uint64 and accepts indexes 0..MaxIndex. Negative
// indexes fail with ErrNegativeIndex, larger ones with ErrOverflow.
//
// The baseline kernels are linked in by importing this package unless the
// binary is built with -tags nonative, in which case FibonacciNative and the
// benchmark functions return an error matching ErrKernelNotBuilt.
package fibbench

import (
	"context"
	"io"
	"os"

	"fibbench/internal/bench"
	_ "fibbench/internal/native"
	"fibbench/pkg/fib"
	"fibbench/pkg/kernel"
)

const (
	// DefaultIndex is the index benchmarked when none is given.
	DefaultIndex = bench.DefaultIndex
	// DefaultRuns is the number of timed calls per kernel when none is given.
	DefaultRuns = bench.DefaultRuns
	// MaxIndex is the largest index whose value fits in a uint64.
	MaxIndex = kernel.MaxIndex
)

var (
	ErrNegativeIndex  = kernel.ErrNegativeIndex
	ErrOverflow       = kernel.ErrOverflow
	ErrKernelNotBuilt = kernel.ErrKernelNotBuilt
	ErrInvalidRuns    = bench.ErrInvalidRuns
)

// stdout is where Benchmark and BenchmarkIterative print their reports.
var stdout io.Writer = os.Stdout

// FibonacciRecursive is the naive exponential comparison kernel.
func FibonacciRecursive(n int) (uint64, error) { return fib.Recursive(n) }

// FibonacciIterative is the linear comparison kernel.
func FibonacciIterative(n int) (uint64, error) { return fib.Iterative(n) }

// FibonacciNative calls the linear baseline kernel.
func FibonacciNative(n int) (uint64, error) { return call(kernel.Native, n) }

// FibonacciNativeRecursive calls the recursive baseline kernel.
func FibonacciNativeRecursive(n int) (uint64, error) { return call(kernel.NativeRecursive, n) }

func call(name string, n int) (uint64, error) {
	f, err := kernel.Lookup(name)
	if err != nil {
		return 0, err
	}
	return f(n)
}

// Benchmark times the baseline kernel against FibonacciRecursive and prints
// the report to stdout:
//
//	Fibonacci(35):
//	  Rust:   0.012345s
//	  Python: 1.234567s
//	  Speedup: 100.0x
func Benchmark(n, runs int) error {
	return bench.New(stdout).Benchmark(context.Background(), n, runs)
}

// BenchmarkIterative is Benchmark against FibonacciIterative. The header reads
// "Fibonacci(<n>) iterative:".
func BenchmarkIterative(n, runs int) error {
	return bench.New(stdout).BenchmarkIterative(context.Background(), n, runs)
}
