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

package benchmarks

import (
	"context"
	"fmt"
	"io"
	"testing"

	"github.com/sirupsen/logrus"

	"fibbench/internal/bench"
	"fibbench/internal/native"
	"fibbench/pkg/kernel"
)

var result uint64

// BenchmarkKernels measures every kernel at a spread of indexes.
// Run with: go test -bench=Kernels ./benchmarks
func BenchmarkKernels(b *testing.B) {
	for _, k := range All {
		for _, n := range []int{10, 20, 30, 90} {
			if k.Exponential && n > 30 {
				continue
			}
			b.Run(fmt.Sprintf("%s/n=%d", k.Name, n), func(b *testing.B) {
				var acc uint64
				for i := 0; i < b.N; i++ {
					v, _ := k.Func(n)
					acc += v
				}
				result = acc
			})
		}
	}
}

// BenchmarkRegistryLookup measures the per-call cost of resolving the baseline.
func BenchmarkRegistryLookup(b *testing.B) {
	r := kernel.NewRegistry()
	for _, k := range All {
		r.Register(k.Name, k.Func)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := r.Lookup(kernel.Native); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkHarness_Iterative measures the harness overhead around a cheap pair.
func BenchmarkHarness_Iterative(b *testing.B) {
	r := kernel.NewRegistry()
	r.Register(kernel.Native, native.Fibonacci)
	log := logrus.New()
	log.SetOutput(io.Discard)
	h := bench.NewWithOptions(io.Discard, bench.Options{Kernels: r, Logger: log})
	ctx := context.Background()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := h.BenchmarkIterative(ctx, 50, 10); err != nil {
			b.Fatal(err)
		}
	}
}
