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

// Package fib contains the comparison kernels: a naive recursive Fibonacci and
// a linear iterative one. Both return kernel.ErrOverflow past kernel.MaxIndex
// and kernel.ErrNegativeIndex for n < 0.
//
// Recursive is exponential on purpose. It is the slow side of the benchmark and
// must stay unmemoized.
package fib

import "fibbench/pkg/kernel"

// Kernel names used in errors and reports.
const (
	RecursiveName = "recursive"
	IterativeName = "iterative"
)

// Recursive returns F(n) by the textbook recurrence F(n) = F(n-1) + F(n-2).
// For n above ~40 it becomes impractically slow; that is expected.
func Recursive(n int) (uint64, error) {
	if err := check(RecursiveName, n); err != nil {
		return 0, err
	}
	return recurse(uint64(n)), nil
}

func recurse(n uint64) uint64 {
	if n <= 1 {
		return n
	}
	return recurse(n-1) + recurse(n-2)
}

// Iterative returns F(n) in O(n) time and constant space.
func Iterative(n int) (uint64, error) {
	if err := check(IterativeName, n); err != nil {
		return 0, err
	}
	if n <= 1 {
		return uint64(n), nil
	}
	prev, curr := uint64(0), uint64(1)
	for i := 2; i <= n; i++ {
		prev, curr = curr, prev+curr
	}
	return curr, nil
}

// Sequence returns F(0) through F(n).
func Sequence(n int) ([]uint64, error) {
	if err := check("sequence", n); err != nil {
		return nil, err
	}
	out := make([]uint64, n+1)
	for i := range out {
		if i <= 1 {
			out[i] = uint64(i)
			continue
		}
		out[i] = out[i-1] + out[i-2]
	}
	return out, nil
}

func check(name string, n int) error {
	switch {
	case n < 0:
		return &kernel.IndexError{Kernel: name, N: n, Err: kernel.ErrNegativeIndex}
	case n > kernel.MaxIndex:
		return &kernel.IndexError{Kernel: name, N: n, Err: kernel.ErrOverflow}
	}
	return nil
}

// Register adds Recursive and Iterative to r under RecursiveName and IterativeName.
func Register(r *kernel.Registry) {
	r.Register(RecursiveName, Recursive)
	r.Register(IterativeName, Iterative)
}
