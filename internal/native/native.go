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

// Package native holds the baseline kernels the benchmark measures against.
// They are written independently of package fib: arithmetic goes through
// math/bits so overflow is detected from the carry flag rather than from a
// precomputed bound.
package native

import (
	"math/bits"

	"fibbench/pkg/kernel"
)

// Fibonacci returns F(n) with a linear carry-checked loop.
func Fibonacci(n int) (uint64, error) {
	if n < 0 {
		return 0, &kernel.IndexError{Kernel: kernel.Native, N: n, Err: kernel.ErrNegativeIndex}
	}
	var a, b uint64 = 0, 1
	for left := n; left > 0; left-- {
		sum, carry := bits.Add64(a, b, 0)
		// The last step computes F(n+1), which is discarded; only a must fit.
		if carry != 0 && left > 1 {
			return 0, &kernel.IndexError{Kernel: kernel.Native, N: n, Err: kernel.ErrOverflow}
		}
		a, b = b, sum
	}
	return a, nil
}

// FibonacciRecursive is the baseline twin of fib.Recursive. Indexes past
// kernel.MaxIndex are refused up front; walking the tree that deep would not
// finish.
func FibonacciRecursive(n int) (uint64, error) {
	switch {
	case n < 0:
		return 0, &kernel.IndexError{Kernel: kernel.NativeRecursive, N: n, Err: kernel.ErrNegativeIndex}
	case n > kernel.MaxIndex:
		return 0, &kernel.IndexError{Kernel: kernel.NativeRecursive, N: n, Err: kernel.ErrOverflow}
	}
	v, ok := walk(n)
	if !ok {
		return 0, &kernel.IndexError{Kernel: kernel.NativeRecursive, N: n, Err: kernel.ErrOverflow}
	}
	return v, nil
}

func walk(n int) (uint64, bool) {
	if n < 2 {
		return uint64(n), true
	}
	x, ok := walk(n - 1)
	if !ok {
		return 0, false
	}
	y, ok := walk(n - 2)
	if !ok {
		return 0, false
	}
	sum, carry := bits.Add64(x, y, 0)
	return sum, carry == 0
}
