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

package native

import (
	"errors"
	"testing"

	"fibbench/pkg/fib"
	"fibbench/pkg/kernel"

	"github.com/stretchr/testify/require"
)

func TestBaseCases(t *testing.T) {
	for _, f := range []kernel.Func{Fibonacci, FibonacciRecursive} {
		for n, want := range []uint64{0, 1, 1} {
			got, err := f(n)
			require.NoError(t, err)
			require.Equal(t, want, got)
		}
	}
}

// The baseline kernels must agree with the comparison kernels for every
// index the benchmark can use.
func TestMatchesComparisonKernels(t *testing.T) {
	for n := 0; n <= 30; n++ {
		want, err := fib.Recursive(n)
		require.NoError(t, err)

		got, err := Fibonacci(n)
		require.NoError(t, err)
		require.Equalf(t, want, got, "Fibonacci(%d)", n)

		got, err = FibonacciRecursive(n)
		require.NoError(t, err)
		require.Equalf(t, want, got, "FibonacciRecursive(%d)", n)
	}
	for n := 31; n <= kernel.MaxIndex; n++ {
		want, _ := fib.Iterative(n)
		got, err := Fibonacci(n)
		require.NoError(t, err)
		require.Equalf(t, want, got, "Fibonacci(%d)", n)
	}
}

func TestKnownValue35(t *testing.T) {
	v, err := Fibonacci(35)
	require.NoError(t, err)
	require.Equal(t, uint64(9227465), v)
}

// The carry check must land on the same boundary the comparison kernels use.
func TestOverflowBoundary(t *testing.T) {
	v, err := Fibonacci(kernel.MaxIndex)
	require.NoError(t, err)
	require.Equal(t, uint64(12200160415121876738), v)

	for _, n := range []int{kernel.MaxIndex + 1, kernel.MaxIndex + 2, 1_000_000} {
		_, err = Fibonacci(n)
		require.Truef(t, errors.Is(err, kernel.ErrOverflow), "n=%d err=%v", n, err)
		var ie *kernel.IndexError
		require.True(t, errors.As(err, &ie))
		require.Equal(t, n, ie.N)
	}

	_, err = FibonacciRecursive(kernel.MaxIndex + 1)
	require.True(t, errors.Is(err, kernel.ErrOverflow))
}

func TestNegativeIndex(t *testing.T) {
	_, err := Fibonacci(-1)
	require.True(t, errors.Is(err, kernel.ErrNegativeIndex))
	_, err = FibonacciRecursive(-5)
	require.True(t, errors.Is(err, kernel.ErrNegativeIndex))
}
