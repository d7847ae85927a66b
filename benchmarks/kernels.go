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

// Package benchmarks contains the go test benchmarks for every kernel.
package benchmarks

import (
	"fibbench/internal/native"
	"fibbench/pkg/fib"
	"fibbench/pkg/kernel"
)

// Named is a kernel with its report name.
type Named struct {
	Name string
	Func kernel.Func
	// Exponential kernels are only benchmarked at small indexes.
	Exponential bool
}

// All lists every kernel in the module.
var All = []Named{
	{Name: fib.RecursiveName, Func: fib.Recursive, Exponential: true},
	{Name: fib.IterativeName, Func: fib.Iterative},
	{Name: kernel.Native, Func: native.Fibonacci},
	{Name: kernel.NativeRecursive, Func: native.FibonacciRecursive, Exponential: true},
}
