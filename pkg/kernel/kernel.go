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

// Package kernel defines the contract shared by every Fibonacci kernel: the
// function shape, the index domain, the error taxonomy and a registry used to
// resolve kernels by name at call time.
//
// Kernels never share implementation code with each other. This package only
// carries what callers need to compare them: errors and lookup.
package kernel

import (
	"errors"
	"fmt"
)

// Func computes the nth Fibonacci number.
type Func func(n int) (uint64, error)

// MaxIndex is the largest index whose Fibonacci number fits in a uint64.
// F(93) = 12200160415121876738; F(94) overflows.
const MaxIndex = 93

// Registered names of the baseline kernels.
const (
	Native          = "native"
	NativeRecursive = "native-recursive"
)

var (
	// ErrNegativeIndex is returned for n < 0.
	ErrNegativeIndex = errors.New("fibonacci index must be non-negative")
	// ErrOverflow is returned when F(n) does not fit in a uint64 (n > MaxIndex).
	ErrOverflow = errors.New("fibonacci value overflows uint64")
	// ErrKernelNotBuilt is matched by every MissingKernelError.
	ErrKernelNotBuilt = errors.New("kernel not built")
)

// IndexError reports an index rejected by a kernel.
type IndexError struct {
	Kernel string
	N      int
	Err    error
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("%s(%d): %v", e.Kernel, e.N, e.Err)
}

func (e *IndexError) Unwrap() error { return e.Err }

// MissingKernelError is returned by Lookup when a kernel has not been linked
// into the binary. Hint tells the user how to build it.
type MissingKernelError struct {
	Name string
	Hint string
}

func (e *MissingKernelError) Error() string {
	if e.Hint == "" {
		return fmt.Sprintf("kernel %q not built", e.Name)
	}
	return fmt.Sprintf("kernel %q not built. %s", e.Name, e.Hint)
}

func (e *MissingKernelError) Is(target error) bool { return target == ErrKernelNotBuilt }

// NativeHint is the build instruction attached to a missing native kernel.
const NativeHint = `Import _ "fibbench/internal/native" and build without -tags nonative.`
