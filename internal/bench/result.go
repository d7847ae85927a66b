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

package bench

import (
	"crypto/rand"
	"encoding/hex"
	"io"
	"strconv"
	"sync/atomic"
	"time"

	"fibbench/internal/sinks"
	"fibbench/internal/telemetry"
)

// Result is one benchmark comparison. It is informational: the report text is
// the stable contract, fields here may grow.
type Result struct {
	RunID            string
	Mode             Mode
	N                int
	Runs             int
	Value            uint64
	BaselineKernel   string
	ComparisonKernel string
	Labels           Labels
	BaselineMean     time.Duration
	ComparisonMean   time.Duration
	Speedup          float64
	StartedAt        time.Time
}

// WriteReport writes the three-line report for r.
func (r Result) WriteReport(w io.Writer) error {
	_, err := w.Write(formatReport(r))
	return err
}

// Report returns the report text.
func (r Result) Report() string { return string(formatReport(r)) }

// Record converts r to the sink wire shape.
func (r Result) Record() sinks.Record {
	return sinks.Record{
		RunID:            r.RunID,
		Mode:             string(r.Mode),
		N:                r.N,
		Runs:             r.Runs,
		Value:            r.Value,
		BaselineKernel:   r.BaselineKernel,
		ComparisonKernel: r.ComparisonKernel,
		BaselineMeanNS:   r.BaselineMean.Nanoseconds(),
		ComparisonMeanNS: r.ComparisonMean.Nanoseconds(),
		Speedup:          r.Speedup,
		StartedAt:        r.StartedAt.UTC(),
	}
}

func (r Result) telemetry() telemetry.Benchmark {
	return telemetry.Benchmark{
		Mode:             string(r.Mode),
		BaselineKernel:   r.BaselineKernel,
		ComparisonKernel: r.ComparisonKernel,
		Runs:             r.Runs,
		BaselineMean:     r.BaselineMean,
		ComparisonMean:   r.ComparisonMean,
		Speedup:          r.Speedup,
	}
}

var runSeq atomic.Uint64

// newRunID returns 16 random hex chars, falling back to time+sequence if the
// system RNG fails.
func newRunID() string {
	var b [8]byte
	if _, err := rand.Read(b[:]); err == nil {
		return hex.EncodeToString(b[:])
	}
	return strconv.FormatInt(time.Now().UnixNano(), 36) + "-" + strconv.FormatUint(runSeq.Add(1), 36)
}
