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

// Package sinks publishes benchmark results outside the process: a JSONL file
// for local history and Redis for sharing results between machines.
//
// Results carry a RunID. Publishing the same run twice is a no-op for sinks
// that can detect it (Redis); the file sink is append-only.
package sinks

import (
	"context"
	"time"
)

// Record is the wire shape of one benchmark result.
type Record struct {
	RunID            string    `json:"run_id"`
	Mode             string    `json:"mode"`
	N                int       `json:"n"`
	Runs             int       `json:"runs"`
	Value            uint64    `json:"value"`
	BaselineKernel   string    `json:"baseline_kernel"`
	ComparisonKernel string    `json:"comparison_kernel"`
	BaselineMeanNS   int64     `json:"baseline_mean_ns"`
	ComparisonMeanNS int64     `json:"comparison_mean_ns"`
	Speedup          float64   `json:"speedup"`
	StartedAt        time.Time `json:"started_at"`
}

// Sink receives finished benchmark results.
type Sink interface {
	Publish(ctx context.Context, records []Record) error
	Close() error
}

// Discard drops every record.
type Discard struct{}

func (Discard) Publish(context.Context, []Record) error { return nil }
func (Discard) Close() error { return nil }
