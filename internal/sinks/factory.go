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

package sinks

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

// Options holds the knobs for building a sink from flags.
type Options struct {
	Path           string
	RedisAddr      string
	RedisMarkerTTL time.Duration
	RedisHistory   int
	Log            logrus.FieldLogger
}

// Build constructs a Sink from a selector:
//   - "", "none": discard results
//   - "file": JSONL append to Options.Path (default fibbench-results.jsonl)
//   - "redis": go-redis client when RedisAddr is set, otherwise a logging client
func Build(kind string, opts Options) (Sink, error) {
	switch kind {
	case "", "none":
		return Discard{}, nil
	case "file":
		path := opts.Path
		if path == "" {
			path = "fibbench-results.jsonl"
		}
		fs, err := NewFileSink(path)
		if err != nil {
			return nil, err
		}
		return fs, nil
	case "redis":
		var evaler RedisEvaler
		if opts.RedisAddr != "" {
			g := NewGoRedisEvaler(opts.RedisAddr)
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if err := g.Ping(ctx); err != nil {
				_ = g.Close()
				return nil, fmt.Errorf("redis %s: %w", opts.RedisAddr, err)
			}
			evaler = g
		} else {
			evaler = LoggingRedisEvaler{Log: opts.Log}
		}
		return NewRedisSink(evaler, opts.RedisMarkerTTL, opts.RedisHistory), nil
	default:
		return nil, fmt.Errorf("unknown result sink: %s", kind)
	}
}
