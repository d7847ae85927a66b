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

// Command fibbench times the native Fibonacci kernel against the recursive or
// iterative comparison kernel and prints the speedup.
//
//	fibbench -n 35 -runs 5
//	fibbench -mode iterative -n 90 -runs 1000
//	fibbench -mode both -sink file -sink_path results.jsonl
//	fibbench -mode value -n 50
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"fibbench/internal/bench"
	"fibbench/internal/logging"
	_ "fibbench/internal/native"
	"fibbench/internal/sinks"
	"fibbench/internal/telemetry"
	"fibbench/pkg/fib"
	"fibbench/pkg/kernel"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("fibbench", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		n         = fs.Int("n", bench.DefaultIndex, "Fibonacci index to benchmark (20..40 recommended for recursive mode)")
		runs      = fs.Int("runs", bench.DefaultRuns, "timed calls per kernel; the mean is reported")
		mode      = fs.String("mode", "recursive", "recursive|iterative|both|value|seq")
		warmup    = fs.Int("warmup", 0, "untimed calls per kernel before timing")
		baseLabel = fs.String("baseline_label", bench.DefaultLabels.Baseline, "report label of the baseline (native) kernel")
		cmpLabel  = fs.String("comparison_label", bench.DefaultLabels.Comparison, "report label of the comparison kernel")

		metricsAddr = fs.String("metrics_addr", "", "if non-empty, expose Prometheus /metrics on this address (e.g., :9090)")
		hold        = fs.Bool("hold", false, "keep the process (and /metrics) alive until SIGINT/SIGTERM after benchmarking")

		sinkKind  = fs.String("sink", "none", "where to publish results: none|file|redis")
		sinkPath  = fs.String("sink_path", "fibbench-results.jsonl", "JSONL file for -sink=file")
		redisAddr = fs.String("redis_addr", "", "Redis address for -sink=redis; empty logs the commands instead")
		redisTTL  = fs.Duration("redis_ttl", 24*time.Hour, "TTL of per-run idempotency markers in Redis")

		logLevel  = fs.String("log_level", "warn", "panic|fatal|error|warn|info|debug|trace")
		logFormat = fs.String("log_format", "text", "text|json")
	)
	if err := fs.Parse(args); err != nil {
		return 2
	}

	log, err := logging.New(*logLevel, *logFormat, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "fibbench: %v\n", err)
		return 2
	}
	switch *mode {
	case "recursive", "iterative", "both", "value", "seq":
	default:
		fmt.Fprintln(stderr, "-mode must be one of: recursive|iterative|both|value|seq")
		return 2
	}

	bench.SetSettingInt("n", *n)
	bench.SetSettingInt("runs", *runs)
	bench.SetSetting("mode", *mode)
	bench.SetSettingInt("warmup", *warmup)
	bench.SetSetting("sink", *sinkKind)
	bench.SetSetting("metrics_addr", *metricsAddr)
	bench.SetSettingDuration("redis_ttl", *redisTTL)
	bench.SetSettingBool("hold", *hold)
	bench.LogSettings(log)

	metricsSrv := telemetry.Enable(telemetry.Config{Enabled: *metricsAddr != "", MetricsAddr: *metricsAddr})

	sink, err := sinks.Build(*sinkKind, sinks.Options{
		Path:           *sinkPath,
		RedisAddr:      *redisAddr,
		RedisMarkerTTL: *redisTTL,
		Log:            log,
	})
	if err != nil {
		log.WithError(err).Error("cannot build result sink")
		return 1
	}
	defer func() {
		if err := sink.Close(); err != nil {
			log.WithError(err).Warn("closing result sink")
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	h := bench.NewWithOptions(stdout, bench.Options{
		Labels: bench.Labels{Baseline: *baseLabel, Comparison: *cmpLabel},
		Logger: log,
		Sinks:  []sinks.Sink{sink},
		Warmup: *warmup,
	})

	switch *mode {
	case "value":
		err = printValues(stdout, *n)
	case "seq":
		err = printSequence(stdout, *n)
	case "both":
		if err = h.Benchmark(ctx, *n, *runs); err == nil {
			err = h.BenchmarkIterative(ctx, *n, *runs)
		}
	case "iterative":
		err = h.BenchmarkIterative(ctx, *n, *runs)
	default:
		err = h.Benchmark(ctx, *n, *runs)
	}
	if err != nil {
		log.WithError(err).WithFields(logrus.Fields{"mode": *mode, "n": *n}).Error("fibbench failed")
		return 1
	}

	if metricsSrv != nil {
		if *hold {
			log.WithField("addr", *metricsAddr).Info("holding for /metrics scrapes; Ctrl+C to exit")
			<-ctx.Done()
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := metricsSrv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Warn("metrics server shutdown")
		}
	}
	return 0
}

// printValues prints F(n) from every kernel that can compute it.
func printValues(w io.Writer, n int) error {
	type named struct {
		name string
		f    kernel.Func
	}
	ks := []named{{fib.IterativeName, fib.Iterative}}
	if n <= bench.RecommendedMaxRecursive {
		ks = append(ks, named{fib.RecursiveName, fib.Recursive})
	}
	for _, name := range []string{kernel.Native, kernel.NativeRecursive} {
		if name == kernel.NativeRecursive && n > bench.RecommendedMaxRecursive {
			continue
		}
		f, err := kernel.Lookup(name)
		if err != nil {
			return err
		}
		ks = append(ks, named{name, f})
	}
	for _, k := range ks {
		v, err := k.f(n)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%-17s F(%d) = %d\n", k.name+":", n, v)
	}
	return nil
}

func printSequence(w io.Writer, n int) error {
	seq, err := fib.Sequence(n)
	if err != nil {
		return err
	}
	for i, v := range seq {
		fmt.Fprintf(w, "%d\t%d\n", i, v)
	}
	return nil
}
