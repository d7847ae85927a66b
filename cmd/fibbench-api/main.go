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

// Command fibbench-api serves the Fibonacci kernels and the benchmark harness
// over HTTP.
//
//	curl "http://localhost:8080/fib?n=50&kernel=native"
//	curl "http://localhost:8080/benchmark?n=30&runs=3"
//	curl "http://localhost:8080/kernels"
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fibbench/internal/api"
	"fibbench/internal/bench"
	"fibbench/internal/logging"
	_ "fibbench/internal/native"
	"fibbench/internal/sinks"
	"fibbench/internal/telemetry"
	"fibbench/pkg/fib"
	"fibbench/pkg/kernel"
)

func main() {
	httpAddr := flag.String("http_addr", ":8080", "HTTP listen address (e.g., :8080)")
	maxRuns := flag.Int("max_runs", 20, "upper bound for the runs parameter of /benchmark")
	warmup := flag.Int("warmup", 0, "untimed calls per kernel before timing")
	metricsAddr := flag.String("metrics_addr", "", "if non-empty, also expose /metrics on this address; /metrics is always served on -http_addr")
	sinkKind := flag.String("sink", "none", "where to publish benchmark results: none|file|redis")
	sinkPath := flag.String("sink_path", "fibbench-results.jsonl", "JSONL file for -sink=file")
	redisAddr := flag.String("redis_addr", "", "Redis address for -sink=redis; empty logs the commands instead")
	redisTTL := flag.Duration("redis_ttl", 24*time.Hour, "TTL of per-run idempotency markers in Redis")
	logLevel := flag.String("log_level", "info", "panic|fatal|error|warn|info|debug|trace")
	logFormat := flag.String("log_format", "text", "text|json")
	flag.Parse()

	log, err := logging.New(*logLevel, *logFormat, os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "fibbench-api: %v\n", err)
		os.Exit(2)
	}

	bench.SetSetting("http_addr", *httpAddr)
	bench.SetSettingInt("max_runs", *maxRuns)
	bench.SetSettingInt("warmup", *warmup)
	bench.SetSetting("metrics_addr", *metricsAddr)
	bench.SetSetting("sink", *sinkKind)
	bench.SetSettingDuration("redis_ttl", *redisTTL)
	bench.LogSettings(log)

	metricsSrv := telemetry.Enable(telemetry.Config{Enabled: true, MetricsAddr: *metricsAddr})

	sink, err := sinks.Build(*sinkKind, sinks.Options{Path: *sinkPath, RedisAddr: *redisAddr, RedisMarkerTTL: *redisTTL, Log: log})
	if err != nil {
		log.WithError(err).Fatal("cannot build result sink")
	}

	// Comparison kernels are always present; native ones only if linked.
	reg := kernel.NewRegistry()
	fib.Register(reg)
	for _, name := range kernel.Names() {
		f, _ := kernel.Lookup(name)
		reg.Register(name, f)
	}
	if _, err := reg.Lookup(kernel.Native); err != nil {
		log.WithError(err).Warn("/benchmark will fail until the native kernel is linked")
	}

	apiServer := api.NewServer(reg, api.Config{
		MaxRuns: *maxRuns,
		Bench:   bench.Options{Logger: log, Sinks: []sinks.Sink{sink}, Warmup: *warmup},
		Logger:  log,
	})
	mux := http.NewServeMux()
	apiServer.RegisterRoutes(mux)
	httpServer := &http.Server{
		Addr:              *httpAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		log.WithField("addr", *httpAddr).Info("fibbench API listening")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatalf("could not listen on %s", *httpAddr)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.WithError(err).Error("server shutdown failed")
	}
	if metricsSrv != nil {
		_ = metricsSrv.Shutdown(ctx)
	}
	if err := sink.Close(); err != nil {
		log.WithError(err).Warn("closing result sink")
	}
	log.Info("server gracefully stopped")
}
