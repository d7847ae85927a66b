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

// Package e2e builds the real binaries and drives them as a user would.
package e2e

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"
)

// buildBinary compiles pkg into a temp dir, optionally with build tags.
func buildBinary(t *testing.T, pkg, name string, tags ...string) string {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping e2e build in -short mode")
	}
	exe := filepath.Join(t.TempDir(), exeName(name))
	args := []string{"build", "-o", exe}
	if len(tags) > 0 {
		args = append(args, "-tags", strings.Join(tags, ","))
	}
	args = append(args, pkg)
	build := exec.Command("go", args...)
	build.Stdout = os.Stdout
	build.Stderr = os.Stderr
	if err := build.Run(); err != nil {
		t.Fatalf("failed to build %s: %v", pkg, err)
	}
	return exe
}

func exeName(base string) string {
	if runtime.GOOS == "windows" {
		return base + ".exe"
	}
	return base
}

func runCLI(t *testing.T, exe string, args ...string) (stdout, stderr string, code int) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := exec.Command(exe, args...)
	cmd.Stdout = &out
	cmd.Stderr = &errOut
	err := cmd.Run()
	if ee, ok := err.(*exec.ExitError); ok {
		return out.String(), errOut.String(), ee.ExitCode()
	}
	if err != nil {
		t.Fatalf("run %s: %v", exe, err)
	}
	return out.String(), errOut.String(), 0
}

func TestE2E_CLIReport(t *testing.T) {
	exe := buildBinary(t, "fibbench/cmd/fibbench", "fibbench")

	out, errOut, code := runCLI(t, exe, "-n", "10", "-runs", "1")
	if code != 0 {
		t.Fatalf("exit %d: %s", code, errOut)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 4 || lines[0] != "Fibonacci(10):" {
		t.Fatalf("unexpected report: %q", out)
	}
	if !strings.HasPrefix(lines[1], "  Rust:   ") || !strings.HasSuffix(lines[1], "s") {
		t.Fatalf("baseline line: %q", lines[1])
	}
	if !strings.HasPrefix(lines[2], "  Python: ") || !strings.HasSuffix(lines[2], "s") {
		t.Fatalf("comparison line: %q", lines[2])
	}
	if !strings.HasPrefix(lines[3], "  Speedup: ") || !strings.HasSuffix(lines[3], "x") {
		t.Fatalf("speedup line: %q", lines[3])
	}

	out, _, code = runCLI(t, exe, "-mode", "iterative", "-n", "80", "-runs", "10")
	if code != 0 || !strings.HasPrefix(out, "Fibonacci(80) iterative:") {
		t.Fatalf("iterative: exit %d, %q", code, out)
	}
}

// A binary built without the native kernel must refuse to benchmark and say
// how to fix it, without printing a partial report.
func TestE2E_CLIWithoutNativeKernel(t *testing.T) {
	exe := buildBinary(t, "fibbench/cmd/fibbench", "fibbench-nonative", "nonative")

	out, errOut, code := runCLI(t, exe, "-n", "10", "-runs", "1")
	if code != 1 {
		t.Fatalf("expected exit 1, got %d", code)
	}
	if out != "" {
		t.Fatalf("expected no report, got %q", out)
	}
	if !strings.Contains(errOut, "not built") || !strings.Contains(errOut, "nonative") {
		t.Fatalf("expected actionable error, got %q", errOut)
	}

	// Comparison-only modes keep working.
	out, _, code = runCLI(t, exe, "-mode", "seq", "-n", "3")
	if code != 0 || out != "0\t0\n1\t1\n2\t1\n3\t2\n" {
		t.Fatalf("seq: exit %d, %q", code, out)
	}
}

func TestE2E_APIServeAndShutdown(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("graceful shutdown relies on SIGINT")
	}
	exe := buildBinary(t, "fibbench/cmd/fibbench-api", "fibbench-api")

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to find free port: %v", err)
	}
	addr := ln.Addr().String()
	_ = ln.Close()

	cmd := exec.Command(exe, "--http_addr="+addr, "--log_format=json")
	stderr, err := cmd.StderrPipe()
	if err != nil {
		t.Fatalf("StderrPipe: %v", err)
	}
	logC := make(chan string, 256)
	go scanLines(stderr, logC)
	if err := cmd.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	t.Cleanup(func() {
		_ = cmd.Process.Kill()
		_, _ = cmd.Process.Wait()
	})

	base := "http://" + addr
	client := &http.Client{Timeout: 2 * time.Second}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for {
		resp, err := client.Get(base + "/kernels")
		if err == nil {
			resp.Body.Close()
			break
		}
		if ctx.Err() != nil {
			t.Fatalf("server did not become ready: %v", err)
		}
		time.Sleep(50 * time.Millisecond)
	}

	resp, err := client.Get(base + "/fib?n=93&kernel=native")
	if err != nil {
		t.Fatalf("/fib: %v", err)
	}
	var body struct {
		Value uint64 `json:"value"`
	}
	_ = json.NewDecoder(resp.Body).Decode(&body)
	resp.Body.Close()
	if body.Value != 12200160415121876738 {
		t.Fatalf("F(93) = %d", body.Value)
	}

	resp, err = client.Get(base + "/benchmark?n=15&runs=2")
	if err != nil {
		t.Fatalf("/benchmark: %v", err)
	}
	report, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if !strings.HasPrefix(string(report), "Fibonacci(15):\n") {
		t.Fatalf("unexpected report: %q", report)
	}

	if err := cmd.Process.Signal(os.Interrupt); err != nil {
		t.Fatalf("signal: %v", err)
	}
	if !waitForLog(logC, "server gracefully stopped", 5*time.Second) {
		t.Fatalf("no graceful shutdown log")
	}
}

func scanLines(r io.Reader, out chan<- string) {
	s := bufio.NewScanner(r)
	for s.Scan() {
		out <- s.Text()
	}
	close(out)
}

func waitForLog(logC <-chan string, needle string, timeout time.Duration) bool {
	deadline := time.After(timeout)
	for {
		select {
		case line, ok := <-logC:
			if !ok {
				return false
			}
			if strings.Contains(line, needle) {
				return true
			}
		case <-deadline:
			return false
		}
	}
}
