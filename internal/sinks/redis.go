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
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	redis "github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// RedisEvaler abstracts the minimal surface we need from a Redis client.
type RedisEvaler interface {
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) (interface{}, error)
}

// RedisSink stores results idempotently using a Lua script:
//  1. SETNX fibbench:run:<run_id> 1
//  2. If set -> HSET the latest result for (mode, n) and LPUSH it onto the history list
//  3. LTRIM the history and EXPIRE the marker
//
// A retried publish of the same run finds the marker and changes nothing.
type RedisSink struct {
	client     RedisEvaler
	markerTTL  time.Duration
	historyCap int
}

// NewRedisSink returns a sink with the given client. markerTTL <= 0 defaults to
// 24h; historyCap <= 0 defaults to 100 entries per (mode, n).
func NewRedisSink(client RedisEvaler, markerTTL time.Duration, historyCap int) *RedisSink {
	if markerTTL <= 0 {
		markerTTL = 24 * time.Hour
	}
	if historyCap <= 0 {
		historyCap = 100
	}
	return &RedisSink{client: client, markerTTL: markerTTL, historyCap: historyCap}
}

// redisLuaScript returns 1 if the run was recorded, 0 if it already was.
const redisLuaScript = `
local latestKey = KEYS[1]
local historyKey = KEYS[2]
local markerKey = KEYS[3]
local ttlSeconds = tonumber(ARGV[5])
local historyCap = tonumber(ARGV[6])
local set = redis.call('SETNX', markerKey, 1)
if set == 1 then
  redis.call('HSET', latestKey, 'run_id', ARGV[1], 'baseline_ns', ARGV[2], 'comparison_ns', ARGV[3], 'speedup', ARGV[4])
  redis.call('LPUSH', historyKey, ARGV[7])
  redis.call('LTRIM', historyKey, 0, historyCap - 1)
  if ttlSeconds and ttlSeconds > 0 then
    redis.call('EXPIRE', markerKey, ttlSeconds)
  end
  return 1
else
  return 0
end
`

// Key layout helpers.
func RedisLatestKey(mode string, n int) string { return fmt.Sprintf("fibbench:latest:%s:%d", mode, n) }
func RedisHistoryKey(mode string, n int) string { return fmt.Sprintf("fibbench:history:%s:%d", mode, n) }
func RedisRunMarkerKey(runID string) string { return fmt.Sprintf("fibbench:run:%s", runID) }

// Publish records each result with one EVAL.
func (r *RedisSink) Publish(ctx context.Context, records []Record) error {
	for _, rec := range records {
		if rec.RunID == "" {
			return errors.New("Record.RunID must be set")
		}
		payload, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("encode run %s: %w", rec.RunID, err)
		}
		keys := []string{
			RedisLatestKey(rec.Mode, rec.N),
			RedisHistoryKey(rec.Mode, rec.N),
			RedisRunMarkerKey(rec.RunID),
		}
		args := []interface{}{
			rec.RunID,
			rec.BaselineMeanNS,
			rec.ComparisonMeanNS,
			strconv.FormatFloat(rec.Speedup, 'f', 3, 64),
			int(r.markerTTL.Seconds()),
			r.historyCap,
			string(payload),
		}
		if _, err := r.client.Eval(ctx, redisLuaScript, keys, args...); err != nil {
			return fmt.Errorf("redis eval run=%s: %w", rec.RunID, err)
		}
	}
	return nil
}

// Close releases the client if it holds a connection pool.
func (r *RedisSink) Close() error {
	if c, ok := r.client.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// GoRedisEvaler wraps github.com/redis/go-redis/v9.
type GoRedisEvaler struct{ c *redis.Client }

// NewGoRedisEvaler connects lazily to addr, e.g. "127.0.0.1:6379".
func NewGoRedisEvaler(addr string) *GoRedisEvaler {
	return &GoRedisEvaler{c: redis.NewClient(&redis.Options{Addr: addr})}
}

func (g *GoRedisEvaler) Eval(ctx context.Context, script string, keys []string, args ...interface{}) (interface{}, error) {
	return g.c.Eval(ctx, script, keys, args...).Result()
}

// Ping checks connectivity.
func (g *GoRedisEvaler) Ping(ctx context.Context) error { return g.c.Ping(ctx).Err() }

func (g *GoRedisEvaler) Close() error { return g.c.Close() }

// LoggingRedisEvaler logs the evaluation instead of running it, so the redis
// sink can be tried without a server. Not for production use.
type LoggingRedisEvaler struct {
	Log logrus.FieldLogger
}

func (l LoggingRedisEvaler) Eval(ctx context.Context, script string, keys []string, args ...interface{}) (interface{}, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	log := l.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	log.WithFields(logrus.Fields{
		"script_len": len(script),
		"keys":       keys,
		"nargs":      len(args),
	}).Info("redis-demo EVAL")
	return int64(1), nil
}
