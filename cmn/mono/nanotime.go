// Package mono provides low-level monotonic time
/*
 * Copyright (c) 2026, Skyrod Authors. All rights reserved.
 */
package mono

import "time"

var started = time.Now()

// NanoTime returns monotonic nanoseconds since process start.
func NanoTime() int64 { return int64(time.Since(started)) }

// Since returns the duration elapsed from a prior NanoTime reading.
func Since(t int64) time.Duration { return time.Duration(NanoTime() - t) }
