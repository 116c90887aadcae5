// Package nlog - wirenet logger: leveled, timestamped, thread-safe
/*
 * Copyright (c) 2026, Skyrod Authors. All rights reserved.
 */
package nlog

import (
	"fmt"
	"io"
	"os"
	"sync"
	ratomic "sync/atomic"
	"time"
)

type severity int32

const (
	sevVerb severity = iota // low-level wire tracing
	sevInfo
	sevWarn
	sevErr
)

var sevText = [...]string{"V", "I", "W", "E"}

var (
	mw  sync.Mutex
	out io.Writer = os.Stderr

	level ratomic.Int32 // minimum severity actually written
)

func init() { level.Store(int32(sevInfo)) }

// SetOutput redirects the process-wide sink (default: stderr).
func SetOutput(w io.Writer) {
	mw.Lock()
	out = w
	mw.Unlock()
}

// SetVerbose enables the low-level (wire tracing) severity.
func SetVerbose(on bool) {
	if on {
		level.Store(int32(sevVerb))
	} else {
		level.Store(int32(sevInfo))
	}
}

func Verbose() bool { return severity(level.Load()) == sevVerb }

func log(sev severity, format string, args ...any) {
	if sev < severity(level.Load()) {
		return
	}
	var msg string
	if format == "" {
		msg = fmt.Sprintln(args...)
	} else {
		msg = fmt.Sprintf(format, args...)
		if len(msg) == 0 || msg[len(msg)-1] != '\n' {
			msg += "\n"
		}
	}
	stamp := time.Now().Format("15:04:05.000000")
	mw.Lock()
	fmt.Fprintf(out, "%s %s %s", sevText[sev], stamp, msg)
	mw.Unlock()
}
