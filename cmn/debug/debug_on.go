//go:build debug

// Package debug provides assertions that compile away in production builds
/*
 * Copyright (c) 2026, Skyrod Authors. All rights reserved.
 */
package debug

import (
	"fmt"
	"os"
	"strings"
)

func ON() bool { return true }

func Assert(cond bool, a ...any) {
	if !cond {
		if len(a) > 0 {
			_die(fmt.Sprint(a...))
		} else {
			_die("assertion failed")
		}
	}
}

func Assertf(cond bool, format string, a ...any) {
	if !cond {
		_die(fmt.Sprintf(format, a...))
	}
}

func AssertNoErr(err error) {
	if err != nil {
		_die(err.Error())
	}
}

func _die(msg string) {
	fmt.Fprintln(os.Stderr, "DEBUG PANIC: "+msg)
	panic(strings.TrimSpace(msg))
}
