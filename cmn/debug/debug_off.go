//go:build !debug

// Package debug provides assertions that compile away in production builds
/*
 * Copyright (c) 2026, Skyrod Authors. All rights reserved.
 */
package debug

func ON() bool { return false }

func Assert(_ bool, _ ...any)            {}
func Assertf(_ bool, _ string, _ ...any) {}
func AssertNoErr(_ error)                {}
