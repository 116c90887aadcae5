// Package nlog - wirenet logger: leveled, timestamped, thread-safe
/*
 * Copyright (c) 2026, Skyrod Authors. All rights reserved.
 */
package nlog

func Verbln(args ...any)                  { log(sevVerb, "", args...) }
func Verbf(format string, args ...any)    { log(sevVerb, format, args...) }
func Infoln(args ...any)                  { log(sevInfo, "", args...) }
func Infof(format string, args ...any)    { log(sevInfo, format, args...) }
func Warningln(args ...any)               { log(sevWarn, "", args...) }
func Warningf(format string, args ...any) { log(sevWarn, format, args...) }
func Errorln(args ...any)                 { log(sevErr, "", args...) }
func Errorf(format string, args ...any)   { log(sevErr, format, args...) }
