// Package cos provides common low-level types and utilities for all wirenet packages
/*
 * Copyright (c) 2026, Skyrod Authors. All rights reserved.
 */
package cos

import (
	crand "crypto/rand"
	"encoding/binary"
	"sync"
	ratomic "sync/atomic"

	"github.com/teris-io/shortid"
)

// Alphabet for generating UUIDs, similar to the shortid.DEFAULT_ABC
// NOTE: len(uuidABC) == 0x40 - see GenTie()
const uuidABC = "-5nZJDft6LuzsjGNpPwY7rQa39vehq4i1cV2FROo8yHSlC0BUEdWbIxMmTgKXAk_"

// UUID length, as per https://github.com/teris-io/shortid#id-length
const LenShortID = 9

var (
	sid     *shortid.Shortid
	sidOnce sync.Once
	rtie    ratomic.Uint32
)

func initShortID() {
	var b [8]byte
	_, _ = crand.Read(b[:])
	sid = shortid.MustNew(4 /*worker*/, uuidABC, binary.LittleEndian.Uint64(b[:]))
}

//
// UUID
//

// GenUUID returns a process-unique short identifier. Head and tail
// tie-breakers keep the result alphanumeric-bracketed for map keys and logs.
func GenUUID() (uuid string) {
	sidOnce.Do(initShortID)
	var h, t string
	uuid = sid.MustGenerate()
	if !isAlpha(uuid[0]) {
		tie := int(rtie.Add(1))
		h = string(rune('A' + tie%26))
	}
	c := uuid[len(uuid)-1]
	if c == '-' || c == '_' {
		tie := int(rtie.Add(1))
		t = string(rune('a' + tie%26))
	}
	return h + uuid + t
}

func IsValidUUID(uuid string) bool {
	if len(uuid) < LenShortID {
		return false
	}
	for i := range len(uuid) {
		c := uuid[i]
		if isAlpha(c) || (c >= '0' && c <= '9') || c == '-' || c == '_' {
			continue
		}
		return false
	}
	return true
}

// 3-letter tie breaker (fast)
func GenTie() string {
	tie := rtie.Add(1)
	b0 := uuidABC[tie&0x3f]
	b1 := uuidABC[-tie&0x3f]
	b2 := uuidABC[(tie>>2)&0x3f]
	return string([]byte{b0, b1, b2})
}

func isAlpha(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
