// Package transform provides the byte-stream transforms that plug into
// memb pipelines.
/*
 * Copyright (c) 2026, Skyrod Authors. All rights reserved.
 */
package transform

import (
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"hash"
	"io"

	"github.com/skyrod/wirenet/cmn/cos"
	"github.com/skyrod/wirenet/memb"

	"github.com/OneOfOne/xxhash"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/blake2s"
)

// digestStage drains the stream and emits the hex digest.
func digestStage(name string, mk func() (hash.Hash, error)) memb.Stage {
	return func(in *memb.Consumer, out *memb.Producer) error {
		h, err := mk()
		if err != nil {
			return cos.NewErrCrypto(name, err)
		}
		if _, err := io.Copy(h, in); err != nil {
			return cos.NewErrCrypto(name, err)
		}
		_, err = out.Write([]byte(hex.EncodeToString(h.Sum(nil))))
		return err
	}
}

func SHA256() memb.Stage {
	return digestStage("sha256", func() (hash.Hash, error) { return sha256.New(), nil })
}

func SHA512() memb.Stage {
	return digestStage("sha512", func() (hash.Hash, error) { return sha512.New(), nil })
}

func Blake2b() memb.Stage {
	return digestStage("blake2b", func() (hash.Hash, error) { return blake2b.New512(nil) })
}

func Blake2s() memb.Stage {
	return digestStage("blake2s", func() (hash.Hash, error) { return blake2s.New256(nil) })
}

func XXH64() memb.Stage {
	return digestStage("xxh64", func() (hash.Hash, error) { return xxhash.New64(), nil })
}

//
// value forms
//

func SHA256Sum(b []byte) string {
	d := sha256.Sum256(b)
	return hex.EncodeToString(d[:])
}

func SHA512Sum(b []byte) string {
	d := sha512.Sum512(b)
	return hex.EncodeToString(d[:])
}

func Blake2bSum(b []byte) string {
	d := blake2b.Sum512(b)
	return hex.EncodeToString(d[:])
}

func Blake2sSum(b []byte) string {
	d := blake2s.Sum256(b)
	return hex.EncodeToString(d[:])
}

func XXH64Sum(b []byte) uint64 { return xxhash.Checksum64(b) }
