// Package transform provides the byte-stream transforms (compression,
// encryption, hashing) that plug into memb pipelines, in both streaming
// and value forms.
/*
 * Copyright (c) 2026, Skyrod Authors. All rights reserved.
 */
package transform

import (
	"bytes"
	"io"

	"github.com/skyrod/wirenet/cmn/cos"
	"github.com/skyrod/wirenet/memb"

	"github.com/klauspost/compress/gzip"
)

// Gzip returns a stage that compresses the stream.
func Gzip() memb.Stage {
	return func(in *memb.Consumer, out *memb.Producer) error {
		zw := gzip.NewWriter(out)
		if _, err := io.Copy(zw, in); err != nil {
			zw.Close()
			return cos.NewErrCrypto("gzip compress", err)
		}
		if err := zw.Close(); err != nil {
			return cos.NewErrCrypto("gzip flush", err)
		}
		return nil
	}
}

// Gunzip returns a stage that decompresses the stream.
func Gunzip() memb.Stage {
	return func(in *memb.Consumer, out *memb.Producer) error {
		zr, err := gzip.NewReader(in)
		if err != nil {
			return cos.NewErrCrypto("gzip header", err)
		}
		if _, err := io.Copy(out, zr); err != nil {
			zr.Close()
			return cos.NewErrCrypto("gzip decompress", err)
		}
		return zr.Close()
	}
}

// GzipBytes is the value form of Gzip.
func GzipBytes(b []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(b); err != nil {
		return nil, cos.NewErrCrypto("gzip compress", err)
	}
	if err := zw.Close(); err != nil {
		return nil, cos.NewErrCrypto("gzip flush", err)
	}
	return buf.Bytes(), nil
}

// GunzipBytes is the value form of Gunzip.
func GunzipBytes(b []byte) ([]byte, error) {
	zr, err := gzip.NewReader(bytes.NewReader(b))
	if err != nil {
		return nil, cos.NewErrCrypto("gzip header", err)
	}
	defer zr.Close()
	plain, err := io.ReadAll(zr)
	if err != nil {
		return nil, cos.NewErrCrypto("gzip decompress", err)
	}
	return plain, nil
}
