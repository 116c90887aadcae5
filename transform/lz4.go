// Package transform provides the byte-stream transforms that plug into
// memb pipelines.
/*
 * Copyright (c) 2026, Skyrod Authors. All rights reserved.
 */
package transform

import (
	"bytes"
	"io"

	"github.com/skyrod/wirenet/cmn/cos"
	"github.com/skyrod/wirenet/memb"

	"github.com/pierrec/lz4/v3"
)

// LZ4 returns a stage that compresses the stream with LZ4 framing.
func LZ4() memb.Stage {
	return func(in *memb.Consumer, out *memb.Producer) error {
		zw := lz4.NewWriter(out)
		if _, err := io.Copy(zw, in); err != nil {
			zw.Close()
			return cos.NewErrCrypto("lz4 compress", err)
		}
		if err := zw.Close(); err != nil {
			return cos.NewErrCrypto("lz4 flush", err)
		}
		return nil
	}
}

// UnLZ4 returns a stage that decompresses an LZ4-framed stream.
func UnLZ4() memb.Stage {
	return func(in *memb.Consumer, out *memb.Producer) error {
		zr := lz4.NewReader(in)
		if _, err := io.Copy(out, zr); err != nil {
			return cos.NewErrCrypto("lz4 decompress", err)
		}
		return nil
	}
}

// LZ4Bytes is the value form of LZ4.
func LZ4Bytes(b []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw := lz4.NewWriter(&buf)
	if _, err := zw.Write(b); err != nil {
		return nil, cos.NewErrCrypto("lz4 compress", err)
	}
	if err := zw.Close(); err != nil {
		return nil, cos.NewErrCrypto("lz4 flush", err)
	}
	return buf.Bytes(), nil
}

// UnLZ4Bytes is the value form of UnLZ4.
func UnLZ4Bytes(b []byte) ([]byte, error) {
	plain, err := io.ReadAll(lz4.NewReader(bytes.NewReader(b)))
	if err != nil {
		return nil, cos.NewErrCrypto("lz4 decompress", err)
	}
	return plain, nil
}
