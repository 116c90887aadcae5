// Package transform provides the byte-stream transforms that plug into
// memb pipelines.
/*
 * Copyright (c) 2026, Skyrod Authors. All rights reserved.
 */
package transform

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"errors"

	"github.com/skyrod/wirenet/cmn/cos"
	"github.com/skyrod/wirenet/memb"

	"golang.org/x/crypto/pbkdf2"
)

// AES-128-CBC with a PBKDF2-HMAC-SHA256 password-derived key. The wire
// layout is salt(16) | iv(16) | ciphertext; the salt is random per message.
const (
	saltLen     = 16
	ivLen       = aes.BlockSize
	keyLen      = 16
	pbkdf2Iters = 10_000
)

func deriveKey(password string, salt []byte) []byte {
	return pbkdf2.Key([]byte(password), salt, pbkdf2Iters, keyLen, sha256.New)
}

// EncryptBytes is the value form of AESEncrypt.
func EncryptBytes(plain []byte, password string) ([]byte, error) {
	var hdr [saltLen + ivLen]byte
	if _, err := rand.Read(hdr[:]); err != nil {
		return nil, cos.NewErrCrypto("aes salt/iv", err)
	}
	salt, iv := hdr[:saltLen], hdr[saltLen:]
	block, err := aes.NewCipher(deriveKey(password, salt))
	if err != nil {
		return nil, cos.NewErrCrypto("aes key", err)
	}
	padded := pkcs7Pad(plain)
	enc := make([]byte, len(hdr)+len(padded))
	copy(enc, hdr[:])
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(enc[len(hdr):], padded)
	return enc, nil
}

// DecryptBytes is the value form of AESDecrypt. A wrong password or a
// tampered ciphertext fails the padding check and returns a CryptoError.
func DecryptBytes(enc []byte, password string) ([]byte, error) {
	if len(enc) < saltLen+ivLen {
		return nil, cos.NewErrCrypto("ciphertext too short to contain salt and IV", nil)
	}
	salt, iv, body := enc[:saltLen], enc[saltLen:saltLen+ivLen], enc[saltLen+ivLen:]
	if len(body) == 0 || len(body)%aes.BlockSize != 0 {
		return nil, cos.NewErrCrypto("ciphertext is not block-aligned", nil)
	}
	block, err := aes.NewCipher(deriveKey(password, salt))
	if err != nil {
		return nil, cos.NewErrCrypto("aes key", err)
	}
	plain := make([]byte, len(body))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(plain, body)
	return pkcs7Unpad(plain)
}

// AESEncrypt returns a stage encrypting the whole stream as one message.
func AESEncrypt(password string) memb.Stage {
	return func(in *memb.Consumer, out *memb.Producer) error {
		plain, err := in.ExtractUntilEOF()
		if err != nil {
			return cos.NewErrCrypto("aes input", err)
		}
		enc, err := EncryptBytes(plain, password)
		if err != nil {
			return err
		}
		_, err = out.Write(enc)
		return err
	}
}

// AESDecrypt returns the mirror stage of AESEncrypt.
func AESDecrypt(password string) memb.Stage {
	return func(in *memb.Consumer, out *memb.Producer) error {
		enc, err := in.ExtractUntilEOF()
		if err != nil {
			return cos.NewErrCrypto("aes input", err)
		}
		plain, err := DecryptBytes(enc, password)
		if err != nil {
			return err
		}
		_, err = out.Write(plain)
		return err
	}
}

func pkcs7Pad(b []byte) []byte {
	n := aes.BlockSize - len(b)%aes.BlockSize
	padded := make([]byte, len(b)+n)
	copy(padded, b)
	for i := len(b); i < len(padded); i++ {
		padded[i] = byte(n)
	}
	return padded
}

func pkcs7Unpad(b []byte) ([]byte, error) {
	errBad := cos.NewErrCrypto("decryption failed", errors.New("invalid padding"))
	if len(b) == 0 {
		return nil, errBad
	}
	n := int(b[len(b)-1])
	if n == 0 || n > aes.BlockSize || n > len(b) {
		return nil, errBad
	}
	if !bytes.Equal(b[len(b)-n:], bytes.Repeat([]byte{byte(n)}, n)) {
		return nil, errBad
	}
	return b[:len(b)-n], nil
}
