// SecureLink - Authenticated Channel over Local Sockets
// Copyright (c) 2026 VertexHub
// Licensed under MIT License
// https://github.com/vertexhub/securelink

// Package cipher implements the symmetric cipher facade the secured channel
// interposes once a session key is agreed. The Session never hard-depends on
// a single algorithm: an Algorithm id dispatches key, IV, and block sizes
// through a small trait table.
package cipher

import (
	"crypto/aes"
	cryptocipher "crypto/cipher"
	"crypto/rand"
	"fmt"
	"io"

	"github.com/vertexhub/securelink/internal/wire"
)

// Algorithm identifies a supported symmetric cipher.
type Algorithm int

// AES256CBC is the only algorithm the protocol currently recognizes.
const AES256CBC Algorithm = iota

type traits struct {
	KeySize   int
	IVSize    int
	BlockSize int
	Name      string
}

var traitTable = map[Algorithm]traits{
	AES256CBC: {KeySize: 32, IVSize: aes.BlockSize, BlockSize: aes.BlockSize, Name: "AES-256-CBC"},
}

// Engine holds the symmetric key and algorithm context for one secured
// channel. It is safe for use from a single goroutine at a time, matching
// the single-threaded session model the protocol runs under.
type Engine struct {
	algo traits
	key  []byte
}

// New builds an Engine for algo with the given key. The key must match the
// algorithm's key size exactly (32 bytes for AES-256-CBC).
func New(algo Algorithm, key []byte) (*Engine, error) {
	t, ok := traitTable[algo]
	if !ok {
		return nil, fmt.Errorf("cipher: unknown algorithm %d", algo)
	}
	if len(key) != t.KeySize {
		return nil, fmt.Errorf("cipher: %s requires a %d-byte key, got %d", t.Name, t.KeySize, len(key))
	}
	return &Engine{algo: t, key: key}, nil
}

// Name reports the algorithm's display name.
func (e *Engine) Name() string {
	return e.algo.Name
}

// Encrypt pads msg's payload bytes (without the frame length prefix) with
// PKCS#7 and encrypts them under a
// fresh random IV, returning the (IV, ciphertext) pair as EncryptedData.
func (e *Engine) Encrypt(msg *wire.Message) (wire.EncryptedData, error) {
	block, err := aes.NewCipher(e.key)
	if err != nil {
		return wire.EncryptedData{}, err
	}

	iv := make([]byte, e.algo.IVSize)
	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return wire.EncryptedData{}, fmt.Errorf("cipher: generating IV: %w", err)
	}

	plaintext := pkcs7Pad(msg.Content(), e.algo.BlockSize)
	ciphertext := make([]byte, len(plaintext))
	cryptocipher.NewCBCEncrypter(block, iv).CryptBlocks(ciphertext, plaintext)

	return wire.EncryptedData{IV: iv, Ciphertext: ciphertext}, nil
}

// Decrypt reverses Encrypt, returning the plaintext Message.
func (e *Engine) Decrypt(enc wire.EncryptedData) (*wire.Message, error) {
	if len(enc.IV) != e.algo.IVSize {
		return nil, fmt.Errorf("cipher: expected %d-byte IV, got %d", e.algo.IVSize, len(enc.IV))
	}
	if len(enc.Ciphertext) == 0 || len(enc.Ciphertext)%e.algo.BlockSize != 0 {
		return nil, fmt.Errorf("cipher: ciphertext is not a multiple of the block size")
	}

	block, err := aes.NewCipher(e.key)
	if err != nil {
		return nil, err
	}

	plaintext := make([]byte, len(enc.Ciphertext))
	cryptocipher.NewCBCDecrypter(block, enc.IV).CryptBlocks(plaintext, enc.Ciphertext)

	unpadded, err := pkcs7Unpad(plaintext, e.algo.BlockSize)
	if err != nil {
		return nil, err
	}
	return wire.FromBytes(unpadded), nil
}

func pkcs7Pad(data []byte, blockSize int) []byte {
	padLen := blockSize - len(data)%blockSize
	padded := make([]byte, len(data)+padLen)
	copy(padded, data)
	for i := len(data); i < len(padded); i++ {
		padded[i] = byte(padLen)
	}
	return padded
}

func pkcs7Unpad(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("cipher: cannot unpad empty data")
	}
	padLen := int(data[len(data)-1])
	if padLen == 0 || padLen > blockSize || padLen > len(data) {
		return nil, fmt.Errorf("cipher: invalid PKCS#7 padding")
	}
	for _, b := range data[len(data)-padLen:] {
		if int(b) != padLen {
			return nil, fmt.Errorf("cipher: invalid PKCS#7 padding")
		}
	}
	return data[:len(data)-padLen], nil
}
