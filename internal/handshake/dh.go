// SecureLink - Authenticated Channel over Local Sockets
// Copyright (c) 2026 VertexHub
// Licensed under MIT License
// https://github.com/vertexhub/securelink

// Package handshake drives the two protocol exchanges that run before any
// application data crosses the channel: Diffie-Hellman key agreement and
// Feige-Fiat-Shamir zero-knowledge authentication. Both are free functions
// over a *session.Session rather than methods on the transport type, so the
// transport stays ignorant of the protocol it's carrying.
package handshake

import (
	"crypto/rand"
	"fmt"

	"github.com/vertexhub/securelink/internal/bigint"
	"github.com/vertexhub/securelink/internal/cipher"
	"github.com/vertexhub/securelink/internal/digest"
	"github.com/vertexhub/securelink/internal/session"
	"github.com/vertexhub/securelink/internal/wire"
)

// AgreeKey runs one side of Diffie-Hellman key agreement over sess: it
// generates an ephemeral exponent, exchanges public values with the peer,
// derives the shared secret, and hashes it into an AES-256 key. It does not
// install a cipher on sess; the caller does that with the returned key (see
// InstallCipher), keeping the handshake and the cipher lifecycle
// independently testable.
func AgreeKey(sess *session.Session, generator, modulus *bigint.Int) ([]byte, error) {
	secretExp, err := bigint.Random(modulus.NumBits() - 1)
	if err != nil {
		return nil, fmt.Errorf("handshake: generating DH exponent: %w", err)
	}

	publicKey, err := generator.RaiseMod(secretExp, modulus)
	if err != nil {
		return nil, err
	}

	if _, err := sess.Send(publicKey); err != nil {
		return nil, err
	}

	otherPublicKey, err := sess.Receive(func(m *wire.Message) (any, error) {
		return m.ReadBigInt()
	})
	if err != nil {
		return nil, err
	}

	sharedSecret, err := otherPublicKey.(*bigint.Int).RaiseMod(secretExp, modulus)
	if err != nil {
		return nil, err
	}

	sum := digest.Sum256(sharedSecret.RawBytes())
	return sum[:], nil
}

// InstallCipher builds an AES-256-CBC engine from key and installs it on
// sess, the point at which the channel becomes a secured channel.
func InstallCipher(sess *session.Session, key []byte) error {
	engine, err := cipher.New(cipher.AES256CBC, key)
	if err != nil {
		return err
	}
	sess.SetCipher(engine)
	return nil
}

// RandomBits draws n independent, uniformly random bits. Any number of bits
// is supported since the FFS key element count is a protocol parameter.
func RandomBits(n int) (wire.BitSet, error) {
	bytes := make([]byte, (n+7)/8)
	if _, err := rand.Read(bytes); err != nil {
		return wire.BitSet{}, fmt.Errorf("handshake: generating random bits: %w", err)
	}

	bits := make([]bool, n)
	for i := 0; i < n; i++ {
		byteIdx := i / 8
		bitIdx := uint(i % 8)
		bits[i] = bytes[byteIdx]&(1<<bitIdx) != 0
	}
	return wire.NewBitSet(bits...), nil
}
