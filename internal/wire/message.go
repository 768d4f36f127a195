// SecureLink - Authenticated Channel over Local Sockets
// Copyright (c) 2026 VertexHub
// Licensed under MIT License
// https://github.com/vertexhub/securelink

// Package wire implements the self-describing framed message codec used
// both on the wire and as the vocabulary of the secured-channel protocol:
// length-prefixed frames carrying a typed value stream of integers,
// sequences, strings, bitsets, signed BigInts, and EncryptedData.
package wire

import (
	"crypto/sha256"
	"encoding/binary"

	"github.com/vertexhub/securelink/internal/bigint"
)

// HeaderSize is the width of the frame length prefix.
const HeaderSize = 2

// MaxPayloadSize is the largest payload a single frame can carry.
const MaxPayloadSize = 0xFFFF

// Message is an ordered byte buffer with independent read and write
// cursors. It can be built incrementally with the Write* methods and then
// drained with the Read* methods, or constructed from already-serialized
// bytes and read linearly.
type Message struct {
	data     []byte
	readPos  int
	writePos int
}

// New returns an empty Message ready for writing.
func New() *Message {
	return &Message{}
}

// FromBytes wraps an existing payload for reading; the write cursor starts
// past the end so further writes append.
func FromBytes(data []byte) *Message {
	buf := make([]byte, len(data))
	copy(buf, data)
	return &Message{data: buf, writePos: len(buf)}
}

// Content returns the Message's current payload bytes.
func (m *Message) Content() []byte {
	return m.data
}

// Len returns the number of payload bytes currently held.
func (m *Message) Len() int {
	return len(m.data)
}

func (m *Message) ensure(n int) error {
	if len(m.data)-m.readPos < n {
		return ErrNotEnoughData
	}
	return nil
}

func (m *Message) readBytes(n int) ([]byte, error) {
	if err := m.ensure(n); err != nil {
		return nil, err
	}
	b := m.data[m.readPos : m.readPos+n]
	m.readPos += n
	return b, nil
}

func (m *Message) writeBytes(b []byte) {
	need := m.writePos + len(b)
	if need > len(m.data) {
		grown := make([]byte, need)
		copy(grown, m.data)
		m.data = grown
	}
	copy(m.data[m.writePos:need], b)
	m.writePos = need
}

// ReadUint8 reads one byte.
func (m *Message) ReadUint8() (uint8, error) {
	b, err := m.readBytes(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// WriteUint8 appends one byte.
func (m *Message) WriteUint8(v uint8) {
	m.writeBytes([]byte{v})
}

// ReadInt8 reads one byte as a signed value, used for the BigInt sign field.
func (m *Message) ReadInt8() (int8, error) {
	v, err := m.ReadUint8()
	return int8(v), err
}

// WriteInt8 appends one signed byte.
func (m *Message) WriteInt8(v int8) {
	m.WriteUint8(uint8(v))
}

// ReadUint16 reads a little-endian uint16.
func (m *Message) ReadUint16() (uint16, error) {
	b, err := m.readBytes(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

// WriteUint16 appends a little-endian uint16.
func (m *Message) WriteUint16(v uint16) {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	m.writeBytes(b[:])
}

// ReadUint32 reads a little-endian uint32.
func (m *Message) ReadUint32() (uint32, error) {
	b, err := m.readBytes(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// WriteUint32 appends a little-endian uint32.
func (m *Message) WriteUint32(v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	m.writeBytes(b[:])
}

// ReadUint64 reads a little-endian uint64.
func (m *Message) ReadUint64() (uint64, error) {
	b, err := m.readBytes(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

// WriteUint64 appends a little-endian uint64.
func (m *Message) WriteUint64(v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	m.writeBytes(b[:])
}

// Serialize prepends the 16-bit little-endian payload length to produce the
// bytes that go on the wire.
func (m *Message) Serialize() ([]byte, error) {
	if len(m.data) > MaxPayloadSize {
		return nil, ErrFrameTooLong
	}
	out := make([]byte, HeaderSize+len(m.data))
	binary.LittleEndian.PutUint16(out[:HeaderSize], uint16(len(m.data)))
	copy(out[HeaderSize:], m.data)
	return out, nil
}

// Parse examines buf for one complete frame. ok is false when fewer than
// HeaderSize+L bytes are available ("not yet", not an error); consumed is
// the number of bytes the returned Message occupied in buf.
func Parse(buf []byte) (msg *Message, consumed int, ok bool) {
	if len(buf) < HeaderSize {
		return nil, 0, false
	}
	payloadLen := int(binary.LittleEndian.Uint16(buf[:HeaderSize]))
	total := HeaderSize + payloadLen
	if len(buf) < total {
		return nil, 0, false
	}
	return FromBytes(buf[HeaderSize:total]), total, true
}

// HashOf hashes the full serialized frame (length prefix included) with
// SHA-256, so both peers compute the same digest over the wire form rather
// than the raw payload.
func HashOf(m *Message) ([32]byte, error) {
	raw, err := m.Serialize()
	if err != nil {
		return [32]byte{}, err
	}
	return sha256.Sum256(raw), nil
}

// WriteValue dispatches on the concrete type of v, acting as the composite
// writer for the protocol's typed value stream.
func (m *Message) WriteValue(v any) error {
	switch t := v.(type) {
	case uint8:
		m.WriteUint8(t)
	case uint16:
		m.WriteUint16(t)
	case uint32:
		m.WriteUint32(t)
	case uint64:
		m.WriteUint64(t)
	case string:
		return m.WriteString(t)
	case []byte:
		return m.WriteByteSequence(t)
	case *bigint.Int:
		return m.WriteBigInt(t)
	case BitSet:
		return m.WriteBitSet(t)
	case EncryptedData:
		return m.WriteEncryptedData(t)
	default:
		return unsupportedValueError(v)
	}
	return nil
}
