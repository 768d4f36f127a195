// SecureLink - Authenticated Channel over Local Sockets
// Copyright (c) 2026 VertexHub
// Licensed under MIT License
// https://github.com/vertexhub/securelink

// Package session implements the transport session: a bytestream socket
// wrapper with a receive buffer, frame parser, parsed-frame queue, and
// opportunistic cipher interposition once a session key has been agreed.
// Receive blocks the caller directly instead of handing frames to a
// background goroutine; the protocol requires strict send/receive ordering
// with no reordering across partial frames.
package session

import (
	"errors"
	"fmt"
	"io"
	"net"

	"github.com/vertexhub/securelink/internal/cipher"
	"github.com/vertexhub/securelink/internal/wire"
)

// Codec and I/O failures never retry locally; they propagate to the
// protocol driver.
var (
	// ErrConnectionClosed is returned when the peer closed cleanly with no
	// data in flight; the receiver completes normally.
	ErrConnectionClosed = errors.New("session: connection closed by remote host")
	// ErrConnectionFailure is returned on an I/O error, or when the peer
	// vanishes mid-frame (EOF with an incomplete frame still buffered).
	ErrConnectionFailure = errors.New("session: connection failure")
)

const defaultBufferSize = 4096

// Session owns one peer connection's socket, receive buffer, parsed-frame
// queue, and optional cipher engine. It exclusively owns all of these; they
// are never shared with another Session.
type Session struct {
	conn    net.Conn
	recvBuf []byte
	filled  int
	queue   []*wire.Message
	engine  *cipher.Engine
}

// New wraps conn in a Session with no cipher installed.
func New(conn net.Conn) *Session {
	return &Session{
		conn:    conn,
		recvBuf: make([]byte, defaultBufferSize),
	}
}

// Conn returns the underlying connection, for role-level operations (e.g.
// closing it) that fall outside the Session's own responsibilities.
func (s *Session) Conn() net.Conn {
	return s.conn
}

// SetCipher installs engine; every subsequent Send/Receive call encrypts or
// decrypts through it until RemoveCipher is called.
func (s *Session) SetCipher(engine *cipher.Engine) {
	s.engine = engine
}

// RemoveCipher disables encryption for subsequent Messages.
func (s *Session) RemoveCipher() {
	s.engine = nil
}

// HasCipher reports whether a cipher is currently installed.
func (s *Session) HasCipher() bool {
	return s.engine != nil
}

// Send packs values through the Message writer into a single Message, sends
// it, and returns the plaintext Message so the caller can hash or log it.
// Digests are always computed over the pre-encryption frame.
func (s *Session) Send(values ...any) (*wire.Message, error) {
	msg := wire.New()
	for _, v := range values {
		if err := msg.WriteValue(v); err != nil {
			return nil, err
		}
	}
	if err := s.SendMessage(msg); err != nil {
		return nil, err
	}
	return msg, nil
}

// SendMessage serializes msg (encrypting it into an EncryptedData-carrying
// outer Message first if a cipher is active) and writes it to the stream,
// retrying partial writes until complete.
func (s *Session) SendMessage(msg *wire.Message) error {
	outer := msg
	if s.engine != nil {
		enc, err := s.engine.Encrypt(msg)
		if err != nil {
			return err
		}
		outer = wire.New()
		if err := outer.WriteValue(enc); err != nil {
			return err
		}
	}

	buf, err := outer.Serialize()
	if err != nil {
		return err
	}

	for written := 0; written < len(buf); {
		n, err := s.conn.Write(buf[written:])
		if err != nil {
			return fmt.Errorf("%w: %v", ErrConnectionFailure, err)
		}
		written += n
	}
	return nil
}

// Receive pops the front queued Message and feeds it to consume, reading
// and parsing more frames from the stream first if the queue is empty.
func (s *Session) Receive(consume func(*wire.Message) (any, error)) (any, error) {
	if len(s.queue) == 0 {
		if err := s.fill(); err != nil {
			return nil, err
		}
	}

	msg := s.queue[0]
	s.queue = s.queue[1:]
	return consume(msg)
}

// fill reads from the stream and drains every complete frame into the
// queue, looping until at least one Message is queued.
func (s *Session) fill() error {
	for {
		if s.filled == len(s.recvBuf) {
			grown := make([]byte, len(s.recvBuf)*2)
			copy(grown, s.recvBuf)
			s.recvBuf = grown
		}

		n, readErr := s.conn.Read(s.recvBuf[s.filled:])
		s.filled += n

		if err := s.drainFrames(); err != nil {
			return err
		}

		if len(s.queue) > 0 {
			return nil
		}

		if readErr != nil {
			if errors.Is(readErr, io.EOF) {
				if s.filled == 0 {
					return ErrConnectionClosed
				}
				// A partial frame sits in the buffer with nothing more
				// coming: the peer vanished mid-frame.
				return ErrConnectionFailure
			}
			return fmt.Errorf("%w: %v", ErrConnectionFailure, readErr)
		}
	}
}

// drainFrames parses every complete frame currently in the receive buffer,
// left-shifting the unparsed tail to offset zero and zeroing the vacated
// trailing bytes after each one, decrypting and queuing each as it goes.
func (s *Session) drainFrames() error {
	for {
		msg, consumed, ok := wire.Parse(s.recvBuf[:s.filled])
		if !ok {
			return nil
		}

		remaining := s.filled - consumed
		copy(s.recvBuf, s.recvBuf[consumed:s.filled])
		for i := remaining; i < s.filled; i++ {
			s.recvBuf[i] = 0
		}
		s.filled = remaining

		if s.engine != nil {
			enc, err := msg.ReadEncryptedData()
			if err != nil {
				return err
			}
			decrypted, err := s.engine.Decrypt(enc)
			if err != nil {
				return err
			}
			msg = decrypted
		}

		s.queue = append(s.queue, msg)
	}
}

// Close releases the underlying socket.
func (s *Session) Close() error {
	return s.conn.Close()
}
