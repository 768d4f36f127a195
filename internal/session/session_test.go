package session

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vertexhub/securelink/internal/cipher"
	"github.com/vertexhub/securelink/internal/wire"
)

func TestSendReceiveRoundTrip(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	cs := New(client)
	ss := New(server)

	done := make(chan error, 1)
	go func() {
		_, err := cs.Send(uint32(42), "hello")
		done <- err
	}()

	got, err := ss.Receive(func(m *wire.Message) (any, error) {
		n, err := m.ReadUint32()
		require.NoError(t, err)
		s, err := m.ReadString()
		require.NoError(t, err)
		return []any{n, s}, nil
	})
	require.NoError(t, err)
	require.NoError(t, <-done)

	pair := got.([]any)
	assert.Equal(t, uint32(42), pair[0])
	assert.Equal(t, "hello", pair[1])
}

func TestSendReceiveEncrypted(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	key := make([]byte, 32)
	for i := range key {
		key[i] = byte(i)
	}
	ce, err := cipher.New(cipher.AES256CBC, key)
	require.NoError(t, err)
	se, err := cipher.New(cipher.AES256CBC, key)
	require.NoError(t, err)

	cs := New(client)
	cs.SetCipher(ce)
	ss := New(server)
	ss.SetCipher(se)

	done := make(chan error, 1)
	go func() {
		_, err := cs.Send(uint32(7), []byte("secret payload"))
		done <- err
	}()

	got, err := ss.Receive(func(m *wire.Message) (any, error) {
		n, err := m.ReadUint32()
		require.NoError(t, err)
		b, err := m.ReadByteSequence()
		require.NoError(t, err)
		return []any{n, b}, nil
	})
	require.NoError(t, err)
	require.NoError(t, <-done)

	pair := got.([]any)
	assert.Equal(t, uint32(7), pair[0])
	assert.Equal(t, []byte("secret payload"), pair[1])
}

func TestReceiveSpansMultipleReads(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	cs := New(client)
	ss := New(server)

	msg := wire.New()
	require.NoError(t, msg.WriteValue(uint64(123456789)))
	buf, err := msg.Serialize()
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		// Write the frame one byte at a time to force the receiver to
		// accumulate across several partial reads before a frame completes.
		for _, b := range buf {
			if _, err := cs.Conn().Write([]byte{b}); err != nil {
				done <- err
				return
			}
		}
		done <- nil
	}()

	got, err := ss.Receive(func(m *wire.Message) (any, error) {
		return m.ReadUint64()
	})
	require.NoError(t, err)
	require.NoError(t, <-done)
	assert.Equal(t, uint64(123456789), got)
}

func TestReceiveConnectionClosedCleanly(t *testing.T) {
	client, server := net.Pipe()
	ss := New(server)

	client.Close()

	_, err := ss.Receive(func(m *wire.Message) (any, error) {
		return nil, nil
	})
	assert.ErrorIs(t, err, ErrConnectionClosed)
}

func TestReceiveMidFrameDisconnect(t *testing.T) {
	client, server := net.Pipe()
	ss := New(server)

	go func() {
		// Only the two-byte length header, never the payload.
		client.Write([]byte{0x05, 0x00})
		client.Close()
	}()

	_, err := ss.Receive(func(m *wire.Message) (any, error) {
		return nil, nil
	})
	assert.ErrorIs(t, err, ErrConnectionFailure)
}
