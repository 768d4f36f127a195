package wire

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vertexhub/securelink/internal/bigint"
)

func TestUint32RoundTrip(t *testing.T) {
	for _, v := range []uint32{0, 1, 42, 0xFFFFFFFF} {
		m := New()
		m.WriteUint32(v)
		got, err := m.ReadUint32()
		require.NoError(t, err)
		assert.Equal(t, v, got)
	}
}

func TestUint64RoundTrip(t *testing.T) {
	for _, v := range []uint64{0, 1, 123456789, 0xFFFFFFFFFFFFFFFF} {
		m := New()
		m.WriteUint64(v)
		got, err := m.ReadUint64()
		require.NoError(t, err)
		assert.Equal(t, v, got)
	}
}

func TestReadPastEndFails(t *testing.T) {
	m := New()
	m.WriteUint8(1)
	_, err := m.ReadUint32()
	assert.ErrorIs(t, err, ErrNotEnoughData)
}

func TestByteSequenceRoundTrip(t *testing.T) {
	sizes := []int{0, 1, 0x7F, 0x80, 0x3FFF}
	for _, n := range sizes {
		data := make([]byte, n)
		for i := range data {
			data[i] = byte(i)
		}
		m := New()
		require.NoError(t, m.WriteByteSequence(data))
		got, err := m.ReadByteSequence()
		require.NoError(t, err)
		assert.Equal(t, data, got)
	}
}

func TestSequenceTooLongOnEncode(t *testing.T) {
	m := New()
	err := m.WriteByteSequence(make([]byte, 0x4000))
	assert.ErrorIs(t, err, ErrSequenceTooLong)
}

func TestSequenceTooLongOnDecode(t *testing.T) {
	// A leading 0b11xxxxxx byte is the reserved count-prefix pattern.
	m := FromBytes([]byte{0xC0})
	_, err := m.ReadByteSequence()
	assert.ErrorIs(t, err, ErrSequenceTooLong)
}

func TestStringRoundTrip(t *testing.T) {
	for _, s := range []string{"", "Hello World", strings.Repeat("a", 500)} {
		m := New()
		require.NoError(t, m.WriteString(s))
		got, err := m.ReadString()
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}
}

func TestBitSetRoundTrip(t *testing.T) {
	bs := NewBitSet(true, false, true, true, false)
	m := New()
	require.NoError(t, m.WriteBitSet(bs))
	got, err := m.ReadBitSet()
	require.NoError(t, err)
	require.Equal(t, bs.Len(), got.Len())
	for i := 0; i < bs.Len(); i++ {
		assert.Equal(t, bs.Get(i), got.Get(i))
	}
}

func TestBigIntRoundTrip(t *testing.T) {
	cases := []*bigint.Int{
		bigint.Zero(),
		bigint.FromInt64(42),
		bigint.FromInt64(42).Neg(),
	}
	for _, v := range cases {
		m := New()
		require.NoError(t, m.WriteBigInt(v))
		got, err := m.ReadBigInt()
		require.NoError(t, err)
		assert.True(t, v.Equal(got))
		assert.Equal(t, v.Sign(), got.Sign())
	}
}

func TestEncryptedDataRoundTrip(t *testing.T) {
	enc := EncryptedData{IV: []byte{1, 2, 3}, Ciphertext: []byte{4, 5, 6, 7}}
	m := New()
	require.NoError(t, m.WriteEncryptedData(enc))
	got, err := m.ReadEncryptedData()
	require.NoError(t, err)
	assert.Equal(t, enc.IV, got.IV)
	assert.Equal(t, enc.Ciphertext, got.Ciphertext)
}

func TestMessageSerializeParseRoundTrip(t *testing.T) {
	m := New()
	require.NoError(t, m.WriteValue(uint32(7)))
	require.NoError(t, m.WriteValue("payload"))

	buf, err := m.Serialize()
	require.NoError(t, err)

	parsed, consumed, ok := Parse(buf)
	require.True(t, ok)
	assert.Equal(t, len(buf), consumed)

	n, err := parsed.ReadUint32()
	require.NoError(t, err)
	assert.Equal(t, uint32(7), n)

	s, err := parsed.ReadString()
	require.NoError(t, err)
	assert.Equal(t, "payload", s)
}

func TestParseIncompleteFrame(t *testing.T) {
	m := New()
	m.WriteValue(uint64(1))
	buf, err := m.Serialize()
	require.NoError(t, err)

	_, _, ok := Parse(buf[:len(buf)-1])
	assert.False(t, ok)

	_, _, ok = Parse(buf[:1])
	assert.False(t, ok)
}

func TestHashOfIsStableOverSerializedFrame(t *testing.T) {
	m := New()
	require.NoError(t, m.WriteValue("Hello World"))
	h1, err := HashOf(m)
	require.NoError(t, err)

	buf, err := m.Serialize()
	require.NoError(t, err)
	reparsed, _, ok := Parse(buf)
	require.True(t, ok)
	h2, err := HashOf(reparsed)
	require.NoError(t, err)

	assert.Equal(t, h1, h2)
}
