package wire

import "github.com/vertexhub/securelink/internal/bigint"

// ReadBigInt reads a signed byte (the sign in {-1, 0, +1}) followed by a
// count-prefixed big-endian magnitude, then applies the sign. FFS uses
// negative residues, which is why the canonical wire form carries the sign
// explicitly rather than assuming non-negative values.
func (m *Message) ReadBigInt() (*bigint.Int, error) {
	sign, err := m.ReadInt8()
	if err != nil {
		return nil, err
	}
	mag, err := m.ReadByteSequence()
	if err != nil {
		return nil, err
	}
	v := bigint.FromBytes(mag)
	v.SetSign(int(sign))
	return v, nil
}

// WriteBigInt writes the sign byte followed by the count-prefixed magnitude.
func (m *Message) WriteBigInt(v *bigint.Int) error {
	m.WriteInt8(int8(v.Sign()))
	return m.WriteByteSequence(v.RawBytes())
}
