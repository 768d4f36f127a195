// Package bigint wraps arbitrary-precision integers with the sign/magnitude
// split and byte encoding the handshake and FFS protocols depend on.
package bigint

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// Int is a non-negative-magnitude arbitrary-precision integer paired with an
// explicit sign. Sign is one of -1, 0, +1; the sign of zero is always 0.
type Int struct {
	mag  big.Int
	sign int
}

// Zero is the additive identity.
func Zero() *Int {
	return &Int{sign: 0}
}

// FromInt64 builds an Int from a machine integer.
func FromInt64(v int64) *Int {
	b := &Int{}
	b.mag.SetInt64(v)
	b.sign = b.mag.Sign()
	b.mag.Abs(&b.mag)
	return b
}

// FromDecimalString parses a base-10 literal.
func FromDecimalString(s string) (*Int, error) {
	return fromString(s, 10)
}

// FromHexString parses a base-16 literal; a leading "0x" or "0X" is
// tolerated but not required.
func FromHexString(s string) (*Int, error) {
	if len(s) > 1 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		s = s[2:]
	}
	return fromString(s, 16)
}

func fromString(s string, base int) (*Int, error) {
	m := new(big.Int)
	if _, ok := m.SetString(s, base); !ok {
		return nil, fmt.Errorf("bigint: invalid base-%d literal %q", base, s)
	}
	sign := m.Sign()
	m.Abs(m)
	return &Int{mag: *m, sign: sign}, nil
}

// FromBytes performs a big-endian unsigned import; the result is always
// non-negative.
func FromBytes(data []byte) *Int {
	m := new(big.Int).SetBytes(data)
	sign := 0
	if m.Sign() != 0 {
		sign = 1
	}
	return &Int{mag: *m, sign: sign}
}

// Random returns a uniformly random odd integer with bit length exactly
// nBits: top bit set, bottom bit set.
func Random(nBits int) (*Int, error) {
	if nBits <= 0 {
		return nil, fmt.Errorf("bigint: random requires a positive bit count")
	}
	byteLen := (nBits + 7) / 8
	buf := make([]byte, byteLen)
	if _, err := rand.Read(buf); err != nil {
		return nil, fmt.Errorf("bigint: reading random bytes: %w", err)
	}

	excessBits := byteLen*8 - nBits
	buf[0] &= 0xFF >> uint(excessBits)
	buf[0] |= 1 << uint(7-excessBits)
	buf[len(buf)-1] |= 1

	m := new(big.Int).SetBytes(buf)
	sign := 1
	if m.Sign() == 0 {
		sign = 0
	}
	return &Int{mag: *m, sign: sign}, nil
}

// NumBits returns the magnitude's bit length.
func (b *Int) NumBits() int {
	return b.mag.BitLen()
}

// Sign returns -1, 0 or +1.
func (b *Int) Sign() int {
	return b.sign
}

// SetSign overrides the sign in place; setting a nonzero sign on a zero
// magnitude is not permitted, matching the invariant that zero's sign is 0.
func (b *Int) SetSign(sign int) {
	if b.mag.Sign() == 0 {
		b.sign = 0
		return
	}
	b.sign = sign
}

// RawBytes returns the big-endian, minimal-length unsigned magnitude. Zero
// encodes as a single zero byte.
func (b *Int) RawBytes() []byte {
	out := b.mag.Bytes()
	if len(out) == 0 {
		return []byte{0}
	}
	return out
}

func (b *Int) signed() *big.Int {
	v := new(big.Int).Set(&b.mag)
	if b.sign < 0 {
		v.Neg(v)
	}
	return v
}

func fromSigned(v *big.Int) *Int {
	sign := v.Sign()
	m := new(big.Int).Abs(v)
	return &Int{mag: *m, sign: sign}
}

// RaiseMod computes self^exp mod m. m must be positive.
func (b *Int) RaiseMod(exp, m *Int) (*Int, error) {
	if m.Sign() <= 0 {
		return nil, fmt.Errorf("bigint: modulus must be positive")
	}
	r := new(big.Int).Exp(b.signed(), exp.signed(), &m.mag)
	return fromSigned(r), nil
}

// InvertMod computes the multiplicative inverse of self modulo m. Fails when
// gcd(self, m) != 1.
func (b *Int) InvertMod(m *Int) (*Int, error) {
	r := new(big.Int).ModInverse(b.signed(), &m.mag)
	if r == nil {
		return nil, fmt.Errorf("bigint: %s has no inverse modulo %s", b.String(), m.String())
	}
	return fromSigned(r), nil
}

// Neg returns -self.
func (b *Int) Neg() *Int {
	return &Int{mag: b.mag, sign: -b.sign}
}

// Sub returns self - rhs.
func (b *Int) Sub(rhs *Int) *Int {
	r := new(big.Int).Sub(b.signed(), rhs.signed())
	return fromSigned(r)
}

// Mul returns self * rhs.
func (b *Int) Mul(rhs *Int) *Int {
	r := new(big.Int).Mul(b.signed(), rhs.signed())
	return fromSigned(r)
}

// Mod returns the remainder of self divided by rhs, truncated toward zero;
// the result takes the sign of self. The identification protocol's
// verification step multiplies negative residues and needs -x, not N-x.
func (b *Int) Mod(rhs *Int) *Int {
	r := new(big.Int).Rem(b.signed(), rhs.signed())
	return fromSigned(r)
}

// Cmp returns -1, 0 or +1 comparing self to rhs.
func (b *Int) Cmp(rhs *Int) int {
	return b.signed().Cmp(rhs.signed())
}

// Equal reports whether self == rhs.
func (b *Int) Equal(rhs *Int) bool {
	return b.Cmp(rhs) == 0
}

// IsZero reports whether the value is zero.
func (b *Int) IsZero() bool {
	return b.mag.Sign() == 0
}

// String renders the signed decimal value, for logging only.
func (b *Int) String() string {
	return b.signed().String()
}
