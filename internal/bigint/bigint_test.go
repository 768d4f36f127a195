package bigint

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRawBytesZeroIsSingleZeroByte(t *testing.T) {
	assert.Equal(t, []byte{0}, Zero().RawBytes())
}

func TestFromBytesRawBytesRoundTrip(t *testing.T) {
	data := []byte{0x01, 0x02, 0x03, 0xFF}
	v := FromBytes(data)
	assert.Equal(t, data, v.RawBytes())
}

func TestRandomProducesExactBitLength(t *testing.T) {
	for _, bits := range []int{8, 64, 128, 256} {
		v, err := Random(bits)
		require.NoError(t, err)
		assert.Equal(t, bits, v.NumBits())
	}
}

func TestRaiseModAndInvertMod(t *testing.T) {
	modulus, err := FromDecimalString("2357")
	require.NoError(t, err)

	base, err := FromDecimalString("123")
	require.NoError(t, err)
	exp, err := FromDecimalString("7")
	require.NoError(t, err)

	raised, err := base.RaiseMod(exp, modulus)
	require.NoError(t, err)
	assert.True(t, raised.Cmp(modulus) < 0)

	inv, err := base.InvertMod(modulus)
	require.NoError(t, err)
	product := base.Mul(inv).Mod(modulus)
	assert.True(t, product.Equal(FromInt64(1)))
}

func TestInvertModFailsWithoutCoprimality(t *testing.T) {
	modulus, err := FromDecimalString("10")
	require.NoError(t, err)
	nonCoprime, err := FromDecimalString("4")
	require.NoError(t, err)

	_, err = nonCoprime.InvertMod(modulus)
	assert.Error(t, err)
}

func TestModTruncatesTowardZero(t *testing.T) {
	n := FromInt64(7)

	// A negative dividend keeps its sign, it is not reduced into [0, n).
	assert.True(t, FromInt64(-5).Mod(n).Equal(FromInt64(-5)))
	assert.True(t, FromInt64(-12).Mod(n).Equal(FromInt64(-5)))
	assert.Equal(t, -1, FromInt64(-12).Mod(n).Sign())

	assert.True(t, FromInt64(12).Mod(n).Equal(FromInt64(5)))
	assert.True(t, FromInt64(7).Mod(n).Equal(Zero()))
}

func TestSignArithmetic(t *testing.T) {
	a := FromInt64(5)
	b := FromInt64(8)

	assert.Equal(t, -1, a.Sub(b).Sign())
	assert.Equal(t, 1, b.Sub(a).Sign())
	assert.Equal(t, 0, a.Sub(a).Sign())
	assert.True(t, a.Neg().Equal(FromInt64(-5)))
}

func TestZeroSignIsAlwaysZero(t *testing.T) {
	z := FromInt64(0)
	assert.Equal(t, 0, z.Sign())
	z.SetSign(-1)
	assert.Equal(t, 0, z.Sign())
}

func TestFromHexString(t *testing.T) {
	v, err := FromHexString("0xFF")
	require.NoError(t, err)
	assert.True(t, v.Equal(FromInt64(255)))

	v2, err := FromHexString("ff")
	require.NoError(t, err)
	assert.True(t, v.Equal(v2))
}
