package common

import (
	"math/rand"
	"testing"

	"github.com/privacybydesign/anoncreds/big"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func checkFourSquares(t testing.TB, val *big.Int) {
	x, y, z, w := SumFourSquares(val)
	s := new(big.Int).Mul(x, x)
	tmp := new(big.Int).Mul(y, y)
	s.Add(s, tmp)
	tmp.Mul(z, z)
	s.Add(s, tmp)
	tmp.Mul(w, w)
	s.Add(s, tmp)
	assert.Zero(t, s.Cmp(val), "four squares of %s do not add up", val)
}

func TestFourSquares(t *testing.T) {
	randomSource := rand.New(rand.NewSource(1))
	for _, bits := range []uint{8, 16, 32, 64, 128, 256} {
		limit := new(big.Int).Lsh(big.NewInt(1), bits)
		for i := 0; i < 10; i++ {
			checkFourSquares(t, new(big.Int).Rand(randomSource, limit))
		}
	}
	for i := int64(0); i < 64; i++ {
		checkFourSquares(t, big.NewInt(i))
	}
}

func BenchmarkFourSquares256(b *testing.B) {
	randomSource := rand.New(rand.NewSource(1))
	limit := new(big.Int).Lsh(big.NewInt(1), 256)
	for i := 0; i < b.N; i++ {
		checkFourSquares(b, new(big.Int).Rand(randomSource, limit))
	}
}

func TestExtendedGCD(t *testing.T) {
	x, y := big.NewInt(240), big.NewInt(46)
	a, b, gcd := ExtendedGCD(x, y)
	require.Equal(t, int64(2), gcd.Int64())
	lhs := new(big.Int).Mul(a, x)
	lhs.Add(lhs, new(big.Int).Mul(b, y))
	require.Zero(t, lhs.Cmp(gcd))

	a, b, gcd = ExtendedGCD(big.NewInt(7919), big.NewInt(7907))
	require.Equal(t, int64(1), gcd.Int64())
	lhs = new(big.Int).Mul(a, big.NewInt(7919))
	lhs.Add(lhs, new(big.Int).Mul(b, big.NewInt(7907)))
	require.Equal(t, int64(1), lhs.Int64())
}

func TestModPow(t *testing.T) {
	m := big.NewInt(23)
	r, err := ModPow(big.NewInt(5), big.NewInt(-1), m)
	require.NoError(t, err)
	require.Equal(t, int64(1), new(big.Int).Mod(new(big.Int).Mul(r, big.NewInt(5)), m).Int64())

	r, err = ModPow(big.NewInt(5), big.NewInt(3), m)
	require.NoError(t, err)
	require.Equal(t, int64(10), r.Int64())

	_, err = ModPow(big.NewInt(6), big.NewInt(-1), big.NewInt(9))
	require.ErrorIs(t, err, ErrNoModInverse)
}

func TestModDiv(t *testing.T) {
	r, err := ModDiv(big.NewInt(10), big.NewInt(5), big.NewInt(23))
	require.NoError(t, err)
	require.Equal(t, int64(2), r.Int64())
}

func TestLegendreSymbol(t *testing.T) {
	p := big.NewInt(23)
	assert.Equal(t, 1, LegendreSymbol(big.NewInt(4), p))
	assert.Equal(t, -1, LegendreSymbol(big.NewInt(5), p))
	assert.Equal(t, 0, LegendreSymbol(big.NewInt(46), p))
}
