package common

import (
	"crypto/rand"
	"testing"

	"github.com/privacybydesign/anoncreds/big"
	"github.com/stretchr/testify/require"
)

func TestRandomPrimeInRange(t *testing.T) {
	// the range of e in 2048 bit signatures
	const start, length = 596, 119
	lower := new(big.Int).Lsh(big.NewInt(1), start)
	upper := new(big.Int).Add(lower, new(big.Int).Lsh(big.NewInt(1), length))

	for i := 0; i < 5; i++ {
		p, err := RandomPrimeInRange(rand.Reader, start, length)
		require.NoError(t, err)
		require.True(t, p.ProbablyPrime(22), "p not prime")
		require.True(t, p.Cmp(lower) >= 0 && p.Cmp(upper) <= 0, "p out of range")
	}
}
