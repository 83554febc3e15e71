package common

import (
	"testing"

	"github.com/privacybydesign/anoncreds/big"
	"github.com/stretchr/testify/require"
)

func TestHashCommit(t *testing.T) {
	hashA := HashCommit([]*big.Int{big.NewInt(1), big.NewInt(2), big.NewInt(3)})
	hashB := HashCommit([]*big.Int{big.NewInt(1), big.NewInt(3), big.NewInt(2)})
	hashC := HashCommit([]*big.Int{big.NewInt(1), big.NewInt(2)})
	require.NotNil(t, hashA)

	require.NotZero(t, hashA.Cmp(hashB), "hashes for A and B coincide")
	require.NotZero(t, hashA.Cmp(hashC), "hashes for A and C coincide")
	require.NotZero(t, hashB.Cmp(hashC), "hashes for B and C coincide")

	again := HashCommit([]*big.Int{big.NewInt(1), big.NewInt(2), big.NewInt(3)})
	require.Zero(t, hashA.Cmp(again))
	require.LessOrEqual(t, hashA.BitLen(), 256)
}

func TestHashToPrime(t *testing.T) {
	p1, err := HashToPrime(64, []byte("key"), []byte{1})
	require.NoError(t, err)
	require.True(t, p1.ProbablyPrime(20))
	require.Equal(t, 65, p1.BitLen())

	p2, err := HashToPrime(64, []byte("key"), []byte{1})
	require.NoError(t, err)
	require.Zero(t, p1.Cmp(p2))

	p3, err := HashToPrime(64, []byte("key"), []byte{2})
	require.NoError(t, err)
	require.NotZero(t, p1.Cmp(p3))
}
