package signed

import (
	"crypto/rand"
	"testing"

	"github.com/privacybydesign/anoncreds/big"
	"github.com/stretchr/testify/require"
)

// test struct for signing, verifying and (un)marshaling
type test struct {
	X string
	Y *big.Int
	Z int
	T *test // allow recursion
}

func TestSigned(t *testing.T) {
	sk, err := GenerateKey()
	require.NoError(t, err)

	i, err := big.RandInt(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 128))
	require.NoError(t, err)

	var (
		before = test{X: "hello", Y: i, Z: 12, T: &test{X: "world"}}
		after  test
	)

	signedmsg, err := MarshalSign(sk, before)
	require.NoError(t, err)

	require.NoError(t, UnmarshalVerify(&sk.PublicKey, signedmsg, &after))
	require.Equal(t, before.X, after.X)
	require.Equal(t, before.Z, after.Z)
	require.Zero(t, before.Y.Cmp(after.Y))
	require.NotNil(t, after.T)
	require.Equal(t, "world", after.T.X)
	require.Nil(t, after.T.Y)
}

func TestWrongKey(t *testing.T) {
	sk, err := GenerateKey()
	require.NoError(t, err)
	other, err := GenerateKey()
	require.NoError(t, err)

	signedmsg, err := MarshalSign(sk, test{X: "hello"})
	require.NoError(t, err)
	var after test
	require.ErrorIs(t, UnmarshalVerify(&other.PublicKey, signedmsg, &after), ErrInvalidSignature)
}

func TestKeyMarshaling(t *testing.T) {
	sk, err := GenerateKey()
	require.NoError(t, err)

	pem, err := MarshalPemPublicKey(&sk.PublicKey)
	require.NoError(t, err)
	pk, err := UnmarshalPemPublicKey(pem)
	require.NoError(t, err)
	require.True(t, pk.Equal(&sk.PublicKey))

	_, err = UnmarshalPemPublicKey([]byte("garbage"))
	require.Error(t, err)

	bts, err := MarshalPrivateKey(sk)
	require.NoError(t, err)
	sk2, err := UnmarshalPrivateKey(bts)
	require.NoError(t, err)
	require.True(t, sk2.Equal(sk))
}
