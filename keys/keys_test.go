package keys

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/privacybydesign/anoncreds/big"
	"github.com/privacybydesign/anoncreds/internal/common"
	"github.com/privacybydesign/anoncreds/safeprime"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	// Toy parameters for speed
	defaultBaseParameters[256] = BaseParameters{
		LePrime: 120,
		Lh:      256,
		Lm:      256,
		Ln:      256,
		Lstatzk: 80,
	}
	DefaultSystemParameters[256] = NewSystemParameters(defaultBaseParameters[256])
}

func testPrivateKey(t *testing.T, privk *PrivateKey) {
	assert.True(t, safeprime.ProbablySafePrime(privk.P, 20), "p in secret key is not prime!")
	assert.True(t, safeprime.ProbablySafePrime(privk.Q, 20), "q in secret key is not prime!")
	assert.NotZero(t, privk.P.Cmp(privk.Q))
	assert.NoError(t, privk.Validate())

	modP := new(big.Int).Mod(privk.P, big.NewInt(8))
	modQ := new(big.Int).Mod(privk.Q, big.NewInt(8))
	modPPrime := new(big.Int).Mod(privk.PPrime, big.NewInt(8))
	modQPrime := new(big.Int).Mod(privk.QPrime, big.NewInt(8))

	assert.NotEqual(t, 0, modP.Cmp(modQ), "p != q (mod 8) does not hold!")
	assert.NotEqual(t, 0, modPPrime.Cmp(big.NewInt(1)), "p' != 1 (mod 8) does not hold!")
	assert.NotEqual(t, 0, modQPrime.Cmp(big.NewInt(1)), "q' != 1 (mod 8) does not hold!")
}

func testPublicKey(t *testing.T, pubk *PublicKey, privk *PrivateKey) {
	assert.Equal(t, pubk.Params.Ln/2, uint(privk.P.BitLen()))
	assert.Equal(t, pubk.Params.Ln/2, uint(privk.Q.BitLen()))
	assert.Equal(t, pubk.Params.Ln, uint(pubk.N.BitLen()))

	assert.Equal(t, 0, privk.N.Cmp(pubk.N), "p*q != n")
	assert.Equal(t, 1, common.LegendreSymbol(pubk.S, privk.P), "S \notin QR_p")
	assert.Equal(t, 1, common.LegendreSymbol(pubk.S, privk.Q), "S \notin QR_q")
	for _, r := range append(pubk.R, pubk.Z) {
		assert.Equal(t, 1, common.LegendreSymbol(r, privk.P), "base not in QR_p")
		assert.Equal(t, 1, common.LegendreSymbol(r, privk.Q), "base not in QR_q")
	}
	assert.NoError(t, pubk.Validate())
}

func TestGenerateKeyPair(t *testing.T) {
	privk, pubk, err := GenerateKeyPair(context.Background(), DefaultSystemParameters[256], 6)
	require.NoError(t, err, "error generating key pair")
	require.Len(t, pubk.R, 6)
	testPrivateKey(t, privk)
	testPublicKey(t, pubk, privk)
}

func TestGenerateKeyPairCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := GenerateKeyPair(ctx, DefaultSystemParameters[1024], 6)
	require.ErrorIs(t, err, context.Canceled)
}

func TestKeyJSON(t *testing.T) {
	privk, pubk, err := GenerateKeyPair(context.Background(), DefaultSystemParameters[256], 3)
	require.NoError(t, err)

	bts, err := json.Marshal(pubk)
	require.NoError(t, err)
	var pubk2 PublicKey
	require.NoError(t, json.Unmarshal(bts, &pubk2))
	require.Zero(t, pubk.N.Cmp(pubk2.N))
	require.Len(t, pubk2.R, 3)
	require.Equal(t, DefaultSystemParameters[256], pubk2.Params)

	bts, err = json.Marshal(privk)
	require.NoError(t, err)
	var privk2 PrivateKey
	require.NoError(t, json.Unmarshal(bts, &privk2))
	require.Zero(t, privk.Order.Cmp(privk2.Order))
	require.Zero(t, privk.N.Cmp(privk2.N))

	require.Error(t, json.Unmarshal([]byte(`{"n":"12345","s":"2","z":"3","r":["4"]}`), &pubk2))
}

func TestBaseLookup(t *testing.T) {
	pk := &PublicKey{
		N: big.NewInt(77), Z: big.NewInt(4), S: big.NewInt(9),
		R: Bases{big.NewInt(15), big.NewInt(16)},
	}
	require.Equal(t, []string{"Z", "S", "R0", "R1"}, pk.Names())
	require.Zero(t, pk.Base("R1").Cmp(big.NewInt(16)))
	require.Nil(t, pk.Base("R2"))
	require.Nil(t, pk.Base("R"))

	ret := new(big.Int)
	require.True(t, pk.Exp(ret, "S", big.NewInt(2), pk.N))
	require.Equal(t, int64(4), ret.Int64())
	require.False(t, pk.Exp(ret, "G", big.NewInt(2), pk.N))
}
