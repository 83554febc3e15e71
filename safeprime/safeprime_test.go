package safeprime

import (
	"context"
	"testing"

	"github.com/privacybydesign/anoncreds/big"

	"github.com/stretchr/testify/require"
)

func TestGenerate(t *testing.T) {
	x, err := Generate(context.Background(), 256)

	require.NoError(t, err)
	require.NotNil(t, x)
	require.True(t, x.ProbablyPrime(100), "Generated number was not prime")

	y := new(big.Int).Sub(x, big.NewInt(1))
	y.Div(y, big.NewInt(2))

	require.True(t, y.ProbablyPrime(100), "Generated number was not a safe prime")
}

func TestGenerateConcurrent(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ints, errs := GenerateConcurrent(ctx, 128)

	for i := 0; i < 3; i++ {
		select {
		case x := <-ints:
			require.True(t, ProbablySafePrime(x, 40))
		case err := <-errs:
			require.NoError(t, err)
		}
	}
}

func TestGenerateCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	x, err := Generate(ctx, 1024)
	require.NoError(t, err)
	require.Nil(t, x)
}

func TestProbablySafePrime(t *testing.T) {
	require.True(t, ProbablySafePrime(big.NewInt(23), 20))
	require.False(t, ProbablySafePrime(big.NewInt(13), 20))
	require.False(t, ProbablySafePrime(big.NewInt(2), 20))
}
