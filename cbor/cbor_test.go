package cbor

import (
	"testing"

	"github.com/privacybydesign/anoncreds/big"
	"github.com/stretchr/testify/require"
)

type record struct {
	Name   string
	Values map[string]*big.Int
	Raw    RawMessage
}

func TestDeterministic(t *testing.T) {
	r := record{
		Name: "accumulator",
		Values: map[string]*big.Int{
			"zeta": big.NewInt(-5), "alpha": big.NewInt(1234567), "mu": big.NewInt(0),
		},
	}
	var err error
	r.Raw, err = Marshal([]int{1, 2, 3})
	require.NoError(t, err)

	first, err := Marshal(r)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := Marshal(r)
		require.NoError(t, err)
		require.Equal(t, first, again)
	}
	require.NoError(t, Valid(first))

	var decoded record
	require.NoError(t, Unmarshal(first, &decoded))
	require.Equal(t, "accumulator", decoded.Name)
	require.Zero(t, decoded.Values["zeta"].Cmp(big.NewInt(-5)))
	require.Zero(t, decoded.Values["alpha"].Cmp(big.NewInt(1234567)))

	var ints []int
	require.NoError(t, Unmarshal(decoded.Raw, &ints))
	require.Equal(t, []int{1, 2, 3}, ints)
}

func TestRejectTruncated(t *testing.T) {
	bts, err := Marshal("hello")
	require.NoError(t, err)
	require.NoError(t, Valid(bts))
	require.Error(t, Valid(bts[:len(bts)-1]))
}
