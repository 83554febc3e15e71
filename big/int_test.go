package big

import (
	"crypto/rand"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func testDecimal(t *testing.T, bigint *Int) *Int {
	bts, err := json.Marshal(bigint)
	require.NoError(t, err)
	require.Equal(t, `"`+bigint.String()+`"`, string(bts))
	unmarshaled := new(Int)
	err = json.Unmarshal(bts, unmarshaled)
	require.NoError(t, err)
	require.Zero(t, bigint.Cmp(unmarshaled))
	return unmarshaled
}

func TestInt(t *testing.T) {
	var i int64 = 42
	unmarshaled := testDecimal(t, NewInt(i))
	require.Equal(t, i, unmarshaled.Int64())
}

func TestZero(t *testing.T) {
	unmarshaled := testDecimal(t, NewInt(0))
	require.Equal(t, int64(0), unmarshaled.Int64())
}

func TestNegative(t *testing.T) {
	unmarshaled := testDecimal(t, NewInt(-42))
	require.Equal(t, int64(-42), unmarshaled.Int64())
}

func TestBigInt(t *testing.T) {
	s := "8931748931759284679376938475395713602744853768923750102"
	bigint, ok := new(Int).SetString(s, 10)
	require.True(t, ok)
	unmarshaled := testDecimal(t, bigint)
	require.Equal(t, s, unmarshaled.String())
}

func TestRandom(t *testing.T) {
	max := new(Int).Lsh(NewInt(1), 100)
	bigint, err := RandInt(rand.Reader, max)
	require.NoError(t, err)
	testDecimal(t, bigint)
}

func TestBareNumber(t *testing.T) {
	i := new(Int)
	require.NoError(t, json.Unmarshal([]byte("1234567890123456789012345"), i))
	require.Equal(t, "1234567890123456789012345", i.String())
}

func TestNotANumber(t *testing.T) {
	i := new(Int)
	require.Error(t, json.Unmarshal([]byte(`"12ab"`), i))
}

func TestBinary(t *testing.T) {
	x := NewInt(-987654321)
	bts, err := x.MarshalBinary()
	require.NoError(t, err)
	y := new(Int)
	require.NoError(t, y.UnmarshalBinary(bts))
	require.Zero(t, x.Cmp(y))
}
