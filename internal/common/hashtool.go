package common

import (
	"crypto/sha256"
	"encoding/asn1"

	"github.com/privacybydesign/anoncreds/big"

	gobig "math/big"
)

// HashCommit computes the sha256 hash over the asn1 representation of a slice
// of big integers and returns a positive big integer that can be represented
// with that hash.
func HashCommit(values []*big.Int) *big.Int {
	// The first element is the number of elements
	tmp := make([]interface{}, len(values)+1)
	tmp[0] = gobig.NewInt(int64(len(values)))
	for i, v := range values {
		tmp[i+1] = v.Go()
	}
	r, err := asn1.Marshal(tmp)
	if err != nil {
		panic(err) // Marshal should never error, so panic if it does
	}

	sha := sha256.Sum256(r)
	return new(big.Int).SetBytes(sha[:])
}

// IntHashSha256 is a utility function compute the sha256 hash over a byte array
// and return this hash as a big.Int.
func IntHashSha256(input []byte) *big.Int {
	h := sha256.Sum256(input)
	return new(big.Int).SetBytes(h[:])
}

// HashToPrime deterministically derives a probable prime in [2^bits, 2^(bits+1)]
// from the given byte strings, by seeding a CPRNG with their hash.
func HashToPrime(bits uint, parts ...[]byte) (*big.Int, error) {
	bts, err := asn1.Marshal(parts)
	if err != nil {
		return nil, err
	}
	h := sha256.Sum256(bts)
	csprng, err := NewCPRNG(&h)
	if err != nil {
		return nil, err
	}
	return RandomPrimeInRange(csprng, bits, bits)
}
