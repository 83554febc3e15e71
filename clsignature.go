package anoncreds

import (
	"crypto/rand"

	"github.com/go-errors/errors"

	"github.com/privacybydesign/anoncreds/big"
	"github.com/privacybydesign/anoncreds/internal/common"
	"github.com/privacybydesign/anoncreds/keys"
)

var bigOne = big.NewInt(1)

// CLSignature is a data structure for holding a Camenisch-Lysyanskaya signature.
type CLSignature struct {
	A *big.Int `json:"a"`
	E *big.Int `json:"e"`
	V *big.Int `json:"v"`
}

// signMessageBlockAndCommitment signs a message block (ms) and a commitment (U) using the
// Camenisch-Lysyanskaya signature scheme. The messages are signed under the bases Rs.
func signMessageBlockAndCommitment(sk *keys.PrivateKey, pk *keys.PublicKey, U *big.Int, ms []*big.Int, Rs []*big.Int) (*CLSignature, error) {
	R := common.RepresentToBases(Rs, ms, pk.N, pk.Params.Lm)

	vTilde, err := common.RandomBigInt(pk.Params.Lv - 1)
	if err != nil {
		return nil, err
	}
	twoLv := new(big.Int).Lsh(bigOne, pk.Params.Lv-1)
	v := new(big.Int).Add(twoLv, vTilde)

	// Q = inv( S^v * R * U) * Z
	numerator := new(big.Int).Exp(pk.S, v, pk.N)
	numerator.Mul(numerator, R).Mul(numerator, U).Mod(numerator, pk.N)

	invNumerator, ok := common.ModInverse(numerator, pk.N)
	if !ok {
		return nil, common.ErrNoModInverse
	}
	Q := new(big.Int).Mul(pk.Z, invNumerator)
	Q.Mod(Q, pk.N)

	e, err := common.RandomPrimeInRange(rand.Reader, pk.Params.Le-1, pk.Params.LePrime-1)
	if err != nil {
		return nil, err
	}

	d, ok := common.ModInverse(e, sk.Order)
	if !ok {
		return nil, errors.New("signature exponent not invertible")
	}
	A := new(big.Int).Exp(Q, d, pk.N)

	return &CLSignature{A: A, E: e, V: v}, nil
}

// Verify checks whether the signature is correct while being given a public key
// and the messages, which are signed under the first len(ms) bases.
func (s *CLSignature) Verify(pk *keys.PublicKey, ms []*big.Int) bool {
	if s.A == nil || s.E == nil || s.V == nil || len(ms) > len(pk.R) {
		return false
	}

	// First check that e is in the range [2^{l_e - 1}, 2^{l_e - 1} + 2^{l_e_prime - 1}]
	start := new(big.Int).Lsh(bigOne, pk.Params.Le-1)
	end := new(big.Int).Lsh(bigOne, pk.Params.LePrime-1)
	end.Add(end, start)
	if s.E.Cmp(start) < 0 || s.E.Cmp(end) > 0 {
		return false
	}

	// Q = A^e * R * S^v
	Ae := new(big.Int).Exp(s.A, s.E, pk.N)
	R := common.RepresentToBases(pk.R, ms, pk.N, pk.Params.Lm)
	Sv, err := common.ModPow(pk.S, s.V, pk.N)
	if err != nil {
		return false
	}
	Q := new(big.Int).Mul(Ae, R)
	Q.Mul(Q, Sv).Mod(Q, pk.N)

	// Signature verifies if Q == Z
	return pk.Z.Cmp(Q) == 0
}

// Randomize returns a randomized copy of the signature.
func (s *CLSignature) Randomize(pk *keys.PublicKey) (*CLSignature, error) {
	r, err := common.RandomBigInt(pk.Params.LRA)
	if err != nil {
		return nil, err
	}
	APrime := new(big.Int).Mul(s.A, new(big.Int).Exp(pk.S, r, pk.N))
	APrime.Mod(APrime, pk.N)
	t := new(big.Int).Mul(s.E, r)
	VPrime := new(big.Int).Sub(s.V, t)
	return &CLSignature{A: APrime, E: new(big.Int).Set(s.E), V: VPrime}, nil
}
