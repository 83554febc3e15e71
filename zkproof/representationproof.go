package zkproof

import (
	"github.com/privacybydesign/anoncreds/big"
)

type (
	// LhsContribution is a factor base^power of the public left hand side of a relation.
	LhsContribution struct {
		Base  string
		Power *big.Int
	}

	// RhsContribution is a factor base^(power*secret) of the right hand side of a relation.
	RhsContribution struct {
		Base   string
		Secret string
		Power  int64
	}

	// RepresentationProofStructure describes a relation
	//   prod_i lhs_i.Base^lhs_i.Power = prod_j rhs_j.Base^(rhs_j.Power * rhs_j.Secret)   (mod n)
	// over QR_n, of which the secrets are proven to be known.
	RepresentationProofStructure struct {
		Lhs []LhsContribution
		Rhs []RhsContribution
	}
)

// CommitmentsFromSecrets appends the Schnorr commitment prod_j rhs_j.Base^(rhs_j.Power * randomizer_j)
// to list.
func (s *RepresentationProofStructure) CommitmentsFromSecrets(n *big.Int, list []*big.Int, bases BaseLookup, secretdata SecretLookup) []*big.Int {
	commitment := big.NewInt(1)
	var exp, contribution big.Int

	for _, curRhs := range s.Rhs {
		exp.Mul(big.NewInt(curRhs.Power), secretdata.Randomizer(curRhs.Secret))
		bases.Exp(&contribution, curRhs.Base, &exp, n)
		commitment.Mul(commitment, &contribution).Mod(commitment, n)
	}

	return append(list, commitment)
}

// CommitmentsFromProof reconstructs the commitment from the responses as
// lhs^-challenge * prod_j rhs_j.Base^(rhs_j.Power * response_j), and appends it to list.
func (s *RepresentationProofStructure) CommitmentsFromProof(n *big.Int, list []*big.Int, challenge *big.Int, bases BaseLookup, proofdata ProofLookup) []*big.Int {
	var tmp, lhs big.Int
	lhs.SetUint64(1)
	for _, curLhs := range s.Lhs {
		bases.Exp(&tmp, curLhs.Base, curLhs.Power, n)
		lhs.Mul(&lhs, &tmp).Mod(&lhs, n)
	}
	if lhs.ModInverse(&lhs, n) == nil {
		// lhs not invertible; the proof cannot be valid
		return append(list, big.NewInt(0))
	}

	commitment := new(big.Int).Exp(&lhs, challenge, n)
	var exp, contribution big.Int
	for _, curRhs := range s.Rhs {
		response := proofdata.ProofResult(curRhs.Secret)
		if response == nil {
			return append(list, big.NewInt(0))
		}
		exp.Mul(big.NewInt(curRhs.Power), response)
		bases.Exp(&contribution, curRhs.Base, &exp, n)
		commitment.Mul(commitment, &contribution).Mod(commitment, n)
	}

	return append(list, commitment)
}

// IsTrue reports whether the relation holds for the given secrets.
func (s *RepresentationProofStructure) IsTrue(n *big.Int, bases BaseLookup, secretdata SecretLookup) bool {
	var tmp, lhs, rhs, exp big.Int
	lhs.SetUint64(1)
	for _, curLhs := range s.Lhs {
		bases.Exp(&tmp, curLhs.Base, curLhs.Power, n)
		lhs.Mul(&lhs, &tmp).Mod(&lhs, n)
	}

	rhs.SetUint64(1)
	for _, curRhs := range s.Rhs {
		exp.Mul(big.NewInt(curRhs.Power), secretdata.Secret(curRhs.Secret))
		if !bases.Exp(&tmp, curRhs.Base, &exp, n) {
			return false
		}
		rhs.Mul(&rhs, &tmp).Mod(&rhs, n)
	}

	return lhs.Cmp(&rhs) == 0
}
