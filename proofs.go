// Copyright 2016 Maarten Everts. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package anoncreds

import (
	"github.com/go-errors/errors"

	"github.com/privacybydesign/anoncreds/big"
	"github.com/privacybydesign/anoncreds/internal/common"
	"github.com/privacybydesign/anoncreds/keys"
	"github.com/privacybydesign/anoncreds/rangeproof"
	"github.com/privacybydesign/anoncreds/revocation"
)

// createChallenge creates the challenge of a proof over the commitments of all claim proofs
// and the nonce of the proof request.
func createChallenge(cList, tList []*big.Int, nonce *big.Int) *big.Int {
	// Basically, sandwich the t-values between the commitments and the nonce
	input := make([]*big.Int, 0, len(cList)+len(tList)+1)
	input = append(input, cList...)
	input = append(input, tList...)
	input = append(input, nonce)
	return common.HashCommit(input)
}

// ProofS is the issuer's proof that the signature of a claim was correctly computed with the
// private key of the claim definition.
type ProofS struct {
	C         *big.Int `json:"c"`
	EResponse *big.Int `json:"e_response"`
}

// proveSignature proves knowledge of e^{-1} mod p'q', binding the proof to the context and the
// holder's nonce.
func proveSignature(sk *keys.PrivateKey, pk *keys.PublicKey, signature *CLSignature, context, nonce *big.Int) (*ProofS, error) {
	Q := new(big.Int).Exp(signature.A, signature.E, pk.N)
	d, ok := common.ModInverse(signature.E, sk.Order)
	if !ok {
		return nil, common.ErrNoModInverse
	}

	eCommit, err := randomElementMultiplicativeGroup(sk.Order)
	if err != nil {
		return nil, err
	}
	ACommit := new(big.Int).Exp(Q, eCommit, pk.N)

	c := common.HashCommit([]*big.Int{context, Q, signature.A, nonce, ACommit})
	eResponse := new(big.Int).Mul(c, d)
	eResponse.Sub(eCommit, eResponse).Mod(eResponse, sk.Order)

	return &ProofS{C: c, EResponse: eResponse}, nil
}

// Verify verifies the proof against the given public key, signature, context,
// and nonce.
func (p *ProofS) Verify(pk *keys.PublicKey, signature *CLSignature, context, nonce *big.Int) bool {
	if p.C == nil || p.EResponse == nil {
		return false
	}

	// Reconstruct A_commit
	// ACommit = A^{C + EResponse * e}
	exponent := new(big.Int).Mul(p.EResponse, signature.E)
	exponent.Add(p.C, exponent)
	ACommit := new(big.Int).Exp(signature.A, exponent, pk.N)

	// Reconstruct Q
	Q := new(big.Int).Exp(signature.A, signature.E, pk.N)

	// Recalculate hash
	cPrime := common.HashCommit([]*big.Int{context, Q, signature.A, nonce, ACommit})

	return p.C.Cmp(cPrime) == 0
}

type (
	// PrimaryProof proves possession of a claim: knowledge of a CL signature over the master
	// secret, the revealed attributes and the hidden ones, together with the proofs of the
	// predicates and of nonrevocation over the hidden attributes. Attributes are indexed by
	// the index of their base in the public key.
	PrimaryProof struct {
		A          *big.Int         `json:"a_prime"`
		EResponse  *big.Int         `json:"e"`
		VResponse  *big.Int         `json:"v"`
		MResponses map[int]*big.Int `json:"m"`
		Revealed   map[int]*big.Int `json:"revealed_attrs"`

		Predicates    []*PredicateProof `json:"ge_proofs,omitempty"`
		NonRevocation *revocation.Proof `json:"non_revoc_proof,omitempty"`
	}

	// PredicateProof proves a predicate over a hidden attribute.
	PredicateProof struct {
		Predicate PredicateInfo     `json:"predicate"`
		Proof     *rangeproof.Proof `json:"proof"`
	}
)

// correctResponseSizes checks the sizes of the responses in the proof.
func (p *PrimaryProof) correctResponseSizes(pk *keys.PublicKey) bool {
	minimum := big.NewInt(0)
	// Check range on the MResponses
	maximum := new(big.Int).Lsh(bigOne, pk.Params.LmCommit+1)
	maximum.Sub(maximum, bigOne)
	for _, mResponse := range p.MResponses {
		if mResponse.Cmp(minimum) < 0 || mResponse.Cmp(maximum) > 0 {
			return false
		}
	}

	// Check range EResponse
	maximum.Lsh(bigOne, pk.Params.LeCommit+1)
	maximum.Sub(maximum, bigOne)

	return p.EResponse.Cmp(minimum) >= 0 && p.EResponse.Cmp(maximum) <= 0
}

// validate checks that every base of the public key is used exactly once, either for a revealed
// or for a hidden attribute, and that the master secret is hidden.
func (p *PrimaryProof) validate(pk *keys.PublicKey) error {
	if p.A == nil || p.EResponse == nil || p.VResponse == nil {
		return errors.New("incomplete primary proof")
	}
	if p.A.Sign() <= 0 || p.A.Cmp(pk.N) >= 0 {
		return errors.New("randomized signature out of range")
	}
	if p.MResponses[0] == nil {
		return errors.New("master secret must not be revealed")
	}
	if len(p.MResponses)+len(p.Revealed) != len(pk.R) {
		return errors.Errorf("proof covers %d attributes, key has %d",
			len(p.MResponses)+len(p.Revealed), len(pk.R))
	}
	for i := range pk.R {
		m, hidden := p.MResponses[i]
		a, revealed := p.Revealed[i]
		if hidden == revealed {
			return errors.Errorf("attribute %d must be either hidden or revealed", i)
		}
		if (hidden && m == nil) || (revealed && (a == nil || a.Sign() < 0)) {
			return errors.Errorf("attribute %d has no value", i)
		}
	}
	for _, pred := range p.Predicates {
		if pred == nil || pred.Proof == nil {
			return errors.New("empty predicate proof")
		}
	}
	return nil
}

// reconstructZ reconstructs Z from the information in the proof and the
// provided public key.
func (p *PrimaryProof) reconstructZ(pk *keys.PublicKey, challenge *big.Int) (*big.Int, error) {
	// known = Z / ( prod_{revealed} R_i^{a_i} * A^{2^{l_e - 1}} )
	numerator := new(big.Int).Lsh(bigOne, pk.Params.Le-1)
	numerator.Exp(p.A, numerator, pk.N)
	for i, attribute := range p.Revealed {
		numerator.Mul(numerator, new(big.Int).Exp(pk.R[i], attribute, pk.N))
	}

	known := new(big.Int).ModInverse(numerator, pk.N)
	if known == nil {
		return nil, common.ErrNoModInverse
	}
	known.Mul(pk.Z, known)

	knownC, err := common.ModPow(known, new(big.Int).Neg(challenge), pk.N)
	if err != nil {
		return nil, err
	}
	Ae, err := common.ModPow(p.A, p.EResponse, pk.N)
	if err != nil {
		return nil, err
	}
	Sv, err := common.ModPow(pk.S, p.VResponse, pk.N)
	if err != nil {
		return nil, err
	}
	Rs := big.NewInt(1)
	for i, response := range p.MResponses {
		t, err := common.ModPow(pk.R[i], response, pk.N)
		if err != nil {
			return nil, err
		}
		Rs.Mul(Rs, t).Mod(Rs, pk.N)
	}
	Z := new(big.Int).Mul(knownC, Ae)
	Z.Mul(Z, Rs).Mul(Z, Sv).Mod(Z, pk.N)

	return Z, nil
}
