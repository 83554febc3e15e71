package rangeproof

import (
	"fmt"

	"github.com/go-errors/errors"
	"github.com/privacybydesign/anoncreds/big"
	"github.com/privacybydesign/anoncreds/internal/common"
	"github.com/privacybydesign/anoncreds/keys"
	"github.com/privacybydesign/anoncreds/zkproof"
)

// Package rangeproof implements a variation of the inequality/range proof protocol given in
// section 6.2.6/6.3.6 of "Specification of the Identity Mixer Cryptographic Library Version 2.3.0",
// used to prove predicates such as age >= 18 over hidden attributes of a claim.
//
// The following changes were made:
//  - The >, <, >= and <= operators are all expressed as a*m - k >= 0 with a = 1 or a = -1
//  - The delta is split into a sum of four squares
//  - There is no separate commitment to the difference between bound and attribute value.
//
// This results in that our code proves the following substatement:
// C_i = R^d_i S^v_i
// R^k\product_i C_i^d_i = R^(a*m) S^v_5
//
// where k, a are fixed constants specified in the proof structure
// d_i are values such that a*m-k = \sum_i d_i^2
// v_i are computational hiders for the d_i
// v_5 = \sum_i d_i *v_i
// m is the attribute value
//
//
// The proof of soundness for this protocol is relatively straightforward, but as we are not aware of its occurence in literature,
// we provide it here for completeness:
// ----
//
// Adversary A: Turing machine taking as starting input S, R, Z, n, and k, then participates as receiver in an issuance protocol to
// obtain a CL signature on m < k, then participates as prover in a proving protocol showing a CL-signature on m', as well as
// providing bases C1, C2, C3 and proving knowledge of d1, d2, d3, v1, v2, v3, v5 such that
// C1 = R^d1 S^v1
// C2 = R^d2 S^v2
// C3 = R^d3 S^v3
// C1^d1 C2^d2 C3^d3 R^k = R^m' S^v5
// with succes probability at least epsilon, where epsilon is a non-neglible function of log(n).
//
// Theorem:
// Existence of adversary A contradicts the strong RSA assumption.
//
// Proof:
//
// From A we can derive two turing machines F and G
//
// F:
// Run A, then rewind to extract the full CL signature on m'. Then return that signature if m != m', fail otherwise
//
// G:
// Run A, then rewind to extract m', d1, d2, d3, v1, v2, v3, v5. Then return m, d1, d2, d3, v1, v2, v3, v5 iff m == m', fail otherwise
//
// By construction at least one of F, G will succeed with probability at least epsilon/2
//
// By theorem 1 of "A Signature Scheme with Efficient Protocols" by Camenisch and Lysyanskaya (CL03), existence of F with non-neglible
// succes probability contradicts the strong RSA assumption.
//
// Next, let us show that existence of G with non-neglible succes probability also contradicts the strong RSA assumption. Let (n, u)
// be a flexible RSA problem. We choose random prime e > 4, random integers r1, r2, k, and m>k, and random element v in QRn. We then let
// S = u^e
// R = S^r1
// Z = S^r2
// and present S,R,Z,n as public key to the adversary, together with k.
//
// We then use our knowledge of the e-th roots of S, R, and Z, together with our ability to extract v' from G to issue the signature on
// m similar to the approach taken in the proofs of lemma's 3-5 in CL03
// Next, we provide k and receive back m, d1, d2, d3, v1, v2, v3 and v5, for which it holds that
// R^(d1^2+d2^2+d3^2+k-m) = S^(v5-d1*v1+d2*v2+d3*v3).
//
// Since k > m, and since d1, d2, d3 are real, we have d1^2+d2^2+d3^2+k-m > 0. Now either phi(n) divides d1^2+d2^2+d3^2+k-m, or
// v5-d1*v1+d2*v2+d3*v3 is not zero. If phi(n) divides d1^2+d2^2+d3^2+k-m, then by Lemma 11 in CL03, we can factor n and trivially
// solve the instance.
//
// Otherwise, we now have nonzero a = d1^2+d2^2+d3^2+k-m, and b = v5-d1*v1+d2*v2+d3*v3, such that R^a = S^b. Since e does not divide phi(n)
// (otherwise, we could just factor n again, this time by lemma 12 in CL03), this also implies u^(r1*a) = u^b. Since a and b are bounded
// (each of their components is proven to be smaller than a bound during the ZKP), we can take r1 large enough to guarantee r1*a > b.
// Then r1*a-b > 0, and by multiplication by u^-b, we get u^(r1*a-b) = 1, hence phi(n) | r1*a-b, which means we can factor n and use
// that to solve the flexible RSA problem.
//
// This shows existence of G with non-neglible succes probability also contradicts strong RSA, hence existence of A contradicts
// the strong RSA assumption.
//
// The techniques used to fake issuance can be generalized to multiple issuances using techiques similar to those used in CL03 for lemmas 3-5,
// the rest of the proof then needs e to be replaced with E, the product of all used e_i's.

type (
	// ProofStructure describes the statement a*m - k >= 0 about the attribute m
	// signed under base R_index of a public key.
	ProofStructure struct {
		cRep     []zkproof.RepresentationProofStructure
		mCorrect zkproof.RepresentationProofStructure

		index int
		a     int
		k     *big.Int

		splitter SquareSplitter
		ld       uint
	}

	Proof struct {
		Cs         []*big.Int `json:"c"`
		DResponses []*big.Int `json:"d"`
		VResponses []*big.Int `json:"v"`
		V5Response *big.Int   `json:"v5"`

		// MResponse is the response for the attribute; it is shared with the CL proof over the
		// same attribute and is therefore not serialized.
		MResponse *big.Int `json:"-"`
	}

	ProofCommit struct {
		cs      []*big.Int
		secrets zkproof.SecretMap
	}
)

var ErrStatementFalse = errors.New("requested inequality does not hold")

// New creates a new proof structure for proving a statement of form a*m - k >= 0, where m is the
// attribute at base R_index. The split describes the method used for splitting numbers into a
// sum of squares.
func New(index, a int, k *big.Int, split SquareSplitter) *ProofStructure {
	if split.SquareCount() > 4 {
		panic("no support for range proofs with delta split in more than 4 squares")
	}

	result := &ProofStructure{
		mCorrect: zkproof.RepresentationProofStructure{
			Lhs: []zkproof.LhsContribution{
				{Base: "R", Power: new(big.Int).Neg(k)},
			},
			Rhs: []zkproof.RhsContribution{
				{Base: "S", Secret: "v5", Power: -1},
				{Base: "R", Secret: "m", Power: int64(-a)},
			},
		},

		index:    index,
		a:        a,
		k:        new(big.Int).Set(k),
		splitter: split,
		ld:       split.Ld(),
	}

	for i := 0; i < split.SquareCount(); i++ {
		result.cRep = append(result.cRep, zkproof.RepresentationProofStructure{
			Lhs: []zkproof.LhsContribution{
				{Base: fmt.Sprintf("C%d", i), Power: big.NewInt(1)},
			},
			Rhs: []zkproof.RhsContribution{
				{Base: "R", Secret: fmt.Sprintf("d%d", i), Power: 1},
				{Base: "S", Secret: fmt.Sprintf("v%d", i), Power: 1},
			},
		})

		result.mCorrect.Rhs = append(result.mCorrect.Rhs, zkproof.RhsContribution{
			Base:   fmt.Sprintf("C%d", i),
			Secret: fmt.Sprintf("d%d", i),
			Power:  1,
		})
	}

	return result
}

func (s *ProofStructure) bases(pk *keys.PublicKey, cs []*big.Int) zkproof.BaseMerge {
	group := zkproof.BaseMap{"R": pk.R[s.index], "S": pk.S}
	commitments := make(zkproof.BaseMap, len(cs))
	for i, c := range cs {
		commitments[fmt.Sprintf("C%d", i)] = c
	}
	return zkproof.NewBaseMerge(group, commitments)
}

func (s *ProofStructure) lengths(pk *keys.PublicKey) (lm, lh, lstatzk uint) {
	return pk.Params.Lm, pk.Params.Lh, pk.Params.Lstatzk
}

// CommitmentsFromSecrets commits to the square decomposition of a*m - k, using mRandomizer
// as the randomizer of m. It fails with ErrStatementFalse if the statement does not hold.
func (s *ProofStructure) CommitmentsFromSecrets(pk *keys.PublicKey, m, mRandomizer *big.Int) ([]*big.Int, *ProofCommit, error) {
	if s.index < 0 || s.index >= len(pk.R) {
		return nil, nil, errors.New("attribute index out of range")
	}
	lm, lh, lstatzk := s.lengths(pk)

	delta := new(big.Int).Mul(m, big.NewInt(int64(s.a)))
	delta.Sub(delta, s.k)
	if delta.Sign() < 0 {
		return nil, nil, ErrStatementFalse
	}

	d, err := s.splitter.Split(delta)
	if err != nil {
		return nil, nil, err
	}
	if len(d) != len(s.cRep) {
		return nil, nil, errors.New("split function returned wrong number of results")
	}

	commit := &ProofCommit{
		cs: make([]*big.Int, len(d)),
		secrets: zkproof.SecretMap{
			Secrets:     map[string]*big.Int{"m": m},
			Randomizers: map[string]*big.Int{"m": mRandomizer},
		},
	}

	dRandomizerLimit := new(big.Int).Lsh(big.NewInt(1), s.ld+lh+lstatzk)
	vLimit := new(big.Int).Lsh(big.NewInt(1), lm)
	vRandomizerLimit := new(big.Int).Lsh(big.NewInt(1), lm+lh+lstatzk)
	v5 := big.NewInt(0)
	for i, di := range d {
		if di.BitLen() > int(s.ld) {
			return nil, nil, errors.New("split function returned oversized d")
		}
		vi := common.FastRandomBigInt(vLimit)
		commit.secrets.Secrets[fmt.Sprintf("d%d", i)] = di
		commit.secrets.Secrets[fmt.Sprintf("v%d", i)] = vi
		commit.secrets.Randomizers[fmt.Sprintf("d%d", i)] = common.FastRandomBigInt(dRandomizerLimit)
		commit.secrets.Randomizers[fmt.Sprintf("v%d", i)] = common.FastRandomBigInt(vRandomizerLimit)
		v5.Add(v5, new(big.Int).Mul(di, vi))

		// C_i = R^d_i S^v_i
		commit.cs[i] = new(big.Int).Exp(pk.R[s.index], di, pk.N)
		commit.cs[i].Mul(commit.cs[i], new(big.Int).Exp(pk.S, vi, pk.N)).Mod(commit.cs[i], pk.N)
	}
	commit.secrets.Secrets["v5"] = v5
	commit.secrets.Randomizers["v5"] = common.FastRandomBigInt(new(big.Int).Lsh(big.NewInt(1), lm+s.ld+2+lh+lstatzk))

	bases := s.bases(pk, commit.cs)
	contributions := s.mCorrect.CommitmentsFromSecrets(pk.N, nil, &bases, commit.secrets)
	for i := range s.cRep {
		contributions = s.cRep[i].CommitmentsFromSecrets(pk.N, contributions, &bases, commit.secrets)
	}

	return append(contributions, commit.cs...), commit, nil
}

func (s *ProofStructure) BuildProof(commit *ProofCommit, challenge *big.Int) *Proof {
	response := func(name string) *big.Int {
		r := new(big.Int).Mul(challenge, commit.secrets.Secret(name))
		return r.Add(r, commit.secrets.Randomizer(name))
	}

	result := &Proof{
		Cs:         make([]*big.Int, len(commit.cs)),
		DResponses: make([]*big.Int, len(commit.cs)),
		VResponses: make([]*big.Int, len(commit.cs)),
		V5Response: response("v5"),
		MResponse:  response("m"),
	}
	for i := range commit.cs {
		result.Cs[i] = new(big.Int).Set(commit.cs[i])
		result.DResponses[i] = response(fmt.Sprintf("d%d", i))
		result.VResponses[i] = response(fmt.Sprintf("v%d", i))
	}

	return result
}

// VerifyProofStructure checks that the proof has the shape of this structure and that
// its responses are not larger than honest responses can be.
func (s *ProofStructure) VerifyProofStructure(pk *keys.PublicKey, p *Proof) bool {
	if s.index < 0 || s.index >= len(pk.R) {
		return false
	}
	if len(s.cRep) != len(p.Cs) || len(s.cRep) != len(p.DResponses) || len(s.cRep) != len(p.VResponses) {
		return false
	}
	if p.V5Response == nil || p.MResponse == nil {
		return false
	}

	lm, lh, lstatzk := s.lengths(pk)
	if uint(p.V5Response.BitLen()) > lm+s.ld+2+lh+lstatzk+1 ||
		uint(p.MResponse.BitLen()) > lm+lh+lstatzk+1 {
		return false
	}

	for i := range s.cRep {
		if p.Cs[i] == nil || p.DResponses[i] == nil || p.VResponses[i] == nil {
			return false
		}
		if p.Cs[i].Sign() <= 0 || p.Cs[i].Cmp(pk.N) >= 0 ||
			uint(p.DResponses[i].BitLen()) > s.ld+lh+lstatzk+1 ||
			uint(p.VResponses[i].BitLen()) > lm+lh+lstatzk+1 {
			return false
		}
	}

	return true
}

// CommitmentsFromProof reconstructs the commitments of CommitmentsFromSecrets from the proof.
func (s *ProofStructure) CommitmentsFromProof(pk *keys.PublicKey, p *Proof, challenge *big.Int) []*big.Int {
	responses := zkproof.ProofMap{"m": p.MResponse, "v5": p.V5Response}
	for i := range p.Cs {
		responses[fmt.Sprintf("d%d", i)] = p.DResponses[i]
		responses[fmt.Sprintf("v%d", i)] = p.VResponses[i]
	}

	bases := s.bases(pk, p.Cs)
	contributions := s.mCorrect.CommitmentsFromProof(pk.N, nil, challenge, &bases, responses)
	for i := range s.cRep {
		contributions = s.cRep[i].CommitmentsFromProof(pk.N, contributions, challenge, &bases, responses)
	}

	return append(contributions, p.Cs...)
}
