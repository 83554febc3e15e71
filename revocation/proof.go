package revocation

import (
	"github.com/go-errors/errors"

	"github.com/privacybydesign/anoncreds/big"
	"github.com/privacybydesign/anoncreds/internal/common"
	"github.com/privacybydesign/anoncreds/zkproof"
)

/*
This implements the zero knowledge proof of the RSA-B accumulator for revocation, introduced in
"Dynamic Accumulators and Application to Efficient Revocation of Anonymous Credentials",
Jan Camenisch and Anna Lysyanskaya, CRYPTO 2002, DOI https://doi.org/10.1007/3-540-45708-9_5,
http://static.cs.brown.edu/people/alysyans/papers/camlys02.pdf.

The user proves knowledge of two numbers u and e, called the witness, which are such that the relation
    u^e = 𝛎 mod n
holds, where 𝛎 (greek letter "nu") is the accumulator (the issuer's current "non-revocation publickey").
Both u and e are kept secret to the user. Elsewhere the number e is included as an attribute in a
claim, and this zero-knowledge proof convinces the verifier that the containing claim is not revoked.

This is an implementation of the zero-knowledge proof at page 8 and 15 of the pdf linked to above,
with the following differences.
1. In the zero knowledge proof conjunction on page 8 of the pdf, we skip the first, second and
   third items in the conjunction: these only serve to prove that the secret e is committed to
   in an element of a known prime order group. We don't need to do this as we have no such group:
   in our case everything happens within QR_n.
2. The fifth relation C_e = g^e * h^r1 is replaced by the CL relation
   Z = A^epsilon * S^v * Ri^mi * Re^e which is already proved elsewhere by the calling code.
3. The bounds A and B between which the witness e is chosen does not satisfy the relation
   B*2^(k'+k''+1) < A^2 - 1, which again would only be relevant in the presence of a known prime
   order group. Instead we take for B the maximum size such that e still fits in an attribute
   in 1024 parameter settings and A one bit below.
4. Secrets and randomizers within the zero-knowledge proofs are taken positive, instead of from
   symmetric intervals [-A,A].
5. Like the CL proofs but unlike the paper, we use addition in the zero-knowledge proof responses:
   response = randomizer + challenge*secret.
6. We use the Fiat-Shamir heuristic; the challenge is computed by the caller over the commitments
   of all proofs it combines.
*/

type (
	Proof struct {
		Cr        *big.Int            `json:"c_r"` // Cr = g^r2 * h^r3      = g^epsilon * h^zeta
		Cu        *big.Int            `json:"c_u"` // Cu = u    * h^r2
		Nu        *big.Int            `json:"nu"`  // nu = Cu^e * h^(-e*r2) = Cu^alpha * h^-beta
		Index     uint64              `json:"index"`
		Responses map[string]*big.Int `json:"responses"`
	}

	ProofCommit struct {
		cu, cr, nu *big.Int
		secrets    zkproof.SecretMap
		index      uint64
	}

	proofStructure struct {
		cr  zkproof.RepresentationProofStructure
		nu  zkproof.RepresentationProofStructure
		one zkproof.RepresentationProofStructure
	}
)

var (
	parameters = struct {
		attributeMinSize    uint     // minimum size in bits for prime e
		attributeMaxSize    uint     // maximum size in bits for prime e
		challengeLength     uint     // k'  = len(SHA256) = 256
		zkStat              uint     // k'' = 128
		twoZk, bTwoZk, a, b *big.Int // 2^(k'+k''), B*2^(k'+k''+1), 2^attributeMinSize, 2^attributeMaxSize
	}{
		attributeMinSize: 207,
		attributeMaxSize: 208,
		challengeLength:  256,
		zkStat:           128,
	}

	bigOne         = big.NewInt(1)
	secretNames    = []string{"alpha", "beta", "delta", "epsilon", "zeta"}
	proofstructure = proofStructure{
		cr: zkproof.RepresentationProofStructure{
			Lhs: []zkproof.LhsContribution{{Base: "cr", Power: bigOne}},
			Rhs: []zkproof.RhsContribution{
				{Base: "g", Secret: "epsilon", Power: 1}, // r2
				{Base: "h", Secret: "zeta", Power: 1},    // r3
			},
		},
		nu: zkproof.RepresentationProofStructure{
			Lhs: []zkproof.LhsContribution{{Base: "nu", Power: bigOne}},
			Rhs: []zkproof.RhsContribution{
				{Base: "cu", Secret: "alpha", Power: 1}, // e
				{Base: "h", Secret: "beta", Power: -1},  // e r2
			},
		},
		one: zkproof.RepresentationProofStructure{
			Lhs: []zkproof.LhsContribution{{Base: "one", Power: bigOne}},
			Rhs: []zkproof.RhsContribution{
				{Base: "cr", Secret: "alpha", Power: 1}, // e
				{Base: "g", Secret: "beta", Power: -1},  // e r2
				{Base: "h", Secret: "delta", Power: -1}, // e r3
			},
		},
	}
)

func init() {
	// Compute derivative parameters
	parameters.twoZk = new(big.Int).Lsh(bigOne, parameters.challengeLength+parameters.zkStat)
	parameters.a = new(big.Int).Lsh(bigOne, parameters.attributeMinSize)
	parameters.b = new(big.Int).Lsh(bigOne, parameters.attributeMaxSize)
	parameters.bTwoZk = new(big.Int).Mul(parameters.b, new(big.Int).Mul(parameters.twoZk, big.NewInt(2)))
}

// NewProofRandomizer returns a bigint suitable for use as the randomizer of the revocation
// attribute, shared between the CL proof and the nonrevocation proof.
func NewProofRandomizer() *big.Int {
	return common.FastRandomBigInt(new(big.Int).Mul(parameters.b, parameters.twoZk))
}

// NewProofCommit performs the first move in the Schnorr zero-knowledge protocol: committing to
// randomizers. It returns the values to include in the challenge, in the same order as
// ChallengeContributions.
func NewProofCommit(pk *PublicKey, witn *Witness, randomizer *big.Int) ([]*big.Int, *ProofCommit, error) {
	if randomizer == nil {
		randomizer = NewProofRandomizer()
	}
	if err := witn.Verify(pk); err != nil {
		return nil, nil, errors.WrapPrefix(err, "non-revocation relation does not hold", 0)
	}

	g := pk.Group
	r2 := common.FastRandomBigInt(g.nDiv4)
	r3 := common.FastRandomBigInt(g.nDiv4)

	commit := &ProofCommit{
		nu:    witn.Nu,
		index: witn.Index,
		secrets: zkproof.SecretMap{
			Secrets: map[string]*big.Int{
				"alpha":   witn.E,
				"beta":    new(big.Int).Mul(witn.E, r2),
				"delta":   new(big.Int).Mul(witn.E, r3),
				"epsilon": r2,
				"zeta":    r3,
			},
			Randomizers: map[string]*big.Int{
				"alpha":   randomizer,
				"beta":    common.FastRandomBigInt(g.nbDiv4twoZk),
				"delta":   common.FastRandomBigInt(g.nbDiv4twoZk),
				"epsilon": common.FastRandomBigInt(g.nDiv4twoZk),
				"zeta":    common.FastRandomBigInt(g.nDiv4twoZk),
			},
		},
	}

	var tmp big.Int
	// Set C_r = g^r2 * h^r3
	commit.cr = new(big.Int).Exp(g.G, r2, g.N)
	commit.cr.Mul(commit.cr, tmp.Exp(g.H, r3, g.N)).Mod(commit.cr, g.N)
	// Set C_u = u * h^r2
	commit.cu = new(big.Int).Exp(g.H, r2, g.N)
	commit.cu.Mul(commit.cu, witn.U).Mod(commit.cu, g.N)

	list := []*big.Int{commit.cr, commit.cu, commit.nu}
	bases := zkproof.NewBaseMerge(g, commit.bases())
	list = proofstructure.cr.CommitmentsFromSecrets(g.N, list, &bases, commit.secrets)
	list = proofstructure.nu.CommitmentsFromSecrets(g.N, list, &bases, commit.secrets)
	list = proofstructure.one.CommitmentsFromSecrets(g.N, list, &bases, commit.secrets)

	return list, commit, nil
}

func (c *ProofCommit) bases() zkproof.BaseMap {
	return zkproof.BaseMap{"cr": c.cr, "cu": c.cu, "nu": c.nu, "one": big.NewInt(1)}
}

func (c *ProofCommit) BuildProof(challenge *big.Int) *Proof {
	responses := make(map[string]*big.Int, len(secretNames))
	for _, name := range secretNames {
		responses[name] = new(big.Int).Add(
			c.secrets.Randomizer(name),
			new(big.Int).Mul(challenge, c.secrets.Secret(name)),
		)
	}

	return &Proof{
		Cr: c.cr, Cu: c.cu, Nu: c.nu,
		Index:     c.index,
		Responses: responses,
	}
}

// VerifyStructure checks that all values of the proof are present and within bounds.
func (p *Proof) VerifyStructure(pk *PublicKey) bool {
	for _, name := range secretNames {
		if p.Responses[name] == nil {
			return false
		}
	}
	for _, x := range []*big.Int{p.Cr, p.Cu, p.Nu} {
		if x == nil || x.Sign() <= 0 || x.Cmp(pk.Group.N) >= 0 {
			return false
		}
	}
	return p.Responses["alpha"].Cmp(parameters.bTwoZk) <= 0
}

// Alpha returns the response for the revocation attribute, which must equal the response
// for that attribute in the accompanying CL proof.
func (p *Proof) Alpha() *big.Int {
	return p.Responses["alpha"]
}

// ChallengeContributions reconstructs the commitments of NewProofCommit from the proof.
func (p *Proof) ChallengeContributions(pk *PublicKey, challenge *big.Int) []*big.Int {
	g := pk.Group
	bases := zkproof.NewBaseMerge(g, zkproof.BaseMap{"cr": p.Cr, "cu": p.Cu, "nu": p.Nu, "one": big.NewInt(1)})
	responses := zkproof.ProofMap(p.Responses)

	list := []*big.Int{p.Cr, p.Cu, p.Nu}
	list = proofstructure.cr.CommitmentsFromProof(g.N, list, challenge, &bases, responses)
	list = proofstructure.nu.CommitmentsFromProof(g.N, list, challenge, &bases, responses)
	list = proofstructure.one.CommitmentsFromProof(g.N, list, challenge, &bases, responses)
	return list
}

// MatchesAccumulator reports whether the proof was built against the specified accumulator.
func (p *Proof) MatchesAccumulator(acc Accumulator) bool {
	return p.Nu != nil && acc.Nu != nil && p.Nu.Cmp(acc.Nu) == 0 && p.Index == acc.Index
}
