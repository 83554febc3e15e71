package anoncreds

import (
	"sync"

	"github.com/bluele/gcache"
	"github.com/go-errors/errors"
	"github.com/sirupsen/logrus"

	"github.com/privacybydesign/anoncreds/big"
	"github.com/privacybydesign/anoncreds/internal/common"
	"github.com/privacybydesign/anoncreds/rangeproof"
	"github.com/privacybydesign/anoncreds/revocation"
)

type (
	// Verifier verifies proofs against the public data of a resolver.
	Verifier struct {
		resolver PublicDataResolver

		mu     sync.Mutex
		nonces gcache.Cache
	}

	// VerifierOption configures a Verifier.
	VerifierOption func(*Verifier)

	// claimVerification holds the public data against which a claim proof is verified.
	claimVerification struct {
		uuid   string
		proof  *ClaimProof
		def    *ClaimDef
		schema *Schema
		state  *revocation.RegistryState

		// revealed holds the disclosed attributes as presented to the verifier, i.e. with the
		// values of the answered attributes taken from the requested raw values.
		revealed map[int]*big.Int
	}
)

// WithReplayCache makes the verifier reject proofs for nonces of which it accepted a proof
// before, remembering the last size nonces.
func WithReplayCache(size int) VerifierOption {
	return func(v *Verifier) {
		v.nonces = gcache.New(size).LRU().Build()
	}
}

func NewVerifier(resolver PublicDataResolver, opts ...VerifierOption) *Verifier {
	v := &Verifier{resolver: resolver}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Verify reports whether the proof is a valid answer to the proof request. Proofs that are
// invalid result in false; an error is returned only if the proof could not be checked at all.
func (v *Verifier) Verify(req *ProofRequest, proof *Proof) (bool, error) {
	err := v.VerifyProof(req, proof)
	if err == nil {
		return true, nil
	}
	for _, target := range []error{ErrChallengeMismatch, ErrMasterSecretMismatch, ErrProofInvalid, ErrNonceReused} {
		if errors.Is(err, target) {
			Logger.WithField("request", req.Name).WithError(err).Debug("proof rejected")
			return false, nil
		}
	}
	return false, err
}

// VerifyProof verifies the proof as an answer to the proof request, returning nil if it is
// valid and an error classifying the defect otherwise.
func (v *Verifier) VerifyProof(req *ProofRequest, proof *Proof) error {
	if err := req.Validate(); err != nil {
		return err
	}
	if proof == nil || proof.Requested == nil || proof.Aggregated.CHash == nil {
		return common.Errorf(common.InvalidStructure, "incomplete proof")
	}

	claims, err := v.resolve(proof)
	if err != nil {
		return err
	}

	// All claims must be bound to the same master secret
	var msResponse *big.Int
	for _, c := range claims {
		r := c.proof.Proof.MResponses[0]
		if msResponse == nil {
			msResponse = r
		} else if msResponse.Cmp(r) != 0 {
			return common.Errorf(common.MasterSecretMismatch, "claim %s is bound to another master secret", c.uuid)
		}
	}

	presentRevealedValues(req, proof, claims)

	challenge := proof.Aggregated.CHash
	var cList, tList []*big.Int
	for _, c := range claims {
		cl, tl, err := c.challengeContributions(challenge)
		if err != nil {
			return err
		}
		cList = append(cList, cl...)
		tList = append(tList, tl...)
	}

	if len(cList) != len(proof.Aggregated.CList) {
		return common.Errorf(common.ChallengeMismatch, "commitment list has wrong length")
	}
	for i, c := range cList {
		if proof.Aggregated.CList[i] == nil || c.Cmp(proof.Aggregated.CList[i]) != 0 {
			return common.Errorf(common.ChallengeMismatch, "commitment %d differs", i)
		}
	}
	if createChallenge(cList, tList, req.Nonce).Cmp(challenge) != 0 {
		return common.Errorf(common.ChallengeMismatch, "challenge mismatch")
	}

	for _, c := range claims {
		if !c.proof.Proof.correctResponseSizes(c.def.PublicKey) {
			return common.Errorf(common.ProofInvalid, "claim proof %s has oversized responses", c.uuid)
		}
	}

	if err = v.verifyRequested(req, proof, claims); err != nil {
		return err
	}

	if v.nonces != nil {
		v.mu.Lock()
		defer v.mu.Unlock()
		key := req.Nonce.String()
		if v.nonces.Has(key) {
			return common.Errorf(common.NonceReused, "nonce %s was used before", key)
		}
		if err = v.nonces.Set(key, struct{}{}); err != nil {
			return err
		}
	}

	Logger.WithFields(logrus.Fields{"request": req.Name, "claims": len(claims)}).Debug("proof verified")
	return nil
}

// resolve resolves the public data of all claim proofs, in canonical order, and checks
// their structure against it.
func (v *Verifier) resolve(proof *Proof) ([]*claimVerification, error) {
	claims := make([]*claimVerification, 0, len(proof.ClaimProofs))
	for _, uuid := range sortedKeys(proof.ClaimProofs) {
		cp := proof.ClaimProofs[uuid]
		if cp == nil || cp.Proof == nil {
			return nil, common.Errorf(common.InvalidStructure, "claim proof %s is empty", uuid)
		}
		def, schema, err := resolveClaimDef(v.resolver, cp.IssuerDID, cp.SchemaSeqNo)
		if err != nil {
			return nil, err
		}
		c := &claimVerification{uuid: uuid, proof: cp, def: def, schema: schema}
		if err = cp.Proof.validate(def.PublicKey); err != nil {
			return nil, common.WrapError(common.InvalidStructure, errors.WrapPrefix(err, "claim proof "+uuid, 0))
		}
		if err = c.resolveRevocation(v.resolver); err != nil {
			return nil, err
		}
		claims = append(claims, c)
	}
	return claims, nil
}

func (c *claimVerification) resolveRevocation(resolver PublicDataResolver) error {
	p := c.proof.Proof
	if !c.def.Revocable() {
		if c.proof.RevocRegSeqNo != nil || p.NonRevocation != nil {
			return common.Errorf(common.InvalidStructure, "claim definition of %s is not revocable", c.uuid)
		}
		return nil
	}

	index := c.def.revocationIndex()
	if c.proof.RevocRegSeqNo == nil {
		if p.NonRevocation != nil || p.Revealed[index] == nil || p.Revealed[index].Sign() != 0 {
			return common.Errorf(common.InvalidStructure, "claim %s must prove nonrevocation", c.uuid)
		}
		return nil
	}
	if p.NonRevocation == nil || p.MResponses[index] == nil {
		return common.Errorf(common.InvalidStructure, "claim %s has no nonrevocation proof", c.uuid)
	}
	state, err := resolver.RevocationRegistry(*c.proof.RevocRegSeqNo)
	if err != nil {
		return common.WrapError(common.MissingPublicData, err)
	}
	if !state.BelongsTo(c.def.IssuerDID, c.def.SchemaSeqNo) {
		return common.Errorf(common.InvalidStructure, "revocation registry %d is not of claim definition %s/%d",
			state.SeqNo, c.def.IssuerDID, c.def.SchemaSeqNo)
	}
	c.state = state
	return nil
}

// challengeContributions reconstructs the commitments and t-values of the claim proof in the
// order in which the builder computed them.
func (c *claimVerification) challengeContributions(challenge *big.Int) (cList, tList []*big.Int, err error) {
	p := c.proof.Proof
	pk := c.def.PublicKey

	presented := *p
	presented.Revealed = c.revealed
	z, err := presented.reconstructZ(pk, challenge)
	if err != nil {
		return nil, nil, common.WrapError(common.ProofInvalid, errors.WrapPrefix(err, "could not reconstruct Z", 0))
	}
	cList = []*big.Int{p.A}
	tList = []*big.Int{z}

	if c.state != nil {
		nonrev := *p.NonRevocation
		nonrev.Responses = make(map[string]*big.Int, len(p.NonRevocation.Responses)+1)
		for k, r := range p.NonRevocation.Responses {
			nonrev.Responses[k] = r
		}
		nonrev.Responses["alpha"] = p.MResponses[c.def.revocationIndex()]
		if !nonrev.VerifyStructure(c.def.Revocation) {
			return nil, nil, common.Errorf(common.ProofInvalid, "malformed nonrevocation proof in %s", c.uuid)
		}
		if !nonrev.MatchesAccumulator(c.state.Accumulator) {
			return nil, nil, common.Errorf(common.ProofInvalid, "nonrevocation proof of %s is against another accumulator", c.uuid)
		}
		list := nonrev.ChallengeContributions(c.def.Revocation, challenge)
		cList = append(cList, list[:3]...)
		tList = append(tList, list[3:]...)
	}

	for _, pred := range p.Predicates {
		if !pred.Predicate.PType.valid() {
			return nil, nil, common.Errorf(common.InvalidStructure, "unknown predicate type %q", pred.Predicate.PType)
		}
		index := c.schema.AttributeIndex(pred.Predicate.AttrName) + 1
		if index == 0 || p.MResponses[index] == nil {
			return nil, nil, common.Errorf(common.InvalidStructure, "predicate over unknown or revealed attribute %s",
				pred.Predicate.AttrName)
		}
		a, k := pred.Predicate.statement()
		structure := rangeproof.New(index, a, k, &rangeproof.FourSquaresSplitter{})
		rp := *pred.Proof
		rp.MResponse = p.MResponses[index]
		if !structure.VerifyProofStructure(pk, &rp) {
			return nil, nil, common.Errorf(common.ProofInvalid, "malformed predicate proof over %s", pred.Predicate.AttrName)
		}
		contributions := structure.CommitmentsFromProof(pk, &rp, challenge)
		cs := len(rp.Cs)
		tList = append(tList, contributions[:len(contributions)-cs]...)
		cList = append(cList, contributions[len(contributions)-cs:]...)
	}

	return cList, tList, nil
}

// presentRevealedValues computes for each claim the disclosed attributes against which the
// proof is checked. Answered attributes take the canonical encoding of the raw value in the
// answer, so that the challenge covers what the verifier reads.
func presentRevealedValues(req *ProofRequest, proof *Proof, claims []*claimVerification) {
	byUUID := make(map[string]*claimVerification, len(claims))
	for _, c := range claims {
		c.revealed = make(map[int]*big.Int, len(c.proof.Proof.Revealed))
		for i, value := range c.proof.Proof.Revealed {
			c.revealed[i] = value
		}
		byUUID[c.uuid] = c
	}
	for _, id := range sortedKeys(req.RequestedAttrs) {
		entry := proof.Requested[id]
		if len(entry) != 3 || byUUID[entry[0]] == nil {
			continue
		}
		c := byUUID[entry[0]]
		index := c.schema.AttributeIndex(req.RequestedAttrs[id].Name) + 1
		if _, ok := c.revealed[index]; index > 0 && ok {
			c.revealed[index] = EncodeAttribute(entry[1])
		}
	}
}

// verifyRequested checks that the proof answers every requested attribute and predicate, and
// that its answers are consistent with the claim proofs.
func (v *Verifier) verifyRequested(req *ProofRequest, proof *Proof, claims []*claimVerification) error {
	byUUID := make(map[string]*claimVerification, len(claims))
	for _, c := range claims {
		byUUID[c.uuid] = c
	}

	for _, id := range sortedKeys(req.RequestedAttrs) {
		info := req.RequestedAttrs[id]
		entry := proof.Requested[id]
		var c *claimVerification
		if len(entry) > 0 {
			c = byUUID[entry[0]]
		}

		switch {
		case len(entry) == 1 && c == nil:
			if info.SchemaSeqNo != nil {
				return common.Errorf(common.ProofInvalid, "attribute %s must not be self attested", id)
			}
			continue
		case c == nil || (len(entry) != 1 && len(entry) != 3):
			return common.Errorf(common.ProofInvalid, "no valid answer for attribute %s", id)
		}

		if info.SchemaSeqNo != nil && *info.SchemaSeqNo != c.proof.SchemaSeqNo {
			return common.Errorf(common.ProofInvalid, "attribute %s proven from schema %d", id, c.proof.SchemaSeqNo)
		}
		index := c.schema.AttributeIndex(info.Name) + 1
		if index == 0 {
			return common.Errorf(common.ProofInvalid, "claim %s has no attribute %s", c.uuid, info.Name)
		}
		if len(entry) == 1 {
			continue
		}

		revealed := c.proof.Proof.Revealed[index]
		encoded, ok := new(big.Int).SetString(entry[2], 10)
		if revealed == nil || !ok || encoded.Cmp(revealed) != 0 || encoded.Cmp(EncodeAttribute(entry[1])) != 0 {
			return common.Errorf(common.ProofInvalid, "revealed value of attribute %s does not match", id)
		}
	}

	used := map[*PredicateProof]bool{}
	for _, id := range sortedKeys(req.RequestedPredicates) {
		info := req.RequestedPredicates[id]
		entry := proof.Requested[id]
		if len(entry) != 1 || byUUID[entry[0]] == nil {
			return common.Errorf(common.ProofInvalid, "no valid answer for predicate %s", id)
		}
		var found bool
		for _, pred := range byUUID[entry[0]].proof.Proof.Predicates {
			if !used[pred] && pred.Predicate == info {
				used[pred], found = true, true
				break
			}
		}
		if !found {
			return common.Errorf(common.ProofInvalid, "no proof for predicate %s", id)
		}
	}
	for _, c := range claims {
		for _, pred := range c.proof.Proof.Predicates {
			if !used[pred] {
				return common.Errorf(common.ProofInvalid, "unrequested predicate over %s", pred.Predicate.AttrName)
			}
		}
	}

	return nil
}
