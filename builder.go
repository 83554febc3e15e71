package anoncreds

import (
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/privacybydesign/anoncreds/big"
	"github.com/privacybydesign/anoncreds/internal/common"
	"github.com/privacybydesign/anoncreds/rangeproof"
	"github.com/privacybydesign/anoncreds/revocation"
)

type (
	// claimProofBuilder holds the state to build the proof over a single claim.
	claimProofBuilder struct {
		uuid   string
		claim  *Claim
		def    *ClaimDef
		schema *Schema

		attributes []*big.Int
		revealed   map[int]bool
		predicates []*predicateBuilder

		randomizedSignature *CLSignature
		eCommit, vCommit    *big.Int
		attrRandomizers     map[int]*big.Int
		nonrevCommit        *revocation.ProofCommit

		cList, tList []*big.Int
	}

	predicateBuilder struct {
		info      PredicateInfo
		index     int
		structure *rangeproof.ProofStructure
		commit    *rangeproof.ProofCommit
	}
)

func newClaimProofBuilder(uuid string, claim *Claim, ms *big.Int, resolver PublicDataResolver) (*claimProofBuilder, error) {
	def, schema, err := resolveClaimDef(resolver, claim.IssuerDID, claim.SchemaSeqNo)
	if err != nil {
		return nil, err
	}
	if err = claim.validate(def, schema); err != nil {
		return nil, err
	}

	b := &claimProofBuilder{
		uuid:       uuid,
		claim:      claim,
		def:        def,
		schema:     schema,
		attributes: claim.messages(ms, def, schema),
		revealed:   map[int]bool{},
	}
	if !claim.Signature.Verify(def.PublicKey, b.attributes) {
		return nil, common.Errorf(common.InvalidStructure, "claim %s is not signed over the master secret", uuid)
	}

	if def.Revocable() {
		if claim.Witness == nil {
			// claims issued outside of a registry disclose that they have no revocation attribute
			b.revealed[def.revocationIndex()] = true
		} else {
			state, err := resolver.RevocationRegistry(*claim.RevocRegSeqNo)
			if err != nil {
				return nil, common.WrapError(common.MissingPublicData, err)
			}
			if !state.BelongsTo(def.IssuerDID, def.SchemaSeqNo) {
				return nil, common.Errorf(common.InvalidStructure, "revocation registry %d is not of claim definition %s/%d",
					state.SeqNo, def.IssuerDID, def.SchemaSeqNo)
			}
			acc := claim.Witness.Accumulator()
			if state.Accumulator.Nu == nil || state.Accumulator.Nu.Cmp(acc.Nu) != 0 || state.Accumulator.Index != acc.Index {
				return nil, common.Errorf(common.WitnessOutOfDate, "witness of claim %s is at index %d, registry at %d",
					uuid, acc.Index, state.Accumulator.Index)
			}
		}
	}
	return b, nil
}

func (b *claimProofBuilder) hasNonRevocationProof() bool {
	return b.claim.Witness != nil
}

// Commit commits to all hidden values, using skRandomizer for the master secret.
func (b *claimProofBuilder) Commit(skRandomizer *big.Int) error {
	pk := b.def.PublicKey
	var err error
	if b.randomizedSignature, err = b.claim.Signature.Randomize(pk); err != nil {
		return err
	}
	if b.eCommit, err = common.RandomBigInt(pk.Params.LeCommit); err != nil {
		return err
	}
	if b.vCommit, err = common.RandomBigInt(pk.Params.LvCommit); err != nil {
		return err
	}

	b.attrRandomizers = map[int]*big.Int{0: skRandomizer}
	for i := 1; i < len(pk.R); i++ {
		if b.revealed[i] {
			continue
		}
		if b.hasNonRevocationProof() && i == b.def.revocationIndex() {
			b.attrRandomizers[i] = revocation.NewProofRandomizer()
			continue
		}
		if b.attrRandomizers[i], err = common.RandomBigInt(pk.Params.LmCommit); err != nil {
			return err
		}
	}

	// Z = A^{e_commit} * S^{v_commit}
	//     PROD_{i \in hidden} ( R_i^{a_commits{i}} )
	z := new(big.Int).Exp(b.randomizedSignature.A, b.eCommit, pk.N)
	z.Mul(z, new(big.Int).Exp(pk.S, b.vCommit, pk.N)).Mod(z, pk.N)
	for i, r := range b.attrRandomizers {
		z.Mul(z, new(big.Int).Exp(pk.R[i], r, pk.N)).Mod(z, pk.N)
	}

	b.cList = []*big.Int{b.randomizedSignature.A}
	b.tList = []*big.Int{z}

	if b.hasNonRevocationProof() {
		list, commit, err := revocation.NewProofCommit(b.def.Revocation, b.claim.Witness, b.attrRandomizers[b.def.revocationIndex()])
		if err != nil {
			return common.WrapError(common.InvalidStructure, err)
		}
		b.nonrevCommit = commit
		b.cList = append(b.cList, list[:3]...)
		b.tList = append(b.tList, list[3:]...)
	}

	for _, p := range b.predicates {
		contributions, commit, err := p.structure.CommitmentsFromSecrets(pk, b.attributes[p.index], b.attrRandomizers[p.index])
		if err == rangeproof.ErrStatementFalse {
			return common.Errorf(common.UnsatisfiablePredicate, "predicate over %s not satisfied", p.info.AttrName)
		} else if err != nil {
			return err
		}
		p.commit = commit
		cs := (len(contributions) - 1) / 2
		b.tList = append(b.tList, contributions[:len(contributions)-cs]...)
		b.cList = append(b.cList, contributions[len(contributions)-cs:]...)
	}

	return nil
}

// CreateProof creates the proof over the claim with the provided challenge.
func (b *claimProofBuilder) CreateProof(challenge *big.Int) *ClaimProof {
	pk := b.def.PublicKey
	ePrime := new(big.Int).Sub(b.randomizedSignature.E, new(big.Int).Lsh(bigOne, pk.Params.Le-1))
	eResponse := new(big.Int).Mul(challenge, ePrime)
	eResponse.Add(b.eCommit, eResponse)
	vResponse := new(big.Int).Mul(challenge, b.randomizedSignature.V)
	vResponse.Add(b.vCommit, vResponse)

	mResponses := make(map[int]*big.Int, len(b.attrRandomizers))
	for i, r := range b.attrRandomizers {
		t := new(big.Int).Mul(challenge, b.attributes[i])
		mResponses[i] = t.Add(r, t)
	}
	revealed := make(map[int]*big.Int, len(b.revealed))
	for i := range b.revealed {
		revealed[i] = b.attributes[i]
	}

	proof := &PrimaryProof{
		A:          b.randomizedSignature.A,
		EResponse:  eResponse,
		VResponse:  vResponse,
		MResponses: mResponses,
		Revealed:   revealed,
	}
	if b.nonrevCommit != nil {
		proof.NonRevocation = b.nonrevCommit.BuildProof(challenge)
		delete(proof.NonRevocation.Responses, "alpha") // equals the response of the revocation attribute
	}
	for _, p := range b.predicates {
		proof.Predicates = append(proof.Predicates, &PredicateProof{
			Predicate: p.info,
			Proof:     p.structure.BuildProof(p.commit, challenge),
		})
	}

	return &ClaimProof{
		Proof:         proof,
		IssuerDID:     b.claim.IssuerDID,
		SchemaSeqNo:   b.claim.SchemaSeqNo,
		RevocRegSeqNo: b.claim.RevocRegSeqNo,
	}
}

// CreateProof creates a proof answering the proof request with the requested claims, which are
// looked up by uuid in claims. All claims must be signed over the master secret ms.
func CreateProof(req *ProofRequest, requested *RequestedClaims, claims map[string]*Claim, ms *big.Int, resolver PublicDataResolver) (*Proof, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if requested == nil {
		return nil, common.Errorf(common.InvalidStructure, "no requested claims")
	}
	if err := requested.Validate(req); err != nil {
		return nil, err
	}
	if ms == nil {
		return nil, common.Errorf(common.InvalidStructure, "no master secret")
	}

	result := &Proof{
		Requested:   map[string][]string{},
		ClaimProofs: map[string]*ClaimProof{},
	}
	builders := map[string]*claimProofBuilder{}
	builder := func(uuid string) (*claimProofBuilder, error) {
		if b, ok := builders[uuid]; ok {
			return b, nil
		}
		claim := claims[uuid]
		if claim == nil {
			return nil, common.Errorf(common.MissingClaimForAttribute, "unknown claim %s", uuid)
		}
		b, err := newClaimProofBuilder(uuid, claim, ms, resolver)
		if err != nil {
			return nil, err
		}
		builders[uuid] = b
		return b, nil
	}

	for _, id := range sortedKeys(req.RequestedAttrs) {
		info := req.RequestedAttrs[id]
		item, ok := requested.Item(id)
		if !ok {
			return nil, common.Errorf(common.MissingClaimForAttribute, "no claim for attribute %s", id)
		}
		switch item := item.(type) {
		case SelfAttested:
			if info.SchemaSeqNo != nil {
				return nil, common.Errorf(common.InvalidStructure, "attribute %s must be proven from schema %d", id, *info.SchemaSeqNo)
			}
			result.Requested[id] = []string{item.Value}
		case ClaimBacked:
			b, err := builder(item.ClaimUUID)
			if err != nil {
				return nil, err
			}
			if info.SchemaSeqNo != nil && *info.SchemaSeqNo != b.claim.SchemaSeqNo {
				return nil, common.Errorf(common.InvalidStructure, "claim %s is not of schema %d", item.ClaimUUID, *info.SchemaSeqNo)
			}
			index := b.schema.AttributeIndex(info.Name)
			if index < 0 {
				return nil, common.Errorf(common.InvalidStructure, "claim %s has no attribute %s", item.ClaimUUID, info.Name)
			}
			if item.Reveal {
				b.revealed[index+1] = true
				value := b.claim.Attrs[info.Name]
				result.Requested[id] = []string{item.ClaimUUID, value.Raw, value.Encoded.String()}
			} else {
				result.Requested[id] = []string{item.ClaimUUID}
			}
		}
	}

	for _, id := range sortedKeys(req.RequestedPredicates) {
		info := req.RequestedPredicates[id]
		uuid, ok := requested.Predicates[id]
		if !ok {
			return nil, common.Errorf(common.MissingClaimForAttribute, "no claim for predicate %s", id)
		}
		b, err := builder(uuid)
		if err != nil {
			return nil, err
		}
		index := b.schema.AttributeIndex(info.AttrName)
		if index < 0 {
			return nil, common.Errorf(common.InvalidStructure, "claim %s has no attribute %s", uuid, info.AttrName)
		}
		value := b.claim.Attrs[info.AttrName]
		if !value.IsInteger() {
			return nil, common.Errorf(common.InvalidStructure, "attribute %s is not an integer", info.AttrName)
		}
		if !info.Satisfied(value.Encoded) {
			return nil, common.Errorf(common.UnsatisfiablePredicate, "predicate %s not satisfied", id)
		}
		a, k := info.statement()
		b.predicates = append(b.predicates, &predicateBuilder{
			info:      info,
			index:     index + 1,
			structure: rangeproof.New(index+1, a, k, &rangeproof.FourSquaresSplitter{}),
		})
		result.Requested[id] = []string{uuid}
	}

	uuids := sortedKeys(builders)
	for _, uuid := range uuids {
		b := builders[uuid]
		for _, p := range b.predicates {
			if b.revealed[p.index] {
				return nil, common.Errorf(common.InvalidStructure, "predicate over revealed attribute %s", p.info.AttrName)
			}
		}
	}

	// The master secret is shared by all claims, so it gets one randomizer fitting all keys
	var lmCommit uint
	for _, b := range builders {
		if l := b.def.PublicKey.Params.LmCommit; lmCommit == 0 || l < lmCommit {
			lmCommit = l
		}
	}
	skRandomizer, err := common.RandomBigInt(lmCommit)
	if err != nil {
		return nil, err
	}

	var wg sync.WaitGroup
	errs := make([]error, len(uuids))
	for i, uuid := range uuids {
		wg.Add(1)
		go func(i int, b *claimProofBuilder) {
			defer wg.Done()
			errs[i] = b.Commit(skRandomizer)
		}(i, builders[uuid])
	}
	wg.Wait()
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	var cList, tList []*big.Int
	for _, uuid := range uuids {
		cList = append(cList, builders[uuid].cList...)
		tList = append(tList, builders[uuid].tList...)
	}
	challenge := createChallenge(cList, tList, req.Nonce)

	for _, uuid := range uuids {
		result.ClaimProofs[uuid] = builders[uuid].CreateProof(challenge)
	}
	result.Aggregated = AggregatedProof{CHash: challenge, CList: cList}

	Logger.WithFields(logrus.Fields{"request": req.Name, "claims": len(uuids)}).Debug("created proof")
	return result, nil
}
