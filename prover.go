package anoncreds

import (
	"fmt"
	"sync"

	"github.com/go-errors/errors"
	"github.com/sirupsen/logrus"

	"github.com/privacybydesign/anoncreds/big"
	"github.com/privacybydesign/anoncreds/cbor"
	"github.com/privacybydesign/anoncreds/internal/common"
	"github.com/privacybydesign/anoncreds/signed"
)

type (
	// SecureStore is the holder's key-value store for secrets and claims.
	SecureStore interface {
		Get(key string) ([]byte, bool, error)
		Put(key string, value []byte) error
	}

	// MemoryStore is an in-memory SecureStore.
	MemoryStore struct {
		mu      sync.RWMutex
		entries map[string][]byte
	}

	// Prover manages the master secrets and claims of a holder in a SecureStore, and creates
	// claim requests and proofs with them.
	Prover struct {
		store    SecureStore
		resolver PublicDataResolver
		mu       sync.Mutex
	}

	// ClaimFilter selects claims or claim offers. Empty fields match everything.
	ClaimFilter struct {
		IssuerDID   string `json:"issuer_did,omitempty"`
		SchemaSeqNo *int   `json:"schema_seq_no,omitempty"`
	}

	// ClaimsForProofRequest lists per requested attribute and predicate the claims with which
	// it can be answered.
	ClaimsForProofRequest struct {
		Attrs      map[string][]*Claim `json:"attrs"`
		Predicates map[string][]*Claim `json:"predicates"`
	}

	pendingRequest struct {
		MasterSecret string
		Metadata     *ClaimRequestMetadata
	}

	claimRecord struct {
		MasterSecret string
		Claim        *Claim
	}
)

const (
	masterSecretPrefix = "master_secret/"
	claimRequestPrefix = "claim_request/"
	claimPrefix        = "claim/"
	claimOffersKey     = "claim_offers"
	claimIndexKey      = "claims"
)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: map[string][]byte{}}
}

func (s *MemoryStore) Get(key string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.entries[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), value...), true, nil
}

func (s *MemoryStore) Put(key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = append([]byte(nil), value...)
	return nil
}

func NewProver(store SecureStore, resolver PublicDataResolver) *Prover {
	return &Prover{store: store, resolver: resolver}
}

func (p *Prover) get(key string, dst interface{}) (bool, error) {
	bts, ok, err := p.store.Get(key)
	if err != nil || !ok {
		return false, err
	}
	if err = cbor.Unmarshal(bts, dst); err != nil {
		return false, errors.WrapPrefix(err, "failed to decode "+key, 0)
	}
	return true, nil
}

func (p *Prover) put(key string, src interface{}) error {
	bts, err := cbor.Marshal(src)
	if err != nil {
		return err
	}
	return p.store.Put(key, bts)
}

// CreateMasterSecret generates and stores a new master secret under the specified name.
func (p *Prover) CreateMasterSecret(name string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if name == "" {
		return common.Errorf(common.InvalidStructure, "master secret needs a name")
	}
	var ms big.Int
	if exists, err := p.get(masterSecretPrefix+name, &ms); err != nil {
		return err
	} else if exists {
		return common.Errorf(common.InvalidStructure, "master secret %s already exists", name)
	}
	secret, err := NewMasterSecret()
	if err != nil {
		return err
	}
	return p.put(masterSecretPrefix+name, secret)
}

func (p *Prover) masterSecret(name string) (*big.Int, error) {
	ms := new(big.Int)
	exists, err := p.get(masterSecretPrefix+name, ms)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, common.Errorf(common.InvalidStructure, "unknown master secret %s", name)
	}
	return ms, nil
}

func (f *ClaimFilter) matches(issuerDID string, schemaSeqNo int) bool {
	if f == nil {
		return true
	}
	return (f.IssuerDID == "" || f.IssuerDID == issuerDID) &&
		(f.SchemaSeqNo == nil || *f.SchemaSeqNo == schemaSeqNo)
}

// StoreClaimOffer stores a claim offer received from an issuer.
func (p *Prover) StoreClaimOffer(offer *ClaimOffer) error {
	if offer == nil || offer.IssuerDID == "" {
		return common.Errorf(common.InvalidStructure, "claim offer has no issuer")
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	var offers []ClaimOffer
	if _, err := p.get(claimOffersKey, &offers); err != nil {
		return err
	}
	for _, o := range offers {
		if o == *offer {
			return nil
		}
	}
	return p.put(claimOffersKey, append(offers, *offer))
}

// ClaimOffers returns the stored claim offers matching the filter.
func (p *Prover) ClaimOffers(filter *ClaimFilter) ([]ClaimOffer, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	var offers []ClaimOffer
	if _, err := p.get(claimOffersKey, &offers); err != nil {
		return nil, err
	}
	result := make([]ClaimOffer, 0, len(offers))
	for _, o := range offers {
		if filter.matches(o.IssuerDID, o.SchemaSeqNo) {
			result = append(result, o)
		}
	}
	return result, nil
}

func requestKey(issuerDID string, schemaSeqNo int) string {
	return fmt.Sprintf("%s%s/%d", claimRequestPrefix, issuerDID, schemaSeqNo)
}

// CreateClaimRequest creates a request for the claim offered in offer, binding it to the
// specified master secret. The metadata needed to store the resulting claim is kept in the
// store.
func (p *Prover) CreateClaimRequest(msName, proverDID string, offer *ClaimOffer) (*ClaimRequest, error) {
	if offer == nil {
		return nil, common.Errorf(common.InvalidStructure, "no claim offer")
	}
	def, err := p.resolver.ClaimDef(offer.IssuerDID, offer.SchemaSeqNo)
	if err != nil {
		return nil, common.WrapError(common.MissingPublicData, err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	ms, err := p.masterSecret(msName)
	if err != nil {
		return nil, err
	}
	req, meta, err := NewClaimRequest(def, ms, proverDID, offer)
	if err != nil {
		return nil, err
	}
	if err = p.put(requestKey(offer.IssuerDID, offer.SchemaSeqNo), &pendingRequest{MasterSecret: msName, Metadata: meta}); err != nil {
		return nil, err
	}
	return req, nil
}

// StoreClaim processes a claim issued in response to a claim request created earlier, and
// stores it. It returns the processed claim, of which the uuid is set.
func (p *Prover) StoreClaim(claim *Claim) (*Claim, error) {
	if claim == nil {
		return nil, common.Errorf(common.InvalidStructure, "no claim")
	}
	def, schema, err := resolveClaimDef(p.resolver, claim.IssuerDID, claim.SchemaSeqNo)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	var pending pendingRequest
	exists, err := p.get(requestKey(claim.IssuerDID, claim.SchemaSeqNo), &pending)
	if err != nil {
		return nil, err
	}
	if !exists || pending.Metadata == nil {
		return nil, common.Errorf(common.InvalidStructure, "no claim request for claim of %s/%d", claim.IssuerDID, claim.SchemaSeqNo)
	}
	ms, err := p.masterSecret(pending.MasterSecret)
	if err != nil {
		return nil, err
	}

	processed, err := ProcessClaim(claim, pending.Metadata, ms, def, schema)
	if err != nil {
		return nil, err
	}
	if err = p.putClaim(&claimRecord{MasterSecret: pending.MasterSecret, Claim: processed}); err != nil {
		return nil, err
	}
	var index []string
	if _, err = p.get(claimIndexKey, &index); err != nil {
		return nil, err
	}
	if err = p.put(claimIndexKey, append(index, processed.UUID)); err != nil {
		return nil, err
	}

	Logger.WithFields(logrus.Fields{"claim": processed.UUID, "issuer": processed.IssuerDID}).Debug("stored claim")
	return processed, nil
}

func (p *Prover) putClaim(rec *claimRecord) error {
	return p.put(claimPrefix+rec.Claim.UUID, rec)
}

func (p *Prover) claim(uuid string) (*claimRecord, error) {
	rec := &claimRecord{}
	exists, err := p.get(claimPrefix+uuid, rec)
	if err != nil {
		return nil, err
	}
	if !exists || rec.Claim == nil {
		return nil, common.Errorf(common.MissingClaimForAttribute, "unknown claim %s", uuid)
	}
	return rec, nil
}

func (p *Prover) claims() ([]*claimRecord, error) {
	var index []string
	if _, err := p.get(claimIndexKey, &index); err != nil {
		return nil, err
	}
	records := make([]*claimRecord, 0, len(index))
	for _, uuid := range index {
		rec, err := p.claim(uuid)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

// Claims returns the stored claims matching the filter.
func (p *Prover) Claims(filter *ClaimFilter) ([]*Claim, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	records, err := p.claims()
	if err != nil {
		return nil, err
	}
	var result []*Claim
	for _, rec := range records {
		if filter.matches(rec.Claim.IssuerDID, rec.Claim.SchemaSeqNo) {
			result = append(result, rec.Claim)
		}
	}
	return result, nil
}

// ClaimsForProofRequest returns the claims with which the attributes and predicates of the
// proof request can be proven. Only claims satisfying a predicate are listed for it.
func (p *Prover) ClaimsForProofRequest(req *ProofRequest) (*ClaimsForProofRequest, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	records, err := p.claims()
	if err != nil {
		return nil, err
	}

	result := &ClaimsForProofRequest{Attrs: map[string][]*Claim{}, Predicates: map[string][]*Claim{}}
	for id, info := range req.RequestedAttrs {
		result.Attrs[id] = []*Claim{}
		for _, rec := range records {
			if _, ok := rec.Claim.Attrs[info.Name]; !ok {
				continue
			}
			if info.SchemaSeqNo != nil && *info.SchemaSeqNo != rec.Claim.SchemaSeqNo {
				continue
			}
			result.Attrs[id] = append(result.Attrs[id], rec.Claim)
		}
	}
	for id, info := range req.RequestedPredicates {
		result.Predicates[id] = []*Claim{}
		for _, rec := range records {
			value, ok := rec.Claim.Attrs[info.AttrName]
			if !ok || !value.IsInteger() || !info.Satisfied(value.Encoded) {
				continue
			}
			result.Predicates[id] = append(result.Predicates[id], rec.Claim)
		}
	}
	return result, nil
}

// CreateProof creates a proof for the proof request using the stored claims referred to by
// requested, all of which must be bound to the specified master secret.
func (p *Prover) CreateProof(req *ProofRequest, requested *RequestedClaims, msName string) (*Proof, error) {
	if requested == nil {
		return nil, common.Errorf(common.InvalidStructure, "no requested claims")
	}
	p.mu.Lock()
	ms, err := p.masterSecret(msName)
	if err != nil {
		p.mu.Unlock()
		return nil, err
	}
	claims := map[string]*Claim{}
	load := func(uuid string) error {
		if _, ok := claims[uuid]; ok {
			return nil
		}
		rec, err := p.claim(uuid)
		if err != nil {
			return err
		}
		if rec.MasterSecret != msName {
			return common.Errorf(common.InvalidStructure, "claim %s is bound to master secret %s", uuid, rec.MasterSecret)
		}
		claims[uuid] = rec.Claim
		return nil
	}
	for _, ref := range requested.Attrs {
		if err = load(ref.ClaimUUID); err != nil {
			break
		}
	}
	for _, uuid := range requested.Predicates {
		if err != nil {
			break
		}
		err = load(uuid)
	}
	p.mu.Unlock()
	if err != nil {
		return nil, err
	}

	return CreateProof(req, requested, claims, ms, p.resolver)
}

// UpdateWitness applies the specified update messages of its revocation registry to the
// witness of the stored claim, and stores the result.
func (p *Prover) UpdateWitness(claimUUID string, updates []signed.Message) (*Claim, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	rec, err := p.claim(claimUUID)
	if err != nil {
		return nil, err
	}
	def, err := p.resolver.ClaimDef(rec.Claim.IssuerDID, rec.Claim.SchemaSeqNo)
	if err != nil {
		return nil, common.WrapError(common.MissingPublicData, err)
	}
	if !def.Revocable() {
		return nil, common.Errorf(common.InvalidStructure, "claim %s is not revocable", claimUUID)
	}
	updated, err := rec.Claim.UpdateWitness(def.Revocation, updates)
	if err != nil {
		return nil, err
	}
	if err = p.putClaim(&claimRecord{MasterSecret: rec.MasterSecret, Claim: updated}); err != nil {
		return nil, err
	}
	Logger.WithFields(logrus.Fields{"claim": claimUUID, "index": updated.Witness.Index}).Debug("updated witness")
	return updated, nil
}
