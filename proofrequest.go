package anoncreds

import (
	"encoding/json"
	"sort"

	"github.com/go-errors/errors"

	"github.com/privacybydesign/anoncreds/big"
	"github.com/privacybydesign/anoncreds/internal/common"
)

// PredicateType is the comparison of a predicate.
type PredicateType string

const (
	GE PredicateType = "GE"
	GT PredicateType = "GT"
	LE PredicateType = "LE"
	LT PredicateType = "LT"
)

type (
	// ProofRequest is sent by a verifier to request a proof. Requested attributes and predicates
	// are keyed by an identifier chosen by the verifier, unique across both.
	ProofRequest struct {
		Nonce               *big.Int                 `json:"nonce"`
		Name                string                   `json:"name"`
		Version             string                   `json:"version"`
		RequestedAttrs      map[string]AttributeInfo `json:"requested_attrs"`
		RequestedPredicates map[string]PredicateInfo `json:"requested_predicates"`
	}

	// AttributeInfo describes a requested attribute, optionally restricted to a schema.
	AttributeInfo struct {
		Name        string `json:"name"`
		SchemaSeqNo *int   `json:"schema_seq_no,omitempty"`
	}

	// PredicateInfo describes a requested predicate "attribute <type> value".
	PredicateInfo struct {
		AttrName string        `json:"attr_name"`
		PType    PredicateType `json:"p_type"`
		Value    int32         `json:"value"`
	}

	// RequestedClaims is the holder's choice of claims with which to answer a proof request.
	RequestedClaims struct {
		SelfAttested map[string]string         `json:"self_attested_attributes"`
		Attrs        map[string]ClaimReference `json:"requested_attrs"`
		Predicates   map[string]string         `json:"requested_predicates"`
	}

	// ClaimReference refers to the claim with which a requested attribute is proven. In JSON it
	// is written as [claim_uuid, reveal].
	ClaimReference struct {
		ClaimUUID string
		Reveal    bool
	}

	// RequestedItem is the answer to a requested attribute: ClaimBacked or SelfAttested.
	RequestedItem interface {
		requestedItem()
	}

	// ClaimBacked answers a requested attribute with an attribute of a claim.
	ClaimBacked struct {
		ClaimUUID string
		Reveal    bool
	}

	// SelfAttested answers a requested attribute with a value of the holder's choosing.
	SelfAttested struct {
		Value string
	}
)

func (ClaimBacked) requestedItem()  {}
func (SelfAttested) requestedItem() {}

// Validate checks that the request is well formed.
func (req *ProofRequest) Validate() error {
	if req == nil || req.Nonce == nil || req.Nonce.Sign() <= 0 {
		return common.Errorf(common.InvalidStructure, "proof request has no nonce")
	}
	if len(req.RequestedAttrs)+len(req.RequestedPredicates) == 0 {
		return common.Errorf(common.InvalidStructure, "proof request requests nothing")
	}
	for id, attr := range req.RequestedAttrs {
		if id == "" || attr.Name == "" {
			return common.Errorf(common.InvalidStructure, "requested attribute %q has no name", id)
		}
	}
	for id, pred := range req.RequestedPredicates {
		if id == "" || pred.AttrName == "" {
			return common.Errorf(common.InvalidStructure, "requested predicate %q has no attribute", id)
		}
		if _, ok := req.RequestedAttrs[id]; ok {
			return common.Errorf(common.InvalidStructure, "identifier %q used for both attribute and predicate", id)
		}
		if !pred.PType.valid() {
			return common.Errorf(common.InvalidStructure, "requested predicate %q has unknown type %q", id, pred.PType)
		}
	}
	return nil
}

func (t PredicateType) valid() bool {
	switch t {
	case GE, GT, LE, LT:
		return true
	}
	return false
}

// statement returns a and k such that the predicate holds for m if and only if a*m - k >= 0.
func (p PredicateInfo) statement() (int, *big.Int) {
	v := int64(p.Value)
	switch p.PType {
	case GT:
		return 1, big.NewInt(v + 1)
	case LE:
		return -1, big.NewInt(-v)
	case LT:
		return -1, big.NewInt(1 - v)
	default:
		return 1, big.NewInt(v)
	}
}

// Satisfied reports whether the predicate holds for the specified value.
func (p PredicateInfo) Satisfied(m *big.Int) bool {
	a, k := p.statement()
	delta := new(big.Int).Mul(m, big.NewInt(int64(a)))
	return delta.Sub(delta, k).Sign() >= 0
}

// Item returns the answer to the requested attribute with the specified identifier.
func (r *RequestedClaims) Item(id string) (RequestedItem, bool) {
	if ref, ok := r.Attrs[id]; ok {
		return ClaimBacked(ref), true
	}
	if value, ok := r.SelfAttested[id]; ok {
		return SelfAttested{Value: value}, true
	}
	return nil, false
}

// Validate checks that the requested claims answer the proof request without ambiguity.
func (r *RequestedClaims) Validate(req *ProofRequest) error {
	for id := range r.SelfAttested {
		if _, ok := r.Attrs[id]; ok {
			return common.Errorf(common.InvalidStructure, "attribute %q both self attested and claim backed", id)
		}
		if _, ok := req.RequestedAttrs[id]; !ok {
			return common.Errorf(common.InvalidStructure, "self attested attribute %q was not requested", id)
		}
	}
	for id, ref := range r.Attrs {
		if _, ok := req.RequestedAttrs[id]; !ok {
			return common.Errorf(common.InvalidStructure, "attribute %q was not requested", id)
		}
		if ref.ClaimUUID == "" {
			return common.Errorf(common.InvalidStructure, "attribute %q refers to no claim", id)
		}
	}
	for id, claimUUID := range r.Predicates {
		if _, ok := req.RequestedPredicates[id]; !ok {
			return common.Errorf(common.InvalidStructure, "predicate %q was not requested", id)
		}
		if claimUUID == "" {
			return common.Errorf(common.InvalidStructure, "predicate %q refers to no claim", id)
		}
	}
	return nil
}

func (ref ClaimReference) MarshalJSON() ([]byte, error) {
	return json.Marshal([]interface{}{ref.ClaimUUID, ref.Reveal})
}

func (ref *ClaimReference) UnmarshalJSON(bts []byte) error {
	var parts []json.RawMessage
	if err := json.Unmarshal(bts, &parts); err != nil {
		return err
	}
	if len(parts) != 2 {
		return errors.Errorf("claim reference must have 2 elements, has %d", len(parts))
	}
	if err := json.Unmarshal(parts[0], &ref.ClaimUUID); err != nil {
		return err
	}
	return json.Unmarshal(parts[1], &ref.Reveal)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
