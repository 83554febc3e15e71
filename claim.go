package anoncreds

import (
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/privacybydesign/anoncreds/big"
	"github.com/privacybydesign/anoncreds/internal/common"
	"github.com/privacybydesign/anoncreds/revocation"
	"github.com/privacybydesign/anoncreds/signed"
)

// Claim is a CL signature over the holder's master secret and the attribute values of a schema,
// along with, for revocable claims, the witness with which the holder proves nonrevocation.
type Claim struct {
	UUID                      string                    `json:"claim_uuid,omitempty"`
	Attrs                     map[string]AttributeValue `json:"attrs"`
	Signature                 *CLSignature              `json:"signature"`
	SignatureCorrectnessProof *ProofS                   `json:"signature_correctness_proof,omitempty"`
	SchemaSeqNo               int                       `json:"schema_seq_no"`
	IssuerDID                 string                    `json:"issuer_did"`
	RevocRegSeqNo             *int                      `json:"revoc_reg_seq_no,omitempty"`
	Witness                   *revocation.Witness       `json:"non_revoc_witness,omitempty"`
}

// checkAttributes checks that the values cover exactly the schema attributes and that every
// encoding is canonical.
func checkAttributes(values map[string]AttributeValue, schema *Schema) error {
	if len(values) != len(schema.AttrNames) {
		return common.Errorf(common.InvalidStructure, "got %d attribute values, schema has %d attributes",
			len(values), len(schema.AttrNames))
	}
	for _, name := range schema.AttrNames {
		value, ok := values[name]
		if !ok {
			return common.Errorf(common.InvalidStructure, "missing value for attribute %s", name)
		}
		if !value.Canonical() {
			return common.Errorf(common.InvalidStructure, "attribute %s has non-canonical encoding", name)
		}
	}
	return nil
}

// messages returns the signed messages of the claim in the order of the bases of the public
// key of def: the master secret, the schema attributes and the revocation attribute.
func (c *Claim) messages(ms *big.Int, def *ClaimDef, schema *Schema) []*big.Int {
	msgs := make([]*big.Int, 0, len(def.PublicKey.R))
	msgs = append(msgs, ms)
	for _, name := range schema.AttrNames {
		msgs = append(msgs, c.Attrs[name].Encoded)
	}
	if def.Revocable() {
		msgs = append(msgs, c.revocationAttribute())
	}
	return msgs
}

// revocationAttribute returns the value of the revocation attribute, which is 0 for claims
// that were issued without a revocation registry.
func (c *Claim) revocationAttribute() *big.Int {
	if c.Witness == nil {
		return big.NewInt(0)
	}
	return c.Witness.E
}

// validate checks the structure of the claim against its claim definition and schema.
func (c *Claim) validate(def *ClaimDef, schema *Schema) error {
	if c.IssuerDID != def.IssuerDID || c.SchemaSeqNo != def.SchemaSeqNo {
		return common.Errorf(common.InvalidStructure, "claim is of claim definition %s/%d", c.IssuerDID, c.SchemaSeqNo)
	}
	if err := def.Validate(schema); err != nil {
		return err
	}
	if err := checkAttributes(c.Attrs, schema); err != nil {
		return err
	}
	s := c.Signature
	if s == nil || s.A == nil || s.E == nil || s.V == nil {
		return common.Errorf(common.InvalidStructure, "claim has no signature")
	}
	if (c.RevocRegSeqNo == nil) != (c.Witness == nil) {
		return common.Errorf(common.InvalidStructure, "revocation registry and witness must be present together")
	}
	if c.Witness != nil && !def.Revocable() {
		return common.Errorf(common.InvalidStructure, "claim definition is not revocable")
	}
	return nil
}

// ProcessClaim verifies the claim issued in response to the claim request of which meta is the
// metadata, and completes its signature with the blinding factor of the request. The returned
// claim has been assigned its uuid.
func ProcessClaim(claim *Claim, meta *ClaimRequestMetadata, ms *big.Int, def *ClaimDef, schema *Schema) (*Claim, error) {
	if meta.Offer.IssuerDID != claim.IssuerDID || meta.Offer.SchemaSeqNo != claim.SchemaSeqNo {
		return nil, common.Errorf(common.InvalidStructure, "claim does not match claim offer")
	}
	if err := claim.validate(def, schema); err != nil {
		return nil, err
	}
	if claim.SignatureCorrectnessProof == nil {
		return nil, common.Errorf(common.InvalidStructure, "claim has no signature correctness proof")
	}

	pk := def.PublicKey
	context := issuanceContext(def.IssuerDID, def.SchemaSeqNo, meta.ProverDID)
	if !claim.SignatureCorrectnessProof.Verify(pk, claim.Signature, context, meta.Nonce) {
		return nil, common.Errorf(common.ProofInvalid, "signature correctness proof invalid")
	}

	result := *claim
	result.Signature = &CLSignature{
		A: claim.Signature.A,
		E: claim.Signature.E,
		V: new(big.Int).Add(claim.Signature.V, meta.VPrime),
	}
	if !result.Signature.Verify(pk, result.messages(ms, def, schema)) {
		return nil, common.Errorf(common.ProofInvalid, "claim signature invalid")
	}
	if result.Witness != nil {
		if err := result.Witness.Verify(def.Revocation); err != nil {
			return nil, common.WrapError(common.ProofInvalid, err)
		}
	}

	result.UUID = uuid.New().String()
	Logger.WithFields(logrus.Fields{"claim": result.UUID, "issuer": result.IssuerDID, "schema": result.SchemaSeqNo}).
		Debug("processed claim")
	return &result, nil
}

// UpdateWitness returns a copy of the claim of which the witness is updated with the specified
// update messages of the revocation registry.
func (c *Claim) UpdateWitness(pk *revocation.PublicKey, updates []signed.Message) (*Claim, error) {
	if c.Witness == nil {
		return nil, common.Errorf(common.InvalidStructure, "claim is not revocable")
	}
	witness := *c.Witness
	if err := witness.UpdateAll(pk, updates); err != nil {
		return nil, common.WrapError(common.WitnessOutOfDate, err)
	}
	result := *c
	result.Witness = &witness
	return &result, nil
}
