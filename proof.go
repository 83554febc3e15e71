package anoncreds

import (
	"encoding/json"

	"github.com/go-errors/errors"

	"github.com/privacybydesign/anoncreds/big"
)

type (
	// Proof answers a ProofRequest. Requested maps each requested attribute and predicate to
	//   [claim_uuid, raw, encoded] for revealed attributes,
	//   [claim_uuid] for hidden attributes and predicates,
	//   [value] for self attested attributes.
	// Proofs over the claims are keyed by claim uuid in ClaimProofs.
	Proof struct {
		Requested   map[string][]string    `json:"requested"`
		ClaimProofs map[string]*ClaimProof `json:"claim_proofs"`
		Aggregated  AggregatedProof        `json:"aggregated_proof"`
	}

	// ClaimProof is the proof over a single claim. In JSON it is written as
	// [proof, issuer_did, schema_seq_no, revoc_reg_seq_no].
	ClaimProof struct {
		Proof         *PrimaryProof
		IssuerDID     string
		SchemaSeqNo   int
		RevocRegSeqNo *int
	}

	// AggregatedProof contains the challenge and the commitments it was computed over.
	AggregatedProof struct {
		CHash *big.Int   `json:"c_hash"`
		CList []*big.Int `json:"c_list"`
	}
)

func (cp *ClaimProof) MarshalJSON() ([]byte, error) {
	return json.Marshal([]interface{}{cp.Proof, cp.IssuerDID, cp.SchemaSeqNo, cp.RevocRegSeqNo})
}

func (cp *ClaimProof) UnmarshalJSON(bts []byte) error {
	var parts []json.RawMessage
	if err := json.Unmarshal(bts, &parts); err != nil {
		return err
	}
	if len(parts) != 4 {
		return errors.Errorf("claim proof must have 4 elements, has %d", len(parts))
	}
	var tmp ClaimProof
	for i, dst := range []interface{}{&tmp.Proof, &tmp.IssuerDID, &tmp.SchemaSeqNo, &tmp.RevocRegSeqNo} {
		if err := json.Unmarshal(parts[i], dst); err != nil {
			return err
		}
	}
	if tmp.Proof == nil {
		return errors.New("claim proof is empty")
	}
	*cp = tmp
	return nil
}
