package anoncreds

import (
	"github.com/go-errors/errors"

	"github.com/privacybydesign/anoncreds/big"
	"github.com/privacybydesign/anoncreds/internal/common"
	"github.com/privacybydesign/anoncreds/keys"
)

type (
	// ClaimOffer announces that an issuer is willing to issue a claim of a schema.
	ClaimOffer struct {
		IssuerDID   string `json:"issuer_did"`
		SchemaSeqNo int    `json:"schema_seq_no"`
	}

	// BlindedMasterSecret is the commitment U = S^v' * R_0^ms to the holder's master secret,
	// together with a proof of knowledge of its opening and the nonce to which the issuer must
	// bind its signature correctness proof.
	BlindedMasterSecret struct {
		ProverDID      string   `json:"prover_did"`
		U              *big.Int `json:"u"`
		C              *big.Int `json:"c"`
		VPrimeResponse *big.Int `json:"v_prime_response"`
		MsResponse     *big.Int `json:"ms_response"`
		Nonce          *big.Int `json:"nonce"`
	}

	// ClaimRequest is sent by the holder to the issuer to request a claim.
	ClaimRequest struct {
		BlindedMS   *BlindedMasterSecret `json:"blinded_ms"`
		SchemaSeqNo int                  `json:"schema_seq_no"`
		IssuerDID   string               `json:"issuer_did"`
	}

	// ClaimRequestMetadata is kept by the holder to process the claim it receives.
	ClaimRequestMetadata struct {
		VPrime    *big.Int   `json:"v_prime"`
		Nonce     *big.Int   `json:"nonce"`
		Offer     ClaimOffer `json:"offer"`
		ProverDID string     `json:"prover_did"`
	}
)

const masterSecretLength = 256

// NewMasterSecret returns a new random master secret.
func NewMasterSecret() (*big.Int, error) {
	return common.RandomBigInt(masterSecretLength)
}

// GenerateNonce generates a nonce for use in proofs.
func GenerateNonce() (*big.Int, error) {
	return common.RandomBigInt(keys.DefaultSystemParameters[4096].Lstatzk)
}

// issuanceContext binds the proofs of the issuance protocol to the issuer, the schema and the
// holder.
func issuanceContext(issuerDID string, schemaSeqNo int, proverDID string) *big.Int {
	return common.HashCommit([]*big.Int{
		common.IntHashSha256([]byte(issuerDID)),
		big.NewInt(int64(schemaSeqNo)),
		common.IntHashSha256([]byte(proverDID)),
	})
}

// NewClaimRequest commits to the master secret ms for a claim of the specified claim
// definition, returning the request for the issuer and the metadata needed to process the
// resulting claim.
func NewClaimRequest(def *ClaimDef, ms *big.Int, proverDID string, offer *ClaimOffer) (*ClaimRequest, *ClaimRequestMetadata, error) {
	if offer == nil || offer.IssuerDID != def.IssuerDID || offer.SchemaSeqNo != def.SchemaSeqNo {
		return nil, nil, common.Errorf(common.InvalidStructure, "claim offer does not match claim definition")
	}
	if ms == nil || ms.Sign() < 0 {
		return nil, nil, common.Errorf(common.InvalidStructure, "invalid master secret")
	}
	pk := def.PublicKey

	vPrime, err := common.RandomBigInt(pk.Params.LvPrime)
	if err != nil {
		return nil, nil, err
	}
	nonce, err := GenerateNonce()
	if err != nil {
		return nil, nil, err
	}

	// U = S^{vPrime} * R_0^{ms}
	U := new(big.Int).Exp(pk.S, vPrime, pk.N)
	U.Mul(U, new(big.Int).Exp(pk.R[0], ms, pk.N)).Mod(U, pk.N)

	vPrimeRandomizer, err := common.RandomBigInt(pk.Params.LvPrimeCommit)
	if err != nil {
		return nil, nil, err
	}
	msRandomizer, err := common.RandomBigInt(pk.Params.LmCommit)
	if err != nil {
		return nil, nil, err
	}

	// Ucommit = S^{vPrimeRandomizer} * R_0^{msRandomizer}
	Ucommit := new(big.Int).Exp(pk.S, vPrimeRandomizer, pk.N)
	Ucommit.Mul(Ucommit, new(big.Int).Exp(pk.R[0], msRandomizer, pk.N)).Mod(Ucommit, pk.N)

	context := issuanceContext(def.IssuerDID, def.SchemaSeqNo, proverDID)
	c := common.HashCommit([]*big.Int{context, U, Ucommit, nonce})

	vPrimeResponse := new(big.Int).Add(vPrimeRandomizer, new(big.Int).Mul(c, vPrime))
	msResponse := new(big.Int).Add(msRandomizer, new(big.Int).Mul(c, ms))

	req := &ClaimRequest{
		BlindedMS: &BlindedMasterSecret{
			ProverDID:      proverDID,
			U:              U,
			C:              c,
			VPrimeResponse: vPrimeResponse,
			MsResponse:     msResponse,
			Nonce:          nonce,
		},
		SchemaSeqNo: def.SchemaSeqNo,
		IssuerDID:   def.IssuerDID,
	}
	meta := &ClaimRequestMetadata{
		VPrime:    vPrime,
		Nonce:     nonce,
		Offer:     *offer,
		ProverDID: proverDID,
	}
	return req, meta, nil
}

// correctResponseSizes checks the sizes of the responses in the proof.
func (b *BlindedMasterSecret) correctResponseSizes(pk *keys.PublicKey) bool {
	minimum := big.NewInt(0)
	maximum := new(big.Int).Lsh(bigOne, pk.Params.LvPrimeCommit+1)
	maximum.Sub(maximum, bigOne)
	if b.VPrimeResponse.Cmp(minimum) < 0 || b.VPrimeResponse.Cmp(maximum) > 0 {
		return false
	}

	maximum.Lsh(bigOne, pk.Params.LmCommit+1)
	maximum.Sub(maximum, bigOne)
	return b.MsResponse.Cmp(minimum) >= 0 && b.MsResponse.Cmp(maximum) <= 0
}

// reconstructUcommit reconstructs Ucommit from the information in the proof and the
// provided public key.
func (b *BlindedMasterSecret) reconstructUcommit(pk *keys.PublicKey) (*big.Int, error) {
	// U_commit = U^{-C} * S^{VPrimeResponse} * R_0^{MsResponse}
	Uc, err := common.ModPow(b.U, new(big.Int).Neg(b.C), pk.N)
	if err != nil {
		return nil, err
	}
	Sv := new(big.Int).Exp(pk.S, b.VPrimeResponse, pk.N)
	R0s := new(big.Int).Exp(pk.R[0], b.MsResponse, pk.N)

	Ucommit := new(big.Int).Mul(Uc, Sv)
	Ucommit.Mul(Ucommit, R0s).Mod(Ucommit, pk.N)
	return Ucommit, nil
}

// Verify checks that the request is addressed to the specified claim definition and that the
// proof of knowledge of the committed master secret is correct.
func (req *ClaimRequest) Verify(def *ClaimDef) error {
	if req.IssuerDID != def.IssuerDID || req.SchemaSeqNo != def.SchemaSeqNo {
		return common.Errorf(common.InvalidStructure, "claim request is for claim definition %s/%d",
			req.IssuerDID, req.SchemaSeqNo)
	}
	b := req.BlindedMS
	if b == nil || b.U == nil || b.C == nil || b.VPrimeResponse == nil || b.MsResponse == nil || b.Nonce == nil {
		return common.Errorf(common.InvalidStructure, "incomplete claim request")
	}

	pk := def.PublicKey
	if b.U.Sign() <= 0 || b.U.Cmp(pk.N) >= 0 {
		return common.Errorf(common.InvalidClaimRequest, "commitment out of range")
	}
	if !b.correctResponseSizes(pk) {
		return common.Errorf(common.InvalidClaimRequest, "oversized responses")
	}
	Ucommit, err := b.reconstructUcommit(pk)
	if err != nil {
		return common.WrapError(common.InvalidClaimRequest, errors.WrapPrefix(err, "could not reconstruct commitment", 0))
	}

	context := issuanceContext(req.IssuerDID, req.SchemaSeqNo, b.ProverDID)
	if common.HashCommit([]*big.Int{context, b.U, Ucommit, b.Nonce}).Cmp(b.C) != 0 {
		return common.Errorf(common.InvalidClaimRequest, "proof of correctness of commitment failed")
	}
	return nil
}
