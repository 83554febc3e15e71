package anoncreds

import (
	"crypto/rand"
	"sync"

	"github.com/go-errors/errors"
	"github.com/sirupsen/logrus"

	"github.com/privacybydesign/anoncreds/big"
	"github.com/privacybydesign/anoncreds/internal/common"
	"github.com/privacybydesign/anoncreds/revocation"
	"github.com/privacybydesign/anoncreds/signed"
)

type (
	// Issuer issues claims of a single claim definition, and manages its revocation registries.
	Issuer struct {
		def    *ClaimDef
		sk     *ClaimDefPrivateKey
		schema *Schema

		mu         sync.Mutex
		registries map[int]*revocation.Registry
	}

	// RevocationOptions selects the registry in which a claim is issued and optionally the
	// index within that registry. If UserRevocIndex is nil the smallest free index is used.
	RevocationOptions struct {
		RegSeqNo       int     `json:"revoc_reg_seq_no"`
		UserRevocIndex *uint64 `json:"user_revoc_index,omitempty"`
	}
)

// NewIssuer creates a new claim issuer.
func NewIssuer(def *ClaimDef, sk *ClaimDefPrivateKey, schema *Schema) (*Issuer, error) {
	if err := schema.Validate(); err != nil {
		return nil, err
	}
	if err := def.Validate(schema); err != nil {
		return nil, err
	}
	if def.IssuerDID == "" {
		return nil, common.Errorf(common.InvalidStructure, "claim definition has no issuer DID")
	}
	if sk == nil || sk.Primary == nil || sk.Primary.N.Cmp(def.PublicKey.N) != 0 {
		return nil, common.Errorf(common.InvalidStructure, "private key does not match claim definition")
	}
	if def.Revocable() != (sk.Revocation != nil) {
		return nil, common.Errorf(common.InvalidStructure, "revocation keys incomplete")
	}
	return &Issuer{def: def, sk: sk, schema: schema, registries: map[int]*revocation.Registry{}}, nil
}

func (i *Issuer) ClaimDef() *ClaimDef {
	return i.def
}

// CreateRevocationRegistry creates a registry for at most maxClaimNum claims, committing its
// state to committer if not nil. It returns the public state of the registry and its initial
// update message.
func (i *Issuer) CreateRevocationRegistry(seqNo int, maxClaimNum uint64, committer revocation.Committer) (*revocation.RegistryState, signed.Message, error) {
	if !i.def.Revocable() {
		return nil, nil, common.Errorf(common.InvalidStructure, "claim definition is not revocable")
	}
	i.mu.Lock()
	defer i.mu.Unlock()
	if _, ok := i.registries[seqNo]; ok {
		return nil, nil, common.Errorf(common.InvalidStructure, "revocation registry %d already exists", seqNo)
	}

	reg, msg, err := revocation.NewRegistry(i.sk.Revocation, i.def.Revocation, i.def.IssuerDID, i.def.SchemaSeqNo, seqNo, maxClaimNum, committer)
	if err != nil {
		return nil, nil, err
	}
	i.registries[seqNo] = reg
	state := reg.State()
	return &state, msg, nil
}

// OpenRevocationRegistry resumes a registry previously created with db as committer.
func (i *Issuer) OpenRevocationRegistry(db *revocation.DB, seqNo int) (*revocation.RegistryState, error) {
	if !i.def.Revocable() {
		return nil, common.Errorf(common.InvalidStructure, "claim definition is not revocable")
	}
	reg, err := db.OpenRegistry(i.sk.Revocation, i.def.Revocation, seqNo)
	if err != nil {
		return nil, err
	}
	i.mu.Lock()
	defer i.mu.Unlock()
	i.registries[seqNo] = reg
	state := reg.State()
	return &state, nil
}

// RevocationRegistry returns the current public state of the specified registry.
func (i *Issuer) RevocationRegistry(seqNo int) (*revocation.RegistryState, error) {
	reg, err := i.registry(seqNo)
	if err != nil {
		return nil, err
	}
	state := reg.State()
	return &state, nil
}

func (i *Issuer) registry(seqNo int) (*revocation.Registry, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	reg, ok := i.registries[seqNo]
	if !ok {
		return nil, common.Errorf(common.InvalidStructure, "unknown revocation registry %d", seqNo)
	}
	return reg, nil
}

// CreateClaim issues a claim over the specified attribute values to the holder of the claim
// request. Values whose encoding is nil are encoded canonically. If rev is not nil the claim
// is issued in the specified revocation registry; the returned update message then has to be
// published so that other holders can update their witnesses.
func (i *Issuer) CreateClaim(req *ClaimRequest, values map[string]AttributeValue, rev *RevocationOptions) (*Claim, signed.Message, error) {
	if err := req.Verify(i.def); err != nil {
		return nil, nil, err
	}
	if rev != nil && !i.def.Revocable() {
		return nil, nil, common.Errorf(common.InvalidStructure, "claim definition is not revocable")
	}

	attrs := make(map[string]AttributeValue, len(values))
	for name, value := range values {
		if value.Encoded == nil {
			value = NewAttributeValue(value.Raw)
		}
		attrs[name] = value
	}
	if err := checkAttributes(attrs, i.schema); err != nil {
		return nil, nil, err
	}

	claim := &Claim{
		Attrs:       attrs,
		SchemaSeqNo: i.def.SchemaSeqNo,
		IssuerDID:   i.def.IssuerDID,
	}

	// The master secret is contained in U, so skip the first generator
	msgs := claim.messages(big.NewInt(0), i.def, i.schema)[1:]
	pk := i.def.PublicKey
	context := issuanceContext(i.def.IssuerDID, i.def.SchemaSeqNo, req.BlindedMS.ProverDID)
	sign := func(e *big.Int) (err error) {
		if e != nil {
			msgs[len(msgs)-1] = e
		}
		if claim.Signature, err = signMessageBlockAndCommitment(i.sk.Primary, pk, req.BlindedMS.U, msgs, pk.R[1:]); err != nil {
			return err
		}
		claim.SignatureCorrectnessProof, err = proveSignature(i.sk.Primary, pk, claim.Signature, context, req.BlindedMS.Nonce)
		return err
	}

	// A registry index is only consumed once the claim over its tail is signed
	var update signed.Message
	if rev != nil {
		reg, err := i.registry(rev.RegSeqNo)
		if err != nil {
			return nil, nil, err
		}
		if claim.Witness, update, err = reg.Issue(rev.UserRevocIndex, sign); err != nil {
			return nil, nil, err
		}
		seqNo := rev.RegSeqNo
		claim.RevocRegSeqNo = &seqNo
	} else if err := sign(nil); err != nil {
		return nil, nil, err
	}

	fields := logrus.Fields{"issuer": i.def.IssuerDID, "schema": i.def.SchemaSeqNo}
	if claim.Witness != nil {
		fields["registry"] = rev.RegSeqNo
		fields["index"] = claim.Witness.RegIndex
	}
	Logger.WithFields(fields).Debug("issued claim")
	return claim, update, nil
}

// Revoke revokes the claim at the specified index of the specified registry, returning the
// update message to publish.
func (i *Issuer) Revoke(regSeqNo int, index uint64) (signed.Message, error) {
	reg, err := i.registry(regSeqNo)
	if err != nil {
		return nil, err
	}
	return reg.Revoke(index)
}

// randomElementMultiplicativeGroup returns a random element in the
// multiplicative group Z_{modulus}^*.
func randomElementMultiplicativeGroup(modulus *big.Int) (*big.Int, error) {
	r := big.NewInt(0)
	t := new(big.Int)
	for r.Sign() <= 0 || t.GCD(nil, nil, r, modulus).Cmp(bigOne) != 0 {
		var err error
		if r, err = big.RandInt(rand.Reader, modulus); err != nil {
			return nil, errors.WrapPrefix(err, "failed to generate random element", 0)
		}
	}
	return r, nil
}
