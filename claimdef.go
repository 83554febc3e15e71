package anoncreds

import (
	"context"

	"github.com/go-errors/errors"
	"github.com/sirupsen/logrus"

	"github.com/privacybydesign/anoncreds/internal/common"
	"github.com/privacybydesign/anoncreds/keys"
	"github.com/privacybydesign/anoncreds/revocation"
)

type (
	// ClaimDef is the public part of a claim definition: the keys with which an issuer signs
	// claims of a schema. R[0] of the primary key is the base of the master secret, R[1..k] the
	// bases of the schema attributes in schema order and, if the definition is revocable,
	// R[k+1] the base of the revocation attribute.
	//
	// The issuer DID is not part of the JSON form; the ledger stores a definition under the DID
	// that published it.
	ClaimDef struct {
		IssuerDID     string                `json:"-"`
		SchemaSeqNo   int                   `json:"schema_seq_no"`
		SignatureType string                `json:"signature_type"`
		PublicKey     *keys.PublicKey       `json:"primary_key"`
		Revocation    *revocation.PublicKey `json:"revocation_key,omitempty"`
	}

	// ClaimDefPrivateKey is the private part of a claim definition.
	ClaimDefPrivateKey struct {
		Primary    *keys.PrivateKey       `json:"primary_key"`
		Revocation *revocation.PrivateKey `json:"revocation_key,omitempty"`
	}
)

// SignatureTypeCL is the only supported signature type.
const SignatureTypeCL = "CL"

// NewClaimDef generates the keys of a new claim definition for the specified schema. If params
// is nil the default 2048 bit parameters are used.
func NewClaimDef(ctx context.Context, issuerDID string, schemaSeqNo int, schema *Schema, params *keys.SystemParameters, revocable bool) (*ClaimDef, *ClaimDefPrivateKey, error) {
	if err := schema.Validate(); err != nil {
		return nil, nil, err
	}
	if params == nil {
		params = keys.DefaultSystemParameters[2048]
	}

	bases := 1 + len(schema.AttrNames)
	if revocable {
		bases++
	}
	sk, pk, err := keys.GenerateKeyPair(ctx, params, bases)
	if err != nil {
		return nil, nil, err
	}

	def := &ClaimDef{IssuerDID: issuerDID, SchemaSeqNo: schemaSeqNo, SignatureType: SignatureTypeCL, PublicKey: pk}
	priv := &ClaimDefPrivateKey{Primary: sk}
	if revocable {
		if priv.Revocation, def.Revocation, err = revocation.GenerateKeys(sk.N, sk.PPrime, sk.QPrime); err != nil {
			return nil, nil, err
		}
	}

	Logger.WithFields(logrus.Fields{
		"issuer":    issuerDID,
		"schema":    schemaSeqNo,
		"keylength": params.Ln,
		"revocable": revocable,
	}).Info("generated claim definition")
	return def, priv, nil
}

// Revocable reports whether claims of this definition carry a revocation attribute.
func (def *ClaimDef) Revocable() bool {
	return def.Revocation != nil
}

// revocationIndex returns the index of the base of the revocation attribute.
func (def *ClaimDef) revocationIndex() int {
	return len(def.PublicKey.R) - 1
}

// Validate checks that the claim definition is complete and that it has a base for every
// attribute of the schema.
func (def *ClaimDef) Validate(schema *Schema) error {
	if def.SignatureType != SignatureTypeCL {
		return common.Errorf(common.InvalidStructure, "unsupported signature type %q", def.SignatureType)
	}
	if def.PublicKey == nil {
		return common.Errorf(common.InvalidStructure, "claim definition has no primary key")
	}
	if err := def.PublicKey.Validate(); err != nil {
		return common.WrapError(common.InvalidStructure, err)
	}
	if def.PublicKey.Params == nil {
		return common.Errorf(common.InvalidStructure, "claim definition has unknown keylength")
	}
	expected := 1 + len(schema.AttrNames)
	if def.Revocable() {
		expected++
		if def.Revocation.Group == nil || def.Revocation.ECDSA == nil {
			return common.Errorf(common.InvalidStructure, "incomplete revocation key")
		}
	}
	if len(def.PublicKey.R) != expected {
		return common.WrapError(common.InvalidStructure,
			errors.Errorf("claim definition has %d bases, schema requires %d", len(def.PublicKey.R), expected))
	}
	return nil
}
