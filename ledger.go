package anoncreds

import (
	"sync"

	"github.com/privacybydesign/anoncreds/internal/common"
	"github.com/privacybydesign/anoncreds/revocation"
)

type (
	// PublicDataResolver resolves the public data that proofs are built and verified against,
	// as published on a ledger.
	PublicDataResolver interface {
		Schema(seqNo int) (*Schema, error)
		ClaimDef(issuerDID string, schemaSeqNo int) (*ClaimDef, error)
		RevocationRegistry(seqNo int) (*revocation.RegistryState, error)
	}

	// PublicData is an in-memory PublicDataResolver.
	PublicData struct {
		mu         sync.RWMutex
		schemas    map[int]*Schema
		claimDefs  map[claimDefKey]*ClaimDef
		registries map[int]*revocation.RegistryState
	}

	claimDefKey struct {
		issuerDID   string
		schemaSeqNo int
	}
)

func NewPublicData() *PublicData {
	return &PublicData{
		schemas:    map[int]*Schema{},
		claimDefs:  map[claimDefKey]*ClaimDef{},
		registries: map[int]*revocation.RegistryState{},
	}
}

func (d *PublicData) AddSchema(seqNo int, schema *Schema) error {
	if err := schema.Validate(); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.schemas[seqNo] = schema
	return nil
}

// AddClaimDef stores the claim definition published by the specified issuer.
func (d *PublicData) AddClaimDef(issuerDID string, def *ClaimDef) error {
	if issuerDID == "" || (def.IssuerDID != "" && def.IssuerDID != issuerDID) {
		return common.Errorf(common.InvalidStructure, "claim definition of %q published by %q", def.IssuerDID, issuerDID)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	schema, ok := d.schemas[def.SchemaSeqNo]
	if !ok {
		return common.Errorf(common.MissingPublicData, "unknown schema %d", def.SchemaSeqNo)
	}
	if err := def.Validate(schema); err != nil {
		return err
	}
	published := *def
	published.IssuerDID = issuerDID
	d.claimDefs[claimDefKey{issuerDID, def.SchemaSeqNo}] = &published
	return nil
}

// SetRevocationRegistry stores the current state of a registry, replacing the previous one.
func (d *PublicData) SetRevocationRegistry(state *revocation.RegistryState) {
	d.mu.Lock()
	defer d.mu.Unlock()
	s := *state
	d.registries[state.SeqNo] = &s
}

func (d *PublicData) Schema(seqNo int) (*Schema, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if s, ok := d.schemas[seqNo]; ok {
		return s, nil
	}
	return nil, common.Errorf(common.MissingPublicData, "unknown schema %d", seqNo)
}

func (d *PublicData) ClaimDef(issuerDID string, schemaSeqNo int) (*ClaimDef, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if def, ok := d.claimDefs[claimDefKey{issuerDID, schemaSeqNo}]; ok {
		return def, nil
	}
	return nil, common.Errorf(common.MissingPublicData, "unknown claim definition %s/%d", issuerDID, schemaSeqNo)
}

func (d *PublicData) RevocationRegistry(seqNo int) (*revocation.RegistryState, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if s, ok := d.registries[seqNo]; ok {
		state := *s
		return &state, nil
	}
	return nil, common.Errorf(common.MissingPublicData, "unknown revocation registry %d", seqNo)
}

// resolveClaimDef resolves the schema and claim definition of a claim.
func resolveClaimDef(resolver PublicDataResolver, issuerDID string, schemaSeqNo int) (*ClaimDef, *Schema, error) {
	schema, err := resolver.Schema(schemaSeqNo)
	if err != nil {
		return nil, nil, common.WrapError(common.MissingPublicData, err)
	}
	def, err := resolver.ClaimDef(issuerDID, schemaSeqNo)
	if err != nil {
		return nil, nil, common.WrapError(common.MissingPublicData, err)
	}
	if def.IssuerDID != issuerDID || def.SchemaSeqNo != schemaSeqNo {
		return nil, nil, common.Errorf(common.MissingPublicData, "resolved wrong claim definition for %s/%d", issuerDID, schemaSeqNo)
	}
	if err = def.Validate(schema); err != nil {
		return nil, nil, err
	}
	return def, schema, nil
}
