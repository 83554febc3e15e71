package anoncreds

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/privacybydesign/anoncreds/big"
	"github.com/privacybydesign/anoncreds/internal/common"
	"github.com/privacybydesign/anoncreds/keys"
)

func TestEncodeAttribute(t *testing.T) {
	assert.Equal(t, 0, EncodeAttribute("28").Cmp(big.NewInt(28)))
	assert.Equal(t, 0, EncodeAttribute("0").Cmp(big.NewInt(0)))
	assert.Equal(t, 0, EncodeAttribute("2147483647").Cmp(big.NewInt(2147483647)))

	for _, raw := range []string{"Alex", "2147483648", "-1", "", "1.5", "028", "+28", "-0", "00"} {
		assert.Equal(t, 0, EncodeAttribute(raw).Cmp(common.IntHashSha256([]byte(raw))), raw)
		assert.False(t, NewAttributeValue(raw).IsInteger(), raw)
	}
	assert.True(t, NewAttributeValue("28").IsInteger())
	assert.True(t, NewAttributeValue("Alex").Canonical())
	assert.False(t, AttributeValue{Raw: "28", Encoded: big.NewInt(29)}.Canonical())
	assert.False(t, AttributeValue{Raw: "28"}.Canonical())
}

func TestAttributeValueJSON(t *testing.T) {
	bts, err := json.Marshal(NewAttributeValue("28"))
	require.NoError(t, err)
	require.Equal(t, `["28","28"]`, string(bts))

	var value AttributeValue
	require.NoError(t, json.Unmarshal([]byte(`["Alex","123"]`), &value))
	require.Equal(t, "Alex", value.Raw)
	require.Equal(t, 0, value.Encoded.Cmp(big.NewInt(123)))

	require.Error(t, json.Unmarshal([]byte(`["Alex"]`), &value))
	require.Error(t, json.Unmarshal([]byte(`["Alex","abc"]`), &value))
	_, err = json.Marshal(AttributeValue{Raw: "Alex"})
	require.Error(t, err)
}

func TestSchemaValidate(t *testing.T) {
	require.NoError(t, gvtSchema.Validate())
	require.Equal(t, 1, gvtSchema.AttributeIndex("age"))
	require.Equal(t, -1, gvtSchema.AttributeIndex("phone"))

	for _, schema := range []*Schema{
		{Name: "empty"},
		{Name: "duplicate", AttrNames: []string{"name", "name"}},
		{Name: "unnamed", AttrNames: []string{"name", ""}},
	} {
		require.ErrorIs(t, schema.Validate(), ErrInvalidSchema, schema.Name)
	}
}

func TestNewClaimDef(t *testing.T) {
	params := keys.NewSystemParameters(keys.BaseParameters{LePrime: 120, Lh: 256, Lm: 256, Ln: 256, Lstatzk: 80})
	schema := &Schema{Name: "xyz", Version: "1.0", AttrNames: []string{"status", "period"}}

	def, sk, err := NewClaimDef(context.Background(), testIssuerDID, 7, schema, params, true)
	require.NoError(t, err)
	require.True(t, def.Revocable())
	require.Len(t, def.PublicKey.R, 4)
	require.Equal(t, 3, def.revocationIndex())
	require.NotNil(t, sk.Revocation)
	require.NoError(t, def.Validate(schema))
	require.ErrorIs(t, def.Validate(gvtSchema), ErrInvalidStructure)

	def, _, err = NewClaimDef(context.Background(), testIssuerDID, 7, schema, params, false)
	require.NoError(t, err)
	require.False(t, def.Revocable())
	require.Len(t, def.PublicKey.R, 3)
	require.NoError(t, def.Validate(schema))

	_, _, err = NewClaimDef(context.Background(), testIssuerDID, 7, &Schema{Name: "empty"}, params, false)
	require.ErrorIs(t, err, ErrInvalidSchema)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err = NewClaimDef(ctx, testIssuerDID, 7, schema, nil, false)
	require.ErrorIs(t, err, context.Canceled)
}

func TestPublicData(t *testing.T) {
	ledger := NewPublicData()
	def, _ := testClaimDef(t, testKey1, testIssuerDID, gvtSchemaSeqNo, gvtSchema, false)

	require.ErrorIs(t, ledger.AddClaimDef(testIssuerDID, def), ErrMissingPublicData)
	require.ErrorIs(t, ledger.AddSchema(gvtSchemaSeqNo, &Schema{Name: "empty"}), ErrInvalidSchema)
	require.NoError(t, ledger.AddSchema(gvtSchemaSeqNo, gvtSchema))
	require.NoError(t, ledger.AddClaimDef(testIssuerDID, def))

	schema, err := ledger.Schema(gvtSchemaSeqNo)
	require.NoError(t, err)
	require.Equal(t, gvtSchema, schema)
	_, err = ledger.Schema(xyzSchemaSeqNo)
	require.ErrorIs(t, err, ErrMissingPublicData)

	_, err = ledger.ClaimDef(testIssuerDID, gvtSchemaSeqNo)
	require.NoError(t, err)
	_, err = ledger.ClaimDef(testIssuer2DID, gvtSchemaSeqNo)
	require.ErrorIs(t, err, ErrMissingPublicData)
	_, err = ledger.RevocationRegistry(testRegistrySeqNo)
	require.ErrorIs(t, err, ErrMissingPublicData)

	// a definition with too few bases for its schema
	def2, _ := testClaimDef(t, testKey2, testIssuer2DID, xyzSchemaSeqNo, xyzSchema, false)
	def2.SchemaSeqNo = gvtSchemaSeqNo
	require.ErrorIs(t, ledger.AddClaimDef(testIssuer2DID, def2), ErrInvalidStructure)

	// published under a DID other than the one it names
	require.ErrorIs(t, ledger.AddClaimDef(testIssuer2DID, def), ErrInvalidStructure)
	require.ErrorIs(t, ledger.AddClaimDef("", def), ErrInvalidStructure)
}

func TestClaimDefSignatureType(t *testing.T) {
	def, _ := testClaimDef(t, testKey1, testIssuerDID, gvtSchemaSeqNo, gvtSchema, false)
	require.Equal(t, SignatureTypeCL, def.SignatureType)
	require.NoError(t, def.Validate(gvtSchema))

	ledger := NewPublicData()
	require.NoError(t, ledger.AddSchema(gvtSchemaSeqNo, gvtSchema))
	for _, typ := range []string{"", "BBS", "cl"} {
		other := *def
		other.SignatureType = typ
		require.ErrorIs(t, other.Validate(gvtSchema), ErrInvalidStructure, typ)
		require.ErrorIs(t, ledger.AddClaimDef(testIssuerDID, &other), ErrInvalidStructure, typ)
	}
	_, err := ledger.ClaimDef(testIssuerDID, gvtSchemaSeqNo)
	require.ErrorIs(t, err, ErrMissingPublicData)
}

func TestProofRequestValidate(t *testing.T) {
	req := testProofRequest(t)
	require.NoError(t, req.Validate())

	var nilReq *ProofRequest
	require.ErrorIs(t, nilReq.Validate(), ErrInvalidStructure)

	req.RequestedPredicates["p"] = PredicateInfo{AttrName: "age", PType: "EQ", Value: 18}
	require.ErrorIs(t, req.Validate(), ErrInvalidStructure)

	bts, err := json.Marshal(testProofRequest(t))
	require.NoError(t, err)
	var decoded ProofRequest
	require.NoError(t, json.Unmarshal(bts, &decoded))
	require.NoError(t, decoded.Validate())
	require.Equal(t, PredicateInfo{AttrName: "age", PType: GE, Value: 18}, decoded.RequestedPredicates["predicate1_uuid"])
}

func TestPredicateSatisfied(t *testing.T) {
	tests := []struct {
		info  PredicateInfo
		value int64
		holds bool
	}{
		{PredicateInfo{"age", GE, 18}, 18, true},
		{PredicateInfo{"age", GE, 18}, 17, false},
		{PredicateInfo{"age", GT, 18}, 18, false},
		{PredicateInfo{"age", GT, 18}, 19, true},
		{PredicateInfo{"age", LE, 18}, 18, true},
		{PredicateInfo{"age", LE, 18}, 19, false},
		{PredicateInfo{"age", LT, 18}, 17, true},
		{PredicateInfo{"age", LT, 18}, 18, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.holds, tt.info.Satisfied(big.NewInt(tt.value)), "%s %d", tt.info.PType, tt.value)
	}
}
