package anoncreds

import (
	"encoding/json"
	"math"
	"strconv"

	"github.com/go-errors/errors"

	"github.com/privacybydesign/anoncreds/big"
	"github.com/privacybydesign/anoncreds/internal/common"
)

// AttributeValue is the value of an attribute, both as given by the issuer and as the integer
// that is signed. In JSON it is written as ["raw", "encoded"].
type AttributeValue struct {
	Raw     string
	Encoded *big.Int
}

// NewAttributeValue returns the attribute value with the canonical encoding of raw.
func NewAttributeValue(raw string) AttributeValue {
	return AttributeValue{Raw: raw, Encoded: EncodeAttribute(raw)}
}

// EncodeAttribute returns the canonical integer encoding of an attribute value: integers in
// [0, 2^31) written in shortest decimal form encode to themselves, everything else (including
// "028" and "+28") to the SHA-256 hash of the value.
func EncodeAttribute(raw string) *big.Int {
	if i, ok := integerValue(raw); ok {
		return big.NewInt(int64(i))
	}
	return common.IntHashSha256([]byte(raw))
}

// integerValue returns the value of raw if it is encoded as itself. Only the shortest decimal
// form qualifies, so that distinct raw values never share an encoding.
func integerValue(raw string) (int32, bool) {
	i, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || i < 0 || i > math.MaxInt32 || strconv.FormatInt(i, 10) != raw {
		return 0, false
	}
	return int32(i), true
}

// IsInteger reports whether the value is an integer on which predicates can be proven.
func (a AttributeValue) IsInteger() bool {
	_, ok := integerValue(a.Raw)
	return ok
}

// Canonical reports whether the encoding equals the canonical encoding of the raw value.
func (a AttributeValue) Canonical() bool {
	return a.Encoded != nil && a.Encoded.Cmp(EncodeAttribute(a.Raw)) == 0
}

func (a AttributeValue) MarshalJSON() ([]byte, error) {
	if a.Encoded == nil {
		return nil, errors.New("attribute value has no encoding")
	}
	return json.Marshal([]string{a.Raw, a.Encoded.String()})
}

func (a *AttributeValue) UnmarshalJSON(bts []byte) error {
	var parts []string
	if err := json.Unmarshal(bts, &parts); err != nil {
		return err
	}
	if len(parts) != 2 {
		return errors.Errorf("attribute value must have 2 elements, has %d", len(parts))
	}
	encoded, ok := new(big.Int).SetString(parts[1], 10)
	if !ok {
		return errors.Errorf("invalid attribute encoding %q", parts[1])
	}
	a.Raw, a.Encoded = parts[0], encoded
	return nil
}
