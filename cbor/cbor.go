// Package cbor encodes and decodes CBOR by wrapping github.com/fxamacker/cbor.
//
// Encoding uses Core Deterministic Encoding (RFC 8949 section 4.2.1), so that equal values
// always encode to equal bytes: registry updates are signed and hash chained over these bytes.
// The decoder rejects duplicate map keys and indefinite length items.
package cbor

import (
	"github.com/fxamacker/cbor/v2" // imports as cbor
)

const (
	MaxArrayElements = 1024 * 256
	MaxMapPairs      = 1024 * 256
)

// RawMessage is a raw encoded CBOR value, whose decoding can be postponed.
type RawMessage = cbor.RawMessage

var (
	encOptions = cbor.EncOptions{
		InfConvert:    cbor.InfConvertFloat16,
		IndefLength:   cbor.IndefLengthForbidden,
		NaNConvert:    cbor.NaNConvert7e00,
		ShortestFloat: cbor.ShortestFloat16,
		Sort:          cbor.SortCoreDeterministic,
		Time:          cbor.TimeUnix,
		TagsMd:        cbor.TagsForbidden,
	}

	decOptions = cbor.DecOptions{
		IndefLength:       cbor.IndefLengthForbidden,
		DupMapKey:         cbor.DupMapKeyEnforcedAPF,
		MaxArrayElements:  MaxArrayElements,
		MaxMapPairs:       MaxMapPairs,
		TagsMd:            cbor.TagsForbidden,
		TimeTag:           cbor.DecTagIgnored,
		ExtraReturnErrors: cbor.ExtraDecErrorNone,
	}

	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error
	if encMode, err = encOptions.EncMode(); err != nil {
		panic(err)
	}
	if decMode, err = decOptions.DecMode(); err != nil {
		panic(err)
	}
}

// Marshal encodes src into a CBOR-encoded byte slice.
func Marshal(src interface{}) ([]byte, error) {
	return encMode.Marshal(src)
}

// Unmarshal decodes CBOR in data into dst.
func Unmarshal(data []byte, dst interface{}) error {
	return decMode.Unmarshal(data, dst)
}

// Valid checks whether data is a single well-formed CBOR item.
func Valid(data []byte) error {
	return decMode.Valid(data)
}
