// Package signed contains convenience functions for ECDSA key handling, and for marshaling
// structs to signed CBOR bytes and verifying and unmarshaling signed bytes back to structs.
// Revocation registries sign every accumulator update with it.
package signed

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"crypto/x509"
	"encoding/asn1"
	"encoding/pem"
	"math/big"

	"github.com/privacybydesign/anoncreds/cbor"

	"github.com/go-errors/errors"
)

type (
	// Message is a signed message, created and signed by MarshalSign, and verified and parsed
	// by UnmarshalVerify.
	Message []byte

	// message-signature tuple
	tuple struct {
		Msg, Sig []byte
	}
)

var ErrInvalidSignature = errors.New("ecdsa signature was invalid")

func GenerateKey() (*ecdsa.PrivateKey, error) {
	return ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
}

func UnmarshalPublicKey(bts []byte) (*ecdsa.PublicKey, error) {
	genericPk, err := x509.ParsePKIXPublicKey(bts)
	if err != nil {
		return nil, err
	}
	pk, ok := genericPk.(*ecdsa.PublicKey)
	if !ok {
		return nil, errors.New("invalid ecdsa public key")
	}
	return pk, nil
}

func MarshalPublicKey(pk *ecdsa.PublicKey) ([]byte, error) {
	return x509.MarshalPKIXPublicKey(pk)
}

func UnmarshalPemPublicKey(bts []byte) (*ecdsa.PublicKey, error) {
	block, _ := pem.Decode(bts)
	if block == nil || block.Type != "PUBLIC KEY" {
		return nil, errors.New("no PEM public key found")
	}
	return UnmarshalPublicKey(block.Bytes)
}

func MarshalPemPublicKey(pk *ecdsa.PublicKey) ([]byte, error) {
	bts, err := MarshalPublicKey(pk)
	if err != nil {
		return nil, errors.WrapPrefix(err, "failed to serialize public key", 0)
	}
	return pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: bts}), nil
}

func UnmarshalPrivateKey(bts []byte) (*ecdsa.PrivateKey, error) {
	return x509.ParseECPrivateKey(bts)
}

func MarshalPrivateKey(sk *ecdsa.PrivateKey) ([]byte, error) {
	return x509.MarshalECPrivateKey(sk)
}

// Sign and verify bytes

func Sign(sk *ecdsa.PrivateKey, bts []byte) ([]byte, error) {
	hash := sha256.Sum256(bts)
	r, s, err := ecdsa.Sign(rand.Reader, sk, hash[:])
	if err != nil {
		return nil, err
	}
	return asn1.Marshal([]*big.Int{r, s})
}

func Verify(pk *ecdsa.PublicKey, bts []byte, signature []byte) error {
	var ints []*big.Int
	if _, err := asn1.Unmarshal(signature, &ints); err != nil {
		return err
	}
	if len(ints) != 2 {
		return ErrInvalidSignature
	}
	hash := sha256.Sum256(bts)
	if !ecdsa.Verify(pk, hash[:], ints[0], ints[1]) {
		return ErrInvalidSignature
	}
	return nil
}

// MarshalSign encodes the message to CBOR, signs the resulting bytes, and returns
// signed message bytes suitable for verifying with UnmarshalVerify.
func MarshalSign(sk *ecdsa.PrivateKey, message interface{}) (Message, error) {
	bts, err := cbor.Marshal(message)
	if err != nil {
		return nil, err
	}
	signature, err := Sign(sk, bts)
	if err != nil {
		return nil, err
	}
	return cbor.Marshal(&tuple{bts, signature})
}

// UnmarshalVerify verifies the signature of a Message created by MarshalSign, and decodes the
// message bytes into dst.
func UnmarshalVerify(pk *ecdsa.PublicKey, signed Message, dst interface{}) error {
	var tmp tuple
	if err := cbor.Unmarshal(signed, &tmp); err != nil {
		return err
	}
	if err := Verify(pk, tmp.Msg, tmp.Sig); err != nil {
		return err
	}
	return cbor.Unmarshal(tmp.Msg, dst)
}
