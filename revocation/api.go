/*
Package revocation implements revocation registries over the RSA-B accumulator and the associated
zero knowledge proofs, introduced in "Dynamic Accumulators and Application to Efficient Revocation
of Anonymous Credentials", Jan Camenisch and Anna Lysyanskaya, CRYPTO 2002,
DOI https://doi.org/10.1007/3-540-45708-9_5, http://static.cs.brown.edu/people/alysyans/papers/camlys02.pdf.

In short, revocation works as follows.

  - Each registry has a fixed capacity of max_claim_num indices. Every index has a "tail": a
    prime e deterministically derived from the registry and the index. A revocable claim issued
    at an index receives its tail as a new (hidden) revocation attribute, together with a
    "nonrevocation witness" u.
  - The issuer publishes an Accumulator, i.e a bigint Nu (the greek letter nu). The witness is
    valid only if u^e = Nu mod N where N is the modulus of the revocation group of the issuer,
    i.e. e is "accumulated" in Nu.
  - Issuing at an index adds its tail to the accumulator, NewNu := Nu^e mod N, and the new
    witness is the previous accumulator value.
  - Revoking removes the tail again, NewNu := Nu^(1/e mod P'*Q'), after which the index is free
    again; its tail changes so that reissuance uses a fresh prime.
  - Every change of the accumulator is published as a signed Update, chained to the previous one
    by its hash. Holders apply the updates in order to their witness, which fails for the
    revoked witness.
  - The holder can prove in zero knowledge that it knows numbers u and e such that (1) u^e = Nu
    mod N (2) e equals the claim's revocation attribute, from which the verifier concludes that
    the claim is not currently revoked.

If the holder and verifier do not agree on the current value of the accumulator, then the holder
cannot prove nonrevocation, leading the verifier to reject the proof. The issuer thus has an
important responsibility to ensure that all its updates are always available to all holders.
*/
package revocation

import (
	"crypto/ecdsa"
	"encoding/json"

	"github.com/go-errors/errors"
	"github.com/multiformats/go-multihash"
	"github.com/sirupsen/logrus"

	"github.com/privacybydesign/anoncreds/big"
	"github.com/privacybydesign/anoncreds/internal/common"
	"github.com/privacybydesign/anoncreds/signed"
)

type (
	// Accumulator is an RSA-B accumulator against which holders with a corresponding Witness
	// having the same Index can prove that their witness is accumulated, i.e. not revoked.
	Accumulator struct {
		Nu    *big.Int `json:"nu"`
		Index uint64   `json:"index"`
	}

	// Update is a signed change to the accumulator of a registry, published by the issuer
	// after every issuance or revocation.
	Update struct {
		Accumulator Accumulator         `json:"accumulator"`
		Issued      []*big.Int          `json:"issued,omitempty"`
		Revoked     []*big.Int          `json:"revoked,omitempty"`
		ParentHash  multihash.Multihash `json:"parent_hash"`
		Time        int64               `json:"time"`
	}

	// PrivateKey is the private key needed for revoking and signing updates.
	PrivateKey struct {
		ECDSA          *ecdsa.PrivateKey
		PPrime, QPrime *big.Int
		N              *big.Int
	}

	// PublicKey is the public key corresponding to PrivateKey, against which witnesses,
	// updates and nonrevocation proofs are verified.
	PublicKey struct {
		Group *QrGroup
		ECDSA *ecdsa.PublicKey
	}
)

var Logger *logrus.Logger

func init() {
	Logger = logrus.StandardLogger()
}

// GenerateKeys creates a revocation key pair over the group modulo n = (2p'+1)(2q'+1).
func GenerateKeys(n, pPrime, qPrime *big.Int) (*PrivateKey, *PublicKey, error) {
	ecdsaKey, err := signed.GenerateKey()
	if err != nil {
		return nil, nil, err
	}
	sk := &PrivateKey{ECDSA: ecdsaKey, PPrime: pPrime, QPrime: qPrime, N: n}
	pk := &PublicKey{Group: NewQrGroup(n), ECDSA: &ecdsaKey.PublicKey}
	return sk, pk, nil
}

// Order returns the order p'q' of QR_n.
func (sk *PrivateKey) Order() *big.Int {
	return new(big.Int).Mul(sk.PPrime, sk.QPrime)
}

type privateKeyJSON struct {
	ECDSA  []byte   `json:"ecdsa"`
	PPrime *big.Int `json:"p_prime"`
	QPrime *big.Int `json:"q_prime"`
	N      *big.Int `json:"n"`
}

func (sk *PrivateKey) MarshalJSON() ([]byte, error) {
	bts, err := signed.MarshalPrivateKey(sk.ECDSA)
	if err != nil {
		return nil, err
	}
	return json.Marshal(privateKeyJSON{ECDSA: bts, PPrime: sk.PPrime, QPrime: sk.QPrime, N: sk.N})
}

func (sk *PrivateKey) UnmarshalJSON(bts []byte) error {
	var tmp privateKeyJSON
	if err := json.Unmarshal(bts, &tmp); err != nil {
		return err
	}
	if tmp.PPrime == nil || tmp.QPrime == nil || tmp.N == nil {
		return errors.New("incomplete revocation private key")
	}
	key, err := signed.UnmarshalPrivateKey(tmp.ECDSA)
	if err != nil {
		return err
	}
	*sk = PrivateKey{ECDSA: key, PPrime: tmp.PPrime, QPrime: tmp.QPrime, N: tmp.N}
	return nil
}

type publicKeyJSON struct {
	Group *QrGroup `json:"group"`
	ECDSA string   `json:"ecdsa"`
}

func (pk *PublicKey) MarshalJSON() ([]byte, error) {
	bts, err := signed.MarshalPemPublicKey(pk.ECDSA)
	if err != nil {
		return nil, err
	}
	return json.Marshal(publicKeyJSON{Group: pk.Group, ECDSA: string(bts)})
}

func (pk *PublicKey) UnmarshalJSON(bts []byte) error {
	var tmp publicKeyJSON
	if err := json.Unmarshal(bts, &tmp); err != nil {
		return err
	}
	if tmp.Group == nil {
		return errors.New("revocation public key has no group")
	}
	key, err := signed.UnmarshalPemPublicKey([]byte(tmp.ECDSA))
	if err != nil {
		return err
	}
	*pk = PublicKey{Group: tmp.Group, ECDSA: key}
	return nil
}

// VerifyUpdate checks the signature of an update message and returns the update it contains.
func (pk *PublicKey) VerifyUpdate(msg signed.Message) (*Update, error) {
	update := &Update{}
	if err := signed.UnmarshalVerify(pk.ECDSA, msg, update); err != nil {
		return nil, err
	}
	if update.Accumulator.Nu == nil {
		return nil, errors.New("update has no accumulator")
	}
	for _, e := range append(update.Issued, update.Revoked...) {
		if e == nil || e.Sign() <= 0 {
			return nil, errors.New("update contains invalid revocation attribute")
		}
	}
	return update, nil
}

// VerifyUpdateChain checks the signature of the update message and that it directly follows the
// update whose hash is parent.
func (pk *PublicKey) VerifyUpdateChain(parent multihash.Multihash, parentIndex uint64, msg signed.Message) (*Update, error) {
	update, err := pk.VerifyUpdate(msg)
	if err != nil {
		return nil, err
	}
	if update.Accumulator.Index != parentIndex+1 || string(update.ParentHash) != string(parent) {
		return nil, common.Errorf(common.WitnessOutOfDate,
			"update %d does not follow update %d", update.Accumulator.Index, parentIndex)
	}
	return update, nil
}

// Hash returns the multihash by which the next update refers to this one.
func Hash(msg signed.Message) (multihash.Multihash, error) {
	return multihash.Sum(msg, multihash.SHA2_256, -1)
}

func initialHash() multihash.Multihash {
	h, err := multihash.Encode(make([]byte, 32), multihash.SHA2_256)
	if err != nil {
		panic(err)
	}
	return h
}
