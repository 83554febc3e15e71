// Package keys contains the CL key material of a claim definition: the system parameters,
// the issuer's public key (modulus and bases) and private key (safe prime factors).
package keys

import (
	"encoding/json"
	"strconv"

	"github.com/go-errors/errors"
	"github.com/privacybydesign/anoncreds/big"
	"github.com/privacybydesign/anoncreds/safeprime"
)

type (
	// SystemParameters holds the bit lengths used throughout signing and proving.
	SystemParameters struct {
		BaseParameters
		DerivedParameters
	}

	// BaseParameters holds the base system parameters
	BaseParameters struct {
		LePrime uint
		Lh      uint
		Lm      uint
		Ln      uint
		Lstatzk uint
	}

	// DerivedParameters holds system parameters that can be drived from base
	// systemparameters (BaseParameters)
	DerivedParameters struct {
		Le            uint
		LeCommit      uint
		LmCommit      uint
		LRA           uint
		LsCommit      uint
		Lv            uint
		LvCommit      uint
		LvPrime       uint
		LvPrimeCommit uint
	}

	// Bases are the R_i of a public key. R[0] is reserved for the master secret.
	Bases []*big.Int

	// PublicKey represents an issuer's CL public key.
	PublicKey struct {
		N *big.Int `json:"n"`
		S *big.Int `json:"s"`
		Z *big.Int `json:"z"`
		R Bases    `json:"r"`

		Params *SystemParameters `json:"-"`
	}

	// PrivateKey represents an issuer's CL private key.
	PrivateKey struct {
		P      *big.Int `json:"p"`
		Q      *big.Int `json:"q"`
		PPrime *big.Int `json:"p_prime"`
		QPrime *big.Int `json:"q_prime"`

		N     *big.Int `json:"-"`
		Order *big.Int `json:"-"`
	}
)

// NewPrivateKey creates a new issuer private key from its two safe prime factors.
func NewPrivateKey(p, q *big.Int) *PrivateKey {
	sk := &PrivateKey{
		P:      p,
		Q:      q,
		PPrime: new(big.Int).Rsh(p, 1),
		QPrime: new(big.Int).Rsh(q, 1),
	}
	sk.derive()
	return sk
}

func (privk *PrivateKey) derive() {
	privk.N = new(big.Int).Mul(privk.P, privk.Q)
	privk.Order = new(big.Int).Mul(privk.PPrime, privk.QPrime)
}

func (privk *PrivateKey) UnmarshalJSON(bts []byte) error {
	type plain PrivateKey
	if err := json.Unmarshal(bts, (*plain)(privk)); err != nil {
		return err
	}
	if privk.P == nil || privk.Q == nil || privk.PPrime == nil || privk.QPrime == nil {
		return errors.New("incomplete private key")
	}
	privk.derive()
	return nil
}

// Validate checks that the private key consists of two safe primes p = 2p'+1, q = 2q'+1.
func (privk *PrivateKey) Validate() error {
	if new(big.Int).Rsh(new(big.Int).Sub(privk.P, big.NewInt(1)), 1).Cmp(privk.PPrime) != 0 {
		return errors.New("incompatible values for P and P'")
	}
	if new(big.Int).Rsh(new(big.Int).Sub(privk.Q, big.NewInt(1)), 1).Cmp(privk.QPrime) != 0 {
		return errors.New("incompatible values for Q and Q'")
	}
	if !safeprime.ProbablySafePrime(privk.P, 40) {
		return errors.New("P is not a safe prime")
	}
	if !safeprime.ProbablySafePrime(privk.Q, 40) {
		return errors.New("Q is not a safe prime")
	}
	return nil
}

// NewPublicKey creates a public key, selecting the system parameters by the size of N.
func NewPublicKey(n, z, s *big.Int, r []*big.Int) (*PublicKey, error) {
	pk := &PublicKey{N: n, Z: z, S: s, R: r}
	if err := pk.setParams(); err != nil {
		return nil, err
	}
	return pk, nil
}

func (pubk *PublicKey) setParams() error {
	if pubk.N == nil {
		return errors.New("public key has no modulus")
	}
	params, ok := DefaultSystemParameters[pubk.N.BitLen()]
	if !ok {
		return errors.Errorf("unknown keylength %d", pubk.N.BitLen())
	}
	pubk.Params = params
	return nil
}

func (pubk *PublicKey) UnmarshalJSON(bts []byte) error {
	type plain PublicKey
	if err := json.Unmarshal(bts, (*plain)(pubk)); err != nil {
		return err
	}
	if err := pubk.setParams(); err != nil {
		return err
	}
	return pubk.Validate()
}

// Validate checks that all group elements are present and lie in Z_n^*.
func (pubk *PublicKey) Validate() error {
	if pubk.N == nil || pubk.S == nil || pubk.Z == nil {
		return errors.New("incomplete public key")
	}
	if len(pubk.R) == 0 {
		return errors.New("public key has no bases")
	}
	elements := append([]*big.Int{pubk.S, pubk.Z}, pubk.R...)
	for _, x := range elements {
		if x == nil || x.Sign() <= 0 || x.Cmp(pubk.N) >= 0 {
			return errors.New("public key element out of range")
		}
	}
	return nil
}

// Base returns the base with the given name: "Z", "S", or "R<i>".
func (pubk *PublicKey) Base(name string) *big.Int {
	switch {
	case name == "Z":
		return pubk.Z
	case name == "S":
		return pubk.S
	case len(name) > 1 && name[0] == 'R':
		i, err := strconv.Atoi(name[1:])
		if err != nil || i < 0 || i >= len(pubk.R) {
			return nil
		}
		return pubk.R[i]
	default:
		return nil
	}
}

func (pubk *PublicKey) Exp(ret *big.Int, name string, exp, n *big.Int) bool {
	base := pubk.Base(name)
	if base == nil {
		return false
	}
	ret.Exp(base, exp, n)
	return true
}

func (pubk *PublicKey) Names() []string {
	names := []string{"Z", "S"}
	for i := range pubk.R {
		names = append(names, "R"+strconv.Itoa(i))
	}
	return names
}
