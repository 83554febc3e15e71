// Package zkproof contains the building blocks shared by the Schnorr-style proofs of knowledge
// of representations in QR_n: named base, secret and response lookups, and the representation
// proof structure that turns them into commitments.
package zkproof

import (
	"sort"

	"github.com/privacybydesign/anoncreds/big"
)

type (
	// BaseLookup resolves named bases, and exponentiates them.
	BaseLookup interface {
		Base(name string) *big.Int
		Exp(ret *big.Int, name string, exp, P *big.Int) bool
		Names() []string
	}

	// SecretLookup resolves named secrets and the randomizers committing to them.
	SecretLookup interface {
		Secret(name string) *big.Int
		Randomizer(name string) *big.Int
	}

	// ProofLookup resolves the responses of a proof by secret name.
	ProofLookup interface {
		ProofResult(name string) *big.Int
	}

	// BaseMap is a BaseLookup over a fixed set of bases.
	BaseMap map[string]*big.Int

	// SecretMap holds secrets together with their randomizers.
	SecretMap struct {
		Secrets, Randomizers map[string]*big.Int
	}

	// ProofMap is a ProofLookup over a fixed set of responses.
	ProofMap map[string]*big.Int

	BaseMerge struct {
		parts  []BaseLookup
		inames []string
		lut    map[string]BaseLookup
	}
)

func NewBaseMerge(parts ...BaseLookup) BaseMerge {
	var result BaseMerge
	result.parts = parts
	if len(parts) > 16 {
		result.lut = make(map[string]BaseLookup)
	}
	for _, part := range parts {
		partNames := part.Names()
		if result.lut != nil {
			for _, name := range partNames {
				result.lut[name] = part
			}
		}
		result.inames = append(result.inames, partNames...)
	}
	return result
}

func (b *BaseMerge) Names() []string {
	return b.inames
}
func (b *BaseMerge) Base(name string) *big.Int {
	if b.lut != nil {
		part, ok := b.lut[name]
		if !ok {
			return nil
		}
		return part.Base(name)
	}
	for _, part := range b.parts {
		res := part.Base(name)
		if res != nil {
			return res
		}
	}
	return nil
}

func (b *BaseMerge) Exp(ret *big.Int, name string, exp, P *big.Int) bool {
	if b.lut != nil {
		part, ok := b.lut[name]
		if !ok {
			return false
		}
		return part.Exp(ret, name, exp, P)
	}
	for _, part := range b.parts {
		ok := part.Exp(ret, name, exp, P)
		if ok {
			return true
		}
	}
	return false
}

func (m BaseMap) Base(name string) *big.Int {
	return m[name]
}

func (m BaseMap) Exp(ret *big.Int, name string, exp, n *big.Int) bool {
	base, ok := m[name]
	if !ok {
		return false
	}
	ret.Exp(base, exp, n)
	return true
}

func (m BaseMap) Names() []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (m SecretMap) Secret(name string) *big.Int {
	return m.Secrets[name]
}

func (m SecretMap) Randomizer(name string) *big.Int {
	return m.Randomizers[name]
}

func (m ProofMap) ProofResult(name string) *big.Int {
	return m[name]
}
