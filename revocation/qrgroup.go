package revocation

import (
	"encoding/json"

	"github.com/go-errors/errors"
	"github.com/privacybydesign/anoncreds/big"
	"github.com/privacybydesign/anoncreds/internal/common"
)

// QrGroup represents the group of quadratic residues modulo n = p*q, i.e. ((Z/nZ)*)^2
// where p, q, (p-1)/2 and (q-1)/2 are all prime.
type QrGroup struct {
	N *big.Int `json:"n"` // RSA modulus
	G *big.Int `json:"g"` // Base points in QR_n
	H *big.Int `json:"h"`

	// derivative bounds
	nDiv4       *big.Int // n/4
	nDiv4twoZk  *big.Int // n/4 * 2^(k'+k'')
	nbDiv4twoZk *big.Int // n/4 * B * 2^(k'+k'')
}

// NewQrGroup returns the group modulo the specified modulus with fresh random generators.
func NewQrGroup(modulus *big.Int) *QrGroup {
	g := &QrGroup{
		N: modulus,
		G: common.RandomQR(modulus),
		H: common.RandomQR(modulus),
	}
	g.derive()
	return g
}

func (g *QrGroup) derive() {
	g.nDiv4 = new(big.Int).Div(g.N, big.NewInt(4))
	g.nDiv4twoZk = new(big.Int).Mul(g.nDiv4, parameters.twoZk)
	g.nbDiv4twoZk = new(big.Int).Mul(g.nDiv4twoZk, parameters.b)
}

func (g *QrGroup) UnmarshalJSON(bts []byte) error {
	type plain QrGroup
	if err := json.Unmarshal(bts, (*plain)(g)); err != nil {
		return err
	}
	if g.N == nil || g.G == nil || g.H == nil {
		return errors.New("incomplete revocation group")
	}
	for _, x := range []*big.Int{g.G, g.H} {
		if x.Sign() <= 0 || x.Cmp(g.N) >= 0 {
			return errors.New("revocation group generator out of range")
		}
	}
	g.derive()
	return nil
}

func (g *QrGroup) Base(name string) *big.Int {
	switch name {
	case "g":
		return g.G
	case "h":
		return g.H
	default:
		return nil
	}
}

func (g *QrGroup) Exp(ret *big.Int, name string, exp, n *big.Int) bool {
	base := g.Base(name)
	if base == nil {
		return false
	}
	ret.Exp(base, exp, n)
	return true
}

func (g *QrGroup) Names() []string {
	return []string{"g", "h"}
}
