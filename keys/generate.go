package keys

import (
	"context"

	"github.com/bwesterb/go-exptable"
	"github.com/go-errors/errors"
	"github.com/privacybydesign/anoncreds/big"
	"github.com/privacybydesign/anoncreds/internal/common"
	"github.com/privacybydesign/anoncreds/safeprime"
)

var (
	bigOne   = big.NewInt(1)
	bigTwo   = big.NewInt(2)
	bigEight = big.NewInt(8)
)

// findMatch returns the first element of safeprimes that makes a suitable pair with p:
// p*q has the required bit length and p != q mod 8.
func findMatch(safeprimes []*big.Int, param *SystemParameters, p *big.Int,
	n, pMod8, qMod8 *big.Int, // temp vars allocated by caller
) *big.Int {
	for _, q := range safeprimes {
		if uint(n.Mul(p, q).BitLen()) == param.Ln && pMod8.Mod(p, bigEight).Cmp(qMod8.Mod(q, bigEight)) != 0 {
			return q
		}
	}
	return nil
}

func generateSafePrimePair(ctx context.Context, param *SystemParameters) (*big.Int, *big.Int, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel() // stops the generating goroutines once we have a pair

	safeprimes := make([]*big.Int, 0, 10) // all generated safe primes until we find a suitable pair
	pPrime, pPrimeMod8, pMod8, qMod8, n := new(big.Int), new(big.Int), new(big.Int), new(big.Int), new(big.Int)

	ints, errs := safeprime.GenerateConcurrent(ctx, int(param.Ln/2))
	for {
		select {
		case p := <-ints:
			// p' = (p-1)/2 must not be 1 mod 8
			if pPrimeMod8.Mod(pPrime.Rsh(p, 1), bigEight).Cmp(bigOne) == 0 {
				continue
			}
			if q := findMatch(safeprimes, param, p, n, pMod8, qMod8); q != nil {
				return p, q, nil
			}
			safeprimes = append(safeprimes, p)

		case err := <-errs:
			return nil, nil, err

		case <-ctx.Done():
			return nil, nil, ctx.Err()
		}
	}
}

// randomExponent returns a random exponent of the given size larger than 2.
func randomExponent(bits uint) (*big.Int, error) {
	for {
		x, err := common.RandomBigInt(bits)
		if err != nil {
			return nil, err
		}
		if x.Cmp(bigTwo) > 0 {
			return x, nil
		}
	}
}

// GenerateKeyPair generates a private/public keypair with numBases bases R_i. All bases as well
// as Z are random powers of S, computed using a precomputed exponentiation table for S.
func GenerateKeyPair(ctx context.Context, param *SystemParameters, numBases int) (*PrivateKey, *PublicKey, error) {
	if numBases < 1 {
		return nil, nil, errors.New("at least one base is required")
	}
	p, q, err := generateSafePrimePair(ctx, param)
	if err != nil {
		return nil, nil, err
	}

	priv := NewPrivateKey(p, q)
	pubk := &PublicKey{N: priv.N, Params: param}

	// Pick a random l_n value and check whether it is a quadratic residue modulo n
	for {
		pubk.S, err = common.RandomBigInt(param.Ln)
		if err != nil {
			return nil, nil, err
		}
		if pubk.S.Cmp(pubk.N) >= 0 {
			continue
		}
		if common.LegendreSymbol(pubk.S, priv.P) == 1 && common.LegendreSymbol(pubk.S, priv.Q) == 1 {
			break
		}
	}

	var table exptable.Table
	table.Compute(pubk.S.Go(), pubk.N.Go(), 7)
	power := func() (*big.Int, error) {
		x, err := randomExponent(param.Ln / 2)
		if err != nil {
			return nil, err
		}
		ret := new(big.Int)
		table.Exp(ret.Go(), x.Go())
		return ret, nil
	}

	if pubk.Z, err = power(); err != nil {
		return nil, nil, err
	}
	pubk.R = make(Bases, numBases)
	for i := range pubk.R {
		if pubk.R[i], err = power(); err != nil {
			return nil, nil, err
		}
	}

	return priv, pubk, nil
}
