// Copyright 2016 Maarten Everts. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package common

import (
	"crypto/rand"
	mathRand "math/rand"

	"github.com/go-errors/errors"
	"github.com/privacybydesign/anoncreds/big"
)

// Some utility code (mostly math stuff) useful in various places in this
// package.

// Often we need to refer to the same small constant big numbers, no point in
// creating them again and again.
var (
	bigZERO  = big.NewInt(0)
	bigONE   = big.NewInt(1)
	bigTHREE = big.NewInt(3)
	bigFOUR  = big.NewInt(4)
	bigFIVE  = big.NewInt(5)
	bigEIGHT = big.NewInt(8)
)

// ModInverse returns ia, the inverse of a in the multiplicative group of prime
// order n. It requires that a be a member of the group (i.e. less than n).
// This function was taken from Go's RSA implementation
func ModInverse(a, n *big.Int) (ia *big.Int, ok bool) {
	g := new(big.Int)
	x := new(big.Int)
	y := new(big.Int)
	g.GCD(x, y, a, n)
	if g.Cmp(bigONE) != 0 {
		// In this case, a and n aren't coprime and we cannot calculate
		// the inverse. This happens because the values of n are nearly
		// prime (being the product of two primes) rather than truly
		// prime.
		return
	}

	if x.Cmp(bigONE) < 0 {
		// 0 is not the multiplicative inverse of any element so, if x
		// < 1, then x is negative.
		x.Add(x, n)
	}

	return x, true
}

var ErrNoModInverse = errors.New("modular inverse does not exist")

// ModDiv computes x / y mod m.
func ModDiv(x, y, m *big.Int) (*big.Int, error) {
	inv, ok := ModInverse(new(big.Int).Mod(y, m), m)
	if !ok {
		return nil, ErrNoModInverse
	}
	return inv.Mul(inv, x).Mod(inv, m), nil
}

// ModPow computes x^y mod m. The exponent (y) can be negative, in which case it
// uses the modular inverse to compute the result (in contrast to Go's Exp
// function).
func ModPow(x, y, m *big.Int) (*big.Int, error) {
	if y.Sign() == -1 {
		t := new(big.Int).ModInverse(x, m)
		if t == nil {
			return nil, ErrNoModInverse
		}
		return t.Exp(t, new(big.Int).Neg(y), m), nil
	}
	return new(big.Int).Exp(x, y, m), nil
}

// RepresentToBases returns a representation of the given exponents in terms of the R bases
// from the public key. For example given exponents exps[1],...,exps[k] this function returns
//
//	R[1]^{exps[1]}*...*R[k]^{exps[k]} (mod N)
//
// with R and N coming from the public key. The exponents are hashed if their length
// exceeds the maximum message length from the public key.
func RepresentToBases(bases, exps []*big.Int, modulus *big.Int, maxMessageLength uint) *big.Int {
	r := big.NewInt(1)
	tmp := new(big.Int)
	for i := 0; i < len(exps); i++ {
		exp := exps[i]
		if exp.BitLen() > int(maxMessageLength) {
			exp = IntHashSha256(exp.Bytes())
		}
		// tmp = bases_i ^ exps_i (mod modulus), with exps_i hashed if it exceeds maxMessageLength
		tmp.Exp(bases[i], exp, modulus)
		// r = r * tmp (mod modulus)
		r.Mul(r, tmp).Mod(r, modulus)
	}
	return r
}

// ExtendedGCD returns the Bezout coefficients a, b with a*x + b*y = gcd(x, y),
// together with the gcd itself.
func ExtendedGCD(x, y *big.Int) (a, b, gcd *big.Int) {
	a, b = new(big.Int), new(big.Int)
	gcd = new(big.Int).GCD(a, b, x, y)
	return
}

// RandomBigInt returns a random big integer value in the range
// [0,(2^numBits)-1], inclusive.
func RandomBigInt(numBits uint) (*big.Int, error) {
	t := new(big.Int).Lsh(bigONE, numBits)
	return big.RandInt(rand.Reader, t)
}

// LegendreSymbol calculates the Legendre symbol (a/p).
func LegendreSymbol(a, p *big.Int) int {
	// Adapted from: https://programmingpraxis.com/2012/05/01/legendres-symbol/
	j := 1

	// Make a copy of the arguments
	// rule 5
	n := new(big.Int).Mod(a, p)
	m := new(big.Int).Set(p)

	tmp := new(big.Int)
	for n.Cmp(bigZERO) != 0 {
		// rules 3 and 4
		t := 0
		for n.Bit(0) == 0 {
			n.Rsh(n, 1)
			t++
		}
		tmp.Mod(m, bigEIGHT)
		if t&1 == 1 && (tmp.Cmp(bigTHREE) == 0 || tmp.Cmp(bigFIVE) == 0) {
			j = -j
		}

		// rule 6
		if tmp.Mod(m, bigFOUR).Cmp(bigTHREE) == 0 && tmp.Mod(n, bigFOUR).Cmp(bigTHREE) == 0 {
			j = -j
		}

		// rules 5 and 6
		m.Mod(m, n)
		n, m = m, n
	}
	if m.Cmp(bigONE) == 0 {
		return j
	}
	return 0
}

// SumFourSquares expresses a number as sum of four squares
// algorithm from "Randomized algorithms in number theory" by M. Rabin and J. Shallit
func SumFourSquares(n *big.Int) (*big.Int, *big.Int, *big.Int, *big.Int) {
	if n.BitLen() == 0 {
		return big.NewInt(0), big.NewInt(0), big.NewInt(0), big.NewInt(0)
	}
	temp := new(big.Int).And(n, bigTHREE)
	if temp.Int64() == 2 {
		return sumFourSquaresSpecial(n)
	} else if temp.Int64() == 0 {
		// extract out 2^2k, then calculate subanswer and modify it by multiplying all values by 2^k
		d := uint(1)
		temp.Rsh(n, 1)
		temp2 := new(big.Int).And(temp, bigTHREE)
		for temp2.Int64() != 2 {
			temp.Rsh(temp, 1)
			d++
			temp2.And(temp, bigTHREE)
		}
		if d%2 == 1 {
			temp.Rsh(temp, 1)
			d++
		}
		x, y, z, w := SumFourSquares(temp)
		x.Lsh(x, d/2)
		y.Lsh(y, d/2)
		z.Lsh(z, d/2)
		w.Lsh(w, d/2)
		return x, y, z, w
	} else {
		temp.Lsh(n, 1)
		x, y, z, w := sumFourSquaresSpecial(temp)
		temp.And(x, bigONE)
		xOdd := temp.Int64()
		temp.And(y, bigONE)
		yOdd := temp.Int64()
		if xOdd != yOdd {
			temp.And(z, bigONE)
			zOdd := temp.Int64()
			if xOdd == zOdd {
				y, z = z, y
			} else {
				y, w = w, y
			}
		}
		if x.Cmp(y) < 0 {
			x, y = y, x
		}
		if z.Cmp(w) < 0 {
			z, w = w, z
		}

		temp.Sub(x, y)
		x.Add(x, y)
		x.Rsh(x, 1)
		y.Rsh(temp, 1)
		temp.Sub(z, w)
		z.Add(z, w)
		z.Rsh(z, 1)
		w.Rsh(temp, 1)
		return x, y, z, w
	}
}

func sumFourSquaresSpecial(n *big.Int) (*big.Int, *big.Int, *big.Int, *big.Int) {
	if n.IsInt64() && n.Int64() < 4 {
		return big.NewInt(1), big.NewInt(1), big.NewInt(0), big.NewInt(0)
	}
	rootN := new(big.Int).Sqrt(n)
	x := new(big.Int)
	y := new(big.Int)
	z := new(big.Int)
	w := new(big.Int)
	p := new(big.Int)
	t1 := new(big.Int)

	// We do need randomness, but only because the polynomial time algorithm
	// is randomized, so using mathRand is significantly faster and poses
	// no security risks here
	randomSource := mathRand.New(mathRand.NewSource(1))
	for {
		x.Rand(randomSource, rootN)
		y.Rand(randomSource, rootN)

		z.Mul(x, x)
		z.Sub(n, z)
		w.Mul(y, y)
		z.Sub(z, w)

		if z.IsInt64() && z.Int64() == 2 {
			return x, y, big.NewInt(1), big.NewInt(1)
		}

		if z.BitLen() == 0 || z.Bits()[0]&3 != 1 {
			continue // z unsuitable
		}

		if !z.ProbablyPrime(10) {
			continue // z unsuitable
		}

		p.Set(z)

		w.Sub(z, bigONE)
		w.ModSqrt(w, z)

		if 2*w.BitLen()-1 <= p.BitLen() {
			t1.Mul(w, w)
			if p.Cmp(t1) > 0 {
				z.Mod(z, w)
				return x, y, z, w
			}
		}

		for {
			z.Mod(z, w)
			if z.BitLen() == 0 {
				break
			}
			if 2*z.BitLen()-1 <= p.BitLen() {
				t1.Mul(z, z)
				if p.Cmp(t1) > 0 {
					w.Mod(w, z)
					return x, y, z, w
				}
			}

			w.Mod(w, z)
			if w.BitLen() == 0 {
				break
			}
			if 2*w.BitLen()-1 <= p.BitLen() {
				t1.Mul(w, w)
				if p.Cmp(t1) > 0 {
					z.Mod(z, w)
					return x, y, z, w
				}
			}
		}
	}
}
