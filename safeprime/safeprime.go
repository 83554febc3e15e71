// Package safeprime computes safe primes, i.e. primes of the form 2p+1 where p is also prime.
package safeprime

import (
	"context"
	"crypto/rand"
	"runtime"

	"github.com/go-errors/errors"
	"github.com/privacybydesign/anoncreds/big"
)

// GenerateConcurrent continuously generates safe primes on all CPU cores until ctx is done.
// If an error is encountered, generation is stopped in all goroutines and the error is sent
// on the second return parameter.
func GenerateConcurrent(ctx context.Context, bitsize int) (<-chan *big.Int, <-chan error) {
	count := runtime.GOMAXPROCS(0)
	ints := make(chan *big.Int, count)
	errs := make(chan error, count)

	// A goroutine that fails cancels all the others.
	ctx, cancel := context.WithCancel(ctx)

	for i := 0; i < count; i++ {
		go func() {
			for {
				x, err := Generate(ctx, bitsize)
				if err != nil {
					errs <- err
					cancel()
					return
				}
				if x == nil {
					return
				}

				select {
				case <-ctx.Done():
					return
				case ints <- x:
				}
			}
		}()
	}

	return ints, errs
}

// Generate a safe prime of the given size, using the fact that:
//
//	If q is prime and 2^(2q) = 1 mod (2q+1), then 2q+1 is a safe prime.
//
// We take a random bigint q; if the above formula holds and q is prime, then we return 2q+1.
// When ctx is done before a safe prime is found, nil, nil is returned.
func Generate(ctx context.Context, bitsize int) (*big.Int, error) {
	var (
		one        = big.NewInt(1)
		max        = new(big.Int).Lsh(one, uint(bitsize)) // 2^bitsize, len bitsize+1
		twoq       = new(big.Int)
		twoqone    = new(big.Int)
		twoexptwoq = new(big.Int)
		q          *big.Int
		bitlen     int
		err        error
	)

	for i := 1; ; i++ {
		// Every 1000 iterations, check if we have been asked to stop
		if i%1000 == 0 && ctx.Err() != nil {
			return nil, nil
		}

		if q, err = big.RandInt(rand.Reader, max); err != nil {
			return nil, err
		}

		bitlen = q.BitLen() // q < max = 2^bitsize, so bitlen <= bitsize
		if q.Bit(0) != 1 || bitlen < bitsize-1 {
			continue
		}

		// We want bitlen to be bitsize - 1; if it is bitsize, continue with (q-1)/2 instead.
		if bitlen == bitsize {
			q.Rsh(q, 1)
			if q.Bit(0) != 1 {
				continue
			}
		}

		twoq.Lsh(q, 1)
		twoqone.Add(twoq, one)
		twoexptwoq.Exp(two, twoq, twoqone) // 2^(2q) mod (2q+1)

		if twoexptwoq.Cmp(one) == 0 && q.ProbablyPrime(40) {
			break
		}
	}

	if !ProbablySafePrime(twoqone, 40) {
		return nil, errors.New("safe prime generation returned non-safe prime")
	}
	return twoqone, nil
}

var two = big.NewInt(2)

// ProbablySafePrime reports whether x is probably safe prime, by calling big.Int.ProbablyPrime(n)
// on x as well as on (x-1)/2.
func ProbablySafePrime(x *big.Int, n int) bool {
	if x.Cmp(two) <= 0 {
		return false
	}
	if !x.ProbablyPrime(n) {
		return false
	}
	y := new(big.Int).Rsh(x, 1)
	return y.ProbablyPrime(n)
}
