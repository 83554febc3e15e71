package rangeproof

import (
	"github.com/go-errors/errors"
	"github.com/privacybydesign/anoncreds/big"
	"github.com/privacybydesign/anoncreds/internal/common"
)

type (
	// SquareSplitter provides a combined interface for all facets describing a method for splitting positive numbers into a sum of squares.
	SquareSplitter interface {
		// Ld returns the number of bits per square
		Ld() uint
		// SquareCount return the number of squares in result
		SquareCount() int
		// Split is the actual splitting function. On input delta, it should return array x such that sum_i x_i^2 = delta and len(x) = SquareCount()
		Split(*big.Int) ([]*big.Int, error)
	}

	// FourSquaresSplitter splits any nonnegative number of at most 2*Ld bits into four squares.
	FourSquaresSplitter struct{}
)

func (*FourSquaresSplitter) Split(delta *big.Int) ([]*big.Int, error) {
	if delta.Sign() < 0 {
		return nil, errors.New("cannot split negative number into squares")
	}
	if delta.BitLen() > 2*128 {
		return nil, errors.New("value too large to split")
	}
	a, b, c, d := common.SumFourSquares(delta)
	return []*big.Int{a, b, c, d}, nil
}

func (*FourSquaresSplitter) SquareCount() int {
	return 4
}

func (*FourSquaresSplitter) Ld() uint {
	return 128
}
