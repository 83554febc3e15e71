// Copyright 2016 Maarten Everts. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package keys

import (
	"sort"
)

// defaultBaseParameters holds per keylength the base parameters.
var defaultBaseParameters = map[int]BaseParameters{
	1024: {
		LePrime: 120,
		Lh:      256,
		Lm:      256,
		Ln:      1024,
		Lstatzk: 80,
	},
	2048: {
		LePrime: 120,
		Lh:      256,
		Lm:      256,
		Ln:      2048,
		Lstatzk: 128,
	},
	4096: {
		LePrime: 120,
		Lh:      256,
		Lm:      512,
		Ln:      4096,
		Lstatzk: 128,
	},
}

// MakeDerivedParameters computes the derived system parameters
func MakeDerivedParameters(base BaseParameters) DerivedParameters {
	Lv := base.Ln + 2*base.Lstatzk + base.Lh + base.Lm + 4
	return DerivedParameters{
		Le:            base.Lstatzk + base.Lh + base.Lm + 5,
		LeCommit:      base.LePrime + base.Lstatzk + base.Lh,
		LmCommit:      base.Lm + base.Lstatzk + base.Lh,
		LRA:           base.Ln + base.Lstatzk,
		LsCommit:      base.Lm + base.Lstatzk + base.Lh + 1,
		Lv:            Lv,
		LvCommit:      Lv + base.Lstatzk + base.Lh,
		LvPrime:       base.Ln + base.Lstatzk,
		LvPrimeCommit: base.Ln + 2*base.Lstatzk + base.Lh,
	}
}

// NewSystemParameters combines base parameters with the parameters derived from them.
func NewSystemParameters(base BaseParameters) *SystemParameters {
	return &SystemParameters{base, MakeDerivedParameters(base)}
}

// DefaultSystemParameters holds per keylength the default parameters.
var DefaultSystemParameters = map[int]*SystemParameters{
	1024: NewSystemParameters(defaultBaseParameters[1024]),
	2048: NewSystemParameters(defaultBaseParameters[2048]),
	4096: NewSystemParameters(defaultBaseParameters[4096]),
}

// DefaultKeyLengths returns the keylengths for which system parameters are available.
func DefaultKeyLengths() []int {
	lengths := make([]int, 0, len(DefaultSystemParameters))
	for k := range DefaultSystemParameters {
		lengths = append(lengths, k)
	}
	sort.Ints(lengths)
	return lengths
}
