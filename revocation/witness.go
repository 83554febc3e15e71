package revocation

import (
	"github.com/go-errors/errors"
	"github.com/multiformats/go-multihash"

	"github.com/privacybydesign/anoncreds/big"
	"github.com/privacybydesign/anoncreds/internal/common"
	"github.com/privacybydesign/anoncreds/signed"
)

// Witness is a witness for the RSA-B accumulator, used for proving nonrevocation against the
// Accumulator with the same Index. UpdateHash is the hash of the last update applied to it.
type Witness struct {
	U          *big.Int            `json:"u"`
	E          *big.Int            `json:"e"`
	Nu         *big.Int            `json:"nu"`
	Index      uint64              `json:"index"`
	RegIndex   uint64              `json:"reg_index"`
	UpdateHash multihash.Multihash `json:"update_hash"`
}

// Verify checks that the witness is valid against its own accumulator value.
func (w *Witness) Verify(pk *PublicKey) error {
	if w.U == nil || w.E == nil || w.Nu == nil {
		return errors.New("incomplete witness")
	}
	if !verify(w.U, w.E, w.Nu, pk.Group) {
		return errors.New("invalid witness")
	}
	return nil
}

// Accumulator returns the accumulator the witness is currently valid against.
func (w *Witness) Accumulator() Accumulator {
	return Accumulator{Nu: w.Nu, Index: w.Index}
}

// Update updates the witness using the specified update message from the issuer, after which
// the witness can be used to prove nonrevocation against the accumulator contained in the
// message. Messages the witness already applied are ignored; a message that does not directly
// follow the last applied one is rejected.
func (w *Witness) Update(pk *PublicKey, message signed.Message) error {
	update, err := pk.VerifyUpdate(message)
	if err != nil {
		return err
	}
	if update.Accumulator.Index <= w.Index {
		return nil
	}
	if _, err = pk.VerifyUpdateChain(w.UpdateHash, w.Index, message); err != nil {
		return err
	}

	n := pk.Group.N
	u := new(big.Int).Set(w.U)
	for _, e := range update.Issued {
		u.Exp(u, e, n)
	}

	if len(update.Revoked) > 1 {
		return errors.New("updates revoking more than one attribute are not supported")
	}
	for _, e := range update.Revoked {
		if e.Cmp(w.E) == 0 {
			return common.Errorf(common.WitnessRevoked, "witness at index %d was revoked", w.RegIndex)
		}
		a, b, gcd := common.ExtendedGCD(w.E, e)
		if gcd.Cmp(bigOne) != 0 {
			return common.Errorf(common.WitnessRevoked, "revocation attribute not coprime")
		}
		// u' = u^b * nu'^a, so that u'^E = u^(bE) nu'^(aE) = nu'^(e'b + aE) = nu'
		u.Mul(new(big.Int).Exp(u, b, n), new(big.Int).Exp(update.Accumulator.Nu, a, n)).Mod(u, n)
	}

	if !verify(u, w.E, update.Accumulator.Nu, pk.Group) {
		return errors.New("nonrevocation witness invalidated by update")
	}

	hash, err := Hash(message)
	if err != nil {
		return err
	}

	// Update witness state only now after all possible errors have not occurred
	w.U = u
	w.Nu = update.Accumulator.Nu
	w.Index = update.Accumulator.Index
	w.UpdateHash = hash

	Logger.Tracef("witness updated to accumulator index %d", w.Index)
	return nil
}

// UpdateAll applies the specified update messages in order.
func (w *Witness) UpdateAll(pk *PublicKey, messages []signed.Message) error {
	for _, msg := range messages {
		if err := w.Update(pk, msg); err != nil {
			return err
		}
	}
	return nil
}

func verify(u, e, nu *big.Int, grp *QrGroup) bool {
	return new(big.Int).Exp(u, e, grp.N).Cmp(nu) == 0
}
