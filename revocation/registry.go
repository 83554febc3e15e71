package revocation

import (
	"crypto/rand"
	"encoding/binary"
	"sync"
	"time"

	"github.com/go-errors/errors"
	"github.com/multiformats/go-multihash"
	"github.com/sirupsen/logrus"

	"github.com/privacybydesign/anoncreds/big"
	"github.com/privacybydesign/anoncreds/internal/common"
	"github.com/privacybydesign/anoncreds/signed"
)

type (
	// RegistryState is the public state of a registry, which verifiers need to check
	// nonrevocation proofs against. A registry belongs to a single claim definition.
	RegistryState struct {
		SeqNo       int         `json:"seq_no"`
		IssuerDID   string      `json:"issuer_did"`
		SchemaSeqNo int         `json:"schema_seq_no"`
		MaxClaimNum uint64      `json:"max_claim_num"`
		Accumulator Accumulator `json:"accumulator"`
	}

	// Record is the complete issuer-side state of a registry.
	Record struct {
		RegistryState
		TailsKey    []byte              `json:"tails_key"`
		Issued      map[uint64]bool     `json:"issued"`
		Generations map[uint64]uint64   `json:"generations"`
		LastHash    multihash.Multihash `json:"last_hash"`
	}

	// Committer persists the new state of a registry together with the update that led to it.
	// A registry only applies a change after its Committer accepted it.
	Committer interface {
		Commit(rec *Record, update signed.Message) error
	}

	// Registry is the issuer's revocation registry. All changes are serialized.
	Registry struct {
		mu        sync.Mutex
		sk        *PrivateKey
		pk        *PublicKey
		rec       Record
		committer Committer
	}
)

// NewRegistry creates an empty registry with room for maxClaimNum claims of the claim definition
// of issuerDID for schemaSeqNo, returning it together with its initial update message.
func NewRegistry(sk *PrivateKey, pk *PublicKey, issuerDID string, schemaSeqNo, seqNo int, maxClaimNum uint64, committer Committer) (*Registry, signed.Message, error) {
	if issuerDID == "" {
		return nil, nil, common.Errorf(common.InvalidStructure, "registry needs an issuer")
	}
	if maxClaimNum == 0 {
		return nil, nil, common.Errorf(common.InvalidStructure, "registry needs room for at least one claim")
	}
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return nil, nil, err
	}

	r := &Registry{
		sk: sk,
		pk: pk,
		rec: Record{
			RegistryState: RegistryState{
				SeqNo:       seqNo,
				IssuerDID:   issuerDID,
				SchemaSeqNo: schemaSeqNo,
				MaxClaimNum: maxClaimNum,
				Accumulator: Accumulator{Nu: common.RandomQR(sk.N)},
			},
			TailsKey:    key,
			Issued:      map[uint64]bool{},
			Generations: map[uint64]uint64{},
			LastHash:    initialHash(),
		},
		committer: committer,
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	next := r.rec.clone()
	msg, err := r.commit(&next, &Update{Accumulator: next.Accumulator})
	if err != nil {
		return nil, nil, err
	}
	return r, msg, nil
}

// OpenRegistry resumes a registry from a previously committed Record.
func OpenRegistry(sk *PrivateKey, pk *PublicKey, rec *Record, committer Committer) (*Registry, error) {
	if rec.Accumulator.Nu == nil || len(rec.TailsKey) == 0 || len(rec.LastHash) == 0 {
		return nil, errors.New("incomplete registry record")
	}
	r := &Registry{sk: sk, pk: pk, rec: rec.clone(), committer: committer}
	if r.rec.Issued == nil {
		r.rec.Issued = map[uint64]bool{}
	}
	if r.rec.Generations == nil {
		r.rec.Generations = map[uint64]uint64{}
	}
	return r, nil
}

// BelongsTo reports whether the registry holds claims of the claim definition of issuerDID for
// schemaSeqNo.
func (s *RegistryState) BelongsTo(issuerDID string, schemaSeqNo int) bool {
	return s.IssuerDID == issuerDID && s.SchemaSeqNo == schemaSeqNo
}

func (r *Registry) PublicKey() *PublicKey {
	return r.pk
}

func (r *Registry) State() RegistryState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rec.RegistryState
}

// Record returns a copy of the complete state of the registry.
func (r *Registry) Record() Record {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rec.clone()
}

// Issue adds the tail at the specified index to the accumulator, or at the smallest free
// index if index is nil, and returns the witness for it along with the update message.
// If sign is not nil it is called with the tail before anything is committed; an error
// from it leaves the registry untouched and the index free.
func (r *Registry) Issue(index *uint64, sign func(e *big.Int) error) (*Witness, signed.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var idx uint64
	if index != nil {
		idx = *index
		if idx >= r.rec.MaxClaimNum {
			return nil, nil, common.Errorf(common.RegistryFull, "index %d exceeds registry size %d", idx, r.rec.MaxClaimNum)
		}
		if r.rec.Issued[idx] {
			return nil, nil, common.Errorf(common.RevocationIndexInUse, "index %d already issued", idx)
		}
	} else {
		var found bool
		for idx = 0; idx < r.rec.MaxClaimNum; idx++ {
			if !r.rec.Issued[idx] {
				found = true
				break
			}
		}
		if !found {
			return nil, nil, common.Errorf(common.RegistryFull, "all %d indices issued", r.rec.MaxClaimNum)
		}
	}

	e, err := r.rec.tail(idx)
	if err != nil {
		return nil, nil, err
	}
	if sign != nil {
		if err = sign(e); err != nil {
			return nil, nil, err
		}
	}

	prevNu := r.rec.Accumulator.Nu
	next := r.rec.clone()
	next.Accumulator = Accumulator{
		Nu:    new(big.Int).Exp(prevNu, e, r.sk.N),
		Index: r.rec.Accumulator.Index + 1,
	}
	next.Issued[idx] = true

	msg, err := r.commit(&next, &Update{Accumulator: next.Accumulator, Issued: []*big.Int{e}})
	if err != nil {
		return nil, nil, err
	}
	Logger.WithFields(logrus.Fields{"registry": r.rec.SeqNo, "index": idx}).Debug("issued revocation index")

	return &Witness{
		U:          new(big.Int).Set(prevNu),
		E:          e,
		Nu:         r.rec.Accumulator.Nu,
		Index:      r.rec.Accumulator.Index,
		RegIndex:   idx,
		UpdateHash: r.rec.LastHash,
	}, msg, nil
}

// Revoke removes the tail at the specified index from the accumulator, freeing the index.
func (r *Registry) Revoke(index uint64) (signed.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.rec.Issued[index] {
		return nil, common.Errorf(common.IndexNotIssued, "index %d is not issued", index)
	}
	e, err := r.rec.tail(index)
	if err != nil {
		return nil, err
	}
	eInverse, ok := common.ModInverse(e, r.sk.Order())
	if !ok {
		return nil, errors.New("revocation attribute has no inverse")
	}

	next := r.rec.clone()
	next.Accumulator = Accumulator{
		Nu:    new(big.Int).Exp(r.rec.Accumulator.Nu, eInverse, r.sk.N),
		Index: r.rec.Accumulator.Index + 1,
	}
	delete(next.Issued, index)
	next.Generations[index]++

	msg, err := r.commit(&next, &Update{Accumulator: next.Accumulator, Revoked: []*big.Int{e}})
	if err != nil {
		return nil, err
	}
	Logger.WithFields(logrus.Fields{"registry": r.rec.SeqNo, "index": index}).Debug("revoked revocation index")
	return msg, nil
}

// commit signs the update, hands it to the committer and swaps in the new state.
// The caller must hold r.mu.
func (r *Registry) commit(next *Record, update *Update) (signed.Message, error) {
	update.ParentHash = r.rec.LastHash
	update.Time = time.Now().UnixNano()
	msg, err := signed.MarshalSign(r.sk.ECDSA, update)
	if err != nil {
		return nil, err
	}
	if next.LastHash, err = Hash(msg); err != nil {
		return nil, err
	}
	if r.committer != nil {
		if err = r.committer.Commit(next, msg); err != nil {
			return nil, errors.WrapPrefix(err, "failed to commit registry update", 0)
		}
	}
	r.rec = *next
	return msg, nil
}

// Tail returns the prime currently assigned to the specified index.
func (r *Registry) Tail(index uint64) (*big.Int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if index >= r.rec.MaxClaimNum {
		return nil, common.Errorf(common.RegistryFull, "index %d exceeds registry size %d", index, r.rec.MaxClaimNum)
	}
	return r.rec.tail(index)
}

func (rec *Record) tail(index uint64) (*big.Int, error) {
	var idx, gen [8]byte
	binary.BigEndian.PutUint64(idx[:], index)
	binary.BigEndian.PutUint64(gen[:], rec.Generations[index])
	return common.HashToPrime(parameters.attributeMinSize, rec.TailsKey, idx[:], gen[:])
}

func (rec *Record) clone() Record {
	c := *rec
	c.Issued = make(map[uint64]bool, len(rec.Issued))
	for k, v := range rec.Issued {
		c.Issued[k] = v
	}
	c.Generations = make(map[uint64]uint64, len(rec.Generations))
	for k, v := range rec.Generations {
		c.Generations[k] = v
	}
	return c
}
