package revocation

import (
	"fmt"
	"time"

	"github.com/go-errors/errors"
	"github.com/timshannon/bolthold"
	bolt "go.etcd.io/bbolt"

	"github.com/privacybydesign/anoncreds/cbor"
	"github.com/privacybydesign/anoncreds/signed"
)

type (
	// DB is a bolthold database storing the state of revocation registries together with
	// all updates they published. It implements Committer.
	DB struct {
		bolt *bolthold.Store
	}

	// DBOptions configures the database.
	DBOptions struct {
		// Timeout is how long to wait for the file lock held by another process.
		Timeout time.Duration
	}

	// UpdateRecord contains a signed Update of a registry.
	UpdateRecord struct {
		SeqNo   int
		Index   uint64
		Message signed.Message
	}
)

// OpenDB opens or creates the database at the specified path.
func OpenDB(path string, opts *DBOptions) (*DB, error) {
	timeout := 1 * time.Second
	if opts != nil && opts.Timeout != 0 {
		timeout = opts.Timeout
	}
	b, err := bolthold.Open(path, 0600, &bolthold.Options{
		Encoder: cbor.Marshal,
		Decoder: cbor.Unmarshal,
		Options: &bolt.Options{Timeout: timeout},
	})
	if err != nil {
		return nil, err
	}
	return &DB{bolt: b}, nil
}

func updateKey(seqNo int, index uint64) string {
	return fmt.Sprintf("%d/%020d", seqNo, index)
}

// Commit stores the registry record and its update in a single transaction.
func (rdb *DB) Commit(rec *Record, update signed.Message) error {
	return rdb.bolt.Bolt().Update(func(tx *bolt.Tx) error {
		if err := rdb.bolt.TxUpsert(tx, rec.SeqNo, rec); err != nil {
			return err
		}
		return rdb.bolt.TxInsert(tx, updateKey(rec.SeqNo, rec.Accumulator.Index), &UpdateRecord{
			SeqNo:   rec.SeqNo,
			Index:   rec.Accumulator.Index,
			Message: update,
		})
	})
}

// Record returns the last committed state of the specified registry.
func (rdb *DB) Record(seqNo int) (*Record, error) {
	rec := &Record{}
	if err := rdb.bolt.Get(seqNo, rec); err == bolthold.ErrNotFound {
		return nil, errors.Errorf("revocation registry %d not found", seqNo)
	} else if err != nil {
		return nil, err
	}
	return rec, nil
}

// Updates returns, in order, the update messages of the specified registry following the
// update with the specified index, i.e. all updates a holder needs whose witness is at that index.
func (rdb *DB) Updates(seqNo int, since uint64) ([]signed.Message, error) {
	var records []UpdateRecord
	err := rdb.bolt.Find(&records,
		bolthold.Where("SeqNo").Eq(seqNo).And("Index").Gt(since).SortBy("Index"))
	if err != nil {
		return nil, err
	}
	msgs := make([]signed.Message, 0, len(records))
	for _, r := range records {
		msgs = append(msgs, r.Message)
	}
	return msgs, nil
}

// OpenRegistry resumes the specified registry from the database, committing future changes
// to it.
func (rdb *DB) OpenRegistry(sk *PrivateKey, pk *PublicKey, seqNo int) (*Registry, error) {
	rec, err := rdb.Record(seqNo)
	if err != nil {
		return nil, err
	}
	return OpenRegistry(sk, pk, rec, rdb)
}

func (rdb *DB) Close() error {
	if rdb.bolt != nil {
		return rdb.bolt.Close()
	}
	return nil
}
