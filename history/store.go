// Package history persists outcomes of settlement runs.
package history

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/zera-labs/janitor/settlement"
	"go.etcd.io/bbolt"
)

var bucket = []byte("outcomes")

// keyLen is the length of the record key: run ID followed by the big-endian
// outcome index.
const keyLen = 16 + 4

// ErrClosed is returned by operations of the closed Store.
var ErrClosed = errors.New("history store is closed")

// Record is a stored outcome.
type Record struct {
	Run   uuid.UUID `json:"-"`
	Index uint32    `json:"-"`

	// Saved is the time the outcome was persisted.
	Saved time.Time `json:"saved"`

	settlement.Outcome
}

// Store is an append-only outcome history backed by a bbolt database.
// Records are ordered by run ID and then by their index in the run.
type Store struct {
	db *bbolt.DB
}

// Open opens or creates the history database at path.
func Open(path string) (*Store, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open history database: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucket)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init history bucket: %w", err)
	}

	return &Store{db: db}, nil
}

// Close releases the database. The Store must not be used after.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func recordKey(run uuid.UUID, i uint32) []byte {
	k := make([]byte, keyLen)
	copy(k, run[:])
	binary.BigEndian.PutUint32(k[16:], i)
	return k
}

func decodeRecord(k, v []byte) (Record, error) {
	var r Record

	if len(k) != keyLen {
		return r, fmt.Errorf("invalid record key length %d", len(k))
	}
	copy(r.Run[:], k)
	r.Index = binary.BigEndian.Uint32(k[16:])

	if err := json.Unmarshal(v, &r); err != nil {
		return r, fmt.Errorf("decode record %s/%d: %w", r.Run, r.Index, err)
	}
	return r, nil
}

// Append stores outcomes of the run after the ones already stored for it.
func (s *Store) Append(run uuid.UUID, outcomes []settlement.Outcome) error {
	if s.db == nil {
		return ErrClosed
	}

	saved := time.Now().UTC()

	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucket)

		next := uint32(0)
		c := b.Cursor()
		for k, _ := c.Seek(run[:]); k != nil && bytes.HasPrefix(k, run[:]); k, _ = c.Next() {
			next = binary.BigEndian.Uint32(k[16:]) + 1
		}

		for i := range outcomes {
			v, err := json.Marshal(Record{Saved: saved, Outcome: outcomes[i]})
			if err != nil {
				return fmt.Errorf("encode outcome #%d: %w", i, err)
			}
			if err := b.Put(recordKey(run, next+uint32(i)), v); err != nil {
				return fmt.Errorf("put outcome #%d: %w", i, err)
			}
		}

		return nil
	})
}

// List returns all stored records.
func (s *Store) List() ([]Record, error) {
	return s.list(nil)
}

// Run returns the records of the given run.
func (s *Store) Run(run uuid.UUID) ([]Record, error) {
	return s.list(run[:])
}

func (s *Store) list(prefix []byte) ([]Record, error) {
	if s.db == nil {
		return nil, ErrClosed
	}

	var res []Record

	err := s.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket(bucket).Cursor()
		for k, v := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = c.Next() {
			r, err := decodeRecord(k, v)
			if err != nil {
				return err
			}
			res = append(res, r)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return res, nil
}
