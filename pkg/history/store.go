// Package history keeps a bbolt log of validation run outcomes.
package history

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"

	"github.com/wdm0006/frameguard/pkg/validate"
)

var runsBucket = []byte("runs")

// ErrNotFound is returned by Get for an unknown run id.
var ErrNotFound = errors.New("run not found")

// Failure is a failing summary row as stored in the log.
type Failure struct {
	Column    string  `json:"column"`
	Type      string  `json:"type"`
	Rule      string  `json:"rule"`
	Count     int     `json:"count"`
	ErrorRate float64 `json:"error_rate"`
	Severity  string  `json:"severity"`
}

// Record is one validation run.
type Record struct {
	RunID     uuid.UUID `json:"run_id"`
	Timestamp time.Time `json:"timestamp"`
	Source    string    `json:"source"`
	Rows      int       `json:"rows"`
	CleanRows int       `json:"clean_rows"`
	Pass      bool      `json:"pass"`
	HardPass  bool      `json:"hard_pass"`
	SoftPass  bool      `json:"soft_pass"`
	Flawless  bool      `json:"flawless"`
	Failures  []Failure `json:"failures,omitempty"`
}

// FromReport summarises a report for the log.
func FromReport(rep *validate.Report, source string) Record {
	rec := Record{
		RunID:     rep.RunID,
		Timestamp: rep.Timestamp,
		Source:    source,
		Rows:      rep.Cells.Rows(),
		Pass:      rep.Pass,
		HardPass:  rep.HardPass,
		SoftPass:  rep.SoftPass,
		Flawless:  rep.Flawless,
	}
	if rep.Clean != nil {
		rec.CleanRows = rep.Clean.Rows()
	}
	for _, e := range rep.Errors {
		rec.Failures = append(rec.Failures, Failure{
			Column:    e.Column,
			Type:      e.Type.String(),
			Rule:      e.Rule,
			Count:     e.Count,
			ErrorRate: e.ErrorRate,
			Severity:  string(e.Severity),
		})
	}
	return rec
}

// Store is a bbolt-backed run log. Keys sort by run time.
type Store struct {
	db *bolt.DB
	mu sync.RWMutex
}

// Open opens or creates the log at path.
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bolt db: %w", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(runsBucket)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init buckets: %w", err)
	}
	return &Store{db: db}, nil
}

// key is the run time in big-endian nanoseconds followed by the run id.
func key(r Record) []byte {
	k := make([]byte, 8, 8+len(r.RunID))
	binary.BigEndian.PutUint64(k, uint64(r.Timestamp.UnixNano()))
	return append(k, r.RunID[:]...)
}

// Put appends a record.
func (s *Store) Put(r Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(runsBucket).Put(key(r), data)
	})
}

// List returns up to limit records, newest first. limit <= 0 returns all.
func (s *Store) List(limit int) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Record
	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(runsBucket).Cursor()
		for k, v := c.Last(); k != nil; k, v = c.Prev() {
			if limit > 0 && len(out) >= limit {
				break
			}
			var r Record
			if err := json.Unmarshal(v, &r); err != nil {
				return fmt.Errorf("unmarshal run %x: %w", k, err)
			}
			out = append(out, r)
		}
		return nil
	})
	return out, err
}

// Get finds a run by id.
func (s *Store) Get(id uuid.UUID) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var found *Record
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(runsBucket).ForEach(func(k, v []byte) error {
			if found != nil || len(k) != 8+len(id) || uuid.UUID(k[8:]) != id {
				return nil
			}
			var r Record
			if err := json.Unmarshal(v, &r); err != nil {
				return err
			}
			found = &r
			return nil
		})
	})
	if err != nil {
		return Record{}, err
	}
	if found == nil {
		return Record{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return *found, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}
