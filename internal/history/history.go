// Package history persists per-root scan results between runs using
// BoltDB, so a summary can report growth since the previous scan.
// One record per scan root; recording a run overwrites the root's
// previous record after it has been read.
package history

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

const bucketName = "runs"

// Run is the persisted outcome of one scan: aggregate stats plus
// per-category totals, enough to compute deltas without keeping the
// tree around.
type Run struct {
	When        time.Time        `json:"when"`
	Files       int64            `json:"files"`
	Directories int64            `json:"directories"`
	TotalBytes  int64            `json:"totalBytes"`
	Errors      int64            `json:"errors"`
	Categories  map[string]Total `json:"categories,omitempty"`
}

// Total is one category's aggregate for a run.
type Total struct {
	Count int64 `json:"count"`
	Bytes int64 `json:"bytes"`
}

// Store provides run history access. A Store opened with an empty
// path is disabled: all methods are no-ops.
type Store struct {
	db      *bolt.DB
	enabled bool
}

// Open opens (or creates) the history database. BoltDB's file locking
// rejects concurrent instances; the 1s timeout turns a held lock into
// an error instead of a hang. Returns a disabled store if path is
// empty.
func Open(path string) (*Store, error) {
	if path == "" {
		return &Store{}, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create history dir: %w", err)
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open history (locked by another instance?): %w", err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketName))
		return err
	}); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db, enabled: true}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Last returns the previous run recorded for root, or nil if none.
func (s *Store) Last(root string) (*Run, error) {
	if !s.enabled {
		return nil, nil
	}
	var run *Run
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket([]byte(bucketName)).Get([]byte(root))
		if data == nil {
			return nil
		}
		run = &Run{}
		return json.Unmarshal(data, run)
	})
	if err != nil {
		return nil, fmt.Errorf("history lookup: %w", err)
	}
	return run, nil
}

// Record stores the run for root, replacing any previous record.
func (s *Store) Record(root string, run Run) error {
	if !s.enabled {
		return nil
	}
	data, err := json.Marshal(run)
	if err != nil {
		return err
	}
	err = s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketName)).Put([]byte(root), data)
	})
	if err != nil {
		return fmt.Errorf("history record: %w", err)
	}
	return nil
}
