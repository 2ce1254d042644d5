package history

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.etcd.io/bbolt"
)

var buckets = struct {
	Metadata  []byte
	Completed []byte
	Failed    []byte
}{
	Metadata:  []byte("__metadata__"),
	Completed: []byte("completed"),
	Failed:    []byte("failed"),
}

var metadataKeys = struct {
	Version []byte
}{
	Version: []byte("version"),
}

const currentVersion = 1

// Record is one remembered download attempt, keyed by the normalized URL.
type Record struct {
	ID        string    `json:"id"`
	URL       string    `json:"url"`
	Path      string    `json:"path,omitempty"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Store persists download history. History is advisory: a nil *Store is
// valid, remembers nothing, and every method degrades to a no-op.
type Store struct {
	db *bbolt.DB
}

// DefaultPath is where Open looks when no explicit path is configured.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".nerucordarchiver", "history.db")
	}
	return filepath.Join(home, ".nerucordarchiver", "history.db")
}

func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		metadata, err := tx.CreateBucketIfNotExists(buckets.Metadata)
		if err != nil {
			return err
		}
		if _, err := tx.CreateBucketIfNotExists(buckets.Completed); err != nil {
			return err
		}
		if _, err := tx.CreateBucketIfNotExists(buckets.Failed); err != nil {
			return err
		}
		versionBytes, err := json.Marshal(currentVersion)
		if err != nil {
			return err
		}
		return metadata.Put(metadataKeys.Version, versionBytes)
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Completed returns the completed record for a URL, if any.
func (s *Store) Completed(url string) (Record, bool) {
	if s == nil || s.db == nil {
		return Record{}, false
	}
	var record Record
	var found bool
	_ = s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(buckets.Completed).Get([]byte(url))
		if data == nil {
			return nil
		}
		if err := json.Unmarshal(data, &record); err != nil {
			return err
		}
		found = true
		return nil
	})
	return record, found
}

// IsDownloaded reports whether a URL already has a completed record.
func (s *Store) IsDownloaded(url string) bool {
	_, found := s.Completed(url)
	return found
}

// MarkCompleted records a finished download, clearing any earlier failure
// for the same URL.
func (s *Store) MarkCompleted(url, path string) error {
	if s == nil || s.db == nil {
		return nil
	}
	data, err := json.Marshal(Record{
		ID:        uuid.NewString(),
		URL:       url,
		Path:      path,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.Bucket(buckets.Failed).Delete([]byte(url)); err != nil {
			return err
		}
		return tx.Bucket(buckets.Completed).Put([]byte(url), data)
	})
}

// MarkFailed records a failed download, clearing any earlier completion for
// the same URL.
func (s *Store) MarkFailed(url, message string) error {
	if s == nil || s.db == nil {
		return nil
	}
	data, err := json.Marshal(Record{
		ID:        uuid.NewString(),
		URL:       url,
		Error:     message,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.Bucket(buckets.Completed).Delete([]byte(url)); err != nil {
			return err
		}
		return tx.Bucket(buckets.Failed).Put([]byte(url), data)
	})
}

// Failed lists the failed records in key order.
func (s *Store) Failed() ([]Record, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var records []Record
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(buckets.Failed).ForEach(func(k, v []byte) error {
			var record Record
			if err := json.Unmarshal(v, &record); err != nil {
				return err
			}
			records = append(records, record)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

// ClearFailed deletes every failed record, returning how many were removed.
func (s *Store) ClearFailed() (int, error) {
	if s == nil || s.db == nil {
		return 0, nil
	}
	count := 0
	err := s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(buckets.Failed)
		cursor := bucket.Cursor()
		for k, _ := cursor.First(); k != nil; k, _ = cursor.Next() {
			if err := cursor.Delete(); err != nil {
				return err
			}
			count++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}
