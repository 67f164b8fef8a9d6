// Package localstore is the device-side persistence layer: the in-progress
// draft, the selected team and the locked submission copy, all keyed by device
// id. It is a cache over the authoritative store, never a source of truth.
package localstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.etcd.io/bbolt"

	"github.com/freddywood17/team-racing-app/models"
)

const (
	draftsBucket = "drafts"
	lockedBucket = "locked"
)

type Store interface {
	GetDraft(deviceID, competitionID string) (*models.Draft, bool, error)
	PutDraft(deviceID, competitionID string, draft *models.Draft) error
	DeleteDraft(deviceID, competitionID string) error

	// GetLocked returns the device's locked submission copy, written once at
	// lock time and read thereafter to render the my-predictions view without
	// a network round trip.
	GetLocked(deviceID, competitionID string) (*models.Submission, bool, error)
	PutLocked(deviceID, competitionID string, submission *models.Submission) error
	DeleteLocked(deviceID, competitionID string) error

	Close() error
}

// BoltStore implements Store using a single BoltDB file.
type BoltStore struct {
	db *bbolt.DB
}

func NewBoltStore(dbPath string) (*BoltStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create store directory %s: %w", dir, err)
	}

	db, err := bbolt.Open(dbPath, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open BoltDB at %s: %w", dbPath, err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, name := range []string{draftsBucket, lockedBucket} {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create buckets: %w", err)
	}

	return &BoltStore{db: db}, nil
}

// storeKey scopes entries by device and competition: a device switching teams
// or competitions never reconciles against another device's state.
func storeKey(deviceID, competitionID string) []byte {
	return []byte(deviceID + "/" + competitionID)
}

func (s *BoltStore) GetDraft(deviceID, competitionID string) (*models.Draft, bool, error) {
	var draft models.Draft
	found, err := s.get(draftsBucket, storeKey(deviceID, competitionID), &draft)
	if err != nil || !found {
		return nil, false, err
	}
	return &draft, true, nil
}

func (s *BoltStore) PutDraft(deviceID, competitionID string, draft *models.Draft) error {
	return s.put(draftsBucket, storeKey(deviceID, competitionID), draft)
}

func (s *BoltStore) DeleteDraft(deviceID, competitionID string) error {
	return s.delete(draftsBucket, storeKey(deviceID, competitionID))
}

func (s *BoltStore) GetLocked(deviceID, competitionID string) (*models.Submission, bool, error) {
	var sub models.Submission
	found, err := s.get(lockedBucket, storeKey(deviceID, competitionID), &sub)
	if err != nil || !found {
		return nil, false, err
	}
	return &sub, true, nil
}

func (s *BoltStore) PutLocked(deviceID, competitionID string, submission *models.Submission) error {
	return s.put(lockedBucket, storeKey(deviceID, competitionID), submission)
}

func (s *BoltStore) DeleteLocked(deviceID, competitionID string) error {
	return s.delete(lockedBucket, storeKey(deviceID, competitionID))
}

func (s *BoltStore) get(bucket string, key []byte, dst interface{}) (bool, error) {
	var found bool
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(bucket))
		if b == nil {
			return nil
		}
		data := b.Get(key)
		if data == nil {
			return nil
		}
		found = true
		return json.Unmarshal(data, dst)
	})
	if err != nil {
		return false, fmt.Errorf("failed to get key %s: %w", key, err)
	}
	return found, nil
}

func (s *BoltStore) put(bucket string, key []byte, value interface{}) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(bucket))
		if b == nil {
			return fmt.Errorf("bucket %s does not exist", bucket)
		}
		data, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("failed to marshal value: %w", err)
		}
		return b.Put(key, data)
	})
}

func (s *BoltStore) delete(bucket string, key []byte) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(bucket))
		if b == nil {
			return nil
		}
		return b.Delete(key)
	})
}

func (s *BoltStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
