// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"context"
	"encoding/binary"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"
)

// BoltOptions configures OpenBolt.
type BoltOptions struct {
	// Bucket is the name of the bolt bucket to use. Defaults to "snapshots".
	Bucket string
	// Now stamps entries on Put. Defaults to time.Now.
	Now func() time.Time
}

// BoltStore keeps every key in a single bbolt bucket.
// Layout per value: 8 bytes big endian updatedAt (unix nanos) || raw value.
type BoltStore struct {
	db     *bolt.DB
	bucket []byte
	now    func() time.Time
}

const headerLen = 8

// OpenBolt opens or creates the database at path.
func OpenBolt(path string, opts BoltOptions) (*BoltStore, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt store: %w", err)
	}
	bucket := []byte("snapshots")
	if opts.Bucket != "" {
		bucket = []byte(opts.Bucket)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucket)
		return err
	}); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create bolt bucket: %w", err)
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &BoltStore{db: db, bucket: bucket, now: now}, nil
}

func (s *BoltStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *BoltStore) Put(_ context.Context, key string, data []byte) error {
	buf := make([]byte, headerLen+len(data))
	binary.BigEndian.PutUint64(buf[:headerLen], uint64(s.now().UnixNano()))
	copy(buf[headerLen:], data)

	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(s.bucket).Put([]byte(key), buf)
	})
}

func (s *BoltStore) Get(_ context.Context, key string) ([]byte, error) {
	var out []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(s.bucket).Get([]byte(key))
		if v == nil {
			return ErrNotFound
		}
		if len(v) < headerLen {
			return fmt.Errorf("corrupt entry for %q", key)
		}
		// v is only valid inside the transaction.
		out = make([]byte, len(v)-headerLen)
		copy(out, v[headerLen:])
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *BoltStore) Delete(_ context.Context, key string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(s.bucket).Delete([]byte(key))
	})
}

// Purge deletes entries whose header predates cutoff. Entries too short to
// carry a header are removed too.
func (s *BoltStore) Purge(ctx context.Context, cutoff time.Time) (int, error) {
	var stale [][]byte
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(s.bucket)
		c := b.Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			if len(v) < headerLen {
				stale = append(stale, append([]byte(nil), k...))
				continue
			}
			updated := time.Unix(0, int64(binary.BigEndian.Uint64(v[:headerLen])))
			if updated.Before(cutoff) {
				stale = append(stale, append([]byte(nil), k...))
			}
		}
		for _, k := range stale {
			if err := b.Delete(k); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to purge bolt store: %w", err)
	}
	return len(stale), nil
}
