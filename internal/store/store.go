// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/apex/log"

	awsx "github.com/staranto/memobucket/internal/aws"
)

// ErrNotFound is returned by Get when no entry exists for a key.
var ErrNotFound = errors.New("store: not found")

// Store is a flat key/value space for snapshot documents.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, data []byte) error
	Delete(ctx context.Context, key string) error
	// Purge removes entries last written before cutoff and reports how many
	// went.
	Purge(ctx context.Context, cutoff time.Time) (int, error)
	Close() error
}

// Open builds a Store from a URL:
//
//	file:///abs/dir      one file per key (empty path means the default dir)
//	bolt:///abs/file.db  a bbolt database
//	s3://bucket/prefix   an S3 bucket; ?region=, ?profile=, ?endpoint=
//	mem://name           a process-wide in-memory store
func Open(ctx context.Context, rawURL string) (Store, error) {
	if rawURL == "" {
		rawURL = "file://"
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid store URL %q: %w", rawURL, err)
	}
	log.Debugf("opening %s store %s", u.Scheme, rawURL)

	switch u.Scheme {
	case "file":
		dir := localPath(u)
		if dir == "" {
			d, ok := Dir()
			if !ok {
				return nil, errors.New("cannot resolve a cache directory")
			}
			dir = d
		}
		return NewFileStore(dir)
	case "bolt":
		path := localPath(u)
		if path == "" {
			return nil, errors.New("bolt store needs a database path")
		}
		return OpenBolt(path, BoltOptions{Bucket: u.Query().Get("bucket")})
	case "s3":
		if u.Host == "" {
			return nil, errors.New("s3 store needs a bucket name")
		}
		q := u.Query()
		client, err := awsx.NewS3Client(ctx,
			awsx.WithProfile(q.Get("profile")),
			awsx.WithRegion(q.Get("region")),
			awsx.WithEndpoint(q.Get("endpoint")),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create S3 client: %w", err)
		}
		return NewS3Store(client, u.Host, strings.TrimPrefix(u.Path, "/")), nil
	case "mem":
		return SharedMemoryStore(u.Host + u.Path), nil
	default:
		return nil, fmt.Errorf("unsupported store scheme %q", u.Scheme)
	}
}

// localPath accepts both file:///abs and file://relative forms.
func localPath(u *url.URL) string {
	p := u.Host + u.Path
	if p == "" {
		p = u.Opaque
	}
	if p == "" {
		return ""
	}
	return filepath.Clean(p)
}

// encodeKey hashes k with MD5 and returns the hex string.
func encodeKey(k string) string {
	h := md5.New()
	_, _ = h.Write([]byte(k))
	return hex.EncodeToString(h.Sum(nil))
}
