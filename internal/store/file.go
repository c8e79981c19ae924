// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/apex/log"
)

const (
	// EnvCacheDir overrides the default cache directory.
	EnvCacheDir = "MEMOBUCKET_CACHE_DIR"
	// EnvCache disables persistence when set to "0" or "false".
	EnvCache = "MEMOBUCKET_CACHE"
)

// Dir resolves the base cache directory.
// Precedence:
//  1. MEMOBUCKET_CACHE_DIR, if set and non-empty
//  2. os.UserCacheDir()/memobucket
//
// Returns ("", false) if a base cannot be resolved.
func Dir() (string, bool) {
	if c, ok := os.LookupEnv(EnvCacheDir); ok && c != "" {
		return c, true
	}
	if dir, err := os.UserCacheDir(); err == nil && dir != "" {
		return filepath.Join(dir, "memobucket"), true
	}
	return "", false
}

// Enabled returns true unless MEMOBUCKET_CACHE explicitly disables it
// ("0"/"false").
func Enabled() bool {
	enabled, _ := os.LookupEnv(EnvCache)
	return enabled == "" || (enabled != "0" && enabled != "false")
}

// FileStore keeps one file per key under a base directory. File names are
// the MD5 of the key.
type FileStore struct {
	base string
}

// NewFileStore creates base if needed.
func NewFileStore(base string) (*FileStore, error) {
	if err := os.MkdirAll(base, 0o755); err != nil { //nolint:mnd
		return nil, fmt.Errorf("failed to create cache base directory: %w", err)
	}
	return &FileStore{base: base}, nil
}

// Base returns the directory holding the entries.
func (s *FileStore) Base() string { return s.base }

// Path returns where the entry for key lives.
func (s *FileStore) Path(key string) string {
	return filepath.Join(s.base, encodeKey(key))
}

func (s *FileStore) Get(_ context.Context, key string) ([]byte, error) {
	b, err := os.ReadFile(s.Path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cache entry: %w", err)
	}
	return b, nil
}

func (s *FileStore) Put(_ context.Context, key string, data []byte) error {
	if err := os.WriteFile(s.Path(key), data, os.FileMode(0o600)); err != nil { //nolint:mnd
		return fmt.Errorf("failed to write to cache: %w", err)
	}
	return nil
}

func (s *FileStore) Delete(_ context.Context, key string) error {
	if err := os.Remove(s.Path(key)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete cache entry: %w", err)
	}
	return nil
}

// Purge removes files last modified before cutoff.
func (s *FileStore) Purge(ctx context.Context, cutoff time.Time) (int, error) {
	removed := 0
	err := filepath.WalkDir(s.base, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		if info.ModTime().Before(cutoff) {
			if err := os.Remove(path); err == nil {
				removed++
				log.Debugf("removed cache file %s", path)
			} else {
				log.WithError(err).Warnf("failed to remove cache file %s", path)
			}
		}
		return nil
	})
	if err != nil {
		return removed, fmt.Errorf("failed to purge cache: %w", err)
	}
	return removed, nil
}

func (s *FileStore) Close() error { return nil }
