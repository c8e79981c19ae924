// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	data      []byte
	updatedAt time.Time
}

// MemoryStore is a map guarded by a mutex. Values are copied in and out.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemoryStore returns an empty store. A nil now means time.Now.
func NewMemoryStore(now func() time.Time) *MemoryStore {
	if now == nil {
		now = time.Now
	}
	return &MemoryStore{entries: make(map[string]memoryEntry), now: now}
}

var shared = struct {
	mu     sync.Mutex
	stores map[string]*MemoryStore
}{stores: make(map[string]*MemoryStore)}

// SharedMemoryStore returns the process-wide store registered under name,
// creating it on first use. Every mem://name URL resolves here.
func SharedMemoryStore(name string) *MemoryStore {
	shared.mu.Lock()
	defer shared.mu.Unlock()
	s, ok := shared.stores[name]
	if !ok {
		s = NewMemoryStore(nil)
		shared.stores[name] = s
	}
	return s
}

func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), e.data...), nil
}

func (s *MemoryStore) Put(_ context.Context, key string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = memoryEntry{data: append([]byte(nil), data...), updatedAt: s.now()}
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}

func (s *MemoryStore) Purge(_ context.Context, cutoff time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for k, e := range s.entries {
		if e.updatedAt.Before(cutoff) {
			delete(s.entries, k)
			n++
		}
	}
	return n, nil
}

// Len reports the number of entries.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *MemoryStore) Close() error { return nil }
