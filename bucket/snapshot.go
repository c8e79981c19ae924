// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package bucket

import (
	"encoding/json"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// Snapshot is the field-for-field serializable form of a Bucket. Epoch is an
// absolute UTC instant so a restored bucket measures elapsed time against
// the wall clock.
type Snapshot[T any] struct {
	Policy Policy    `json:"policy" yaml:"policy"`
	Value  *T        `json:"value,omitempty" yaml:"value,omitempty"`
	Hits   uint64    `json:"hits" yaml:"hits"`
	Epoch  time.Time `json:"epoch" yaml:"epoch"`
}

// Snapshot captures the bucket's current state. The value is copied.
func (b *Bucket[T]) Snapshot() Snapshot[T] {
	s := Snapshot[T]{
		Policy: b.policy,
		Hits:   b.hits,
		Epoch:  b.epoch.Round(0).UTC(),
	}
	if v, ok := b.Peek(); ok {
		s.Value = &v
	}
	return s
}

// Restore rebuilds a Bucket from s, copying the value. A snapshot without a
// value restores as Empty with its hits discarded; one without an epoch
// restores as a new bucket.
func Restore[T any](s Snapshot[T], opts ...Option) *Bucket[T] {
	b := New[T](s.Policy, opts...)
	if s.Epoch.IsZero() {
		return b
	}
	b.epoch = s.Epoch
	if s.Value != nil {
		b.value = b.copy(*s.Value)
		b.cached = true
		b.hits = s.Hits
	}
	return b
}

// Format selects a snapshot encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// EncodeSnapshot serializes s in format f.
func EncodeSnapshot[T any](f Format, s Snapshot[T]) ([]byte, error) {
	switch f {
	case FormatJSON, "":
		return json.Marshal(s)
	case FormatYAML:
		return yaml.Marshal(s)
	default:
		return nil, fmt.Errorf("unsupported snapshot format %q", f)
	}
}

// DecodeSnapshot parses data produced by EncodeSnapshot with the same format.
func DecodeSnapshot[T any](f Format, data []byte) (Snapshot[T], error) {
	var s Snapshot[T]
	var err error
	switch f {
	case FormatJSON, "":
		err = json.Unmarshal(data, &s)
	case FormatYAML:
		err = yaml.Unmarshal(data, &s)
	default:
		return s, fmt.Errorf("unsupported snapshot format %q", f)
	}
	if err != nil {
		return s, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return s, nil
}
