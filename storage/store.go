package storage

import (
	"bytes"
	"sync"

	"xdao.co/lfpkg/cidutil"
)

// Store is a content-addressed payload store keyed by package id.
//
// Contract:
// - Put MUST be idempotent and return cidutil.PackageID(payload).
// - Stored payloads MUST be immutable.
// - Get MUST return ErrNotFound when the id is absent and ErrInvalidPackageID
//   when id is not a well-formed package id.
// - Get MUST NOT return bytes whose package id differs from the requested id.
type Store interface {
	Put(payload []byte) (string, error)
	Get(id string) ([]byte, error)
	Has(id string) bool
}

// Memory is an in-process Store. The zero value is ready to use.
type Memory struct {
	mu sync.RWMutex
	m  map[string][]byte
}

var _ Store = (*Memory)(nil)

func (s *Memory) Put(payload []byte) (string, error) {
	id := cidutil.PackageID(payload)
	s.mu.Lock()
	defer s.mu.Unlock()
	if have, ok := s.m[id]; ok {
		if !bytes.Equal(have, payload) {
			return "", ErrImmutable
		}
		return id, nil
	}
	if s.m == nil {
		s.m = make(map[string][]byte)
	}
	s.m[id] = bytes.Clone(payload)
	return id, nil
}

func (s *Memory) Get(id string) ([]byte, error) {
	if !cidutil.ValidPackageID(id) {
		return nil, ErrInvalidPackageID
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.m[id]
	if !ok {
		return nil, ErrNotFound
	}
	return bytes.Clone(b), nil
}

func (s *Memory) Has(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.m[id]
	return ok
}

// Verify checks that b is the payload addressed by id.
func Verify(id string, b []byte) error {
	if cidutil.PackageID(b) != id {
		return ErrDigestMismatch
	}
	return nil
}
