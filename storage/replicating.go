package storage

import (
	"fmt"

	"xdao.co/lfpkg/cidutil"
)

// NamedStore associates a Store with a stable backend name for reporting.
type NamedStore struct {
	Name  string
	Store Store
}

// Replicated writes to every backend and reads from the first that has the
// payload.
//
// Put fails with ErrDigestMismatch if any backend reports an id other than
// the payload's package id.
type Replicated struct {
	Backends []NamedStore
}

var _ Store = Replicated{}

// PutAll writes payload to every backend and returns the package id along
// with the id each backend reported.
func (r Replicated) PutAll(payload []byte) (string, map[string]string, error) {
	if len(r.Backends) == 0 {
		return "", nil, fmt.Errorf("storage: Replicated has no backends")
	}
	want := cidutil.PackageID(payload)
	out := make(map[string]string, len(r.Backends))
	for _, b := range r.Backends {
		if b.Store == nil {
			return "", nil, fmt.Errorf("storage: nil store for backend %q", b.Name)
		}
		got, err := b.Store.Put(payload)
		if err != nil {
			return "", out, fmt.Errorf("storage: backend %q: %w", b.Name, err)
		}
		out[b.Name] = got
		if got != want {
			return "", out, ErrDigestMismatch
		}
	}
	return want, out, nil
}

func (r Replicated) Put(payload []byte) (string, error) {
	id, _, err := r.PutAll(payload)
	return id, err
}

func (r Replicated) Get(id string) ([]byte, error) {
	for _, b := range r.Backends {
		if b.Store == nil {
			continue
		}
		out, err := b.Store.Get(id)
		if IsNotFound(err) {
			continue
		}
		return out, err
	}
	return nil, ErrNotFound
}

func (r Replicated) Has(id string) bool {
	for _, b := range r.Backends {
		if b.Store != nil && b.Store.Has(id) {
			return true
		}
	}
	return false
}
