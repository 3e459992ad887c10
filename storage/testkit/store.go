// Package testkit holds the conformance suite every storage.Store must pass.
package testkit

import (
	"bytes"
	"errors"
	"testing"

	"xdao.co/lfpkg/cidutil"
	"xdao.co/lfpkg/storage"
)

// NewStore constructs a fresh, empty Store for a test.
// The returned Store MUST be isolated from other tests.
type NewStore func(t *testing.T) storage.Store

func RunStoreConformance(t *testing.T, newStore NewStore) {
	t.Helper()

	t.Run("PutGetRoundTrip", func(t *testing.T) {
		s := newStore(t)
		want := []byte("payload bytes")

		id, err := s.Put(want)
		if err != nil {
			t.Fatalf("Put failed: %v", err)
		}
		if id != cidutil.PackageID(want) {
			t.Fatalf("Put id mismatch: got %s want %s", id, cidutil.PackageID(want))
		}

		got, err := s.Get(id)
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if !bytes.Equal(got, want) {
			t.Fatalf("Get bytes mismatch")
		}
	})

	t.Run("PutIdempotent", func(t *testing.T) {
		s := newStore(t)
		b := []byte("same bytes")

		id1, err := s.Put(b)
		if err != nil {
			t.Fatalf("Put(1) failed: %v", err)
		}
		id2, err := s.Put(b)
		if err != nil {
			t.Fatalf("Put(2) failed: %v", err)
		}
		if id1 != id2 {
			t.Fatalf("Put not idempotent: %s vs %s", id1, id2)
		}
	})

	t.Run("HasAndNotFound", func(t *testing.T) {
		s := newStore(t)
		b := []byte("missing")
		id := cidutil.PackageID(b)

		if s.Has(id) {
			t.Fatalf("Has returned true for missing id")
		}
		if _, err := s.Get(id); !storage.IsNotFound(err) {
			t.Fatalf("Get missing: got err=%v want ErrNotFound", err)
		}
		if _, err := s.Put(b); err != nil {
			t.Fatalf("Put failed: %v", err)
		}
		if !s.Has(id) {
			t.Fatalf("Has returned false after Put")
		}
	})

	t.Run("EmptyPayload", func(t *testing.T) {
		s := newStore(t)
		id, err := s.Put(nil)
		if err != nil {
			t.Fatalf("Put(nil) failed: %v", err)
		}
		got, err := s.Get(id)
		if err != nil || len(got) != 0 {
			t.Fatalf("Get empty: %v (%d bytes)", err, len(got))
		}
	})

	t.Run("RejectInvalidID", func(t *testing.T) {
		s := newStore(t)
		for _, id := range []string{"", "not-hex", "ABCDEF"} {
			if s.Has(id) {
				t.Fatalf("Has(%q) should be false", id)
			}
			if _, err := s.Get(id); !errors.Is(err, storage.ErrInvalidPackageID) {
				t.Fatalf("Get(%q): got %v want ErrInvalidPackageID", id, err)
			}
		}
	})
}
