package localfs

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"xdao.co/lfpkg/cidutil"
	"xdao.co/lfpkg/storage"
	"xdao.co/lfpkg/storage/testkit"
)

func TestLocalFS_Conformance(t *testing.T) {
	testkit.RunStoreConformance(t, func(t *testing.T) storage.Store {
		t.Helper()
		s, err := New(t.TempDir())
		if err != nil {
			t.Fatalf("New failed: %v", err)
		}
		return s
	})
}

func TestLocalFS_LayoutByCID(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	payload := []byte("layout")
	id, err := s.Put(payload)
	if err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	c, err := cidutil.PayloadCID(payload)
	if err != nil {
		t.Fatalf("PayloadCID: %v", err)
	}
	name := c.String()
	path := filepath.Join(dir, name[len(name)-2:], name)
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected object at %s: %v", path, err)
	}
	if !strings.HasPrefix(name, "b") {
		t.Fatalf("expected base32 CIDv1, got %s", name)
	}
	if got, _ := s.pathFor(id); got != path {
		t.Fatalf("pathFor: got %s want %s", got, path)
	}
}

func TestLocalFS_RejectMutationByOverwrite(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	orig := []byte("original")
	id, err := s.Put(orig)
	if err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	// Corrupt the stored object out-of-band.
	path, err := s.pathFor(id)
	if err != nil {
		t.Fatalf("pathFor: %v", err)
	}
	if err := os.Chmod(path, 0o644); err != nil {
		t.Fatalf("Chmod failed: %v", err)
	}
	if err := os.WriteFile(path, []byte("corrupted"), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	if _, err := s.Get(id); !errors.Is(err, storage.ErrDigestMismatch) {
		t.Fatalf("Get mismatch: got %v want %v", err, storage.ErrDigestMismatch)
	}
	// Put must not repair or overwrite the corrupted object.
	if _, err := s.Put(orig); !errors.Is(err, storage.ErrImmutable) {
		t.Fatalf("Put after corruption: got %v want %v", err, storage.ErrImmutable)
	}
	if id != cidutil.PackageID(orig) {
		t.Fatalf("unexpected id: %s", id)
	}
}

func TestNew_RequiresRoot(t *testing.T) {
	if _, err := New(""); err == nil {
		t.Fatalf("expected error for empty root")
	}
}
