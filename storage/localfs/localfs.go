// Package localfs is a filesystem-backed storage.Store.
package localfs

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"

	"xdao.co/lfpkg/cidutil"
	"xdao.co/lfpkg/storage"
)

// Store keeps each payload in a read-only file named by the CIDv1 of the
// payload, under a two-character fan-out directory.
//
// This implementation is offline and deterministic: it never uses the network
// and never depends on wall-clock time.
type Store struct {
	root string
}

var _ storage.Store = (*Store)(nil)

// New constructs a filesystem store rooted at root. The directory will be
// created if needed.
func New(root string) (*Store, error) {
	if root == "" {
		return nil, errors.New("localfs: root directory is required")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, err
	}
	return &Store{root: root}, nil
}

func (s *Store) Put(payload []byte) (string, error) {
	id := cidutil.PackageID(payload)
	path, err := s.pathFor(id)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o444)
	if err != nil {
		if os.IsExist(err) {
			existing, rerr := s.Get(id)
			if rerr != nil || !bytes.Equal(existing, payload) {
				// Unreadable or altered objects are never repaired.
				return "", storage.ErrImmutable
			}
			return id, nil
		}
		return "", err
	}
	defer f.Close()

	if _, err := f.Write(payload); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return "", err
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return "", err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return "", err
	}
	return id, nil
}

func (s *Store) Get(id string) ([]byte, error) {
	path, err := s.pathFor(id)
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, storage.ErrNotFound
		}
		return nil, err
	}
	if err := storage.Verify(id, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *Store) Has(id string) bool {
	path, err := s.pathFor(id)
	if err != nil {
		return false
	}
	_, err = os.Stat(path)
	return err == nil
}

func (s *Store) pathFor(id string) (string, error) {
	c, err := cidutil.PackageCID(id)
	if err != nil {
		return "", storage.ErrInvalidPackageID
	}
	name := c.String()
	return filepath.Join(s.root, name[len(name)-2:], name), nil
}
