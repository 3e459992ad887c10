package storage

import (
	"errors"
	"io"
	"log/slog"
)

// Tiered reads through Stores in slice order and copies a payload found in a
// later store into the first one. Callers MUST supply a fixed order.
//
// Put writes only to the first store.
type Tiered struct {
	Stores []Store
	// Logger receives Debug events for write-backs. Nil discards.
	Logger *slog.Logger
}

var _ Store = Tiered{}

var errNoStores = errors.New("storage: Tiered has no stores")

func (t Tiered) Put(payload []byte) (string, error) {
	if len(t.Stores) == 0 {
		return "", errNoStores
	}
	return t.Stores[0].Put(payload)
}

func (t Tiered) Get(id string) ([]byte, error) {
	if len(t.Stores) == 0 {
		return nil, errNoStores
	}
	for i, s := range t.Stores {
		b, err := s.Get(id)
		if IsNotFound(err) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if i > 0 {
			// A failed write-back does not fail the read.
			if _, err := t.Stores[0].Put(b); err != nil {
				t.logger().Debug("tiered write-back failed", "package_id", id, "tier", i, "err", err)
			} else {
				t.logger().Debug("tiered write-back", "package_id", id, "tier", i)
			}
		}
		return b, nil
	}
	return nil, ErrNotFound
}

func (t Tiered) Has(id string) bool {
	for _, s := range t.Stores {
		if s.Has(id) {
			return true
		}
	}
	return false
}

func (t Tiered) logger() *slog.Logger {
	if t.Logger != nil {
		return t.Logger
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
