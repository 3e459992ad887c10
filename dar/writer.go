package dar

import (
	"fmt"
	"io"
	"time"

	"github.com/klauspost/compress/zip"

	"xdao.co/lfpkg/lferr"
)

// epoch is the fixed modification time of every written entry.
var epoch = time.Date(1980, 1, 1, 0, 0, 0, 0, time.UTC)

// WriteOptions controls container writing.
type WriteOptions struct {
	// CreatedBy is recorded in the manifest.
	CreatedBy string
	// Store disables compression.
	Store bool
}

// Write writes a container holding main and deps as .dalf envelopes plus a
// manifest naming them.
//
// The output is deterministic: the manifest comes first, dependencies keep
// the given order, and entry headers carry fixed times and modes. Entries are
// wrapped with EncodeDalf, so each envelope declares its package id.
func Write(w io.Writer, main Entry, deps []Entry, opts WriteOptions) error {
	all := append([]Entry{main}, deps...)
	seen := make(map[string]bool, len(all))
	m := &Manifest{
		Version:    manifestVersion1,
		CreatedBy:  opts.CreatedBy,
		Format:     formatDamlLF,
		Encryption: nonEncrypted,
	}
	for i, e := range all {
		p := cleanEntryPath(e.Path)
		if p == "" || p == ManifestPath {
			return lferr.Corrupt(e.Path, "invalid entry path")
		}
		if seen[p] {
			return lferr.Corrupt(p, "duplicate entry")
		}
		seen[p] = true
		all[i].Path = p
		if i == 0 {
			m.Main = p
		} else {
			m.Dependencies = append(m.Dependencies, p)
		}
	}

	method := zip.Deflate
	if opts.Store {
		method = zip.Store
	}
	zw := zip.NewWriter(w)
	if err := writeEntry(zw, ManifestPath, m.Render(), method); err != nil {
		_ = zw.Close()
		return err
	}
	for _, e := range all {
		if err := writeEntry(zw, e.Path, EncodeDalf(e.Payload), method); err != nil {
			_ = zw.Close()
			return err
		}
	}
	return zw.Close()
}

func writeEntry(zw *zip.Writer, name string, content []byte, method uint16) error {
	hdr := &zip.FileHeader{
		Name:     name,
		Method:   method,
		Modified: epoch,
	}
	hdr.SetMode(0o644)
	fw, err := zw.CreateHeader(hdr)
	if err != nil {
		return fmt.Errorf("dar: create %s: %w", name, err)
	}
	if _, err := fw.Write(content); err != nil {
		return fmt.Errorf("dar: write %s: %w", name, err)
	}
	return nil
}
