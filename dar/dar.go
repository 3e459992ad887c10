// Package dar reads and writes package containers.
//
// A container is a zip archive holding a manifest (META-INF/MANIFEST.MF) and
// one .dalf envelope per package. Reading is fail-closed: a malformed
// manifest, an unsafe or missing entry path, or an envelope whose declared
// hash disagrees with its payload rejects the whole container.
package dar

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"

	"github.com/klauspost/compress/zip"

	"xdao.co/lfpkg/cidutil"
	"xdao.co/lfpkg/lferr"
)

// DefaultMaxEntrySize bounds the uncompressed size of a single entry.
const DefaultMaxEntrySize = 256 << 20

const (
	dalfExt    = ".dalf"
	primSuffix = "-prim"
)

var zipMagic = []byte("PK\x03\x04")

// Options controls container reading.
type Options struct {
	// MaxEntrySize bounds each entry's uncompressed size. Zero uses
	// DefaultMaxEntrySize.
	MaxEntrySize int64
	// RequireManifest rejects containers without a manifest instead of
	// treating every .dalf entry as a package.
	RequireManifest bool
	// PackageID derives a package id from payload bytes. Nil uses
	// cidutil.PackageID.
	PackageID func(payload []byte) string
}

func (o Options) maxEntrySize() int64 {
	if o.MaxEntrySize > 0 {
		return o.MaxEntrySize
	}
	return DefaultMaxEntrySize
}

func (o Options) packageID(payload []byte) string {
	if o.PackageID != nil {
		return o.PackageID(payload)
	}
	return cidutil.PackageID(payload)
}

// Entry is one package payload.
type Entry struct {
	// Path is the entry path inside the container, or the caller supplied
	// name for a single payload.
	Path string
	// Name is the entry file stem with any trailing -<package id> removed.
	Name      string
	PackageID string
	Payload   []byte
}

// Container is a read container. Main is the designated main package;
// Dependencies keep manifest order, or path order for containers without a
// manifest.
type Container struct {
	Manifest     *Manifest
	Implied      bool
	Main         Entry
	Dependencies []Entry
}

// Entries returns Main followed by Dependencies.
func (c *Container) Entries() []Entry {
	return append([]Entry{c.Main}, c.Dependencies...)
}

// IsContainer reports whether b starts like a zip archive.
func IsContainer(b []byte) bool { return bytes.HasPrefix(b, zipMagic) }

// Read parses container bytes.
func Read(data []byte, opts Options) (*Container, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, lferr.Wrap(lferr.KindContainer, lferr.RuleCorrupt, "", err, "open container")
	}

	files := make(map[string]*zip.File, len(zr.File))
	var dalfs []string
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		name := cleanEntryPath(f.Name)
		if name == "" {
			return nil, lferr.Corrupt(f.Name, "invalid entry path")
		}
		if _, dup := files[name]; dup {
			return nil, lferr.Corrupt(name, "duplicate entry")
		}
		files[name] = f
		if strings.EqualFold(path.Ext(name), dalfExt) {
			dalfs = append(dalfs, name)
		}
	}
	sort.Strings(dalfs)

	c := &Container{}
	if mf, ok := files[ManifestPath]; ok {
		b, err := readEntry(mf, ManifestPath, opts.maxEntrySize())
		if err != nil {
			return nil, err
		}
		if c.Manifest, err = ParseManifest(b); err != nil {
			return nil, err
		}
	} else {
		if opts.RequireManifest {
			return nil, lferr.New(lferr.KindContainer, lferr.RuleMissingManifest, ManifestPath, "container has no manifest")
		}
		if len(dalfs) == 0 {
			return nil, lferr.Corrupt("", "container has no manifest and no %s entries", dalfExt)
		}
		main, deps := selectMain(dalfs)
		c.Manifest = ImpliedManifest(main, deps)
		c.Implied = true
	}

	paths := append([]string{c.Manifest.Main}, c.Manifest.Dependencies...)
	entries := make([]Entry, 0, len(paths))
	byID := make(map[string]int, len(paths))
	for _, p := range paths {
		clean := cleanEntryPath(p)
		if clean == "" {
			return nil, lferr.Corrupt(p, "invalid manifest path")
		}
		f, ok := files[clean]
		if !ok {
			return nil, lferr.Corrupt(p, "manifest entry not found in container")
		}
		b, err := readEntry(f, clean, opts.maxEntrySize())
		if err != nil {
			return nil, err
		}
		e, err := openDalf(clean, b, opts)
		if err != nil {
			return nil, err
		}
		if i, seen := byID[e.PackageID]; seen {
			if !bytes.Equal(entries[i].Payload, e.Payload) {
				return nil, lferr.New(lferr.KindContainer, lferr.RuleDuplicatePackage, e.PackageID,
					"entries %s and %s share a package id with different payloads", entries[i].Path, e.Path)
			}
			continue
		}
		byID[e.PackageID] = len(entries)
		entries = append(entries, e)
	}
	c.Main = entries[0]
	c.Dependencies = entries[1:]
	return c, nil
}

// ReadDalf reads a single .dalf envelope. name is used for Entry.Path and
// Entry.Name.
func ReadDalf(name string, data []byte, opts Options) (Entry, error) {
	return openDalf(name, data, opts)
}

func openDalf(p string, b []byte, opts Options) (Entry, error) {
	env, err := DecodeDalf(p, b)
	if err != nil {
		return Entry{}, err
	}
	id := opts.packageID(env.Payload)
	if env.Hash != "" && env.Hash != id {
		return Entry{}, lferr.Corrupt(p, "declared hash %s does not match payload hash %s", env.Hash, id)
	}
	return Entry{Path: p, Name: entryName(p, id), PackageID: id, Payload: env.Payload}, nil
}

// selectMain picks the first path, in lexicographic order, whose stem does
// not end in -prim; if every entry is -prim the first path wins. The rest
// follow in lexicographic order.
func selectMain(sorted []string) (string, []string) {
	idx := 0
	for i, p := range sorted {
		if !strings.HasSuffix(strings.ToLower(stem(p)), primSuffix) {
			idx = i
			break
		}
	}
	deps := make([]string, 0, len(sorted)-1)
	deps = append(deps, sorted[:idx]...)
	deps = append(deps, sorted[idx+1:]...)
	return sorted[idx], deps
}

func stem(p string) string {
	base := path.Base(p)
	return strings.TrimSuffix(base, path.Ext(base))
}

func entryName(p, id string) string {
	s := stem(p)
	if trimmed, ok := strings.CutSuffix(s, "-"+id); ok && trimmed != "" {
		return trimmed
	}
	return s
}

var errEntryTooLarge = errors.New("entry exceeds size limit")

func readEntry(f *zip.File, name string, limit int64) ([]byte, error) {
	if f.UncompressedSize64 > uint64(limit) {
		return nil, lferr.Wrap(lferr.KindContainer, lferr.RuleCorrupt, name, errEntryTooLarge, "declared size %d", f.UncompressedSize64)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, lferr.Wrap(lferr.KindContainer, lferr.RuleCorrupt, name, err, "open entry")
	}
	defer rc.Close()
	b, err := io.ReadAll(io.LimitReader(rc, limit+1))
	if err != nil {
		return nil, lferr.Wrap(lferr.KindContainer, lferr.RuleCorrupt, name, err, "read entry")
	}
	if int64(len(b)) > limit {
		return nil, lferr.Wrap(lferr.KindContainer, lferr.RuleCorrupt, name, errEntryTooLarge, "limit %d", limit)
	}
	return b, nil
}

// cleanEntryPath returns a normalized relative path, or "" when p is empty,
// absolute or escapes the container root.
func cleanEntryPath(p string) string {
	p = strings.TrimSpace(p)
	p = strings.ReplaceAll(p, "\\", "/")
	p = strings.TrimPrefix(p, "./")
	if p == "" || strings.HasPrefix(p, "/") {
		return ""
	}
	parts := strings.Split(p, "/")
	for _, part := range parts {
		if part == "" || part == "." || part == ".." {
			return ""
		}
	}
	return strings.Join(parts, "/")
}

func (e Entry) String() string {
	return fmt.Sprintf("%s (%s)", e.Path, e.PackageID)
}
