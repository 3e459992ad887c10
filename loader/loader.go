// Package loader runs the full decode pipeline: container, version
// detection, binary decode, interning resolution and model building.
//
// Each payload is decoded independently. Dependencies inside one container
// are decoded concurrently; the result does not depend on scheduling.
package loader

import (
	"io"
	"log/slog"
	"runtime"

	"golang.org/x/sync/errgroup"

	"xdao.co/lfpkg/builder"
	"xdao.co/lfpkg/cidutil"
	"xdao.co/lfpkg/dar"
	"xdao.co/lfpkg/decode"
	"xdao.co/lfpkg/intern"
	"xdao.co/lfpkg/lf"
	"xdao.co/lfpkg/lfversion"
)

type Options struct {
	Container dar.Options
	// Concurrency bounds parallel payload decodes. Zero uses GOMAXPROCS.
	Concurrency int
	// Logger receives Debug events per decoded payload. Nil discards.
	Logger *slog.Logger
}

func (o Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func (o Options) concurrency() int {
	if o.Concurrency > 0 {
		return o.Concurrency
	}
	return runtime.GOMAXPROCS(0)
}

// Archive is a loaded container.
type Archive struct {
	// Name is the main entry name.
	Name     string
	MainID   string
	Manifest *dar.Manifest
	// Packages holds the main package first, then dependencies in container
	// order.
	Packages []*lf.Package
}

// Main returns the main package.
func (a *Archive) Main() *lf.Package { return a.Packages[0] }

// LoadArchive loads container bytes. Input that is not a zip archive is read
// as a single .dalf envelope.
func LoadArchive(data []byte, opts Options) (*Archive, error) {
	var c *dar.Container
	if dar.IsContainer(data) {
		var err error
		c, err = dar.Read(data, opts.Container)
		if err != nil {
			return nil, err
		}
	} else {
		e, err := dar.ReadDalf("", data, opts.Container)
		if err != nil {
			return nil, err
		}
		c = &dar.Container{Main: e}
	}

	entries := c.Entries()
	pkgs, err := decodeAll(entries, opts)
	if err != nil {
		return nil, err
	}
	return &Archive{
		Name:     c.Main.Name,
		MainID:   c.Main.PackageID,
		Manifest: c.Manifest,
		Packages: pkgs,
	}, nil
}

// LoadSingle loads one .dalf envelope.
func LoadSingle(data []byte, opts Options) (*lf.Package, error) {
	e, err := dar.ReadDalf("", data, opts.Container)
	if err != nil {
		return nil, err
	}
	return decodeEntry(e, opts.logger())
}

// DecodePayload decodes raw payload bytes (an ArchivePayload, without the
// envelope). The package id is the sha2-256 of payload.
func DecodePayload(payload []byte) (*lf.Package, error) {
	return Decode(cidutil.PackageID(payload), payload)
}

// Decode runs detection, decoding, resolution and building for payload under
// the given package id.
func Decode(id string, payload []byte) (*lf.Package, error) {
	p, err := lfversion.Detect(payload)
	if err != nil {
		return nil, err
	}
	tree, err := decode.Decode(p)
	if err != nil {
		return nil, err
	}
	resolved, err := intern.Resolve(tree)
	if err != nil {
		return nil, err
	}
	return builder.Build(id, payload, resolved)
}

func decodeEntry(e dar.Entry, log *slog.Logger) (*lf.Package, error) {
	pkg, err := Decode(e.PackageID, e.Payload)
	if err != nil {
		log.Debug("decode failed", "entry", e.Path, "package_id", e.PackageID, "err", err)
		return nil, err
	}
	log.Debug("decoded package",
		"entry", e.Path,
		"package_id", pkg.ID,
		"language_version", pkg.LanguageVersion.String(),
		"modules", len(pkg.Modules),
	)
	return pkg, nil
}

// decodeAll reports the failure of the lowest-index entry, whichever
// goroutine finishes first.
func decodeAll(entries []dar.Entry, opts Options) ([]*lf.Package, error) {
	log := opts.logger()
	out := make([]*lf.Package, len(entries))
	errs := make([]error, len(entries))

	var g errgroup.Group
	g.SetLimit(opts.concurrency())
	for i, e := range entries {
		g.Go(func() error {
			out[i], errs[i] = decodeEntry(e, log)
			return errs[i]
		})
	}
	// Without a context the group does not cancel siblings, so every entry
	// has been attempted once Wait returns.
	if err := g.Wait(); err != nil {
		for _, first := range errs {
			if first != nil {
				return nil, first
			}
		}
		return nil, err
	}
	return out, nil
}
