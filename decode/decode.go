// Package decode turns a version-tagged package body into the raw tree.
//
// There is one decode strategy per version family. The strategies share the
// message walkers below and differ in which name encodings they accept: a
// literal name where the family interns (or the reverse) is malformed input,
// not something to be tolerated.
//
// Decoding is all-or-nothing and touches no shared state; independent
// payloads can be decoded concurrently.
package decode

import (
	"xdao.co/lfpkg/lferr"
	"xdao.co/lfpkg/lfversion"
	"xdao.co/lfpkg/lfwire"
	"xdao.co/lfpkg/raw"
)

// maxDepth bounds type and kind nesting on untrusted input.
const maxDepth = 10000

type strategy func(lfversion.Version, []byte) (*raw.Package, error)

var strategies = map[lfversion.Family]strategy{
	lfversion.FamilyLiteral:     decodeLiteral,
	lfversion.FamilyInternedIDs: decodeInternedIDs,
	lfversion.FamilyInterned:    decodeInterned,
}

// Decode decodes p.Body according to the family of p.Version.
func Decode(p lfversion.Payload) (*raw.Package, error) {
	fn, ok := strategies[p.Version.Family()]
	if !ok {
		return nil, lferr.UnsupportedVersion(p.Version.String())
	}
	return fn(p.Version, p.Body)
}

// 1.0 to 1.5: every name is an inline literal.
func decodeLiteral(v lfversion.Version, body []byte) (*raw.Package, error) {
	d := &decoder{version: v, names: namePolicy{literalPackageIDs: true}}
	return d.pkg(body)
}

// 1.6: names are literal, package ids may reference interned_strings.
func decodeInternedIDs(v lfversion.Version, body []byte) (*raw.Package, error) {
	d := &decoder{version: v, names: namePolicy{literalPackageIDs: true, internedPackageIDs: true}}
	return d.pkg(body)
}

// 1.7 onwards: every name is interned.
func decodeInterned(v lfversion.Version, body []byte) (*raw.Package, error) {
	d := &decoder{version: v, names: namePolicy{internedNames: true, internedPackageIDs: true}}
	return d.pkg(body)
}

type namePolicy struct {
	// internedNames requires interned strings and dotted names; when false
	// they must be literal.
	internedNames      bool
	literalPackageIDs  bool
	internedPackageIDs bool
}

type decoder struct {
	version lfversion.Version
	names   namePolicy
	depth   int
}

func (d *decoder) gate(ctx string, f lfversion.Feature) error {
	if d.version.Supports(f) {
		return nil
	}
	return lferr.Malformed(ctx, "%s not available in version %s", f.Name, d.version)
}

func missing(ctx, what string) error {
	return lferr.Malformed(ctx, "missing %s", what)
}

func (d *decoder) enter(ctx string) error {
	d.depth++
	if d.depth > maxDepth {
		return lferr.Malformed(ctx, "nesting exceeds %d", maxDepth)
	}
	return nil
}

func (d *decoder) leave() { d.depth-- }

func sub[T any](ctx string, f lfwire.Field, fn func([]byte) (T, error)) (T, error) {
	b, err := f.Message(ctx)
	if err != nil {
		var zero T
		return zero, err
	}
	return fn(b)
}

func (d *decoder) litStr(ctx string, f lfwire.Field) (raw.Str, error) {
	if d.names.internedNames {
		return raw.Str{}, lferr.Malformed(ctx, "literal name in version %s", d.version)
	}
	s, err := f.Text(ctx)
	return raw.Lit(s), err
}

func (d *decoder) internedStr(ctx string, f lfwire.Field) (raw.Str, error) {
	if !d.names.internedNames {
		return raw.Str{}, lferr.Malformed(ctx, "interned name in version %s", d.version)
	}
	i, err := f.Int32(ctx)
	return raw.InternedStr(i), err
}

func (d *decoder) litDotted(ctx string, f lfwire.Field) (raw.DottedName, error) {
	if d.names.internedNames {
		return raw.DottedName{}, lferr.Malformed(ctx, "literal dotted name in version %s", d.version)
	}
	return sub(ctx, f, d.dottedName)
}

func (d *decoder) internedDotted(ctx string, f lfwire.Field) (raw.DottedName, error) {
	if !d.names.internedNames {
		return raw.DottedName{}, lferr.Malformed(ctx, "interned dotted name in version %s", d.version)
	}
	i, err := f.Int32(ctx)
	return raw.InternedDotted(i), err
}

func (d *decoder) dottedName(b []byte) (raw.DottedName, error) {
	const ctx = "DottedName"
	var segs []string
	err := lfwire.Each(ctx, b, func(f lfwire.Field) error {
		if f.Num != lfwire.DottedNameSegments {
			return nil
		}
		s, err := f.Text(ctx)
		segs = append(segs, s)
		return err
	})
	if err != nil {
		return raw.DottedName{}, err
	}
	if len(segs) == 0 {
		return raw.DottedName{}, missing(ctx, "segments")
	}
	return raw.LitDotted(segs...), nil
}

func (d *decoder) expr(ctx string, f lfwire.Field) (raw.Expr, error) {
	b, err := f.Message(ctx)
	if err != nil {
		return nil, err
	}
	if err := lfwire.WellFormed(ctx, b); err != nil {
		return nil, err
	}
	return raw.Expr(b), nil
}

func (d *decoder) pkg(b []byte) (*raw.Package, error) {
	const ctx = "Package"
	p := &raw.Package{Version: d.version}
	err := lfwire.Each(ctx, b, func(f lfwire.Field) error {
		switch f.Num {
		case lfwire.PackageModules:
			m, err := sub(ctx, f, d.module)
			p.Modules = append(p.Modules, m)
			return err
		case lfwire.PackageInternedStrings:
			if err := d.gate(ctx, lfversion.InternedPackageID); err != nil {
				return err
			}
			s, err := f.Text(ctx)
			p.Strings = append(p.Strings, s)
			return err
		case lfwire.PackageInternedDottedNames:
			if err := d.gate(ctx, lfversion.InternedDottedNames); err != nil {
				return err
			}
			idx, err := sub(ctx, f, d.internedDottedEntry)
			p.DottedNames = append(p.DottedNames, idx)
			return err
		case lfwire.PackageMetadata:
			if err := d.gate(ctx, lfversion.PackageMetadata); err != nil {
				return err
			}
			md, err := sub(ctx, f, d.metadata)
			p.Metadata = md
			return err
		case lfwire.PackageInternedTypes:
			if err := d.gate(ctx, lfversion.InternedTypes); err != nil {
				return err
			}
			t, err := sub(ctx, f, d.typ)
			p.Types = append(p.Types, t)
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (d *decoder) internedDottedEntry(b []byte) ([]int32, error) {
	const ctx = "InternedDottedName"
	out := []int32{}
	err := lfwire.Each(ctx, b, func(f lfwire.Field) error {
		if f.Num != lfwire.InternedDottedNameSegments {
			return nil
		}
		var err error
		out, err = f.Int32s(ctx, out)
		return err
	})
	return out, err
}

func (d *decoder) metadata(b []byte) (*raw.Metadata, error) {
	const ctx = "PackageMetadata"
	md := &raw.Metadata{}
	var haveName, haveVersion bool
	err := lfwire.Each(ctx, b, func(f lfwire.Field) error {
		var err error
		switch f.Num {
		case lfwire.MetadataNameInterned:
			md.Name, err = d.internedStr(ctx, f)
			haveName = true
		case lfwire.MetadataVersionInterned:
			md.Version, err = d.internedStr(ctx, f)
			haveVersion = true
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	if !haveName {
		return nil, missing(ctx, "name")
	}
	if !haveVersion {
		return nil, missing(ctx, "version")
	}
	return md, nil
}
