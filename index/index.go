// Package index is a registry of decoded packages keyed by package id.
//
// Writers are serialized by a mutex. Readers load an immutable snapshot
// through an atomic pointer and never block; a package becomes visible only
// once all of its modules have been indexed.
package index

import (
	"bytes"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/Masterminds/semver/v3"

	"xdao.co/lfpkg/lf"
	"xdao.co/lfpkg/lferr"
)

type Options struct {
	// Logger receives Debug events for inserts. Nil discards.
	Logger *slog.Logger
}

// Index holds every inserted package. The zero value is not usable; call New.
type Index struct {
	mu   sync.Mutex
	snap atomic.Pointer[snapshot]
	log  *slog.Logger
}

// snapshot is immutable once published. order is shared between
// successive snapshots: a writer only appends past the length any published
// snapshot can see.
type snapshot struct {
	ids   *trieNode
	order []*entry
}

func (s *snapshot) get(id string) (*entry, bool) {
	e := s.ids.get(id)
	return e, e != nil
}

type entry struct {
	pkg *lf.Package
	// types and values map dotted module name to local name to definition.
	// Values have their own namespace and may reuse a type's name.
	types  map[string]map[string]lf.Definition
	values map[string]map[string]lf.Definition
}

func New(opts Options) *Index {
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	ix := &Index{log: log}
	ix.snap.Store(&snapshot{})
	return ix
}

// Insert adds pkg and all of its modules. Re-inserting identical payload
// bytes is a no-op; a different payload under an existing id fails with
// DUPLICATE_PACKAGE_ID.
//
// Self references inside pkg are rewritten to pkg.ID before the package is
// published, so the stored package differs from the argument.
func (ix *Index) Insert(pkg *lf.Package) error {
	if pkg == nil || pkg.ID == "" {
		return lferr.UnsupportedConstruct("", "package has no id")
	}
	ix.mu.Lock()
	defer ix.mu.Unlock()

	cur := ix.snap.Load()
	if have, ok := cur.get(pkg.ID); ok {
		if bytes.Equal(have.pkg.Payload, pkg.Payload) {
			ix.log.Debug("index insert: already present", "package_id", pkg.ID)
			return nil
		}
		return lferr.New(lferr.KindIndex, lferr.RuleDuplicatePackageID, pkg.ID, "package id already indexed with different payload")
	}

	e := newEntry(pkg)

	ix.snap.Store(&snapshot{ids: cur.ids.with(e), order: append(cur.order, e)})

	ix.log.Debug("index insert", "package_id", pkg.ID, "name", pkg.Name, "modules", len(pkg.Modules))
	return nil
}

func newEntry(pkg *lf.Package) *entry {
	stored := withConcreteSelf(pkg)
	e := &entry{
		pkg:    stored,
		types:  make(map[string]map[string]lf.Definition, len(stored.Modules)),
		values: make(map[string]map[string]lf.Definition, len(stored.Modules)),
	}
	for _, m := range stored.Modules {
		e.types[m.Name()] = lf.Definitions(m)
		e.values[m.Name()] = lf.ValueDefinitions(m)
	}
	return e
}

// Len returns the number of indexed packages.
func (ix *Index) Len() int { return len(ix.snap.Load().order) }

// Package returns the stored package with the given id.
func (ix *Index) Package(id string) (*lf.Package, bool) {
	e, ok := ix.snap.Load().get(id)
	if !ok {
		return nil, false
	}
	return e.pkg, true
}

// Packages returns every package in insertion order.
func (ix *Index) Packages() []*lf.Package {
	s := ix.snap.Load()
	out := make([]*lf.Package, 0, len(s.order))
	for _, e := range s.order {
		out = append(out, e.pkg)
	}
	return out
}

// Lookup returns the definition named name in module path of package id.
// Type-level members are searched first; a value is returned only when no
// data type, template, exception or synonym has that name. A missing entry
// is reported through ok, not as an error.
func (ix *Index) Lookup(packageID string, module []string, name string) (lf.Definition, bool) {
	s := ix.snap.Load()
	if d, ok := s.member(packageID, module, name, false); ok {
		return d, true
	}
	return s.member(packageID, module, name, true)
}

// LookupValue returns the value named name, even when a type-level member
// shares the name.
func (ix *Index) LookupValue(packageID string, module []string, name string) (lf.Definition, bool) {
	return ix.snap.Load().member(packageID, module, name, true)
}

func (s *snapshot) member(packageID string, module []string, name string, value bool) (lf.Definition, bool) {
	e, ok := s.get(packageID)
	if !ok {
		return lf.Definition{}, false
	}
	ns := e.types
	if value {
		ns = e.values
	}
	d, ok := ns[strings.Join(module, ".")][name]
	return d, ok
}

// LatestByName returns the package with the highest semantic version among
// those whose metadata name is name. Unparseable versions order by string.
func (ix *Index) LatestByName(name string) (*lf.Package, bool) {
	var matches []*lf.Package
	for _, p := range ix.Packages() {
		if p.Name == name {
			matches = append(matches, p)
		}
	}
	if len(matches) == 0 {
		return nil, false
	}
	sort.SliceStable(matches, func(i, j int) bool {
		vA, errA := semver.NewVersion(matches[i].Version)
		vB, errB := semver.NewVersion(matches[j].Version)
		if errA != nil || errB != nil {
			return matches[i].Version < matches[j].Version
		}
		return vA.LessThan(vB)
	})
	return matches[len(matches)-1], true
}

// ResolveType rewrites self references in t to owning and checks that every
// referenced data type and synonym exists. It fails with
// UNRESOLVED_REFERENCE naming the first missing target.
func (ix *Index) ResolveType(t *lf.Type, owning string) (*lf.Type, error) {
	out := t.MapCons(func(n lf.TypeConName) lf.TypeConName { return concrete(n, owning) })
	s := ix.snap.Load()
	err := out.Cons(func(tag lf.TypeTag, n lf.TypeConName) error {
		if !s.has(tag, n) {
			return lferr.UnresolvedReference(n.PackageID, n.QualifiedName())
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *snapshot) has(tag lf.TypeTag, n lf.TypeConName) bool {
	d, ok := s.member(n.PackageID, n.Module, n.Name, false)
	if !ok {
		return false
	}
	if tag == lf.TSyn {
		return d.Synonym != nil
	}
	return d.DataType != nil
}

func concrete(n lf.TypeConName, owning string) lf.TypeConName {
	if n.IsSelf() {
		n.PackageID = owning
	}
	return n
}
