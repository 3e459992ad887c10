package loader

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"reflect"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"google.golang.org/protobuf/encoding/protowire"

	"xdao.co/lfpkg/dar"
	"xdao.co/lfpkg/index"
	"xdao.co/lfpkg/internal/lfenc"
	"xdao.co/lfpkg/lf"
	"xdao.co/lfpkg/lferr"
	"xdao.co/lfpkg/lfversion"
	"xdao.co/lfpkg/lfwire"
	"xdao.co/lfpkg/raw"
)

func container(t *testing.T, main dar.Entry, deps ...dar.Entry) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := dar.Write(&buf, main, deps, dar.WriteOptions{CreatedBy: "loader-test"}); err != nil {
		t.Fatalf("dar.Write: %v", err)
	}
	return buf.Bytes()
}

// versionPayload is an ArchivePayload with an empty body under minor.
func versionPayload(minor string) []byte {
	b := protowire.AppendTag(nil, lfwire.PayloadLF1, protowire.BytesType)
	b = protowire.AppendBytes(b, nil)
	b = protowire.AppendTag(b, lfwire.PayloadMinor, protowire.BytesType)
	return protowire.AppendString(b, minor)
}

func TestLoadSingle_EveryVersion(t *testing.T) {
	for _, v := range lfversion.Supported() {
		payload := lfenc.Build(v, lfenc.MinimalRecord())
		pkg, err := LoadSingle(dar.EncodeDalf(payload), Options{})
		if err != nil {
			t.Fatalf("%s: %v", v, err)
		}
		if pkg.LanguageVersion != v {
			t.Fatalf("%s: language version %s", v, pkg.LanguageVersion)
		}
		m := pkg.Module("Main")
		if m == nil {
			t.Fatalf("%s: module Main missing", v)
		}
		d := m.DataType("T")
		if d == nil || d.Kind != lf.Record || d.Fields == nil || len(d.Fields) != 0 {
			t.Fatalf("%s: want empty record T, got %+v", v, d)
		}
	}
}

func TestDecodePayload_ContentAddressed(t *testing.T) {
	payload := lfenc.Build(lfversion.V1_8, lfenc.FooBarBaz())
	sum := sha256.Sum256(payload)
	pkg, err := DecodePayload(payload)
	if err != nil {
		t.Fatalf("DecodePayload: %v", err)
	}
	if pkg.ID != hex.EncodeToString(sum[:]) {
		t.Fatalf("id: got %s", pkg.ID)
	}
	if !bytes.Equal(pkg.Payload, payload) {
		t.Fatalf("payload not retained")
	}
}

func TestDecodePayload_UnsupportedVersion(t *testing.T) {
	for _, minor := range []string{"9", "42", "dev2"} {
		_, err := DecodePayload(versionPayload(minor))
		if !lferr.Is(err, lferr.KindVersion, lferr.RuleUnsupportedVersion) {
			t.Fatalf("1.%s: expected UNSUPPORTED_VERSION, got %v", minor, err)
		}
		if got := lferr.DetailOf(err); got != "1."+minor {
			t.Fatalf("detail: got %q", got)
		}
	}
}

func TestLoadArchive_FooBarBazEndToEnd(t *testing.T) {
	depPayload := lfenc.Build(lfversion.V1_8, lfenc.MinimalRecord())
	dep, err := DecodePayload(depPayload)
	if err != nil {
		t.Fatalf("dep: %v", err)
	}

	mainPkg := lfenc.FooBarBaz()
	mainPkg.Modules[0].DataTypes = append(mainPkg.Modules[0].DataTypes,
		lfenc.Record("UsesDep", lfenc.Field("t", lfenc.Con(lfenc.Ref(dep.ID, []string{"Main"}, "T")))))
	mainPayload := lfenc.Build(lfversion.V1_14, mainPkg)

	data := container(t,
		dar.Entry{Path: "foo-1.0.0/foo.dalf", Payload: mainPayload},
		dar.Entry{Path: "foo-1.0.0/dep.dalf", Payload: depPayload},
	)
	a, err := LoadArchive(data, Options{Concurrency: 2})
	if err != nil {
		t.Fatalf("LoadArchive: %v", err)
	}
	if len(a.Packages) != 2 || a.Main().ID != a.MainID || a.Packages[1].ID != dep.ID {
		t.Fatalf("packages: main=%s got %d", a.MainID, len(a.Packages))
	}
	if a.Name != "foo" {
		t.Fatalf("name: %q", a.Name)
	}

	ix := index.New(index.Options{})
	for _, p := range a.Packages {
		if err := ix.Insert(p); err != nil {
			t.Fatalf("Insert: %v", err)
		}
	}
	d, ok := ix.Lookup(a.MainID, []string{"Foo"}, "Baz")
	if !ok || d.Kind != lf.DefTemplate {
		t.Fatalf("Foo.Baz: %+v ok=%v", d, ok)
	}
	do := d.Template.Choice("Do")
	if do == nil || !do.Consuming || do.ArgName != "arg" {
		t.Fatalf("choice Do: %+v", do)
	}
	arg, err := ix.ResolveType(do.ArgType, a.MainID)
	if err != nil {
		t.Fatalf("ResolveType: %v", err)
	}
	want := lf.ConType(lf.TypeConName{PackageID: a.MainID, Module: []string{"Foo"}, Name: "Bar"})
	if !reflect.DeepEqual(arg, want) {
		t.Fatalf("argument: got %v", arg)
	}
	bar, ok := ix.Lookup(arg.Con.PackageID, arg.Con.Module, arg.Con.Name)
	if !ok || bar.DataType.Fields[0].Name != "x" {
		t.Fatalf("Foo.Bar: %+v", bar)
	}

	uses := a.Main().Module("Foo").DataType("UsesDep")
	if _, err := ix.ResolveType(uses.Fields[0].Type, a.MainID); err != nil {
		t.Fatalf("cross-package reference: %v", err)
	}
}

func TestLoadArchive_SingleDalf(t *testing.T) {
	payload := lfenc.Build(lfversion.V1_6, lfenc.MinimalRecord())
	a, err := LoadArchive(dar.EncodeDalf(payload), Options{})
	if err != nil {
		t.Fatalf("LoadArchive: %v", err)
	}
	if len(a.Packages) != 1 || a.Manifest != nil {
		t.Fatalf("single dalf: %+v", a)
	}
}

func TestLoadArchive_ReportsLowestIndexFailure(t *testing.T) {
	ok := lfenc.Build(lfversion.V1_5, lfenc.MinimalRecord())
	data := container(t,
		dar.Entry{Path: "a/main.dalf", Payload: ok},
		dar.Entry{Path: "a/d1.dalf", Payload: versionPayload("42")},
		dar.Entry{Path: "a/d2.dalf", Payload: versionPayload("99")},
		dar.Entry{Path: "a/d3.dalf", Payload: versionPayload("77")},
	)
	for i := 0; i < 20; i++ {
		_, err := LoadArchive(data, Options{Concurrency: 4})
		if got := lferr.DetailOf(err); got != "1.42" {
			t.Fatalf("run %d: expected failure of first dependency, got %v", i, err)
		}
	}
}

func TestDecodeAll_WaitsForEveryEntry(t *testing.T) {
	good := lfenc.Build(lfversion.V1_5, lfenc.MinimalRecord())
	entries := []dar.Entry{
		{Path: "a.dalf", PackageID: "a", Payload: good},
		{Path: "b.dalf", PackageID: "b", Payload: good},
		{Path: "c.dalf", PackageID: "c", Payload: good},
	}
	for _, n := range []int{1, 2, 8} {
		pkgs, err := decodeAll(entries, Options{Concurrency: n})
		if err != nil {
			t.Fatalf("concurrency %d: %v", n, err)
		}
		for i, p := range pkgs {
			if p == nil || p.ID != entries[i].PackageID {
				t.Fatalf("concurrency %d: entry %d: %+v", n, i, p)
			}
		}
	}

	bad := append([]dar.Entry(nil), entries...)
	bad[2].Payload = versionPayload("77")
	bad[1].Payload = versionPayload("42")
	for _, n := range []int{1, 2, 8} {
		pkgs, err := decodeAll(bad, Options{Concurrency: n})
		if pkgs != nil {
			t.Fatalf("concurrency %d: packages returned with error", n)
		}
		if got := lferr.DetailOf(err); got != "1.42" {
			t.Fatalf("concurrency %d: got %v", n, err)
		}
	}
}

func TestLoadArchive_ContainerErrorsPropagate(t *testing.T) {
	data := container(t, dar.Entry{Path: "a/main.dalf", Payload: []byte{0xff}})
	_, err := LoadArchive(data, Options{})
	if !lferr.Is(err, lferr.KindDecode, lferr.RuleMalformed) {
		t.Fatalf("expected MALFORMED, got %v", err)
	}

	_, err = LoadArchive([]byte("PK\x03\x04 not a zip"), Options{})
	if !lferr.Is(err, lferr.KindContainer, lferr.RuleCorrupt) {
		t.Fatalf("expected CORRUPT, got %v", err)
	}
}

func TestLoad_Idempotent(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	properties := gopter.NewProperties(parameters)

	versions := lfversion.Supported()
	properties.Property("loading the same bytes twice yields equal packages", prop.ForAll(
		func(field string, vi int) bool {
			v := versions[vi%len(versions)]
			p := &raw.Package{Modules: []*raw.Module{
				lfenc.Module([]string{"M"}, lfenc.Record("R", lfenc.Field(field, lfenc.Prim(lfwire.PrimInt64)))),
			}}
			data := dar.EncodeDalf(lfenc.Build(v, p))

			a, errA := LoadSingle(data, Options{})
			b, errB := LoadSingle(data, Options{})
			if errA != nil || errB != nil {
				return false
			}
			if !reflect.DeepEqual(a, b) {
				return false
			}
			ix := index.New(index.Options{})
			return ix.Insert(a) == nil && ix.Insert(b) == nil && ix.Len() == 1
		},
		gen.Identifier(),
		gen.IntRange(0, 1000),
	))

	properties.TestingRun(t)
}
