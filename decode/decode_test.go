package decode

import (
	"strings"
	"testing"

	"google.golang.org/protobuf/encoding/protowire"

	"xdao.co/lfpkg/internal/lfenc"
	"xdao.co/lfpkg/lferr"
	"xdao.co/lfpkg/lfversion"
	"xdao.co/lfpkg/lfwire"
	"xdao.co/lfpkg/raw"
)

func encoded(v lfversion.Version, p *raw.Package) lfversion.Payload {
	lfenc.Prepare(v, p)
	return lfversion.Payload{Version: v, Body: lfenc.Encode(p)}
}

func recordWith(t *raw.Type) *raw.Package {
	return &raw.Package{Modules: []*raw.Module{
		lfenc.Module([]string{"M"}, lfenc.Record("R", lfenc.Field("f", t))),
	}}
}

func requireRule(t *testing.T, err error, kind lferr.Kind, rule lferr.Rule) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s/%s, got nil", kind, rule)
	}
	if !lferr.Is(err, kind, rule) {
		t.Fatalf("expected %s/%s, got %v", kind, rule, err)
	}
}

func TestDecode_MinimalRecordEveryVersion(t *testing.T) {
	for _, v := range lfversion.Supported() {
		p, err := Decode(encoded(v, lfenc.MinimalRecord()))
		if err != nil {
			t.Fatalf("%s: %v", v, err)
		}
		if p.Version != v {
			t.Fatalf("%s: version %s", v, p.Version)
		}
		if len(p.Modules) != 1 || len(p.Modules[0].DataTypes) != 1 {
			t.Fatalf("%s: unexpected shape %+v", v, p.Modules)
		}
		m := p.Modules[0]
		interned := v.Family() == lfversion.FamilyInterned
		if m.Name.Interned != interned || m.DataTypes[0].Name.Interned != interned {
			t.Fatalf("%s: name interning = %v, want %v", v, m.Name.Interned, interned)
		}
		if !interned && strings.Join(m.Name.Segments, ".") != "Main" {
			t.Fatalf("%s: module name %v", v, m.Name.Segments)
		}
		if d := m.DataTypes[0]; d.Kind != raw.DataRecord || d.Fields == nil || len(d.Fields) != 0 {
			t.Fatalf("%s: want empty record, got %+v", v, d)
		}
	}
}

func TestDecode_LiteralNamesRejectedWhenInterned(t *testing.T) {
	body := lfenc.Encode(lfenc.MinimalRecord())
	for _, v := range []lfversion.Version{lfversion.V1_7, lfversion.V1_14, lfversion.V1Dev} {
		_, err := Decode(lfversion.Payload{Version: v, Body: body})
		requireRule(t, err, lferr.KindDecode, lferr.RuleMalformed)
	}
}

func TestDecode_InternedNamesRejectedWhenLiteral(t *testing.T) {
	p := lfenc.MinimalRecord()
	lfenc.Prepare(lfversion.V1_7, p)
	// Drop the tables so only the name encoding is wrong.
	p.Strings, p.DottedNames = nil, nil
	for _, v := range []lfversion.Version{lfversion.V1_0, lfversion.V1_5, lfversion.V1_6} {
		_, err := Decode(lfversion.Payload{Version: v, Body: lfenc.Encode(p)})
		requireRule(t, err, lferr.KindDecode, lferr.RuleMalformed)
	}
}

func TestDecode_PackageIDEncodingByFamily(t *testing.T) {
	const id = "0f1e2d3c4b5a69788796a5b4c3d2e1f00f1e2d3c4b5a69788796a5b4c3d2e1f0"
	ref := func() *raw.Package {
		return recordWith(lfenc.Con(lfenc.Ref(id, []string{"Dep"}, "T")))
	}
	conOf := func(p *raw.Package) *raw.Type { return p.Modules[0].DataTypes[0].Fields[0].Type }

	// Literal ids are accepted up to 1.6.
	for _, v := range []lfversion.Version{lfversion.V1_0, lfversion.V1_5} {
		p, err := Decode(encoded(v, ref()))
		if err != nil {
			t.Fatalf("%s: %v", v, err)
		}
		if got := conOf(p).Con.Module.Package; got.Kind != raw.PackageLiteral || got.ID != id {
			t.Fatalf("%s: package ref %+v", v, got)
		}
	}

	// 1.6 takes both forms.
	lit := ref()
	_, err := Decode(lfversion.Payload{Version: lfversion.V1_6, Body: lfenc.Encode(lit)})
	if err != nil {
		t.Fatalf("1.6 literal id: %v", err)
	}
	p, err := Decode(encoded(lfversion.V1_6, ref()))
	if err != nil {
		t.Fatalf("1.6 interned id: %v", err)
	}
	if got := conOf(p).Con.Module.Package; got.Kind != raw.PackageInterned {
		t.Fatalf("1.6: package ref %+v", got)
	}

	// From 1.7 a literal id is malformed even when every name is interned.
	pkg := ref()
	lfenc.Prepare(lfversion.V1_7, pkg)
	conOf(pkg).Con.Module.Package = raw.PackageRef{Kind: raw.PackageLiteral, ID: id}
	_, err = Decode(lfversion.Payload{Version: lfversion.V1_7, Body: lfenc.Encode(pkg)})
	requireRule(t, err, lferr.KindDecode, lferr.RuleMalformed)
	if lferr.DetailOf(err) != "PackageRef" {
		t.Fatalf("detail: got %q", lferr.DetailOf(err))
	}
}

func TestDecode_PrimitiveGates(t *testing.T) {
	cases := []struct {
		tag     int32
		args    []*raw.Type
		version lfversion.Version
		ok      bool
	}{
		{lfwire.PrimDecimal, nil, lfversion.V1_6, true},
		{lfwire.PrimDecimal, nil, lfversion.V1_7, false},
		{lfwire.PrimDecimal, []*raw.Type{lfenc.Prim(lfwire.PrimInt64)}, lfversion.V1_5, false},
		{lfwire.PrimOptional, []*raw.Type{lfenc.Prim(lfwire.PrimInt64)}, lfversion.V1_0, false},
		{lfwire.PrimOptional, []*raw.Type{lfenc.Prim(lfwire.PrimInt64)}, lfversion.V1_1, true},
		{lfwire.PrimTextMap, nil, lfversion.V1_2, false},
		{lfwire.PrimTextMap, nil, lfversion.V1_3, true},
		{lfwire.PrimAny, nil, lfversion.V1_6, false},
		{lfwire.PrimAny, nil, lfversion.V1_7, true},
		{lfwire.PrimGenMap, nil, lfversion.V1_8, false},
		{lfwire.PrimGenMap, nil, lfversion.V1_11, true},
		{lfwire.PrimBigNumeric, nil, lfversion.V1_12, false},
		{lfwire.PrimBigNumeric, nil, lfversion.V1_13, true},
		{lfwire.PrimRoundingMode, nil, lfversion.V1_12, false},
		{lfwire.PrimRoundingMode, nil, lfversion.V1_13, true},
		{lfwire.PrimAnyException, nil, lfversion.V1_13, false},
		{lfwire.PrimAnyException, nil, lfversion.V1_14, true},
		{lfwire.PrimAnyException, nil, lfversion.V1Dev, true},
		{4, nil, lfversion.V1_0, false},
		{7, nil, lfversion.V1_15, false},
		{24, nil, lfversion.V1Dev, false},
		{-1, nil, lfversion.V1_15, false},
	}
	for _, tc := range cases {
		_, err := Decode(encoded(tc.version, recordWith(lfenc.Prim(tc.tag, tc.args...))))
		if tc.ok && err != nil {
			t.Fatalf("prim %d at %s: %v", tc.tag, tc.version, err)
		}
		if !tc.ok {
			requireRule(t, err, lferr.KindDecode, lferr.RuleMalformed)
		}
	}
}

func TestDecode_DecimalTakesNoArguments(t *testing.T) {
	_, err := Decode(encoded(lfversion.V1_5, recordWith(lfenc.Prim(lfwire.PrimDecimal, lfenc.Prim(lfwire.PrimInt64)))))
	requireRule(t, err, lferr.KindDecode, lferr.RuleMalformed)
	if got := lferr.DetailOf(err); got != "Type.Prim" {
		t.Fatalf("detail: got %q", got)
	}
}

func TestDecode_TableGates(t *testing.T) {
	// Interned types first appear in 1.11.
	p := &raw.Package{Modules: []*raw.Module{lfenc.Module([]string{"M"}, lfenc.Record("R"))}}
	p.Modules[0].Templates = []*raw.Template{
		lfenc.Template("R", lfenc.Choice("C", true, "a", lfenc.Prim(lfwire.PrimUnit), lfenc.Prim(lfwire.PrimUnit))),
	}
	lfenc.Prepare(lfversion.V1_11, p)
	if len(p.Types) == 0 {
		t.Fatalf("fixture should carry interned types")
	}
	body := lfenc.Encode(p)
	if _, err := Decode(lfversion.Payload{Version: lfversion.V1_11, Body: body}); err != nil {
		t.Fatalf("1.11: %v", err)
	}
	_, err := Decode(lfversion.Payload{Version: lfversion.V1_8, Body: body})
	requireRule(t, err, lferr.KindDecode, lferr.RuleMalformed)

	// Metadata first appears in 1.8.
	md := lfenc.MinimalRecord()
	md.Metadata = &raw.Metadata{Name: raw.Lit("pkg"), Version: raw.Lit("1.0.0")}
	lfenc.Prepare(lfversion.V1_8, md)
	body = lfenc.Encode(md)
	got, err := Decode(lfversion.Payload{Version: lfversion.V1_8, Body: body})
	if err != nil {
		t.Fatalf("1.8 metadata: %v", err)
	}
	if got.Metadata == nil || !got.Metadata.Name.Interned {
		t.Fatalf("metadata not decoded: %+v", got.Metadata)
	}
	_, err = Decode(lfversion.Payload{Version: lfversion.V1_7, Body: body})
	requireRule(t, err, lferr.KindDecode, lferr.RuleMalformed)
}

func TestDecode_SynonymsAndExceptionsGated(t *testing.T) {
	syn := lfenc.MinimalRecord()
	syn.Modules[0].Synonyms = []*raw.Synonym{{Name: raw.LitDotted("S"), Type: lfenc.Prim(lfwire.PrimInt64)}}
	if _, err := Decode(encoded(lfversion.V1_8, syn)); err != nil {
		t.Fatalf("1.8 synonym: %v", err)
	}
	syn = lfenc.MinimalRecord()
	syn.Modules[0].Synonyms = []*raw.Synonym{{Name: raw.LitDotted("S"), Type: lfenc.Prim(lfwire.PrimInt64)}}
	_, err := Decode(encoded(lfversion.V1_7, syn))
	requireRule(t, err, lferr.KindDecode, lferr.RuleMalformed)

	exc := func() *raw.Package {
		p := lfenc.MinimalRecord()
		p.Modules[0].Exceptions = []*raw.Exception{{Name: raw.LitDotted("T"), Message: lfenc.Expr}}
		return p
	}
	if _, err := Decode(encoded(lfversion.V1_14, exc())); err != nil {
		t.Fatalf("1.14 exception: %v", err)
	}
	_, err = Decode(encoded(lfversion.V1_13, exc()))
	requireRule(t, err, lferr.KindDecode, lferr.RuleMalformed)
}

func TestDecode_UnknownFieldsAreSkipped(t *testing.T) {
	p := encoded(lfversion.V1_5, lfenc.MinimalRecord())
	body := protowire.AppendTag(p.Body, 99, protowire.VarintType)
	body = protowire.AppendVarint(body, 7)
	body = protowire.AppendTag(body, 100, protowire.BytesType)
	body = protowire.AppendString(body, "ignored")
	got, err := Decode(lfversion.Payload{Version: p.Version, Body: body})
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(got.Modules) != 1 {
		t.Fatalf("modules: got %d", len(got.Modules))
	}
}

func TestDecode_MalformedInput(t *testing.T) {
	good := encoded(lfversion.V1_5, lfenc.FooBarBaz()).Body

	wrongType := protowire.AppendTag(nil, lfwire.PackageModules, protowire.VarintType)
	wrongType = protowire.AppendVarint(wrongType, 1)

	badUTF8 := encoded(lfversion.V1_5, recordWithName("\xff")).Body

	cases := map[string][]byte{
		"truncated":       good[:len(good)-1],
		"wrong wire type": wrongType,
		"invalid utf8":    badUTF8,
		"bad tag":         {0x00},
	}
	for name, body := range cases {
		_, err := Decode(lfversion.Payload{Version: lfversion.V1_5, Body: body})
		if !lferr.Is(err, lferr.KindDecode, lferr.RuleMalformed) {
			t.Fatalf("%s: expected Malformed, got %v", name, err)
		}
	}
}

func recordWithName(field string) *raw.Package {
	return &raw.Package{Modules: []*raw.Module{
		lfenc.Module([]string{"M"}, lfenc.Record("R", lfenc.Field(field, lfenc.Prim(lfwire.PrimInt64)))),
	}}
}

func TestDecode_RequiredParts(t *testing.T) {
	noKind := lfenc.MinimalRecord()
	noKind.Modules[0].DataTypes[0].Kind = 0
	_, err := Decode(encoded(lfversion.V1_5, noKind))
	requireRule(t, err, lferr.KindDecode, lferr.RuleMalformed)

	noArg := lfenc.FooBarBaz()
	noArg.Modules[0].Templates[0].Choices[0].ArgType = nil
	_, err = Decode(encoded(lfversion.V1_5, noArg))
	requireRule(t, err, lferr.KindDecode, lferr.RuleMalformed)
}

func nested(depth int) *raw.Type {
	t := lfenc.Prim(lfwire.PrimInt64)
	for i := 1; i < depth; i++ {
		t = lfenc.Prim(lfwire.PrimList, t)
	}
	return t
}

func TestDecode_NestingBound(t *testing.T) {
	if _, err := Decode(encoded(lfversion.V1_5, recordWith(nested(100)))); err != nil {
		t.Fatalf("depth 100: %v", err)
	}
	_, err := Decode(encoded(lfversion.V1_5, recordWith(nested(maxDepth+1))))
	requireRule(t, err, lferr.KindDecode, lferr.RuleMalformed)
}

func TestDecode_DottedEntriesPacked(t *testing.T) {
	p := &raw.Package{Modules: []*raw.Module{lfenc.Module([]string{"A", "B", "C"}, lfenc.Record("T"))}}
	got, err := Decode(encoded(lfversion.V1_7, p))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	idx := got.Modules[0].Name.Index
	if n := len(got.DottedNames[idx]); n != 3 {
		t.Fatalf("segments: got %d want 3", n)
	}
}
