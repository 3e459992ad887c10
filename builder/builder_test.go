package builder

import (
	"reflect"
	"testing"

	"xdao.co/lfpkg/cidutil"
	"xdao.co/lfpkg/decode"
	"xdao.co/lfpkg/intern"
	"xdao.co/lfpkg/internal/lfenc"
	"xdao.co/lfpkg/lf"
	"xdao.co/lfpkg/lferr"
	"xdao.co/lfpkg/lfversion"
	"xdao.co/lfpkg/lfwire"
	"xdao.co/lfpkg/raw"
)

func build(t *testing.T, v lfversion.Version, p *raw.Package) (*lf.Package, error) {
	t.Helper()
	payload := lfenc.Build(v, p)
	detected, err := lfversion.Detect(payload)
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	tree, err := decode.Decode(detected)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	tree, err = intern.Resolve(tree)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	return Build(cidutil.PackageID(payload), payload, tree)
}

func mustBuild(t *testing.T, v lfversion.Version, p *raw.Package) *lf.Package {
	t.Helper()
	pkg, err := build(t, v, p)
	if err != nil {
		t.Fatalf("Build at %s: %v", v, err)
	}
	return pkg
}

func fieldType(t *testing.T, pkg *lf.Package) *lf.Type {
	t.Helper()
	d := pkg.Modules[0].DataTypes[0]
	if len(d.Fields) == 0 {
		t.Fatalf("record %s has no fields", d.Name)
	}
	return d.Fields[0].Type
}

func record(fields ...*raw.Field) *raw.Package {
	return &raw.Package{Modules: []*raw.Module{lfenc.Module([]string{"M"}, lfenc.Record("R", fields...))}}
}

func requireDuplicate(t *testing.T, err error, detail string) {
	t.Helper()
	if !lferr.Is(err, lferr.KindDecode, lferr.RuleDuplicateName) {
		t.Fatalf("expected DUPLICATE_NAME, got %v", err)
	}
	if got := lferr.DetailOf(err); got != detail {
		t.Fatalf("detail: got %q want %q", got, detail)
	}
}

func TestBuild_FooBarBaz(t *testing.T) {
	for _, v := range []lfversion.Version{lfversion.V1_5, lfversion.V1_6, lfversion.V1_8, lfversion.V1_14} {
		pkg := mustBuild(t, v, lfenc.FooBarBaz())
		if pkg.LanguageVersion != v {
			t.Fatalf("%s: language version %s", v, pkg.LanguageVersion)
		}
		m := pkg.Module("Foo")
		if m == nil {
			t.Fatalf("%s: module Foo missing", v)
		}
		bar := m.DataType("Bar")
		if bar == nil || bar.Kind != lf.Record {
			t.Fatalf("%s: record Bar missing", v)
		}
		x, ok := bar.Field("x")
		if !ok || !reflect.DeepEqual(x.Type, lf.PrimType(lf.Int64)) {
			t.Fatalf("%s: Bar.x = %v", v, x.Type)
		}
		tpl := m.Template("Baz")
		if tpl == nil {
			t.Fatalf("%s: template Baz missing", v)
		}
		do := tpl.Choice("Do")
		if do == nil || !do.Consuming {
			t.Fatalf("%s: consuming choice Do missing", v)
		}
		want := lf.ConType(lf.TypeConName{Module: []string{"Foo"}, Name: "Bar"})
		if !reflect.DeepEqual(do.ArgType, want) {
			t.Fatalf("%s: Do argument %v", v, do.ArgType)
		}
		if !reflect.DeepEqual(do.ReturnType, lf.PrimType(lf.Unit)) {
			t.Fatalf("%s: Do result %v", v, do.ReturnType)
		}
	}
}

func TestBuild_DecimalIsNumericTen(t *testing.T) {
	for _, v := range []lfversion.Version{lfversion.V1_0, lfversion.V1_6} {
		got := fieldType(t, mustBuild(t, v, record(lfenc.Field("amount", lfenc.Prim(lfwire.PrimDecimal)))))
		if !reflect.DeepEqual(got, lf.NumericType(10)) {
			t.Fatalf("%s: got %v", v, got)
		}
		if got.String() != "Numeric 10" {
			t.Fatalf("%s: rendered %q", v, got.String())
		}
	}
}

func TestBuild_NumericMatchesLegacyDecimal(t *testing.T) {
	modern := record(lfenc.Field("amount", lfenc.Prim(lfwire.PrimNumeric, &raw.Type{Tag: raw.TypeNat, Nat: 10})))
	legacy := record(lfenc.Field("amount", lfenc.Prim(lfwire.PrimDecimal)))
	a := fieldType(t, mustBuild(t, lfversion.V1_11, modern))
	b := fieldType(t, mustBuild(t, lfversion.V1_6, legacy))
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("Numeric 10 %v differs from DECIMAL %v", a, b)
	}
}

func TestBuild_FunIsArrow(t *testing.T) {
	fun := &raw.Type{
		Tag:    raw.TypeFun,
		Params: []*raw.Type{lfenc.Prim(lfwire.PrimInt64), lfenc.Prim(lfwire.PrimText)},
		Result: lfenc.Prim(lfwire.PrimBool),
	}
	got := fieldType(t, mustBuild(t, lfversion.V1_3, record(lfenc.Field("f", fun))))
	want := lf.ArrowType(lf.PrimType(lf.Bool), lf.PrimType(lf.Int64), lf.PrimType(lf.Text))
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v want %v", got, want)
	}
	if got.String() != "Int64 -> Text -> Bool" {
		t.Fatalf("rendered %q", got.String())
	}

	prim := lfenc.Prim(lfwire.PrimArrow, lfenc.Prim(lfwire.PrimInt64), lfenc.Prim(lfwire.PrimText))
	viaPrim := fieldType(t, mustBuild(t, lfversion.V1_3, record(lfenc.Field("f", prim))))
	if !reflect.DeepEqual(viaPrim, lf.ArrowType(lf.PrimType(lf.Text), lf.PrimType(lf.Int64))) {
		t.Fatalf("ARROW prim: %v", viaPrim)
	}
}

func TestBuild_SharedInternedTypesBuiltOnce(t *testing.T) {
	// Each entry uses the previous one twice; without sharing the canonical
	// tree would double in size per level.
	const depth = 64
	p := record()
	p.Types = []*raw.Type{lfenc.Prim(lfwire.PrimInt64)}
	for i := int32(1); i < depth; i++ {
		p.Types = append(p.Types, &raw.Type{
			Tag:    raw.TypeFun,
			Params: []*raw.Type{{Tag: raw.TypeInterned, Interned: i - 1}},
			Result: &raw.Type{Tag: raw.TypeInterned, Interned: i - 1},
		})
	}
	p.Modules[0].DataTypes[0].Fields = []*raw.Field{
		lfenc.Field("f", &raw.Type{Tag: raw.TypeInterned, Interned: depth - 1}),
	}
	got := fieldType(t, mustBuild(t, lfversion.V1_11, p))
	for i := 1; i < depth; i++ {
		if got.Tag != lf.TPrim || got.Prim != lf.Arrow {
			t.Fatalf("level %d: %v", i, got.Tag)
		}
		if got.Args[0] != got.Args[1] {
			t.Fatalf("level %d: shared entry rebuilt", i)
		}
		got = got.Args[0]
	}
	if got.Prim != lf.Int64 {
		t.Fatalf("leaf: %v", got)
	}
}

func TestBuild_TypeVariableApplication(t *testing.T) {
	for _, v := range []lfversion.Version{lfversion.V1_5, lfversion.V1_7, lfversion.V1_14} {
		p := record(lfenc.Field("f", lfenc.Var("f", lfenc.Prim(lfwire.PrimInt64))))
		d := p.Modules[0].DataTypes[0]
		d.Params = []*raw.TypeVar{{Name: raw.Lit("f"), Kind: &raw.Kind{Tag: raw.KindArrow, Params: []*raw.Kind{lfenc.Star()}, Result: lfenc.Star()}}}
		got := fieldType(t, mustBuild(t, v, p))
		if got.Tag != lf.TVar || got.Var != "f" || len(got.Args) != 1 || got.Args[0].Prim != lf.Int64 {
			t.Fatalf("%s: %v", v, got)
		}
		if s := got.String(); s != "f Int64" {
			t.Fatalf("%s: rendered %q", v, s)
		}
	}
}

func TestBuild_Metadata(t *testing.T) {
	p := lfenc.MinimalRecord()
	p.Metadata = &raw.Metadata{Name: raw.Lit("my-pkg"), Version: raw.Lit("1.2.3")}
	pkg := mustBuild(t, lfversion.V1_8, p)
	if pkg.Name != "my-pkg" || pkg.Version != "1.2.3" {
		t.Fatalf("metadata: %q %q", pkg.Name, pkg.Version)
	}
	if pkg.ID == "" || len(pkg.Payload) == 0 {
		t.Fatalf("id and payload must be set")
	}
}

func TestBuild_EnumAndVariant(t *testing.T) {
	p := &raw.Package{Modules: []*raw.Module{lfenc.Module([]string{"M"},
		lfenc.Enum("Color", "Red", "Green"),
		lfenc.Variant("Shape", lfenc.Field("Circle", lfenc.Prim(lfwire.PrimInt64)), lfenc.Field("Dot", lfenc.Prim(lfwire.PrimUnit))),
	)}}
	m := mustBuild(t, lfversion.V1_6, p).Module("M")
	color := m.DataType("Color")
	if color.Kind != lf.Enum || !reflect.DeepEqual(color.Constructors, []string{"Red", "Green"}) {
		t.Fatalf("enum: %+v", color)
	}
	shape := m.DataType("Shape")
	if shape.Kind != lf.Variant || len(shape.Fields) != 2 || shape.Fields[1].Name != "Dot" {
		t.Fatalf("variant: %+v", shape)
	}
}

func TestBuild_EmptyRecordKeepsEmptyFieldList(t *testing.T) {
	d := mustBuild(t, lfversion.V1_0, lfenc.MinimalRecord()).Modules[0].DataTypes[0]
	if d.Kind != lf.Record || d.Fields == nil || len(d.Fields) != 0 {
		t.Fatalf("want empty record, got %+v", d)
	}
}

func TestBuild_RejectsUnresolved(t *testing.T) {
	p := lfenc.MinimalRecord()
	_, err := Build("id", nil, p)
	if !lferr.Is(err, lferr.KindModel, lferr.RuleUnsupportedConstruct) {
		t.Fatalf("expected UNSUPPORTED_CONSTRUCT, got %v", err)
	}
}

func TestBuild_DuplicateNames(t *testing.T) {
	i64 := func() *raw.Type { return lfenc.Prim(lfwire.PrimInt64) }

	_, err := build(t, lfversion.V1_5, &raw.Package{Modules: []*raw.Module{
		lfenc.Module([]string{"M"}, lfenc.Record("R"), lfenc.Record("R")),
	}})
	requireDuplicate(t, err, "M.R")

	_, err = build(t, lfversion.V1_5, record(lfenc.Field("f", i64()), lfenc.Field("f", i64())))
	requireDuplicate(t, err, "M.R.f")

	_, err = build(t, lfversion.V1_6, &raw.Package{Modules: []*raw.Module{
		lfenc.Module([]string{"M"}, lfenc.Enum("E", "A", "A")),
	}})
	requireDuplicate(t, err, "M.E.A")

	_, err = build(t, lfversion.V1_5, &raw.Package{Modules: []*raw.Module{
		lfenc.Module([]string{"A", "B"}), lfenc.Module([]string{"A", "B"}),
	}})
	requireDuplicate(t, err, "A.B")

	choices := record()
	unit := func() *raw.Type { return lfenc.Prim(lfwire.PrimUnit) }
	choices.Modules[0].Templates = []*raw.Template{lfenc.Template("R",
		lfenc.Choice("C", true, "a", unit(), unit()),
		lfenc.Choice("C", false, "a", unit(), unit()),
	)}
	_, err = build(t, lfversion.V1_5, choices)
	requireDuplicate(t, err, "M.R.C")

	syn := record()
	syn.Modules[0].Synonyms = []*raw.Synonym{{Name: raw.LitDotted("R"), Type: i64()}}
	_, err = build(t, lfversion.V1_8, syn)
	requireDuplicate(t, err, "M.R")

	values := record()
	values.Modules[0].Values = []*raw.Value{
		{Name: raw.LitDotted("v"), Type: i64(), Body: lfenc.Expr},
		{Name: raw.LitDotted("v"), Type: i64(), Body: lfenc.Expr},
	}
	_, err = build(t, lfversion.V1_5, values)
	requireDuplicate(t, err, "M.v")

	st := record(lfenc.Field("s", &raw.Type{Tag: raw.TypeStruct, Fields: []*raw.Field{
		lfenc.Field("a", i64()), lfenc.Field("a", i64()),
	}}))
	_, err = build(t, lfversion.V1_5, st)
	requireDuplicate(t, err, "a")
}

func TestBuild_TemplateSharesRecordName(t *testing.T) {
	p := lfenc.FooBarBaz()
	p.Modules[0].Exceptions = []*raw.Exception{{Name: raw.LitDotted("Baz"), Message: lfenc.Expr}}
	m := mustBuild(t, lfversion.V1_14, p).Module("Foo")
	defs := lf.Definitions(m)
	baz := defs["Baz"]
	if baz.Kind != lf.DefTemplate || baz.DataType == nil || baz.DataType.Name != "Baz" {
		t.Fatalf("Baz: %+v", baz)
	}
	if defs["Bar"].Kind != lf.DefDataType {
		t.Fatalf("Bar: %+v", defs["Bar"])
	}
}
