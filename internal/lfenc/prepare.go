package lfenc

import (
	"strings"

	"xdao.co/lfpkg/lfversion"
	"xdao.co/lfpkg/raw"
)

// Prepare rewrites literal names in p into the encoding v requires: nothing
// changes below 1.6, 1.6 interns package ids, and 1.7 onwards interns every
// name. From 1.11 choice argument and return types are also moved into the
// interned type table. Names that are already interned are left alone.
func Prepare(v lfversion.Version, p *raw.Package) {
	p.Version = v
	in := &interner{p: p, strs: map[string]int32{}, dotted: map[string]int32{}}
	for i, s := range p.Strings {
		if _, ok := in.strs[s]; !ok {
			in.strs[s] = int32(i)
		}
	}
	switch v.Family() {
	case lfversion.FamilyInternedIDs:
		in.names = false
		in.walk()
	case lfversion.FamilyInterned:
		in.names = true
		in.types = v.Supports(lfversion.InternedTypes)
		in.walk()
	}
}

type interner struct {
	p      *raw.Package
	strs   map[string]int32
	dotted map[string]int32
	// names interns every string and dotted name; otherwise only package
	// ids are interned.
	names bool
	types bool
}

func (in *interner) strIndex(s string) int32 {
	if i, ok := in.strs[s]; ok {
		return i
	}
	i := int32(len(in.p.Strings))
	in.p.Strings = append(in.p.Strings, s)
	in.strs[s] = i
	return i
}

func (in *interner) str(s *raw.Str) {
	if !in.names || s.Interned {
		return
	}
	*s = raw.InternedStr(in.strIndex(s.Value))
}

func (in *interner) dottedName(n *raw.DottedName) {
	if !in.names || n.Interned {
		return
	}
	key := strings.Join(n.Segments, "\x00")
	if i, ok := in.dotted[key]; ok {
		*n = raw.InternedDotted(i)
		return
	}
	idx := make([]int32, len(n.Segments))
	for j, s := range n.Segments {
		idx[j] = in.strIndex(s)
	}
	i := int32(len(in.p.DottedNames))
	in.p.DottedNames = append(in.p.DottedNames, idx)
	in.dotted[key] = i
	*n = raw.InternedDotted(i)
}

func (in *interner) hoist(t *raw.Type) *raw.Type {
	t = in.typ(t)
	if !in.types || t == nil || t.Tag == raw.TypeInterned {
		return t
	}
	i := int32(len(in.p.Types))
	in.p.Types = append(in.p.Types, t)
	return &raw.Type{Tag: raw.TypeInterned, Interned: i}
}

func (in *interner) walk() {
	p := in.p
	if p.Metadata != nil {
		in.str(&p.Metadata.Name)
		in.str(&p.Metadata.Version)
	}
	for _, m := range p.Modules {
		in.dottedName(&m.Name)
		for _, d := range m.DataTypes {
			in.dottedName(&d.Name)
			in.typeVars(d.Params)
			in.fields(d.Fields)
			for i := range d.Constructors {
				in.str(&d.Constructors[i])
			}
		}
		for _, v := range m.Values {
			in.dottedName(&v.Name)
			v.Type = in.typ(v.Type)
		}
		for _, t := range m.Templates {
			in.dottedName(&t.Name)
			in.str(&t.Param)
			for _, c := range t.Choices {
				in.str(&c.Name)
				in.str(&c.ArgName)
				in.str(&c.SelfBinder)
				c.ArgType = in.hoist(c.ArgType)
				c.ReturnType = in.hoist(c.ReturnType)
			}
			if t.Key != nil {
				t.Key.Type = in.typ(t.Key.Type)
			}
		}
		for _, s := range m.Synonyms {
			in.dottedName(&s.Name)
			in.typeVars(s.Params)
			s.Type = in.typ(s.Type)
		}
		for _, x := range m.Exceptions {
			in.dottedName(&x.Name)
		}
	}
}

func (in *interner) typeVars(vs []*raw.TypeVar) {
	for _, v := range vs {
		in.str(&v.Name)
	}
}

func (in *interner) fields(fs []*raw.Field) {
	for _, f := range fs {
		in.str(&f.Name)
		f.Type = in.typ(f.Type)
	}
}

func (in *interner) typ(t *raw.Type) *raw.Type {
	if t == nil {
		return nil
	}
	switch t.Tag {
	case raw.TypeVarApp:
		in.str(&t.Var)
	case raw.TypeCon, raw.TypeSyn:
		if t.Con.Module.Package.Kind == raw.PackageLiteral {
			t.Con.Module.Package = raw.PackageRef{Kind: raw.PackageInterned, Index: in.strIndex(t.Con.Module.Package.ID)}
		}
		in.dottedName(&t.Con.Module.Module)
		in.dottedName(&t.Con.Name)
	case raw.TypeFun:
		for i, p := range t.Params {
			t.Params[i] = in.typ(p)
		}
		t.Result = in.typ(t.Result)
	case raw.TypeForall:
		in.typeVars(t.Vars)
		t.Body = in.typ(t.Body)
	case raw.TypeStruct:
		in.fields(t.Fields)
	}
	for i, a := range t.Args {
		t.Args[i] = in.typ(a)
	}
	return t
}
