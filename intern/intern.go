// Package intern resolves by-reference names in a raw package tree.
//
// Resolve is the only place intern indices are bounds-checked. Once it
// returns, every name in the tree is a literal and stages downstream must not
// re-validate.
package intern

import (
	"xdao.co/lfpkg/lferr"
	"xdao.co/lfpkg/raw"
)

const (
	tableStrings = "interned strings"
	tableDotted  = "interned dotted names"
	tableTypes   = "interned types"
)

type resolver struct {
	strings []string
	dotted  [][]string
	types   []*raw.Type
	// ntypes is how many entries of types may be referenced; an interned
	// type may only refer to entries before it.
	ntypes int
}

// Resolve replaces every interned string, dotted name, package id and type in
// p with its table value. p is modified in place and returned; a resolved
// package is returned unchanged.
func Resolve(p *raw.Package) (*raw.Package, error) {
	if p.Resolved {
		return p, nil
	}
	r := &resolver{strings: p.Strings}

	r.dotted = make([][]string, len(p.DottedNames))
	for i, idx := range p.DottedNames {
		segs := make([]string, len(idx))
		for j, si := range idx {
			s, err := r.str(si)
			if err != nil {
				return nil, err
			}
			segs[j] = s
		}
		r.dotted[i] = segs
	}

	r.types = make([]*raw.Type, len(p.Types))
	for i, t := range p.Types {
		r.ntypes = i
		rt, err := r.typ(t)
		if err != nil {
			return nil, err
		}
		r.types[i] = rt
	}
	r.ntypes = len(r.types)

	if p.Metadata != nil {
		if err := r.name(&p.Metadata.Name); err != nil {
			return nil, err
		}
		if err := r.name(&p.Metadata.Version); err != nil {
			return nil, err
		}
	}
	for _, m := range p.Modules {
		if err := r.module(m); err != nil {
			return nil, err
		}
	}

	p.Types = r.types
	p.Resolved = true
	return p, nil
}

func (r *resolver) str(i int32) (string, error) {
	if i < 0 || int(i) >= len(r.strings) {
		return "", lferr.InvalidInternIndex(int64(i), tableStrings)
	}
	return r.strings[i], nil
}

func (r *resolver) name(s *raw.Str) error {
	if !s.Interned {
		return nil
	}
	v, err := r.str(s.Index)
	if err != nil {
		return err
	}
	*s = raw.Lit(v)
	return nil
}

func (r *resolver) dottedName(n *raw.DottedName) error {
	if !n.Interned {
		return nil
	}
	if n.Index < 0 || int(n.Index) >= len(r.dotted) {
		return lferr.InvalidInternIndex(int64(n.Index), tableDotted)
	}
	*n = raw.LitDotted(r.dotted[n.Index]...)
	return nil
}

func (r *resolver) packageRef(p *raw.PackageRef) error {
	if p.Kind != raw.PackageInterned {
		return nil
	}
	id, err := r.str(p.Index)
	if err != nil {
		return err
	}
	*p = raw.PackageRef{Kind: raw.PackageLiteral, ID: id}
	return nil
}

func (r *resolver) tyCon(n *raw.TypeConName) error {
	if err := r.packageRef(&n.Module.Package); err != nil {
		return err
	}
	if err := r.dottedName(&n.Module.Module); err != nil {
		return err
	}
	return r.dottedName(&n.Name)
}

func (r *resolver) typeList(ts []*raw.Type) error {
	for i, t := range ts {
		rt, err := r.typ(t)
		if err != nil {
			return err
		}
		ts[i] = rt
	}
	return nil
}

// typ returns the resolved form of t, which is a shared table entry when t is
// an interned reference.
func (r *resolver) typ(t *raw.Type) (*raw.Type, error) {
	if t == nil {
		return nil, nil
	}
	switch t.Tag {
	case raw.TypeInterned:
		if t.Interned < 0 || int(t.Interned) >= r.ntypes {
			return nil, lferr.InvalidInternIndex(int64(t.Interned), tableTypes)
		}
		return r.types[t.Interned], nil
	case raw.TypeVarApp:
		if err := r.name(&t.Var); err != nil {
			return nil, err
		}
	case raw.TypeCon, raw.TypeSyn:
		if err := r.tyCon(&t.Con); err != nil {
			return nil, err
		}
	case raw.TypeFun:
		if err := r.typeList(t.Params); err != nil {
			return nil, err
		}
		res, err := r.typ(t.Result)
		if err != nil {
			return nil, err
		}
		t.Result = res
	case raw.TypeForall:
		if err := r.typeVars(t.Vars); err != nil {
			return nil, err
		}
		body, err := r.typ(t.Body)
		if err != nil {
			return nil, err
		}
		t.Body = body
	case raw.TypeStruct:
		if err := r.fields(t.Fields); err != nil {
			return nil, err
		}
	}
	if err := r.typeList(t.Args); err != nil {
		return nil, err
	}
	return t, nil
}

func (r *resolver) typeVars(vs []*raw.TypeVar) error {
	for _, v := range vs {
		if err := r.name(&v.Name); err != nil {
			return err
		}
	}
	return nil
}

func (r *resolver) fields(fs []*raw.Field) error {
	for _, f := range fs {
		if err := r.name(&f.Name); err != nil {
			return err
		}
		t, err := r.typ(f.Type)
		if err != nil {
			return err
		}
		f.Type = t
	}
	return nil
}

func (r *resolver) module(m *raw.Module) error {
	if err := r.dottedName(&m.Name); err != nil {
		return err
	}
	for _, dt := range m.DataTypes {
		if err := r.dottedName(&dt.Name); err != nil {
			return err
		}
		if err := r.typeVars(dt.Params); err != nil {
			return err
		}
		if err := r.fields(dt.Fields); err != nil {
			return err
		}
		for i := range dt.Constructors {
			if err := r.name(&dt.Constructors[i]); err != nil {
				return err
			}
		}
	}
	for _, v := range m.Values {
		if err := r.dottedName(&v.Name); err != nil {
			return err
		}
		t, err := r.typ(v.Type)
		if err != nil {
			return err
		}
		v.Type = t
	}
	for _, t := range m.Templates {
		if err := r.template(t); err != nil {
			return err
		}
	}
	for _, s := range m.Synonyms {
		if err := r.dottedName(&s.Name); err != nil {
			return err
		}
		if err := r.typeVars(s.Params); err != nil {
			return err
		}
		t, err := r.typ(s.Type)
		if err != nil {
			return err
		}
		s.Type = t
	}
	for _, e := range m.Exceptions {
		if err := r.dottedName(&e.Name); err != nil {
			return err
		}
	}
	return nil
}

func (r *resolver) template(t *raw.Template) error {
	if err := r.dottedName(&t.Name); err != nil {
		return err
	}
	if err := r.name(&t.Param); err != nil {
		return err
	}
	for _, c := range t.Choices {
		for _, s := range []*raw.Str{&c.Name, &c.ArgName, &c.SelfBinder} {
			if err := r.name(s); err != nil {
				return err
			}
		}
		arg, err := r.typ(c.ArgType)
		if err != nil {
			return err
		}
		c.ArgType = arg
		ret, err := r.typ(c.ReturnType)
		if err != nil {
			return err
		}
		c.ReturnType = ret
	}
	if t.Key != nil {
		kt, err := r.typ(t.Key.Type)
		if err != nil {
			return err
		}
		t.Key.Type = kt
	}
	return nil
}
