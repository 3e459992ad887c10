package index

import "xdao.co/lfpkg/lf"

// withConcreteSelf returns a copy of p in which every self reference names
// p.ID. Definitions without references are shared with p.
func withConcreteSelf(p *lf.Package) *lf.Package {
	// One mapper for the whole package: interned types are shared across
	// definitions and each shared node is rewritten once.
	fix := lf.NewConMapper(func(n lf.TypeConName) lf.TypeConName { return concrete(n, p.ID) }).Map
	fields := func(fs []lf.Field) []lf.Field {
		if fs == nil {
			return nil
		}
		out := make([]lf.Field, len(fs))
		for i, f := range fs {
			out[i] = lf.Field{Name: f.Name, Type: fix(f.Type)}
		}
		return out
	}

	out := *p
	out.Modules = make([]*lf.Module, len(p.Modules))
	for i, m := range p.Modules {
		nm := *m
		nm.DataTypes = make([]*lf.DataType, len(m.DataTypes))
		for j, d := range m.DataTypes {
			nd := *d
			nd.Fields = fields(d.Fields)
			nm.DataTypes[j] = &nd
		}
		nm.Templates = make([]*lf.Template, len(m.Templates))
		for j, t := range m.Templates {
			nt := *t
			if t.Key != nil {
				k := *t.Key
				k.Type = fix(k.Type)
				nt.Key = &k
			}
			nt.Choices = make([]*lf.Choice, len(t.Choices))
			for c, ch := range t.Choices {
				nc := *ch
				nc.ArgType = fix(ch.ArgType)
				nc.ReturnType = fix(ch.ReturnType)
				nt.Choices[c] = &nc
			}
			nm.Templates[j] = &nt
		}
		nm.Values = make([]*lf.Value, len(m.Values))
		for j, v := range m.Values {
			nv := *v
			nv.Type = fix(v.Type)
			nm.Values[j] = &nv
		}
		nm.Synonyms = make([]*lf.Synonym, len(m.Synonyms))
		for j, s := range m.Synonyms {
			ns := *s
			ns.Type = fix(s.Type)
			nm.Synonyms[j] = &ns
		}
		out.Modules[i] = &nm
	}
	return &out
}
