// Package builder maps a resolved raw tree to the canonical package model.
//
// Every version-specific representation is normalized through an explicit
// per-family table. A construct with no entry in its family's table is an
// UnsupportedConstruct model error: it means the decoder admitted something
// the builder does not know, which is a defect rather than bad input.
//
// Build is pure. It performs no I/O and shares no state between calls.
package builder

import (
	"strings"

	"xdao.co/lfpkg/lf"
	"xdao.co/lfpkg/lferr"
	"xdao.co/lfpkg/raw"
)

type builder struct {
	norm *normalization
	memo map[*raw.Type]*lf.Type
}

// Build converts p, which must already be resolved, into a Package with the
// given id and payload bytes.
func Build(id string, payload []byte, p *raw.Package) (*lf.Package, error) {
	if !p.Resolved {
		return nil, lferr.UnsupportedConstruct(id, "package has unresolved interned names")
	}
	norm, ok := normalizations[p.Version.Family()]
	if !ok {
		return nil, lferr.UnsupportedConstruct(p.Version.String(), "no normalization table for version")
	}
	b := &builder{norm: norm, memo: make(map[*raw.Type]*lf.Type)}

	out := &lf.Package{
		ID:              id,
		LanguageVersion: p.Version,
		Payload:         payload,
		Modules:         make([]*lf.Module, 0, len(p.Modules)),
	}
	if p.Metadata != nil {
		out.Name = p.Metadata.Name.Value
		out.Version = p.Metadata.Version.Value
	}
	names := make([]string, 0, len(p.Modules))
	for _, m := range p.Modules {
		lm, err := b.module(m)
		if err != nil {
			return nil, err
		}
		out.Modules = append(out.Modules, lm)
		names = append(names, lm.Name())
	}
	if err := unique("module", "", names); err != nil {
		return nil, err
	}
	return out, nil
}

func dotted(n raw.DottedName) string { return strings.Join(n.Segments, ".") }

// unique fails on the first repeated name, reported as scope.name.
func unique(what, scope string, names []string) error {
	seen := make(map[string]struct{}, len(names))
	for _, n := range names {
		if _, dup := seen[n]; dup {
			detail := n
			if scope != "" {
				detail = scope + "." + n
			}
			return lferr.DuplicateName(detail, what)
		}
		seen[n] = struct{}{}
	}
	return nil
}

func fieldNames(fs []lf.Field) []string {
	out := make([]string, len(fs))
	for i, f := range fs {
		out[i] = f.Name
	}
	return out
}

func (b *builder) module(m *raw.Module) (*lf.Module, error) {
	out := &lf.Module{
		Path: m.Name.Segments,
		Flags: lf.FeatureFlags{
			ForbidPartyLiterals:             m.Flags.ForbidPartyLiterals,
			DontDivulgeContractIDsInCreate:  m.Flags.DontDivulgeContractIDsInCreate,
			DontDiscloseNonConsumingChoices: m.Flags.DontDiscloseNonConsumingChoices,
		},
	}
	scope := out.Name()

	var typeNames []string
	for _, d := range m.DataTypes {
		ld, err := b.dataType(scope, d)
		if err != nil {
			return nil, err
		}
		out.DataTypes = append(out.DataTypes, ld)
		typeNames = append(typeNames, ld.Name)
	}
	for _, s := range m.Synonyms {
		ls, err := b.synonym(s)
		if err != nil {
			return nil, err
		}
		out.Synonyms = append(out.Synonyms, ls)
		typeNames = append(typeNames, ls.Name)
	}
	if err := unique("type", scope, typeNames); err != nil {
		return nil, err
	}

	var tplNames []string
	for _, t := range m.Templates {
		lt, err := b.template(scope, t)
		if err != nil {
			return nil, err
		}
		out.Templates = append(out.Templates, lt)
		tplNames = append(tplNames, lt.Name)
	}
	if err := unique("template", scope, tplNames); err != nil {
		return nil, err
	}

	var valNames []string
	for _, v := range m.Values {
		t, err := b.typ(v.Type)
		if err != nil {
			return nil, err
		}
		lv := &lf.Value{
			Name:            dotted(v.Name),
			Type:            t,
			Body:            lf.Expr(v.Body),
			NoPartyLiterals: v.NoPartyLiterals,
			IsTest:          v.IsTest,
		}
		out.Values = append(out.Values, lv)
		valNames = append(valNames, lv.Name)
	}
	if err := unique("value", scope, valNames); err != nil {
		return nil, err
	}

	var excNames []string
	for _, e := range m.Exceptions {
		le := &lf.Exception{Name: dotted(e.Name), Message: lf.Expr(e.Message)}
		out.Exceptions = append(out.Exceptions, le)
		excNames = append(excNames, le.Name)
	}
	if err := unique("exception", scope, excNames); err != nil {
		return nil, err
	}
	return out, nil
}

func (b *builder) dataType(scope string, d *raw.DataType) (*lf.DataType, error) {
	params, err := b.typeParams(d.Params)
	if err != nil {
		return nil, err
	}
	out := &lf.DataType{
		Name:         dotted(d.Name),
		Params:       params,
		Serializable: d.Serializable,
	}
	qualified := scope + "." + out.Name
	var names []string
	switch d.Kind {
	case raw.DataRecord, raw.DataVariant:
		out.Kind = lf.Record
		if d.Kind == raw.DataVariant {
			out.Kind = lf.Variant
		}
		out.Fields, err = b.fields(d.Fields)
		if err != nil {
			return nil, err
		}
		names = fieldNames(out.Fields)
	case raw.DataEnum:
		out.Kind = lf.Enum
		out.Constructors = make([]string, len(d.Constructors))
		for i, c := range d.Constructors {
			out.Constructors[i] = c.Value
		}
		names = out.Constructors
	default:
		return nil, lferr.UnsupportedConstruct(qualified, "no canonical form for data type kind %d", d.Kind)
	}
	if err := unique(out.Kind.String()+" member", qualified, names); err != nil {
		return nil, err
	}
	return out, nil
}

func (b *builder) synonym(s *raw.Synonym) (*lf.Synonym, error) {
	params, err := b.typeParams(s.Params)
	if err != nil {
		return nil, err
	}
	t, err := b.typ(s.Type)
	if err != nil {
		return nil, err
	}
	return &lf.Synonym{Name: dotted(s.Name), Params: params, Type: t}, nil
}

func (b *builder) template(scope string, t *raw.Template) (*lf.Template, error) {
	out := &lf.Template{
		Name:        dotted(t.Name),
		Param:       t.Param.Value,
		Precond:     lf.Expr(t.Precond),
		Signatories: lf.Expr(t.Signatories),
		Observers:   lf.Expr(t.Observers),
		Agreement:   lf.Expr(t.Agreement),
	}
	if t.Key != nil {
		kt, err := b.typ(t.Key.Type)
		if err != nil {
			return nil, err
		}
		out.Key = &lf.Key{
			Type:        kt,
			Body:        lf.Expr(t.Key.Body),
			Complex:     t.Key.Complex,
			Maintainers: lf.Expr(t.Key.Maintainers),
		}
	}
	names := make([]string, 0, len(t.Choices))
	for _, c := range t.Choices {
		arg, err := b.typ(c.ArgType)
		if err != nil {
			return nil, err
		}
		ret, err := b.typ(c.ReturnType)
		if err != nil {
			return nil, err
		}
		out.Choices = append(out.Choices, &lf.Choice{
			Name:        c.Name.Value,
			Consuming:   c.Consuming,
			Controllers: lf.Expr(c.Controller),
			Observers:   lf.Expr(c.Observers),
			ArgName:     c.ArgName.Value,
			ArgType:     arg,
			ReturnType:  ret,
			SelfBinder:  c.SelfBinder.Value,
			Update:      lf.Expr(c.Update),
		})
		names = append(names, c.Name.Value)
	}
	if err := unique("choice", scope+"."+out.Name, names); err != nil {
		return nil, err
	}
	return out, nil
}
