package main

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"xdao.co/lfpkg/dar"
	"xdao.co/lfpkg/lf"
	"xdao.co/lfpkg/loader"
)

type archiveReport struct {
	Name          string          `json:"name" yaml:"name"`
	MainPackageID string          `json:"main_package_id" yaml:"main_package_id"`
	Manifest      *manifestReport `json:"manifest,omitempty" yaml:"manifest,omitempty"`
	Packages      []packageReport `json:"packages" yaml:"packages"`
}

type manifestReport struct {
	Version      string   `json:"version,omitempty" yaml:"version,omitempty"`
	CreatedBy    string   `json:"created_by,omitempty" yaml:"created_by,omitempty"`
	Main         string   `json:"main" yaml:"main"`
	Dependencies []string `json:"dependencies,omitempty" yaml:"dependencies,omitempty"`
	Format       string   `json:"format,omitempty" yaml:"format,omitempty"`
	Encryption   string   `json:"encryption,omitempty" yaml:"encryption,omitempty"`
}

type packageReport struct {
	ID              string         `json:"id" yaml:"id"`
	Name            string         `json:"name,omitempty" yaml:"name,omitempty"`
	Version         string         `json:"version,omitempty" yaml:"version,omitempty"`
	LanguageVersion string         `json:"language_version" yaml:"language_version"`
	Modules         []moduleReport `json:"modules" yaml:"modules"`
}

type moduleReport struct {
	Name        string             `json:"name" yaml:"name"`
	Definitions []definitionReport `json:"definitions" yaml:"definitions"`
}

type definitionReport struct {
	Name         string         `json:"name" yaml:"name"`
	Kind         string         `json:"kind" yaml:"kind"`
	Params       []string       `json:"params,omitempty" yaml:"params,omitempty"`
	Shape        string         `json:"shape,omitempty" yaml:"shape,omitempty"`
	Type         string         `json:"type,omitempty" yaml:"type,omitempty"`
	Fields       []fieldReport  `json:"fields,omitempty" yaml:"fields,omitempty"`
	Constructors []string       `json:"constructors,omitempty" yaml:"constructors,omitempty"`
	Key          string         `json:"key,omitempty" yaml:"key,omitempty"`
	Choices      []choiceReport `json:"choices,omitempty" yaml:"choices,omitempty"`
	References   []string       `json:"references,omitempty" yaml:"references,omitempty"`
}

type fieldReport struct {
	Name string `json:"name" yaml:"name"`
	Type string `json:"type" yaml:"type"`
}

type choiceReport struct {
	Name      string `json:"name" yaml:"name"`
	Consuming bool   `json:"consuming" yaml:"consuming"`
	Argument  string `json:"argument" yaml:"argument"`
	Returns   string `json:"returns" yaml:"returns"`
}

// typeFunc renders one type of a definition. Inspect renders types as
// decoded; lookup resolves them through the index first.
type typeFunc func(t *lf.Type) (string, error)

func plainType(t *lf.Type) (string, error) { return t.String(), nil }

func newArchiveReport(a *loader.Archive) (*archiveReport, error) {
	r := &archiveReport{Name: a.Name, MainPackageID: a.MainID, Manifest: newManifestReport(a.Manifest)}
	for _, p := range a.Packages {
		pr, err := newPackageReport(p)
		if err != nil {
			return nil, err
		}
		r.Packages = append(r.Packages, pr)
	}
	return r, nil
}

func newManifestReport(m *dar.Manifest) *manifestReport {
	if m == nil {
		return nil
	}
	return &manifestReport{
		Version:      m.Version,
		CreatedBy:    m.CreatedBy,
		Main:         m.Main,
		Dependencies: m.Dependencies,
		Format:       m.Format,
		Encryption:   m.Encryption,
	}
}

func newPackageReport(p *lf.Package) (packageReport, error) {
	pr := packageReport{ID: p.ID, Name: p.Name, Version: p.Version, LanguageVersion: p.LanguageVersion.String()}
	for _, m := range p.Modules {
		mr := moduleReport{Name: m.Name(), Definitions: []definitionReport{}}
		// Types first, then values; a value may reuse a type's name.
		for _, defs := range []map[string]lf.Definition{lf.Definitions(m), lf.ValueDefinitions(m)} {
			names := make([]string, 0, len(defs))
			for n := range defs {
				names = append(names, n)
			}
			sort.Strings(names)
			for _, n := range names {
				dr, err := newDefinitionReport(n, defs[n], plainType)
				if err != nil {
					return packageReport{}, err
				}
				mr.Definitions = append(mr.Definitions, dr)
			}
		}
		pr.Modules = append(pr.Modules, mr)
	}
	return pr, nil
}

func newDefinitionReport(name string, d lf.Definition, render typeFunc) (definitionReport, error) {
	r := definitionReport{Name: name, Kind: d.Kind.String()}
	var err error
	typ := func(t *lf.Type) string {
		if err != nil {
			return ""
		}
		var s string
		s, err = render(t)
		return s
	}

	if dt := d.DataType; dt != nil {
		r.Params = params(dt.Params)
		r.Shape = dt.Kind.String()
		for _, f := range dt.Fields {
			r.Fields = append(r.Fields, fieldReport{Name: f.Name, Type: typ(f.Type)})
		}
		r.Constructors = dt.Constructors
	}
	switch d.Kind {
	case lf.DefTemplate:
		if k := d.Template.Key; k != nil {
			r.Key = typ(k.Type)
		}
		for _, c := range d.Template.Choices {
			r.Choices = append(r.Choices, choiceReport{
				Name:      c.Name,
				Consuming: c.Consuming,
				Argument:  typ(c.ArgType),
				Returns:   typ(c.ReturnType),
			})
		}
	case lf.DefValue:
		r.Type = typ(d.Value.Type)
	case lf.DefSynonym:
		r.Params = params(d.Synonym.Params)
		r.Type = typ(d.Synonym.Type)
	}
	return r, err
}

func params(ps []lf.TypeParam) []string {
	if len(ps) == 0 {
		return nil
	}
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.Name + ": " + p.Kind.String()
	}
	return out
}

func (r *archiveReport) writeText(w io.Writer) error {
	fmt.Fprintf(w, "archive %s\n", r.Name)
	fmt.Fprintf(w, "main    %s\n", r.MainPackageID)
	if m := r.Manifest; m != nil && m.CreatedBy != "" {
		fmt.Fprintf(w, "created-by %s\n", m.CreatedBy)
	}
	for _, p := range r.Packages {
		fmt.Fprintln(w)
		label := p.ID
		if p.Name != "" {
			label += " " + p.Name + "-" + p.Version
		}
		fmt.Fprintf(w, "package %s (lf %s)\n", label, p.LanguageVersion)
		for _, m := range p.Modules {
			fmt.Fprintf(w, "  module %s\n", m.Name)
			for _, d := range m.Definitions {
				writeDefinition(w, "    ", d)
			}
		}
	}
	return nil
}

func writeDefinition(w io.Writer, indent string, d definitionReport) {
	label := d.Kind
	if d.Kind == lf.DefDataType.String() && d.Shape != "" {
		label = d.Shape
	}
	head := label + " " + d.Name
	if len(d.Params) > 0 {
		head += " (" + strings.Join(d.Params, ", ") + ")"
	}
	if d.Type != "" {
		head += " : " + d.Type
	}
	fmt.Fprintf(w, "%s%s\n", indent, head)
	for _, f := range d.Fields {
		fmt.Fprintf(w, "%s  %s : %s\n", indent, f.Name, f.Type)
	}
	if len(d.Constructors) > 0 {
		fmt.Fprintf(w, "%s  = %s\n", indent, strings.Join(d.Constructors, " | "))
	}
	if d.Key != "" {
		fmt.Fprintf(w, "%s  key : %s\n", indent, d.Key)
	}
	for _, c := range d.Choices {
		consuming := "nonconsuming"
		if c.Consuming {
			consuming = "consuming"
		}
		fmt.Fprintf(w, "%s  choice %s (%s) : %s -> %s\n", indent, c.Name, consuming, c.Argument, c.Returns)
	}
	for _, ref := range d.References {
		fmt.Fprintf(w, "%s  ref %s\n", indent, ref)
	}
}
