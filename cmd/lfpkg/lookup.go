package main

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"xdao.co/lfpkg/index"
	"xdao.co/lfpkg/lf"
	"xdao.co/lfpkg/lferr"
	"xdao.co/lfpkg/loader"
)

type lookupReport struct {
	PackageID  string           `json:"package_id" yaml:"package_id"`
	Module     string           `json:"module" yaml:"module"`
	Definition definitionReport `json:"definition" yaml:"definition"`
}

func (r *lookupReport) writeText(w io.Writer) error {
	fmt.Fprintf(w, "%s:%s\n", r.PackageID, r.Module)
	writeDefinition(w, "  ", r.Definition)
	return nil
}

func newLookupCmd(a *app) *cobra.Command {
	var module, name, pkgID string
	var value bool
	cmd := &cobra.Command{
		Use:   "lookup <file> --module A.B --name X [--package id] [--value]",
		Short: "Print one definition with its type references resolved",
		Long: `Load every package of a container into an index, look up one definition
and resolve the types it mentions. --package defaults to the main package;
--name may be a dotted local name. Types shadow values of the same name;
--value selects the value.`,
		Args: exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if module == "" || name == "" {
				return &usageError{err: fmt.Errorf("--module and --name are required"), usage: cmd.UsageString()}
			}
			b, err := readInput(args[0])
			if err != nil {
				return err
			}
			arch, err := loader.LoadArchive(b, a.loaderOptions())
			if err != nil {
				return err
			}
			ix := index.New(index.Options{Logger: a.logger})
			for _, p := range arch.Packages {
				if err := ix.Insert(p); err != nil {
					return err
				}
			}
			if pkgID == "" {
				pkgID = arch.MainID
			}
			if _, ok := ix.Package(pkgID); !ok {
				return lferr.New(lferr.KindIndex, lferr.RuleUnresolvedReference, pkgID, "no such package in %s", fileStem(args[0]))
			}

			path := strings.Split(module, ".")
			lookup := ix.Lookup
			if value {
				lookup = ix.LookupValue
			}
			def, ok := lookup(pkgID, path, name)
			if !ok {
				return lferr.UnresolvedReference(pkgID, module+"."+name)
			}
			refs := map[string]bool{}
			resolve := func(t *lf.Type) (string, error) {
				if t == nil {
					return t.String(), nil
				}
				rt, err := ix.ResolveType(t, pkgID)
				if err != nil {
					return "", err
				}
				_ = rt.Cons(func(_ lf.TypeTag, n lf.TypeConName) error {
					refs[n.String()] = true
					return nil
				})
				return rt.String(), nil
			}
			dr, err := newDefinitionReport(name, def, resolve)
			if err != nil {
				return err
			}
			dr.References = sortedKeys(refs)
			return a.emit(&lookupReport{PackageID: pkgID, Module: module, Definition: dr})
		},
	}
	f := cmd.Flags()
	f.StringVar(&module, "module", "", "module name (dotted)")
	f.StringVar(&name, "name", "", "definition name")
	f.StringVar(&pkgID, "package", "", "package id (default: the main package)")
	f.BoolVar(&value, "value", false, "look up a value even when a type shares its name")
	return cmd
}

func sortedKeys(m map[string]bool) []string {
	if len(m) == 0 {
		return nil
	}
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
