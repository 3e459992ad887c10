package main

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"xdao.co/lfpkg/dar"
	"xdao.co/lfpkg/loader"
)

func newInspectCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <file>",
		Short: "Decode a .dar or .dalf and print its packages, modules and definitions",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := readInput(args[0])
			if err != nil {
				return err
			}
			arch, err := loader.LoadArchive(b, a.loaderOptions())
			if err != nil {
				return err
			}
			if arch.Name == "" {
				arch.Name = fileStem(args[0])
			}
			r, err := newArchiveReport(arch)
			if err != nil {
				return err
			}
			return a.emit(r)
		},
	}
}

type entryReport struct {
	Path      string `json:"path,omitempty" yaml:"path,omitempty"`
	Name      string `json:"name" yaml:"name"`
	PackageID string `json:"package_id" yaml:"package_id"`
}

type idsReport struct {
	Main         entryReport   `json:"main" yaml:"main"`
	Dependencies []entryReport `json:"dependencies" yaml:"dependencies"`
}

func (r *idsReport) writeText(w io.Writer) error {
	fmt.Fprintf(w, "main %s %s\n", r.Main.PackageID, r.Main.Name)
	for _, d := range r.Dependencies {
		fmt.Fprintf(w, "dep  %s %s\n", d.PackageID, d.Name)
	}
	return nil
}

func newPackageIDCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "package-id <file>",
		Short: "Print the main and dependency package ids of a .dar or .dalf",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := readInput(args[0])
			if err != nil {
				return err
			}
			c, err := readContainer(args[0], b)
			if err != nil {
				return err
			}
			r := &idsReport{Main: newEntryReport(c.Main), Dependencies: []entryReport{}}
			for _, d := range c.Dependencies {
				r.Dependencies = append(r.Dependencies, newEntryReport(d))
			}
			return a.emit(r)
		},
	}
}

func newEntryReport(e dar.Entry) entryReport {
	return entryReport{Path: e.Path, Name: e.Name, PackageID: e.PackageID}
}

// readContainer reads a container, or a single .dalf as a container with no
// dependencies. Payloads are not decoded.
func readContainer(path string, b []byte) (*dar.Container, error) {
	if dar.IsContainer(b) {
		return dar.Read(b, dar.Options{})
	}
	e, err := dar.ReadDalf(filepath.Base(path), b, dar.Options{})
	if err != nil {
		return nil, err
	}
	return &dar.Container{Main: e}, nil
}

func (a *app) loaderOptions() loader.Options {
	return loader.Options{Logger: a.logger}
}

func fileStem(p string) string {
	base := filepath.Base(p)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
