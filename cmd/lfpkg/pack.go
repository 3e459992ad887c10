package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"xdao.co/lfpkg/dar"
	"xdao.co/lfpkg/loader"
)

type packReport struct {
	Output       string        `json:"output" yaml:"output"`
	Main         entryReport   `json:"main" yaml:"main"`
	Dependencies []entryReport `json:"dependencies" yaml:"dependencies"`
}

func (r *packReport) writeText(w io.Writer) error {
	fmt.Fprintf(w, "wrote %s\n", r.Output)
	fmt.Fprintf(w, "main %s %s\n", r.Main.PackageID, r.Main.Name)
	for _, d := range r.Dependencies {
		fmt.Fprintf(w, "dep  %s %s\n", d.PackageID, d.Name)
	}
	return nil
}

func newPackCmd(a *app) *cobra.Command {
	var mainPath, out string
	var deps []string
	var store bool
	cmd := &cobra.Command{
		Use:   "pack --main a.dalf [--dep b.dalf ...] -o out.dar",
		Short: "Write a deterministic container from .dalf files",
		Long: `Every input is fully decoded before anything is written, so a packed
container never holds a payload lfpkg cannot read.`,
		Args: exactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			if mainPath == "" || out == "" {
				return &usageError{err: fmt.Errorf("--main and -o are required"), usage: cmd.UsageString()}
			}
			mainEntry, err := a.readPackable(mainPath)
			if err != nil {
				return err
			}
			entries := make([]dar.Entry, 0, len(deps))
			for _, p := range deps {
				e, err := a.readPackable(p)
				if err != nil {
					return err
				}
				entries = append(entries, e)
			}

			var buf bytes.Buffer
			if err := dar.Write(&buf, mainEntry, entries, dar.WriteOptions{CreatedBy: "lfpkg", Store: store}); err != nil {
				return err
			}
			if err := writeOutput(a.out, out, buf.Bytes()); err != nil {
				return err
			}
			if out == "-" {
				return nil
			}
			r := &packReport{Output: out, Main: newEntryReport(mainEntry), Dependencies: []entryReport{}}
			for _, e := range entries {
				r.Dependencies = append(r.Dependencies, newEntryReport(e))
			}
			return a.emit(r)
		},
	}
	f := cmd.Flags()
	f.StringVar(&mainPath, "main", "", "main package .dalf")
	f.StringArrayVar(&deps, "dep", nil, "dependency .dalf (repeatable)")
	f.StringVarP(&out, "out", "o", "", "output container path (- for stdout)")
	f.BoolVar(&store, "store", false, "store entries uncompressed")
	return cmd
}

// readPackable reads one .dalf and checks that its payload decodes.
func (a *app) readPackable(path string) (dar.Entry, error) {
	b, err := readInput(path)
	if err != nil {
		return dar.Entry{}, err
	}
	e, err := dar.ReadDalf(filepath.Base(path), b, dar.Options{})
	if err != nil {
		return dar.Entry{}, err
	}
	if _, err := loader.Decode(e.PackageID, e.Payload); err != nil {
		return dar.Entry{}, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return e, nil
}

// writeOutput writes b to path, or to stdout when path is "-".
func writeOutput(stdout io.Writer, path string, b []byte) error {
	if path == "-" {
		_, err := stdout.Write(b)
		return err
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return nil
}
