package main

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"xdao.co/lfpkg/cidutil"
	"xdao.co/lfpkg/dar"
	"xdao.co/lfpkg/loader"
	"xdao.co/lfpkg/storage"
	"xdao.co/lfpkg/storage/grpcstore"
	"xdao.co/lfpkg/storage/localfs"
)

type storedReport struct {
	PackageID string            `json:"package_id" yaml:"package_id"`
	Name      string            `json:"name" yaml:"name"`
	Backends  map[string]string `json:"backends,omitempty" yaml:"backends,omitempty"`
}

type putReport struct {
	Stored []storedReport `json:"stored" yaml:"stored"`
}

func (r *putReport) writeText(w io.Writer) error {
	for _, s := range r.Stored {
		fmt.Fprintf(w, "%s %s\n", s.PackageID, s.Name)
	}
	return nil
}

type getReport struct {
	PackageID string `json:"package_id" yaml:"package_id"`
	Output    string `json:"output" yaml:"output"`
	Bytes     int    `json:"bytes" yaml:"bytes"`
}

func (r *getReport) writeText(w io.Writer) error {
	_, err := fmt.Fprintf(w, "wrote %s (%d bytes) %s\n", r.Output, r.Bytes, r.PackageID)
	return err
}

func newStoreCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "store",
		Short: "Put and get package payloads in a local or remote store",
		Long: `Payloads are stored by package id. With both --store-dir and --store-remote
set, put writes to both and get reads the directory first, filling it from
the remote on a miss.`,
		Args: exactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return &usageError{err: fmt.Errorf("missing store subcommand"), usage: cmd.UsageString()}
		},
	}
	cmd.AddCommand(newStorePutCmd(a), newStoreGetCmd(a))
	return cmd
}

func newStorePutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "put <file>",
		Short: "Store every payload of a .dar or .dalf",
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
			for _, e := range c.Entries() {
				if _, err := loader.Decode(e.PackageID, e.Payload); err != nil {
					return fmt.Errorf("%s: %w", e.Path, err)
				}
			}

			backends, closeFn, err := a.openBackends()
			if err != nil {
				return err
			}
			defer closeFn()
			repl := storage.Replicated{Backends: backends}

			r := &putReport{}
			for _, e := range c.Entries() {
				id, per, err := repl.PutAll(e.Payload)
				if err != nil {
					return fmt.Errorf("store %s: %w", e.Path, err)
				}
				a.logger.Debug("stored payload", "package_id", id, "entry", e.Path, "backends", len(per))
				s := storedReport{PackageID: id, Name: e.Name}
				if len(per) > 1 {
					s.Backends = per
				}
				r.Stored = append(r.Stored, s)
			}
			return a.emit(r)
		},
	}
}

func newStoreGetCmd(a *app) *cobra.Command {
	var out string
	var raw bool
	cmd := &cobra.Command{
		Use:   "get <package-id> -o out.dalf",
		Short: "Fetch a payload by package id and write it as a .dalf",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			if !cidutil.ValidPackageID(id) {
				return usagef("invalid package id %q", id)
			}
			if out == "" {
				return &usageError{err: fmt.Errorf("-o is required"), usage: cmd.UsageString()}
			}
			backends, closeFn, err := a.openBackends()
			if err != nil {
				return err
			}
			defer closeFn()
			stores := make([]storage.Store, len(backends))
			for i, b := range backends {
				stores[i] = b.Store
			}
			payload, err := storage.Tiered{Stores: stores, Logger: a.logger}.Get(id)
			if err != nil {
				return fmt.Errorf("get %s: %w", id, err)
			}
			data := payload
			if !raw {
				data = dar.EncodeDalf(payload)
			}
			if err := writeOutput(a.out, out, data); err != nil {
				return err
			}
			if out == "-" {
				return nil
			}
			return a.emit(&getReport{PackageID: id, Output: out, Bytes: len(data)})
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output path (- for stdout)")
	cmd.Flags().BoolVar(&raw, "raw", false, "write the bare payload without the .dalf envelope")
	return cmd
}

// openBackends opens the configured stores, the directory first.
func (a *app) openBackends() ([]storage.NamedStore, func(), error) {
	var backends []storage.NamedStore
	closeFn := func() {}
	if a.cfg.StoreDir != "" {
		fs, err := localfs.New(filepath.Clean(a.cfg.StoreDir))
		if err != nil {
			return nil, nil, err
		}
		backends = append(backends, storage.NamedStore{Name: "dir", Store: fs})
	}
	if a.cfg.StoreRemote != "" {
		c, err := grpcstore.Dial(a.cfg.StoreRemote, grpcstore.DialOptions{Timeout: a.cfg.StoreTimeout})
		if err != nil {
			return nil, nil, fmt.Errorf("dial %s: %w", a.cfg.StoreRemote, err)
		}
		closeFn = func() { _ = c.Close() }
		backends = append(backends, storage.NamedStore{Name: "remote", Store: c})
	}
	if len(backends) == 0 {
		return nil, nil, usagef("no store configured (set --store-dir, --store-remote or store.dir in the config file)")
	}
	return backends, closeFn, nil
}
