package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// config is the merged view of flags, LFPKG_* environment variables and the
// config file, in that order of precedence.
type config struct {
	StoreDir     string
	StoreRemote  string
	StoreTimeout time.Duration
	LogLevel     string
	Output       string
}

type app struct {
	out    io.Writer
	errOut io.Writer

	v       *viper.Viper
	cfgFile string
	cfg     config
	logger  *slog.Logger
}

var flagKeys = map[string]string{
	"store.dir":     "store-dir",
	"store.remote":  "store-remote",
	"store.timeout": "store-timeout",
	"log.level":     "log-level",
	"output":        "output",
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	a := &app{out: out, errOut: errOut, v: viper.New()}

	root := &cobra.Command{
		Use:   "lfpkg",
		Short: "Inspect, pack and store Daml-LF package archives",
		Long: `lfpkg decodes .dar containers and .dalf payloads into package models.

Configuration is read from flags, then LFPKG_* environment variables
(LFPKG_STORE_DIR, LFPKG_STORE_REMOTE, LFPKG_OUTPUT, ...), then
$XDG_CONFIG_HOME/lfpkg/config.yaml.`,
		Args:          cobra.ArbitraryArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.load()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				return &usageError{err: fmt.Errorf("unknown command %q", args[0]), usage: cmd.UsageString()}
			}
			return &usageError{err: errors.New("missing command"), usage: cmd.UsageString()}
		},
	}
	root.SetOut(out)
	root.SetErr(errOut)
	root.SetFlagErrorFunc(func(c *cobra.Command, err error) error {
		return &usageError{err: err, usage: c.UsageString()}
	})

	pf := root.PersistentFlags()
	pf.StringVar(&a.cfgFile, "config", "", "config file (default $XDG_CONFIG_HOME/lfpkg/config.yaml)")
	pf.String("store-dir", "", "local payload store directory")
	pf.String("store-remote", "", "remote payload store address (host:port)")
	pf.Duration("store-timeout", 10*time.Second, "per-request timeout for the remote store")
	pf.String("log-level", "warn", "log level (debug, info, warn, error)")
	pf.String("output", "text", "output format (text, json, yaml, cbor)")
	for key, name := range flagKeys {
		_ = a.v.BindPFlag(key, pf.Lookup(name))
	}

	root.AddCommand(
		newInspectCmd(a),
		newPackageIDCmd(a),
		newLookupCmd(a),
		newPackCmd(a),
		newStoreCmd(a),
	)
	return root
}

func (a *app) load() error {
	v := a.v
	v.SetEnvPrefix("LFPKG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if a.cfgFile != "" {
		v.SetConfigFile(a.cfgFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, "lfpkg"))
		}
	}
	if err := v.ReadInConfig(); err != nil {
		var nf viper.ConfigFileNotFoundError
		if a.cfgFile != "" || !errors.As(err, &nf) {
			return fmt.Errorf("read config: %w", err)
		}
	}

	a.cfg = config{
		StoreDir:     v.GetString("store.dir"),
		StoreRemote:  v.GetString("store.remote"),
		StoreTimeout: v.GetDuration("store.timeout"),
		LogLevel:     v.GetString("log.level"),
		Output:       strings.ToLower(v.GetString("output")),
	}

	if _, ok := formats[a.cfg.Output]; !ok {
		return usagef("unknown output format %q (want text, json, yaml or cbor)", a.cfg.Output)
	}
	lvl, err := log.ParseLevel(a.cfg.LogLevel)
	if err != nil {
		return usagef("invalid log level %q", a.cfg.LogLevel)
	}
	a.logger = slog.New(log.NewWithOptions(a.errOut, log.Options{Prefix: "lfpkg", Level: lvl}))
	return nil
}

// exactArgs is cobra.ExactArgs reporting a usage error.
func exactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) != n {
			return &usageError{
				err:   fmt.Errorf("%s: expected %d argument(s), got %d", cmd.CommandPath(), n, len(args)),
				usage: cmd.UsageString(),
			}
		}
		return nil
	}
}

func readInput(path string) ([]byte, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	return b, nil
}
