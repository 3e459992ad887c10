// Command lfpkg inspects, packs and stores Daml-LF package archives.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"xdao.co/lfpkg/lferr"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes one command line and returns the process exit code: 0 on
// success, 1 on operational failure and 2 on a usage error.
func run(args []string, out io.Writer, errOut io.Writer) int {
	root := newRootCmd(out, errOut)
	root.SetArgs(args)
	err := root.Execute()
	if err == nil {
		return 0
	}
	var ue *usageError
	if errors.As(err, &ue) {
		fmt.Fprintf(errOut, "lfpkg: %v\n", ue.err)
		if ue.usage != "" {
			fmt.Fprintf(errOut, "\n%s", ue.usage)
		}
		return 2
	}
	printError(errOut, err)
	return 1
}

// printError writes err with its stable kind, rule and detail when it is a
// structured decode error.
func printError(w io.Writer, err error) {
	fmt.Fprintf(w, "lfpkg: %v\n", err)
	var e *lferr.Error
	if !errors.As(err, &e) {
		return
	}
	fmt.Fprintf(w, "  kind:   %s\n", e.Kind)
	fmt.Fprintf(w, "  rule:   %s\n", e.Rule)
	if e.Detail != "" {
		fmt.Fprintf(w, "  detail: %s\n", e.Detail)
	}
}

type usageError struct {
	err   error
	usage string
}

func (e *usageError) Error() string { return e.err.Error() }

func (e *usageError) Unwrap() error { return e.err }

func usagef(format string, args ...any) error {
	return &usageError{err: fmt.Errorf(format, args...)}
}
