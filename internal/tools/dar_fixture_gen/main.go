// Command dar_fixture_gen writes deterministic test containers: one .dalf per
// supported language version and a two-package .dar whose main package
// references its dependency.
package main

import (
	"bytes"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"xdao.co/lfpkg/cidutil"
	"xdao.co/lfpkg/dar"
	"xdao.co/lfpkg/internal/lfenc"
	"xdao.co/lfpkg/lfversion"
)

func main() {
	out := flag.String("out", "testdata", "output directory")
	flag.Parse()

	if err := os.MkdirAll(*out, 0o755); err != nil {
		panic(err)
	}
	for _, v := range lfversion.Supported() {
		payload := lfenc.Build(v, lfenc.FooBarBaz())
		name := fmt.Sprintf("foo-lf%s.dalf", v)
		write(filepath.Join(*out, name), dar.EncodeDalf(payload))
		fmt.Printf("%s %s\n", cidutil.PackageID(payload), name)
	}

	dep := lfenc.Build(lfversion.V1_8, lfenc.MinimalRecord())
	depID := cidutil.PackageID(dep)
	mainPkg := lfenc.FooBarBaz()
	mainPkg.Modules[0].DataTypes = append(mainPkg.Modules[0].DataTypes,
		lfenc.Record("UsesDep", lfenc.Field("t", lfenc.Con(lfenc.Ref(depID, []string{"Main"}, "T")))))
	mainPayload := lfenc.Build(lfversion.V1_14, mainPkg)

	var buf bytes.Buffer
	err := dar.Write(&buf,
		dar.Entry{Path: "foo-1.0.0/foo-" + cidutil.PackageID(mainPayload) + ".dalf", Payload: mainPayload},
		[]dar.Entry{{Path: "foo-1.0.0/dep-" + depID + ".dalf", Payload: dep}},
		dar.WriteOptions{CreatedBy: "dar_fixture_gen"},
	)
	if err != nil {
		panic(err)
	}
	write(filepath.Join(*out, "foo.dar"), buf.Bytes())
	fmt.Printf("MAIN=%s\nDEP=%s\n", cidutil.PackageID(mainPayload), depID)
}

func write(path string, b []byte) {
	if err := os.WriteFile(path, b, 0o644); err != nil {
		panic(err)
	}
}
