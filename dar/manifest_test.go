package dar

import (
	"strings"
	"testing"

	"xdao.co/lfpkg/lferr"
)

func TestParseManifest(t *testing.T) {
	src := "Manifest-Version: 1.0\r\n" +
		"Created-By: damlc\r\n" +
		"Main-Dalf: app/app-1.0.0-aaaa\r\n" +
		" .dalf\r\n" +
		"Dalfs: app/app-1.0.0-aaaa.dalf, app/dep.dalf,\r\n" +
		"  app/prim.dalf\r\n" +
		"Format: daml-lf\r\n" +
		"Encryption: non-encrypted\r\n" +
		"\r\n" +
		"Name: ignored/section\r\n"
	m, err := ParseManifest([]byte(src))
	if err != nil {
		t.Fatalf("ParseManifest: %v", err)
	}
	if m.Main != "app/app-1.0.0-aaaa.dalf" {
		t.Fatalf("main: %q", m.Main)
	}
	if strings.Join(m.Dependencies, "|") != "app/dep.dalf|app/prim.dalf" {
		t.Fatalf("dependencies: %q", m.Dependencies)
	}
	if m.CreatedBy != "damlc" || m.Version != "1.0" {
		t.Fatalf("attributes: %+v", m)
	}
}

func TestParseManifest_Rejects(t *testing.T) {
	cases := map[string]string{
		"missing main":    "Dalfs: a.dalf\n",
		"missing dalfs":   "Main-Dalf: a.dalf\n",
		"bad version":     "Manifest-Version: 2.0\nMain-Dalf: a.dalf\nDalfs: a.dalf\n",
		"bad format":      "Main-Dalf: a.dalf\nDalfs: a.dalf\nFormat: zip\n",
		"no colon":        "Main-Dalf a.dalf\n",
		"leading cont":    " a.dalf\n",
		"duplicate key":   "Main-Dalf: a.dalf\nMain-Dalf: b.dalf\nDalfs: a.dalf\n",
		"empty main dalf": "Main-Dalf: \nDalfs: a.dalf\n",
	}
	for name, src := range cases {
		_, err := ParseManifest([]byte(src))
		if !lferr.Is(err, lferr.KindContainer, lferr.RuleCorrupt) {
			t.Fatalf("%s: expected CORRUPT, got %v", name, err)
		}
	}
}

func TestManifest_RenderWrapsAndRoundTrips(t *testing.T) {
	long := "TestingTypes-1.0.0-6c314cb04bcb26cb62aa6ebf0f8ed4bdc3cbf709847be908c9920df5574daacc/TestingTypes.dalf"
	m := &Manifest{CreatedBy: "lfpkg", Main: long, Dependencies: []string{"dep.dalf"}}
	out := m.Render()
	for _, line := range strings.Split(strings.TrimSuffix(string(out), "\n"), "\n") {
		if len(line) > lineLimit {
			t.Fatalf("line exceeds %d bytes: %q", lineLimit, line)
		}
	}
	back, err := ParseManifest(out)
	if err != nil {
		t.Fatalf("ParseManifest(Render): %v", err)
	}
	if back.Main != long || len(back.Dependencies) != 1 || back.Dependencies[0] != "dep.dalf" {
		t.Fatalf("round trip: %+v", back)
	}
	if back.Version != "1.0" || back.Encryption != "non-encrypted" {
		t.Fatalf("defaults not rendered: %+v", back)
	}
}
