package dar

import (
	"bufio"
	"bytes"
	"strings"

	"xdao.co/lfpkg/lferr"
)

// ManifestPath is the manifest entry inside a container.
const ManifestPath = "META-INF/MANIFEST.MF"

const (
	keyManifestVersion = "Manifest-Version"
	keyCreatedBy       = "Created-By"
	keyMainDalf        = "Main-Dalf"
	keyDalfs           = "Dalfs"
	keyFormat          = "Format"
	keyEncryption      = "Encryption"

	manifestVersion1 = "1.0"
	formatDamlLF     = "daml-lf"
	nonEncrypted     = "non-encrypted"

	// lineLimit is the maximum manifest line length in bytes, continuation
	// space included.
	lineLimit = 72
)

// Manifest is the main section of a container manifest.
type Manifest struct {
	Version   string
	CreatedBy string
	// Main is the main payload path.
	Main string
	// Dependencies are the remaining payload paths in declaration order; Main
	// is never repeated here.
	Dependencies []string
	Format       string
	Encryption   string
}

// ImpliedManifest describes a container that carries no manifest.
func ImpliedManifest(main string, deps []string) *Manifest {
	return &Manifest{CreatedBy: "implied", Main: main, Dependencies: deps}
}

// ParseManifest parses a JAR-style manifest. Continuation lines (starting with
// a single space) are joined to the previous line, parsing stops at the
// first blank line and payload paths are stripped of all whitespace.
//
// Any structural problem fails with CORRUPT; a manifest is never partially
// accepted.
func ParseManifest(b []byte) (*Manifest, error) {
	attrs, err := manifestAttributes(b)
	if err != nil {
		return nil, err
	}

	m := &Manifest{
		Version:    attrs[keyManifestVersion],
		CreatedBy:  attrs[keyCreatedBy],
		Format:     attrs[keyFormat],
		Encryption: attrs[keyEncryption],
	}
	if m.Version != "" && m.Version != manifestVersion1 {
		return nil, lferr.Corrupt(ManifestPath, "unexpected %s %q", keyManifestVersion, m.Version)
	}
	if m.Format != "" && !strings.EqualFold(m.Format, formatDamlLF) {
		return nil, lferr.Corrupt(ManifestPath, "unexpected %s %q", keyFormat, m.Format)
	}
	if m.Encryption != "" && !strings.EqualFold(m.Encryption, nonEncrypted) {
		return nil, lferr.Corrupt(ManifestPath, "unexpected %s %q", keyEncryption, m.Encryption)
	}

	main, ok := attrs[keyMainDalf]
	if !ok {
		return nil, lferr.Corrupt(ManifestPath, "missing %s", keyMainDalf)
	}
	m.Main = stripSpace(main)
	if m.Main == "" {
		return nil, lferr.Corrupt(ManifestPath, "empty %s", keyMainDalf)
	}

	dalfs, ok := attrs[keyDalfs]
	if !ok {
		return nil, lferr.Corrupt(ManifestPath, "missing %s", keyDalfs)
	}
	seen := map[string]bool{m.Main: true}
	for _, d := range strings.Split(dalfs, ",") {
		d = stripSpace(d)
		if d == "" || seen[d] {
			continue
		}
		seen[d] = true
		m.Dependencies = append(m.Dependencies, d)
	}
	return m, nil
}

func manifestAttributes(b []byte) (map[string]string, error) {
	var lines []string
	sc := bufio.NewScanner(bytes.NewReader(b))
	sc.Buffer(make([]byte, 0, 4096), 1<<20)
	for sc.Scan() {
		line := strings.TrimSuffix(sc.Text(), "\r")
		if line == "" {
			if len(lines) == 0 {
				continue
			}
			break
		}
		if strings.HasPrefix(line, " ") {
			if len(lines) == 0 {
				return nil, lferr.Corrupt(ManifestPath, "continuation line without attribute")
			}
			lines[len(lines)-1] += line[1:]
			continue
		}
		lines = append(lines, line)
	}
	if err := sc.Err(); err != nil {
		return nil, lferr.Wrap(lferr.KindContainer, lferr.RuleCorrupt, ManifestPath, err, "read manifest")
	}

	attrs := make(map[string]string, len(lines))
	for _, line := range lines {
		k, v, ok := strings.Cut(line, ":")
		if !ok || k == "" || strings.ContainsAny(k, " \t") {
			return nil, lferr.Corrupt(ManifestPath, "invalid manifest line %q", line)
		}
		if _, dup := attrs[k]; dup {
			return nil, lferr.Corrupt(ManifestPath, "duplicate attribute %s", k)
		}
		attrs[k] = strings.TrimSpace(v)
	}
	return attrs, nil
}

func stripSpace(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\n', '\r', '\v', '\f':
			return -1
		}
		return r
	}, s)
}

// Render returns the manifest text. Main is listed first in Dalfs, and lines
// longer than 72 bytes wrap onto single-space continuation lines.
func (m *Manifest) Render() []byte {
	version := m.Version
	if version == "" {
		version = manifestVersion1
	}
	format := m.Format
	if format == "" {
		format = formatDamlLF
	}
	encryption := m.Encryption
	if encryption == "" {
		encryption = nonEncrypted
	}
	dalfs := append([]string{m.Main}, m.Dependencies...)

	var buf bytes.Buffer
	for _, kv := range [][2]string{
		{keyManifestVersion, version},
		{keyCreatedBy, m.CreatedBy},
		{keyMainDalf, m.Main},
		{keyDalfs, strings.Join(dalfs, ", ")},
		{keyFormat, format},
		{keyEncryption, encryption},
	} {
		writeWrapped(&buf, kv[0]+": "+kv[1])
	}
	return buf.Bytes()
}

func writeWrapped(buf *bytes.Buffer, line string) {
	first := true
	for len(line) > 0 {
		n := lineLimit
		if !first {
			n--
			buf.WriteByte(' ')
		}
		if n > len(line) {
			n = len(line)
		}
		buf.WriteString(line[:n])
		buf.WriteByte('\n')
		line = line[n:]
		first = false
	}
}
