package lfversion

import (
	"testing"

	"google.golang.org/protobuf/encoding/protowire"

	"xdao.co/lfpkg/lferr"
	"xdao.co/lfpkg/lfwire"
)

func TestParse_SupportedRoundTrip(t *testing.T) {
	for _, v := range Supported() {
		got, err := Parse(v.String())
		if err != nil {
			t.Fatalf("Parse(%s): %v", v, err)
		}
		if got != v {
			t.Fatalf("Parse(%s) = %s", v, got)
		}
		if got.Family() == 0 {
			t.Fatalf("%s has no family", v)
		}
	}
}

func TestParse_Families(t *testing.T) {
	cases := map[string]Family{
		"1.0":   FamilyLiteral,
		"1.5":   FamilyLiteral,
		"1.6":   FamilyInternedIDs,
		"1.7":   FamilyInterned,
		"1.11":  FamilyInterned,
		"1.15":  FamilyInterned,
		"1.dev": FamilyInterned,
	}
	for id, want := range cases {
		v, err := Parse(id)
		if err != nil {
			t.Fatalf("Parse(%s): %v", id, err)
		}
		if v.Family() != want {
			t.Fatalf("%s: family %s want %s", id, v.Family(), want)
		}
	}
}

func TestParse_RejectsUnknown(t *testing.T) {
	for _, id := range []string{"", "1", "1.", "0.1", "0", "1.9", "1.10", "1.01", "+1.2", "1.+2", "1.dev2", "2.0", " 1.2", "1.16"} {
		_, err := Parse(id)
		if !lferr.Is(err, lferr.KindVersion, lferr.RuleUnsupportedVersion) {
			t.Fatalf("Parse(%q): expected UNSUPPORTED_VERSION, got %v", id, err)
		}
		if lferr.DetailOf(err) != id {
			t.Fatalf("Parse(%q): detail %q", id, lferr.DetailOf(err))
		}
	}
}

func TestVersion_Ordering(t *testing.T) {
	all := Supported()
	for i := 1; i < len(all); i++ {
		if all[i-1].Compare(all[i]) >= 0 {
			t.Fatalf("%s should sort before %s", all[i-1], all[i])
		}
	}
	if !V1Dev.AtLeast(V1_15) || V1_8.AtLeast(V1_11) {
		t.Fatalf("unexpected ordering")
	}
}

func TestVersion_FeatureGates(t *testing.T) {
	if !V1_6.Supports(Decimal) || V1_7.Supports(Decimal) {
		t.Fatalf("DECIMAL must be valid only below 1.7")
	}
	if V1_6.Supports(Numeric) || !V1_7.Supports(Numeric) {
		t.Fatalf("NUMERIC starts at 1.7")
	}
	if V1_0.Supports(Optional) || !V1_1.Supports(Optional) {
		t.Fatalf("OPTIONAL starts at 1.1")
	}
	for _, f := range []Feature{Optional, ArrowType, TextMap, ContractKeys, ComplexContractKeys, Enum,
		InternedPackageID, InternedStrings, InternedDottedNames, Numeric, AnyType, TypeRep,
		PackageMetadata, TypeSynonyms, GenMap, ChoiceObservers, InternedTypes, BigNumeric, Exceptions} {
		if !V1Dev.Supports(f) {
			t.Fatalf("1.dev should support %s", f.Name)
		}
	}
}

func payload(minor string, field protowire.Number, body []byte) []byte {
	var b []byte
	b = protowire.AppendTag(b, lfwire.PayloadMinor, protowire.BytesType)
	b = protowire.AppendString(b, minor)
	b = protowire.AppendTag(b, field, protowire.BytesType)
	b = protowire.AppendBytes(b, body)
	return b
}

func TestDetect(t *testing.T) {
	body := []byte{0x0a, 0x00}
	p, err := Detect(payload("14", lfwire.PayloadLF1, body))
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if p.Version != V1_14 || p.Identifier() != "1.14" {
		t.Fatalf("version: got %s", p.Version)
	}
	if string(p.Body) != string(body) {
		t.Fatalf("body mismatch")
	}
}

func TestDetect_Errors(t *testing.T) {
	_, err := Detect(payload("9", lfwire.PayloadLF1, nil))
	if !lferr.Is(err, lferr.KindVersion, lferr.RuleUnsupportedVersion) || lferr.DetailOf(err) != "1.9" {
		t.Fatalf("expected unsupported 1.9, got %v", err)
	}

	_, err = Detect(payload("1", lfwire.PayloadLF0, nil))
	if !lferr.Is(err, lferr.KindVersion, lferr.RuleUnsupportedVersion) || lferr.DetailOf(err) != "0.1" {
		t.Fatalf("expected unsupported 0.1, got %v", err)
	}

	var noBody []byte
	noBody = protowire.AppendTag(noBody, lfwire.PayloadMinor, protowire.BytesType)
	noBody = protowire.AppendString(noBody, "7")
	if _, err := Detect(noBody); !lferr.Is(err, lferr.KindDecode, lferr.RuleMalformed) {
		t.Fatalf("expected MALFORMED for missing body, got %v", err)
	}

	full := payload("7", lfwire.PayloadLF1, []byte{1, 2, 3})
	if _, err := Detect(full[:len(full)-1]); !lferr.Is(err, lferr.KindDecode, lferr.RuleMalformed) {
		t.Fatalf("expected MALFORMED for truncation, got %v", err)
	}

	bad := payload("\xff", lfwire.PayloadLF1, nil)
	if _, err := Detect(bad); !lferr.Is(err, lferr.KindDecode, lferr.RuleMalformed) {
		t.Fatalf("expected MALFORMED for invalid UTF-8, got %v", err)
	}
}
