package cidutil

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestPackageID_KnownDigest(t *testing.T) {
	const want = "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"
	if got := PackageID(nil); got != want {
		t.Fatalf("PackageID(empty): got %s want %s", got, want)
	}
	if !ValidPackageID(want) {
		t.Fatalf("expected valid package id")
	}
}

func TestValidPackageID(t *testing.T) {
	cases := map[string]bool{
		"":         false,
		"abc":      false,
		PackageID([]byte("x")): true,
		"E3B0C44298FC1C149AFBF4C8996FB92427AE41E4649B934CA495991B7852B855": false,
		"g3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855": false,
	}
	for in, want := range cases {
		if got := ValidPackageID(in); got != want {
			t.Fatalf("ValidPackageID(%q): got %v want %v", in, got, want)
		}
	}
}

func TestPackageCID_RoundTrip(t *testing.T) {
	payload := []byte("package payload")
	id := PackageID(payload)

	c, err := PackageCID(id)
	if err != nil {
		t.Fatalf("PackageCID: %v", err)
	}
	direct, err := PayloadCID(payload)
	if err != nil {
		t.Fatalf("PayloadCID: %v", err)
	}
	if c != direct {
		t.Fatalf("CID mismatch: %s vs %s", c, direct)
	}
	back, err := CIDPackageID(c)
	if err != nil {
		t.Fatalf("CIDPackageID: %v", err)
	}
	if back != id {
		t.Fatalf("round trip: got %s want %s", back, id)
	}

	if _, err := PackageCID("not-an-id"); err != ErrInvalidPackageID {
		t.Fatalf("expected ErrInvalidPackageID, got %v", err)
	}
}

func TestPackageID_ContentAddressing(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("identical bytes yield identical ids", prop.ForAll(
		func(b []byte) bool {
			return PackageID(b) == PackageID(append([]byte(nil), b...))
		},
		gen.SliceOf(gen.UInt8()),
	))

	properties.Property("a single flipped bit yields a different id", prop.ForAll(
		func(b []byte, pos int) bool {
			if len(b) == 0 {
				return true
			}
			flipped := append([]byte(nil), b...)
			i := pos % len(flipped)
			flipped[i] ^= 0x01
			return PackageID(b) != PackageID(flipped)
		},
		gen.SliceOfN(32, gen.UInt8()),
		gen.IntRange(0, 1<<20),
	))

	properties.TestingRun(t)
}
