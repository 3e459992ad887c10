// Package cidutil derives package ids from payload bytes and converts them to
// and from CIDv1 (raw codec, sha2-256 multihash).
//
// A package id is the lowercase hex sha2-256 digest of the payload bytes. The
// CID form carries the same digest and is used to address payloads in content
// addressed stores.
package cidutil

import (
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"
)

// PackageIDLength is the length of a hex-encoded package id.
const PackageIDLength = 64

var ErrInvalidPackageID = errors.New("cidutil: invalid package id")

// PackageID returns the package id of payload.
func PackageID(payload []byte) string {
	sum, err := multihash.Sum(payload, multihash.SHA2_256, -1)
	if err != nil {
		// multihash.Sum only errors for invalid inputs; with SHA2_256 and -1 length,
		// this should be unreachable.
		return ""
	}
	dec, err := multihash.Decode(sum)
	if err != nil {
		return ""
	}
	return hex.EncodeToString(dec.Digest)
}

// ValidPackageID reports whether id is a well-formed package id.
func ValidPackageID(id string) bool {
	if len(id) != PackageIDLength {
		return false
	}
	for i := 0; i < len(id); i++ {
		c := id[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}

// PayloadCID returns the CIDv1 (raw + sha2-256) of payload.
func PayloadCID(payload []byte) (cid.Cid, error) {
	sum, err := multihash.Sum(payload, multihash.SHA2_256, -1)
	if err != nil {
		return cid.Undef, err
	}
	return cid.NewCidV1(cid.Raw, sum), nil
}

// PackageCID converts a package id into the CID of the same payload.
func PackageCID(id string) (cid.Cid, error) {
	if !ValidPackageID(id) {
		return cid.Undef, ErrInvalidPackageID
	}
	digest, err := hex.DecodeString(id)
	if err != nil {
		return cid.Undef, ErrInvalidPackageID
	}
	mh, err := multihash.Encode(digest, multihash.SHA2_256)
	if err != nil {
		return cid.Undef, err
	}
	return cid.NewCidV1(cid.Raw, mh), nil
}

// CIDPackageID converts a raw sha2-256 CID back into a package id.
func CIDPackageID(c cid.Cid) (string, error) {
	if !c.Defined() {
		return "", ErrInvalidPackageID
	}
	if c.Prefix().Codec != cid.Raw {
		return "", fmt.Errorf("cidutil: unexpected codec 0x%x", c.Prefix().Codec)
	}
	dec, err := multihash.Decode(c.Hash())
	if err != nil {
		return "", err
	}
	if dec.Code != multihash.SHA2_256 {
		return "", fmt.Errorf("cidutil: unexpected multihash %s", dec.Name)
	}
	return hex.EncodeToString(dec.Digest), nil
}
