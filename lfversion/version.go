// Package lfversion maps embedded version identifiers to decode families.
//
// The supported set only grows. Unknown identifiers are rejected with
// VersionError::Unsupported; there is no nearest-version fallback.
package lfversion

import (
	"fmt"
	"strconv"
	"strings"

	"xdao.co/lfpkg/lferr"
)

// Family selects the decode strategy for a version.
type Family int

const (
	// FamilyLiteral covers versions where every name is an inline literal.
	FamilyLiteral Family = iota + 1
	// FamilyInternedIDs adds interned package ids.
	FamilyInternedIDs
	// FamilyInterned interns every name; later members also intern types.
	FamilyInterned
)

func (f Family) String() string {
	switch f {
	case FamilyLiteral:
		return "literal"
	case FamilyInternedIDs:
		return "interned-ids"
	case FamilyInterned:
		return "interned"
	default:
		return fmt.Sprintf("family(%d)", int(f))
	}
}

// devMinor orders the development channel after every numbered minor.
const devMinor = 1 << 30

// Version is a supported language version.
type Version struct {
	Major int
	Minor int
}

var (
	V1_0  = Version{1, 0}
	V1_1  = Version{1, 1}
	V1_2  = Version{1, 2}
	V1_3  = Version{1, 3}
	V1_4  = Version{1, 4}
	V1_5  = Version{1, 5}
	V1_6  = Version{1, 6}
	V1_7  = Version{1, 7}
	V1_8  = Version{1, 8}
	V1_11 = Version{1, 11}
	V1_12 = Version{1, 12}
	V1_13 = Version{1, 13}
	V1_14 = Version{1, 14}
	V1_15 = Version{1, 15}
	V1Dev = Version{1, devMinor}
)

type entry struct {
	version Version
	family  Family
}

// supported is append-only.
var supported = []entry{
	{V1_0, FamilyLiteral},
	{V1_1, FamilyLiteral},
	{V1_2, FamilyLiteral},
	{V1_3, FamilyLiteral},
	{V1_4, FamilyLiteral},
	{V1_5, FamilyLiteral},
	{V1_6, FamilyInternedIDs},
	{V1_7, FamilyInterned},
	{V1_8, FamilyInterned},
	{V1_11, FamilyInterned},
	{V1_12, FamilyInterned},
	{V1_13, FamilyInterned},
	{V1_14, FamilyInterned},
	{V1_15, FamilyInterned},
	{V1Dev, FamilyInterned},
}

// Supported returns every supported version in ascending order.
func Supported() []Version {
	out := make([]Version, 0, len(supported))
	for _, e := range supported {
		out = append(out, e.version)
	}
	return out
}

// IsDev reports whether v is the development channel.
func (v Version) IsDev() bool { return v.Minor == devMinor }

func (v Version) String() string {
	if v.IsDev() {
		return fmt.Sprintf("%d.dev", v.Major)
	}
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// Compare returns -1, 0 or +1.
func (v Version) Compare(o Version) int {
	switch {
	case v.Major != o.Major:
		if v.Major < o.Major {
			return -1
		}
		return 1
	case v.Minor < o.Minor:
		return -1
	case v.Minor > o.Minor:
		return 1
	}
	return 0
}

// AtLeast reports whether v >= o.
func (v Version) AtLeast(o Version) bool { return v.Compare(o) >= 0 }

// Family returns the decode family of a supported version.
func (v Version) Family() Family {
	for _, e := range supported {
		if e.version == v {
			return e.family
		}
	}
	return 0
}

// Supports reports whether v carries feature f.
func (v Version) Supports(f Feature) bool {
	if f.Max != nil {
		return v.AtLeast(f.Min) && v.Compare(*f.Max) < 0
	}
	return v.AtLeast(f.Min)
}

// Parse maps an identifier of the form "<major>.<minor>" to a supported
// version.
func Parse(identifier string) (Version, error) {
	major, minor, ok := strings.Cut(identifier, ".")
	if !ok {
		return Version{}, lferr.UnsupportedVersion(identifier)
	}
	return lookup(major, minor, identifier)
}

func lookup(major, minor, identifier string) (Version, error) {
	if major != "1" {
		return Version{}, lferr.UnsupportedVersion(identifier)
	}
	var v Version
	if minor == "dev" {
		v = V1Dev
	} else {
		// Reject signs, leading zeros and whitespace so that each version has
		// exactly one spelling.
		if minor == "" || (len(minor) > 1 && minor[0] == '0') || strings.TrimLeft(minor, "0123456789") != "" {
			return Version{}, lferr.UnsupportedVersion(identifier)
		}
		n, err := strconv.Atoi(minor)
		if err != nil {
			return Version{}, lferr.UnsupportedVersion(identifier)
		}
		v = Version{1, n}
	}
	if v.Family() == 0 {
		return Version{}, lferr.UnsupportedVersion(identifier)
	}
	return v, nil
}
