package rover

import (
	"fmt"
	"strconv"
	"strings"
)

// legacy firmware version magic values. Both are preserved on decode: 16421
// is the pre-1.3 marker, 40621 the marker used once versioning stabilized.
const (
	legacyVersionPre13 = 16421
	legacyVersionV100  = 40621
)

// FirmwareVersion is an ordered (major, minor, patch) triple, orderable
// lexicographically and parseable from "X", "X.Y", or "X.Y.Z".
type FirmwareVersion struct {
	Major int
	Minor int
	Patch int
}

// ParseFirmwareVersion parses a dotted version string of up to three
// integer components; missing components default to 0.
func ParseFirmwareVersion(s string) (FirmwareVersion, error) {
	parts := strings.Split(strings.TrimSpace(s), ".")
	if len(parts) == 0 || len(parts) > 3 {
		return FirmwareVersion{}, newError(KindProtocol, fmt.Sprintf("invalid firmware version %q", s), nil)
	}
	var nums [3]int
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return FirmwareVersion{}, newError(KindProtocol, fmt.Sprintf("invalid firmware version %q", s), err)
		}
		nums[i] = n
	}
	return FirmwareVersion{Major: nums[0], Minor: nums[1], Patch: nums[2]}, nil
}

// MustParseFirmwareVersion is a convenience for package-level registry
// tables built from string literals; it panics on malformed input, which
// indicates a bug in this package rather than bad input from a caller.
func MustParseFirmwareVersion(s string) FirmwareVersion {
	v, err := ParseFirmwareVersion(s)
	if err != nil {
		panic(err)
	}
	return v
}

// Less reports whether v sorts before other under lexicographic
// (major, minor, patch) ordering.
func (v FirmwareVersion) Less(other FirmwareVersion) bool {
	if v.Major != other.Major {
		return v.Major < other.Major
	}
	if v.Minor != other.Minor {
		return v.Minor < other.Minor
	}
	return v.Patch < other.Patch
}

// LessOrEqual reports whether v sorts before or equal to other.
func (v FirmwareVersion) LessOrEqual(other FirmwareVersion) bool {
	return !other.Less(v)
}

func (v FirmwareVersion) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// rawValue returns the wire encoding of v, ignoring the legacy magic
// exceptions (those only matter on decode, per the source).
func (v FirmwareVersion) rawValue() uint16 {
	return uint16(v.Major*10000 + v.Minor*100 + v.Patch)
}

// decodeFirmwareVersion applies the wire→typed mapping for data element 40,
// including both legacy magic values.
func decodeFirmwareVersion(raw uint16) FirmwareVersion {
	switch raw {
	case legacyVersionPre13:
		return FirmwareVersion{0, 0, 0}
	case legacyVersionV100:
		return FirmwareVersion{1, 0, 0}
	default:
		return FirmwareVersion{
			Major: int(raw / 10000),
			Minor: int((raw / 100) % 100),
			Patch: int(raw % 10),
		}
	}
}
