package ocs

import (
	"fmt"
	"strconv"
	"strings"
)

// Version is a server version as reported by status.php, e.g. "25.0.1.1"
type Version struct {
	Major int
	Minor int
	Micro int
	Patch int
}

// MinimumSelfAPIVersion is the first server release providing /cloud/user
var MinimumSelfAPIVersion = Version{Major: 11, Minor: 0, Micro: 2}

// ParseVersion parses a dotted version string with up to four components.
// Missing components are zero.
func ParseVersion(s string) (Version, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Version{}, fmt.Errorf("empty version")
	}

	parts := strings.Split(s, ".")
	if len(parts) > 4 {
		return Version{}, fmt.Errorf("invalid version %q: too many components", s)
	}

	var nums [4]int
	for i, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 {
			return Version{}, fmt.Errorf("invalid version %q", s)
		}
		nums[i] = n
	}

	return Version{Major: nums[0], Minor: nums[1], Micro: nums[2], Patch: nums[3]}, nil
}

// Compare returns -1, 0 or 1 if v is older than, equal to or newer than other
func (v Version) Compare(other Version) int {
	a := [4]int{v.Major, v.Minor, v.Micro, v.Patch}
	b := [4]int{other.Major, other.Minor, other.Micro, other.Patch}
	for i := range a {
		switch {
		case a[i] < b[i]:
			return -1
		case a[i] > b[i]:
			return 1
		}
	}
	return 0
}

// AtLeast returns true if v is the same as or newer than other
func (v Version) AtLeast(other Version) bool {
	return v.Compare(other) >= 0
}

// IsSelfSupported returns true if the server provides the self user endpoint
func (v Version) IsSelfSupported() bool {
	return v.AtLeast(MinimumSelfAPIVersion)
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d.%d", v.Major, v.Minor, v.Micro, v.Patch)
}
