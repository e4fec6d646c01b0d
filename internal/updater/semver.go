package updater

import (
	"fmt"
	"strconv"
	"strings"
)

// Semver is a parsed semantic version. Pre-release tags order before the
// corresponding release ("1.2.0-rc.1" < "1.2.0").
type Semver struct {
	Major      int
	Minor      int
	Patch      int
	PreRelease string
}

// ParseSemver parses "1.2.3", "v1.2.3" or "1.2.3-rc.1".
func ParseSemver(s string) (Semver, error) {
	s = strings.TrimPrefix(s, "v")

	var pre string
	if i := strings.IndexByte(s, '-'); i >= 0 {
		s, pre = s[:i], s[i+1:]
		if pre == "" {
			return Semver{}, fmt.Errorf("invalid semver: empty pre-release in %q", s)
		}
	}

	parts := strings.SplitN(s, ".", 3)
	if len(parts) != 3 {
		return Semver{}, fmt.Errorf("invalid semver: %q", s)
	}

	major, err := strconv.Atoi(parts[0])
	if err != nil {
		return Semver{}, fmt.Errorf("invalid major version: %w", err)
	}
	minor, err := strconv.Atoi(parts[1])
	if err != nil {
		return Semver{}, fmt.Errorf("invalid minor version: %w", err)
	}
	patch, err := strconv.Atoi(parts[2])
	if err != nil {
		return Semver{}, fmt.Errorf("invalid patch version: %w", err)
	}

	return Semver{Major: major, Minor: minor, Patch: patch, PreRelease: pre}, nil
}

// String returns the version without a leading "v".
func (v Semver) String() string {
	s := fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
	if v.PreRelease != "" {
		s += "-" + v.PreRelease
	}
	return s
}

// LessThan returns true if v < other.
func (v Semver) LessThan(other Semver) bool {
	if v.Major != other.Major {
		return v.Major < other.Major
	}
	if v.Minor != other.Minor {
		return v.Minor < other.Minor
	}
	if v.Patch != other.Patch {
		return v.Patch < other.Patch
	}
	if v.PreRelease == other.PreRelease {
		return false
	}
	if v.PreRelease == "" {
		return false // release > any pre-release
	}
	if other.PreRelease == "" {
		return true
	}
	return v.PreRelease < other.PreRelease
}
