package npmrc

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/mod/semver"
)

// ToolVersion is the parsed version of the installed npm.
type ToolVersion struct {
	Major int
	Minor int
	Patch int
	raw   string
}

// ParseToolVersion parses the trimmed output of `npm --version`. The whole
// output must be one full major.minor.patch version, optionally with a
// prerelease; anything else fails.
func ParseToolVersion(output string) (ToolVersion, bool) {
	s := strings.TrimSpace(output)
	v := "v" + strings.TrimPrefix(s, "v")
	if !semver.IsValid(v) || semver.Canonical(v) != v {
		return ToolVersion{}, false
	}

	core := strings.TrimSuffix(strings.TrimPrefix(v, "v"), semver.Prerelease(v))
	parts := strings.Split(core, ".")
	if len(parts) != 3 {
		return ToolVersion{}, false
	}

	nums := make([]int, 3)
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return ToolVersion{}, false
		}
		nums[i] = n
	}

	return ToolVersion{Major: nums[0], Minor: nums[1], Patch: nums[2], raw: s}, true
}

// String returns the version as reported by npm, or major.minor.patch.
func (v ToolVersion) String() string {
	if v.raw != "" {
		return v.raw
	}
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}
