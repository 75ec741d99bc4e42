package versioning

import (
	"strings"

	"github.com/Masterminds/semver/v3"
)

const (
	QualityCI      = "CI"
	QualityPreview = "Preview"
	QualityLatest  = "Latest"
	QualityStable  = "Stable"
)

// ciIdentifiers are pre-release tags produced by unattended builds.
var ciIdentifiers = []string{"ci", "build", "dev", "nightly"}

// Qualities returns the view labels a version should be promoted into.
// The groups are exclusive: a preview is not also promoted to CI, and a
// release is promoted to neither.
//
//   - 1.0.0-ci.3, 1.0.0-build42 -> CI
//   - 1.0.0-beta.1, 1.0.0-rc.2  -> Preview
//   - 1.0.0                     -> Latest, Stable
func Qualities(v *semver.Version) []string {
	if v == nil {
		return nil
	}
	pre := v.Prerelease()
	if pre == "" {
		return []string{QualityLatest, QualityStable}
	}
	if IsCI(pre) {
		return []string{QualityCI}
	}
	return []string{QualityPreview}
}

// IsCI reports whether a pre-release string was produced by a CI build.
func IsCI(prerelease string) bool {
	first, _, _ := strings.Cut(prerelease, ".")
	first = strings.TrimRight(strings.ToLower(first), "0123456789-")
	for _, id := range ciIdentifiers {
		if first == id {
			return true
		}
	}
	return false
}
