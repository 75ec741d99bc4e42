package artifact

import (
	"errors"

	"github.com/Masterminds/semver/v3"
)

// Extension is the file extension of a package archive.
const Extension = "nupkg"

var (
	ErrDuplicate = errors.New("duplicate artifact")
	// ErrUnsupportedVersion is returned for versions that are not
	// semantic versions, such as 1.2.3.4.
	ErrUnsupportedVersion = errors.New("unsupported version")
)

// Instance is a single versioned package produced by the build.
type Instance struct {
	Name    string
	Version *semver.Version
	// Labels are the views this version is promoted into.
	Labels []string
}

// Candidates is an insertion-ordered set of artifacts
// keyed by name and version.
type Candidates struct {
	keys  []string
	items map[string]Instance
}
