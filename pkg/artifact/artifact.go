package artifact

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/djcass44/all-your-feeds/pkg/versioning"
)

// New parses version and derives the quality labels for the artifact.
func New(name, version string) (Instance, error) {
	if name == "" {
		return Instance{}, errors.New("artifact name must not be empty")
	}
	if isLegacyVersion(version) {
		return Instance{}, fmt.Errorf("%w: %s %s has four version components", ErrUnsupportedVersion, name, version)
	}
	v, err := semver.NewVersion(version)
	if err != nil {
		return Instance{}, fmt.Errorf("parsing version of %s: %w", name, err)
	}
	return Instance{
		Name:    name,
		Version: v,
		Labels:  versioning.Qualities(v),
	}, nil
}

// VersionString is the version as written by the build, which is
// also how it appears in the artifact file name.
func (i Instance) VersionString() string {
	return i.Version.Original()
}

// Key uniquely identifies the artifact.
func (i Instance) Key() string {
	return i.Name + "@" + i.VersionString()
}

// FileName is the name of the package archive on disk.
func (i Instance) FileName() string {
	return fmt.Sprintf("%s.%s.%s", i.Name, i.VersionString(), Extension)
}

// Path locates the package archive within dir.
func (i Instance) Path(dir string) string {
	return filepath.Join(dir, i.FileName())
}

func (i Instance) String() string {
	return i.Key()
}

func NewCandidates(items ...Instance) (*Candidates, error) {
	c := &Candidates{items: map[string]Instance{}}
	for _, i := range items {
		if err := c.Add(i); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Add appends an artifact, rejecting duplicate identities.
func (c *Candidates) Add(i Instance) error {
	if c.items == nil {
		c.items = map[string]Instance{}
	}
	key := i.Key()
	if _, ok := c.items[key]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicate, key)
	}
	c.keys = append(c.keys, key)
	c.items[key] = i
	return nil
}

func (c *Candidates) Get(key string) (Instance, bool) {
	if c == nil {
		return Instance{}, false
	}
	i, ok := c.items[key]
	return i, ok
}

func (c *Candidates) Len() int {
	if c == nil {
		return 0
	}
	return len(c.keys)
}

// Keys returns artifact keys in insertion order.
func (c *Candidates) Keys() []string {
	if c == nil {
		return nil
	}
	out := make([]string, len(c.keys))
	copy(out, c.keys)
	return out
}

// Items returns artifacts in insertion order.
func (c *Candidates) Items() []Instance {
	if c == nil {
		return nil
	}
	out := make([]Instance, len(c.keys))
	for i, k := range c.keys {
		out[i] = c.items[k]
	}
	return out
}

// isLegacyVersion reports whether version uses the four part
// major.minor.patch.revision form.
func isLegacyVersion(version string) bool {
	core, _, _ := strings.Cut(version, "-")
	core, _, _ = strings.Cut(core, "+")
	parts := strings.Split(strings.TrimPrefix(core, "v"), ".")
	if len(parts) != 4 {
		return false
	}
	for _, p := range parts {
		if p == "" || strings.Trim(p, "0123456789") != "" {
			return false
		}
	}
	return true
}
