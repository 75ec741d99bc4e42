package sources

import (
	"encoding/xml"
	"errors"
	"sync"
)

const (
	// V3IndexSuffix marks the service index of a v3 protocol feed.
	V3IndexSuffix = "/v3/index.json"
	// NamePrefix is prepended to the names of sources created by this
	// process so that they can be told apart from configured ones.
	NamePrefix = "Publish: "
)

var ErrInvalidArgument = errors.New("invalid argument")

// PackageSource is a location that packages can be read from
// or pushed to. Sources are immutable once registered.
type PackageSource struct {
	Name     string
	Location string
	IsLocal  bool
}

// Registry holds the known package sources. Entries are never removed
// and a location is only ever registered once.
type Registry struct {
	mu      sync.Mutex
	sources []*PackageSource
	// created is the number of entries added by find-or-create. They
	// sit at the head of the list, ahead of the configured sources.
	created int
}

type nugetConfig struct {
	XMLName        xml.Name   `xml:"configuration"`
	PackageSources sourceList `xml:"packageSources"`
	Disabled       []keyValue `xml:"disabledPackageSources>add"`
}

// sourceList preserves document order so that <clear/> can
// reset the entries that came before it.
type sourceList struct {
	Entries []sourceEntry `xml:",any"`
}

type sourceEntry struct {
	XMLName xml.Name
	Key     string `xml:"key,attr"`
	Value   string `xml:"value,attr"`
}

type keyValue struct {
	Key   string `xml:"key,attr"`
	Value string `xml:"value,attr"`
}
