package nuget

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/djcass44/all-your-feeds/pkg/artifact"
)

const (
	ResourcePackageBaseAddress = "PackageBaseAddress/3.0.0"
	ResourcePackagePublish     = "PackagePublish/2.0.0"

	HeaderAPIKey          = "X-NuGet-ApiKey"
	HeaderProtocolVersion = "X-NuGet-Protocol-Version"
	HeaderSessionID       = "X-NuGet-Session-Id"

	protocolVersion = "4.1.0"

	// PushTimeout bounds a single package upload.
	PushTimeout = 20 * time.Second

	// DefaultConcurrency is the number of existence checks that
	// may be in flight for one feed.
	DefaultConcurrency = 4
)

var ErrMissingResource = errors.New("service index does not advertise resource")

// Target is a feed that packages can be checked for and pushed to.
type Target interface {
	ExistenceChecker
	// Push uploads the package file at path.
	Push(ctx context.Context, i artifact.Instance, path, apiKey string) error
	// Location is the url or directory of the feed.
	Location() string
}

// ExistenceChecker reports whether an exact package
// identity is already on a feed.
type ExistenceChecker interface {
	Exists(ctx context.Context, i artifact.Instance) (bool, error)
}

// RemoteFeed talks to a v3 protocol feed.
type RemoteFeed struct {
	client      *http.Client
	indexURL    string
	sessionID   string
	pushTimeout time.Duration

	mu    sync.Mutex
	index *ServiceIndex

	credMu   sync.RWMutex
	username string
	password string
}

type RemoteOption func(f *RemoteFeed)

// LocalFeed is a directory laid out as a hierarchical v3 folder feed.
type LocalFeed struct {
	root string
}

type ServiceIndex struct {
	Version   string     `json:"version"`
	Resources []Resource `json:"resources"`
}

type Resource struct {
	ID      string `json:"@id"`
	Type    string `json:"@type"`
	Comment string `json:"comment,omitempty"`
}

type versionList struct {
	Versions []string `json:"versions"`
}
