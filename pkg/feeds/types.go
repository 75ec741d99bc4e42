package feeds

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/djcass44/all-your-feeds/pkg/artifact"
	"github.com/djcass44/all-your-feeds/pkg/credentials"
	"github.com/djcass44/all-your-feeds/pkg/nuget"
	"github.com/djcass44/all-your-feeds/pkg/sources"
)

const (
	// DefaultOrganizationURL hosts Azure DevOps package feeds.
	DefaultOrganizationURL = "https://pkgs.dev.azure.com"

	promotionAPIVersion = "5.0-preview.1"
	protocolTypeNuGet   = "NuGet"
	// operationPromote is the batch operation that adds a package to a view.
	operationPromote = 0
)

var (
	ErrInvalidArgument = sources.ErrInvalidArgument
	ErrInvalidState    = errors.New("invalid feed state")
)

// Variant is the closed set of feed kinds.
type Variant int

const (
	VariantLocal Variant = iota
	VariantRemote
	VariantOrganization
	VariantOrganizationViews
)

// State tracks a feed through a single publish.
type State int

const (
	StateUninitialized State = iota
	StatePendingComputed
	StatePushed
	StatePromoted
	StateDone
)

// Session is shared by every feed published during a run.
type Session struct {
	id              string
	registry        *sources.Registry
	client          *http.Client
	env             credentials.Environment
	organizationURL string
	concurrency     int
	pushTimeout     time.Duration

	provider credentials.ProviderSetup

	mu        sync.Mutex
	endpoints []credentials.Endpoint
}

type Option func(s *Session)

// Feed is a single publish destination.
type Feed struct {
	session *Session
	variant Variant
	caps    capabilities
	target  nuget.Target
	// remote is set for feeds reached over http.
	remote *nuget.RemoteFeed
	source *sources.PackageSource

	name          string
	secretKeyName string
	organization  string
	feedID        string

	mu        sync.Mutex
	state     State
	pending   *artifact.Candidates
	published int
	pushed    []artifact.Instance
	skipped   bool
}

// capabilities holds the behaviour that differs between variants.
type capabilities struct {
	// prepare runs before the feed is first queried. ok is false when
	// the feed has no credentials and will be skipped.
	prepare func(ctx context.Context, f *Feed) (ok bool, err error)
	// apiKey resolves the key sent with pushes. ok is false when the
	// feed must be skipped.
	apiKey func(ctx context.Context, f *Feed) (key string, ok bool, err error)
	// postPush runs once every pending package has been pushed.
	postPush func(ctx context.Context, f *Feed, pushed []artifact.Instance) error
}

// FeedError attaches the feed and its url to a failure.
type FeedError struct {
	Feed string
	URL  string
	Op   string
	Err  error
}

type promotionRequest struct {
	Data      promotionData      `json:"data"`
	Operation int                `json:"operation"`
	Packages  []promotionPackage `json:"packages"`
}

type promotionData struct {
	ViewID string `json:"viewId"`
}

type promotionPackage struct {
	ID           string `json:"id"`
	Version      string `json:"version"`
	ProtocolType string `json:"protocolType"`
}
