package feeds

import (
	"context"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/djcass44/all-your-feeds/pkg/credentials"
	"github.com/djcass44/all-your-feeds/pkg/nuget"
	"github.com/djcass44/all-your-feeds/pkg/sources"
	"github.com/go-logr/logr"
	"github.com/google/uuid"
)

// WithHTTPClient replaces the client used for every feed request.
// It must not add default headers.
func WithHTTPClient(c *http.Client) Option {
	return func(s *Session) {
		s.client = c
	}
}

// WithEnvironment sets where secrets are read from.
func WithEnvironment(env credentials.Environment) Option {
	return func(s *Session) {
		s.env = env
	}
}

// WithOrganizationURL changes the host of organisation feeds.
func WithOrganizationURL(u string) Option {
	return func(s *Session) {
		s.organizationURL = strings.TrimSuffix(u, "/")
	}
}

// WithConcurrency limits the number of concurrent existence checks
// and promotions per feed.
func WithConcurrency(n int) Option {
	return func(s *Session) {
		s.concurrency = n
	}
}

// WithPushTimeout bounds each package upload. Defaults to
// nuget.PushTimeout.
func WithPushTimeout(d time.Duration) Option {
	return func(s *Session) {
		s.pushTimeout = d
	}
}

// NewSession prepares the state shared by the feeds of one run.
func NewSession(ctx context.Context, registry *sources.Registry, opts ...Option) *Session {
	log := logr.FromContextOrDiscard(ctx)

	s := &Session{
		id:              uuid.NewString(),
		registry:        registry,
		env:             &credentials.OSEnvironment{},
		organizationURL: DefaultOrganizationURL,
		concurrency:     nuget.DefaultConcurrency,
		pushTimeout:     nuget.PushTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.client == nil {
		s.client = newHTTPClient()
	}
	log.V(1).Info("started publishing session", "id", s.id)
	return s
}

func (s *Session) ID() string {
	return s.id
}

func (s *Session) Registry() *sources.Registry {
	return s.registry
}

// registerEndpoint records an organisation feed for the
// credential provider.
func (s *Session) registerEndpoint(e credentials.Endpoint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.endpoints = append(s.endpoints, e)
}

// prepareProvider exports the credentials of the organisation feeds
// created so far. It only has an effect the first time it is called.
func (s *Session) prepareProvider(ctx context.Context) error {
	s.mu.Lock()
	endpoints := slices.Clone(s.endpoints)
	s.mu.Unlock()

	return s.provider.Prepare(ctx, s.env, endpoints)
}

func (s *Session) newRemoteTarget(indexURL string) *nuget.RemoteFeed {
	return nuget.NewRemoteFeed(s.client, indexURL, s.id, nuget.WithPushTimeout(s.pushTimeout))
}

func newHTTPClient() *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.ForceAttemptHTTP2 = true
	return &http.Client{
		Transport: transport,
	}
}
