package nuget

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/carlmjohnson/requests"
	"github.com/djcass44/all-your-feeds/pkg/requestutil"
	"github.com/go-logr/logr"
)

// NewRemoteFeed creates a client for the feed whose service index is at
// indexURL. The client must not carry default headers as every request
// sets its own.
func NewRemoteFeed(client *http.Client, indexURL, sessionID string, opts ...RemoteOption) *RemoteFeed {
	if client == nil {
		client = http.DefaultClient
	}
	f := &RemoteFeed{
		client:      client,
		indexURL:    indexURL,
		sessionID:   sessionID,
		pushTimeout: PushTimeout,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// WithPushTimeout changes how long a single upload may take.
func WithPushTimeout(d time.Duration) RemoteOption {
	return func(f *RemoteFeed) {
		if d > 0 {
			f.pushTimeout = d
		}
	}
}

// SetBasicAuth authenticates every subsequent request to the feed.
func (f *RemoteFeed) SetBasicAuth(username, password string) {
	f.credMu.Lock()
	defer f.credMu.Unlock()
	f.username = username
	f.password = password
}

// request starts a request to the feed carrying the session id and,
// when set, the feed credentials.
func (f *RemoteFeed) request(target string) *requests.Builder {
	rb := requests.URL(target).
		Client(f.client).
		Header(HeaderSessionID, f.sessionID)

	f.credMu.RLock()
	defer f.credMu.RUnlock()
	if f.password != "" {
		rb.BasicAuth(f.username, f.password)
	}
	return rb
}

func (f *RemoteFeed) Location() string {
	return f.indexURL
}

// ServiceIndex fetches the service index of the feed. It is only
// downloaded once.
func (f *RemoteFeed) ServiceIndex(ctx context.Context) (*ServiceIndex, error) {
	log := logr.FromContextOrDiscard(ctx).WithValues("url", f.indexURL)

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.index != nil {
		return f.index, nil
	}

	log.V(1).Info("downloading service index")
	var index ServiceIndex
	err := f.request(f.indexURL).
		Accept("application/json").
		AddValidator(requestutil.CheckStatus()).
		Handle(requestutil.ToJSON(&index)).
		Fetch(ctx)
	if err != nil {
		log.Error(err, "failed to download service index")
		return nil, fmt.Errorf("fetching service index: %w", err)
	}
	log.V(2).Info("successfully downloaded service index", "version", index.Version, "resources", len(index.Resources))
	f.index = &index
	return f.index, nil
}

// Resource returns the url of the first resource of the given type.
func (idx *ServiceIndex) Resource(resourceType string) (string, error) {
	for _, r := range idx.Resources {
		if r.Type == resourceType {
			return r.ID, nil
		}
	}
	// fall back to any version of the resource
	name, _, _ := strings.Cut(resourceType, "/")
	for _, r := range idx.Resources {
		if r.Type == name || strings.HasPrefix(r.Type, name+"/") {
			return r.ID, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrMissingResource, resourceType)
}

func (f *RemoteFeed) resource(ctx context.Context, resourceType string) (string, error) {
	idx, err := f.ServiceIndex(ctx)
	if err != nil {
		return "", err
	}
	return idx.Resource(resourceType)
}
