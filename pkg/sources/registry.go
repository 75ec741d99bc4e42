package sources

import (
	"context"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/go-logr/logr"
)

// NewRegistry creates a registry from externally configured sources.
// Duplicate locations are dropped, keeping the first occurrence.
func NewRegistry(ctx context.Context, configured ...PackageSource) (*Registry, error) {
	log := logr.FromContextOrDiscard(ctx)

	r := &Registry{}
	for _, src := range configured {
		if src.Name == "" {
			return nil, fmt.Errorf("%w: package source name must not be empty", ErrInvalidArgument)
		}
		loc, local, err := normalise(src.Location)
		if err != nil {
			return nil, fmt.Errorf("package source %s: %w", src.Name, err)
		}
		if existing := r.find(loc, local); existing != nil {
			log.V(1).Info("skipping duplicate package source", "name", src.Name, "existing", existing.Name, "location", loc)
			continue
		}
		r.sources = append(r.sources, &PackageSource{
			Name:     src.Name,
			Location: loc,
			IsLocal:  local,
		})
	}
	log.V(2).Info("loaded package sources", "count", len(r.sources))
	return r, nil
}

// FindOrCreateFromURL returns the remote source registered at urlV3,
// creating it if required. The url must point at a v3 service index.
// When the url is already known, the existing source (and its name)
// is returned.
func (r *Registry) FindOrCreateFromURL(ctx context.Context, name, urlV3 string) (*PackageSource, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: package source name must not be empty", ErrInvalidArgument)
	}
	if !strings.HasSuffix(strings.ToLower(urlV3), V3IndexSuffix) {
		return nil, fmt.Errorf("%w: feed url must end with %s: %s", ErrInvalidArgument, V3IndexSuffix, urlV3)
	}
	if _, err := parseRemote(urlV3); err != nil {
		return nil, err
	}
	return r.findOrCreate(ctx, name, urlV3, false), nil
}

// FindOrCreateFromLocalPath returns the local source at path, creating
// it if required. Paths are compared in their absolute, cleaned form.
func (r *Registry) FindOrCreateFromLocalPath(ctx context.Context, path string) (*PackageSource, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: local feed path must not be empty", ErrInvalidArgument)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("%w: resolving %s: %w", ErrInvalidArgument, path, err)
	}
	return r.findOrCreate(ctx, abs, abs, true), nil
}

// List returns every registered source in lookup order.
func (r *Registry) List() []PackageSource {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]PackageSource, len(r.sources))
	for i, s := range r.sources {
		out[i] = *s
	}
	return out
}

func (r *Registry) findOrCreate(ctx context.Context, name, location string, local bool) *PackageSource {
	log := logr.FromContextOrDiscard(ctx).WithValues("location", location)

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing := r.find(location, local); existing != nil {
		log.V(3).Info("found existing package source", "name", existing.Name)
		return existing
	}

	src := &PackageSource{
		Name:     NamePrefix + name,
		Location: location,
		IsLocal:  local,
	}
	// insert after the sources we have already created so that they
	// stay grouped ahead of the configured ones
	r.sources = append(r.sources, nil)
	copy(r.sources[r.created+1:], r.sources[r.created:])
	r.sources[r.created] = src
	r.created++

	log.V(1).Info("registered package source", "name", src.Name, "local", local)
	return src
}

// find must be called with the lock held (or before the registry
// is shared).
func (r *Registry) find(location string, local bool) *PackageSource {
	for _, s := range r.sources {
		if s.IsLocal == local && s.Location == location {
			return s
		}
	}
	return nil
}

// normalise works out whether a configured location is a url or
// a path, and returns the form used for comparisons.
func normalise(location string) (string, bool, error) {
	if location == "" {
		return "", false, fmt.Errorf("%w: package source location must not be empty", ErrInvalidArgument)
	}
	if uri, err := url.Parse(location); err == nil && (uri.Scheme == "http" || uri.Scheme == "https") {
		return location, false, nil
	}
	abs, err := filepath.Abs(location)
	if err != nil {
		return "", false, fmt.Errorf("%w: resolving %s: %w", ErrInvalidArgument, location, err)
	}
	return abs, true, nil
}

func parseRemote(s string) (*url.URL, error) {
	uri, err := url.Parse(s)
	if err != nil {
		return nil, fmt.Errorf("%w: parsing feed url: %w", ErrInvalidArgument, err)
	}
	if uri.Scheme != "http" && uri.Scheme != "https" {
		return nil, fmt.Errorf("%w: unsupported feed url scheme: %s", ErrInvalidArgument, s)
	}
	if uri.Host == "" {
		return nil, fmt.Errorf("%w: feed url has no host: %s", ErrInvalidArgument, s)
	}
	return uri, nil
}
