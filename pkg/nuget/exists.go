package nuget

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/djcass44/all-your-feeds/pkg/artifact"
	"github.com/djcass44/all-your-feeds/pkg/requestutil"
	"github.com/go-logr/logr"
)

// Exists checks the flat container of the feed for the exact package
// identity. Nothing is cached, so a package pushed by an earlier
// (failed) run is always seen.
func (f *RemoteFeed) Exists(ctx context.Context, i artifact.Instance) (bool, error) {
	log := logr.FromContextOrDiscard(ctx).WithValues("pkg", i.Name, "version", i.VersionString())

	base, err := f.resource(ctx, ResourcePackageBaseAddress)
	if err != nil {
		return false, err
	}
	target := fmt.Sprintf("%s/%s/index.json", strings.TrimSuffix(base, "/"), strings.ToLower(i.Name))

	log.V(3).Info("checking for existing package", "url", target)
	var found bool
	var listing versionList
	err = f.request(target).
		Header("Cache-Control", "no-cache").
		Header("Pragma", "no-cache").
		Accept("application/json").
		AddValidator(requestutil.CheckStatus(http.StatusOK, http.StatusNotFound)).
		Handle(func(response *http.Response) error {
			if response.StatusCode == http.StatusNotFound {
				return nil
			}
			found = true
			return requestutil.ToJSON(&listing)(response)
		}).
		Fetch(ctx)
	if err != nil {
		log.Error(err, "failed to check for existing package")
		return false, fmt.Errorf("checking %s: %w", i.Key(), err)
	}
	if !found {
		log.V(4).Info("package has never been published")
		return false, nil
	}
	ok := containsVersion(listing.Versions, i.Version)
	log.V(4).Info("checked package versions", "count", len(listing.Versions), "exists", ok)
	return ok, nil
}

// containsVersion compares versions the way the server normalises them:
// case-insensitively and without build metadata.
func containsVersion(versions []string, v *semver.Version) bool {
	want, err := semver.NewVersion(strings.ToLower(v.String()))
	if err != nil {
		return false
	}
	for _, s := range versions {
		got, err := semver.NewVersion(strings.ToLower(s))
		if err != nil {
			continue
		}
		if got.Equal(want) {
			return true
		}
	}
	return false
}
