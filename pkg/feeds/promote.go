package feeds

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"

	"github.com/carlmjohnson/requests"
	"github.com/djcass44/all-your-feeds/pkg/artifact"
	"github.com/djcass44/all-your-feeds/pkg/credentials"
	"github.com/djcass44/all-your-feeds/pkg/requestutil"
	"github.com/go-logr/logr"
	"golang.org/x/sync/errgroup"
)

// promote adds every pushed package to the views derived from its
// version. It must only run once all pushes have completed.
func promote(ctx context.Context, f *Feed, pushed []artifact.Instance) error {
	log := logr.FromContextOrDiscard(ctx).WithValues("feed", f.name)

	secret, ok := credentials.LookupSecret(ctx, f.session.env, f.secretKeyName)
	if !ok {
		return errors.New("secret disappeared before promotion")
	}
	auth := basicAuth(secret)
	target := f.promotionURL()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(f.session.concurrency, 1))
	for _, i := range pushed {
		for _, view := range i.Labels {
			g.Go(func() error {
				return f.promoteOne(gctx, target, auth, i, view)
			})
		}
	}
	if err := g.Wait(); err != nil {
		return err
	}
	log.V(1).Info("promoted packages", "count", len(pushed))
	return nil
}

func (f *Feed) promoteOne(ctx context.Context, target, auth string, i artifact.Instance, view string) error {
	log := logr.FromContextOrDiscard(ctx).WithValues("pkg", i.Name, "version", i.VersionString(), "view", view)

	body := promotionRequest{
		Data:      promotionData{ViewID: view},
		Operation: operationPromote,
		Packages: []promotionPackage{
			{
				ID:           i.Name,
				Version:      i.VersionString(),
				ProtocolType: protocolTypeNuGet,
			},
		},
	}
	err := requests.URL(target).
		Client(f.session.client).
		Post().
		Param("api-version", promotionAPIVersion).
		Header("Authorization", auth).
		BodyJSON(&body).
		AddValidator(requestutil.CheckStatus()).
		Fetch(ctx)
	if err != nil {
		log.Error(err, "failed to promote package")
		return fmt.Errorf("promoting %s to %s: %w", i.Key(), view, err)
	}
	log.Info("promoted package")
	return nil
}

func (f *Feed) promotionURL() string {
	return fmt.Sprintf("%s/%s/_apis/packaging/feeds/%s/nuget/packagesBatch",
		f.session.organizationURL,
		url.PathEscape(f.organization),
		url.PathEscape(f.feedID),
	)
}

func basicAuth(secret string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(":"+secret))
}
