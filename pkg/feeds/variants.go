package feeds

import (
	"context"
	"fmt"

	"github.com/djcass44/all-your-feeds/pkg/credentials"
	"github.com/djcass44/all-your-feeds/pkg/nuget"
	"github.com/go-logr/logr"
)

var variants = map[Variant]capabilities{
	VariantLocal: {
		apiKey: func(context.Context, *Feed) (string, bool, error) {
			return "", true, nil
		},
	},
	VariantRemote: {
		apiKey: plainKey,
	},
	VariantOrganization: {
		prepare: prepareOrganization,
		apiKey:  providerKey,
	},
	VariantOrganizationViews: {
		prepare:  prepareOrganization,
		apiKey:   providerKey,
		postPush: promote,
	},
}

func plainKey(ctx context.Context, f *Feed) (string, bool, error) {
	key, ok := credentials.PlainAPIKey(ctx, f.session.env, f.secretKeyName)
	return key, ok, nil
}

// prepareOrganization exports the credential provider configuration
// and authenticates the feed with the secret it exported.
func prepareOrganization(ctx context.Context, f *Feed) (bool, error) {
	log := logr.FromContextOrDiscard(ctx).WithValues("feed", f.name)

	if err := f.session.prepareProvider(ctx); err != nil {
		return false, err
	}
	if _, ok := credentials.LookupSecret(ctx, f.session.env, f.secretKeyName); !ok {
		return false, nil
	}
	secret, ok := f.session.provider.Credential(f.source.Location)
	if !ok {
		log.Info("warning: feed was created after the credential provider was prepared and will not be authenticated")
		return true, nil
	}
	f.remote.SetBasicAuth(credentials.ProviderUsername, secret)
	log.V(2).Info("authenticated feed through the credential provider")
	return true, nil
}

func providerKey(ctx context.Context, f *Feed) (string, bool, error) {
	if err := f.session.prepareProvider(ctx); err != nil {
		return "", false, err
	}
	key, ok := credentials.ProviderKey(ctx, f.session.env, f.secretKeyName)
	return key, ok, nil
}

// NewLocalFeed creates a feed that copies packages into a directory.
func (s *Session) NewLocalFeed(ctx context.Context, path string) (*Feed, error) {
	src, err := s.registry.FindOrCreateFromLocalPath(ctx, path)
	if err != nil {
		return nil, err
	}
	return s.newFeed(ctx, VariantLocal, &Feed{
		source: src,
		name:   src.Name,
		target: nuget.NewLocalFeed(src.Location),
	}), nil
}

// NewRemoteFeed creates a feed for any v3 server, authenticated with
// the secret held in secretKeyName.
func (s *Session) NewRemoteFeed(ctx context.Context, name, urlV3, secretKeyName string) (*Feed, error) {
	src, err := s.registry.FindOrCreateFromURL(ctx, name, urlV3)
	if err != nil {
		return nil, err
	}
	remote := s.newRemoteTarget(src.Location)
	return s.newFeed(ctx, VariantRemote, &Feed{
		source:        src,
		name:          src.Name,
		secretKeyName: secretKeyName,
		target:        remote,
		remote:        remote,
	}), nil
}

// NewOrganizationFeed creates a feed hosted by an Azure DevOps
// organisation. When views is set, pushed packages are promoted into
// the views matching their version.
func (s *Session) NewOrganizationFeed(ctx context.Context, organization, feedID string, views bool) (*Feed, error) {
	if organization == "" || feedID == "" {
		return nil, fmt.Errorf("%w: organization and feed must not be empty", ErrInvalidArgument)
	}
	name := fmt.Sprintf("%s-%s", organization, feedID)
	urlV3 := fmt.Sprintf("%s/%s/_packaging/%s/nuget/v3/index.json", s.organizationURL, organization, feedID)

	src, err := s.registry.FindOrCreateFromURL(ctx, name, urlV3)
	if err != nil {
		return nil, err
	}
	secretKeyName := credentials.SecretKeyName(organization)
	s.registerEndpoint(credentials.Endpoint{
		URL:           src.Location,
		SecretKeyName: secretKeyName,
	})

	variant := VariantOrganization
	if views {
		variant = VariantOrganizationViews
	}
	remote := s.newRemoteTarget(src.Location)
	return s.newFeed(ctx, variant, &Feed{
		source:        src,
		name:          src.Name,
		secretKeyName: secretKeyName,
		organization:  organization,
		feedID:        feedID,
		target:        remote,
		remote:        remote,
	}), nil
}

func (s *Session) newFeed(ctx context.Context, variant Variant, f *Feed) *Feed {
	f.session = s
	f.variant = variant
	f.caps = variants[variant]
	f.state = StateUninitialized
	logr.FromContextOrDiscard(ctx).V(1).Info("created feed", "feed", f.name, "variant", variant, "location", f.target.Location())
	return f
}
