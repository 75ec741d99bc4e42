package cmd

import (
	"context"
	"path/filepath"
	"testing"

	ayfv1 "github.com/djcass44/all-your-feeds/pkg/api/v1"
	"github.com/djcass44/all-your-feeds/pkg/credentials"
	"github.com/djcass44/all-your-feeds/pkg/feeds"
	"github.com/djcass44/all-your-feeds/pkg/sources"
	"github.com/go-logr/logr"
	"github.com/go-logr/logr/testr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadConfig(t *testing.T) {
	cfg, err := readConfig("./testdata/publish.yaml")
	require.NoError(t, err)

	assert.EqualValues(t, "my-build", cfg.Name)
	assert.EqualValues(t, "Publish", cfg.Kind)
	assert.EqualValues(t, "./artifacts", cfg.Spec.OutputDirectory)
	require.Len(t, cfg.Spec.Packages, 2)
	require.Len(t, cfg.Spec.Feeds, 3)
	assert.EqualValues(t, ayfv1.FeedAzureDevOps, cfg.Spec.Feeds[2].Type)
	assert.True(t, cfg.Spec.Feeds[2].Views)
}

func TestReadCandidates(t *testing.T) {
	ctx := logr.NewContext(context.TODO(), testr.NewWithOptions(t, testr.Options{Verbosity: 10}))
	t.Setenv("PKG_B_VERSION", "2.0.0-beta.1")

	cfg, err := readConfig("./testdata/publish.yaml")
	require.NoError(t, err)

	candidates, err := readCandidates(ctx, cfg.Spec, t.TempDir())
	require.NoError(t, err)
	assert.EqualValues(t, []string{"PkgA@1.0.0", "PkgB@2.0.0-beta.1"}, candidates.Keys())

	_, err = readCandidates(ctx, ayfv1.PublishSpec{}, t.TempDir())
	assert.Error(t, err)
}

func TestNewFeeds(t *testing.T) {
	ctx := logr.NewContext(context.TODO(), testr.NewWithOptions(t, testr.Options{Verbosity: 10}))
	wd := t.TempDir()

	cfg, err := readConfig("./testdata/publish.yaml")
	require.NoError(t, err)

	registry, err := sources.NewRegistry(ctx)
	require.NoError(t, err)
	session := feeds.NewSession(ctx, registry, feeds.WithEnvironment(credentials.MapEnvironment{}))

	out, err := newFeeds(ctx, session, wd, cfg.Spec.Feeds)
	require.NoError(t, err)
	require.Len(t, out, 3)

	assert.EqualValues(t, feeds.VariantLocal, out[0].Variant())
	assert.EqualValues(t, filepath.Join(wd, "out", "feed"), out[0].Location())
	assert.EqualValues(t, feeds.VariantRemote, out[1].Variant())
	assert.EqualValues(t, "Publish: nuget.org", out[1].Name())
	assert.EqualValues(t, feeds.VariantOrganizationViews, out[2].Variant())
	assert.EqualValues(t, "https://pkgs.dev.azure.com/my-org/_packaging/my-feed/nuget/v3/index.json", out[2].Location())

	assert.Len(t, registry.List(), 3)

	t.Run("unknown type", func(t *testing.T) {
		_, err := newFeeds(ctx, session, wd, []ayfv1.Feed{{Type: "Ftp"}})
		assert.Error(t, err)
	})
	t.Run("no feeds", func(t *testing.T) {
		_, err := newFeeds(ctx, session, wd, nil)
		assert.Error(t, err)
	})
}

func TestResolvePath(t *testing.T) {
	var cases = []struct {
		in  string
		out string
	}{
		{"", ""},
		{"/abs/path", "/abs/path"},
		{"rel/path", "/wd/rel/path"},
	}
	for _, tt := range cases {
		t.Run(tt.in, func(t *testing.T) {
			assert.EqualValues(t, tt.out, resolvePath("/wd", tt.in))
		})
	}
}
