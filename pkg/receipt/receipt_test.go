package receipt

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/djcass44/all-your-feeds/pkg/artifact"
	"github.com/djcass44/all-your-feeds/pkg/credentials"
	"github.com/djcass44/all-your-feeds/pkg/feeds"
	"github.com/djcass44/all-your-feeds/pkg/sources"
	"github.com/go-logr/logr"
	"github.com/go-logr/logr/testr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestName(t *testing.T) {
	var cases = []struct {
		in  string
		out string
	}{
		{"publish.yaml", "publish-receipt.json"},
		{"/tmp/build/publish.yml", "/tmp/build/publish-receipt.json"},
		{"publish", "publish-receipt.json"},
	}
	for _, tt := range cases {
		t.Run(tt.in, func(t *testing.T) {
			assert.EqualValues(t, tt.out, Name(tt.in))
		})
	}
}

func TestReceipt_SortedKeys(t *testing.T) {
	r := &Receipt{
		Feeds: map[string]Feed{
			"feedC": {},
			"feedA": {},
			"feedB": {},
		},
	}
	assert.EqualValues(t, []string{"feedA", "feedB", "feedC"}, r.SortedKeys())
}

func TestSha256(t *testing.T) {
	path := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0644))

	out, err := Sha256(path)
	require.NoError(t, err)
	assert.EqualValues(t, "sha256:2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824", out)
}

func TestReceipt_RoundTrip(t *testing.T) {
	ctx := logr.NewContext(context.TODO(), testr.NewWithOptions(t, testr.Options{Verbosity: 10}))

	dir := t.TempDir()
	i, err := artifact.New("PkgA", "1.0.0")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(i.Path(dir), []byte("hello"), 0644))
	candidates, err := artifact.NewCandidates(i)
	require.NoError(t, err)

	registry, err := sources.NewRegistry(ctx)
	require.NoError(t, err)
	session := feeds.NewSession(ctx, registry, feeds.WithEnvironment(credentials.MapEnvironment{}))
	f, err := session.NewLocalFeed(ctx, filepath.Join(dir, "feed"))
	require.NoError(t, err)
	require.NoError(t, feeds.PublishAll(ctx, []*feeds.Feed{f}, candidates, dir, false))

	r := New("my-build", session.ID())
	require.NoError(t, r.Add(ctx, f, dir))

	cfgPath := filepath.Join(dir, "publish.yaml")
	require.NoError(t, r.Write(ctx, cfgPath))

	out, err := Read(ctx, cfgPath)
	require.NoError(t, err)
	assert.EqualValues(t, "my-build", out.Name)
	assert.EqualValues(t, session.ID(), out.Session)
	require.Contains(t, out.Feeds, f.Name())

	entry := out.Feeds[f.Name()]
	assert.EqualValues(t, "Local", entry.Type)
	assert.False(t, entry.Skipped)
	assert.EqualValues(t, []string{"PkgA@1.0.0"}, entry.SortedKeys())
	assert.EqualValues(t, "sha256:2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824", entry.Packages["PkgA@1.0.0"].Integrity)
	assert.Empty(t, entry.Packages["PkgA@1.0.0"].Views)
}

func TestRead_Missing(t *testing.T) {
	_, err := Read(context.TODO(), filepath.Join(t.TempDir(), "publish.yaml"))
	assert.Error(t, err)
}
