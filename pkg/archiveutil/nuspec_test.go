package archiveutil

import (
	"archive/zip"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-logr/logr"
	"github.com/go-logr/logr/testr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testNuspec = `<?xml version="1.0" encoding="utf-8"?>
<package xmlns="http://schemas.microsoft.com/packaging/2013/05/nuspec.xsd">
  <metadata>
    <id>PkgA</id>
    <version>1.2.3-ci.4</version>
    <authors>someone</authors>
  </metadata>
</package>`

func writeZip(t *testing.T, path string, files map[string]string) {
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	w := zip.NewWriter(f)
	for name, content := range files {
		fw, err := w.Create(name)
		require.NoError(t, err)
		_, err = fw.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
}

func TestReadManifest(t *testing.T) {
	ctx := logr.NewContext(context.TODO(), testr.NewWithOptions(t, testr.Options{Verbosity: 10}))
	dir := t.TempDir()

	var cases = []struct {
		name  string
		files map[string]string
		ok    bool
	}{
		{
			"root manifest",
			map[string]string{"PkgA.nuspec": testNuspec, "lib/net8.0/PkgA.dll": "MZ"},
			true,
		},
		{
			"nested manifest is ignored",
			map[string]string{"content/PkgA.nuspec": testNuspec},
			false,
		},
		{
			"no manifest",
			map[string]string{"lib/net8.0/PkgA.dll": "MZ"},
			false,
		},
	}
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.name+".nupkg")
			writeZip(t, path, tt.files)

			out, err := ReadManifest(ctx, path)
			if !tt.ok {
				assert.ErrorIs(t, err, ErrNoManifest)
				return
			}
			require.NoError(t, err)
			assert.EqualValues(t, "PkgA", out.ID)
			assert.EqualValues(t, "1.2.3-ci.4", out.Version)
		})
	}
}

func TestDiscover(t *testing.T) {
	ctx := logr.NewContext(context.TODO(), testr.NewWithOptions(t, testr.Options{Verbosity: 10}))
	dir := t.TempDir()

	writeZip(t, filepath.Join(dir, "PkgA.1.2.3-ci.4.nupkg"), map[string]string{"PkgA.nuspec": testNuspec})
	writeZip(t, filepath.Join(dir, "PkgA.1.2.3-ci.4.symbols.nupkg"), map[string]string{})
	require.NoError(t, os.WriteFile(filepath.Join(dir, "readme.txt"), []byte("hi"), 0644))

	out, err := Discover(ctx, dir)
	require.NoError(t, err)
	assert.EqualValues(t, []Manifest{{ID: "PkgA", Version: "1.2.3-ci.4"}}, out)
}
