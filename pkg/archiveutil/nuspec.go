package archiveutil

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-logr/logr"
	"github.com/mholt/archives"
)

var ErrNoManifest = errors.New("package has no manifest")

// Manifest is the subset of a .nuspec needed to identify a package.
type Manifest struct {
	ID      string
	Version string
}

type nuspec struct {
	XMLName  xml.Name `xml:"package"`
	Metadata struct {
		ID      string `xml:"id"`
		Version string `xml:"version"`
	} `xml:"metadata"`
}

// ReadManifest extracts the id and version from the .nuspec at the
// root of a package archive.
func ReadManifest(ctx context.Context, path string) (*Manifest, error) {
	log := logr.FromContextOrDiscard(ctx).WithValues("path", path)

	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		log.Error(err, "failed to open package")
		return nil, err
	}
	defer f.Close()

	var out *Manifest
	err = archives.Zip{}.Extract(ctx, f, func(ctx context.Context, info archives.FileInfo) error {
		if out != nil || info.IsDir() || strings.Contains(info.NameInArchive, "/") || !strings.EqualFold(filepath.Ext(info.NameInArchive), ".nuspec") {
			return nil
		}
		log.V(5).Info("reading manifest", "file", info.NameInArchive)
		r, err := info.Open()
		if err != nil {
			return err
		}
		defer r.Close()

		var spec nuspec
		if err := xml.NewDecoder(r).Decode(&spec); err != nil {
			return fmt.Errorf("decoding %s: %w", info.NameInArchive, err)
		}
		out = &Manifest{
			ID:      strings.TrimSpace(spec.Metadata.ID),
			Version: strings.TrimSpace(spec.Metadata.Version),
		}
		return nil
	})
	if err != nil {
		log.Error(err, "failed to read package")
		return nil, err
	}
	if out == nil || out.ID == "" || out.Version == "" {
		return nil, fmt.Errorf("%w: %s", ErrNoManifest, filepath.Base(path))
	}
	return out, nil
}

// Discover reads the manifest of every package in dir. Symbol
// packages are ignored.
func Discover(ctx context.Context, dir string) ([]Manifest, error) {
	log := logr.FromContextOrDiscard(ctx).WithValues("dir", dir)

	matches, err := filepath.Glob(filepath.Join(dir, "*.nupkg"))
	if err != nil {
		return nil, err
	}
	var out []Manifest
	for _, m := range matches {
		if strings.HasSuffix(strings.ToLower(m), ".symbols.nupkg") {
			log.V(2).Info("skipping symbol package", "file", filepath.Base(m))
			continue
		}
		manifest, err := ReadManifest(ctx, m)
		if err != nil {
			return nil, err
		}
		out = append(out, *manifest)
	}
	log.V(1).Info("discovered packages", "count", len(out))
	return out, nil
}
