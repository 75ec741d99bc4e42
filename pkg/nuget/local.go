package nuget

import (
	"context"
	"crypto/sha512"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/djcass44/all-your-feeds/pkg/artifact"
	"github.com/go-logr/logr"
	"github.com/hashicorp/go-getter"
)

func NewLocalFeed(root string) *LocalFeed {
	return &LocalFeed{root: filepath.Clean(root)}
}

func (f *LocalFeed) Location() string {
	return f.root
}

// Exists checks both the hierarchical and the flat layout.
func (f *LocalFeed) Exists(ctx context.Context, i artifact.Instance) (bool, error) {
	log := logr.FromContextOrDiscard(ctx).WithValues("pkg", i.Name, "version", i.VersionString())

	for _, path := range []string{f.packagePath(i.Name, i.VersionString()), filepath.Join(f.root, i.FileName())} {
		_, err := os.Stat(path)
		if err == nil {
			log.V(4).Info("found existing package", "path", path)
			return true, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			log.Error(err, "failed to check for existing package", "path", path)
			return false, err
		}
	}
	return false, nil
}

// Push copies the package into the hierarchical layout
// <root>/<id>/<version>/<id>.<version>.nupkg and writes the
// accompanying hash file.
func (f *LocalFeed) Push(ctx context.Context, i artifact.Instance, path, _ string) error {
	log := logr.FromContextOrDiscard(ctx).WithValues("file", path)

	dst := f.packagePath(i.Name, i.VersionString())
	log.Info("copying package", "dst", dst)

	src, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	client := &getter.Client{
		Ctx:  ctx,
		Src:  src,
		Dst:  dst,
		Mode: getter.ClientModeFile,
		Getters: map[string]getter.Getter{
			"file": &getter.FileGetter{Copy: true},
		},
		DisableSymlinks: true,
	}
	if err := client.Get(); err != nil {
		log.Error(err, "failed to copy package")
		return fmt.Errorf("copying %s: %w", filepath.Base(path), err)
	}

	digest, err := sha512File(dst)
	if err != nil {
		return err
	}
	if err := os.WriteFile(dst+".sha512", []byte(digest), 0644); err != nil {
		log.Error(err, "failed to write package hash")
		return err
	}
	return nil
}

func (f *LocalFeed) packagePath(name, version string) string {
	id := strings.ToLower(name)
	ver := strings.ToLower(version)
	return filepath.Join(f.root, id, ver, fmt.Sprintf("%s.%s.%s", id, ver, artifact.Extension))
}

func sha512File(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha512.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(h.Sum(nil)), nil
}
