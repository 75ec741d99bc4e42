package nuget

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	"github.com/djcass44/all-your-feeds/pkg/artifact"
	"github.com/djcass44/all-your-feeds/pkg/requestutil"
	"github.com/go-logr/logr"
)

// Push uploads the package at path to the publish resource of the feed.
// The request is buffered in memory and bounded by the push timeout
// (PushTimeout unless changed with WithPushTimeout). Symbol
// packages are never uploaded.
func (f *RemoteFeed) Push(ctx context.Context, i artifact.Instance, path, apiKey string) error {
	log := logr.FromContextOrDiscard(ctx).WithValues("pkg", i.Key(), "file", path)

	target, err := f.resource(ctx, ResourcePackagePublish)
	if err != nil {
		return err
	}
	log = log.WithValues("url", target)

	body, contentType, err := multipartBody(path)
	if err != nil {
		log.Error(err, "failed to read package")
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, f.pushTimeout)
	defer cancel()

	log.Info("pushing package", "size", len(body))
	err = f.request(target).
		Put().
		Header(HeaderAPIKey, apiKey).
		Header(HeaderProtocolVersion, protocolVersion).
		ContentType(contentType).
		BodyBytes(body).
		AddValidator(requestutil.CheckStatus(http.StatusOK, http.StatusCreated, http.StatusAccepted)).
		Fetch(ctx)
	if err != nil {
		log.Error(err, "failed to push package")
		return fmt.Errorf("pushing %s: %w", i.Key(), err)
	}
	log.V(1).Info("pushed package")
	return nil
}

// multipartBody wraps the package file in the form expected by the
// publish resource.
func multipartBody(path string) ([]byte, string, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, "", fmt.Errorf("opening package: %w", err)
	}
	defer f.Close()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("package", filepath.Base(path))
	if err != nil {
		return nil, "", err
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, "", fmt.Errorf("reading package: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), mw.FormDataContentType(), nil
}
