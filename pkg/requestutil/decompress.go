package requestutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/carlmjohnson/requests"
	"github.com/gabriel-vasile/mimetype"
	"github.com/go-logr/logr"
	"github.com/mholt/archives"
)

var ContentTypesGzip = []string{
	"application/gzip",
	"application/x-gzip",
}

// WithGzip copies the response body into out, transparently
// decompressing gzip payloads that the transport did not already
// handle.
func WithGzip(out io.Writer) requests.ResponseHandler {
	return func(response *http.Response) error {
		log := logr.FromContextOrDiscard(response.Request.Context())
		var stream io.ReadCloser

		// if it's a gzip response, decompress it
		if isGzipped(response.Header.Get("Content-Type")) || response.Header.Get("Content-Encoding") == "gzip" {
			log.V(8).Info("decompressing gzip response")
			dec, err := archives.Gz{}.OpenReader(response.Body)
			if err != nil {
				return fmt.Errorf("decompressing: %w", err)
			}
			defer dec.Close()
			stream = dec
		} else {
			stream = response.Body
		}

		_, err := io.Copy(out, stream)
		if err != nil {
			return fmt.Errorf("writing uncompressed output: %w", err)
		}
		return nil
	}
}

// ToJSON decodes a (possibly gzipped) JSON response into v.
func ToJSON(v any) requests.ResponseHandler {
	return func(response *http.Response) error {
		var buf bytes.Buffer
		if err := WithGzip(&buf)(response); err != nil {
			return err
		}
		if err := json.Unmarshal(buf.Bytes(), v); err != nil {
			return fmt.Errorf("decoding json from %s: %w", response.Request.URL, err)
		}
		return nil
	}
}

func isGzipped(s string) bool {
	return mimetype.EqualsAny(s, ContentTypesGzip...)
}
