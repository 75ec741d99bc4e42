package nuget

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

// newServer creates a test server with keep-alives disabled.
func newServer(t *testing.T, handler http.Handler) *httptest.Server {
	ts := httptest.NewServer(handler)
	ts.Config.SetKeepAlivesEnabled(false)
	t.Cleanup(ts.Close)
	return ts
}
