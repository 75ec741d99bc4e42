package requestutil

import (
	"compress/gzip"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/carlmjohnson/requests"
	"github.com/go-logr/logr"
	"github.com/go-logr/logr/testr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsGzipped(t *testing.T) {
	var cases = []struct {
		s  string
		ok bool
	}{
		{
			"application/gzip",
			true,
		},
		{
			"application/x-gzip",
			true,
		},
		{
			"application/json",
			false,
		},
	}

	for _, tt := range cases {
		t.Run(tt.s, func(t *testing.T) {
			ok := isGzipped(tt.s)
			assert.EqualValues(t, tt.ok, ok)
		})
	}
}

func TestToJSON(t *testing.T) {
	ctx := logr.NewContext(context.TODO(), testr.NewWithOptions(t, testr.Options{Verbosity: 10}))

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/plain":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"versions":["1.0.0"]}`))
		case "/gzip":
			w.Header().Set("Content-Type", "application/gzip")
			gw := gzip.NewWriter(w)
			_, _ = gw.Write([]byte(`{"versions":["2.0.0"]}`))
			_ = gw.Close()
		}
	}))
	defer ts.Close()

	type listing struct {
		Versions []string `json:"versions"`
	}

	t.Run("plain json", func(t *testing.T) {
		var out listing
		err := requests.URL(ts.URL + "/plain").Handle(ToJSON(&out)).Fetch(ctx)
		require.NoError(t, err)
		assert.EqualValues(t, []string{"1.0.0"}, out.Versions)
	})
	t.Run("gzipped json", func(t *testing.T) {
		var out listing
		err := requests.URL(ts.URL + "/gzip").Handle(ToJSON(&out)).Fetch(ctx)
		require.NoError(t, err)
		assert.EqualValues(t, []string{"2.0.0"}, out.Versions)
	})
}

func TestCheckStatus(t *testing.T) {
	ctx := logr.NewContext(context.TODO(), testr.NewWithOptions(t, testr.Options{Verbosity: 10}))

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/missing":
			w.WriteHeader(http.StatusNotFound)
		case "/denied":
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte("bad api key"))
		}
	}))
	defer ts.Close()

	t.Run("accepted code passes", func(t *testing.T) {
		err := requests.URL(ts.URL + "/missing").AddValidator(CheckStatus(http.StatusOK, http.StatusNotFound)).Fetch(ctx)
		assert.NoError(t, err)
	})
	t.Run("rejected code is an HTTPError", func(t *testing.T) {
		err := requests.URL(ts.URL + "/denied").AddValidator(CheckStatus()).Fetch(ctx)
		require.Error(t, err)

		var httpErr *HTTPError
		require.True(t, errors.As(err, &httpErr))
		assert.EqualValues(t, http.StatusUnauthorized, httpErr.StatusCode)
		assert.EqualValues(t, "bad api key", httpErr.Message)
		assert.Contains(t, httpErr.URL, "/denied")
	})
}
