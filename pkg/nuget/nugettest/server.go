// Package nugettest provides an in-memory v3 feed for tests.
package nugettest

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"
)

// Promotion is a recorded view promotion request.
type Promotion struct {
	Organization  string
	Feed          string
	Authorization string
	Body          PromotionBody
}

type PromotionBody struct {
	Data struct {
		ViewID string `json:"viewId"`
	} `json:"data"`
	Operation int `json:"operation"`
	Packages  []struct {
		ID           string `json:"id"`
		Version      string `json:"version"`
		ProtocolType string `json:"protocolType"`
	} `json:"packages"`
}

// Server is a minimal v3 feed that also answers view promotions.
type Server struct {
	*httptest.Server

	// APIKey, when set, must be sent with every push.
	APIKey string
	// PushStatus forces the response code of pushes.
	PushStatus int
	// PromoteStatus forces the response code of promotions.
	PromoteStatus int
	// Authorization, when set, must be sent with every index, existence
	// check and push request.
	Authorization string
	// PushDelay stalls pushes until it passes or the client gives up.
	PushDelay time.Duration

	mu         sync.Mutex
	packages   map[string][]string
	pushed     []string
	promotions []Promotion
	events     []string
	checks     int
	noCache    int
}

// NewServer starts a feed that is shut down when the test ends.
func NewServer(t *testing.T) *Server {
	s := &Server{packages: map[string][]string{}}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /v3/index.json", s.serviceIndex)
	mux.HandleFunc("GET /{org}/_packaging/{feed}/nuget/v3/index.json", s.serviceIndex)
	mux.HandleFunc("GET /v3-flatcontainer/{id}/index.json", s.versions)
	mux.HandleFunc("PUT /api/v2/package", s.push)
	mux.HandleFunc("POST /{org}/_apis/packaging/feeds/{feed}/nuget/packagesBatch", s.promote)

	s.Server = httptest.NewServer(mux)
	s.Config.SetKeepAlivesEnabled(false)
	t.Cleanup(s.Close)
	return s
}

func (s *Server) IndexURL() string {
	return s.URL + "/v3/index.json"
}

// AddPackage marks a package version as published.
func (s *Server) AddPackage(id, version string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.add(id, version)
}

// Pushed returns the file names of every pushed package.
func (s *Server) Pushed() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.pushed)
}

func (s *Server) Promotions() []Promotion {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.promotions)
}

// Events returns pushes and promotions in the order they arrived,
// formatted as "push:<file>" and "promote:<id>@<version>:<view>".
func (s *Server) Events() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.events)
}

// Checks returns the number of existence checks and how many
// of them disabled caching.
func (s *Server) Checks() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.checks, s.noCache
}

func (s *Server) add(id, version string) {
	key := strings.ToLower(id)
	s.packages[key] = append(s.packages[key], strings.ToLower(version))
}

// authorized rejects requests without the expected credentials.
func (s *Server) authorized(w http.ResponseWriter, r *http.Request) bool {
	if s.Authorization == "" || r.Header.Get("Authorization") == s.Authorization {
		return true
	}
	w.Header().Set("WWW-Authenticate", `Basic realm="nugettest"`)
	http.Error(w, "unauthorized", http.StatusUnauthorized)
	return false
}

func (s *Server) serviceIndex(w http.ResponseWriter, r *http.Request) {
	if !s.authorized(w, r) {
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = fmt.Fprintf(w, `{"version":"3.0.0","resources":[{"@id":"%[1]s/v3-flatcontainer/","@type":"PackageBaseAddress/3.0.0"},{"@id":"%[1]s/api/v2/package","@type":"PackagePublish/2.0.0"}]}`, s.URL)
}

func (s *Server) versions(w http.ResponseWriter, r *http.Request) {
	if !s.authorized(w, r) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.checks++
	if r.Header.Get("Cache-Control") == "no-cache" {
		s.noCache++
	}
	versions, ok := s.packages[r.PathValue("id")]
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string][]string{"versions": versions})
}

func (s *Server) push(w http.ResponseWriter, r *http.Request) {
	if !s.authorized(w, r) {
		return
	}
	if s.APIKey != "" && r.Header.Get("X-NuGet-ApiKey") != s.APIKey {
		http.Error(w, "invalid api key", http.StatusUnauthorized)
		return
	}
	if s.PushStatus != 0 {
		http.Error(w, "push rejected", s.PushStatus)
		return
	}
	f, header, err := r.FormFile("package")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	_ = f.Close()
	if s.PushDelay > 0 {
		select {
		case <-time.After(s.PushDelay):
		case <-r.Context().Done():
			return
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.pushed = append(s.pushed, header.Filename)
	s.events = append(s.events, "push:"+header.Filename)
	if id, version, ok := splitFileName(header.Filename); ok {
		s.add(id, version)
	}
	w.WriteHeader(http.StatusCreated)
}

func (s *Server) promote(w http.ResponseWriter, r *http.Request) {
	if s.PromoteStatus != 0 {
		http.Error(w, "promotion rejected", s.PromoteStatus)
		return
	}
	if r.URL.Query().Get("api-version") != "5.0-preview.1" {
		http.Error(w, "unsupported api-version", http.StatusBadRequest)
		return
	}
	var body PromotionBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.promotions = append(s.promotions, Promotion{
		Organization:  r.PathValue("org"),
		Feed:          r.PathValue("feed"),
		Authorization: r.Header.Get("Authorization"),
		Body:          body,
	})
	for _, p := range body.Packages {
		s.events = append(s.events, fmt.Sprintf("promote:%s@%s:%s", p.ID, p.Version, body.Data.ViewID))
	}
	w.WriteHeader(http.StatusAccepted)
}

// BasicAuth returns the Authorization header expected for a secret.
func BasicAuth(secret string) string {
	return UserAuth("", secret)
}

// UserAuth returns the Authorization header for a username and secret.
func UserAuth(username, secret string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(username+":"+secret))
}

// splitFileName recovers the id and version from <id>.<version>.nupkg.
func splitFileName(file string) (string, string, bool) {
	base, ok := strings.CutSuffix(file, ".nupkg")
	if !ok {
		return "", "", false
	}
	parts := strings.Split(base, ".")
	for i := 1; i < len(parts); i++ {
		if parts[i] != "" && strings.Trim(parts[i], "0123456789") == "" {
			return strings.Join(parts[:i], "."), strings.Join(parts[i:], "."), true
		}
	}
	return "", "", false
}
