package credentials

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/djcass44/all-your-feeds/pkg/airutil"
	"github.com/go-logr/logr"
)

// Prepare exports the credentials of endpoints for the credential
// provider. Only the first call has any effect, so endpoints that are
// registered afterwards are not included.
func (p *ProviderSetup) Prepare(ctx context.Context, env Environment, endpoints []Endpoint) error {
	log := logr.FromContextOrDiscard(ctx)

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.prepared {
		log.V(4).Info("credential provider already prepared", "endpoints", p.count)
		return nil
	}

	changed, err := airutil.SetDefaultEnv(EnvHostPath, DefaultHostPath)
	if err != nil {
		log.Error(err, "failed to set host path", "key", EnvHostPath)
		return err
	}
	if changed {
		log.V(1).Info("defaulted dotnet host path", "key", EnvHostPath, "value", DefaultHostPath)
	}

	creds := collect(ctx, env, endpoints)
	payload, err := encodePayload(creds)
	if err != nil {
		return err
	}
	count := len(creds)
	if err := os.Setenv(EnvEndpoints, payload); err != nil {
		log.Error(err, "failed to export credential provider configuration")
		return err
	}
	log.V(1).Info("prepared credential provider", "endpoints", count, "registered", len(endpoints))

	p.prepared = true
	p.count = count
	p.secrets = make(map[string]string, count)
	for _, c := range creds {
		p.secrets[c.Endpoint] = c.Password
	}
	return nil
}

// Credential returns the password exported for endpoint. Endpoints
// registered after Prepare ran are never found.
func (p *ProviderSetup) Credential(endpoint string) (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	secret, ok := p.secrets[endpoint]
	return secret, ok
}

// Prepared reports whether Prepare has completed.
func (p *ProviderSetup) Prepared() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.prepared
}

// BuildPayload serialises the credential provider configuration,
// including only the endpoints whose secret resolves.
func BuildPayload(ctx context.Context, env Environment, endpoints []Endpoint) (string, int, error) {
	creds := collect(ctx, env, endpoints)
	payload, err := encodePayload(creds)
	if err != nil {
		return "", 0, err
	}
	return payload, len(creds), nil
}

// collect resolves the secret of every endpoint, leaving out those
// that have none.
func collect(ctx context.Context, env Environment, endpoints []Endpoint) []endpointCredential {
	log := logr.FromContextOrDiscard(ctx)

	out := []endpointCredential{}
	for _, e := range endpoints {
		secret, ok := env.LookupEnv(ctx, e.SecretKeyName)
		if !ok || secret == "" {
			log.V(2).Info("leaving endpoint out of credential provider configuration", "endpoint", e.URL, "secret", e.SecretKeyName)
			continue
		}
		out = append(out, endpointCredential{
			Endpoint: e.URL,
			Username: ProviderUsername,
			Password: secret,
		})
	}
	return out
}

func encodePayload(creds []endpointCredential) (string, error) {
	data, err := json.Marshal(endpointCredentials{EndpointCredentials: creds})
	if err != nil {
		return "", fmt.Errorf("encoding credential provider configuration: %w", err)
	}
	return string(data), nil
}
