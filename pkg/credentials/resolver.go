package credentials

import (
	"context"
	"strings"

	"github.com/go-logr/logr"
)

var secretNameReplacer = strings.NewReplacer("-", "_", " ", "_")

// SecretKeyName returns the variable holding the personal access
// token of an Azure DevOps organisation.
func SecretKeyName(organization string) string {
	return "AZURE_FEED_" + secretNameReplacer.Replace(strings.ToUpper(organization)) + "_PAT"
}

// LookupSecret resolves a named secret. A missing or empty secret is
// logged as a warning and reported through ok.
func LookupSecret(ctx context.Context, env Environment, secretKeyName string) (string, bool) {
	log := logr.FromContextOrDiscard(ctx).WithValues("secret", secretKeyName)
	if secretKeyName == "" {
		log.Info("warning: no secret name configured")
		return "", false
	}
	val, ok := env.LookupEnv(ctx, secretKeyName)
	if !ok || val == "" {
		log.Info("warning: secret is not set")
		return "", false
	}
	return val, true
}

// PlainAPIKey uses the secret itself as the API key.
func PlainAPIKey(ctx context.Context, env Environment, secretKeyName string) (string, bool) {
	return LookupSecret(ctx, env, secretKeyName)
}

// ProviderKey sends the fixed provider marker as the API key. The real
// secret reaches the server through the credential provider.
func ProviderKey(ctx context.Context, env Environment, secretKeyName string) (string, bool) {
	if _, ok := LookupSecret(ctx, env, secretKeyName); !ok {
		return "", false
	}
	return ProviderAPIKey, true
}

var (
	_ APIKeyFunc = PlainAPIKey
	_ APIKeyFunc = ProviderKey
)
