package credentials

import (
	"context"
	"io"
	"sync"
)

const (
	// ProviderAPIKey is sent as the API key for feeds that authenticate
	// through the credential provider. The server ignores its value.
	ProviderAPIKey = "AzureDevOps"

	// EnvEndpoints is read by the credential provider to find the
	// secrets of external feeds.
	EnvEndpoints = "VSS_NUGET_EXTERNAL_FEED_ENDPOINTS"
	// EnvHostPath must point at the dotnet host, otherwise the
	// credential plugin fails to start.
	EnvHostPath = "DOTNET_HOST_PATH"
	// DefaultHostPath is used when EnvHostPath is not set.
	DefaultHostPath = "dotnet"

	// ProviderUsername is paired with the secret of every exported
	// endpoint. The server only checks the password.
	ProviderUsername = "Unused"
)

// Environment looks up secrets by name.
type Environment interface {
	LookupEnv(ctx context.Context, key string) (string, bool)
}

// APIKeyFunc maps a named secret onto the API key sent with a push.
// ok is false when the secret could not be resolved.
type APIKeyFunc func(ctx context.Context, env Environment, secretKeyName string) (apiKey string, ok bool)

// MapEnvironment is a fixed set of variables.
type MapEnvironment map[string]string

// OSEnvironment reads the process environment. When Interactive is set
// and stdin is a terminal, missing values are prompted for.
type OSEnvironment struct {
	Interactive bool
	// Prompt receives the prompt text. Defaults to stderr.
	Prompt io.Writer

	mu sync.Mutex
}

// Endpoint is a feed whose secret is handed to the credential provider.
type Endpoint struct {
	URL           string
	SecretKeyName string
}

// ProviderSetup exports the credential provider configuration.
// It runs at most once.
type ProviderSetup struct {
	mu       sync.Mutex
	prepared bool
	count    int
	// secrets holds the exported password of each endpoint url.
	secrets map[string]string
}

type endpointCredentials struct {
	EndpointCredentials []endpointCredential `json:"endpointCredentials"`
}

type endpointCredential struct {
	Endpoint string `json:"endpoint"`
	Username string `json:"username"`
	Password string `json:"password"`
}
