package credentials

import (
	"context"
	"encoding/json"
	"os"
	"testing"

	"github.com/go-logr/logr"
	"github.com/go-logr/logr/testr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildPayload(t *testing.T) {
	ctx := logr.NewContext(context.TODO(), testr.NewWithOptions(t, testr.Options{Verbosity: 10}))

	env := MapEnvironment{
		"AZURE_FEED_MY_ORG_PAT": "secret-a",
	}
	payload, count, err := BuildPayload(ctx, env, []Endpoint{
		{URL: "https://pkgs.dev.azure.com/my-org/_packaging/a/nuget/v3/index.json", SecretKeyName: "AZURE_FEED_MY_ORG_PAT"},
		{URL: "https://pkgs.dev.azure.com/other/_packaging/b/nuget/v3/index.json", SecretKeyName: "AZURE_FEED_OTHER_PAT"},
	})
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
	assert.JSONEq(t, `{"endpointCredentials":[{"endpoint":"https://pkgs.dev.azure.com/my-org/_packaging/a/nuget/v3/index.json","username":"Unused","password":"secret-a"}]}`, payload)
}

func TestBuildPayload_Empty(t *testing.T) {
	ctx := logr.NewContext(context.TODO(), testr.NewWithOptions(t, testr.Options{Verbosity: 10}))

	payload, count, err := BuildPayload(ctx, MapEnvironment{}, nil)
	require.NoError(t, err)
	assert.Zero(t, count)
	assert.JSONEq(t, `{"endpointCredentials":[]}`, payload)
}

func TestProviderSetup_Prepare(t *testing.T) {
	ctx := logr.NewContext(context.TODO(), testr.NewWithOptions(t, testr.Options{Verbosity: 10}))

	// register cleanup of the variables that Prepare writes
	t.Setenv(EnvEndpoints, "")
	t.Setenv(EnvHostPath, "")

	env := MapEnvironment{
		"AZURE_FEED_FIRST_PAT":  "one",
		"AZURE_FEED_SECOND_PAT": "two",
	}

	p := &ProviderSetup{}
	require.NoError(t, p.Prepare(ctx, env, []Endpoint{
		{URL: "https://first.example.com/v3/index.json", SecretKeyName: "AZURE_FEED_FIRST_PAT"},
	}))
	assert.True(t, p.Prepared())
	assert.EqualValues(t, DefaultHostPath, os.Getenv(EnvHostPath))

	// endpoints registered after the first call are not included
	require.NoError(t, p.Prepare(ctx, env, []Endpoint{
		{URL: "https://first.example.com/v3/index.json", SecretKeyName: "AZURE_FEED_FIRST_PAT"},
		{URL: "https://second.example.com/v3/index.json", SecretKeyName: "AZURE_FEED_SECOND_PAT"},
	}))

	var out endpointCredentials
	require.NoError(t, json.Unmarshal([]byte(os.Getenv(EnvEndpoints)), &out))
	require.Len(t, out.EndpointCredentials, 1)
	assert.EqualValues(t, "https://first.example.com/v3/index.json", out.EndpointCredentials[0].Endpoint)
	assert.EqualValues(t, "Unused", out.EndpointCredentials[0].Username)
	assert.EqualValues(t, "one", out.EndpointCredentials[0].Password)

	secret, ok := p.Credential("https://first.example.com/v3/index.json")
	assert.True(t, ok)
	assert.EqualValues(t, "one", secret)

	_, ok = p.Credential("https://second.example.com/v3/index.json")
	assert.False(t, ok)
}

func TestProviderSetup_KeepsHostPath(t *testing.T) {
	ctx := logr.NewContext(context.TODO(), testr.NewWithOptions(t, testr.Options{Verbosity: 10}))

	t.Setenv(EnvEndpoints, "")
	t.Setenv(EnvHostPath, "/usr/share/dotnet/dotnet")

	p := &ProviderSetup{}
	require.NoError(t, p.Prepare(ctx, MapEnvironment{}, nil))
	assert.EqualValues(t, "/usr/share/dotnet/dotnet", os.Getenv(EnvHostPath))
}
