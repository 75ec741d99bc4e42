package credentials

import (
	"context"
	"testing"

	"github.com/go-logr/logr"
	"github.com/go-logr/logr/testr"
	"github.com/stretchr/testify/assert"
)

func TestSecretKeyName(t *testing.T) {
	var cases = []struct {
		in  string
		out string
	}{
		{"my-org", "AZURE_FEED_MY_ORG_PAT"},
		{"my org", "AZURE_FEED_MY_ORG_PAT"},
		{"Contoso", "AZURE_FEED_CONTOSO_PAT"},
		{"a-b c", "AZURE_FEED_A_B_C_PAT"},
	}

	for _, tt := range cases {
		t.Run(tt.in, func(t *testing.T) {
			assert.EqualValues(t, tt.out, SecretKeyName(tt.in))
		})
	}
}

func TestAPIKeyFuncs(t *testing.T) {
	ctx := logr.NewContext(context.TODO(), testr.NewWithOptions(t, testr.Options{Verbosity: 10}))

	env := MapEnvironment{
		"PRESENT": "hunter2",
		"EMPTY":   "",
	}

	var cases = []struct {
		name   string
		fn     APIKeyFunc
		secret string
		key    string
		ok     bool
	}{
		{"plain present", PlainAPIKey, "PRESENT", "hunter2", true},
		{"plain empty", PlainAPIKey, "EMPTY", "", false},
		{"plain missing", PlainAPIKey, "MISSING", "", false},
		{"plain unnamed", PlainAPIKey, "", "", false},
		{"provider present", ProviderKey, "PRESENT", ProviderAPIKey, true},
		{"provider missing", ProviderKey, "MISSING", "", false},
	}

	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			key, ok := tt.fn(ctx, env, tt.secret)
			assert.EqualValues(t, tt.ok, ok)
			assert.EqualValues(t, tt.key, key)
		})
	}
}

func TestOSEnvironment_LookupEnv(t *testing.T) {
	ctx := logr.NewContext(context.TODO(), testr.NewWithOptions(t, testr.Options{Verbosity: 10}))

	t.Setenv("AYF_TEST_SECRET", "value")
	t.Setenv("AYF_TEST_EMPTY", "")

	env := &OSEnvironment{}

	v, ok := env.LookupEnv(ctx, "AYF_TEST_SECRET")
	assert.True(t, ok)
	assert.EqualValues(t, "value", v)

	_, ok = env.LookupEnv(ctx, "AYF_TEST_EMPTY")
	assert.False(t, ok)
}
