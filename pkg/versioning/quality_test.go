package versioning

import (
	"testing"

	"github.com/Masterminds/semver/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQualities(t *testing.T) {
	var cases = []struct {
		in  string
		out []string
	}{
		{"2.0.0-ci.3", []string{QualityCI}},
		{"2.0.0-CI.3", []string{QualityCI}},
		{"1.4.0-build42", []string{QualityCI}},
		{"1.4.0-nightly.20240101", []string{QualityCI}},
		{"1.0.0-beta.1", []string{QualityPreview}},
		{"1.0.0-rc.2", []string{QualityPreview}},
		{"1.0.0-cidr", []string{QualityPreview}},
		{"1.0.0", []string{QualityLatest, QualityStable}},
		{"0.1.0", []string{QualityLatest, QualityStable}},
	}

	for _, tt := range cases {
		t.Run(tt.in, func(t *testing.T) {
			v, err := semver.NewVersion(tt.in)
			require.NoError(t, err)
			assert.EqualValues(t, tt.out, Qualities(v))
		})
	}
}

func TestQualities_Nil(t *testing.T) {
	assert.Empty(t, Qualities(nil))
}
