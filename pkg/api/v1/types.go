package v1

import metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

type FeedType string

const (
	FeedLocal       FeedType = "Local"
	FeedRemote      FeedType = "Remote"
	FeedAzureDevOps FeedType = "AzureDevOps"
)

type PublishSpec struct {
	// OutputDirectory holds the packages produced by the build.
	OutputDirectory string `json:"outputDirectory"`
	// SourcesConfig is an optional NuGet.Config used to seed the
	// package sources.
	SourcesConfig string    `json:"sourcesConfig,omitempty"`
	Packages      []Package `json:"packages,omitempty"`
	Feeds         []Feed    `json:"feeds,omitempty"`
}

type Package struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// Feed describes a publish destination. Which fields apply
// depends on the Type.
type Feed struct {
	Type FeedType `json:"type"`

	// Local
	Path string `json:"path,omitempty"`

	// Remote
	Name          string `json:"name,omitempty"`
	URL           string `json:"url,omitempty"`
	SecretKeyName string `json:"secretKeyName,omitempty"`

	// AzureDevOps
	Organization string `json:"organization,omitempty"`
	Feed         string `json:"feed,omitempty"`
	Views        bool   `json:"views,omitempty"`
}

type Publish struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`

	Spec PublishSpec `json:"spec"`
}
