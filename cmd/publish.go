package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/djcass44/all-your-feeds/pkg/airutil"
	"github.com/djcass44/all-your-feeds/pkg/archiveutil"
	ayfv1 "github.com/djcass44/all-your-feeds/pkg/api/v1"
	"github.com/djcass44/all-your-feeds/pkg/artifact"
	"github.com/djcass44/all-your-feeds/pkg/credentials"
	"github.com/djcass44/all-your-feeds/pkg/feeds"
	"github.com/djcass44/all-your-feeds/pkg/nuget"
	"github.com/djcass44/all-your-feeds/pkg/receipt"
	"github.com/djcass44/all-your-feeds/pkg/sources"
	"github.com/go-logr/logr"
	"github.com/spf13/cobra"
	"k8s.io/apimachinery/pkg/util/yaml"
)

var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "publish build output to one or more feeds",
	RunE:  publish,
}

const (
	flagConfig      = "config"
	flagParallel    = "parallel"
	flagInteractive = "interactive"
	flagConcurrency = "concurrency"
	flagNoReceipt   = "no-receipt"
	flagPushTimeout = "push-timeout"
)

func init() {
	publishCmd.Flags().StringP(flagConfig, "c", "", "path to a publish configuration file")
	publishCmd.Flags().Bool(flagParallel, false, "publish to feeds concurrently")
	publishCmd.Flags().BoolP(flagInteractive, "i", false, "prompt for secrets that are not set")
	publishCmd.Flags().Int(flagConcurrency, 4, "maximum number of concurrent requests per feed")
	publishCmd.Flags().Bool(flagNoReceipt, false, "skip writing the publish receipt")
	publishCmd.Flags().Duration(flagPushTimeout, nuget.PushTimeout, "maximum time a single package upload may take")

	_ = publishCmd.MarkFlagRequired(flagConfig)
	_ = publishCmd.MarkFlagFilename(flagConfig, ".yaml", ".yml")
}

func publish(cmd *cobra.Command, _ []string) error {
	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	log := logr.FromContextOrDiscard(ctx)

	configPath, _ := cmd.Flags().GetString(flagConfig)
	parallel, _ := cmd.Flags().GetBool(flagParallel)
	interactive, _ := cmd.Flags().GetBool(flagInteractive)
	concurrency, _ := cmd.Flags().GetInt(flagConcurrency)
	noReceipt, _ := cmd.Flags().GetBool(flagNoReceipt)
	pushTimeout, _ := cmd.Flags().GetDuration(flagPushTimeout)

	// read the config file
	cfg, err := readConfig(configPath)
	if err != nil {
		return err
	}
	configPath, err = filepath.Abs(configPath)
	if err != nil {
		return err
	}
	// relative paths in the config file are relative to
	// the file itself
	wd := filepath.Dir(configPath)
	outputDir := resolvePath(wd, cfg.Spec.OutputDirectory)
	log.V(1).Info("resolved output directory", "dir", outputDir)

	candidates, err := readCandidates(ctx, cfg.Spec, outputDir)
	if err != nil {
		return err
	}

	registry, err := newRegistry(ctx, wd, cfg.Spec.SourcesConfig)
	if err != nil {
		return err
	}

	session := feeds.NewSession(ctx, registry,
		feeds.WithEnvironment(&credentials.OSEnvironment{Interactive: interactive}),
		feeds.WithConcurrency(concurrency),
		feeds.WithPushTimeout(pushTimeout),
	)
	targets, err := newFeeds(ctx, session, wd, cfg.Spec.Feeds)
	if err != nil {
		return err
	}

	if err := feeds.PublishAll(ctx, targets, candidates, outputDir, parallel); err != nil {
		return err
	}

	if noReceipt {
		return nil
	}
	out := receipt.New(cfg.Name, session.ID())
	for _, f := range targets {
		if err := out.Add(ctx, f, outputDir); err != nil {
			return err
		}
	}
	return out.Write(ctx, configPath)
}

func readConfig(s string) (ayfv1.Publish, error) {
	f, err := os.Open(s)
	if err != nil {
		return ayfv1.Publish{}, err
	}
	defer f.Close()

	var config ayfv1.Publish
	if err := yaml.NewYAMLOrJSONDecoder(f, 4).Decode(&config); err != nil {
		return ayfv1.Publish{}, err
	}
	return config, nil
}

// readCandidates returns the packages listed in the config file. When
// none are listed, every package in the output directory is used.
func readCandidates(ctx context.Context, spec ayfv1.PublishSpec, outputDir string) (*artifact.Candidates, error) {
	packages := spec.Packages
	if len(packages) == 0 {
		logr.FromContextOrDiscard(ctx).Info("no packages configured, reading them from the output directory")
		manifests, err := archiveutil.Discover(ctx, outputDir)
		if err != nil {
			return nil, err
		}
		for _, m := range manifests {
			packages = append(packages, ayfv1.Package{Name: m.ID, Version: m.Version})
		}
	}
	if len(packages) == 0 {
		return nil, errors.New("no packages to publish")
	}
	candidates := &artifact.Candidates{}
	for _, p := range packages {
		name, version := p.Name, p.Version
		airutil.ExpandAll(&name, &version)

		i, err := artifact.New(name, version)
		if err != nil {
			return nil, err
		}
		if err := candidates.Add(i); err != nil {
			return nil, err
		}
	}
	return candidates, nil
}

func newRegistry(ctx context.Context, wd, sourcesConfig string) (*sources.Registry, error) {
	if sourcesConfig == "" {
		return sources.NewRegistry(ctx)
	}
	return sources.LoadConfig(ctx, resolvePath(wd, airutil.ExpandEnv(sourcesConfig)))
}

func newFeeds(ctx context.Context, session *feeds.Session, wd string, specs []ayfv1.Feed) ([]*feeds.Feed, error) {
	if len(specs) == 0 {
		return nil, errors.New("no feeds to publish to")
	}
	out := make([]*feeds.Feed, 0, len(specs))
	for idx, spec := range specs {
		airutil.ExpandAll(&spec.Path, &spec.Name, &spec.URL, &spec.SecretKeyName, &spec.Organization, &spec.Feed)

		var f *feeds.Feed
		var err error
		switch spec.Type {
		case ayfv1.FeedLocal:
			f, err = session.NewLocalFeed(ctx, resolvePath(wd, spec.Path))
		case ayfv1.FeedRemote:
			f, err = session.NewRemoteFeed(ctx, spec.Name, spec.URL, spec.SecretKeyName)
		case ayfv1.FeedAzureDevOps:
			f, err = session.NewOrganizationFeed(ctx, spec.Organization, spec.Feed, spec.Views)
		default:
			err = fmt.Errorf("unknown feed type: %q", spec.Type)
		}
		if err != nil {
			return nil, fmt.Errorf("feed %d: %w", idx, err)
		}
		out = append(out, f)
	}
	return out, nil
}

func resolvePath(wd, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(wd, path)
}
