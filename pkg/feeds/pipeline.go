package feeds

import (
	"context"

	"github.com/djcass44/all-your-feeds/pkg/artifact"
	"github.com/go-logr/logr"
	"golang.org/x/sync/errgroup"
)

// PublishAll initialises and publishes every feed. Feeds run one after
// another unless parallel is set, in which case the first failure
// cancels the remaining feeds.
func PublishAll(ctx context.Context, feeds []*Feed, candidates *artifact.Candidates, outputDirectory string, parallel bool) error {
	log := logr.FromContextOrDiscard(ctx)
	log.Info("publishing packages", "feeds", len(feeds), "packages", candidates.Len(), "parallel", parallel)

	if !parallel {
		for _, f := range feeds {
			if err := publishOne(ctx, f, candidates, outputDirectory); err != nil {
				return err
			}
		}
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, f := range feeds {
		g.Go(func() error {
			return publishOne(gctx, f, candidates, outputDirectory)
		})
	}
	return g.Wait()
}

func publishOne(ctx context.Context, f *Feed, candidates *artifact.Candidates, outputDirectory string) error {
	if err := f.Initialize(ctx, candidates); err != nil {
		return err
	}
	return f.Publish(ctx, outputDirectory)
}
