package nuget

import (
	"context"

	"github.com/djcass44/all-your-feeds/pkg/artifact"
	"github.com/go-logr/logr"
	"golang.org/x/sync/errgroup"
)

// ComputePending works out which candidates are not yet on the feed.
// Checks run concurrently but the result keeps the candidate order.
func ComputePending(ctx context.Context, checker ExistenceChecker, candidates *artifact.Candidates, concurrency int) (*artifact.Candidates, int, error) {
	log := logr.FromContextOrDiscard(ctx)

	items := candidates.Items()
	exists := make([]bool, len(items))

	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i := range items {
		g.Go(func() error {
			ok, err := checker.Exists(gctx, items[i])
			if err != nil {
				return err
			}
			exists[i] = ok
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}

	pending := &artifact.Candidates{}
	var published int
	for i, item := range items {
		if exists[i] {
			log.V(1).Info("skipping package as it has already been published", "pkg", item.Key())
			published++
			continue
		}
		if err := pending.Add(item); err != nil {
			return nil, 0, err
		}
	}
	log.V(2).Info("computed pending packages", "pending", pending.Len(), "published", published)
	return pending, published, nil
}
