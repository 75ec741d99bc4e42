package feeds

import (
	"context"
	"fmt"
	"slices"

	"github.com/djcass44/all-your-feeds/pkg/artifact"
	"github.com/djcass44/all-your-feeds/pkg/nuget"
	"github.com/go-logr/logr"
)

// Initialize works out which candidates still need to be pushed.
// Calling it again replaces the previous result. Organisation feeds
// prepare the credential provider first.
func (f *Feed) Initialize(ctx context.Context, candidates *artifact.Candidates) error {
	log := logr.FromContextOrDiscard(ctx).WithValues("feed", f.name)

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state != StateUninitialized && f.state != StatePendingComputed {
		return f.wrap("initialize", fmt.Errorf("%w: cannot initialize a feed in state %s", ErrInvalidState, f.state))
	}

	if f.caps.prepare != nil {
		ok, err := f.caps.prepare(ctx, f)
		if err != nil {
			return f.wrap("authenticate", err)
		}
		if !ok {
			// the feed cannot be queried and Publish will skip it
			log.Info("warning: not checking for published packages as no credentials could be found", "secret", f.secretKeyName)
			pending, err := artifact.NewCandidates(candidates.Items()...)
			if err != nil {
				return f.wrap("check", err)
			}
			f.pending = pending
			f.published = 0
			f.state = StatePendingComputed
			return nil
		}
	}

	log.Info("checking for published packages", "candidates", candidates.Len())
	pending, published, err := nuget.ComputePending(ctx, f.target, candidates, f.session.concurrency)
	if err != nil {
		return f.wrap("check", err)
	}
	f.pending = pending
	f.published = published
	f.state = StatePendingComputed

	log.Info("computed packages to publish", "pending", pending.Len(), "alreadyPublished", published)
	return nil
}

// Publish pushes every pending package found in outputDirectory. A
// feed without credentials is skipped without error.
func (f *Feed) Publish(ctx context.Context, outputDirectory string) error {
	log := logr.FromContextOrDiscard(ctx).WithValues("feed", f.name)

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state != StatePendingComputed {
		return f.wrap("publish", fmt.Errorf("%w: cannot publish a feed in state %s", ErrInvalidState, f.state))
	}

	apiKey, ok, err := f.caps.apiKey(ctx, f)
	if err != nil {
		return f.wrap("authenticate", err)
	}
	if !ok {
		log.Info("warning: skipping feed as no credentials could be found", "secret", f.secretKeyName)
		f.skipped = true
		f.state = StateDone
		return nil
	}

	for _, i := range f.pending.Items() {
		if err := f.target.Push(ctx, i, i.Path(outputDirectory), apiKey); err != nil {
			return f.wrap("push", err)
		}
		f.pushed = append(f.pushed, i)
	}
	f.state = StatePushed
	log.Info("pushed packages", "count", len(f.pushed))

	if f.caps.postPush != nil {
		if err := f.caps.postPush(ctx, f, slices.Clone(f.pushed)); err != nil {
			return f.wrap("promote", err)
		}
		f.state = StatePromoted
	}
	f.state = StateDone
	return nil
}

func (f *Feed) Name() string {
	return f.name
}

func (f *Feed) Variant() Variant {
	return f.variant
}

func (f *Feed) Location() string {
	return f.target.Location()
}

func (f *Feed) SecretKeyName() string {
	return f.secretKeyName
}

func (f *Feed) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Pending returns the packages that still need to be pushed.
func (f *Feed) Pending() []artifact.Instance {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pending.Items()
}

// AlreadyPublished is the number of candidates found on the feed.
func (f *Feed) AlreadyPublished() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.published
}

// Pushed returns the packages pushed by Publish.
func (f *Feed) Pushed() []artifact.Instance {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.pushed)
}

// Skipped reports whether Publish skipped the feed for lack
// of credentials.
func (f *Feed) Skipped() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.skipped
}
