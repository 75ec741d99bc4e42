package receipt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/djcass44/all-your-feeds/pkg/feeds"
	"github.com/go-logr/logr"
	"golang.org/x/exp/maps"
)

const receiptVersion = 1

func New(name, sessionID string) *Receipt {
	return &Receipt{
		Name:           name,
		ReceiptVersion: receiptVersion,
		Session:        sessionID,
		Feeds:          map[string]Feed{},
	}
}

// Add records the outcome of a published feed. Pushed packages are
// hashed from outputDirectory.
func (r *Receipt) Add(ctx context.Context, f *feeds.Feed, outputDirectory string) error {
	log := logr.FromContextOrDiscard(ctx).WithValues("feed", f.Name())

	entry := Feed{
		Type:             f.Variant().String(),
		Location:         f.Location(),
		Skipped:          f.Skipped(),
		AlreadyPublished: f.AlreadyPublished(),
		Packages:         map[string]Package{},
	}
	for _, i := range f.Pushed() {
		digest, err := Sha256(i.Path(outputDirectory))
		if err != nil {
			log.Error(err, "failed to hash package", "pkg", i.Key())
			return err
		}
		entry.Packages[i.Key()] = Package{
			Name:      i.Name,
			Version:   i.VersionString(),
			Views:     viewsOf(f, i.Labels),
			Integrity: digest,
		}
	}
	r.Feeds[f.Name()] = entry
	log.V(2).Info("added feed to receipt", "packages", len(entry.Packages))
	return nil
}

// SortedKeys returns feed names sorted alphabetically.
func (r *Receipt) SortedKeys() []string {
	keys := maps.Keys(r.Feeds)
	sort.Strings(keys)
	return keys
}

// SortedKeys returns package keys sorted alphabetically.
func (f Feed) SortedKeys() []string {
	keys := maps.Keys(f.Packages)
	sort.Strings(keys)
	return keys
}

func (r *Receipt) Write(ctx context.Context, cfgPath string) error {
	log := logr.FromContextOrDiscard(ctx)
	path := Name(cfgPath)

	data, err := json.MarshalIndent(r, "", "\t")
	if err != nil {
		return fmt.Errorf("encoding receipt: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		log.Error(err, "failed to write receipt", "path", path)
		return err
	}
	log.Info("wrote receipt", "path", path)
	return nil
}

func Read(ctx context.Context, cfgPath string) (*Receipt, error) {
	log := logr.FromContextOrDiscard(ctx)
	f, err := os.Open(Name(cfgPath))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("missing receipt")
		}
		log.Error(err, "failed to open receipt")
		return nil, err
	}
	defer f.Close()

	var out Receipt
	if err := json.NewDecoder(f).Decode(&out); err != nil {
		log.Error(err, "failed to read receipt")
		return nil, err
	}
	return &out, nil
}

func Name(s string) string {
	return strings.TrimSuffix(s, filepath.Ext(s)) + "-receipt.json"
}

// viewsOf returns the views a package was promoted into, which is
// only the case for feeds that have views.
func viewsOf(f *feeds.Feed, labels []string) []string {
	if f.Variant() != feeds.VariantOrganizationViews {
		return nil
	}
	return labels
}
