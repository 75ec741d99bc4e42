package sources

import (
	"context"
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-logr/logr"
)

// LoadConfig reads the package sources out of a NuGet.Config file and
// uses them to build a Registry. Disabled sources are left out and
// relative paths resolve against the directory of the file.
func LoadConfig(ctx context.Context, path string) (*Registry, error) {
	log := logr.FromContextOrDiscard(ctx).WithValues("path", path)
	log.V(1).Info("reading package sources")

	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		log.Error(err, "failed to open package source configuration")
		return nil, err
	}
	defer f.Close()

	var cfg nugetConfig
	if err := xml.NewDecoder(f).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decoding xml configuration: %w", err)
	}

	disabled := map[string]bool{}
	for _, kv := range cfg.Disabled {
		if strings.EqualFold(kv.Value, "true") {
			disabled[kv.Key] = true
		}
	}

	dir := filepath.Dir(path)
	var configured []PackageSource
	for _, e := range cfg.PackageSources.Entries {
		switch e.XMLName.Local {
		case "clear":
			log.V(3).Info("clearing previously defined package sources", "count", len(configured))
			configured = nil
		case "add":
			if disabled[e.Key] {
				log.V(2).Info("skipping disabled package source", "name", e.Key)
				continue
			}
			configured = append(configured, PackageSource{
				Name:     e.Key,
				Location: resolveLocation(dir, e.Value),
			})
		}
	}
	return NewRegistry(ctx, configured...)
}

func resolveLocation(dir, location string) string {
	if strings.Contains(location, "://") || filepath.IsAbs(location) || location == "" {
		return location
	}
	return filepath.Join(dir, location)
}
