// Package search queries MediaWiki-compatible sites and turns their search
// results into display records.
package search

import (
	"errors"
	"fmt"
	"slices"
)

// DefaultSite is the preset used when no site is chosen.
const DefaultSite = "wikipedia"

var sites = map[string]Config{}

func init() {
	Add("wikipedia", Config{
		BaseURL:    "https://en.wikipedia.org/",
		MobilePath: "https://en.m.wikipedia.org/wiki/",
	})

	// Physiopedia serves articles from the root and has no mobile site.
	Add("physiopedia", Config{
		BaseURL: "https://www.physio-pedia.com/",
		APIPath: "api.php",
		WebPath: "https://www.physio-pedia.com/",
	})
}

// Add adds a site preset.
//
// If a name is already in use, Add panics.
func Add(name string, cfg Config) {
	if _, ok := sites[name]; ok {
		panic(fmt.Sprintf("name %q already taken", name))
	}

	cfg.Name = name
	sites[name] = cfg
}

// Site returns the preset registered under name.
//
// If no such preset exists, the error wraps [errors.ErrUnsupported].
func Site(name string) (Config, error) {
	cfg, ok := sites[name]
	if !ok {
		return Config{}, fmt.Errorf("site %q is not known: %w", name, errors.ErrUnsupported)
	}

	return cfg, nil
}

// Supported returns the names of all site presets in sorted order.
func Supported() []string {
	names := make([]string, 0, len(sites))
	for k := range sites {
		names = append(names, k)
	}
	slices.Sort(names)
	return names
}
