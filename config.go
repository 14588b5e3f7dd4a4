package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/hashicorp/go-multierror"
	"gopkg.in/yaml.v3"

	"git.sr.ht/~cmcevoy/wikisearch/search"
)

type config struct {
	// Site is the name of the site to search when none is given on the
	// command line.
	Site string `yaml:"site"`

	// Debug enables debug logging.
	Debug bool `yaml:"debug"`

	// Thumbnails turns on thumbnail icons for every site.
	Thumbnails bool `yaml:"thumbnails"`

	// CacheDir is where results and thumbnails are stored.
	//
	// If empty, the directory Alfred provides is used; outside of Alfred
	// a directory in the user cache is used.
	CacheDir string `yaml:"cache_dir"`

	// Addr is the address that the serve command listens on.
	Addr string `yaml:"addr"`

	// Sites defines additional sites.
	// A site with the same name as a built-in one replaces it entirely.
	Sites map[string]search.Config `yaml:"sites"`
}

var defaultConfig = config{
	Site: search.DefaultSite,
	Addr: "localhost:8080",
}

// Reads the configuration file at path on top of the defaults.
//
// Every site it defines is validated; all problems are reported together.
func loadConfig(path string) (config, error) {
	cfg := defaultConfig

	h, err := os.Open(path)
	if err != nil {
		return cfg, err
	}
	defer h.Close()

	// An empty file is fine; it just changes nothing.
	if err := yaml.NewDecoder(h).Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}

	var result *multierror.Error
	for name, site := range cfg.Sites {
		site.Name = name
		if err := site.Validate(); err != nil {
			result = multierror.Append(result, err)
		}
	}

	if cfg.Site == "" {
		cfg.Site = search.DefaultSite
	}
	if _, err := cfg.site(""); err != nil {
		result = multierror.Append(result, err)
	}

	return cfg, result.ErrorOrNil()
}

// Looks up a site by name, preferring sites from the configuration file over
// the built-in ones.
//
// An empty name selects the configured default site.
func (c config) site(name string) (search.Config, error) {
	if name == "" {
		name = c.Site
	}

	site, ok := c.Sites[name]
	if ok {
		site.Name = name
	} else {
		var err error
		if site, err = search.Site(name); err != nil {
			return site, err
		}
	}

	if c.Thumbnails {
		site.Thumbnails = true
	}

	return site, nil
}

// Returns all usable sites by name.
func (c config) allSites() map[string]search.Config {
	all := map[string]search.Config{}
	for _, name := range search.Supported() {
		all[name], _ = c.site(name)
	}
	for name := range c.Sites {
		all[name], _ = c.site(name)
	}
	return all
}
