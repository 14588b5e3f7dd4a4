package main

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"git.sr.ht/~cmcevoy/wikisearch/search"
)

func writeConfig(t *testing.T, doc string) string {
	fp := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(fp, []byte(doc), 0644); err != nil {
		t.Fatal(err)
	}
	return fp
}

func TestLoadConfig(t *testing.T) {
	fp := writeConfig(t, `
site: mywiki
thumbnails: true
cache_dir: /tmp/wikisearch-test
sites:
  mywiki:
    base_url: https://wiki.example.org/
    timeout: 3s
`)

	cfg, err := loadConfig(fp)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}

	if cfg.Addr != defaultConfig.Addr {
		t.Errorf("default addr lost: %q", cfg.Addr)
	}
	if cfg.CacheDir != "/tmp/wikisearch-test" {
		t.Errorf("cache_dir = %q", cfg.CacheDir)
	}

	site, err := cfg.site("")
	if err != nil {
		t.Fatal(err)
	}
	if site.Name != "mywiki" || site.APIEndpoint() != "https://wiki.example.org/w/api.php" {
		t.Errorf("unexpected default site %+v", site)
	}
	if !site.Thumbnails {
		t.Errorf("global thumbnails setting not applied")
	}

	// Built-in sites are still reachable.
	wp, err := cfg.site("wikipedia")
	if err != nil || wp.MobileURL() == "" {
		t.Errorf("wikipedia preset: %+v, %v", wp, err)
	}

	all := cfg.allSites()
	for _, name := range append(search.Supported(), "mywiki") {
		if _, ok := all[name]; !ok {
			t.Errorf("%q missing from allSites", name)
		}
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := loadConfig(writeConfig(t, "debug: true\n"))
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}

	if !cfg.Debug || cfg.Site != search.DefaultSite {
		t.Errorf("unexpected config %+v", cfg)
	}
}

func TestLoadConfigEmpty(t *testing.T) {
	cfg, err := loadConfig(writeConfig(t, "# nothing yet\n"))
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Site != defaultConfig.Site || cfg.Addr != defaultConfig.Addr {
		t.Errorf("unexpected config %+v", cfg)
	}
}

func TestLoadConfigInvalid(t *testing.T) {
	fp := writeConfig(t, `
site: nowhere
sites:
  broken:
    base_url: ""
  alsobroken:
    base_url: gopher://example.org/
`)

	_, err := loadConfig(fp)
	if err == nil {
		t.Fatal("expected an error")
	}

	// Every problem is reported.
	for _, s := range []string{`"nowhere"`, `"broken"`, `"alsobroken"`} {
		if !strings.Contains(err.Error(), s) {
			t.Errorf("error does not mention %s: %v", s, err)
		}
	}
}

func TestLoadConfigMissing(t *testing.T) {
	_, err := loadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("expected fs.ErrNotExist, got %v", err)
	}
}

func TestConfigUnknownSite(t *testing.T) {
	if _, err := defaultConfig.site("nonexistent"); !errors.Is(err, errors.ErrUnsupported) {
		t.Errorf("expected ErrUnsupported, got %v", err)
	}
}
