package search

import (
	"errors"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/hashicorp/go-multierror"
	"gopkg.in/yaml.v3"
)

func TestConfigYAML(t *testing.T) {
	const doc = `
name: mywiki
base_url: https://wiki.example.org/
api_path: api.php
web_path: index.php/
user_agent: test agent
timeout: 5s
headers:
  Api-User-Agent: me@example.org
params:
  gsrlimit: "20"
html_extracts: true
thumbnails: true
`

	var cfg Config
	if err := yaml.Unmarshal([]byte(doc), &cfg); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	if cfg.Timeout.Duration != 5*time.Second {
		t.Errorf("timeout = %v", cfg.Timeout)
	}
	if cfg.Headers["Api-User-Agent"] != "me@example.org" || cfg.ExtraParams["gsrlimit"] != "20" {
		t.Errorf("maps not decoded: %+v", cfg)
	}
	if p := cfg.Params("cat"); p.Get("gsrlimit") != "20" {
		t.Errorf("params from the file not sent: gsrlimit=%q", p.Get("gsrlimit"))
	}
	if !cfg.HTMLExtracts || !cfg.Thumbnails {
		t.Errorf("flags not decoded: %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected valid config, got %v", err)
	}

	hc := cfg.NewHttpClient()
	if hc.UserAgent != "test agent" || hc.Timeout != 5*time.Second {
		t.Errorf("client not configured from config: %+v", hc)
	}
}

func TestConfigYAMLBadTimeout(t *testing.T) {
	for _, doc := range []string{"timeout: 5", "timeout: soon", "timeout: [1]"} {
		var cfg Config
		if err := yaml.Unmarshal([]byte(doc), &cfg); err == nil {
			t.Errorf("%q: expected an error", doc)
		}
	}
}

func TestConfigValidate(t *testing.T) {
	cfg := Config{
		APIPath:    "w/api.php",
		MobilePath: "ftp://m.example.org/",
		Timeout:    Duration{-time.Second},
	}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected an error")
	}

	var merr *multierror.Error
	if !errors.As(err, &merr) {
		t.Fatalf("expected *multierror.Error, got %T", err)
	}

	// Name, base URL, both relative URLs, mobile scheme and timeout.
	if len(merr.Errors) < 5 {
		t.Errorf("expected every problem to be reported, got %v", merr.Errors)
	}
	if !strings.Contains(err.Error(), "negative timeout") {
		t.Errorf("missing timeout error in %v", err)
	}
}

func TestConfigValidateOrder(t *testing.T) {
	cfg := Config{
		Name:       "gopher",
		BaseURL:    "gopher://example.org/",
		MobilePath: "ftp://m.example.org/",
	}

	var fields []string
	for i := 0; i < 10; i++ {
		var merr *multierror.Error
		if !errors.As(cfg.Validate(), &merr) {
			t.Fatalf("expected *multierror.Error")
		}

		got := make([]string, 0, len(merr.Errors))
		for _, err := range merr.Errors {
			for _, f := range []string{"api_path", "web_path", "mobile_path"} {
				if strings.Contains(err.Error(), f) {
					got = append(got, f)
				}
			}
		}

		if i == 0 {
			fields = got
		} else if !slices.Equal(got, fields) {
			t.Fatalf("errors reported in a different order: %v, then %v", fields, got)
		}
	}

	exp := []string{"api_path", "web_path", "mobile_path"}
	if !slices.Equal(fields, exp) {
		t.Errorf("errors in order %v, expected %v", fields, exp)
	}
}

func TestPresetsValid(t *testing.T) {
	for _, name := range Supported() {
		cfg, err := Site(name)
		if err != nil {
			t.Fatalf("Site(%q): %v", name, err)
		}
		if cfg.Name != name {
			t.Errorf("preset %q has name %q", name, cfg.Name)
		}
		if err := cfg.Validate(); err != nil {
			t.Errorf("preset %q: %v", name, err)
		}
	}
}

func TestSite(t *testing.T) {
	if !slices.Contains(Supported(), DefaultSite) {
		t.Errorf("default site %q is not a preset", DefaultSite)
	}

	_, err := Site("nonexistent")
	if !errors.Is(err, errors.ErrUnsupported) {
		t.Errorf("expected ErrUnsupported, got %v", err)
	}
}

func TestAddDuplicate(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Errorf("adding a duplicate site did not panic")
		}
	}()

	Add(DefaultSite, Config{})
}
