package search

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
	"gopkg.in/yaml.v3"
)

// Config describes a single MediaWiki-compatible site and how to query it.
//
// A Config is a plain value: it is passed explicitly to every operation and
// should not be modified once it has been handed to one. Targeting a
// different wiki means using a different Config, see [Add] and [Site].
//
// The struct may be decoded from YAML configuration files.
type Config struct {
	// Name of the site, used in logs and for looking up presets.
	Name string `yaml:"name,omitempty"`

	// BaseURL is the root of the wiki, such as "https://en.wikipedia.org/".
	// Relative paths below are appended to it verbatim.
	BaseURL string `yaml:"base_url"`

	// APIPath locates api.php.
	// It may be an absolute URL or a path relative to BaseURL.
	//
	// If left empty, then [DefaultAPIPath] is used.
	APIPath string `yaml:"api_path,omitempty"`

	// WebPath is the prefix that page titles are appended to when building
	// links to articles.
	// It may be an absolute URL or a path relative to BaseURL.
	//
	// If left empty, then [DefaultWebPath] is used.
	WebPath string `yaml:"web_path,omitempty"`

	// MobilePath is the prefix for the mobile version of articles, used for
	// previews.
	// Unlike the other paths it has no default; previews fall back to the
	// regular article URL when it is empty.
	MobilePath string `yaml:"mobile_path,omitempty"`

	// User-Agent header value.
	//
	// If left empty, then [DefaultUserAgent] is used.
	UserAgent string `yaml:"user_agent,omitempty"`

	// Headers are sent with every API request.
	Headers map[string]string `yaml:"headers,omitempty"`

	// ExtraParams override or extend the fixed search parameters.
	// The search term itself cannot be overridden.
	ExtraParams map[string]string `yaml:"params,omitempty"`

	// Timeout is the total amount of time to wait for a response.
	//
	// Zero leaves the transport default in place, which never times out.
	Timeout Duration `yaml:"timeout,omitempty"`

	// HTMLExtracts should be set for wikis that cannot produce plain text
	// extracts. The explaintext flag is dropped and extracts are flattened
	// to text locally.
	HTMLExtracts bool `yaml:"html_extracts,omitempty"`

	// Thumbnails requests page thumbnails and uses them as result icons.
	Thumbnails bool `yaml:"thumbnails,omitempty"`
}

// Duration allows decoding time.Duration string values (such as "5s" or
// "15m") directly from YAML.
type Duration struct {
	time.Duration
}

// DefaultUserAgent is the user agent used when the UserAgent field in
// [Config] is left empty.
//
// Wikimedia asks API clients to identify themselves, so this is not a
// browser user agent.
const DefaultUserAgent = "Alfred Wikipedia Search 1.0.0"

// Default relative locations of the API and articles on a MediaWiki install.
const (
	DefaultAPIPath = "w/api.php"
	DefaultWebPath = "wiki/"
)

// Parameter carrying the search term.
const searchParam = "gsrsearch"

// Fixed parameters for a generator=search query returning intro extracts.
var searchParams = [][2]string{
	{"action", "query"},
	{"format", "json"},
	{"prop", "extracts"},
	{"generator", "search"},
	{"gsrnamespace", "0"},
	{"gsrlimit", "10"},
	{"redirects", "1"},
	{"explaintext", ""},
	{"exsentences", "5"},
	{"exintro", "2"},
	{"exlimit", "max"},
}

// Joins a base URL and a path unless the path is already absolute.
func (c Config) resolve(path string) string {
	if strings.Contains(path, "://") {
		return path
	}
	return c.BaseURL + path
}

// APIEndpoint returns the full URL of the site's api.php.
func (c Config) APIEndpoint() string {
	p := c.APIPath
	if p == "" {
		p = DefaultAPIPath
	}
	return c.resolve(p)
}

// WebURL returns the prefix of article URLs.
func (c Config) WebURL() string {
	p := c.WebPath
	if p == "" {
		p = DefaultWebPath
	}
	return c.resolve(p)
}

// MobileURL returns the prefix of mobile article URLs, or an empty string if
// the site has no mobile version configured.
func (c Config) MobileURL() string {
	if c.MobilePath == "" {
		return ""
	}
	return c.resolve(c.MobilePath)
}

// Params returns the query parameters for searching for query.
//
// A new set of values is built on each call.
func (c Config) Params(query string) url.Values {
	form := url.Values{}
	for _, kv := range searchParams {
		if kv[0] == "explaintext" && c.HTMLExtracts {
			continue
		}
		form.Set(kv[0], kv[1])
	}

	if c.Thumbnails {
		form.Set("prop", "extracts|pageimages")
		form.Set("piprop", "thumbnail")
		form.Set("pilimit", "max")
	}

	for k, v := range c.ExtraParams {
		form.Set(k, v)
	}

	form.Set(searchParam, query)
	return form
}

// Validate checks that the configuration can be used to query a site.
//
// All problems are reported at once.
func (c Config) Validate() error {
	var result *multierror.Error

	if c.Name == "" {
		result = multierror.Append(result, fmt.Errorf("site has no name"))
	}

	if c.BaseURL == "" && !strings.Contains(c.APIPath, "://") {
		result = multierror.Append(result, fmt.Errorf("site %q: base_url is required unless api_path is absolute", c.Name))
	}

	for _, f := range [...]struct{ field, v string }{
		{"api_path", c.APIEndpoint()},
		{"web_path", c.WebURL()},
		{"mobile_path", c.MobileURL()},
	} {
		field, v := f.field, f.v
		if v == "" {
			continue
		}

		u, err := url.Parse(v)
		if err != nil {
			result = multierror.Append(result, fmt.Errorf("site %q: %s: %w", c.Name, field, err))
		} else if u.Scheme != "http" && u.Scheme != "https" {
			result = multierror.Append(result, fmt.Errorf("site %q: %s %q is not an http(s) URL", c.Name, field, v))
		}
	}

	if c.Timeout.Duration < 0 {
		result = multierror.Append(result, fmt.Errorf("site %q: negative timeout", c.Name))
	}

	return result.ErrorOrNil()
}

// NewHttpClient creates a [HttpClient] according to values set in the
// configuration.
func (c Config) NewHttpClient() *HttpClient {
	userAgent := c.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}

	return &HttpClient{
		Timeout:   c.Timeout.Duration,
		UserAgent: userAgent,
		Headers:   c.Headers,
	}
}

// UnmarshalYAML attempts to parse a YAML string into a [time.Duration].
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode || node.Tag != "!!str" {
		return fmt.Errorf("expected duration string, got %v", node.Tag)
	}

	var err error
	d.Duration, err = time.ParseDuration(node.Value)
	return err
}

// MarshalYAML writes the duration in the same form it is read.
func (d Duration) MarshalYAML() (any, error) {
	return d.Duration.String(), nil
}
