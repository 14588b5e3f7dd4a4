// Package engtest includes helpers for testing searches against canned API
// responses.
//
// A test case is a query. Its fixture lives in
// testdata/<site>/<encoded query>/ and holds an API response body
// (response.json) and the records that body is expected to normalize to
// (records.json). Responses are either recorded with -update or written by
// hand, trimmed to the fields the search reads; a hand-written response
// should stay in the shape MediaWiki actually returns.
//
// The HTTP client is mocked at the fasthttp transport so the whole request
// path runs without touching the network.
//
// # Updating fixtures
//
// Run the tests with -update to perform the requests for real and overwrite
// both files. Review the new records.json before committing it; it is
// written from whatever the code currently produces.
package engtest

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/valyala/fasthttp"

	"git.sr.ht/~cmcevoy/wikisearch/search"
)

// Tester is the contextual struct for testing a site.
type Tester struct {
	// site is the name used for the testdata directory.
	site string

	// cfg is the site configuration queries run with.
	cfg search.Config
}

var (
	// Specifying the -update option when testing (go test -update ./...)
	// will actually perform the requests and save the updated responses
	// instead of simply mocking them and reading them from disk.
	update = flag.Bool("update", false, "Update test fixtures by actually doing the request")
)

// New creates a new Tester for a site.
//
// If cfg has no BaseURL, the preset registered under site is used instead.
// If there is no such preset, New panics.
func New(site string, cfg search.Config) *Tester {
	if cfg.BaseURL == "" {
		preset, err := search.Site(site)
		if err != nil {
			panic(err)
		}
		cfg = preset
	}

	return &Tester{
		site: site,
		cfg:  cfg,
	}
}

func (tt *Tester) dir(query string) string {
	return filepath.Join("testdata", tt.site, fnencode(query))
}

// RunTest runs a test for the site on a specific query.
//
// If -update was passed to go test, or there is no fixture yet, the search is
// actually performed and its results are saved to disk.
func (tt *Tester) RunTest(t *testing.T, query string) {
	fp := tt.dir(query)
	notExist := false
	if _, err := os.Stat(filepath.Join(fp, "response.json")); err != nil {
		notExist = true
	}

	testFn := tt.mockTestFn(query)
	if *update || notExist {
		if !*update {
			t.Logf("automatically entering update mode for %q", query)
		}
		testFn = tt.updateTestFn(query)
	}

	t.Run(fmt.Sprintf("%s:%q", tt.site, query), testFn)
}

// RunTests is a wrapper function around [Tester.RunTest] to run several tests
// at once.
//
// If -update is passed to go test, RunTests waits a second between queries to
// stay well within the API's rate limits.
func (tt *Tester) RunTests(t *testing.T, queries ...string) {
	for i, q := range queries {
		tt.RunTest(t, q)

		if *update && i != len(queries)-1 {
			time.Sleep(time.Second)
		}
	}
}

// Runs query through a client whose requests are served by tp.
func (tt *Tester) search(tp *mockTransport, query string) ([]search.Record, error) {
	client := tt.cfg.NewHttpClient()
	client.Client().ConfigureClient = func(hc *fasthttp.HostClient) error {
		hc.Transport = tp
		return nil
	}

	pages, err := search.Query(context.TODO(), client, tt.cfg, query)
	if err != nil {
		return nil, err
	}

	return search.Normalize(pages, tt.cfg), nil
}

// Mocks the remote end and compares results.
func (tt *Tester) mockTestFn(query string) func(t *testing.T) {
	tp := &mockTransport{Base: tt.dir(query)}

	return func(t *testing.T) {
		res, err := tt.search(tp, query)
		if err != nil {
			t.Fatalf("query failed: %v", err)
		}

		tt.checkRequest(t, tp.lastURI, query)
		tt.compareResults(t, query, res)
	}
}

// Performs the search query and saves the results.
func (tt *Tester) updateTestFn(query string) func(t *testing.T) {
	tp := &mockTransport{Base: tt.dir(query), Update: true}

	return func(t *testing.T) {
		res, err := tt.search(tp, query)
		if err != nil {
			t.Fatalf("query failed: %v", err)
		} else if len(res) == 0 {
			t.Fatalf("query returned zero results")
		}

		tt.saveResults(query, res)
		t.Logf("updated test files for %q", query)
	}
}

// Makes sure the request went to the API with the query in it.
func (tt *Tester) checkRequest(t *testing.T, uri, query string) {
	u, err := url.Parse(uri)
	if err != nil {
		t.Fatalf("request URI %q: %v", uri, err)
	}

	if !strings.HasPrefix(uri, tt.cfg.APIEndpoint()) {
		t.Errorf("request went to %q, expected %q", uri, tt.cfg.APIEndpoint())
	}

	if got := u.Query().Get("gsrsearch"); got != query {
		t.Errorf("gsrsearch = %q, expected %q", got, query)
	}
}

// Save the records produced from the response to disk.
//
// This is called only by [Tester.updateTestFn].
func (tt *Tester) saveResults(query string, res []search.Record) {
	h, err := os.Create(filepath.Join(tt.dir(query), "records.json"))
	if err != nil {
		panic(err)
	}
	defer h.Close()

	enc := json.NewEncoder(h)
	enc.SetIndent("", "\t")
	if err := enc.Encode(res); err != nil {
		panic(err)
	}
}

// Compare records from the search to expected records.
//
// This is called only by [Tester.mockTestFn].
func (tt *Tester) compareResults(t *testing.T, query string, res []search.Record) {
	h, err := os.Open(filepath.Join(tt.dir(query), "records.json"))
	if err != nil {
		panic(err)
	}
	defer h.Close()

	exp := []search.Record{}
	if err := json.NewDecoder(h).Decode(&exp); err != nil {
		panic(err)
	}

	if diff := cmp.Diff(exp, res); diff != "" {
		t.Errorf("records differ (-want +got):\n%s", diff)
	}
}

// Reencodes queries to be marginally more safer as filenames.
func fnencode(query string) string {
	return strings.Map(func(r rune) rune {
		if r >= 'a' && r <= 'z' {
			return r
		} else if r >= 'A' && r <= 'Z' {
			return 'a' + (r - 'A')
		}
		return '-'
	}, query)
}
