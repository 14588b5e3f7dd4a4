package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
)

// Page is a single entry of the "pages" object in a query response.
type Page struct {
	// ID is the page ID; the same value keys the page in [Pages].
	ID int `json:"pageid"`

	// Index is the position of the page in the search results, starting
	// at 1.
	Index int `json:"index"`

	// Title is the display title of the page. The API always includes it.
	Title string `json:"title"`

	// Extract is the introduction of the page, or nil if the API did not
	// send one.
	Extract *string `json:"extract,omitempty"`

	// Thumbnail is only present when page images were requested and the
	// page has one.
	Thumbnail *Thumbnail `json:"thumbnail,omitempty"`
}

// Thumbnail is a page image as returned by the PageImages extension.
type Thumbnail struct {
	Source string `json:"source"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
}

// Pages maps opaque page IDs to pages.
// The map order has no meaning; see [Page.Index].
type Pages map[string]Page

// ExtractOr returns the page extract, or def if there is none.
func (p Page) ExtractOr(def string) string {
	if p.Extract == nil {
		return def
	}
	return *p.Extract
}

// ParseError is returned when a response is not the JSON document we expect.
type ParseError struct {
	URL string
	Err error
}

func (p *ParseError) Error() string {
	return fmt.Sprintf("unexpected response from %q: %v", p.URL, p.Err)
}

func (p *ParseError) Unwrap() error {
	return p.Err
}

// APIError is an error reported by MediaWiki itself in an otherwise
// successful response.
type APIError struct {
	Code string `json:"code"`
	Info string `json:"info"`
}

func (a *APIError) Error() string {
	return fmt.Sprintf("api error %s: %s", a.Code, a.Info)
}

type queryResponse struct {
	// Present in every complete response, including ones without results.
	BatchComplete json.RawMessage `json:"batchcomplete"`

	Error *APIError `json:"error"`

	Query *struct {
		Pages Pages `json:"pages"`
	} `json:"query"`
}

// Query searches the site described by cfg for query and returns the raw
// pages.
//
// Errors are one of *[NetworkError], [HttpError], *[ParseError] or
// *[APIError]. The request is not retried.
//
// A search without hits yields an empty mapping and a nil error.
func Query(ctx context.Context, client *HttpClient, cfg Config, query string) (Pages, error) {
	endpoint := cfg.APIEndpoint() + "?" + cfg.Params(query).Encode()

	body, err := client.Get(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	pages, err := parseQueryResponse(body)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			return nil, apiErr
		}
		return nil, &ParseError{URL: endpoint, Err: err}
	}

	zerolog.Ctx(ctx).Debug().
		Str("site", cfg.Name).
		Str("query", query).
		Int("pages", len(pages)).
		Msg("query complete")

	return pages, nil
}

// Decodes the body of an action=query response.
func parseQueryResponse(body []byte) (Pages, error) {
	var res queryResponse
	// The body must be exactly one JSON value.
	if err := json.Unmarshal(body, &res); err != nil {
		return nil, err
	}

	if res.Error != nil {
		return nil, res.Error
	}

	if res.Query == nil {
		// MediaWiki leaves out "query" entirely when the generator
		// found nothing.
		if res.BatchComplete != nil {
			return Pages{}, nil
		}
		return nil, fmt.Errorf("response has no query object")
	}

	if res.Query.Pages == nil {
		return nil, fmt.Errorf("response has no query.pages object")
	}

	return res.Query.Pages, nil
}
