package search

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"

	"git.sr.ht/~cmcevoy/wikisearch/internal/brotlihack"
)

// HttpClient is a helpful wrapper around [github.com/valyala/fasthttp.Client]
// that does useful things to HTTP requests and responses you would've had to
// write anyway.
//
// The zero value is ready to use and is safe for concurrent use once the
// first request has been made.
type HttpClient struct {
	// Timeout is the maximum amount of time to wait for reading or writing
	// a request.
	// Zero means no timeout.
	Timeout time.Duration

	// UserAgent holds the value of the User-Agent header of HTTP requests.
	//
	// If UserAgent is empty, then [DefaultUserAgent] is used.
	UserAgent string

	// Accept holds the value of the Accept header.
	//
	// If Accept is empty, then JSON is requested.
	Accept string

	// Headers are added to every request after the default ones, so they
	// may replace them.
	Headers map[string]string

	http *fasthttp.Client
	once sync.Once
}

// HttpError represents a response with a failure status code.
type HttpError struct {
	// Status code of response.
	Status int

	// URL of request.
	URL string

	// Method of request.
	Method string
}

func (h HttpError) Error() string {
	return fmt.Sprintf("%s %q failed with status code %d", h.Method, h.URL, h.Status)
}

// NetworkError is returned when a request could not be completed at all.
type NetworkError struct {
	URL string
	Err error
}

func (n *NetworkError) Error() string {
	return fmt.Sprintf("request to %q failed: %v", n.URL, n.Err)
}

func (n *NetworkError) Unwrap() error {
	return n.Err
}

// Ensures that the HttpClient is ready to perform requests.
func (h *HttpClient) ensureReady() {
	h.once.Do(func() {
		if h.http == nil {
			h.http = &fasthttp.Client{
				NoDefaultUserAgentHeader: true,
				DialDualStack:            true,
				ReadTimeout:              h.Timeout,
				WriteTimeout:             h.Timeout,
			}
		}
	})
}

// Client fetches the [github.com/valyala/fasthttp.Client] for this specific
// HTTP client.
//
// Do not change fields of the returned Client struct once you have performed a
// request.
func (h *HttpClient) Client() *fasthttp.Client {
	// This is a function because the HttpClient is lazily initialized.
	h.ensureReady()
	return h.http
}

// Get a non-empty user agent.
func (h *HttpClient) ua() string {
	if h.UserAgent == "" {
		return DefaultUserAgent
	}
	return h.UserAgent
}

func (h *HttpClient) accept() string {
	if h.Accept == "" {
		return "application/json"
	}
	return h.Accept
}

// Builds a GET request for uri.
func (h *HttpClient) newRequest(uri string) *fasthttp.Request {
	req := fasthttp.AcquireRequest()
	req.SetRequestURI(uri)
	req.Header.SetMethod(fasthttp.MethodGet)

	req.Header.Set("User-Agent", h.ua())
	req.Header.Set("Accept", h.accept())
	req.Header.Set("Accept-Encoding", "gzip, deflate, br")

	// Sorted so requests are reproducible.
	keys := make([]string, 0, len(h.Headers))
	for k := range h.Headers {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		req.Header.Set(k, h.Headers[k])
	}

	return req
}

// Get performs a GET request on a given URL and returns the decompressed
// body.
//
// If the request cannot be performed, err will be of type *[NetworkError].
// If the server responds with a non-2xx status code, then err will be of type
// [HttpError].
func (h *HttpClient) Get(ctx context.Context, uri string) ([]byte, error) {
	h.ensureReady()

	if err := ctx.Err(); err != nil {
		return nil, &NetworkError{URL: uri, Err: err}
	}

	log := zerolog.Ctx(ctx)

	req := h.newRequest(uri)
	defer fasthttp.ReleaseRequest(req)

	res := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(res)

	then := time.Now()
	if err := h.http.DoRedirects(req, res, 5); err != nil {
		return nil, &NetworkError{URL: uri, Err: err}
	}

	log.Debug().
		Str("url", uri).
		Int("status", res.StatusCode()).
		Dur("took", time.Since(then)).
		Msg("GET")

	if code := res.StatusCode(); code < 200 || code > 299 {
		// The request itself succeeded but we aren't interested in
		// anything we got due to the failure status.
		return nil, HttpError{Status: code, URL: uri, Method: fasthttp.MethodGet}
	}

	body, err := decodeBody(res)
	if err != nil {
		return nil, &NetworkError{URL: uri, Err: fmt.Errorf("failed to read body: %w", err)}
	}

	return body, nil
}

// Decompresses the body of res into a slice that outlives res.
func decodeBody(res *fasthttp.Response) ([]byte, error) {
	if string(res.Header.ContentEncoding()) == "br" {
		// Some servers append data after the end of the Brotli stream.
		return io.ReadAll(brotlihack.NewReader(bytes.NewReader(res.Body())))
	}

	body, err := res.BodyUncompressed()
	if err != nil {
		return nil, err
	}

	// Uncompressed bodies are owned by res.
	return bytes.Clone(body), nil
}
