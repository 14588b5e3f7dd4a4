package engtest

import (
	"os"
	"path/filepath"

	"github.com/valyala/fasthttp"
)

// mockTransport implements [github.com/valyala/fasthttp.RoundTripper] and
// intercepts all requests to either return the recorded response or to
// request a new copy for the recording.
type mockTransport struct {
	// Base directory to read/write files.
	//
	// If the directory does not exist, it will be created for you.
	Base string

	// Update will actually perform the requests and save the responses to
	// disk instead of simply mocking the response.
	Update bool

	// URI of the last request that passed through.
	lastURI string
}

// RoundTrip handles requests to a HTTP server by either responding to them by
// looking at the recording or by actually requesting data from the server
// and recording it.
func (ms *mockTransport) RoundTrip(hc *fasthttp.HostClient, req *fasthttp.Request, resp *fasthttp.Response) (retry bool, err error) {
	ms.lastURI = req.URI().String()

	if ms.Update {
		return false, ms.updateHandle(req, resp)
	}
	return false, ms.mockHandle(resp)
}

// Default mocking request handler.
// This reads the recording and returns it as a JSON response.
func (ms *mockTransport) mockHandle(res *fasthttp.Response) error {
	body, err := os.ReadFile(filepath.Join(ms.Base, "response.json"))
	if err != nil {
		return err
	}

	res.SetStatusCode(fasthttp.StatusOK)
	res.Header.SetContentType("application/json; charset=utf-8")
	res.SetBody(body)
	return nil
}

// Handles requests when Update mode is on.
func (ms *mockTransport) updateHandle(req *fasthttp.Request, res *fasthttp.Response) error {
	client := &fasthttp.Client{
		DialDualStack: true,

		// Don't add anything else to my request.
		NoDefaultUserAgentHeader: true,
	}

	// Ask for an uncompressed body so the recording is readable.
	req.Header.Del("Accept-Encoding")

	if err := client.DoRedirects(req, res, 5); err != nil {
		return err
	}

	if err := os.MkdirAll(ms.Base, 0755); err != nil {
		return err
	}

	return os.WriteFile(filepath.Join(ms.Base, "response.json"), res.Body(), 0644)
}
