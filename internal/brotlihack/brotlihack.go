// Package brotlihack wraps the Brotli decoder so that trailing bytes after the
// end of a compressed stream are not treated as a failure.
//
// The decoder reports "brotli: excessive input" when anything follows the
// final meta-block, which some caching proxies in front of wikis produce.
// The data read up to that point is complete, so the error is turned into
// [io.EOF].
package brotlihack

import (
	"io"

	"github.com/andybalholm/brotli"
)

type reader struct {
	r *brotli.Reader
}

var (
	_ io.Reader = &reader{}
)

// NewReader creates a new wrapped Brotli decoder reading from r.
func NewReader(r io.Reader) io.Reader {
	return &reader{
		r: brotli.NewReader(r),
	}
}

func (b *reader) Read(data []byte) (n int, err error) {
	n, err = b.r.Read(data)
	if err != nil && err.Error() == "brotli: excessive input" {
		// The package does not export this error.
		err = io.EOF
	}

	return
}
