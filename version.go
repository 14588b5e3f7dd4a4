package main

import (
	"fmt"
	"runtime/debug"
	"sync"
)

// Semantic versioning components.
// Bump these when making a new release.
const (
	majorVer = 1
	minorVer = 0
	patchVer = 0
)

// Returns the version of wikisearch, including the commit it was built from
// when the build recorded it.
//
// `go run` does not record VCS information, so such builds read
// vX.Y.Z-unknown.
var version = sync.OnceValue(func() string {
	rev := "unknown"
	dirty := ""

	info, ok := debug.ReadBuildInfo()
	if ok {
		for _, kv := range info.Settings {
			switch kv.Key {
			case "vcs.revision":
				// Just use the short commit ID
				rev = shortRevision(kv.Value)
			case "vcs.modified":
				if kv.Value == "true" {
					dirty = "-dirty"
				}
			}
		}
	}

	return fmt.Sprintf("v%d.%d.%d-%s%s", majorVer, minorVer, patchVer, rev, dirty)
})

// Shortens a commit ID to 7 characters. An empty one is unknown.
func shortRevision(rev string) string {
	switch {
	case rev == "":
		return "unknown"
	case len(rev) > 7:
		return rev[:7]
	}
	return rev
}
