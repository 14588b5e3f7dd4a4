package main

import (
	"context"
	"io"
	"path/filepath"
	"strings"

	aw "github.com/deanishe/awgo"
	"github.com/rs/zerolog"

	"git.sr.ht/~cmcevoy/wikisearch/internal/alfred"
	"git.sr.ht/~cmcevoy/wikisearch/search"
)

// Key the results are cached under.
const resultsKey = "results"

// Stages a search goes through.
type state int

const (
	idle state = iota
	querying
	normalizing
	emitting
	done
	failed
)

func (s state) String() string {
	switch s {
	case idle:
		return "idle"
	case querying:
		return "querying"
	case normalizing:
		return "normalizing"
	case emitting:
		return "emitting"
	case done:
		return "done"
	case failed:
		return "failed"
	}
	return "unknown"
}

// searcher runs queries against one site.
//
// It holds no per-query state and may be used by several goroutines.
type searcher struct {
	site search.Config
	http *search.HttpClient

	// Both are optional.
	cache  *alfred.Cache
	thumbs *search.Thumbnailer
}

// Creates a searcher for the named site, or the default one if name is empty.
func newSearcher(ctx context.Context, cfg config, name string) (*searcher, error) {
	site, err := cfg.site(name)
	if err != nil {
		return nil, err
	}

	s := &searcher{
		site: site,
		http: site.NewHttpClient(),
	}

	dir := cfg.CacheDir
	if dir == "" {
		dir, err = alfred.CacheDir()
		if err != nil {
			// Caching is not essential.
			zerolog.Ctx(ctx).Warn().Err(err).Msg("results will not be cached")
			return s, nil
		}
	}

	s.cache, err = alfred.NewCache(dir)
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("results will not be cached")
		return s, nil
	}

	if site.Thumbnails {
		s.thumbs = search.NewThumbnailer(site, filepath.Join(dir, "thumbnails"))
	}

	return s, nil
}

// Runs a query and returns the feedback to show for it.
//
// Failures are logged and shown as the "no results" placeholder.
func (s *searcher) feedback(ctx context.Context, query string) *aw.Feedback {
	log := zerolog.Ctx(ctx).With().
		Str("site", s.site.Name).
		Str("query", query).
		Logger()

	st := idle
	to := func(next state) {
		log.Debug().Stringer("from", st).Stringer("to", next).Msg("search state")
		st = next
	}

	if strings.TrimSpace(query) == "" {
		// MediaWiki rejects empty searches, so don't bother asking.
		to(done)
		return alfred.NoResults()
	}

	to(querying)
	pages, err := search.Query(ctx, s.http, s.site, query)
	if err != nil {
		to(failed)
		log.Error().Err(err).Msg("search failed")
		return alfred.NoResults()
	}

	to(normalizing)
	records := search.Normalize(pages, s.site)
	if s.thumbs != nil {
		s.thumbs.Enrich(ctx, records)
	}

	to(emitting)
	if s.cache != nil {
		if err := s.cache.Store(resultsKey, records); err != nil {
			log.Warn().Err(err).Msg("failed to cache results")
		}
	}

	fb := alfred.FromRecords(records)
	log.Info().Int("results", len(records)).Msg("search complete")
	to(done)

	return fb
}

// Searches for query and writes the feedback to w.
//
// Only a failure to write is returned; search failures become the
// placeholder item.
func (s *searcher) run(ctx context.Context, w io.Writer, query string) error {
	return alfred.Send(w, s.feedback(ctx, query))
}
