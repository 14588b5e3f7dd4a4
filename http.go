package main

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"git.sr.ht/~cmcevoy/wikisearch/internal/alfred"
)

// Logs every request at debug level.
func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		then := time.Now()

		next.ServeHTTP(ww, r)

		zerolog.Ctx(r.Context()).Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("took", time.Since(then)).
			Msg("request")
	})
}

// Builds the handler for the serve command.
func newRouter(s *searcher) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(logRequests)

	r.Get("/search", func(w http.ResponseWriter, r *http.Request) {
		// Always a valid document, even if the search failed.
		fb := s.feedback(r.Context(), r.FormValue("q"))

		w.Header().Set("Content-Type", "application/json")
		if err := alfred.Send(w, fb); err != nil {
			zerolog.Ctx(r.Context()).Debug().Err(err).Msg("failed to write response")
		}
	})

	r.Get("/site", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte(s.site.Name + "\n" + s.site.APIEndpoint() + "\n"))
	})

	return r
}

// Sets up a HTTP server serving s.
//
// When the context that is passed to this function is canceled, the server
// will be shutdown and the error will be [context.Canceled].
//
// serveHTTP never returns a nil error.
func serveHTTP(ctx context.Context, addr string, s *searcher) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	srv := &http.Server{
		Addr:    addr,
		Handler: newRouter(s),

		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,

		// Requests inherit the logger from ctx.
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	// Special goroutine to close the server when the context is canceled.
	go func() {
		<-ctx.Done()
		srv.Close()
	}()

	zerolog.Ctx(ctx).Info().Str("addr", addr).Msg("listening")
	err := srv.ListenAndServe()

	if ctx.Err() != nil {
		// The server was closed because the context was canceled.
		return ctx.Err()
	}

	return err
}
