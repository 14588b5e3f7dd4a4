package search

import (
	"context"
	"crypto/md5"
	"encoding/base32"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
)

// ThumbnailTimeout bounds each image download made by a [Thumbnailer]
// created with [NewThumbnailer].
const ThumbnailTimeout = 3 * time.Second

// Thumbnailer downloads page images so they can be used as record icons.
//
// Enrichment is best effort: a thumbnail that cannot be fetched or saved
// leaves its record without an icon and is otherwise ignored.
type Thumbnailer struct {
	// HTTP is used to fetch images.
	HTTP *HttpClient

	// Dir is where images are stored. It is created if needed.
	Dir string
}

// NewThumbnailer creates a Thumbnailer storing images in dir.
//
// Images are usually served from a different host than the API, so the
// client only shares the site's user agent. Its timeout is
// [ThumbnailTimeout], or the site's timeout if that is shorter.
func NewThumbnailer(cfg Config, dir string) *Thumbnailer {
	timeout := ThumbnailTimeout
	if t := cfg.Timeout.Duration; t > 0 && t < timeout {
		timeout = t
	}

	return &Thumbnailer{
		HTTP: &HttpClient{
			Timeout:   timeout,
			UserAgent: cfg.NewHttpClient().UserAgent,
			Accept:    "image/*",
		},
		Dir: dir,
	}
}

// Enrich sets the Icon of every record that has a Thumbnail.
//
// Images that were downloaded before are reused.
func (t *Thumbnailer) Enrich(ctx context.Context, records []Record) {
	log := zerolog.Ctx(ctx)

	for i := range records {
		src := records[i].Thumbnail
		if src == "" {
			continue
		}

		fp, err := t.fetch(ctx, src)
		if err != nil {
			log.Debug().Err(err).Str("thumbnail", src).Msg("skipping thumbnail")
			continue
		}

		records[i].Icon = fp
	}
}

// Downloads src into the cache unless it is already there.
func (t *Thumbnailer) fetch(ctx context.Context, src string) (string, error) {
	fp := filepath.Join(t.Dir, thumbnailName(src))
	if _, err := os.Stat(fp); err == nil {
		return fp, nil
	}

	body, err := t.HTTP.Get(ctx, src)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(t.Dir, 0755); err != nil {
		return "", err
	}

	// Write to a temporary file first so a partial image is never used.
	tmp, err := os.CreateTemp(t.Dir, ".thumb-*")
	if err != nil {
		return "", err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(body); err != nil {
		tmp.Close()
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}

	if err := os.Rename(tmp.Name(), fp); err != nil {
		return "", err
	}

	return fp, nil
}

// It is often problematic to save files with "/" in the name.
// Send it through MD5 and base32 the result, keeping the extension so the
// launcher recognizes the file type.
func thumbnailName(src string) string {
	sum := md5.Sum([]byte(src))
	name := base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(sum[:])

	if u, err := url.Parse(src); err == nil {
		name += path.Ext(u.Path)
	}

	return name
}
