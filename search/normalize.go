package search

import (
	"cmp"
	"slices"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Record is a search result ready to be displayed.
type Record struct {
	Title        string `json:"title"`
	Subtitle     string `json:"subtitle"`
	CanonicalURL string `json:"canonical_url"`
	PreviewURL   string `json:"preview_url"`
	Autocomplete string `json:"autocomplete"`
	CopyText     string `json:"copy_text"`
	LargeText    string `json:"large_text"`

	// Valid is always true for records made by [Normalize].
	Valid bool `json:"valid"`

	// Thumbnail is the source URL of the page image, if the API sent one.
	Thumbnail string `json:"thumbnail,omitempty"`

	// Icon is a local file to show next to the record. It is only set by
	// [Thumbnailer.Enrich].
	Icon string `json:"icon,omitempty"`
}

// Normalize turns the pages of a query response into records, in the order
// the search engine ranked them.
//
// Every page yields exactly one record. A missing extract gives an empty
// subtitle. An empty mapping gives an empty, non-nil slice.
func Normalize(pages Pages, cfg Config) []Record {
	type entry struct {
		id   string
		page Page
	}

	entries := make([]entry, 0, len(pages))
	for id, p := range pages {
		entries = append(entries, entry{id, p})
	}

	// Map order is random; the index is what the engine ranked by.
	// Ties shouldn't happen but are broken by ID so output is stable.
	slices.SortFunc(entries, func(a, b entry) int {
		if c := cmp.Compare(a.page.Index, b.page.Index); c != 0 {
			return c
		}
		return cmp.Compare(a.id, b.id)
	})

	records := make([]Record, 0, len(entries))
	for _, e := range entries {
		records = append(records, newRecord(e.page, cfg))
	}

	return records
}

// Maps a single page to a record.
func newRecord(p Page, cfg Config) Record {
	subtitle := p.ExtractOr("")
	if cfg.HTMLExtracts && subtitle != "" {
		subtitle = flattenHTML(subtitle)
	}

	r := Record{
		Title:        p.Title,
		Subtitle:     subtitle,
		CanonicalURL: cfg.CanonicalURL(p.Title),
		PreviewURL:   cfg.PreviewURL(p.Title),
		Autocomplete: p.Title,
		CopyText:     p.Title,
		LargeText:    subtitle,
		Valid:        true,
	}

	if p.Thumbnail != nil {
		r.Thumbnail = p.Thumbnail.Source
	}

	return r
}

// Reduces an HTML fragment to its text with whitespace collapsed.
//
// Fragments that cannot be parsed are returned as is.
func flattenHTML(s string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return s
	}

	return strings.Join(strings.Fields(doc.Text()), " ")
}
