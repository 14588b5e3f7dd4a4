// Package alfred renders search records as Alfred script filter feedback and
// stores them in the workflow cache.
package alfred

import (
	"io"

	aw "github.com/deanishe/awgo"

	"git.sr.ht/~cmcevoy/wikisearch/search"
)

// WarningIcon is the path of the icon shown on the placeholder item.
var WarningIcon = aw.IconWarning.Value

// NoResults is the feedback shown when there is nothing else to show.
func NoResults() *aw.Feedback {
	fb := aw.NewFeedback()
	fb.NewItem("Error!").
		Subtitle("No results found.").
		Valid(false).
		Icon(aw.IconWarning)
	return fb
}

// FromRecords converts records to feedback, keeping their order.
//
// If there are no records, the result is [NoResults].
func FromRecords(records []search.Record) *aw.Feedback {
	if len(records) == 0 {
		return NoResults()
	}

	fb := aw.NewFeedback()
	for _, r := range records {
		it := fb.NewItem(r.Title).
			Subtitle(r.Subtitle).
			Arg(r.CanonicalURL).
			Quicklook(r.PreviewURL).
			Autocomplete(r.Autocomplete).
			Valid(r.Valid)

		if r.LargeText != "" {
			it.Largetype(r.LargeText)
		}
		if r.CopyText != "" {
			it.Copytext(r.CopyText)
		}
		if r.Icon != "" {
			it.Icon(&aw.Icon{Value: r.Icon})
		}
	}

	return fb
}

// Send writes fb to w as JSON.
//
// [aw.Feedback.Send] only writes to stdout, which does not work for the HTTP
// server.
func Send(w io.Writer, fb *aw.Feedback) error {
	b, err := fb.MarshalJSON()
	if err != nil {
		return err
	}

	_, err = w.Write(append(b, '\n'))
	return err
}
