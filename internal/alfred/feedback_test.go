package alfred

import (
	"bytes"
	"encoding/json"
	"testing"

	aw "github.com/deanishe/awgo"
	"github.com/google/go-cmp/cmp"

	"git.sr.ht/~cmcevoy/wikisearch/search"
)

// Sends fb and decodes the items in the generic form Alfred sees them.
func sendItems(t *testing.T, fb *aw.Feedback) []map[string]any {
	t.Helper()

	buf := &bytes.Buffer{}
	if err := Send(buf, fb); err != nil {
		t.Fatal(err)
	}

	var doc struct {
		Items []map[string]any `json:"items"`
	}
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("not feedback JSON: %v\n%s", err, buf)
	}
	return doc.Items
}

func TestNoResults(t *testing.T) {
	exp := []map[string]any{{
		"title":    "Error!",
		"subtitle": "No results found.",
		"valid":    false,
		"icon":     map[string]any{"path": WarningIcon},
	}}

	for _, records := range [][]search.Record{nil, {}} {
		if diff := cmp.Diff(exp, sendItems(t, FromRecords(records))); diff != "" {
			t.Errorf("placeholder differs (-want +got):\n%s", diff)
		}
	}

	if WarningIcon != "/System/Library/CoreServices/CoreTypes.bundle/Contents/Resources/AlertCautionIcon.icns" {
		t.Errorf("unexpected warning icon %q", WarningIcon)
	}
}

func TestSend(t *testing.T) {
	items := sendItems(t, FromRecords([]search.Record{
		{
			Title:        "New York City",
			Subtitle:     "The most populous city.",
			CanonicalURL: "https://en.wikipedia.org/wiki/New_York_City",
			PreviewURL:   "https://en.m.wikipedia.org/wiki/New_York_City",
			Autocomplete: "New York City",
			CopyText:     "New York City",
			LargeText:    "The most populous city.",
			Valid:        true,
			Icon:         "/tmp/thumb.jpg",
		},
		{
			Title:        "Ant",
			CanonicalURL: "https://en.wikipedia.org/wiki/Ant",
			PreviewURL:   "https://en.wikipedia.org/wiki/Ant",
			Autocomplete: "Ant",
			CopyText:     "Ant",
			Valid:        true,
		},
	}))

	exp := []map[string]any{
		{
			"title":        "New York City",
			"subtitle":     "The most populous city.",
			"arg":          "https://en.wikipedia.org/wiki/New_York_City",
			"quicklookurl": "https://en.m.wikipedia.org/wiki/New_York_City",
			"autocomplete": "New York City",
			"valid":        true,
			"text": map[string]any{
				"largetype": "The most populous city.",
				"copy":      "New York City",
			},
			"icon": map[string]any{"path": "/tmp/thumb.jpg"},
		},
		{
			// An empty subtitle is still sent, and no icon means
			// Alfred's default.
			"title":        "Ant",
			"subtitle":     "",
			"arg":          "https://en.wikipedia.org/wiki/Ant",
			"quicklookurl": "https://en.wikipedia.org/wiki/Ant",
			"autocomplete": "Ant",
			"valid":        true,
			"text":         map[string]any{"copy": "Ant"},
		},
	}

	if diff := cmp.Diff(exp, items); diff != "" {
		t.Errorf("items differ (-want +got):\n%s", diff)
	}
}
