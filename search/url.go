package search

import "strings"

// Turns a page title into the form used in article paths.
//
// Only spaces are replaced. Titles containing characters such as '?' or '#'
// are not percent-encoded and produce URLs that point elsewhere.
func normalizeTitle(title string) string {
	return strings.ReplaceAll(title, " ", "_")
}

// CanonicalURL returns the address of the article with the given title.
func (c Config) CanonicalURL(title string) string {
	return c.WebURL() + normalizeTitle(title)
}

// PreviewURL returns the address used to preview the article with the given
// title: the mobile site if there is one, otherwise the article itself.
func (c Config) PreviewURL(title string) string {
	if m := c.MobileURL(); m != "" {
		return m + normalizeTitle(title)
	}
	return c.CanonicalURL(title)
}
