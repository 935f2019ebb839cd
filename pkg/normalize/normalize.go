package normalize

import (
	"log"
	"strings"
	"time"

	"weibo-sentiment/pkg/domain"

	"golang.org/x/net/html"
)

// sourceTimeLayout is the locale format the comment endpoint uses,
// e.g. "Wed Nov 12 23:50:39 +0800 2025".
const sourceTimeLayout = "Mon Jan 2 15:04:05 -0700 2006"

// targetTimeLayout is the canonical fixed-width zero-padded timestamp
// format. Store-side time filtering relies on its string ordering; do
// not change it without re-deriving that comparison.
const targetTimeLayout = "2006-01-02 15:04:05"

// Normalize converts a raw comment into the canonical shape: timestamp
// reformatted, markup stripped from the text. Both conversions degrade
// gracefully: a record is never dropped here. The returned flag
// reports whether the timestamp could not be parsed and was passed
// through unchanged.
func Normalize(raw domain.RawComment) (domain.Comment, bool) {
	createdAt, ok := FormatTime(raw.CreatedAt)
	if !ok {
		log.Printf("normalize: keeping unparseable timestamp %q", raw.CreatedAt)
	}

	return domain.Comment{
		CreatedAt:  createdAt,
		Text:       CleanText(raw.Text),
		Source:     raw.Source,
		ScreenName: raw.ScreenName,
		Desc:       raw.Desc,
	}, !ok
}

// FormatTime converts a source-format timestamp into the canonical
// "2006-01-02 15:04:05" form. On parse failure the raw string is
// returned unchanged and ok is false.
func FormatTime(raw string) (string, bool) {
	t, err := time.Parse(sourceTimeLayout, raw)
	if err != nil {
		return raw, false
	}
	return t.Format(targetTimeLayout), true
}

// CleanText strips markup from comment text: plain text nodes are
// trimmed and kept, images contribute their alt (falling back to
// title), every other element contributes only its descendant text.
// Fragments the parser cannot make sense of survive as plain text; the
// parser itself never fails on malformed input.
func CleanText(markup string) string {
	doc, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		// Parse errors are practically unreachable with this parser,
		// but the record still has to survive.
		return strings.TrimSpace(markup)
	}

	var parts []string
	collectText(doc, &parts)
	return strings.Join(parts, " ")
}

// collectText walks the node tree depth-first, appending text
// fragments and image substitutions to parts.
func collectText(n *html.Node, parts *[]string) {
	switch n.Type {
	case html.TextNode:
		if text := strings.TrimSpace(n.Data); text != "" {
			*parts = append(*parts, text)
		}
		return

	case html.ElementNode:
		if n.Data == "img" {
			if text := imageText(n); text != "" {
				*parts = append(*parts, text)
			}
			return
		}
	}

	for child := n.FirstChild; child != nil; child = child.NextSibling {
		collectText(child, parts)
	}
}

// imageText picks the textual stand-in for an image element: alt
// first, then title, otherwise nothing.
func imageText(n *html.Node) string {
	var alt, title string
	for _, attr := range n.Attr {
		switch attr.Key {
		case "alt":
			alt = strings.TrimSpace(attr.Val)
		case "title":
			title = strings.TrimSpace(attr.Val)
		}
	}
	if alt != "" {
		return alt
	}
	return title
}
