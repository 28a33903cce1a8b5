package browser

import (
	"strings"

	gmi "git.sr.ht/~adnano/go-gemini"

	"bare/internal/gemini"
)

// gemtextLinks collects the link lines of body, resolving each URL against
// base. Lines inside preformatted blocks are never links.
func gemtextLinks(base, body string) []Link {
	var links []Link
	gmi.ParseLines(strings.NewReader(body), func(line gmi.Line) {
		l, ok := line.(gmi.LineLink)
		if !ok || l.URL == "" {
			return
		}
		target, err := gemini.ResolveURL(base, l.URL)
		if err != nil {
			return
		}
		label := strings.TrimSpace(l.Name)
		if label == "" {
			label = l.URL
		}
		links = append(links, Link{Label: label, URL: target})
	})
	return links
}

// gemtextTitle is the text of the first level one heading.
func gemtextTitle(body string) string {
	var title string
	gmi.ParseLines(strings.NewReader(body), func(line gmi.Line) {
		if h, ok := line.(gmi.LineHeading1); ok && title == "" {
			title = strings.TrimSpace(string(h))
		}
	})
	return title
}
