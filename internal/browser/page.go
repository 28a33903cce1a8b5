package browser

const (
	MediaGemtext  = "text/gemini"
	MediaMarkdown = "text/markdown"
	MediaText     = "text/plain"
	MediaHTML     = "text/html"
)

// Link is a followable reference found on a page, resolved to an absolute
// URL.
type Link struct {
	Label string `json:"label"`
	URL   string `json:"url"`
}

// Page is a fetched document ready for a renderer. Body is in the format
// named by MediaType: gemtext, markdown for gopher menus, plain text or HTML.
type Page struct {
	URL       string `json:"url"`
	Title     string `json:"title,omitempty"`
	MediaType string `json:"media_type"`
	Body      string `json:"body"`
	Links     []Link `json:"links,omitempty"`

	FromCache bool `json:"-"`
}
