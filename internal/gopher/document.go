package gopher

import (
	"strings"
)

type LineKind int

const (
	LineText LineKind = iota + 1
	LineLink
	LineNotice
	LineBlank
)

// Line is one visual line of a projected menu.
type Line struct {
	Kind LineKind
	Type ItemType
	Text string
	// URL is set for links only.
	URL string
	// Note qualifies a notice, e.g. why it cannot be opened.
	Note string
}

// Document is a menu flattened for a generic renderer.
type Document struct {
	Title string
	Lines []Line
}

// Project turns menu items into one line each, in menu order. The first
// non-blank info line becomes the title. A blank line separates a run of
// info lines from the item that follows it.
func Project(items []Item) Document {
	var doc Document
	prevInfo := false
	for _, item := range items {
		if item.Type == TypeInfo {
			if doc.Title == "" {
				doc.Title = strings.TrimSpace(item.Display)
			}
			doc.Lines = append(doc.Lines, Line{Kind: LineText, Type: item.Type, Text: item.Display})
			prevInfo = true
			continue
		}
		if prevInfo {
			doc.Lines = append(doc.Lines, Line{Kind: LineBlank})
		}
		prevInfo = false
		doc.Lines = append(doc.Lines, projectItem(item))
	}
	return doc
}

func projectItem(item Item) Line {
	line := Line{Type: item.Type, Text: item.Display}
	switch {
	case item.Type == TypeHTML:
		line.Kind = LineLink
		if target, ok := strings.CutPrefix(item.Selector, "URL:"); ok {
			line.URL = target
		} else {
			line.URL = ItemURL(item)
		}
	case item.Type.IsLink():
		line.Kind = LineLink
		line.URL = ItemURL(item)
	case item.Type == TypeTelnet, item.Type == TypeTelnet3270:
		line.Kind = LineNotice
		line.Note = "Telnet, not supported"
	case item.Type == TypeError:
		line.Kind = LineNotice
	default:
		line.Kind = LineNotice
		line.Note = item.Type.Description()
	}
	return line
}

// Links returns the link lines in order.
func (d Document) Links() []Line {
	var links []Line
	for _, l := range d.Lines {
		if l.Kind == LineLink {
			links = append(links, l)
		}
	}
	return links
}

// Markdown renders the document for the markdown renderer.
func (d Document) Markdown() string {
	var b strings.Builder
	for _, l := range d.Lines {
		switch l.Kind {
		case LineText:
			b.WriteString(l.Text)
		case LineLink:
			b.WriteString(l.Type.Icon())
			b.WriteString(" [")
			b.WriteString(l.Text)
			b.WriteString("](")
			b.WriteString(l.URL)
			b.WriteString(")")
		case LineNotice:
			icon := l.Type.Icon()
			if icon == "" {
				icon = " "
			}
			b.WriteString(icon)
			b.WriteString(" ")
			b.WriteString(l.Text)
			if l.Note != "" {
				b.WriteString(" *(")
				b.WriteString(l.Note)
				b.WriteString(")*")
			}
		}
		b.WriteString("\n")
	}
	return b.String()
}
