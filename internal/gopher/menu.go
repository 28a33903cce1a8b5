package gopher

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Item is one line of a gopher menu.
type Item struct {
	Type     ItemType
	Display  string
	Selector string
	Host     string
	Port     int
}

// ParseMenuLine parses "<type><display>\t<selector>\t<host>\t<port>".
// Missing fields are left empty and a missing or malformed port becomes
// DefaultPort. Empty lines and the "." terminator are not items.
func ParseMenuLine(line string) (Item, bool) {
	line = strings.TrimRight(line, "\r")
	if line == "" || line == "." {
		return Item{}, false
	}

	r, size := utf8.DecodeRuneInString(line)
	fields := strings.Split(line[size:], "\t")
	item := Item{Type: ItemType(r), Display: fields[0], Port: DefaultPort}
	if len(fields) > 1 {
		item.Selector = fields[1]
	}
	if len(fields) > 2 {
		item.Host = fields[2]
	}
	if len(fields) > 3 {
		if port, err := strconv.ParseUint(strings.TrimSpace(fields[3]), 10, 16); err == nil {
			item.Port = int(port)
		}
	}
	return item, true
}

// ParseMenu parses body up to the terminating "." line, keeping the order
// of the source menu.
func ParseMenu(body string) []Item {
	var items []Item
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimRight(line, "\r")
		if line == "." {
			break
		}
		if item, ok := ParseMenuLine(line); ok {
			items = append(items, item)
		}
	}
	return items
}

// stripTermination removes the "." line that ends a text transfer.
func stripTermination(text string) string {
	trimmed := strings.TrimRightFunc(text, unicode.IsSpace)
	switch {
	case strings.HasSuffix(trimmed, "\r\n."):
		return trimmed[:len(trimmed)-3]
	case strings.HasSuffix(trimmed, "\n."):
		return trimmed[:len(trimmed)-2]
	case trimmed == ".":
		return ""
	}
	return text
}
