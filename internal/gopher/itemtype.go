package gopher

import (
	"fmt"

	proto "github.com/stryan/go-gopher"
)

// ItemType is the one-character code that leads every menu line. Codes
// outside the table below are kept as-is and reported as unknown.
type ItemType rune

const (
	TypeFile       = ItemType(proto.FILE)
	TypeDirectory  = ItemType(proto.DIRECTORY)
	TypeCSO        = ItemType(proto.PHONEBOOK)
	TypeError      = ItemType(proto.ERROR)
	TypeBinHex     = ItemType(proto.BINHEX)
	TypeDOSBinary  = ItemType(proto.DOSARCHIVE)
	TypeUUEncoded  = ItemType(proto.UUENCODED)
	TypeSearch     = ItemType(proto.INDEXSEARCH)
	TypeTelnet     = ItemType(proto.TELNET)
	TypeBinary     = ItemType(proto.BINARY)
	TypeGIF        = ItemType(proto.GIF)
	TypeImage      = ItemType(proto.IMAGE)
	TypeHTML       = ItemType(proto.HTML)
	TypeInfo       = ItemType(proto.INFO)
	TypeTelnet3270 = ItemType(proto.TN3270)
)

type itemFacts struct {
	description string
	icon        string
	// link items are addressable documents the browser can open.
	link bool
	// blocked items need an interactive session.
	blocked bool
}

var itemTable = map[ItemType]itemFacts{
	TypeFile:       {description: "Text file", icon: "📄", link: true},
	TypeDirectory:  {description: "Directory", icon: "📁", link: true},
	TypeCSO:        {description: "CSO phone book", icon: "📖", blocked: true},
	TypeError:      {description: "Error", icon: "⚠️"},
	TypeBinHex:     {description: "BinHex file"},
	TypeDOSBinary:  {description: "DOS binary"},
	TypeUUEncoded:  {description: "UUencoded file"},
	TypeSearch:     {description: "Search", icon: "🔍", link: true},
	TypeTelnet:     {description: "Telnet", blocked: true},
	TypeBinary:     {description: "Binary file"},
	TypeGIF:        {description: "GIF image", icon: "🖼️", link: true},
	TypeImage:      {description: "Image", icon: "🖼️", link: true},
	TypeHTML:       {description: "HTML", icon: "🌐", link: true},
	TypeInfo:       {description: "Info"},
	TypeTelnet3270: {description: "Telnet 3270", blocked: true},
}

// Known reports whether t is one of the standard item types.
func (t ItemType) Known() bool {
	_, ok := itemTable[t]
	return ok
}

// Code returns the type character as it appears on the wire.
func (t ItemType) Code() string { return string(rune(t)) }

func (t ItemType) Description() string {
	if f, ok := itemTable[t]; ok {
		return f.description
	}
	return "Unknown"
}

func (t ItemType) Icon() string { return itemTable[t].icon }

func (t ItemType) IsLink() bool { return itemTable[t].link }

func (t ItemType) IsBlocked() bool { return itemTable[t].blocked }

func (t ItemType) String() string {
	if t.Known() {
		return t.Description()
	}
	return fmt.Sprintf("Unknown (%q)", rune(t))
}
