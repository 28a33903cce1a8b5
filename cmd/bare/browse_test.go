package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBrowseHole(t *testing.T) string {
	t.Helper()
	var addr string
	ready := make(chan struct{})
	addr = newGopherHole(t, func(req string) string {
		<-ready
		host, port, _ := strings.Cut(addr, ":")
		switch req {
		case "":
			return "iRoot menu\tfake\tfake\t0\r\n" +
				"0Notes\t/notes.txt\t" + host + "\t" + port + "\r\n" +
				".\r\n"
		case "/notes.txt":
			return "note body\r\n.\r\n"
		default:
			return "3not found\tfake\tfake\t0\r\n.\r\n"
		}
	})
	close(ready)
	return addr
}

func TestBrowseCmdFollowAndBack(t *testing.T) {
	env := newTestEnv(t)
	addr := newBrowseHole(t)

	script := strings.Join([]string{"1", "b", "l", "q"}, "\n") + "\n"
	out, _, err := env.run(t, script, "browse", "gopher://"+addr+"/")
	require.NoError(t, err)

	assert.Contains(t, out, "== Root menu ==")
	assert.Contains(t, out, "note body")
	// Listed on the first visit, after going back and by l.
	assert.Equal(t, 3, strings.Count(out, "[1] Notes <gopher://"+addr+"/0/notes.txt>"))
}

func TestBrowseCmdCommands(t *testing.T) {
	env := newTestEnv(t)
	addr := newBrowseHole(t)

	script := strings.Join([]string{
		"",
		"b",
		"9",
		"gopher://" + addr + "/",
		"9",
		"g 0/notes.txt",
		"g",
		"frobnicate",
		"h",
		"exit",
		"never reached",
	}, "\n") + "\n"
	out, _, err := env.run(t, script, "browse")
	require.NoError(t, err)

	assert.Contains(t, out, "no previous page")
	assert.Equal(t, 2, strings.Count(out, "no link 9"))
	assert.Contains(t, out, "== Root menu ==")
	assert.Contains(t, out, "note body")
	assert.Contains(t, out, "usage: g <url>")
	assert.Contains(t, out, `unknown command "frobnicate"`)
	assert.Contains(t, out, "follow link n")
}

func TestBrowseCmdShowsErrors(t *testing.T) {
	env := newTestEnv(t)

	out, _, err := env.run(t, "q\n", "browse", "ftp://example.org/")
	require.NoError(t, err)
	assert.Contains(t, out, "error: unsupported scheme")
}

func TestBrowseCmdEndsOnEOF(t *testing.T) {
	env := newTestEnv(t)

	out, _, err := env.run(t, "", "browse")
	require.NoError(t, err)
	assert.Equal(t, "bare> \n", out)
}
