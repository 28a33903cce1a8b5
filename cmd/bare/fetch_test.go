package main

import (
	"strings"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bare/internal/browser"
)

const holeMenu = "iWelcome\tfake\tfake\t0\r\n" +
	"0About\t/about.txt\texample.org\t70\r\n" +
	"7Find\t/find\texample.org\t70\r\n" +
	".\r\n"

func TestFetchCmdMenu(t *testing.T) {
	env := newTestEnv(t)
	addr := newGopherHole(t, func(string) string { return holeMenu })

	out, _, err := env.run(t, "", "fetch", "--links", "gopher://"+addr+"/")
	require.NoError(t, err)
	assert.Contains(t, out, "Welcome\n")
	assert.Contains(t, out, "[About](gopher://example.org/0/about.txt)")
	assert.Contains(t, out, "[1] About <gopher://example.org/0/about.txt>")
	assert.Contains(t, out, "[2] Find <gopher://example.org/7/find>")
}

func TestFetchCmdJSON(t *testing.T) {
	env := newTestEnv(t)
	addr := newGopherHole(t, func(string) string { return "hello\r\n.\r\n" })

	out, _, err := env.run(t, "", "fetch", "--json", "gopher://"+addr+"/0/hello.txt")
	require.NoError(t, err)

	var page browser.Page
	require.NoError(t, json.Unmarshal([]byte(out), &page))
	assert.Equal(t, browser.MediaText, page.MediaType)
	assert.Equal(t, "hello", page.Body)
}

func TestFetchCmdPromptsForSearch(t *testing.T) {
	env := newTestEnv(t)
	reqs := make(chan string, 1)
	addr := newGopherHole(t, func(req string) string {
		reqs <- req
		return "0Hit\t/hit\texample.org\t70\r\n.\r\n"
	})

	out, stderr, err := env.run(t, "mole tunnels\n", "fetch", "gopher://"+addr+"/7/find")
	require.NoError(t, err)
	assert.Contains(t, stderr, "Search query\n> ")
	assert.Equal(t, "/find\tmole tunnels", <-reqs)
	assert.Contains(t, out, "[Hit](gopher://example.org/0/hit)")
}

func TestFetchCmdInputFlag(t *testing.T) {
	env := newTestEnv(t)
	reqs := make(chan string, 1)
	addr := newGopherHole(t, func(req string) string {
		reqs <- req
		return ".\r\n"
	})

	_, stderr, err := env.run(t, "", "fetch", "--input", "badgers", "gopher://"+addr+"/7/find")
	require.NoError(t, err)
	assert.Empty(t, stderr)
	assert.Equal(t, "/find\tbadgers", <-reqs)
}

func TestFetchCmdPromptWithoutInput(t *testing.T) {
	env := newTestEnv(t)
	addr := newGopherHole(t, func(string) string { return ".\r\n" })

	_, _, err := env.run(t, "", "fetch", "gopher://"+addr+"/7/find")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read input")
}

func TestFetchCmdUnsupportedScheme(t *testing.T) {
	env := newTestEnv(t)

	_, _, err := env.run(t, "", "fetch", "ftp://example.org/")
	require.Error(t, err)
	assert.ErrorIs(t, err, browser.ErrUnsupportedScheme)
	assert.True(t, strings.HasPrefix(err.Error(), "fetch: "))
}

func TestSearchCmd(t *testing.T) {
	env := newTestEnv(t)
	addr := newGopherHole(t, func(req string) string {
		_, query, _ := strings.Cut(req, "\t")
		return "0Result " + query + "\t/r\texample.org\t70\r\n.\r\n"
	})

	out, _, err := env.run(t, "", "search", "gopher://"+addr+"/7/find", "voles")
	require.NoError(t, err)
	assert.Contains(t, out, "[1] Result voles <gopher://example.org/0/r>")
}
