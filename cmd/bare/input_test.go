package main

import (
	"bufio"
	"bytes"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bare/internal/browser"
)

func TestAsk(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		sensitive bool
		want      string
		wantErr   bool
	}{
		{name: "line", input: "hello world\n", want: "hello world"},
		{name: "crlf", input: "hello\r\nrest\n", want: "hello"},
		{name: "no newline", input: "last", want: "last"},
		{name: "sensitive from pipe", input: "s3cret\n", sensitive: true, want: "s3cret"},
		{name: "empty input", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := &cobra.Command{}
			var errOut bytes.Buffer
			cmd.SetErr(&errOut)
			cmd.SetIn(strings.NewReader(tt.input))

			got, err := ask(cmd, bufio.NewReader(cmd.InOrStdin()), "Your name?", tt.sensitive)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, "Your name?\n> ", errOut.String())
		})
	}
}

func TestPrintPage(t *testing.T) {
	page := &browser.Page{
		Body:  "no trailing newline",
		Links: []browser.Link{{Label: "Home", URL: "gemini://example.org/"}},
	}

	var out bytes.Buffer
	printPage(&out, page, false)
	assert.Equal(t, "no trailing newline\n", out.String())

	out.Reset()
	printPage(&out, page, true)
	assert.Equal(t, "no trailing newline\n\n[1] Home <gemini://example.org/>\n", out.String())
}
