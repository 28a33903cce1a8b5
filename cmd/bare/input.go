package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"bare/internal/browser"
	"bare/internal/gemini"
	"bare/internal/gopher"
)

// readPassword is a test seam for term.ReadPassword.
var readPassword = term.ReadPassword

// ask prints prompt and reads one line of input. Sensitive input is read
// without echo when stdin is a terminal.
func ask(cmd *cobra.Command, in *bufio.Reader, prompt string, sensitive bool) (string, error) {
	w := cmd.ErrOrStderr()
	fmt.Fprint(w, prompt+"\n> ")

	if sensitive {
		if f, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
			secret, err := readPassword(int(f.Fd()))
			fmt.Fprintln(w)
			if err != nil {
				return "", fmt.Errorf("read input: %w", err)
			}
			return string(secret), nil
		}
	}

	line, err := in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("read input: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// open loads rawURL and answers an input prompt or a search item along the
// way. A non-empty answer is used instead of asking.
func open(ctx context.Context, cmd *cobra.Command, in *bufio.Reader, b *browser.Browser, rawURL, answer string) (*browser.Page, error) {
	page, err := b.Open(ctx, rawURL)

	var input *gemini.InputRequiredError
	switch {
	case errors.As(err, &input):
		if answer == "" {
			if answer, err = ask(cmd, in, input.Prompt, input.Sensitive); err != nil {
				return nil, err
			}
		}
		return b.Submit(ctx, input.URL, answer)
	case errors.Is(err, gopher.ErrSearchInputRequired):
		if answer == "" {
			if answer, err = ask(cmd, in, "Search query", false); err != nil {
				return nil, err
			}
		}
		return b.Search(ctx, rawURL, answer)
	}
	return page, err
}

func printPage(w io.Writer, page *browser.Page, withLinks bool) {
	fmt.Fprint(w, page.Body)
	if page.Body != "" && !strings.HasSuffix(page.Body, "\n") {
		fmt.Fprintln(w)
	}
	if withLinks {
		printLinks(w, page)
	}
}

func printLinks(w io.Writer, page *browser.Page) {
	if len(page.Links) == 0 {
		return
	}
	fmt.Fprintln(w)
	for i, l := range page.Links {
		fmt.Fprintf(w, "[%d] %s <%s>\n", i+1, l.Label, l.URL)
	}
}
