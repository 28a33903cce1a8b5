package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"bare/internal/browser"
	"bare/internal/config"
)

const browseHelp = `Commands:
  <n>          follow link n
  g <url>      open a URL, relative URLs resolve against the current page
  b            go back
  l            list links on the current page
  r            reload the current page
  q            quit`

func NewBrowseCmd(b func() *browser.Browser, loader func() *config.Loader) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "browse [url]",
		Short: "Browse interactively",
		Long:  `Open a URL and follow links by number. Timeouts are reloaded when the config file changes.`,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			watchTimeouts(cmd, b(), loader())

			s := &session{
				cmd:     cmd,
				browser: b(),
				in:      bufio.NewReader(cmd.InOrStdin()),
				out:     cmd.OutOrStdout(),
			}
			if len(args) == 1 {
				s.visit(cmd.Context(), args[0])
			}
			s.run(cmd.Context())
			return nil
		},
	}

	return cmd
}

func watchTimeouts(cmd *cobra.Command, b *browser.Browser, loader *config.Loader) {
	err := loader.Watch(func(cfg *config.Config, err error) {
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "config reload ignored: %v\n", err)
			return
		}
		b.SetTimeouts(cfg)
	})
	if err != nil && !errors.Is(err, config.ErrNoConfigFile) {
		fmt.Fprintf(cmd.ErrOrStderr(), "not watching config: %v\n", err)
	}
}

type session struct {
	cmd     *cobra.Command
	browser *browser.Browser
	in      *bufio.Reader
	out     io.Writer
	history []*browser.Page
}

func (s *session) current() *browser.Page {
	if len(s.history) == 0 {
		return nil
	}
	return s.history[len(s.history)-1]
}

func (s *session) run(ctx context.Context) {
	for {
		fmt.Fprint(s.out, "bare> ")
		line, err := s.in.ReadString('\n')
		if err != nil && line == "" {
			fmt.Fprintln(s.out)
			return
		}
		if !s.exec(ctx, strings.TrimSpace(line)) {
			return
		}
	}
}

// exec runs one REPL command and reports whether the session continues.
func (s *session) exec(ctx context.Context, line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return true
	}

	switch cmd, args := fields[0], fields[1:]; cmd {
	case "q", "quit", "exit":
		return false
	case "h", "help", "?":
		fmt.Fprintln(s.out, browseHelp)
	case "b", "back":
		if len(s.history) < 2 {
			fmt.Fprintln(s.out, "no previous page")
			return true
		}
		s.history = s.history[:len(s.history)-1]
		printPage(s.out, s.current(), true)
	case "l", "links":
		if page := s.current(); page != nil {
			printLinks(s.out, page)
		}
	case "r", "reload":
		if page := s.current(); page != nil {
			s.history = s.history[:len(s.history)-1]
			s.visit(ctx, page.URL)
		}
	case "g", "go":
		if len(args) != 1 {
			fmt.Fprintln(s.out, "usage: g <url>")
			return true
		}
		s.visit(ctx, s.resolve(args[0]))
	default:
		if n, err := strconv.Atoi(cmd); err == nil {
			s.follow(ctx, n)
			return true
		}
		if strings.Contains(cmd, "://") {
			s.visit(ctx, cmd)
			return true
		}
		fmt.Fprintf(s.out, "unknown command %q, type h for help\n", cmd)
	}
	return true
}

func (s *session) follow(ctx context.Context, n int) {
	page := s.current()
	if page == nil || n < 1 || n > len(page.Links) {
		fmt.Fprintf(s.out, "no link %d\n", n)
		return
	}
	s.visit(ctx, page.Links[n-1].URL)
}

func (s *session) resolve(ref string) string {
	page := s.current()
	if page == nil || strings.Contains(ref, "://") {
		return ref
	}
	target, err := s.browser.Resolve(page.URL, ref)
	if err != nil {
		return ref
	}
	return target
}

func (s *session) visit(ctx context.Context, rawURL string) {
	page, err := open(ctx, s.cmd, s.in, s.browser, rawURL, "")
	if err != nil {
		fmt.Fprintf(s.out, "error: %v\n", err)
		return
	}
	s.history = append(s.history, page)
	if page.Title != "" {
		fmt.Fprintf(s.out, "== %s ==\n", page.Title)
	}
	printPage(s.out, page, true)
}
