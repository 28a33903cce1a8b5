package main

import (
	"bufio"
	"fmt"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"bare/internal/browser"
)

func NewFetchCmd(b func() *browser.Browser) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fetch <url>",
		Short: "Fetch a document and print it",
		Long: `Fetch a gemini, gopher or http(s) URL and print the body.
Gemini input prompts and gopher search items ask on stdin unless --input is set.`,
		Args: cobra.ExactArgs(1),
		RunE: makeFetchRunner(b),
	}

	cmd.Flags().String("input", "", "Answer to an input prompt or search item")
	cmd.Flags().Bool("links", false, "List the links found on the page")
	cmd.Flags().Bool("json", false, "Output the page in JSON format")

	return cmd
}

func makeFetchRunner(b func() *browser.Browser) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		answer, _ := cmd.Flags().GetString("input")
		withLinks, _ := cmd.Flags().GetBool("links")
		asJSON, _ := cmd.Flags().GetBool("json")

		in := bufio.NewReader(cmd.InOrStdin())
		page, err := open(cmd.Context(), cmd, in, b(), args[0], answer)
		if err != nil {
			return fmt.Errorf("fetch: %w", err)
		}

		if asJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(page)
		}

		printPage(cmd.OutOrStdout(), page, withLinks)
		return nil
	}
}
