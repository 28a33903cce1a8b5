package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"bare/internal/browser"
)

func NewSearchCmd(b func() *browser.Browser) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <gopher-url> <query>",
		Short: "Query a gopher search item",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			page, err := b().Search(cmd.Context(), args[0], args[1])
			if err != nil {
				return fmt.Errorf("search: %w", err)
			}
			printPage(cmd.OutOrStdout(), page, true)
			return nil
		},
	}

	return cmd
}
