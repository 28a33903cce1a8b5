package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"bare/internal/config"
)

func NewConfigCmd(loader func() *config.Loader) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the configuration",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			l := loader()
			data, err := l.Config().YAML()
			if err != nil {
				return fmt.Errorf("render config: %w", err)
			}

			source := "defaults"
			if l.FromFile() {
				source = l.Path()
			}
			fmt.Fprintf(cmd.OutOrStdout(), "# source: %s\n", source)
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	})

	return cmd
}
