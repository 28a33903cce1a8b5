package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"bare/internal/gemini"
)

func NewTrustCmd(store func() *gemini.TrustStore) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trust",
		Short: "Manage pinned Gemini certificates",
	}

	cmd.AddCommand(
		newTrustListCmd(store),
		newTrustForgetCmd(store),
	)

	return cmd
}

func newTrustListCmd(store func() *gemini.TrustStore) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List known hosts and their certificate fingerprints",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s := store()
			hosts := s.Hosts()
			if len(hosts) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No known hosts.")
				return nil
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "HOST\tFINGERPRINT\tFIRST SEEN\tLAST SEEN")
			for _, host := range hosts {
				rec, ok := s.Lookup(host)
				if !ok {
					continue
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
					host, rec.Fingerprint,
					rec.FirstSeen.Format(time.RFC3339), rec.LastSeen.Format(time.RFC3339))
			}
			return tw.Flush()
		},
	}
}

func newTrustForgetCmd(store func() *gemini.TrustStore) *cobra.Command {
	return &cobra.Command{
		Use:   "forget <host:port>",
		Short: "Forget a pinned certificate so the next visit trusts anew",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			removed, err := store().Forget(args[0])
			if err != nil {
				return fmt.Errorf("forget %s: %w", args[0], err)
			}
			if !removed {
				return fmt.Errorf("%s is not a known host", args[0])
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Forgot %s\n", args[0])
			return nil
		},
	}
}
