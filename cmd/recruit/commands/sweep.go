package commands

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ncobase/recruit/core/posting/service"
	"github.com/spf13/cobra"
)

func newSweepCommand(configFile *string) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Close published postings whose purchase has expired",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, cleanup, err := initialize(*configFile, nil)
			if err != nil {
				return err
			}
			defer cleanup()

			result, err := a.Postings.Sweep(context.Background(), limit)
			if err != nil {
				return err
			}
			out, err := json.MarshalIndent(result, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "l", service.DefaultSweepLimit, "maximum postings to close")
	return cmd
}
