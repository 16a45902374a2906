package commands

import (
	"fmt"

	"github.com/ncobase/recruit/config"
	"github.com/spf13/cobra"
)

func newMigrateCommand(configFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, cleanup, err := initialize(*configFile, func(c *config.Config) {
				c.Data.Database.Migrate = true
			})
			if err != nil {
				return err
			}
			defer cleanup()

			fmt.Fprintf(cmd.OutOrStdout(), "Schema is up to date (%s)\n", a.Config.Data.Database.Master.Driver)
			return nil
		},
	}
}
