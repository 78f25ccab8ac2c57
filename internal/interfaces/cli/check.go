package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newCheckCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check <id>",
		Short: "Run an immediate check for a monitoring item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.newClient()
			if err != nil {
				return err
			}
			item, err := c.CheckItem(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			if opts.Output == "json" {
				return printJSON(cmd.OutOrStdout(), item)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "checked %s: status=%s alerts=%d next=%s\n",
				item.ID, item.Status, item.AlertCount, formatTime(item.NextCheck))
			return nil
		},
	}
}
