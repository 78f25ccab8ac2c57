package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newAlertsCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "alerts",
		Short: "Inspect detected conflict alerts",
	}
	cmd.AddCommand(newAlertsListCommand(opts))
	cmd.AddCommand(newAlertsDismissCommand(opts))
	return cmd
}

func newAlertsListCommand(opts *RootOptions) *cobra.Command {
	var itemID, severity string
	var limit, offset int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List conflict alerts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := opts.newClient()
			if err != nil {
				return err
			}
			list, err := c.ListAlerts(cmd.Context(), itemID, severity, limit, offset)
			if err != nil {
				return err
			}

			if opts.Output == "json" {
				return printJSON(cmd.OutOrStdout(), list)
			}
			table := newTable(cmd.OutOrStdout())
			fmt.Fprintln(table, "ID\tTYPE\tSEVERITY\tKEYWORD\tTITLE\tDETECTED")
			for _, a := range list.Alerts {
				fmt.Fprintf(table, "%s\t%s\t%s\t%s\t%s\t%s\n",
					a.ID, a.Type, a.Severity, a.Keyword, a.Title, a.DetectedAt.Format("2006-01-02 15:04"))
			}
			if err := table.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "total: %d\n", list.Total)
			return nil
		},
	}
	cmd.Flags().StringVar(&itemID, "item", "", "filter by monitoring item id")
	cmd.Flags().StringVar(&severity, "severity", "", "filter by severity (low, medium, high)")
	cmd.Flags().IntVar(&limit, "limit", 50, "page size")
	cmd.Flags().IntVar(&offset, "offset", 0, "page offset")
	return cmd
}

func newAlertsDismissCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "dismiss <id>",
		Short: "Dismiss (delete) a conflict alert",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.newClient()
			if err != nil {
				return err
			}
			if err := c.DismissAlert(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "dismissed %s\n", args[0])
			return nil
		},
	}
}
