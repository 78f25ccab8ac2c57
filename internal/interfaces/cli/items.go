package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/turtacn/MarkSentinel/pkg/client"
	"github.com/turtacn/MarkSentinel/pkg/errors"
)

func newItemsCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "items",
		Short: "Manage monitoring items",
	}
	cmd.AddCommand(newItemsListCommand(opts))
	cmd.AddCommand(newItemsAddCommand(opts))
	cmd.AddCommand(newItemsDeleteCommand(opts))
	return cmd
}

func newItemsListCommand(opts *RootOptions) *cobra.Command {
	var itemType, status string
	var limit, offset int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List monitoring items",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := opts.newClient()
			if err != nil {
				return err
			}
			list, err := c.ListItems(cmd.Context(), itemType, status, limit, offset)
			if err != nil {
				return err
			}

			if opts.Output == "json" {
				return printJSON(cmd.OutOrStdout(), list)
			}
			table := newTable(cmd.OutOrStdout())
			fmt.Fprintln(table, "ID\tNAME\tTYPE\tFREQUENCY\tSTATUS\tALERTS\tNEXT CHECK")
			for _, item := range list.Items {
				fmt.Fprintf(table, "%s\t%s\t%s\t%s\t%s\t%d\t%s\n",
					item.ID, item.Name, item.Type, item.Frequency, item.Status,
					item.AlertCount, formatTime(item.NextCheck))
			}
			if err := table.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "total: %d\n", list.Total)
			return nil
		},
	}
	cmd.Flags().StringVar(&itemType, "type", "", "filter by item type")
	cmd.Flags().StringVar(&status, "status", "", "filter by status")
	cmd.Flags().IntVar(&limit, "limit", 20, "page size")
	cmd.Flags().IntVar(&offset, "offset", 0, "page offset")
	return cmd
}

func newItemsAddCommand(opts *RootOptions) *cobra.Command {
	var req client.CreateItemRequest

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a monitoring item",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if req.Name == "" {
				return errors.NewValidation("--name is required")
			}
			if len(req.Keywords) == 0 {
				return errors.NewValidation("at least one --keyword is required")
			}
			c, err := opts.newClient()
			if err != nil {
				return err
			}
			item, err := c.CreateItem(cmd.Context(), req)
			if err != nil {
				return err
			}

			if opts.Output == "json" {
				return printJSON(cmd.OutOrStdout(), item)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %s (%s, %s)\n", item.ID, item.Type, item.Frequency)
			return nil
		},
	}
	cmd.Flags().StringVar(&req.Name, "name", "", "item name")
	cmd.Flags().StringVar(&req.Type, "type", "trademark", "item type (trademark, domain, marketplace, social)")
	cmd.Flags().StringSliceVar(&req.Keywords, "keyword", nil, "keyword to watch (repeatable)")
	cmd.Flags().StringVar(&req.Frequency, "frequency", "daily", "check frequency (hourly, daily, weekly, monthly)")
	cmd.Flags().StringSliceVar(&req.Extensions, "extension", nil, "domain TLD to scan (repeatable)")
	cmd.Flags().StringSliceVar(&req.Platforms, "platform", nil, "marketplace platform (repeatable)")
	cmd.Flags().StringSliceVar(&req.SocialPlatforms, "social-platform", nil, "social platform (repeatable)")
	return cmd
}

func newItemsDeleteCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a monitoring item and its alerts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.newClient()
			if err != nil {
				return err
			}
			if err := c.DeleteItem(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
			return nil
		},
	}
}
