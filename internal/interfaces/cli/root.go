// Package cli implements the marksentinel command-line client.  All
// subcommands talk to a running API server through pkg/client.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/turtacn/MarkSentinel/pkg/client"
)

// Build-time variables injected via ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// RootOptions holds the global flags.
type RootOptions struct {
	ServerAddr string
	APIKey     string
	Output     string
	Timeout    time.Duration
}

// NewRootCommand assembles the command tree.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:           "marksentinel",
		Short:         "MarkSentinel CLI for brand conflict monitoring",
		Long:          "MarkSentinel watches trademarks, domains, marketplaces and social media\nfor brand conflicts. This CLI manages monitoring items, triggers checks\nand inspects detected alerts against a running MarkSentinel server.",
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildDate),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&opts.ServerAddr, "server", "http://localhost:8080", "API server address")
	pf.StringVar(&opts.APIKey, "api-key", "", "API key for authenticated servers")
	pf.StringVarP(&opts.Output, "output", "o", "table", "output format (table, json)")
	pf.DurationVar(&opts.Timeout, "timeout", 30*time.Second, "request timeout")

	cmd.AddCommand(newItemsCommand(opts))
	cmd.AddCommand(newCheckCommand(opts))
	cmd.AddCommand(newAlertsCommand(opts))
	return cmd
}

// Execute runs the root command.
func Execute() error {
	return NewRootCommand().Execute()
}

func (o *RootOptions) newClient() (*client.Client, error) {
	copts := []client.Option{client.WithTimeout(o.Timeout)}
	if o.APIKey != "" {
		copts = append(copts, client.WithAPIKey(o.APIKey))
	}
	return client.NewClient(o.ServerAddr, copts...)
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
}

func formatTime(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format(time.RFC3339)
}
