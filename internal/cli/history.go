package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Database string
	Limit    int
}

// HistoryEntry is one logged request.
type HistoryEntry struct {
	ID          string `json:"id"`
	SessionID   string `json:"session_id"`
	Model       string `json:"model"`
	Risky       bool   `json:"risky"`
	Confirmed   bool   `json:"confirmed"`
	RequestedAt string `json:"requested_at"`
	Query       string `json:"query,omitempty"`
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List logged execution requests, newest first",
		Long: `List the execution requests written by qb run, newest first.

Examples:
  qb history --db qb.db
  qb history --db qb.db --limit 5 --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", 20, "maximum number of requests (0 for all)")

	return cmd
}

func runHistory(opts *HistoryOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	st, err := openStore(formatter, opts.Database)
	if err != nil {
		return err
	}
	defer st.Close()

	recs, err := st.ListRequests(context.Background(), opts.Limit)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeStore, "listing requests", err)
	}

	entries := make([]HistoryEntry, len(recs))
	for i, rec := range recs {
		entries[i] = HistoryEntry{
			ID:          rec.ID,
			SessionID:   rec.SessionID,
			Model:       rec.Model,
			Risky:       rec.Risky,
			Confirmed:   rec.Confirmed,
			RequestedAt: rec.RequestedAt.Format(time.RFC3339),
		}
		if opts.Verbose {
			entries[i].Query = rec.Query
		}
	}

	if formatter.JSON() {
		return formatter.Success(entries)
	}
	if len(entries) == 0 {
		fmt.Fprintln(formatter.Writer, "No requests found in database.")
		return nil
	}
	for _, e := range entries {
		flag := ""
		if e.Risky {
			flag = " (risky, confirmed)"
		}
		fmt.Fprintf(formatter.Writer, "%s  %s  %s  session %s%s\n", e.RequestedAt, e.ID, e.Model, e.SessionID, flag)
		if e.Query != "" {
			fmt.Fprintln(formatter.Writer, e.Query)
		}
	}
	return nil
}
