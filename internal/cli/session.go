package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/qbuilder/internal/store"
)

// SessionOptions holds flags shared by the session subcommands.
type SessionOptions struct {
	*RootOptions
	Database string
}

// SessionInfo is the JSON form of a stored session.
type SessionInfo struct {
	Name      string `json:"name"`
	ID        string `json:"id"`
	Model     string `json:"model"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// NewSessionCommand creates the session command and its subcommands.
func NewSessionCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SessionOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "session",
		Short: "Save, load, list and delete stored sessions",
		Long: `Manage sessions stored in a SQLite database.

Examples:
  qb session save --db qb.db weekly sales.yaml
  qb session load --db qb.db weekly restored.json
  qb session list --db qb.db
  qb session delete --db qb.db weekly`,
	}

	cmd.PersistentFlags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkPersistentFlagRequired("db")

	cmd.AddCommand(&cobra.Command{
		Use:           "save <name> <session-file>",
		Short:         "Store a session file under a name",
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSessionSave(opts, args[0], args[1], cmd)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:           "load <name> <output-file>",
		Short:         "Write a stored session to a file (.yaml, .yml or .json)",
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSessionLoad(opts, args[0], args[1], cmd)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:           "list",
		Short:         "List stored sessions",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSessionList(opts, cmd)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:           "delete <name>",
		Short:         "Delete a stored session",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSessionDelete(opts, args[0], cmd)
		},
	})

	return cmd
}

func openStore(f *OutputFormatter, path string) (*store.Store, error) {
	st, err := store.Open(path)
	if err != nil {
		return nil, f.Fail(ExitCommandError, ErrCodeStore, "failed to open database", err)
	}
	return st, nil
}

func runSessionSave(opts *SessionOptions, name, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	doc, err := readSessionFile(formatter, path)
	if err != nil {
		return err
	}
	st, err := openStore(formatter, opts.Database)
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.SaveSession(context.Background(), store.SessionRecord{Name: name, Document: doc}); err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeStore, "saving session", err)
	}
	if formatter.JSON() {
		return formatter.Success(map[string]string{"name": name, "id": doc.ID})
	}
	fmt.Fprintf(formatter.Writer, "✓ Saved session %q\n", name)
	return nil
}

func runSessionLoad(opts *SessionOptions, name, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	st, err := openStore(formatter, opts.Database)
	if err != nil {
		return err
	}
	defer st.Close()

	rec, err := st.LoadSession(context.Background(), name)
	if errors.Is(err, store.ErrNotFound) {
		return formatter.Fail(ExitFailure, ErrCodeNotFound, fmt.Sprintf("no session named %q", name), nil)
	}
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeStore, "loading session", err)
	}

	if err := writeSessionFile(path, rec.Document); err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeWriteFailed, "writing session file", err)
	}
	if formatter.JSON() {
		return formatter.Success(map[string]string{"name": name, "file": path})
	}
	fmt.Fprintf(formatter.Writer, "✓ Wrote session %q to %s\n", name, path)
	return nil
}

func runSessionList(opts *SessionOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	st, err := openStore(formatter, opts.Database)
	if err != nil {
		return err
	}
	defer st.Close()

	infos, err := st.ListSessions(context.Background())
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeStore, "listing sessions", err)
	}

	out := make([]SessionInfo, len(infos))
	for i, info := range infos {
		out[i] = SessionInfo{
			Name:      info.Name,
			ID:        info.ID,
			Model:     info.Model,
			CreatedAt: info.CreatedAt.Format(time.RFC3339),
			UpdatedAt: info.UpdatedAt.Format(time.RFC3339),
		}
	}

	if formatter.JSON() {
		return formatter.Success(out)
	}
	if len(out) == 0 {
		fmt.Fprintln(formatter.Writer, "No sessions found in database.")
		return nil
	}
	for _, info := range out {
		fmt.Fprintf(formatter.Writer, "%s\t%s\t%s\t%s\n", info.Name, info.Model, info.ID, info.UpdatedAt)
	}
	return nil
}

func runSessionDelete(opts *SessionOptions, name string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	st, err := openStore(formatter, opts.Database)
	if err != nil {
		return err
	}
	defer st.Close()

	err = st.DeleteSession(context.Background(), name)
	if errors.Is(err, store.ErrNotFound) {
		return formatter.Fail(ExitFailure, ErrCodeNotFound, fmt.Sprintf("no session named %q", name), nil)
	}
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeStore, "deleting session", err)
	}
	if formatter.JSON() {
		return formatter.Success(map[string]string{"deleted": name})
	}
	fmt.Fprintf(formatter.Writer, "✓ Deleted session %q\n", name)
	return nil
}
