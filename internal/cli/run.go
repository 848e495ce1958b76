package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/qbuilder/internal/builder"
	"github.com/roach88/qbuilder/internal/daxgen"
	"github.com/roach88/qbuilder/internal/store"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	ModelOptions
	Database string
	Yes      bool
}

// RunResult is the JSON payload of the run command.
type RunResult struct {
	RequestID string `json:"request_id"`
	SessionID string `json:"session_id"`
	Model     string `json:"model"`
	Risky     bool   `json:"risky"`
	Query     string `json:"query"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <session-file>",
		Short: "Build a session's query and log an execution request",
		Long: `Build the query for a session and hand it to the executor.

qb does not talk to the data engine. The execution request is written to
the request log in the database, where an executor picks it up.

A selection likely to produce a crossjoin asks for confirmation first.
--yes skips the question.

Exit codes:
  0 - Request logged
  1 - Nothing to run, query cannot be built, or the risky query was declined
  2 - Command error (bad model, unreadable session, database error)

Examples:
  qb run --model ./model --db qb.db sales.yaml
  qb run --model ./model --db qb.db --yes wide.yaml`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRun(opts, args[0], cmd)
		},
	}

	opts.ModelOptions.register(cmd)
	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().BoolVarP(&opts.Yes, "yes", "y", false, "run risky queries without asking")

	return cmd
}

func runRun(opts *RunOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	st, err := openStore(formatter, opts.Database)
	if err != nil {
		return err
	}
	defer st.Close()

	var confirmer builder.Confirmer = promptConfirmer{in: cmd.InOrStdin(), out: formatter.GetErrWriter()}
	if opts.Yes {
		confirmer = builder.ConfirmerFunc(func(context.Context, string) (bool, error) { return true, nil })
	}

	b, loaded, err := opts.openSession(formatter, path,
		builder.WithExecutor(storeExecutor{st: st}),
		builder.WithConfirmer(confirmer),
	)
	if err != nil {
		return err
	}
	for _, p := range loaded.Problems {
		formatter.Warn("%v", p)
	}

	req, err := b.RunQuery(ctx)
	switch {
	case errors.Is(err, builder.ErrNothingToRun):
		return formatter.Fail(ExitFailure, ErrCodeSynthesis, "nothing to run", nil)
	case errors.Is(err, builder.ErrCancelled):
		return formatter.Fail(ExitFailure, ErrCodeCancelled, "risky query declined", nil)
	case err != nil:
		var se *daxgen.SynthesisError
		if errors.As(err, &se) {
			return formatter.Fail(ExitFailure, ErrCodeSynthesis, "query cannot be built", err)
		}
		return formatter.Fail(ExitCommandError, ErrCodeStore, "logging request", err)
	}

	if formatter.JSON() {
		return formatter.Success(RunResult{
			RequestID: req.ID,
			SessionID: req.SessionID,
			Model:     req.Target.Model,
			Risky:     req.Risky,
			Query:     req.Query,
		})
	}
	fmt.Fprintf(formatter.Writer, "✓ Logged request %s for session %s\n", req.ID, req.SessionID)
	return nil
}

// storeExecutor queues requests by writing them to the request log.
type storeExecutor struct {
	st *store.Store
}

func (e storeExecutor) Submit(ctx context.Context, req builder.ExecutionRequest) error {
	return e.st.LogRequest(ctx, store.RequestRecord{
		ID:          req.ID,
		SessionID:   req.SessionID,
		Model:       req.Target.Model,
		Query:       req.Query,
		Risky:       req.Risky,
		Confirmed:   req.Confirmed,
		RequestedAt: req.RequestedAt,
	})
}

// promptConfirmer asks on the terminal. Anything but y/yes declines.
type promptConfirmer struct {
	in  io.Reader
	out io.Writer
}

func (p promptConfirmer) ConfirmRisky(_ context.Context, message string) (bool, error) {
	fmt.Fprintf(p.out, "%s [y/N] ", message)
	line, err := bufio.NewReader(p.in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}
