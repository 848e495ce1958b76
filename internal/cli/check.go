package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/qbuilder/internal/builder"
)

// CheckOptions holds flags for the check command.
type CheckOptions struct {
	*RootOptions
	ModelOptions
}

// CheckResult is the outcome of checking a session against a model.
type CheckResult struct {
	SessionID      string   `json:"session_id"`
	Model          string   `json:"model"`
	Risky          bool     `json:"risky"`
	Problems       []string `json:"problems"`
	InvalidFilters []int    `json:"invalid_filters"`
	SynthesisError string   `json:"synthesis_error,omitempty"`
}

// OK reports whether the session has no problems.
func (r CheckResult) OK() bool {
	return !r.Risky && len(r.Problems) == 0 && len(r.InvalidFilters) == 0 && r.SynthesisError == ""
}

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CheckOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "check <session-file>",
		Short: "Check a session for crossjoin risk and stale entries",
		Long: `Check a saved session against the model.

Reports:
  - crossjoin risk (columns from several tables and no measure)
  - entries that no longer resolve against the model
  - filters whose operator the model no longer supports
  - filters whose operands cannot be translated

Exit codes:
  0 - No problems
  1 - At least one problem
  2 - Command error (bad model, unreadable session)

Examples:
  qb check --model ./model sales.yaml
  qb check --model ./model sales.yaml --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(opts, args[0], cmd)
		},
	}

	opts.ModelOptions.register(cmd)

	return cmd
}

func runCheck(opts *CheckOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	b, loaded, err := opts.openSession(formatter, path)
	if err != nil {
		return err
	}

	result := check(b)
	result.Problems = problemStrings(loaded)

	if formatter.JSON() {
		if err := formatter.Success(result); err != nil {
			return err
		}
	} else {
		printCheck(formatter, result)
	}

	if !result.OK() {
		return NewExitError(ExitFailure, "session has problems")
	}
	return nil
}

func check(b *builder.Builder) CheckResult {
	result := CheckResult{
		SessionID:      b.SessionID(),
		Model:          b.Capabilities().Model,
		Risky:          b.Selection().IsRisky(),
		InvalidFilters: b.InvalidFilters(),
	}
	if result.InvalidFilters == nil {
		result.InvalidFilters = []int{}
	}
	// Capability drift is already listed, synthesis adds operand errors.
	if len(result.InvalidFilters) == 0 {
		if _, err := b.QueryText(); err != nil {
			result.SynthesisError = err.Error()
		}
	}
	return result
}

func printCheck(f *OutputFormatter, r CheckResult) {
	if r.OK() {
		fmt.Fprintf(f.Writer, "✓ Session %s is ready to run against %s\n", r.SessionID, r.Model)
		return
	}
	fmt.Fprintf(f.Writer, "✗ Session %s has problems\n", r.SessionID)
	if r.Risky {
		fmt.Fprintln(f.Writer, "  risk: columns from several tables and no measure; the query may crossjoin")
	}
	for _, p := range r.Problems {
		fmt.Fprintf(f.Writer, "  entry: %s\n", p)
	}
	for _, i := range r.InvalidFilters {
		fmt.Fprintf(f.Writer, "  filter %d: operator not supported by %s\n", i+1, r.Model)
	}
	if r.SynthesisError != "" {
		fmt.Fprintf(f.Writer, "  synthesis: %s\n", r.SynthesisError)
	}
}
