package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/qbuilder/internal/builder"
	"github.com/roach88/qbuilder/internal/daxgen"
	"github.com/roach88/qbuilder/internal/session"
)

// ModelOptions are the flags shared by commands that need a model.
type ModelOptions struct {
	ModelDir  string
	ModelName string
	Between   string // "strict" | "one-sided"
	NoMarkers bool
}

func (m *ModelOptions) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&m.ModelDir, "model", "m", "", "directory holding the CUE model (required)")
	_ = cmd.MarkFlagRequired("model")
	cmd.Flags().StringVar(&m.ModelName, "name", "", "model to use when the directory defines several")
	cmd.Flags().StringVar(&m.Between, "between", "strict", "Between with one empty operand: strict|one-sided")
	cmd.Flags().BoolVar(&m.NoMarkers, "no-markers", false, "omit the START/END QUERY BUILDER comments")
}

func (m *ModelOptions) synthesizer() (*daxgen.Synthesizer, error) {
	var policy daxgen.BetweenPolicy
	switch m.Between {
	case "strict", "":
		policy = daxgen.BetweenStrict
	case "one-sided":
		policy = daxgen.BetweenOneSided
	default:
		return nil, fmt.Errorf("invalid --between %q: must be strict or one-sided", m.Between)
	}
	return daxgen.New(daxgen.WithBetweenPolicy(policy), daxgen.WithMarkers(!m.NoMarkers)), nil
}

// openSession loads the model, decodes the session file and restores it
// into a new Builder. Load problems are returned, not treated as errors.
func (m *ModelOptions) openSession(f *OutputFormatter, path string, opts ...builder.Option) (*builder.Builder, *session.LoadResult, error) {
	synth, err := m.synthesizer()
	if err != nil {
		return nil, nil, f.Fail(ExitCommandError, ErrCodeUsage, "invalid flags", err)
	}
	mdl, err := loadModel(f, m.ModelDir, m.ModelName)
	if err != nil {
		return nil, nil, err
	}
	doc, err := readSessionFile(f, path)
	if err != nil {
		return nil, nil, err
	}
	b := builder.New(mdl, append([]builder.Option{builder.WithSynthesizer(synth)}, opts...)...)
	result := b.Load(doc)
	f.VerboseLog("Loaded session %s: %d column(s), %d filter(s), %d order item(s)",
		b.SessionID(), len(result.Selection.Columns), len(result.Selection.Filters), len(result.Selection.OrderBy))
	return b, result, nil
}

// BuildOptions holds flags for the build command.
type BuildOptions struct {
	*RootOptions
	ModelOptions
	Output string
}

// BuildResult is the JSON payload of the build command.
type BuildResult struct {
	SessionID string   `json:"session_id"`
	Model     string   `json:"model"`
	Query     string   `json:"query"`
	Risky     bool     `json:"risky"`
	Problems  []string `json:"problems,omitempty"`
}

// NewBuildCommand creates the build command.
func NewBuildCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &BuildOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "build <session-file>",
		Short: "Print the DAX query for a session",
		Long: `Synthesize the DAX query for a saved session.

Entries that no longer resolve against the model are skipped with a
warning. A filter that cannot be translated fails the command.

Exit codes:
  0 - Query printed
  1 - Query could not be built
  2 - Command error (bad model, unreadable session)

Examples:
  qb build --model ./model sales.yaml
  qb build --model ./model --between one-sided sales.json
  qb build --model ./model --output query.dax sales.yaml`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(opts, args[0], cmd)
		},
	}

	opts.ModelOptions.register(cmd)
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "write the query to a file")

	return cmd
}

func runBuild(opts *BuildOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	b, result, err := opts.openSession(formatter, path)
	if err != nil {
		return err
	}
	for _, p := range result.Problems {
		formatter.Warn("%v", p)
	}

	text, err := b.QueryText()
	if err != nil {
		return formatter.Fail(ExitFailure, ErrCodeSynthesis, "query cannot be built", err)
	}

	if opts.Output != "" {
		if err := os.WriteFile(opts.Output, []byte(text), 0o644); err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeWriteFailed, "writing output file", err)
		}
		formatter.VerboseLog("Wrote %s", opts.Output)
	}

	if formatter.JSON() {
		return formatter.Success(BuildResult{
			SessionID: b.SessionID(),
			Model:     b.Capabilities().Model,
			Query:     text,
			Risky:     b.Selection().IsRisky(),
			Problems:  problemStrings(result),
		})
	}
	if opts.Output == "" {
		fmt.Fprint(formatter.Writer, text)
	}
	return nil
}
