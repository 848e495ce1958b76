package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/qbuilder/internal/filter"
	"github.com/roach88/qbuilder/internal/model"
)

// OperatorsOptions holds flags for the operators command.
type OperatorsOptions struct {
	*RootOptions
	Type    string
	TreatAs bool
}

// OperatorInfo is one applicable operator.
type OperatorInfo struct {
	Name       string `json:"name"`
	UsesValue  bool   `json:"uses_value"`
	UsesValue2 bool   `json:"uses_value2"`
}

// NewOperatorsCommand creates the operators command.
func NewOperatorsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &OperatorsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "operators",
		Short: "List the filter operators for a data type",
		Long: `List the filter operators an editor offers for a column of the given
data type, in presentation order.

Examples:
  qb operators --type string
  qb operators --type string --treatas
  qb operators --type datetime --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOperators(opts, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Type, "type", "t", "string", "column data type")
	cmd.Flags().BoolVar(&opts.TreatAs, "treatas", false, "the model supports TREATAS")

	return cmd
}

func runOperators(opts *OperatorsOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	dt, err := model.ParseDataType(opts.Type)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeUsage, "invalid --type", err)
	}

	ops := filter.Applicable(dt, model.Capabilities{TreatAs: opts.TreatAs})
	infos := make([]OperatorInfo, len(ops))
	for i, op := range ops {
		infos[i] = OperatorInfo{Name: op.String(), UsesValue: op.UsesValue(), UsesValue2: op.UsesValue2()}
	}

	if formatter.JSON() {
		return formatter.Success(infos)
	}
	names := make([]string, len(infos))
	for i, info := range infos {
		names[i] = info.Name
	}
	fmt.Fprintln(formatter.Writer, strings.Join(names, "\n"))
	return nil
}
