package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/tgis/internal/ir"
	"github.com/roach88/tgis/internal/relation"
)

// RelateOptions holds flags for the relate command.
type RelateOptions struct {
	*RootOptions
	Unit  string // relative unit; empty for timestamps
	BBoxA string
	BBoxB string
}

// RelateResult is the classification of one pair of extents.
type RelateResult struct {
	A        string `json:"a"`
	B        string `json:"b"`
	Relation string `json:"relation"`
	Inverse  string `json:"inverse"`
	Policy   string `json:"policy"`
	Spatial  string `json:"spatial,omitempty"`
}

// NewRelateCommand creates the relate command.
func NewRelateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RelateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "relate <extent-a> <extent-b>",
		Short: "Classify the Allen relation between two extents",
		Long: `Classify the temporal relation of extent A to extent B.

An extent is "start..end" or a single instant. Timestamps may use any
common layout; with --unit the positions are relative integers.

Examples:
  tgis relate 2001-01-01..2001-04-01 2001-02-01..2001-03-01
  tgis relate "2001-01-15 12:00" 2001-01-01..2001-02-01
  tgis relate --unit days 1..5 5..9
  tgis relate 2001-01-01..2001-02-01 2001-01-01..2001-02-01 --bbox-a 10,0,10,0 --bbox-b 5,1,5,1`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRelate(opts, args[0], args[1], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Unit, "unit", "", "relative unit of both extents")
	cmd.Flags().StringVar(&opts.BBoxA, "bbox-a", "", "bounding box of A (north,south,east,west)")
	cmd.Flags().StringVar(&opts.BBoxB, "bbox-b", "", "bounding box of B (north,south,east,west)")

	return cmd
}

func runRelate(opts *RelateOptions, textA, textB string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	unit := ir.UnitNone
	if opts.Unit != "" {
		u, err := ir.ParseUnit(opts.Unit)
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeArgument, err.Error())
		}
		unit = u
	}
	a, err := parseExtent(textA, unit)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeParse, fmt.Sprintf("extent A: %v", err))
	}
	b, err := parseExtent(textB, unit)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeParse, fmt.Sprintf("extent B: %v", err))
	}
	policy, err := opts.policy()
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeArgument, err.Error())
	}

	rel, err := relation.NewClassifier(relation.WithPolicy(policy)).Classify(a, b)
	if err != nil {
		return formatter.Fail(ExitFailure, codeOf(err), err.Error())
	}

	result := RelateResult{
		A:        a.String(),
		B:        b.String(),
		Relation: rel.String(),
		Inverse:  rel.Inverse().String(),
		Policy:   policy.String(),
	}

	boxA, err := parseBBox(opts.BBoxA)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeArgument, err.Error())
	}
	boxB, err := parseBBox(opts.BBoxB)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeArgument, err.Error())
	}
	if boxA != nil && boxB != nil {
		result.Spatial = relation.ClassifySpatial(*boxA, *boxB).String()
	}

	return formatter.Emit(result, func(w io.Writer) {
		fmt.Fprintf(w, "%s %s %s\n", result.A, result.Relation, result.B)
		if result.Spatial != "" {
			fmt.Fprintf(w, "spatial: %s\n", result.Spatial)
		}
	})
}
