package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/tgis/internal/sampler"
	"github.com/roach88/tgis/internal/store"
)

// SampleOptions holds flags for the sample command.
type SampleOptions struct {
	*RootOptions
	File        string // CUE datasets instead of the register
	Expression  string
	Mode        string
	Gaps        bool
	Granularity string
	Record      bool
}

// SampleResult is a sampling run with its granules.
type SampleResult struct {
	ID       string                `json:"id"`
	Params   store.Params          `json:"params"`
	Granules []store.GranuleRecord `json:"granules"`
	Recorded bool                  `json:"recorded"`
}

// NewSampleCommand creates the sample command.
func NewSampleCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SampleOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "sample <sampler-id> [dataset-id...]",
		Short: "Sample datasets by temporal topology",
		Long: `Sample datasets with a topological operator expression.

In topology mode the first dataset is the sampler: each of its maps forms a
granule holding the maps of the other datasets that stand in a selected
relation to it. In granularity mode every dataset is sampled on the grid of
the common granularity (or --granularity).

With --record the run is stored in the register and can be replayed later.

Examples:
  tgis sample --db ./tgis.db precip temp --expr "{during|equal}"
  tgis sample --db ./tgis.db obs precip --expr "{contains,#}" --gaps
  tgis sample --file ./datasets.cue monthly quarterly yearly --mode granularity
  tgis sample --db ./tgis.db precip temp --record --format json`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSample(opts, args, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.File, "file", "f", "", "CUE datasets file or directory")
	cmd.Flags().StringVarP(&opts.Expression, "expr", "e", "", "operator expression (default {equal})")
	cmd.Flags().StringVar(&opts.Mode, "mode", string(sampler.ModeTopology), "sampling mode (topology|granularity)")
	cmd.Flags().BoolVar(&opts.Gaps, "gaps", false, "keep granules without matches")
	cmd.Flags().StringVar(&opts.Granularity, "granularity", "", "grid granularity in granularity mode, e.g. \"1 month\"")
	cmd.Flags().BoolVar(&opts.Record, "record", false, "record the run in the register")

	return cmd
}

func runSample(opts *SampleOptions, ids []string, cmd *cobra.Command) error {
	ctx := context.Background()
	formatter := opts.formatter(cmd)
	logger := opts.logger(cmd)

	if opts.Record && opts.File != "" {
		return formatter.Fail(ExitCommandError, ErrCodeArgument, "--record samples registered datasets; register the CUE file first")
	}

	mode, err := sampler.ParseMode(opts.Mode)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeArgument, err.Error())
	}
	policy, err := opts.policy()
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeArgument, err.Error())
	}
	params := store.Params{
		Expression:  opts.Expression,
		Mode:        mode,
		Gaps:        opts.Gaps,
		Granularity: opts.Granularity,
		Policy:      policy.String(),
		Datasets:    ids,
	}

	datasets, err := loadSource(ctx, opts.RootOptions, opts.File, ids)
	if err != nil {
		exit, code := sourceErrorCode(err)
		return formatter.Fail(exit, code, err.Error())
	}

	granules, err := params.Run(datasets)
	if err != nil {
		return formatter.Fail(ExitFailure, codeOf(err), err.Error())
	}
	logger.Debug("sampled", "datasets", len(datasets), "granules", len(granules), "mode", mode)

	rec, err := store.NewSampleRecord(params, datasets, granules)
	if err != nil {
		return formatter.Fail(ExitFailure, codeOf(err), err.Error())
	}
	result := SampleResult{ID: rec.ID, Params: rec.Params, Granules: rec.Granules}

	if opts.Record {
		st, err := opts.storeFor(formatter)
		if err != nil {
			return err
		}
		defer st.Close()
		inserted, err := st.WriteSample(ctx, rec)
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeWriteFailed, err.Error())
		}
		logger.Info("sample recorded", "id", rec.ID, "inserted", inserted)
		result.Recorded = true
	}

	return formatter.Emit(result, func(w io.Writer) { writeGranulesText(w, result) })
}

func writeGranulesText(w io.Writer, r SampleResult) {
	expression := r.Params.Expression
	if expression == "" {
		expression = "{equal}"
	}
	fmt.Fprintf(w, "%s over %s (%s): %d granule(s)\n", expression,
		strings.Join(r.Params.Datasets, ", "), r.Params.Mode, len(r.Granules))
	if r.Recorded {
		fmt.Fprintf(w, "recorded as %s\n", r.ID)
	}
	fmt.Fprintln(w)

	for _, g := range r.Granules {
		fmt.Fprintf(w, "  [%s, %s]", g.Start, g.End)
		if g.Count > 0 {
			fmt.Fprintf(w, " count=%d", g.Count)
		}
		fmt.Fprintln(w)
		for _, id := range r.Params.Datasets {
			members, ok := g.Members[id]
			if !ok {
				continue
			}
			fmt.Fprintf(w, "    %-16s %s\n", id, strings.Join(members, " "))
		}
	}
}
