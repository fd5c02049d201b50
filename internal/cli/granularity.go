package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/tgis/internal/granularity"
	"github.com/roach88/tgis/internal/ir"
)

// GranularityOptions holds flags for the granularity command.
type GranularityOptions struct {
	*RootOptions
	File string // CUE datasets instead of the register
	Grid bool   // also list the grid cells over the common span
}

// DatasetGranularity is the granularity of one input dataset.
type DatasetGranularity struct {
	ID          string `json:"id"`
	Granularity string `json:"granularity"`
	Start       string `json:"start"`
}

// GranularityResult holds the resolved common granularity.
type GranularityResult struct {
	Granularity string               `json:"granularity"`
	Datasets    []DatasetGranularity `json:"datasets"`
	Grid        []string             `json:"grid,omitempty"`
}

// NewGranularityCommand creates the granularity command.
func NewGranularityCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &GranularityOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "granularity [dataset-id...]",
		Short: "Resolve the common granularity of datasets",
		Long: `Resolve the coarsest granularity that divides the granularity of every
dataset and aligns every dataset start on a shared grid.

Datasets are read from the register (--db), or compiled from CUE with
--file. Without ids every dataset is used.

Examples:
  tgis granularity --db ./tgis.db precip temp
  tgis granularity --file ./datasets.cue --grid`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGranularity(opts, args, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.File, "file", "f", "", "CUE datasets file or directory")
	cmd.Flags().BoolVar(&opts.Grid, "grid", false, "list the grid cells over the common span")

	return cmd
}

func runGranularity(opts *GranularityOptions, ids []string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	datasets, err := loadSource(context.Background(), opts.RootOptions, opts.File, ids)
	if err != nil {
		exit, code := sourceErrorCode(err)
		return formatter.Fail(exit, code, err.Error())
	}

	g, err := granularity.ResolveDatasets(datasets)
	if err != nil {
		return formatter.Fail(ExitFailure, codeOf(err), err.Error())
	}

	result := GranularityResult{Granularity: g.String(), Datasets: make([]DatasetGranularity, 0, len(datasets))}
	var span ir.Extent
	for i, ds := range datasets {
		d, err := granularity.Describe(ds)
		if err != nil {
			return formatter.Fail(ExitFailure, codeOf(err), err.Error())
		}
		result.Datasets = append(result.Datasets, DatasetGranularity{
			ID:          d.ID,
			Granularity: d.Granularity.String(),
			Start:       d.Start.String(),
		})
		ext, _ := ds.Extent()
		if i == 0 {
			span = ext
		} else {
			span = span.Span(ext)
		}
	}

	if opts.Grid {
		cells, err := granularity.Grid(span, g)
		if err != nil {
			return formatter.Fail(ExitFailure, codeOf(err), err.Error())
		}
		for _, c := range cells {
			result.Grid = append(result.Grid, c.String())
		}
	}

	return formatter.Emit(result, func(w io.Writer) {
		fmt.Fprintf(w, "Granularity: %s\n\n", result.Granularity)
		for _, d := range result.Datasets {
			fmt.Fprintf(w, "  %-16s %-12s from %s\n", d.ID, d.Granularity, d.Start)
		}
		if len(result.Grid) > 0 {
			fmt.Fprintf(w, "\nGrid (%d cells):\n", len(result.Grid))
			for _, c := range result.Grid {
				fmt.Fprintf(w, "  %s\n", c)
			}
		}
	})
}
