package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/tgis/internal/store"
)

// ListResult holds the register contents.
type ListResult struct {
	Datasets []store.DatasetInfo `json:"datasets"`
	Samples  []SampleSummary     `json:"samples,omitempty"`
}

// SampleSummary describes a recorded sampling run without its granules.
type SampleSummary struct {
	ID       string       `json:"id"`
	Params   store.Params `json:"params"`
	Granules int          `json:"granules"`
	Seq      int64        `json:"seq"`
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	var withSamples bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List registered datasets and recorded samples",
		Long: `List registered datasets in registration order.

With --samples the recorded sampling runs are listed as well.

Examples:
  tgis list --db ./tgis.db
  tgis list --db ./tgis.db --samples --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(rootOpts, withSamples, cmd)
		},
	}

	cmd.Flags().BoolVar(&withSamples, "samples", false, "also list recorded samples")

	return cmd
}

func runList(opts *RootOptions, withSamples bool, cmd *cobra.Command) error {
	ctx := context.Background()
	formatter := opts.formatter(cmd)

	st, err := opts.storeFor(formatter)
	if err != nil {
		return err
	}
	defer st.Close()

	var result ListResult
	if result.Datasets, err = st.ListDatasets(ctx); err != nil {
		return WrapExitError(ExitCommandError, "failed to list datasets", err)
	}
	if withSamples {
		records, err := st.ListSamples(ctx)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to list samples", err)
		}
		result.Samples = make([]SampleSummary, 0, len(records))
		for _, rec := range records {
			result.Samples = append(result.Samples, SampleSummary{
				ID:       rec.ID,
				Params:   rec.Params,
				Granules: len(rec.Granules),
				Seq:      rec.Seq,
			})
		}
	}

	return formatter.Emit(result, func(w io.Writer) {
		if len(result.Datasets) == 0 {
			fmt.Fprintln(w, "No datasets registered.")
		} else {
			fmt.Fprintln(w, "Datasets:")
			for _, d := range result.Datasets {
				gran := d.Granularity
				if gran == "" {
					gran = "-"
				}
				fmt.Fprintf(w, "  %-16s %-8s %4d map(s)  %s\n", d.ID, d.Type, d.Maps, gran)
			}
		}
		if withSamples {
			fmt.Fprintln(w)
			if len(result.Samples) == 0 {
				fmt.Fprintln(w, "No samples recorded.")
				return
			}
			fmt.Fprintln(w, "Samples:")
			for _, s := range result.Samples {
				fmt.Fprintf(w, "  %s  %s over %s (%d granule(s))\n",
					s.ID[:12], s.Params.Expression, strings.Join(s.Params.Datasets, ", "), s.Granules)
			}
		}
	})
}
