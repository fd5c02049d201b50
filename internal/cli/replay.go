package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/tgis/internal/store"
)

// ReplayResult holds the overall replay result.
type ReplayResult struct {
	Samples      []store.ReplayResult `json:"samples"`
	TotalSamples int                  `json:"total_samples"`
	AllIdentical bool                 `json:"all_identical"`
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "replay [sample-id...]",
		Short: "Replay recorded samples and verify determinism",
		Long: `Re-run recorded samples against the registered datasets and compare
granule fingerprints with the recorded run.

A sample replays identically as long as its input datasets are unchanged.
Without ids every recorded sample is replayed.

Exit codes:
  0 - All samples replayed identically
  1 - At least one granule differs
  2 - Command error (database not found, unknown sample, etc.)

Examples:
  tgis replay --db ./tgis.db
  tgis replay --db ./tgis.db 3f2a... --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(rootOpts, args, cmd)
		},
	}

	return cmd
}

func runReplay(opts *RootOptions, ids []string, cmd *cobra.Command) error {
	ctx := context.Background()

	st, err := opts.storeFor(opts.formatter(cmd))
	if err != nil {
		return err
	}
	defer st.Close()

	if len(ids) == 0 {
		records, err := st.ListSamples(ctx)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to list samples", err)
		}
		for _, rec := range records {
			ids = append(ids, rec.ID)
		}
	}

	if len(ids) == 0 {
		if opts.Format == "json" {
			return outputReplayJSON(cmd, ReplayResult{Samples: []store.ReplayResult{}, AllIdentical: true})
		}
		fmt.Fprintln(cmd.OutOrStdout(), "No samples found in database.")
		return nil
	}

	result := ReplayResult{
		Samples:      make([]store.ReplayResult, 0, len(ids)),
		TotalSamples: len(ids),
		AllIdentical: true,
	}
	for _, id := range ids {
		res, err := st.Replay(ctx, id)
		if err != nil {
			if errors.Is(err, store.ErrSampleNotFound) || errors.Is(err, store.ErrDatasetNotFound) {
				return WrapExitError(ExitCommandError, fmt.Sprintf("failed to replay sample %s", id), err)
			}
			return WrapExitError(ExitFailure, fmt.Sprintf("failed to replay sample %s", id), err)
		}
		result.Samples = append(result.Samples, res)
		if !res.Identical {
			result.AllIdentical = false
		}
	}

	if opts.Format == "json" {
		return outputReplayJSON(cmd, result)
	}
	return outputReplayText(cmd, result, opts.Verbose)
}

// outputReplayJSON outputs the replay result as JSON.
func outputReplayJSON(cmd *cobra.Command, result ReplayResult) error {
	response := CLIResponse{Status: "ok", Data: result}
	if !result.AllIdentical {
		response.Status = "error"
		response.Error = &CLIError{
			Code:    "E_NONDETERMINISTIC",
			Message: "replayed granules differ from the recorded run",
		}
	}

	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(response); err != nil {
		return err
	}

	if !result.AllIdentical {
		return NewExitError(ExitFailure, "replay differs from recorded samples")
	}
	return nil
}

// outputReplayText outputs the replay result as human-readable text.
func outputReplayText(cmd *cobra.Command, result ReplayResult, verbose bool) error {
	w := cmd.OutOrStdout()

	fmt.Fprintf(w, "Replayed %d sample(s)\n\n", result.TotalSamples)
	for _, s := range result.Samples {
		status := "✓"
		if !s.Identical {
			status = "✗"
		}
		fmt.Fprintf(w, "%s %s  %d granule(s)", status, s.SampleID, s.Recorded)
		if s.Replayed != s.Recorded {
			fmt.Fprintf(w, ", %d on replay", s.Replayed)
		}
		fmt.Fprintln(w)
		if verbose && len(s.Mismatches) > 0 {
			fmt.Fprintf(w, "  differing granules: %v\n", s.Mismatches)
		}
	}
	fmt.Fprintln(w)

	if !result.AllIdentical {
		fmt.Fprintln(w, "✗ Replay differs from the recorded run (input datasets changed)")
		return NewExitError(ExitFailure, "replay differs from recorded samples")
	}
	fmt.Fprintln(w, "✓ All samples replayed identically")
	return nil
}
