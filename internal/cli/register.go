package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/tgis/internal/compiler"
	"github.com/roach88/tgis/internal/store"
)

// RegisterResult lists what happened to each dataset.
type RegisterResult struct {
	Datasets []store.WriteResult `json:"datasets"`
}

// NewRegisterCommand creates the register command.
func NewRegisterCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "register <datasets>",
		Short: "Register CUE datasets in the store",
		Long: `Compile CUE datasets and register them in the SQLite store.

Registering a dataset again with the same content is a no-op. Changed
content replaces the stored maps and moves the dataset to the end of the
registration order.

Exit codes:
  0 - All datasets registered
  1 - Datasets failed validation
  2 - Command error (invalid path, database error, etc.)

Examples:
  tgis register --db ./tgis.db ./datasets
  TGIS_DB=./tgis.db tgis register precip.cue`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRegister(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runRegister(opts *RootOptions, path string, cmd *cobra.Command) error {
	ctx := context.Background()
	formatter := opts.formatter(cmd)
	logger := opts.logger(cmd)

	loadResult, loadErrors := LoadDatasets(path, LoadModeFailFast)
	if len(loadErrors) > 0 {
		code, message := parseCompileError(loadErrors[0])
		return formatter.Fail(ExitCommandError, code, message)
	}

	if errs := compiler.Validate(loadResult.Datasets); len(errs) > 0 {
		return outputValidationErrors(formatter, errs, len(loadResult.Datasets))
	}

	st, err := opts.storeFor(formatter)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			logger.Error("error closing database", "error", closeErr)
		}
	}()

	result := RegisterResult{Datasets: make([]store.WriteResult, 0, len(loadResult.Datasets))}
	for _, ds := range loadResult.Datasets {
		res, err := st.WriteDataset(ctx, ds)
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeWriteFailed, err.Error())
		}
		logger.Info("dataset registered", "id", res.ID, "status", res.Status, "seq", res.Seq)
		result.Datasets = append(result.Datasets, res)
	}

	return formatter.Emit(result, func(w io.Writer) {
		fmt.Fprintf(w, "✓ Registered %d dataset(s)\n\n", len(result.Datasets))
		for _, r := range result.Datasets {
			fmt.Fprintf(w, "  %-16s %-9s %s\n", r.ID, r.Status, r.Fingerprint[:12])
		}
	})
}

// NewRemoveCommand creates the remove command.
func NewRemoveCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "remove <dataset-id>",
		Short:         "Remove a dataset from the store",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := rootOpts.formatter(cmd)
			st, err := rootOpts.storeFor(formatter)
			if err != nil {
				return err
			}
			defer st.Close()

			if err := st.DeleteDataset(context.Background(), args[0]); err != nil {
				if errors.Is(err, store.ErrDatasetNotFound) {
					return formatter.Fail(ExitCommandError, ErrCodeNotFound, err.Error())
				}
				return formatter.Fail(ExitCommandError, ErrCodeWriteFailed, err.Error())
			}
			return formatter.Emit(map[string]string{"removed": args[0]}, func(w io.Writer) {
				fmt.Fprintf(w, "✓ Removed %s\n", args[0])
			})
		},
	}

	return cmd
}
