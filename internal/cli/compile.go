package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/tgis/internal/granularity"
	"github.com/roach88/tgis/internal/ir"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Output string // output file path
}

// CompilationResult holds the compiled datasets.
type CompilationResult struct {
	Datasets []ir.Dataset `json:"datasets"`
}

// DatasetStats summarises one compiled dataset.
type DatasetStats struct {
	ID          string `json:"id"`
	Type        string `json:"temporal_type"`
	Maps        int    `json:"maps"`
	Extent      string `json:"extent"`
	Granularity string `json:"granularity"`
	Fingerprint string `json:"fingerprint"`
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile <datasets>",
		Short: "Compile CUE dataset definitions",
		Long: `Compile CUE dataset definitions to their canonical form.

The compiler expands regular series, assigns default map ids and reports
each dataset's extent, granularity and fingerprint. With --output the full
datasets are written as JSON.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors - we handle our own error output
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file path")

	return cmd
}

func runCompile(opts *CompileOptions, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	// Use shared loader with collect-all mode
	loadResult, loadErrors := LoadDatasets(path, LoadModeCollectAll)

	// Handle load errors (path not found, no files, etc.)
	if loadResult == nil && len(loadErrors) > 0 {
		code, message := parseCompileError(loadErrors[0])
		return formatter.Fail(ExitCommandError, code, message)
	}

	formatter.VerboseLog("Found %d CUE file(s) in %s", loadResult.FileCount, path)

	if len(loadErrors) > 0 {
		return outputCompileErrors(formatter, loadErrors)
	}

	stats := make([]DatasetStats, 0, len(loadResult.Datasets))
	for _, ds := range loadResult.Datasets {
		formatter.VerboseLog("Compiled dataset: %s", ds.ID)
		s, err := datasetStats(ds)
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeGeneric, fmt.Sprintf("dataset %s: %v", ds.ID, err))
		}
		stats = append(stats, s)
	}

	// Write to file if --output specified
	if opts.Output != "" {
		if err := writeDatasetsToFile(&CompilationResult{Datasets: loadResult.Datasets}, opts.Output); err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeWriteFailed, fmt.Sprintf("writing output file: %v", err))
		}
	}

	if formatter.Format == "json" {
		return formatter.Success(stats)
	}

	fmt.Fprintf(formatter.Writer, "✓ Compiled %d dataset(s)\n\n", len(stats))
	for _, s := range stats {
		fmt.Fprintf(formatter.Writer, "  %s: %d map(s), %s, granularity %s\n", s.ID, s.Maps, s.Extent, s.Granularity)
	}
	if opts.Output != "" {
		fmt.Fprintf(formatter.Writer, "\nWrote datasets to %s\n", opts.Output)
	}
	return nil
}

// datasetStats describes a compiled dataset: its span, the declared or
// inferred granularity and its content fingerprint.
func datasetStats(ds ir.Dataset) (DatasetStats, error) {
	s := DatasetStats{ID: ds.ID, Type: string(ds.Type), Maps: len(ds.Objects)}
	if ext, ok := ds.Extent(); ok {
		s.Extent = ext.String()
	}
	g, err := granularity.ForDataset(ds)
	if err != nil {
		return s, err
	}
	s.Granularity = g.String()
	if s.Fingerprint, err = ir.DatasetFingerprint(ds); err != nil {
		return s, err
	}
	return s, nil
}

// outputCompileErrors outputs multiple compilation errors.
func outputCompileErrors(formatter *OutputFormatter, errs []error) error {
	if formatter.Format == "json" {
		cliErrors := make([]CLIError, len(errs))
		for i, err := range errs {
			code, message := parseCompileError(err)
			cliErrors[i] = CLIError{Code: code, Message: message}
		}

		response := CLIResponse{
			Status: "error",
			Error:  &cliErrors[0],
			Data:   cliErrors, // Include all errors in data
		}

		encoder := json.NewEncoder(formatter.Writer)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(response); err != nil {
			return err
		}

		// Compilation errors are command-level errors (exit code 2)
		return NewExitError(ExitCommandError, fmt.Sprintf("compilation failed with %d error(s)", len(errs)))
	}

	fmt.Fprintln(formatter.Writer, "✗ Compilation failed")
	fmt.Fprintln(formatter.Writer)

	for _, err := range errs {
		code, message := parseCompileError(err)
		var loadErr *LoadError
		if errors.As(err, &loadErr) && loadErr.Pos.IsValid() {
			fmt.Fprintf(formatter.Writer, "%s:%d:%d\n",
				loadErr.Pos.Filename(),
				loadErr.Pos.Line(),
				loadErr.Pos.Column())
		}
		fmt.Fprintf(formatter.Writer, "  %s: %s\n\n", code, message)
	}

	return NewExitError(ExitCommandError, fmt.Sprintf("compilation failed with %d error(s)", len(errs)))
}

// parseCompileError extracts error code and message from an error.
func parseCompileError(err error) (string, string) {
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		return loadErr.Code, loadErr.Message
	}
	return ErrCodeGeneric, err.Error()
}

// writeDatasetsToFile writes the compiled datasets to a file.
func writeDatasetsToFile(result *CompilationResult, filename string) error {
	// Indented for readability; canonical JSON is used only for hashing
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling datasets: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("writing file: %w", err)
	}

	return nil
}
