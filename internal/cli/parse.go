package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/tgis/internal/expr"
	"github.com/roach88/tgis/internal/relation"
)

// ParseOptions holds flags for the parse command.
type ParseOptions struct {
	*RootOptions
	Comparison bool
}

// ParseResult describes a parsed expression.
type ParseResult struct {
	Canonical string              `json:"canonical"`
	Relations []relation.Relation `json:"relations"`
	Spatial   []string            `json:"spatial,omitempty"`
	Temporal  string              `json:"temporal,omitempty"`
	Function  string              `json:"function,omitempty"`
	Kind      string              `json:"kind,omitempty"`
}

// functionKind names the family of a sampling function.
func functionKind(f expr.Function) string {
	switch {
	case f.IsSelect():
		return "select"
	case f == expr.FuncCount:
		return "count"
	case f.IsOverlay():
		return "overlay"
	case f.IsComparison():
		return "comparison"
	}
	return ""
}

// NewParseCommand creates the parse command.
func NewParseCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ParseOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "parse <expression>",
		Short: "Parse a topological operator expression",
		Long: `Parse a topological operator expression and print its canonical form.

Examples:
  tgis parse "{during|equal}"
  tgis parse "{contains,=#}"
  tgis parse --comparison "{overlaps,+&&}"`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runParse(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Comparison, "comparison", false, "accept boolean comparison functions (&&, ||)")

	return cmd
}

func runParse(opts *ParseOptions, text string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	parse := expr.Parse
	if opts.Comparison {
		parse = expr.ParseComparison
	}
	e, err := parse(text)
	if err != nil {
		var pe *expr.ParseError
		if errors.As(err, &pe) {
			_ = formatter.Error(ErrCodeParse, pe.Message, map[string]any{"pos": pe.Pos, "context": pe.Context()})
			if formatter.Format != "json" {
				fmt.Fprintln(formatter.Writer, pe.Context())
			}
			return NewExitError(ExitFailure, err.Error())
		}
		return formatter.Fail(ExitFailure, ErrCodeParse, err.Error())
	}

	result := ParseResult{
		Canonical: e.String(),
		Relations: e.Relations().Relations(),
		Temporal:  e.Temporal.String(),
		Function:  string(e.Function),
		Kind:      functionKind(e.Function),
	}
	for _, s := range e.Spatial {
		result.Spatial = append(result.Spatial, s.String())
	}

	return formatter.Emit(result, func(w io.Writer) {
		fmt.Fprintln(w, result.Canonical)
		names := make([]string, len(result.Relations))
		for i, r := range result.Relations {
			names[i] = r.String()
		}
		fmt.Fprintf(w, "  relations: %s\n", strings.Join(names, ", "))
		if len(result.Spatial) > 0 {
			fmt.Fprintf(w, "  spatial:   %s\n", strings.Join(result.Spatial, ", "))
		}
		if result.Function != "" {
			fmt.Fprintf(w, "  temporal:  %q\n", result.Temporal)
			fmt.Fprintf(w, "  function:  %q (%s)\n", result.Function, result.Kind)
		}
	})
}
