package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/tgis/internal/compiler"
	"github.com/roach88/tgis/internal/timemath"
)

// DeltaResult is the calendar difference between two timestamps.
type DeltaResult struct {
	Start   string         `json:"start"`
	End     string         `json:"end"`
	Delta   timemath.Delta `json:"delta"`
	Seconds int64          `json:"seconds"`
}

// NewDeltaCommand creates the delta command.
func NewDeltaCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delta <start> <end>",
		Short: "Compute the calendar difference between two timestamps",
		Long: `Compute the calendar-aware difference between two timestamps.

Years and months count whole calendar months. Days, hours, minutes and
seconds are totals of the remainder after the last whole month.

Examples:
  tgis delta 2001-01-01 2002-03-01
  tgis delta "2001-01-31 06:00" "2001-03-01 12:30"`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDelta(rootOpts, args[0], args[1], cmd)
		},
	}

	return cmd
}

func runDelta(opts *RootOptions, startText, endText string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	start, err := compiler.ParseTime(startText)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeParse, err.Error())
	}
	end, err := compiler.ParseTime(endText)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeParse, err.Error())
	}

	d, err := timemath.ComputeDelta(start, end)
	if err != nil {
		return formatter.Fail(ExitFailure, codeOf(err), err.Error())
	}

	result := DeltaResult{
		Start:   start.Format("2006-01-02 15:04:05"),
		End:     end.Format("2006-01-02 15:04:05"),
		Delta:   d,
		Seconds: timemath.Seconds(start, end),
	}
	return formatter.Emit(result, func(w io.Writer) {
		fmt.Fprintln(w, d.String())
	})
}
