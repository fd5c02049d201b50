package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		name       string
		args       []string
		canonical  string
		relations  []any
		temporal   string
		function   string
		kind       string
	}{
		{
			name:      "relation list",
			args:      []string{"{during|equal}"},
			canonical: "{during|equal}",
			relations: []any{"equal", "during"},
		},
		{
			name:      "count with equal extent",
			args:      []string{"{contains,=#}"},
			canonical: "{contains,=#}",
			relations: []any{"contains"},
			temporal:  "=",
			function:  "#",
			kind:      "count",
		},
		{
			name:      "overlay",
			args:      []string{"{during,&~}"},
			canonical: "{during,&~}",
			relations: []any{"during"},
			temporal:  "&",
			function:  "~",
			kind:      "overlay",
		},
		{
			name:      "comparison",
			args:      []string{"--comparison", "{overlaps,+&&}"},
			canonical: "{overlaps,+&&}",
			relations: []any{"overlaps"},
			temporal:  "+",
			function:  "&&",
			kind:      "comparison",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			cmd := NewParseCommand(&RootOptions{Format: "json"})
			cmd.SetOut(buf)
			cmd.SetArgs(tt.args)

			require.NoError(t, cmd.Execute())

			var result map[string]any
			decodeData(t, buf.String(), &result)
			assert.Equal(t, tt.canonical, result["canonical"])
			assert.ElementsMatch(t, tt.relations, result["relations"])
			if tt.function != "" {
				assert.Equal(t, tt.temporal, result["temporal"])
				assert.Equal(t, tt.function, result["function"])
				assert.Equal(t, tt.kind, result["kind"])
			} else {
				assert.NotContains(t, result, "function")
				assert.NotContains(t, result, "kind")
			}
		})
	}
}

func TestParseCommandText(t *testing.T) {
	buf := &bytes.Buffer{}
	cmd := NewParseCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"{contains,=#}"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "{contains,=#}\n")
	assert.Contains(t, buf.String(), "relations: contains")
	assert.Contains(t, buf.String(), `function:  "#" (count)`)
}

func TestParseCommandError(t *testing.T) {
	buf := &bytes.Buffer{}
	cmd := NewParseCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"{equal,*}"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, buf.String(), "{equal,*}\n       ^")
}

func TestParseCommandComparisonRequiresFlag(t *testing.T) {
	buf := &bytes.Buffer{}
	cmd := NewParseCommand(&RootOptions{Format: "json"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"{overlaps,+&&}"})

	err := cmd.Execute()
	require.Error(t, err)

	resp := decodeData(t, buf.String(), nil)
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeParse, resp.Error.Code)
}
