package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/roach88/tgis/internal/relation"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose       bool
	Format        string // "json" | "text"
	Config        string // config file path
	Database      string // SQLite register path
	InstantPolicy string // "zero-length" | "point-start"
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// EnvPrefix is the prefix for environment overrides (TGIS_DB, TGIS_FORMAT, ...).
const EnvPrefix = "TGIS"

// NewRootCommand creates the root command for the tgis CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "tgis",
		Short: "tgis - temporal topology engine",
		Long: `A temporal-topology engine for map series.

Relates the time extents of maps with Allen's interval algebra, resolves
a common granularity across datasets and samples one dataset by the
topology of others.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := loadConfig(cmd, opts); err != nil {
				return NewExitError(ExitCommandError, err.Error())
			}
			// Validate format flag
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			if _, err := relation.ParsePolicy(opts.InstantPolicy); err != nil {
				return NewExitError(ExitCommandError, err.Error())
			}
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.Config, "config", "", "config file (default $HOME/.tgis.yaml)")
	cmd.PersistentFlags().StringVar(&opts.Database, "db", "", "path to SQLite register")
	cmd.PersistentFlags().StringVar(&opts.InstantPolicy, "instant-policy", relation.PolicyZeroLength.String(), "instant handling (zero-length|point-start)")

	// Add subcommands
	cmd.AddCommand(NewCompileCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewRelateCommand(opts))
	cmd.AddCommand(NewDeltaCommand(opts))
	cmd.AddCommand(NewParseCommand(opts))
	cmd.AddCommand(NewGranularityCommand(opts))
	cmd.AddCommand(NewRegisterCommand(opts))
	cmd.AddCommand(NewRemoveCommand(opts))
	cmd.AddCommand(NewListCommand(opts))
	cmd.AddCommand(NewTopologyCommand(opts))
	cmd.AddCommand(NewSampleCommand(opts))
	cmd.AddCommand(NewReplayCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))

	return cmd
}

// loadConfig layers the config file and TGIS_* environment variables under
// the command line. Explicit flags always win.
func loadConfig(cmd *cobra.Command, opts *RootOptions) error {
	v := viper.New()
	v.SetConfigType("yaml")
	if opts.Config != "" {
		v.SetConfigFile(opts.Config)
	} else if home, err := os.UserHomeDir(); err == nil {
		v.SetConfigFile(filepath.Join(home, ".tgis.yaml"))
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("binding flags: %w", err)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		switch {
		case errors.As(err, &notFound):
		case opts.Config == "" && errors.Is(err, os.ErrNotExist):
			// The default config file is optional.
		default:
			return fmt.Errorf("failed to load configuration file. %w", err)
		}
	}

	opts.Verbose = v.GetBool("verbose")
	opts.Format = v.GetString("format")
	opts.Database = v.GetString("db")
	opts.InstantPolicy = v.GetString("instant-policy")
	return nil
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

// policy returns the configured instant policy.
func (o *RootOptions) policy() (relation.Policy, error) {
	return relation.ParsePolicy(o.InstantPolicy)
}

// logger returns a text logger on stderr. Verbose mode lowers the level to
// debug; otherwise only warnings are shown.
func (o *RootOptions) logger(cmd *cobra.Command) *slog.Logger {
	level := slog.LevelWarn
	if o.Verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
}

// formatter builds the output formatter for a command.
func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   o.Verbose,
	}
}
