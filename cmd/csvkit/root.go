package main

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/shapestone/csvcodec/internal/config"
	"github.com/shapestone/csvcodec/pkg/csv"
)

// app carries the state shared by all commands.
type app struct {
	v       *viper.Viper
	cfgFile string
	verbose bool
	logger  *log.Logger
	cfg     *config.Config
}

// flagKeys maps dialect flags to their config keys.
var flagKeys = []struct {
	flag, key string
}{
	{"delimiter", "read.delimiter"},
	{"quote", "read.quote"},
	{"escape", "read.escape"},
	{"skip-empty-lines", "read.skip_empty_lines"},
	{"excess", "read.excess"},
	{"insufficient", "read.insufficient"},
	{"skip-mismatched", "read.skip_mismatched"},
	{"auto-rename", "read.auto_rename"},
	{"expected-fields", "read.expected_field_count"},
	{"out-delimiter", "write.delimiter"},
	{"out-quote", "write.quote"},
	{"quote-mode", "write.quote_mode"},
	{"line-terminator", "write.line_terminator"},
	{"null", "write.null"},
	{"bom", "write.bom"},
}

func newRootCommand() *cobra.Command {
	a := &app{v: config.New()}

	rootCmd := &cobra.Command{
		Use:   "csvkit",
		Short: "Read, convert and validate CSV files",
		Long: `csvkit reads, converts and validates CSV files.

The input and output dialects come from flags, CSVKIT_* environment
variables and an optional config file (yaml, toml or json), in that order
of precedence.

Examples:
  csvkit read --header --format json data.csv
  csvkit convert --delimiter ';' --out-delimiter tab in.csv out.tsv
  csvkit validate *.csv
  csvkit config show --format toml`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (yaml, toml or json)")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")

	flags.String("delimiter", ",", "input field delimiter (a character, or tab, comma, semicolon, pipe, space)")
	flags.String("quote", `"`, "input quote character")
	flags.String("escape", "", "input escape character (default is the quote)")
	flags.Bool("skip-empty-lines", false, "skip lines that are empty")
	flags.String("excess", "error", "policy for rows with too many fields: error, trim, ignore")
	flags.String("insufficient", "error", "policy for rows with too few fields: error, empty-string, ignore")
	flags.Bool("skip-mismatched", false, "drop rows whose field count differs instead of failing")
	flags.Bool("auto-rename", false, "rename duplicate header names to name_2, name_3, ...")
	flags.Int("expected-fields", 0, "expected number of fields per row (0 uses the first row)")
	flags.String("out-delimiter", "", "output field delimiter (default is the input delimiter)")
	flags.String("out-quote", "", "output quote character (default is the input quote)")
	flags.String("quote-mode", "when-needed", "output quoting: when-needed, always, non-numeric")
	flags.String("line-terminator", "crlf", "output line terminator: crlf, lf, cr")
	flags.String("null", "", "text written for null values")
	flags.Bool("bom", false, "prepend a byte order mark to the output")
	flags.Bool("no-trailing-terminator", false, "do not end the output with a line terminator")

	rootCmd.AddCommand(newReadCommand(a))
	rootCmd.AddCommand(newConvertCommand(a))
	rootCmd.AddCommand(newValidateCommand(a))
	rootCmd.AddCommand(newConfigCommand(a))

	return rootCmd
}

// init binds the dialect flags, loads the configuration and sets up logging.
func (a *app) init(cmd *cobra.Command) error {
	a.logger = log.NewWithOptions(cmd.ErrOrStderr(), log.Options{Prefix: "csvkit"})
	if a.verbose {
		a.logger.SetLevel(log.DebugLevel)
	}

	flags := cmd.Flags()
	var errs []error
	for _, fk := range flagKeys {
		errs = append(errs, a.v.BindPFlag(fk.key, flags.Lookup(fk.flag)))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("failed to bind flags: %w", err)
	}

	cfg, err := config.Load(a.v, a.cfgFile)
	if err != nil {
		return err
	}
	if noTrailing, _ := flags.GetBool("no-trailing-terminator"); noTrailing {
		cfg.Write.TrailingTerminator = false
	}
	a.cfg = cfg

	if a.cfgFile != "" {
		a.logger.Debug("loaded config", "path", a.cfgFile)
	}
	return nil
}

func (a *app) readerOptions() (csv.ReaderOptions, error) {
	opts, err := a.cfg.ReaderOptions()
	if err != nil {
		return opts, err
	}
	opts.Logger = a.logger
	return opts, nil
}
