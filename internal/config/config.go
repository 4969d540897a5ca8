// Package config loads csvkit dialect settings from a config file,
// CSVKIT_* environment variables and command-line flags.
package config

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/goccy/go-json"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/shapestone/csvcodec/pkg/csv"
)

// EnvPrefix is the prefix of environment variables read by New.
// CSVKIT_READ_DELIMITER sets read.delimiter.
const EnvPrefix = "CSVKIT"

// Config is the effective csvkit configuration.
type Config struct {
	Read  ReadConfig  `mapstructure:"read" toml:"read" yaml:"read" json:"read"`
	Write WriteConfig `mapstructure:"write" toml:"write" yaml:"write" json:"write"`
}

// ReadConfig holds the input dialect and the field count policies.
type ReadConfig struct {
	Delimiter          string `mapstructure:"delimiter" toml:"delimiter" yaml:"delimiter" json:"delimiter"`
	Quote              string `mapstructure:"quote" toml:"quote" yaml:"quote" json:"quote"`
	Escape             string `mapstructure:"escape" toml:"escape" yaml:"escape" json:"escape"`
	SkipEmptyLines     bool   `mapstructure:"skip_empty_lines" toml:"skip_empty_lines" yaml:"skip_empty_lines" json:"skip_empty_lines"`
	Excess             string `mapstructure:"excess" toml:"excess" yaml:"excess" json:"excess"`
	Insufficient       string `mapstructure:"insufficient" toml:"insufficient" yaml:"insufficient" json:"insufficient"`
	SkipMismatched     bool   `mapstructure:"skip_mismatched" toml:"skip_mismatched" yaml:"skip_mismatched" json:"skip_mismatched"`
	AutoRename         bool   `mapstructure:"auto_rename" toml:"auto_rename" yaml:"auto_rename" json:"auto_rename"`
	ExpectedFieldCount int    `mapstructure:"expected_field_count" toml:"expected_field_count" yaml:"expected_field_count" json:"expected_field_count"`
}

// WriteConfig holds the output dialect. An empty Delimiter or Quote falls
// back to the read dialect.
type WriteConfig struct {
	Delimiter          string `mapstructure:"delimiter" toml:"delimiter" yaml:"delimiter" json:"delimiter"`
	Quote              string `mapstructure:"quote" toml:"quote" yaml:"quote" json:"quote"`
	Null               string `mapstructure:"null" toml:"null" yaml:"null" json:"null"`
	LineTerminator     string `mapstructure:"line_terminator" toml:"line_terminator" yaml:"line_terminator" json:"line_terminator"`
	TrailingTerminator bool   `mapstructure:"trailing_terminator" toml:"trailing_terminator" yaml:"trailing_terminator" json:"trailing_terminator"`
	BOM                bool   `mapstructure:"bom" toml:"bom" yaml:"bom" json:"bom"`
	QuoteMode          string `mapstructure:"quote_mode" toml:"quote_mode" yaml:"quote_mode" json:"quote_mode"`
}

// Default returns the configuration matching csv.DefaultReaderOptions and
// csv.DefaultWriterOptions.
func Default() Config {
	return Config{
		Read: ReadConfig{
			Delimiter:    ",",
			Quote:        `"`,
			Excess:       csv.ExcessError.String(),
			Insufficient: csv.InsufficientError.String(),
		},
		Write: WriteConfig{
			LineTerminator:     "crlf",
			TrailingTerminator: true,
			QuoteMode:          csv.QuoteWhenNeeded.String(),
		},
	}
}

// New returns a viper instance with every key defaulted and CSVKIT_*
// environment variables enabled.
func New() *viper.Viper {
	v := viper.New()

	d := Default()
	v.SetDefault("read.delimiter", d.Read.Delimiter)
	v.SetDefault("read.quote", d.Read.Quote)
	v.SetDefault("read.escape", d.Read.Escape)
	v.SetDefault("read.skip_empty_lines", d.Read.SkipEmptyLines)
	v.SetDefault("read.excess", d.Read.Excess)
	v.SetDefault("read.insufficient", d.Read.Insufficient)
	v.SetDefault("read.skip_mismatched", d.Read.SkipMismatched)
	v.SetDefault("read.auto_rename", d.Read.AutoRename)
	v.SetDefault("read.expected_field_count", d.Read.ExpectedFieldCount)
	v.SetDefault("write.delimiter", d.Write.Delimiter)
	v.SetDefault("write.quote", d.Write.Quote)
	v.SetDefault("write.null", d.Write.Null)
	v.SetDefault("write.line_terminator", d.Write.LineTerminator)
	v.SetDefault("write.trailing_terminator", d.Write.TrailingTerminator)
	v.SetDefault("write.bom", d.Write.BOM)
	v.SetDefault("write.quote_mode", d.Write.QuoteMode)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the config file at path into v, when path is not empty, and
// returns the merged configuration. The file type follows its extension.
func Load(v *viper.Viper, path string) (*Config, error) {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if _, err := cfg.ReaderOptions(); err != nil {
		return nil, err
	}
	if _, err := cfg.WriterOptions(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ReaderOptions converts the read section to csv.ReaderOptions.
func (c *Config) ReaderOptions() (csv.ReaderOptions, error) {
	opts := csv.DefaultReaderOptions()
	var err error

	if opts.Delimiter, err = parseRune("read.delimiter", c.Read.Delimiter, opts.Delimiter); err != nil {
		return opts, err
	}
	if opts.Quote, err = parseRune("read.quote", c.Read.Quote, opts.Quote); err != nil {
		return opts, err
	}
	if opts.Escape, err = parseRune("read.escape", c.Read.Escape, opts.Quote); err != nil {
		return opts, err
	}
	if opts.ExcessFields, err = csv.ParseExcessFieldsPolicy(c.Read.Excess); err != nil {
		return opts, fmt.Errorf("read.excess: %w", err)
	}
	if opts.InsufficientFields, err = csv.ParseInsufficientFieldsPolicy(c.Read.Insufficient); err != nil {
		return opts, fmt.Errorf("read.insufficient: %w", err)
	}
	if c.Read.ExpectedFieldCount < 0 {
		return opts, fmt.Errorf("read.expected_field_count: must not be negative, got %d", c.Read.ExpectedFieldCount)
	}
	opts.SkipEmptyLines = c.Read.SkipEmptyLines
	opts.SkipMismatchedRows = c.Read.SkipMismatched
	opts.AutoRenameDuplicateHeaders = c.Read.AutoRename
	opts.ExpectedFieldCount = c.Read.ExpectedFieldCount

	return opts, opts.Validate()
}

// WriterOptions converts the write section to csv.WriterOptions.
func (c *Config) WriterOptions() (csv.WriterOptions, error) {
	opts := csv.DefaultWriterOptions()
	var err error

	delim, quote := c.Write.Delimiter, c.Write.Quote
	if delim == "" {
		delim = c.Read.Delimiter
	}
	if quote == "" {
		quote = c.Read.Quote
	}
	if opts.Delimiter, err = parseRune("write.delimiter", delim, opts.Delimiter); err != nil {
		return opts, err
	}
	if opts.Quote, err = parseRune("write.quote", quote, opts.Quote); err != nil {
		return opts, err
	}
	if opts.LineTerminator, err = parseTerminator(c.Write.LineTerminator); err != nil {
		return opts, err
	}
	if opts.QuoteMode, err = csv.ParseQuoteMode(c.Write.QuoteMode); err != nil {
		return opts, fmt.Errorf("write.quote_mode: %w", err)
	}
	opts.NullMarker = c.Write.Null
	opts.OutputTrailingTerminator = c.Write.TrailingTerminator
	opts.PrependBOM = c.Write.BOM

	return opts, opts.Validate()
}

var runeNames = map[string]rune{
	"comma":     ',',
	"semicolon": ';',
	"tab":       '\t',
	`\t`:        '\t',
	"pipe":      '|',
	"space":     ' ',
	"dquote":    '"',
	"squote":    '\'',
}

// parseRune accepts a single character or one of the names in runeNames.
// An empty value yields def.
func parseRune(key, s string, def rune) (rune, error) {
	if s == "" {
		return def, nil
	}
	if r, ok := runeNames[strings.ToLower(s)]; ok {
		return r, nil
	}
	if utf8.RuneCountInString(s) != 1 {
		return 0, fmt.Errorf("%s: expected a single character, got %q", key, s)
	}
	r, _ := utf8.DecodeRuneInString(s)
	return r, nil
}

var terminatorNames = map[string]string{
	"crlf": "\r\n",
	"lf":   "\n",
	"cr":   "\r",
	`\r\n`: "\r\n",
	`\n`:   "\n",
	`\r`:   "\r",
}

func parseTerminator(s string) (string, error) {
	if s == "" {
		return "\r\n", nil
	}
	if t, ok := terminatorNames[strings.ToLower(s)]; ok {
		return t, nil
	}
	switch s {
	case "\r\n", "\n", "\r":
		return s, nil
	}
	return "", fmt.Errorf("write.line_terminator: unknown terminator %q", s)
}

// ErrUnknownFormat is returned by Encode for an unsupported format name.
var ErrUnknownFormat = errors.New("unknown config format")

// Encode renders cfg as "toml", "yaml" or "json".
func Encode(cfg *Config, format string) ([]byte, error) {
	switch strings.ToLower(format) {
	case "toml":
		return toml.Marshal(cfg)
	case "yaml", "yml":
		return yaml.Marshal(cfg)
	case "json":
		return json.MarshalIndent(cfg, "", "  ")
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}
