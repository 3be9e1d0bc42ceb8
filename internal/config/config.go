// Package config holds the CLI and pipeline configuration, loaded from
// flags and PDFREF_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	DefaultLogLevel     = "warn"
	DefaultReadTimeout  = 60 * time.Second
	DefaultTextTimeout  = 0 // no deadline
	DefaultFetchTimeout = 60 * time.Second
)

// ErrVersionRequested is returned by Load when the version flag is
// present; the caller prints the version and exits.
var ErrVersionRequested = errors.New("version requested")

// Config holds all configuration for a pdfref run.
type Config struct {
	// URI is the document to open: a local path or a URL.
	URI string

	// Timeouts. Zero or below disables enforcement.
	ReadTimeout  time.Duration
	TextTimeout  time.Duration
	FetchTimeout time.Duration

	// DegradeOnTimeout retries in annotation-only mode when text
	// extraction exceeds TextTimeout instead of failing the run.
	DegradeOnTimeout bool

	// StrictValidation makes the up-front document validation strict
	// instead of relaxed.
	StrictValidation bool

	// Password unlocks encrypted documents.
	Password string

	// Output selection.
	Text bool // print extracted text instead of the summary
	Sort bool // sort references in the summary

	// OutputDir, when set, saves the document, its summary JSON, and
	// referenced PDFs there.
	OutputDir string

	// DownloadPDFs also fetches every referenced .pdf URL into
	// OutputDir.
	DownloadPDFs bool

	LogLevel string
	Version  string
}

// DefaultConfig returns a configuration with the defaults applied.
func DefaultConfig() *Config {
	return &Config{
		ReadTimeout:  DefaultReadTimeout,
		TextTimeout:  DefaultTextTimeout,
		FetchTimeout: DefaultFetchTimeout,
		LogLevel:     DefaultLogLevel,
		Version:      "1.0.0",
	}
}

// Load parses command line flags and the environment and returns the
// run configuration. The single positional argument is the document
// URI.
func Load() (*Config, error) {
	cfg := DefaultConfig()

	setupViperEnvironment(cfg)
	defineCommandLineFlags(cfg)
	bindFlagsToViper()
	setupUsageMessage()

	if err := checkVersionFlag(); err != nil {
		return nil, err
	}

	pflag.Parse()

	populateConfigFromViper(cfg)
	cfg.URI = pflag.Arg(0)

	// Local paths become absolute so the summary records a stable
	// location.
	if cfg.OutputDir != "" {
		if expanded, err := filepath.Abs(cfg.OutputDir); err == nil {
			cfg.OutputDir = expanded
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func setupViperEnvironment(cfg *Config) {
	viper.SetEnvPrefix("PDFREF")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("read-timeout", cfg.ReadTimeout)
	viper.SetDefault("text-timeout", cfg.TextTimeout)
	viper.SetDefault("fetch-timeout", cfg.FetchTimeout)
	viper.SetDefault("degrade-on-timeout", cfg.DegradeOnTimeout)
	viper.SetDefault("strict", cfg.StrictValidation)
	viper.SetDefault("password", cfg.Password)
	viper.SetDefault("text", cfg.Text)
	viper.SetDefault("sort", cfg.Sort)
	viper.SetDefault("output-dir", cfg.OutputDir)
	viper.SetDefault("download-pdfs", cfg.DownloadPDFs)
	viper.SetDefault("loglevel", cfg.LogLevel)
}

func defineCommandLineFlags(cfg *Config) {
	pflag.Duration("read-timeout", cfg.ReadTimeout, "Deadline for reading or downloading the document (0 disables)")
	pflag.Duration("text-timeout", cfg.TextTimeout, "Deadline for text extraction (0 disables)")
	pflag.Duration("fetch-timeout", cfg.FetchTimeout, "HTTP client timeout for remote documents")
	pflag.Bool("degrade-on-timeout", cfg.DegradeOnTimeout, "Fall back to annotation-only extraction when the text deadline is exceeded")
	pflag.Bool("strict", cfg.StrictValidation, "Use strict document validation instead of relaxed")
	pflag.String("password", cfg.Password, "Password for encrypted documents")
	pflag.BoolP("text", "t", cfg.Text, "Print the extracted text instead of the summary")
	pflag.Bool("sort", cfg.Sort, "Sort references in the output")
	pflag.StringP("output-dir", "o", cfg.OutputDir, "Directory to save the document, its summary, and referenced PDFs")
	pflag.BoolP("download-pdfs", "d", cfg.DownloadPDFs, "Also download referenced .pdf URLs into the output directory")
	pflag.String("loglevel", cfg.LogLevel, "Log level (debug, info, warn, error, off)")
}

func bindFlagsToViper() {
	for _, name := range []string{
		"read-timeout", "text-timeout", "fetch-timeout",
		"degrade-on-timeout", "strict", "password",
		"text", "sort", "output-dir", "download-pdfs", "loglevel",
	} {
		_ = viper.BindPFlag(name, pflag.Lookup(name))
	}
}

func setupUsageMessage() {
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] <pdf-path-or-url>\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nExtract metadata and references (hyperlinks, DOIs, arXiv IDs) from a PDF\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		pflag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s paper.pdf                          # print the summary\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s https://example.com/paper.pdf      # fetch, then extract\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -o ./out -d paper.pdf              # save it all, plus referenced PDFs\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		fmt.Fprintf(os.Stderr, "  PDFREF_READ_TIMEOUT   Read/download deadline\n")
		fmt.Fprintf(os.Stderr, "  PDFREF_TEXT_TIMEOUT   Text extraction deadline\n")
		fmt.Fprintf(os.Stderr, "  PDFREF_PASSWORD       Document password\n")
		fmt.Fprintf(os.Stderr, "  PDFREF_OUTPUT_DIR     Output directory\n")
		fmt.Fprintf(os.Stderr, "  PDFREF_LOGLEVEL       Log level\n")
	}
}

func checkVersionFlag() error {
	for _, arg := range os.Args[1:] {
		if arg == "-version" || arg == "--version" || arg == "-v" {
			return ErrVersionRequested
		}
	}
	return nil
}

func populateConfigFromViper(cfg *Config) {
	cfg.ReadTimeout = viper.GetDuration("read-timeout")
	cfg.TextTimeout = viper.GetDuration("text-timeout")
	cfg.FetchTimeout = viper.GetDuration("fetch-timeout")
	cfg.DegradeOnTimeout = viper.GetBool("degrade-on-timeout")
	cfg.StrictValidation = viper.GetBool("strict")
	cfg.Password = viper.GetString("password")
	cfg.Text = viper.GetBool("text")
	cfg.Sort = viper.GetBool("sort")
	cfg.OutputDir = viper.GetString("output-dir")
	cfg.DownloadPDFs = viper.GetBool("download-pdfs")
	cfg.LogLevel = viper.GetString("loglevel")
}

// Validate checks the configuration for contradictions.
func (c *Config) Validate() error {
	if c.URI == "" {
		return errors.New("a PDF path or URL is required")
	}

	if c.DownloadPDFs && c.OutputDir == "" {
		return errors.New("--download-pdfs requires --output-dir")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
		"off":   true,
		"":      true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (must be one of: debug, info, warn, error, off)", c.LogLevel)
	}

	return nil
}

// IsDebug returns true if debug logging is enabled.
func (c *Config) IsDebug() bool {
	return c.LogLevel == "debug"
}

// String returns a string representation of the configuration.
func (c *Config) String() string {
	return fmt.Sprintf("Config{URI: %s, ReadTimeout: %s, TextTimeout: %s, OutputDir: %s, LogLevel: %s}",
		c.URI, c.ReadTimeout, c.TextTimeout, c.OutputDir, c.LogLevel)
}
