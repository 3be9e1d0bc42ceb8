package main

import (
	"errors"
	"fmt"
	"os"
	"runtime"

	"github.com/bytedance/sonic"
	"go.uber.org/zap"

	"github.com/pdfref/pdfref/internal/config"
	"github.com/pdfref/pdfref/internal/document"
	"github.com/pdfref/pdfref/internal/download"
	"github.com/pdfref/pdfref/internal/fetch"
	"github.com/pdfref/pdfref/internal/logging"
	"github.com/pdfref/pdfref/internal/reader"
)

var (
	version   = "dev"     // This will be set by build flags
	buildTime = "unknown" // This will be set by build flags
	gitCommit = "unknown" // This will be set by build flags
)

// Exit codes, one per failure kind.
const (
	exitUsage           = 2
	exitNotFound        = 3
	exitDownloadFailed  = 4
	exitInvalidDocument = 5
	exitTimedOut        = 6
	exitOtherError      = 1
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		if errors.Is(err, config.ErrVersionRequested) {
			printVersion()
			return
		}
		fmt.Fprintf(os.Stderr, "pdfref: %v\n", err)
		os.Exit(exitUsage)
	}

	if version != "dev" {
		cfg.Version = version
	}

	logger := logging.NewLogger(cfg.LogLevel)
	defer logger.Sync() //nolint:errcheck

	if cfg.IsDebug() {
		logger.Sugar().Debugf("starting with configuration: %s", cfg)
	}

	doc, err := document.Open(cfg.URI, document.Options{
		ReadTimeout:          cfg.ReadTimeout,
		TextTimeout:          cfg.TextTimeout,
		DegradeOnTextTimeout: cfg.DegradeOnTimeout,
		Password:             cfg.Password,
		StrictValidation:     cfg.StrictValidation,
		FetchTimeout:         cfg.FetchTimeout,
		Logger:               logger,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "pdfref: %v\n", err)
		os.Exit(exitCode(err))
	}

	if cfg.Text {
		fmt.Print(doc.Text())
	} else if err := printSummary(doc, cfg.Sort); err != nil {
		fmt.Fprintf(os.Stderr, "pdfref: %v\n", err)
		os.Exit(exitOtherError)
	}

	if cfg.OutputDir != "" {
		if err := persist(cfg, doc, logger); err != nil {
			fmt.Fprintf(os.Stderr, "pdfref: %v\n", err)
			os.Exit(exitOtherError)
		}
	}
}

func printSummary(doc *document.Document, sorted bool) error {
	data, err := sonic.ConfigDefault.MarshalIndent(doc.Summary(sorted), "", "  ")
	if err != nil {
		return fmt.Errorf("encoding summary: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

func persist(cfg *config.Config, doc *document.Document, logger *zap.Logger) error {
	fetcher := fetch.NewClient(cfg.FetchTimeout)
	d, err := download.New(cfg.OutputDir, fetcher.Fetch, logger)
	if err != nil {
		return err
	}
	if err := d.Save(doc); err != nil {
		return err
	}
	if cfg.DownloadPDFs {
		return d.DownloadReferenced(doc)
	}
	return nil
}

func exitCode(err error) int {
	switch {
	case errors.Is(err, document.ErrNotFound):
		return exitNotFound
	case errors.Is(err, document.ErrDownloadFailed):
		return exitDownloadFailed
	case errors.Is(err, reader.ErrInvalidDocument):
		return exitInvalidDocument
	case errors.Is(err, document.ErrReadTimedOut), errors.Is(err, document.ErrTextTimedOut):
		return exitTimedOut
	default:
		return exitOtherError
	}
}

// printVersion prints version information
func printVersion() {
	fmt.Printf("pdfref\n")
	fmt.Printf("Version: %s\n", version)
	fmt.Printf("Build Time: %s\n", buildTime)
	fmt.Printf("Git Commit: %s\n", gitCommit)
	fmt.Printf("Built with: %s\n", runtime.Version())
}
