package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/outlinehq/specloc/version"
)

var (
	cfgFile      string
	homeDir      string
	outputFormat string
	logLevel     string
)

// parseLogLevel converts a string log level to slog.Level.
// Supports: debug, info, warn, error (case-insensitive).
func parseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid log level %q: must be debug, info, warn, or error", level)
	}
}

// getLogLevel resolves the configured log level, checking:
// 1. CLI flag (--log-level)
// 2. Environment variable (SPECLOC_LOG_LEVEL)
// 3. Default (info)
func getLogLevel() slog.Level {
	level := logLevel
	if level == "" {
		level = os.Getenv("SPECLOC_LOG_LEVEL")
	}
	if level == "" {
		level = "info"
	}

	parsed, err := parseLogLevel(level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v, using info\n", err)
		return slog.LevelInfo
	}
	return parsed
}

func newLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: getLogLevel(),
	}))
}

var rootCmd = &cobra.Command{
	Use:   "specloc",
	Short: "Locate section headers in long construction-spec PDFs",
	Long: `specloc anchors a proposed outline to its exact position in a
PDF's text stream and derives the section spans it bounds.

The pipeline:
  - an oracle proposes a candidate outline from the document's full text
  - the locator core anchors each candidate header to a specific line
  - invariant repair and gap filling recover anything the first pass missed
  - section spans and a decision trace are derived from the anchored outline`,
	Version: version.GitRelease,
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./config.yaml or ~/.specloc/config.yaml)",
	)
	rootCmd.PersistentFlags().StringVar(
		&homeDir, "home", "", "specloc home directory (default: ~/.specloc)",
	)
	rootCmd.PersistentFlags().StringVarP(
		&outputFormat, "output", "o", "json", "output format: json or ndjson-trace",
	)
	rootCmd.PersistentFlags().StringVar(
		&logLevel, "log-level", "", "log level: debug, info, warn, error (default: info, env: SPECLOC_LOG_LEVEL)",
	)

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(locateCmd)
	rootCmd.AddCommand(configCmd)
}
