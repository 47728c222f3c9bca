// Package cmd provides CLI commands for ddiwalk.
package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

func setupLogger() {
	logLevel := strings.ToUpper(os.Getenv("LOG_LEVEL"))
	if logLevel == "" {
		logLevel = "INFO"
	}

	var level slog.Level
	switch logLevel {
	case "DEBUG":
		level = slog.LevelDebug
	case "INFO":
		level = slog.LevelInfo
	case "WARN", "WARNING":
		level = slog.LevelWarn
	case "ERROR":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	handler := slog.NewTextHandler(os.Stderr, opts)
	logger := slog.New(handler)

	slog.SetDefault(logger)
}

var rootCmd = &cobra.Command{
	Use:   "ddiwalk",
	Short: "Import DDI study metadata into a catalog",
	Long: `ddiwalk imports DDI-format survey and study metadata XML into a
CKAN-style catalog.

Each document is mapped to a flat catalog record through a declarative
field-mapping profile, normalized, and reconciled against the catalog to
decide whether to create, update, or reject it.

Examples:
  ddiwalk import study.xml --catalog-url https://data.example.org
  ddiwalk import https://microdata.example.org/ddibrowser/123/export
  ddiwalk extract study.xml --pretty
  ddiwalk fields`,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	setupLogger()
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(fieldsCmd)
}
