package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/reqlint/reqlint/internal/lint"
	"github.com/reqlint/reqlint/internal/logger"
	"github.com/reqlint/reqlint/internal/models"
	"github.com/reqlint/reqlint/internal/reporter"
	"github.com/reqlint/reqlint/internal/scanner"
)

var (
	flagConfig   string
	flagOutput   string
	flagFormat   string
	flagStrict   bool
	flagNoFail   bool
	flagNoCache  bool
	flagDisable  []string
	flagTimeout  int
	flagLogLevel string
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "reqlint [paths...]",
	Short: "Lint dependency manifests for syntax, pinning and constraint problems",
	Long: `reqlint scans your project for dependency manifests and validates every
declared requirement: the line syntax, the version-constraint grammar,
duplicate and conflicting declarations, unpinned dependencies and direct
download URLs that bypass the registry.

It understands multiple manifest formats:
  - Python: requirements.txt (with -r includes), pyproject.toml
  - Conda:  environment.yml
  - Go:     go.mod
  - Node:   package.json

Examples:
  # Lint the current directory
  reqlint

  # Lint specific paths
  reqlint ./app ./services/requirements.txt

  # Output as JSON
  reqlint --format json

  # Output SARIF for GitHub Code Scanning
  reqlint --format sarif --output results.sarif

  # Treat warnings as errors, but ignore unpinned requirements
  reqlint --strict --disable REQ102

  # Don't fail the build on findings (exit 0 regardless)
  reqlint --no-fail`,
	RunE: runCheck,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(2)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file path (default: .reqlint.toml if present)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().IntVar(&flagTimeout, "timeout", 30, "HTTP request timeout in seconds")
	rootCmd.PersistentFlags().BoolVar(&flagNoCache, "no-cache", false, "Disable registry response caching")

	rootCmd.Flags().StringVarP(&flagOutput, "output", "o", "", "Output file path (default: stdout)")
	rootCmd.Flags().StringVarP(&flagFormat, "format", "f", "terminal", "Output format: terminal, json, sarif")
	rootCmd.Flags().BoolVar(&flagStrict, "strict", false, "Treat warnings as errors")
	rootCmd.Flags().BoolVar(&flagNoFail, "no-fail", false, "Don't exit with error code on findings")
	rootCmd.Flags().StringSliceVar(&flagDisable, "disable", nil, "Rule IDs to suppress (repeatable)")
}

// loadConfig builds the effective configuration: defaults, then the
// config file, then explicitly set flags.
func loadConfig(cmd *cobra.Command, args []string) (*models.Config, error) {
	cfg := models.DefaultConfig()

	path := flagConfig
	if path == "" {
		path = models.DefaultConfigFile
	}
	if err := cfg.LoadFile(path); err != nil {
		return nil, err
	}

	if len(args) > 0 {
		cfg.Paths = args
	}

	fl := cmd.Flags()
	if fl.Changed("format") {
		cfg.OutputFormat = flagFormat
	}
	if fl.Changed("output") {
		cfg.OutputFile = flagOutput
	}
	if fl.Changed("strict") {
		cfg.Strict = flagStrict
	}
	if fl.Changed("no-fail") {
		cfg.FailOnError = !flagNoFail
	}
	if fl.Changed("disable") {
		cfg.DisabledRules = append(cfg.DisabledRules, flagDisable...)
	}
	if fl.Changed("no-cache") {
		cfg.NoCache = flagNoCache
	}
	if fl.Changed("timeout") {
		cfg.Timeout = time.Duration(flagTimeout) * time.Second
	}
	if fl.Changed("log-level") {
		cfg.LogLevel = flagLogLevel
	}

	return cfg, nil
}

// newContext builds the run context carrying the configured logger
func newContext(cfg *models.Config) (context.Context, *zap.Logger, error) {
	level, err := logger.ParseLogLevel(cfg.LogLevel)
	if err != nil {
		return nil, nil, err
	}
	log, err := logger.NewLogger(level)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger.WithLogger(context.Background(), log), log, nil
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}

	ctx, log, err := newContext(cfg)
	if err != nil {
		return err
	}
	defer log.Sync()

	res, err := scanner.New(cfg).Scan(ctx)
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	report := lint.New(cfg).Run(res)

	rep := reporter.Get(cfg.OutputFormat)
	output, err := rep.Report(report)
	if err != nil {
		return fmt.Errorf("failed to generate report: %w", err)
	}

	if cfg.OutputFile != "" {
		if err := os.WriteFile(cfg.OutputFile, output, 0644); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Report written to %s\n", cfg.OutputFile)
	} else {
		fmt.Print(string(output))
	}

	if report.Findings.Errors() > 0 && cfg.FailOnError {
		os.Exit(1)
	}

	return nil
}
