package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"ResearchReporter/internal/app"
	"ResearchReporter/internal/config"
	"ResearchReporter/internal/logging"
)

var (
	configPath string
	logLevel   string
	compact    bool
)

var rootCmd = &cobra.Command{
	Use:           "researchreporter",
	Short:         "Turn a topic query into a citation-backed research report",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var reportCmd = &cobra.Command{
	Use:   "report <query>",
	Short: "Generate one report and print it as JSON",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runReport,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and refresh standing topics",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML config file (or set RESEARCH_REPORTER_CONFIG)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override the configured log level")
	reportCmd.Flags().BoolVar(&compact, "compact", false, "Print JSON without indentation")

	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(serveCmd)
}

func loadConfig() config.Config {
	var cfg config.Config
	if configPath != "" {
		cfg = config.LoadFile(configPath)
	} else {
		cfg = config.Load()
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	return cfg
}

func runReport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg := loadConfig()
	logger := logging.NewWithFormat(cfg.Logging.Level, cfg.Logging.Format)

	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer application.Close()

	report := application.Report(ctx, strings.Join(args, " "))

	enc := json.NewEncoder(cmd.OutOrStdout())
	if !compact {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(report); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	if report.Failed() {
		return fmt.Errorf("report generation failed for %q", strings.Join(args, " "))
	}
	return nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	cfg := loadConfig()
	logger := logging.NewWithFormat(cfg.Logging.Level, cfg.Logging.Format)
	gin.SetMode(gin.ReleaseMode)

	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer application.Close()

	return application.Serve(ctx)
}

func run(args []string) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd.SetArgs(args)
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}
	return 0
}

func main() {
	os.Exit(run(os.Args[1:]))
}
