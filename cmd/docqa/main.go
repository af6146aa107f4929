package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/ternarybob/arbor"

	"docqa/internal/config"
	"docqa/internal/logging"
)

// Version information (set via -ldflags during build)
var version = "dev"

var (
	// Command-line flags
	configPath string
	logLevel   string

	// Global state
	cfg    *config.AppConfig
	logger arbor.ILogger
)

var rootCmd = &cobra.Command{
	Use:   "docqa",
	Short: "Ask questions about your documents and check them for completeness",
	Long: `docqa ingests text, Markdown, HTML and PDF documents into a vector store,
answers questions with numbered source citations, and assesses documents
for completeness against a set of reference guidelines.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to YAML or TOML config file (default: ./docqa.yaml or ~/.config/docqa/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level override (trace, debug, info, warn, error)")
}

// setup loads .env, the config file and the logger, in that order.
func setup(cmd *cobra.Command, _ []string) error {
	_ = godotenv.Load()

	var (
		path string
		err  error
	)
	if configPath == "" {
		cfg, path, err = config.LoadDefault()
	} else {
		path = configPath
		cfg, err = config.Load(configPath)
	}
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if logLevel != "" {
		cfg.Log.Level = strings.ToLower(logLevel)
		if err := config.Validate(cfg); err != nil {
			return err
		}
	}

	logger, err = logging.New(cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialise logger: %w", err)
	}
	logger.Debug().
		Str("config", path).
		Str("command", cmd.Name()).
		Str("embedder", cfg.Embedder.Type).
		Str("generator", cfg.Generator.Type).
		Str("store", cfg.VectorStore.Type).
		Msg("Configuration loaded")
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
