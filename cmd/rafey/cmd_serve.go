package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"rafeyshell/internal/config"
	"rafeyshell/internal/llm"
	"rafeyshell/internal/logging"
	"rafeyshell/internal/proxy"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const defaultServeAddr = proxy.DefaultAddr

var (
	serveAddr  string
	serveToken string
)

// serveCmd runs the chat proxy
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the chat proxy server",
	Long: `Serves POST /api/chat so shells configured with provider "proxy" can
reach Gemini without holding a key.

The server reads GEMINI_API_KEY and GEMINI_MODEL from the environment.
Without a key it still starts, and every chat request returns 500.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func newServeLogger() (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger, err := newServeLogger()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()
	logging.SetBase(logger)

	var gen llm.Client
	if key := os.Getenv(config.EnvGeminiAPIKey); key != "" {
		client, err := llm.NewGeminiClient(ctx, llm.GeminiConfig{
			APIKey: key,
			Model:  os.Getenv(config.EnvGeminiModel),
		})
		if err != nil {
			return fmt.Errorf("failed to create Gemini client: %w", err)
		}
		gen = client
		logger.Info("Generator ready", zap.String("model", client.Model()))
	} else {
		logger.Warn("GEMINI_API_KEY not set; chat requests will fail")
	}

	token := serveToken
	if token == "" {
		token = os.Getenv(config.EnvProxyToken)
	}

	logger.Info("Starting proxy",
		zap.String("addr", serveAddr),
		zap.String("path", proxy.ChatPath),
		zap.Bool("token_required", token != ""))

	if err := proxy.New(gen, proxy.Config{Addr: serveAddr, Token: token}).Run(ctx); err != nil {
		return fmt.Errorf("proxy server failed: %w", err)
	}
	logger.Info("Proxy stopped")
	return nil
}
