package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"rafeyshell/cmd/rafey/chat"
	"rafeyshell/cmd/rafey/ui"
	"rafeyshell/internal/config"
	"rafeyshell/internal/history"
	"rafeyshell/internal/llm"
	"rafeyshell/internal/logging"
	"rafeyshell/internal/shell"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

const persistDrainTimeout = 5 * time.Second

var (
	modelFlag    string
	providerFlag string
	tuiFlag      bool
)

// startCmd runs the interactive shell
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the interactive shell",
	Long: `Starts an interactive session. Each question is sent to the configured
model with your profile and the last few exchanges as context.

Commands inside the shell: /help, /clear, /history, /profile, /exit`,
	Args: cobra.NoArgs,
	RunE: runStart,
}

func addStartFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&modelFlag, "model", "m", "", "Model to use (overrides config and environment)")
	cmd.Flags().StringVar(&providerFlag, "provider", "", "Backend to use: gemini, openai or proxy")
	cmd.Flags().BoolVar(&tuiFlag, "tui", false, "Use the full-screen interface")
}

// loadConfig reads config.json and applies environment and flag overrides.
func loadConfig() (*config.UserConfig, error) {
	cfg, err := config.LoadUserConfig(paths.Config())
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnvOverrides()
	if providerFlag != "" {
		cfg.Provider = providerFlag
	}
	return cfg, nil
}

// openHistory opens the configured history backend under the config dir.
func openHistory(cfg *config.UserConfig) (history.Backend, error) {
	kind := cfg.GetHistory().Backend
	path := paths.HistoryJSON()
	if kind == history.BackendSQLite {
		path = paths.HistoryDB()
	}
	return history.Open(kind, path)
}

func runStart(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	providerCfg := llm.ProviderFromConfig(cfg, modelFlag)
	client, err := llm.NewClient(ctx, providerCfg)
	if err != nil {
		return fmt.Errorf("failed to create %s client: %w", providerCfg.Provider, err)
	}
	logging.Boot("Backend: provider=%s model=%s", providerCfg.Provider, providerCfg.Model)

	backend, err := openHistory(cfg)
	if err != nil {
		return fmt.Errorf("failed to open history: %w", err)
	}
	store := history.LoadOrEmpty(ctx, backend)
	persister := history.NewPersister(backend)
	defer func() {
		drainCtx, cancel := context.WithTimeout(context.Background(), persistDrainTimeout)
		defer cancel()
		if err := persister.Close(drainCtx); err != nil {
			logging.Get(logging.CategoryStore).Error("History drain incomplete: %v", err)
		}
		if err := backend.Close(); err != nil {
			logging.Get(logging.CategoryStore).Error("Failed to close history backend: %v", err)
		}
	}()

	doc, err := config.LoadProfileDocument(paths.ProfileDoc())
	if err != nil {
		logging.Get(logging.CategoryBoot).Warn("Ignoring profile document: %v", err)
		doc = nil
	}

	ux := cfg.GetUX()
	styles := ui.NewStyles(ui.ThemeNamed(ux.Theme))
	out := cmd.OutOrStdout()
	interactive := out == os.Stdout && term.IsTerminal(int(os.Stdout.Fd()))

	session, err := shell.NewSession(shell.Options{
		Client:      client,
		Store:       store,
		Persister:   persister,
		Profile:     cfg.UserProfile,
		ProfileDoc:  doc,
		Out:         out,
		Styles:      styles.Shell(),
		RevealDelay: ux.RevealDelay(),
		Timeout:     cfg.GetRequestTimeout(),
		Indicator:   interactive,
	})
	if err != nil {
		return err
	}

	if tuiFlag {
		return chat.Run(ctx, session, styles)
	}

	var reader shell.LineReader
	if in := cmd.InOrStdin(); in != os.Stdin {
		reader = shell.NewBufferedReader(in, out)
	} else {
		reader = shell.NewLineReader(os.Stdin, out)
	}
	defer reader.Close()

	return shell.Run(ctx, session, reader)
}
