package main

import (
	"fmt"
	"os"

	"rafeyshell/internal/config"
	"rafeyshell/internal/logging"
	"rafeyshell/internal/shell"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	verbose bool

	// Resolved in PersistentPreRunE
	paths config.Paths
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "rafey",
	Short: "Rafey Shell - a personal AI assistant in your terminal",
	Long: `Rafey Shell forwards your questions to a language model (Gemini, OpenAI
or a rafey proxy) together with your profile and recent conversation.

Run without arguments to start the interactive shell.`,
	Version:       shell.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.LoadDotEnv(); err != nil {
			return err
		}

		p, err := config.DefaultPaths()
		if err != nil {
			return err
		}
		paths = p

		logOpts := config.DefaultUserConfig().GetLogging().Options()
		if cfg, err := config.LoadUserConfig(paths.Config()); err == nil {
			logOpts = cfg.GetLogging().Options()
		}
		if verbose {
			logOpts.DebugMode = true
			logOpts.Level = "debug"
		}
		if err := logging.Initialize(paths.Dir, logOpts); err != nil {
			return err
		}
		logging.Boot("rafey %s starting: command=%s dir=%s", shell.Version, cmd.Name(), paths.Dir)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.Sync()
	},
	RunE: runStart,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	// The root command starts the shell too, so it carries start's flags.
	addStartFlags(rootCmd)
	addStartFlags(startCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", defaultServeAddr, "Listen address")
	serveCmd.Flags().StringVar(&serveToken, "token", "", "Shared bearer token required from clients (or set "+config.EnvProxyToken+")")

	historyCmd.Flags().IntVarP(&historyLimit, "number", "n", shell.HistoryRows, "Number of entries to show")

	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(historyCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "❌ "+err.Error())
		os.Exit(1)
	}
}
