package main

import (
	"fmt"
	"io"
	"os"

	"rafeyshell/internal/config"
	"rafeyshell/internal/logging"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// configCmd runs the setup wizard
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configure your profile and API key",
	Long: `Asks for your name, profession, interests, preferred response style,
languages and an optional Gemini API key, then writes config.json.

Answers already present in config.json that the wizard does not ask about
(OpenAI key, proxy settings, logging) are kept.`,
	Args: cobra.NoArgs,
	RunE: runConfig,
}

func runConfig(cmd *cobra.Command, args []string) error {
	existing, err := config.LoadUserConfig(paths.Config())
	if err != nil {
		existing = nil
	}

	in := cmd.InOrStdin()
	out := cmd.OutOrStdout()

	var secret config.SecretReader
	if in == os.Stdin && term.IsTerminal(int(os.Stdin.Fd())) {
		secret = readSecret(out)
	}

	wd, err := os.Getwd()
	if err != nil {
		wd = ""
	}

	cfg, err := config.NewWizard(in, out, secret).Run(existing, wd)
	if err != nil {
		return fmt.Errorf("setup failed: %w", err)
	}
	if err := cfg.Save(paths.Config()); err != nil {
		return err
	}
	logging.Boot("Configuration saved: %s", paths.Config())

	fmt.Fprintln(out)
	fmt.Fprintf(out, "✅ Configuration saved to %s\n", paths.Config())
	fmt.Fprintln(out, "Run 'rafey' to start the shell.")
	return nil
}

// readSecret reads the API key without echo.
func readSecret(out io.Writer) config.SecretReader {
	return func(prompt string) (string, error) {
		fmt.Fprint(out, prompt)
		b, err := term.ReadPassword(int(os.Stdin.Fd()))
		return string(b), err
	}
}
