package config

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// =============================================================================
// SETUP WIZARD
// =============================================================================
// Interactive setup dialogue behind `rafey config`.
// Covers: name, profession, interests, response style, languages, Gemini key.

// WizardStep represents the current step in the wizard.
type WizardStep int

const (
	StepName WizardStep = iota
	StepProfession
	StepInterests
	StepResponseStyle
	StepLanguages
	StepAPIKey
	StepComplete
)

// SecretReader reads a line without echoing it (see term.ReadPassword).
type SecretReader func(prompt string) (string, error)

// Wizard asks the setup questions on a line-oriented terminal.
type Wizard struct {
	in     *bufio.Reader
	out    io.Writer
	secret SecretReader
	step   WizardStep
	eof    bool
}

// NewWizard creates a wizard. secret may be nil, in which case the API key
// is read from in like every other answer.
func NewWizard(in io.Reader, out io.Writer, secret SecretReader) *Wizard {
	return &Wizard{
		in:     bufio.NewReader(in),
		out:    out,
		secret: secret,
		step:   StepName,
	}
}

// Step returns the step the wizard is on.
func (w *Wizard) Step() WizardStep {
	return w.step
}

// Run walks every step and returns the resulting config. Fields the wizard
// does not ask about (OpenAI key, logging, proxy) are carried over from
// existing when it is non-nil. workingDir is recorded in the profile.
func (w *Wizard) Run(existing *UserConfig, workingDir string) (*UserConfig, error) {
	cfg := DefaultUserConfig()
	if existing != nil {
		copied := *existing
		cfg = &copied
	}
	defaults := DefaultProfile()
	if existing != nil {
		defaults = existing.UserProfile.withDefaults(defaults)
	}

	fmt.Fprintln(w.out, "Welcome to Rafey Shell Setup!")
	fmt.Fprintln(w.out)

	var profile UserProfile
	for w.step != StepComplete {
		switch w.step {
		case StepName:
			answer, err := w.ask("What is your name?", defaults.Name)
			if err != nil {
				return nil, err
			}
			profile.Name = answer

		case StepProfession:
			answer, err := w.ask("What is your profession/role?", defaults.Profession)
			if err != nil {
				return nil, err
			}
			profile.Profession = answer

		case StepInterests:
			answer, err := w.ask("What are your main interests? (comma-separated)", strings.Join(defaults.Interests, ", "))
			if err != nil {
				return nil, err
			}
			profile.Interests = SplitList(answer)

		case StepResponseStyle:
			answer, err := w.ask("Preferred response style (concise, detailed, technical):", string(defaults.Preferences.ResponseStyle))
			if err != nil {
				return nil, err
			}
			style, perr := ParseResponseStyle(answer)
			if perr != nil {
				fmt.Fprintln(w.out, perr.Error())
				if w.eof {
					style = defaults.Preferences.ResponseStyle
				} else {
					continue
				}
			}
			profile.Preferences.ResponseStyle = style

		case StepLanguages:
			answer, err := w.ask("Primary programming languages? (comma-separated)", strings.Join(defaults.Preferences.CodeLanguages, ", "))
			if err != nil {
				return nil, err
			}
			profile.Preferences.CodeLanguages = SplitList(answer)

		case StepAPIKey:
			key, err := w.askSecret("Google Gemini API Key (optional):")
			if err != nil {
				return nil, err
			}
			if key != "" {
				cfg.GeminiAPIKey = key
			}
		}
		w.step++
	}

	profile.WorkingDirectory = workingDir
	cfg.UserProfile = profile.Normalized()
	return cfg, nil
}

// ask prints the question with its default and returns the trimmed answer,
// or def when the answer is empty.
func (w *Wizard) ask(question, def string) (string, error) {
	if def != "" {
		fmt.Fprintf(w.out, "%s (%s) ", question, def)
	} else {
		fmt.Fprintf(w.out, "%s ", question)
	}

	answer, err := w.readLine()
	if err != nil {
		return "", err
	}
	if answer == "" {
		return def, nil
	}
	return answer, nil
}

func (w *Wizard) askSecret(question string) (string, error) {
	if w.secret == nil {
		return w.ask(question, "")
	}
	key, err := w.secret(question + " ")
	fmt.Fprintln(w.out)
	if err != nil {
		return "", fmt.Errorf("failed to read API key: %w", err)
	}
	return strings.TrimSpace(key), nil
}

func (w *Wizard) readLine() (string, error) {
	if w.eof {
		return "", nil
	}
	line, err := w.in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) {
			w.eof = true
			return strings.TrimSpace(line), nil
		}
		return "", fmt.Errorf("failed to read answer: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// withDefaults fills the empty fields of p from def, so a re-run of the
// wizard offers the current answers.
func (p UserProfile) withDefaults(def UserProfile) UserProfile {
	out := p.Normalized()
	if out.Name == "" {
		out.Name = def.Name
	}
	if out.Profession == "" {
		out.Profession = def.Profession
	}
	if len(out.Interests) == 0 {
		out.Interests = def.Interests
	}
	if p.Preferences.ResponseStyle == "" {
		out.Preferences.ResponseStyle = def.Preferences.ResponseStyle
	}
	if len(out.Preferences.CodeLanguages) == 0 {
		out.Preferences.CodeLanguages = def.Preferences.CodeLanguages
	}
	return out
}
