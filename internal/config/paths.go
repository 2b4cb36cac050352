package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// DirName is the per-user configuration directory under $HOME.
const DirName = ".rafey-shell"

// HomeEnv overrides the configuration directory.
const HomeEnv = "RAFEY_SHELL_HOME"

// Paths locates every file rafey-shell keeps on disk.
type Paths struct {
	Dir string
}

// DefaultPaths resolves $RAFEY_SHELL_HOME or ~/.rafey-shell.
func DefaultPaths() (Paths, error) {
	if dir := os.Getenv(HomeEnv); dir != "" {
		return Paths{Dir: dir}, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return Paths{}, fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return Paths{Dir: filepath.Join(home, DirName)}, nil
}

func (p Paths) Config() string      { return filepath.Join(p.Dir, "config.json") }
func (p Paths) HistoryJSON() string { return filepath.Join(p.Dir, "history.json") }
func (p Paths) HistoryDB() string   { return filepath.Join(p.Dir, "history.db") }
func (p Paths) ProfileDoc() string  { return filepath.Join(p.Dir, "profile.yaml") }

// EnsureDir creates the configuration directory if needed.
func (p Paths) EnsureDir() error {
	if err := os.MkdirAll(p.Dir, 0700); err != nil {
		return fmt.Errorf("failed to create %s: %w", p.Dir, err)
	}
	return nil
}
