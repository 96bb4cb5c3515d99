package home

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// DefaultDirName is the default name for the promptvault home directory.
	DefaultDirName = ".promptvault"

	// VaultDirName is the subdirectory holding the managed note vault.
	VaultDirName = "vault"

	// ConfigFileName is the default config file name.
	ConfigFileName = "config.yaml"
)

// Dir represents the promptvault home directory structure.
type Dir struct {
	path string
}

// New creates a new Dir with the given path.
// If path is empty, uses the default (~/.promptvault).
func New(path string) (*Dir, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get user home directory: %w", err)
		}
		path = filepath.Join(home, DefaultDirName)
	}

	return &Dir{path: path}, nil
}

// Path returns the root path of the home directory.
func (d *Dir) Path() string {
	return d.path
}

// VaultPath returns the path to the managed vault directory.
func (d *Dir) VaultPath() string {
	return filepath.Join(d.path, VaultDirName)
}

// ConfigPath returns the path to the default config file.
func (d *Dir) ConfigPath() string {
	return filepath.Join(d.path, ConfigFileName)
}

// EnsureExists creates the home directory and subdirectories if they don't exist.
func (d *Dir) EnsureExists() error {
	// Creating the vault directory also creates the parent.
	if err := os.MkdirAll(d.VaultPath(), 0o755); err != nil {
		return fmt.Errorf("failed to create vault directory: %w", err)
	}
	return nil
}
