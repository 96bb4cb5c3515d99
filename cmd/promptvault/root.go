package main

import (
	"github.com/spf13/cobra"

	"github.com/promptvault/promptvault/version"
)

var (
	cfgFile   string
	homeDir   string
	vaultPath string
)

var rootCmd = &cobra.Command{
	Use:   "promptvault",
	Short: "File-backed system prompt manager for AI chat assistants",
	Long: `Promptvault manages an AI assistant's system prompts as Markdown notes
inside a document vault, keeping an in-memory cache in sync with edits
made directly to the files.

It provides:
  - CRUD over named prompts stored one-per-file with front-matter timestamps
  - Reconciliation of external edits via filesystem notifications
  - Session-level prompt selection on top of a persisted global default
  - Model-parameter resolution across chat providers`,
	Version: version.GitRelease,
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./config.yaml or ~/.promptvault/config.yaml)",
	)
	rootCmd.PersistentFlags().StringVar(
		&homeDir, "home", "", "promptvault home directory (default: ~/.promptvault)",
	)
	rootCmd.PersistentFlags().StringVar(
		&vaultPath, "vault", "", "vault directory holding prompt notes (default: {home}/vault)",
	)

	rootCmd.AddCommand(versionCmd)
}
