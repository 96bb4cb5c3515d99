package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/promptvault/promptvault/internal/config"
	"github.com/promptvault/promptvault/internal/home"
	"github.com/promptvault/promptvault/internal/prompts"
	"github.com/promptvault/promptvault/internal/server"
	"github.com/promptvault/promptvault/internal/svcctx"
	"github.com/promptvault/promptvault/internal/vault"
)

var (
	serveHost string
	servePort string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the promptvault server",
	Long: `Start the promptvault HTTP server.

This loads settings, opens the vault, runs the one-time legacy prompt
migration if needed, and starts watching the prompts folder for edits
made outside the API.

Examples:
  promptvault serve                       # Start on default port 8093
  promptvault serve --port 3000           # Start on custom port
  promptvault serve --vault ~/notes       # Manage prompts in an existing vault`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		// Set up logger
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}))

		// Get home directory
		h, err := home.New(homeDir)
		if err != nil {
			return err
		}
		if err := h.EnsureExists(); err != nil {
			return err
		}

		// Load settings, writing the default config file on first run
		configPath := cfgFile
		if configPath == "" {
			configPath = h.ConfigPath()
			if _, err := os.Stat(configPath); os.IsNotExist(err) {
				if err := config.WriteDefault(configPath); err != nil {
					return err
				}
				logger.Info("wrote default config", "path", configPath)
			}
		}
		cfg, err := config.NewManager(configPath)
		if err != nil {
			return err
		}
		cfg.WatchConfig()

		// Open the vault
		root := vaultPath
		if root == "" {
			root = h.VaultPath()
		}
		v, err := vault.NewOSVault(root, logger)
		if err != nil {
			return err
		}
		defer v.Close()

		// Wire the prompt subsystem
		settings := prompts.NewConfigSettings(cfg)
		store := prompts.NewStore()
		manager := prompts.NewManager(v, store, settings, logger)
		if err := manager.Initialize(ctx); err != nil {
			return err
		}

		// One-time migration of the legacy single-string prompt setting
		migrated, err := prompts.Migrate(ctx, manager)
		if err != nil {
			logger.Error("legacy prompt migration failed", "error", err)
		}
		if migrated {
			fmt.Printf("Your system prompt was upgraded to the file-based format.\n"+
				"It is now stored as %q in %s and set as the default prompt.\n",
				prompts.MigratedPromptTitle, settings.PromptsFolder())
		}

		watcher := prompts.NewWatcher(v, manager, settings, prompts.DefaultDebounce, logger)
		watcher.Start(ctx)
		defer watcher.Stop()

		session := prompts.NewSession(manager, settings, logger)

		// Start server (blocks until shutdown)
		srv := server.New(server.Config{
			Host: serveHost,
			Port: servePort,
			Services: &svcctx.Services{
				Settings: cfg,
				Prompts:  manager,
				Session:  session,
				Logger:   logger,
			},
			Logger: logger,
		})
		return srv.Start(ctx)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveHost, "host", "127.0.0.1", "Host to bind to")
	serveCmd.Flags().StringVar(&servePort, "port", "8093", "Port to listen on")

	rootCmd.AddCommand(serveCmd)
}
