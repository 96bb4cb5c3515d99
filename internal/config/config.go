package config

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v2"
)

// Manager handles loading, hot-reloading, and persisting settings.
type Manager struct {
	mu        sync.RWMutex
	settings  *Settings
	filePath  string
	callbacks []func(*Settings)
}

// NewManager creates a new settings manager and loads initial settings.
func NewManager(cfgFile string) (*Manager, error) {
	m := &Manager{
		callbacks: make([]func(*Settings), 0),
	}

	if err := m.initViper(cfgFile); err != nil {
		return nil, err
	}

	s, err := m.load()
	if err != nil {
		return nil, err
	}
	m.settings = s
	m.filePath = viper.ConfigFileUsed()
	if m.filePath == "" {
		m.filePath = cfgFile
	}

	return m, nil
}

// initViper sets up viper with defaults and config file.
func (m *Manager) initViper(cfgFile string) error {
	defaults := DefaultSettings()
	viper.SetDefault("prompts_folder", defaults.PromptsFolder)
	viper.SetDefault("default_prompt_title", defaults.DefaultPromptTitle)
	viper.SetDefault("model", defaults.Model)
	viper.SetDefault("active_models", defaults.ActiveModels)

	// Environment variables with PROMPTVAULT_ prefix
	viper.SetEnvPrefix("PROMPTVAULT")
	viper.AutomaticEnv()

	// Config file
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME/.promptvault")
	}

	// Try to read config file (not required)
	if err := viper.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			if _, statErr := os.Stat(cfgFile); cfgFile != "" && os.IsNotExist(statErr) {
				return nil
			}
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	return nil
}

// load parses the current viper state into a Settings struct.
func (m *Manager) load() (*Settings, error) {
	var s Settings
	if err := viper.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal settings: %w", err)
	}
	return &s, nil
}

// Get returns the current settings (thread-safe).
func (m *Manager) Get() *Settings {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.settings
}

// OnChange registers a callback for settings changes.
func (m *Manager) OnChange(fn func(*Settings)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callbacks = append(m.callbacks, fn)
}

// WatchConfig enables hot-reloading of settings from the config file.
func (m *Manager) WatchConfig() {
	viper.OnConfigChange(func(e fsnotify.Event) {
		s, err := m.load()
		if err != nil {
			return
		}

		m.mu.Lock()
		m.settings = s
		callbacks := make([]func(*Settings), len(m.callbacks))
		copy(callbacks, m.callbacks)
		m.mu.Unlock()

		for _, fn := range callbacks {
			fn(s)
		}
	})
	viper.WatchConfig()
}

// Update applies fn to a copy of the current settings, persists the result
// to the config file, and installs it as the new snapshot. Callbacks fire
// after the write succeeds.
func (m *Manager) Update(fn func(*Settings)) error {
	m.mu.Lock()
	updated := *m.settings
	fn(&updated)

	if m.filePath != "" {
		data, err := yaml.Marshal(&updated)
		if err != nil {
			m.mu.Unlock()
			return fmt.Errorf("failed to marshal settings: %w", err)
		}
		if err := os.WriteFile(m.filePath, data, 0o644); err != nil {
			m.mu.Unlock()
			return fmt.Errorf("failed to write settings: %w", err)
		}
	}

	m.settings = &updated
	callbacks := make([]func(*Settings), len(m.callbacks))
	copy(callbacks, m.callbacks)
	m.mu.Unlock()

	for _, fn := range callbacks {
		fn(&updated)
	}
	return nil
}

// FilePath returns the config file path settings are persisted to.
func (m *Manager) FilePath() string {
	return m.filePath
}

// WriteDefault writes the default settings to the specified path.
func WriteDefault(path string) error {
	s := DefaultSettings()
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}

	header := []byte(`# promptvault configuration
# prompts_folder is resolved relative to the vault root.

`)
	return os.WriteFile(path, append(header, data...), 0o644)
}
