package config

// Settings holds promptvault configuration.
// Stored at: {home}/config.yaml
type Settings struct {
	// PromptsFolder is the vault-relative folder holding prompt files.
	PromptsFolder string `mapstructure:"prompts_folder" yaml:"prompts_folder"`

	// DefaultPromptTitle is the persisted global default prompt.
	DefaultPromptTitle string `mapstructure:"default_prompt_title" yaml:"default_prompt_title"`

	// UserSystemPrompt is the legacy single-string system prompt.
	// Deprecated: read once at startup for migration, then left empty.
	UserSystemPrompt string `mapstructure:"user_system_prompt" yaml:"user_system_prompt,omitempty"`

	// Model holds global model-parameter defaults.
	Model ModelDefaultsCfg `mapstructure:"model" yaml:"model"`

	// ActiveModels lists the user's configured chat models.
	ActiveModels []ModelCfg `mapstructure:"active_models" yaml:"active_models"`

	// SelectedModel is the "name|provider" key of the current chat model.
	SelectedModel string `mapstructure:"selected_model" yaml:"selected_model,omitempty"`
}

// ModelDefaultsCfg specifies global fallbacks for model parameters.
type ModelDefaultsCfg struct {
	Temperature     *float64 `mapstructure:"temperature" yaml:"temperature,omitempty"`
	MaxTokens       *int     `mapstructure:"max_tokens" yaml:"max_tokens,omitempty"`
	ReasoningEffort string   `mapstructure:"reasoning_effort" yaml:"reasoning_effort,omitempty"`
	Verbosity       string   `mapstructure:"verbosity" yaml:"verbosity,omitempty"`
}

// ModelCfg configures a single chat model, with optional per-model
// parameter overrides that take precedence over the global defaults.
type ModelCfg struct {
	Name             string   `mapstructure:"name" yaml:"name"`
	Provider         string   `mapstructure:"provider" yaml:"provider"`
	Temperature      *float64 `mapstructure:"temperature" yaml:"temperature,omitempty"`
	TopP             *float64 `mapstructure:"top_p" yaml:"top_p,omitempty"`
	FrequencyPenalty *float64 `mapstructure:"frequency_penalty" yaml:"frequency_penalty,omitempty"`
	MaxTokens        *int     `mapstructure:"max_tokens" yaml:"max_tokens,omitempty"`
	ReasoningEffort  string   `mapstructure:"reasoning_effort" yaml:"reasoning_effort,omitempty"`
	Verbosity        string   `mapstructure:"verbosity" yaml:"verbosity,omitempty"`
}

// Key returns the "name|provider" identity of a configured model.
func (m ModelCfg) Key() string {
	return m.Name + "|" + m.Provider
}

// DefaultSettings returns configuration with sensible defaults.
func DefaultSettings() *Settings {
	return &Settings{
		PromptsFolder: "system-prompts",
		Model: ModelDefaultsCfg{
			ReasoningEffort: "medium",
			Verbosity:       "medium",
		},
		ActiveModels: []ModelCfg{},
	}
}

// GetModel returns a configured model by its "name|provider" key.
func (s *Settings) GetModel(key string) (ModelCfg, bool) {
	for _, m := range s.ActiveModels {
		if m.Key() == key {
			return m, true
		}
	}
	return ModelCfg{}, false
}
