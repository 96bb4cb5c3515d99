// Package modelparams resolves chat-model sampling parameters across
// providers: which parameters a provider accepts, their valid ranges, and
// the three-tier fallback from per-model overrides to global settings to
// built-in defaults.
package modelparams

import (
	"strings"

	"github.com/promptvault/promptvault/internal/config"
)

// ReasoningEffort controls how much internal reasoning a reasoning-capable
// model performs.
type ReasoningEffort string

const (
	ReasoningEffortMinimal ReasoningEffort = "minimal"
	ReasoningEffortLow     ReasoningEffort = "low"
	ReasoningEffortMedium  ReasoningEffort = "medium"
	ReasoningEffortHigh    ReasoningEffort = "high"
)

// Verbosity controls output length for models that support it.
type Verbosity string

const (
	VerbosityLow    Verbosity = "low"
	VerbosityMedium Verbosity = "medium"
	VerbosityHigh   Verbosity = "high"
)

// Param names a tunable model parameter.
type Param string

const (
	ParamTemperature      Param = "temperature"
	ParamTopP             Param = "topP"
	ParamFrequencyPenalty Param = "frequencyPenalty"
	ParamMaxTokens        Param = "maxTokens"
	ParamReasoningEffort  Param = "reasoningEffort"
	ParamVerbosity        Param = "verbosity"
)

// Provider names a chat-model provider.
type Provider string

const (
	ProviderOpenAI       Provider = "openai"
	ProviderAzureOpenAI  Provider = "azure_openai"
	ProviderAnthropic    Provider = "anthropic"
	ProviderGoogle       Provider = "google"
	ProviderCohere       Provider = "cohereai"
	ProviderXAI          Provider = "xai"
	ProviderOpenRouter   Provider = "openrouterai"
	ProviderOllama       Provider = "ollama"
	ProviderLMStudio     Provider = "lm_studio"
	ProviderGroq         Provider = "groq"
	ProviderOpenAIFormat Provider = "openai_format"
	ProviderMistral      Provider = "mistral"
	ProviderDeepSeek     Provider = "deepseek"
)

// Built-in defaults, the bottom tier of the fallback chain.
const (
	DefaultTemperature     = 0.1
	DefaultTopP            = 0.9
	DefaultMaxTokens       = 1000
	DefaultReasoningEffort = ReasoningEffortMedium
	DefaultVerbosity       = VerbosityMedium
)

// Params holds resolved parameter values. Nil pointer fields mean the
// parameter is unset and should be omitted from provider requests.
type Params struct {
	Temperature      *float64        `json:"temperature,omitempty"`
	TopP             *float64        `json:"topP,omitempty"`
	FrequencyPenalty *float64        `json:"frequencyPenalty,omitempty"`
	MaxTokens        *int            `json:"maxTokens,omitempty"`
	ReasoningEffort  ReasoningEffort `json:"reasoningEffort,omitempty"`
	Verbosity        Verbosity       `json:"verbosity,omitempty"`
}

// Range describes the valid slider range for a numeric parameter.
type Range struct {
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Step    float64 `json:"step"`
	Default float64 `json:"default"`
}

// Ranges maps numeric parameters to their valid ranges.
var Ranges = map[Param]Range{
	ParamTemperature:      {Min: 0, Max: 2, Step: 0.01, Default: DefaultTemperature},
	ParamTopP:             {Min: 0, Max: 1, Step: 0.01, Default: DefaultTopP},
	ParamFrequencyPenalty: {Min: -2, Max: 2, Step: 0.01, Default: 0},
	ParamMaxTokens:        {Min: 100, Max: 128000, Step: 100, Default: DefaultMaxTokens},
}

// providerParams maps each provider to the parameters it accepts.
var providerParams = map[Provider]map[Param]bool{
	ProviderOpenAI:       set(ParamTemperature, ParamTopP, ParamFrequencyPenalty, ParamMaxTokens, ParamReasoningEffort, ParamVerbosity),
	ProviderAzureOpenAI:  set(ParamTemperature, ParamTopP, ParamFrequencyPenalty, ParamMaxTokens, ParamReasoningEffort, ParamVerbosity),
	ProviderOpenAIFormat: set(ParamTemperature, ParamTopP, ParamFrequencyPenalty, ParamMaxTokens, ParamReasoningEffort, ParamVerbosity),
	ProviderAnthropic:    set(ParamTemperature, ParamTopP, ParamMaxTokens),
	ProviderGoogle:       set(ParamTemperature, ParamTopP, ParamMaxTokens),
	ProviderCohere:       set(ParamTemperature, ParamMaxTokens),
	ProviderXAI:          set(ParamTemperature, ParamMaxTokens),
	ProviderGroq:         set(ParamTemperature, ParamMaxTokens),
	ProviderOpenRouter:   set(ParamTemperature, ParamTopP, ParamFrequencyPenalty, ParamMaxTokens),
	ProviderOllama:       set(ParamTemperature, ParamTopP, ParamFrequencyPenalty, ParamMaxTokens),
	ProviderLMStudio:     set(ParamTemperature, ParamTopP, ParamFrequencyPenalty, ParamMaxTokens),
	ProviderMistral:      set(ParamTemperature, ParamTopP, ParamFrequencyPenalty, ParamMaxTokens),
	ProviderDeepSeek:     set(ParamTemperature, ParamTopP, ParamFrequencyPenalty, ParamMaxTokens),
}

func set(params ...Param) map[Param]bool {
	m := make(map[Param]bool, len(params))
	for _, p := range params {
		m[p] = true
	}
	return m
}

// ModelInfo classifies a model by name for parameter special-casing.
type ModelInfo struct {
	// ThinkingEnabled models reject the temperature parameter entirely.
	ThinkingEnabled bool
	// OSeries models (o1/o3/o4) require temperature = 1.
	OSeries bool
	// GPT5 models require temperature = 1 and accept reasoning params.
	GPT5 bool
}

// IsReasoning reports whether the model is a reasoning model of any kind.
func (i ModelInfo) IsReasoning() bool {
	return i.ThinkingEnabled || i.OSeries || i.GPT5
}

// InfoFor classifies a model by name.
func InfoFor(name string) ModelInfo {
	n := strings.ToLower(name)
	return ModelInfo{
		ThinkingEnabled: strings.Contains(n, "thinking"),
		OSeries: strings.HasPrefix(n, "o1") ||
			strings.HasPrefix(n, "o3") ||
			strings.HasPrefix(n, "o4"),
		GPT5: strings.HasPrefix(n, "gpt-5"),
	}
}

// Supported returns the parameter set a provider accepts. Unknown providers
// support nothing.
func Supported(p Provider) map[Param]bool {
	return providerParams[p]
}

// IsSupported reports whether a provider accepts a parameter.
func IsSupported(p Provider, param Param) bool {
	return providerParams[p][param]
}

// Resolve computes effective parameters for a model using the three-tier
// fallback: per-model override, then global settings, then built-in
// defaults. TopP and frequency penalty have no global or built-in default
// and stay unset unless the model overrides them.
func Resolve(model config.ModelCfg, s *config.Settings) Params {
	info := InfoFor(model.Name)

	var temperature *float64
	switch {
	case info.ThinkingEnabled:
		// Thinking-enabled models do not accept temperature.
		temperature = nil
	case info.OSeries || info.GPT5:
		temperature = ptr(1.0)
	default:
		temperature = coalesceFloat(model.Temperature, s.Model.Temperature, DefaultTemperature)
	}

	return Params{
		Temperature:      temperature,
		TopP:             model.TopP,
		FrequencyPenalty: model.FrequencyPenalty,
		MaxTokens:        coalesceInt(model.MaxTokens, s.Model.MaxTokens, DefaultMaxTokens),
		ReasoningEffort:  coalesceEffort(model.ReasoningEffort, s.Model.ReasoningEffort),
		Verbosity:        coalesceVerbosity(model.Verbosity, s.Model.Verbosity),
	}
}

// ResolveDefaults computes parameters when no model is selected, using the
// two-tier settings-then-defaults fallback.
func ResolveDefaults(s *config.Settings) Params {
	return Params{
		Temperature:     coalesceFloat(nil, s.Model.Temperature, DefaultTemperature),
		MaxTokens:       coalesceInt(nil, s.Model.MaxTokens, DefaultMaxTokens),
		ReasoningEffort: coalesceEffort("", s.Model.ReasoningEffort),
		Verbosity:       coalesceVerbosity("", s.Model.Verbosity),
	}
}

// Current resolves parameters for the currently selected model in settings.
// Returns the model config when one is selected.
func Current(s *config.Settings) (Params, *config.ModelCfg) {
	model, ok := s.GetModel(s.SelectedModel)
	if !ok {
		return ResolveDefaults(s), nil
	}
	return Resolve(model, s), &model
}

// Applicable reports whether a parameter applies to a model, considering
// both provider support and model-type special cases.
func Applicable(model config.ModelCfg, param Param) bool {
	info := InfoFor(model.Name)

	if param == ParamTemperature && info.ThinkingEnabled {
		return false
	}

	// Reasoning-specific parameters apply only to O-series and GPT-5.
	if param == ParamReasoningEffort || param == ParamVerbosity {
		return info.OSeries || info.GPT5
	}

	return IsSupported(Provider(model.Provider), param)
}

// DisplayValue returns the UI value for a numeric parameter, falling back
// to the range default when unset. ok is false for non-numeric parameters.
func DisplayValue(p Params, param Param) (float64, bool) {
	switch param {
	case ParamTemperature:
		if p.Temperature != nil {
			return *p.Temperature, true
		}
	case ParamTopP:
		if p.TopP != nil {
			return *p.TopP, true
		}
	case ParamFrequencyPenalty:
		if p.FrequencyPenalty != nil {
			return *p.FrequencyPenalty, true
		}
	case ParamMaxTokens:
		if p.MaxTokens != nil {
			return float64(*p.MaxTokens), true
		}
	default:
		return 0, false
	}

	if r, ok := Ranges[param]; ok {
		return r.Default, true
	}
	return 0, false
}

func ptr(f float64) *float64 {
	return &f
}

func coalesceFloat(model, global *float64, fallback float64) *float64 {
	if model != nil {
		return model
	}
	if global != nil {
		return global
	}
	return ptr(fallback)
}

func coalesceInt(model, global *int, fallback int) *int {
	if model != nil {
		return model
	}
	if global != nil {
		return global
	}
	v := fallback
	return &v
}

func coalesceEffort(model string, global string) ReasoningEffort {
	if model != "" {
		return ReasoningEffort(model)
	}
	if global != "" {
		return ReasoningEffort(global)
	}
	return DefaultReasoningEffort
}

func coalesceVerbosity(model string, global string) Verbosity {
	if model != "" {
		return Verbosity(model)
	}
	if global != "" {
		return Verbosity(global)
	}
	return DefaultVerbosity
}
