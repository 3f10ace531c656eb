package translation

import "slices"

// Provider names the AI vendor whose API key a model needs.
type Provider string

const (
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
)

// Model is a translation model offered by the backend.
type Model struct {
	ID       string
	Label    string
	Provider Provider
}

// Models lists the models the backend accepts.
var Models = []Model{
	{ID: "gpt-5-2025-08-07", Label: "GPT-5", Provider: ProviderOpenAI},
	{ID: "claude-sonnet-4-5-20250929", Label: "Claude Sonnet 4.5", Provider: ProviderAnthropic},
}

// TargetLanguages lists the languages a translation can target.
var TargetLanguages = []string{"english", "georgian"}

// ProviderFor returns the provider of a model. Unknown models are sent to OpenAI.
func ProviderFor(model string) Provider {
	for _, m := range Models {
		if m.ID == model {
			return m.Provider
		}
	}
	return ProviderOpenAI
}

// ValidTargetLanguage reports whether lang is a supported target.
func ValidTargetLanguage(lang string) bool {
	return slices.Contains(TargetLanguages, lang)
}
