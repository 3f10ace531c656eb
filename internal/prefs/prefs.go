// Package prefs persists user preferences between runs in a dotenv-format
// file. API keys are written only when the matching remember flag is set.
package prefs

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Storage keys.
const (
	KeyOpenAI            = "mingrelian_openai_key"
	KeyAnthropic         = "mingrelian_anthropic_key"
	KeyModel             = "mingrelian_model"
	KeyTargetLang        = "mingrelian_target_lang"
	KeyRememberOpenAI    = "mingrelian_remember_openai_key"
	KeyRememberAnthropic = "mingrelian_remember_anthropic_key"
)

// Preferences mirrors the persisted keys.
type Preferences struct {
	OpenAIKey         string
	AnthropicKey      string
	Model             string
	TargetLanguage    string
	RememberOpenAI    bool
	RememberAnthropic bool
}

// Load reads preferences from path. A missing file yields zero Preferences.
func Load(path string) (Preferences, error) {
	values, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Preferences{}, nil
		}
		return Preferences{}, fmt.Errorf("read preferences: %w", err)
	}

	p := Preferences{
		Model:             values[KeyModel],
		TargetLanguage:    values[KeyTargetLang],
		RememberOpenAI:    parseBool(values[KeyRememberOpenAI]),
		RememberAnthropic: parseBool(values[KeyRememberAnthropic]),
	}
	if p.RememberOpenAI {
		p.OpenAIKey = values[KeyOpenAI]
	}
	if p.RememberAnthropic {
		p.AnthropicKey = values[KeyAnthropic]
	}
	return p, nil
}

// Save writes p to path with owner-only permissions. Keys whose remember flag
// is off are dropped from the file.
func Save(path string, p Preferences) error {
	values := map[string]string{
		KeyRememberOpenAI:    strconv.FormatBool(p.RememberOpenAI),
		KeyRememberAnthropic: strconv.FormatBool(p.RememberAnthropic),
	}
	if p.Model != "" {
		values[KeyModel] = p.Model
	}
	if p.TargetLanguage != "" {
		values[KeyTargetLang] = p.TargetLanguage
	}
	if p.RememberOpenAI && p.OpenAIKey != "" {
		values[KeyOpenAI] = p.OpenAIKey
	}
	if p.RememberAnthropic && p.AnthropicKey != "" {
		values[KeyAnthropic] = p.AnthropicKey
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create preferences directory: %w", err)
	}
	if err := godotenv.Write(values, path); err != nil {
		return fmt.Errorf("write preferences: %w", err)
	}
	if err := os.Chmod(path, 0o600); err != nil {
		return fmt.Errorf("chmod preferences: %w", err)
	}
	return nil
}

// Clear removes every saved preference.
func Clear(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("clear preferences: %w", err)
	}
	return nil
}

// Mask hides all but the last four characters of a secret.
func Mask(secret string) string {
	if secret == "" {
		return ""
	}
	if len(secret) <= 4 {
		return "****"
	}
	return "****" + secret[len(secret)-4:]
}

func parseBool(s string) bool {
	b, _ := strconv.ParseBool(s)
	return b
}
