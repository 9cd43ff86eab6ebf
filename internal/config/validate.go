package config

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"golang.org/x/text/language"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateGemini(); err != nil {
		return err
	}
	if err := c.validateGeneration(); err != nil {
		return err
	}
	if err := c.validateQuestions(); err != nil {
		return err
	}
	if err := c.validateAudio(); err != nil {
		return err
	}
	if err := c.validateMail(); err != nil {
		return err
	}
	return c.validateLogging()
}

// RequireGemini reports a configuration error when generation credentials are missing.
// Commands that only inspect local files skip this check.
func (c *Config) RequireGemini() error {
	if strings.TrimSpace(c.Gemini.APIKey) != "" {
		return nil
	}
	defaultPath, err := DefaultConfigPath()
	if err != nil {
		defaultPath = defaultConfigPath
	}
	return fmt.Errorf("gemini.api_key is required. Set GEMINI_API_KEY env var or edit %s (create with 'learnpod config init')", defaultPath)
}

func (c *Config) validateGemini() error {
	if err := ensurePositiveMap(map[string]int{
		"gemini.timeout_seconds":     c.Gemini.TimeoutSeconds,
		"gemini.tts_timeout_seconds": c.Gemini.TTSTimeoutSeconds,
		"gemini.max_attempts":        c.Gemini.MaxAttempts,
	}); err != nil {
		return err
	}
	if c.Gemini.RequestsPerMinute < 0 {
		return errors.New("gemini.requests_per_minute must be zero (unlimited) or positive")
	}
	if c.Gemini.RetryBaseSeconds < 0 {
		return errors.New("gemini.retry_base_seconds must not be negative")
	}
	if c.Gemini.RetryMaxSeconds < c.Gemini.RetryBaseSeconds {
		return errors.New("gemini.retry_max_seconds must be at least gemini.retry_base_seconds")
	}
	return nil
}

func (c *Config) validateGeneration() error {
	if _, err := language.Parse(c.Generation.Language); err != nil {
		return fmt.Errorf("generation.language must be a BCP 47 language tag: %w", err)
	}
	if err := ensurePositiveMap(map[string]int{
		"generation.target_minutes": c.Generation.TargetMinutes,
		"generation.chunk_tokens":   c.Generation.ChunkTokens,
	}); err != nil {
		return err
	}
	if c.Generation.InputTokenLimit < 0 {
		return errors.New("generation.input_token_limit must be zero (use chunk_tokens) or positive")
	}
	if c.Generation.MaxOutputTokens < 0 {
		return errors.New("generation.max_output_tokens must not be negative")
	}
	for name, value := range map[string]float64{
		"generation.script_temperature":    c.Generation.ScriptTemperature,
		"generation.explainer_temperature": c.Generation.ExplainerTemperature,
		"generation.questions_temperature": c.Generation.QuestionsTemperature,
		"generation.flashcard_temperature": c.Generation.FlashcardTemperature,
	} {
		if value < 0 || value > 2 {
			return fmt.Errorf("%s must be between 0 and 2", name)
		}
	}
	return nil
}

func (c *Config) validateQuestions() error {
	if c.Questions.Total <= 0 {
		return errors.New("questions.total must be positive")
	}
	ratios := c.QuestionRatios()
	var sum float64
	for _, ratio := range ratios {
		if ratio < 0 || ratio > 1 {
			return errors.New("questions ratios must be between 0 and 1")
		}
		sum += ratio
	}
	if math.Abs(sum-1) > 1e-6 {
		return fmt.Errorf("questions ratios must sum to 1 (got %.3f)", sum)
	}
	return nil
}

func (c *Config) validateAudio() error {
	if c.Audio.TranscodeTimeoutSeconds <= 0 {
		return errors.New("audio.transcode_timeout_seconds must be positive")
	}
	if !strings.HasSuffix(c.Audio.Bitrate, "k") {
		return errors.New("audio.bitrate must be expressed in kbit/s, e.g. \"192k\"")
	}
	return nil
}

func (c *Config) validateMail() error {
	if !c.Mail.Enabled {
		return nil
	}
	if c.Mail.Port <= 0 || c.Mail.Port > 65535 {
		return errors.New("mail.port must be between 1 and 65535")
	}
	if c.Mail.TimeoutSeconds <= 0 {
		return errors.New("mail.timeout_seconds must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if values[key] <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
