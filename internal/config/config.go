package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	OutputDir string `toml:"output_dir"`
	LogDir    string `toml:"log_dir"`
}

// Gemini contains connection settings for the text and speech generation services.
type Gemini struct {
	APIKey            string `toml:"api_key"`
	BaseURL           string `toml:"base_url"`
	Model             string `toml:"model"`
	TTSModel          string `toml:"tts_model"`
	TimeoutSeconds    int    `toml:"timeout_seconds"`
	TTSTimeoutSeconds int    `toml:"tts_timeout_seconds"`
	RequestsPerMinute int    `toml:"requests_per_minute"`
	MaxAttempts       int    `toml:"max_attempts"`
	RetryBaseSeconds  int    `toml:"retry_base_seconds"`
	RetryMaxSeconds   int    `toml:"retry_max_seconds"`
}

// Generation contains content generation defaults.
type Generation struct {
	Language             string  `toml:"language"`
	TargetMinutes        int     `toml:"target_minutes"`
	ChunkTokens          int     `toml:"chunk_tokens"`
	InputTokenLimit      int     `toml:"input_token_limit"`
	ScriptTemperature    float64 `toml:"script_temperature"`
	ExplainerTemperature float64 `toml:"explainer_temperature"`
	QuestionsTemperature float64 `toml:"questions_temperature"`
	FlashcardTemperature float64 `toml:"flashcard_temperature"`
	MaxOutputTokens      int     `toml:"max_output_tokens"`
}

// Speakers maps dialogue labels to display names and synthesis voices.
type Speakers struct {
	Names  map[string]string `toml:"names"`
	Voices map[string]string `toml:"voices"`
}

// Questions controls the size and mix of the generated Q&A set.
type Questions struct {
	Total        int     `toml:"total"`
	KeywordRatio float64 `toml:"keyword_ratio"`
	WhyRatio     float64 `toml:"why_ratio"`
	OpenRatio    float64 `toml:"open_ratio"`
}

// Audio contains narration assembly and transcoding settings.
type Audio struct {
	FFmpegBinary            string `toml:"ffmpeg_binary"`
	FFprobeBinary           string `toml:"ffprobe_binary"`
	Codec                   string `toml:"codec"`
	Bitrate                 string `toml:"bitrate"`
	TranscodeTimeoutSeconds int    `toml:"transcode_timeout_seconds"`
	KeepChunks              bool   `toml:"keep_chunks"`
}

// Mail contains SMTP delivery settings for the finished package.
type Mail struct {
	Enabled        bool   `toml:"enabled"`
	Host           string `toml:"host"`
	Port           int    `toml:"port"`
	Username       string `toml:"username"`
	Password       string `toml:"password"`
	To             string `toml:"to"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for LearnPod.
//
// Configuration sections by subsystem:
//   - Paths: run output root and log directory
//   - Gemini: API credentials, models, timeouts, retry and rate limits
//   - Generation: language, target length, chunk budget, temperatures
//   - Speakers: dialogue labels mapped to names and voices
//   - Questions: Q&A count and category ratios
//   - Audio: ffmpeg/ffprobe binaries and MP3 encoding settings
//   - Mail: SMTP delivery of the finished package
//   - Logging: log format and level
type Config struct {
	Paths      Paths      `toml:"paths"`
	Gemini     Gemini     `toml:"gemini"`
	Generation Generation `toml:"generation"`
	Speakers   Speakers   `toml:"speakers"`
	Questions  Questions  `toml:"questions"`
	Audio      Audio      `toml:"audio"`
	Mail       Mail       `toml:"mail"`
	Logging    Logging    `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("learnpod.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the output root and log directory.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.OutputDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// MailConfigured reports whether delivery credentials are complete.
func (c *Config) MailConfigured() bool {
	return c.Mail.Enabled &&
		strings.TrimSpace(c.Mail.Username) != "" &&
		strings.TrimSpace(c.Mail.Password) != "" &&
		strings.TrimSpace(c.Mail.To) != ""
}

// ChatEndpoint returns the OpenAI-compatible chat completion URL for text generation.
func (c *Config) ChatEndpoint() string {
	return strings.TrimRight(c.Gemini.BaseURL, "/") + "/openai/chat/completions"
}

// LLMTimeout returns the per-request timeout for text generation.
func (c *Config) LLMTimeout() time.Duration {
	return time.Duration(c.Gemini.TimeoutSeconds) * time.Second
}

// TTSTimeout returns the per-request timeout for speech synthesis.
func (c *Config) TTSTimeout() time.Duration {
	return time.Duration(c.Gemini.TTSTimeoutSeconds) * time.Second
}

// TranscodeTimeout bounds a single external transcoder invocation.
func (c *Config) TranscodeTimeout() time.Duration {
	return time.Duration(c.Audio.TranscodeTimeoutSeconds) * time.Second
}

// ScriptInputLimit returns the token count above which the script stage chunks its input.
func (c *Config) ScriptInputLimit() int {
	if c.Generation.InputTokenLimit > 0 {
		return c.Generation.InputTokenLimit
	}
	return c.Generation.ChunkTokens
}

// QuestionRatios returns the keyword/why/open ratios in order.
func (c *Config) QuestionRatios() [3]float64 {
	return [3]float64{c.Questions.KeywordRatio, c.Questions.WhyRatio, c.Questions.OpenRatio}
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
