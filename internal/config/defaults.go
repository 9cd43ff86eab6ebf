package config

const (
	defaultConfigPath              = "~/.config/learnpod/config.toml"
	defaultOutputDir               = "outputs"
	defaultLogDir                  = "~/.local/share/learnpod/logs"
	defaultGeminiBaseURL           = "https://generativelanguage.googleapis.com/v1beta"
	defaultGeminiModel             = "gemini-2.5-flash-preview-05-20"
	defaultGeminiTTSModel          = "gemini-2.5-flash-preview-tts"
	defaultGeminiTimeoutSeconds    = 120
	defaultGeminiTTSTimeoutSeconds = 300
	defaultGeminiMaxAttempts       = 3
	defaultGeminiRetryBaseSeconds  = 1
	defaultGeminiRetryMaxSeconds   = 30
	defaultLanguage                = "ja"
	defaultTargetMinutes           = 20
	defaultChunkTokens             = 800
	defaultScriptTemperature       = 0.7
	defaultExplainerTemperature    = 0.5
	defaultQuestionsTemperature    = 0.6
	defaultFlashcardTemperature    = 0.3
	defaultQuestionTotal           = 20
	defaultKeywordRatio            = 0.5
	defaultWhyRatio                = 0.4
	defaultOpenRatio               = 0.1
	defaultFFmpegBinary            = "ffmpeg"
	defaultFFprobeBinary           = "ffprobe"
	defaultAudioCodec              = "libmp3lame"
	defaultAudioBitrate            = "192k"
	defaultTranscodeTimeoutSeconds = 300
	defaultMailHost                = "smtp.gmail.com"
	defaultMailPort                = 465
	defaultMailTimeoutSeconds      = 30
	defaultLogFormat               = "console"
	defaultLogLevel                = "info"
)

// DefaultSpeakerNames returns the dialogue labels and their display names.
func DefaultSpeakerNames() map[string]string {
	return map[string]string{"Speaker 1": "Sakura", "Speaker 2": "Taro"}
}

// DefaultSpeakerVoices returns the dialogue labels and their prebuilt synthesis voices.
func DefaultSpeakerVoices() map[string]string {
	return map[string]string{"Speaker 1": "Zephyr", "Speaker 2": "Puck"}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			OutputDir: defaultOutputDir,
			LogDir:    defaultLogDir,
		},
		Gemini: Gemini{
			BaseURL:           defaultGeminiBaseURL,
			Model:             defaultGeminiModel,
			TTSModel:          defaultGeminiTTSModel,
			TimeoutSeconds:    defaultGeminiTimeoutSeconds,
			TTSTimeoutSeconds: defaultGeminiTTSTimeoutSeconds,
			MaxAttempts:       defaultGeminiMaxAttempts,
			RetryBaseSeconds:  defaultGeminiRetryBaseSeconds,
			RetryMaxSeconds:   defaultGeminiRetryMaxSeconds,
		},
		Generation: Generation{
			Language:             defaultLanguage,
			TargetMinutes:        defaultTargetMinutes,
			ChunkTokens:          defaultChunkTokens,
			ScriptTemperature:    defaultScriptTemperature,
			ExplainerTemperature: defaultExplainerTemperature,
			QuestionsTemperature: defaultQuestionsTemperature,
			FlashcardTemperature: defaultFlashcardTemperature,
		},
		Speakers: Speakers{
			Names:  DefaultSpeakerNames(),
			Voices: DefaultSpeakerVoices(),
		},
		Questions: Questions{
			Total:        defaultQuestionTotal,
			KeywordRatio: defaultKeywordRatio,
			WhyRatio:     defaultWhyRatio,
			OpenRatio:    defaultOpenRatio,
		},
		Audio: Audio{
			FFmpegBinary:            defaultFFmpegBinary,
			FFprobeBinary:           defaultFFprobeBinary,
			Codec:                   defaultAudioCodec,
			Bitrate:                 defaultAudioBitrate,
			TranscodeTimeoutSeconds: defaultTranscodeTimeoutSeconds,
		},
		Mail: Mail{
			Enabled:        true,
			Host:           defaultMailHost,
			Port:           defaultMailPort,
			TimeoutSeconds: defaultMailTimeoutSeconds,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
