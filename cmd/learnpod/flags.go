package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"learnpod/internal/config"
)

// generationFlags are the per-invocation overrides shared by generating commands.
type generationFlags struct {
	length   int
	language string
	speakers string
	voices   string
}

func (f *generationFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVarP(&f.length, "length", "l", 0, "Target podcast length in minutes")
	cmd.Flags().StringVar(&f.language, "lang", "", "Output language (BCP 47 tag, e.g. ja, en)")
	cmd.Flags().StringVar(&f.speakers, "speakers", "", `Speaker names, e.g. "Speaker 1=Sakura,Speaker 2=Taro"`)
	cmd.Flags().StringVar(&f.voices, "voices", "", `Speaker voices, e.g. "Speaker 1=Zephyr,Speaker 2=Puck"`)
}

// apply copies the overrides onto a copy of cfg and revalidates it.
func (f *generationFlags) apply(cfg *config.Config) (*config.Config, error) {
	out := *cfg
	if f.length < 0 {
		return nil, fmt.Errorf("--length must be positive")
	}
	if f.length > 0 {
		out.Generation.TargetMinutes = f.length
	}
	if lang := strings.TrimSpace(f.language); lang != "" {
		out.Generation.Language = lang
	}
	if strings.TrimSpace(f.speakers) != "" {
		names, err := parseMapping(f.speakers)
		if err != nil {
			return nil, fmt.Errorf("--speakers: %w", err)
		}
		out.Speakers.Names = names
	}
	if strings.TrimSpace(f.voices) != "" {
		voices, err := parseMapping(f.voices)
		if err != nil {
			return nil, fmt.Errorf("--voices: %w", err)
		}
		out.Speakers.Voices = voices
	}
	if err := out.Validate(); err != nil {
		return nil, err
	}
	return &out, nil
}

// parseMapping reads "key=value,key=value". Keys and values are trimmed;
// a later duplicate key wins.
func parseMapping(raw string) (map[string]string, error) {
	out := make(map[string]string)
	for _, pair := range strings.Split(raw, ",") {
		if strings.TrimSpace(pair) == "" {
			continue
		}
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		if !ok || key == "" || value == "" {
			return nil, fmt.Errorf("invalid pair %q (want key=value)", strings.TrimSpace(pair))
		}
		out[key] = value
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no key=value pairs in %q", raw)
	}
	return out, nil
}
