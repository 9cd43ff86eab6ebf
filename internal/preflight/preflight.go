package preflight

import (
	"context"
	"fmt"
	"strings"

	"learnpod/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// Options selects optional checks.
type Options struct {
	// Ping issues a live health request against the generation API.
	Ping bool
}

// RunAll executes every applicable preflight check for cfg.
func RunAll(ctx context.Context, cfg *config.Config, opts Options) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{CheckAPIKey(cfg), CheckMail(cfg)}
	results = append(results, CheckDirectoryOrParent("Output directory", cfg.Paths.OutputDir))
	if strings.TrimSpace(cfg.Paths.LogDir) != "" {
		results = append(results, CheckDirectoryOrParent("Log directory", cfg.Paths.LogDir))
	}
	if opts.Ping {
		results = append(results, CheckLLM(ctx, cfg))
	}
	return results
}

// CheckAPIKey reports whether a generation API key is configured.
func CheckAPIKey(cfg *config.Config) Result {
	const name = "Gemini API key"
	if err := cfg.RequireGemini(); err != nil {
		return Result{Name: name, Detail: "missing (set GEMINI_API_KEY)"}
	}
	return Result{Name: name, Passed: true, Detail: maskKey(cfg.Gemini.APIKey)}
}

// CheckMail evaluates delivery settings without contacting the server.
// Disabled mail passes: the email step is simply skipped.
func CheckMail(cfg *config.Config) Result {
	const name = "Mail delivery"
	switch {
	case !cfg.Mail.Enabled:
		return Result{Name: name, Passed: true, Detail: "disabled"}
	case cfg.MailConfigured():
		return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s via %s:%d", cfg.Mail.To, cfg.Mail.Host, cfg.Mail.Port)}
	}
	var missing []string
	if strings.TrimSpace(cfg.Mail.Username) == "" {
		missing = append(missing, "GMAIL_USER")
	}
	if strings.TrimSpace(cfg.Mail.Password) == "" {
		missing = append(missing, "GMAIL_PASSWORD")
	}
	if strings.TrimSpace(cfg.Mail.To) == "" {
		missing = append(missing, "GMAIL_TO")
	}
	return Result{Name: name, Detail: "incomplete, email will be skipped (missing " + strings.Join(missing, ", ") + ")"}
}

func maskKey(key string) string {
	key = strings.TrimSpace(key)
	if len(key) <= 8 {
		return "set"
	}
	return key[:4] + strings.Repeat("*", 4) + key[len(key)-4:]
}
