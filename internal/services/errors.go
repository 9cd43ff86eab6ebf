package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrInvalidFormat = errors.New("invalid format")
	ErrEncoding      = errors.New("encoding error")
	ErrValidation    = errors.New("validation error")
	ErrConfiguration = errors.New("configuration error")
	ErrExternalTool  = errors.New("external tool error")
	ErrTransient     = errors.New("transient failure")
	ErrTimeout       = errors.New("timeout")
)

// Wrap builds an error message that includes stage context while tagging it with
// the provided marker for later classification. The marker should be one of
// the exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// ErrorDetails summarizes an error for log hints and CLI output.
type ErrorDetails struct {
	Kind    string
	Message string
	Hint    string
}

// Details classifies err by its marker. Unmarked errors are reported as transient.
func Details(err error) ErrorDetails {
	if err == nil {
		return ErrorDetails{}
	}
	details := ErrorDetails{Message: err.Error()}
	switch {
	case errors.Is(err, ErrNotFound):
		details.Kind = "not_found"
		details.Hint = "check the input path"
	case errors.Is(err, ErrInvalidFormat):
		details.Kind = "invalid_format"
		details.Hint = "provide a non-empty .md file"
	case errors.Is(err, ErrEncoding):
		details.Kind = "encoding"
		details.Hint = "save the document as UTF-8"
	case errors.Is(err, ErrConfiguration):
		details.Kind = "configuration"
		details.Hint = "run 'learnpod config validate'"
	case errors.Is(err, ErrValidation):
		details.Kind = "validation"
		details.Hint = "inspect the generated output in the run directory"
	case errors.Is(err, ErrExternalTool):
		details.Kind = "external_tool"
		details.Hint = "run 'learnpod config check' to verify ffmpeg/ffprobe"
	case errors.Is(err, ErrTimeout):
		details.Kind = "timeout"
		details.Hint = "raise the relevant timeout_seconds or retry later"
	default:
		details.Kind = "transient"
		details.Hint = "retry later; check API quota and network access"
	}
	return details
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	for _, part := range []string{stage, operation, message} {
		if part = strings.TrimSpace(part); part != "" {
			parts = append(parts, part)
		}
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
