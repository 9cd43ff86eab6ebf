package script

import (
	"log/slog"
	"strings"

	"learnpod/internal/logging"
)

// introMarkers identify greeting or framing lines a fragment opens with.
var introMarkers = []string{"こんにちは", "はじめに", "今回は", "welcome", "hello"}

// Merge joins script fragments generated from consecutive chunks. The first
// fragment is kept verbatim. Each later fragment loses the introduction lines
// it opens with and is appended after a blank line. A single fragment is
// returned unchanged.
func Merge(fragments []string, logger *slog.Logger) string {
	switch len(fragments) {
	case 0:
		return ""
	case 1:
		return fragments[0]
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	var b strings.Builder
	b.WriteString(fragments[0])
	for i, fragment := range fragments[1:] {
		cleaned, stripped := StripIntroduction(fragment)
		if !stripped {
			logger.Debug("fragment kept whole",
				logging.Int(logging.FieldChunkIndex, i+2),
				logging.String("reason", "no line outside the introduction"),
			)
		}
		if cleaned == "" {
			continue
		}
		b.WriteString("\n\n")
		b.WriteString(cleaned)
	}
	return b.String()
}

// StripIntroduction drops the lines before the first non-blank line that
// carries no intro marker. When every non-blank line is an intro line the
// fragment is returned whole and ok is false.
func StripIntroduction(fragment string) (cleaned string, ok bool) {
	lines := strings.Split(fragment, "\n")
	for i, line := range lines {
		if strings.TrimSpace(line) == "" || isIntroLine(line) {
			continue
		}
		return strings.Join(lines[i:], "\n"), true
	}
	return fragment, false
}

func isIntroLine(line string) bool {
	lower := strings.ToLower(line)
	for _, marker := range introMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}
