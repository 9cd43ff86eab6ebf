package script

import (
	"regexp"
	"strings"

	"golang.org/x/text/width"

	"learnpod/internal/textutil"
)

var (
	localizedLabel = regexp.MustCompile(`(?m)^([ \t]*)(?:話者|スピーカー)[ \t]*([0-9０-９]+)[ \t]*[:：][ \t　]*`)
	shortLabel     = regexp.MustCompile(`(?m)^([ \t]*)[SＳ]([0-9０-９]+)[ \t]*[:：][ \t　]*`)
	wideLabel      = regexp.MustCompile(`(?m)^([ \t]*)Speaker[ \t]*([0-9０-９]+)[ \t]*：[ \t　]*`)
	speakerLine    = regexp.MustCompile(`^(Speaker \d+|S\d+):\s*(.+)$`)
)

// Normalize collapses blank-line runs and rewrites speaker labels such as
// "話者1：", "スピーカー 2:" or "S1:" to the canonical "Speaker N:" form.
func Normalize(raw string) string {
	text := textutil.StripCodeFences(raw, "markdown")
	text = collapseBlankRuns(text)
	for _, pattern := range []*regexp.Regexp{localizedLabel, shortLabel, wideLabel} {
		text = pattern.ReplaceAllStringFunc(text, func(match string) string {
			groups := pattern.FindStringSubmatch(match)
			return groups[1] + "Speaker " + width.Narrow.String(groups[2]) + ": "
		})
	}
	return strings.TrimSpace(text)
}

func collapseBlankRuns(text string) string {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			if len(out) > 0 && out[len(out)-1] == "" {
				continue
			}
			out = append(out, "")
			continue
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}

// Line is one utterance of a normalized script.
type Line struct {
	Speaker string
	Text    string
}

// ParseLine reports the speaker and utterance of a "Speaker N: text" line.
func ParseLine(line string) (Line, bool) {
	m := speakerLine.FindStringSubmatch(strings.TrimSpace(line))
	if m == nil {
		return Line{}, false
	}
	return Line{Speaker: m[1], Text: strings.TrimSpace(m[2])}, true
}

// Speakers returns the distinct speaker labels in order of first appearance.
func Speakers(script string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, raw := range strings.Split(script, "\n") {
		line, ok := ParseLine(raw)
		if !ok {
			continue
		}
		if _, dup := seen[line.Speaker]; dup {
			continue
		}
		seen[line.Speaker] = struct{}{}
		out = append(out, line.Speaker)
	}
	return out
}

// CountTurns returns the number of speaker lines in text.
func CountTurns(text string) int {
	count := 0
	for _, raw := range strings.Split(text, "\n") {
		if _, ok := ParseLine(raw); ok {
			count++
		}
	}
	return count
}
