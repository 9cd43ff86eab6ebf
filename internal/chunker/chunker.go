package chunker

import (
	"regexp"
	"strings"

	"learnpod/internal/textutil"
)

// CostFunc reports how much of the budget text consumes.
type CostFunc func(text string) int

// Estimate is the deterministic fallback oracle.
var Estimate CostFunc = textutil.EstimateTokens

const paragraphSeparator = "\n\n"

var paragraphBreak = regexp.MustCompile(`\n\s*\n`)

// SplitByBudget partitions text into ordered chunks whose cost is at most
// budget. Text that already fits, or a non-positive budget, yields one chunk
// holding text unchanged. Paragraph chunks are joined with a blank line;
// sentence chunks keep their terminal punctuation and are joined without a
// separator.
func SplitByBudget(text string, budget int, cost CostFunc) []string {
	if cost == nil {
		cost = Estimate
	}
	if budget <= 0 || cost(text) <= budget {
		return []string{text}
	}

	var chunks []string
	current := ""
	for _, para := range Paragraphs(text) {
		candidate := para
		if current != "" {
			candidate = current + paragraphSeparator + para
		}
		if cost(candidate) <= budget {
			current = candidate
			continue
		}
		if current != "" {
			chunks = append(chunks, current)
			current = ""
		}
		if cost(para) <= budget {
			current = para
			continue
		}
		chunks = append(chunks, packSentences(para, budget, cost)...)
	}
	if current != "" {
		chunks = append(chunks, current)
	}
	return chunks
}

// Paragraphs splits text on blank lines, trimming each paragraph and dropping empty ones.
func Paragraphs(text string) []string {
	raw := paragraphBreak.Split(text, -1)
	out := make([]string, 0, len(raw))
	for _, p := range raw {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Sentences splits text after each 。！？ keeping the terminator. Trailing text
// without a terminator forms the last sentence.
func Sentences(text string) []string {
	var (
		out   []string
		start int
	)
	emit := func(end int) {
		if s := strings.TrimSpace(text[start:end]); s != "" {
			out = append(out, s)
		}
		start = end
	}
	for i, r := range text {
		switch r {
		case '。', '！', '？':
			emit(i + len(string(r)))
		}
	}
	emit(len(text))
	return out
}

func packSentences(paragraph string, budget int, cost CostFunc) []string {
	sentences := Sentences(paragraph)
	if len(sentences) == 0 {
		return []string{paragraph}
	}
	var chunks []string
	current := ""
	for _, sentence := range sentences {
		candidate := current + sentence
		if cost(candidate) <= budget {
			current = candidate
			continue
		}
		if current != "" {
			chunks = append(chunks, current)
		}
		// an oversized sentence still starts its own chunk and is closed by the next one
		current = sentence
		if cost(sentence) > budget {
			chunks = append(chunks, sentence)
			current = ""
		}
	}
	if current != "" {
		chunks = append(chunks, current)
	}
	return chunks
}

// SplitScriptForNarration partitions a dialogue script into chunks of whole
// lines. Lines are trimmed and blank lines dropped. Each line's cost counts
// toward the running total; a line that would push a non-empty chunk over
// budget starts a new chunk. A line costing more than budget on its own is
// placed alone and never divided.
func SplitScriptForNarration(script string, budget int, cost CostFunc) []string {
	if cost == nil {
		cost = Estimate
	}
	var (
		chunks      []string
		current     []string
		currentCost int
	)
	for _, raw := range strings.Split(script, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		lineCost := cost(line)
		if budget > 0 && len(current) > 0 && currentCost+lineCost > budget {
			chunks = append(chunks, strings.Join(current, "\n"))
			current = nil
			currentCost = 0
		}
		current = append(current, line)
		currentCost += lineCost
	}
	if len(current) > 0 {
		chunks = append(chunks, strings.Join(current, "\n"))
	}
	return chunks
}
