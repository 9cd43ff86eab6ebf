// Package prompts renders the instruction prompts sent to the text
// generation service.
package prompts

import (
	"embed"
	"fmt"
	"math"
	"slices"
	"strings"
	"text/template"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// wordsPerMinute converts a target duration into an approximate spoken word count.
const wordsPerMinute = 150

var templates = template.Must(template.New("prompts").Funcs(template.FuncMap{
	"percent": func(ratio float64) int { return int(math.Round(ratio * 100)) },
}).ParseFS(templateFS, "templates/*.tmpl"))

// Speaker pairs a dialogue label with its display name.
type Speaker struct {
	Label string
	Name  string
}

// SpeakerList orders a label→name mapping by label.
func SpeakerList(names map[string]string) []Speaker {
	labels := make([]string, 0, len(names))
	for label := range names {
		labels = append(labels, label)
	}
	slices.Sort(labels)
	out := make([]Speaker, 0, len(labels))
	for _, label := range labels {
		out = append(out, Speaker{Label: label, Name: names[label]})
	}
	return out
}

// Part locates a chunk within a chunked generation. Index is 1-based.
type Part struct {
	Index int
	Count int
}

// ScriptInput carries the values substituted into the script prompt.
type ScriptInput struct {
	Content  string
	Language string
	Minutes  int
	Speakers []Speaker
	Part     *Part
}

// Script renders the two-speaker dialogue prompt.
func Script(in ScriptInput) (string, error) {
	return render("script.tmpl", struct {
		ScriptInput
		Words int
	}{in, in.Minutes * wordsPerMinute})
}

// ExplainerInput carries the values substituted into the explainer prompt.
type ExplainerInput struct {
	Script   string
	Language string
}

// Explainer renders the detailed explanation prompt.
func Explainer(in ExplainerInput) (string, error) {
	return render("explainer.tmpl", in)
}

// QuestionsInput carries the values substituted into the Q&A prompt.
type QuestionsInput struct {
	Content  string
	Language string
	Total    int
	Ratios   [3]float64
}

// QuestionCounts splits total into keyword, why and open counts. Keyword and
// why counts truncate; open questions take the remainder.
func QuestionCounts(total int, ratios [3]float64) (keyword, why, open int) {
	keyword = int(float64(total) * ratios[0])
	why = int(float64(total) * ratios[1])
	open = total - keyword - why
	return keyword, why, open
}

// Questions renders the Q&A prompt.
func Questions(in QuestionsInput) (string, error) {
	keyword, why, open := QuestionCounts(in.Total, in.Ratios)
	return render("questions.tmpl", map[string]any{
		"Content":      in.Content,
		"Language":     in.Language,
		"Total":        in.Total,
		"Keyword":      keyword,
		"Why":          why,
		"Open":         open,
		"KeywordRatio": in.Ratios[0],
		"WhyRatio":     in.Ratios[1],
		"OpenRatio":    in.Ratios[2],
		"WhyStart":     keyword + 1,
		"OpenStart":    keyword + why + 1,
	})
}

// Flashcards renders the prompt converting the keyword Q&A section into YAML.
func Flashcards(keywordSection string) (string, error) {
	return render("flashcards.tmpl", struct{ KeywordSection string }{keywordSection})
}

func render(name string, data any) (string, error) {
	var b strings.Builder
	if err := templates.ExecuteTemplate(&b, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return strings.TrimRight(b.String(), "\n"), nil
}
