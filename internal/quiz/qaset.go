package quiz

import (
	"regexp"
	"strconv"
	"strings"
)

// Category names a Q&A group.
type Category string

// Q&A categories.
const (
	CategoryKeyword Category = "keyword"
	CategoryWhy     Category = "why"
	CategoryOpen    Category = "open"
)

// KeywordHeading opens the keyword section of questions.md.
const KeywordHeading = "## Keyword Q&A"

// Item is one parsed question with its answer.
type Item struct {
	Index    int
	Category Category
	Question string
	Answer   string
}

var (
	questionMarker = regexp.MustCompile(`\*\*Q(\d+):\*\*`)
	questionCount  = regexp.MustCompile(`\*\*Q\d+:`)
	sectionHeading = regexp.MustCompile(`(?m)^##[ \t]+(.+)$`)
	htmlComment    = regexp.MustCompile(`(?s)<!--.*?-->`)
)

const answerMarker = "**A:**"

// ParseQASet extracts the ordered Q&A items from questions markdown. Each
// item takes its category from the nearest preceding "## " heading; items
// before any heading, or under an unrecognised heading, are keyword items.
func ParseQASet(markdown string) []Item {
	headings := sectionHeading.FindAllStringSubmatchIndex(markdown, -1)
	categoryAt := func(pos int) Category {
		category := CategoryKeyword
		for _, h := range headings {
			if h[0] > pos {
				break
			}
			category = categoryFor(markdown[h[2]:h[3]], category)
		}
		return category
	}
	boundaries := make([]int, 0, len(headings))
	for _, h := range headings {
		boundaries = append(boundaries, h[0])
	}
	return parseItems(markdown, boundaries, categoryAt)
}

// CountQuestions counts "**Qn:" markers in text.
func CountQuestions(text string) int {
	return len(questionCount.FindAllStringIndex(text, -1))
}

// KeywordSection returns the body of the keyword section: the text after
// the keyword heading up to the next "## " heading or the end. It is empty
// when the heading is absent.
func KeywordSection(markdown string) string {
	lines := strings.Split(markdown, "\n")
	start := -1
	for i, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), KeywordHeading) {
			start = i + 1
			break
		}
	}
	if start < 0 {
		return ""
	}
	end := len(lines)
	for i := start; i < len(lines); i++ {
		if strings.HasPrefix(lines[i], "## ") {
			end = i
			break
		}
	}
	return strings.TrimSpace(strings.Join(lines[start:end], "\n"))
}

func categoryFor(heading string, fallback Category) Category {
	lower := strings.ToLower(heading)
	switch {
	case strings.Contains(lower, "keyword"):
		return CategoryKeyword
	case strings.Contains(lower, "why"):
		return CategoryWhy
	case strings.Contains(lower, "open"):
		return CategoryOpen
	}
	return fallback
}

// parseItems splits text at question markers. A question ends at the answer
// marker; an answer ends at the next question marker, the next boundary
// offset, or the end of text.
func parseItems(text string, boundaries []int, categoryAt func(int) Category) []Item {
	markers := questionMarker.FindAllStringSubmatchIndex(text, -1)
	items := make([]Item, 0, len(markers))
	for i, m := range markers {
		end := len(text)
		if i+1 < len(markers) {
			end = markers[i+1][0]
		}
		for _, b := range boundaries {
			if b > m[1] && b < end {
				end = b
				break
			}
		}
		segment := text[m[1]:end]
		split := strings.Index(segment, answerMarker)
		if split < 0 {
			continue
		}
		question := cleanField(segment[:split])
		answer := cleanField(segment[split+len(answerMarker):])
		if question == "" {
			continue
		}
		index, _ := strconv.Atoi(text[m[2]:m[3]])
		items = append(items, Item{
			Index:    index,
			Category: categoryAt(m[0]),
			Question: question,
			Answer:   answer,
		})
	}
	return items
}

func cleanField(value string) string {
	value = htmlComment.ReplaceAllString(value, "")
	value = strings.TrimSpace(value)
	value = strings.TrimSpace(strings.TrimSuffix(value, "-"))
	return value
}
