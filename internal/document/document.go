// Package document holds the parsed form of one Markdown study document and
// the ingest step that produces it.
package document

import (
	"regexp"
	"strings"

	"learnpod/internal/textutil"
)

// PlaceholderSectionTitle names the synthetic section used when a document has no headings.
const PlaceholderSectionTitle = "本文"

var frontMatterPattern = regexp.MustCompile(`(?s)^---\n(.*?)\n---\n`)

// Section is one heading (levels 1-3) and the text beneath it.
type Section struct {
	Level   int    `json:"level"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Document is an ingested Markdown file. It is built once by Ingest and not
// modified afterwards.
type Document struct {
	Title    string
	RawText  string
	Sections []Section
	// Metadata is the parsed front matter, nil when absent or unparseable.
	Metadata map[string]any
	Path     string
}

// Body returns the document text without its front-matter block.
func (d *Document) Body() string {
	if loc := frontMatterPattern.FindStringIndex(d.RawText); loc != nil {
		return strings.TrimSpace(d.RawText[loc[1]:])
	}
	return d.RawText
}

// SectionsAtLevel returns the sections with the given heading level.
func (d *Document) SectionsAtLevel(level int) []Section {
	var out []Section
	for _, s := range d.Sections {
		if s.Level == level {
			out = append(out, s)
		}
	}
	return out
}

// CharacterCount approximates length as the number of characters in the body
// that are neither spaces nor newlines.
func (d *Document) CharacterCount() int {
	return textutil.CountNonSpace(d.Body())
}
