package document

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"

	"learnpod/internal/logging"
	"learnpod/internal/services"
)

const stageName = "ingest"

var (
	firstH1Pattern = regexp.MustCompile(`(?m)^#\s+(.+)$`)
	headingPattern = regexp.MustCompile(`^(#{1,3})\s+(.+)$`)
)

// Ingest reads and parses the Markdown file at path.
//
// Errors carry services.ErrNotFound for a missing file,
// services.ErrInvalidFormat for a non-.md extension or blank content, and
// services.ErrEncoding for bytes that are not valid UTF-8. A front-matter block
// that fails to parse is logged and ignored.
func Ingest(path string, logger *slog.Logger) (*Document, error) {
	logger = logging.NewComponentLogger(logger, "document")

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, services.Wrap(services.ErrNotFound, stageName, "stat", fmt.Sprintf("file not found: %s", path), nil)
		}
		return nil, services.Wrap(services.ErrNotFound, stageName, "stat", path, err)
	}
	if info.IsDir() {
		return nil, services.Wrap(services.ErrInvalidFormat, stageName, "stat", fmt.Sprintf("%s is a directory", path), nil)
	}
	if !strings.EqualFold(filepath.Ext(path), ".md") {
		return nil, services.Wrap(services.ErrInvalidFormat, stageName, "check extension", fmt.Sprintf("not a Markdown file: %s", path), nil)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, services.Wrap(services.ErrNotFound, stageName, "read", path, err)
	}
	if !utf8.Valid(raw) {
		return nil, services.Wrap(services.ErrEncoding, stageName, "decode", fmt.Sprintf("%s is not valid UTF-8", path), nil)
	}
	content := norm.NFC.String(strings.ReplaceAll(string(raw), "\r\n", "\n"))
	if strings.TrimSpace(content) == "" {
		return nil, services.Wrap(services.ErrInvalidFormat, stageName, "check content", "file is empty", nil)
	}

	metadata := parseFrontMatter(content, logger)
	doc := &Document{
		RawText:  content,
		Metadata: metadata,
		Path:     path,
	}
	body := doc.Body()
	doc.Title = extractTitle(body, metadata, path)
	doc.Sections = extractSections(body)

	logger.Info("document ingested",
		logging.String("path", path),
		logging.String("title", doc.Title),
		logging.Int("sections", len(doc.Sections)),
		logging.Int("characters", doc.CharacterCount()),
		logging.Bool("front_matter", metadata != nil),
	)
	return doc, nil
}

func parseFrontMatter(content string, logger *slog.Logger) map[string]any {
	match := frontMatterPattern.FindStringSubmatch(content)
	if match == nil {
		return nil
	}
	var metadata map[string]any
	if err := yaml.Unmarshal([]byte(match[1]), &metadata); err != nil {
		logging.WarnWithContext(logger, "front matter parse failed; continuing without metadata", "front_matter_invalid",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check the YAML between the leading --- lines"),
			logging.String(logging.FieldImpact, "title falls back to the first heading or file name"),
		)
		return nil
	}
	return metadata
}

func extractTitle(body string, metadata map[string]any, path string) string {
	if value, ok := metadata["title"]; ok && value != nil {
		if title := strings.TrimSpace(fmt.Sprint(value)); title != "" {
			return title
		}
	}
	if match := firstH1Pattern.FindStringSubmatch(body); match != nil {
		return strings.TrimSpace(match[1])
	}
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	stem = strings.NewReplacer("_", " ", "-", " ").Replace(stem)
	return cases.Title(language.Und, cases.NoLower).String(strings.TrimSpace(stem))
}

func extractSections(body string) []Section {
	var (
		sections []Section
		current  *Section
		lines    []string
		inFence  bool
	)
	closeCurrent := func() {
		if current != nil {
			current.Content = strings.TrimSpace(strings.Join(lines, "\n"))
			sections = append(sections, *current)
		}
	}

	for _, line := range strings.Split(body, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			inFence = !inFence
		}
		if !inFence {
			if match := headingPattern.FindStringSubmatch(line); match != nil {
				closeCurrent()
				current = &Section{Level: len(match[1]), Title: strings.TrimSpace(match[2])}
				lines = nil
				continue
			}
		}
		if current != nil {
			lines = append(lines, line)
		}
	}
	closeCurrent()

	if len(sections) == 0 {
		sections = append(sections, Section{Level: 1, Title: PlaceholderSectionTitle, Content: body})
	}
	return sections
}
