package document

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"learnpod/internal/services"
)

func writeDoc(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestIngestParsesFrontMatterAndSections(t *testing.T) {
	content := "---\ntitle: 機械学習入門\ntags: [ml, intro]\n---\n# 第1章\n導入です。\n\n## 背景\n歴史の話。\n\n```python\n# not a heading\n```\n### 詳細\n細かい話。\n"
	doc, err := Ingest(writeDoc(t, "ml.md", content), nil)
	if err != nil {
		t.Fatalf("Ingest returned error: %v", err)
	}
	if doc.Title != "機械学習入門" {
		t.Fatalf("expected front-matter title, got %q", doc.Title)
	}
	if doc.Metadata["tags"] == nil {
		t.Fatalf("expected tags metadata, got %v", doc.Metadata)
	}
	if len(doc.Sections) != 3 {
		t.Fatalf("expected 3 sections, got %d: %+v", len(doc.Sections), doc.Sections)
	}
	if doc.Sections[1].Level != 2 || doc.Sections[1].Title != "背景" {
		t.Fatalf("unexpected second section: %+v", doc.Sections[1])
	}
	if doc.Sections[1].Content != "歴史の話。\n\n```python\n# not a heading\n```" {
		t.Fatalf("expected fenced code to stay in section content, got %q", doc.Sections[1].Content)
	}
	if got := doc.SectionsAtLevel(3); len(got) != 1 || got[0].Title != "詳細" {
		t.Fatalf("unexpected level-3 sections: %+v", got)
	}
	if body := doc.Body(); body[:len("# 第1章")] != "# 第1章" {
		t.Fatalf("expected body without front matter, got %q", body)
	}
}

func TestIngestTitleFallbacks(t *testing.T) {
	doc, err := Ingest(writeDoc(t, "notes.md", "前書き\n# 最初の見出し\n本文"), nil)
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if doc.Title != "最初の見出し" {
		t.Fatalf("expected H1 title, got %q", doc.Title)
	}

	doc, err = Ingest(writeDoc(t, "deep_learning-basics.md", "見出しのない本文です。"), nil)
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if doc.Title != "Deep Learning Basics" {
		t.Fatalf("expected file-name title, got %q", doc.Title)
	}
	if len(doc.Sections) != 1 || doc.Sections[0].Title != PlaceholderSectionTitle || doc.Sections[0].Level != 1 {
		t.Fatalf("expected synthetic section, got %+v", doc.Sections)
	}
	if doc.Sections[0].Content != "見出しのない本文です。" {
		t.Fatalf("unexpected synthetic content %q", doc.Sections[0].Content)
	}
}

func TestIngestInvalidFrontMatterIsNonFatal(t *testing.T) {
	doc, err := Ingest(writeDoc(t, "bad.md", "---\ntitle: [unclosed\n---\n# 見出し\n本文\n"), nil)
	if err != nil {
		t.Fatalf("Ingest returned error: %v", err)
	}
	if doc.Metadata != nil {
		t.Fatalf("expected nil metadata, got %v", doc.Metadata)
	}
	if doc.Title != "見出し" {
		t.Fatalf("expected heading title, got %q", doc.Title)
	}
}

func TestIngestErrors(t *testing.T) {
	dir := t.TempDir()
	txt := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(txt, []byte("hello"), 0o644); err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		name string
		path string
		want error
	}{
		{"missing", filepath.Join(dir, "missing.md"), services.ErrNotFound},
		{"extension", txt, services.ErrInvalidFormat},
		{"empty", writeDoc(t, "empty.md", " \n\t\n"), services.ErrInvalidFormat},
		{"encoding", writeDoc(t, "latin1.md", "caf\xe9"), services.ErrEncoding},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Ingest(tc.path, nil)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestCharacterCountIgnoresSpacesAndNewlines(t *testing.T) {
	doc := &Document{RawText: "---\ntitle: x\n---\nab c\nde"}
	if got := doc.CharacterCount(); got != 5 {
		t.Fatalf("CharacterCount = %d, want 5", got)
	}
}
