package quiz

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestCleanDeckYAML(t *testing.T) {
	raw := "以下がYAMLです。\n```yaml\nflashcards:\n  - id: a\n```\n"
	if got := CleanDeckYAML(raw); got != "flashcards:\n  - id: a" {
		t.Fatalf("unexpected cleaned yaml %q", got)
	}
	if got := CleanDeckYAML("no yaml here"); got != "" {
		t.Fatalf("expected empty result, got %q", got)
	}
}

func TestParseDeckValidation(t *testing.T) {
	tests := []struct {
		name  string
		input string
		ok    bool
	}{
		{"valid", "flashcards:\n  - id: raft\n    front: Raftとは？\n    back: 合意アルゴリズム\n    category: keyword\n", true},
		{"empty", "", false},
		{"syntax", "flashcards:\n  - id: [unclosed\n", false},
		{"no cards", "flashcards: []\n", false},
		{"missing id", "flashcards:\n  - front: a\n    back: b\n", false},
		{"missing back", "flashcards:\n  - id: a\n    front: a\n", false},
		{"duplicate id", "flashcards:\n  - id: a\n    front: a\n    back: b\n  - id: a\n    front: c\n    back: d\n", false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseDeck(tc.input)
			if tc.ok && err != nil {
				t.Fatalf("expected valid deck, got %v", err)
			}
			if !tc.ok && !errors.Is(err, ErrInvalidDeck) {
				t.Fatalf("expected ErrInvalidDeck, got %v", err)
			}
		})
	}
}

func TestFallbackDeckIsDeterministic(t *testing.T) {
	section := KeywordSection(sampleQA)
	first := FallbackDeck(section)
	second := FallbackDeck(section)
	if !reflect.DeepEqual(first, second) {
		t.Fatal("fallback deck differs between invocations")
	}
	want := []Flashcard{
		{ID: "keyword_01", Front: "Raftとは？", Back: "合意アルゴリズム", Category: "keyword"},
		{ID: "keyword_02", Front: "リーダーとは？", Back: "ログ複製を主導するノード", Category: "keyword"},
	}
	if !reflect.DeepEqual(first.Flashcards, want) {
		t.Fatalf("unexpected fallback deck %+v", first.Flashcards)
	}
}

func TestMarshalDeckProducesValidYAML(t *testing.T) {
	data, err := MarshalDeck(FallbackDeck(KeywordSection(sampleQA)))
	if err != nil {
		t.Fatalf("MarshalDeck: %v", err)
	}
	text := string(data)
	if !strings.HasPrefix(text, "flashcards:\n") || !strings.Contains(text, "id: keyword_02") {
		t.Fatalf("unexpected yaml:\n%s", text)
	}
	deck, err := ParseDeck(text)
	if err != nil || len(deck.Flashcards) != 2 {
		t.Fatalf("marshalled deck does not validate: %v", err)
	}
}
