package quiz

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"learnpod/internal/textutil"
)

// Flashcard is one front/back study card.
type Flashcard struct {
	ID       string `yaml:"id"`
	Front    string `yaml:"front"`
	Back     string `yaml:"back"`
	Category string `yaml:"category"`
}

// Deck is the flashcards.yaml document.
type Deck struct {
	Flashcards []Flashcard `yaml:"flashcards"`
}

// ErrInvalidDeck marks flashcard YAML that failed validation.
var ErrInvalidDeck = errors.New("invalid flashcard deck")

// CleanDeckYAML strips code fences and any prose before the "flashcards:" key.
func CleanDeckYAML(raw string) string {
	text := textutil.StripCodeFences(raw, "yaml")
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "flashcards:") {
			return strings.TrimSpace(strings.Join(lines[i:], "\n"))
		}
	}
	return ""
}

// ParseDeck decodes and validates deck YAML. A valid deck has at least one
// card, every card has an id, a front and a back, and ids are unique.
func ParseDeck(text string) (Deck, error) {
	if strings.TrimSpace(text) == "" {
		return Deck{}, fmt.Errorf("%w: no flashcards key", ErrInvalidDeck)
	}
	var deck Deck
	if err := yaml.Unmarshal([]byte(text), &deck); err != nil {
		return Deck{}, fmt.Errorf("%w: %w", ErrInvalidDeck, err)
	}
	if len(deck.Flashcards) == 0 {
		return Deck{}, fmt.Errorf("%w: no cards", ErrInvalidDeck)
	}
	seen := make(map[string]struct{}, len(deck.Flashcards))
	for i, card := range deck.Flashcards {
		id := strings.TrimSpace(card.ID)
		switch {
		case id == "":
			return Deck{}, fmt.Errorf("%w: card %d has no id", ErrInvalidDeck, i+1)
		case strings.TrimSpace(card.Front) == "" || strings.TrimSpace(card.Back) == "":
			return Deck{}, fmt.Errorf("%w: card %q is missing front or back", ErrInvalidDeck, id)
		}
		if _, dup := seen[id]; dup {
			return Deck{}, fmt.Errorf("%w: duplicate id %q", ErrInvalidDeck, id)
		}
		seen[id] = struct{}{}
	}
	return deck, nil
}

// FallbackDeck builds one keyword card per Q/A pair in the keyword section,
// with positional ids keyword_01, keyword_02, and so on.
func FallbackDeck(keywordSection string) Deck {
	items := parseItems(keywordSection, nil, func(int) Category { return CategoryKeyword })
	deck := Deck{Flashcards: make([]Flashcard, 0, len(items))}
	for i, item := range items {
		deck.Flashcards = append(deck.Flashcards, Flashcard{
			ID:       fmt.Sprintf("keyword_%02d", i+1),
			Front:    item.Question,
			Back:     item.Answer,
			Category: string(CategoryKeyword),
		})
	}
	return deck
}

// MarshalDeck renders deck as YAML with two-space indentation.
func MarshalDeck(deck Deck) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(deck); err != nil {
		return nil, fmt.Errorf("encode flashcards: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode flashcards: %w", err)
	}
	return buf.Bytes(), nil
}

// LoadDeck reads and validates a flashcards.yaml file.
func LoadDeck(path string) (Deck, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Deck{}, err
	}
	return ParseDeck(string(data))
}
